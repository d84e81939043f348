package reporting

import (
	"strings"
	"testing"
)

func TestMeasureRegistry(t *testing.T) {
	svc := NewService(nil)
	ms := svc.Measures()
	if len(ms) == 0 {
		t.Fatal("no measures registered")
	}

	seen := make(map[string]bool)
	for _, m := range ms {
		if m.ID == "" || m.Name == "" || m.query == "" {
			t.Errorf("measure %+v incomplete", m)
		}
		if seen[m.ID] {
			t.Errorf("duplicate measure id %q", m.ID)
		}
		seen[m.ID] = true
	}

	for _, want := range []string{"records-by-status", "revenue-by-payment-method", "patient-count"} {
		if !seen[want] {
			t.Errorf("measure %q missing", want)
		}
	}
}

func TestFindMeasure(t *testing.T) {
	if _, ok := findMeasure("records-by-status"); !ok {
		t.Error("known measure not found")
	}
	if _, ok := findMeasure("nope"); ok {
		t.Error("unknown measure found")
	}
}

func TestWriteCSV(t *testing.T) {
	result := &Result{
		MeasureID: "records-by-status",
		Columns:   []string{"status", "total"},
		Rows: [][]interface{}{
			{"completed", int64(12)},
			{"in_progress", int64(3)},
			{nil, int64(0)},
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, result); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	if lines[0] != "status,total" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "completed,12" {
		t.Errorf("row = %q", lines[1])
	}
	if lines[3] != ",0" {
		t.Errorf("nil cell row = %q", lines[3])
	}
}

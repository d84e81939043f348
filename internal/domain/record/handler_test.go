package record

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperror"
)

func newEchoContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerCreate(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"patient_id":"` + f.patientID.String() + `",` +
		`"doctor_id":"` + f.doctorID.String() + `",` +
		`"department_id":"` + f.departmentID.String() + `",` +
		`"reason":"Chest pain",` +
		`"cost":{"consultation_fee":40,"total_fee":5000}}`
	c, rec := newEchoContext(http.MethodPost, "/medical-records", body)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    MedicalRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Data.Cost.TotalFee != 40 {
		t.Errorf("total fee = %v, want 40 (caller total discarded)", resp.Data.Cost.TotalFee)
	}
	if resp.Data.RecordNumber == "" {
		t.Error("record number not assigned")
	}
}

func TestHandlerGetInvalidID(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := newEchoContext(http.MethodGet, "/medical-records/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.Get(c)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}

func TestHandlerListBadDateFilter(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := newEchoContext(http.MethodGet, "/medical-records?start_date=31-12-2025", "")
	err := h.List(c)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}

func TestHandlerListDateRangeInclusive(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	visits := []time.Time{
		time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC),
		time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	}
	for _, v := range visits {
		m := f.validRecord()
		m.VisitDate = v
		if _, err := f.svc.Create(context.Background(), m, f.actor); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	c, rec := newEchoContext(http.MethodGet, "/medical-records?start_date=2026-01-01&end_date=2026-01-05", "")
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var resp struct {
		Data []MedicalRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("matched = %d, want 2 (both boundary days included)", len(resp.Data))
	}
	for _, m := range resp.Data {
		if m.VisitDate.Year() == 2025 || m.VisitDate.Day() == 6 {
			t.Errorf("visit %s outside [2026-01-01, 2026-01-05]", m.VisitDate)
		}
	}
}

func TestHandlerListPagination(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	for i := 0; i < 5; i++ {
		if _, err := f.svc.Create(context.Background(), f.validRecord(), f.actor); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	c, rec := newEchoContext(http.MethodGet, "/medical-records?page=2&limit=2", "")
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var resp struct {
		Data       []MedicalRecord `json:"data"`
		Pagination struct {
			CurrentPage int `json:"currentPage"`
			TotalPages  int `json:"totalPages"`
			TotalItems  int `json:"totalItems"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(resp.Data))
	}
	if resp.Pagination.TotalItems != 5 || resp.Pagination.TotalPages != 3 || resp.Pagination.CurrentPage != 2 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	created, err := f.svc.Create(context.Background(), f.validRecord(), f.actor)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := newEchoContext(http.MethodPut, "/medical-records/"+created.ID.String()+"/status", `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	c, _ = newEchoContext(http.MethodPut, "/medical-records/"+created.ID.String()+"/status", `{"status":"archived"}`)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.UpdateStatus(c); apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, DefaultLimit},
		{"explicit", "page=3&limit=50", 3, 50},
		{"zero page", "page=0", 1, DefaultLimit},
		{"negative page", "page=-2", 1, DefaultLimit},
		{"limit capped", "limit=5000", 1, MaxLimit},
		{"garbage", "page=abc&limit=xyz", 1, DefaultLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := FromContext(ctxWithQuery(tc.query))
			if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d",
					p.Page, p.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if p.Offset() != 40 {
		t.Errorf("offset = %d, want 40", p.Offset())
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 20}, 45)
	if meta.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", meta.TotalPages)
	}
	if meta.TotalItems != 45 || meta.CurrentPage != 2 || meta.ItemsPerPage != 20 {
		t.Errorf("meta = %+v", meta)
	}

	empty := NewMeta(Params{Page: 1, Limit: 20}, 0)
	if empty.TotalPages != 1 {
		t.Errorf("empty total pages = %d, want 1", empty.TotalPages)
	}
}

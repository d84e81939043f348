package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testCfg = JWTConfig{Secret: []byte("unit-test-secret-0123456789abcdef"), TTL: time.Hour}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", "Dr. Mensah", "doctor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseToken(testCfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "doctor" || claims.Name != "Dr. Mensah" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", "x", "doctor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := JWTConfig{Secret: []byte("a-completely-different-secret-value"), TTL: time.Hour}
	if _, err := ParseToken(other, token); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	expired := JWTConfig{Secret: testCfg.Secret, TTL: -time.Minute}
	token, err := IssueToken(expired, "user-1", "x", "doctor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(testCfg, token); err == nil {
		t.Error("expired token accepted")
	}
}

func doRequest(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, RoleFromContext(c.Request().Context()))
	})
	return rec, handler(c)
}

func TestJWTMiddleware(t *testing.T) {
	token, err := IssueToken(testCfg, "user-1", "x", "nurse")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, err := doRequest(JWTMiddleware(testCfg), "Bearer "+token)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Body.String() != "nurse" {
		t.Errorf("role in context = %q, want nurse", rec.Body.String())
	}
}

func TestJWTMiddlewareFailures(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := doRequest(JWTMiddleware(testCfg), tc.header)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusUnauthorized {
				t.Errorf("err = %v, want 401", err)
			}
		})
	}
}

func roleRequest(mw echo.MiddlewareFunc, role string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	token, _ := IssueToken(testCfg, "user-1", "x", role)
	req.Header.Set("Authorization", "Bearer "+token)

	handler := JWTMiddleware(testCfg)(mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	return handler(c)
}

func TestRequireRole(t *testing.T) {
	if err := roleRequest(RequireRole("doctor"), "doctor"); err != nil {
		t.Errorf("doctor rejected: %v", err)
	}
	if err := roleRequest(RequireRole("doctor"), "admin"); err != nil {
		t.Errorf("admin rejected: %v", err)
	}

	err := roleRequest(RequireRole("doctor"), "nurse")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("nurse err = %v, want 403", err)
	}

	if err := roleRequest(RequireRole(), "nurse"); err == nil {
		t.Error("admin-only route allowed nurse")
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	rec, err := doRequest(DevAuthMiddleware(), "")
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Body.String() != "admin" {
		t.Errorf("dev role = %q, want admin", rec.Body.String())
	}
}

func TestDevAuthMiddlewareSeedsRealActorID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := DevAuthMiddleware()(func(c echo.Context) error {
		id, err := uuid.Parse(UserIDFromContext(c.Request().Context()))
		if err != nil {
			t.Fatalf("dev user id is not a uuid: %v", err)
		}
		if id == uuid.Nil {
			t.Error("dev user id is the zero uuid")
		}
		if id != DevUserID {
			t.Errorf("dev user id = %s, want %s", id, DevUserID)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
}

package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

func asIdentity(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestHandler_Overview(t *testing.T) {
	f := newFixture()
	f.repo.patientTotal = 2
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = asIdentity(req, f.patient.ID, "patient")
	rec := httptest.NewRecorder()

	if err := h.Overview(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Role  string `json:"role"`
		Stats struct {
			TotalAppointments int `json:"total_appointments"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Role != "patient" || resp.Stats.TotalAppointments != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_Overview_Unauthenticated(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	err := h.Overview(e.NewContext(req, httptest.NewRecorder()))
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHandler_Overview_UnknownRole(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = asIdentity(req, f.admin.ID, "auditor")
	err := h.Overview(e.NewContext(req, httptest.NewRecorder()))
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

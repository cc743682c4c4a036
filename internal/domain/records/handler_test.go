package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/domain/scheduling"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

func asIdentity(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestHandler_Create(t *testing.T) {
	f := newFixture(scheduling.StatusConfirmed)
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"appointment_id":"` + f.appt.ID.String() + `","diagnosis":"Hypertension"}`
	req := httptest.NewRequest(http.MethodPost, "/api/medical-records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = asIdentity(req, f.doctorUserID, "doctor")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_Create_DuplicateConflict(t *testing.T) {
	f := newFixture(scheduling.StatusConfirmed)
	h := NewHandler(f.svc)
	e := echo.New()

	existing := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"appointment_id":"` + f.appt.ID.String() + `","diagnosis":"Migraine"}`
	req := httptest.NewRequest(http.MethodPost, "/api/medical-records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = asIdentity(req, f.doctorUserID, "doctor")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 error, got %v", err)
	}
}

func TestHandler_Get_ForbiddenForStranger(t *testing.T) {
	f := newFixture(scheduling.StatusCompleted)
	h := NewHandler(f.svc)
	e := echo.New()

	existing := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := asIdentity(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(existing.ID.String())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 error, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	f := newFixture(scheduling.StatusCompleted)
	h := NewHandler(f.svc)
	e := echo.New()

	existing := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := asIdentity(httptest.NewRequest(http.MethodGet, "/api/medical-records", nil), f.patientID, "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected total 1, got %d", resp.Total)
	}
}

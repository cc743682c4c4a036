package notifications

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

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func asIdentity(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestHandler_List(t *testing.T) {
	h, _, e := newTestHandler()
	userID := uuid.New()

	h.svc.MessageReceived(context.Background(), userID, "Dr Smith", "hello")

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req = asIdentity(req, userID, "patient")
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Notifications []*Notification `json:"notifications"`
		Total         int             `json:"total"`
		UnreadCount   int             `json:"unread_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Total != 1 || resp.UnreadCount != 1 || len(resp.Notifications) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_MarkRead(t *testing.T) {
	h, repo, e := newTestHandler()
	userID := uuid.New()

	h.svc.MessageReceived(context.Background(), userID, "Dr Smith", "hello")
	id := repo.notifications[0].ID

	req := httptest.NewRequest(http.MethodPut, "/api/notifications/"+id.String()+"/read", nil)
	req = asIdentity(req, userID, "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if err := h.MarkRead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_MarkRead_NotOwned(t *testing.T) {
	h, repo, e := newTestHandler()
	userID := uuid.New()

	h.svc.MessageReceived(context.Background(), userID, "Dr Smith", "hello")
	id := repo.notifications[0].ID

	req := httptest.NewRequest(http.MethodPut, "/api/notifications/"+id.String()+"/read", nil)
	req = asIdentity(req, uuid.New(), "patient")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := h.MarkRead(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_MarkAllRead(t *testing.T) {
	h, repo, e := newTestHandler()
	userID := uuid.New()

	h.svc.MessageReceived(context.Background(), userID, "Dr Smith", "one")
	h.svc.MessageReceived(context.Background(), userID, "Dr Smith", "two")

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/read-all", nil)
	req = asIdentity(req, userID, "patient")
	rec := httptest.NewRecorder()

	if err := h.MarkAllRead(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	for _, n := range repo.notifications {
		if !n.IsRead {
			t.Error("expected all notifications read")
		}
	}
}

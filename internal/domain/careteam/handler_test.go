package careteam

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/middleware"
)

// stubOwnerLookup reemplaza al servicio de devices en los tests de handlers.
type stubOwnerLookup struct {
	owners map[string]string
}

func (s stubOwnerLookup) OwnerOf(_ context.Context, deviceID string) (string, error) {
	owner, ok := s.owners[deviceID]
	if !ok {
		return "", errors.New("device not found")
	}
	return owner, nil
}

func newGrantsRouter(t *testing.T) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, NewService(newTestRepo()), stubOwnerLookup{
		owners: map[string]string{"D1000": "owner-1"},
	})
	return r
}

func postInvite(t *testing.T, h http.Handler, deviceID, caller, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/devices/"+deviceID+"/grants", strings.NewReader(body))
	if caller != "" {
		req.Header.Set("X-Debug-Caregiver-ID", caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInviteHandler_OwnerInvites(t *testing.T) {
	h := newGrantsRouter(t)

	rec := postInvite(t, h, "D1000", "owner-1", `{"caregiver_id":"caregiver-2","scopes":["vitals:read"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var g grantResponse
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.DeviceID != "D1000" || g.OwnerID != "owner-1" || g.CaregiverID != "caregiver-2" {
		t.Fatalf("unexpected grant: %+v", g)
	}
	if g.Status != StatusInvited {
		t.Fatalf("expected invited, got %s", g.Status)
	}
}

func TestInviteHandler_NonOwnerForbidden(t *testing.T) {
	h := newGrantsRouter(t)

	rec := postInvite(t, h, "D1000", "intruder", `{"caregiver_id":"caregiver-2"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestInviteHandler_UnknownDevice(t *testing.T) {
	h := newGrantsRouter(t)

	rec := postInvite(t, h, "D9999", "owner-1", `{"caregiver_id":"caregiver-2"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestInviteHandler_RequiresIdentity(t *testing.T) {
	h := newGrantsRouter(t)

	rec := postInvite(t, h, "D1000", "", `{"caregiver_id":"caregiver-2"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

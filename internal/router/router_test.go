package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prinik8/AIcare/internal/config"
	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	// Config vacía => backend en memoria, sin LLM
	deps, err := router.BuildDeps(config.Config{}, nil, nil, logger.Nop())
	if err != nil {
		t.Fatalf("build deps: %v", err)
	}
	t.Cleanup(func() { _ = deps.Close() })

	ts := httptest.NewServer(router.NewRouter(deps, router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_CareTeamScopes(t *testing.T) {
	ts := newServer(t)

	ownerID := "owner-1"
	helperID := "helper-1"

	// 1) Owner registra dispositivo
	registerDevice(t, ts.URL, ownerID, "D1000")

	// 2) Helper NO puede ver el dispositivo aún, ni editarlo
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/devices/D1000", helperID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/api/devices/D1000", helperID, map[string]any{
			"location": "Bedroom",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 patch by helper, got %d", st)
		}
	}

	// 2b) Owner sí puede editar el perfil
	{
		st, body := doReq(t, ts.URL, "PATCH", "/api/devices/D1000", ownerID, map[string]any{
			"conditions": "Hypertension",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch device, got %d body=%s", st, string(body))
		}
		var resp struct {
			Conditions string `json:"conditions"`
			Label      string `json:"label"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Conditions != "Hypertension" || resp.Label != "Living room wearable" {
			t.Fatalf("unexpected patched device body=%s", string(body))
		}
	}

	// 3) Owner registra una lectura fuera de rango
	{
		st, body := doReq(t, ts.URL, "POST", "/api/devices/D1000/vitals", ownerID, map[string]any{
			"heart_rate":   82,
			"bp_systolic":  145,
			"bp_diastolic": 90,
			"glucose":      130,
			"spo2":         94,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record vitals, got %d body=%s", st, string(body))
		}
		var resp struct {
			BPAlert        bool `json:"bp_alert"`
			AlertTriggered bool `json:"alert_triggered"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.BPAlert || !resp.AlertTriggered {
			t.Fatalf("expected bp alert on 145/90, body=%s", string(body))
		}
	}

	// 4) Owner invita al helper con device:read + vitals:read
	grantID := inviteGrant(t, ts.URL, ownerID, "D1000", helperID, []string{
		string(careteam.ScopeDeviceRead),
		string(careteam.ScopeVitalsRead),
	})

	// 5) Helper ve su invitación
	{
		st, body := doReq(t, ts.URL, "GET", "/api/me/grants", helperID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my grants, got %d body=%s", st, string(body))
		}
	}

	// 6) Grant invitado pero no aceptado: todavía sin acceso
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/devices/D1000/vitals", helperID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before accept, got %d", st)
		}
	}

	// 7) Helper acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/api/grants/"+grantID+"/accept", helperID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept grant, got %d body=%s", st, string(body))
		}
	}

	// 8) Helper ya puede leer vitals
	{
		st, body := doReq(t, ts.URL, "GET", "/api/devices/D1000/vitals", helperID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list vitals by helper, got %d body=%s", st, string(body))
		}
		var readings []struct {
			AlertTriggered bool `json:"alert_triggered"`
		}
		_ = json.Unmarshal(body, &readings)
		if len(readings) != 1 || !readings[0].AlertTriggered {
			t.Fatalf("expected 1 alerting reading, body=%s", string(body))
		}
	}

	// 9) Pero no safety (sin safety:read)
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/devices/D1000/safety", helperID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 safety without scope, got %d", st)
		}
	}

	// 10) Telemetría manual es solo del owner
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/devices/D1000/vitals", helperID, map[string]any{
			"heart_rate": 70,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 record vitals by helper, got %d", st)
		}
	}

	// 11) Owner registra una caída y la resuelve
	eventID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/api/devices/D1000/safety", ownerID, map[string]any{
			"movement_activity":            "No Movement",
			"fall_detected":                true,
			"impact_force":                 "medium",
			"post_fall_inactivity_seconds": 120,
			"location":                     "Bathroom",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record safety, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID       string `json:"id"`
			Severity string `json:"severity"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Severity != "critical" {
			t.Fatalf("expected critical severity for fall + 120s inactivity, body=%s", string(body))
		}
		eventID = resp.ID
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/api/safety/"+eventID+"/resolve", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve safety, got %d body=%s", st, string(body))
		}
	}

	// 12) Owner crea y lista reminders
	{
		st, body := doReq(t, ts.URL, "POST", "/api/devices/D1000/reminders", ownerID, map[string]any{
			"type":         "medication",
			"description":  "Take blood pressure medication",
			"scheduled_at": time.Now().Add(3 * time.Hour).UTC().Format(time.RFC3339),
			"recurrence":   "daily",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create reminder, got %d body=%s", st, string(body))
		}
		var resp struct {
			Priority string `json:"priority"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Priority != "high" {
			t.Fatalf("expected derived high priority, body=%s", string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/devices/D1000/reminders", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list reminders, got %d body=%s", st, string(body))
		}
	}

	// 13) Dashboard agregado
	{
		st, body := doReq(t, ts.URL, "GET", "/api/dashboard?device_id=D1000", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 dashboard, got %d body=%s", st, string(body))
		}
		var resp struct {
			DeviceID string `json:"device_id"`
			Readings []any  `json:"readings"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.DeviceID != "D1000" || len(resp.Readings) == 0 {
			t.Fatalf("unexpected dashboard body=%s", string(body))
		}
	}

	// 14) Eventlog acumula el rastro
	{
		st, body := doReq(t, ts.URL, "GET", "/api/events", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 events, got %d body=%s", st, string(body))
		}
	}

	// 15) Agent sin LLM degrada al resumen fijo
	{
		st, body := doReq(t, ts.URL, "POST", "/api/agents/health/run", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 run agent, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "success" || !strings.Contains(resp.Message, "Health agent") {
			t.Fatalf("unexpected agent response body=%s", string(body))
		}
	}

	// 16) Owner revoca y el helper pierde acceso
	{
		st, body := doReq(t, ts.URL, "POST", "/api/grants/"+grantID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke grant, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/devices/D1000/vitals", helperID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
	}
}

func TestHTTP_InviteGrant_RejectsUnknownScope(t *testing.T) {
	ts := newServer(t)

	registerDevice(t, ts.URL, "owner-1", "D1000")

	st, _ := doReq(t, ts.URL, "POST", "/api/devices/D1000/grants", "owner-1", map[string]any{
		"caregiver_id": "helper-1",
		"scopes":       []string{"vitals:read", "vitals:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func TestHTTP_RequiresIdentity(t *testing.T) {
	ts := newServer(t)

	st, _ := doReq(t, ts.URL, "GET", "/api/devices", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected ok health, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
}

func TestHTTP_RunAgent_UnknownKind(t *testing.T) {
	ts := newServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/api/agents/weather/run", "owner-1", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown agent, got %d", st)
	}
}

func registerDevice(t *testing.T, baseURL, ownerID, deviceID string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/devices", ownerID, map[string]any{
		"device_id": deviceID,
		"label":     "Living room wearable",
		"location":  "Living Room",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register device, got %d body=%s", st, string(body))
	}
}

func inviteGrant(t *testing.T, baseURL, ownerID, deviceID, caregiverID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/devices/"+deviceID+"/grants", ownerID, map[string]any{
		"caregiver_id": caregiverID,
		"scopes":       scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite grant, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite grant: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugCaregiverID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugCaregiverID != "" {
		req.Header.Set("X-Debug-Caregiver-ID", debugCaregiverID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

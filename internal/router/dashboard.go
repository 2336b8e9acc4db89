package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/middleware"
)

type dashboardResponse struct {
	DeviceID     string              `json:"device_id"`
	Devices      []string            `json:"devices"`
	Readings     []dashReading       `json:"readings"`
	SafetyEvents []dashSafetyEvent   `json:"safety_events"`
	Reminders    []dashReminder      `json:"reminders"`
	Events       []dashEvent         `json:"events"`
}

type dashReading struct {
	Timestamp      time.Time `json:"timestamp"`
	HeartRate      int       `json:"heart_rate"`
	BPSystolic     int       `json:"bp_systolic"`
	BPDiastolic    int       `json:"bp_diastolic"`
	Glucose        int       `json:"glucose"`
	SpO2           int       `json:"spo2"`
	AlertTriggered bool      `json:"alert_triggered"`
}

type dashSafetyEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	MovementActivity string    `json:"movement_activity"`
	FallDetected     bool      `json:"fall_detected"`
	Location         string    `json:"location"`
	Severity         string    `json:"severity"`
	Resolved         bool      `json:"resolved"`
}

type dashReminder struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Priority    string    `json:"priority"`
}

type dashEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
}

// dashboardHandler godoc
// @Summary Vista agregada de monitoreo
// @Description Dropdown de dispositivos más las últimas 10 lecturas, 5 eventos de seguridad, 5 recordatorios próximos y 10 eventos de sistema del dispositivo elegido (default D1000).
// @Tags dashboard
// @Produce json
// @Param device_id query string false "Device ID externo"
// @Success 200 {object} dashboardResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/dashboard [get]
func dashboardHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := strings.TrimSpace(r.URL.Query().Get("device_id"))
		if deviceID == "" {
			deviceID = d.DefaultDeviceID
		}

		resp := dashboardResponse{
			DeviceID:     deviceID,
			Devices:      []string{},
			Readings:     []dashReading{},
			SafetyEvents: []dashSafetyEvent{},
			Reminders:    []dashReminder{},
			Events:       []dashEvent{},
		}

		if ids, err := d.Vitals.DeviceIDs(r.Context()); err == nil {
			resp.Devices = ids
		}

		if readings, err := d.Vitals.Latest(r.Context(), deviceID, 10); err == nil {
			for _, v := range readings {
				resp.Readings = append(resp.Readings, dashReading{
					Timestamp:      v.Timestamp,
					HeartRate:      v.HeartRate,
					BPSystolic:     v.BPSystolic,
					BPDiastolic:    v.BPDiastolic,
					Glucose:        v.Glucose,
					SpO2:           v.SpO2,
					AlertTriggered: v.AlertTriggered,
				})
			}
		}

		if events, err := d.Safety.ListByDevice(r.Context(), deviceID, safety.ListFilter{Limit: 5}); err == nil {
			for _, e := range events {
				resp.SafetyEvents = append(resp.SafetyEvents, dashSafetyEvent{
					Timestamp:        e.Timestamp,
					MovementActivity: e.MovementActivity,
					FallDetected:     e.FallDetected,
					Location:         e.Location,
					Severity:         string(e.Severity),
					Resolved:         e.Resolved,
				})
			}
		}

		if items, err := d.Reminders.ListUpcoming(r.Context(), deviceID); err == nil {
			if len(items) > 5 {
				items = items[:5]
			}
			for _, rem := range items {
				resp.Reminders = append(resp.Reminders, dashReminder{
					Type:        rem.Type,
					Description: rem.Description,
					ScheduledAt: rem.ScheduledAt,
					Priority:    string(rem.Priority),
				})
			}
		}

		if items, err := d.Events.Recent(r.Context(), eventlog.Filter{Hours: 24}); err == nil {
			if len(items) > 10 {
				items = items[:10]
			}
			for _, e := range items {
				resp.Events = append(resp.Events, dashEvent{
					Timestamp:   e.Timestamp,
					Source:      e.Source,
					Type:        e.Type,
					Description: e.Description,
					Severity:    string(e.Severity),
				})
			}
		}

		_, _ = d.Events.Log(r.Context(), "ui", "dashboard_access", "Dashboard viewed for device "+deviceID, eventlog.SeverityInfo)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

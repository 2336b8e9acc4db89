package safety

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/domain/devices"
	"github.com/prinik8/AIcare/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) {
	r.Route("/devices/{deviceID}/safety", func(sr chi.Router) {
		sr.Get("/", listSafetyHandler(svc, devicesSvc, grantsSvc))
		sr.Post("/", recordSafetyHandler(svc, devicesSvc, grantsSvc))
	})

	// Resolve va por ID de evento (owner o caregiver con safety:resolve).
	r.Post("/safety/{eventID}/resolve", resolveSafetyHandler(svc, devicesSvc, grantsSvc))
}

type recordSafetyRequest struct {
	Timestamp                 string `json:"timestamp"` // RFC3339, opcional
	MovementActivity          string `json:"movement_activity"`
	FallDetected              bool   `json:"fall_detected"`
	ImpactForce               string `json:"impact_force"`
	PostFallInactivitySeconds int    `json:"post_fall_inactivity_seconds"`
	Location                  string `json:"location"`
}

type safetyEventResponse struct {
	ID                        string     `json:"id"`
	DeviceID                  string     `json:"device_id"`
	Timestamp                 time.Time  `json:"timestamp"`
	MovementActivity          string     `json:"movement_activity"`
	FallDetected              bool       `json:"fall_detected"`
	ImpactForce               string     `json:"impact_force"`
	PostFallInactivitySeconds int        `json:"post_fall_inactivity_seconds"`
	Location                  string     `json:"location"`
	AlertTriggered            bool       `json:"alert_triggered"`
	CaregiverNotified         bool       `json:"caregiver_notified"`
	Severity                  string     `json:"severity"`
	Resolved                  bool       `json:"resolved"`
	ResolvedAt                *time.Time `json:"resolved_at,omitempty"`
}

// recordSafetyHandler godoc
// @Summary Registrar evento de seguridad
// @Description Registra un evento (caída, actividad anómala) para el dispositivo. Solo el owner; la telemetría normal entra por MQTT. La severidad se deriva de la fuerza de impacto.
// @Tags safety
// @Accept json
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param payload body recordSafetyRequest true "Evento; impact_force: low|medium|high o vacío"
// @Success 201 {object} safetyEventResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Failure 409 {string} string "duplicate safety event"
// @Router /api/devices/{deviceID}/safety [post]
func recordSafetyHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := chi.URLParam(r, "deviceID")
		d, err := devicesSvc.GetByDeviceID(r.Context(), deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		if d.OwnerID != claims.CaregiverID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req recordSafetyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var ts time.Time
		if strings.TrimSpace(req.Timestamp) != "" {
			ts, err = time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				http.Error(w, "timestamp must be RFC3339", http.StatusBadRequest)
				return
			}
		}

		e, err := svc.Record(r.Context(), deviceID, RecordInput{
			Timestamp:                 ts,
			MovementActivity:          req.MovementActivity,
			FallDetected:              req.FallDetected,
			ImpactForce:               ParseImpactForce(req.ImpactForce),
			PostFallInactivitySeconds: req.PostFallInactivitySeconds,
			Location:                  req.Location,
			AlertTriggered:            req.FallDetected,
		})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				http.Error(w, "duplicate safety event", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toSafetyEventResponse(e))
	}
}

// listSafetyHandler godoc
// @Summary Listar eventos de seguridad
// @Description Lista eventos desc por timestamp. Owner siempre; caregiver necesita grant con `safety:read`. Filtros: unresolved=true y limit (default 20).
// @Tags safety
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param unresolved query bool false "Solo eventos sin resolver"
// @Param limit query int false "Máximo de eventos (default 20)"
// @Success 200 {array} safetyEventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Router /api/devices/{deviceID}/safety [get]
func listSafetyHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := chi.URLParam(r, "deviceID")
		d, err := devicesSvc.GetByDeviceID(r.Context(), deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		if d.OwnerID != claims.CaregiverID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), deviceID, claims.CaregiverID)
			if err != nil || !careteam.HasScope(g, careteam.ScopeSafetyRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		filter := ListFilter{}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("unresolved"); v == "true" || v == "1" {
			filter.OnlyUnresolved = true
		}

		items, err := svc.ListByDevice(r.Context(), deviceID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]safetyEventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toSafetyEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// resolveSafetyHandler godoc
// @Summary Resolver un evento de seguridad
// @Description Marca el evento como atendido. Owner siempre; caregiver necesita grant activo con `safety:resolve`. Idempotente.
// @Tags safety
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} safetyEventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Router /api/safety/{eventID}/resolve [post]
func resolveSafetyHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		eventID := chi.URLParam(r, "eventID")
		e, err := svc.GetByID(r.Context(), eventID)
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		// Permisos contra el device dueño del evento.
		d, err := devicesSvc.GetByDeviceID(r.Context(), e.DeviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		if d.OwnerID != claims.CaregiverID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), e.DeviceID, claims.CaregiverID)
			if err != nil || !careteam.HasScope(g, careteam.ScopeSafetyResolve) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		resolved, err := svc.Resolve(r.Context(), eventID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toSafetyEventResponse(resolved))
	}
}

func toSafetyEventResponse(e SafetyEvent) safetyEventResponse {
	return safetyEventResponse{
		ID:                        e.ID,
		DeviceID:                  e.DeviceID,
		Timestamp:                 e.Timestamp,
		MovementActivity:          e.MovementActivity,
		FallDetected:              e.FallDetected,
		ImpactForce:               string(e.ImpactForce),
		PostFallInactivitySeconds: e.PostFallInactivitySeconds,
		Location:                  e.Location,
		AlertTriggered:            e.AlertTriggered,
		CaregiverNotified:         e.CaregiverNotified,
		Severity:                  string(e.Severity),
		Resolved:                  e.Resolved,
		ResolvedAt:                e.ResolvedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package vitals

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
	r.Route("/devices/{deviceID}/vitals", func(vr chi.Router) {
		vr.Get("/", listVitalsHandler(svc, devicesSvc, grantsSvc))
		vr.Post("/", recordVitalsHandler(svc, devicesSvc, grantsSvc))
		vr.Get("/chart", chartVitalsHandler(svc, devicesSvc, grantsSvc))
	})
}

type recordVitalsRequest struct {
	Timestamp   string `json:"timestamp"` // RFC3339, opcional
	HeartRate   int    `json:"heart_rate"`
	BPSystolic  int    `json:"bp_systolic"`
	BPDiastolic int    `json:"bp_diastolic"`
	Glucose     int    `json:"glucose"`
	SpO2        int    `json:"spo2"`
}

type readingResponse struct {
	ID                string    `json:"id"`
	DeviceID          string    `json:"device_id"`
	Timestamp         time.Time `json:"timestamp"`
	HeartRate         int       `json:"heart_rate"`
	HeartRateAlert    bool      `json:"heart_rate_alert"`
	BPSystolic        int       `json:"bp_systolic"`
	BPDiastolic       int       `json:"bp_diastolic"`
	BPAlert           bool      `json:"bp_alert"`
	Glucose           int       `json:"glucose"`
	GlucoseAlert      bool      `json:"glucose_alert"`
	SpO2              int       `json:"spo2"`
	SpO2Alert         bool      `json:"spo2_alert"`
	AlertTriggered    bool      `json:"alert_triggered"`
	CaregiverNotified bool      `json:"caregiver_notified"`
}

// recordVitalsHandler godoc
// @Summary Registrar lectura de signos vitales
// @Description Registra una lectura manual para el dispositivo. Solo el owner; la telemetría normal entra por MQTT. Los thresholds se evalúan al guardar.
// @Tags vitals
// @Accept json
// @Produce json
// @Param deviceID path string true "Device ID externo (ej: D1000)"
// @Param payload body recordVitalsRequest true "Lectura; timestamp RFC3339 opcional"
// @Success 201 {object} readingResponse
// @Failure 400 {string} string "invalid json / timestamp inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Failure 409 {string} string "duplicate reading"
// @Router /api/devices/{deviceID}/vitals [post]
func recordVitalsHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
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

		// Solo el owner registra lecturas manuales.
		if d.OwnerID != claims.CaregiverID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req recordVitalsRequest
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

		reading, err := svc.Record(r.Context(), deviceID, RecordInput{
			Timestamp:   ts,
			HeartRate:   req.HeartRate,
			BPSystolic:  req.BPSystolic,
			BPDiastolic: req.BPDiastolic,
			Glucose:     req.Glucose,
			SpO2:        req.SpO2,
		})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				http.Error(w, "duplicate reading", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toReadingResponse(reading))
	}
}

// listVitalsHandler godoc
// @Summary Listar lecturas de un dispositivo
// @Description Lista lecturas desc por timestamp. El owner siempre puede; un caregiver necesita grant activo con `vitals:read`. Filtros: days (ventana hacia atrás) y limit (1-500, default 50).
// @Tags vitals
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param days query int false "Ventana en días hacia atrás"
// @Param limit query int false "Máximo de lecturas (default 50)"
// @Success 200 {array} readingResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Router /api/devices/{deviceID}/vitals [get]
func listVitalsHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, ok := authorizeRead(w, r, devicesSvc, grantsSvc)
		if !ok {
			return
		}

		filter := ListFilter{}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("days"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				from := time.Now().AddDate(0, 0, -n)
				filter.From = &from
			}
		}

		items, err := svc.ListByDevice(r.Context(), deviceID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]readingResponse, 0, len(items))
		for _, reading := range items {
			out = append(out, toReadingResponse(reading))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// chartVitalsHandler devuelve las series listas para Chart.js.
func chartVitalsHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, ok := authorizeRead(w, r, devicesSvc, grantsSvc)
		if !ok {
			return
		}

		readings, err := svc.Latest(r.Context(), deviceID, 10)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, BuildChartData(readings))
	}
}

// authorizeRead resuelve el check owner-o-grant para lecturas.
// Escribe la respuesta de error; devuelve (deviceID, ok).
func authorizeRead(w http.ResponseWriter, r *http.Request, devicesSvc *devices.Service, grantsSvc *careteam.Service) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}

	deviceID := chi.URLParam(r, "deviceID")
	d, err := devicesSvc.GetByDeviceID(r.Context(), deviceID)
	if err != nil {
		http.Error(w, "device not found", http.StatusNotFound)
		return "", false
	}

	if d.OwnerID != claims.CaregiverID {
		g, err := grantsSvc.GetActiveGrant(r.Context(), deviceID, claims.CaregiverID)
		if err != nil || !careteam.HasScope(g, careteam.ScopeVitalsRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return "", false
		}
	}

	return deviceID, true
}

func toReadingResponse(r Reading) readingResponse {
	return readingResponse{
		ID:                r.ID,
		DeviceID:          r.DeviceID,
		Timestamp:         r.Timestamp,
		HeartRate:         r.HeartRate,
		HeartRateAlert:    r.HeartRateAlert,
		BPSystolic:        r.BPSystolic,
		BPDiastolic:       r.BPDiastolic,
		BPAlert:           r.BPAlert,
		Glucose:           r.Glucose,
		GlucoseAlert:      r.GlucoseAlert,
		SpO2:              r.SpO2,
		SpO2Alert:         r.SpO2Alert,
		AlertTriggered:    r.AlertTriggered,
		CaregiverNotified: r.CaregiverNotified,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

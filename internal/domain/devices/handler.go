package devices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *careteam.Service) {
	r.Route("/devices", func(dr chi.Router) {
		dr.Post("/", registerDeviceHandler(svc))
		dr.Get("/", listDevicesHandler(svc, grantsSvc))
		dr.Get("/{deviceID}", getDeviceHandler(svc, grantsSvc))
		dr.Patch("/{deviceID}", updateDeviceHandler(svc))
	})
}

type registerDeviceRequest struct {
	DeviceID         string `json:"device_id"`
	Label            string `json:"label"`
	Location         string `json:"location"`
	EmergencyContact string `json:"emergency_contact"`
	Conditions       string `json:"conditions"`
	Notes            string `json:"notes"`
}

type updateDeviceRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Label            *string `json:"label"`
	Location         *string `json:"location"`
	EmergencyContact *string `json:"emergency_contact"`
	Conditions       *string `json:"conditions"`
	Notes            *string `json:"notes"`
}

type deviceResponse struct {
	ID               string    `json:"id"`
	DeviceID         string    `json:"device_id"`
	Label            string    `json:"label"`
	Location         string    `json:"location"`
	EmergencyContact string    `json:"emergency_contact"`
	Conditions       string    `json:"conditions"`
	Notes            string    `json:"notes"`
	OwnerID          string    `json:"owner_id"`
	RegisteredAt     time.Time `json:"registered_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// registerDeviceHandler godoc
// @Summary Registrar un wearable
// @Description Registra un dispositivo nuevo a nombre del caregiver autenticado. Autenticación: `X-Debug-Caregiver-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags devices
// @Accept json
// @Produce json
// @Param payload body registerDeviceRequest true "Datos del dispositivo"
// @Success 201 {object} deviceResponse
// @Failure 400 {string} string "invalid json / device_id requerido"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "device already registered"
// @Router /api/devices [post]
func registerDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Register(r.Context(), claims.CaregiverID, RegisterInput{
			DeviceID:         req.DeviceID,
			Label:            req.Label,
			Location:         req.Location,
			EmergencyContact: req.EmergencyContact,
			Conditions:       req.Conditions,
			Notes:            req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				http.Error(w, "device already registered", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toDeviceResponse(d))
	}
}

// listDevicesHandler devuelve los dispositivos propios más los que tienen
// grant activo con device:read.
func listDevicesHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		all, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		granted := map[string]bool{}
		if grants, err := grantsSvc.ListByCaregiver(r.Context(), claims.CaregiverID); err == nil {
			for _, g := range grants {
				if g.Status == careteam.StatusActive && careteam.HasScope(g, careteam.ScopeDeviceRead) {
					granted[g.DeviceID] = true
				}
			}
		}

		out := make([]deviceResponse, 0, len(all))
		for _, d := range all {
			if d.OwnerID == claims.CaregiverID || granted[d.DeviceID] {
				out = append(out, toDeviceResponse(d))
			}
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getDeviceHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := chi.URLParam(r, "deviceID")
		d, err := svc.GetByDeviceID(r.Context(), deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		// Permisos:
		// - Owner: siempre permitido
		// - Caregiver: requiere grant activo con device:read
		if d.OwnerID != claims.CaregiverID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), deviceID, claims.CaregiverID)
			if err != nil || !careteam.HasScope(g, careteam.ScopeDeviceRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toDeviceResponse(d))
	}
}

// updateDeviceHandler godoc
// @Summary Actualizar perfil del dispositivo
// @Description Actualiza campos del perfil (PATCH parcial). Solo el owner.
// @Tags devices
// @Accept json
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param payload body updateDeviceRequest true "Campos a modificar"
// @Success 200 {object} deviceResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Router /api/devices/{deviceID} [patch]
func updateDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := chi.URLParam(r, "deviceID")
		current, err := svc.GetByDeviceID(r.Context(), deviceID)
		if err != nil {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		if current.OwnerID != claims.CaregiverID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), deviceID, UpdateProfileInput{
			Label:            req.Label,
			Location:         req.Location,
			EmergencyContact: req.EmergencyContact,
			Conditions:       req.Conditions,
			Notes:            req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "device not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toDeviceResponse(updated))
	}
}

func toDeviceResponse(d Device) deviceResponse {
	return deviceResponse{
		ID:               d.ID,
		DeviceID:         d.DeviceID,
		Label:            d.Label,
		Location:         d.Location,
		EmergencyContact: d.EmergencyContact,
		Conditions:       d.Conditions,
		Notes:            d.Notes,
		OwnerID:          d.OwnerID,
		RegisteredAt:     d.RegisteredAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

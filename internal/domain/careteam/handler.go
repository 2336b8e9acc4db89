package careteam

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/middleware"
)

// DeviceOwnerLookup evita importar el paquete devices (rompe ciclos).
type DeviceOwnerLookup interface {
	OwnerOf(ctx context.Context, deviceID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, deviceOwners DeviceOwnerLookup) {
	r.Post("/devices/{deviceID}/grants", inviteHandler(svc, deviceOwners))
	r.Get("/me/grants", myGrantsHandler(svc))
	r.Post("/grants/{grantID}/accept", acceptHandler(svc))
	r.Post("/grants/{grantID}/revoke", revokeHandler(svc))
}

type inviteRequest struct {
	CaregiverID string   `json:"caregiver_id"`
	Scopes      []string `json:"scopes"` // vacío => device:read + vitals:read
}

type grantResponse struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"device_id"`
	OwnerID     string     `json:"owner_id"`
	CaregiverID string     `json:"caregiver_id"`
	Scopes      []string   `json:"scopes"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// inviteHandler godoc
// @Summary Invitar a un caregiver
// @Description Crea (o actualiza) un grant de acceso sobre el dispositivo. Solo el owner. Scopes inválidos rechazan todo el request.
// @Tags careteam
// @Accept json
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param payload body inviteRequest true "Caregiver y scopes"
// @Success 201 {object} grantResponse
// @Failure 400 {string} string "invalid json / scopes inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Router /api/devices/{deviceID}/grants [post]
func inviteHandler(svc *Service, deviceOwners DeviceOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		deviceID := chi.URLParam(r, "deviceID")
		ownerID, err := deviceOwners.OwnerOf(r.Context(), deviceID)
		if err != nil || strings.TrimSpace(ownerID) == "" {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		// Solo el owner invita.
		if ownerID != claims.CaregiverID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req inviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scopes := make([]Scope, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			scopes = append(scopes, Scope(s))
		}

		g, err := svc.Invite(r.Context(), InviteInput{
			DeviceID:    deviceID,
			OwnerID:     claims.CaregiverID,
			CaregiverID: req.CaregiverID,
			Scopes:      scopes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(g))
	}
}

// myGrantsHandler lista los grants del caregiver autenticado (como grantee).
func myGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grants, err := svc.ListByCaregiver(r.Context(), claims.CaregiverID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]grantResponse, 0, len(grants))
		for _, g := range grants {
			out = append(out, toGrantResponse(g))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.Accept(r.Context(), grantID, claims.CaregiverID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.Revoke(r.Context(), grantID, claims.CaregiverID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

// writeGrantError mapea los sentinels del service a status HTTP.
func writeGrantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "grant not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, "invalid grant state", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func toGrantResponse(g Grant) grantResponse {
	scopes := make([]string, 0, len(g.Scopes))
	for _, s := range g.Scopes {
		scopes = append(scopes, string(s))
	}
	return grantResponse{
		ID:          g.ID,
		DeviceID:    g.DeviceID,
		OwnerID:     g.OwnerID,
		CaregiverID: g.CaregiverID,
		Scopes:      scopes,
		Status:      g.Status,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
		RevokedAt:   g.RevokedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

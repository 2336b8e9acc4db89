package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/domain/devices"
	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service, events *eventlog.Service) {
	r.Route("/devices/{deviceID}/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc, devicesSvc, grantsSvc))
		rr.Post("/", createReminderHandler(svc, devicesSvc, grantsSvc, events))
	})

	r.Post("/reminders/{reminderID}/complete", completeReminderHandler(svc, devicesSvc, grantsSvc, events))
	r.Post("/reminders/{reminderID}/acknowledge", acknowledgeReminderHandler(svc, devicesSvc, grantsSvc))
}

type createReminderRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339
	Recurrence  string `json:"recurrence"`   // "" | daily | weekly
	Priority    string `json:"priority"`     // opcional; derivada del tipo si falta
}

type reminderResponse struct {
	ID           string     `json:"id"`
	DeviceID     string     `json:"device_id"`
	CreatedAt    time.Time  `json:"created_at"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	Recurrence   string     `json:"recurrence"`
	Priority     string     `json:"priority"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Sent         bool       `json:"sent"`
	Acknowledged bool       `json:"acknowledged"`
}

// createReminderHandler godoc
// @Summary Crear recordatorio
// @Description Crea un recordatorio para el dispositivo. Owner siempre; caregiver necesita grant activo con `reminders:manage`. Prioridad derivada del tipo si no viene (medication→high, appointment→medium, resto→low).
// @Tags reminders
// @Accept json
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param payload body createReminderRequest true "Recordatorio; scheduled_at RFC3339"
// @Success 201 {object} reminderResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Failure 409 {string} string "duplicate reminder"
// @Router /api/devices/{deviceID}/reminders [post]
func createReminderHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service, events *eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, ok := authorizeManage(w, r, devicesSvc, grantsSvc)
		if !ok {
			return
		}

		var req createReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
			return
		}

		rem, err := svc.Create(r.Context(), deviceID, CreateInput{
			Type:        req.Type,
			Description: req.Description,
			ScheduledAt: scheduledAt,
			Recurrence:  Recurrence(strings.ToLower(strings.TrimSpace(req.Recurrence))),
			Priority:    Priority(strings.ToLower(strings.TrimSpace(req.Priority))),
		})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				http.Error(w, "duplicate reminder", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		_, _ = events.Log(r.Context(), "ui", "reminder_created", "Reminder created: "+rem.Description, eventlog.SeverityInfo)

		writeJSON(w, http.StatusCreated, toReminderResponse(rem))
	}
}

// listRemindersHandler godoc
// @Summary Listar recordatorios
// @Description Lista recordatorios del dispositivo. Owner siempre; caregiver necesita grant con `reminders:read`. status=upcoming (default) | completed.
// @Tags reminders
// @Produce json
// @Param deviceID path string true "Device ID externo"
// @Param status query string false "upcoming | completed"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "device not found"
// @Router /api/devices/{deviceID}/reminders [get]
func listRemindersHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
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
			if err != nil || !careteam.HasScope(g, careteam.ScopeRemindersRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		var items []Reminder
		if r.URL.Query().Get("status") == "completed" {
			items, err = svc.ListCompleted(r.Context(), deviceID)
		} else {
			items, err = svc.ListUpcoming(r.Context(), deviceID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]reminderResponse, 0, len(items))
		for _, rem := range items {
			out = append(out, toReminderResponse(rem))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func completeReminderHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service, events *eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rem, ok := authorizeByReminder(w, r, svc, devicesSvc, grantsSvc)
		if !ok {
			return
		}

		updated, err := svc.Complete(r.Context(), rem.ID)
		if err != nil {
			http.Error(w, "reminder not found", http.StatusNotFound)
			return
		}

		_, _ = events.Log(r.Context(), "ui", "reminder_completed", "Reminder completed: "+updated.Description, eventlog.SeverityInfo)

		writeJSON(w, http.StatusOK, toReminderResponse(updated))
	}
}

func acknowledgeReminderHandler(svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rem, ok := authorizeByReminder(w, r, svc, devicesSvc, grantsSvc)
		if !ok {
			return
		}

		updated, err := svc.Acknowledge(r.Context(), rem.ID)
		if err != nil {
			http.Error(w, "reminder not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toReminderResponse(updated))
	}
}

// authorizeManage: owner o grant activo con reminders:manage sobre el device del path.
func authorizeManage(w http.ResponseWriter, r *http.Request, devicesSvc *devices.Service, grantsSvc *careteam.Service) (string, bool) {
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
		if err != nil || !careteam.HasScope(g, careteam.ScopeRemindersManage) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return "", false
		}
	}

	return deviceID, true
}

// authorizeByReminder resuelve permisos para operaciones por reminder ID:
// se busca el reminder, y el check corre contra su device.
func authorizeByReminder(w http.ResponseWriter, r *http.Request, svc *Service, devicesSvc *devices.Service, grantsSvc *careteam.Service) (Reminder, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Reminder{}, false
	}

	reminderID := chi.URLParam(r, "reminderID")
	rem, err := svc.repo.GetByID(r.Context(), strings.TrimSpace(reminderID))
	if err != nil {
		http.Error(w, "reminder not found", http.StatusNotFound)
		return Reminder{}, false
	}

	d, err := devicesSvc.GetByDeviceID(r.Context(), rem.DeviceID)
	if err != nil {
		http.Error(w, "device not found", http.StatusNotFound)
		return Reminder{}, false
	}

	if d.OwnerID != claims.CaregiverID {
		g, err := grantsSvc.GetActiveGrant(r.Context(), rem.DeviceID, claims.CaregiverID)
		if err != nil || !careteam.HasScope(g, careteam.ScopeRemindersManage) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return Reminder{}, false
		}
	}

	return rem, true
}

func toReminderResponse(r Reminder) reminderResponse {
	return reminderResponse{
		ID:           r.ID,
		DeviceID:     r.DeviceID,
		CreatedAt:    r.CreatedAt,
		Type:         r.Type,
		Description:  r.Description,
		ScheduledAt:  r.ScheduledAt,
		Recurrence:   string(r.Recurrence),
		Priority:     string(r.Priority),
		Completed:    r.Completed,
		CompletedAt:  r.CompletedAt,
		Sent:         r.Sent,
		Acknowledged: r.Acknowledged,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

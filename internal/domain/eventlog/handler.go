package eventlog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/events", listEventsHandler(svc))
}

type eventResponse struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
}

// listEventsHandler godoc
// @Summary Listar eventos del sistema
// @Description Lista eventos recientes desc. Filtros: hours (default 24), source y type (substring), severity (exacto).
// @Tags events
// @Produce json
// @Param hours query int false "Ventana en horas (default 24)"
// @Param source query string false "Substring del source"
// @Param type query string false "Substring del type"
// @Param severity query string false "info | warning | critical"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f := Filter{
			Source:   strings.TrimSpace(r.URL.Query().Get("source")),
			Type:     strings.TrimSpace(r.URL.Query().Get("type")),
			Severity: Severity(strings.TrimSpace(r.URL.Query().Get("severity"))),
		}
		if v := r.URL.Query().Get("hours"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				f.Hours = n
			}
		}

		items, err := svc.Recent(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, eventResponse{
				ID:          e.ID,
				Timestamp:   e.Timestamp,
				Source:      e.Source,
				Type:        e.Type,
				Description: e.Description,
				Severity:    e.Severity,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

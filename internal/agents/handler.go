package agents

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
)

func RegisterRoutes(r chi.Router, runner *Runner, events *eventlog.Service) {
	r.Post("/agents/{kind}/run", runAgentHandler(runner, events))
}

type runResponse struct {
	Status       string                `json:"status"`
	Message      string                `json:"message"`
	Result       *Report               `json:"result,omitempty"`
	Results      []Report              `json:"results,omitempty"`
	Errors       []string              `json:"errors,omitempty"`
	RecentEvents []recentEventResponse `json:"recent_events"`
}

type recentEventResponse struct {
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// runAgentHandler godoc
// @Summary Ejecutar un agent
// @Description Corre el agent indicado (health, safety, reminder, communication, research) o todos con kind=all. La respuesta incluye los eventos de la última hora del source correspondiente.
// @Tags agents
// @Produce json
// @Param kind path string true "health | safety | reminder | communication | research | all"
// @Success 200 {object} runResponse
// @Failure 400 {string} string "unknown agent"
// @Failure 502 {string} string "agent run failed"
// @Router /api/agents/{kind}/run [post]
func runAgentHandler(runner *Runner, events *eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := Kind(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "kind"))))
		if !ValidKind(kind) {
			http.Error(w, "unknown agent", http.StatusBadRequest)
			return
		}

		if kind == KindAll {
			reports, errs := runner.RunAll(r.Context())

			resp := runResponse{
				Status:       "success",
				Message:      "All agents completed their tasks",
				Results:      reports,
				RecentEvents: recentEvents(r, events, ""),
			}
			for _, err := range errs {
				resp.Errors = append(resp.Errors, err.Error())
			}
			if len(errs) > 0 {
				resp.Status = "partial"
			}

			writeJSON(w, http.StatusOK, resp)
			return
		}

		report, err := runner.RunOne(r.Context(), kind)
		if err != nil {
			http.Error(w, "agent run failed: "+err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, runResponse{
			Status:       "success",
			Message:      titleKind(kind) + " agent completed its task",
			Result:       &report,
			RecentEvents: recentEvents(r, events, string(kind)+"_agent"),
		})
	}
}

// recentEvents junta la actividad de la última hora para mostrarla
// junto al resultado del run. source vacío = todos los sources.
func recentEvents(r *http.Request, events *eventlog.Service, source string) []recentEventResponse {
	items, err := events.Recent(r.Context(), eventlog.Filter{Hours: 1, Source: source})
	if err != nil {
		return []recentEventResponse{}
	}

	out := make([]recentEventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, recentEventResponse{
			Timestamp:   e.Timestamp.Format("2006-01-02 15:04:05"),
			Source:      e.Source,
			Type:        e.Type,
			Description: e.Description,
			Severity:    string(e.Severity),
		})
	}
	return out
}

func titleKind(k Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

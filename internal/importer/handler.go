package importer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/middleware"
)

func RegisterRoutes(r chi.Router, im *Importer, events *eventlog.Service, dataDir string) {
	r.Post("/import", runImportHandler(im, events, dataDir))
}

type importResponse struct {
	Status string            `json:"status"`
	Files  map[string]Counts `json:"files"`
}

// runImportHandler godoc
// @Summary Importar CSVs del directorio de datos
// @Description Corre el importer sobre el data dir configurado. Devuelve counts por archivo (imported/skipped/errors). Filas duplicadas cuentan como skipped.
// @Tags import
// @Produce json
// @Success 200 {object} importResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "import failed"
// @Router /api/import [post]
func runImportHandler(im *Importer, events *eventlog.Service, dataDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.CaregiverID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		files, err := im.ImportDir(r.Context(), dataDir)
		if err != nil {
			http.Error(w, "import failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		total := 0
		for _, c := range files {
			total += c.Imported
		}
		_, _ = events.Log(r.Context(), "importer", "import_completed",
			fmt.Sprintf("CSV import finished: %d rows imported from %d files", total, len(files)),
			eventlog.SeverityInfo)

		writeJSON(w, http.StatusOK, importResponse{
			Status: "success",
			Files:  files,
		})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

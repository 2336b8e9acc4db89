package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prinik8/AIcare/internal/agents"
	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/domain/devices"
	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/importer"
	"github.com/prinik8/AIcare/internal/middleware"
	"github.com/prinik8/AIcare/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
}

// NewRouter arma el chi router completo sobre los servicios ya construidos.
// La selección de backend vive en BuildDeps; acá solo se cablean rutas.
func NewRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/dashboard", dashboardHandler(d))

		devices.RegisterRoutes(api, d.Devices, d.Grants)
		vitals.RegisterRoutes(api, d.Vitals, d.Devices, d.Grants)
		safety.RegisterRoutes(api, d.Safety, d.Devices, d.Grants)
		reminders.RegisterRoutes(api, d.Reminders, d.Devices, d.Grants, d.Events)
		careteam.RegisterRoutes(api, d.Grants, d.Devices)
		eventlog.RegisterRoutes(api, d.Events)
		agents.RegisterRoutes(api, d.Runner, d.Events)
		importer.RegisterRoutes(api, d.Importer, d.Events, d.DataDir)
	})

	return r
}

package router

import (
	"database/sql"

	mem "github.com/prinik8/AIcare/internal/adapters/storage/memory"
	pg "github.com/prinik8/AIcare/internal/adapters/storage/postgres"
	sq "github.com/prinik8/AIcare/internal/adapters/storage/sqlite"
	"github.com/prinik8/AIcare/internal/agents"
	"github.com/prinik8/AIcare/internal/config"
	"github.com/prinik8/AIcare/internal/domain/careteam"
	"github.com/prinik8/AIcare/internal/domain/devices"
	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/knowledge"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/importer"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

// Deps agrupa los servicios ya cableados. El router y los workers
// (mqtt, scheduler) comparten las mismas instancias.
type Deps struct {
	Devices   *devices.Service
	Vitals    *vitals.Service
	Safety    *safety.Service
	Reminders *reminders.Service
	Grants    *careteam.Service
	Events    *eventlog.Service
	Knowledge *knowledge.Store
	Runner    *agents.Runner
	Importer  *importer.Importer

	DataDir         string
	DefaultDeviceID string

	Log logger.Logger

	db *sql.DB
}

// Close libera la conexión de storage si la hay.
func (d Deps) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

type repos struct {
	devices   devices.Repository
	vitals    vitals.Repository
	safety    safety.Repository
	reminders reminders.Repository
	grants    careteam.Repository
	events    eventlog.Repository
	knowledge knowledge.Repository
}

// BuildDeps elige backend según config (DB_DSN => Postgres, si no SQLite
// local; si SQLite no abre, in-memory) y construye servicios y agents.
// gen/embedder pueden ser nil: los agents degradan a sus resúmenes fijos.
func BuildDeps(cfg config.Config, gen llm.Generator, embedder llm.Embedder, log logger.Logger) (Deps, error) {
	var (
		rs repos
		db *sql.DB
	)

	switch {
	case cfg.DBDSN != "":
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return Deps{}, err
		}
		db = opened
		rs = repos{
			devices:   pg.NewDevicesRepo(db),
			vitals:    pg.NewVitalsRepo(db),
			safety:    pg.NewSafetyRepo(db),
			reminders: pg.NewRemindersRepo(db),
			grants:    pg.NewCareTeamRepo(db),
			events:    pg.NewEventLogRepo(db),
			knowledge: pg.NewKnowledgeRepo(db),
		}
		log.Info("storage backend: postgres", nil)

	case cfg.SQLitePath != "":
		opened, err := sq.Open(cfg.SQLitePath)
		if err != nil {
			log.Warn("sqlite open failed, falling back to in-memory store", logger.Fields{
				"path":  cfg.SQLitePath,
				"error": err.Error(),
			})
			rs = memoryRepos()
		} else {
			db = opened
			rs = repos{
				devices:   sq.NewDevicesRepo(db),
				vitals:    sq.NewVitalsRepo(db),
				safety:    sq.NewSafetyRepo(db),
				reminders: sq.NewRemindersRepo(db),
				grants:    sq.NewCareTeamRepo(db),
				events:    sq.NewEventLogRepo(db),
				knowledge: sq.NewKnowledgeRepo(db),
			}
			log.Info("storage backend: sqlite", logger.Fields{"path": cfg.SQLitePath})
		}

	default:
		rs = memoryRepos()
		log.Info("storage backend: in-memory", nil)
	}

	devicesSvc := devices.NewService(rs.devices)
	vitalsSvc := vitals.NewService(rs.vitals)
	safetySvc := safety.NewService(rs.safety)
	remindersSvc := reminders.NewService(rs.reminders)
	grantsSvc := careteam.NewService(rs.grants)
	eventsSvc := eventlog.NewService(rs.events)
	knowledgeStore := knowledge.NewStore(rs.knowledge, embedder)

	runner := agents.NewRunner(eventsSvc, log,
		agents.NewHealthAgent(vitalsSvc, gen, log),
		agents.NewSafetyAgent(safetySvc, gen, log),
		agents.NewReminderAgent(remindersSvc, gen, log),
		agents.NewCommunicationAgent(vitalsSvc, safetySvc, remindersSvc, gen, log),
		agents.NewResearchAgent(knowledgeStore, gen, log),
	)

	return Deps{
		Devices:         devicesSvc,
		Vitals:          vitalsSvc,
		Safety:          safetySvc,
		Reminders:       remindersSvc,
		Grants:          grantsSvc,
		Events:          eventsSvc,
		Knowledge:       knowledgeStore,
		Runner:          runner,
		Importer:        importer.New(vitalsSvc, safetySvc, remindersSvc, log),
		DataDir:         cfg.DataDir,
		DefaultDeviceID: cfg.DefaultDeviceID,
		Log:             log,
		db:              db,
	}, nil
}

func memoryRepos() repos {
	return repos{
		devices:   mem.NewDeviceRepo(),
		vitals:    mem.NewVitalsRepo(),
		safety:    mem.NewSafetyRepo(),
		reminders: mem.NewRemindersRepo(),
		grants:    mem.NewCareteamRepo(),
		events:    mem.NewEventlogRepo(),
		knowledge: mem.NewKnowledgeRepo(),
	}
}

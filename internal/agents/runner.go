package agents

import (
	"context"
	"fmt"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/observability"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

// Runner despacha agents por kind y deja rastro en el eventlog.
type Runner struct {
	agents map[Kind]Agent
	events *eventlog.Service
	log    logger.Logger
}

func NewRunner(events *eventlog.Service, log logger.Logger, agents ...Agent) *Runner {
	byKind := make(map[Kind]Agent, len(agents))
	for _, a := range agents {
		byKind[Kind(a.Name())] = a
	}
	return &Runner{
		agents: byKind,
		events: events,
		log:    log,
	}
}

func (r *Runner) RunOne(ctx context.Context, kind Kind) (Report, error) {
	agent, ok := r.agents[kind]
	if !ok {
		return Report{}, ErrUnknownAgent
	}

	report, err := agent.Run(ctx)
	if err != nil {
		observability.RecordAgentRun(string(kind), "error")
		r.log.Error("agent run failed", logger.Fields{
			"agent": string(kind),
			"error": err.Error(),
		})
		return Report{}, err
	}

	observability.RecordAgentRun(string(kind), "ok")

	if _, err := r.events.Log(ctx, string(kind)+"_agent", "workflow_completed", report.Summary, eventlog.SeverityInfo); err != nil {
		r.log.Warn("agent eventlog write failed", logger.Fields{
			"agent": string(kind),
			"error": err.Error(),
		})
	}

	return report, nil
}

// RunAll corre todos los agents en orden fijo. Un agent que falla no
// frena al resto; sus errores vuelven junto con los reports que sí salieron.
func (r *Runner) RunAll(ctx context.Context) ([]Report, []error) {
	reports := make([]Report, 0, len(runOrder))
	var errs []error

	for _, kind := range runOrder {
		report, err := r.RunOne(ctx, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		reports = append(reports, report)
	}

	if _, err := r.events.Log(ctx, "all_agents", "workflow_completed", "Multiple agent workflows completed", eventlog.SeverityInfo); err != nil {
		r.log.Warn("agent eventlog write failed", logger.Fields{
			"agent": "all",
			"error": err.Error(),
		})
	}

	return reports, errs
}

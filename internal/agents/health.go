package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

const healthFallbackSummary = "Health monitoring completed successfully. Found no critical health concerns in the latest metrics."

// HealthAgent revisa las últimas lecturas de cada dispositivo y pide al
// LLM una evaluación corta. Sin LLM degrada al resumen fijo.
type HealthAgent struct {
	vitals *vitals.Service
	gen    llm.Generator
	log    logger.Logger
}

func NewHealthAgent(v *vitals.Service, gen llm.Generator, log logger.Logger) *HealthAgent {
	return &HealthAgent{vitals: v, gen: gen, log: log}
}

func (a *HealthAgent) Name() string { return string(KindHealth) }

func (a *HealthAgent) Run(ctx context.Context) (Report, error) {
	deviceIDs, err := a.vitals.DeviceIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("health agent: list devices: %w", err)
	}

	details := make([]string, 0, len(deviceIDs))
	totalReadings := 0
	totalAlerts := 0

	for _, id := range deviceIDs {
		readings, err := a.vitals.Latest(ctx, id, 10)
		if err != nil {
			a.log.Warn("health agent: latest readings failed", logger.Fields{
				"device_id": id,
				"error":     err.Error(),
			})
			continue
		}

		alerts := 0
		for _, r := range readings {
			if r.AlertTriggered {
				alerts++
			}
		}

		totalReadings += len(readings)
		totalAlerts += alerts
		details = append(details, fmt.Sprintf("device %s: %d/%d recent readings with alerts", id, alerts, len(readings)))
	}

	report := Report{
		Agent:   a.Name(),
		Details: details,
	}

	if a.gen == nil {
		report.Summary = healthFallbackSummary
		return report, nil
	}

	prompt := fmt.Sprintf(
		"You are a health monitoring assistant for elderly care. "+
			"Across %d devices there are %d recent readings, %d of them with threshold alerts.\n%s\n"+
			"Write a one-paragraph assessment for the caregiver.",
		len(deviceIDs), totalReadings, totalAlerts, strings.Join(details, "\n"),
	)

	summary, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn("health agent: llm unavailable, using fallback", logger.Fields{"error": err.Error()})
		report.Summary = healthFallbackSummary
		return report, nil
	}

	report.Summary = summary
	return report, nil
}

package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

const safetyFallbackSummary = "Safety check completed. No fall events detected in the last 24 hours."

// SafetyAgent busca caídas sin resolver de las últimas 24 horas.
type SafetyAgent struct {
	safety *safety.Service
	gen    llm.Generator
	log    logger.Logger
	now    func() time.Time
}

func NewSafetyAgent(s *safety.Service, gen llm.Generator, log logger.Logger) *SafetyAgent {
	return &SafetyAgent{safety: s, gen: gen, log: log, now: time.Now}
}

func (a *SafetyAgent) Name() string { return string(KindSafety) }

func (a *SafetyAgent) Run(ctx context.Context) (Report, error) {
	deviceIDs, err := a.safety.DeviceIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("safety agent: list devices: %w", err)
	}

	cutoff := a.now().Add(-24 * time.Hour)
	details := make([]string, 0)
	falls := 0

	for _, id := range deviceIDs {
		events, err := a.safety.ListByDevice(ctx, id, safety.ListFilter{Limit: 200, OnlyUnresolved: true})
		if err != nil {
			a.log.Warn("safety agent: list events failed", logger.Fields{
				"device_id": id,
				"error":     err.Error(),
			})
			continue
		}

		for _, e := range events {
			if !e.FallDetected || e.Timestamp.Before(cutoff) {
				continue
			}
			falls++
			details = append(details, fmt.Sprintf(
				"device %s: unresolved fall at %s (severity %s, inactivity %ds)",
				id, e.Timestamp.Format(time.RFC3339), e.Severity, e.PostFallInactivitySeconds,
			))
		}
	}

	report := Report{
		Agent:   a.Name(),
		Details: details,
	}

	if a.gen == nil {
		report.Summary = safetyFallbackSummary
		return report, nil
	}

	prompt := fmt.Sprintf(
		"You are a safety monitoring assistant for elderly care. "+
			"There are %d unresolved fall events in the last 24 hours.\n%s\n"+
			"Write a one-paragraph safety assessment for the caregiver.",
		falls, strings.Join(details, "\n"),
	)

	summary, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn("safety agent: llm unavailable, using fallback", logger.Fields{"error": err.Error()})
		report.Summary = safetyFallbackSummary
		return report, nil
	}

	report.Summary = summary
	return report, nil
}

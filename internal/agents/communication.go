package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

const communicationFallbackSummary = "Communication task completed. Generated daily summary for caregiver."

// CommunicationAgent arma el resumen diario para el caregiver cruzando
// los tres dominios de monitoreo.
type CommunicationAgent struct {
	vitals    *vitals.Service
	safety    *safety.Service
	reminders *reminders.Service
	gen       llm.Generator
	log       logger.Logger
	now       func() time.Time
}

func NewCommunicationAgent(v *vitals.Service, s *safety.Service, r *reminders.Service, gen llm.Generator, log logger.Logger) *CommunicationAgent {
	return &CommunicationAgent{
		vitals:    v,
		safety:    s,
		reminders: r,
		gen:       gen,
		log:       log,
		now:       time.Now,
	}
}

func (a *CommunicationAgent) Name() string { return string(KindCommunication) }

func (a *CommunicationAgent) Run(ctx context.Context) (Report, error) {
	deviceIDs, err := a.vitals.DeviceIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("communication agent: list devices: %w", err)
	}

	details := make([]string, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		readings, err := a.vitals.Latest(ctx, id, 10)
		if err != nil {
			a.log.Warn("communication agent: latest readings failed", logger.Fields{
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

		unresolved := 0
		events, err := a.safety.ListByDevice(ctx, id, safety.ListFilter{Limit: 200, OnlyUnresolved: true})
		if err == nil {
			unresolved = len(events)
		}

		pending := 0
		upcoming, err := a.reminders.ListUpcoming(ctx, id)
		if err == nil {
			pending = len(upcoming)
		}

		details = append(details, fmt.Sprintf(
			"device %s: %d vitals alerts in last %d readings, %d unresolved safety events, %d pending reminders",
			id, alerts, len(readings), unresolved, pending,
		))
	}

	report := Report{
		Agent:   a.Name(),
		Details: details,
	}

	if a.gen == nil {
		report.Summary = communicationFallbackSummary
		return report, nil
	}

	prompt := fmt.Sprintf(
		"You are writing the daily caregiver summary for an elderly care "+
			"monitoring system (date %s). Per-device status:\n%s\n"+
			"Write a warm, concise daily summary for the caregiver.",
		a.now().Format("2006-01-02"), strings.Join(details, "\n"),
	)

	summary, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn("communication agent: llm unavailable, using fallback", logger.Fields{"error": err.Error()})
		report.Summary = communicationFallbackSummary
		return report, nil
	}

	report.Summary = summary
	return report, nil
}

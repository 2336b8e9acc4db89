package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

const reminderFallbackSummary = "Reminder check completed. Found upcoming medication reminders for today."

// ReminderAgent junta los recordatorios vencidos y los que quedan para hoy.
type ReminderAgent struct {
	reminders *reminders.Service
	gen       llm.Generator
	log       logger.Logger
	now       func() time.Time
}

func NewReminderAgent(r *reminders.Service, gen llm.Generator, log logger.Logger) *ReminderAgent {
	return &ReminderAgent{reminders: r, gen: gen, log: log, now: time.Now}
}

func (a *ReminderAgent) Name() string { return string(KindReminder) }

func (a *ReminderAgent) Run(ctx context.Context) (Report, error) {
	now := a.now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	due, err := a.reminders.DueBefore(ctx, now)
	if err != nil {
		return Report{}, fmt.Errorf("reminder agent: due reminders: %w", err)
	}

	details := make([]string, 0, len(due))
	for _, r := range due {
		details = append(details, fmt.Sprintf(
			"device %s: overdue %s reminder %q (scheduled %s, priority %s)",
			r.DeviceID, r.Type, r.Description, r.ScheduledAt.Format("15:04"), r.Priority,
		))
	}

	// Lo que queda del día, por dispositivo.
	deviceIDs, err := a.reminders.DeviceIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reminder agent: list devices: %w", err)
	}

	todayCount := 0
	for _, id := range deviceIDs {
		upcoming, err := a.reminders.ListUpcoming(ctx, id)
		if err != nil {
			a.log.Warn("reminder agent: list upcoming failed", logger.Fields{
				"device_id": id,
				"error":     err.Error(),
			})
			continue
		}
		for _, r := range upcoming {
			if r.ScheduledAt.After(now) && !r.ScheduledAt.After(endOfDay) {
				todayCount++
				details = append(details, fmt.Sprintf(
					"device %s: today at %s, %s %q",
					id, r.ScheduledAt.Format("15:04"), r.Type, r.Description,
				))
			}
		}
	}

	report := Report{
		Agent:   a.Name(),
		Details: details,
	}

	if a.gen == nil {
		report.Summary = reminderFallbackSummary
		return report, nil
	}

	prompt := fmt.Sprintf(
		"You are a reminder assistant for elderly care. "+
			"There are %d overdue reminders and %d more scheduled for the rest of today.\n%s\n"+
			"Write a short reminder briefing for the caregiver.",
		len(due), todayCount, strings.Join(details, "\n"),
	)

	summary, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn("reminder agent: llm unavailable, using fallback", logger.Fields{"error": err.Error()})
		report.Summary = reminderFallbackSummary
		return report, nil
	}

	report.Summary = summary
	return report, nil
}

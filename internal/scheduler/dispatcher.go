// Package scheduler corre el loop que entrega recordatorios vencidos.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/observability"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

const defaultInterval = 30 * time.Second

// Dispatcher marca como enviados los reminders con horario vencido,
// cada interval, hasta que el ctx se cancela.
type Dispatcher struct {
	reminders *reminders.Service
	events    *eventlog.Service
	log       logger.Logger
	interval  time.Duration
	now       func() time.Time
}

func NewDispatcher(r *reminders.Service, e *eventlog.Service, log logger.Logger, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Dispatcher{
		reminders: r,
		events:    e,
		log:       log,
		interval:  interval,
		now:       time.Now,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("reminder dispatcher started", logger.Fields{"interval": d.interval.String()})

	for {
		select {
		case <-ctx.Done():
			d.log.Info("reminder dispatcher stopped", nil)
			return
		case <-ticker.C:
			if n, err := d.DispatchDue(ctx); err != nil {
				d.log.Error("reminder dispatch failed", logger.Fields{"error": err.Error()})
			} else if n > 0 {
				d.log.Info("reminders dispatched", logger.Fields{"count": n})
			}
		}
	}
}

// DispatchDue procesa una pasada y devuelve cuántos reminders entregó.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	due, err := d.reminders.DueBefore(ctx, d.now())
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, r := range due {
		if _, err := d.reminders.MarkSent(ctx, r.ID); err != nil {
			d.log.Warn("mark sent failed", logger.Fields{
				"reminder_id": r.ID,
				"error":       err.Error(),
			})
			continue
		}

		dispatched++
		observability.RecordReminderDispatched()

		desc := fmt.Sprintf("Reminder sent to device %s: %s", r.DeviceID, r.Description)
		severity := eventlog.SeverityInfo
		if r.Priority == reminders.PriorityHigh {
			severity = eventlog.SeverityWarning
		}
		if _, err := d.events.Log(ctx, "scheduler", "reminder_sent", desc, severity); err != nil {
			d.log.Warn("dispatch eventlog write failed", logger.Fields{"error": err.Error()})
		}
	}

	return dispatched, nil
}

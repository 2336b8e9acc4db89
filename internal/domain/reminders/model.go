package reminders

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Recurrence string

const (
	RecurrenceNone   Recurrence = ""
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Reminder es un recordatorio programado para un dispositivo:
// medicación, cita médica, hidratación, ejercicio.
type Reminder struct {
	ID       string
	DeviceID string

	CreatedAt time.Time

	Type        string // "medication", "appointment", "hydration", ...
	Description string

	ScheduledAt time.Time
	Recurrence  Recurrence
	Priority    Priority

	Completed   bool
	CompletedAt *time.Time

	Sent         bool
	Acknowledged bool
}

package eventlog

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event es una entrada del log de sistema: accesos al dashboard,
// workflows de agents, imports, alertas despachadas.
type Event struct {
	ID          string
	Timestamp   time.Time
	Source      string // "ui", "health_agent", "importer", "mqtt", ...
	Type        string // "dashboard_access", "workflow_completed", ...
	Description string
	Severity    Severity
}

// Filter acota Recent. Source y Type matchean por substring,
// Severity exacto (igual que las queries del dashboard original).
type Filter struct {
	Hours    int // default 24
	Source   string
	Type     string
	Severity Severity
}

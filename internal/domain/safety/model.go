package safety

import "time"

type ImpactForce string

const (
	ImpactNone   ImpactForce = ""
	ImpactLow    ImpactForce = "low"
	ImpactMedium ImpactForce = "medium"
	ImpactHigh   ImpactForce = "high"
)

type Severity string

const (
	SeverityNone     Severity = ""
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SafetyEvent es un evento de seguridad reportado por el wearable:
// caída detectada, actividad inusual, etc. La detección ocurre en el
// dispositivo; acá solo se registra y clasifica.
type SafetyEvent struct {
	ID       string
	DeviceID string

	Timestamp time.Time

	MovementActivity string // "Walking", "No Movement", "Lying", ...
	FallDetected     bool
	ImpactForce      ImpactForce
	// Segundos sin movimiento después de una caída.
	PostFallInactivitySeconds int
	Location                  string

	AlertTriggered    bool
	CaregiverNotified bool

	Severity   Severity
	Resolved   bool
	ResolvedAt *time.Time
}

// ListFilter acota ListByDevice.
type ListFilter struct {
	OnlyUnresolved bool
	Limit          int
}

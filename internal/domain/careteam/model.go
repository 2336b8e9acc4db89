package careteam

import "time"

type Scope string

const (
	ScopeDeviceRead      Scope = "device:read"
	ScopeVitalsRead      Scope = "vitals:read"
	ScopeSafetyRead      Scope = "safety:read"
	ScopeSafetyResolve   Scope = "safety:resolve"
	ScopeRemindersRead   Scope = "reminders:read"
	ScopeRemindersManage Scope = "reminders:manage"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant otorga a un caregiver acceso con scopes sobre un dispositivo.
// Reemplaza al mapeo caregiver→patients del modelo original.
type Grant struct {
	ID          string
	DeviceID    string
	OwnerID     string
	CaregiverID string

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

func validScope(s Scope) bool {
	switch s {
	case ScopeDeviceRead, ScopeVitalsRead, ScopeSafetyRead,
		ScopeSafetyResolve, ScopeRemindersRead, ScopeRemindersManage:
		return true
	default:
		return false
	}
}

// HasScope reporta si el grant incluye el scope pedido.
func HasScope(g Grant, s Scope) bool {
	for _, have := range g.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

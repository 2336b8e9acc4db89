package devices

import "time"

// Device representa un wearable monitoreado. La identificación es por
// dispositivo (D1000, D2000, ...), no por persona: el perfil guarda solo
// lo mínimo para que un caregiver actúe ante una alerta.
type Device struct {
	ID       string // uuid interno
	DeviceID string // identificador externo del wearable, único

	Label    string // alias legible ("Living room wearable", "Sr. Smith")
	Location string

	EmergencyContact string
	Conditions       string // condiciones médicas relevantes, texto libre
	Notes            string

	OwnerID string // quien registró el dispositivo (admin/owner del care team)

	RegisteredAt time.Time
	UpdatedAt    time.Time
}

package vitals

import "time"

// Reading es una medición de signos vitales reportada por un wearable.
// Valor 0 = métrica no medida en esa toma (los CSV originales traen huecos).
type Reading struct {
	ID       string
	DeviceID string

	Timestamp time.Time

	HeartRate      int
	HeartRateAlert bool

	BPSystolic  int
	BPDiastolic int
	BPAlert     bool

	Glucose      int
	GlucoseAlert bool

	SpO2      int
	SpO2Alert bool

	AlertTriggered    bool
	CaregiverNotified bool
}

// ListFilter acota ListByDevice.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

package vitals

// Thresholds define los límites de alerta por métrica. Los defaults son
// consistentes con los flags de los datos históricos importados
// (145/90 dispara presión, 125/85 no; SpO2 94 no dispara, etc).
type Thresholds struct {
	HeartRateLow  int
	HeartRateHigh int

	SystolicHigh  int
	DiastolicHigh int

	GlucoseLow  int
	GlucoseHigh int

	SpO2Low int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRateLow:  50,
		HeartRateHigh: 110,
		SystolicHigh:  140,
		DiastolicHigh: 90,
		GlucoseLow:    70,
		GlucoseHigh:   140,
		SpO2Low:       92,
	}
}

// Evaluate setea los flags de alerta de la lectura según los thresholds.
// Una métrica en 0 (no medida) nunca alerta.
func (t Thresholds) Evaluate(r *Reading) {
	if r.HeartRate > 0 {
		r.HeartRateAlert = r.HeartRate < t.HeartRateLow || r.HeartRate > t.HeartRateHigh
	}
	if r.BPSystolic > 0 || r.BPDiastolic > 0 {
		r.BPAlert = r.BPSystolic > t.SystolicHigh || r.BPDiastolic > t.DiastolicHigh
	}
	if r.Glucose > 0 {
		r.GlucoseAlert = r.Glucose < t.GlucoseLow || r.Glucose > t.GlucoseHigh
	}
	if r.SpO2 > 0 {
		r.SpO2Alert = r.SpO2 < t.SpO2Low
	}
	r.AlertTriggered = r.HeartRateAlert || r.BPAlert || r.GlucoseAlert || r.SpO2Alert
}

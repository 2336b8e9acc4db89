package vitals

// ChartData es el payload que consume Chart.js en el front.
// Mantiene la forma del dashboard original: series por métrica, presión
// con systolic/diastolic compartiendo labels, métricas en 0 se omiten.
type ChartData struct {
	HeartRate     Series         `json:"heart_rate"`
	BloodPressure PressureSeries `json:"blood_pressure"`
	Glucose       Series         `json:"glucose_level"`
	SpO2          Series         `json:"oxygen_saturation"`
}

type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

type PressureSeries struct {
	Labels    []string `json:"labels"`
	Systolic  []int    `json:"systolic"`
	Diastolic []int    `json:"diastolic"`
}

const chartTimeLayout = "2006-01-02 15:04"

// BuildChartData arma las series en orden cronológico a partir de lecturas
// ordenadas desc (como las devuelve ListByDevice).
func BuildChartData(readings []Reading) ChartData {
	out := ChartData{
		HeartRate:     Series{Labels: []string{}, Values: []int{}},
		BloodPressure: PressureSeries{Labels: []string{}, Systolic: []int{}, Diastolic: []int{}},
		Glucose:       Series{Labels: []string{}, Values: []int{}},
		SpO2:          Series{Labels: []string{}, Values: []int{}},
	}

	// Invertir a cronológico
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		label := r.Timestamp.Format(chartTimeLayout)

		if r.HeartRate > 0 {
			out.HeartRate.Labels = append(out.HeartRate.Labels, label)
			out.HeartRate.Values = append(out.HeartRate.Values, r.HeartRate)
		}

		// La presión siempre entra (el front tolera ceros), igual que el original.
		out.BloodPressure.Labels = append(out.BloodPressure.Labels, label)
		out.BloodPressure.Systolic = append(out.BloodPressure.Systolic, r.BPSystolic)
		out.BloodPressure.Diastolic = append(out.BloodPressure.Diastolic, r.BPDiastolic)

		if r.Glucose > 0 {
			out.Glucose.Labels = append(out.Glucose.Labels, label)
			out.Glucose.Values = append(out.Glucose.Values, r.Glucose)
		}

		if r.SpO2 > 0 {
			out.SpO2.Labels = append(out.SpO2.Labels, label)
			out.SpO2.Values = append(out.SpO2.Values, r.SpO2)
		}
	}

	return out
}

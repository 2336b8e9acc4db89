// Package seed carga los datos de demo (D1000, D2000, D3000) que usa
// el dashboard recién instalado. Correr dos veces es inofensivo: los
// duplicados se saltan.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prinik8/AIcare/internal/domain/devices"
	"github.com/prinik8/AIcare/internal/domain/knowledge"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/router"
)

// DefaultOwnerID es el caregiver dueño de los dispositivos de demo.
// Coincide con el header X-Debug-Caregiver-ID típico en modo dev.
const DefaultOwnerID = "caregiver-1"

var demoDevices = []devices.RegisterInput{
	{DeviceID: "D1000", Label: "Wearable demo 1", Location: "Bedroom"},
	{DeviceID: "D2000", Label: "Wearable demo 2", Location: "Living Room"},
	{DeviceID: "D3000", Label: "Wearable demo 3", Location: "Living Room"},
}

// Run registra los dispositivos de demo y carga una lectura, un evento
// de seguridad y un recordatorio para D2000 y D3000.
func Run(ctx context.Context, d router.Deps, ownerID string) error {
	if ownerID == "" {
		ownerID = DefaultOwnerID
	}

	for _, in := range demoDevices {
		if _, err := d.Devices.Register(ctx, ownerID, in); err != nil {
			if errors.Is(err, devices.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed: register %s: %w", in.DeviceID, err)
		}
		d.Log.Info("seed: device registered", logger.Fields{"device_id": in.DeviceID})
	}

	now := time.Now()

	for _, deviceID := range []string{"D2000", "D3000"} {
		if err := seedDevice(ctx, d, deviceID, now); err != nil {
			return err
		}
	}

	seedKnowledge(ctx, d)

	return nil
}

func seedDevice(ctx context.Context, d router.Deps, deviceID string, now time.Time) error {
	healthy := deviceID == "D2000"

	vin := vitals.RecordInput{
		Timestamp:   now.Add(-2 * time.Hour),
		HeartRate:   82,
		BPSystolic:  145,
		BPDiastolic: 90,
		Glucose:     130,
		SpO2:        94,
		PresetFlags: true,
		Flags: vitals.PresetAlertFlags{
			BPAlert:           true,
			AlertTriggered:    true,
			CaregiverNotified: true,
		},
	}
	if healthy {
		vin = vitals.RecordInput{
			Timestamp:   now.Add(-2 * time.Hour),
			HeartRate:   75,
			BPSystolic:  125,
			BPDiastolic: 85,
			Glucose:     110,
			SpO2:        97,
			PresetFlags: true,
		}
	}
	if _, err := d.Vitals.Record(ctx, deviceID, vin); err != nil && !errors.Is(err, vitals.ErrDuplicate) {
		return fmt.Errorf("seed: vitals %s: %w", deviceID, err)
	}

	sin := safety.RecordInput{
		Timestamp:                 now.Add(-3 * time.Hour),
		MovementActivity:          "Abnormal",
		FallDetected:              true,
		ImpactForce:               safety.ImpactMedium,
		PostFallInactivitySeconds: 120,
		Location:                  "Living Room",
		AlertTriggered:            true,
		CaregiverNotified:         true,
	}
	if healthy {
		sin = safety.RecordInput{
			Timestamp:        now.Add(-3 * time.Hour),
			MovementActivity: "Normal",
			ImpactForce:      safety.ImpactLow,
			Location:         "Living Room",
		}
	}
	event, err := d.Safety.Record(ctx, deviceID, sin)
	if err != nil && !errors.Is(err, safety.ErrDuplicate) {
		return fmt.Errorf("seed: safety %s: %w", deviceID, err)
	}
	if err == nil && healthy {
		// El evento de D2000 viene ya atendido.
		if _, err := d.Safety.Resolve(ctx, event.ID); err != nil {
			return fmt.Errorf("seed: resolve %s: %w", deviceID, err)
		}
	}

	rin := reminders.CreateInput{
		Type:        "appointment",
		Description: "Doctor appointment",
		ScheduledAt: now.Add(3 * time.Hour),
		Recurrence:  reminders.RecurrenceWeekly,
	}
	if healthy {
		rin = reminders.CreateInput{
			Type:        "medication",
			Description: "Take blood pressure medication",
			ScheduledAt: now.Add(3 * time.Hour),
			Recurrence:  reminders.RecurrenceDaily,
		}
	}
	if _, err := d.Reminders.Create(ctx, deviceID, rin); err != nil && !errors.Is(err, reminders.ErrDuplicate) {
		return fmt.Errorf("seed: reminder %s: %w", deviceID, err)
	}

	return nil
}

// seedKnowledge precarga notas para el research agent. Sin embedder
// configurado (Ollama apagado) se salta sin romper el seed.
func seedKnowledge(ctx context.Context, d router.Deps) {
	if count, err := d.Knowledge.Count(ctx); err != nil || count > 0 {
		return
	}

	notes := []struct {
		content string
		topic   string
	}{
		{
			content: "Hypertension in elderly patients is best managed with a combination of low-sodium diet, regular light exercise and consistent medication adherence. Blood pressure above 140/90 warrants caregiver follow-up.",
			topic:   "hypertension",
		},
		{
			content: "Falls are the leading cause of injury among adults over 65. Post-fall inactivity longer than a minute is a strong indicator that assistance is required.",
			topic:   "falls",
		},
		{
			content: "Oxygen saturation below 95% in elderly patients at rest can indicate respiratory issues and should be rechecked within the hour.",
			topic:   "spo2",
		},
	}

	for _, n := range notes {
		if _, err := d.Knowledge.Add(ctx, n.content, map[string]string{"topic": n.topic}); err != nil {
			if !errors.Is(err, knowledge.ErrNoEmbedder) {
				d.Log.Warn("seed: knowledge note skipped", logger.Fields{"error": err.Error()})
			}
			return
		}
	}
}

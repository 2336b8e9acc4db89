package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	mem "github.com/prinik8/AIcare/internal/adapters/storage/memory"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

const healthCSV = `Device-ID/User-ID,Timestamp,Heart Rate,Heart Rate Below/Above Threshold (Yes/No),Blood Pressure,Blood Pressure Below/Above Threshold (Yes/No),Glucose Levels,Glucose Levels Below/Above Threshold (Yes/No),Oxygen Saturation (SpO₂%),SpO₂ Below Threshold (Yes/No),Alert Triggered (Yes/No),Caregiver Notified (Yes/No)
D1000,1/22/2025 9:15,75,No,120/80 mmHg,No,110,No,97,No,No,No
D1000,1/22/2025 10:15,130,Yes,145/90 mmHg,Yes,160,Yes,89,Yes,Yes,Yes
`

const safetyCSV = `Device-ID/User-ID,Timestamp,Movement Activity,Fall Detected (Yes/No),Impact Force Level,Post-Fall Inactivity Duration (Seconds),Location,Alert Triggered (Yes/No),Caregiver Notified (Yes/No)
D1000,2025-01-22 09:15:00,Walking,No,-,0,Kitchen,No,No
D1000,2025-01-22 10:15:00,No Movement,Yes,High,300,Bathroom,Yes,Yes
`

const reminderCSV = `Device-ID/User-ID,Timestamp,Reminder Type,Scheduled Time,Reminder Sent (Yes/No),Acknowledged (Yes/No)
D1000,2025-01-22 08:00:00,Medication,08:30:00,Yes,No
D1000,2025-01-22 08:00:00,Appointment,14:00:00,No,No
`

type fixture struct {
	im        *Importer
	vitals    *vitals.Service
	safety    *safety.Service
	reminders *reminders.Service
}

func newFixture() fixture {
	v := vitals.NewService(mem.NewVitalsRepo())
	s := safety.NewService(mem.NewSafetyRepo())
	r := reminders.NewService(mem.NewRemindersRepo())
	return fixture{
		im:        New(v, s, r, logger.Nop()),
		vitals:    v,
		safety:    s,
		reminders: r,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectType(t *testing.T) {
	require.Equal(t, KindHealth, DetectType([]string{"Device-ID/User-ID", "Heart Rate", "Blood Pressure"}))
	require.Equal(t, KindSafety, DetectType([]string{"Device-ID/User-ID", "Fall Detected (Yes/No)", "Impact Force Level"}))
	require.Equal(t, KindReminder, DetectType([]string{"Device-ID/User-ID", "Reminder Type", "Scheduled Time"}))
	require.Equal(t, KindUnknown, DetectType([]string{"foo", "bar"}))
}

func TestImportFile_Health(t *testing.T) {
	fx := newFixture()
	path := writeFile(t, t.TempDir(), "health_monitoring.csv", healthCSV)

	kind, counts, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, KindHealth, kind)
	require.Equal(t, Counts{Imported: 2}, counts)

	readings, err := fx.vitals.ListByDevice(context.Background(), "D1000", vitals.ListFilter{})
	require.NoError(t, err)
	require.Len(t, readings, 2)

	// Desc: la segunda fila (10:15) viene primero
	alerting := readings[0]
	require.Equal(t, 130, alerting.HeartRate)
	require.Equal(t, 145, alerting.BPSystolic)
	require.Equal(t, 90, alerting.BPDiastolic)
	require.True(t, alerting.AlertTriggered)
	require.True(t, alerting.CaregiverNotified)

	clean := readings[1]
	require.Equal(t, 120, clean.BPSystolic)
	require.Equal(t, 80, clean.BPDiastolic)
	require.False(t, clean.AlertTriggered)
}

func TestImportFile_Health_RerunSkipsDuplicates(t *testing.T) {
	fx := newFixture()
	path := writeFile(t, t.TempDir(), "health_monitoring.csv", healthCSV)

	_, _, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)

	_, counts, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, Counts{Skipped: 2}, counts)
}

func TestImportFile_Safety(t *testing.T) {
	fx := newFixture()
	path := writeFile(t, t.TempDir(), "safety_monitoring.csv", safetyCSV)

	kind, counts, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, KindSafety, kind)
	require.Equal(t, Counts{Imported: 2}, counts)

	events, err := fx.safety.ListByDevice(context.Background(), "D1000", safety.ListFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	fall := events[0]
	require.True(t, fall.FallDetected)
	require.Equal(t, safety.ImpactHigh, fall.ImpactForce)
	require.Equal(t, 300, fall.PostFallInactivitySeconds)
	require.Equal(t, safety.SeverityCritical, fall.Severity)

	// "-" en impact force => none
	walk := events[1]
	require.Equal(t, safety.ImpactNone, walk.ImpactForce)
	require.False(t, walk.FallDetected)
}

func TestImportFile_Reminders(t *testing.T) {
	fx := newFixture()
	path := writeFile(t, t.TempDir(), "daily_reminder.csv", reminderCSV)

	kind, counts, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, KindReminder, kind)
	require.Equal(t, Counts{Imported: 2}, counts)

	items, err := fx.reminders.ListUpcoming(context.Background(), "D1000")
	require.NoError(t, err)
	require.Len(t, items, 2)

	med := items[0]
	require.Equal(t, "Medication", med.Type)
	require.Equal(t, "Medication reminder", med.Description)
	require.Equal(t, reminders.PriorityHigh, med.Priority)
	require.True(t, med.Sent)
	// Fecha del Timestamp + hora del Scheduled Time
	require.Equal(t, "2025-01-22 08:30", med.ScheduledAt.Format("2006-01-02 15:04"))

	appt := items[1]
	require.Equal(t, reminders.PriorityMedium, appt.Priority)
	require.Equal(t, "2025-01-22 14:00", appt.ScheduledAt.Format("2006-01-02 15:04"))
}

func TestImportFile_BadRowIsIsolated(t *testing.T) {
	fx := newFixture()

	// Segunda fila sin device ID: error aislado, la tercera se importa igual
	csv := `Device-ID/User-ID,Timestamp,Heart Rate,Blood Pressure,Glucose Levels,Oxygen Saturation (SpO₂%),Alert Triggered (Yes/No),Caregiver Notified (Yes/No)
D1000,1/22/2025 9:15,75,120/80 mmHg,110,97,No,No
,1/22/2025 10:15,80,120/80 mmHg,110,97,No,No
D1000,1/22/2025 11:15,78,118/79 mmHg,105,98,No,No
`
	path := writeFile(t, t.TempDir(), "health.csv", csv)

	_, counts, err := fx.im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, Counts{Imported: 2, Errors: 1}, counts)
}

func TestImportFile_UnknownFormat(t *testing.T) {
	fx := newFixture()
	path := writeFile(t, t.TempDir(), "random.csv", "a,b,c\n1,2,3\n")

	_, _, err := fx.im.ImportFile(context.Background(), path)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestImportDir_SkipsUnknownFiles(t *testing.T) {
	fx := newFixture()
	dir := t.TempDir()

	writeFile(t, dir, "health_monitoring.csv", healthCSV)
	writeFile(t, dir, "safety_monitoring.csv", safetyCSV)
	writeFile(t, dir, "daily_reminder.csv", reminderCSV)
	writeFile(t, dir, "notes.csv", "a,b\n1,2\n")

	results, err := fx.im.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, Counts{Imported: 2}, results["health_monitoring.csv"])
	require.Equal(t, Counts{Imported: 2}, results["safety_monitoring.csv"])
	require.Equal(t, Counts{Imported: 2}, results["daily_reminder.csv"])
	require.NotContains(t, results, "notes.csv")
}

func TestParseBloodPressure(t *testing.T) {
	sys, dia := parseBloodPressure("120/80 mmHg")
	require.Equal(t, 120, sys)
	require.Equal(t, 80, dia)

	sys, dia = parseBloodPressure("145/90")
	require.Equal(t, 145, sys)
	require.Equal(t, 90, dia)

	sys, dia = parseBloodPressure("")
	require.Zero(t, sys)
	require.Zero(t, dia)

	sys, dia = parseBloodPressure("120/")
	require.Equal(t, 120, sys)
	require.Zero(t, dia)
}

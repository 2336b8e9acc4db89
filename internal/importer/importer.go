// Package importer carga los CSV históricos de monitoreo (salud,
// seguridad, recordatorios) a los dominios correspondientes.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/observability"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

type FileKind string

const (
	KindHealth   FileKind = "health"
	KindSafety   FileKind = "safety"
	KindReminder FileKind = "reminder"
	KindUnknown  FileKind = "unknown"
)

var ErrUnknownFormat = errors.New("unknown csv format")

// Counts resume una corrida de import por archivo.
type Counts struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // duplicados
	Errors   int `json:"errors"`  // filas malas, aisladas
}

type Importer struct {
	vitals    *vitals.Service
	safety    *safety.Service
	reminders *reminders.Service
	log       logger.Logger
	now       func() time.Time
}

func New(v *vitals.Service, s *safety.Service, r *reminders.Service, log logger.Logger) *Importer {
	return &Importer{
		vitals:    v,
		safety:    s,
		reminders: r,
		log:       log,
		now:       time.Now,
	}
}

// DetectType clasifica un CSV por sus headers (mismos indicadores que
// el script original).
func DetectType(headers []string) FileKind {
	has := func(names ...string) bool {
		for _, h := range headers {
			for _, n := range names {
				if strings.Contains(h, n) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("Heart Rate", "Blood Pressure", "Glucose", "SpO₂"):
		return KindHealth
	case has("Fall Detected", "Movement Activity", "Impact Force"):
		return KindSafety
	case has("Reminder Type", "Scheduled Time"):
		return KindReminder
	default:
		return KindUnknown
	}
}

// ImportDir procesa todos los .csv de un directorio. Archivos de tipo
// desconocido se saltean con warning.
func (im *Importer) ImportDir(ctx context.Context, dir string) (map[string]Counts, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	results := make(map[string]Counts, len(matches))
	for _, path := range matches {
		kind, counts, err := im.ImportFile(ctx, path)
		if err != nil {
			if errors.Is(err, ErrUnknownFormat) {
				im.log.Warn("skipping csv with unknown format", logger.Fields{"path": path})
				continue
			}
			return results, fmt.Errorf("import %s: %w", path, err)
		}

		im.log.Info("csv imported", logger.Fields{
			"path":     path,
			"kind":     string(kind),
			"imported": counts.Imported,
			"skipped":  counts.Skipped,
			"errors":   counts.Errors,
		})
		results[filepath.Base(path)] = counts
	}
	return results, nil
}

// ImportFile detecta el tipo del CSV y lo importa.
func (im *Importer) ImportFile(ctx context.Context, path string) (FileKind, Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, Counts{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // los CSV originales traen columnas vacías al final

	headers, err := r.Read()
	if err != nil {
		return KindUnknown, Counts{}, fmt.Errorf("read headers: %w", err)
	}

	kind := DetectType(headers)
	if kind == KindUnknown {
		return KindUnknown, Counts{}, ErrUnknownFormat
	}

	var counts Counts
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			counts.Errors++
			observability.RecordImportedRow(string(kind), "error")
			continue
		}

		row := asRow(headers, record)
		switch kind {
		case KindHealth:
			err = im.importHealthRow(ctx, row)
		case KindSafety:
			err = im.importSafetyRow(ctx, row)
		case KindReminder:
			err = im.importReminderRow(ctx, row)
		}

		switch {
		case err == nil:
			counts.Imported++
			observability.RecordImportedRow(string(kind), "ok")
		case errors.Is(err, vitals.ErrDuplicate),
			errors.Is(err, safety.ErrDuplicate),
			errors.Is(err, reminders.ErrDuplicate):
			counts.Skipped++
			observability.RecordImportedRow(string(kind), "skipped")
		default:
			// Una fila mala no corta el import.
			counts.Errors++
			observability.RecordImportedRow(string(kind), "error")
			im.log.Warn("csv row failed", logger.Fields{
				"kind":  string(kind),
				"error": err.Error(),
			})
		}
	}

	return kind, counts, nil
}

func (im *Importer) importHealthRow(ctx context.Context, row map[string]string) error {
	deviceID := strings.TrimSpace(row["Device-ID/User-ID"])
	if deviceID == "" {
		return errors.New("missing device id")
	}

	ts := im.parseTimestamp(row["Timestamp"])
	systolic, diastolic := parseBloodPressure(row["Blood Pressure"])

	_, err := im.vitals.Record(ctx, deviceID, vitals.RecordInput{
		Timestamp:   ts,
		HeartRate:   parseInt(row["Heart Rate"]),
		BPSystolic:  systolic,
		BPDiastolic: diastolic,
		Glucose:     parseInt(row["Glucose Levels"]),
		SpO2:        parseInt(row["Oxygen Saturation (SpO₂%)"]),
		PresetFlags: true,
		Flags: vitals.PresetAlertFlags{
			HeartRateAlert:    yes(row["Heart Rate Below/Above Threshold (Yes/No)"]),
			BPAlert:           yes(row["Blood Pressure Below/Above Threshold (Yes/No)"]),
			GlucoseAlert:      yes(row["Glucose Levels Below/Above Threshold (Yes/No)"]),
			SpO2Alert:         yes(row["SpO₂ Below Threshold (Yes/No)"]),
			AlertTriggered:    yes(row["Alert Triggered (Yes/No)"]),
			CaregiverNotified: yes(row["Caregiver Notified (Yes/No)"]),
		},
	})
	return err
}

func (im *Importer) importSafetyRow(ctx context.Context, row map[string]string) error {
	deviceID := strings.TrimSpace(row["Device-ID/User-ID"])
	if deviceID == "" {
		return errors.New("missing device id")
	}

	ts := im.parseTimestamp(row["Timestamp"])

	_, err := im.safety.Record(ctx, deviceID, safety.RecordInput{
		Timestamp:                 ts,
		MovementActivity:          defaultStr(row["Movement Activity"], "Unknown"),
		FallDetected:              yes(row["Fall Detected (Yes/No)"]),
		ImpactForce:               safety.ParseImpactForce(row["Impact Force Level"]),
		PostFallInactivitySeconds: parseInt(row["Post-Fall Inactivity Duration (Seconds)"]),
		Location:                  defaultStr(row["Location"], "Unknown"),
		AlertTriggered:            yes(row["Alert Triggered (Yes/No)"]),
		CaregiverNotified:         yes(row["Caregiver Notified (Yes/No)"]),
	})
	return err
}

func (im *Importer) importReminderRow(ctx context.Context, row map[string]string) error {
	deviceID := strings.TrimSpace(row["Device-ID/User-ID"])
	if deviceID == "" {
		return errors.New("missing device id")
	}

	ts := im.parseTimestamp(row["Timestamp"])
	scheduledAt, err := combineSchedule(ts, row["Scheduled Time"])
	if err != nil {
		return err
	}

	remType := defaultStr(row["Reminder Type"], "Unknown")

	_, err = im.reminders.Create(ctx, deviceID, reminders.CreateInput{
		Type:        remType,
		Description: remType + " reminder",
		ScheduledAt: scheduledAt,
		// El CSV no trae recurrencia ni prioridad; la prioridad se
		// deriva del tipo en el service.
		Sent:         yes(row["Reminder Sent (Yes/No)"]),
		Acknowledged: yes(row["Acknowledged (Yes/No)"]),
	})
	return err
}

// timestampLayouts son los formatos que aparecen en los CSV originales.
var timestampLayouts = []string{
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2/1/2006 15:04",
}

func (im *Importer) parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	im.log.Warn("unparseable timestamp, using current time", logger.Fields{"value": s})
	return im.now()
}

// combineSchedule arma el datetime del recordatorio: fecha del
// Timestamp + hora de Scheduled Time.
func combineSchedule(ts time.Time, scheduled string) (time.Time, error) {
	scheduled = strings.TrimSpace(scheduled)
	datePart := ts.Format("2006-01-02")

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, datePart+" "+scheduled); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable scheduled time: %q", scheduled)
}

// parseBloodPressure parsea el formato "120/80 mmHg".
func parseBloodPressure(s string) (systolic, diastolic int) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) > 0 {
		systolic = parseInt(parts[0])
	}
	if len(parts) > 1 {
		if fields := strings.Fields(parts[1]); len(fields) > 0 {
			diastolic = parseInt(fields[0])
		}
	}
	return systolic, diastolic
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func yes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

func defaultStr(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func asRow(headers, record []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" || i >= len(record) {
			continue
		}
		row[h] = record[i]
	}
	return row
}

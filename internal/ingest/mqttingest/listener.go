// Package mqttingest recibe telemetría en vivo de los wearables por
// MQTT y la vuelca a los dominios de vitals y safety.
package mqttingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/safety"
	"github.com/prinik8/AIcare/internal/domain/vitals"
	"github.com/prinik8/AIcare/internal/observability"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

type Config struct {
	Broker      string // tcp://host:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string // default "aicare"
}

// vitalsPayload es el JSON que publica el wearable en <prefix>/<device>/vitals.
type vitalsPayload struct {
	Timestamp   time.Time `json:"timestamp"`
	HeartRate   int       `json:"heart_rate"`
	BPSystolic  int       `json:"bp_systolic"`
	BPDiastolic int       `json:"bp_diastolic"`
	Glucose     int       `json:"glucose"`
	SpO2        int       `json:"spo2"`
}

// safetyPayload llega por <prefix>/<device>/safety.
type safetyPayload struct {
	Timestamp          time.Time `json:"timestamp"`
	MovementActivity   string    `json:"movement_activity"`
	FallDetected       bool      `json:"fall_detected"`
	ImpactForce        string    `json:"impact_force"`
	PostFallInactivity int       `json:"post_fall_inactivity_seconds"`
	Location           string    `json:"location"`
}

type Listener struct {
	cfg    Config
	vitals *vitals.Service
	safety *safety.Service
	events *eventlog.Service
	log    logger.Logger
	client mqtt.Client
}

func NewListener(cfg Config, v *vitals.Service, s *safety.Service, events *eventlog.Service, log logger.Logger) (*Listener, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("mqttingest: broker required")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "aicare"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "aicare-ingest"
	}

	return &Listener{
		cfg:    cfg,
		vitals: v,
		safety: s,
		events: events,
		log:    log,
	}, nil
}

// Start conecta y suscribe. Bloquea hasta que ctx se cancela.
func (l *Listener) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(l.cfg.Broker)
	opts.SetClientID(l.cfg.ClientID)

	if l.cfg.Username != "" && l.cfg.Password != "" {
		opts.SetUsername(l.cfg.Username)
		opts.SetPassword(l.cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.OnConnect = func(c mqtt.Client) {
		l.log.Info("mqtt connected", logger.Fields{"broker": l.cfg.Broker})
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		l.log.Warn("mqtt connection lost", logger.Fields{"error": err.Error()})
	}

	l.client = mqtt.NewClient(opts)
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqttingest: connect: %w", token.Error())
	}

	vitalsTopic := l.cfg.TopicPrefix + "/+/vitals"
	if token := l.client.Subscribe(vitalsTopic, 1, l.handleVitals); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqttingest: subscribe %s: %w", vitalsTopic, token.Error())
	}

	safetyTopic := l.cfg.TopicPrefix + "/+/safety"
	if token := l.client.Subscribe(safetyTopic, 1, l.handleSafety); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqttingest: subscribe %s: %w", safetyTopic, token.Error())
	}

	l.log.Info("mqtt ingest started", logger.Fields{
		"vitals_topic": vitalsTopic,
		"safety_topic": safetyTopic,
	})

	<-ctx.Done()
	l.client.Disconnect(250)
	l.log.Info("mqtt ingest stopped", nil)
	return nil
}

func (l *Listener) handleVitals(_ mqtt.Client, msg mqtt.Message) {
	deviceID := deviceFromTopic(msg.Topic())
	if deviceID == "" {
		observability.RecordIngest("vitals", "dropped")
		l.log.Warn("vitals message without device id", logger.Fields{"topic": msg.Topic()})
		return
	}

	var p vitalsPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		observability.RecordIngest("vitals", "dropped")
		l.log.Warn("malformed vitals payload", logger.Fields{
			"device_id": deviceID,
			"error":     err.Error(),
		})
		return
	}

	// Valores fisiológicamente imposibles se descartan acá, antes de
	// pasar por thresholds.
	if p.HeartRate != 0 && (p.HeartRate < 20 || p.HeartRate > 300) {
		observability.RecordIngest("vitals", "dropped")
		l.log.Warn("implausible heart rate dropped", logger.Fields{
			"device_id":  deviceID,
			"heart_rate": p.HeartRate,
		})
		return
	}
	if p.SpO2 < 0 || p.SpO2 > 100 {
		observability.RecordIngest("vitals", "dropped")
		l.log.Warn("implausible spo2 dropped", logger.Fields{
			"device_id": deviceID,
			"spo2":      p.SpO2,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reading, err := l.vitals.Record(ctx, deviceID, vitals.RecordInput{
		Timestamp:   p.Timestamp,
		HeartRate:   p.HeartRate,
		BPSystolic:  p.BPSystolic,
		BPDiastolic: p.BPDiastolic,
		Glucose:     p.Glucose,
		SpO2:        p.SpO2,
	})
	switch {
	case err == nil:
		observability.RecordIngest("vitals", "ok")
		if reading.AlertTriggered {
			l.notifyVitalsAlert(ctx, reading)
		}
	case errors.Is(err, vitals.ErrDuplicate):
		observability.RecordIngest("vitals", "dropped")
	default:
		observability.RecordIngest("vitals", "error")
		l.log.Error("vitals ingest failed", logger.Fields{
			"device_id": deviceID,
			"error":     err.Error(),
		})
	}
}

func (l *Listener) handleSafety(_ mqtt.Client, msg mqtt.Message) {
	deviceID := deviceFromTopic(msg.Topic())
	if deviceID == "" {
		observability.RecordIngest("safety", "dropped")
		l.log.Warn("safety message without device id", logger.Fields{"topic": msg.Topic()})
		return
	}

	var p safetyPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		observability.RecordIngest("safety", "dropped")
		l.log.Warn("malformed safety payload", logger.Fields{
			"device_id": deviceID,
			"error":     err.Error(),
		})
		return
	}

	if p.PostFallInactivity < 0 {
		observability.RecordIngest("safety", "dropped")
		l.log.Warn("negative inactivity dropped", logger.Fields{"device_id": deviceID})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event, err := l.safety.Record(ctx, deviceID, safety.RecordInput{
		Timestamp:                 p.Timestamp,
		MovementActivity:          p.MovementActivity,
		FallDetected:              p.FallDetected,
		ImpactForce:               safety.ParseImpactForce(p.ImpactForce),
		PostFallInactivitySeconds: p.PostFallInactivity,
		Location:                  p.Location,
		AlertTriggered:            p.FallDetected,
	})
	switch {
	case err == nil:
		observability.RecordIngest("safety", "ok")
		if event.FallDetected {
			l.notifyFallAlert(ctx, event)
		}
	case errors.Is(err, safety.ErrDuplicate):
		observability.RecordIngest("safety", "dropped")
	default:
		observability.RecordIngest("safety", "error")
		l.log.Error("safety ingest failed", logger.Fields{
			"device_id": deviceID,
			"error":     err.Error(),
		})
	}
}

// notifyVitalsAlert deja rastro en el eventlog y marca la lectura como
// notificada al caregiver.
func (l *Listener) notifyVitalsAlert(ctx context.Context, r vitals.Reading) {
	if l.events != nil {
		desc := fmt.Sprintf("Vitals alert for device %s: HR=%d BP=%d/%d glucose=%d SpO2=%d",
			r.DeviceID, r.HeartRate, r.BPSystolic, r.BPDiastolic, r.Glucose, r.SpO2)
		if _, err := l.events.Log(ctx, "mqtt_ingest", "vitals_alert", desc, eventlog.SeverityWarning); err != nil {
			l.log.Warn("vitals alert eventlog write failed", logger.Fields{"error": err.Error()})
		}
	}

	if err := l.vitals.MarkNotified(ctx, r.ID); err != nil {
		l.log.Warn("mark notified failed", logger.Fields{
			"reading_id": r.ID,
			"error":      err.Error(),
		})
	}
}

func (l *Listener) notifyFallAlert(ctx context.Context, e safety.SafetyEvent) {
	if l.events == nil {
		return
	}

	severity := eventlog.SeverityWarning
	if e.Severity == safety.SeverityCritical {
		severity = eventlog.SeverityCritical
	}
	desc := fmt.Sprintf("Fall detected for device %s at %s (impact %s, inactivity %ds)",
		e.DeviceID, e.Location, e.ImpactForce, e.PostFallInactivitySeconds)
	if _, err := l.events.Log(ctx, "mqtt_ingest", "fall_alert", desc, severity); err != nil {
		l.log.Warn("fall alert eventlog write failed", logger.Fields{"error": err.Error()})
	}
}

// deviceFromTopic extrae el device ID de <prefix>/<device>/<kind>.
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	agentRunsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aicare",
		Subsystem: "agents",
		Name:      "runs_total",
		Help:      "Agent workflow runs, by agent kind and outcome.",
	}, []string{"agent", "status"})

	ingestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aicare",
		Subsystem: "ingest",
		Name:      "messages_total",
		Help:      "MQTT telemetry messages, by topic kind and outcome.",
	}, []string{"kind", "status"})

	remindersDispatchedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aicare",
		Subsystem: "scheduler",
		Name:      "reminders_dispatched_total",
		Help:      "Due reminders marked as sent by the dispatcher loop.",
	})

	importedRowsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aicare",
		Subsystem: "importer",
		Name:      "rows_total",
		Help:      "CSV rows processed, by file kind and outcome.",
	}, []string{"kind", "status"})
)

func init() {
	prometheus.MustRegister(
		agentRunsCounter,
		ingestCounter,
		remindersDispatchedCounter,
		importedRowsCounter,
	)
}

// RecordAgentRun cuenta una corrida de agent. status: ok | error | fallback.
func RecordAgentRun(agent, status string) {
	agentRunsCounter.WithLabelValues(agent, status).Inc()
}

// RecordIngest cuenta un mensaje MQTT. kind: vitals | safety. status: ok | dropped | error.
func RecordIngest(kind, status string) {
	ingestCounter.WithLabelValues(kind, status).Inc()
}

// RecordReminderDispatched cuenta un reminder despachado.
func RecordReminderDispatched() {
	remindersDispatchedCounter.Inc()
}

// RecordImportedRow cuenta una fila de CSV. kind: health | safety | reminder.
// status: ok | skipped | error.
func RecordImportedRow(kind, status string) {
	importedRowsCounter.WithLabelValues(kind, status).Inc()
}

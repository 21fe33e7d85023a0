// Package metrics defines the Prometheus metrics exported by debtbook.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// LedgerOperations counts ledger operations by operation name and outcome.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Total ledger operations by operation and outcome.",
}, []string{"operation", "outcome"})

// SplitDebtsCreated counts debts created by the split operation.
var SplitDebtsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "ledger",
	Name:      "split_debts_created_total",
	Help:      "Total debts created by split operations.",
})

// ─── History Metrics ────────────────────────────────────────────────────────

// HistoryRecords counts history entries written, by action.
var HistoryRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "history",
	Name:      "records_total",
	Help:      "Total history entries appended, by action.",
}, []string{"action"})

// HistoryWriteFailures counts history writes that failed after the
// entity mutation had already been committed.
var HistoryWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "history",
	Name:      "write_failures_total",
	Help:      "Total history writes that failed after a committed mutation.",
})

// HistoryPublishFailures counts history entries that could not be published.
var HistoryPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "history",
	Name:      "publish_failures_total",
	Help:      "Total history entries that failed to publish to the event broker.",
})

// ─── Sync Metrics ───────────────────────────────────────────────────────────

// SnapshotUploads counts remote snapshot uploads by outcome.
var SnapshotUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtbook",
	Subsystem: "sync",
	Name:      "uploads_total",
	Help:      "Total database snapshot uploads by outcome.",
}, []string{"outcome"})

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeWarning = "warning"
)

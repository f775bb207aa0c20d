package workers

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*ReporterWorker)(nil)

// ReporterWorker logs a monitoring snapshot at a fixed interval.
type ReporterWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewReporterWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, monitor: monitor, interval: interval}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.monitor.GetLatest()
	w.log.Info("Hub stats",
		"connections", stats.Connections,
		"messages_stored", stats.MessagesStored,
		"receipts_recorded", stats.ReceiptsRecorded,
		"events_emitted", stats.EventsEmitted,
		"events_dropped", stats.EventsDropped,
		"alloc_mem_mb", stats.AllocMemMb,
		"cpu_percent", stats.CPUPercent,
	)
}

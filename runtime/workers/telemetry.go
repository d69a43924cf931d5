package workers

import (
	"conquest/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// Gauges is the engine-side state sampled on every telemetry interval.
type Gauges struct {
	Sessions    int
	Rooms       int
	PendingBids int
	Ticks       uint64
}

// TelemetryWorker periodically logs process health (CPU, RSS) together
// with the engine gauges. Sustained growth of PendingBids between ticks is
// the operational signal that the tick interval is misconfigured for the
// load, since the engine has no backpressure of its own.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	collect  func() Gauges
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, collect func() Gauges) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, collect: collect}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return ctx.Err()
		case <-ticker.C:
			gauges := w.collect()

			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Debug("Failed to read cpu usage", "err", err)
			}
			var rss uint64
			if memInfo, err := p.MemoryInfo(); err == nil {
				rss = memInfo.RSS
			}

			w.log.Info("Server telemetry",
				"sessions", gauges.Sessions,
				"rooms", gauges.Rooms,
				"pending_bids", gauges.PendingBids,
				"ticks", gauges.Ticks,
				"cpu_percent", cpu,
				"rss_bytes", rss,
			)
		}
	}
}

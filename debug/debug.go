// Package debug emits periodic runtime stats when the debug flag is set.
// Intentionally minimal: enough to correlate goroutine or heap growth with
// long-running sessions.
package debug

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// Start launches a ticker that logs goroutine count and heap usage every
// interval. The returned func stops the logger.
func Start(logger *slog.Logger, interval time.Duration) func() {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				metrics.Read(samples)
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				logger.Info("runtime-stats",
					slog.Uint64("goroutines", samples[0].Value.Uint64()),
					slog.Uint64("heap_alloc", ms.HeapAlloc),
					slog.Uint64("heap_inuse", ms.HeapInuse),
					slog.Uint64("heap_sys", ms.HeapSys),
					slog.Uint64("stack_inuse", ms.StackInuse),
					slog.Uint64("next_gc", ms.NextGC),
					slog.Uint64("num_gc", uint64(ms.NumGC)),
				)
			}
		}
	}()
	return func() { close(stop) }
}

// internal/service/flusher.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultFlushInterval is the period of the background save.
const DefaultFlushInterval = 5 * time.Second

const finalFlushTimeout = 5 * time.Second

// Flushable is the part of the engine the flusher drives.
type Flushable interface {
	Flush(ctx context.Context) error
	FlushIfDirty(ctx context.Context) error
}

// Flusher re-saves unsaved ledger state on a fixed interval and once more
// when its context ends.
type Flusher struct {
	target   Flushable
	interval time.Duration
	logger   *zap.Logger
}

// NewFlusher creates a Flusher. A non-positive interval uses DefaultFlushInterval.
func NewFlusher(target Flushable, interval time.Duration, logger *zap.Logger) *Flusher {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Flusher{target: target, interval: interval, logger: logger}
}

// Run blocks until ctx is done, then performs the end-of-session flush.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			if err := f.target.Flush(finalCtx); err != nil {
				f.logger.Error("final flush failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if err := f.target.FlushIfDirty(ctx); err != nil {
				f.logger.Warn("periodic flush failed", zap.Error(err))
			}
		}
	}
}

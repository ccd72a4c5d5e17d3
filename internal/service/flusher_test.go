// internal/service/flusher_test.go
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingTarget struct {
	flushes      atomic.Int32
	dirtyFlushes atomic.Int32
	err          error
}

func (c *countingTarget) Flush(context.Context) error {
	c.flushes.Add(1)
	return c.err
}

func (c *countingTarget) FlushIfDirty(context.Context) error {
	c.dirtyFlushes.Add(1)
	return c.err
}

func TestFlusherRun(t *testing.T) {
	t.Run("TicksAndFinalFlush", func(t *testing.T) {
		target := &countingTarget{}
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			NewFlusher(target, 10*time.Millisecond, zap.NewNop()).Run(ctx)
			close(done)
		}()

		assert.Eventually(t, func() bool { return target.dirtyFlushes.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()
		<-done

		assert.Equal(t, int32(1), target.flushes.Load())
	})

	t.Run("ErrorsAreAbsorbed", func(t *testing.T) {
		target := &countingTarget{err: errors.New("disk full")}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		NewFlusher(target, 5*time.Millisecond, zap.NewNop()).Run(ctx)
		assert.Equal(t, int32(1), target.flushes.Load())
	})

	t.Run("DefaultInterval", func(t *testing.T) {
		f := NewFlusher(&countingTarget{}, 0, zap.NewNop())
		assert.Equal(t, DefaultFlushInterval, f.interval)
	})
}

// Package telemetry adapts OpenTelemetry tracing to the build engine.
package telemetry

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultBatchBytes is the buffered size that forces a flush.
	DefaultBatchBytes = 4096
	// DefaultBatchDelay is how long the oldest buffered byte may wait.
	DefaultBatchDelay = 50 * time.Millisecond
)

var errLogBatcherClosed = zerr.New("log batcher is closed")

// LogBatcher coalesces plugin and job output written to a span into few
// events. A batch is emitted once it holds maxBytes, once its oldest byte is
// delay old, or on Close. Emits happen in write order.
type LogBatcher struct {
	maxBytes int
	delay    time.Duration
	emit     func([]byte)

	mu     sync.Mutex
	batch  []byte
	timer  *time.Timer // armed while batch is non-empty
	closed bool
}

// NewLogBatcher returns a LogBatcher. Non-positive limits use the defaults.
func NewLogBatcher(maxBytes int, delay time.Duration, emit func([]byte)) *LogBatcher {
	if maxBytes <= 0 {
		maxBytes = DefaultBatchBytes
	}
	if delay <= 0 {
		delay = DefaultBatchDelay
	}
	return &LogBatcher{maxBytes: maxBytes, delay: delay, emit: emit}
}

// Write appends p to the current batch.
func (b *LogBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, errLogBatcherClosed
	}

	if len(b.batch) == 0 && len(p) > 0 {
		b.arm()
	}
	b.batch = append(b.batch, p...)
	if len(b.batch) >= b.maxBytes {
		b.emitLocked()
	}
	return len(p), nil
}

// Flush emits the current batch, if any.
func (b *LogBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.emitLocked()
	}
}

// Close emits what is left. Later writes fail.
func (b *LogBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.emitLocked()
	b.closed = true
	return nil
}

func (b *LogBatcher) arm() {
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.Flush)
		return
	}
	b.timer.Reset(b.delay)
}

// emitLocked runs the callback under mu so batches cannot overtake each other.
func (b *LogBatcher) emitLocked() {
	if b.timer != nil {
		b.timer.Stop()
	}
	if len(b.batch) == 0 {
		return
	}
	data := b.batch
	b.batch = nil
	if b.emit != nil {
		b.emit(data)
	}
}

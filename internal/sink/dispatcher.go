// Package sink batches tracked events and ships them to an external
// collector endpoint. Delivery is best-effort: callers enqueue and move
// on, the dispatcher absorbs endpoint outages with a bounded queue.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/brightline/growth-engine/internal/event"
	"github.com/brightline/growth-engine/internal/pkg/httpretry"
	"github.com/brightline/growth-engine/internal/pkg/logger"
)

// Defaults applied when Options fields are zero.
const (
	defaultFlushInterval = 10 * time.Second
	defaultBatchSize     = 20
	defaultMaxQueue      = 500
)

// Options configures a Dispatcher.
type Options struct {
	Endpoint      string
	FlushInterval time.Duration
	BatchSize     int
	MaxQueue      int
	// CriticalTypes flush immediately instead of waiting for the ticker.
	CriticalTypes []string
	Client        httpretry.Doer
}

// Dispatcher accumulates events and POSTs them to the endpoint in JSON
// batches. Enqueue never blocks on delivery; when the queue is full the
// oldest event is dropped.
type Dispatcher struct {
	opts     Options
	critical map[string]bool
	client   httpretry.Doer

	mu    sync.Mutex
	queue []event.Event

	flushCh chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a dispatcher and starts its background flush loop.
func New(opts Options) *Dispatcher {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxQueue <= 0 {
		opts.MaxQueue = defaultMaxQueue
	}
	client := opts.Client
	if client == nil {
		client = httpretry.New(nil, 3)
	}

	d := &Dispatcher{
		opts:     opts,
		critical: make(map[string]bool, len(opts.CriticalTypes)),
		client:   client,
		flushCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, t := range opts.CriticalTypes {
		d.critical[t] = true
	}

	go d.run()
	return d
}

// Enqueue adds an event to the outbound queue. Beyond MaxQueue the oldest
// queued event is dropped. Critical event types trigger an immediate
// flush; everything else waits for the next interval.
func (d *Dispatcher) Enqueue(evt event.Event) {
	d.mu.Lock()
	if len(d.queue) >= d.opts.MaxQueue {
		dropped := d.queue[0]
		d.queue = d.queue[1:]
		logger.Warn("sink queue full, dropping oldest event",
			"dropped_type", dropped.Type, "max_queue", d.opts.MaxQueue)
	}
	d.queue = append(d.queue, evt)
	d.mu.Unlock()

	if d.critical[evt.Type] {
		d.signalFlush()
	}
}

// Flush sends all queued events now, in batches, and returns the first
// delivery error. Remaining events stay queued on failure.
func (d *Dispatcher) Flush(ctx context.Context) error {
	for {
		batch := d.takeBatch()
		if len(batch) == 0 {
			return nil
		}
		if err := d.send(ctx, batch); err != nil {
			d.requeue(batch)
			return err
		}
	}
}

// Stop drains the queue with a short deadline and shuts the loop down.
func (d *Dispatcher) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Flush(ctx); err != nil {
		logger.Warn("final sink flush failed", "error", err.Error())
	}

	close(d.stopCh)
	<-d.doneCh
}

// Pending reports the number of queued events.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flushOnce()
		case <-d.flushCh:
			d.flushOnce()
		case <-d.stopCh:
			return
		}
	}
}

func (d *Dispatcher) flushOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.FlushInterval)
	defer cancel()
	if err := d.Flush(ctx); err != nil {
		logger.Warn("sink flush failed, events re-queued",
			"error", err.Error(), "pending", d.Pending())
	}
}

func (d *Dispatcher) signalFlush() {
	select {
	case d.flushCh <- struct{}{}:
	default:
	}
}

// takeBatch removes up to BatchSize events from the head of the queue.
func (d *Dispatcher) takeBatch() []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.queue)
	if n == 0 {
		return nil
	}
	if n > d.opts.BatchSize {
		n = d.opts.BatchSize
	}
	batch := make([]event.Event, n)
	copy(batch, d.queue[:n])
	d.queue = d.queue[n:]
	return batch
}

// requeue puts a failed batch back at the head so ordering survives the
// retry. The cap still applies; newest events are trimmed if it overflows.
func (d *Dispatcher) requeue(batch []event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue = append(batch, d.queue...)
	if len(d.queue) > d.opts.MaxQueue {
		logger.Warn("sink queue overflow after re-queue, trimming",
			"dropped", len(d.queue)-d.opts.MaxQueue)
		d.queue = d.queue[:d.opts.MaxQueue]
	}
}

func (d *Dispatcher) send(ctx context.Context, batch []event.Event) error {
	body, err := json.Marshal(map[string]interface{}{"events": batch})
	if err != nil {
		return fmt.Errorf("sink: marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink: post batch: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink: endpoint returned status %d", resp.StatusCode)
	}

	logger.Debug("sink batch delivered", "count", len(batch))
	return nil
}

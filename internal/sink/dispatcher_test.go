package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline/growth-engine/internal/event"
)

type captureServer struct {
	srv     *httptest.Server
	mu      sync.Mutex
	batches [][]string
	failing atomic.Bool
}

func newCaptureServer(t *testing.T) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cs.failing.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload struct {
			Events []event.Event `json:"events"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		types := make([]string, len(payload.Events))
		for i, e := range payload.Events {
			types[i] = e.Type
		}
		cs.mu.Lock()
		cs.batches = append(cs.batches, types)
		cs.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *captureServer) received() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var all []string
	for _, b := range cs.batches {
		all = append(all, b...)
	}
	return all
}

func testDispatcher(cs *captureServer, opts Options) *Dispatcher {
	opts.Endpoint = cs.srv.URL
	opts.Client = cs.srv.Client()
	if opts.FlushInterval == 0 {
		opts.FlushInterval = time.Hour // tests flush explicitly
	}
	return New(opts)
}

func TestFlushDeliversQueuedEvents(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{BatchSize: 2})
	defer d.Stop()

	for _, typ := range []string{event.TypePageView, event.TypeClick, event.TypeHeartbeat} {
		d.Enqueue(event.Event{Type: typ, SessionID: "s1", Timestamp: time.Now()})
	}

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{event.TypePageView, event.TypeClick, event.TypeHeartbeat}, cs.received())
	assert.Zero(t, d.Pending())

	cs.mu.Lock()
	defer cs.mu.Unlock()
	assert.Len(t, cs.batches, 2, "three events at batch size two need two posts")
}

func TestCriticalEventFlushesImmediately(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{CriticalTypes: []string{event.TypeContactForm}})
	defer d.Stop()

	d.Enqueue(event.Event{Type: event.TypePageView, SessionID: "s1"})
	d.Enqueue(event.Event{Type: event.TypeContactForm, SessionID: "s1"})

	require.Eventually(t, func() bool {
		return len(cs.received()) == 2
	}, 2*time.Second, 10*time.Millisecond, "critical event should not wait for the interval")
}

func TestQueueDropsOldestBeyondCap(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{MaxQueue: 3, BatchSize: 10})
	defer d.Stop()

	for _, typ := range []string{"a", "b", "c", "d"} {
		d.Enqueue(event.Event{Type: typ})
	}

	assert.Equal(t, 3, d.Pending())
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{"b", "c", "d"}, cs.received(), "oldest event dropped first")
}

func TestFailedFlushRequeuesAtHead(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{BatchSize: 10})
	defer d.Stop()

	d.Enqueue(event.Event{Type: "first"})
	d.Enqueue(event.Event{Type: "second"})

	cs.failing.Store(true)
	assert.Error(t, d.Flush(context.Background()))
	assert.Equal(t, 2, d.Pending(), "failed batch stays queued")

	cs.failing.Store(false)
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{"first", "second"}, cs.received(), "order preserved across retry")
}

func TestStopDrainsQueue(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{})

	d.Enqueue(event.Event{Type: event.TypeScrollDepth})
	d.Enqueue(event.Event{Type: event.TypeClick})
	d.Stop()

	assert.Equal(t, []string{event.TypeScrollDepth, event.TypeClick}, cs.received())
}

func TestFlushEmptyQueueIsNoop(t *testing.T) {
	cs := newCaptureServer(t)
	d := testDispatcher(cs, Options{})
	defer d.Stop()

	require.NoError(t, d.Flush(context.Background()))
	assert.Empty(t, cs.received())
}

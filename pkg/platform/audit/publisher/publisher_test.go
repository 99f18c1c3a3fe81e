package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	audit "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit/store/memory"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/metadata"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type flakySink struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *flakySink) Name() string { return "flaky" }

func (f *flakySink) Append(context.Context, audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *flakySink) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// stopLoop halts the background drain so a test controls delivery.
func stopLoop(p *Publisher) {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func TestEmitFillsRequestMetadata(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithFlushInterval(time.Hour))
	stopLoop(pub)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithTime(ctx, now)
	ctx = requestcontext.WithAdminSubject(ctx, "admin-7")
	ctx = metadata.WithClient(ctx, metadata.Client{IP: "192.0.2.5", Agent: "Firefox/Linux"})
	formID := id.FormID(uuid.New())

	pub.Emit(ctx, audit.Event{Action: audit.ActionSectionCreated, FormID: formID})
	pub.Flush(ctx)

	events, err := store.ListByForm(ctx, formID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, audit.CategoryStructure, e.Category)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "admin-7", e.ActorID)
	assert.Equal(t, "192.0.2.5", e.ClientIP)
	assert.Equal(t, "Firefox/Linux", e.Agent)
	assert.Equal(t, now, e.Timestamp)
}

func TestBackgroundLoopDelivers(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithFlushInterval(10*time.Millisecond))
	defer pub.Close(context.Background())
	formID := id.FormID(uuid.New())

	pub.Emit(context.Background(), audit.Event{Action: audit.ActionAnswerSubmitted, FormID: formID})

	assert.Eventually(t, func() bool {
		events, _ := store.ListByForm(context.Background(), formID, 0)
		return len(events) == 1 && events[0].Category == audit.CategoryIntake
	}, time.Second, 10*time.Millisecond)
}

func TestCloseFlushesPending(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithFlushInterval(time.Hour))
	formID := id.FormID(uuid.New())

	for range 3 {
		pub.Emit(context.Background(), audit.Event{Action: audit.ActionQuestionUpdated, FormID: formID})
	}
	pub.Close(context.Background())

	assert.Zero(t, pub.Pending())
	events, _ := store.ListByForm(context.Background(), formID, 0)
	assert.Len(t, events, 3)
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithMetrics(m), WithFlushInterval(time.Hour))
	formID := id.FormID(uuid.New())

	pub.Close(context.Background())
	pub.Emit(context.Background(), audit.Event{Action: audit.ActionFormDeleted, FormID: formID})
	pub.Flush(context.Background())

	assert.Zero(t, pub.Pending())
	events, _ := store.ListByForm(context.Background(), formID, 0)
	assert.Empty(t, events)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped))
	assert.Zero(t, testutil.ToFloat64(m.Emitted))
}

func TestFullBufferDropsOldest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithBufferSize(2), WithMetrics(m), WithFlushInterval(time.Hour))
	formID := id.FormID(uuid.New())

	stopLoop(pub)

	pub.Emit(context.Background(), audit.Event{Action: audit.ActionFormCreated, FormID: formID})
	pub.Emit(context.Background(), audit.Event{Action: audit.ActionSectionCreated, FormID: formID})
	pub.Emit(context.Background(), audit.Event{Action: audit.ActionQuestionCreated, FormID: formID})
	pub.Flush(context.Background())

	events, _ := store.ListByForm(context.Background(), formID, 0)
	require.Len(t, events, 2)
	actions := []audit.Action{events[0].Action, events[1].Action}
	assert.NotContains(t, actions, audit.ActionFormCreated)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Emitted))
}

func TestFailingSinkIsIsolated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	flaky := &flakySink{err: errors.New("broker unavailable")}
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{flaky, store}, WithMetrics(m), WithFlushInterval(time.Hour))
	stopLoop(pub)
	formID := id.FormID(uuid.New())

	for range 8 {
		pub.Emit(context.Background(), audit.Event{Action: audit.ActionFormUpdated, FormID: formID})
	}
	pub.Flush(context.Background())

	events, _ := store.ListByForm(context.Background(), formID, 0)
	assert.Len(t, events, 8, "healthy sink receives everything")
	assert.Equal(t, 5, flaky.Calls(), "breaker opens after five failures")
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SinkFailures.WithLabelValues("flaky")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SinkSkipped.WithLabelValues("flaky")))
}

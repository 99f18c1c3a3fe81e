// Package publisher delivers audit events without putting sinks on the
// request path. Emit enqueues into a bounded buffer; a background loop
// drains it to every sink, each behind its own circuit breaker.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/circuit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/metadata"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type guardedSink struct {
	sink    audit.Sink
	breaker *circuit.Breaker
}

type Publisher struct {
	buf      *ringBuffer
	sinks    []guardedSink
	logger   *slog.Logger
	metrics  *Metrics
	interval time.Duration
	batch    int

	stop     chan struct{}
	wake     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// closeMu orders Emit against Close so nothing is enqueued after the
	// final flush.
	closeMu sync.RWMutex
	closed  bool
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithBufferSize bounds how many undelivered events are kept.
func WithBufferSize(n int) Option {
	return func(p *Publisher) { p.buf = newRingBuffer(n) }
}

// WithFlushInterval sets how often the buffer is drained when idle.
func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New starts a publisher that writes to sinks. Call Close to flush and stop.
func New(sinks []audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{
		buf:      newRingBuffer(0),
		interval: 500 * time.Millisecond,
		batch:    128,
		stop:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, s := range sinks {
		p.sinks = append(p.sinks, guardedSink{
			sink:    s,
			breaker: circuit.New("audit:"+s.Name(), circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
		})
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// Emit enqueues event, filling ID, timestamp, category and the request
// metadata found in ctx. It never blocks on a sink.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.AdminSubject(ctx)
	}
	client := metadata.FromContext(ctx)
	if event.ClientIP == "" {
		event.ClientIP = client.IP
	}
	if event.Agent == "" {
		event.Agent = client.Agent
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		if p.metrics != nil {
			p.metrics.Dropped.Inc()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped after close", "action", event.Action)
		}
		return
	}
	if p.buf.enqueue(event) && p.metrics != nil {
		p.metrics.Dropped.Inc()
	}
	if p.metrics != nil {
		p.metrics.Emitted.Inc()
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush delivers everything currently buffered.
func (p *Publisher) Flush(ctx context.Context) {
	for {
		batch := p.buf.dequeueBatch(p.batch)
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			p.deliver(ctx, e)
		}
	}
}

// Pending reports how many events wait for delivery.
func (p *Publisher) Pending() int {
	return p.buf.len()
}

// Close stops the loop and flushes what is left, bounded by ctx. Events
// emitted afterwards are counted as dropped.
func (p *Publisher) Close(ctx context.Context) {
	p.closeMu.Lock()
	p.closed = true
	p.closeMu.Unlock()
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
	p.Flush(ctx)
}

func (p *Publisher) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		p.Flush(ctx)
		cancel()
	}
}

func (p *Publisher) deliver(ctx context.Context, e audit.Event) {
	for _, g := range p.sinks {
		name := g.sink.Name()
		if !g.breaker.Allow() {
			if p.metrics != nil {
				p.metrics.SinkSkipped.WithLabelValues(name).Inc()
			}
			continue
		}
		if err := g.sink.Append(ctx, e); err != nil {
			_, change := g.breaker.RecordFailure()
			if p.metrics != nil {
				p.metrics.SinkFailures.WithLabelValues(name).Inc()
			}
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit sink append failed",
					"sink", name,
					"action", e.Action,
					"form_id", e.FormID,
					"circuit_opened", change.Opened,
					"error", err,
				)
			}
			continue
		}
		if _, change := g.breaker.RecordSuccess(); change.Closed && p.logger != nil {
			p.logger.InfoContext(ctx, "audit sink recovered", "sink", name)
		}
	}
}

package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// Span is one traced HTTP request.
type Span struct {
	RequestID  id.RequestID
	SessionID  string
	Route      string
	Method     string
	StartTime  time.Time
	Duration   time.Duration
	StatusCode int
	Error      error
}

// Finish records the span duration.
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// Tracer logs completed spans off the request path.
type Tracer struct {
	logger *zap.Logger
	spans  chan *Span
	done   chan struct{}
	once   sync.Once
}

// New creates a tracer and starts its collector.
func New(logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		logger: logger,
		spans:  make(chan *Span, 1000),
		done:   make(chan struct{}),
	}
	go t.collectSpans()
	return t
}

// StartSpan begins a span for requestID and stores the id in the context.
func (t *Tracer) StartSpan(ctx context.Context, requestID id.RequestID, route, method string) (*Span, context.Context) {
	span := &Span{
		RequestID: requestID,
		Route:     route,
		Method:    method,
		StartTime: time.Now(),
	}
	return span, WithRequestID(ctx, requestID)
}

// Submit hands a finished span to the collector. Spans are dropped when the
// buffer is full.
func (t *Tracer) Submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("request_id", span.RequestID.String()),
		)
	}
}

// Close stops the collector after draining buffered spans.
func (t *Tracer) Close() {
	t.once.Do(func() {
		close(t.spans)
		<-t.done
	})
}

func (t *Tracer) collectSpans() {
	defer close(t.done)
	for span := range t.spans {
		t.processSpan(span)
	}
}

func (t *Tracer) processSpan(span *Span) {
	fields := []zap.Field{
		zap.String("request_id", span.RequestID.String()),
		zap.String("method", span.Method),
		zap.String("route", span.Route),
		zap.Int("status", span.StatusCode),
		zap.Duration("duration", span.Duration),
	}
	if span.SessionID != "" {
		fields = append(fields, zap.String("session_id", span.SessionID))
	}

	switch {
	case span.Error != nil:
		t.logger.Warn("request failed", append(fields, zap.Error(span.Error))...)
	case span.StatusCode >= 500:
		t.logger.Error("request completed", fields...)
	default:
		t.logger.Debug("request completed", fields...)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, rid id.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// RequestID retrieves the request id from ctx.
func RequestID(ctx context.Context) id.RequestID {
	if rid, ok := ctx.Value(requestIDKey).(id.RequestID); ok {
		return rid
	}
	return ""
}

// Field returns the request id as a zap field for handler logs.
func Field(ctx context.Context) zap.Field {
	return zap.String("request_id", RequestID(ctx).String())
}

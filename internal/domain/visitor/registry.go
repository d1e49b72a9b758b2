// Package visitor keeps the live desktop sessions of every visitor and
// expires the ones that go quiet.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/theme"
	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// End reasons reported to metrics.
const (
	ReasonClosed   = "closed"
	ReasonExpired  = "expired"
	ReasonShutdown = "shutdown"
)

// Metrics receives session counters. *monitoring.Metrics satisfies it.
type Metrics interface {
	SessionCreated()
	SessionEnded(reason string)
	SetSessionsActive(count int)
}

type nopMetrics struct{}

func (nopMetrics) SessionCreated()       {}
func (nopMetrics) SessionEnded(string)   {}
func (nopMetrics) SetSessionsActive(int) {}

// Config bounds the registry.
type Config struct {
	IdleTTL time.Duration
	Max     int
	// SweepInterval defaults to a quarter of IdleTTL.
	SweepInterval time.Duration
}

// Visitor identifies the browser behind a new session.
type Visitor struct {
	Key   string
	Theme theme.Mode
}

// Info describes a live session.
type Info struct {
	ID        id.SessionID `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	LastSeen  time.Time    `json:"last_seen"`
	Streams   int          `json:"streams"`
}

type entry struct {
	shell    *shell.Shell
	created  time.Time
	lastSeen atomic.Int64 // unix nanos
}

func (e *entry) touch(now time.Time) { e.lastSeen.Store(now.UnixNano()) }

func (e *entry) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastSeen.Load()))
}

// Registry maps session ids to shells.
type Registry struct {
	sessions sync.Map // id.SessionID -> *entry
	mu       sync.Mutex
	count    int // protected by mu
	cfg      Config
	template shell.Options
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistry creates a registry. Every shell is built from template with
// the visitor's key and theme hint filled in.
func NewRegistry(cfg Config, template shell.Options, metrics Metrics, logger *zap.Logger) *Registry {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SweepInterval <= 0 && cfg.IdleTTL > 0 {
		cfg.SweepInterval = cfg.IdleTTL / 4
	}
	return &Registry{
		cfg:      cfg,
		template: template,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a sleeping session for v.
func (r *Registry) Create(ctx context.Context, v Visitor) (id.SessionID, *shell.Shell, error) {
	r.mu.Lock()
	if r.cfg.Max > 0 && r.count >= r.cfg.Max {
		r.mu.Unlock()
		return "", nil, ErrTooManySessions
	}
	r.count++
	r.mu.Unlock()

	sid := id.NewSessionID()
	opts := r.template
	opts.VisitorKey = v.Key
	opts.ThemeHint = v.Theme
	opts.Logger = r.logger

	s, err := shell.New(ctx, sid.String(), opts)
	if err != nil {
		r.release()
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	now := r.now()
	e := &entry{shell: s, created: now}
	e.touch(now)
	r.sessions.Store(sid, e)

	r.metrics.SessionCreated()
	r.metrics.SetSessionsActive(r.Len())
	r.logger.Info("session created", zap.String("session_id", sid.String()))
	return sid, s, nil
}

// Get returns the shell for sid and marks it as seen.
func (r *Registry) Get(sid id.SessionID) (*shell.Shell, error) {
	v, ok := r.sessions.Load(sid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sid)
	}
	e := v.(*entry)
	e.touch(r.now())
	return e.shell, nil
}

// Touch marks sid as seen without returning it. Stream connections call it
// for every intent so an active socket keeps its session alive.
func (r *Registry) Touch(sid id.SessionID) {
	if v, ok := r.sessions.Load(sid); ok {
		v.(*entry).touch(r.now())
	}
}

// Info returns bookkeeping for sid.
func (r *Registry) Info(sid id.SessionID) (Info, error) {
	v, ok := r.sessions.Load(sid)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sid)
	}
	e := v.(*entry)
	return Info{
		ID:        sid,
		CreatedAt: e.created,
		LastSeen:  time.Unix(0, e.lastSeen.Load()),
		Streams:   e.shell.Subscribers(),
	}, nil
}

// End closes the session.
func (r *Registry) End(sid id.SessionID) error {
	if !r.remove(sid, ReasonClosed) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sid)
	}
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Sweep ends every session idle for longer than IdleTTL and returns how
// many it ended.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	now := r.now()
	var expired []id.SessionID
	r.sessions.Range(func(k, v any) bool {
		if v.(*entry).idle(now) > r.cfg.IdleTTL {
			expired = append(expired, k.(id.SessionID))
		}
		return true
	})

	n := 0
	for _, sid := range expired {
		if r.remove(sid, ReasonExpired) {
			n++
		}
	}
	if n > 0 {
		r.logger.Info("expired idle sessions", zap.Int("count", n))
	}
	return n
}

// Run sweeps on SweepInterval until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) error {
	if r.cfg.SweepInterval <= 0 {
		<-ctx.Done()
		r.Close()
		return nil
	}

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.sessions.Range(func(k, _ any) bool {
		r.remove(k.(id.SessionID), ReasonShutdown)
		return true
	})
}

func (r *Registry) remove(sid id.SessionID, reason string) bool {
	v, ok := r.sessions.LoadAndDelete(sid)
	if !ok {
		return false
	}
	v.(*entry).shell.Close()
	r.release()

	r.metrics.SessionEnded(reason)
	r.metrics.SetSessionsActive(r.Len())
	r.logger.Debug("session ended",
		zap.String("session_id", sid.String()),
		zap.String("reason", reason),
	)
	return true
}

func (r *Registry) release() {
	r.mu.Lock()
	r.count--
	r.mu.Unlock()
}

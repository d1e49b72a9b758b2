package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/snake"
	"github.com/GriffinCanCode/deskfolio/internal/domain/theme"
	"github.com/GriffinCanCode/deskfolio/internal/domain/visitor"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

const (
	// VisitorCookie names the browser across sessions for theme persistence.
	VisitorCookie = "deskfolio_visitor"
	// HintHeader carries the browser's color scheme preference.
	HintHeader = "Sec-CH-Prefers-Color-Scheme"

	visitorCookieAge = 365 * 24 * time.Hour
	shellKey         = "shell"
	sidKey           = "sid"
)

// BreakerReporter exposes per-host circuit states for /health.
type BreakerReporter interface {
	Breakers() map[string]resilience.State
}

// Handlers serves the session API.
type Handlers struct {
	registry *visitor.Registry
	catalog  *catalog.Catalog
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	started  time.Time

	media       BreakerReporter
	createGuard gin.HandlersChain
}

// NewHandlers creates a handler set.
func NewHandlers(registry *visitor.Registry, cat *catalog.Catalog, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		catalog:  cat,
		metrics:  metrics,
		logger:   logger,
		started:  time.Now(),
	}
}

// WithMedia reports the media breakers on /health.
func (h *Handlers) WithMedia(r BreakerReporter) *Handlers {
	h.media = r
	return h
}

// WithCreateGuard runs mw ahead of POST /sessions.
func (h *Handlers) WithCreateGuard(mw ...gin.HandlerFunc) *Handlers {
	h.createGuard = append(h.createGuard, mw...)
	return h
}

// Root handles the bare service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "deskfolio",
	})
}

// Health reports liveness with a metrics summary.
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"sessions": h.registry.Len(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if h.media != nil {
		breakers := make(map[string]string)
		for host, st := range h.media.Breakers() {
			breakers[host] = st.String()
		}
		body["media_breakers"] = breakers
	}
	c.JSON(http.StatusOK, body)
}

// Catalog returns the shared desktop content.
func (h *Handlers) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}

// CreateSession starts a sleeping desktop for the calling visitor.
func (h *Handlers) CreateSession(c *gin.Context) {
	v := visitor.Visitor{
		Key:   h.visitorKey(c),
		Theme: theme.FromHint(c.GetHeader(HintHeader)),
	}

	sid, s, err := h.registry.Create(c.Request.Context(), v)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sid,
		"snapshot":   s.Snapshot(),
	})
}

// GetSession returns the full session snapshot.
func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Snapshot())
}

// SessionInfo returns registry bookkeeping for the session.
func (h *Handlers) SessionInfo(c *gin.Context) {
	info, err := h.registry.Info(c.MustGet(sidKey).(id.SessionID))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// DeleteSession ends the session.
func (h *Handlers) DeleteSession(c *gin.Context) {
	sid, err := id.ParseSessionID(c.Param("sid"))
	if err != nil {
		h.fail(c, visitor.ErrSessionNotFound)
		return
	}
	if err := h.registry.End(sid); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": sid})
}

// RequireSession loads the shell named by :sid into the context.
func (h *Handlers) RequireSession(c *gin.Context) {
	sid, err := id.ParseSessionID(c.Param("sid"))
	if err != nil {
		h.fail(c, visitor.ErrSessionNotFound)
		return
	}
	s, err := h.registry.Get(sid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(sidKey, sid)
	c.Set(shellKey, s)
	c.Next()
}

// Current returns the shell loaded by RequireSession.
func Current(c *gin.Context) *shell.Shell {
	return c.MustGet(shellKey).(*shell.Shell)
}

func current(c *gin.Context) *shell.Shell { return Current(c) }

// visitorKey returns the visitor cookie, issuing a new one when missing.
func (h *Handlers) visitorKey(c *gin.Context) string {
	if key, err := c.Cookie(VisitorCookie); err == nil {
		if _, perr := uuid.Parse(key); perr == nil {
			return key
		}
	}
	key := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(VisitorCookie, key, int(visitorCookieAge.Seconds()), "/", "", c.Request.TLS != nil, true)
	return key
}

// panelParam parses :panel, answering 400 on failure.
func (h *Handlers) panelParam(c *gin.Context) (panel.Kind, bool) {
	k, err := panel.Parse(c.Param("panel"))
	if err != nil {
		h.fail(c, err)
		return "", false
	}
	return k, true
}

// bind decodes the JSON body, answering 400 on failure.
func (h *Handlers) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, panel.ErrUnknownPanel),
		errors.Is(err, snake.ErrInvalidDirection),
		errors.Is(err, desktop.ErrEmptyLabel):
		return http.StatusBadRequest
	case errors.Is(err, visitor.ErrSessionNotFound),
		errors.Is(err, shell.ErrClosed),
		errors.Is(err, shell.ErrUnknownGame):
		return http.StatusNotFound
	case errors.Is(err, shell.ErrAsleep):
		return http.StatusLocked
	case errors.Is(err, visitor.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed",
			tracing.Field(c.Request.Context()),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

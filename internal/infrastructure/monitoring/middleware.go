package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template so session ids do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a media probe.
type Timer struct {
	start   time.Time
	metrics *Metrics
	source  string
}

// NewTimer starts a probe timer.
func NewTimer(metrics *Metrics, source string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		source:  source,
	}
}

// Stop records the duration under result.
func (t *Timer) Stop(result string) {
	t.metrics.ObserveProbe(t.source, result, time.Since(t.start))
}

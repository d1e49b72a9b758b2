package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

// HTTPMiddleware assigns each request an id, echoes it in the response and
// submits a span when the handler returns. A well-formed inbound
// X-Request-ID is reused.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := id.ParseRequestID(c.GetHeader(HeaderRequestID))
		if err != nil {
			rid = id.NewRequestID()
		}

		span, ctx := tracer.StartSpan(c.Request.Context(), rid, c.FullPath(), c.Request.Method)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, rid.String())

		c.Next()

		span.StatusCode = c.Writer.Status()
		span.SessionID = c.Param("sid")
		if len(c.Errors) > 0 {
			span.Error = c.Errors.Last()
		}
		span.Finish()
		tracer.Submit(span)
	}
}

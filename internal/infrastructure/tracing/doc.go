/*
Package tracing tags every HTTP request with a request id and logs one span
per request.

# Overview

The id is a prefixed ULID (req_*). An inbound X-Request-ID header is reused
when it parses; otherwise a fresh id is minted. The id is echoed in the
response header and stored in the request context so handlers can attach it
to their own log lines.

Completed spans are handed to a buffered collector goroutine and logged with
zap. When the buffer is full spans are dropped rather than blocking the
request.

# Usage

	tracer := tracing.New(logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	// in a handler
	logger.Info("window opened", tracing.Field(c.Request.Context()))
*/
package tracing

/*
Package monitoring provides Prometheus metrics for the deskfolio server.

# Overview

Every Metrics value owns a private registry, so tests and multiple servers in
one process never collide on collector names. The registry also carries the
Go runtime and process collectors.

# Features

- HTTP request metrics labelled by route template
- Visitor session lifecycle (created, active, ended by reason)
- Window operations, theme toggles and dropped session events
- Snake games started and finished with a score histogram
- Media probe latency and playback failures
- WebSocket connection and message counts

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "remote")
	// ... probe ...
	timer.Stop("ok")
*/
package monitoring

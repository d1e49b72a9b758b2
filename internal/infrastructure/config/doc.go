// Package config provides 12-factor configuration management for the
// deskfolio server.
//
// Configuration is loaded from environment variables with sensible defaults.
// A .env file in the working directory is read first; variables already set
// in the process environment win. CLI flags can override environment
// variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP and session-creation rate limits
//   - Storage: SQLite file holding visitor preferences
//   - Catalog: Desktop content file and local media directory
//   - Session: Visitor session idle expiry, capacity and geometry retention
//   - Snake: Game tick period
//   - Media: Track probe timeout and toggle
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - RATE_LIMIT_SESSIONS_RPS, RATE_LIMIT_SESSIONS_BURST
//   - DESKFOLIO_DB, DESKFOLIO_CATALOG, MEDIA_DIR
//   - SESSION_IDLE_TTL, SESSION_MAX, RETAIN_GEOMETRY
//   - SNAKE_TICK, MEDIA_PROBE_TIMEOUT, MEDIA_PROBE_ENABLED
package config

// Package main is the entry point for the deskfolio server.
//
// deskfolio serves a desktop-styled portfolio: each visitor gets a session
// with a sleep screen, draggable windows for the portfolio panels, a
// taskbar, desktop icons, a light/dark theme, a music player and a snake
// game. Browsers drive their session over a JSON API and watch it change
// over a WebSocket stream.
//
// Architecture:
//
//	Browser → gin router → visitor registry → shell (one per session)
//	                                         → SQLite (theme per visitor)
//	        ← WebSocket   ← session event bus
//
// Configuration:
//   - Environment variables (12-factor), optionally from a .env file
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Custom content
//	./server -catalog ./portfolio.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

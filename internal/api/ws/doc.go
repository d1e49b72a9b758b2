// Package ws streams a visitor session over a WebSocket.
//
// The stream is mounted at /sessions/:sid/stream. On connect the server
// sends a hello frame carrying the full session snapshot, then forwards
// every event published on the session bus. Clients drive the desktop by
// sending intents; successful intents answer through the events they cause.
//
// Message Types (Client → Server):
//   - wake, sleep, start_menu.toggle, start_menu.close, start_menu.select
//   - window.open, window.close, window.minimize, window.restore,
//     window.activate, window.maximize, window.drag_begin, window.drag_move,
//     window.drag_end, window.move, window.resize
//   - taskbar.click, taskbar.move, taskbar.reorder
//   - icon.select, icon.rename, icon.move, icon.double_click,
//     desktop.clear_selection
//   - theme.toggle
//   - audio.play_pause, audio.next, audio.previous, audio.ended, audio.mute,
//     audio.volume, audio.seek, audio.progress
//   - snake.turn, snake.reset, game.open
//   - snapshot, clock, ping
//
// Message Types (Server → Client):
//   - hello: connection id and snapshot
//   - bus events: {type, seq, time, payload}
//   - reply: answer to snapshot and clock
//   - pong
//   - error: the intent that failed and why
//
// Example Usage:
//
//	stream := ws.NewHandler(apihttp.Current, registry.Touch, metrics, logger)
//	handlers.Register(router, stream.HandleConnection)
//
// Frames are encoded with sonic. One goroutine owns all writes; the
// connection's reader applies intents synchronously against the shell.
package ws

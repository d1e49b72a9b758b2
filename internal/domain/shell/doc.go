// Package shell composes one visitor's desktop: the sleep screen, start
// menu, window session, taskbar, desktop icons, theme, music player and
// snake game, plus the event bus that streams their changes.
//
// Every intent goes through a Shell method. Methods serialize on the
// shell's mutex, so a session behaves like a single event loop no matter
// how many HTTP requests or stream messages arrive at once. The only
// background work is the snake runner, which publishes ticks directly on
// the bus and never takes the shell lock.
//
// A session starts asleep. Until Wake is called every mutating intent
// fails with ErrAsleep; reads (Snapshot, Clock, Subscribe) always work.
//
// State changes publish dotted events:
//
//	shell.woke, shell.slept, shell.start_menu
//	window.opened, window.closed, window.minimized, window.restored,
//	window.activated, window.maximized, window.dragged, window.resized
//	taskbar.reordered
//	desktop.icon_selected, desktop.icon_renamed, desktop.icon_moved
//	theme.changed, audio.changed
//	audio.failed
//	snake.started, snake.tick, snake.over, snake.stopped
package shell

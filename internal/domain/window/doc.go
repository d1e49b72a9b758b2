// Package window tracks the window session of one desktop: which panels are
// open, their stacking order, the minimized set, and per-window geometry.
//
// The Manager is the single owner of window state. Views are stateless
// renderers of Snapshot; geometry lives here keyed by panel kind rather than
// in the client, so a drag in progress is just a field on the entry.
//
// Contract:
//   - Open: adds the panel if absent and makes it active
//   - Close: removes the panel from the open and minimized sets
//   - Minimize: hides or restores a window; restoring re-activates it
//   - Activate: raises a window to the front
//   - Reorder: replaces the taskbar display order (cosmetic, z-order untouched)
//
// Operations on panels that are not open are silent no-ops. Every mutating
// method reports whether state changed so callers can decide what to publish.
//
// Example Usage:
//
//	m := window.NewManager(window.DefaultConfig())
//	m.Open(panel.About)
//	m.BeginDrag(panel.About, window.Point{X: 140, Y: 110})
//	m.DragTo(panel.About, window.Point{X: 400, Y: 300})
//	m.EndDrag(panel.About)
package window

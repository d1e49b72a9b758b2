package window

import "github.com/GriffinCanCode/deskfolio/internal/domain/panel"

// BeginDrag starts a title-bar drag at pointer. Maximized and minimized
// windows cannot be dragged. The window is raised to the front either way.
func (m *Manager) BeginDrag(k panel.Kind, pointer Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || w.Minimized {
		return false
	}

	changed := m.activate(w)
	if w.Maximized {
		return changed
	}
	w.dragging = true
	w.dragOffset = pointer.Sub(w.Geometry.Position)
	return true
}

// DragTo moves a dragging window so the grab point stays under pointer.
func (m *Manager) DragTo(k panel.Kind, pointer Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || !w.dragging || w.Maximized {
		return false
	}
	next := pointer.Sub(w.dragOffset)
	if next == w.Geometry.Position {
		return false
	}
	w.Geometry.Position = next
	return true
}

// EndDrag finishes a drag.
func (m *Manager) EndDrag(k panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || !w.dragging {
		return false
	}
	w.dragging = false
	w.dragOffset = Point{}
	return true
}

// ToggleMaximize flips the maximized flag. Geometry is kept so the window
// returns to where it was.
func (m *Manager) ToggleMaximize(k panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || w.Minimized {
		return false
	}
	w.Maximized = !w.Maximized
	w.dragging = false
	m.activate(w)
	return true
}

// Resize sets the window size, clamped to the configured minimum.
func (m *Manager) Resize(k panel.Kind, size Size) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || w.Minimized || w.Maximized {
		return false
	}
	if size.Width < m.cfg.MinSize.Width {
		size.Width = m.cfg.MinSize.Width
	}
	if size.Height < m.cfg.MinSize.Height {
		size.Height = m.cfg.MinSize.Height
	}
	if size == w.Geometry.Size {
		return false
	}
	w.Geometry.Size = size
	return true
}

// MoveTo places a window without a drag gesture (keyboard or restore).
func (m *Manager) MoveTo(k panel.Kind, pos Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || w.Maximized || w.Geometry.Position == pos {
		return false
	}
	w.Geometry.Position = pos
	return true
}

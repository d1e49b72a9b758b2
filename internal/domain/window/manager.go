package window

import (
	"sync"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
)

// Manager owns the window session of one desktop.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	order    []panel.Kind            // open order, protected by mu
	windows  map[panel.Kind]*Window  // protected by mu
	retained map[panel.Kind]Geometry // protected by mu
	titles   map[panel.Kind]string   // title overrides
	active   panel.Kind              // "" when no window is active
	front    int                     // current front stacking value
	taskbar  *Taskbar
}

// NewManager creates an empty window session.
func NewManager(cfg Config) *Manager {
	if cfg.DefaultSize == (Size{}) {
		cfg.DefaultSize = DefaultConfig().DefaultSize
	}
	return &Manager{
		cfg:      cfg,
		windows:  make(map[panel.Kind]*Window),
		retained: make(map[panel.Kind]Geometry),
		titles:   make(map[panel.Kind]string),
		front:    cfg.BaseZ,
		taskbar:  NewTaskbar(),
	}
}

// WithTitles overrides default panel titles.
func (m *Manager) WithTitles(titles map[panel.Kind]string) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range titles {
		m.titles[k] = t
	}
	return m
}

// Open adds k to the open set if absent and makes it active. Opening a
// minimized window restores it.
func (m *Manager) Open(k panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[k]; ok {
		changed := w.Minimized
		w.Minimized = false
		return m.activate(w) || changed
	}

	geo, ok := m.retained[k]
	if !ok {
		geo = m.cascade(len(m.order))
	}
	w := &Window{
		Panel:    k,
		Title:    m.title(k),
		Geometry: geo,
	}
	m.windows[k] = w
	m.order = append(m.order, k)
	m.taskbar.Reconcile(m.order)
	m.activate(w)
	return true
}

// Close removes k from the open and minimized sets and clears the active
// window if it was k.
func (m *Manager) Close(k panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok {
		return false
	}

	if m.cfg.RetainGeometry {
		m.retained[k] = w.Geometry
	} else {
		delete(m.retained, k)
	}

	delete(m.windows, k)
	for i, id := range m.order {
		if id == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.active == k {
		m.active = ""
	}
	m.taskbar.Reconcile(m.order)
	return true
}

// Minimize hides (flag=true) or restores (flag=false) a window. Restoring
// re-activates it. Minimizing the active window passes activation to the
// topmost visible window.
func (m *Manager) Minimize(k panel.Kind, flag bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok {
		return false
	}

	if !flag {
		changed := w.Minimized
		w.Minimized = false
		return m.activate(w) || changed
	}

	if w.Minimized {
		return false
	}
	w.Minimized = true
	w.dragging = false
	if m.active == k {
		m.active = ""
		if next := m.topmostVisible(); next != nil {
			m.active = next.Panel
		}
	}
	return true
}

// Activate raises k to the front. A no-op on closed windows.
func (m *Manager) Activate(k panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok {
		return false
	}
	return m.activate(w)
}

// Reorder replaces the taskbar display order. It never touches stacking.
func (m *Manager) Reorder(seq []panel.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taskbar.Replace(seq, m.order)
}

// MoveTaskbarEntry splices the taskbar entry at from to index to.
func (m *Manager) MoveTaskbarEntry(from, to int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taskbar.Move(from, to)
}

// TaskbarClick minimizes k when it is the active window and otherwise opens,
// restores or activates it.
func (m *Manager) TaskbarClick(k panel.Kind) bool {
	m.mu.RLock()
	w, ok := m.windows[k]
	isActive := ok && m.active == k && !w.Minimized
	m.mu.RUnlock()

	if isActive {
		return m.Minimize(k, true)
	}
	return m.Open(k)
}

// IsOpen reports whether k is in the open set.
func (m *Manager) IsOpen(k panel.Kind) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.windows[k]
	return ok
}

// IsMinimized reports whether k is open and minimized.
func (m *Manager) IsMinimized(k panel.Kind) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[k]
	return ok && w.Minimized
}

// Active returns the active window, if any.
func (m *Manager) Active() (panel.Kind, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.active != ""
}

// OpenPanels returns the open set in open order.
func (m *Manager) OpenPanels() []panel.Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]panel.Kind, len(m.order))
	copy(out, m.order)
	return out
}

// Get returns a view of one window.
func (m *Manager) Get(k panel.Kind) (View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[k]
	if !ok {
		return View{}, false
	}
	return m.view(w), true
}

// Snapshot returns a consistent copy of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Windows:   make([]View, 0, len(m.order)),
		Minimized: []panel.Kind{},
		Taskbar:   m.taskbar.Order(),
	}
	for _, k := range m.order {
		w := m.windows[k]
		snap.Windows = append(snap.Windows, m.view(w))
		if w.Minimized {
			snap.Minimized = append(snap.Minimized, k)
		}
	}
	if m.active != "" {
		active := m.active
		snap.Active = &active
	}
	return snap
}

// activate raises w and makes it active unless minimized (must hold lock).
func (m *Manager) activate(w *Window) bool {
	changed := m.raise(w)
	if !w.Minimized && m.active != w.Panel {
		m.active = w.Panel
		changed = true
	}
	return changed
}

// raise puts w on top of the stack (must hold lock).
func (m *Manager) raise(w *Window) bool {
	if w.ZIndex == m.front && m.front > m.cfg.BaseZ {
		return false
	}
	m.front++
	w.ZIndex = m.front
	return true
}

// topmostVisible returns the highest non-minimized window (must hold lock).
func (m *Manager) topmostVisible() *Window {
	var top *Window
	for _, w := range m.windows {
		if w.Minimized {
			continue
		}
		if top == nil || w.ZIndex > top.ZIndex {
			top = w
		}
	}
	return top
}

func (m *Manager) cascade(n int) Geometry {
	step := m.cfg.CascadeStep * n
	return Geometry{
		Position: Point{X: m.cfg.CascadeOrigin.X + step, Y: m.cfg.CascadeOrigin.Y + step},
		Size:     m.cfg.DefaultSize,
	}
}

func (m *Manager) title(k panel.Kind) string {
	if t, ok := m.titles[k]; ok && t != "" {
		return t
	}
	return k.Title()
}

func (m *Manager) view(w *Window) View {
	return View{
		Panel:     w.Panel,
		Title:     w.Title,
		Position:  w.Geometry.Position,
		Size:      w.Geometry.Size,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		Dragging:  w.dragging,
		ZIndex:    w.ZIndex,
		Active:    m.active == w.Panel,
	}
}

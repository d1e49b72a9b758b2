package shell

import (
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// WindowEvent is the payload of window.* and taskbar.* events.
type WindowEvent struct {
	Panel   panel.Kind      `json:"panel,omitempty"`
	Windows window.Snapshot `json:"windows"`
}

// windowOp wraps a window mutation with the gate, metrics and event.
func (s *Shell) windowOp(op, event string, k panel.Kind, fn func() bool) (window.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return window.Snapshot{}, false, err
	}
	if k != "" && !k.Valid() {
		return window.Snapshot{}, false, panel.ErrUnknownPanel
	}
	if !fn() {
		return s.windows.Snapshot(), false, nil
	}
	return s.windowChanged(op, event, k), true, nil
}

// windowChanged must be called with mu held.
func (s *Shell) windowChanged(op, event string, k panel.Kind) window.Snapshot {
	snap := s.windows.Snapshot()
	s.metrics.WindowOp(op)
	s.emit(event, WindowEvent{Panel: k, Windows: snap})
	return snap
}

// open opens k and starts the game loop for game panels. Must hold mu.
func (s *Shell) open(k panel.Kind) bool {
	wasOpen := s.windows.IsOpen(k)
	minimized := s.windows.IsMinimized(k)
	if !s.windows.Open(k) {
		return false
	}
	s.opened(k, wasOpen, minimized)
	return true
}

// opened publishes the outcome of opening k given its prior state. Must
// hold mu.
func (s *Shell) opened(k panel.Kind, wasOpen, minimized bool) {
	switch {
	case !wasOpen:
		s.windowChanged("open", "window.opened", k)
		if k.IsGame() {
			s.startSnake()
		}
	case minimized:
		s.windowChanged("restore", "window.restored", k)
	default:
		s.windowChanged("activate", "window.activated", k)
	}
}

// OpenPanel opens k, restoring and activating it if already open.
func (s *Shell) OpenPanel(k panel.Kind) (window.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return window.Snapshot{}, err
	}
	if !k.Valid() {
		return window.Snapshot{}, panel.ErrUnknownPanel
	}
	s.open(k)
	return s.windows.Snapshot(), nil
}

// ClosePanel closes k. Closing the snake panel stops its game.
func (s *Shell) ClosePanel(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("close", "window.closed", k, func() bool {
		if !s.windows.Close(k) {
			return false
		}
		if k.IsGame() {
			s.stopSnake()
		}
		return true
	})
	return snap, err
}

// MinimizePanel hides k.
func (s *Shell) MinimizePanel(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("minimize", "window.minimized", k, func() bool {
		return s.windows.Minimize(k, true)
	})
	return snap, err
}

// RestorePanel un-hides k and activates it.
func (s *Shell) RestorePanel(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("restore", "window.restored", k, func() bool {
		return s.windows.Minimize(k, false)
	})
	return snap, err
}

// ActivatePanel brings k to the front.
func (s *Shell) ActivatePanel(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("activate", "window.activated", k, func() bool {
		return s.windows.Activate(k)
	})
	return snap, err
}

// ToggleMaximize flips k between its geometry and full screen.
func (s *Shell) ToggleMaximize(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("maximize", "window.maximized", k, func() bool {
		return s.windows.ToggleMaximize(k)
	})
	return snap, err
}

// BeginDrag grabs k's title bar at pointer.
func (s *Shell) BeginDrag(k panel.Kind, pointer window.Point) (window.Snapshot, error) {
	snap, _, err := s.windowOp("drag", "window.dragged", k, func() bool {
		return s.windows.BeginDrag(k, pointer)
	})
	return snap, err
}

// DragTo moves a dragged window so the grab offset stays under pointer.
func (s *Shell) DragTo(k panel.Kind, pointer window.Point) (window.Snapshot, error) {
	snap, _, err := s.windowOp("drag", "window.dragged", k, func() bool {
		return s.windows.DragTo(k, pointer)
	})
	return snap, err
}

// EndDrag releases k.
func (s *Shell) EndDrag(k panel.Kind) (window.Snapshot, error) {
	snap, _, err := s.windowOp("drag", "window.dragged", k, func() bool {
		return s.windows.EndDrag(k)
	})
	return snap, err
}

// MoveWindow places k at pos in one step.
func (s *Shell) MoveWindow(k panel.Kind, pos window.Point) (window.Snapshot, error) {
	snap, _, err := s.windowOp("move", "window.dragged", k, func() bool {
		return s.windows.MoveTo(k, pos)
	})
	return snap, err
}

// ResizeWindow sets k's size, clamped to the minimum.
func (s *Shell) ResizeWindow(k panel.Kind, size window.Size) (window.Snapshot, error) {
	snap, _, err := s.windowOp("resize", "window.resized", k, func() bool {
		return s.windows.Resize(k, size)
	})
	return snap, err
}

// TaskbarClick minimizes the active window or opens, restores or activates
// any other.
func (s *Shell) TaskbarClick(k panel.Kind) (window.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return window.Snapshot{}, err
	}
	if !k.Valid() {
		return window.Snapshot{}, panel.ErrUnknownPanel
	}
	wasOpen := s.windows.IsOpen(k)
	minimized := s.windows.IsMinimized(k)
	active, ok := s.windows.Active()
	wasActive := ok && active == k && !minimized

	if !s.windows.TaskbarClick(k) {
		return s.windows.Snapshot(), nil
	}
	if wasActive {
		s.windowChanged("minimize", "window.minimized", k)
	} else {
		s.opened(k, wasOpen, minimized)
	}
	return s.windows.Snapshot(), nil
}

// MoveTaskbarEntry splices the taskbar entry at from to index to.
func (s *Shell) MoveTaskbarEntry(from, to int) (window.Snapshot, error) {
	snap, _, err := s.windowOp("reorder", "taskbar.reordered", "", func() bool {
		return s.windows.MoveTaskbarEntry(from, to)
	})
	return snap, err
}

// ReorderTaskbar replaces the taskbar display order.
func (s *Shell) ReorderTaskbar(seq []panel.Kind) (window.Snapshot, error) {
	for _, k := range seq {
		if !k.Valid() {
			return window.Snapshot{}, panel.ErrUnknownPanel
		}
	}
	snap, _, err := s.windowOp("reorder", "taskbar.reordered", "", func() bool {
		return s.windows.Reorder(seq)
	})
	return snap, err
}

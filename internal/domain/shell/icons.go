package shell

import (
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// IconEvent is the payload of desktop.* events.
type IconEvent struct {
	Panel panel.Kind     `json:"panel,omitempty"`
	Icons []desktop.Icon `json:"icons"`
}

func (s *Shell) iconsChanged(event string, k panel.Kind) []desktop.Icon {
	icons := s.desktop.Icons()
	s.emit(event, IconEvent{Panel: k, Icons: icons})
	return icons
}

// SelectIcon toggles the selection highlight on k's icon.
func (s *Shell) SelectIcon(k panel.Kind) ([]desktop.Icon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if !k.Valid() {
		return nil, panel.ErrUnknownPanel
	}
	if !s.desktop.Select(k) {
		return s.desktop.Icons(), nil
	}
	return s.iconsChanged("desktop.icon_selected", k), nil
}

// ClearSelection deselects every icon, as a click on the bare desktop does.
func (s *Shell) ClearSelection() ([]desktop.Icon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if !s.desktop.ClearSelection() {
		return s.desktop.Icons(), nil
	}
	return s.iconsChanged("desktop.icon_selected", ""), nil
}

// RenameIcon sets k's label after sanitizing it.
func (s *Shell) RenameIcon(k panel.Kind, label string) ([]desktop.Icon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if !k.Valid() {
		return nil, panel.ErrUnknownPanel
	}
	_, changed, err := s.desktop.Rename(k, label)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.desktop.Icons(), nil
	}
	return s.iconsChanged("desktop.icon_renamed", k), nil
}

// MoveIcon places k's icon at p.
func (s *Shell) MoveIcon(k panel.Kind, p window.Point) ([]desktop.Icon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if !k.Valid() {
		return nil, panel.ErrUnknownPanel
	}
	if !s.desktop.Move(k, p) {
		return s.desktop.Icons(), nil
	}
	return s.iconsChanged("desktop.icon_moved", k), nil
}

// DoubleClickIcon opens k's panel, restoring or activating it when it is
// already open.
func (s *Shell) DoubleClickIcon(k panel.Kind) (desktop.Route, window.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return 0, window.Snapshot{}, err
	}
	if !k.Valid() {
		return 0, window.Snapshot{}, panel.ErrUnknownPanel
	}
	route, ok := s.desktop.DoubleClick(k, s.windows.IsOpen(k), s.windows.IsMinimized(k))
	if !ok {
		return 0, s.windows.Snapshot(), nil
	}
	switch route {
	case desktop.RouteRestore:
		if s.windows.Minimize(k, false) {
			s.windowChanged("restore", "window.restored", k)
		}
	case desktop.RouteActivate:
		if s.windows.Activate(k) {
			s.windowChanged("activate", "window.activated", k)
		}
	default:
		s.open(k)
	}
	return route, s.windows.Snapshot(), nil
}

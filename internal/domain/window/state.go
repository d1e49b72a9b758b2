package window

import "github.com/GriffinCanCode/deskfolio/internal/domain/panel"

// Point is a screen coordinate in CSS pixels.
type Point struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a window's outer dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry is the retained placement of a window.
type Geometry struct {
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Window is the manager-owned state of one open panel.
type Window struct {
	Panel     panel.Kind
	Title     string
	Geometry  Geometry
	Minimized bool
	Maximized bool
	ZIndex    int

	dragging   bool
	dragOffset Point
}

// View is the read-only projection of a window handed to renderers.
type View struct {
	Panel     panel.Kind `json:"panel"`
	Title     string     `json:"title"`
	Position  Point      `json:"position"`
	Size      Size       `json:"size"`
	Minimized bool       `json:"minimized"`
	Maximized bool       `json:"maximized"`
	Dragging  bool       `json:"dragging"`
	ZIndex    int        `json:"z_index"`
	Active    bool       `json:"active"`
}

// Snapshot is a consistent copy of the whole window session.
type Snapshot struct {
	Windows   []View       `json:"windows"`
	Active    *panel.Kind  `json:"active,omitempty"`
	Minimized []panel.Kind `json:"minimized"`
	Taskbar   []panel.Kind `json:"taskbar"`
}

// IsOpen reports whether the snapshot contains k.
func (s Snapshot) IsOpen(k panel.Kind) bool {
	for _, w := range s.Windows {
		if w.Panel == k {
			return true
		}
	}
	return false
}

// Config tunes window placement.
type Config struct {
	// RetainGeometry keeps a window's last geometry across close/reopen.
	RetainGeometry bool
	DefaultSize    Size
	MinSize        Size
	CascadeOrigin  Point
	CascadeStep    int
	// BaseZ is the stacking value of the first raised window.
	BaseZ int
}

// DefaultConfig mirrors the classic portfolio layout: 384x320 windows
// cascading 30px from (100,100).
func DefaultConfig() Config {
	return Config{
		RetainGeometry: false,
		DefaultSize:    Size{Width: 384, Height: 320},
		MinSize:        Size{Width: 240, Height: 160},
		CascadeOrigin:  Point{X: 100, Y: 100},
		CascadeStep:    30,
		BaseZ:          30,
	}
}

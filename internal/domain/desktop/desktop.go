// Package desktop holds the icons laid out on the desktop surface.
package desktop

import (
	"errors"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// MaxLabelRunes bounds icon labels.
const MaxLabelRunes = 32

// ErrEmptyLabel is returned when a rename leaves nothing after sanitizing.
var ErrEmptyLabel = errors.New("icon label is empty")

// Icon is one desktop shortcut.
type Icon struct {
	Panel    panel.Kind   `json:"panel" yaml:"panel" toml:"panel"`
	Label    string       `json:"label" yaml:"label" toml:"label"`
	Glyph    string       `json:"glyph" yaml:"glyph" toml:"glyph"`
	Position window.Point `json:"position" yaml:"position" toml:"position"`
	Selected bool         `json:"selected" yaml:"-" toml:"-"`
}

// Route is what a double-click on an icon should do to its panel.
type Route int

const (
	RouteOpen Route = iota
	RouteRestore
	RouteActivate
)

func (r Route) String() string {
	switch r {
	case RouteOpen:
		return "open"
	case RouteRestore:
		return "restore"
	default:
		return "activate"
	}
}

// Default returns the stock icon column: one icon per content panel at
// x=50, spaced 100px apart from y=50.
func Default() []Icon {
	specs := []struct {
		kind  panel.Kind
		label string
		glyph string
	}{
		{panel.About, "About Me", "user"},
		{panel.Projects, "Projects", "folder-open"},
		{panel.Skills, "Skills", "code"},
		{panel.Experience, "Experience", "file-text"},
		{panel.Contact, "Contact", "mail"},
	}
	icons := make([]Icon, len(specs))
	for i, s := range specs {
		icons[i] = Icon{
			Panel:    s.kind,
			Label:    s.label,
			Glyph:    s.glyph,
			Position: window.Point{X: 50, Y: 50 + 100*i},
		}
	}
	return icons
}

// Desktop is a visitor's icon set. Renames and moves last for the session.
type Desktop struct {
	mu     sync.RWMutex
	icons  []Icon
	policy *bluemonday.Policy
}

// New copies icons into a fresh desktop with nothing selected.
func New(icons []Icon) *Desktop {
	cp := make([]Icon, len(icons))
	copy(cp, icons)
	for i := range cp {
		cp[i].Selected = false
	}
	return &Desktop{icons: cp, policy: bluemonday.StrictPolicy()}
}

// Icons returns a copy of the icons in layout order.
func (d *Desktop) Icons() []Icon {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Icon, len(d.icons))
	copy(out, d.icons)
	return out
}

// Select toggles k's selection and clears every other icon. Reports false
// if k has no icon.
func (d *Desktop) Select(k panel.Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(k)
	if i < 0 {
		return false
	}
	want := !d.icons[i].Selected
	for j := range d.icons {
		d.icons[j].Selected = false
	}
	d.icons[i].Selected = want
	return true
}

// ClearSelection deselects everything. Reports whether anything changed.
func (d *Desktop) ClearSelection() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := false
	for i := range d.icons {
		if d.icons[i].Selected {
			d.icons[i].Selected = false
			changed = true
		}
	}
	return changed
}

// Rename sets k's label. Markup is stripped, whitespace collapsed and the
// result cut to MaxLabelRunes. An empty result keeps the old label and
// returns ErrEmptyLabel.
func (d *Desktop) Rename(k panel.Kind, label string) (string, bool, error) {
	clean := d.sanitize(label)

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(k)
	if i < 0 {
		return "", false, nil
	}
	if clean == "" {
		return d.icons[i].Label, true, ErrEmptyLabel
	}
	d.icons[i].Label = clean
	return clean, true, nil
}

// Move places k's icon at p.
func (d *Desktop) Move(k panel.Kind, p window.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(k)
	if i < 0 || d.icons[i].Position == p {
		return false
	}
	d.icons[i].Position = p
	return true
}

// DoubleClick routes a double-click given the panel's window state. Reports
// false if k has no icon.
func (d *Desktop) DoubleClick(k panel.Kind, open, minimized bool) (Route, bool) {
	d.mu.RLock()
	i := d.index(k)
	d.mu.RUnlock()

	if i < 0 {
		return RouteOpen, false
	}
	switch {
	case !open:
		return RouteOpen, true
	case minimized:
		return RouteRestore, true
	default:
		return RouteActivate, true
	}
}

// sanitizePasses bounds how many entity layers a label may carry.
const sanitizePasses = 4

// sanitize strips markup and decodes entities until the text stops changing,
// so encoded tags cannot come back as markup. A label still changing after
// sanitizePasses is dropped.
func (d *Desktop) sanitize(label string) string {
	s := label
	for i := 0; ; i++ {
		if i == sanitizePasses {
			return ""
		}
		next := html.UnescapeString(d.policy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > MaxLabelRunes {
		s = strings.TrimSpace(string([]rune(s)[:MaxLabelRunes]))
	}
	return s
}

func (d *Desktop) index(k panel.Kind) int {
	for i, ic := range d.icons {
		if ic.Panel == k {
			return i
		}
	}
	return -1
}

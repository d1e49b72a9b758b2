package window

import (
	"slices"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
)

// Taskbar keeps the display order of taskbar buttons. It is reconciled
// against the open set but otherwise independent of window stacking.
// Not safe for concurrent use; the Manager guards it.
type Taskbar struct {
	order []panel.Kind
}

// NewTaskbar returns an empty taskbar.
func NewTaskbar() *Taskbar {
	return &Taskbar{order: []panel.Kind{}}
}

// Reconcile appends newly opened panels and drops closed ones, keeping the
// relative order of the rest.
func (t *Taskbar) Reconcile(open []panel.Kind) bool {
	isOpen := make(map[panel.Kind]bool, len(open))
	for _, k := range open {
		isOpen[k] = true
	}

	changed := false
	kept := make([]panel.Kind, 0, len(open))
	seen := make(map[panel.Kind]bool, len(open))
	for _, k := range t.order {
		if !isOpen[k] {
			changed = true
			continue
		}
		kept = append(kept, k)
		seen[k] = true
	}
	for _, k := range open {
		if !seen[k] {
			kept = append(kept, k)
			seen[k] = true
			changed = true
		}
	}
	t.order = kept
	return changed
}

// Move splices the entry at from into position to.
func (t *Taskbar) Move(from, to int) bool {
	n := len(t.order)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	k := t.order[from]
	t.order = append(t.order[:from], t.order[from+1:]...)
	t.order = append(t.order[:to], append([]panel.Kind{k}, t.order[to:]...)...)
	return true
}

// Replace installs seq as the new order. Entries that are not open or repeat
// are dropped and open panels missing from seq are appended.
func (t *Taskbar) Replace(seq []panel.Kind, open []panel.Kind) bool {
	before := t.Order()
	t.order = append([]panel.Kind{}, seq...)
	t.Reconcile(open)
	t.dedupe()
	return !slices.Equal(before, t.order)
}

// Order returns a copy of the display order.
func (t *Taskbar) Order() []panel.Kind {
	out := make([]panel.Kind, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Taskbar) dedupe() {
	seen := make(map[panel.Kind]bool, len(t.order))
	out := t.order[:0]
	for _, k := range t.order {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	t.order = out
}

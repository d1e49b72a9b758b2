package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
)

func TestTaskbarReconcile(t *testing.T) {
	tb := NewTaskbar()

	assert.True(t, tb.Reconcile([]panel.Kind{panel.About, panel.Skills}))
	assert.Equal(t, []panel.Kind{panel.About, panel.Skills}, tb.Order())

	tb.Move(0, 1)
	assert.Equal(t, []panel.Kind{panel.Skills, panel.About}, tb.Order())

	// New entries are appended, closed ones dropped, local order kept
	assert.True(t, tb.Reconcile([]panel.Kind{panel.About, panel.Skills, panel.Contact}))
	assert.Equal(t, []panel.Kind{panel.Skills, panel.About, panel.Contact}, tb.Order())

	assert.True(t, tb.Reconcile([]panel.Kind{panel.About, panel.Contact}))
	assert.Equal(t, []panel.Kind{panel.About, panel.Contact}, tb.Order())

	assert.False(t, tb.Reconcile([]panel.Kind{panel.About, panel.Contact}))
}

func TestTaskbarMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []panel.Kind
		changed  bool
	}{
		{name: "first to last", from: 0, to: 2, want: []panel.Kind{panel.Skills, panel.Contact, panel.About}, changed: true},
		{name: "last to first", from: 2, to: 0, want: []panel.Kind{panel.Contact, panel.About, panel.Skills}, changed: true},
		{name: "same index", from: 1, to: 1, want: []panel.Kind{panel.About, panel.Skills, panel.Contact}},
		{name: "out of range", from: 0, to: 7, want: []panel.Kind{panel.About, panel.Skills, panel.Contact}},
		{name: "negative", from: -1, to: 0, want: []panel.Kind{panel.About, panel.Skills, panel.Contact}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := NewTaskbar()
			tb.Reconcile([]panel.Kind{panel.About, panel.Skills, panel.Contact})

			assert.Equal(t, tt.changed, tb.Move(tt.from, tt.to))
			assert.Equal(t, tt.want, tb.Order())
		})
	}
}

func TestTaskbarReplaceSanitizes(t *testing.T) {
	tb := NewTaskbar()
	open := []panel.Kind{panel.About, panel.Skills, panel.Contact}
	tb.Reconcile(open)

	changed := tb.Replace([]panel.Kind{panel.Contact, panel.Music, panel.Contact, panel.About}, open)

	assert.True(t, changed)
	assert.Equal(t, []panel.Kind{panel.Contact, panel.About, panel.Skills}, tb.Order())
}

func TestTaskbarReplaceSameOrderUnchanged(t *testing.T) {
	tb := NewTaskbar()
	open := []panel.Kind{panel.About, panel.Skills}
	tb.Reconcile(open)

	assert.False(t, tb.Replace([]panel.Kind{panel.About, panel.Skills}, open))
	assert.False(t, tb.Replace([]panel.Kind{panel.About, panel.About}, open), "duplicates and missing entries normalize to the current order")
	assert.Equal(t, open, tb.Order())
}

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
)

func activeOf(t *testing.T, m *Manager) panel.Kind {
	t.Helper()
	k, _ := m.Active()
	return k
}

func TestOpenAddsExactlyOneAndActivates(t *testing.T) {
	m := NewManager(DefaultConfig())

	require.True(t, m.Open(panel.About))
	assert.Equal(t, []panel.Kind{panel.About}, m.OpenPanels())
	assert.Equal(t, panel.About, activeOf(t, m))

	// Opening again does not duplicate
	m.Open(panel.About)
	assert.Len(t, m.OpenPanels(), 1)
}

func TestCloseClearsEverything(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Minimize(panel.About, true)

	require.True(t, m.Close(panel.About))
	assert.False(t, m.IsOpen(panel.About))
	assert.False(t, m.IsMinimized(panel.About))
	_, ok := m.Active()
	assert.False(t, ok)
	assert.Empty(t, m.Snapshot().Taskbar)
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Projects)

	m.Close(panel.About)
	assert.Equal(t, panel.Projects, activeOf(t, m))
}

func TestMinimizeRestoreRoundTrip(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.Skills)

	require.True(t, m.Minimize(panel.Skills, true))
	assert.True(t, m.IsMinimized(panel.Skills))
	_, ok := m.Active()
	assert.False(t, ok, "minimized window must not stay active")

	require.True(t, m.Minimize(panel.Skills, false))
	assert.True(t, m.IsOpen(panel.Skills))
	assert.False(t, m.IsMinimized(panel.Skills))
	assert.Equal(t, panel.Skills, activeOf(t, m))
}

func TestMinimizePassesActivationToTopmostVisible(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Skills)
	m.Open(panel.Contact)
	m.Activate(panel.Skills)

	m.Minimize(panel.Skills, true)
	assert.Equal(t, panel.Contact, activeOf(t, m))
}

func TestOperationsOnAbsentPanelsAreNoops(t *testing.T) {
	m := NewManager(DefaultConfig())

	assert.False(t, m.Close(panel.About))
	assert.False(t, m.Minimize(panel.About, true))
	assert.False(t, m.Minimize(panel.About, false))
	assert.False(t, m.Activate(panel.About))
	assert.False(t, m.BeginDrag(panel.About, Point{}))
	assert.False(t, m.ToggleMaximize(panel.About))
	assert.Empty(t, m.OpenPanels())
}

func TestExampleScenario(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Open(panel.About)
	assert.Equal(t, []panel.Kind{panel.About}, m.OpenPanels())
	assert.Equal(t, panel.About, activeOf(t, m))

	m.Open(panel.Projects)
	assert.Equal(t, []panel.Kind{panel.About, panel.Projects}, m.OpenPanels())
	assert.Equal(t, panel.Projects, activeOf(t, m))

	m.Minimize(panel.Projects, true)
	assert.Equal(t, []panel.Kind{panel.Projects}, m.Snapshot().Minimized)

	m.Activate(panel.About)
	assert.Equal(t, panel.About, activeOf(t, m))

	m.Close(panel.About)
	assert.Equal(t, []panel.Kind{panel.Projects}, m.OpenPanels())
	_, ok := m.Active()
	assert.False(t, ok)
}

func TestOpenRestoresMinimized(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.Contact)
	m.Minimize(panel.Contact, true)

	assert.True(t, m.Open(panel.Contact))
	assert.False(t, m.IsMinimized(panel.Contact))
	assert.Equal(t, panel.Contact, activeOf(t, m))
}

func TestActivateRaisesZIndex(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Projects)

	about, _ := m.Get(panel.About)
	projects, _ := m.Get(panel.Projects)
	require.Greater(t, projects.ZIndex, about.ZIndex)

	m.Activate(panel.About)
	about, _ = m.Get(panel.About)
	assert.Greater(t, about.ZIndex, projects.ZIndex)
	assert.True(t, about.Active)
}

func TestActivateMinimizedDoesNotMakeItActive(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Projects)
	m.Minimize(panel.Projects, true)

	m.Activate(panel.Projects)
	assert.Equal(t, panel.About, activeOf(t, m))
}

func TestCascadePlacement(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Projects)

	about, _ := m.Get(panel.About)
	projects, _ := m.Get(panel.Projects)
	assert.Equal(t, Point{X: 100, Y: 100}, about.Position)
	assert.Equal(t, Point{X: 130, Y: 130}, projects.Position)
}

func TestReopenDiscardsGeometryByDefault(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.MoveTo(panel.About, Point{X: 500, Y: 400})
	m.Close(panel.About)
	m.Open(panel.About)

	about, _ := m.Get(panel.About)
	assert.Equal(t, Point{X: 100, Y: 100}, about.Position)
}

func TestReopenRetainsGeometryWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetainGeometry = true
	m := NewManager(cfg)
	m.Open(panel.About)
	m.MoveTo(panel.About, Point{X: 500, Y: 400})
	m.Close(panel.About)
	m.Open(panel.About)

	about, _ := m.Get(panel.About)
	assert.Equal(t, Point{X: 500, Y: 400}, about.Position)
}

func TestTaskbarClickTogglesActive(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)

	m.TaskbarClick(panel.About)
	assert.True(t, m.IsMinimized(panel.About))

	m.TaskbarClick(panel.About)
	assert.False(t, m.IsMinimized(panel.About))
	assert.Equal(t, panel.About, activeOf(t, m))
}

func TestReorderDoesNotAffectStacking(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Open(panel.About)
	m.Open(panel.Projects)
	before := m.Snapshot()

	require.True(t, m.Reorder([]panel.Kind{panel.Projects, panel.About}))
	after := m.Snapshot()

	assert.Equal(t, []panel.Kind{panel.Projects, panel.About}, after.Taskbar)
	assert.Equal(t, before.Windows, after.Windows)
	assert.Equal(t, before.Active, after.Active)
}

func TestWithTitles(t *testing.T) {
	m := NewManager(DefaultConfig()).WithTitles(map[panel.Kind]string{panel.About: "Who am I"})
	m.Open(panel.About)
	v, _ := m.Get(panel.About)
	assert.Equal(t, "Who am I", v.Title)
}

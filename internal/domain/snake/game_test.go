package snake

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() *Game {
	return New(rand.New(rand.NewSource(7)))
}

func TestStartState(t *testing.T) {
	g := newTestGame()
	s := g.State()

	assert.Equal(t, []Cell{{X: 5, Y: 5}}, s.Snake)
	assert.Equal(t, Cell{X: 2, Y: 2}, s.Food)
	assert.Equal(t, Right, s.Direction)
	assert.Zero(t, s.Score)
	assert.False(t, s.GameOver)
}

func TestStraightLineMovement(t *testing.T) {
	tests := []struct {
		name  string
		turn  *Direction
		ticks int
		want  Cell
	}{
		{name: "right without wrap", ticks: 3, want: Cell{X: 8, Y: 5}},
		{name: "right with wrap", ticks: 7, want: Cell{X: 2, Y: 5}},
		{name: "down", turn: &Down, ticks: 4, want: Cell{X: 5, Y: 9}},
		{name: "up wraps to bottom", turn: &Up, ticks: 6, want: Cell{X: 5, Y: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame()
			g.food = Cell{X: 0, Y: 0} // keep food off the path
			if tt.turn != nil {
				require.True(t, g.Turn(*tt.turn))
			}
			for i := 0; i < tt.ticks; i++ {
				require.NotEqual(t, Collided, g.Step())
			}
			assert.Equal(t, tt.want, g.State().Snake[0])
		})
	}
}

func TestReversalIgnored(t *testing.T) {
	g := newTestGame()

	assert.False(t, g.Turn(Left), "reversal onto the same axis")
	assert.False(t, g.Turn(Right), "same heading")
	g.Step()
	assert.Equal(t, Cell{X: 6, Y: 5}, g.State().Snake[0])
	assert.Equal(t, Right, g.State().Direction)
}

func TestTurnComparesAgainstAppliedDirection(t *testing.T) {
	g := newTestGame()

	require.True(t, g.Turn(Up))
	// Still heading right until the next step, so left stays rejected
	assert.False(t, g.Turn(Left))
	g.Step()
	assert.Equal(t, Up, g.State().Direction)
	assert.True(t, g.Turn(Left))
}

func TestInvalidDirection(t *testing.T) {
	g := newTestGame()
	assert.False(t, g.Turn(Direction{X: 1, Y: 1}))
	assert.False(t, g.Turn(Direction{X: 0, Y: 2}))

	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	d, err := ParseDirection("ArrowDown")
	require.NoError(t, err)
	assert.Equal(t, Down, d)
}

func TestEatingGrowsAndScores(t *testing.T) {
	g := newTestGame()
	g.food = Cell{X: 6, Y: 5}

	require.Equal(t, Ate, g.Step())
	s := g.State()
	assert.Len(t, s.Snake, 2)
	assert.Equal(t, 1, s.Score)
	assert.NotContains(t, s.Snake, s.Food)
}

func TestFoodNeverSpawnsInsideBody(t *testing.T) {
	g := newTestGame()
	// Long body along row 5, head at x=9
	g.snake = []Cell{{9, 5}, {8, 5}, {7, 5}, {6, 5}, {5, 5}, {4, 5}, {3, 5}, {2, 5}}
	for i := 0; i < 50; i++ {
		g.gameOver = false
		g.snake = []Cell{{9, 5}, {8, 5}, {7, 5}, {6, 5}, {5, 5}, {4, 5}, {3, 5}, {2, 5}}
		g.dir, g.next = Right, Right
		g.food = Cell{X: 0, Y: 5}

		require.Equal(t, Ate, g.Step())
		assert.NotContains(t, g.State().Snake, g.State().Food)
	}
}

func TestSelfCollisionEndsGame(t *testing.T) {
	g := newTestGame()
	g.food = Cell{X: 0, Y: 0}
	// Head at (5,5) moving right into a loop
	g.snake = []Cell{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {6, 4}}
	g.dir, g.next = Up, Up
	require.True(t, g.Turn(Right))

	assert.Equal(t, Collided, g.Step())
	assert.True(t, g.Over())

	before := g.State()
	assert.Equal(t, Finished, g.Step(), "terminal state")
	assert.Equal(t, before, g.State())
	assert.False(t, g.Turn(Down))
}

func TestFillingBoardWins(t *testing.T) {
	g := newTestGame()
	var body []Cell
	// Everything except (0,0) and the head target; snake head at (9,9) moving right onto food (0,9)
	body = append(body, Cell{9, 9})
	for y := 9; y >= 0; y-- {
		for x := 9; x >= 0; x-- {
			c := Cell{x, y}
			if c == (Cell{9, 9}) || c == (Cell{0, 9}) {
				continue
			}
			body = append(body, c)
		}
	}
	g.snake = body
	g.food = Cell{0, 9}

	assert.Equal(t, Filled, g.Step())
	s := g.State()
	assert.True(t, s.GameOver)
	assert.True(t, s.Won)
	assert.Len(t, s.Snake, BoardSize*BoardSize)
}

func TestReset(t *testing.T) {
	g := newTestGame()
	g.food = Cell{X: 6, Y: 5}
	g.Step()
	g.Turn(Down)
	g.Step()

	g.Reset()
	assert.Equal(t, New(nil).State(), g.State())
}

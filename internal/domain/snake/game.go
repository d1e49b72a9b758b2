// Package snake implements the desktop's snake mini-game: a toroidal grid,
// a direction buffer that rejects same-tick reversals, and growth on food.
package snake

import (
	"errors"
	"math/rand"
)

// BoardSize is the side length of the square grid.
const BoardSize = 10

// ErrInvalidDirection is returned for directions that are not unit steps.
var ErrInvalidDirection = errors.New("invalid direction")

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a unit step along one axis.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// ParseDirection maps arrow-key and word names to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "ArrowUp":
		return Up, nil
	case "down", "ArrowDown":
		return Down, nil
	case "left", "ArrowLeft":
		return Left, nil
	case "right", "ArrowRight":
		return Right, nil
	}
	return Direction{}, ErrInvalidDirection
}

func (d Direction) valid() bool {
	return (d.X == 0) != (d.Y == 0) && d.X >= -1 && d.X <= 1 && d.Y >= -1 && d.Y <= 1
}

func (d Direction) horizontal() bool { return d.Y == 0 }

// State is a copy of the game for rendering.
type State struct {
	Snake     []Cell    `json:"snake"`
	Food      Cell      `json:"food"`
	Direction Direction `json:"direction"`
	Score     int       `json:"score"`
	GameOver  bool      `json:"game_over"`
	Won       bool      `json:"won,omitempty"`
	Ticks     int       `json:"ticks"`
}

// Outcome describes what a single step did.
type Outcome int

const (
	Moved Outcome = iota
	Ate
	Collided
	Filled
	Finished // game was already over; nothing happened
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Ate:
		return "ate"
	case Collided:
		return "collided"
	case Filled:
		return "filled"
	default:
		return "finished"
	}
}

// Game holds the grid state. Not safe for concurrent use.
type Game struct {
	size     int
	snake    []Cell // head first
	food     Cell
	dir      Direction
	next     Direction
	score    int
	gameOver bool
	won      bool
	ticks    int
	rng      *rand.Rand
}

// New creates a game at its start state. A nil rng uses a time-seeded source.
func New(rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	g := &Game{size: BoardSize, rng: rng}
	g.Reset()
	return g
}

// Reset reinitializes snake, food, score and both direction buffers.
func (g *Game) Reset() {
	g.snake = []Cell{{X: 5, Y: 5}}
	g.food = Cell{X: 2, Y: 2}
	g.dir = Right
	g.next = Right
	g.score = 0
	g.gameOver = false
	g.won = false
	g.ticks = 0
}

// Turn buffers a direction change. Only turns onto the axis orthogonal to
// the current heading are accepted, so the snake cannot reverse into its
// own neck within one tick.
func (g *Game) Turn(d Direction) bool {
	if !d.valid() || g.gameOver {
		return false
	}
	if d.horizontal() == g.dir.horizontal() {
		return false
	}
	g.next = d
	return true
}

// Step advances the snake one cell.
func (g *Game) Step() Outcome {
	if g.gameOver {
		return Finished
	}
	g.dir = g.next
	g.ticks++

	head := g.snake[0]
	nh := Cell{
		X: (head.X + g.dir.X + g.size) % g.size,
		Y: (head.Y + g.dir.Y + g.size) % g.size,
	}

	if g.occupied(nh) {
		g.gameOver = true
		return Collided
	}

	grown := append([]Cell{nh}, g.snake...)
	if nh != g.food {
		g.snake = grown[:len(grown)-1]
		return Moved
	}

	g.snake = grown
	g.score++
	food, ok := g.freeCell()
	if !ok {
		g.gameOver = true
		g.won = true
		return Filled
	}
	g.food = food
	return Ate
}

// State returns a copy of the current game.
func (g *Game) State() State {
	body := make([]Cell, len(g.snake))
	copy(body, g.snake)
	return State{
		Snake:     body,
		Food:      g.food,
		Direction: g.dir,
		Score:     g.score,
		GameOver:  g.gameOver,
		Won:       g.won,
		Ticks:     g.ticks,
	}
}

// Over reports whether the game reached its terminal state.
func (g *Game) Over() bool { return g.gameOver }

// Score returns the number of food cells eaten.
func (g *Game) Score() int { return g.score }

func (g *Game) occupied(c Cell) bool {
	for _, s := range g.snake {
		if s == c {
			return true
		}
	}
	return false
}

// freeCell picks a uniformly random cell outside the body.
func (g *Game) freeCell() (Cell, bool) {
	free := make([]Cell, 0, g.size*g.size-len(g.snake))
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			c := Cell{X: x, Y: y}
			if !g.occupied(c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, false
	}
	return free[g.rng.Intn(len(free))], true
}

package shell

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/snake"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// OpenGame opens the panel of the catalog game id.
func (s *Shell) OpenGame(gameID string) (window.Snapshot, error) {
	game, ok := s.catalog.Game(gameID)
	if !ok {
		return window.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}
	return s.OpenPanel(game.Panel)
}

// SnakeTurn buffers a direction change. It reports false when the turn was
// rejected or the game is not open.
func (s *Shell) SnakeTurn(d snake.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return false, err
	}
	if !s.windows.IsOpen(panel.Snake) {
		return false, nil
	}
	return s.snake.Turn(d), nil
}

// SnakeReset starts a fresh game, opening the panel if needed.
func (s *Shell) SnakeReset() (snake.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return snake.State{}, err
	}
	if !s.windows.IsOpen(panel.Snake) {
		s.open(panel.Snake)
		return s.snake.State(), nil
	}
	s.startSnake()
	return s.snake.State(), nil
}

// SnakeState returns the current game.
func (s *Shell) SnakeState() snake.State {
	return s.snake.State()
}

// startSnake begins a new game when the panel opens. Must hold mu.
func (s *Shell) startSnake() {
	s.metrics.SnakeStarted()
	state := s.snake.Reset(s.ctx)
	s.emit("snake.started", state)
}

// stopSnake ends the game loop. Must hold mu.
func (s *Shell) stopSnake() {
	s.snake.Stop()
	s.emit("snake.stopped", s.snake.State())
}

// onSnakeTick runs on the runner goroutine and must not take mu.
func (s *Shell) onSnakeTick(state snake.State, outcome snake.Outcome) {
	s.emit("snake.tick", state)
	if state.GameOver {
		s.metrics.SnakeEnded(state.Score, state.Won)
		s.emit("snake.over", state)
		s.logger.Debug("snake finished",
			zap.Int("score", state.Score),
			zap.Bool("won", state.Won),
			zap.Stringer("outcome", outcome),
		)
	}
}

package snake

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is the game's step period.
const DefaultTick = 120 * time.Millisecond

// TickFunc observes every step. It is called outside the runner's lock.
type TickFunc func(state State, outcome Outcome)

// Runner drives a Game on a fixed-period ticker until the game ends or the
// runner is stopped.
type Runner struct {
	mu      sync.Mutex
	game    *Game
	tick    time.Duration
	onTick  TickFunc
	logger  *zap.Logger
	cancel  context.CancelFunc // protected by mu
	done    chan struct{}      // protected by mu
	running bool               // protected by mu
}

// NewRunner wraps game. A zero tick uses DefaultTick.
func NewRunner(game *Game, tick time.Duration, onTick TickFunc, logger *zap.Logger) *Runner {
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if onTick == nil {
		onTick = func(State, Outcome) {}
	}
	return &Runner{
		game:   game,
		tick:   tick,
		onTick: onTick,
		logger: logger,
	}
}

// Start launches the tick loop. It is a no-op if already running or if the
// game is over.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || r.game.Over() {
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.loop(loopCtx, r.done)
	r.logger.Debug("snake loop started", zap.Duration("tick", r.tick))
	return true
}

// Stop cancels the loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Reset stops the loop, restores the start state and starts again.
func (r *Runner) Reset(ctx context.Context) State {
	r.Stop()

	r.mu.Lock()
	r.game.Reset()
	state := r.game.State()
	r.mu.Unlock()

	r.Start(ctx)
	return state
}

// Turn buffers a direction change.
func (r *Runner) Turn(d Direction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Turn(d)
}

// State returns a copy of the game.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.State()
}

// Running reports whether the tick loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(r.tick)
	defer func() {
		ticker.Stop()
		r.mu.Lock()
		if r.cancel != nil {
			r.cancel()
		}
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			outcome := r.game.Step()
			state := r.game.State()
			r.mu.Unlock()

			r.onTick(state, outcome)

			if state.GameOver {
				r.logger.Debug("snake game over",
					zap.Int("score", state.Score),
					zap.Bool("won", state.Won),
				)
				return
			}
		}
	}
}

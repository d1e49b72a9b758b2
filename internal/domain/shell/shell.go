package shell

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/audio"
	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/events"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/snake"
	"github.com/GriffinCanCode/deskfolio/internal/domain/theme"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/storage"
)

var (
	// ErrAsleep rejects intents while the sleep screen covers the desktop.
	ErrAsleep = errors.New("desktop is asleep")
	// ErrClosed rejects intents after the session ended.
	ErrClosed = errors.New("session closed")
	// ErrUnknownGame is returned by OpenGame for ids not in the catalog.
	ErrUnknownGame = errors.New("unknown game")
)

// Clock formats for the taskbar and sleep screen.
const (
	TimeLayout = "15:04"
	DateLayout = "Monday, January 2"
)

// Metrics receives domain counters. *monitoring.Metrics satisfies it.
type Metrics interface {
	WindowOp(op string)
	ThemeToggled(mode string, persisted bool)
	PlaybackFailed(track string)
	EventDropped()
	SnakeStarted()
	SnakeEnded(score int, won bool)
}

type nopMetrics struct{}

func (nopMetrics) WindowOp(string)           {}
func (nopMetrics) ThemeToggled(string, bool) {}
func (nopMetrics) PlaybackFailed(string)     {}
func (nopMetrics) EventDropped()             {}
func (nopMetrics) SnakeStarted()             {}
func (nopMetrics) SnakeEnded(int, bool)      {}

// Options configures a Shell.
type Options struct {
	Catalog    *catalog.Catalog
	Window     window.Config
	SnakeTick  time.Duration
	Media      audio.Media
	Store      storage.Store
	VisitorKey string
	ThemeHint  theme.Mode
	Metrics    Metrics
	Logger     *zap.Logger
	Rand       *rand.Rand
	Now        func() time.Time
}

// Clock is the formatted server time.
type Clock struct {
	Time string `json:"time"`
	Date string `json:"date"`
}

// State is a full copy of the session for rendering.
type State struct {
	SessionID     string          `json:"session_id"`
	Asleep        bool            `json:"asleep"`
	StartMenuOpen bool            `json:"start_menu_open"`
	Windows       window.Snapshot `json:"windows"`
	Icons         []desktop.Icon  `json:"icons"`
	Theme         theme.Mode      `json:"theme"`
	Audio         audio.State     `json:"audio"`
	Snake         *snake.State    `json:"snake,omitempty"`
	Clock         Clock           `json:"clock"`
}

// PlaybackFailure is the payload of audio.failed.
type PlaybackFailure struct {
	Track audio.Track `json:"track"`
	Error string      `json:"error"`
}

// Shell is one visitor session.
type Shell struct {
	mu sync.Mutex

	id        string
	asleep    bool
	startMenu bool
	closed    bool

	catalog *catalog.Catalog
	windows *window.Manager
	desktop *desktop.Desktop
	theme   *theme.Service
	audio   *audio.Session
	snake   *snake.Runner
	bus     *events.Bus

	ctx     context.Context
	cancel  context.CancelFunc
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New builds a sleeping session. ctx bounds the session's background work
// and the initial theme lookup.
func New(ctx context.Context, id string, opts Options) (*Shell, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Window == (window.Config{}) {
		opts.Window = window.DefaultConfig()
	}
	logger := opts.Logger.With(zap.String("session_id", id))

	s := &Shell{
		id:      id,
		asleep:  true,
		catalog: opts.Catalog,
		windows: window.NewManager(opts.Window).WithTitles(opts.Catalog.TitleMap()),
		desktop: desktop.New(opts.Catalog.Icons),
		metrics: opts.Metrics,
		logger:  logger,
		now:     opts.Now,
	}
	s.bus = events.NewBus(func(events.Event) { s.metrics.EventDropped() })

	player, err := audio.NewSession(opts.Catalog.Playlist, opts.Media, func(t audio.Track, err error) {
		s.metrics.PlaybackFailed(t.Title)
		s.emit("audio.failed", PlaybackFailure{Track: t, Error: err.Error()})
	}, logger.Named("audio"))
	if err != nil {
		return nil, fmt.Errorf("audio session: %w", err)
	}
	s.audio = player

	s.theme = theme.Load(ctx, opts.Store, opts.VisitorKey, opts.ThemeHint, logger.Named("theme"))
	s.snake = snake.NewRunner(snake.New(opts.Rand), opts.SnakeTick, s.onSnakeTick, logger.Named("snake"))
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	return s, nil
}

// ID returns the session id.
func (s *Shell) ID() string { return s.id }

// Subscribe attaches a stream subscriber.
func (s *Shell) Subscribe(buffer int) *events.Subscription {
	return s.bus.Subscribe(buffer)
}

// Subscribers returns the number of attached stream subscribers.
func (s *Shell) Subscribers() int {
	return s.bus.Subscribers()
}

// Close stops the snake runner and closes every subscription. Idempotent.
func (s *Shell) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.snake.Stop()
	s.bus.Close()
}

// Clock returns the current time formatted for display.
func (s *Shell) Clock() Clock {
	now := s.now()
	return Clock{Time: now.Format(TimeLayout), Date: now.Format(DateLayout)}
}

// Snapshot returns the whole session.
func (s *Shell) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Shell) snapshot() State {
	st := State{
		SessionID:     s.id,
		Asleep:        s.asleep,
		StartMenuOpen: s.startMenu,
		Windows:       s.windows.Snapshot(),
		Icons:         s.desktop.Icons(),
		Theme:         s.theme.Mode(),
		Audio:         s.audio.State(),
		Clock:         s.Clock(),
	}
	if s.windows.IsOpen(panel.Snake) {
		game := s.snake.State()
		st.Snake = &game
	}
	return st
}

// Wake dismisses the sleep screen.
func (s *Shell) Wake() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return State{}, ErrClosed
	}
	if s.asleep {
		s.asleep = false
		s.emit("shell.woke", s.Clock())
	}
	return s.snapshot(), nil
}

// Sleep shows the sleep screen and closes the start menu.
func (s *Shell) Sleep() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return State{}, err
	}
	s.asleep = true
	if s.startMenu {
		s.startMenu = false
		s.emit("shell.start_menu", startMenuPayload{Open: false})
	}
	s.emit("shell.slept", s.Clock())
	return s.snapshot(), nil
}

type startMenuPayload struct {
	Open bool `json:"open"`
}

// ToggleStartMenu opens or closes the start menu.
func (s *Shell) ToggleStartMenu() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return false, err
	}
	s.startMenu = !s.startMenu
	s.emit("shell.start_menu", startMenuPayload{Open: s.startMenu})
	return s.startMenu, nil
}

// CloseStartMenu closes the start menu if open.
func (s *Shell) CloseStartMenu() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	if s.startMenu {
		s.startMenu = false
		s.emit("shell.start_menu", startMenuPayload{Open: false})
	}
	return nil
}

// StartMenuSelect opens k and closes the menu.
func (s *Shell) StartMenuSelect(k panel.Kind) (window.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return window.Snapshot{}, err
	}
	s.open(k)
	if s.startMenu {
		s.startMenu = false
		s.emit("shell.start_menu", startMenuPayload{Open: false})
	}
	return s.windows.Snapshot(), nil
}

// ready must be called with mu held.
func (s *Shell) ready() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.asleep:
		return ErrAsleep
	}
	return nil
}

func (s *Shell) emit(typ string, payload any) {
	s.bus.Publish(typ, payload)
}

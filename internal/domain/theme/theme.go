// Package theme owns a visitor's dark/light preference.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/storage"
)

// Key is the preference name the mode is persisted under.
const Key = "theme"

// Mode is the colour scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ErrUnknownMode is returned when a stored or supplied mode is neither dark
// nor light.
var ErrUnknownMode = errors.New("unknown theme mode")

// ParseMode accepts "dark" or "light", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Flip returns the other mode.
func (m Mode) Flip() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string { return string(m) }

// FromHint maps the Sec-CH-Prefers-Color-Scheme client hint to a mode.
// Anything but "dark" is light.
func FromHint(hint string) Mode {
	if strings.EqualFold(strings.Trim(hint, `" `), "dark") {
		return Dark
	}
	return Light
}

// Service holds one visitor's mode and writes changes through to the store.
type Service struct {
	mu        sync.Mutex
	store     storage.Store
	namespace string
	mode      Mode
	logger    *zap.Logger
}

// Load reads the persisted mode for namespace, falling back to the ambient
// hint. Read failures are logged and treated as no preference.
func Load(ctx context.Context, store storage.Store, namespace string, hint Mode, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hint != Dark {
		hint = Light
	}
	s := &Service{store: store, namespace: namespace, mode: hint, logger: logger}

	raw, err := store.Get(ctx, namespace, Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.Warn("theme preference unreadable", zap.String("visitor", namespace), zap.Error(err))
	default:
		mode, perr := ParseMode(raw)
		if perr != nil {
			logger.Warn("theme preference ignored", zap.String("visitor", namespace), zap.Error(perr))
			break
		}
		s.mode = mode
	}
	return s
}

// Mode returns the current mode.
func (s *Service) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Toggle flips the mode and persists it. The in-memory mode flips even when
// the write fails; the error is returned wrapped.
func (s *Service) Toggle(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	s.mode = s.mode.Flip()
	mode := s.mode
	s.mu.Unlock()

	if err := s.store.Set(ctx, s.namespace, Key, mode.String()); err != nil {
		s.logger.Warn("theme preference not saved", zap.String("visitor", s.namespace), zap.Error(err))
		return mode, fmt.Errorf("persist theme: %w", err)
	}
	return mode, nil
}

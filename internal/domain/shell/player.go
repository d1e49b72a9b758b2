package shell

import (
	"context"

	"github.com/GriffinCanCode/deskfolio/internal/domain/audio"
	"github.com/GriffinCanCode/deskfolio/internal/domain/theme"
)

// ThemeEvent is the payload of theme.changed.
type ThemeEvent struct {
	Mode      theme.Mode `json:"mode"`
	Persisted bool       `json:"persisted"`
}

// ToggleTheme flips light and dark. A failed write still flips the session
// and reports Persisted=false.
func (s *Shell) ToggleTheme(ctx context.Context) (ThemeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return ThemeEvent{}, err
	}
	mode, err := s.theme.Toggle(ctx)
	ev := ThemeEvent{Mode: mode, Persisted: err == nil}
	s.metrics.ThemeToggled(mode.String(), ev.Persisted)
	s.emit("theme.changed", ev)
	return ev, nil
}

// Theme returns the current mode.
func (s *Shell) Theme() theme.Mode {
	return s.theme.Mode()
}

// audioOp runs fn against the player under the gate and publishes the
// resulting state.
func (s *Shell) audioOp(fn func() audio.State) (audio.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return audio.State{}, err
	}
	before := s.audio.State()
	after := fn()
	if after != before {
		s.emit("audio.changed", after)
	}
	return after, nil
}

// transport runs a playback operation under the gate, then checks the
// started track with the lock released so a slow media host does not stall
// the session.
func (s *Shell) transport(ctx context.Context, fn func() (audio.State, *audio.Start)) (audio.State, error) {
	var start *audio.Start
	st, err := s.audioOp(func() audio.State {
		var next audio.State
		next, start = fn()
		return next
	})
	if err != nil || start == nil {
		return st, err
	}

	checkErr := s.audio.Check(ctx, start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return st, nil
	}
	st, changed := s.audio.Settle(start, checkErr)
	if changed {
		s.emit("audio.changed", st)
	}
	return st, nil
}

// PlayPause toggles playback of the current track.
func (s *Shell) PlayPause(ctx context.Context) (audio.State, error) {
	return s.transport(ctx, s.audio.PlayPause)
}

// NextTrack advances the playlist.
func (s *Shell) NextTrack(ctx context.Context) (audio.State, error) {
	return s.transport(ctx, s.audio.Next)
}

// PreviousTrack steps back in the playlist.
func (s *Shell) PreviousTrack(ctx context.Context) (audio.State, error) {
	return s.transport(ctx, s.audio.Previous)
}

// TrackEnded advances after the client reports the track finished.
func (s *Shell) TrackEnded(ctx context.Context) (audio.State, error) {
	return s.transport(ctx, s.audio.Ended)
}

// SetVolume sets the volume in [0,1].
func (s *Shell) SetVolume(v float64) (audio.State, error) {
	return s.audioOp(func() audio.State { return s.audio.SetVolume(v) })
}

// ToggleMute flips mute.
func (s *Shell) ToggleMute() (audio.State, error) {
	return s.audioOp(s.audio.ToggleMute)
}

// Seek jumps to fraction of the current track once its duration is known.
func (s *Shell) Seek(fraction float64) (audio.State, error) {
	return s.audioOp(func() audio.State {
		st, _ := s.audio.Seek(fraction)
		return st
	})
}

// Progress records a client time update. Progress is frequent, so it does
// not publish an event.
func (s *Shell) Progress(position, duration float64) (audio.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return audio.State{}, err
	}
	return s.audio.Progress(position, duration), nil
}

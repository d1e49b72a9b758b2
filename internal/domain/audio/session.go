// Package audio models the desktop music player: a looping playlist with
// play/pause, volume and mute, and client-reported playback position.
//
// Actual decoding happens in the browser. Starting a track yields a Start
// that the owner checks against the Media collaborator outside its lock; a
// refusal puts the player back to paused and is only logged.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// DefaultVolume is the initial volume.
const DefaultVolume = 0.075

// ErrEmptyPlaylist is returned when a session is created without tracks.
var ErrEmptyPlaylist = errors.New("playlist is empty")

// Track is one playlist entry.
type Track struct {
	Title  string `json:"title" yaml:"title" toml:"title"`
	Artist string `json:"artist" yaml:"artist" toml:"artist"`
	Src    string `json:"src" yaml:"src" toml:"src"`
}

// Media checks that a track can start playing.
type Media interface {
	Play(ctx context.Context, t Track) error
}

// FailureFunc observes tracks that failed to start.
type FailureFunc func(t Track, err error)

// State is a copy of the session for rendering.
type State struct {
	Track    Track   `json:"track"`
	Index    int     `json:"index"`
	Count    int     `json:"count"`
	Playing  bool    `json:"playing"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Progress float64 `json:"progress"` // percent
	Elapsed  string  `json:"elapsed"`
	Length   string  `json:"length"`
}

// Session is one visitor's player. Not safe for concurrent use.
type Session struct {
	playlist  []Track
	index     int
	playing   bool
	volume    float64
	muted     bool
	position  float64
	duration  float64
	gen       uint64
	media     Media
	onFailure FailureFunc
	logger    *zap.Logger
}

// NewSession starts paused on the first track at DefaultVolume.
func NewSession(playlist []Track, media Media, onFailure FailureFunc, logger *zap.Logger) (*Session, error) {
	if len(playlist) == 0 {
		return nil, ErrEmptyPlaylist
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tracks := make([]Track, len(playlist))
	copy(tracks, playlist)
	return &Session{
		playlist:  tracks,
		volume:    DefaultVolume,
		media:     media,
		onFailure: onFailure,
		logger:    logger,
	}, nil
}

// Start is a track waiting for the Media check. The owner runs Check
// without holding its own lock, then hands the result to Settle.
type Start struct {
	Track Track
	gen   uint64
}

// PlayPause toggles playback. Switching to playing returns the track to
// check.
func (s *Session) PlayPause() (State, *Start) {
	s.gen++
	if s.playing {
		s.playing = false
		return s.State(), nil
	}
	s.playing = true
	return s.State(), s.start()
}

// Next advances with wrap-around. A playing session restarts on the new track.
func (s *Session) Next() (State, *Start) {
	return s.skip(1)
}

// Previous steps back with wrap-around.
func (s *Session) Previous() (State, *Start) {
	return s.skip(-1)
}

// Ended advances to the next track when the client reports the end of the
// current one.
func (s *Session) Ended() (State, *Start) {
	return s.skip(1)
}

func (s *Session) skip(delta int) (State, *Start) {
	s.gen++
	n := len(s.playlist)
	s.index = ((s.index+delta)%n + n) % n
	s.position = 0
	s.duration = 0
	if !s.playing {
		return s.State(), nil
	}
	return s.State(), s.start()
}

func (s *Session) start() *Start {
	if s.media == nil {
		return nil
	}
	return &Start{Track: s.playlist[s.index], gen: s.gen}
}

// Check asks the Media collaborator whether st can play. It touches no
// session state.
func (s *Session) Check(ctx context.Context, st *Start) error {
	if st == nil || s.media == nil {
		return nil
	}
	return s.media.Play(ctx, st.Track)
}

// Settle applies a Check result. A failure pauses the player unless the
// player moved on since st was issued. It reports whether the state changed.
func (s *Session) Settle(st *Start, err error) (State, bool) {
	if st == nil || err == nil {
		return s.State(), false
	}
	s.logger.Warn("error playing audio",
		zap.String("track", st.Track.Title),
		zap.String("src", st.Track.Src),
		zap.Error(err),
	)
	if st.gen != s.gen || !s.playing {
		return s.State(), false
	}
	s.playing = false
	if s.onFailure != nil {
		s.onFailure(st.Track, err)
	}
	return s.State(), true
}

// SetVolume clamps v to [0,1]. Zero mutes; any other value unmutes.
func (s *Session) SetVolume(v float64) State {
	if math.IsNaN(v) {
		return s.State()
	}
	s.volume = math.Max(0, math.Min(1, v))
	if s.volume == 0 {
		s.muted = true
	} else if s.muted {
		s.muted = false
	}
	return s.State()
}

// ToggleMute flips the muted flag.
func (s *Session) ToggleMute() State {
	s.muted = !s.muted
	return s.State()
}

// Seek moves to fraction of the track. Ignored until the duration is known
// and finite.
func (s *Session) Seek(fraction float64) (State, bool) {
	if !known(s.duration) || math.IsNaN(fraction) {
		return s.State(), false
	}
	fraction = math.Max(0, math.Min(1, fraction))
	s.position = fraction * s.duration
	return s.State(), true
}

// Progress records a client time update.
func (s *Session) Progress(position, duration float64) State {
	if known(duration) {
		s.duration = duration
	}
	if !math.IsNaN(position) && position >= 0 {
		s.position = position
	}
	return s.State()
}

// State returns a copy of the session.
func (s *Session) State() State {
	st := State{
		Track:    s.playlist[s.index],
		Index:    s.index,
		Count:    len(s.playlist),
		Playing:  s.playing,
		Volume:   s.volume,
		Muted:    s.muted,
		Position: s.position,
		Duration: s.duration,
		Elapsed:  FormatTime(s.position),
		Length:   FormatTime(s.duration),
	}
	if known(s.duration) {
		st.Progress = s.position / s.duration * 100
	}
	return st
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if !known(seconds) && seconds != 0 {
		return "0:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func known(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

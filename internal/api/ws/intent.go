package ws

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/snake"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// ErrUnknownIntent is returned for intent types the stream does not handle.
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is one client message.
type Intent struct {
	Type      string   `json:"type"`
	Panel     string   `json:"panel,omitempty"`
	X         int      `json:"x,omitempty"`
	Y         int      `json:"y,omitempty"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
	Label     string   `json:"label,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Value     float64  `json:"value,omitempty"`
	Position  float64  `json:"position,omitempty"`
	Duration  float64  `json:"duration,omitempty"`
	From      int      `json:"from,omitempty"`
	To        int      `json:"to,omitempty"`
	Order     []string `json:"order,omitempty"`
	Game      string   `json:"game,omitempty"`
}

func (in Intent) point() window.Point { return window.Point{X: in.X, Y: in.Y} }

// dispatch applies in to s. State changes reach the client as bus events, so
// only queries return a reply body.
func dispatch(ctx context.Context, s *shell.Shell, in Intent) (any, error) {
	switch in.Type {
	case "ping":
		return nil, nil
	case "snapshot":
		return s.Snapshot(), nil
	case "clock":
		return s.Clock(), nil
	case "wake":
		_, err := s.Wake()
		return nil, err
	case "sleep":
		_, err := s.Sleep()
		return nil, err
	case "start_menu.toggle":
		_, err := s.ToggleStartMenu()
		return nil, err
	case "start_menu.close":
		return nil, s.CloseStartMenu()
	case "theme.toggle":
		_, err := s.ToggleTheme(ctx)
		return nil, err
	case "desktop.clear_selection":
		_, err := s.ClearSelection()
		return nil, err
	case "taskbar.move":
		_, err := s.MoveTaskbarEntry(in.From, in.To)
		return nil, err
	case "taskbar.reorder":
		seq := make([]panel.Kind, 0, len(in.Order))
		for _, raw := range in.Order {
			k, err := panel.Parse(raw)
			if err != nil {
				return nil, err
			}
			seq = append(seq, k)
		}
		_, err := s.ReorderTaskbar(seq)
		return nil, err
	case "game.open":
		_, err := s.OpenGame(in.Game)
		return nil, err
	}

	if ok, err := dispatchAudio(ctx, s, in); ok {
		return nil, err
	}
	if ok, err := dispatchSnake(s, in); ok {
		return nil, err
	}
	return dispatchPanel(s, in)
}

func dispatchAudio(ctx context.Context, s *shell.Shell, in Intent) (bool, error) {
	var err error
	switch in.Type {
	case "audio.play_pause":
		_, err = s.PlayPause(ctx)
	case "audio.next":
		_, err = s.NextTrack(ctx)
	case "audio.previous":
		_, err = s.PreviousTrack(ctx)
	case "audio.ended":
		_, err = s.TrackEnded(ctx)
	case "audio.mute":
		_, err = s.ToggleMute()
	case "audio.volume":
		_, err = s.SetVolume(in.Value)
	case "audio.seek":
		_, err = s.Seek(in.Value)
	case "audio.progress":
		_, err = s.Progress(in.Position, in.Duration)
	default:
		return false, nil
	}
	return true, err
}

func dispatchSnake(s *shell.Shell, in Intent) (bool, error) {
	switch in.Type {
	case "snake.turn":
		d, err := snake.ParseDirection(in.Direction)
		if err != nil {
			return true, err
		}
		_, err = s.SnakeTurn(d)
		return true, err
	case "snake.reset":
		_, err := s.SnakeReset()
		return true, err
	}
	return false, nil
}

// dispatchPanel handles the intents addressed to one panel.
func dispatchPanel(s *shell.Shell, in Intent) (any, error) {
	k, err := panel.Parse(in.Panel)
	if err != nil {
		if in.Panel == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
		}
		return nil, err
	}

	switch in.Type {
	case "start_menu.select":
		_, err = s.StartMenuSelect(k)
	case "window.open":
		_, err = s.OpenPanel(k)
	case "window.close":
		_, err = s.ClosePanel(k)
	case "window.minimize":
		_, err = s.MinimizePanel(k)
	case "window.restore":
		_, err = s.RestorePanel(k)
	case "window.activate":
		_, err = s.ActivatePanel(k)
	case "window.maximize":
		_, err = s.ToggleMaximize(k)
	case "window.drag_begin":
		_, err = s.BeginDrag(k, in.point())
	case "window.drag_move":
		_, err = s.DragTo(k, in.point())
	case "window.drag_end":
		_, err = s.EndDrag(k)
	case "window.move":
		_, err = s.MoveWindow(k, in.point())
	case "window.resize":
		_, err = s.ResizeWindow(k, window.Size{Width: in.Width, Height: in.Height})
	case "taskbar.click":
		_, err = s.TaskbarClick(k)
	case "icon.select":
		_, err = s.SelectIcon(k)
	case "icon.rename":
		_, err = s.RenameIcon(k, in.Label)
	case "icon.move":
		_, err = s.MoveIcon(k, in.point())
	case "icon.double_click":
		_, _, err = s.DoubleClickIcon(k)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
	return nil, err
}

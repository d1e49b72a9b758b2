package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/domain/audio"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/snake"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// Wake dismisses the sleep screen.
func (h *Handlers) Wake(c *gin.Context) {
	st, err := current(c).Wake()
	h.reply(c, st, err)
}

// Sleep shows the sleep screen.
func (h *Handlers) Sleep(c *gin.Context) {
	st, err := current(c).Sleep()
	h.reply(c, st, err)
}

// ToggleStartMenu opens or closes the start menu.
func (h *Handlers) ToggleStartMenu(c *gin.Context) {
	open, err := current(c).ToggleStartMenu()
	h.reply(c, gin.H{"open": open}, err)
}

// CloseStartMenu closes the start menu.
func (h *Handlers) CloseStartMenu(c *gin.Context) {
	err := current(c).CloseStartMenu()
	h.reply(c, gin.H{"open": false}, err)
}

// Clock returns the taskbar and sleep screen time strings.
func (h *Handlers) Clock(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Clock())
}

// StartMenuSelect opens a start menu entry.
func (h *Handlers) StartMenuSelect(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	snap, err := current(c).StartMenuSelect(k)
	h.reply(c, gin.H{"windows": snap}, err)
}

func (h *Handlers) window(fn func(s *shell.Shell, k panel.Kind) (window.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		k, ok := h.panelParam(c)
		if !ok {
			return
		}
		snap, err := fn(current(c), k)
		h.reply(c, gin.H{"windows": snap}, err)
	}
}

func (h *Handlers) windowAt(fn func(s *shell.Shell, k panel.Kind, p window.Point) (window.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		k, ok := h.panelParam(c)
		if !ok {
			return
		}
		var p window.Point
		if !h.bind(c, &p) {
			return
		}
		snap, err := fn(current(c), k, p)
		h.reply(c, gin.H{"windows": snap}, err)
	}
}

// ResizeWindow sets a window's size.
func (h *Handlers) ResizeWindow(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	var size window.Size
	if !h.bind(c, &size) {
		return
	}
	snap, err := current(c).ResizeWindow(k, size)
	h.reply(c, gin.H{"windows": snap}, err)
}

type reorderRequest struct {
	Order []string `json:"order" binding:"required"`
}

// ReorderTaskbar replaces the taskbar order.
func (h *Handlers) ReorderTaskbar(c *gin.Context) {
	var req reorderRequest
	if !h.bind(c, &req) {
		return
	}
	seq := make([]panel.Kind, 0, len(req.Order))
	for _, raw := range req.Order {
		k, err := panel.Parse(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		seq = append(seq, k)
	}
	snap, err := current(c).ReorderTaskbar(seq)
	h.reply(c, gin.H{"windows": snap}, err)
}

type moveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// MoveTaskbarEntry drags one taskbar entry to a new index.
func (h *Handlers) MoveTaskbarEntry(c *gin.Context) {
	var req moveRequest
	if !h.bind(c, &req) {
		return
	}
	snap, err := current(c).MoveTaskbarEntry(*req.From, *req.To)
	h.reply(c, gin.H{"windows": snap}, err)
}

// SelectIcon toggles an icon's selection.
func (h *Handlers) SelectIcon(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	icons, err := current(c).SelectIcon(k)
	h.reply(c, gin.H{"icons": icons}, err)
}

// ClearSelection deselects every icon.
func (h *Handlers) ClearSelection(c *gin.Context) {
	icons, err := current(c).ClearSelection()
	h.reply(c, gin.H{"icons": icons}, err)
}

type renameRequest struct {
	Label string `json:"label"`
}

// RenameIcon sets an icon label.
func (h *Handlers) RenameIcon(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	var req renameRequest
	if !h.bind(c, &req) {
		return
	}
	icons, err := current(c).RenameIcon(k, req.Label)
	h.reply(c, gin.H{"icons": icons}, err)
}

// MoveIcon places an icon.
func (h *Handlers) MoveIcon(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	var p window.Point
	if !h.bind(c, &p) {
		return
	}
	icons, err := current(c).MoveIcon(k, p)
	h.reply(c, gin.H{"icons": icons}, err)
}

// DoubleClickIcon opens, restores or activates an icon's panel.
func (h *Handlers) DoubleClickIcon(c *gin.Context) {
	k, ok := h.panelParam(c)
	if !ok {
		return
	}
	route, snap, err := current(c).DoubleClickIcon(k)
	h.reply(c, gin.H{"route": route.String(), "windows": snap}, err)
}

// GetTheme returns the session's mode.
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": current(c).Theme()})
}

// ToggleTheme flips light and dark.
func (h *Handlers) ToggleTheme(c *gin.Context) {
	ev, err := current(c).ToggleTheme(c.Request.Context())
	h.reply(c, ev, err)
}

// audio wraps the player operations that take no body.
func (h *Handlers) audio(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := current(c)
		ctx := c.Request.Context()
		var (
			st  audio.State
			err error
		)
		switch op {
		case "play-pause":
			st, err = s.PlayPause(ctx)
		case "next":
			st, err = s.NextTrack(ctx)
		case "previous":
			st, err = s.PreviousTrack(ctx)
		case "ended":
			st, err = s.TrackEnded(ctx)
		case "mute":
			st, err = s.ToggleMute()
		}
		h.reply(c, st, err)
	}
}

type volumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

// SetVolume sets the player volume.
func (h *Handlers) SetVolume(c *gin.Context) {
	var req volumeRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := current(c).SetVolume(*req.Volume)
	h.reply(c, st, err)
}

type seekRequest struct {
	Fraction *float64 `json:"fraction" binding:"required"`
}

// Seek jumps within the current track.
func (h *Handlers) Seek(c *gin.Context) {
	var req seekRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := current(c).Seek(*req.Fraction)
	h.reply(c, st, err)
}

type progressRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// Progress records the client's playback position.
func (h *Handlers) Progress(c *gin.Context) {
	var req progressRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := current(c).Progress(req.Position, req.Duration)
	h.reply(c, st, err)
}

type turnRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// SnakeTurn steers the snake.
func (h *Handlers) SnakeTurn(c *gin.Context) {
	var req turnRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := snake.ParseDirection(req.Direction)
	if err != nil {
		h.fail(c, err)
		return
	}
	accepted, err := current(c).SnakeTurn(d)
	h.reply(c, gin.H{"accepted": accepted}, err)
}

// SnakeReset starts a new game.
func (h *Handlers) SnakeReset(c *gin.Context) {
	st, err := current(c).SnakeReset()
	h.reply(c, st, err)
}

// SnakeState returns the game board.
func (h *Handlers) SnakeState(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).SnakeState())
}

// OpenGame opens a game from the games panel.
func (h *Handlers) OpenGame(c *gin.Context) {
	snap, err := current(c).OpenGame(c.Param("game"))
	h.reply(c, gin.H{"windows": snap}, err)
}

func (h *Handlers) reply(c *gin.Context, body any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

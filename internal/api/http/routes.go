package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
)

// Register mounts the public API on r. stream, when non-nil, serves
// GET /sessions/:sid/stream.
func (h *Handlers) Register(r gin.IRouter, stream gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/catalog", h.Catalog)

	create := append(gin.HandlersChain{}, h.createGuard...)
	r.POST("/sessions", append(create, h.CreateSession)...)
	r.DELETE("/sessions/:sid", h.DeleteSession)

	s := r.Group("/sessions/:sid", h.RequireSession)
	s.GET("", h.GetSession)
	s.GET("/info", h.SessionInfo)
	if stream != nil {
		s.GET("/stream", stream)
	}

	s.POST("/wake", h.Wake)
	s.POST("/sleep", h.Sleep)
	s.POST("/start-menu/toggle", h.ToggleStartMenu)
	s.POST("/start-menu/close", h.CloseStartMenu)
	s.POST("/start-menu/select/:panel", h.StartMenuSelect)
	s.GET("/clock", h.Clock)

	w := s.Group("/windows/:panel")
	w.POST("/open", h.window((*shell.Shell).OpenPanel))
	w.POST("/close", h.window((*shell.Shell).ClosePanel))
	w.POST("/minimize", h.window((*shell.Shell).MinimizePanel))
	w.POST("/restore", h.window((*shell.Shell).RestorePanel))
	w.POST("/activate", h.window((*shell.Shell).ActivatePanel))
	w.POST("/maximize", h.window((*shell.Shell).ToggleMaximize))
	w.POST("/drag/begin", h.windowAt((*shell.Shell).BeginDrag))
	w.POST("/drag/move", h.windowAt((*shell.Shell).DragTo))
	w.POST("/drag/end", h.window((*shell.Shell).EndDrag))
	w.POST("/move", h.windowAt((*shell.Shell).MoveWindow))
	w.POST("/resize", h.ResizeWindow)

	s.PUT("/taskbar", h.ReorderTaskbar)
	s.POST("/taskbar/move", h.MoveTaskbarEntry)
	s.POST("/taskbar/:panel/click", h.window((*shell.Shell).TaskbarClick))

	s.POST("/desktop/clear-selection", h.ClearSelection)
	i := s.Group("/icons/:panel")
	i.POST("/select", h.SelectIcon)
	i.POST("/rename", h.RenameIcon)
	i.POST("/move", h.MoveIcon)
	i.POST("/double-click", h.DoubleClickIcon)

	s.GET("/theme", h.GetTheme)
	s.POST("/theme/toggle", h.ToggleTheme)

	for _, op := range []string{"play-pause", "next", "previous", "mute", "ended"} {
		s.POST("/audio/"+op, h.audio(op))
	}
	s.POST("/audio/volume", h.SetVolume)
	s.POST("/audio/seek", h.Seek)
	s.POST("/audio/progress", h.Progress)

	s.GET("/snake", h.SnakeState)
	s.POST("/snake/turn", h.SnakeTurn)
	s.POST("/snake/reset", h.SnakeReset)
	s.POST("/games/:game/open", h.OpenGame)
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/domain/shell"
	"github.com/GriffinCanCode/deskfolio/internal/domain/visitor"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/storage"
	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	registry *visitor.Registry
	cookies  []*http.Cookie
}

func newTestAPI(t *testing.T, maxSessions int, opts ...func(*Handlers)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	cat := catalog.Default()
	registry := visitor.NewRegistry(
		visitor.Config{Max: maxSessions},
		shell.Options{
			Catalog:   cat,
			Store:     storage.NewMemory(),
			SnakeTick: time.Hour,
			Metrics:   metrics,
		},
		metrics, nil,
	)
	t.Cleanup(registry.Close)

	router := gin.New()
	h := NewHandlers(registry, cat, metrics, nil)
	for _, opt := range opts {
		opt(h)
	}
	h.Register(router, nil)
	return &testAPI{t: t, router: router, registry: registry}
}

func (a *testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type created struct {
	SessionID string      `json:"session_id"`
	Snapshot  shell.State `json:"snapshot"`
}

func (a *testAPI) session(headers ...string) (string, created) {
	a.t.Helper()
	w := a.do("POST", "/sessions", "", headers...)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var out created
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	a.cookies = append(a.cookies[:0], w.Result().Cookies()...)
	return "/sessions/" + out.SessionID, out
}

func windows(t *testing.T, w *httptest.ResponseRecorder) window.Snapshot {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Windows window.Snapshot `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Windows
}

func TestCreateSession(t *testing.T) {
	api := newTestAPI(t, 10)

	base, out := api.session()
	_, err := id.ParseSessionID(out.SessionID)
	require.NoError(t, err)
	assert.True(t, out.Snapshot.Asleep)
	assert.Len(t, out.Snapshot.Icons, 5)

	require.Len(t, api.cookies, 1)
	assert.Equal(t, VisitorCookie, api.cookies[0].Name)
	assert.True(t, api.cookies[0].HttpOnly)

	w := api.do("GET", base, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSleepGateReturnsLocked(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()

	w := api.do("POST", base+"/windows/about/open", "")
	assert.Equal(t, http.StatusLocked, w.Code)

	w = api.do("POST", base+"/wake", "")
	require.Equal(t, http.StatusOK, w.Code)

	snap := windows(t, api.do("POST", base+"/windows/about/open", ""))
	assert.True(t, snap.IsOpen(panel.About))
}

func TestExampleScenario(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")

	snap := windows(t, api.do("POST", base+"/windows/about/open", ""))
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, panel.About, *snap.Active)

	snap = windows(t, api.do("POST", base+"/windows/projects/open", ""))
	require.Len(t, snap.Windows, 2)
	assert.Equal(t, panel.Projects, *snap.Active)

	snap = windows(t, api.do("POST", base+"/windows/projects/minimize", ""))
	assert.Equal(t, []panel.Kind{panel.Projects}, snap.Minimized)

	snap = windows(t, api.do("POST", base+"/windows/about/activate", ""))
	assert.Equal(t, panel.About, *snap.Active)

	snap = windows(t, api.do("POST", base+"/windows/about/close", ""))
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, panel.Projects, snap.Windows[0].Panel)
	assert.Nil(t, snap.Active)
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown panel", "POST", base + "/windows/blog/open", "", http.StatusBadRequest},
		{"unknown session", "POST", "/sessions/" + id.NewSessionID().String() + "/wake", "", http.StatusNotFound},
		{"malformed session", "GET", "/sessions/nope", "", http.StatusNotFound},
		{"bad drag body", "POST", base + "/windows/about/drag/begin", "{", http.StatusBadRequest},
		{"missing move fields", "POST", base + "/taskbar/move", "{}", http.StatusBadRequest},
		{"bad direction", "POST", base + "/snake/turn", `{"direction":"sideways"}`, http.StatusBadRequest},
		{"empty label", "POST", base + "/icons/about/rename", `{"label":"<i></i>"}`, http.StatusBadRequest},
		{"unknown game", "POST", base + "/games/pong/open", "", http.StatusNotFound},
		{"unknown taskbar entry", "PUT", base + "/taskbar", `{"order":["blog"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestTooManySessions(t *testing.T) {
	api := newTestAPI(t, 1)
	api.session()

	w := api.do("POST", "/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDeleteSession(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()

	w := api.do("DELETE", base, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do("GET", base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, api.registry.Len())
}

func TestThemeFollowsVisitorCookie(t *testing.T) {
	api := newTestAPI(t, 10)
	base, out := api.session("Sec-CH-Prefers-Color-Scheme", "light")
	assert.Equal(t, "light", string(out.Snapshot.Theme))
	api.do("POST", base+"/wake", "")

	w := api.do("POST", base+"/theme/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ev shell.ThemeEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, "dark", string(ev.Mode))
	assert.True(t, ev.Persisted)

	cookie := api.cookies[0]
	api.cookies = []*http.Cookie{cookie}
	w = api.do("POST", "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var again created
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, "dark", string(again.Snapshot.Theme), "stored preference beats the hint")
	assert.Empty(t, w.Result().Cookies(), "existing visitor cookie is reused")
}

func TestHintSetsInitialTheme(t *testing.T) {
	api := newTestAPI(t, 10)
	base, out := api.session("Sec-CH-Prefers-Color-Scheme", "dark")
	assert.Equal(t, "dark", string(out.Snapshot.Theme))

	w := api.do("GET", base+"/theme", "")
	assert.JSONEq(t, `{"mode":"dark"}`, w.Body.String())
}

func TestTaskbarRoutes(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")
	for _, p := range []string{"about", "skills", "contact"} {
		api.do("POST", base+"/windows/"+p+"/open", "")
	}

	snap := windows(t, api.do("PUT", base+"/taskbar", `{"order":["contact","about","skills"]}`))
	assert.Equal(t, []panel.Kind{panel.Contact, panel.About, panel.Skills}, snap.Taskbar)

	snap = windows(t, api.do("POST", base+"/taskbar/move", `{"from":0,"to":2}`))
	assert.Equal(t, []panel.Kind{panel.About, panel.Skills, panel.Contact}, snap.Taskbar)

	snap = windows(t, api.do("POST", base+"/taskbar/contact/click", ""))
	assert.Equal(t, []panel.Kind{panel.Contact}, snap.Minimized)
}

func TestStartMenuClockAndSelection(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()

	w := api.do("GET", base+"/clock", "")
	require.Equal(t, http.StatusOK, w.Code)
	var clock shell.Clock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clock))
	assert.NotEmpty(t, clock.Time)
	assert.NotEmpty(t, clock.Date)

	api.do("POST", base+"/wake", "")
	w = api.do("POST", base+"/start-menu/toggle", "")
	assert.JSONEq(t, `{"open":true}`, w.Body.String())
	w = api.do("POST", base+"/start-menu/close", "")
	assert.JSONEq(t, `{"open":false}`, w.Body.String())

	w = api.do("POST", base+"/icons/skills/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selected":true`)

	w = api.do("POST", base+"/desktop/clear-selection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"selected":true`)
}

func TestIconDoubleClick(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")

	w := api.do("POST", base+"/icons/projects/double-click", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"route":"open"`)

	w = api.do("POST", base+"/icons/projects/double-click", "")
	assert.Contains(t, w.Body.String(), `"route":"activate"`)
}

func TestAudioRoutes(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")

	w := api.do("POST", base+"/audio/play-pause", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"playing":true`)

	w = api.do("POST", base+"/audio/volume", `{"volume":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"muted":true`)

	w = api.do("POST", base+"/audio/volume", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnakeRoutes(t *testing.T) {
	api := newTestAPI(t, 10)
	base, _ := api.session()
	api.do("POST", base+"/wake", "")

	snap := windows(t, api.do("POST", base+"/games/snake/open", ""))
	assert.True(t, snap.IsOpen(panel.Snake))

	w := api.do("POST", base+"/snake/turn", `{"direction":"ArrowUp"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accepted":true}`, w.Body.String())

	w = api.do("GET", base+"/snake", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"score":0`)
}

func TestHealthAndCatalog(t *testing.T) {
	api := newTestAPI(t, 10)
	api.session()

	w := api.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 1, health["sessions"])
	assert.NotContains(t, health, "media_breakers")

	w = api.do("GET", "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"playlist"`)
}

type breakerStates map[string]resilience.State

func (b breakerStates) Breakers() map[string]resilience.State { return b }

func TestHealthReportsMediaBreakers(t *testing.T) {
	api := newTestAPI(t, 10, func(h *Handlers) {
		h.WithMedia(breakerStates{"cdn.example.com": resilience.StateOpen})
	})

	w := api.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		MediaBreakers map[string]string `json:"media_breakers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, map[string]string{"cdn.example.com": resilience.StateOpen.String()}, health.MediaBreakers)
}

func TestSessionInfo(t *testing.T) {
	api := newTestAPI(t, 10)
	base, out := api.session()

	w := api.do("GET", base+"/info", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var info visitor.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, out.SessionID, info.ID.String())
	assert.Zero(t, info.Streams)
	assert.False(t, info.LastSeen.Before(info.CreatedAt))

	w = api.do("GET", "/sessions/"+id.NewSessionID().String()+"/info", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionCreateGuard(t *testing.T) {
	calls := 0
	api := newTestAPI(t, 10, func(h *Handlers) {
		h.WithCreateGuard(func(c *gin.Context) {
			calls++
			if calls > 1 {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			c.Next()
		})
	})

	api.session()
	w := api.do("POST", "/sessions", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, api.registry.Len())

	// Guards only wrap creation
	w = api.do("GET", "/catalog", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, calls)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusLocked, StatusFor(shell.ErrAsleep))
	assert.Equal(t, http.StatusNotFound, StatusFor(visitor.ErrSessionNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(visitor.ErrTooManySessions))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}

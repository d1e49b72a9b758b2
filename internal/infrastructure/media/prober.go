// Package media checks that playlist sources point at audio before the
// player reports a track as started.
//
// Remote sources (http, https) are probed with a HEAD request and, when the
// server does not declare an audio content type, a ranged GET whose first
// bytes are sniffed. Each remote host sits behind its own circuit breaker.
// Local sources are paths under the media directory and are sniffed from
// disk.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/deskfolio/internal/domain/audio"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/resilience"
)

var (
	ErrNotAudio    = errors.New("source is not audio")
	ErrUnavailable = errors.New("source unavailable")
	ErrOutsideDir  = errors.New("path escapes media directory")
)

const sniffBytes = 3072

// Config configures a Prober.
type Config struct {
	Enabled  bool
	Timeout  time.Duration
	MediaDir string
	// RequestsPerSecond caps outbound probes. Zero is unlimited.
	RequestsPerSecond float64
}

// Result describes a probed source.
type Result struct {
	Source string `json:"source"` // "remote" or "local"
	MIME   string `json:"mime"`
}

// Prober implements audio.Media.
type Prober struct {
	cfg      Config
	client   *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

var _ audio.Media = (*Prober)(nil)

// NewProber builds a prober. metrics may be nil.
func NewProber(cfg Config, metrics *monitoring.Metrics, logger *zap.Logger) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Pooled transport from retryablehttp; retries are left to resty.
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	client := resty.New().
		SetTransport(retryClient.HTTPClient.Transport).
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(100*time.Millisecond).
		SetHeader("User-Agent", "deskfolio-media/1.0")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	breakers := resilience.NewGroup(resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(host string, from, to resilience.State) {
			logger.Info("media host breaker",
				zap.String("host", host),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	return &Prober{
		cfg:      cfg,
		client:   client,
		limiter:  limiter,
		breakers: breakers,
		metrics:  metrics,
		logger:   logger,
	}
}

// Play probes the track's source. Disabled probers accept everything.
func (p *Prober) Play(ctx context.Context, t audio.Track) error {
	if !p.cfg.Enabled {
		return nil
	}
	_, err := p.Probe(ctx, t.Src)
	return err
}

// Probe checks src and reports its detected type.
func (p *Prober) Probe(ctx context.Context, src string) (Result, error) {
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return p.observe("remote", func() (Result, error) { return p.probeRemote(ctx, u) })
	}
	return p.observe("local", func() (Result, error) { return p.probeLocal(src) })
}

// Breakers reports per-host breaker states.
func (p *Prober) Breakers() map[string]resilience.State {
	return p.breakers.States()
}

func (p *Prober) observe(source string, fn func() (Result, error)) (Result, error) {
	var timer *monitoring.Timer
	if p.metrics != nil {
		timer = monitoring.NewTimer(p.metrics, source)
	}
	res, err := fn()
	if timer != nil {
		result := "ok"
		switch {
		case errors.Is(err, ErrNotAudio):
			result = "not_audio"
		case errors.Is(err, resilience.ErrCircuitOpen):
			result = "circuit_open"
		case err != nil:
			result = "error"
		}
		timer.Stop(result)
	}
	return res, err
}

func (p *Prober) probeRemote(ctx context.Context, u *url.URL) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit: %w", err)
	}

	res := Result{Source: "remote"}
	var rejected string
	err := p.breakers.Get(u.Host).Do(ctx, func(ctx context.Context) error {
		head, err := p.client.R().SetContext(ctx).Head(u.String())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if head.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", ErrUnavailable, head.Status())
		}
		if head.IsSuccess() {
			if ct := mediaType(head.Header().Get("Content-Type")); isAudioType(ct) {
				res.MIME = ct
				return nil
			}
		}

		// HEAD unsupported or vague; sniff the first bytes.
		resp, err := p.client.R().
			SetContext(ctx).
			SetHeader("Range", fmt.Sprintf("bytes=0-%d", sniffBytes-1)).
			SetDoNotParseResponse(true).
			Get(u.String())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status())
		}
		if !resp.IsSuccess() {
			rejected = resp.Status()
			return nil
		}
		buf, err := io.ReadAll(io.LimitReader(body, sniffBytes))
		if err != nil {
			return fmt.Errorf("%w: read: %v", ErrUnavailable, err)
		}
		res.MIME = mimetype.Detect(buf).String()
		return nil
	})
	if err != nil {
		return res, err
	}
	if rejected != "" {
		return res, fmt.Errorf("%w: %s returned %s", ErrUnavailable, u.Redacted(), rejected)
	}
	if !isAudioType(mediaType(res.MIME)) {
		return res, fmt.Errorf("%w: %s returned %q", ErrNotAudio, u.Redacted(), res.MIME)
	}
	return res, nil
}

func (p *Prober) probeLocal(src string) (Result, error) {
	res := Result{Source: "local"}
	path, err := p.resolve(src)
	if err != nil {
		return res, err
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res.MIME = m.String()
	if !isAudio(m) {
		return res, fmt.Errorf("%w: %s is %s", ErrNotAudio, src, m.String())
	}
	return res, nil
}

func (p *Prober) resolve(src string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(src, "file://"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, src)
	}
	return filepath.Join(p.cfg.MediaDir, rel), nil
}

// Glob expands a doublestar pattern under dir, returning slash-separated
// relative paths in lexical order.
func Glob(dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid media pattern %q", pattern)
	}
	if dir == "" {
		dir = "."
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

func isAudioType(mt string) bool {
	return strings.HasPrefix(mt, "audio/") || mt == "application/ogg"
}

func isAudio(m *mimetype.MIME) bool {
	for x := m; x != nil; x = x.Parent() {
		if isAudioType(x.String()) {
			return true
		}
	}
	return false
}

// Package catalog loads the desktop's content: icon layout, start menu,
// game list, playlist and panel title overrides.
//
// A catalog file is YAML (.yaml, .yml) or TOML (.toml). Without one the
// embedded default is used. Playlist entries whose src starts with "glob:"
// are expanded against the local media directory, one track per match.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/deskfolio/internal/domain/audio"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/panel"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/media"
)

//go:embed default.yaml
var defaultYAML []byte

const globPrefix = "glob:"

var (
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	ErrInvalid           = errors.New("invalid catalog")
)

// StartItem is one start menu entry.
type StartItem struct {
	Panel panel.Kind `json:"panel" yaml:"panel" toml:"panel"`
	Label string     `json:"label" yaml:"label" toml:"label"`
	Glyph string     `json:"glyph" yaml:"glyph" toml:"glyph"`
}

// Game is one entry in the games panel.
type Game struct {
	ID    string     `json:"id" yaml:"id" toml:"id"`
	Label string     `json:"label" yaml:"label" toml:"label"`
	Panel panel.Kind `json:"panel" yaml:"panel" toml:"panel"`
}

// Catalog is the desktop content shared by every visitor session.
type Catalog struct {
	Titles    map[panel.Kind]string `json:"titles,omitempty" yaml:"titles" toml:"titles"`
	Icons     []desktop.Icon        `json:"icons" yaml:"icons" toml:"icons"`
	StartMenu []StartItem           `json:"start_menu" yaml:"start_menu" toml:"start_menu"`
	Games     []Game                `json:"games" yaml:"games" toml:"games"`
	Playlist  []audio.Track         `json:"playlist" yaml:"playlist" toml:"playlist"`
}

// Default returns the embedded catalog. It panics if the embedded file is
// broken, which the package tests rule out.
func Default() *Catalog {
	c, err := Parse(defaultYAML, ".yaml", "")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default: %v", err))
	}
	return c
}

// Load reads the catalog at path, or the embedded default when path is
// empty. mediaDir roots "glob:" playlist entries.
func Load(path, mediaDir string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultYAML, ".yaml", mediaDir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data, filepath.Ext(path), mediaDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data in the format named by ext, expands globs and
// validates the result.
func Parse(data []byte, ext, mediaDir string) (*Catalog, error) {
	var c Catalog
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &c, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&c); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	playlist, err := expand(c.Playlist, mediaDir)
	if err != nil {
		return nil, err
	}
	c.Playlist = playlist

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks panel ids, uniqueness and that the playlist has tracks.
func (c *Catalog) Validate() error {
	for k := range c.Titles {
		if !k.Valid() {
			return fmt.Errorf("%w: title for %w", ErrInvalid, unknown(k))
		}
	}

	seen := make(map[panel.Kind]bool, len(c.Icons))
	for _, ic := range c.Icons {
		if !ic.Panel.Valid() {
			return fmt.Errorf("%w: icon %w", ErrInvalid, unknown(ic.Panel))
		}
		if seen[ic.Panel] {
			return fmt.Errorf("%w: duplicate icon for %q", ErrInvalid, ic.Panel)
		}
		seen[ic.Panel] = true
		if strings.TrimSpace(ic.Label) == "" {
			return fmt.Errorf("%w: icon %q has no label", ErrInvalid, ic.Panel)
		}
	}

	for _, it := range c.StartMenu {
		if !it.Panel.Valid() {
			return fmt.Errorf("%w: start menu %w", ErrInvalid, unknown(it.Panel))
		}
	}

	for _, g := range c.Games {
		if g.ID == "" || !g.Panel.Valid() {
			return fmt.Errorf("%w: game %q", ErrInvalid, g.ID)
		}
	}

	if len(c.Playlist) == 0 {
		return fmt.Errorf("%w: playlist is empty", ErrInvalid)
	}
	for i, t := range c.Playlist {
		if t.Src == "" || t.Title == "" {
			return fmt.Errorf("%w: playlist entry %d needs title and src", ErrInvalid, i)
		}
	}
	return nil
}

// Game returns the game with id.
func (c *Catalog) Game(id string) (Game, bool) {
	for _, g := range c.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}

// InStartMenu reports whether k has a start menu entry.
func (c *Catalog) InStartMenu(k panel.Kind) bool {
	for _, it := range c.StartMenu {
		if it.Panel == k {
			return true
		}
	}
	return false
}

// TitleMap returns the full title table with overrides applied.
func (c *Catalog) TitleMap() map[panel.Kind]string {
	out := make(map[panel.Kind]string, len(panel.All))
	for _, k := range panel.All {
		out[k] = k.Title()
	}
	for k, v := range c.Titles {
		out[k] = v
	}
	return out
}

func unknown(k panel.Kind) error {
	return fmt.Errorf("%w: %q", panel.ErrUnknownPanel, string(k))
}

func expand(tracks []audio.Track, mediaDir string) ([]audio.Track, error) {
	out := make([]audio.Track, 0, len(tracks))
	for _, t := range tracks {
		pattern, ok := strings.CutPrefix(t.Src, globPrefix)
		if !ok {
			out = append(out, t)
			continue
		}
		matches, err := media.Glob(mediaDir, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: playlist: %w", ErrInvalid, err)
		}
		for _, m := range matches {
			out = append(out, audio.Track{
				Title:  titleFromFile(m),
				Artist: t.Artist,
				Src:    m,
			})
		}
	}
	return out, nil
}

// titleFromFile turns "albums/late-night_mix.mp3" into "late night mix".
func titleFromFile(p string) string {
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
}

package panel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPanel is returned when a string does not name a known panel.
var ErrUnknownPanel = errors.New("unknown panel")

// Kind identifies a logical content panel shown in a desktop window.
type Kind string

const (
	About      Kind = "about"
	Projects   Kind = "projects"
	Skills     Kind = "skills"
	Experience Kind = "experience"
	Contact    Kind = "contact"
	Resume     Kind = "resume"
	Games      Kind = "games"
	Snake      Kind = "snake"
	Music      Kind = "music"
)

// All lists every panel kind in desktop order.
var All = []Kind{About, Projects, Skills, Experience, Contact, Resume, Games, Snake, Music}

var titles = map[Kind]string{
	About:      "About Me",
	Projects:   "My Projects",
	Skills:     "Skills & Technologies",
	Experience: "Work Experience",
	Contact:    "Contact Information",
	Resume:     "Resume",
	Games:      "Games",
	Snake:      "Snake",
	Music:      "Music Player",
}

// Parse converts a raw identifier into a Kind.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := titles[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
	}
	return k, nil
}

// Valid reports whether k is a known panel kind.
func (k Kind) Valid() bool {
	_, ok := titles[k]
	return ok
}

// Title returns the default window title.
func (k Kind) Title() string {
	if t, ok := titles[k]; ok {
		return t
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }

// IsGame reports whether the panel hosts a game loop.
func (k Kind) IsGame() bool {
	return k == Snake
}

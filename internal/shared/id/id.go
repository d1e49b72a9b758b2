// Package id provides centralized ID generation for the server.
//
// IDs are ULIDs with a short type prefix (sess_*, req_*, conn_*) so they sort
// by creation time and read clearly in logs. Separate string types keep a
// session id from being passed where a request id is expected.
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a visitor session
type SessionID string

// RequestID identifies an API request
type RequestID string

// ConnID identifies a WebSocket stream connection
type ConnID string

const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
	ConnPrefix    = "conn"
)

// ErrMalformed is returned for ids that are not prefix_ULID.
var ErrMalformed = errors.New("malformed id")

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSessionID generates a new visitor session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewConnID generates a new stream connection ID
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(ConnPrefix))
}

func (id SessionID) String() string { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id ConnID) String() string    { return string(id) }

// ParseSessionID validates a client-supplied session id.
func ParseSessionID(s string) (SessionID, error) {
	if err := checkPrefixed(SessionPrefix, s); err != nil {
		return "", err
	}
	return SessionID(s), nil
}

// ParseRequestID validates an inbound X-Request-ID value.
func ParseRequestID(s string) (RequestID, error) {
	if err := checkPrefixed(RequestPrefix, s); err != nil {
		return "", err
	}
	return RequestID(s), nil
}

func checkPrefixed(prefix, s string) error {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok || !IsValid(rest) {
		return fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return nil
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

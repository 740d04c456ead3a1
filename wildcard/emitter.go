// Package wildcard is the Wildcard Emitter of spec §4.4: a hierarchical-
// name event emitter that dispatches by namespace prefix and synthesizes
// a configurable "no-subscriptions" event when nothing matched.
package wildcard

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edancain/eventbus/internal/obslog"
)

// Listener receives the arguments an Emit call was given, possibly with
// a leading Match prepended (see On).
type Listener func(args ...any)

// Match is prepended to a wildcard listener's arguments, carrying the
// event name that was actually emitted (spec §4.4: "wildcard matches
// receive a prepended argument: an object carrying the matched event
// name"). It is also what a no-subscriptions listener receives as its
// first argument.
type Match struct {
	Event string
}

// ErrNoHandler is returned by On when fn is nil.
var ErrNoHandler = errors.New("wildcard: listener must not be nil")

// ErrInvalidPattern is returned by On when the wildcard token appears
// anywhere other than as the pattern's terminal segment. spec §9 notes
// that mid-pattern wildcards are unobserved in the source material and
// leaves extending them to a "strong implementer [who] must document the
// extension" — this module chooses not to extend, and rejects the
// pattern outright instead of silently treating it as a literal.
var ErrInvalidPattern = errors.New("wildcard: the wildcard token may only appear as the pattern's terminal segment")

type pattern struct {
	raw        string
	isWildcard bool
	prefix     []string // segments required before the wildcard; nil for a bare wildcard or an exact pattern
}

func parsePattern(raw, delimiter, wildcardToken string) (pattern, error) {
	if raw == wildcardToken {
		return pattern{raw: raw, isWildcard: true}, nil
	}

	segments := strings.Split(raw, delimiter)
	last := segments[len(segments)-1]

	if last == wildcardToken {
		prefix := segments[:len(segments)-1]
		for _, s := range prefix {
			if s == wildcardToken {
				return pattern{}, ErrInvalidPattern
			}
		}
		return pattern{raw: raw, isWildcard: true, prefix: prefix}, nil
	}

	for _, s := range segments {
		if s == wildcardToken {
			return pattern{}, ErrInvalidPattern
		}
	}
	return pattern{raw: raw, isWildcard: false}, nil
}

// matches reports whether name matches p, given how name segments under
// delimiter.
func (p pattern) matches(name, delimiter string) bool {
	if !p.isWildcard {
		return p.raw == name
	}
	if len(p.prefix) == 0 {
		return name != ""
	}
	segments := strings.Split(name, delimiter)
	if len(segments) <= len(p.prefix) {
		return false
	}
	for i, want := range p.prefix {
		if segments[i] != want {
			return false
		}
	}
	return true
}

type entry struct {
	id      string
	pattern pattern
	fn      Listener
	removed bool
}

// Config holds the construction-time options for an Emitter, mirroring
// spec §4.4's recognized configuration keys.
type Config struct {
	Delimiter            string
	Wildcard             string
	NoSubscriptionsEvent string
	Logger               *obslog.Logger
}

// Emitter dispatches emitted names against hierarchical patterns. The
// zero value is not usable; construct one with New.
type Emitter struct {
	mu         sync.RWMutex
	delimiter  string
	wildcard   string
	noSubEvent string
	entries    []*entry
	log        *obslog.Logger
}

// Option configures an Emitter at construction time.
type Option func(*Config)

// WithDelimiter overrides the default "_" segment separator.
func WithDelimiter(d string) Option {
	return func(c *Config) {
		if d != "" {
			c.Delimiter = d
		}
	}
}

// WithWildcard overrides the default "%" terminal wildcard token.
func WithWildcard(w string) Option {
	return func(c *Config) {
		if w != "" {
			c.Wildcard = w
		}
	}
}

// WithNoSubscriptionsEvent overrides the default "" no-subscriptions
// event name.
func WithNoSubscriptionsEvent(name string) Option {
	return func(c *Config) { c.NoSubscriptionsEvent = name }
}

// WithLogger attaches a side-channel logger.
func WithLogger(l *obslog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// New constructs an Emitter with defaults delimiter "_", wildcard "%",
// and no-subscriptions event "", each overridable via Option.
func New(opts ...Option) *Emitter {
	cfg := Config{
		Delimiter:            "_",
		Wildcard:             "%",
		NoSubscriptionsEvent: "",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = obslog.Discard()
	}

	return &Emitter{
		delimiter:  cfg.Delimiter,
		wildcard:   cfg.Wildcard,
		noSubEvent: cfg.NoSubscriptionsEvent,
		log:        log,
	}
}

// On registers fn against pattern. pattern is either an exact event
// name, the bare wildcard token, or a hierarchical prefix terminated by
// the wildcard token (e.g. "foo_bar_%"). It returns a listener
// identifier suitable for Off.
func (e *Emitter) On(pat string, fn Listener) (string, error) {
	if fn == nil {
		return "", ErrNoHandler
	}
	parsed, err := parsePattern(pat, e.delimiter, e.wildcard)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	e.mu.Lock()
	e.entries = append(e.entries, &entry{id: id, pattern: parsed, fn: fn})
	e.mu.Unlock()
	return id, nil
}

// Off removes the listener registered under id. It reports whether a
// listener was actually removed.
func (e *Emitter) Off(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, en := range e.entries {
		if en.id == id && !en.removed {
			en.removed = true
			return true
		}
	}
	return false
}

// Emit dispatches name to every listener whose pattern matches it, in
// registration order (spec §4.4: "not stratified by pattern
// specificity"). Exact-match listeners receive args unchanged; wildcard
// matches receive a Match{Event: name} prepended. If nothing matched and
// at least one listener is registered on the configured
// no-subscriptions event name, that listener set receives a single
// synthetic dispatch with Match{Event: name} prepended; this synthetic
// dispatch never recurses.
func (e *Emitter) Emit(name string, args ...any) {
	e.mu.RLock()
	snapshot := make([]*entry, 0, len(e.entries))
	for _, en := range e.entries {
		if !en.removed {
			snapshot = append(snapshot, en)
		}
	}
	e.mu.RUnlock()

	matched := 0
	for _, en := range snapshot {
		if !en.pattern.matches(name, e.delimiter) {
			continue
		}
		matched++
		e.invoke(en, name, args, en.pattern.isWildcard)
	}

	if matched > 0 {
		return
	}

	for _, en := range snapshot {
		if en.pattern.raw != e.noSubEvent {
			continue
		}
		e.invoke(en, name, args, true)
	}
}

// invoke calls en's listener, guarding against a panic escaping into the
// producer. prependMatch decides whether a Match{Event: name} is
// prepended to args: true for wildcard matches and every synthetic
// no-subscriptions dispatch, false for exact matches.
func (e *Emitter) invoke(en *entry, name string, args []any, prependMatch bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error.Printf("wildcard: listener %s on %q panicked: %v", en.id, en.pattern.raw, r)
		}
	}()

	if !prependMatch {
		en.fn(args...)
		return
	}
	withMatch := make([]any, 0, len(args)+1)
	withMatch = append(withMatch, Match{Event: name})
	withMatch = append(withMatch, args...)
	en.fn(withMatch...)
}

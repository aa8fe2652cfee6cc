// Package scan classifies decoded input strings and debounces capture.
//
// Raw strings arrive from two channels — the scanner decode stream and
// manual text entry — and both route through a single Engine. Each input
// is classified, in strict priority order, as a sync payload, a personnel
// badge, or an equipment code, and the session is updated accordingly.
// After any successful classification the engine locks for a cool-down
// window so one physical scan cannot register twice.
package scan

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/haptics"
	"github.com/sdis66/epitrack/internal/roster"
	"github.com/sdis66/epitrack/internal/session"
)

// Kind tags a classification outcome.
type Kind int

const (
	// KindSync replaced the roster and log with a transferred snapshot.
	KindSync Kind = iota
	// KindAgent selected a roster member as the scan target.
	KindAgent
	// KindItem recorded an equipment code against the selected person.
	KindItem
)

// Cool-down windows. Sync and item captures hold longer so the operator
// sees the confirmation before the next frame is accepted; after a badge
// the expected next action is an immediate equipment scan, so the window
// is shorter.
const (
	CooldownAgent = 800 * time.Millisecond
	CooldownItem  = 1500 * time.Millisecond
	CooldownSync  = 1500 * time.Millisecond
)

var (
	// ErrLocked means the input arrived inside a cool-down window and was
	// ignored entirely.
	ErrLocked = errors.New("scan: cooling down")
	// ErrNoSelection means an equipment code arrived with no person
	// selected. It does not start a cool-down.
	ErrNoSelection = errors.New("scan: select or scan a person first")
)

// Result describes a successful classification.
type Result struct {
	Kind     Kind
	Agent    roster.Person       // set for KindAgent
	Record   distribution.Record // set for KindItem
	Cooldown time.Duration
}

// Gate pauses and resumes the underlying decode stream during cool-down.
type Gate interface {
	Pause()
	Resume()
}

// Engine classifies raw input and enforces the cool-down lock. The lock
// is shared across both input channels: while locked, manual submissions
// are ignored the same way decoded frames are.
type Engine struct {
	mu      sync.Mutex
	session *session.Session
	gate    Gate
	pulser  haptics.Pulser

	now   func() time.Time
	after func(time.Duration, func())

	locked bool
}

// NewEngine creates an engine operating on the given session.
func NewEngine(s *session.Session) *Engine {
	return &Engine{
		session: s,
		now:     time.Now,
		after:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// SetGate attaches the decode stream pause/resume control.
func (e *Engine) SetGate(g Gate) { e.gate = g }

// SetPulser attaches haptic feedback. Nil means no haptics.
func (e *Engine) SetPulser(p haptics.Pulser) { e.pulser = p }

// Locked reports whether the engine is inside a cool-down window.
func (e *Engine) Locked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locked
}

// Submit classifies one raw decoded string.
//
// Priority: sync payload, then badge, then equipment. Badges have no
// reserved prefix distinguishing them from equipment codes — roster
// membership is the only discriminator, which is why the badge check
// runs before the equipment default.
func (e *Engine) Submit(raw string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked {
		return Result{}, ErrLocked
	}

	trimmed := strings.TrimSpace(raw)

	if p, ok := decodePayload(trimmed); ok {
		e.session.Replace(p.Agents, p.Items)
		e.lock(CooldownSync)
		e.pulse(haptics.PatternSync)
		return Result{Kind: KindSync, Cooldown: CooldownSync}, nil
	}

	if person, ok := e.session.Find(trimmed); ok {
		e.session.Select(person.Badge)
		e.lock(CooldownAgent)
		e.pulse(haptics.PatternAgent)
		return Result{Kind: KindAgent, Agent: person, Cooldown: CooldownAgent}, nil
	}

	badge := e.session.Selected()
	if badge == "" {
		// validation error, no state change, no cool-down
		return Result{}, ErrNoSelection
	}

	// the code is kept verbatim — untrimmed, case preserved
	rec := distribution.New(raw, badge, e.now())
	e.session.Append(rec)
	e.lock(CooldownItem)
	e.pulse(haptics.PatternItem)
	return Result{Kind: KindItem, Record: rec, Cooldown: CooldownItem}, nil
}

// lock pauses the decode stream and schedules the automatic resume.
// Callers hold e.mu.
func (e *Engine) lock(d time.Duration) {
	e.locked = true
	if e.gate != nil {
		e.gate.Pause()
	}
	e.after(d, e.unlock)
}

func (e *Engine) unlock() {
	e.mu.Lock()
	e.locked = false
	e.mu.Unlock()

	if e.gate != nil {
		e.gate.Resume()
	}
}

func (e *Engine) pulse(p haptics.Pattern) {
	if e.pulser != nil {
		e.pulser.Pulse(p)
	}
}

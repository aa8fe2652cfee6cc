// Package haptics drives the vibration motor found on handheld scan
// terminals. Feedback is best-effort: callers get a no-op pulser when the
// device has no motor.
package haptics

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Pattern alternates pulse and pause durations, starting with a pulse.
type Pattern []time.Duration

// Feedback patterns, one per scan outcome. Distinct shapes let the
// operator tell captures apart without looking at the screen.
var (
	// PatternAgent is short-pause-short: a person was selected.
	PatternAgent = Pattern{80 * time.Millisecond, 60 * time.Millisecond, 80 * time.Millisecond}
	// PatternItem is a single pulse: an equipment code was recorded.
	PatternItem = Pattern{150 * time.Millisecond}
	// PatternSync is a five-beat: the session was replaced by a sync payload.
	PatternSync = Pattern{
		60 * time.Millisecond, 50 * time.Millisecond,
		60 * time.Millisecond, 50 * time.Millisecond,
		60 * time.Millisecond, 50 * time.Millisecond,
		60 * time.Millisecond, 50 * time.Millisecond,
		60 * time.Millisecond,
	}
)

// Pulser plays a vibration pattern.
type Pulser interface {
	Pulse(p Pattern)
}

// sysfs paths probed by Discover, most specific first.
var devicePaths = []string{
	"/sys/class/timed_output/vibrator/enable",
	"/sys/class/leds/vibrator/activate",
}

// Discover returns a pulser for the device's vibration motor, or nil when
// the platform has none.
func Discover() Pulser {
	for _, path := range devicePaths {
		if _, err := os.Stat(path); err == nil {
			return &sysfsPulser{path: path}
		}
	}
	return nil
}

// sysfsPulser writes pulse durations in milliseconds to a sysfs control
// file. Writes are fire-and-forget; a failed write is not an error the
// operator can act on.
type sysfsPulser struct {
	path string
}

func (s *sysfsPulser) Pulse(p Pattern) {
	go func() {
		for i, d := range p {
			if i%2 == 1 {
				time.Sleep(d)
				continue
			}
			ms := strconv.FormatInt(d.Milliseconds(), 10)
			if err := os.WriteFile(s.path, []byte(ms), 0o200); err != nil {
				return
			}
			time.Sleep(d)
		}
	}()
}

// String renders a pattern for diagnostics.
func (p Pattern) String() string {
	s := ""
	for i, d := range p {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%dms", d.Milliseconds())
	}
	return s
}

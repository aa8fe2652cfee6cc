package haptics

import "testing"

func TestPatternsAreDistinct(t *testing.T) {
	if len(PatternItem) != 1 {
		t.Errorf("item pattern should be a single pulse, got %d segments", len(PatternItem))
	}
	if len(PatternAgent) != 3 {
		t.Errorf("agent pattern should be pulse-pause-pulse, got %d segments", len(PatternAgent))
	}
	// five pulses means nine segments with pauses between
	if len(PatternSync) != 9 {
		t.Errorf("sync pattern should carry five pulses, got %d segments", len(PatternSync))
	}
}

func TestPatternString(t *testing.T) {
	if got := PatternItem.String(); got != "150ms" {
		t.Errorf("got %q", got)
	}
	if got := PatternAgent.String(); got != "80ms 60ms 80ms" {
		t.Errorf("got %q", got)
	}
}

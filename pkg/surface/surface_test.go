package surface

import (
	"testing"
	"time"
)

func TestAnchorString(t *testing.T) {
	tests := []struct {
		anchor Anchor
		want   string
	}{
		{AnchorBelowChrome, "BelowChrome"},
		{AnchorSafeTop, "SafeTop"},
		{Anchor(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.anchor.String(); got != tt.want {
				t.Errorf("Anchor.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnimationReversed(t *testing.T) {
	a := Animation{
		Duration: 250 * time.Millisecond,
		From:     Keyframe{Opacity: 0, TranslateY: -1},
		To:       Keyframe{Opacity: 1, TranslateY: 0},
	}

	r := a.Reversed()
	if r.Duration != a.Duration {
		t.Errorf("Duration = %v, want %v", r.Duration, a.Duration)
	}
	if r.From != a.To || r.To != a.From {
		t.Errorf("Reversed() = %+v, want keyframes swapped", r)
	}
}

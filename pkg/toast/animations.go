package toast

import (
	"time"

	"github.com/jefferyq2/ButteryToast/pkg/surface"
)

// AnimationDuration is the length of the entrance and exit transitions.
const AnimationDuration = 250 * time.Millisecond

// EnterAnimation is the presentation transition: the container starts
// shifted up by exactly its own height and fully transparent, then
// slides down to its resting position while fading in.
func EnterAnimation() surface.Animation {
	return surface.Animation{
		Duration: AnimationDuration,
		From:     surface.Keyframe{Opacity: 0, TranslateY: -1},
		To:       surface.Keyframe{Opacity: 1, TranslateY: 0},
	}
}

// ExitAnimation is the dismissal transition, the exact reverse of
// EnterAnimation.
func ExitAnimation() surface.Animation {
	return EnterAnimation().Reversed()
}

package surface

import "time"

// Keyframe is an animation endpoint. TranslateY is expressed as a
// fraction of the container's own height, so -1 places the container
// exactly one height above its resting position; the surface resolves
// the fraction against realized geometry at animation time.
type Keyframe struct {
	Opacity    float64
	TranslateY float64
}

// Animation is a transition between two keyframes over a fixed
// duration. Completions are scheduled by time, not by frontend
// acknowledgement: a surface that accepts a non-nil done must deliver
// it on its scheduler once the duration elapses.
type Animation struct {
	Duration time.Duration
	From     Keyframe
	To       Keyframe
}

// Reversed returns the animation with its keyframes swapped.
func (a Animation) Reversed() Animation {
	return Animation{
		Duration: a.Duration,
		From:     a.To,
		To:       a.From,
	}
}

package scene

import (
	"time"

	"render-bridge/core"
)

// Keyframe is one colour on a palette cycle at normalised time T.
type Keyframe struct {
	T     float32
	Color core.Color
}

// Palette is a looping sequence of keyframes. Keys must be ordered by T in
// [0, 1); the last key blends back into the first.
type Palette struct {
	Keys   []Keyframe
	Period time.Duration
}

// DayNight is the horizon colour through a full day, starting at noon.
func DayNight() *Palette {
	return &Palette{
		Period: 120 * time.Second,
		Keys: []Keyframe{
			{0.00, core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1}}, // noon
			{0.22, core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1}}, // golden hour
			{0.30, core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1}}, // dusk
			{0.50, core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1}}, // midnight
			{0.70, core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1}}, // pre-dawn
			{0.78, core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1}}, // sunrise
		},
	}
}

// Step advances t by dt and wraps it into [0, 1).
func (p *Palette) Step(t float32, dt time.Duration) float32 {
	if p.Period <= 0 {
		return t
	}
	t += float32(dt.Seconds() / p.Period.Seconds())
	for t >= 1 {
		t -= 1
	}
	for t < 0 {
		t += 1
	}
	return t
}

// At returns the interpolated colour for t in [0, 1).
func (p *Palette) At(t float32) core.Color {
	n := len(p.Keys)
	switch n {
	case 0:
		return core.ColorBlack
	case 1:
		return p.Keys[0].Color
	}

	for i := 0; i < n; i++ {
		next := (i + 1) % n
		ta := p.Keys[i].T
		tb := p.Keys[next].T

		if next == 0 {
			// wrap: last key blends into the first one at 1.0
			span := 1 + tb - ta
			switch {
			case t >= ta:
				return p.Keys[i].Color.Lerp(p.Keys[0].Color, (t-ta)/span)
			case t < tb:
				return p.Keys[i].Color.Lerp(p.Keys[0].Color, (t+1-ta)/span)
			}
			continue
		}

		if t >= ta && t < tb {
			return p.Keys[i].Color.Lerp(p.Keys[next].Color, (t-ta)/(tb-ta))
		}
	}
	return p.Keys[0].Color
}

package colour

// BuildGradient expands a palette into a cyclic gradient. Each adjacent pair
// of palette colours, including the wrap from the last colour back to the
// first, contributes stepsBetween entries: the pair's start colour followed
// by stepsBetween-1 evenly spaced interpolations toward the end colour. The
// end colour itself opens the next pair, so the result has exactly
// len(palette) * stepsBetween entries and tiles seamlessly when walked
// modulo its length.
//
// A palette with fewer than two colours has no pairs to interpolate and is
// returned unchanged, as is any call with stepsBetween < 1. stepsBetween == 1
// reproduces the palette itself.
func BuildGradient(palette []Colour, stepsBetween int) []Colour {
	if len(palette) < 2 || stepsBetween < 1 {
		return palette
	}

	gradient := make([]Colour, 0, len(palette)*stepsBetween)
	for i, start := range palette {
		end := palette[(i+1)%len(palette)]
		for step := 0; step < stepsBetween; step++ {
			t := float64(step) / float64(stepsBetween)
			gradient = append(gradient, lerp(start, end, t))
		}
	}
	return gradient
}

// lerp interpolates each channel independently at fraction t in [0, 1).
// Channel values truncate rather than round.
func lerp(start, end Colour, t float64) Colour {
	return Colour{
		R: lerpChannel(start.R, end.R, t),
		G: lerpChannel(start.G, end.G, t),
		B: lerpChannel(start.B, end.B, t),
	}
}

func lerpChannel(start, end uint8, t float64) uint8 {
	return uint8(float64(start) + (float64(end)-float64(start))*t)
}

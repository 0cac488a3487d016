package calculate

// mean averages the deviations from the first value so a constant
// window returns that value exactly, whatever its float64 rounding.
func mean(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	base := window[0]
	var offset float64
	for _, p := range window[1:] {
		offset += p - base
	}
	return base + offset/float64(len(window))
}

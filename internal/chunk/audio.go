package chunk

// SplitAudio divides a recording of the given duration into sequential spans
// no longer than bound seconds. When silence midpoints are supplied the cut
// point snaps to the nearest silence in the back half of the window, keeping
// chunk ends off spoken words. Spans are contiguous: each span starts where
// the previous one ended and the final span ends at duration.
func SplitAudio(duration float64, silences []float64, bound float64) []Span {
	if duration <= 0 || bound <= 0 {
		return nil
	}
	if duration <= bound {
		return []Span{{Index: 0, Start: 0, End: duration}}
	}

	var spans []Span
	start := 0.0
	for duration-start > bound {
		target := start + bound
		end := target
		if cut, ok := nearestSilence(silences, start+bound/2, target); ok {
			end = cut
		}
		spans = append(spans, Span{Index: len(spans), Start: start, End: end})
		start = end
	}
	spans = append(spans, Span{Index: len(spans), Start: start, End: duration})
	return spans
}

// nearestSilence returns the largest silence midpoint within (lo, hi].
func nearestSilence(silences []float64, lo, hi float64) (float64, bool) {
	best := 0.0
	found := false
	for _, s := range silences {
		if s > lo && s <= hi && s > best {
			best = s
			found = true
		}
	}
	return best, found
}

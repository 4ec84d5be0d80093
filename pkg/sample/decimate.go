package sample

// Decimate reduces samples for display while keeping every window's extrema.
// Samples are split into consecutive windows of stride = ceil(len/maxPoints);
// each window contributes its minimum and maximum, in timestamp order, so
// narrow spikes survive. A window whose minimum and maximum are the same
// sample contributes it once. The result holds at most 2*maxPoints samples,
// callers should pass roughly half of their pixel budget.
//
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// If len(samples) <= maxPoints (or maxPoints <= 0), copies all samples unchanged.
func Decimate(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if maxPoints <= 0 || len(samples) <= maxPoints {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst
		}
		result := make([]Sample, len(samples))
		copy(result, samples)
		return result
	}

	stride := (len(samples) + maxPoints - 1) / maxPoints
	windows := (len(samples) + stride - 1) / stride

	if cap(dst) >= 2*windows {
		dst = dst[:0]
	} else {
		dst = make([]Sample, 0, 2*windows)
	}

	for start := 0; start < len(samples); start += stride {
		end := min(start+stride, len(samples))
		window := samples[start:end]

		lo, hi := MinMax(window)
		if lo == hi {
			dst = append(dst, window[lo])
			continue
		}
		if emitFirst(window, lo, hi) {
			dst = append(dst, window[lo], window[hi])
		} else {
			dst = append(dst, window[hi], window[lo])
		}
	}

	return dst
}

// emitFirst reports whether window[a] goes before window[b].
func emitFirst(window []Sample, a, b int) bool {
	ta, tb := window[a].Timestamp, window[b].Timestamp
	if ta.Equal(tb) {
		return a < b
	}
	return ta.Before(tb)
}

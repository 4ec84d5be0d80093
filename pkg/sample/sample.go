package sample

import (
	"time"
)

// Sample represents one point of the synthesized signal.
type Sample struct {
	Timestamp time.Time
	Value     float64 // Signal amplitude (mV)
}

// Millis returns the timestamp as integer milliseconds since the Unix epoch.
func (s Sample) Millis() int64 {
	return s.Timestamp.UnixMilli()
}

// FromMillis converts integer milliseconds since the Unix epoch to a time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// Period returns the spacing between samples at the given rate.
// Returns 0 for non-positive rates.
func Period(rateHz int) time.Duration {
	if rateHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(rateHz))
}

// IsOrdered reports whether samples are non-decreasing in timestamp.
func IsOrdered(samples []Sample) bool {
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Before(samples[i-1].Timestamp) {
			return false
		}
	}
	return true
}

// MinMax returns the indices of the smallest and largest value.
// The first occurrence wins on ties. Both are -1 for an empty slice.
func MinMax(samples []Sample) (minIdx, maxIdx int) {
	if len(samples) == 0 {
		return -1, -1
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Value < samples[minIdx].Value {
			minIdx = i
		}
		if samples[i].Value > samples[maxIdx].Value {
			maxIdx = i
		}
	}
	return minIdx, maxIdx
}

// Interpolate returns the linear interpolation between a and b at fraction f in [0, 1].
func Interpolate(a, b Sample, f float64) Sample {
	dt := b.Timestamp.Sub(a.Timestamp)
	return Sample{
		Timestamp: a.Timestamp.Add(time.Duration(float64(dt) * f)),
		Value:     a.Value + (b.Value-a.Value)*f,
	}
}

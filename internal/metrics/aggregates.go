// Package metrics is the pure stream-and-metrics engine: it derives
// per-point series, aggregate statistics, normalized power, elevation
// change, sensor streams and laps from a decoded TrackSequence. Everything
// here is a function of its inputs; nothing is persisted.
package metrics

// Accumulator folds a series of samples into count/sum/max. Aggregates over
// zero samples are absent, not zero, so Avg and Max return nil pointers.
type Accumulator struct {
	count int
	sum   float64
	max   float64
}

// Add folds one sample into the accumulator.
func (a *Accumulator) Add(v float64) {
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.count++
}

// Count returns the number of samples folded in.
func (a *Accumulator) Count() int { return a.count }

// Avg returns the arithmetic mean, or nil when no samples were added.
func (a *Accumulator) Avg() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.sum / float64(a.count)
	return &v
}

// Max returns the maximum sample, or nil when no samples were added.
func (a *Accumulator) Max() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.max
	return &v
}

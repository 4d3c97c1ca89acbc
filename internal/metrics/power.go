package metrics

import (
	"math"

	"github.com/openpace/activity-backend-go/internal/models"
)

// npWindowSeconds is the rolling window for normalized power.
const npWindowSeconds = 30.0

type powerSample struct {
	t float64 // seconds from the first power sample
	w float64 // watts
}

// NormalizedPower computes the rolling-window normalized power of the
// sequence: a 30-second time-weighted rolling average of power, each rolling
// value raised to the 4th power, the arithmetic mean of those values, then
// the 4th root. Returns nil when the sequence carries fewer than 30 seconds
// of power data.
func NormalizedPower(points []models.TrackPoint) *float64 {
	var samples []powerSample
	var start = -1.0
	for i := range points {
		if points[i].PowerW == nil {
			continue
		}
		t := float64(points[i].Time.Unix()) + float64(points[i].Time.Nanosecond())/1e9
		if start < 0 {
			start = t
		}
		samples = append(samples, powerSample{t: t - start, w: float64(*points[i].PowerW)})
	}

	if len(samples) < 2 || samples[len(samples)-1].t < npWindowSeconds {
		return nil
	}

	var (
		sumFourth float64
		n         int
		lo        int
	)
	for hi := range samples {
		t := samples[hi].t
		if t < npWindowSeconds {
			// No full window behind this sample yet.
			continue
		}
		for samples[lo].t < t-npWindowSeconds {
			lo++
		}
		avg := timeWeightedMean(samples[lo : hi+1])
		sumFourth += math.Pow(avg, 4)
		n++
	}

	if n == 0 {
		return nil
	}
	np := math.Pow(sumFourth/float64(n), 0.25)
	return &np
}

// timeWeightedMean averages power samples weighted by the time between
// consecutive samples (trapezoidal), which handles irregular sample spacing.
func timeWeightedMean(samples []powerSample) float64 {
	if len(samples) == 1 {
		return samples[0].w
	}

	var num, den float64
	for i := 1; i < len(samples); i++ {
		dt := samples[i].t - samples[i-1].t
		if dt <= 0 {
			continue
		}
		num += (samples[i-1].w + samples[i].w) / 2 * dt
		den += dt
	}
	if den == 0 {
		return samples[len(samples)-1].w
	}
	return num / den
}

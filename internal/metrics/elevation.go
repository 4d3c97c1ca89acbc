package metrics

import (
	"github.com/openpace/activity-backend-go/internal/models"
)

// ElevationChange accumulates positive deltas between consecutive elevation
// samples into gain and absolute negative deltas into loss. Raw barometric
// deltas are used directly; no smoothing is applied.
func ElevationChange(points []models.TrackPoint) (gain, loss float64) {
	var prev *float64
	for i := range points {
		e := points[i].ElevationM
		if e == nil {
			continue
		}
		if prev != nil {
			delta := *e - *prev
			if delta > 0 {
				gain += delta
			} else {
				loss += -delta
			}
		}
		prev = e
	}
	return gain, loss
}

// Package matcher detects overlap between a finished activity's GPS path
// and a user-defined segment polyline. Matching is pure geometry; reading
// segments and writing match rows belongs to the service layer.
package matcher

import (
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/spatial"
)

// Config holds the matching thresholds. The defaults are configuration, not
// constants: product can tune them without a code change.
type Config struct {
	// ToleranceM is the maximum distance from the segment polyline for an
	// activity point to count as on-segment.
	ToleranceM float64

	// MinCoverage is the fraction of the segment's length a contiguous run
	// must span to count as a match.
	MinCoverage float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{ToleranceM: 50, MinCoverage: 0.9}
}

// Match is one detected overlap: the index range into the activity polyline
// and the elapsed time across it. StartIdx <= EndIdx always holds.
type Match struct {
	StartIdx int
	EndIdx   int
	ElapsedS float64
}

// FindMatches walks the activity polyline looking for contiguous runs of
// points within tolerance of the segment, each covering enough of the
// segment's length. Out-and-back routes and repeated loops can yield
// multiple matches; every qualifying run is returned.
//
// times is index-aligned with the activity polyline and supplies elapsed
// time; it may be nil, in which case elapsed is 0.
//
// A segment with fewer than 2 polyline points is ineligible and yields a
// ValidationError, never a pipeline failure.
func FindMatches(segment, activity []spatial.Point, times []time.Time, cfg Config) ([]Match, error) {
	if len(segment) < 2 {
		return nil, &models.ValidationError{Reason: "segment polyline has fewer than 2 points"}
	}
	segLen := spatial.PathLength(segment)
	if segLen <= 0 {
		return nil, &models.ValidationError{Reason: "segment polyline has zero length"}
	}
	if len(activity) == 0 {
		return nil, nil
	}

	// Cheap bounding-box rejection before any point-distance work.
	segBox := spatial.BoundingBox(segment)
	actBox := spatial.BoundingBox(activity).Expand(cfg.ToleranceM)
	if !segBox.Overlaps(actBox) {
		return nil, nil
	}

	var (
		matches  []Match
		runStart = -1
		minArc   float64
		maxArc   float64
	)

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		if (maxArc-minArc)/segLen >= cfg.MinCoverage {
			m := Match{StartIdx: runStart, EndIdx: end}
			if times != nil && end < len(times) {
				m.ElapsedS = times[end].Sub(times[runStart]).Seconds()
			}
			matches = append(matches, m)
		}
		runStart = -1
	}

	for i := range activity {
		dist, arc := spatial.ProjectOntoPolyline(activity[i], segment)
		if dist <= cfg.ToleranceM {
			if runStart < 0 {
				runStart = i
				minArc, maxArc = arc, arc
			} else {
				if arc < minArc {
					minArc = arc
				}
				if arc > maxArc {
					maxArc = arc
				}
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(activity) - 1)

	return matches, nil
}

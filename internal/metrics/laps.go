package metrics

import (
	"github.com/openpace/activity-backend-go/internal/models"
)

// SplitLaps slices a sequence at the device-reported lap boundaries. Points
// at or after a boundary timestamp belong to that lap. Without boundaries
// the whole sequence is a single implicit lap. Boundary markers with no
// points before the next boundary produce no slice.
func SplitLaps(seq *models.TrackSequence) [][]models.TrackPoint {
	if len(seq.Points) == 0 {
		return nil
	}
	if len(seq.LapStarts) == 0 {
		return [][]models.TrackPoint{seq.Points}
	}

	var laps [][]models.TrackPoint
	points := seq.Points
	cursor := 0

	for b := 0; b < len(seq.LapStarts); b++ {
		end := len(points)
		if b+1 < len(seq.LapStarts) {
			next := seq.LapStarts[b+1]
			for i := cursor; i < len(points); i++ {
				if !points[i].Time.Before(next) {
					end = i
					break
				}
			}
		}
		if end > cursor {
			laps = append(laps, points[cursor:end])
			cursor = end
		}
	}

	// Points before the first boundary (warmup before the device's first
	// lap marker) are folded into the first lap by the loop above because
	// the cursor starts at 0.

	if len(laps) == 0 {
		return [][]models.TrackPoint{points}
	}
	return laps
}

// BuildLaps runs the metrics engine over each lap slice and assembles Lap
// rows. Empty lap slices are skipped, never emitted as empty rows.
//
// A lap's elapsed runs from its first sample to the next lap's first sample
// (the last lap ends at the sequence end), so the per-lap elapsed values
// partition the whole-activity elapsed with no boundary gap lost.
func BuildLaps(seq *models.TrackSequence) []models.Lap {
	slices := SplitLaps(seq)

	laps := make([]models.Lap, 0, len(slices))
	for i, slice := range slices {
		if len(slice) == 0 {
			continue
		}
		s := Summarize(slice)

		lapEnd := seq.EndTime()
		if i+1 < len(slices) && len(slices[i+1]) > 0 {
			lapEnd = slices[i+1][0].Time
		}

		laps = append(laps, models.Lap{
			LapIndex:        i,
			StartTime:       s.StartTime,
			StartLat:        s.StartLat,
			StartLon:        s.StartLon,
			EndLat:          s.EndLat,
			EndLon:          s.EndLon,
			ElapsedS:        lapEnd.Sub(s.StartTime).Seconds(),
			TimerS:          s.TimerS,
			DistanceM:       s.DistanceM,
			AvgHeartRate:    s.AvgHeartRate,
			MaxHeartRate:    s.MaxHeartRate,
			AvgCadence:      s.AvgCadence,
			MaxCadence:      s.MaxCadence,
			AvgPowerW:       s.AvgPowerW,
			MaxPowerW:       s.MaxPowerW,
			NormalizedPower: s.NormalizedPower,
			AscentM:         s.AscentM,
			DescentM:        s.DescentM,
		})
	}
	return laps
}

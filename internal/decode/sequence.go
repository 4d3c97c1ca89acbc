package decode

import (
	"fmt"
	"time"

	"github.com/openpace/activity-backend-go/internal/models"
)

// finalize applies the validation shared by every decoder: points must have
// timestamps and be in non-decreasing time order. Individual bad points are
// dropped; the whole file fails when the unusable fraction exceeds the
// configured tolerance.
//
// droppedUpstream counts samples the decoder itself already discarded while
// parsing (unparseable records), so the tolerance applies to the raw sample
// count, not the surviving one.
func finalize(format string, cfg Config, points []models.TrackPoint, droppedUpstream int, lapStarts []time.Time, sport string) (*models.TrackSequence, error) {
	total := len(points) + droppedUpstream
	if total == 0 {
		return nil, &models.ValidationError{Reason: "file contains zero trackpoints"}
	}

	kept := make([]models.TrackPoint, 0, len(points))
	dropped := droppedUpstream
	var last time.Time
	for _, p := range points {
		if p.Time.IsZero() {
			dropped++
			continue
		}
		if !last.IsZero() && p.Time.Before(last) {
			// Out-of-order point, device clock glitch.
			dropped++
			continue
		}
		last = p.Time
		kept = append(kept, p)
	}

	if len(kept) == 0 {
		return nil, &models.ValidationError{Reason: "no usable trackpoints after validation"}
	}

	if frac := float64(dropped) / float64(total); frac > cfg.MaxDroppedFraction {
		return nil, &models.DecodeError{
			Format: format,
			Reason: fmt.Sprintf("%.1f%% of trackpoints unusable (tolerance %.1f%%)", frac*100, cfg.MaxDroppedFraction*100),
		}
	}

	if kept[0].Time.IsZero() || kept[len(kept)-1].Time.IsZero() {
		return nil, &models.ValidationError{Reason: "missing start or end timestamp"}
	}

	return &models.TrackSequence{
		Points:    kept,
		LapStarts: lapStarts,
		Sport:     sport,
		Dropped:   dropped,
	}, nil
}

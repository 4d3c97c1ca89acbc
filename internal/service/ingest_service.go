// Package service orchestrates file ingestion and segment matching on top
// of the decode, metrics, geocode and matcher kernels.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpace/activity-backend-go/internal/decode"
	"github.com/openpace/activity-backend-go/internal/geocode"
	"github.com/openpace/activity-backend-go/internal/matcher"
	"github.com/openpace/activity-backend-go/internal/metrics"
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/monitoring"
	"github.com/openpace/activity-backend-go/internal/spatial"
)

// ActivityStore is the persistence surface the ingestion service needs.
// *repository.ActivityRepository implements it, tests fake it.
type ActivityStore interface {
	FindByChecksum(userID, checksum string) (*models.Activity, error)
	SaveBundle(activity *models.Activity, streams []models.Stream, laps []models.Lap) error
	GetByID(id int64) (*models.Activity, error)
	GetStreams(activityID int64) ([]models.Stream, error)
	GetStream(activityID int64, streamType string) (*models.Stream, error)
	GetLaps(activityID int64) ([]models.Lap, error)
	ListByUserAndType(userID, activityType string) ([]models.Activity, error)
}

// SegmentStore is the segment-side persistence surface.
type SegmentStore interface {
	Create(segment *models.Segment) error
	GetByID(id int64) (*models.Segment, error)
	List(userID string, filter models.SegmentFilter) ([]models.Segment, int64, error)
	ListByUserAndType(userID, activityType string) ([]models.Segment, error)
	ListMatches(segmentID int64) ([]models.SegmentMatch, error)
	ReplaceMatchesForActivity(activityID int64, matches []models.SegmentMatch) error
	ReplaceMatchesForSegment(segmentID int64, matches []models.SegmentMatch) error
}

// GearResolver resolves the user's per-type default gear.
type GearResolver interface {
	DefaultFor(userID, activityType string) (*models.Gear, error)
}

// LocationResolver performs best-effort location enrichment.
type LocationResolver interface {
	Resolve(ctx context.Context, points []models.TrackPoint) geocode.Location
}

// IngestService turns uploaded device export files into persisted
// activities and kicks off segment matching for each one.
type IngestService struct {
	decoders   *decode.Registry
	activities ActivityStore
	segments   SegmentStore
	gear       GearResolver
	location   LocationResolver
	matcherCfg matcher.Config

	// wg tracks in-flight background matching passes so shutdown and
	// tests can join them.
	wg sync.WaitGroup
}

// NewIngestService creates an ingestion service
func NewIngestService(decoders *decode.Registry, activities ActivityStore, segments SegmentStore, gear GearResolver, location LocationResolver, matcherCfg matcher.Config) *IngestService {
	return &IngestService{
		decoders:   decoders,
		activities: activities,
		segments:   segments,
		gear:       gear,
		location:   location,
		matcherCfg: matcherCfg,
	}
}

// Wait blocks until every background matching pass started so far has
// finished.
func (s *IngestService) Wait() {
	s.wg.Wait()
}

// IngestFile ingests one uploaded file for a user. Returns the persisted
// activity and whether it was newly created; an identical re-upload returns
// the existing activity with created=false and touches nothing.
func (s *IngestService) IngestFile(ctx context.Context, userID, filename string, data []byte) (*models.Activity, bool, error) {
	started := time.Now()

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	existing, err := s.activities.FindByChecksum(userID, checksum)
	if err != nil {
		monitoring.RecordIngestFailure("storage")
		return nil, false, err
	}
	if existing != nil {
		monitoring.RecordDuplicate()
		return existing, false, nil
	}

	decoder, err := s.decoders.Detect(filename, data)
	if err != nil {
		monitoring.RecordIngestFailure("detect")
		return nil, false, err
	}

	seq, err := decoder.Decode(data)
	if err != nil {
		monitoring.RecordIngestFailure("decode")
		return nil, false, err
	}

	summary := metrics.Summarize(seq.Points)
	streams := metrics.BuildStreams(seq.Points)
	laps := metrics.BuildLaps(seq)

	loc := s.location.Resolve(ctx, seq.Points)

	activity := &models.Activity{
		UserID:          userID,
		Checksum:        checksum,
		Filename:        filename,
		Format:          decoder.Format(),
		ActivityType:    seq.Sport,
		StartTime:       seq.StartTime(),
		EndTime:         seq.EndTime(),
		ElapsedS:        summary.ElapsedS,
		TimerS:          summary.TimerS,
		DistanceM:       summary.DistanceM,
		ElevationGainM:  summary.AscentM,
		ElevationLossM:  summary.DescentM,
		PaceSPerM:       summary.PaceSPerM,
		AvgSpeedMps:     summary.AvgSpeedMps,
		MaxSpeedMps:     summary.MaxSpeedMps,
		AvgHeartRate:    summary.AvgHeartRate,
		MaxHeartRate:    summary.MaxHeartRate,
		AvgCadence:      summary.AvgCadence,
		MaxCadence:      summary.MaxCadence,
		AvgPowerW:       summary.AvgPowerW,
		MaxPowerW:       summary.MaxPowerW,
		NormalizedPower: summary.NormalizedPower,
		City:            loc.City,
		Town:            loc.Town,
		Country:         loc.Country,
		Timezone:        loc.Timezone,
	}

	// Default gear is a convenience, not a requirement.
	if gear, err := s.gear.DefaultFor(userID, activity.ActivityType); err != nil {
		log.Printf("default gear lookup failed for user %s: %v", userID, err)
	} else if gear != nil {
		activity.GearID = &gear.ID
	}

	if err := s.activities.SaveBundle(activity, streams, laps); err != nil {
		// Two simultaneous uploads of the same file can both pass the
		// checksum lookup; the loser trips the unique constraint. Re-check
		// so the caller still sees the idempotent duplicate outcome.
		if winner, lookupErr := s.activities.FindByChecksum(userID, checksum); lookupErr == nil && winner != nil {
			monitoring.RecordDuplicate()
			return winner, false, nil
		}
		monitoring.RecordIngestFailure("storage")
		return nil, false, err
	}

	monitoring.RecordIngest(activity.Format, time.Since(started))

	// Matching runs off the request path; its failures never surface to
	// the uploader.
	path, times := positionedPath(seq.Points)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.matchActivity(activity.ID, userID, activity.ActivityType, path, times)
	}()

	return activity, true, nil
}

// BatchFile is one file of a batch upload.
type BatchFile struct {
	Filename string
	Data     []byte
}

// BatchItem is the per-file outcome of a batch upload.
type BatchItem struct {
	Filename   string `json:"filename"`
	Status     string `json:"status"` // created, duplicate, failed
	ActivityID int64  `json:"activity_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult is the outcome of a batch upload.
type BatchResult struct {
	BatchID string      `json:"batch_id"`
	Items   []BatchItem `json:"items"`
}

// ImportBatch ingests several files with per-file isolation: one corrupt
// file fails its own item and never aborts the rest.
func (s *IngestService) ImportBatch(ctx context.Context, userID string, files []BatchFile) BatchResult {
	result := BatchResult{BatchID: uuid.NewString()}

	for _, f := range files {
		activity, created, err := s.IngestFile(ctx, userID, f.Filename, f.Data)
		item := BatchItem{Filename: f.Filename}
		switch {
		case err != nil:
			item.Status = "failed"
			item.Error = err.Error()
		case created:
			item.Status = "created"
			item.ActivityID = activity.ID
		default:
			item.Status = "duplicate"
			item.ActivityID = activity.ID
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// matchActivity runs the new activity against every same-type segment of
// its owner and replaces the activity's match rows.
func (s *IngestService) matchActivity(activityID int64, userID, activityType string, path []spatial.Point, times []time.Time) {
	if len(path) < 2 {
		return
	}

	segments, err := s.segments.ListByUserAndType(userID, activityType)
	if err != nil {
		log.Printf("segment lookup failed for activity %d: %v", activityID, err)
		return
	}

	var matches []models.SegmentMatch
	for _, seg := range segments {
		found, err := matchSegment(&seg, activityID, path, times, s.matcherCfg)
		if err != nil {
			log.Printf("matching segment %d against activity %d: %v", seg.ID, activityID, err)
			continue
		}
		matches = append(matches, found...)
	}

	if err := s.segments.ReplaceMatchesForActivity(activityID, matches); err != nil {
		log.Printf("recording matches for activity %d: %v", activityID, err)
		return
	}
	monitoring.RecordMatches(len(matches))
}

// matchSegment runs the matcher for one segment and maps its results to
// match rows. Ineligible segments are skipped silently.
func matchSegment(seg *models.Segment, activityID int64, path []spatial.Point, times []time.Time, cfg matcher.Config) ([]models.SegmentMatch, error) {
	if !seg.Eligible() {
		return nil, nil
	}

	polyline := make([]spatial.Point, len(seg.Polyline))
	for i, p := range seg.Polyline {
		polyline[i] = spatial.Point{Lat: p.Lat, Lon: p.Lon}
	}

	found, err := matcher.FindMatches(polyline, path, times, cfg)
	if err != nil {
		return nil, err
	}

	matches := make([]models.SegmentMatch, 0, len(found))
	for _, m := range found {
		matches = append(matches, models.SegmentMatch{
			SegmentID:       seg.ID,
			ActivityID:      activityID,
			MatchedStartIdx: m.StartIdx,
			MatchedEndIdx:   m.EndIdx,
			ElapsedS:        m.ElapsedS,
		})
	}
	return matches, nil
}

// positionedPath extracts the GPS polyline and per-vertex timestamps from a
// point sequence, in the same order the lat_lon stream is built in.
func positionedPath(points []models.TrackPoint) ([]spatial.Point, []time.Time) {
	var path []spatial.Point
	var times []time.Time
	for i := range points {
		if !points[i].HasPosition() {
			continue
		}
		path = append(path, spatial.Point{Lat: *points[i].Lat, Lon: *points[i].Lon})
		times = append(times, points[i].Time)
	}
	return path, times
}

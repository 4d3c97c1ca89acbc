package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openpace/activity-backend-go/internal/matcher"
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/monitoring"
	"github.com/openpace/activity-backend-go/internal/spatial"
)

// ErrSegmentNotFound is returned when a segment ID does not exist or
// belongs to another user.
var ErrSegmentNotFound = errors.New("segment not found")

var canonicalTypes = map[string]bool{
	models.TypeRide:               true,
	models.TypeRun:                true,
	models.TypeWalk:               true,
	models.TypeHike:               true,
	models.TypeSwim:               true,
	models.TypeRowing:             true,
	models.TypeCrossCountrySkiing: true,
	models.TypeAlpineSkiing:       true,
	models.TypeSnowboarding:       true,
	models.TypeInlineSkating:      true,
	models.TypeWorkout:            true,
}

// SegmentService manages reference segments and their match lists.
type SegmentService struct {
	activities ActivityStore
	segments   SegmentStore
	matcherCfg matcher.Config

	wg sync.WaitGroup
}

// NewSegmentService creates a segment service
func NewSegmentService(activities ActivityStore, segments SegmentStore, matcherCfg matcher.Config) *SegmentService {
	return &SegmentService{
		activities: activities,
		segments:   segments,
		matcherCfg: matcherCfg,
	}
}

// Wait blocks until background refresh passes started so far have finished.
func (s *SegmentService) Wait() {
	s.wg.Wait()
}

// CreateSegment validates and persists a new segment, then matches the
// owner's back catalog against it in the background.
func (s *SegmentService) CreateSegment(userID, name, segType string, polyline []models.LatLng) (*models.Segment, error) {
	if name == "" {
		return nil, &models.ValidationError{Reason: "segment name is required"}
	}
	if !canonicalTypes[segType] {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("unknown activity type %q", segType)}
	}
	if len(polyline) < 2 {
		return nil, &models.ValidationError{Reason: "segment polyline needs at least two points"}
	}

	path := toSpatial(polyline)
	length := spatial.PathLength(path)
	if length <= 0 {
		return nil, &models.ValidationError{Reason: "segment polyline has zero length"}
	}

	segment := &models.Segment{
		UserID:    userID,
		Name:      name,
		Type:      segType,
		Polyline:  polyline,
		DistanceM: length,
	}
	if err := s.segments.Create(segment); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.RefreshSegment(segment.ID, userID); err != nil {
			log.Printf("initial matching for segment %d: %v", segment.ID, err)
		}
	}()

	return segment, nil
}

// GetSegment returns one of the user's segments.
func (s *SegmentService) GetSegment(id int64, userID string) (*models.Segment, error) {
	segment, err := s.segments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if segment == nil || segment.UserID != userID {
		return nil, ErrSegmentNotFound
	}
	return segment, nil
}

// ListSegments lists the user's segments.
func (s *SegmentService) ListSegments(userID string, filter models.SegmentFilter) ([]models.Segment, int64, error) {
	return s.segments.List(userID, filter)
}

// ListMatches returns a segment's recorded matches, fastest first.
func (s *SegmentService) ListMatches(id int64, userID string) ([]models.SegmentMatch, error) {
	if _, err := s.GetSegment(id, userID); err != nil {
		return nil, err
	}
	return s.segments.ListMatches(id)
}

// RefreshSegment recomputes a segment's matches against the owner's entire
// back catalog with replace-all semantics, and returns the new match list.
// A segment with no matching activities ends up with an empty list, not an
// error.
func (s *SegmentService) RefreshSegment(id int64, userID string) ([]models.SegmentMatch, error) {
	segment, err := s.GetSegment(id, userID)
	if err != nil {
		return nil, err
	}
	if !segment.Eligible() {
		return nil, &models.ValidationError{Reason: "segment polyline needs at least two points"}
	}

	activities, err := s.activities.ListByUserAndType(segment.UserID, segment.Type)
	if err != nil {
		return nil, err
	}

	var matches []models.SegmentMatch
	for i := range activities {
		path, times, err := s.activityPath(&activities[i])
		if err != nil {
			log.Printf("loading path of activity %d: %v", activities[i].ID, err)
			continue
		}
		if len(path) < 2 {
			continue
		}

		found, err := matchSegment(segment, activities[i].ID, path, times, s.matcherCfg)
		if err != nil {
			log.Printf("matching segment %d against activity %d: %v", id, activities[i].ID, err)
			continue
		}
		matches = append(matches, found...)
	}

	if err := s.segments.ReplaceMatchesForSegment(id, matches); err != nil {
		return nil, err
	}
	monitoring.RecordMatches(len(matches))

	return s.segments.ListMatches(id)
}

// activityPath reconstructs an activity's GPS polyline and per-vertex
// timestamps from its stored lat_lon stream.
func (s *SegmentService) activityPath(activity *models.Activity) ([]spatial.Point, []time.Time, error) {
	stream, err := s.activities.GetStream(activity.ID, models.StreamLatLng)
	if err != nil {
		return nil, nil, err
	}
	if stream == nil {
		return nil, nil, nil
	}

	path := make([]spatial.Point, 0, len(stream.Waypoints))
	times := make([]time.Time, 0, len(stream.Waypoints))
	for _, wp := range stream.Waypoints {
		if wp.Pair == nil {
			continue
		}
		path = append(path, spatial.Point{Lat: wp.Pair[0], Lon: wp.Pair[1]})
		times = append(times, activity.StartTime.Add(time.Duration(wp.T*float64(time.Second))))
	}
	return path, times, nil
}

func toSpatial(polyline []models.LatLng) []spatial.Point {
	points := make([]spatial.Point, len(polyline))
	for i, p := range polyline {
		points[i] = spatial.Point{Lat: p.Lat, Lon: p.Lon}
	}
	return points
}

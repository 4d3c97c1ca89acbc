package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openpace/activity-backend-go/internal/geocode"
	"github.com/openpace/activity-backend-go/internal/models"
)

// gpxRide builds a small decodable ride: n points heading east along the
// equatorial test latitude, one per second, with heart rate.
func gpxRide(n int) []byte {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="unit test" xmlns="http://www.topografix.com/GPX/1/1">
<trk><type>cycling</type><trkseg>`
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		body += fmt.Sprintf(`<trkpt lat="52.5000" lon="%.6f"><ele>35.0</ele><time>%s</time>`+
			`<extensions><heartrate>%d</heartrate></extensions></trkpt>`,
			13.40+0.0001*float64(i), start.Add(time.Duration(i)*time.Second).Format(time.RFC3339), 120+i%10)
	}
	body += `</trkseg></trk></gpx>`
	return []byte(body)
}

// fakeActivityStore is an in-memory ActivityStore.
type fakeActivityStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*models.Activity
	streams map[int64][]models.Stream
	laps    map[int64][]models.Lap
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{
		byID:    make(map[int64]*models.Activity),
		streams: make(map[int64][]models.Stream),
		laps:    make(map[int64][]models.Lap),
	}
}

func (f *fakeActivityStore) FindByChecksum(userID, checksum string) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.UserID == userID && a.Checksum == checksum {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeActivityStore) SaveBundle(activity *models.Activity, streams []models.Stream, laps []models.Lap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	activity.ID = f.nextID
	f.byID[activity.ID] = activity
	f.streams[activity.ID] = streams
	f.laps[activity.ID] = laps
	return nil
}

func (f *fakeActivityStore) GetByID(id int64) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeActivityStore) GetStreams(activityID int64) ([]models.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[activityID], nil
}

func (f *fakeActivityStore) GetStream(activityID int64, streamType string) (*models.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.streams[activityID] {
		if f.streams[activityID][i].Type == streamType {
			return &f.streams[activityID][i], nil
		}
	}
	return nil, nil
}

func (f *fakeActivityStore) GetLaps(activityID int64) ([]models.Lap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.laps[activityID], nil
}

func (f *fakeActivityStore) ListByUserAndType(userID, activityType string) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Activity
	for _, a := range f.byID {
		if a.UserID == userID && a.ActivityType == activityType {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeActivityStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeSegmentStore is an in-memory SegmentStore.
type fakeSegmentStore struct {
	mu         sync.Mutex
	nextID     int64
	segments   map[int64]*models.Segment
	byActivity map[int64][]models.SegmentMatch
	bySegment  map[int64][]models.SegmentMatch
}

func newFakeSegmentStore() *fakeSegmentStore {
	return &fakeSegmentStore{
		segments:   make(map[int64]*models.Segment),
		byActivity: make(map[int64][]models.SegmentMatch),
		bySegment:  make(map[int64][]models.SegmentMatch),
	}
}

func (f *fakeSegmentStore) Create(segment *models.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	segment.ID = f.nextID
	f.segments[segment.ID] = segment
	return nil
}

func (f *fakeSegmentStore) GetByID(id int64) (*models.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.segments[id], nil
}

func (f *fakeSegmentStore) List(userID string, filter models.SegmentFilter) ([]models.Segment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Segment
	for _, s := range f.segments {
		if s.UserID == userID && (filter.Type == "" || s.Type == filter.Type) {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSegmentStore) ListByUserAndType(userID, activityType string) ([]models.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Segment
	for _, s := range f.segments {
		if s.UserID == userID && s.Type == activityType {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSegmentStore) ListMatches(segmentID int64) ([]models.SegmentMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SegmentMatch
	out = append(out, f.bySegment[segmentID]...)
	for _, matches := range f.byActivity {
		for _, m := range matches {
			if m.SegmentID == segmentID {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (f *fakeSegmentStore) ReplaceMatchesForActivity(activityID int64, matches []models.SegmentMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byActivity[activityID] = matches
	return nil
}

func (f *fakeSegmentStore) ReplaceMatchesForSegment(segmentID int64, matches []models.SegmentMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySegment[segmentID] = matches
	for id, existing := range f.byActivity {
		var kept []models.SegmentMatch
		for _, m := range existing {
			if m.SegmentID != segmentID {
				kept = append(kept, m)
			}
		}
		f.byActivity[id] = kept
	}
	return nil
}

// racingActivityStore simulates two identical uploads racing: the first
// SaveBundle loses to a winner that was committed after the caller's checksum
// lookup, surfacing the same constraint error the database would.
type racingActivityStore struct {
	*fakeActivityStore
	raceMu sync.Mutex
	raced  bool
}

func (r *racingActivityStore) SaveBundle(activity *models.Activity, streams []models.Stream, laps []models.Lap) error {
	r.raceMu.Lock()
	defer r.raceMu.Unlock()
	if !r.raced {
		r.raced = true
		winner := *activity
		if err := r.fakeActivityStore.SaveBundle(&winner, streams, laps); err != nil {
			return err
		}
		return fmt.Errorf("insert activity: constraint failed: UNIQUE constraint failed: activities.user_id, activities.checksum")
	}
	return r.fakeActivityStore.SaveBundle(activity, streams, laps)
}

// fakeGear returns a fixed default gear.
type fakeGear struct {
	gear *models.Gear
	err  error
}

func (f *fakeGear) DefaultFor(userID, activityType string) (*models.Gear, error) {
	return f.gear, f.err
}

// fakeLocation returns a canned location and records whether it was asked.
type fakeLocation struct {
	mu     sync.Mutex
	loc    geocode.Location
	called bool
}

func (f *fakeLocation) Resolve(ctx context.Context, points []models.TrackPoint) geocode.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = true
	return f.loc
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/openpace/activity-backend-go/internal/decode"
	"github.com/openpace/activity-backend-go/internal/geocode"
	"github.com/openpace/activity-backend-go/internal/matcher"
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/service"
)

func newIngestFixture() (*service.IngestService, *fakeActivityStore, *fakeSegmentStore, *fakeLocation) {
	activities := newFakeActivityStore()
	segments := newFakeSegmentStore()
	location := &fakeLocation{loc: geocode.Location{City: "Berlin", Country: "Germany", Timezone: "Europe/Berlin"}}
	gear := &fakeGear{}
	svc := service.NewIngestService(
		decode.NewRegistry(decode.DefaultConfig()),
		activities, segments, gear, location,
		matcher.DefaultConfig(),
	)
	return svc, activities, segments, location
}

func TestIngestService_IngestFile(t *testing.T) {
	convey.Convey("Given an ingestion service with empty storage", t, func() {
		svc, activities, _, location := newIngestFixture()
		data := gpxRide(120)

		convey.Convey("When a valid GPX file is uploaded", func() {
			activity, created, err := svc.IngestFile(context.Background(), "alice", "ride.gpx", data)
			svc.Wait()

			convey.Convey("Then a new activity is persisted with derived metrics", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(created, convey.ShouldBeTrue)
				convey.So(activity.ID, convey.ShouldNotEqual, 0)
				convey.So(activity.ActivityType, convey.ShouldEqual, models.TypeRide)
				convey.So(activity.Format, convey.ShouldEqual, "gpx")
				convey.So(activity.Checksum, convey.ShouldHaveLength, 64)
				convey.So(activity.ElapsedS, convey.ShouldEqual, 119)

				rideStart := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
				convey.So(activity.StartTime.Equal(rideStart), convey.ShouldBeTrue)
				convey.So(activity.EndTime.Equal(rideStart.Add(119*time.Second)), convey.ShouldBeTrue)
				convey.So(activity.DistanceM, convey.ShouldBeGreaterThan, 0)
				convey.So(activity.AvgHeartRate, convey.ShouldNotBeNil)
			})

			convey.Convey("Then location enrichment is applied", func() {
				convey.So(location.called, convey.ShouldBeTrue)
				convey.So(activity.City, convey.ShouldEqual, "Berlin")
				convey.So(activity.Timezone, convey.ShouldEqual, "Europe/Berlin")
			})

			convey.Convey("Then streams and laps are stored alongside", func() {
				streams, _ := activities.GetStreams(activity.ID)
				laps, _ := activities.GetLaps(activity.ID)
				convey.So(len(streams), convey.ShouldEqual, 3) // lat_lon, elevation, heart_rate
				convey.So(len(laps), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the identical file is uploaded twice", func() {
			first, created1, err1 := svc.IngestFile(context.Background(), "alice", "ride.gpx", data)
			second, created2, err2 := svc.IngestFile(context.Background(), "alice", "ride-copy.gpx", data)
			svc.Wait()

			convey.Convey("Then the second upload is a no-op returning the original", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(created1, convey.ShouldBeTrue)
				convey.So(created2, convey.ShouldBeFalse)
				convey.So(second.ID, convey.ShouldEqual, first.ID)
				convey.So(activities.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the same file arrives from a different user", func() {
			_, _, err1 := svc.IngestFile(context.Background(), "alice", "ride.gpx", data)
			_, created2, err2 := svc.IngestFile(context.Background(), "bob", "ride.gpx", data)
			svc.Wait()

			convey.Convey("Then both users get their own activity", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(created2, convey.ShouldBeTrue)
				convey.So(activities.count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the file is not a recognized format", func() {
			_, _, err := svc.IngestFile(context.Background(), "alice", "notes.txt", []byte("not a workout"))

			convey.Convey("Then a decode error is returned and nothing is stored", func() {
				var de *models.DecodeError
				convey.So(errors.As(err, &de), convey.ShouldBeTrue)
				convey.So(activities.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the file decodes to zero trackpoints", func() {
			empty := []byte(`<?xml version="1.0"?><gpx version="1.1" creator="t" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg></trkseg></trk></gpx>`)
			_, _, err := svc.IngestFile(context.Background(), "alice", "empty.gpx", empty)

			convey.Convey("Then the upload is rejected and nothing is stored", func() {
				var ve *models.ValidationError
				convey.So(errors.As(err, &ve), convey.ShouldBeTrue)
				convey.So(activities.count(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestIngestService_ConcurrentDuplicate(t *testing.T) {
	convey.Convey("Given a store where an identical upload commits between lookup and save", t, func() {
		activities := &racingActivityStore{fakeActivityStore: newFakeActivityStore()}
		segments := newFakeSegmentStore()
		svc := service.NewIngestService(
			decode.NewRegistry(decode.DefaultConfig()),
			activities, segments, &fakeGear{}, &fakeLocation{},
			matcher.DefaultConfig(),
		)

		convey.Convey("When the losing upload hits the unique constraint", func() {
			activity, created, err := svc.IngestFile(context.Background(), "alice", "ride.gpx", gpxRide(120))
			svc.Wait()

			convey.Convey("Then it resolves to the winner as a duplicate, not an error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(created, convey.ShouldBeFalse)
				convey.So(activity, convey.ShouldNotBeNil)
				convey.So(activity.ID, convey.ShouldNotEqual, 0)
				convey.So(activities.count(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestIngestService_Matching(t *testing.T) {
	convey.Convey("Given a user with a segment lying on the upload's route", t, func() {
		svc, _, segments, _ := newIngestFixture()

		seg := &models.Segment{
			UserID: "alice",
			Name:   "Straightaway",
			Type:   models.TypeRide,
			Polyline: []models.LatLng{
				{Lat: 52.5, Lon: 13.4005},
				{Lat: 52.5, Lon: 13.4100},
			},
			DistanceM: 645,
		}
		convey.So(segments.Create(seg), convey.ShouldBeNil)

		convey.Convey("When a traversing activity is ingested", func() {
			activity, created, err := svc.IngestFile(context.Background(), "alice", "ride.gpx", gpxRide(120))
			svc.Wait()

			convey.Convey("Then the matching pass records a segment match", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(created, convey.ShouldBeTrue)

				matches, _ := segments.ListMatches(seg.ID)
				convey.So(len(matches), convey.ShouldEqual, 1)
				convey.So(matches[0].ActivityID, convey.ShouldEqual, activity.ID)
				convey.So(matches[0].MatchedStartIdx, convey.ShouldBeLessThanOrEqualTo, matches[0].MatchedEndIdx)
				convey.So(matches[0].ElapsedS, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When another user's activity traverses the same route", func() {
			_, _, err := svc.IngestFile(context.Background(), "bob", "ride.gpx", gpxRide(120))
			svc.Wait()

			convey.Convey("Then the segment stays unmatched", func() {
				convey.So(err, convey.ShouldBeNil)
				matches, _ := segments.ListMatches(seg.ID)
				convey.So(len(matches), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestIngestService_ImportBatch(t *testing.T) {
	convey.Convey("Given a batch with one good, one duplicate and one corrupt file", t, func() {
		svc, activities, _, _ := newIngestFixture()
		data := gpxRide(60)

		_, _, err := svc.IngestFile(context.Background(), "alice", "earlier.gpx", data)
		convey.So(err, convey.ShouldBeNil)

		files := []service.BatchFile{
			{Filename: "new.gpx", Data: gpxRide(90)},
			{Filename: "repeat.gpx", Data: data},
			{Filename: "broken.gpx", Data: []byte("<gpx><unclosed")},
		}

		convey.Convey("When the batch is imported", func() {
			result := svc.ImportBatch(context.Background(), "alice", files)
			svc.Wait()

			convey.Convey("Then each file gets its own outcome", func() {
				convey.So(result.BatchID, convey.ShouldNotBeBlank)
				convey.So(len(result.Items), convey.ShouldEqual, 3)
				convey.So(result.Items[0].Status, convey.ShouldEqual, "created")
				convey.So(result.Items[0].ActivityID, convey.ShouldNotEqual, 0)
				convey.So(result.Items[1].Status, convey.ShouldEqual, "duplicate")
				convey.So(result.Items[2].Status, convey.ShouldEqual, "failed")
				convey.So(result.Items[2].Error, convey.ShouldNotBeBlank)
			})

			convey.Convey("Then the corrupt file does not block the good one", func() {
				convey.So(activities.count(), convey.ShouldEqual, 2)
			})
		})
	})
}

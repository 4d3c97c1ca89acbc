package metrics

import (
	"github.com/openpace/activity-backend-go/internal/models"
)

// BuildStreams constructs one stream per sensor type that has at least one
// non-nil sample across the sequence. Sensor types with zero samples are
// omitted entirely: an absent sensor means no stream row, not a stream of
// nulls. A file with only GPS and heart rate yields exactly the lat_lon and
// heart_rate streams. Waypoint times are seconds since the first point.
func BuildStreams(points []models.TrackPoint) []models.Stream {
	if len(points) == 0 {
		return nil
	}
	start := points[0].Time

	var (
		heartRate []models.Waypoint
		power     []models.Waypoint
		cadence   []models.Waypoint
		elevation []models.Waypoint
		velocity  []models.Waypoint
		pace      []models.Waypoint
		latLng    []models.Waypoint
	)

	for i := range points {
		t := points[i].Time.Sub(start).Seconds()

		if points[i].HeartRate != nil {
			heartRate = append(heartRate, models.Waypoint{T: t, Value: float64(*points[i].HeartRate)})
		}
		if points[i].PowerW != nil {
			power = append(power, models.Waypoint{T: t, Value: float64(*points[i].PowerW)})
		}
		if points[i].Cadence != nil {
			cadence = append(cadence, models.Waypoint{T: t, Value: float64(*points[i].Cadence)})
		}
		if points[i].ElevationM != nil {
			elevation = append(elevation, models.Waypoint{T: t, Value: *points[i].ElevationM})
		}
		if points[i].SpeedMps != nil {
			v := *points[i].SpeedMps
			velocity = append(velocity, models.Waypoint{T: t, Value: v})
			pace = append(pace, models.Waypoint{T: t, Value: Pace(v)})
		}
		if points[i].HasPosition() {
			pair := [2]float64{*points[i].Lat, *points[i].Lon}
			latLng = append(latLng, models.Waypoint{T: t, Pair: &pair})
		}
	}

	var streams []models.Stream
	add := func(streamType string, waypoints []models.Waypoint) {
		if len(waypoints) > 0 {
			streams = append(streams, models.Stream{Type: streamType, Waypoints: waypoints})
		}
	}

	add(models.StreamLatLng, latLng)
	add(models.StreamHeartRate, heartRate)
	add(models.StreamPower, power)
	add(models.StreamCadence, cadence)
	add(models.StreamElevation, elevation)
	add(models.StreamVelocity, velocity)
	add(models.StreamPace, pace)

	return streams
}

package spatial

import (
	"math"
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Box is a lat/lon axis-aligned bounding box.
type Box struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// BoundingBox calculates the bounding box of a set of points.
func BoundingBox(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}

	b := Box{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}

	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}

	return b
}

// Expand grows the box by marginM meters on every side, converting the
// margin to degrees at the box's latitude.
func (b Box) Expand(marginM float64) Box {
	latMargin := marginM / metersPerDegreeLat
	midLat := (b.MinLat + b.MaxLat) / 2
	lonScale := math.Cos(midLat * math.Pi / 180)
	if lonScale < 0.01 {
		lonScale = 0.01
	}
	lonMargin := marginM / (metersPerDegreeLat * lonScale)

	return Box{
		MinLat: b.MinLat - latMargin,
		MaxLat: b.MaxLat + latMargin,
		MinLon: b.MinLon - lonMargin,
		MaxLon: b.MaxLon + lonMargin,
	}
}

// Overlaps reports whether two boxes intersect.
func (b Box) Overlaps(o Box) bool {
	return b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat &&
		b.MinLon <= o.MaxLon && o.MinLon <= b.MaxLon
}

// PathLength calculates the total length of a path (sequence of points) in meters
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(points); i++ {
		totalDist += HaversineDistance(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}

	return totalDist
}

// PointToPolylineDistance returns the minimum distance in meters from a
// point to any segment of a polyline. A single-vertex polyline degrades to
// point-to-point distance.
func PointToPolylineDistance(point Point, polyline []Point) float64 {
	d, _ := ProjectOntoPolyline(point, polyline)
	return d
}

// ProjectOntoPolyline returns the minimum distance in meters from a point
// to the polyline together with the arc position (meters from the polyline
// start) of the closest point on it.
func ProjectOntoPolyline(point Point, polyline []Point) (dist, arc float64) {
	if len(polyline) == 0 {
		return math.Inf(1), 0
	}
	if len(polyline) == 1 {
		return HaversineDistance(point.Lat, point.Lon, polyline[0].Lat, polyline[0].Lon), 0
	}

	minDist := math.Inf(1)
	minArc := 0.0
	walked := 0.0
	for i := 1; i < len(polyline); i++ {
		segLen := HaversineDistance(polyline[i-1].Lat, polyline[i-1].Lon, polyline[i].Lat, polyline[i].Lon)
		d, t := pointToSegmentProjection(point, polyline[i-1], polyline[i])
		if d < minDist {
			minDist = d
			minArc = walked + t*segLen
		}
		walked += segLen
	}
	return minDist, minArc
}

const metersPerDegreeLat = 111320.0

// pointToSegmentProjection calculates the distance from a point to a line
// segment and the clamped projection parameter t in [0,1], using a local
// equirectangular projection around the segment, then haversine to the
// closest projected point. Accurate at the tens-of-meters tolerances
// segment matching uses.
func pointToSegmentProjection(point, segStart, segEnd Point) (float64, float64) {
	lonScale := math.Cos(segStart.Lat * math.Pi / 180)

	// Project to a local flat frame in meters.
	px := (point.Lon - segStart.Lon) * metersPerDegreeLat * lonScale
	py := (point.Lat - segStart.Lat) * metersPerDegreeLat
	ex := (segEnd.Lon - segStart.Lon) * metersPerDegreeLat * lonScale
	ey := (segEnd.Lat - segStart.Lat) * metersPerDegreeLat

	segLenSq := ex*ex + ey*ey
	if segLenSq == 0 {
		return HaversineDistance(point.Lat, point.Lon, segStart.Lat, segStart.Lon), 0
	}

	// Clamp the projection parameter to the segment.
	t := (px*ex + py*ey) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closestLat := segStart.Lat + t*(segEnd.Lat-segStart.Lat)
	closestLon := segStart.Lon + t*(segEnd.Lon-segStart.Lon)
	return HaversineDistance(point.Lat, point.Lon, closestLat, closestLon), t
}

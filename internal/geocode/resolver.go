package geocode

import (
	"context"
	"log"

	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/monitoring"
)

// Location is the enrichment result attached to an activity. Empty fields
// mean the lookup failed or the activity carries no GPS fix; ingestion
// proceeds either way.
type Location struct {
	City     string
	Town     string
	Country  string
	Timezone string
}

// reverseGeocoder is the external collaborator surface; *Client implements
// it, tests fake it.
type reverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error)
}

// TimezoneFinder resolves a coordinate to an IANA timezone name, returning
// "" when the point is not covered. tzf's finder satisfies this.
type TimezoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// Resolver performs best-effort location enrichment for one process. All
// ingestion workers share it, and with it the rate limiter.
type Resolver struct {
	geocoder  reverseGeocoder
	limiter   *RateLimiter
	tz        TimezoneFinder
	defaultTZ string
}

// NewResolver creates a resolver. tz may be nil, in which case every
// activity gets the default timezone.
func NewResolver(geocoder reverseGeocoder, limiter *RateLimiter, tz TimezoneFinder, defaultTZ string) *Resolver {
	return &Resolver{
		geocoder:  geocoder,
		limiter:   limiter,
		tz:        tz,
		defaultTZ: defaultTZ,
	}
}

// Resolve picks the first valid non-(0,0) coordinate of the sequence and
// resolves place and timezone for it. Geocoding failures are logged and
// mapped to empty fields here, at exactly one point; they never abort
// ingestion.
func (r *Resolver) Resolve(ctx context.Context, points []models.TrackPoint) Location {
	loc := Location{Timezone: r.defaultTZ}

	var lat, lon float64
	found := false
	for i := range points {
		if points[i].HasPosition() {
			lat, lon = *points[i].Lat, *points[i].Lon
			found = true
			break
		}
	}
	if !found {
		return loc
	}

	if r.tz != nil {
		if name := r.tz.GetTimezoneName(lon, lat); name != "" {
			loc.Timezone = name
		}
	}

	if r.geocoder == nil {
		return loc
	}
	if err := r.limiter.Wait(ctx); err != nil {
		log.Printf("[geocode] rate limiter wait cancelled: %v", err)
		return loc
	}
	place, err := r.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		log.Printf("[geocode] reverse geocode failed for (%.4f, %.4f): %v", lat, lon, err)
		monitoring.RecordGeocodeFailure()
		return loc
	}

	loc.City = place.City
	loc.Town = place.Town
	loc.Country = place.Country
	return loc
}

package decode

import (
	"strings"

	"github.com/openpace/activity-backend-go/internal/models"
)

// sportAliases maps lowercased format-native sport tokens onto the canonical
// activity types. The mapping is total: unrecognized tokens fall back to the
// generic Workout rather than rejecting the file.
var sportAliases = map[string]string{
	// Cycling
	"cycling":         models.TypeRide,
	"biking":          models.TypeRide,
	"bike":            models.TypeRide,
	"ride":            models.TypeRide,
	"road_biking":     models.TypeRide,
	"mountain_biking": models.TypeRide,
	"virtualride":     models.TypeRide,

	// Running
	"running":    models.TypeRun,
	"run":        models.TypeRun,
	"trail_run":  models.TypeRun,
	"treadmill":  models.TypeRun,
	"virtualrun": models.TypeRun,

	// On foot
	"walking": models.TypeWalk,
	"walk":    models.TypeWalk,
	"hiking":  models.TypeHike,
	"hike":    models.TypeHike,

	// Water
	"swimming":  models.TypeSwim,
	"swim":      models.TypeSwim,
	"open_water": models.TypeSwim,
	"rowing":    models.TypeRowing,
	"kayaking":  models.TypeRowing,

	// Winter
	"cross_country_skiing": models.TypeCrossCountrySkiing,
	"crosscountryskiing":   models.TypeCrossCountrySkiing,
	"nordic_skiing":        models.TypeCrossCountrySkiing,
	"alpine_skiing":        models.TypeAlpineSkiing,
	"alpineskiing":         models.TypeAlpineSkiing,
	"downhill_skiing":      models.TypeAlpineSkiing,
	"skiing":               models.TypeAlpineSkiing,
	"snowboarding":         models.TypeSnowboarding,
	"snowboard":            models.TypeSnowboarding,

	// Skating
	"inline_skating": models.TypeInlineSkating,
	"inlineskating":  models.TypeInlineSkating,
	"skating":        models.TypeInlineSkating,

	// Generic
	"other":            models.TypeWorkout,
	"generic":          models.TypeWorkout,
	"fitness_equipment": models.TypeWorkout,
	"training":         models.TypeWorkout,
	"workout":          models.TypeWorkout,
}

// canonicalSport maps a format-native sport token to a canonical activity
// type. Never fails; unknown and empty tokens become Workout.
func canonicalSport(token string) string {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if t, ok := sportAliases[key]; ok {
		return t
	}
	return models.TypeWorkout
}

package geocode

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

// NewTimezoneFinder builds the offline point-in-polygon timezone index.
// Expensive to construct; build once at startup and share.
func NewTimezoneFinder() (TimezoneFinder, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to build timezone index: %w", err)
	}
	return finder, nil
}

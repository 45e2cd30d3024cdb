package resolver

import "github.com/mmynk/volunteermap/internal/models"

// minDelta keeps a region around a single point from collapsing to zero size.
const minDelta = 0.05

// Region is a map viewport: a center plus the span shown in each direction.
type Region struct {
	Latitude       float64
	Longitude      float64
	LatitudeDelta  float64
	LongitudeDelta float64
}

// DefaultRegion is shown when there is nothing to fit and no device location.
var DefaultRegion = Region{
	Latitude:       51.04112,
	Longitude:      -114.069325,
	LatitudeDelta:  minDelta,
	LongitudeDelta: minDelta,
}

// RegionAround centers a default-sized region on a position, e.g. the device location.
func RegionAround(p models.Position) Region {
	return Region{
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		LatitudeDelta:  minDelta,
		LongitudeDelta: minDelta,
	}
}

// FitRegion returns the smallest region containing every position, grown by
// padding (a fraction of the span added on each side).
// With no positions it returns DefaultRegion.
func FitRegion(positions []models.Position, padding float64) Region {
	if len(positions) == 0 {
		return DefaultRegion
	}

	minLat, maxLat := positions[0].Latitude, positions[0].Latitude
	minLng, maxLng := positions[0].Longitude, positions[0].Longitude
	for _, p := range positions[1:] {
		minLat = min(minLat, p.Latitude)
		maxLat = max(maxLat, p.Latitude)
		minLng = min(minLng, p.Longitude)
		maxLng = max(maxLng, p.Longitude)
	}

	return Region{
		Latitude:       (minLat + maxLat) / 2,
		Longitude:      (minLng + maxLng) / 2,
		LatitudeDelta:  max((maxLat-minLat)*(1+2*padding), minDelta),
		LongitudeDelta: max((maxLng-minLng)*(1+2*padding), minDelta),
	}
}

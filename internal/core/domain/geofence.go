package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Geofence is a circular region used to tag where activities were reported.
type Geofence struct {
	ID           uuid.UUID
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	CreatedAt    time.Time
}

const earthRadiusMeters = 6371000

// Contains reports whether the given coordinate falls inside the fence,
// using the haversine great-circle distance.
func (g *Geofence) Contains(lat, lng float64) bool {
	return g.DistanceMeters(lat, lng) <= g.RadiusMeters
}

// DistanceMeters returns the distance from the fence center to the coordinate.
func (g *Geofence) DistanceMeters(lat, lng float64) float64 {
	lat1 := g.Latitude * math.Pi / 180
	lat2 := lat * math.Pi / 180
	dLat := (lat - g.Latitude) * math.Pi / 180
	dLng := (lng - g.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

package domain

import "testing"

func TestGeofenceContains(t *testing.T) {
	// ~500m radius around Amsterdam Centraal
	fence := &Geofence{
		Name:         "depot",
		Latitude:     52.3791,
		Longitude:    4.9003,
		RadiusMeters: 500,
	}

	tests := []struct {
		name   string
		lat    float64
		lng    float64
		inside bool
	}{
		{"center", 52.3791, 4.9003, true},
		{"inside, ~200m away", 52.3809, 4.9003, true},
		{"outside, ~1km away", 52.3700, 4.9003, false},
		{"other city", 51.9244, 4.4777, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fence.Contains(tt.lat, tt.lng); got != tt.inside {
				t.Errorf("Contains(%v, %v) = %t, want %t (distance %.0fm)",
					tt.lat, tt.lng, got, tt.inside, fence.DistanceMeters(tt.lat, tt.lng))
			}
		})
	}
}

func TestGeofenceDistanceMeters(t *testing.T) {
	fence := &Geofence{Latitude: 52.3791, Longitude: 4.9003}

	// One degree of latitude is ~111km
	d := fence.DistanceMeters(53.3791, 4.9003)
	if d < 110000 || d > 112000 {
		t.Errorf("DistanceMeters one degree north = %.0f, want ~111km", d)
	}
}

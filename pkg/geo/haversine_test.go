package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_SamePoint(t *testing.T) {
	d := HaversineMeters(-6.2088, 106.8456, -6.2088, 106.8456)
	assert.Equal(t, 0.0, d)
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Jakarta (Monas) to Bandung (Gedung Sate): roughly 117 km.
	d := HaversineMeters(-6.1754, 106.8272, -6.9025, 107.6186)
	assert.InDelta(t, 117000, d, 3000)
}

func TestHaversineMeters_ShortDistance(t *testing.T) {
	// Two points ~111 m apart along a meridian (0.001 degrees of latitude).
	d := HaversineMeters(-6.2000, 106.8000, -6.2010, 106.8000)
	assert.InDelta(t, 111.2, d, 1.0)
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := HaversineMeters(-6.2, 106.8, -6.3, 106.9)
	b := HaversineMeters(-6.3, 106.9, -6.2, 106.8)
	assert.InDelta(t, a, b, 1e-9)
}

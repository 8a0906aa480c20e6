package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceProperties(t *testing.T) {
	points := []Coordinate{
		{0, 0},
		{0, 1},
		{51.5074, -0.1278},
		{28.6139, 77.2090},
		{-33.8688, 151.2093},
		{89.9, 179.9},
		{-89.9, -179.9},
		{-89.26, -180},
		{89.26, 0},
	}

	for _, a := range points {
		assert.InDelta(t, 0, Distance(a, a), 1e-9, "distance(%v, %v)", a, a)
		for _, b := range points {
			d := Distance(a, b)
			assert.False(t, math.IsNaN(d), "distance(%v, %v)", a, b)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.InDelta(t, d, Distance(b, a), 1e-9)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of longitude on the equator.
	assert.InDelta(t, 111.19, Distance(Coordinate{0, 0}, Coordinate{0, 1}), 0.01)

	// London to New Delhi.
	d := Distance(Coordinate{51.5074, -0.1278}, Coordinate{28.6139, 77.2090})
	assert.InDelta(t, 6711.2, d, 1)

	// Antipodes are half the circumference apart.
	assert.InDelta(t, math.Pi*EarthRadiusKm, Distance(Coordinate{0, 0}, Coordinate{0, 180}), 1e-6)
}

func TestDistanceNearAntipodes(t *testing.T) {
	limit := math.Pi*EarthRadiusKm + 1e-6
	for lat := -90.0; lat <= 90; lat += 0.37 {
		for lng := -180.0; lng <= 180; lng += 7.3 {
			a := Coordinate{lat, lng}
			other := lng + 180
			if other > 180 {
				other -= 360
			}
			b := Coordinate{-lat, other}

			d := Distance(a, b)
			if !assert.False(t, math.IsNaN(d), "distance(%v, %v)", a, b) {
				return
			}
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, limit)
		}
	}
}

func TestCoordinateHelpers(t *testing.T) {
	assert.Equal(t, "12.345679, -98.765432", Coordinate{12.3456789, -98.7654321}.String())
	assert.True(t, Coordinate{90, -180}.Valid())
	assert.False(t, Coordinate{90.5, 0}.Valid())
	assert.False(t, Coordinate{0, 181}.Valid())

	lat, lng := 1.5, 2.5
	c, ok := FromPointers(&lat, &lng)
	assert.True(t, ok)
	assert.Equal(t, Coordinate{1.5, 2.5}, c)

	_, ok = FromPointers(&lat, nil)
	assert.False(t, ok)
}

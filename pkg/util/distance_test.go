package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	// KLCC to Batu Caves, roughly 9.5 km.
	d := CalculateDistance(3.1579, 101.7123, 3.2379, 101.6831)
	assert.InDelta(t, 9.5, d, 0.5)

	assert.Zero(t, CalculateDistance(3.1579, 101.7123, 3.1579, 101.7123))
}

func TestRoundDistance(t *testing.T) {
	assert.Equal(t, 9.5, RoundDistance(9.4621))
	assert.Equal(t, 0.1, RoundDistance(0.05))
	assert.Equal(t, 0.0, RoundDistance(0.04))
}

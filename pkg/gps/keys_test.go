package gps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindKey(t *testing.T) {
	tags := map[string]string{
		"GPS GPSLatitude": "48, 51, 179/100",
		"Image Make":      "Canon",
	}

	key, ok := FindKey(tags, "GPS GPSLatitude", "GPSLatitude")
	assert.True(t, ok)
	assert.Equal(t, "GPS GPSLatitude", key)

	// Candidate spelling differs in case and spacing.
	key, ok = FindKey(tags, "gpsgpslatitude")
	assert.True(t, ok)
	assert.Equal(t, "GPS GPSLatitude", key)

	key, ok = FindKey(tags, "IMAGE   MAKE")
	assert.True(t, ok)
	assert.Equal(t, "Image Make", key)

	_, ok = FindKey(tags, "GPS GPSAltitude", "GPSAltitude")
	assert.False(t, ok)
}

func TestFindKey_CandidateOrder(t *testing.T) {
	tags := map[string]any{
		"GPSLatitude": "48, 51, 30",
	}

	// First candidate missing, second present.
	key, ok := FindKey(tags, "GPS GPSLatitude", "GPSLatitude")
	assert.True(t, ok)
	assert.Equal(t, "GPSLatitude", key)
}

func TestFindKey_Empty(t *testing.T) {
	_, ok := FindKey(map[string]string(nil), "GPSLatitude")
	assert.False(t, ok)

	_, ok = FindKey(map[string]any{}, "GPSLatitude")
	assert.False(t, ok)
}

func TestFindKey_CollisionIsDeterministic(t *testing.T) {
	tags := map[string]string{
		"GPS GPSLatitude": "a",
		"gpsgpslatitude":  "b",
	}

	for i := 0; i < 10; i++ {
		key, ok := FindKey(tags, "GPSLatitude", "GPS GPSLatitude")
		assert.True(t, ok)
		assert.Equal(t, "GPS GPSLatitude", key)
	}
}

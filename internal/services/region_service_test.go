// internal/services/region_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegionByCoordinates(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	region := seedRegion(t, db)

	lat, lng := 47.61, -122.33
	resolved, err := svc.ResolveRegion(&lat, &lng, "")
	require.NoError(t, err)
	assert.Equal(t, region.ID, resolved.ID)
}

func TestResolveRegionFallsBackToZip(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	region := seedRegion(t, db)

	// Coordinates outside every bbox, but a Seattle zip.
	lat, lng := 40.71, -74.00
	resolved, err := svc.ResolveRegion(&lat, &lng, "98102")
	require.NoError(t, err)
	assert.Equal(t, region.ID, resolved.ID)

	// Zip alone works too.
	resolved, err = svc.ResolveRegion(nil, nil, "98102")
	require.NoError(t, err)
	assert.Equal(t, region.ID, resolved.ID)

	// Surrounding whitespace is stripped before the prefix lookup.
	resolved, err = svc.ResolveRegion(nil, nil, "  98102  ")
	require.NoError(t, err)
	assert.Equal(t, region.ID, resolved.ID)
}

func TestResolveRegionShortZipAfterTrim(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	seedRegion(t, db)

	// Padded input whose trimmed form is under 3 digits must not be
	// sliced; it simply fails to resolve.
	for _, zip := range []string{" 98", "98 ", "  9  ", "   ", ""} {
		_, err := svc.ResolveRegion(nil, nil, zip)
		assert.ErrorIs(t, err, ErrRegionNotFound)
	}
}

func TestResolveRegionNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	seedRegion(t, db)

	lat, lng := 40.71, -74.00
	_, err := svc.ResolveRegion(&lat, &lng, "10001")
	assert.ErrorIs(t, err, ErrRegionNotFound)

	_, err = svc.ResolveRegion(nil, nil, "")
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

func TestGetRegionByCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	region := seedRegion(t, db)

	found, err := svc.GetRegionByCode("seattle-metro")
	require.NoError(t, err)
	assert.Equal(t, region.ID, found.ID)

	_, err = svc.GetRegionByCode("nowhere")
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

// internal/services/route_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensupply/greensupply-backend/internal/models"
)

func TestHaversineMiles(t *testing.T) {
	// Seattle to Portland is roughly 145 miles great-circle.
	d := haversineMiles(47.6062, -122.3321, 45.5152, -122.6784)
	assert.InDelta(t, 145.0, d, 5.0)

	assert.Zero(t, haversineMiles(47.61, -122.33, 47.61, -122.33))
}

func TestNearestNeighborRouteOrdersByProximity(t *testing.T) {
	origin := [2]float64{47.58, -122.32} // supplier in SoDo
	stops := [][2]float64{
		{47.70, -122.33}, // far north
		{47.61, -122.33}, // close
		{47.66, -122.31}, // middle
	}

	route := nearestNeighborRoute(origin, stops)
	require.Len(t, route, 4)
	assert.Equal(t, origin, route[0])
	assert.Equal(t, stops[1], route[1])
	assert.Equal(t, stops[2], route[2])
	assert.Equal(t, stops[0], route[3])
}

func TestPlanDeliveryRoute(t *testing.T) {
	svc := NewRouteService(newTestConfig())

	stops := [][2]float64{
		{47.61, -122.33},
		{47.66, -122.31},
	}
	plan := svc.PlanDeliveryRoute(47.58, -122.32, stops)

	// Supplier origin plus two stops.
	require.Len(t, plan.Points, 3)
	assert.Greater(t, plan.TotalMiles, 0.0)

	// Points are serialized [lng, lat] for the map.
	assert.InDelta(t, -122.32, plan.Points[0][0], 1e-9)
	assert.InDelta(t, 47.58, plan.Points[0][1], 1e-9)

	// Drive time at 22 mph plus a 4 minute buffer per intermediate stop.
	expectedMinutes := plan.TotalMiles/22.0*60.0 + 4.0
	assert.InDelta(t, expectedMinutes, plan.TotalMinutes, 0.25)
}

func TestPlanDeliveryRouteNoStops(t *testing.T) {
	svc := NewRouteService(newTestConfig())

	plan := svc.PlanDeliveryRoute(47.58, -122.32, nil)
	require.Len(t, plan.Points, 1)
	assert.Zero(t, plan.TotalMiles)
	assert.Zero(t, plan.TotalMinutes)
}

func TestNextBusinessDayStart(t *testing.T) {
	svc := NewRouteService(newTestConfig())
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// A Wednesday confirmation ships Thursday at 08:00 local.
	wed := time.Date(2025, 6, 11, 15, 30, 0, 0, la)
	start := svc.NextBusinessDayStart(wed).In(la)
	assert.Equal(t, time.Thursday, start.Weekday())
	assert.Equal(t, 8, start.Hour())
	assert.Equal(t, 12, start.Day())

	// A Friday confirmation skips the weekend.
	fri := time.Date(2025, 6, 13, 9, 0, 0, 0, la)
	start = svc.NextBusinessDayStart(fri).In(la)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 8, start.Hour())
	assert.Equal(t, 16, start.Day())

	// Saturday also lands on Monday.
	sat := time.Date(2025, 6, 14, 9, 0, 0, 0, la)
	start = svc.NextBusinessDayStart(sat).In(la)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 16, start.Day())
}

func testConfirmedOrder(start, end time.Time) *models.SupplierConfirmedOrder {
	return &models.SupplierConfirmedOrder{
		ScheduledStartAt: &start,
		EstimatedEndAt:   &end,
		RoutePoints: models.RoutePoints{
			{-122.32, 47.58},
			{-122.33, 47.61},
			{-122.31, 47.66},
		},
	}
}

func TestProjectPositionInactiveWithoutRoute(t *testing.T) {
	svc := NewRouteService(newTestConfig())
	now := time.Now().UTC()

	assert.False(t, svc.ProjectPosition(nil, now).Active)

	// A single point is not a drawable route.
	start, end := now.Add(-time.Hour), now.Add(time.Hour)
	order := testConfirmedOrder(start, end)
	order.RoutePoints = order.RoutePoints[:1]
	assert.False(t, svc.ProjectPosition(order, now).Active)

	// Missing schedule means no projection either.
	order = testConfirmedOrder(start, end)
	order.ScheduledStartAt = nil
	assert.False(t, svc.ProjectPosition(order, now).Active)
}

func TestProjectPositionInterpolates(t *testing.T) {
	svc := NewRouteService(newTestConfig())
	start := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	order := testConfirmedOrder(start, end)

	// Before departure the truck sits at the supplier.
	pos := svc.ProjectPosition(order, start.Add(-30*time.Minute))
	assert.True(t, pos.Active)
	assert.Zero(t, pos.Progress)
	assert.Equal(t, 0, pos.Index)
	assert.Equal(t, order.RoutePoints[0], pos.Marker)
	assert.Len(t, pos.Remaining, 3)

	// Halfway through the window, halfway along the polyline.
	pos = svc.ProjectPosition(order, start.Add(time.Hour))
	assert.InDelta(t, 0.5, pos.Progress, 1e-9)
	assert.Equal(t, 1, pos.Index)
	assert.Equal(t, order.RoutePoints[1], pos.Marker)
	assert.Len(t, pos.Remaining, 2)

	// After the window the run is parked at the last stop.
	pos = svc.ProjectPosition(order, end.Add(time.Hour))
	assert.InDelta(t, 1.0, pos.Progress, 1e-9)
	assert.Equal(t, 2, pos.Index)
	assert.Equal(t, order.RoutePoints[2], pos.Marker)
	assert.Len(t, pos.Remaining, 1)
}

func TestProjectPositionDegenerateWindow(t *testing.T) {
	svc := NewRouteService(newTestConfig())
	start := time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)
	order := testConfirmedOrder(start, start) // end == start

	pos := svc.ProjectPosition(order, start.Add(time.Hour))
	assert.True(t, pos.Active)
	assert.Zero(t, pos.Progress)
	assert.Equal(t, 0, pos.Index)
}

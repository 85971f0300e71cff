// internal/services/route_service.go
package services

import (
	"math"
	"time"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

// RouteService plans the consolidated delivery run for a confirmed group
// and projects the truck position onto the route for the map UI. Planning
// happens once, at confirmation; projection is a pure function of
// wall-clock time that the UI re-invokes on a ~30s poll.
type RouteService struct {
	config *config.Config
}

type DeliveryPlan struct {
	Points       models.RoutePoints `json:"points"`
	TotalMiles   float64            `json:"total_miles"`
	TotalMinutes float64            `json:"total_minutes"`
}

// RoutePosition is the projected truck position at a point in time.
type RoutePosition struct {
	Active    bool               `json:"active"`
	Progress  float64            `json:"progress"`
	Index     int                `json:"index"`
	Marker    [2]float64         `json:"marker"`
	Remaining models.RoutePoints `json:"remaining"`
}

func NewRouteService(config *config.Config) *RouteService {
	return &RouteService{config: config}
}

// PlanDeliveryRoute orders the stops by nearest neighbor from the supplier
// and estimates distance and duration for the run.
func (s *RouteService) PlanDeliveryRoute(supplierLat, supplierLng float64, stops [][2]float64) DeliveryPlan {
	ordered := nearestNeighborRoute([2]float64{supplierLat, supplierLng}, stops)

	totalMiles := 0.0
	for i := 1; i < len(ordered); i++ {
		totalMiles += haversineMiles(ordered[i-1][0], ordered[i-1][1], ordered[i][0], ordered[i][1])
	}

	baseMinutes := 0.0
	if s.config.Delivery.AvgSpeedMPH > 0 {
		baseMinutes = totalMiles / s.config.Delivery.AvgSpeedMPH * 60.0
	}
	stopBuffer := float64(maxInt(0, len(stops)-1)) * s.config.Delivery.StopBufferMinutes

	// Stored points are [lng, lat] to match the map's GeoJSON axis order.
	points := make(models.RoutePoints, 0, len(ordered))
	for _, p := range ordered {
		points = append(points, [2]float64{p[1], p[0]})
	}

	return DeliveryPlan{
		Points:       points,
		TotalMiles:   round2(totalMiles),
		TotalMinutes: round2(baseMinutes + stopBuffer),
	}
}

// NextBusinessDayStart returns the next weekday at the configured local
// start hour, in UTC. Deliveries never leave on weekends.
func (s *RouteService) NextBusinessDayStart(reference time.Time) time.Time {
	loc, err := time.LoadLocation(s.config.Delivery.Timezone)
	if err != nil {
		loc = time.UTC
	}

	local := reference.In(loc)
	next := local.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	start := time.Date(next.Year(), next.Month(), next.Day(), s.config.Delivery.StartHourLocal, 0, 0, 0, loc)
	return start.UTC()
}

// ProjectPosition interpolates the delivery position at time now.
//
// t is the clamped fraction of the scheduled window that has elapsed; the
// marker sits at floor(t * (len-1)) and the remaining polyline is the
// suffix from that index, so the drawn line shrinks as the run progresses.
func (s *RouteService) ProjectPosition(order *models.SupplierConfirmedOrder, now time.Time) RoutePosition {
	if order == nil || len(order.RoutePoints) < 2 {
		// With fewer than 2 points there is no route to draw.
		return RoutePosition{}
	}
	if order.ScheduledStartAt == nil || order.EstimatedEndAt == nil {
		return RoutePosition{}
	}

	start := *order.ScheduledStartAt
	end := *order.EstimatedEndAt

	t := 0.0
	if end.After(start) {
		t = now.Sub(start).Seconds() / end.Sub(start).Seconds()
	}
	// A zero or negative window means the run has not started; never
	// divide by a non-positive duration.
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	index := int(math.Floor(t * float64(len(order.RoutePoints)-1)))
	if index > len(order.RoutePoints)-1 {
		index = len(order.RoutePoints) - 1
	}

	return RoutePosition{
		Active:    true,
		Progress:  t,
		Index:     index,
		Marker:    order.RoutePoints[index],
		Remaining: order.RoutePoints[index:],
	}
}

// haversineMiles is the great-circle distance between two (lat, lng)
// points in miles.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusMiles = 3958.8

	lat1r, lng1r := lat1*math.Pi/180, lng1*math.Pi/180
	lat2r, lng2r := lat2*math.Pi/180, lng2*math.Pi/180
	dlat := lat2r - lat1r
	dlng := lng2r - lng1r

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}

// nearestNeighborRoute greedily orders stops from the supplier outward.
// Points are (lat, lng).
func nearestNeighborRoute(origin [2]float64, stops [][2]float64) [][2]float64 {
	remaining := make([][2]float64, len(stops))
	copy(remaining, stops)

	route := make([][2]float64, 0, len(stops)+1)
	route = append(route, origin)
	current := origin

	for len(remaining) > 0 {
		best := 0
		bestDist := haversineMiles(current[0], current[1], remaining[0][0], remaining[0][1])
		for i := 1; i < len(remaining); i++ {
			d := haversineMiles(current[0], current[1], remaining[i][0], remaining[i][1])
			if d < bestDist {
				best = i
				bestDist = d
			}
		}
		current = remaining[best]
		route = append(route, current)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return route
}

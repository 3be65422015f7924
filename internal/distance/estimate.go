// Package distance resolves travel distances between an origin and a set of
// destinations, preferring the external routing capability and falling back
// to a great-circle estimate whenever it cannot answer.
package distance

import (
	"math"

	"github.com/umahmood/haversine"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// Half the earth's circumference in km, the largest great-circle distance
const maxGreatCircleKm = math.Pi * 6371

// Estimate returns the great-circle distance in kilometres between two points
func Estimate(origin, destination models.Coordinate) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: origin.Lat, Lon: origin.Lng},
		haversine.Coord{Lat: destination.Lat, Lon: destination.Lng},
	)
	// rounding can push the haversine term past 1 for antipodal points
	if math.IsNaN(km) {
		return maxGreatCircleKm
	}
	return km
}

package utils

import "github.com/umahmood/haversine"

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees. Every caller that needs a distance goes
// through here.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return km
}

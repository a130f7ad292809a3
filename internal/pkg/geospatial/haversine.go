package geospatial

import "math"

// EarthRadiusMeters is the mean earth radius used for all great-circle math.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Destination returns the point reached by travelling distanceMeters from
// (lat, lon) along the given initial bearing in degrees.
func Destination(lat, lon, bearingDeg, distanceMeters float64) (destLat, destLon float64) {
	delta := distanceMeters / EarthRadiusMeters
	theta := toRad(bearingDeg)
	phi1 := toRad(lat)
	lambda1 := toRad(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	// normalize longitude to [-180, 180)
	destLon = math.Mod(toDeg(lambda2)+540, 360) - 180
	return toDeg(phi2), destLon
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := toDeg(radiusMeters / EarthRadiusMeters)
	lonDelta := latDelta / math.Cos(toRad(lat))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

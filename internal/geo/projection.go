// Package geo provides the spherical-earth geometry used to place ruptures:
// a rotated azimuthal orthographic projection and trace measurements.
package geo

import "math"

// ProjectionRadius is the earth radius (km) of the orthographic projection.
const ProjectionRadius = 6367.0

// XYToLL converts local coordinates (km) to latitude/longitude (degrees).
// The local frame is centred on (lat0, lon0); x points along azimuth and
// y along azimuth+90.
func XYToLL(x, y, lat0, lon0, azimuth float64) (lat, lon float64) {
	east, north := rotate(x, y, azimuth)

	rho := math.Hypot(east, north)
	if rho == 0 {
		return lat0, lon0
	}
	phi0 := radians(lat0)
	c := math.Asin(math.Min(rho/ProjectionRadius, 1))
	sinC, cosC := math.Sincos(c)
	sinPhi0, cosPhi0 := math.Sincos(phi0)

	phi := math.Asin(cosC*sinPhi0 + north*sinC*cosPhi0/rho)
	lambda := math.Atan2(east*sinC, rho*cosC*cosPhi0-north*sinPhi0*sinC)
	return degrees(phi), lon0 + degrees(lambda)
}

// LLToXY converts latitude/longitude to local coordinates; it is the inverse
// of XYToLL on the visible hemisphere.
func LLToXY(lat, lon, lat0, lon0, azimuth float64) (x, y float64) {
	phi, phi0 := radians(lat), radians(lat0)
	dl := radians(lon - lon0)

	east := ProjectionRadius * math.Cos(phi) * math.Sin(dl)
	north := ProjectionRadius * (math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(dl))
	// the rotation is its own inverse
	return rotate(east, north, azimuth)
}

// rotate maps (x along azimuth, y along azimuth+90) to (east, north).
func rotate(x, y, azimuth float64) (float64, float64) {
	s, c := math.Sincos(radians(azimuth))
	return x*s + y*c, x*c - y*s
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

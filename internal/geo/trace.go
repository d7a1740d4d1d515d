package geo

import "math"

// EarthRadius is the mean earth radius (km) used for great-circle distances.
const EarthRadius = 6371.0

// DistanceKm is the haversine distance between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(math.Abs(lat2 - lat1))
	dLon := radians(math.Abs(lon2 - lon1))
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// AzimuthOfTrace returns the azimuth at the start point in [0, 360).
func AzimuthOfTrace(startLat, startLon, endLat, endLon float64) float64 {
	dx := endLon - startLon
	dy := endLat - startLat
	az := degrees(math.Atan2(dx*math.Cos(radians(startLat)), dy))
	if az < 0 {
		az += 360
	}
	return az
}

// FaultWidth is the down-dip width of a fault between two depths.
// The caller must reject a zero dip.
func FaultWidth(depthTop, depthBottom, dip float64) float64 {
	return (depthBottom - depthTop) / math.Sin(radians(dip))
}

// FaultArea is trace length times down-dip width.
func FaultArea(lat1, lon1, lat2, lon2, depthTop, depthBottom, dip float64) float64 {
	return TraceLengthKm(lat1, lon1, lat2, lon2) * FaultWidth(depthTop, depthBottom, dip)
}

// TraceLengthKm is the along-strike length of a trace in the projection
// frame centred on its start. Ruptures placed within it never pass the end.
func TraceLengthKm(startLat, startLon, endLat, endLon float64) float64 {
	az := AzimuthOfTrace(startLat, startLon, endLat, endLon)
	x, _ := LLToXY(endLat, endLon, startLat, startLon, az)
	return x
}

// LowerSlabTrace returns the surface trace of a lower slab segment dipping at
// lowerDip whose top edge meets the bottom edge, at depthBottom, of an upper
// segment dipping at topDip from the given trace.
func LowerSlabTrace(topDip, depthBottom, startLat, startLon, endLat, endLon, lowerDip float64) (sLat, sLon, eLat, eLon float64) {
	az := AzimuthOfTrace(startLat, startLon, endLat, endLon)
	y1 := depthBottom / math.Tan(radians(topDip))
	y2 := depthBottom / math.Tan(radians(lowerDip))
	sLat, sLon = XYToLL(0, y1-y2, startLat, startLon, az)
	eLat, eLon = XYToLL(0, y1-y2, endLat, endLon, az)
	return sLat, sLon, eLat, eLon
}

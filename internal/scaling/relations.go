// Package scaling holds the empirical relations between magnitude and rupture
// dimensions used when synthesising events.
//
// All functions are pure. Lengths and widths are in km, areas in km², angles
// in degrees. An unbounded width ceiling is expressed as math.Inf(1).
package scaling

import "math"

// coefficients of Wells & Coppersmith (1994):
// area = 10^(areaA + areaB*Mw), width = 10^(widthA + widthB*Mw).
type coefficients struct {
	areaA, areaB   float64
	widthA, widthB float64
}

// The switch below is exhaustive over FaultType; Unspecified doubles as the
// fallback for values outside the enumeration.
func wellsCoppersmithCoefficients(ft FaultType) coefficients {
	switch ft {
	case Normal:
		return coefficients{-2.87, 0.82, -1.14, 0.35}
	case Reverse:
		return coefficients{-3.99, 0.98, -1.61, 0.41}
	case StrikeSlip:
		return coefficients{-3.42, 0.90, -0.76, 0.27}
	default:
		return coefficients{-3.497, 0.91, -1.01, 0.32}
	}
}

// WellsCoppersmith94 returns rupture area and width for a fault type and
// magnitude. The width is limited by maxWidth.
func WellsCoppersmith94(ft FaultType, mw, maxWidth float64) (area, width float64) {
	c := wellsCoppersmithCoefficients(ft)
	area = math.Pow(10, c.areaA+c.areaB*mw)
	width = math.Min(math.Pow(10, c.widthA+c.widthB*mw), maxWidth)
	return area, width
}

// ModifiedWellsCoppersmith94Area is the magnitude-only area relation.
func ModifiedWellsCoppersmith94Area(mw float64) float64 {
	return math.Pow(10, mw-4.02)
}

// ModifiedWellsCoppersmith94Width narrows square ruptures above Mw 5.5 as the
// dip steepens, then applies the fault-width ceiling.
func ModifiedWellsCoppersmith94Width(dip, mw, area, faultWidth float64) float64 {
	f := 1.0
	if mw > 5.5 {
		f = 1 / math.Sqrt(math.Sqrt(1+2*(mw-5.5)*math.Sin(radians(dip))))
	}
	return math.Min(f*math.Sqrt(area), faultWidth)
}

// defaultDepthFaultWidth is used by Depth when no fault width is known.
const defaultDepthFaultWidth = 15.0

// Depth returns the rupture centroid depth for an event nucleating below
// depthTop in a seismogenic layer of the given dip.
func Depth(depthTop, dip, mw, faultWidth float64) float64 {
	if !(faultWidth > 0) || math.IsInf(faultWidth, 1) {
		faultWidth = defaultDepthFaultWidth
	}
	s := math.Sin(radians(dip))

	f2 := 1 + (mw-4.0)/2
	f2 = math.Max(1, math.Min(2, f2))

	depth1 := depthTop + f2/3*faultWidth*s
	depth2 := depthTop + faultWidth*s - 0.5*mw*s
	return math.Min(depth1, depth2)
}

// DepthToTop returns the depth to the top of a rupture from its centroid depth.
func DepthToTop(depth, width, dip float64) float64 {
	return depth - (width/2)*math.Sin(radians(dip))
}

// MaxWidthInSlab bounds the rupture width inside a slab of thickness
// slabWidth for a rupture plane at outOfDip degrees to the slab. Angles close
// to parallel with the slab fall back to maxWidth.
func MaxWidthInSlab(outOfDip, slabWidth, maxWidth float64) float64 {
	theta := outOfDip
	if theta >= 180 {
		theta -= 180
	}
	switch {
	case theta <= 1:
		return maxWidth
	case theta < 90:
		return slabWidth / math.Sin(radians(theta))
	case theta == 90:
		return slabWidth
	case theta < 179:
		return slabWidth / math.Sin(radians(180-theta))
	default:
		return maxWidth
	}
}

// JohnstonML converts moment magnitude to local magnitude (Johnston, coefficients 01).
func JohnstonML(mw float64) float64 {
	const c1, c2, c3 = 0.473, 0.145, 3.45
	return (c1 + math.Sqrt(c1*c1-4*c2*(c3-mw))) / (2 * c2)
}

// JohnstonMw converts local magnitude to moment magnitude (Johnston 1989).
func JohnstonMw(ml float64) float64 {
	return 3.45 - 0.473*ml + 0.145*ml*ml
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

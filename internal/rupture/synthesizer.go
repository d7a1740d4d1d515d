// Package rupture derives rupture dimensions and surface geometry from a
// centroid, orientation and magnitude, vectorised over any number of ruptures.
package rupture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dunkgray/eqrm/internal/geo"
	"github.com/dunkgray/eqrm/internal/scaling"
)

// Input describes n ruptures. Every slice is either empty (optional inputs
// only), of length 1 (broadcast) or of length n.
type Input struct {
	CentroidLat []float64
	CentroidLon []float64
	Azimuth     []float64
	Dip         []float64
	Mw          []float64

	// Depth is the centroid depth. When empty it is derived from DepthTop.
	Depth    []float64
	DepthTop []float64

	// FaultWidth is the width ceiling; empty means unbounded.
	FaultWidth []float64

	// Width and Length, when given, are used verbatim.
	Width  []float64
	Length []float64

	FaultType scaling.FaultType
	Rule      string
}

// Output holds the derived attributes, each of length N.
type Output struct {
	N             int
	Depth         []float64
	DepthToTop    []float64
	Area          []float64
	Width         []float64
	Length        []float64
	FaultWidth    []float64
	CentroidX     []float64
	CentroidY     []float64
	TraceStartLat []float64
	TraceStartLon []float64
	TraceEndLat   []float64
	TraceEndLon   []float64
}

// column broadcasts a length-1 slice.
type column []float64

func (c column) at(i int) float64 {
	if len(c) == 1 {
		return c[0]
	}
	return c[i]
}

// Size returns the common length of the inputs, or ErrShape.
func (in *Input) Size() (int, error) {
	named := []struct {
		name string
		v    []float64
	}{
		{"centroid_lat", in.CentroidLat}, {"centroid_lon", in.CentroidLon},
		{"azimuth", in.Azimuth}, {"dip", in.Dip}, {"Mw", in.Mw},
		{"depth", in.Depth}, {"depth_top", in.DepthTop}, {"fault_width", in.FaultWidth},
		{"width", in.Width}, {"length", in.Length},
	}
	n := 0
	for _, c := range named {
		if len(c.v) > n {
			n = len(c.v)
		}
	}
	for _, c := range named {
		if l := len(c.v); l > 1 && l != n {
			return 0, fmt.Errorf("%w: %s has %d values, expected 1 or %d", ErrShape, c.name, l, n)
		}
	}
	return n, nil
}

func (in *Input) validate() error {
	required := []struct {
		name string
		v    []float64
	}{
		{"centroid_lat", in.CentroidLat}, {"centroid_lon", in.CentroidLon},
		{"azimuth", in.Azimuth}, {"dip", in.Dip}, {"Mw", in.Mw},
	}
	for _, r := range required {
		if len(r.v) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingInput, r.name)
		}
	}
	if len(in.Depth) == 0 && len(in.DepthTop) == 0 {
		return fmt.Errorf("%w: one of depth or depth_top", ErrMissingInput)
	}
	return nil
}

// Synthesize computes the derived geometry of every rupture in in.
func Synthesize(in Input) (*Output, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n, err := in.Size()
	if err != nil {
		return nil, err
	}
	rule, err := scaling.Lookup(in.Rule)
	if err != nil {
		return nil, err
	}

	out := newOutput(n)
	lat, lon := column(in.CentroidLat), column(in.CentroidLon)
	az, dip, mw := column(in.Azimuth), column(in.Dip), column(in.Mw)

	for i := 0; i < n; i++ {
		d := dip.at(i)
		if !(d > 0 && d < 90) {
			return nil, fmt.Errorf("%w: rupture %d has dip %v", ErrDegenerateDip, i, d)
		}

		ceiling := scaling.Unbounded
		if len(in.FaultWidth) > 0 {
			ceiling = column(in.FaultWidth).at(i)
		}
		out.FaultWidth[i] = ceiling

		area, width := rule(in.FaultType, mw.at(i), d, ceiling)
		if len(in.Width) > 0 {
			width = column(in.Width).at(i)
		}
		length := area / width
		if len(in.Length) > 0 {
			length = column(in.Length).at(i)
		}

		var depth float64
		if len(in.Depth) > 0 {
			depth = column(in.Depth).at(i)
		} else {
			depth = scaling.Depth(column(in.DepthTop).at(i), d, mw.at(i), ceiling)
		}

		cx := length / 2
		cy := depth / math.Tan(d*math.Pi/180)
		startLat, startLon := geo.XYToLL(-cx, -cy, lat.at(i), lon.at(i), az.at(i))
		endLat, endLon := geo.XYToLL(length-cx, -cy, lat.at(i), lon.at(i), az.at(i))

		out.Area[i] = area
		out.Width[i] = width
		out.Length[i] = length
		out.Depth[i] = depth
		out.DepthToTop[i] = scaling.DepthToTop(depth, width, d)
		out.CentroidX[i] = cx
		out.CentroidY[i] = cy
		out.TraceStartLat[i], out.TraceStartLon[i] = startLat, startLon
		out.TraceEndLat[i], out.TraceEndLon[i] = endLat, endLon
	}
	if err := out.checkNaN(); err != nil {
		return nil, err
	}
	return out, nil
}

func newOutput(n int) *Output {
	alloc := func() []float64 { return make([]float64, n) }
	return &Output{
		N:             n,
		Depth:         alloc(),
		DepthToTop:    alloc(),
		Area:          alloc(),
		Width:         alloc(),
		Length:        alloc(),
		FaultWidth:    alloc(),
		CentroidX:     alloc(),
		CentroidY:     alloc(),
		TraceStartLat: alloc(),
		TraceStartLon: alloc(),
		TraceEndLat:   alloc(),
		TraceEndLon:   alloc(),
	}
}

func (o *Output) checkNaN() error {
	cols := []struct {
		name string
		v    []float64
	}{
		{"area", o.Area}, {"width", o.Width}, {"length", o.Length}, {"depth", o.Depth},
		{"centroid_y", o.CentroidY}, {"trace_start_lat", o.TraceStartLat},
		{"trace_start_lon", o.TraceStartLon}, {"trace_end_lat", o.TraceEndLat},
		{"trace_end_lon", o.TraceEndLon},
	}
	for _, c := range cols {
		if floats.HasNaN(c.v) {
			return fmt.Errorf("%w: %s", ErrNaN, c.name)
		}
	}
	return nil
}

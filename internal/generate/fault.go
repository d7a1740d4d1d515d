package generate

import (
	"fmt"
	"math"

	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/geo"
	"github.com/dunkgray/eqrm/internal/recurrence"
	"github.com/dunkgray/eqrm/internal/rupture"
	"github.com/dunkgray/eqrm/internal/scaling"
	"github.com/dunkgray/eqrm/internal/source"
)

// Fault is a planar fault whose up-dip extension meets the surface along
// the trace from Start to End. The plane dips to the right of the trace.
type Fault struct {
	Name      string
	EventType string

	Dip float64
	// OutOfDip is the angle between the rupture plane and an enclosing slab.
	OutOfDip      float64
	DeltaOutOfDip float64
	DepthTop      float64
	DepthBottom   float64
	// SlabWidth is the slab thickness; zero means no slab.
	SlabWidth float64
	// LowerDip, when positive, makes this the lower segment of a slab: Start
	// and End are the upper segment's trace, Dip its dip and DepthTop its
	// bottom. The lower segment continues from there at LowerDip.
	LowerDip float64

	Start LatLon
	End   LatLon

	Recurrence Recurrence
}

func (f Fault) validate() error {
	if !(f.Dip > 0 && f.Dip <= 90) {
		return fmt.Errorf("%w: fault %q dip %v", rupture.ErrDegenerateDip, f.Name, f.Dip)
	}
	if !(f.DepthBottom > f.DepthTop) {
		return fmt.Errorf("%w: fault %q depth range [%v, %v]", ErrInvalidSource, f.Name, f.DepthTop, f.DepthBottom)
	}
	if !(f.LowerDip >= 0 && f.LowerDip <= 90) {
		return fmt.Errorf("%w: fault %q lower dip %v", rupture.ErrDegenerateDip, f.Name, f.LowerDip)
	}
	if f.Start == f.End {
		return fmt.Errorf("%w: fault %q has a zero-length trace", ErrInvalidSource, f.Name)
	}
	return nil
}

// Faults generates events for every fault. Rupture width is the smallest of
// the scaling-law width, the fault width and the in-slab bound; length is
// limited by the trace.
func Faults(faults []Fault, control *source.EventControl, opts Options) (*eventset.Catalog, source.Model, error) {
	if len(opts.EventCounts) > 0 && len(opts.EventCounts) != len(faults) {
		return nil, nil, fmt.Errorf("%w: %d event counts for %d faults", ErrInvalidSource, len(opts.EventCounts), len(faults))
	}
	cats := make([]*eventset.Catalog, 0, len(faults))
	model := make(source.Model, 0, len(faults))
	offset := 0
	for i, f := range faults {
		cat, src, err := fault(f, i, offset, control, opts)
		if err != nil {
			return nil, nil, err
		}
		cats = append(cats, cat)
		model = append(model, src)
		offset += cat.Len()
	}
	return eventset.Concat(cats...), model, nil
}

// withSlipRates fills in AMin from the slip rate where it is not given.
func withSlipRates(r Recurrence, areaKm2 float64) (Recurrence, error) {
	models := make([]recurrence.Model, len(r.Models))
	copy(models, r.Models)
	for k, m := range models {
		if m.AMin != 0 || m.SlipRate == 0 {
			continue
		}
		a, err := recurrence.AMinFromSlipRate(m, areaKm2, m.SlipRate)
		if err != nil {
			return Recurrence{}, err
		}
		models[k].AMin = a
	}
	r.Models = models
	return r, nil
}

func fault(f Fault, i, offset int, control *source.EventControl, opts Options) (*eventset.Catalog, *source.Source, error) {
	if err := f.validate(); err != nil {
		return nil, nil, err
	}
	g, err := control.Lookup(f.EventType)
	if err != nil {
		return nil, nil, fmt.Errorf("fault %q: %w", f.Name, err)
	}
	rule, err := scaling.Lookup(g.ScalingRule)
	if err != nil {
		return nil, nil, fmt.Errorf("fault %q: %w", f.Name, err)
	}
	n := opts.eventCount(i, f.Recurrence)
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: fault %q event count %d", eventset.ErrInvalidCount, f.Name, n)
	}

	start, end, dip := f.Start, f.End, f.Dip
	if f.LowerDip > 0 {
		start.Lat, start.Lon, end.Lat, end.Lon = geo.LowerSlabTrace(f.Dip, f.DepthTop,
			f.Start.Lat, f.Start.Lon, f.End.Lat, f.End.Lon, f.LowerDip)
		dip = f.LowerDip
	}
	traceLength := geo.TraceLengthKm(start.Lat, start.Lon, end.Lat, end.Lon)
	azimuth := geo.AzimuthOfTrace(start.Lat, start.Lon, end.Lat, end.Lon)
	// ruptures are placed within the geometric width; an external fault
	// width only caps rupture width
	geoWidth := geo.FaultWidth(f.DepthTop, f.DepthBottom, dip)
	faultWidth := geoWidth
	if opts.FaultWidth > 0 {
		faultWidth = opts.FaultWidth
	}

	rec := f.Recurrence
	if n > 0 {
		area := geo.FaultArea(start.Lat, start.Lon, end.Lat, end.Lon, f.DepthTop, f.DepthBottom, dip)
		if rec, err = withSlipRates(rec, area); err != nil {
			return nil, nil, fmt.Errorf("%w: fault %q: %w", ErrGeneration, f.Name, err)
		}
	}
	rng := opts.stream(source.Fault, i)
	mags, act, err := sampleMagnitudes(rng, rec, n)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fault %q: %w", ErrGeneration, f.Name, err)
	}
	src := newSource(f.Name, source.Fault, f.EventType, g, offset, n)
	src.Activities = act

	cols := make(map[eventset.Attribute][]float64, len(eventset.Attributes()))
	for _, a := range eventset.Attributes() {
		cols[a] = make([]float64, n)
	}
	sinDip, cosDip := math.Sincos(dip * math.Pi / 180)
	for j, mw := range mags {
		slab := math.Inf(1)
		if f.SlabWidth > 0 {
			ood := jitter(rng, f.OutOfDip, f.DeltaOutOfDip)
			slab = scaling.MaxWidthInSlab(ood, f.SlabWidth, faultWidth)
		}
		area, width := rule(g.ScalingFaultType, mw, dip, math.Inf(1))
		width = min(width, faultWidth, slab, geoWidth)
		length := min(area/width, traceLength)

		// rupture origin along strike and down dip from the fault's top edge
		along := (traceLength - length) * rng.Float64()
		down := (geoWidth - width) * rng.Float64()
		top := f.DepthTop + down*sinDip
		depth := top + width/2*sinDip
		// horizontal distance from the trace to the centroid
		offsetY := depth * cosDip / sinDip

		cLat, cLon := geo.XYToLL(along+length/2, offsetY, start.Lat, start.Lon, azimuth)
		sLat, sLon := geo.XYToLL(along, 0, start.Lat, start.Lon, azimuth)
		eLat, eLon := geo.XYToLL(along+length, 0, start.Lat, start.Lon, azimuth)

		set := func(a eventset.Attribute, v float64) { cols[a][j] = v }
		set(eventset.Mw, mw)
		set(eventset.ML, scaling.JohnstonML(mw))
		set(eventset.Dip, dip)
		set(eventset.Azimuth, azimuth)
		set(eventset.Depth, depth)
		set(eventset.DepthToTop, top)
		set(eventset.CentroidLat, cLat)
		set(eventset.CentroidLon, cLon)
		set(eventset.CentroidX, length/2)
		set(eventset.CentroidY, offsetY)
		set(eventset.TraceStartLat, sLat)
		set(eventset.TraceStartLon, sLon)
		set(eventset.TraceEndLat, eLat)
		set(eventset.TraceEndLon, eLon)
		set(eventset.Length, length)
		set(eventset.Width, width)
		set(eventset.Area, length*width)
		set(eventset.FaultWidth, faultWidth)
	}
	cat, err := eventset.FromColumns(cols)
	if err != nil {
		return nil, nil, fmt.Errorf("fault %q: %w", f.Name, err)
	}
	return cat, src, nil
}

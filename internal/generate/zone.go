package generate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ctessum/geom"

	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/rupture"
	"github.com/dunkgray/eqrm/internal/scaling"
	"github.com/dunkgray/eqrm/internal/source"
)

// LatLon is a geographic point in degrees.
type LatLon struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Zone is an areal source: events nucleate anywhere inside Boundary and
// outside every Excludes polygon.
type Zone struct {
	Name      string
	EventType string
	// Area in km², informational.
	Area     float64
	Boundary []LatLon
	Excludes [][]LatLon

	Azimuth      float64
	DeltaAzimuth float64
	Dip          float64
	DeltaDip     float64
	DepthTop     float64
	DepthBottom  float64

	Recurrence Recurrence
}

func (z Zone) validate() error {
	if len(z.Boundary) < 3 {
		return fmt.Errorf("%w: zone %q boundary has %d vertices", ErrInvalidSource, z.Name, len(z.Boundary))
	}
	for _, ex := range z.Excludes {
		if len(ex) < 3 {
			return fmt.Errorf("%w: zone %q excludes polygon has %d vertices", ErrInvalidSource, z.Name, len(ex))
		}
	}
	lo, hi := z.Dip-math.Abs(z.DeltaDip), z.Dip+math.Abs(z.DeltaDip)
	if !(lo > 0 && hi < 90) {
		return fmt.Errorf("%w: zone %q dip range [%v, %v]", rupture.ErrDegenerateDip, z.Name, lo, hi)
	}
	if !(z.DepthBottom > z.DepthTop) {
		return fmt.Errorf("%w: zone %q depth range [%v, %v]", ErrInvalidSource, z.Name, z.DepthTop, z.DepthBottom)
	}
	return nil
}

func polygon(pts []LatLon) geom.Polygon {
	path := make(geom.Path, len(pts))
	for i, p := range pts {
		path[i] = geom.Point{X: p.Lon, Y: p.Lat}
	}
	return geom.Polygon{path}
}

// region is a zone's sampling domain.
type region struct {
	boundary geom.Polygon
	excludes []geom.Polygon
	bounds   *geom.Bounds
}

// newRegion builds the sampling domain. An exclude that covers every
// boundary vertex is ignored, as zone files use it to mean no exclusion.
func newRegion(z Zone) region {
	r := region{boundary: polygon(z.Boundary)}
	for _, ex := range z.Excludes {
		p := polygon(ex)
		if covers(p, z.Boundary) {
			continue
		}
		r.excludes = append(r.excludes, p)
	}
	r.bounds = r.boundary.Bounds()
	return r
}

func covers(p geom.Polygon, pts []LatLon) bool {
	for _, v := range pts {
		if (geom.Point{X: v.Lon, Y: v.Lat}).Within(p) == geom.Outside {
			return false
		}
	}
	return true
}

func (r region) contains(p geom.Point) bool {
	if p.Within(r.boundary) == geom.Outside {
		return false
	}
	for _, ex := range r.excludes {
		if p.Within(ex) != geom.Outside {
			return false
		}
	}
	return true
}

// sample draws a point uniformly in longitude/latitude by rejection.
func (r region) sample(rng *rand.Rand, attempts int) (geom.Point, bool) {
	dx := r.bounds.Max.X - r.bounds.Min.X
	dy := r.bounds.Max.Y - r.bounds.Min.Y
	for range attempts {
		p := geom.Point{
			X: r.bounds.Min.X + dx*rng.Float64(),
			Y: r.bounds.Min.Y + dy*rng.Float64(),
		}
		if r.contains(p) {
			return p, true
		}
	}
	return geom.Point{}, false
}

// Zones generates events for every zone. Sources are returned in zone order,
// each owning a contiguous block of catalog positions.
func Zones(zones []Zone, control *source.EventControl, opts Options) (*eventset.Catalog, source.Model, error) {
	if len(opts.EventCounts) > 0 && len(opts.EventCounts) != len(zones) {
		return nil, nil, fmt.Errorf("%w: %d event counts for %d zones", ErrInvalidSource, len(opts.EventCounts), len(zones))
	}
	cats := make([]*eventset.Catalog, 0, len(zones))
	model := make(source.Model, 0, len(zones))
	offset := 0
	for i, z := range zones {
		cat, src, err := zone(z, i, offset, control, opts)
		if err != nil {
			return nil, nil, err
		}
		cats = append(cats, cat)
		model = append(model, src)
		offset += cat.Len()
	}
	return eventset.Concat(cats...), model, nil
}

func zone(z Zone, i, offset int, control *source.EventControl, opts Options) (*eventset.Catalog, *source.Source, error) {
	if err := z.validate(); err != nil {
		return nil, nil, err
	}
	g, err := control.Lookup(z.EventType)
	if err != nil {
		return nil, nil, fmt.Errorf("zone %q: %w", z.Name, err)
	}
	n := opts.eventCount(i, z.Recurrence)
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: zone %q event count %d", eventset.ErrInvalidCount, z.Name, n)
	}

	rng := opts.stream(source.Zone, i)
	mags, act, err := sampleMagnitudes(rng, z.Recurrence, n)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: zone %q: %w", ErrGeneration, z.Name, err)
	}
	src := newSource(z.Name, source.Zone, z.EventType, g, offset, n)
	src.Activities = act
	if n == 0 {
		empty, _ := eventset.FromColumns(nil)
		return empty, src, nil
	}

	reg := newRegion(z)
	p := eventset.Params{
		CentroidLat: make([]float64, n),
		CentroidLon: make([]float64, n),
		Azimuth:     make([]float64, n),
		Dip:         make([]float64, n),
		Mw:          mags,
		Depth:       make([]float64, n),
		FaultWidth:  make([]float64, n),
		FaultType:   g.ScalingFaultType,
		ScalingRule: g.ScalingRule,
	}
	for j := range n {
		pt, ok := reg.sample(rng, opts.maxAttempts())
		if !ok {
			return nil, nil, fmt.Errorf("%w: zone %q: no point inside the boundary after %d attempts",
				ErrGeneration, z.Name, opts.maxAttempts())
		}
		dip := jitter(rng, z.Dip, z.DeltaDip)
		ceiling := (z.DepthBottom - z.DepthTop) / math.Sin(dip*math.Pi/180)

		p.CentroidLat[j], p.CentroidLon[j] = pt.Y, pt.X
		p.Azimuth[j] = jitter(rng, z.Azimuth, z.DeltaAzimuth)
		p.Dip[j] = dip
		p.FaultWidth[j] = ceiling
		p.Depth[j] = scaling.Depth(z.DepthTop, dip, mags[j], ceiling)
	}
	cat, err := eventset.Create(p)
	if err != nil {
		return nil, nil, fmt.Errorf("zone %q: %w", z.Name, err)
	}
	return cat, src, nil
}

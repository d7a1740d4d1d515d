package config

import (
	"fmt"
	"math"

	"github.com/dunkgray/eqrm/internal/activity"
	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/generate"
	"github.com/dunkgray/eqrm/internal/recurrence"
	"github.com/dunkgray/eqrm/internal/scaling"
	"github.com/dunkgray/eqrm/internal/source"
)

// BuildEventControl converts the event_control section.
func (c *RunConfig) BuildEventControl() (*source.EventControl, error) {
	groups := make([]source.Group, len(c.EventControl))
	for i, g := range c.EventControl {
		branches := make([]source.Branch, len(g.Branches))
		for j, b := range g.Branches {
			branches[j] = source.Branch{Model: b.Model, Weight: b.Weight}
		}
		groups[i] = source.Group{
			EventType:        g.EventType,
			FaultType:        scaling.ParseFaultType(g.FaultType),
			Branches:         branches,
			ScalingRule:      g.ScalingRule,
			ScalingFaultType: scaling.ParseFaultType(g.ScalingFaultType),
		}
	}
	return source.NewEventControl(groups...)
}

func (r Recurrence) build() (generate.Recurrence, error) {
	models := make([]recurrence.Model, len(r.Models))
	for i, m := range r.Models {
		rm, err := m.model()
		if err != nil {
			return generate.Recurrence{}, err
		}
		models[i] = rm
	}
	return generate.Recurrence{
		Models: models,
		Generation: recurrence.Generation{
			MinMag: r.GenerationMinMag,
			Bins:   r.Bins,
			Events: r.Events,
		},
	}, nil
}

func latLon(p LatLon) generate.LatLon { return generate.LatLon{Lat: p[0], Lon: p[1]} }

func path(pts []LatLon) []generate.LatLon {
	out := make([]generate.LatLon, len(pts))
	for i, p := range pts {
		out[i] = latLon(p)
	}
	return out
}

// BuildZones converts the zones section.
func (c *RunConfig) BuildZones() ([]generate.Zone, error) {
	out := make([]generate.Zone, len(c.Zones))
	for i, z := range c.Zones {
		rec, err := z.Recurrence.build()
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", z.Name, err)
		}
		excludes := make([][]generate.LatLon, len(z.Excludes))
		for j, ex := range z.Excludes {
			excludes[j] = path(ex)
		}
		out[i] = generate.Zone{
			Name:         z.Name,
			EventType:    z.EventType,
			Area:         z.Area,
			Boundary:     path(z.Boundary),
			Excludes:     excludes,
			Azimuth:      z.Azimuth,
			DeltaAzimuth: z.DeltaAzimuth,
			Dip:          z.Dip,
			DeltaDip:     z.DeltaDip,
			DepthTop:     z.DepthTop,
			DepthBottom:  z.DepthBottom,
			Recurrence:   rec,
		}
	}
	return out, nil
}

// BuildFaults converts the faults section.
func (c *RunConfig) BuildFaults() ([]generate.Fault, error) {
	out := make([]generate.Fault, len(c.Faults))
	for i, f := range c.Faults {
		rec, err := f.Recurrence.build()
		if err != nil {
			return nil, fmt.Errorf("fault %q: %w", f.Name, err)
		}
		out[i] = generate.Fault{
			Name:          f.Name,
			EventType:     f.EventType,
			Dip:           f.Dip,
			OutOfDip:      f.OutOfDipTheta,
			DeltaOutOfDip: f.DeltaTheta,
			DepthTop:      f.DepthTop,
			DepthBottom:   f.DepthBottom,
			SlabWidth:     f.SlabWidth,
			LowerDip:      f.LowerDip,
			Start:         latLon(f.TraceStart),
			End:           latLon(f.TraceEnd),
			Recurrence:    rec,
		}
	}
	return out, nil
}

// GenerateOptions returns the generator options for one source kind.
func (c *RunConfig) GenerateOptions(kind source.Kind) generate.Options {
	opts := generate.Options{
		Seed:        c.Seed,
		FaultWidth:  c.Generation.FaultWidth,
		MaxAttempts: c.Generation.MaxAttempts,
	}
	switch kind {
	case source.Zone:
		opts.EventCounts = c.Generation.ZoneEventCounts
	case source.Fault:
		opts.EventCounts = c.Generation.FaultEventCounts
	}
	return opts
}

// TensorOptions returns the activity tensor options.
func (c *RunConfig) TensorOptions() ([]activity.Option, error) {
	policy, err := activity.ParsePolicy(c.LogicTree.UnweightedPolicy)
	if err != nil {
		return nil, err
	}
	return []activity.Option{
		activity.WithMaxCells(c.Limits.MaxTensorCells),
		activity.WithUnweightedPolicy(policy),
	}, nil
}

// ScenarioParams converts the scenario section.
func (sc *Scenario) ScenarioParams() (eventset.ScenarioParams, error) {
	n := len(sc.Ruptures)
	col := func(get func(Rupture) *float64, fill float64, required bool) ([]float64, error) {
		out := make([]float64, n)
		set := 0
		for i, r := range sc.Ruptures {
			if v := get(r); v != nil {
				out[i] = *v
				set++
			} else {
				out[i] = fill
			}
		}
		switch {
		case set == 0 && !required:
			return nil, nil
		case set < n && math.IsNaN(fill):
			return nil, fmt.Errorf("%w: value missing on %d of %d ruptures", eventset.ErrShape, n-set, n)
		}
		return out, nil
	}

	p := eventset.ScenarioParams{NumberOfEvents: sc.NumberOfEvents}
	p.FaultType = scaling.ParseFaultType(sc.FaultType)
	p.ScalingRule = sc.ScalingRule
	p.CentroidLat = make([]float64, n)
	p.CentroidLon = make([]float64, n)
	p.Azimuth = make([]float64, n)
	p.Dip = make([]float64, n)
	p.Mw = make([]float64, n)
	for i, r := range sc.Ruptures {
		p.CentroidLat[i], p.CentroidLon[i] = r.Lat, r.Lon
		p.Azimuth[i], p.Dip[i] = r.Azimuth, r.Dip
		switch {
		case r.Mw != nil:
			p.Mw[i] = *r.Mw
		case r.ML != nil:
			p.Mw[i] = scaling.JohnstonMw(*r.ML)
		default:
			return p, fmt.Errorf("scenario rupture %d: one of mw or ml is required", i)
		}
	}

	var err error
	nan := math.NaN()
	if p.ML, err = col(func(r Rupture) *float64 { return r.ML }, nan, false); err != nil {
		// ML is derived from Mw when any rupture omits it
		p.ML = nil
	}
	if p.Depth, err = col(func(r Rupture) *float64 { return r.Depth }, nan, false); err != nil {
		return p, fmt.Errorf("scenario depth: %w", err)
	}
	if p.DepthTop, err = col(func(r Rupture) *float64 { return r.DepthTop }, nan, false); err != nil {
		return p, fmt.Errorf("scenario depth_top: %w", err)
	}
	if p.FaultWidth, err = col(func(r Rupture) *float64 { return r.FaultWidth }, scaling.Unbounded, false); err != nil {
		return p, err
	}
	if p.Width, err = col(func(r Rupture) *float64 { return r.Width }, nan, false); err != nil {
		return p, fmt.Errorf("scenario width: %w", err)
	}
	if p.Length, err = col(func(r Rupture) *float64 { return r.Length }, nan, false); err != nil {
		return p, fmt.Errorf("scenario length: %w", err)
	}
	return p, nil
}

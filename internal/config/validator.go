package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dunkgray/eqrm/internal/activity"
	"github.com/dunkgray/eqrm/internal/recurrence"
	"github.com/dunkgray/eqrm/internal/scaling"
)

// ErrInvalid marks a config that parses but fails validation.
var ErrInvalid = errors.New("config")

// Validate checks the config for:
//   - Required fields and duplicate event types or source names
//   - Event types referenced by sources but missing from event_control
//   - Non-physical geometry and recurrence parameters
//   - Logic-tree weights and resource limits
func Validate(cfg *RunConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalid)
	}
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if cfg.Limits.MaxTensorCells < 0 {
		add("limits.max_tensor_cells must not be negative")
	}
	if cfg.Engine.Workers < 1 || cfg.Engine.QueueDepth < 1 || cfg.Engine.RunTimeoutMs < 1 {
		add("engine: workers, queue_depth and run_timeout_ms must be positive")
	}
	validateLogicTree(cfg.LogicTree, add)

	types := make(map[string]bool)
	for i, g := range cfg.EventControl {
		loc := fmt.Sprintf("event_control[%d]", i)
		if g.EventType == "" {
			add("%s: event_type is required", loc)
			continue
		}
		if types[g.EventType] {
			add("%s: duplicate event_type %q", loc, g.EventType)
		}
		types[g.EventType] = true
		validateBranches(loc, g.Branches, add)
		if _, err := scaling.Lookup(g.ScalingRule); err != nil {
			add("%s: %v", loc, err)
		}
	}

	if cfg.Scenario == nil && len(cfg.Zones) == 0 && len(cfg.Faults) == 0 {
		add("one of scenario, zones or faults is required")
	}
	if cfg.Scenario != nil {
		validateScenario(cfg.Scenario, types, add)
	}

	names := make(map[string]string)
	unique := func(loc, name string) {
		if name == "" {
			add("%s: name is required", loc)
			return
		}
		if prev, ok := names[name]; ok {
			add("duplicate source name %q (first seen at %s, again at %s)", name, prev, loc)
			return
		}
		names[name] = loc
	}
	known := func(loc, eventType string) {
		if !types[eventType] {
			add("%s: event_type %q is not in event_control", loc, eventType)
		}
	}

	for i, z := range cfg.Zones {
		loc := fmt.Sprintf("zones[%d]", i)
		unique(loc, z.Name)
		known(loc, z.EventType)
		if len(z.Boundary) < 3 {
			add("%s: boundary needs at least 3 points", loc)
		}
		for j, ex := range z.Excludes {
			if len(ex) < 3 {
				add("%s.excludes[%d]: needs at least 3 points", loc, j)
			}
		}
		if lo, hi := z.Dip-math.Abs(z.DeltaDip), z.Dip+math.Abs(z.DeltaDip); !(lo > 0 && hi < 90) {
			add("%s: dip range [%v, %v] must lie strictly between 0 and 90", loc, lo, hi)
		}
		if !(z.DepthBottom > z.DepthTop) {
			add("%s: depth_bottom_seismogenic must exceed depth_top_seismogenic", loc)
		}
		validateRecurrence(loc, z.Recurrence, add)
	}
	for i, f := range cfg.Faults {
		loc := fmt.Sprintf("faults[%d]", i)
		unique(loc, f.Name)
		known(loc, f.EventType)
		if !(f.Dip > 0 && f.Dip <= 90) {
			add("%s: dip %v must be in (0, 90]", loc, f.Dip)
		}
		if !(f.DepthBottom > f.DepthTop) {
			add("%s: depth_bottom_seismogenic must exceed depth_top_seismogenic", loc)
		}
		if f.TraceStart == f.TraceEnd {
			add("%s: trace_start and trace_end must differ", loc)
		}
		if f.SlabWidth < 0 {
			add("%s: slab_width must not be negative", loc)
		}
		if f.LowerDip < 0 || f.LowerDip > 90 {
			add("%s: lower_dip %v must be in [0, 90]", loc, f.LowerDip)
		}
		validateRecurrence(loc, f.Recurrence, add)
	}

	gen := cfg.Generation
	if n := len(gen.ZoneEventCounts); n > 0 && n != len(cfg.Zones) {
		add("generation.zone_event_counts has %d entries for %d zones", n, len(cfg.Zones))
	}
	if n := len(gen.FaultEventCounts); n > 0 && n != len(cfg.Faults) {
		add("generation.fault_event_counts has %d entries for %d faults", n, len(cfg.Faults))
	}
	for _, c := range append(append([]int(nil), gen.ZoneEventCounts...), gen.FaultEventCounts...) {
		if c < 0 {
			add("generation: event counts must not be negative")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w validation errors:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateLogicTree(lt LogicTree, add func(string, ...any)) {
	if len(lt.SpawnWeights) > 0 {
		var sum float64
		for _, w := range lt.SpawnWeights {
			if w < 0 {
				add("logic_tree.spawn_weights must not be negative")
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-10 {
			add("logic_tree.spawn_weights sum to %v, want 1", sum)
		}
	}
	if _, err := activity.ParsePolicy(lt.UnweightedPolicy); err != nil {
		add("logic_tree: %v", err)
	}
}

func validateBranches(loc string, branches []Branch, add func(string, ...any)) {
	if len(branches) == 0 {
		add("%s: at least one branch is required", loc)
		return
	}
	var sum float64
	for j, b := range branches {
		if b.Model == "" {
			add("%s.branches[%d]: model is required", loc, j)
		}
		if b.Weight < 0 {
			add("%s.branches[%d]: weight must not be negative", loc, j)
		}
		sum += b.Weight
	}
	if !(sum > 0) {
		add("%s: branch weights must sum to a positive value", loc)
	}
}

func validateRecurrence(loc string, r Recurrence, add func(string, ...any)) {
	if len(r.Models) == 0 {
		add("%s.recurrence: at least one model is required", loc)
	}
	for j, m := range r.Models {
		rm, err := m.model()
		if err == nil {
			err = rm.Validate()
		}
		if err != nil {
			add("%s.recurrence.models[%d]: %v", loc, j, err)
		}
	}
	if r.Events < 0 || r.Bins < 0 {
		add("%s.recurrence: number_of_events and number_of_mag_sample_bins must not be negative", loc)
	}
}

func validateScenario(sc *Scenario, types map[string]bool, add func(string, ...any)) {
	if len(sc.Ruptures) == 0 {
		add("scenario: at least one rupture is required")
	}
	if sc.NumberOfEvents < 0 {
		add("scenario: number_of_events must not be negative")
	}
	if sc.EventType != "" && !types[sc.EventType] {
		add("scenario: event_type %q is not in event_control", sc.EventType)
	}
	if _, err := scaling.Lookup(sc.ScalingRule); err != nil {
		add("scenario: %v", err)
	}
	if !uniform(sc.Ruptures, func(r Rupture) bool { return r.Depth != nil }) &&
		!uniform(sc.Ruptures, func(r Rupture) bool { return r.DepthTop != nil }) {
		add("scenario: every rupture must give depth, or every rupture depth_top")
	}
	for _, opt := range []struct {
		name string
		set  func(Rupture) bool
	}{
		{"width", func(r Rupture) bool { return r.Width != nil }},
		{"length", func(r Rupture) bool { return r.Length != nil }},
	} {
		if !uniform(sc.Ruptures, opt.set) && !uniform(sc.Ruptures, func(r Rupture) bool { return !opt.set(r) }) {
			add("scenario: %s must be given for all ruptures or none", opt.name)
		}
	}
	for i, r := range sc.Ruptures {
		loc := fmt.Sprintf("scenario.ruptures[%d]", i)
		if r.Mw == nil && r.ML == nil {
			add("%s: one of mw or ml is required", loc)
		}
		if r.Depth == nil && r.DepthTop == nil {
			add("%s: one of depth or depth_top is required", loc)
		}
		if !(r.Dip > 0 && r.Dip < 90) {
			add("%s: dip %v must lie strictly between 0 and 90", loc, r.Dip)
		}
	}
}

func (m RecurrenceModel) model() (recurrence.Model, error) {
	d, err := recurrence.ParseDistribution(m.Distribution)
	if err != nil {
		return recurrence.Model{}, err
	}
	return recurrence.Model{
		Distribution: d,
		MinMag:       m.MinMag,
		MaxMag:       m.MaxMag,
		AMin:         m.AMin,
		B:            m.B,
		SlipRate:     m.SlipRate,
		Weight:       m.Weight,
	}, nil
}

func uniform(rs []Rupture, pred func(Rupture) bool) bool {
	for _, r := range rs {
		if !pred(r) {
			return false
		}
	}
	return true
}

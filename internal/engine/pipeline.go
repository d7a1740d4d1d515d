package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dunkgray/eqrm/internal/activity"
	"github.com/dunkgray/eqrm/internal/config"
	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/generate"
	"github.com/dunkgray/eqrm/internal/metrics"
	"github.com/dunkgray/eqrm/internal/source"
)

// ErrInvalidConfig wraps validation failures of a submitted run config.
var ErrInvalidConfig = errors.New("engine: invalid run config")

const (
	ModeScenario  = "scenario"
	ModeSynthetic = "synthetic"
)

// SourceSummary describes one source of a finished run.
type SourceSummary struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	EventType string   `json:"event_type"`
	Events    int      `json:"events"`
	Branches  []string `json:"branches"`
	Rate      float64  `json:"rate"`
}

// RunResult is the outcome of one simulation run.
type RunResult struct {
	RunID      string            `json:"run_id"`
	Mode       string            `json:"mode"`
	Events     int               `json:"events"`
	Sources    []SourceSummary   `json:"sources"`
	Dims       activity.Dims     `json:"dims"`
	TotalRate  float64           `json:"total_rate"`
	EventRates []float64         `json:"event_rates,omitempty"`
	Catalog    *eventset.Catalog `json:"catalog,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
}

// RunOptions select the optional parts of a RunResult.
type RunOptions struct {
	IncludeCatalog bool `json:"include_catalog"`
	IncludeRates   bool `json:"include_rates"`
}

// Run builds the event catalog described by cfg, apportions its activity
// over the logic tree and spawn bins, and summarises the result.
func Run(ctx context.Context, cfg *config.RunConfig, opts RunOptions) (*RunResult, error) {
	start := time.Now()
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	control, err := cfg.BuildEventControl()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	res := &RunResult{RunID: uuid.New().String()}
	var (
		cat   *eventset.Catalog
		model source.Model
	)
	if cfg.Scenario != nil {
		res.Mode = ModeScenario
		cat, model, err = scenario(cfg.Scenario, control)
	} else {
		res.Mode = ModeSynthetic
		cat, model, err = synthetic(ctx, cfg, control)
	}
	if err != nil {
		metrics.RunsTotal.WithLabelValues(res.Mode, "error").Inc()
		return nil, err
	}

	t, err := apportion(cat.Len(), model, cfg)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(res.Mode, "error").Inc()
		return nil, err
	}

	rates := t.EventRates()
	res.Events = cat.Len()
	res.Dims = t.Dims()
	res.TotalRate = t.Sum()
	res.Sources = make([]SourceSummary, len(model))
	for i, s := range model {
		var rate float64
		for _, e := range s.Indexes {
			rate += rates[e]
		}
		res.Sources[i] = SourceSummary{
			Name:      s.Name,
			Kind:      s.Kind.String(),
			EventType: s.EventType,
			Events:    len(s.Indexes),
			Branches:  s.BranchModels,
			Rate:      rate,
		}
		metrics.EventsGenerated.WithLabelValues(s.Kind.String()).Add(float64(len(s.Indexes)))
		metrics.SourcesGenerated.WithLabelValues(s.Kind.String()).Inc()
	}
	if opts.IncludeRates {
		res.EventRates = rates
	}
	if opts.IncludeCatalog {
		res.Catalog = cat
	}
	if n, ok := res.Dims.Cells(); ok {
		metrics.TensorCells.Set(float64(n))
	}

	res.DurationMs = time.Since(start).Milliseconds()
	metrics.RunDuration.Observe(float64(res.DurationMs))
	metrics.RunsTotal.WithLabelValues(res.Mode, "success").Inc()
	slog.Info("run complete",
		"run_id", res.RunID,
		"mode", res.Mode,
		"events", res.Events,
		"sources", len(res.Sources),
		"dims", res.Dims.String(),
		"total_rate", res.TotalRate,
		"duration_ms", res.DurationMs,
	)
	return res, nil
}

// scenario builds the fixed-rupture catalog. Every scenario event carries
// rate one and belongs to a single source.
func scenario(sc *config.Scenario, control *source.EventControl) (*eventset.Catalog, source.Model, error) {
	p, err := sc.ScenarioParams()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cat, err := eventset.CreateScenario(p)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario: %w", err)
	}

	src := &source.Source{
		Name:          ModeScenario,
		Kind:          source.Fault,
		EventType:     sc.EventType,
		BranchWeights: []float64{1},
		ScalingRule:   sc.ScalingRule,
	}
	if sc.EventType != "" {
		g, err := control.Lookup(sc.EventType)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario: %w", err)
		}
		src.BranchModels = g.Models()
		src.BranchWeights = g.Weights()
	}
	src.Indexes = make([]int, cat.Len())
	ones := make([]float64, cat.Len())
	for i := range src.Indexes {
		src.Indexes[i] = i
		ones[i] = 1
	}
	src.Activities = [][]float64{ones}
	return cat, source.Model{src}, nil
}

// synthetic generates zones and faults concurrently and merges them, zones first.
func synthetic(ctx context.Context, cfg *config.RunConfig, control *source.EventControl) (*eventset.Catalog, source.Model, error) {
	zones, err := cfg.BuildZones()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	faults, err := cfg.BuildFaults()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var (
		zoneCat, faultCat     *eventset.Catalog
		zoneModel, faultModel source.Model
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		zoneCat, zoneModel, err = generate.Zones(zones, control, cfg.GenerateOptions(source.Zone))
		if err != nil {
			return err
		}
		return gctx.Err()
	})
	g.Go(func() error {
		var err error
		faultCat, faultModel, err = generate.Faults(faults, control, cfg.GenerateOptions(source.Fault))
		if err != nil {
			return err
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return source.Merge(zoneCat, faultCat, zoneModel, faultModel)
}

// apportion seeds a tensor sized in one pass from the source activities,
// then applies the logic split and the spawn bins.
func apportion(events int, model source.Model, cfg *config.RunConfig) (*activity.Tensor, error) {
	opts, err := cfg.TensorOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	t, err := activity.NewWithCapacity(activity.Plan(events, model, cfg.LogicTree.SpawnWeights), opts...)
	if err != nil {
		return nil, err
	}
	for _, s := range model {
		if len(s.Indexes) == 0 {
			continue
		}
		if err := t.SetEventActivity(s.Activities, s.Indexes); err != nil {
			return nil, fmt.Errorf("source %q: %w", s.Name, err)
		}
	}
	if err := t.GroundMotionModelLogicSplit(model, cfg.LogicTree.Weighted()); err != nil {
		return nil, err
	}
	if len(cfg.LogicTree.SpawnWeights) > 0 {
		if err := t.Spawn(cfg.LogicTree.SpawnWeights); err != nil {
			return nil, err
		}
	}
	return t, nil
}

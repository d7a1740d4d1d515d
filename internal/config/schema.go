package config

// RunConfig is the top-level YAML structure of a simulation run.
type RunConfig struct {
	Version      string        `yaml:"version" json:"version"`
	Seed         uint64        `yaml:"seed" json:"seed"`
	Limits       Limits        `yaml:"limits" json:"limits"`
	LogicTree    LogicTree     `yaml:"logic_tree" json:"logic_tree"`
	Generation   Generation    `yaml:"generation" json:"generation"`
	Scenario     *Scenario     `yaml:"scenario,omitempty" json:"scenario,omitempty"`
	EventControl []EventGroup  `yaml:"event_control" json:"event_control"`
	Zones        []ZoneSource  `yaml:"zones" json:"zones"`
	Faults       []FaultSource `yaml:"faults" json:"faults"`
	Engine       EngineConf    `yaml:"engine" json:"engine"`
}

// Limits bound resource use.
type Limits struct {
	MaxTensorCells int `yaml:"max_tensor_cells" json:"max_tensor_cells"`
}

// LogicTree controls how event rates are apportioned.
type LogicTree struct {
	SpawnWeights []float64 `yaml:"spawn_weights" json:"spawn_weights"`
	// ApplyWeights is a pointer so an absent key can default to true.
	ApplyWeights     *bool  `yaml:"apply_weights" json:"apply_weights"`
	UnweightedPolicy string `yaml:"unweighted_policy" json:"unweighted_policy"`
}

// Weighted reports whether branch weights are applied in the logic split.
func (lt LogicTree) Weighted() bool {
	return lt.ApplyWeights == nil || *lt.ApplyWeights
}

// Generation overrides the per-source event counts of the source files.
type Generation struct {
	ZoneEventCounts  []int   `yaml:"zone_event_counts" json:"zone_event_counts"`
	FaultEventCounts []int   `yaml:"fault_event_counts" json:"fault_event_counts"`
	FaultWidth       float64 `yaml:"fault_width" json:"fault_width"`
	MaxAttempts      int     `yaml:"max_attempts" json:"max_attempts"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Workers      int `yaml:"workers" json:"workers"`
	QueueDepth   int `yaml:"queue_depth" json:"queue_depth"`
	RunTimeoutMs int `yaml:"run_timeout_ms" json:"run_timeout_ms"`
}

// Scenario describes fixed ruptures run instead of the synthetic sources.
type Scenario struct {
	EventType      string    `yaml:"event_type" json:"event_type"`
	FaultType      string    `yaml:"fault_type" json:"fault_type"`
	ScalingRule    string    `yaml:"scaling_rule" json:"scaling_rule"`
	NumberOfEvents int       `yaml:"number_of_events" json:"number_of_events"`
	Ruptures       []Rupture `yaml:"ruptures" json:"ruptures"`
}

// Rupture is one scenario rupture. Optional values are pointers.
type Rupture struct {
	Lat        float64  `yaml:"lat" json:"lat"`
	Lon        float64  `yaml:"lon" json:"lon"`
	Azimuth    float64  `yaml:"azimuth" json:"azimuth"`
	Dip        float64  `yaml:"dip" json:"dip"`
	Mw         *float64 `yaml:"mw,omitempty" json:"mw,omitempty"`
	ML         *float64 `yaml:"ml,omitempty" json:"ml,omitempty"`
	Depth      *float64 `yaml:"depth,omitempty" json:"depth,omitempty"`
	DepthTop   *float64 `yaml:"depth_top,omitempty" json:"depth_top,omitempty"`
	FaultWidth *float64 `yaml:"fault_width,omitempty" json:"fault_width,omitempty"`
	Width      *float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Length     *float64 `yaml:"length,omitempty" json:"length,omitempty"`
}

// EventGroup is one entry of the event-type control file.
type EventGroup struct {
	EventType        string   `yaml:"event_type" json:"event_type"`
	FaultType        string   `yaml:"fault_type" json:"fault_type"`
	Branches         []Branch `yaml:"branches" json:"branches"`
	ScalingRule      string   `yaml:"scaling_rule" json:"scaling_rule"`
	ScalingFaultType string   `yaml:"scaling_fault_type" json:"scaling_fault_type"`
}

// Branch is a ground-motion model and its relative weight.
type Branch struct {
	Model  string  `yaml:"model" json:"model"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// LatLon is a [lat, lon] pair.
type LatLon [2]float64

// ZoneSource is an areal source.
type ZoneSource struct {
	Name         string     `yaml:"name" json:"name"`
	EventType    string     `yaml:"event_type" json:"event_type"`
	Area         float64    `yaml:"area" json:"area"`
	Boundary     []LatLon   `yaml:"boundary" json:"boundary"`
	Excludes     [][]LatLon `yaml:"excludes" json:"excludes"`
	Azimuth      float64    `yaml:"azimuth" json:"azimuth"`
	DeltaAzimuth float64    `yaml:"delta_azimuth" json:"delta_azimuth"`
	Dip          float64    `yaml:"dip" json:"dip"`
	DeltaDip     float64    `yaml:"delta_dip" json:"delta_dip"`
	DepthTop     float64    `yaml:"depth_top_seismogenic" json:"depth_top_seismogenic"`
	DepthBottom  float64    `yaml:"depth_bottom_seismogenic" json:"depth_bottom_seismogenic"`
	Recurrence   Recurrence `yaml:"recurrence" json:"recurrence"`
}

// FaultSource is a planar fault with a two-point surface trace.
type FaultSource struct {
	Name          string  `yaml:"name" json:"name"`
	EventType     string  `yaml:"event_type" json:"event_type"`
	Dip           float64 `yaml:"dip" json:"dip"`
	OutOfDipTheta float64 `yaml:"out_of_dip_theta" json:"out_of_dip_theta"`
	DeltaTheta    float64 `yaml:"delta_theta" json:"delta_theta"`
	DepthTop      float64 `yaml:"depth_top_seismogenic" json:"depth_top_seismogenic"`
	DepthBottom   float64 `yaml:"depth_bottom_seismogenic" json:"depth_bottom_seismogenic"`
	SlabWidth     float64 `yaml:"slab_width" json:"slab_width"`
	// LowerDip, when set, makes the trace and dip describe the upper
	// segment of a slab and generates on the lower one.
	LowerDip   float64    `yaml:"lower_dip" json:"lower_dip"`
	TraceStart LatLon     `yaml:"trace_start" json:"trace_start"`
	TraceEnd   LatLon     `yaml:"trace_end" json:"trace_end"`
	Recurrence Recurrence `yaml:"recurrence" json:"recurrence"`
}

// Recurrence lists a source's recurrence models and how to sample them.
type Recurrence struct {
	Models           []RecurrenceModel `yaml:"models" json:"models"`
	GenerationMinMag float64           `yaml:"generation_min_mag" json:"generation_min_mag"`
	Bins             int               `yaml:"number_of_mag_sample_bins" json:"number_of_mag_sample_bins"`
	Events           int               `yaml:"number_of_events" json:"number_of_events"`
}

// RecurrenceModel is one magnitude-frequency relation.
type RecurrenceModel struct {
	Distribution string  `yaml:"distribution" json:"distribution"`
	MinMag       float64 `yaml:"recurrence_min_mag" json:"recurrence_min_mag"`
	MaxMag       float64 `yaml:"recurrence_max_mag" json:"recurrence_max_mag"`
	AMin         float64 `yaml:"a_min" json:"a_min"`
	B            float64 `yaml:"b" json:"b"`
	SlipRate     float64 `yaml:"slip_rate" json:"slip_rate"`
	Weight       float64 `yaml:"weight" json:"weight"`
}

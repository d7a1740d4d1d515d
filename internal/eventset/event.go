package eventset

import (
	"encoding/json"
	"math"
)

// Event is one row of a catalog, copied out by value.
type Event struct {
	Index         int     `json:"index"`
	Mw            float64 `json:"mw"`
	ML            float64 `json:"ml"`
	Dip           float64 `json:"dip"`
	Azimuth       float64 `json:"azimuth"`
	Depth         float64 `json:"depth"`
	DepthToTop    float64 `json:"depth_to_top"`
	CentroidLat   float64 `json:"rupture_centroid_lat"`
	CentroidLon   float64 `json:"rupture_centroid_lon"`
	CentroidX     float64 `json:"rupture_centroid_x"`
	CentroidY     float64 `json:"rupture_centroid_y"`
	TraceStartLat float64 `json:"trace_start_lat"`
	TraceStartLon float64 `json:"trace_start_lon"`
	TraceEndLat   float64 `json:"trace_end_lat"`
	TraceEndLon   float64 `json:"trace_end_lon"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Area          float64 `json:"area"`
	FaultWidth    float64 `json:"fault_width"`
	Recurrence    float64 `json:"recurrence"`
}

// Get returns the value of attribute a.
func (e Event) Get(a Attribute) float64 {
	switch a {
	case Mw:
		return e.Mw
	case ML:
		return e.ML
	case Dip:
		return e.Dip
	case Azimuth:
		return e.Azimuth
	case Depth:
		return e.Depth
	case DepthToTop:
		return e.DepthToTop
	case CentroidLat:
		return e.CentroidLat
	case CentroidLon:
		return e.CentroidLon
	case CentroidX:
		return e.CentroidX
	case CentroidY:
		return e.CentroidY
	case TraceStartLat:
		return e.TraceStartLat
	case TraceStartLon:
		return e.TraceStartLon
	case TraceEndLat:
		return e.TraceEndLat
	case TraceEndLon:
		return e.TraceEndLon
	case Length:
		return e.Length
	case Width:
		return e.Width
	case Area:
		return e.Area
	case FaultWidth:
		return e.FaultWidth
	case Recurrence:
		return e.Recurrence
	}
	return 0
}

func (c *Catalog) row(i, index int) Event {
	v := func(a Attribute) float64 { return c.cols[a][i] }
	return Event{
		Index:         index,
		Mw:            v(Mw),
		ML:            v(ML),
		Dip:           v(Dip),
		Azimuth:       v(Azimuth),
		Depth:         v(Depth),
		DepthToTop:    v(DepthToTop),
		CentroidLat:   v(CentroidLat),
		CentroidLon:   v(CentroidLon),
		CentroidX:     v(CentroidX),
		CentroidY:     v(CentroidY),
		TraceStartLat: v(TraceStartLat),
		TraceStartLon: v(TraceStartLon),
		TraceEndLat:   v(TraceEndLat),
		TraceEndLon:   v(TraceEndLon),
		Length:        v(Length),
		Width:         v(Width),
		Area:          v(Area),
		FaultWidth:    v(FaultWidth),
		Recurrence:    v(Recurrence),
	}
}

// MarshalJSON writes an unbounded fault width as null.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		plain
		FaultWidth *float64 `json:"fault_width"`
	}{plain: plain(e)}
	if !math.IsInf(e.FaultWidth, 0) {
		out.FaultWidth = &e.FaultWidth
	}
	return json.Marshal(out)
}

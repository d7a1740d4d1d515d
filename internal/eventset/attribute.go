package eventset

// Attribute names one per-event column of a Catalog.
type Attribute int

const (
	Mw Attribute = iota
	ML
	Dip
	Azimuth
	Depth
	DepthToTop
	CentroidLat
	CentroidLon
	CentroidX
	CentroidY
	TraceStartLat
	TraceStartLon
	TraceEndLat
	TraceEndLon
	Length
	Width
	Area
	FaultWidth
	// Recurrence is the legacy scalar rate; activities live in the activity tensor.
	Recurrence

	numAttributes
)

var attributeNames = [numAttributes]string{
	Mw:            "Mw",
	ML:            "ML",
	Dip:           "dip",
	Azimuth:       "azimuth",
	Depth:         "depth",
	DepthToTop:    "depth_to_top",
	CentroidLat:   "rupture_centroid_lat",
	CentroidLon:   "rupture_centroid_lon",
	CentroidX:     "rupture_centroid_x",
	CentroidY:     "rupture_centroid_y",
	TraceStartLat: "trace_start_lat",
	TraceStartLon: "trace_start_lon",
	TraceEndLat:   "trace_end_lat",
	TraceEndLon:   "trace_end_lon",
	Length:        "length",
	Width:         "width",
	Area:          "area",
	FaultWidth:    "fault_width",
	Recurrence:    "recurrence",
}

func (a Attribute) String() string {
	if !a.valid() {
		return "unknown"
	}
	return attributeNames[a]
}

func (a Attribute) valid() bool { return a >= 0 && a < numAttributes }

// Attributes returns the catalog schema in column order.
func Attributes() []Attribute {
	out := make([]Attribute, numAttributes)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

package scaling

import "strings"

// FaultType selects the coefficient set of a fault-type keyed relation.
type FaultType int

const (
	Unspecified FaultType = iota
	Normal
	Reverse
	StrikeSlip
)

var faultTypeNames = [...]string{
	Unspecified: "unspecified",
	Normal:      "normal",
	Reverse:     "reverse",
	StrikeSlip:  "strike_slip",
}

// ParseFaultType maps a control-file fault type to a FaultType.
// Unrecognised names fall back to Unspecified.
func ParseFaultType(s string) FaultType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal
	case "reverse":
		return Reverse
	case "strike_slip", "strike-slip", "strikeslip":
		return StrikeSlip
	default:
		return Unspecified
	}
}

func (f FaultType) String() string {
	if f < 0 || int(f) >= len(faultTypeNames) {
		return faultTypeNames[Unspecified]
	}
	return faultTypeNames[f]
}

// MarshalText implements encoding.TextMarshaler.
func (f FaultType) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FaultType) UnmarshalText(b []byte) error {
	*f = ParseFaultType(string(b))
	return nil
}

package source

import (
	"fmt"
	"sort"

	"github.com/dunkgray/eqrm/internal/scaling"
)

// Branch is one ground-motion model of a logic tree with its relative weight.
type Branch struct {
	Model  string
	Weight float64
}

// Group is the event-type control entry for one event type.
type Group struct {
	EventType string
	// FaultType is the fault type the ground-motion models are evaluated for.
	FaultType        scaling.FaultType
	Branches         []Branch
	ScalingRule      string
	ScalingFaultType scaling.FaultType
}

// Models returns the branch model names in declaration order.
func (g Group) Models() []string {
	out := make([]string, len(g.Branches))
	for i, b := range g.Branches {
		out[i] = b.Model
	}
	return out
}

// Weights returns the raw branch weights in declaration order.
func (g Group) Weights() []float64 {
	out := make([]float64, len(g.Branches))
	for i, b := range g.Branches {
		out[i] = b.Weight
	}
	return out
}

// EventControl maps event types to their ground-motion branches and scaling
// rule. It is read-only once built.
type EventControl struct {
	groups map[string]Group
}

// NewEventControl indexes groups by event type.
func NewEventControl(groups ...Group) (*EventControl, error) {
	c := &EventControl{groups: make(map[string]Group, len(groups))}
	for _, g := range groups {
		if _, dup := c.groups[g.EventType]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEventType, g.EventType)
		}
		if _, err := normalize(g.Weights()); err != nil {
			return nil, fmt.Errorf("event type %q: %w", g.EventType, err)
		}
		if _, err := scaling.Lookup(g.ScalingRule); err != nil {
			return nil, fmt.Errorf("event type %q: %w", g.EventType, err)
		}
		c.groups[g.EventType] = g
	}
	return c, nil
}

// Lookup returns the group of an event type.
func (c *EventControl) Lookup(eventType string) (Group, error) {
	g, ok := c.groups[eventType]
	if !ok {
		return Group{}, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	return g, nil
}

// EventTypes returns the configured event types, sorted.
func (c *EventControl) EventTypes() []string {
	out := make([]string, 0, len(c.groups))
	for k := range c.groups {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

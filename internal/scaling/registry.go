package scaling

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownRule is returned by Lookup for an unregistered rule name.
var ErrUnknownRule = errors.New("scaling: unknown scaling rule")

// Rule computes rupture area and width. maxWidth is the width ceiling
// (math.Inf(1) when unbounded).
type Rule func(ft FaultType, mw, dip, maxWidth float64) (area, width float64)

const (
	// ModifiedWellsCoppersmith94 ignores the fault type and narrows with dip.
	ModifiedWellsCoppersmith94 = "modified_Wells_and_Coppersmith_94"
	// WellsCoppersmith94Rule is keyed by fault type.
	WellsCoppersmith94Rule = "Wells_and_Coppersmith_94"

	// DefaultRule is used when a caller does not name a rule.
	DefaultRule = ModifiedWellsCoppersmith94
)

// Registry maps scaling rule names to their implementations.
// It is populated once at start-up and read-only afterwards.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule. Panics on duplicate names to surface misconfiguration early.
func (r *Registry) Register(name string, rule Rule) {
	if _, exists := r.rules[name]; exists {
		panic(fmt.Sprintf("scaling registry: duplicate rule %q", name))
	}
	r.rules[name] = rule
}

// Get returns the rule registered under name.
func (r *Registry) Get(name string) (Rule, error) {
	rule, ok := r.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	return rule, nil
}

// Names returns the registered rule names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.rules))
	for k := range r.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(ModifiedWellsCoppersmith94, func(_ FaultType, mw, dip, maxWidth float64) (float64, float64) {
		area := ModifiedWellsCoppersmith94Area(mw)
		return area, ModifiedWellsCoppersmith94Width(dip, mw, area, maxWidth)
	})
	r.Register(WellsCoppersmith94Rule, func(ft FaultType, mw, _ float64, maxWidth float64) (float64, float64) {
		return WellsCoppersmith94(ft, mw, maxWidth)
	})
	return r
}()

// Lookup returns a rule from the process-wide registry. An empty name
// selects DefaultRule.
func Lookup(name string) (Rule, error) {
	if name == "" {
		name = DefaultRule
	}
	return defaultRegistry.Get(name)
}

// Names lists the rules in the process-wide registry.
func Names() []string { return defaultRegistry.Names() }

// Unbounded is the width ceiling meaning "no ceiling".
var Unbounded = math.Inf(1)

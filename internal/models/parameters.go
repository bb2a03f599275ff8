package models

import (
	"sort"
	"sync"
)

// ParameterKind selects the coercion rule applied to a raw slider value.
type ParameterKind int

const (
	// KindInt is a plain non-negative count or threshold.
	KindInt ParameterKind = iota
	// KindOdd is a kernel or block size that must be odd.
	KindOdd
	// KindPercent is stored as a slider integer and read as value/100.
	KindPercent
)

// ParameterRange defines the slider range of a parameter
type ParameterRange struct {
	Min int
	Max int
}

// ParameterDefinition describes one tunable parameter of a strategy
type ParameterDefinition struct {
	Name    string
	Label   string
	Kind    ParameterKind
	Default int
	Range   ParameterRange
	// Floor is applied after range clamping and odd coercion.
	Floor int
}

// Coerce maps a raw slider position onto a legal parameter value.
// Negative input is clamped to zero, values are clamped to the slider range,
// odd kinds are forced odd by setting the low bit (4 becomes 5), and the floor
// is applied last.
func Coerce(def ParameterDefinition, raw int) int {
	v := raw
	if v < 0 {
		v = 0
	}
	if v < def.Range.Min {
		v = def.Range.Min
	}
	if def.Range.Max > 0 && v > def.Range.Max {
		v = def.Range.Max
	}
	if def.Kind == KindOdd {
		v |= 1
	}
	if v < def.Floor {
		v = def.Floor
	}
	return v
}

// ParameterSet holds the live, mutable parameter values of one strategy.
// It is written by slider callbacks and read through Snapshot at the start of
// every processing pass.
type ParameterSet struct {
	mu          sync.RWMutex
	strategy    string
	definitions []ParameterDefinition
	index       map[string]ParameterDefinition
	values      map[string]int
}

// NewParameterSet creates a parameter set initialised to the coerced defaults
func NewParameterSet(strategy string, definitions []ParameterDefinition) *ParameterSet {
	ps := &ParameterSet{
		strategy:    strategy,
		definitions: append([]ParameterDefinition(nil), definitions...),
		index:       make(map[string]ParameterDefinition, len(definitions)),
		values:      make(map[string]int, len(definitions)),
	}

	for _, def := range definitions {
		ps.index[def.Name] = def
		ps.values[def.Name] = Coerce(def, def.Default)
	}

	return ps
}

// Strategy returns the name of the strategy owning these parameters
func (ps *ParameterSet) Strategy() string {
	return ps.strategy
}

// Definitions returns the parameter definitions in declaration order
func (ps *ParameterSet) Definitions() []ParameterDefinition {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]ParameterDefinition(nil), ps.definitions...)
}

// Set coerces and stores a raw value, returning the value actually stored
func (ps *ParameterSet) Set(name string, raw int) (int, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	def, exists := ps.index[name]
	if !exists {
		return 0, NewValidationError(name, raw, "parameter not defined for strategy "+ps.strategy)
	}

	value := Coerce(def, raw)
	ps.values[name] = value
	return value, nil
}

// Get returns the current stored value of a parameter
func (ps *ParameterSet) Get(name string) (int, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	v, ok := ps.values[name]
	return v, ok
}

// Apply sets several raw values at once, stopping at the first unknown name
func (ps *ParameterSet) Apply(raw map[string]int) error {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := ps.Set(name, raw[name]); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores every parameter to its default
func (ps *ParameterSet) Reset() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, def := range ps.definitions {
		ps.values[def.Name] = Coerce(def, def.Default)
	}
}

// Snapshot returns an immutable copy of the current values
func (ps *ParameterSet) Snapshot() Parameters {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	p := Parameters{
		strategy: ps.strategy,
		values:   make(map[string]int, len(ps.values)),
		kinds:    make(map[string]ParameterKind, len(ps.values)),
	}
	for name, v := range ps.values {
		p.values[name] = v
		p.kinds[name] = ps.index[name].Kind
	}
	return p
}

// Parameters is a read-only parameter snapshot for a single processing pass.
type Parameters struct {
	strategy string
	values   map[string]int
	kinds    map[string]ParameterKind
}

// Strategy returns the strategy the snapshot was taken from
func (p Parameters) Strategy() string {
	return p.strategy
}

// Int returns the raw stored value, zero when undefined
func (p Parameters) Int(name string) int {
	return p.values[name]
}

// Float returns the value as a float; percent parameters are divided by 100
func (p Parameters) Float(name string) float64 {
	v := float64(p.values[name])
	if p.kinds[name] == KindPercent {
		return v / 100
	}
	return v
}

// Has reports whether the snapshot defines the parameter
func (p Parameters) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Values returns the snapshot as name → effective value, percent kinds scaled
func (p Parameters) Values() map[string]float64 {
	out := make(map[string]float64, len(p.values))
	for name := range p.values {
		out[name] = p.Float(name)
	}
	return out
}

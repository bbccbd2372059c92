// Package transform holds the closed registry of named operations that
// turn a dataset into a derived view. Operations are pure functions of
// (dataset, parameters), which is what makes the facade's memoization
// sound.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fairmatch/internal/engine"
	"fairmatch/internal/source"
)

// Error kinds surfaced by the registry. The backend facade maps these onto
// its error descriptors.
var (
	// ErrUnknownOperation marks a name not present in the registry.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidParameters marks parameters that fail an operation's
	// validation.
	ErrInvalidParameters = errors.New("invalid parameters")
)

// Params are the string-typed operation parameters as they arrive from the
// CLI or dashboard. Each operation parses and validates its own.
type Params map[string]string

// Canonical renders params in a stable sorted form for cache keys and
// provenance.
func (p Params) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, ",")
}

// Float parses a numeric parameter, using def when absent. "inf" is
// accepted for the norm parameters.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if strings.EqualFold(v, "inf") {
		return strconv.ParseFloat("+Inf", 64)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric, got %q", ErrInvalidParameters, key, v)
	}
	return f, nil
}

// Int parses an integer parameter, using def when absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidParameters, key, v)
	}
	return n, nil
}

// Bool parses a boolean parameter, using def when absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidParameters, key, v)
	}
	return b, nil
}

// require rejects params outside the allowed set, so a typo fails loudly
// instead of being silently ignored.
func (p Params) require(operation string, allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	for k := range p {
		if !ok[k] {
			return fmt.Errorf("%w: %s does not accept parameter %q", ErrInvalidParameters, operation, k)
		}
	}
	return nil
}

// Timeline is the recorded simulation attached to a simulate view. The
// dashboard plays it back; tabular consumers ignore it.
type Timeline struct {
	Steps      []engine.Step      `json:"steps"`
	Stats      engine.Stats       `json:"stats"`
	Parameters map[string]float64 `json:"parameters"`
}

// DerivedView is the immutable output of applying an operation to a
// dataset. Provenance (dataset ID, operation, canonical params) doubles as
// the facade's cache key material.
type DerivedView struct {
	DatasetID string
	Origin    string
	Operation string
	Params    string

	Columns []string
	Rows    [][]string
	Scalar  *float64

	Timeline *Timeline
}

// Operation is one registered transformation.
type Operation interface {
	Name() string
	Apply(ds *source.Dataset, params Params) (*DerivedView, error)
}

// Registry is the closed set of operations, fixed at construction.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry builds the standard registry: count, filter, aggregate,
// describe, simulate.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Operation)}
	r.register(countOp{})
	r.register(filterOp{})
	r.register(aggregateOp{})
	r.register(describeOp{})
	r.register(simulateOp{})
	return r
}

func (r *Registry) register(op Operation) {
	r.ops[op.Name()] = op
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs a named operation. Unregistered names fail with
// ErrUnknownOperation.
func (r *Registry) Apply(ds *source.Dataset, name string, params Params) (*DerivedView, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownOperation, name, strings.Join(r.Names(), ", "))
	}
	view, err := op.Apply(ds, params)
	if err != nil {
		return nil, err
	}
	view.DatasetID = ds.ID
	view.Origin = ds.Origin
	view.Operation = name
	view.Params = params.Canonical()
	return view, nil
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fairmatch/internal/source"
)

// countOp returns the record count as a scalar.
type countOp struct{}

func (countOp) Name() string { return "count" }

func (countOp) Apply(ds *source.Dataset, params Params) (*DerivedView, error) {
	if err := params.require("count"); err != nil {
		return nil, err
	}
	n := float64(len(ds.Records))
	return &DerivedView{
		Columns: []string{"count"},
		Rows:    [][]string{{formatValue(n)}},
		Scalar:  &n,
	}, nil
}

// filterOp keeps records matching a single field predicate.
// Params: field, op (eq ne lt le gt ge contains), value.
type filterOp struct{}

func (filterOp) Name() string { return "filter" }

func (filterOp) Apply(ds *source.Dataset, params Params) (*DerivedView, error) {
	if err := params.require("filter", "field", "op", "value"); err != nil {
		return nil, err
	}
	field := params["field"]
	if field == "" {
		return nil, fmt.Errorf("%w: filter needs field=...", ErrInvalidParameters)
	}
	if !hasField(ds, field) {
		return nil, fmt.Errorf("%w: dataset has no field %q", ErrInvalidParameters, field)
	}
	cmpOp, ok := params["op"]
	if !ok {
		cmpOp = "eq"
	}
	value, ok := params["value"]
	if !ok {
		return nil, fmt.Errorf("%w: filter needs value=...", ErrInvalidParameters)
	}

	match, err := predicate(cmpOp, value)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, rec := range ds.Records {
		if match(rec, field) {
			rows = append(rows, recordRow(ds, rec))
		}
	}
	return &DerivedView{Columns: ds.Fields, Rows: rows}, nil
}

func predicate(op, value string) (func(source.RawRecord, string) bool, error) {
	switch op {
	case "eq":
		return func(rec source.RawRecord, f string) bool { return rec.String(f) == value }, nil
	case "ne":
		return func(rec source.RawRecord, f string) bool { return rec.String(f) != value }, nil
	case "contains":
		return func(rec source.RawRecord, f string) bool { return strings.Contains(rec.String(f), value) }, nil
	case "lt", "le", "gt", "ge":
		threshold, err := Params{"value": value}.Float("value", 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s needs a numeric value, got %q", ErrInvalidParameters, op, value)
		}
		return func(rec source.RawRecord, f string) bool {
			n, ok := rec.Float(f)
			if !ok {
				return false
			}
			switch op {
			case "lt":
				return n < threshold
			case "le":
				return n <= threshold
			case "gt":
				return n > threshold
			default:
				return n >= threshold
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown comparison %q", ErrInvalidParameters, op)
	}
}

// aggregateOp groups records and computes metrics per group.
// Params: group_by (optional; absent means one global group), field,
// metrics (comma list of count,sum,avg,min,max).
type aggregateOp struct{}

func (aggregateOp) Name() string { return "aggregate" }

func (aggregateOp) Apply(ds *source.Dataset, params Params) (*DerivedView, error) {
	if err := params.require("aggregate", "group_by", "field", "metrics"); err != nil {
		return nil, err
	}
	groupBy := params["group_by"]
	if groupBy != "" && !hasField(ds, groupBy) {
		return nil, fmt.Errorf("%w: dataset has no field %q", ErrInvalidParameters, groupBy)
	}
	field := params["field"]
	if field == "" {
		return nil, fmt.Errorf("%w: aggregate needs field=...", ErrInvalidParameters)
	}
	if !hasField(ds, field) {
		return nil, fmt.Errorf("%w: dataset has no field %q", ErrInvalidParameters, field)
	}

	metrics := []string{"count"}
	if m := params["metrics"]; m != "" {
		metrics = strings.Split(m, ",")
	}
	for _, m := range metrics {
		switch m {
		case "count", "sum", "avg", "min", "max":
		default:
			return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidParameters, m)
		}
	}

	groups := make(map[string][]float64)
	var order []string
	for _, rec := range ds.Records {
		key := ""
		if groupBy != "" {
			key = rec.String(groupBy)
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		if n, ok := rec.Float(field); ok {
			groups[key] = append(groups[key], n)
		} else {
			groups[key] = append(groups[key], math.NaN())
		}
	}
	sort.Strings(order)

	columns := metrics
	if groupBy != "" {
		columns = append([]string{groupBy}, metrics...)
	}
	rows := make([][]string, 0, len(order))
	for _, key := range order {
		row := make([]string, 0, len(columns))
		if groupBy != "" {
			row = append(row, key)
		}
		for _, m := range metrics {
			row = append(row, formatValue(metric(m, groups[key])))
		}
		rows = append(rows, row)
	}

	view := &DerivedView{Columns: columns, Rows: rows}
	if groupBy == "" && len(metrics) == 1 && len(rows) == 1 {
		s := metric(metrics[0], groups[""])
		view.Scalar = &s
	}
	return view, nil
}

func metric(name string, values []float64) float64 {
	clean := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	switch name {
	case "count":
		return float64(len(values))
	case "sum":
		sum := 0.0
		for _, v := range clean {
			sum += v
		}
		return sum
	case "avg":
		if len(clean) == 0 {
			return math.NaN()
		}
		sum := 0.0
		for _, v := range clean {
			sum += v
		}
		return sum / float64(len(clean))
	case "min":
		best := math.Inf(1)
		for _, v := range clean {
			best = math.Min(best, v)
		}
		return best
	case "max":
		best := math.Inf(-1)
		for _, v := range clean {
			best = math.Max(best, v)
		}
		return best
	}
	return math.NaN()
}

// describeOp summarises every numeric field: count, mean, stddev, min, max.
type describeOp struct{}

func (describeOp) Name() string { return "describe" }

func (describeOp) Apply(ds *source.Dataset, params Params) (*DerivedView, error) {
	if err := params.require("describe"); err != nil {
		return nil, err
	}
	columns := []string{"field", "count", "mean", "stddev", "min", "max"}
	var rows [][]string
	for _, field := range ds.Fields {
		var values []float64
		for _, rec := range ds.Records {
			if n, ok := rec.Float(field); ok {
				values = append(values, n)
			}
		}
		if len(values) == 0 {
			continue
		}
		mean := metric("avg", values)
		variance := 0.0
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		stddev := math.Sqrt(variance / float64(len(values)))
		rows = append(rows, []string{
			field,
			formatValue(float64(len(values))),
			formatValue(mean),
			formatValue(stddev),
			formatValue(metric("min", values)),
			formatValue(metric("max", values)),
		})
	}
	return &DerivedView{Columns: columns, Rows: rows}, nil
}

func hasField(ds *source.Dataset, field string) bool {
	for _, f := range ds.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func recordRow(ds *source.Dataset, rec source.RawRecord) []string {
	row := make([]string, len(ds.Fields))
	for i, f := range ds.Fields {
		row[i] = rec.String(f)
	}
	return row
}

package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fairmatch/internal/source"
)

func skillDataset(t *testing.T, skills ...float64) *source.Dataset {
	t.Helper()
	records := make([]source.RawRecord, len(skills))
	for i, s := range skills {
		records[i] = source.RawRecord{"id": float64(i), "skill": s}
	}
	return &source.Dataset{
		ID:            "roster@fixed",
		Origin:        "roster.csv",
		SchemaVersion: source.SchemaVersion,
		Fields:        []string{"id", "skill"},
		Records:       records,
	}
}

func TestSimulate(t *testing.T) {
	view, err := NewRegistry().Apply(skillDataset(t, 100, 110, 120, 130), "simulate", nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if view.Scalar == nil || *view.Scalar != 1 {
		t.Fatalf("Scalar = %v, want 1 match", view.Scalar)
	}
	if len(view.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(view.Rows))
	}
	// Best split pairs extremes: X={0,3}, Y={1,2}, f = 10.
	want := []string{"1", "0", "0,3", "1,2", "10", "10"}
	if diff := cmp.Diff(want, view.Rows[0]); diff != "" {
		t.Errorf("match row mismatch (-want +got):\n%s", diff)
	}

	if view.Timeline == nil {
		t.Fatal("simulate should attach a timeline")
	}
	if len(view.Timeline.Steps) == 0 {
		t.Error("timeline has no steps")
	}
	if view.Timeline.Parameters["team_size"] != 2 {
		t.Errorf("recorded team_size = %v, want 2", view.Timeline.Parameters["team_size"])
	}
}

// Identical dataset and params must produce an identical view, otherwise
// the facade's memoization would change behavior.
func TestSimulateDeterministic(t *testing.T) {
	registry := NewRegistry()
	ds := skillDataset(t, 100, 180, 120, 160, 140, 130, 150, 170)
	params := Params{"mode": "time_sensitive", "queue_weight": "0.5", "matches": "2"}

	a, err := registry.Apply(ds, "simulate", params)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b, err := registry.Apply(ds, "simulate", params)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if diff := cmp.Diff(a.Rows, b.Rows); diff != "" {
		t.Errorf("rows differ between runs:\n%s", diff)
	}
	if diff := cmp.Diff(a.Timeline.Stats, b.Timeline.Stats); diff != "" {
		t.Errorf("stats differ between runs:\n%s", diff)
	}
}

func TestSimulateRecordDisabled(t *testing.T) {
	ds := skillDataset(t, 100, 110, 120, 130)

	view, err := NewRegistry().Apply(ds, "simulate", Params{"record": "false"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Matching still runs; only the timeline is absent.
	if view.Timeline != nil {
		t.Error("timeline attached with recording disabled")
	}
	if view.Scalar == nil || *view.Scalar != 1 {
		t.Errorf("Scalar = %v, want 1 match", view.Scalar)
	}
	if len(view.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(view.Rows))
	}

	if _, err := NewRegistry().Apply(ds, "simulate", Params{"record": "maybe"}); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("err = %v, want ErrInvalidParameters for a non-boolean record", err)
	}
}

func TestSimulateMatchesLimit(t *testing.T) {
	ds := skillDataset(t, 100, 105, 110, 115, 120, 125, 130, 135)

	view, err := NewRegistry().Apply(ds, "simulate", Params{"matches": "1"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if *view.Scalar != 1 {
		t.Errorf("Scalar = %v, want 1", *view.Scalar)
	}
}

func TestSimulateInvalid(t *testing.T) {
	registry := NewRegistry()
	roster := skillDataset(t, 100, 110, 120, 130)

	tests := []struct {
		name   string
		ds     *source.Dataset
		params Params
	}{
		{"no_skill_field", &source.Dataset{
			Fields:  []string{"id"},
			Records: []source.RawRecord{{"id": 1.0}},
		}, nil},
		{"bad_mode", roster, Params{"mode": "ranked"}},
		{"bad_team_size", roster, Params{"team_size": "9"}},
		{"non_numeric_norm", roster, Params{"p_norm": "two"}},
		{"stray_param", roster, Params{"window": "3"}},
		{"non_numeric_skill", &source.Dataset{
			Fields:  []string{"skill"},
			Records: []source.RawRecord{{"skill": "pro"}},
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := registry.Apply(tt.ds, "simulate", tt.params); !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("err = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

package transform

import (
	"fmt"
	"math"
	"time"

	"fairmatch/internal/engine"
	"fairmatch/internal/source"
)

// simulateOp runs a matchmaking session over a player roster dataset. The
// dataset needs a numeric "skill" field; records are enqueued in dataset
// order. Params mirror engine.Config plus "matches" (how many matches to
// create; -1 drains the queue). The session clock is a deterministic
// tick-per-insert fake so that identical inputs always yield an identical
// view, which keeps the operation cacheable.
type simulateOp struct{}

func (simulateOp) Name() string { return "simulate" }

func (simulateOp) Apply(ds *source.Dataset, params Params) (*DerivedView, error) {
	if err := params.require("simulate",
		"mode", "team_size", "p_norm", "q_norm", "fairness_weight",
		"queue_weight", "approximate", "matches", "record"); err != nil {
		return nil, err
	}

	cfg, err := configFromParams(params)
	if err != nil {
		return nil, err
	}
	maxMatches, err := params.Int("matches", -1)
	if err != nil {
		return nil, err
	}
	if !hasField(ds, "skill") {
		return nil, fmt.Errorf("%w: simulate needs a dataset with a skill field", ErrInvalidParameters)
	}

	mgr, err := engine.NewManager(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	// One simulated second per event, counted from a fixed epoch.
	tick := 0
	epoch := time.Unix(0, 0)
	mgr.SetClock(engine.NewFakeClock(func() time.Time {
		tick++
		return epoch.Add(time.Duration(tick) * time.Second)
	}))

	for i, rec := range ds.Records {
		skill, ok := rec.Float("skill")
		if !ok {
			return nil, fmt.Errorf("%w: record %d has a non-numeric skill", ErrInvalidParameters, i)
		}
		mgr.InsertPlayer(int(math.Round(skill)))
	}

	created := 0
	for maxMatches < 0 || created < maxMatches {
		if mgr.CreateMatch() == nil {
			break
		}
		created++
	}

	matches := mgr.Matches()
	columns := []string{"match", "anchor", "team_x", "team_y", "imbalance", "score"}
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", m.AnchorID),
			teamIDs(m.TeamX),
			teamIDs(m.TeamY),
			formatValue(m.Imbalance),
			formatValue(m.Score()),
		}
	}

	n := float64(len(matches))
	view := &DerivedView{
		Columns: columns,
		Rows:    rows,
		Scalar:  &n,
	}
	if rec := mgr.Recorder(); rec != nil {
		view.Timeline = &Timeline{
			Steps:      rec.Steps(),
			Stats:      rec.Stats(),
			Parameters: mgr.Parameters(),
		}
	}
	return view, nil
}

func configFromParams(params Params) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if mode, ok := params["mode"]; ok {
		cfg.Mode = engine.Mode(mode)
	}
	var err error
	if cfg.TeamSize, err = params.Int("team_size", cfg.TeamSize); err != nil {
		return cfg, err
	}
	if cfg.PNorm, err = params.Float("p_norm", cfg.PNorm); err != nil {
		return cfg, err
	}
	if cfg.QNorm, err = params.Float("q_norm", cfg.QNorm); err != nil {
		return cfg, err
	}
	if cfg.FairnessWeight, err = params.Float("fairness_weight", cfg.FairnessWeight); err != nil {
		return cfg, err
	}
	if cfg.QueueWeight, err = params.Float("queue_weight", cfg.QueueWeight); err != nil {
		return cfg, err
	}
	if cfg.Approximate, err = params.Bool("approximate", cfg.Approximate); err != nil {
		return cfg, err
	}
	if cfg.Record, err = params.Bool("record", cfg.Record); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return cfg, nil
}

func teamIDs(team []engine.PlayerState) string {
	s := ""
	for i, p := range team {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", p.ID)
	}
	return s
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fairmatch/internal/engine"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// recordedRun produces a real timeline to persist, so the roundtrip covers
// the full snapshot shapes rather than hand-built fixtures.
func recordedRun(t *testing.T) (engine.Config, []engine.GameState, engine.Stats, []engine.Step) {
	t.Helper()
	cfg := engine.DefaultConfig()
	m, err := engine.NewManager(cfg, nil)
	require.NoError(t, err)
	for _, skill := range []int{100, 110, 120, 130} {
		m.InsertPlayer(skill)
	}
	require.NotNil(t, m.CreateMatch())
	rec := m.Recorder()
	return cfg, m.Matches(), rec.Stats(), rec.Steps()
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	cfg, matches, stats, steps := recordedRun(t)

	id, err := s.Save("gauss:players=4,seed=1", cfg, matches, stats, steps)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, "gauss:players=4,seed=1", run.Origin)
	require.Equal(t, cfg, run.Config)
	require.Equal(t, matches, run.Matches)
	require.Equal(t, stats, run.Stats)
	require.Equal(t, len(steps), run.StepCount)
	require.Len(t, run.Steps, len(steps))
	require.Equal(t, steps[len(steps)-1].Matches, run.Steps[len(run.Steps)-1].Matches)
	require.False(t, run.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("no-such-run")
	require.ErrorContains(t, err, "not found")
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	cfg, matches, stats, steps := recordedRun(t)

	first, err := s.Save("a.csv", cfg, matches, stats, steps)
	require.NoError(t, err)
	second, err := s.Save("b.csv", cfg, matches, stats, steps)
	require.NoError(t, err)

	runs, err := s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	require.Contains(t, ids, first)
	require.Contains(t, ids, second)
	require.False(t, runs[0].CreatedAt.Before(runs[1].CreatedAt))

	// List omits the step timelines.
	require.Empty(t, runs[0].Steps)
	require.NotZero(t, runs[0].StepCount)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	cfg, matches, stats, steps := recordedRun(t)

	id, err := s.Save("a.csv", cfg, matches, stats, steps)
	require.NoError(t, err)

	existed, err := s.Delete(id)
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = s.Delete(id)
	require.NoError(t, err)
	require.False(t, existed)

	runs, err := s.List()
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	cfg, matches, stats, steps := recordedRun(t)

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Save("a.csv", cfg, matches, stats, steps)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	run, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, "a.csv", run.Origin)
}

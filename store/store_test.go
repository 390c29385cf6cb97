package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/qanneal"
	"github.com/fumin/qanneal/problem"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs", "qanneal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	p, err := problem.New(3, map[[2]int]float64{{0, 1}: 1, {2, 1}: -0.5}, map[int]float64{0: 0.3})
	require.NoError(t, err)

	id, err := s.NewRun(ctx, "solve", 1<<63+5, p)
	require.NoError(t, err)
	run, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "solve", run.Command)
	assert.Equal(t, uint64(1<<63+5), run.Seed)
	assert.Equal(t, p.N(), run.Problem.N())
	assert.Equal(t, p.Couplings(), run.Problem.Couplings())
	assert.Equal(t, p.Fields(), run.Problem.Fields())
	assert.WithinDuration(t, time.Now(), run.Created, time.Minute)

	other, err := s.NewRun(ctx, "scan", 0, p)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	_, err = s.Run(ctx, other+1)
	assert.True(t, errors.Is(err, ErrNotFound), "%+v", err)
}

func TestResults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	p, err := problem.New(2, map[[2]int]float64{{0, 1}: 1}, nil)
	require.NoError(t, err)
	id, err := s.NewRun(ctx, "solve", 7, p)
	require.NoError(t, err)

	results := []Result{
		{Method: "bruteforce", Energy: -1, Spins: problem.Spins{-1, -1}, Elapsed: 3 * time.Microsecond},
		{Method: "anneal", Energy: -1, Spins: problem.Spins{1, 1}, Elapsed: 2 * time.Millisecond},
		{Method: "quantum", Energy: -0.9999999999, Spins: problem.Spins{1, 1}, Elapsed: time.Second},
	}
	for _, r := range results {
		require.NoError(t, s.AddResult(ctx, id, r))
	}
	read, err := s.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, results, read)

	read, err = s.Results(ctx, id+1)
	require.NoError(t, err)
	assert.Empty(t, read)
}

func TestGaps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	p, err := problem.New(1, nil, nil)
	require.NoError(t, err)
	id, err := s.NewRun(ctx, "scan", 0, p)
	require.NoError(t, err)

	gaps := []qanneal.Gap{
		{S: 1, E0: -1.5, E1: -0.5, Delta: 1},
		{S: 0, E0: -2, E1: 0, Delta: 2},
		{S: 0.5, E0: -1.25, E1: -0.5, Delta: 0.75},
	}
	for _, g := range gaps {
		require.NoError(t, s.AddGap(ctx, id, g))
	}
	// Writing the same s again replaces the point.
	require.NoError(t, s.AddGap(ctx, id, qanneal.Gap{S: 1, E0: -1, E1: -1}))

	read, err := s.Gaps(ctx, id)
	require.NoError(t, err)
	expected := []qanneal.Gap{gaps[1], gaps[2], {S: 1, E0: -1, E1: -1}}
	assert.Equal(t, expected, read)
}

func TestReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "qanneal.db")
	p, err := problem.New(1, nil, map[int]float64{0: 1})
	require.NoError(t, err)

	s, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := s.NewRun(ctx, "solve", 1, p)
	require.NoError(t, err)
	require.NoError(t, s.AddResult(ctx, id, Result{Method: "bruteforce", Energy: -1, Spins: problem.Spins{1}}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	results, err := s.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []Result{{Method: "bruteforce", Energy: -1, Spins: problem.Spins{1}}}, results)
}

func TestParseSpins(t *testing.T) {
	t.Parallel()
	s, err := parseSpins("+-+")
	require.NoError(t, err)
	assert.Equal(t, problem.Spins{1, -1, 1}, s)
	assert.Equal(t, "+-+", formatSpins(s))

	_, err = parseSpins("+0")
	assert.Error(t, err)
}

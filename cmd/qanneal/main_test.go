package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/qanneal/problem"
	"github.com/fumin/qanneal/store"
)

const testProblem = `
spins: 3
couplings:
  - {i: 0, j: 1, w: 1.0}
  - {i: 1, j: 2, w: -0.5}
fields:
  - {i: 0, h: 0.3}
`

// setup points the driver at a small problem and a fresh database.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	problemPath := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(problemPath, []byte(testProblem), 0644))
	dbPath := filepath.Join(dir, "db", "qanneal.db")
	viper.Set("problem", problemPath)
	viper.Set("db", dbPath)
	viper.Set("profile", "")
	return dbPath
}

func TestSampleProblem(t *testing.T) {
	p, err := loadProblem("")
	require.NoError(t, err)
	assert.Equal(t, 11, p.N())
	assert.Len(t, p.Couplings(), 7)
	assert.Equal(t, []problem.Field{{I: 0, H: 0.2}, {I: 3, H: -0.3}}, p.Fields())
}

func TestReadConfig(t *testing.T) {
	setup(t)
	viper.Set("db", "~/qanneal.db")
	viper.Set("a0", 2.0)
	defer viper.Set("a0", 1.0)
	cfg, err := readConfig()
	require.NoError(t, err)
	assert.NotContains(t, cfg.DB, "~")
	assert.Equal(t, "qanneal.db", filepath.Base(cfg.DB))
	assert.Equal(t, 2.0, cfg.Schedule.A0)
	assert.Equal(t, 1.0, cfg.Schedule.B0)

	viper.Set("db", "")
	cfg, err = readConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.DB)
}

func TestSolve(t *testing.T) {
	ctx := context.Background()
	dbPath := setup(t)
	viper.Set("seed", 3)
	viper.Set("trials", 2)
	viper.Set("steps", 1000)
	require.NoError(t, solve(ctx))

	s, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	defer s.Close()
	run, err := s.Run(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "solve", run.Command)
	assert.Equal(t, uint64(3), run.Seed)

	results, err := s.Results(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, methodBruteForce, results[0].Method)
	assert.InDelta(t, -1.8, results[0].Energy, 1e-9)
	assert.Equal(t, problem.Spins{1, 1, -1}, results[0].Spins)
	assert.Equal(t, methodAnneal, results[1].Method)
	assert.GreaterOrEqual(t, results[1].Energy, -1.8-1e-9)
	assert.Equal(t, methodQuantum, results[2].Method)
	assert.InDelta(t, -1.8, results[2].Energy, 1e-9)
	assert.Equal(t, problem.Spins{1, 1, -1}, results[2].Spins)
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	dbPath := setup(t)
	viper.Set("points", 5)
	require.NoError(t, scan(ctx))

	s, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	defer s.Close()
	gaps, err := s.Gaps(ctx, 1)
	require.NoError(t, err)
	require.Len(t, gaps, 5)
	assert.Equal(t, 0.0, gaps[0].S)
	assert.InDelta(t, 2, gaps[0].Delta, 1e-9)
	assert.Equal(t, 1.0, gaps[4].S)
	assert.InDelta(t, 0.6, gaps[4].Delta, 1e-9)
}

func TestScanTooLarge(t *testing.T) {
	ctx := context.Background()
	dbPath := setup(t)
	problemPath := filepath.Join(t.TempDir(), "large.yaml")
	require.NoError(t, os.WriteFile(problemPath, []byte("spins: 14\ncouplings:\n  - {i: 0, j: 13, w: 1}\n"), 0644))
	viper.Set("problem", problemPath)
	viper.Set("points", 3)
	assert.Error(t, scan(ctx))

	// No run is recorded for a rejected problem.
	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "%+v", err)
}

func TestNewSessionRunFails(t *testing.T) {
	ctx := context.Background()
	dbPath := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), os.ModePerm))
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE runs (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = newSession(ctx, "solve", 1, nil)
	assert.Error(t, err)

	// The store was closed, and the database is still usable.
	db, err = sql.Open("sqlite3", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, `DROP TABLE runs`)
	require.NoError(t, err)
}

// Package store persists solver runs in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/fumin/qanneal"
	"github.com/fumin/qanneal/problem"
)

const (
	tableRuns    = "runs"
	tableResults = "results"
	tableGaps    = "gaps"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	Path string
	db   *sql.DB
}

// Open opens the database at path, creating it and its directory if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "")
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, fmt.Sprintf("db %s", path))
	}
	return &Store{Path: path, db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func prepareDB(ctx context.Context, db *sql.DB) error {
	sqlStrs := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			seed INTEGER NOT NULL,
			problem TEXT NOT NULL,
			created INTEGER NOT NULL
		) STRICT`, tableRuns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run INTEGER NOT NULL REFERENCES %s (id),
			method TEXT NOT NULL,
			energy REAL NOT NULL,
			spins TEXT NOT NULL,
			elapsed INTEGER NOT NULL
		) STRICT`, tableResults, tableRuns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run INTEGER NOT NULL REFERENCES %s (id),
			s REAL NOT NULL,
			e0 REAL NOT NULL,
			e1 REAL NOT NULL,
			PRIMARY KEY (run, s)
		) STRICT`, tableGaps, tableRuns),
	}
	for _, sqlStr := range sqlStrs {
		if _, err := db.ExecContext(ctx, sqlStr); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}

type Run struct {
	ID      int64
	Command string
	Seed    uint64
	Problem *problem.Problem
	Created time.Time
}

// NewRun records the start of a command on p and returns the run ID.
func (s *Store) NewRun(ctx context.Context, command string, seed uint64, p *problem.Problem) (int64, error) {
	b, err := p.Marshal()
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	sqlStr := fmt.Sprintf(`INSERT INTO %s (command, seed, problem, created) VALUES (?, ?, ?, ?)`, tableRuns)
	// sqlite integers are signed, the seed is stored by its bits.
	res, err := s.db.ExecContext(ctx, sqlStr, command, int64(seed), string(b), time.Now().UnixNano())
	if err != nil {
		return -1, errors.Wrap(err, sqlStr)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return id, nil
}

// Run reads back a run.
func (s *Store) Run(ctx context.Context, id int64) (Run, error) {
	sqlStr := fmt.Sprintf(`SELECT command, seed, problem, created FROM %s WHERE id=?`, tableRuns)
	r := Run{ID: id}
	var seed, created int64
	var problemStr string
	err := s.db.QueryRowContext(ctx, sqlStr, id).Scan(&r.Command, &seed, &problemStr, &created)
	switch {
	case err == sql.ErrNoRows:
		return Run{}, errors.Wrapf(ErrNotFound, "run %d", id)
	case err != nil:
		return Run{}, errors.Wrap(err, "")
	}
	r.Seed = uint64(seed)
	r.Created = time.Unix(0, created)
	r.Problem, err = problem.Parse([]byte(problemStr))
	if err != nil {
		return Run{}, errors.Wrap(err, fmt.Sprintf("run %d", id))
	}
	return r, nil
}

// Result is the outcome of one solver on a run.
type Result struct {
	Method  string
	Energy  float64
	Spins   problem.Spins
	Elapsed time.Duration
}

func (s *Store) AddResult(ctx context.Context, run int64, r Result) error {
	sqlStr := fmt.Sprintf(`INSERT INTO %s (run, method, energy, spins, elapsed) VALUES (?, ?, ?, ?, ?)`, tableResults)
	args := []any{run, r.Method, r.Energy, formatSpins(r.Spins), int64(r.Elapsed)}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

// Results returns the results of a run in insertion order.
func (s *Store) Results(ctx context.Context, run int64) ([]Result, error) {
	sqlStr := fmt.Sprintf(`SELECT method, energy, spins, elapsed FROM %s WHERE run=? ORDER BY id`, tableResults)
	rows, err := s.db.QueryContext(ctx, sqlStr, run)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		var spins string
		var elapsed int64
		if err := rows.Scan(&r.Method, &r.Energy, &spins, &elapsed); err != nil {
			return nil, errors.Wrap(err, "")
		}
		r.Spins, err = parseSpins(spins)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		r.Elapsed = time.Duration(elapsed)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return results, nil
}

func (s *Store) AddGap(ctx context.Context, run int64, g qanneal.Gap) error {
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (run, s, e0, e1) VALUES (?, ?, ?, ?)`, tableGaps)
	args := []any{run, g.S, g.E0, g.E1}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

// Gaps returns the gap points of a run sorted by s.
func (s *Store) Gaps(ctx context.Context, run int64) ([]qanneal.Gap, error) {
	sqlStr := fmt.Sprintf(`SELECT s, e0, e1 FROM %s WHERE run=? ORDER BY s`, tableGaps)
	rows, err := s.db.QueryContext(ctx, sqlStr, run)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	gaps := make([]qanneal.Gap, 0)
	for rows.Next() {
		var g qanneal.Gap
		if err := rows.Scan(&g.S, &g.E0, &g.E1); err != nil {
			return nil, errors.Wrap(err, "")
		}
		g.Delta = g.E1 - g.E0
		gaps = append(gaps, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return gaps, nil
}

// formatSpins writes +1 as '+' and -1 as '-'.
func formatSpins(s problem.Spins) string {
	var b strings.Builder
	for _, v := range s {
		switch v {
		case 1:
			b.WriteByte('+')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func parseSpins(str string) (problem.Spins, error) {
	s := make(problem.Spins, 0, len(str))
	for i, c := range str {
		switch c {
		case '+':
			s = append(s, 1)
		case '-':
			s = append(s, -1)
		default:
			return nil, errors.Errorf("spin %d %q in %q", i, c, str)
		}
	}
	return s, nil
}

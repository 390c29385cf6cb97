package qanneal

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// At s = 0 only the driver remains, whose spectrum is -N + 2k regardless of the problem.
func TestGapAtDriver(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n         int
		couplings map[[2]int]float64
		fields    map[int]float64
	}{
		{n: 1},
		{n: 2, couplings: map[[2]int]float64{{0, 1}: 1}},
		{n: 3, couplings: map[[2]int]float64{{0, 1}: 1, {1, 2}: -0.5}, fields: map[int]float64{0: 0.3}},
		{n: 4, couplings: map[[2]int]float64{{0, 3}: 2}, fields: map[int]float64{2: -1}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %v %v", test.n, test.couplings, test.fields), func(t *testing.T) {
			t.Parallel()
			p := newProblem(t, test.n, test.couplings, test.fields)
			g, err := GapForS(p, 0, DefaultSchedule())
			require.NoError(t, err)
			assert.InDelta(t, -float64(test.n), g.E0, 1e-9)
			assert.InDelta(t, -float64(test.n)+2, g.E1, 1e-9)
			assert.InDelta(t, 2, g.Delta, 1e-9)

			// The amplitude scales the whole spectrum.
			g, err = GapForS(p, 0, Schedule{A0: 3, B0: 1})
			require.NoError(t, err)
			assert.InDelta(t, 6, g.Delta, 1e-9)
		})
	}
}

func TestGapAtProblem(t *testing.T) {
	t.Parallel()
	// Ferromagnetic pair, both aligned states have energy -1.
	p := newProblem(t, 2, map[[2]int]float64{{0, 1}: 1}, nil)
	g, err := GapForS(p, 1, DefaultSchedule())
	require.NoError(t, err)
	assert.InDelta(t, -1, g.E0, 1e-9)
	assert.InDelta(t, 0, g.Delta, 1e-9)

	p = newProblem(t, 3, map[[2]int]float64{{0, 1}: 1, {1, 2}: -0.5}, map[int]float64{0: 0.3})
	g, err = GapForS(p, 1, DefaultSchedule())
	require.NoError(t, err)
	assert.InDelta(t, -1.8, g.E0, 1e-9)
	assert.InDelta(t, -1.2, g.E1, 1e-9)
	assert.InDelta(t, 0.6, g.Delta, 1e-9)

	_, err = GapForS(p, 2, DefaultSchedule())
	assert.True(t, errors.Is(err, ErrSchedule), "%+v", err)
}

func TestScanGap(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(11, 12))
	p := randomProblem(t, rng, 4)

	const points = 11
	var observed []float64
	scan, err := ScanGap(p, points, DefaultSchedule(), func(g Gap) { observed = append(observed, g.S) })
	require.NoError(t, err)
	require.Len(t, scan.Points, points)
	assert.Len(t, observed, points)

	minimum := scan.Points[0]
	for k, g := range scan.Points {
		assert.InDelta(t, float64(k)/(points-1), g.S, 1e-12)
		assert.Equal(t, g.S, observed[k])
		assert.GreaterOrEqual(t, g.Delta, 0.0)
		assert.InDelta(t, g.E1-g.E0, g.Delta, 1e-12)
		if g.Delta < minimum.Delta {
			minimum = g
		}
	}
	assert.Equal(t, minimum, scan.Min)
	assert.Equal(t, 0.0, scan.Points[0].S)
	assert.Equal(t, 1.0, scan.Points[points-1].S)

	// The endpoints agree with GapForS.
	g, err := GapForS(p, 1, DefaultSchedule())
	require.NoError(t, err)
	assert.InDelta(t, g.Delta, scan.Points[points-1].Delta, 1e-12)
}

func TestScanGapTies(t *testing.T) {
	t.Parallel()
	// Without a problem term every point is the driver scaled by 1-s, so the gap decreases to zero at s = 1.
	p := newProblem(t, 2, nil, nil)
	scan, err := ScanGap(p, 5, DefaultSchedule(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scan.Min.S)
	assert.InDelta(t, 0, scan.Min.Delta, 1e-9)

	// The schedule is constant when A0 = 0 and B0 = 0, and the first point wins.
	scan, err = ScanGap(p, 5, Schedule{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, scan.Min.S)
}

func TestScanGapPoints(t *testing.T) {
	t.Parallel()
	p := newProblem(t, 1, nil, nil)
	for _, points := range []int{-1, 0, 1} {
		_, err := ScanGap(p, points, DefaultSchedule(), nil)
		assert.True(t, errors.Is(err, ErrSchedule), "%d %+v", points, err)
	}
	scan, err := ScanGap(p, 2, DefaultSchedule(), nil)
	require.NoError(t, err)
	assert.Len(t, scan.Points, 2)
}

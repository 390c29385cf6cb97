package qanneal

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/qanneal/mat"
	"github.com/fumin/qanneal/problem"
)

// Gap is the ground energy E0, the first excited energy E1, and their difference at interpolation parameter S.
type Gap struct {
	S     float64
	E0    float64
	E1    float64
	Delta float64
}

// GapForS diagonalizes H(s) and returns its two lowest eigenvalues.
// Degenerate ground states give a zero gap.
func GapForS(p *problem.Problem, s float64, sched Schedule) (Gap, error) {
	h, err := TotalHamiltonian(p, s, sched)
	if err != nil {
		return Gap{}, errors.Wrap(err, "")
	}
	vvs, err := mat.Eigen(h, false)
	if err != nil {
		return Gap{}, errors.Wrap(err, fmt.Sprintf("s = %f", s))
	}
	// At least one spin, so there are at least two eigenvalues, already sorted.
	g := Gap{S: s, E0: vvs[0].Val, E1: vvs[1].Val}
	g.Delta = g.E1 - g.E0
	return g, nil
}

// Scan is the result of ScanGap.
type Scan struct {
	Points []Gap
	// Min is the point with the smallest gap, the hardest point of the schedule.
	Min Gap
}

// ScanGap computes the gap on the uniform grid s = k/(points-1), k = 0..points-1.
// observe, if not nil, is called after every point.
// On ties the smallest s is reported as the minimum.
func ScanGap(p *problem.Problem, points int, sched Schedule, observe func(Gap)) (Scan, error) {
	if points < 2 {
		return Scan{}, errors.Wrapf(ErrSchedule, "%d points", points)
	}
	scan := Scan{Points: make([]Gap, 0, points), Min: Gap{Delta: math.Inf(1)}}
	for k := range points {
		s := float64(k) / float64(points-1)
		g, err := GapForS(p, s, sched)
		if err != nil {
			return Scan{}, errors.Wrap(err, "")
		}
		scan.Points = append(scan.Points, g)
		if g.Delta < scan.Min.Delta {
			scan.Min = g
		}
		if observe != nil {
			observe(g)
		}
	}
	return scan, nil
}

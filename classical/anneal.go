package classical

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/qanneal/problem"
)

// ErrInvalidOptions is returned for unusable annealing options.
var ErrInvalidOptions = errors.New("invalid annealing options")

// Rand is the source of randomness of the annealer.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// AnnealOptions are options for simulated annealing.
type AnnealOptions struct {
	tStart float64
	tEnd   float64
	steps  int
}

// NewAnnealOptions returns the default annealing options.
func NewAnnealOptions() AnnealOptions {
	opt := AnnealOptions{}
	opt.tStart = 5.0
	opt.tEnd = 0.1
	opt.steps = 10000
	return opt
}

// TStart sets the starting temperature.
func (opt AnnealOptions) TStart(t float64) AnnealOptions {
	opt.tStart = t
	return opt
}

// TEnd sets the temperature the linear schedule heads towards.
func (opt AnnealOptions) TEnd(t float64) AnnealOptions {
	opt.tEnd = t
	return opt
}

// Steps sets the number of iterations.
func (opt AnnealOptions) Steps(steps int) AnnealOptions {
	opt.steps = steps
	return opt
}

// Temperature returns the temperature at iteration t.
// It never reaches tEnd since t < steps.
func (opt AnnealOptions) Temperature(t int) float64 {
	return opt.tStart + (opt.tEnd-opt.tStart)*(float64(t)/float64(opt.steps))
}

func (opt AnnealOptions) validate() error {
	switch {
	case !(opt.tStart > 0) || math.IsInf(opt.tStart, 0):
		return errors.Wrapf(ErrInvalidOptions, "start temperature %v", opt.tStart)
	// T(t) never reaches tEnd for t < steps, so tEnd may be zero.
	case !(opt.tEnd >= 0) || math.IsInf(opt.tEnd, 0):
		return errors.Wrapf(ErrInvalidOptions, "end temperature %v", opt.tEnd)
	case opt.steps < 0:
		return errors.Wrapf(ErrInvalidOptions, "%d steps", opt.steps)
	}
	return nil
}

// Anneal runs single spin flip simulated annealing from a random configuration.
// The energy is accumulated from flip deltas and may drift from the exact value by rounding errors,
// which stay far below 1e-9 for the default number of steps.
// The returned state is the one after the last iteration, not the best one visited.
func Anneal(p *problem.Problem, rng Rand, options ...AnnealOptions) (float64, problem.Spins, error) {
	opt := NewAnnealOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	if err := opt.validate(); err != nil {
		return math.NaN(), nil, errors.Wrap(err, "")
	}

	n := p.N()
	s := make(problem.Spins, n)
	for i := range s {
		s[i] = int8(2*rng.IntN(2) - 1)
	}
	e, err := p.Energy(s)
	if err != nil {
		return math.NaN(), nil, errors.Wrap(err, "")
	}

	for t := range opt.steps {
		temp := opt.Temperature(t)
		i := rng.IntN(n)
		de := p.FlipDelta(s, i)
		if metropolis(rng, de, temp) {
			s[i] = -s[i]
			e += de
		}
	}
	return e, s, nil
}

// metropolis accepts downhill moves unconditionally and uphill moves with probability exp(-de/temp).
// The generator is only consulted for uphill moves.
func metropolis(rng Rand, de, temp float64) bool {
	if de <= 0 {
		return true
	}
	return rng.Float64() < math.Exp(-de/temp)
}

// TrialResult is the outcome of repeated annealing runs.
type TrialResult struct {
	Energy float64
	Spins  problem.Spins
	// Best is the index of the trial that found Energy.
	Best int
	// Energies holds the final energy of every trial.
	Energies []float64
}

// Trials runs Anneal the given number of times with the same generator and keeps the lowest final energy.
// On ties the earliest trial wins.
func Trials(p *problem.Problem, rng Rand, trials int, options ...AnnealOptions) (TrialResult, error) {
	if trials < 1 {
		return TrialResult{}, errors.Wrapf(ErrInvalidOptions, "%d trials", trials)
	}
	res := TrialResult{Energy: math.Inf(1), Best: -1, Energies: make([]float64, 0, trials)}
	for k := range trials {
		e, s, err := Anneal(p, rng, options...)
		if err != nil {
			return TrialResult{}, errors.Wrap(err, "")
		}
		res.Energies = append(res.Energies, e)
		if e < res.Energy {
			res.Energy, res.Spins, res.Best = e, s, k
		}
	}
	return res, nil
}

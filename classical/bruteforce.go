// Package classical implements classical solvers for Ising problems.
package classical

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/qanneal/problem"
)

// maxBruteForceSpins bounds the enumeration so that 1<<n fits in a uint64.
const maxBruteForceSpins = 62

// IntToSpins decodes x into n spins.
// Bit i of x, counting from the least significant bit, is spin i, and a set bit is +1.
// This differs from the bit order of quantum basis states, see qanneal.IndexToSpins.
func IntToSpins(x uint64, n int) problem.Spins {
	s := make(problem.Spins, n)
	for i := range s {
		switch (x >> i) & 1 {
		case 1:
			s[i] = 1
		default:
			s[i] = -1
		}
	}
	return s
}

// SpinsToInt is the inverse of IntToSpins.
func SpinsToInt(s problem.Spins) uint64 {
	var x uint64
	for i, v := range s {
		if v == 1 {
			x |= 1 << i
		}
	}
	return x
}

// BruteForce enumerates every configuration in increasing IntToSpins order and returns the lowest energy.
// On ties the first enumerated configuration is kept.
func BruteForce(p *problem.Problem) (float64, problem.Spins, error) {
	n := p.N()
	if n > maxBruteForceSpins {
		return math.NaN(), nil, errors.Errorf("%d spins, at most %d", n, maxBruteForceSpins)
	}

	best := math.Inf(1)
	var bestSpins problem.Spins
	numStates := uint64(1) << n
	for x := uint64(0); x < numStates; x++ {
		s := IntToSpins(x, n)
		e, err := p.Energy(s)
		if err != nil {
			return math.NaN(), nil, errors.Wrap(err, "")
		}
		if e < best {
			best, bestSpins = e, s
		}
	}
	return best, bestSpins, nil
}

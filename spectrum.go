package qanneal

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/fumin/qanneal/mat"
	"github.com/fumin/qanneal/problem"
)

// Spectrum returns all eigenpairs of h in ascending order.
func Spectrum(h *mat.Operator) ([]mat.ValVec, error) {
	vvs, err := mat.Eigen(h, true)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return vvs, nil
}

// GroundState returns the lowest eigenvalue of h and its unit eigenvector.
// For a degenerate ground energy the eigenvector is any one of the degenerate eigenvectors.
func GroundState(h *mat.Operator) (float64, []complex128, error) {
	vvs, err := Spectrum(h)
	if err != nil {
		return math.NaN(), nil, errors.Wrap(err, "")
	}
	ground := 0
	for i, vv := range vvs {
		if vv.Val < vvs[ground].Val {
			ground = i
		}
	}
	return vvs[ground].Val, vvs[ground].Vec, nil
}

// DominantSpinConfig returns the basis state of vec with the largest probability, decoded with IndexToSpins.
// On ties the lowest basis index wins.
func DominantSpinConfig(vec []complex128, n int) (problem.Spins, float64, error) {
	if n < 1 || n > maxIndexSpins || len(vec) != 1<<n {
		return nil, math.NaN(), errors.Wrapf(problem.ErrValidation, "vector of length %d for %d spins", len(vec), n)
	}
	best, bestProb := 0, -1.0
	for i, amplitude := range vec {
		prob := real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
		if prob > bestProb {
			best, bestProb = i, prob
		}
	}
	return IndexToSpins(best, n), bestProb, nil
}

type Statistics struct {
	EigenValue []float64
	// SiteZ is the expectation of Z_i in the ground state.
	SiteZ         []float64
	Magnetization float64
	Dominant      problem.Spins
	Probability   float64
}

// GetStatistics summarizes the ground state of a spectrum of n spins.
func GetStatistics(n int, vvs []mat.ValVec) (Statistics, error) {
	if len(vvs) == 0 {
		return Statistics{}, errors.Errorf("empty spectrum")
	}
	var stats Statistics
	for _, vv := range vvs {
		stats.EigenValue = append(stats.EigenValue, vv.Val)
	}
	ground := vvs[0]
	if n < 1 || n > maxIndexSpins || len(ground.Vec) != 1<<n {
		return Statistics{}, errors.Errorf("%d %d", len(ground.Vec), 1<<n)
	}

	stats.SiteZ = make([]float64, n)
	var totalProb float64
	for i, state := range basis(n) {
		amplitude := ground.Vec[i]
		probability := real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
		totalProb += probability
		for k, spin := range state {
			stats.SiteZ[k] += probability * float64(spin)
		}
	}
	if !scalar.EqualWithinAbs(totalProb, 1, 1e-6) {
		return Statistics{}, errors.Errorf("%f", totalProb)
	}
	stats.Magnetization = floats.Sum(stats.SiteZ) / float64(n)

	var err error
	stats.Dominant, stats.Probability, err = DominantSpinConfig(ground.Vec, n)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "")
	}
	return stats, nil
}

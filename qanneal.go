// Package qanneal builds the quantum Hamiltonians of classical Ising problems and solves them by exact diagonalization.
//
// Operators act on the 2^N dimensional space of N spins.
// Spin 0 is the outermost factor of every Kronecker product, so reading the bits of a basis index from the most significant
// to the least significant gives spins 0 to N-1, and a 0 bit is the +1 eigenstate of Pauli Z.
//
// Everything is dense, memory grows as 4^N and diagonalization as 8^N, which limits N to about 12.
package qanneal

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qanneal/mat"
	"github.com/fumin/qanneal/problem"
)

// maxIndexSpins bounds n so that 1<<n fits in an int.
const maxIndexSpins = 62

// ErrSchedule is returned for an interpolation parameter outside [0, 1].
var ErrSchedule = errors.New("invalid schedule")

var (
	identity = mat.COOIdentity(2)
	pauliX   = mat.M(mat.PauliX)
	pauliZ   = mat.M(mat.PauliZ)
)

// PauliZ returns Z acting on spin i of n spins.
func PauliZ(n, i int) (*mat.Operator, error) {
	if i < 0 || i >= n {
		return nil, errors.Errorf("spin %d out of range [0, %d)", i, n)
	}
	return pauliString(n, map[int]*mat.COO{i: pauliZ}).Dense(), nil
}

// PauliX returns X acting on spin i of n spins.
func PauliX(n, i int) (*mat.Operator, error) {
	if i < 0 || i >= n {
		return nil, errors.Errorf("spin %d out of range [0, %d)", i, n)
	}
	return pauliString(n, map[int]*mat.COO{i: pauliX}).Dense(), nil
}

// pauliString returns the Kronecker product over spins 0..n-1 of ops, with the identity on spins absent from ops.
func pauliString(n int, ops map[int]*mat.COO) *mat.COO {
	system := mat.COOZeros(1, 1)
	system.Scalar(1)
	for k := 0; k < n; k++ {
		op, ok := ops[k]
		switch {
		case ok:
			system.Kron(op)
		default:
			system.Kron(identity)
		}
	}
	return system
}

// Schedule holds the amplitudes of the interpolation H(s) = A(s) H_d + B(s) H_p,
// with A(s) = A0 (1-s) and B(s) = B0 s.
type Schedule struct {
	A0 float64
	B0 float64
}

// DefaultSchedule returns A0 = B0 = 1.
func DefaultSchedule() Schedule {
	return Schedule{A0: 1, B0: 1}
}

func (sc Schedule) A(s float64) float64 { return sc.A0 * (1 - s) }
func (sc Schedule) B(s float64) float64 { return sc.B0 * s }

// ProblemHamiltonian returns H_p = -Σ J_ij Z_i Z_j - Σ h_i Z_i.
// It is diagonal with the classical energy of each basis state, but kept dense to compose with the driver.
func ProblemHamiltonian(p *problem.Problem) *mat.Operator {
	h := mat.NewOperator(1 << p.N())
	addProblem(h, p, 1)
	return h
}

// DriverHamiltonian returns H_d = -Σ X_i.
func DriverHamiltonian(p *problem.Problem) *mat.Operator {
	h := mat.NewOperator(1 << p.N())
	addDriver(h, p.N(), 1)
	return h
}

// TotalHamiltonian returns H(s) = A(s) H_d + B(s) H_p.
// s = 0 is the driver Hamiltonian and s = 1 the problem Hamiltonian.
func TotalHamiltonian(p *problem.Problem, s float64, sched Schedule) (*mat.Operator, error) {
	if !(s >= 0 && s <= 1) {
		return nil, errors.Wrapf(ErrSchedule, "s = %v", s)
	}
	h := mat.NewOperator(1 << p.N())
	if a := sched.A(s); a != 0 {
		addDriver(h, p.N(), a)
	}
	if b := sched.B(s); b != 0 {
		addProblem(h, p, b)
	}
	return h, nil
}

// addProblem adds c H_p to h.
// The Pauli strings are summed sparsely and densified once.
func addProblem(h *mat.Operator, p *problem.Problem, c float64) {
	n := p.N()
	terms := mat.COOZeros(1<<n, 1<<n)
	for _, cp := range p.Couplings() {
		terms.Add(complex(-c*cp.W, 0), pauliString(n, map[int]*mat.COO{cp.I: pauliZ, cp.J: pauliZ}))
	}
	for _, f := range p.Fields() {
		terms.Add(complex(-c*f.H, 0), pauliString(n, map[int]*mat.COO{f.I: pauliZ}))
	}
	terms.AddToDense(h, 1)
}

// addDriver adds c H_d to h.
func addDriver(h *mat.Operator, n int, c float64) {
	terms := mat.COOZeros(1<<n, 1<<n)
	for i := 0; i < n; i++ {
		terms.Add(complex(-c, 0), pauliString(n, map[int]*mat.COO{i: pauliX}))
	}
	terms.AddToDense(h, 1)
}

// ProblemDiagonal returns the classical energy of every basis state, which is the diagonal of ProblemHamiltonian.
// It is computed without any operator, by decoding each basis index with IndexToSpins.
func ProblemDiagonal(p *problem.Problem) ([]float64, error) {
	diag := make([]float64, 0, 1<<p.N())
	for i, state := range basis(p.N()) {
		e, err := p.Energy(state)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		diag = append(diag, e)
	}
	return diag, nil
}

// IndexToSpins decodes a basis index of n spins.
// The bits of idx from the most significant to the least significant are spins 0 to n-1, and a 0 bit is spin +1.
// Compared with classical.IntToSpins both the bit order and the polarity are reversed,
// and both agree with the Pauli Z eigenvalues of the same configuration.
func IndexToSpins(idx, n int) problem.Spins {
	s := make(problem.Spins, n)
	indexSpins(s, idx)
	return s
}

func indexSpins(s problem.Spins, idx int) {
	n := len(s)
	for i := range s {
		switch (idx >> (n - 1 - i)) & 1 {
		case 0:
			s[i] = 1
		default:
			s[i] = -1
		}
	}
}

// SpinsToIndex is the inverse of IndexToSpins.
func SpinsToIndex(s problem.Spins) int {
	idx := 0
	for i, v := range s {
		if v == -1 {
			idx |= 1 << (len(s) - 1 - i)
		}
	}
	return idx
}

// basis iterates over the basis states of n spins in index order.
// The yielded slice is reused between iterations.
func basis(n int) func(yield func(int, problem.Spins) bool) {
	state := make(problem.Spins, n)
	return func(yield func(int, problem.Spins) bool) {
		numStates := 1 << n
		for i := range numStates {
			indexSpins(state, i)
			if !yield(i, state) {
				return
			}
		}
	}
}

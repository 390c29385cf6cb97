package mat

import (
	"cmp"
	"math/cmplx"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// HermitianTol is the tolerance of the Hermitian check, and below it imaginary parts are treated as noise.
const HermitianTol = 1e-9

// ErrNotHermitian is returned when an operator is not Hermitian.
var ErrNotHermitian = errors.New("operator is not hermitian")

type ValVec struct {
	Val float64
	Vec []complex128
}

// IsHermitian reports whether h equals its conjugate transpose within tol.
func IsHermitian(h *Operator, tol float64) bool {
	r, c := h.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if cmplx.Abs(h.At(i, j)-cmplx.Conj(h.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

func isReal(h *Operator, tol float64) bool {
	raw := h.RawCMatrix()
	for i := 0; i < raw.Rows; i++ {
		for _, v := range raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols] {
			if imag(v) > tol || imag(v) < -tol {
				return false
			}
		}
	}
	return true
}

// Eigen computes the eigenvalues, and optionally the unit eigenvectors, of the Hermitian operator h.
// The result is sorted by ascending eigenvalue.
// Among degenerate eigenvalues the order of eigenvectors is whatever LAPACK returns.
func Eigen(h *Operator, vectors bool) ([]ValVec, error) {
	if !IsHermitian(h, HermitianTol) {
		r, c := h.Dims()
		return nil, errors.Wrapf(ErrNotHermitian, "%dx%d", r, c)
	}

	var vvs []ValVec
	var err error
	switch {
	case isReal(h, HermitianTol):
		vvs, err = eigenReal(h, vectors)
	default:
		vvs, err = eigenEmbedded(h, vectors)
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	slices.SortStableFunc(vvs, func(a, b ValVec) int { return cmp.Compare(a.Val, b.Val) })
	return vvs, nil
}

func eigenReal(h *Operator, vectors bool) ([]ValVec, error) {
	n, _ := h.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, real(h.At(i, j)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, vectors); !ok {
		return nil, errors.Errorf("eigen decomposition of %dx%d failed", n, n)
	}
	vals := eig.Values(nil)
	vvs := make([]ValVec, 0, n)
	var vecs mat.Dense
	if vectors {
		eig.VectorsTo(&vecs)
	}
	for i, v := range vals {
		vv := ValVec{Val: v}
		if vectors {
			vv.Vec = make([]complex128, n)
			for j := range vv.Vec {
				vv.Vec[j] = complex(vecs.At(j, i), 0)
			}
		}
		vvs = append(vvs, vv)
	}
	return vvs, nil
}

// eigenEmbedded diagonalizes h = A + iB through the real symmetric matrix
//
//	[A -B]
//	[B  A]
//
// whose spectrum is that of h with every eigenvalue appearing twice.
// An eigenvector [x; y] of the embedding maps to the eigenvector x + iy of h.
func eigenEmbedded(h *Operator, vectors bool) ([]ValVec, error) {
	n, _ := h.Dims()
	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := h.At(i, j)
			sym.SetSym(i, j, real(v))
			sym.SetSym(n+i, n+j, real(v))
			sym.SetSym(i, n+j, -imag(v))
			if i != j {
				sym.SetSym(j, n+i, imag(v))
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, vectors); !ok {
		return nil, errors.Errorf("eigen decomposition of %dx%d failed", n, n)
	}
	vals := eig.Values(nil)
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(vals[a], vals[b]) })

	var vecs mat.Dense
	if vectors {
		eig.VectorsTo(&vecs)
	}
	vvs := make([]ValVec, 0, n)
	// Eigenvalues come in pairs, keep one of each.
	for k := 0; k < 2*n; k += 2 {
		col := order[k]
		vv := ValVec{Val: vals[col]}
		if vectors {
			vv.Vec = make([]complex128, n)
			for j := range vv.Vec {
				vv.Vec[j] = complex(vecs.At(j, col), vecs.At(n+j, col))
			}
		}
		vvs = append(vvs, vv)
	}
	return vvs, nil
}

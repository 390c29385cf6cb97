// Package problem holds classical Ising optimization instances.
//
// The energy of a spin configuration σ is
//
//	E(σ) = -Σ J_ij σ_i σ_j - Σ h_i σ_i
//
// where the first sum runs over the couplings and the second over the local fields.
package problem

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"
)

var (
	// ErrValidation is returned when a spin configuration does not fit a problem.
	ErrValidation = errors.New("invalid spin configuration")
	// ErrInvalidProblem is returned when couplings or fields reference bad indices.
	ErrInvalidProblem = errors.New("invalid problem")
)

// Spins is a spin configuration, each entry is +1 or -1.
type Spins []int8

func (s Spins) Clone() Spins {
	return slices.Clone(s)
}

func (s Spins) String() string {
	b := make([]byte, 0, 3*len(s)+2)
	b = append(b, '[')
	for i, v := range s {
		if i > 0 {
			b = append(b, ' ')
		}
		b = fmt.Appendf(b, "%d", v)
	}
	b = append(b, ']')
	return string(b)
}

// Coupling is the interaction J between spins I and J, with I < J.
type Coupling struct {
	I int     `json:"i"`
	J int     `json:"j"`
	W float64 `json:"w"`
}

// Field is the local field H acting on spin I.
type Field struct {
	I int     `json:"i"`
	H float64 `json:"h"`
}

type neighbor struct {
	j int
	w float64
}

// Problem is an immutable Ising instance.
type Problem struct {
	n         int
	couplings []Coupling
	fields    []Field

	// h is the field of every spin, zero where no field is given.
	h []float64
	// adj lists the couplings of every spin.
	adj [][]neighbor
}

// New creates a problem of n spins.
// Coupling keys are unordered pairs, {0, 1} and {1, 0} name the same coupling and must not both be present.
func New(n int, couplings map[[2]int]float64, fields map[int]float64) (*Problem, error) {
	cs := make([]Coupling, 0, len(couplings))
	for ij, w := range couplings {
		cs = append(cs, Coupling{I: ij[0], J: ij[1], W: w})
	}
	fs := make([]Field, 0, len(fields))
	for i, h := range fields {
		fs = append(fs, Field{I: i, H: h})
	}
	p, err := build(n, cs, fs)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return p, nil
}

func build(n int, couplings []Coupling, fields []Field) (*Problem, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidProblem, "%d spins", n)
	}
	p := &Problem{
		n:         n,
		couplings: make([]Coupling, 0, len(couplings)),
		fields:    make([]Field, 0, len(fields)),
		h:         make([]float64, n),
		adj:       make([][]neighbor, n),
	}

	for _, c := range couplings {
		if c.I > c.J {
			c.I, c.J = c.J, c.I
		}
		switch {
		case c.I < 0 || c.J >= n:
			return nil, errors.Wrapf(ErrInvalidProblem, "coupling %d %d out of range [0, %d)", c.I, c.J, n)
		case c.I == c.J:
			return nil, errors.Wrapf(ErrInvalidProblem, "self coupling %d", c.I)
		case math.IsNaN(c.W) || math.IsInf(c.W, 0):
			return nil, errors.Wrapf(ErrInvalidProblem, "coupling %d %d weight %v", c.I, c.J, c.W)
		}
		p.couplings = append(p.couplings, c)
	}
	slices.SortFunc(p.couplings, func(a, b Coupling) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	for k := 1; k < len(p.couplings); k++ {
		a, b := p.couplings[k-1], p.couplings[k]
		if a.I == b.I && a.J == b.J {
			return nil, errors.Wrapf(ErrInvalidProblem, "duplicate coupling %d %d", a.I, a.J)
		}
	}

	for _, f := range fields {
		switch {
		case f.I < 0 || f.I >= n:
			return nil, errors.Wrapf(ErrInvalidProblem, "field %d out of range [0, %d)", f.I, n)
		case math.IsNaN(f.H) || math.IsInf(f.H, 0):
			return nil, errors.Wrapf(ErrInvalidProblem, "field %d weight %v", f.I, f.H)
		}
		p.fields = append(p.fields, f)
	}
	slices.SortFunc(p.fields, func(a, b Field) int { return cmp.Compare(a.I, b.I) })
	for k := 1; k < len(p.fields); k++ {
		if p.fields[k-1].I == p.fields[k].I {
			return nil, errors.Wrapf(ErrInvalidProblem, "duplicate field %d", p.fields[k].I)
		}
	}

	for _, c := range p.couplings {
		p.adj[c.I] = append(p.adj[c.I], neighbor{j: c.J, w: c.W})
		p.adj[c.J] = append(p.adj[c.J], neighbor{j: c.I, w: c.W})
	}
	for _, f := range p.fields {
		p.h[f.I] = f.H
	}
	return p, nil
}

// N returns the number of spins.
func (p *Problem) N() int { return p.n }

// Couplings returns the couplings ordered by (I, J).
func (p *Problem) Couplings() []Coupling { return slices.Clone(p.couplings) }

// Fields returns the fields ordered by I.
func (p *Problem) Fields() []Field { return slices.Clone(p.fields) }

// Energy returns the energy of s.
func (p *Problem) Energy(s Spins) (float64, error) {
	if len(s) != p.n {
		return math.NaN(), errors.Wrapf(ErrValidation, "%d spins, expected %d", len(s), p.n)
	}
	for i, v := range s {
		if v != 1 && v != -1 {
			return math.NaN(), errors.Wrapf(ErrValidation, "spin %d is %d", i, v)
		}
	}

	var e float64
	for _, c := range p.couplings {
		e += -c.W * float64(s[c.I]) * float64(s[c.J])
	}
	for _, f := range p.fields {
		e += -f.H * float64(s[f.I])
	}
	return e, nil
}

// Contribution returns the part of the energy that involves spin i.
// s must be a valid configuration of p.
func (p *Problem) Contribution(s Spins, i int) float64 {
	return -float64(s[i]) * p.localField(s, i)
}

// FlipDelta returns E(s with spin i flipped) - E(s) without recomputing the total energy.
// Flipping σ_i negates every term containing it, so the delta is -2 times the contribution of spin i.
// s must be a valid configuration of p.
func (p *Problem) FlipDelta(s Spins, i int) float64 {
	si := float64(s[i])
	var de float64
	for _, nb := range p.adj[i] {
		// -J σ_i σ_j becomes +J σ_i σ_j.
		de += 2 * nb.w * si * float64(s[nb.j])
	}
	de += 2 * p.h[i] * si
	return de
}

// localField is Σ_j J_ij σ_j + h_i.
func (p *Problem) localField(s Spins, i int) float64 {
	var f float64
	for _, nb := range p.adj[i] {
		f += nb.w * float64(s[nb.j])
	}
	return f + p.h[i]
}

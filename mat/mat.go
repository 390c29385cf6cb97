package mat

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var (
	PauliX = [][]complex128{
		{0, 1},
		{1, 0},
	}
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
)

// Operator is a dense complex square matrix acting on the state space of a spin system.
type Operator = mat.CDense

// NewOperator returns a dim x dim zero operator.
func NewOperator(dim int) *Operator {
	return mat.NewCDense(dim, dim, nil)
}

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format, with entries kept in row major order.
type COO struct {
	rows int
	cols int
	Data []vRowCol
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]vRowCol, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	m := &COO{Data: make([]vRowCol, 0)}
	m.Zeros(rows, cols)
	return m
}

func COOIdentity(rows int) *COO {
	m := COOZeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

// Scalar resets m to the 1x1 matrix v, the identity of Kron when v is 1.
func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.Data = m.Data[:0]
	if v != 0 {
		m.Data = append(m.Data, vRowCol{v: v, row: 0, col: 0})
	}
}

// Add sets a to a + c*b.
func (a *COO) Add(c complex128, b *COO) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	sum := make([]vRowCol, 0, len(a.Data)+len(b.Data))
	i, j := 0, 0
	for i < len(a.Data) || j < len(b.Data) {
		var v vRowCol
		switch {
		case j == len(b.Data):
			v = a.Data[i]
			i++
		case i == len(a.Data):
			v = vRowCol{v: c * b.Data[j].v, row: b.Data[j].row, col: b.Data[j].col}
			j++
		default:
			switch rowMajor(a.Data[i], b.Data[j]) {
			case -1:
				v = a.Data[i]
				i++
			case 1:
				v = vRowCol{v: c * b.Data[j].v, row: b.Data[j].row, col: b.Data[j].col}
				j++
			default:
				v = vRowCol{v: a.Data[i].v + c*b.Data[j].v, row: a.Data[i].row, col: a.Data[i].col}
				i++
				j++
			}
		}
		if v.v == 0 {
			continue
		}
		sum = append(sum, v)
	}
	a.Data = sum
}

// Kron sets a to the Kronecker product a ⊗ b.
// a is the outer factor, so a's indices become the most significant part of the result's indices.
func (a *COO) Kron(b *COO) {
	data := make([]vRowCol, 0, len(a.Data)*len(b.Data))
	for _, av := range a.Data {
		for _, bv := range b.Data {
			v := av.v * bv.v
			if v == 0 {
				continue
			}
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			data = append(data, vRowCol{v: v, row: ky, col: kx})
		}
	}
	a.rows, a.cols = a.rows*b.rows, a.cols*b.cols
	a.Data = data
	slices.SortFunc(a.Data, rowMajor)
}

// Dense returns m as a gonum matrix.
func (m *COO) Dense() *mat.CDense {
	d := mat.NewCDense(m.rows, m.cols, nil)
	m.AddToDense(d, 1)
	return d
}

// AddToDense adds c*m to dst.
func (m *COO) AddToDense(dst *mat.CDense, c complex128) {
	if r, cols := dst.Dims(); r != m.rows || cols != m.cols {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", r, cols, m.rows, m.cols))
	}
	raw := dst.RawCMatrix()
	for _, v := range m.Data {
		raw.Data[v.row*raw.Stride+v.col] += c * v.v
	}
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

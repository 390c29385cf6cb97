package problem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// File is the YAML representation of a problem.
// The spin count is keyed "spins", since YAML 1.1 reads a bare n as false.
//
//	spins: 3
//	couplings:
//	  - {i: 0, j: 1, w: 1.0}
//	fields:
//	  - {i: 2, h: -0.3}
type File struct {
	N         int        `json:"spins"`
	Couplings []Coupling `json:"couplings"`
	Fields    []Field    `json:"fields,omitempty"`
}

// Parse parses a YAML or JSON problem.
func Parse(data []byte) (*Problem, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "")
	}
	p, err := build(f.N, f.Couplings, f.Fields)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return p, nil
}

// Marshal encodes p as YAML.
func (p *Problem) Marshal() ([]byte, error) {
	f := File{N: p.n, Couplings: p.Couplings(), Fields: p.Fields()}
	b, err := yaml.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}

// ReadFile reads a problem from path.
// Files ending in .yaml, .yml or .json are parsed by Parse, anything else by ReadQubist.
func ReadFile(path string) (*Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		p, err := Parse(b)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	p, err := ReadQubist(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// ReadQubist reads a problem in the Qubist text format.
// The header line holds the number of spins and the number of terms, each following line is "i j w".
// A line with i == j is a field.
// Qubist minimizes Σ h_i σ_i + Σ J_ij σ_i σ_j, so weights are negated into this package's convention.
func ReadQubist(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	lineNum := 0
	n := -1
	couplings := make([]Coupling, 0)
	fields := make([]Field, 0)
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fs := strings.Fields(line)

		if n < 0 {
			if len(fs) != 2 {
				return nil, errors.Errorf("line %d: header %q", lineNum, line)
			}
			var err error
			n, err = strconv.Atoi(fs[0])
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("line %d", lineNum))
			}
			continue
		}

		if len(fs) != 3 {
			return nil, errors.Errorf("line %d: %q", lineNum, line)
		}
		i, err := strconv.Atoi(fs[0])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("line %d", lineNum))
		}
		j, err := strconv.Atoi(fs[1])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("line %d", lineNum))
		}
		w, err := strconv.ParseFloat(fs[2], 64)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("line %d", lineNum))
		}

		switch {
		case i == j:
			fields = append(fields, Field{I: i, H: -w})
		default:
			couplings = append(couplings, Coupling{I: i, J: j, W: -w})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if n < 0 {
		return nil, errors.Errorf("missing header")
	}

	p, err := build(n, couplings, fields)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return p, nil
}

package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softraster/pkg/math3d"
)

// ErrMalformed is returned for OBJ lines that cannot be parsed.
var ErrMalformed = errors.New("malformed obj")

// ParsePolicy selects how numeric attribute fields that fail to parse are
// handled.
type ParsePolicy int

const (
	// Lenient replaces unparsable numbers with 0 and counts them in
	// Mesh.Defaulted.
	Lenient ParsePolicy = iota
	// Strict fails on the first unparsable number.
	Strict
)

func (p ParsePolicy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("ParsePolicy(%d)", int(p))
	}
}

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string, policy ParsePolicy) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads v, vt, vn and triangular f records. Face corners must be
// v/vt/vn triples with 1-based indices. Other records are ignored.
// The returned mesh is validated and has its bounds calculated.
func ParseOBJ(r io.Reader, policy ParsePolicy) (*Mesh, error) {
	p := objParser{mesh: NewMesh("obj"), policy: policy}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if err := p.mesh.Validate(); err != nil {
		return nil, err
	}
	p.mesh.CalculateBounds()

	if p.mesh.Defaulted > 0 {
		Logger().Warn("obj: defaulted unparsable fields to zero", "count", p.mesh.Defaulted)
	}
	return p.mesh, nil
}

type objParser struct {
	mesh   *Mesh
	policy ParsePolicy
	line   int
}

func (p *objParser) parseLine(text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := p.floats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.mesh.Positions = append(p.mesh.Positions, math3d.V3(v[0], v[1], v[2]))
	case "vt":
		v, err := p.floats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.mesh.UVs = append(p.mesh.UVs, math3d.V2(v[0], v[1]))
	case "vn":
		v, err := p.floats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.mesh.Normals = append(p.mesh.Normals, math3d.V3(v[0], v[1], v[2]))
	case "f":
		return p.face(fields[1:])
	}
	return nil
}

// floats parses the first n fields. Missing fields are treated like
// malformed ones.
func (p *objParser) floats(fields []string, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range n {
		if i >= len(fields) {
			if err := p.malformed(fmt.Sprintf("missing component %d", i)); err != nil {
				return nil, err
			}
			continue
		}
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			if err := p.malformed(fmt.Sprintf("bad number %q", fields[i])); err != nil {
				return nil, err
			}
			continue
		}
		out[i] = f
	}
	return out, nil
}

func (p *objParser) malformed(what string) error {
	if p.policy == Strict {
		return fmt.Errorf("%w: line %d: %s", ErrMalformed, p.line, what)
	}
	p.mesh.Defaulted++
	return nil
}

// face parses "a/b/c a/b/c a/b/c". Index errors are fatal in either policy
// since a defaulted index would silently reference another vertex.
func (p *objParser) face(fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("%w: line %d: face has %d corners, want 3", ErrMalformed, p.line, len(fields))
	}

	var f Face
	for c, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) != 3 {
			return fmt.Errorf("%w: line %d: corner %q is not v/vt/vn", ErrMalformed, p.line, field)
		}
		idx := [3]int{}
		for k, s := range parts {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%w: line %d: bad index %q", ErrMalformed, p.line, s)
			}
			idx[k] = n - 1
		}
		f.V[c], f.UV[c], f.N[c] = idx[0], idx[1], idx[2]
	}
	p.mesh.Faces = append(p.mesh.Faces, f)
	return nil
}

// Package formats reads and writes mesh interchange formats.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/shatter/pkg/math"
)

// OBJ format errors.
var (
	ErrOBJSyntax       = errors.New("malformed OBJ statement")
	ErrOBJIndex        = errors.New("OBJ index out of range")
	ErrOBJNoGeometry   = errors.New("OBJ file has no faces")
	ErrOBJShortPolygon = errors.New("OBJ face has fewer than 3 vertices")
)

// OBJSubmesh is a triangle list sharing one material.
type OBJSubmesh struct {
	Material string
	Indices  []int
}

// OBJ is a parsed Wavefront OBJ file. Every distinct v/vt/vn combination
// becomes one vertex, so the attribute slices are parallel.
type OBJ struct {
	Positions []math.Vec3
	Normals   []math.Vec3 // empty if the file has no normals
	UVs       []math.Vec2 // empty if the file has no texture coordinates
	Submeshes []OBJSubmesh
}

// TriangleCount returns the number of triangles across all submeshes.
func (o *OBJ) TriangleCount() int {
	n := 0
	for _, s := range o.Submeshes {
		n += len(s.Indices) / 3
	}
	return n
}

// SubmeshIndices returns the index lists in submesh order.
func (o *OBJ) SubmeshIndices() [][]int {
	out := make([][]int, len(o.Submeshes))
	for i, s := range o.Submeshes {
		out[i] = s.Indices
	}
	return out
}

// objRef is one corner of a face; -1 marks a missing attribute.
type objRef struct {
	v, vt, vn int
}

type objParser struct {
	positions []math.Vec3
	uvs       []math.Vec2
	normals   []math.Vec3

	out     *OBJ
	unified map[objRef]int
	refs    []objRef
	current int
	byName  map[string]int
	hasUV   bool
	hasNorm bool
	errs    error
	lineNo  int
}

// ParseOBJ parses an OBJ stream. Polygons are fan-triangulated, negative
// (relative) indices are resolved, and each usemtl starts or resumes a
// submesh. All malformed statements are reported together.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	p := &objParser{
		out:     &OBJ{},
		unified: make(map[objRef]int),
		byName:  make(map[string]int),
		current: -1,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		p.lineNo++
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	if p.errs != nil {
		return nil, p.errs
	}
	return p.finish()
}

// ParseOBJFile reads and parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

func (p *objParser) fail(err error, format string, args ...any) {
	p.errs = multierr.Append(p.errs, fmt.Errorf("line %d: %w: %s", p.lineNo, err, fmt.Sprintf(format, args...)))
}

func (p *objParser) line(s string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "v":
		if v, ok := p.floats(fields[1:], 3); ok {
			p.positions = append(p.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		}
	case "vt":
		if v, ok := p.floats(fields[1:], 2); ok {
			p.uvs = append(p.uvs, math.Vec2{X: v[0], Y: v[1]})
		}
	case "vn":
		if v, ok := p.floats(fields[1:], 3); ok {
			p.normals = append(p.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		}
	case "f":
		p.face(fields[1:])
	case "usemtl":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		p.use(name)
	default:
		// o, g, s, mtllib and friends carry nothing we need.
	}
}

// floats parses at least n leading floats; extra components (w) are ignored.
func (p *objParser) floats(fields []string, n int) ([]float32, bool) {
	if len(fields) < n {
		p.fail(ErrOBJSyntax, "want %d components, got %d", n, len(fields))
		return nil, false
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			p.fail(ErrOBJSyntax, "bad number %q", fields[i])
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

func (p *objParser) use(material string) {
	if i, ok := p.byName[material]; ok {
		p.current = i
		return
	}
	p.byName[material] = len(p.out.Submeshes)
	p.current = len(p.out.Submeshes)
	p.out.Submeshes = append(p.out.Submeshes, OBJSubmesh{Material: material})
}

func (p *objParser) face(corners []string) {
	if len(corners) < 3 {
		p.fail(ErrOBJShortPolygon, "%d vertices", len(corners))
		return
	}
	idx := make([]int, 0, len(corners))
	for _, c := range corners {
		ref, ok := p.ref(c)
		if !ok {
			return
		}
		idx = append(idx, p.vertex(ref))
	}
	if p.current < 0 {
		p.use("")
	}
	sub := &p.out.Submeshes[p.current]
	for i := 1; i+1 < len(idx); i++ {
		sub.Indices = append(sub.Indices, idx[0], idx[i], idx[i+1])
	}
}

// ref parses one v, v/vt, v//vn or v/vt/vn corner.
func (p *objParser) ref(s string) (objRef, bool) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		p.fail(ErrOBJSyntax, "bad face corner %q", s)
		return objRef{}, false
	}
	ref := objRef{v: -1, vt: -1, vn: -1}
	var ok bool
	if ref.v, ok = p.resolve(parts[0], len(p.positions)); !ok {
		return objRef{}, false
	}
	if len(parts) > 1 && parts[1] != "" {
		if ref.vt, ok = p.resolve(parts[1], len(p.uvs)); !ok {
			return objRef{}, false
		}
		p.hasUV = true
	}
	if len(parts) > 2 && parts[2] != "" {
		if ref.vn, ok = p.resolve(parts[2], len(p.normals)); !ok {
			return objRef{}, false
		}
		p.hasNorm = true
	}
	return ref, true
}

// resolve turns a 1-based or negative OBJ index into a 0-based one.
func (p *objParser) resolve(s string, n int) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil {
		p.fail(ErrOBJSyntax, "bad index %q", s)
		return 0, false
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		p.fail(ErrOBJIndex, "%s of %d", s, n)
		return 0, false
	}
	return i, true
}

func (p *objParser) vertex(ref objRef) int {
	if i, ok := p.unified[ref]; ok {
		return i
	}
	i := len(p.refs)
	p.unified[ref] = i
	p.refs = append(p.refs, ref)
	return i
}

func (p *objParser) finish() (*OBJ, error) {
	out := p.out
	kept := out.Submeshes[:0]
	for _, s := range out.Submeshes {
		if len(s.Indices) > 0 {
			kept = append(kept, s)
		}
	}
	out.Submeshes = kept
	if len(out.Submeshes) == 0 {
		return nil, ErrOBJNoGeometry
	}

	out.Positions = make([]math.Vec3, len(p.refs))
	if p.hasUV {
		out.UVs = make([]math.Vec2, len(p.refs))
	}
	if p.hasNorm {
		out.Normals = make([]math.Vec3, len(p.refs))
	}
	for i, ref := range p.refs {
		out.Positions[i] = p.positions[ref.v]
		if p.hasUV && ref.vt >= 0 {
			out.UVs[i] = p.uvs[ref.vt]
		}
		if p.hasNorm && ref.vn >= 0 {
			out.Normals[i] = p.normals[ref.vn]
		}
	}
	return out, nil
}

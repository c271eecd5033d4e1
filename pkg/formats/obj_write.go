package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/shatter/pkg/math"
)

// OBJObject is one named mesh to export. Normals and UVs are written only
// when they match Positions in length.
type OBJObject struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Triangles []int
}

// WriteOBJ writes objects as one OBJ stream, one "o" group each.
func WriteOBJ(w io.Writer, objects []OBJObject) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# shatter fragments")

	base := 1
	for _, o := range objects {
		if len(o.Triangles)%3 != 0 {
			return fmt.Errorf("object %s: %w", o.Name, ErrOBJShortPolygon)
		}
		hasUV := len(o.UVs) == len(o.Positions)
		hasNorm := len(o.Normals) == len(o.Positions)

		fmt.Fprintf(bw, "o %s\n", o.Name)
		for _, p := range o.Positions {
			fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
		}
		if hasUV {
			for _, uv := range o.UVs {
				fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
			}
		}
		if hasNorm {
			for _, n := range o.Normals {
				fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
			}
		}
		for i := 0; i < len(o.Triangles); i += 3 {
			bw.WriteString("f")
			for _, idx := range o.Triangles[i : i+3] {
				if idx < 0 || idx >= len(o.Positions) {
					return fmt.Errorf("object %s: %w: %d", o.Name, ErrOBJIndex, idx)
				}
				writeCorner(bw, base+idx, hasUV, hasNorm)
			}
			bw.WriteString("\n")
		}
		base += len(o.Positions)
	}
	return bw.Flush()
}

func writeCorner(w *bufio.Writer, i int, uv, norm bool) {
	switch {
	case uv && norm:
		fmt.Fprintf(w, " %d/%d/%d", i, i, i)
	case uv:
		fmt.Fprintf(w, " %d/%d", i, i)
	case norm:
		fmt.Fprintf(w, " %d//%d", i, i)
	default:
		fmt.Fprintf(w, " %d", i)
	}
}

// WriteOBJFile writes objects to path, creating parent directories.
func WriteOBJFile(path string, objects []OBJObject) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, objects); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

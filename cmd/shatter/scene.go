package main

import (
	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/shatter"
	"github.com/Faultbox/shatter/pkg/formats"
	"github.com/Faultbox/shatter/pkg/math"
)

// object is a scene object backed by a loaded mesh.
type object struct {
	name      string
	mesh      *mesh.Source
	destroyed bool
}

func (o *object) Name() string    { return o.name }
func (o *object) Destroyed() bool { return o.destroyed }

// collider is the box a physics engine would attach to a fragment.
type collider struct {
	center, size math.Vec3
}

// scene is the CLI's stand-in for a game scene: it keeps constructed
// fragments as exportable objects with their colliders.
type scene struct {
	objects   []*object
	fragments []formats.OBJObject
	colliders []collider
}

func (s *scene) add(name string, src *mesh.Source) *object {
	o := &object{name: name, mesh: src}
	s.objects = append(s.objects, o)
	return o
}

// Construct implements shatter.Constructor.
func (s *scene) Construct(req *shatter.Request, index int, f shatter.Fragment) {
	name := shatter.FragmentName(index)
	if len(s.objects) > 1 {
		name = req.Target.Name() + "_" + name
	}
	s.fragments = append(s.fragments, formats.OBJObject{
		Name:      name,
		Positions: f.Positions,
		Normals:   f.Normals,
		UVs:       f.UVs,
		Triangles: f.Triangles,
	})

	lo, hi := f.Bounds()
	s.colliders = append(s.colliders, collider{
		center: lo.Lerp(hi, 0.5),
		size:   hi.Sub(lo),
	})
}

// largestExtent returns the longest collider side in the scene.
func (s *scene) largestExtent() float32 {
	var ext float32
	for _, c := range s.colliders {
		ext = max(ext, c.size.X, c.size.Y, c.size.Z)
	}
	return ext
}

// DestroyMesh implements shatter.Host.
func (s *scene) DestroyMesh(req *shatter.Request) {
	if o, ok := req.Target.(*object); ok {
		o.mesh = nil
	}
}

// Destroy implements shatter.Host.
func (s *scene) Destroy(t shatter.Target) {
	if o, ok := t.(*object); ok {
		o.destroyed = true
	}
}

// sourceFromOBJ converts a parsed OBJ into a decomposition source.
func sourceFromOBJ(obj *formats.OBJ) *mesh.Source {
	return &mesh.Source{
		Positions: obj.Positions,
		Normals:   obj.Normals,
		UVs:       obj.UVs,
		Submeshes: obj.SubmeshIndices(),
	}
}

// loadSource reads and validates an OBJ file.
func loadSource(path string) (*mesh.Source, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	src := sourceFromOBJ(obj)
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

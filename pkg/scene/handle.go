package scene

import (
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// HandlePrefix is the type prefix of every primitive handle
const HandlePrefix = "prim"

// Handle names one top-level primitive of a scene, e.g. "prim_01h455vb4pex5vsknk084sn02q"
type Handle string

// NewHandle generates a fresh primitive handle
func NewHandle() Handle {
	return Handle(typeid.MustGenerate(HandlePrefix).String())
}

// ParseHandle validates s as a primitive handle
func ParseHandle(s string) (Handle, error) {
	parsed, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid handle %q: %w", s, err)
	}
	if parsed.Prefix() != HandlePrefix {
		return "", fmt.Errorf("expected prefix %q but got %q in handle %q", HandlePrefix, parsed.Prefix(), s)
	}
	return Handle(s), nil
}

func (h Handle) String() string { return string(h) }

// Kind names the variant of a primitive
func Kind(shape geometry.Shape) string {
	switch shape.(type) {
	case *geometry.Sphere:
		return "sphere"
	case *geometry.Quad:
		return "quad"
	case *geometry.Triangle:
		return "triangle"
	case *geometry.Box:
		return "box"
	case *geometry.Translate:
		return "translate"
	case *geometry.RotateY:
		return "rotate-y"
	case *geometry.ConstantMedium:
		return "constant-medium"
	case *geometry.TriangleMesh:
		return "triangle-mesh"
	case *geometry.HittableList:
		return "list"
	case *geometry.BVHNode:
		return "bvh"
	default:
		return "unknown"
	}
}

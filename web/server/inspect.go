package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	Handle       string         `json:"handle,omitempty"`
	GeometryType string         `json:"geometryType,omitempty"`
	MaterialType string         `json:"materialType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractTextureInfo describes a texture; solid colors report their value
func extractTextureInfo(tex material.Texture) map[string]any {
	switch t := tex.(type) {
	case *material.SolidColor:
		return map[string]any{"type": "solid", "color": hexColor(t.Color), "albedo": vec(t.Color)}
	case *material.CheckerTexture:
		return map[string]any{"type": "checker", "even": extractTextureInfo(t.Even), "odd": extractTextureInfo(t.Odd)}
	case *material.NoiseTexture:
		return map[string]any{"type": "noise", "scale": t.Scale}
	case *material.ImageTexture:
		return map[string]any{"type": "image"}
	default:
		return map[string]any{"type": "unknown"}
	}
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]any) {
	switch m := mat.(type) {
	case *material.Lambertian:
		return "lambertian", map[string]any{"albedo": extractTextureInfo(m.Albedo)}
	case *material.Metal:
		return "metal", map[string]any{"albedo": vec(m.Albedo), "color": hexColor(m.Albedo), "fuzzness": m.Fuzzness}
	case *material.Dielectric:
		return "dielectric", map[string]any{"refractiveIndex": m.RefractiveIndex, "color": "#ffffff"}
	case *material.DiffuseLight:
		return "diffuse_light", map[string]any{"emission": extractTextureInfo(m.Emit)}
	case *material.Isotropic:
		return "isotropic", map[string]any{"albedo": extractTextureInfo(m.Albedo)}
	default:
		return "unknown", map[string]any{}
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) map[string]any {
	bbox := shape.BoundingBox()
	properties := map[string]any{
		"boundingBox": map[string]any{"min": vec(bbox.Min()), "max": vec(bbox.Max())},
	}

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center(0))
		properties["radius"] = geom.Radius
	case *geometry.Quad:
		properties["corner"] = vec(geom.Q)
		properties["u"] = vec(geom.U)
		properties["v"] = vec(geom.V)
		properties["normal"] = vec(geom.Normal)
	case *geometry.Translate:
		properties["offset"] = vec(geom.Offset)
	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.TriangleCount()
	}
	return properties
}

// newInspectResponse converts an inspection to JSON form
func newInspectResponse(in *renderer.Inspection, shape geometry.Shape) InspectResponse {
	materialType, materialProps := extractMaterialInfo(in.Hit.Material)
	return InspectResponse{
		Hit:          true,
		Handle:       in.Handle.String(),
		GeometryType: in.Kind,
		MaterialType: materialType,
		Point:        vec(in.Hit.Point),
		Normal:       vec(in.Hit.Normal),
		Distance:     in.Hit.T,
		FrontFace:    in.Hit.FrontFace,
		Properties: map[string]any{
			"material": materialProps,
			"geometry": extractGeometryInfo(shape),
		},
	}
}

// handleInspect casts the ray through pixel (x, y) and describes what it hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	session, ok := s.newSession(w, r, s.logger)
	if !ok {
		return
	}
	defer session.Close()

	in, hit, err := session.Inspect(x, y)
	if errors.Is(err, renderer.ErrOutOfBounds) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	shape, err := session.Primitive(in.Handle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInspectResponse(in, shape))
}

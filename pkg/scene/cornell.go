package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func init() {
	register(SceneInfo{
		ID:          "cornell",
		DisplayName: "Cornell Box",
		Description: "Classic Cornell box with two rotated blocks and a glass sphere",
		Group:       "Cornell Box",
	}, newCornellScene)
	register(SceneInfo{
		ID:          "cornell-smoke",
		DisplayName: "Cornell Smoke",
		Description: "Cornell box whose blocks are filled with smoke and fog",
		Group:       "Cornell Box",
	}, newCornellSmokeScene)
	register(SceneInfo{
		ID:          "triangle",
		DisplayName: "Triangle Pyramid",
		Description: "Triangle pyramid in a foggy open box",
		Group:       "Geometry",
	}, newTriangleScene)
	register(SceneInfo{
		ID:          "mesh",
		DisplayName: "Triangle Mesh",
		Description: "glTF mesh (RT_MESH_PATH) or an icosahedron in the Cornell box",
		Group:       "Geometry",
	}, newMeshScene)
}

// Cornell box dimensions (standard 555x555x555 units)
const boxSize = 555.0

var (
	cornellRed   = material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	cornellWhite = material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	cornellGreen = material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
)

func cornellCamera() geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:          core.NewVec3(278, 278, -800), // Outside the open side of the box
		LookAt:          core.NewVec3(278, 278, 0),
		Up:              core.NewVec3(0, 1, 0),
		Width:           400,
		AspectRatio:     1,
		VFov:            40,
		FocusDistance:   10,
		SamplesPerPixel: 1,
		MaxDepth:        50,
	}
}

// addCornellWalls adds the side walls and the floor, ceiling and back wall
func addCornellWalls(s *Scene) {
	s.AddAll(
		geometry.NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), cornellGreen),
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), cornellRed),
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), cornellWhite),
		geometry.NewQuad(core.NewVec3(boxSize, boxSize, boxSize), core.NewVec3(-boxSize, 0, 0), core.NewVec3(0, 0, -boxSize), cornellWhite),
		geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), cornellWhite),
	)
}

// cornellBlock builds a box of the given size, rotated about its corner and moved into place
func cornellBlock(size core.Vec3, angle float64, offset core.Vec3) geometry.Shape {
	block := geometry.NewBox(core.Vec3{}, size, cornellWhite)
	return geometry.NewTranslate(geometry.NewRotateY(block, angle), offset)
}

func newCornellScene(random *rand.Rand, opts Options) (*Scene, error) {
	s, err := New("cornell", opts.mergeCameraConfig(cornellCamera()), random)
	if err != nil {
		return nil, err
	}

	addCornellWalls(s)
	light := material.NewDiffuseLight(core.NewVec3(15, 15, 15))
	s.Add(geometry.NewQuad(core.NewVec3(343, 554, 332), core.NewVec3(-130, 0, 0), core.NewVec3(0, 0, -105), light))

	s.Add(cornellBlock(core.NewVec3(165, 330, 165), 15, core.NewVec3(265, 0, 295)))
	s.Add(cornellBlock(core.NewVec3(165, 165, 165), -18, core.NewVec3(130, 0, 65)))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(212, 245, 147), 80, material.NewDielectric(1.5)))

	return s, nil
}

func newCornellSmokeScene(random *rand.Rand, opts Options) (*Scene, error) {
	s, err := New("cornell-smoke", opts.mergeCameraConfig(cornellCamera()), random)
	if err != nil {
		return nil, err
	}

	addCornellWalls(s)
	light := material.NewDiffuseLight(core.NewVec3(7, 7, 7))
	s.Add(geometry.NewQuad(core.NewVec3(113, 554, 127), core.NewVec3(330, 0, 0), core.NewVec3(0, 0, 305), light))

	tall := cornellBlock(core.NewVec3(165, 330, 165), 15, core.NewVec3(265, 0, 295))
	short := cornellBlock(core.NewVec3(165, 165, 165), -18, core.NewVec3(103, 0, 65))
	s.Add(geometry.NewConstantMediumColor(tall, 0.01, core.NewVec3(0, 0, 0)))
	s.Add(geometry.NewConstantMediumColor(short, 0.005, core.NewVec3(1, 1, 1)))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(400, 60, 120), 60, material.NewMetal(core.NewVec3(0.8, 0.85, 0.88), 0)))

	return s, nil
}

func newTriangleScene(random *rand.Rand, opts Options) (*Scene, error) {
	s, err := New("triangle", opts.mergeCameraConfig(cornellCamera()), random)
	if err != nil {
		return nil, err
	}

	white := material.NewLambertian(core.NewVec3(1, 1, 1))
	teal := material.NewLambertian(core.NewVec3(0, 0.9, 1))
	light := material.NewDiffuseLight(core.NewVec3(2.5, 2.5, 2.5))
	sideLight := material.NewDiffuseLight(core.NewVec3(1, 1, 1))

	// Open box: floor, ceiling and back wall, lit from above and from the right
	s.AddAll(
		geometry.NewQuad(core.NewVec3(77.5, 554, 77.5), core.NewVec3(400, 0, 0), core.NewVec3(0, 0, 400), light),
		geometry.NewQuad(core.NewVec3(800, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), sideLight),
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white),
		geometry.NewQuad(core.NewVec3(boxSize, boxSize, boxSize), core.NewVec3(-boxSize, 0, 0), core.NewVec3(0, 0, -boxSize), white),
		geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), white),
	)

	// Pyramid
	apex := core.NewVec3(277.5, 300, 277.5)
	s.AddAll(
		geometry.NewTriangle(core.NewVec3(220, 220, 220), core.NewVec3(335, 220, 220), apex, teal),
		geometry.NewTriangle(core.NewVec3(220, 220, 220), core.NewVec3(220, 220, 335), apex, teal),
		geometry.NewTriangle(core.NewVec3(335, 220, 335), core.NewVec3(220, 220, 335), apex, teal),
		geometry.NewTriangle(core.NewVec3(335, 220, 335), core.NewVec3(335, 220, 220), apex, teal),
		geometry.NewQuad(core.NewVec3(220, 220, 220), core.NewVec3(115, 0, 0), core.NewVec3(0, 0, 115), teal),
	)

	fogBox := geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(-50, boxSize, boxSize), teal)
	s.Add(geometry.NewConstantMediumColor(fogBox, 0.005, core.NewVec3(0.2, 0.2, 0.2)))

	return s, nil
}

func newMeshScene(random *rand.Rand, opts Options) (*Scene, error) {
	s, err := New("mesh", opts.mergeCameraConfig(cornellCamera()), random)
	if err != nil {
		return nil, err
	}

	addCornellWalls(s)
	light := material.NewDiffuseLight(core.NewVec3(15, 15, 15))
	s.Add(geometry.NewQuad(core.NewVec3(343, 554, 332), core.NewVec3(-130, 0, 0), core.NewVec3(0, 0, -105), light))

	vertices, faces := icosahedron()
	if opts.MeshPath != "" {
		data, err := loaders.LoadGLTF(opts.MeshPath)
		if err != nil {
			return nil, err
		}
		vertices, faces = data.Vertices, data.Faces
		opts.logger().Info("loaded mesh", "path", opts.MeshPath, "triangles", data.TriangleCount())
	}

	// Fit the mesh into a 250 unit cube resting on the floor, centered on the Y axis
	fitted := fitVertices(vertices, 250)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.2)
	mesh, err := geometry.NewTriangleMesh(fitted, faces, gold, &geometry.TriangleMeshOptions{Random: random})
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	s.Add(geometry.NewTranslate(geometry.NewRotateY(mesh, 30), core.NewVec3(278, 0, 300)))
	s.Focus = s.Add(geometry.NewSphere(core.NewVec3(120, 60, 120), 60, material.NewDielectric(1.5)))

	return s, nil
}

// fitVertices scales vertices uniformly so the largest extent equals size,
// then centers them on the Y axis with the lowest point at y=0
func fitVertices(vertices []core.Vec3, size float64) []core.Vec3 {
	if len(vertices) == 0 {
		return nil
	}
	lo, hi := vertices[0], vertices[0]
	for _, v := range vertices[1:] {
		lo = core.NewVec3(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z))
		hi = core.NewVec3(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z))
	}
	extent := hi.Subtract(lo)
	scale := size / math.Max(extent.X, math.Max(extent.Y, math.Max(extent.Z, 1e-12)))
	anchor := core.NewVec3((lo.X+hi.X)/2, lo.Y, (lo.Z+hi.Z)/2)

	fitted := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		fitted[i] = v.Subtract(anchor).Multiply(scale)
	}
	return fitted
}

// icosahedron returns the 12 vertices and 20 faces of a regular icosahedron
func icosahedron() ([]core.Vec3, []int) {
	phi := (1 + math.Sqrt(5)) / 2
	vertices := []core.Vec3{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	faces := []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
	return vertices, faces
}

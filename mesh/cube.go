package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pavanmanishd/poolalloc"
)

var white = mgl32.Vec3{1, 1, 1}

var cubeVertices = []Vertex{
	{mgl32.Vec3{-0.5, 0.5, 0.5}, white, mgl32.Vec2{0, 1}},   // front left  top
	{mgl32.Vec3{0.5, 0.5, 0.5}, white, mgl32.Vec2{1, 1}},    // front right top
	{mgl32.Vec3{-0.5, -0.5, 0.5}, white, mgl32.Vec2{0, 0}},  // front left  bottom
	{mgl32.Vec3{0.5, -0.5, 0.5}, white, mgl32.Vec2{1, 0}},   // front right bottom
	{mgl32.Vec3{-0.5, 0.5, -0.5}, white, mgl32.Vec2{1, 0}},  // back  left  top
	{mgl32.Vec3{0.5, 0.5, -0.5}, white, mgl32.Vec2{0, 0}},   // back  right top
	{mgl32.Vec3{-0.5, -0.5, -0.5}, white, mgl32.Vec2{1, 1}}, // back  left  bottom
	{mgl32.Vec3{0.5, -0.5, -0.5}, white, mgl32.Vec2{0, 1}},  // back  right bottom
}

var cubeIndices = []uint32{
	0, 1, 2, 1, 2, 3, // front
	4, 5, 6, 5, 6, 7, // back
	4, 5, 0, 5, 0, 1, // top
	2, 3, 6, 3, 6, 7, // bottom
	4, 0, 6, 0, 6, 2, // left
	1, 5, 3, 5, 3, 7, // right
}

// CubeBytes is the allocator space one cube takes.
const CubeBytes = 8*Stride + 36*4 + 16*4

// Cube builds a unit cube centered on the origin.
func Cube(src poolalloc.Source) (*Mesh, error) {
	return New(src, cubeVertices, cubeIndices)
}

// Package mesh is a graphics-data container whose vertex array, index array
// and transform live in a poolalloc allocator. The allocator is always
// passed in; a mesh never owns or releases it.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/poolalloc"
)

// Vertex is one interleaved vertex: position, color, texture coordinate.
type Vertex struct {
	Pos   mgl32.Vec3
	Color mgl32.Vec3
	Tex   mgl32.Vec2
}

// Interleaved layout of Vertex, in bytes.
const (
	Stride      = 8 * 4
	PosOffset   = 0
	ColorOffset = 3 * 4
	TexOffset   = 6 * 4
)

// ErrIndexRange is returned for an index that names no vertex.
var ErrIndexRange = errors.New("mesh: index out of range")

// Uploader receives raw mesh data, typically to copy it into GPU buffers.
type Uploader interface {
	UploadVertices(data []byte, stride int) error
	UploadIndices(data []byte) error
}

// Mesh holds handles to its data; the data itself stays in the allocator.
// A Mesh must not be used after its allocator is released.
type Mesh struct {
	vertices  poolalloc.Handle[Vertex]
	indices   poolalloc.Handle[uint32]
	transform poolalloc.Handle[mgl32.Mat4]
}

// New copies vertices and indices into src and gives the mesh an identity
// transform.
func New(src poolalloc.Source, vertices []Vertex, indices []uint32) (*Mesh, error) {
	for i, ix := range indices {
		if int(ix) >= len(vertices) {
			return nil, errors.Wrapf(ErrIndexRange, "index %d is %d, mesh has %d vertices", i, ix, len(vertices))
		}
	}
	vh, err := poolalloc.AllocateAndInsertAll(src, vertices...)
	if err != nil {
		return nil, errors.Wrap(err, "mesh: vertices")
	}
	ih, err := poolalloc.AllocateAndInsertAll(src, indices...)
	if err != nil {
		return nil, errors.Wrap(err, "mesh: indices")
	}
	th, err := poolalloc.AllocateAndInsert(src, mgl32.Ident4())
	if err != nil {
		return nil, errors.Wrap(err, "mesh: transform")
	}
	return &Mesh{vertices: vh, indices: ih, transform: th}, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return m.vertices.Len() }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int { return m.indices.Len() }

// Vertices returns the vertex array in place.
func (m *Mesh) Vertices() []Vertex { return m.vertices.Slice() }

// Indices returns the index array in place.
func (m *Mesh) Indices() []uint32 { return m.indices.Slice() }

// Transform returns the model transform.
func (m *Mesh) Transform() mgl32.Mat4 { return *m.transform.Ptr() }

// SetTransform replaces the model transform.
func (m *Mesh) SetTransform(t mgl32.Mat4) { *m.transform.Ptr() = t }

// Translate post-multiplies the transform by a translation.
func (m *Mesh) Translate(v mgl32.Vec3) {
	t := m.transform.Ptr()
	*t = t.Mul4(mgl32.Translate3D(v.X(), v.Y(), v.Z()))
}

// Scale post-multiplies the transform by a scale.
func (m *Mesh) Scale(v mgl32.Vec3) {
	t := m.transform.Ptr()
	*t = t.Mul4(mgl32.Scale3D(v.X(), v.Y(), v.Z()))
}

// Rotate post-multiplies the transform by a rotation of angle radians
// around axis.
func (m *Mesh) Rotate(angle float32, axis mgl32.Vec3) {
	t := m.transform.Ptr()
	*t = t.Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
}

// Upload hands the vertex and index bytes to u.
func (m *Mesh) Upload(u Uploader) error {
	if err := u.UploadVertices(m.vertices.Bytes(), Stride); err != nil {
		return errors.Wrap(err, "mesh: upload vertices")
	}
	if err := u.UploadIndices(m.indices.Bytes()); err != nil {
		return errors.Wrap(err, "mesh: upload indices")
	}
	return nil
}

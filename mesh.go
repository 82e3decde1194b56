package perch

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Vertex is one mesh vertex in model space.
type Vertex struct {
	Position mgl64.Vec3
	// U and V are texture coordinates in [0, 1] with V increasing downward.
	U, V float32
	// Joints and Weights bind the vertex to up to four skin joints. Ignored
	// when the mesh node has no Skin.
	Joints  [4]uint16
	Weights [4]float32
}

// Mesh is indexed triangle geometry with an optional texture.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	// Texture is sampled with the vertex UVs. When nil, Color alone is drawn.
	Texture *ebiten.Image
	// Color tints the texture (or fills when untextured).
	Color Color
	// DoubleSided disables back-face culling.
	DoubleSided bool

	// world-space positions reused across frames (high-water mark).
	worldPos []mgl64.Vec3
}

// NewMesh creates a white, single-sided mesh.
func NewMesh(vertices []Vertex, indices []uint32, texture *ebiten.Image) *Mesh {
	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Texture:  texture,
		Color:    ColorWhite,
	}
}

// TriangleCount returns the number of complete triangles in Indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ensureWorldPos grows the world position buffer to fit len(m.Vertices),
// never shrinking it.
func (m *Mesh) ensureWorldPos() []mgl64.Vec3 {
	need := len(m.Vertices)
	if cap(m.worldPos) < need {
		m.worldPos = make([]mgl64.Vec3, need)
	}
	m.worldPos = m.worldPos[:need]
	return m.worldPos
}

// Skin binds mesh vertices to a joint hierarchy for linear blend skinning.
type Skin struct {
	// Joints are the nodes whose world matrices deform the mesh.
	Joints []*Node
	// InverseBind holds one inverse bind matrix per joint.
	InverseBind []mgl64.Mat4

	jointMats []mgl64.Mat4
}

// jointMatrices returns jointWorld * inverseBind for every joint, using the
// world matrices from the last UpdateWorldMatrices pass.
func (s *Skin) jointMatrices() []mgl64.Mat4 {
	if cap(s.jointMats) < len(s.Joints) {
		s.jointMats = make([]mgl64.Mat4, len(s.Joints))
	}
	s.jointMats = s.jointMats[:len(s.Joints)]
	for i, j := range s.Joints {
		ib := mgl64.Ident4()
		if i < len(s.InverseBind) {
			ib = s.InverseBind[i]
		}
		s.jointMats[i] = j.worldMatrix.Mul4(ib)
	}
	return s.jointMats
}

// transformMeshVertices writes world-space positions for every vertex of the
// node's mesh. Skinned meshes use their joints only, ignoring the mesh
// node's own transform.
func transformMeshVertices(n *Node) []mgl64.Vec3 {
	m := n.Mesh
	out := m.ensureWorldPos()

	if n.Skin == nil || len(n.Skin.Joints) == 0 {
		world := n.worldMatrix
		for i := range m.Vertices {
			out[i] = mgl64.TransformCoordinate(m.Vertices[i].Position, world)
		}
		return out
	}

	joints := n.Skin.jointMatrices()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := v.Position.Vec4(1)
		var acc mgl64.Vec4
		var total float64
		for k := 0; k < 4; k++ {
			w := float64(v.Weights[k])
			j := int(v.Joints[k])
			if w == 0 || j >= len(joints) {
				continue
			}
			acc = acc.Add(joints[j].Mul4x1(p).Mul(w))
			total += w
		}
		if total == 0 {
			out[i] = mgl64.TransformCoordinate(v.Position, n.worldMatrix)
			continue
		}
		out[i] = acc.Vec3().Mul(1 / total)
	}
	return out
}

package perch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// triangleMesh is a counter-clockwise triangle facing +z.
func triangleMesh() *Mesh {
	return NewMesh([]Vertex{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0.5, 0, 0}},
		{Position: mgl64.Vec3{0, 0.5, 0}},
	}, []uint32{0, 1, 2}, nil)
}

func testScene() (*Node, *Camera) {
	cam := NewCamera(75, 1, 0.1, 100)
	cam.Position = mgl64.Vec3{0, 0, 2}
	return NewNode("root"), cam
}

func TestRenderDrawsFrontFacing(t *testing.T) {
	root, cam := testScene()
	root.AddChild(NewMeshNode("tri", triangleMesh()))

	r := NewRenderer()
	r.Render(ebiten.NewImage(64, 64), root, cam)
	if r.stats.meshes != 1 || r.stats.triangles != 1 || r.stats.culled != 0 {
		t.Errorf("stats = %+v, want 1 mesh, 1 triangle", r.stats)
	}
}

func TestRenderCullsBackFaces(t *testing.T) {
	root, cam := testScene()
	m := triangleMesh()
	m.Indices = []uint32{0, 2, 1}
	root.AddChild(NewMeshNode("tri", m))

	r := NewRenderer()
	img := ebiten.NewImage(64, 64)
	r.Render(img, root, cam)
	if r.stats.triangles != 0 || r.stats.culled != 1 {
		t.Errorf("stats = %+v, want the triangle culled", r.stats)
	}

	m.DoubleSided = true
	r.Render(img, root, cam)
	if r.stats.triangles != 1 {
		t.Errorf("double-sided stats = %+v, want 1 triangle", r.stats)
	}
}

func TestRenderSkipsInvisibleSubtree(t *testing.T) {
	root, cam := testScene()
	group := NewNode("group")
	group.AddChild(NewMeshNode("tri", triangleMesh()))
	group.Visible = false
	root.AddChild(group)

	r := NewRenderer()
	r.Render(ebiten.NewImage(64, 64), root, cam)
	if r.stats.meshes != 0 {
		t.Errorf("meshes = %d, want 0", r.stats.meshes)
	}
}

func TestRenderSortsFarFirst(t *testing.T) {
	root, cam := testScene()
	near := NewMeshNode("near", triangleMesh())
	near.Position[2] = 0.5
	far := NewMeshNode("far", triangleMesh())
	far.Position[2] = -1
	root.AddChild(near)
	root.AddChild(far)

	r := NewRenderer()
	r.Render(ebiten.NewImage(64, 64), root, cam)
	if len(r.items) != 2 || r.items[0].node != far || r.items[1].node != near {
		t.Errorf("draw order wrong: %d items", len(r.items))
	}
}

func TestRendererBufferSize(t *testing.T) {
	r := NewRenderer()
	r.SetSize(801, 600)
	r.SetPixelRatio(1.5)
	if w, h := r.BufferSize(); w != 1202 || h != 900 {
		t.Errorf("BufferSize = %dx%d, want 1202x900", w, h)
	}
	r.SetPixelRatio(0)
	if r.PixelRatio() != 1 {
		t.Errorf("PixelRatio = %v, want 1", r.PixelRatio())
	}
}

func TestSkinnedVertices(t *testing.T) {
	root := NewNode("root")
	joint := NewNode("joint")
	joint.Position = mgl64.Vec3{1, 0, 0}
	root.AddChild(joint)

	m := triangleMesh()
	for i := range m.Vertices {
		m.Vertices[i].Weights = [4]float32{1}
	}
	n := NewMeshNode("skinned", m)
	n.Skin = &Skin{Joints: []*Node{joint}, InverseBind: []mgl64.Mat4{mgl64.Ident4()}}
	// The mesh node's own transform is ignored for skinned meshes.
	n.Position = mgl64.Vec3{0, 5, 0}
	root.AddChild(n)

	UpdateWorldMatrices(root)
	got := transformMeshVertices(n)
	if !got[1].ApproxEqualThreshold(mgl64.Vec3{1.5, 0, 0}, epsilon) {
		t.Errorf("skinned vertex 1 = %v, want (1.5,0,0)", got[1])
	}
}

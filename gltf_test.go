package perch

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// butterflyGLTF is a self-contained glTF: a wrapper node, a one-triangle mesh
// node with two children (one named, one placed by matrix), and two clips.
const butterflyGLTF = `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0,1]}],` +
	`"nodes":[{"name":"wrapper"},{"name":"Butterfly","mesh":0,"children":[2,3]},{"name":"Wing","translation":[0,1,0]},` +
	`{"matrix":[2,0,0,0,0,2,0,0,0,0,2,0,3,4,5,1]}],` +
	`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":1,"material":0}]}],` +
	`"materials":[{"pbrMetallicRoughness":{"baseColorFactor":[1,0.5,0.25,1]},"doubleSided":true}],` +
	`"buffers":[{"byteLength":100,"uri":"data:application/octet-stream;base64,` +
	`AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAAAAAAAAACAPwAAAAAAAIA/AAAAAAAAAAAAAABAAAAAAAAAgD8AAIA/AACAPwAAAEAAAABAAAAAQA=="}],` +
	`"bufferViews":[{"buffer":0,"byteOffset":0,"byteLength":36},{"buffer":0,"byteOffset":36,"byteLength":6},` +
	`{"buffer":0,"byteOffset":44,"byteLength":8},{"buffer":0,"byteOffset":52,"byteLength":24},{"buffer":0,"byteOffset":76,"byteLength":24}],` +
	`"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[1,1,0]},` +
	`{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"},` +
	`{"bufferView":2,"componentType":5126,"count":2,"type":"SCALAR","min":[0],"max":[1]},` +
	`{"bufferView":3,"componentType":5126,"count":2,"type":"VEC3"},{"bufferView":4,"componentType":5126,"count":2,"type":"VEC3"}],` +
	`"animations":[{"name":"Idle","channels":[{"sampler":0,"target":{"node":2,"path":"translation"}}],` +
	`"samplers":[{"input":2,"output":3,"interpolation":"LINEAR"}]},` +
	`{"name":"Fly","channels":[{"sampler":0,"target":{"node":3,"path":"scale"}}],` +
	`"samplers":[{"input":2,"output":4,"interpolation":"STEP"}]}]}`

func decodeButterfly(t *testing.T) *Decoded {
	t.Helper()
	d, err := GLTFDecoder{SkipTextures: true}.Decode([]byte(butterflyGLTF))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestGLTFSceneTree(t *testing.T) {
	d := decodeButterfly(t)
	root := d.Root
	if root.NumChildren() != 2 {
		t.Fatalf("root children = %d, want 2", root.NumChildren())
	}
	if root.ChildAt(0).Name != "wrapper" || root.ChildAt(1).Name != "Butterfly" {
		t.Errorf("children = %s, %s", root.ChildAt(0).Name, root.ChildAt(1).Name)
	}

	wing := root.FindByName("Wing")
	if wing == nil || wing.Parent.Name != "Butterfly" {
		t.Fatal("Wing missing or misparented")
	}
	if !wing.Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, epsilon) {
		t.Errorf("Wing position = %v", wing.Position)
	}
	if wing.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Wing scale = %v, want default", wing.Scale)
	}

	tail := root.FindByName("node_3")
	if tail == nil {
		t.Fatal("unnamed node not given a generated name")
	}
	if !tail.Position.ApproxEqualThreshold(mgl64.Vec3{3, 4, 5}, epsilon) ||
		!tail.Scale.ApproxEqualThreshold(mgl64.Vec3{2, 2, 2}, epsilon) {
		t.Errorf("matrix node = pos %v scale %v", tail.Position, tail.Scale)
	}
}

func TestGLTFMesh(t *testing.T) {
	m := decodeButterfly(t).Root.FindByName("Butterfly").Mesh
	if m == nil {
		t.Fatal("Butterfly has no mesh")
	}
	if len(m.Vertices) != 3 || m.TriangleCount() != 1 {
		t.Fatalf("vertices = %d, triangles = %d", len(m.Vertices), m.TriangleCount())
	}
	if m.Vertices[1].Position != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("vertex 1 = %v", m.Vertices[1].Position)
	}
	if m.Indices[0] != 0 || m.Indices[1] != 1 || m.Indices[2] != 2 {
		t.Errorf("indices = %v", m.Indices)
	}
	if m.Color != (Color{R: 1, G: 0.5, B: 0.25, A: 1}) || !m.DoubleSided {
		t.Errorf("material = %v double-sided %v", m.Color, m.DoubleSided)
	}
}

func TestGLTFClips(t *testing.T) {
	d := decodeButterfly(t)
	if len(d.Clips) != 2 {
		t.Fatalf("clips = %d, want 2", len(d.Clips))
	}
	idle, fly := d.Clips[0], d.Clips[1]
	if idle.Name != "Idle" || fly.Name != "Fly" {
		t.Errorf("clip order = %s, %s", idle.Name, fly.Name)
	}
	if idle.Duration != 1 || len(idle.Tracks) != 1 {
		t.Fatalf("Idle duration %v tracks %d", idle.Duration, len(idle.Tracks))
	}
	tr := idle.Tracks[0]
	if tr.Target != "Wing" || tr.Path != PathTranslation || tr.Interpolation != InterpolationLinear {
		t.Errorf("Idle track = %+v", tr)
	}
	if ft := fly.Tracks[0]; ft.Target != "node_3" || ft.Path != PathScale || ft.Interpolation != InterpolationStep {
		t.Errorf("Fly track = %+v", ft)
	}

	p := NewAnimationPlayer(d.Root)
	p.ClipAction(idle).Play()
	p.Update(0.5)
	if y := d.Root.FindByName("Wing").Position[1]; !approxEqual(y, 1.5, 1e-6) {
		t.Errorf("Wing y at 0.5 s = %v, want 1.5", y)
	}
}

func TestGLTFIndependentDecodes(t *testing.T) {
	a := decodeButterfly(t)
	b := decodeButterfly(t)
	if a.Root.FindByName("Wing") == b.Root.FindByName("Wing") {
		t.Error("decodes share nodes")
	}
}

func TestGLTFErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		unsupported bool
	}{
		{"garbage", "not a model", false},
		{"draco", `{"asset":{"version":"2.0"},"extensionsUsed":["KHR_draco_mesh_compression"],` +
			`"extensionsRequired":["KHR_draco_mesh_compression"],"nodes":[{"name":"a"}]}`, true},
		{"empty", `{"asset":{"version":"2.0"}}`, true},
		{"bad child", `{"asset":{"version":"2.0"},"nodes":[{"children":[7]}]}`, false},
	}
	for _, tt := range tests {
		_, err := GLTFDecoder{SkipTextures: true}.Decode([]byte(tt.data))
		if err == nil {
			t.Errorf("%s: no error", tt.name)
			continue
		}
		if tt.unsupported != errors.Is(err, ErrUnsupportedAsset) {
			t.Errorf("%s: err = %v, unsupported = %v", tt.name, err, tt.unsupported)
		}
	}
}

func TestGLTFDracoNamesExtension(t *testing.T) {
	data := `{"asset":{"version":"2.0"},"extensionsUsed":["KHR_draco_mesh_compression"],` +
		`"extensionsRequired":["KHR_draco_mesh_compression"],"nodes":[{"name":"a"}]}`
	_, err := GLTFDecoder{SkipTextures: true}.Decode([]byte(data))
	if !errors.Is(err, ErrUnsupportedAsset) {
		t.Fatalf("err = %v, want ErrUnsupportedAsset", err)
	}
	if !strings.Contains(err.Error(), "KHR_draco_mesh_compression") {
		t.Errorf("err = %q, want the extension named", err)
	}

	// Draco listed as optional still decodes through the plain attributes.
	data = `{"asset":{"version":"2.0"},"extensionsUsed":["KHR_draco_mesh_compression"],` +
		`"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"name":"a"}]}`
	d, err := GLTFDecoder{SkipTextures: true}.Decode([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if d.Root.FindByName("a") == nil {
		t.Error("node a missing")
	}
}

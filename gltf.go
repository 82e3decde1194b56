package perch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	extDraco = "KHR_draco_mesh_compression"
	extWebP  = "EXT_texture_webp"
)

// GLTFDecoder decodes binary glTF (.glb) and self-contained glTF JSON (with
// data URI buffers) into a node tree and animation clips.
//
// Supported: the default scene's node hierarchy, indexed or unindexed
// triangle primitives, the base color texture and factor, skins, and
// translation, rotation, and scale channels with LINEAR or STEP
// interpolation. Morph targets and cubic spline channels are skipped.
// Draco-compressed assets fail with ErrUnsupportedAsset.
type GLTFDecoder struct {
	// SkipTextures leaves meshes untextured. Useful where no graphics
	// context is available.
	SkipTextures bool
}

// Decode implements Decoder.
func (d GLTFDecoder) Decode(data []byte) (*Decoded, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	if slices.Contains(doc.ExtensionsRequired, extDraco) {
		return nil, fmt.Errorf("gltf: %s: %w", extDraco, ErrUnsupportedAsset)
	}

	b := &gltfBuilder{doc: doc, skipTextures: d.SkipTextures}
	root, err := b.scene()
	if err != nil {
		return nil, err
	}
	clips, err := b.clips()
	if err != nil {
		return nil, err
	}
	return &Decoded{Root: root, Clips: clips}, nil
}

// gltfBuilder holds per-decode state. Node i of the document becomes
// nodes[i]; materials are resolved once and shared between primitives.
type gltfBuilder struct {
	doc          *gltf.Document
	skipTextures bool

	nodes     []*Node
	materials map[int]gltfMaterial
	textures  map[int]*ebiten.Image
}

type gltfMaterial struct {
	image       int // -1 when untextured
	color       Color
	doubleSided bool
}

func (b *gltfBuilder) scene() (*Node, error) {
	doc := b.doc
	b.nodes = make([]*Node, len(doc.Nodes))
	b.materials = make(map[int]gltfMaterial)
	b.textures = make(map[int]*ebiten.Image)

	used := make(map[string]bool, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" || used[name] {
			name = "node_" + strconv.Itoa(i)
		}
		used[name] = true

		n := NewNode(name)
		setNodeTransform(n, gn)
		b.nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(b.nodes) {
				return nil, fmt.Errorf("gltf: node %d: child %d out of range", i, c)
			}
			if b.nodes[c].Parent != nil || isAncestor(b.nodes[c], b.nodes[i]) {
				return nil, fmt.Errorf("gltf: node %d: invalid hierarchy at child %d", i, c)
			}
			b.nodes[i].AddChild(b.nodes[c])
		}
	}

	for i, gn := range doc.Nodes {
		if gn.Mesh != nil {
			if err := b.attachMesh(b.nodes[i], *gn.Mesh); err != nil {
				return nil, fmt.Errorf("gltf: node %d: %w", i, err)
			}
		}
	}
	for i, gn := range doc.Nodes {
		if gn.Skin != nil {
			if err := b.attachSkin(b.nodes[i], *gn.Skin); err != nil {
				return nil, fmt.Errorf("gltf: node %d: %w", i, err)
			}
		}
	}

	root := NewNode("scene")
	for _, i := range b.sceneRoots() {
		if i < 0 || i >= len(b.nodes) {
			return nil, fmt.Errorf("gltf: scene node %d out of range", i)
		}
		if b.nodes[i].Parent == nil {
			root.AddChild(b.nodes[i])
		}
	}
	if root.NumChildren() == 0 {
		return nil, fmt.Errorf("gltf: no scene nodes: %w", ErrUnsupportedAsset)
	}
	return root, nil
}

// sceneRoots returns the root node indices of the default scene, or every
// parentless node when the document has no scenes.
func (b *gltfBuilder) sceneRoots() []int {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	var roots []int
	for i, n := range b.nodes {
		if n.Parent == nil {
			roots = append(roots, i)
		}
	}
	return roots
}

// setNodeTransform copies the node's TRS, or decomposes its matrix. Zero
// rotation and scale mean the glTF defaults.
func setNodeTransform(n *Node, gn *gltf.Node) {
	if gn.Matrix != [16]float64{} && mgl64.Mat4(gn.Matrix) != mgl64.Ident4() {
		n.Position, n.Rotation, n.Scale = decomposeMatrix(mgl64.Mat4(gn.Matrix))
		return
	}
	t := gn.Translation
	n.Position = mgl64.Vec3{t[0], t[1], t[2]}
	if r := gn.Rotation; r != [4]float64{} {
		n.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if s := gn.Scale; s != [3]float64{} {
		n.Scale = mgl64.Vec3{s[0], s[1], s[2]}
	}
}

// attachMesh converts every triangle primitive of mesh mi. A single
// primitive is placed on n itself; several become child nodes.
func (b *gltfBuilder) attachMesh(n *Node, mi int) error {
	doc := b.doc
	if mi < 0 || mi >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", mi)
	}
	gm := doc.Meshes[mi]

	var meshes []*Mesh
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			Logger().Debug("perch: skipping non-triangle primitive", "mesh", mi, "primitive", pi)
			continue
		}
		m, err := b.primitive(prim)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
		}
		meshes = append(meshes, m)
	}

	switch len(meshes) {
	case 0:
	case 1:
		n.Mesh = meshes[0]
	default:
		for pi, m := range meshes {
			n.AddChild(NewMeshNode(n.Name+"_prim"+strconv.Itoa(pi), m))
		}
	}
	return nil
}

func (b *gltfBuilder) primitive(prim *gltf.Primitive) (*Mesh, error) {
	doc := b.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("missing POSITION")
	}
	acc, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}

	verts := make([]Vertex, len(positions))
	for i, p := range positions {
		verts[i].Position = mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acc, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
		for i := 0; i < len(uvs) && i < len(verts); i++ {
			verts[i].U, verts[i].V = uvs[i][0], uvs[i][1]
		}
	}

	if idx, ok := prim.Attributes["JOINTS_0"]; ok {
		acc, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		joints, err := modeler.ReadJoints(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("JOINTS_0: %w", err)
		}
		for i := 0; i < len(joints) && i < len(verts); i++ {
			verts[i].Joints = joints[i]
		}
	}

	if idx, ok := prim.Attributes["WEIGHTS_0"]; ok {
		acc, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		weights, err := modeler.ReadWeights(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("WEIGHTS_0: %w", err)
		}
		for i := 0; i < len(weights) && i < len(verts); i++ {
			verts[i].Weights = weights[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := b.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m := NewMesh(verts, indices, nil)
	if prim.Material != nil {
		mat, err := b.material(*prim.Material)
		if err != nil {
			return nil, err
		}
		m.Color = mat.color
		m.DoubleSided = mat.doubleSided
		if mat.image >= 0 {
			img, err := b.texture(mat.image)
			if err != nil {
				return nil, err
			}
			m.Texture = img
		}
	}
	return m, nil
}

func (b *gltfBuilder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

func (b *gltfBuilder) material(i int) (gltfMaterial, error) {
	if m, ok := b.materials[i]; ok {
		return m, nil
	}
	doc := b.doc
	if i < 0 || i >= len(doc.Materials) {
		return gltfMaterial{}, fmt.Errorf("material %d out of range", i)
	}
	gm := doc.Materials[i]
	m := gltfMaterial{image: -1, color: ColorWhite, doubleSided: gm.DoubleSided}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			m.color = Color{R: f[0], G: f[1], B: f[2], A: f[3]}
		}
		if ti := pbr.BaseColorTexture; ti != nil && !b.skipTextures {
			src, err := b.textureSource(ti.Index)
			if err != nil {
				return gltfMaterial{}, fmt.Errorf("material %d: %w", i, err)
			}
			m.image = src
		}
	}
	b.materials[i] = m
	return m, nil
}

// textureSource returns the image index of texture ti, preferring the
// EXT_texture_webp source. It returns -1 when the texture has no image.
func (b *gltfBuilder) textureSource(ti int) (int, error) {
	doc := b.doc
	if ti < 0 || ti >= len(doc.Textures) {
		return -1, fmt.Errorf("texture %d out of range", ti)
	}
	tex := doc.Textures[ti]
	if raw, ok := tex.Extensions[extWebP]; ok {
		var ext struct {
			Source *int `json:"source"`
		}
		if rm, ok := raw.(json.RawMessage); ok && json.Unmarshal(rm, &ext) == nil && ext.Source != nil {
			return *ext.Source, nil
		}
	}
	if tex.Source == nil {
		return -1, nil
	}
	return *tex.Source, nil
}

// texture decodes image i from its buffer view or data URI. Images are
// decoded once per document.
func (b *gltfBuilder) texture(i int) (*ebiten.Image, error) {
	if img, ok := b.textures[i]; ok {
		return img, nil
	}
	doc := b.doc
	if i < 0 || i >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", i)
	}
	gi := doc.Images[i]

	var data []byte
	switch {
	case gi.BufferView != nil:
		v, err := b.bufferView(*gi.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		data = v
	case gi.IsEmbeddedResource():
		v, err := gi.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		data = v
	default:
		return nil, fmt.Errorf("image %d: external uri %q: %w", i, gi.URI, ErrUnsupportedAsset)
	}

	img, err := DecodeTexture(data)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", i, err)
	}
	b.textures[i] = img
	return img, nil
}

func (b *gltfBuilder) bufferView(i int) ([]byte, error) {
	doc := b.doc
	if i < 0 || i >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", i)
	}
	bv := doc.BufferViews[i]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer %d", i, bv.Buffer)
	}
	return data[bv.ByteOffset:end], nil
}

func (b *gltfBuilder) attachSkin(n *Node, si int) error {
	doc := b.doc
	if si < 0 || si >= len(doc.Skins) {
		return fmt.Errorf("skin %d out of range", si)
	}
	gs := doc.Skins[si]

	skin := &Skin{Joints: make([]*Node, len(gs.Joints))}
	for k, j := range gs.Joints {
		if j < 0 || j >= len(b.nodes) {
			return fmt.Errorf("skin %d: joint %d out of range", si, j)
		}
		skin.Joints[k] = b.nodes[j]
	}

	if gs.InverseBindMatrices != nil {
		acc, err := b.accessor(*gs.InverseBindMatrices)
		if err != nil {
			return err
		}
		raw, err := modeler.ReadAccessor(doc, acc, nil)
		if err != nil {
			return fmt.Errorf("skin %d: inverse bind matrices: %w", si, err)
		}
		mats, ok := raw.([][4][4]float32)
		if !ok {
			return fmt.Errorf("skin %d: inverse bind matrices: %T: %w", si, raw, ErrUnsupportedAsset)
		}
		skin.InverseBind = make([]mgl64.Mat4, len(mats))
		for k, m := range mats {
			// Accessor matrices are column-major, as is mgl64.Mat4.
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					skin.InverseBind[k][c*4+r] = float64(m[c][r])
				}
			}
		}
	}

	// Every primitive of the mesh shares the node's skin.
	if n.Mesh != nil {
		n.Skin = skin
	}
	for _, c := range n.Children() {
		if c.Mesh != nil && c.Skin == nil && c.NumChildren() == 0 {
			c.Skin = skin
		}
	}
	return nil
}

// clips converts every animation. Channels targeting nodes outside the
// document or using unsupported paths are skipped.
func (b *gltfBuilder) clips() ([]*Clip, error) {
	doc := b.doc
	clips := make([]*Clip, 0, len(doc.Animations))
	for ai, ga := range doc.Animations {
		var tracks []Track
		for ci, ch := range ga.Channels {
			tr, ok, err := b.track(ga, ch)
			if err != nil {
				return nil, fmt.Errorf("gltf: animation %d channel %d: %w", ai, ci, err)
			}
			if ok {
				tracks = append(tracks, tr)
			}
		}
		name := ga.Name
		if name == "" {
			name = "clip_" + strconv.Itoa(ai)
		}
		clips = append(clips, NewClip(name, tracks))
	}
	return clips, nil
}

func (b *gltfBuilder) track(ga *gltf.Animation, ch *gltf.AnimationChannel) (Track, bool, error) {
	doc := b.doc
	if ch.Target.Node == nil {
		return Track{}, false, nil
	}
	node := *ch.Target.Node
	if node < 0 || node >= len(b.nodes) {
		return Track{}, false, fmt.Errorf("target node %d out of range", node)
	}

	var path TrackPath
	switch ch.Target.Path {
	case gltf.TRSTranslation:
		path = PathTranslation
	case gltf.TRSRotation:
		path = PathRotation
	case gltf.TRSScale:
		path = PathScale
	default:
		return Track{}, false, nil
	}

	if ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
		return Track{}, false, fmt.Errorf("sampler %d out of range", ch.Sampler)
	}
	s := ga.Samplers[ch.Sampler]

	var interp Interpolation
	switch s.Interpolation {
	case gltf.InterpolationLinear:
		interp = InterpolationLinear
	case gltf.InterpolationStep:
		interp = InterpolationStep
	default:
		Logger().Debug("perch: skipping cubic spline channel", "node", b.nodes[node].Name)
		return Track{}, false, nil
	}

	inAcc, err := b.accessor(s.Input)
	if err != nil {
		return Track{}, false, err
	}
	rawIn, err := modeler.ReadAccessor(doc, inAcc, nil)
	if err != nil {
		return Track{}, false, fmt.Errorf("input: %w", err)
	}
	times, ok := rawIn.([]float32)
	if !ok {
		return Track{}, false, fmt.Errorf("input %T: %w", rawIn, ErrUnsupportedAsset)
	}

	outAcc, err := b.accessor(s.Output)
	if err != nil {
		return Track{}, false, err
	}
	rawOut, err := modeler.ReadAccessor(doc, outAcc, nil)
	if err != nil {
		return Track{}, false, fmt.Errorf("output: %w", err)
	}

	tr := Track{
		Target:        b.nodes[node].Name,
		Path:          path,
		Interpolation: interp,
		Times:         make([]float64, len(times)),
	}
	for i, t := range times {
		tr.Times[i] = float64(t)
	}
	switch v := rawOut.(type) {
	case [][3]float32:
		for _, k := range v {
			tr.Values = append(tr.Values, float64(k[0]), float64(k[1]), float64(k[2]))
		}
	case [][4]float32:
		for _, k := range v {
			tr.Values = append(tr.Values, float64(k[0]), float64(k[1]), float64(k[2]), float64(k[3]))
		}
	default:
		return Track{}, false, fmt.Errorf("output %T: %w", rawOut, ErrUnsupportedAsset)
	}
	if len(tr.Values) != len(tr.Times)*tr.Components() {
		return Track{}, false, fmt.Errorf("output has %d values for %d keys", len(tr.Values), len(tr.Times))
	}
	return tr, true, nil
}

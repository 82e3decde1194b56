package perch

import (
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// projected is one mesh vertex after the view-projection transform.
type projected struct {
	x, y  float32 // target pixels
	depth float64 // normalized device depth
	ok    bool    // in front of the camera
}

// drawItem is one visible mesh node queued for drawing.
type drawItem struct {
	node  *Node
	start int // offset into Renderer.proj
	depth float64
}

// depthTri is a triangle waiting for back-to-front sorting.
type depthTri struct {
	i0, i1, i2 uint32
	depth      float64
}

// renderStats holds counters for the most recent Render call.
type renderStats struct {
	meshes    int
	triangles int
	culled    int
	elapsed   time.Duration
}

// Renderer draws a node tree through a perspective Camera onto an
// *ebiten.Image using DrawTriangles32. Meshes are sorted back to front and
// each mesh's triangles are sorted back to front, since there is no depth
// buffer. Shading is unlit: texture times mesh color.
type Renderer struct {
	// ClearColor fills the target before drawing. The zero value clears to
	// transparent so the host page shows through.
	ClearColor Color

	width, height int
	pixelRatio    float64

	items []drawItem
	proj  []projected
	verts []ebiten.Vertex
	inds  []uint32
	tris  []depthTri

	stats renderStats
}

// NewRenderer creates a renderer with a pixel ratio of 1.
func NewRenderer() *Renderer {
	return &Renderer{pixelRatio: 1}
}

// SetSize sets the logical output size in device-independent pixels.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

// SetPixelRatio sets the number of buffer pixels per logical pixel.
// Non-positive ratios are treated as 1.
func (r *Renderer) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
}

// PixelRatio returns the current pixel ratio.
func (r *Renderer) PixelRatio() float64 {
	return r.pixelRatio
}

// Size returns the logical output size.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// BufferSize returns the output buffer size in physical pixels.
func (r *Renderer) BufferSize() (width, height int) {
	return int(math.Ceil(float64(r.width) * r.pixelRatio)),
		int(math.Ceil(float64(r.height) * r.pixelRatio))
}

// Render draws every visible mesh under root as seen by cam. The projection
// maps onto the full bounds of target.
func (r *Renderer) Render(target *ebiten.Image, root *Node, cam *Camera) {
	t0 := time.Now()
	r.stats = renderStats{}

	if r.ClearColor.A > 0 {
		target.Fill(r.ClearColor.toRGBA())
	} else {
		target.Clear()
	}

	UpdateWorldMatrices(root)

	b := target.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}

	r.collect(root, cam, w, h)

	// Farther meshes first.
	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].depth > r.items[j].depth
	})

	for i := range r.items {
		r.drawMesh(target, &r.items[i])
	}
	r.stats.elapsed = time.Since(t0)
}

// collect projects the vertices of every visible mesh and records one
// drawItem per mesh. Invisible nodes hide their whole subtree.
func (r *Renderer) collect(root *Node, cam *Camera, w, h float64) {
	vp := cam.ViewProjection()
	r.items = r.items[:0]
	r.proj = r.proj[:0]

	root.Walk(func(n *Node) bool {
		if !n.Visible {
			return false
		}
		if n.Mesh == nil || n.Mesh.TriangleCount() == 0 {
			return true
		}

		start := len(r.proj)
		var sum float64
		var count int
		for _, p := range transformMeshVertices(n) {
			clip := vp.Mul4x1(p.Vec4(1))
			if clip[3] <= 1e-9 {
				r.proj = append(r.proj, projected{})
				continue
			}
			inv := 1 / clip[3]
			s := ndcToScreen(clip[0]*inv, clip[1]*inv, w, h)
			d := clip[2] * inv
			r.proj = append(r.proj, projected{x: float32(s.X), y: float32(s.Y), depth: d, ok: true})
			sum += d
			count++
		}
		if count == 0 {
			r.proj = r.proj[:start]
			return true
		}
		r.items = append(r.items, drawItem{node: n, start: start, depth: sum / float64(count)})
		return true
	})
}

// drawMesh sorts one mesh's triangles and submits them in a single call.
func (r *Renderer) drawMesh(target *ebiten.Image, it *drawItem) {
	m := it.node.Mesh
	proj := r.proj[it.start : it.start+len(m.Vertices)]

	img := m.Texture
	var texW, texH float32
	if img != nil {
		tb := img.Bounds()
		texW, texH = float32(tb.Dx()), float32(tb.Dy())
	} else {
		img = WhitePixel
	}

	c := m.Color
	cr, cg, cb, ca := float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A)

	r.verts = r.verts[:0]
	for i, v := range m.Vertices {
		p := proj[i]
		sx, sy := float32(0.5), float32(0.5)
		if m.Texture != nil {
			sx, sy = v.U*texW, v.V*texH
		}
		r.verts = append(r.verts, ebiten.Vertex{
			DstX:   p.x,
			DstY:   p.y,
			SrcX:   sx,
			SrcY:   sy,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}

	r.tris = r.tris[:0]
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if int(i0) >= len(proj) || int(i1) >= len(proj) || int(i2) >= len(proj) {
			continue
		}
		p0, p1, p2 := proj[i0], proj[i1], proj[i2]
		if !p0.ok || !p1.ok || !p2.ok {
			r.stats.culled++
			continue
		}
		if !m.DoubleSided && !frontFacing(p0, p1, p2) {
			r.stats.culled++
			continue
		}
		r.tris = append(r.tris, depthTri{i0: i0, i1: i1, i2: i2, depth: p0.depth + p1.depth + p2.depth})
	}
	if len(r.tris) == 0 {
		return
	}

	sort.Slice(r.tris, func(i, j int) bool {
		return r.tris[i].depth > r.tris[j].depth
	})

	r.inds = r.inds[:0]
	for _, t := range r.tris {
		r.inds = append(r.inds, t.i0, t.i1, t.i2)
	}

	var op ebiten.DrawTrianglesOptions
	op.Filter = ebiten.FilterLinear
	op.Address = ebiten.AddressRepeat
	target.DrawTriangles32(r.verts, r.inds, img, &op)

	r.stats.meshes++
	r.stats.triangles += len(r.tris)
}

// frontFacing reports whether a triangle is counter-clockwise in normalized
// device space. Screen Y points down, so that is a negative screen-space
// signed area.
func frontFacing(p0, p1, p2 projected) bool {
	area := (p1.x-p0.x)*(p2.y-p0.y) - (p2.x-p0.x)*(p1.y-p0.y)
	return area < 0
}

package perch

import "github.com/go-gl/mathgl/mgl64"

// localMatrix computes the node's local transform.
//
// Composition order:
//
//	Translate(Position) * Rotate(Rotation) * Scale(Scale)
func localMatrix(n *Node) mgl64.Mat4 {
	p := n.Position
	s := n.Scale
	return mgl64.Translate3D(p[0], p[1], p[2]).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// UpdateWorldMatrices recomputes the world transform of n and its whole
// subtree. n's parent transform is taken from n.Parent when present.
func UpdateWorldMatrices(n *Node) {
	parent := mgl64.Ident4()
	if n.Parent != nil {
		parent = n.Parent.worldMatrix
	}
	updateWorldMatrix(n, parent)
}

func updateWorldMatrix(n *Node, parent mgl64.Mat4) {
	n.worldMatrix = parent.Mul4(localMatrix(n))
	for _, c := range n.children {
		updateWorldMatrix(c, n.worldMatrix)
	}
}

// decomposeMatrix splits an affine matrix without shear into translation,
// rotation and scale. A negative determinant flips the x scale.
func decomposeMatrix(m mgl64.Mat4) (t mgl64.Vec3, r mgl64.Quat, s mgl64.Vec3) {
	t = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Det() < 0 {
		sx = -sx
	}
	s = mgl64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		return t, mgl64.QuatIdent(), s
	}

	rot := m
	for i := 0; i < 3; i++ {
		rot[i] /= sx
		rot[4+i] /= sy
		rot[8+i] /= sz
	}
	rot[12], rot[13], rot[14] = 0, 0, 0
	r = mgl64.Mat4ToQuat(rot).Normalize()
	return t, r, s
}

package perch

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// TrackPath identifies the node property a track animates.
type TrackPath uint8

const (
	PathTranslation TrackPath = iota // Node.Position, 3 values per key
	PathRotation                     // Node.Rotation, 4 values per key (x, y, z, w)
	PathScale                        // Node.Scale, 3 values per key
)

// Interpolation selects how a track blends between keys.
type Interpolation uint8

const (
	InterpolationLinear Interpolation = iota // lerp, slerp for rotations
	InterpolationStep                        // hold the previous key
)

// Track is a keyframed curve for one property of one named node.
type Track struct {
	// Target is the name of the node the track drives, resolved within the
	// subtree an AnimationPlayer is bound to.
	Target        string
	Path          TrackPath
	Interpolation Interpolation
	// Times are key times in seconds, ascending.
	Times []float64
	// Values holds Components() values per key, flattened.
	Values []float64
}

// Components returns the number of values per key.
func (tr *Track) Components() int {
	if tr.Path == PathRotation {
		return 4
	}
	return 3
}

// keyIndex returns the key pair surrounding t and the blend factor between
// them. Times outside the key range clamp to the first or last key.
func (tr *Track) keyIndex(t float64) (i0, i1 int, alpha float64) {
	n := len(tr.Times)
	if n == 0 {
		return 0, 0, 0
	}
	if t <= tr.Times[0] {
		return 0, 0, 0
	}
	if t >= tr.Times[n-1] {
		return n - 1, n - 1, 0
	}
	i1 = sort.SearchFloat64s(tr.Times, t)
	if tr.Times[i1] == t {
		return i1, i1, 0
	}
	i0 = i1 - 1
	span := tr.Times[i1] - tr.Times[i0]
	if span <= 0 {
		return i1, i1, 0
	}
	return i0, i1, (t - tr.Times[i0]) / span
}

func (tr *Track) vec3(i int) mgl64.Vec3 {
	return mgl64.Vec3{tr.Values[i*3], tr.Values[i*3+1], tr.Values[i*3+2]}
}

func (tr *Track) quat(i int) mgl64.Quat {
	v := tr.Values[i*4 : i*4+4]
	return mgl64.Quat{W: v[3], V: mgl64.Vec3{v[0], v[1], v[2]}}
}

// valid reports whether Values holds exactly one entry per key.
func (tr *Track) valid() bool {
	return len(tr.Times) > 0 && len(tr.Values) == len(tr.Times)*tr.Components()
}

// SampleVec3 evaluates a translation or scale track at time t.
func (tr *Track) SampleVec3(t float64) mgl64.Vec3 {
	i0, i1, a := tr.keyIndex(t)
	if i0 == i1 || tr.Interpolation == InterpolationStep {
		return tr.vec3(i0)
	}
	v0, v1 := tr.vec3(i0), tr.vec3(i1)
	return v0.Add(v1.Sub(v0).Mul(a))
}

// SampleQuat evaluates a rotation track at time t.
func (tr *Track) SampleQuat(t float64) mgl64.Quat {
	i0, i1, a := tr.keyIndex(t)
	if i0 == i1 || tr.Interpolation == InterpolationStep {
		return tr.quat(i0)
	}
	return mgl64.QuatSlerp(tr.quat(i0), tr.quat(i1), a)
}

// Clip is a named, time-parameterized animation over a set of tracks.
type Clip struct {
	Name     string
	Duration float64
	Tracks   []Track
}

// NewClip creates a clip whose duration is the latest key time across its
// tracks. Tracks with mismatched key and value counts are dropped.
func NewClip(name string, tracks []Track) *Clip {
	c := &Clip{Name: name}
	for _, tr := range tracks {
		if !tr.valid() {
			continue
		}
		c.Tracks = append(c.Tracks, tr)
		if last := tr.Times[len(tr.Times)-1]; last > c.Duration {
			c.Duration = last
		}
	}
	return c
}

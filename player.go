package perch

import "math"

// LoopMode controls what an Action does when it reaches the end of its clip.
type LoopMode uint8

const (
	LoopRepeat LoopMode = iota // wrap to the start and keep playing
	LoopOnce                   // hold the last frame and stop
)

// binding connects one track to the node it drives.
type binding struct {
	node  *Node
	track *Track
}

// Action is the playback state of one clip on one AnimationPlayer.
type Action struct {
	clip     *Clip
	bindings []binding
	time     float64
	running  bool

	// Loop defaults to LoopRepeat.
	Loop LoopMode
	// TimeScale multiplies the delta passed to Update. Defaults to 1.
	TimeScale float64
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *Clip {
	return a.clip
}

// Time returns the local playback time in seconds.
func (a *Action) Time() float64 {
	return a.time
}

// Play starts or resumes playback and returns the action.
func (a *Action) Play() *Action {
	a.running = true
	return a
}

// Stop halts playback and rewinds to the start.
func (a *Action) Stop() {
	a.running = false
	a.time = 0
}

// IsRunning reports whether the action advances on Update.
func (a *Action) IsRunning() bool {
	return a.running
}

func (a *Action) advance(dt float64) {
	if !a.running {
		return
	}
	a.time += dt * a.TimeScale
	d := a.clip.Duration
	switch {
	case d <= 0:
		a.time = 0
	case a.Loop == LoopRepeat:
		a.time = math.Mod(a.time, d)
		if a.time < 0 {
			a.time += d
		}
	case a.time >= d:
		a.time = d
		a.running = false
	}
	a.apply()
}

// apply writes the sampled clip pose into the bound nodes.
func (a *Action) apply() {
	for _, b := range a.bindings {
		switch b.track.Path {
		case PathTranslation:
			b.node.Position = b.track.SampleVec3(a.time)
		case PathRotation:
			b.node.Rotation = b.track.SampleQuat(a.time).Normalize()
		case PathScale:
			b.node.Scale = b.track.SampleVec3(a.time)
		}
	}
}

// AnimationPlayer plays clips on the nodes of one subtree. Tracks are bound
// to nodes by name when an action is created.
type AnimationPlayer struct {
	root    *Node
	actions []*Action
}

// NewAnimationPlayer binds a player to root.
func NewAnimationPlayer(root *Node) *AnimationPlayer {
	return &AnimationPlayer{root: root}
}

// Root returns the node the player is bound to.
func (p *AnimationPlayer) Root() *Node {
	return p.root
}

// ClipAction returns the action for clip, creating it on first use. Tracks
// whose target is not found in the subtree are ignored.
func (p *AnimationPlayer) ClipAction(clip *Clip) *Action {
	for _, a := range p.actions {
		if a.clip == clip {
			return a
		}
	}
	a := &Action{clip: clip, TimeScale: 1}
	for i := range clip.Tracks {
		tr := &clip.Tracks[i]
		if n := p.root.FindByName(tr.Target); n != nil {
			a.bindings = append(a.bindings, binding{node: n, track: tr})
		}
	}
	p.actions = append(p.actions, a)
	return a
}

// Actions returns every action created on this player.
func (p *AnimationPlayer) Actions() []*Action {
	return p.actions
}

// Update advances every running action by dt seconds.
func (p *AnimationPlayer) Update(dt float64) {
	for _, a := range p.actions {
		a.advance(dt)
	}
}

package perch

import "github.com/tanema/gween/ease"

// AssetState is the lifecycle state of an Asset.
type AssetState uint8

const (
	AssetUnloaded AssetState = iota // registered, load not started
	AssetLoading                    // fetch or decode in flight
	AssetReady                      // activated and part of the scene
	AssetFailed                     // load failed; never retried
)

// String returns a lowercase state name.
func (s AssetState) String() string {
	switch s {
	case AssetUnloaded:
		return "unloaded"
	case AssetLoading:
		return "loading"
	case AssetReady:
		return "ready"
	case AssetFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AxisValue pairs a position axis with a value.
type AxisValue struct {
	Axis  Axis
	Value float64
}

// Entrance is a one-shot eased motion played when an asset activates. Each
// listed axis jumps to its From value and eases back to the anchored
// position.
type Entrance struct {
	From     []AxisValue
	Duration float64
	Delay    float64
	// Ease defaults to DefaultEase.
	Ease ease.TweenFunc
}

// Reveal controls an asset's initial visibility.
type Reveal struct {
	// Hidden starts the asset invisible.
	Hidden bool
	// MinWidth is the viewport width a hidden asset needs at activation
	// time to be revealed at all. Zero reveals at any width.
	MinWidth float64
	// Delay is the time after activation at which a hidden asset becomes
	// visible.
	Delay float64
}

// Drift is a secondary motion re-armed on every tick once Delay seconds of
// clock time have passed: two position tweens of Duration seconds toward
// sin(elapsed*Frequency)*AmplitudeX on x and cos(elapsed*Frequency)*AmplitudeZ
// on z. Each tick issues new tweens while earlier ones are still running,
// producing overlapping, restarting interpolations rather than one wave.
type Drift struct {
	Delay      float64
	AmplitudeX float64
	AmplitudeZ float64
	Frequency  float64
	Duration   float64
	// Ease defaults to DefaultEase.
	Ease ease.TweenFunc
}

// AssetSpec describes how one asset is loaded, placed, and animated.
type AssetSpec struct {
	// Name identifies the asset in logs and lookups.
	Name string
	// URL is passed to the loader's Source.
	URL string
	// Scale is applied uniformly to the asset root once, at activation.
	Scale float64
	// RotationZ is the fixed rotation about z applied on every placement.
	RotationZ float64
	// Anchor yields the viewport point the asset tracks.
	Anchor AnchorRule
	// ClipIndex selects the clip played in a loop. The index follows the
	// clip order of the source asset.
	ClipIndex int
	// StripWrapper removes the first child of the decoded root, which some
	// exports add as packaging around the actual model.
	StripWrapper bool

	Entrance *Entrance
	Reveal   Reveal
	Drift    *Drift
}

// Asset is a loaded model instance anchored to the viewport. Its node and
// player are nil until the asset is Ready, and it is populated at most once.
type Asset struct {
	spec   AssetSpec
	state  AssetState
	node   *Node
	player *AnimationPlayer
	action *Action
	err    error
}

func newAsset(spec AssetSpec) *Asset {
	return &Asset{spec: spec}
}

// Name returns the asset name.
func (a *Asset) Name() string {
	return a.spec.Name
}

// Spec returns the asset's configuration.
func (a *Asset) Spec() AssetSpec {
	return a.spec
}

// State returns the lifecycle state.
func (a *Asset) State() AssetState {
	return a.state
}

// Ready reports whether the asset has been activated.
func (a *Asset) Ready() bool {
	return a.state == AssetReady
}

// Node returns the asset's scene subtree, or nil before activation.
func (a *Asset) Node() *Node {
	return a.node
}

// Player returns the asset's animation player, or nil before activation.
func (a *Asset) Player() *AnimationPlayer {
	return a.player
}

// Action returns the looping clip action, or nil before activation.
func (a *Asset) Action() *Action {
	return a.action
}

// Err returns the load or activation error of a Failed asset.
func (a *Asset) Err() error {
	return a.err
}

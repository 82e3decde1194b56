package perch

import "math"

// Reference page geometry.
const (
	// RevealMinWidth is the viewport width above which the top-right asset
	// is revealed.
	RevealMinWidth = 768
	// SignatureNudge shifts the signature anchor down by a fraction of the
	// viewport height.
	SignatureNudge = 0.028
)

// TopRightSpec configures the asset anchored near the top-right of the
// viewport: hidden until 2 s after activation (wide viewports only), flying
// in from the left, then drifting once 8 s of clock time have passed.
func TopRightSpec(url string) AssetSpec {
	return AssetSpec{
		Name:         "top-right",
		URL:          url,
		Scale:        0.025,
		RotationZ:    math.Pi / 4,
		Anchor:       FixedAnchor(0.95, 0.45),
		ClipIndex:    1,
		StripWrapper: true,
		Entrance: &Entrance{
			From:     []AxisValue{{Axis: AxisX, Value: -2}, {Axis: AxisY, Value: 0.1}},
			Duration: 5,
			Delay:    2,
		},
		Reveal: Reveal{Hidden: true, MinWidth: RevealMinWidth, Delay: 2},
		Drift: &Drift{
			Delay:      8,
			AmplitudeX: 0.75,
			AmplitudeZ: 0.5,
			Frequency:  0.5,
			Duration:   2,
		},
	}
}

// SignatureSpec configures the asset that perches on a page element: its
// height follows the document top of topSelector and its horizontal position
// the left edge of leftSelector.
func SignatureSpec(url, topSelector, leftSelector string) AssetSpec {
	return AssetSpec{
		Name:         "signature",
		URL:          url,
		Scale:        0.03,
		RotationZ:    -math.Pi / 3,
		Anchor:       ElementAnchor(topSelector, leftSelector, SignatureNudge),
		ClipIndex:    2,
		StripWrapper: true,
		Entrance: &Entrance{
			From:     []AxisValue{{Axis: AxisX, Value: -1.2}},
			Duration: 1,
		},
	}
}

package perch

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Selector string  `json:"selector,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	W        float64 `json:"w,omitempty"`
	H        float64 `json:"h,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected resizes, page layout changes, and
// screenshots across frames for automated visual testing. Attach to an
// Overlay via SetTestRunner.
//
// Actions:
//   - "resize": width, height, scale (scale defaults to 1)
//   - "element": selector, x, y, w, h; requires a *StaticLayout
//   - "scroll": y; requires a *StaticLayout
//   - "wait": frames
//   - "screenshot": label
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to an Overlay via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the overlay. The runner's step
// method is called from Overlay.Update before injected resizes are applied.
func (o *Overlay) SetTestRunner(runner *TestRunner) {
	o.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Overlay.Update.
func (r *TestRunner) step(o *Overlay) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(o.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		o.Screenshot(st.Label)
	case "resize":
		scale := st.Scale
		if scale <= 0 {
			scale = 1
		}
		o.InjectResize(st.Width, st.Height, scale)
	case "element", "scroll":
		l, ok := o.layout.(*StaticLayout)
		if !ok {
			Logger().Warn("perch: test script needs a static layout", "action", st.Action)
			break
		}
		if st.Action == "scroll" {
			l.SetScrollY(st.Y)
		} else {
			l.Set(st.Selector, Rect{X: st.X, Y: st.Y, Width: st.W, Height: st.H})
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	default:
		Logger().Warn("perch: unknown test script action", "action", st.Action)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(o.injectQueue) == 0 {
		r.done = true
	}
}

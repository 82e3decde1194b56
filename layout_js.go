//go:build js && wasm

package perch

import "syscall/js"

// DOMLayout reads element geometry from the browser document hosting the
// wasm module.
type DOMLayout struct {
	window   js.Value
	document js.Value
}

// NewDOMLayout binds to the global window and document.
func NewDOMLayout() *DOMLayout {
	w := js.Global()
	return &DOMLayout{window: w, document: w.Get("document")}
}

// BoundingBox implements Layout using getBoundingClientRect.
func (l *DOMLayout) BoundingBox(selector string) (Rect, bool) {
	el := l.document.Call("querySelector", selector)
	if !el.Truthy() {
		return Rect{}, false
	}
	r := el.Call("getBoundingClientRect")
	return Rect{
		X:      r.Get("left").Float(),
		Y:      r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}, true
}

// ScrollY implements Layout using window.pageYOffset.
func (l *DOMLayout) ScrollY() float64 {
	return l.window.Get("pageYOffset").Float()
}

// DefaultLayout returns the layout source for the current platform: the
// browser document under js/wasm.
func DefaultLayout() Layout {
	return NewDOMLayout()
}

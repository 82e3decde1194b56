//go:build !(js && wasm)

package perch

// DefaultLayout returns the layout source for the current platform. Native
// builds have no document, so an empty StaticLayout is returned for the
// host to populate.
func DefaultLayout() Layout {
	return NewStaticLayout()
}

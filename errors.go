package perch

import "errors"

var (
	// ErrParallelRay is returned when a screen ray runs parallel to the
	// z=0 world plane and never intersects it.
	ErrParallelRay = errors.New("perch: screen ray is parallel to the world plane")

	// ErrElementNotFound is returned when an anchor references a layout
	// element that is not currently present.
	ErrElementNotFound = errors.New("perch: layout element not found")

	// ErrInvalidViewport is returned for a viewport with a non-positive
	// dimension.
	ErrInvalidViewport = errors.New("perch: invalid viewport")

	// ErrClipIndex is returned when an asset asks for an animation clip the
	// decoded asset does not have.
	ErrClipIndex = errors.New("perch: animation clip index out of range")

	// ErrUnsupportedAsset is returned by decoders for asset features they
	// cannot handle, such as compressed geometry extensions.
	ErrUnsupportedAsset = errors.New("perch: unsupported asset")
)

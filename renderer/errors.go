package renderer

import "errors"

// ErrSurfaceLost indicates the output surface was lost or outdated, typically
// after a resize race. The frame was abandoned before submission; callers
// should reconfigure the output target and retry on the next frame. Check
// with errors.Is.
var ErrSurfaceLost = errors.New("output surface lost or outdated")

// ErrNoSurface indicates a surface-dependent operation was invoked on a
// renderer constructed without a surface descriptor.
var ErrNoSurface = errors.New("renderer has no output surface configured")

// ErrZeroViewport indicates the view carried zero width or height; the frame
// cannot be encoded.
var ErrZeroViewport = errors.New("view has zero viewport dimensions")

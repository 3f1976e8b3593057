package renderer

import (
	"github.com/Carmen-Shannon/ember-go/extract"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Renderer is the host-facing deferred renderer. Each frame the host calls
// Prepare with the extracted mesh set, then RenderFrame (or
// RenderFrameToTarget) with the extracted view; the renderer encodes the
// fixed pass chain (shadow, GBuffer, light accumulation, tone-mapped present)
// and submits it in one command stream.
type Renderer interface {
	// Prepare synchronizes GPU mesh resources with one frame's extracted mesh
	// set. Must be called before RenderFrame whenever the scene changes;
	// calling it every frame is valid and cheap for unchanged meshes.
	//
	// Parameters:
	//   - meshes: the frame's extracted mesh set, keyed by entity id
	//
	// Returns:
	//   - error: an error if GPU buffer allocation fails
	Prepare(meshes extract.Meshes) error

	// RenderFrame renders one frame for the given view. With a surface the
	// frame is presented to the display; headless renderers draw into an
	// internal offscreen target.
	//
	// A return of ErrSurfaceLost is recoverable: call Resize with the current
	// dimensions and retry next frame.
	//
	// Parameters:
	//   - view: the frame's camera, viewport, and light set
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrZeroViewport, or a fatal GPU error
	RenderFrame(view *extract.View) error

	// RenderFrameToTarget renders one frame into a caller-supplied texture
	// view instead of the surface. The target must be a render attachment in
	// the renderer's output format with the view's dimensions.
	//
	// Parameters:
	//   - view: the frame's camera, viewport, and light set
	//   - target: the destination texture view
	//
	// Returns:
	//   - error: ErrZeroViewport or a fatal GPU error
	RenderFrameToTarget(view *extract.View, target *wgpu.TextureView) error

	// Resize reconfigures the output surface after a window size change.
	// No-op for headless renderers.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// SetToneMode switches the present pass tone operator for subsequent
	// frames.
	//
	// Parameters:
	//   - mode: ToneModeReinhard or ToneModeNone
	SetToneMode(mode ToneMode)

	// Device returns the underlying GPU device, for hosts that create their
	// own output targets.
	Device() *wgpu.Device

	// Queue returns the underlying GPU queue.
	Queue() *wgpu.Queue

	// Release frees all GPU resources owned by the renderer. The renderer
	// must not be used afterwards.
	Release()
}

type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend
	cfg         backendConfig
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the specified backend type.
// Without WithSurfaceDescriptor the renderer runs headless and RenderFrame
// draws into an internal offscreen target.
//
// Parameters:
//   - backendType: the rendering backend to use (e.g., WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if no compatible adapter or device is available
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		cfg: backendConfig{
			presentMode:      PresentModeVSync,
			outputFormat:     wgpu.TextureFormatRGBA8Unorm,
			shadowEnabled:    true,
			shadowResolution: 2048,
			maxPointLights:   8,
			maxSpotLights:    4,
			toneMode:         ToneModeReinhard,
		},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.cfg.log == nil {
		r.cfg.log = zap.NewNop()
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(&r.cfg)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}

	return r, nil
}

func (r *renderer) Prepare(meshes extract.Meshes) error {
	return r.backend.Prepare(meshes)
}

func (r *renderer) RenderFrame(view *extract.View) error {
	return r.backend.RenderFrame(view)
}

func (r *renderer) RenderFrameToTarget(view *extract.View, target *wgpu.TextureView) error {
	return r.backend.RenderFrameToTarget(view, target)
}

func (r *renderer) Resize(width, height int) {
	r.backend.Resize(width, height)
}

func (r *renderer) SetToneMode(mode ToneMode) {
	r.backend.SetToneMode(mode)
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) Release() {
	r.backend.Release()
}

package renderer

import (
	"github.com/Carmen-Shannon/ember-go/config"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSurfaceDescriptor attaches a display surface to the renderer. The
// descriptor is platform-specific and typically obtained from
// window.Window.SurfaceDescriptor(). Without this option the renderer runs
// headless.
//
// Parameters:
//   - descriptor: the platform-specific surface descriptor for WebGPU surface creation
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface option to a renderer
func WithSurfaceDescriptor(descriptor *wgpu.SurfaceDescriptor, width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.surfaceDescriptor = descriptor
		r.cfg.surfaceWidth = width
		r.cfg.surfaceHeight = height
	}
}

// WithOutputFormat sets the texture format the present pass writes. Only
// meaningful for headless renderers and RenderFrameToTarget; with a surface
// the output format follows the surface format.
//
// Parameters:
//   - format: the output texture format
//
// Returns:
//   - RendererBuilderOption: a function that applies the output format option to a renderer
func WithOutputFormat(format wgpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.outputFormat = format
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.presentMode = mode
	}
}

// WithShadowEnabled toggles the directional shadow depth pass. When disabled
// the shadow map is never allocated.
//
// Parameters:
//   - enabled: true to render the shadow pass (default), false to skip it
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow option to a renderer
func WithShadowEnabled(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.shadowEnabled = enabled
	}
}

// WithShadowResolution sets the square shadow map resolution in texels.
// The default is 2048.
//
// Parameters:
//   - resolution: the shadow map edge length; values below 1 are ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow resolution option to a renderer
func WithShadowResolution(resolution uint32) RendererBuilderOption {
	return func(r *renderer) {
		if resolution > 0 {
			r.cfg.shadowResolution = resolution
		}
	}
}

// WithMaxPointLights caps how many point lights are shaded per frame. Excess
// lights are dropped by estimated camera-relative contribution. The default is 8.
//
// Parameters:
//   - max: the point light budget; negative values are ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the point light budget option to a renderer
func WithMaxPointLights(max int) RendererBuilderOption {
	return func(r *renderer) {
		if max >= 0 {
			r.cfg.maxPointLights = max
		}
	}
}

// WithMaxSpotLights caps how many spot lights are shaded per frame. Excess
// lights are dropped by estimated camera-relative contribution. The default is 4.
//
// Parameters:
//   - max: the spot light budget; negative values are ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the spot light budget option to a renderer
func WithMaxSpotLights(max int) RendererBuilderOption {
	return func(r *renderer) {
		if max >= 0 {
			r.cfg.maxSpotLights = max
		}
	}
}

// WithToneMode sets the present pass tone operator. The default is Reinhard.
//
// Parameters:
//   - mode: the ToneMode to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the tone mode option to a renderer
func WithToneMode(mode ToneMode) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.toneMode = mode
	}
}

// WithLogger sets the structured logger the renderer reports skipped meshes
// and resource events through. Defaults to a no-op logger.
//
// Parameters:
//   - log: the zap logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.cfg.log = log
		}
	}
}

// WithConfig applies a loaded renderer configuration section in one step.
// Individual options applied after this one override it. An unknown tone mode
// string falls back to Reinhard.
//
// Parameters:
//   - cfg: the renderer configuration section (nil safe)
//
// Returns:
//   - RendererBuilderOption: a function that applies the configuration to a renderer
func WithConfig(cfg *config.RendererConfig) RendererBuilderOption {
	return func(r *renderer) {
		if cfg == nil {
			return
		}
		r.cfg.shadowEnabled = cfg.ShadowEnabled
		if cfg.ShadowResolution > 0 {
			r.cfg.shadowResolution = cfg.ShadowResolution
		}
		r.cfg.maxPointLights = int(cfg.MaxPointLights)
		r.cfg.maxSpotLights = int(cfg.MaxSpotLights)
		if mode, err := ParseToneMode(cfg.ToneMode); err == nil {
			r.cfg.toneMode = mode
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful for CI and headless environments without a GPU.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.cfg.forceFallbackAdapter = force
	}
}

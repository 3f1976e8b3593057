package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Render target formats of the deferred pipeline.
const (
	// GBufferFormat is the format of all four GBuffer targets.
	GBufferFormat = wgpu.TextureFormatRGBA8Unorm

	// DepthFormat is the format of the scene depth buffer and the shadow map.
	DepthFormat = wgpu.TextureFormatDepth32Float

	// LightBufferFormat is the format of the HDR light accumulation buffer.
	LightBufferFormat = wgpu.TextureFormatRGBA16Float
)

// frameResources owns every sized render target of the pipeline: the four
// GBuffer targets, the scene depth buffer, the HDR light accumulation buffer,
// the directional shadow map, and the internal output texture used when no
// caller-supplied target is given. All targets are recreated together when the
// requested dimensions change, so every pass within one frame references the
// same generation.
type frameResources struct {
	width  uint32
	height uint32

	gbufferTextures [4]*wgpu.Texture
	gbufferViews    [4]*wgpu.TextureView

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	lightTexture *wgpu.Texture
	lightView    *wgpu.TextureView

	outputFormat  wgpu.TextureFormat
	outputTexture *wgpu.Texture
	outputView    *wgpu.TextureView

	shadowResolution uint32
	shadowTexture    *wgpu.Texture
	shadowView       *wgpu.TextureView
}

// needsResize reports whether the stored viewport dimensions differ from the
// requested ones. Pure logic, split out so the resize decision is testable
// without a device.
func (f *frameResources) needsResize(width, height uint32) bool {
	return f.width != width || f.height != height
}

// ensure recreates all viewport-sized targets when the requested dimensions
// differ from the current allocation, and is a no-op otherwise. Must run
// before any pass is encoded each frame.
//
// Parameters:
//   - device: the GPU device used for texture creation
//   - width, height: requested viewport dimensions in pixels
//
// Returns:
//   - bool: true if targets were (re)created and dependent bind groups must be rebuilt
//   - error: an error if any texture creation fails
func (f *frameResources) ensure(device *wgpu.Device, width, height uint32) (bool, error) {
	if !f.needsResize(width, height) {
		return false, nil
	}

	f.releaseSized()

	for i := range f.gbufferTextures {
		tex, view, err := createTarget(device, fmt.Sprintf("GBuffer%d", i), width, height, GBufferFormat,
			wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
		if err != nil {
			f.releaseSized()
			return false, err
		}
		f.gbufferTextures[i] = tex
		f.gbufferViews[i] = view
	}

	tex, view, err := createTarget(device, "Scene Depth", width, height, DepthFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		f.releaseSized()
		return false, err
	}
	f.depthTexture = tex
	f.depthView = view

	tex, view, err = createTarget(device, "Light Buffer", width, height, LightBufferFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		f.releaseSized()
		return false, err
	}
	f.lightTexture = tex
	f.lightView = view

	tex, view, err = createTarget(device, "Internal Output", width, height, f.outputFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		f.releaseSized()
		return false, err
	}
	f.outputTexture = tex
	f.outputView = view

	f.width = width
	f.height = height

	return true, nil
}

// ensureShadow creates the shadow map at the given resolution if it is missing
// or sized differently. The shadow map is independent of the viewport, so it
// survives viewport resizes.
//
// Parameters:
//   - device: the GPU device used for texture creation
//   - resolution: shadow map width and height in texels
//
// Returns:
//   - bool: true if the shadow map was (re)created
//   - error: an error if texture creation fails
func (f *frameResources) ensureShadow(device *wgpu.Device, resolution uint32) (bool, error) {
	if f.shadowTexture != nil && f.shadowResolution == resolution {
		return false, nil
	}

	f.releaseShadow()

	tex, view, err := createTarget(device, "Shadow Map", resolution, resolution, DepthFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return false, err
	}
	f.shadowTexture = tex
	f.shadowView = view
	f.shadowResolution = resolution

	return true, nil
}

// releaseSized releases the viewport-sized targets and resets the stored
// dimensions so the next ensure recreates them.
func (f *frameResources) releaseSized() {
	for i := range f.gbufferTextures {
		releaseTarget(&f.gbufferTextures[i], &f.gbufferViews[i])
	}
	releaseTarget(&f.depthTexture, &f.depthView)
	releaseTarget(&f.lightTexture, &f.lightView)
	releaseTarget(&f.outputTexture, &f.outputView)
	f.width = 0
	f.height = 0
}

func (f *frameResources) releaseShadow() {
	releaseTarget(&f.shadowTexture, &f.shadowView)
	f.shadowResolution = 0
}

// release frees every target owned by the manager.
func (f *frameResources) release() {
	f.releaseSized()
	f.releaseShadow()
}

func createTarget(device *wgpu.Device, label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s texture: %w", label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create %s texture view: %w", label, err)
	}

	return tex, view, nil
}

func releaseTarget(tex **wgpu.Texture, view **wgpu.TextureView) {
	if *view != nil {
		(*view).Release()
		*view = nil
	}
	if *tex != nil {
		(*tex).Release()
		*tex = nil
	}
}

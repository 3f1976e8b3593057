package renderer

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/ember-go/common"
	"github.com/Carmen-Shannon/ember-go/extract"
	"github.com/Carmen-Shannon/ember-go/light"
	"github.com/Carmen-Shannon/ember-go/renderer/shader"
	"github.com/Carmen-Shannon/ember-go/renderer/shading"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// backendConfig carries the construction-time settings collected by the
// renderer builder options into the backend constructor.
type backendConfig struct {
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	surfaceWidth         int
	surfaceHeight        int
	forceFallbackAdapter bool
	presentMode          PresentMode
	outputFormat         wgpu.TextureFormat
	shadowEnabled        bool
	shadowResolution     uint32
	maxPointLights       int
	maxSpotLights        int
	toneMode             ToneMode
	log                  *zap.Logger
}

// lightSlot is one pre-allocated light sub-pass binding: a dedicated uniform
// buffer plus the bind group tying it to the current GBuffer generation. Each
// light in a frame needs its own buffer because every queue write lands before
// any pass executes.
type lightSlot struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

// wgpuRendererBackend is the WGPU-specific renderer backend interface.
type wgpuRendererBackend interface {
	// Prepare synchronizes the GPU mesh cache with one frame's extracted mesh
	// set: new entities get buffers, unchanged ones are rewritten in place,
	// count changes reallocate, and absent or invisible entities are evicted.
	//
	// Parameters:
	//   - meshes: the frame's extracted mesh set
	//
	// Returns:
	//   - error: an error if buffer allocation fails
	Prepare(meshes extract.Meshes) error

	// RenderFrame encodes and submits one full frame (shadow, GBuffer, light,
	// present) for the given view. With a configured surface the result is
	// presented to the display; without one it lands in an internal
	// offscreen target.
	//
	// Parameters:
	//   - view: the frame's camera and light set
	//
	// Returns:
	//   - error: ErrSurfaceLost if the surface must be reconfigured (recoverable),
	//     or a fatal error if resource creation or submission fails
	RenderFrame(view *extract.View) error

	// RenderFrameToTarget encodes and submits one full frame, presenting into
	// the caller-supplied texture view instead of the surface. The target's
	// format must match the renderer's output format.
	//
	// Parameters:
	//   - view: the frame's camera and light set
	//   - target: the output texture view to present into
	//
	// Returns:
	//   - error: a fatal error if resource creation or submission fails
	RenderFrameToTarget(view *extract.View, target *wgpu.TextureView) error

	// Resize reconfigures the output surface for new dimensions. Render
	// targets follow the view dimensions on the next frame.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// SetToneMode changes the present pass tone operator for subsequent frames.
	SetToneMode(mode ToneMode)

	// Device returns the underlying GPU device for host interop.
	Device() *wgpu.Device

	// Queue returns the underlying GPU queue for host interop.
	Queue() *wgpu.Queue

	// Release frees every GPU resource owned by the backend. The backend must
	// not be used afterwards.
	Release()
}

type wgpuRendererBackendImpl struct {
	mu  *sync.Mutex
	log *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	outputFormat  wgpu.TextureFormat

	shadowEnabled    bool
	shadowResolution uint32
	maxPointLights   int
	maxSpotLights    int
	toneMode         ToneMode

	gbufferBasicPipeline *wgpu.RenderPipeline
	gbufferPbrPipeline   *wgpu.RenderPipeline
	shadowBasicPipeline  *wgpu.RenderPipeline
	shadowPbrPipeline    *wgpu.RenderPipeline
	lightPipeline        *wgpu.RenderPipeline
	presentPipeline      *wgpu.RenderPipeline

	meshLayout     *wgpu.BindGroupLayout
	materialLayout *wgpu.BindGroupLayout
	shadowLayout   *wgpu.BindGroupLayout
	lightLayout    *wgpu.BindGroupLayout
	presentLayout  *wgpu.BindGroupLayout

	cameraBuffer *wgpu.Buffer
	shadowBuffer *wgpu.Buffer
	toneBuffer   *wgpu.Buffer

	gbufferSampler  *wgpu.Sampler
	materialSampler *wgpu.Sampler
	presentSampler  *wgpu.Sampler

	defaultBaseColor *wgpu.TextureView
	defaultNormal    *wgpu.TextureView
	defaultMR        *wgpu.TextureView
	defaultAO        *wgpu.TextureView
	defaultTextures  []*wgpu.Texture

	resources        *frameResources
	lightSlots       []lightSlot
	presentBindGroup *wgpu.BindGroup

	cache *meshCache
}

var _ RendererBackend = &wgpuRendererBackendImpl{}
var _ meshAllocator = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(cfg *backendConfig) (wgpuRendererBackend, error) {
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:               &sync.Mutex{},
		log:              cfg.log,
		instance:         wgpu.CreateInstance(nil),
		presentMode:      wgpu.PresentModeImmediate,
		outputFormat:     cfg.outputFormat,
		shadowEnabled:    cfg.shadowEnabled,
		shadowResolution: cfg.shadowResolution,
		maxPointLights:   cfg.maxPointLights,
		maxSpotLights:    cfg.maxSpotLights,
		toneMode:         cfg.toneMode,
	}
	if cfg.presentMode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}

	if cfg.surfaceDescriptor != nil {
		b.surface = b.instance.CreateSurface(cfg.surfaceDescriptor)
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if b.surface != nil {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.surfaceFormat = capabilities.Formats[0]
		b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      b.surfaceFormat,
			Width:       uint32(cfg.surfaceWidth),
			Height:      uint32(cfg.surfaceHeight),
			PresentMode: b.presentMode,
			AlphaMode:   capabilities.AlphaModes[0],
		})
		// The present pass draws into the swapchain, so the output format
		// follows the surface.
		b.outputFormat = b.surfaceFormat
	}

	if err := b.createStaticResources(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.createPipelines(); err != nil {
		b.Release()
		return nil, err
	}

	b.resources = &frameResources{outputFormat: b.outputFormat}
	b.cache = newMeshCache(b, b.log)

	return b, nil
}

// createStaticResources builds the resources that live for the backend's
// whole lifetime: bind group layouts, shared uniform buffers, samplers, and
// the neutral fallback material textures.
func (b *wgpuRendererBackendImpl) createStaticResources() error {
	var err error

	b.meshLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Mesh Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex, 64),
			uniformEntry(1, wgpu.ShaderStageVertex, 64),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create mesh bind group layout: %w", err)
	}

	b.materialLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Material Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0, wgpu.TextureSampleTypeFloat),
			textureEntry(1, wgpu.TextureSampleTypeFloat),
			textureEntry(2, wgpu.TextureSampleTypeFloat),
			textureEntry(3, wgpu.TextureSampleTypeFloat),
			samplerEntry(4, wgpu.SamplerBindingTypeFiltering),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create material bind group layout: %w", err)
	}

	b.shadowLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex, 64),
			uniformEntry(1, wgpu.ShaderStageVertex, 64),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow bind group layout: %w", err)
	}

	b.lightLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Light Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0, wgpu.TextureSampleTypeFloat),
			textureEntry(1, wgpu.TextureSampleTypeFloat),
			textureEntry(2, wgpu.TextureSampleTypeFloat),
			textureEntry(3, wgpu.TextureSampleTypeDepth),
			samplerEntry(4, wgpu.SamplerBindingTypeNonFiltering),
			uniformEntry(5, wgpu.ShaderStageFragment, 128),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create light bind group layout: %w", err)
	}

	b.presentLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Present Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0, wgpu.TextureSampleTypeFloat),
			samplerEntry(1, wgpu.SamplerBindingTypeFiltering),
			uniformEntry(2, wgpu.ShaderStageFragment, 16),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create present bind group layout: %w", err)
	}

	b.cameraBuffer, err = b.createUniformBuffer("Camera Uniform Buffer", 64)
	if err != nil {
		return err
	}
	b.shadowBuffer, err = b.createUniformBuffer("Shadow Uniform Buffer", 64)
	if err != nil {
		return err
	}
	b.toneBuffer, err = b.createUniformBuffer("Tone Uniform Buffer", 16)
	if err != nil {
		return err
	}

	// GBuffer reads happen at pixel centers; nearest sampling keeps the
	// depth texture binding valid and avoids attribute bleeding.
	b.gbufferSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "GBuffer Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create gbuffer sampler: %w", err)
	}

	b.materialSampler, err = b.createLinearSampler("Material Sampler", wgpu.AddressModeRepeat)
	if err != nil {
		return err
	}
	b.presentSampler, err = b.createLinearSampler("Present Sampler", wgpu.AddressModeClampToEdge)
	if err != nil {
		return err
	}

	return b.createDefaultTextures()
}

func (b *wgpuRendererBackendImpl) createLinearSampler(label string, addressMode wgpu.AddressMode) (*wgpu.Sampler, error) {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  addressMode,
		AddressModeV:  addressMode,
		AddressModeW:  addressMode,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return samp, nil
}

func (b *wgpuRendererBackendImpl) createUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return buf, nil
}

// createDefaultTextures builds the 1x1 substitutes bound in place of missing
// material maps: white base color and occlusion, a flat +Z normal, and a
// metallic-roughness map of full roughness, zero metal.
func (b *wgpuRendererBackendImpl) createDefaultTextures() error {
	var err error

	b.defaultBaseColor, err = b.uploadDefaultTexture("Default Base Color", extract.SolidTexture(255, 255, 255, 255), true)
	if err != nil {
		return err
	}
	b.defaultNormal, err = b.uploadDefaultTexture("Default Normal", extract.SolidTexture(128, 128, 255, 255), false)
	if err != nil {
		return err
	}
	b.defaultMR, err = b.uploadDefaultTexture("Default Metallic Roughness", extract.SolidTexture(0, 255, 0, 255), false)
	if err != nil {
		return err
	}
	b.defaultAO, err = b.uploadDefaultTexture("Default Occlusion", extract.SolidTexture(255, 255, 255, 255), false)
	if err != nil {
		return err
	}

	return nil
}

func (b *wgpuRendererBackendImpl) uploadDefaultTexture(label string, data *extract.TextureData, srgb bool) (*wgpu.TextureView, error) {
	tex, view, err := b.uploadTexture(label, data, srgb)
	if err != nil {
		return nil, err
	}
	b.defaultTextures = append(b.defaultTextures, tex)
	return view, nil
}

// uploadTexture creates a GPU texture from decoded RGBA pixel data and writes
// the pixels through the queue.
func (b *wgpuRendererBackendImpl) uploadTexture(label string, data *extract.TextureData, srgb bool) (*wgpu.Texture, *wgpu.TextureView, error) {
	format := wgpu.TextureFormatRGBA8Unorm
	if srgb {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s texture: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create %s texture view: %w", label, err)
	}

	return tex, view, nil
}

// createPipelines compiles the five pipelines of the deferred chain. Any
// shader or pipeline failure here aborts renderer construction.
func (b *wgpuRendererBackendImpl) createPipelines() error {
	basicLayouts := []wgpu.VertexBufferLayout{{
		ArrayStride: uint64(extract.VertexFormatPositionNormal.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}}
	pbrLayouts := []wgpu.VertexBufferLayout{{
		ArrayStride: uint64(extract.VertexFormatPositionNormalUv.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}}
	// Shadow pipelines read only the position attribute but must match the
	// mesh's actual stride.
	shadowBasicLayouts := []wgpu.VertexBufferLayout{{
		ArrayStride: uint64(extract.VertexFormatPositionNormal.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}}
	shadowPbrLayouts := []wgpu.VertexBufferLayout{{
		ArrayStride: uint64(extract.VertexFormatPositionNormalUv.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}}

	var err error

	b.gbufferBasicPipeline, err = b.createGBufferPipeline(shader.GBufferBasic, basicLayouts, []*wgpu.BindGroupLayout{b.meshLayout})
	if err != nil {
		return err
	}
	b.gbufferPbrPipeline, err = b.createGBufferPipeline(shader.GBufferPbr, pbrLayouts, []*wgpu.BindGroupLayout{b.meshLayout, b.materialLayout})
	if err != nil {
		return err
	}
	b.shadowBasicPipeline, err = b.createShadowPipeline("shadow_basic", shadowBasicLayouts)
	if err != nil {
		return err
	}
	b.shadowPbrPipeline, err = b.createShadowPipeline("shadow_pbr", shadowPbrLayouts)
	if err != nil {
		return err
	}
	b.lightPipeline, err = b.createLightPipeline()
	if err != nil {
		return err
	}
	b.presentPipeline, err = b.createPresentPipeline()
	if err != nil {
		return err
	}

	return nil
}

func (b *wgpuRendererBackendImpl) compileShader(load func() (shader.Shader, error)) (shader.Shader, *wgpu.ShaderModule, error) {
	s, err := load()
	if err != nil {
		return nil, nil, err
	}
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile shader %q: %w", s.Key(), err)
	}
	return s, module, nil
}

func (b *wgpuRendererBackendImpl) createGBufferPipeline(load func() (shader.Shader, error), vertexLayouts []wgpu.VertexBufferLayout, groupLayouts []*wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error) {
	s, module, err := b.compileShader(load)
	if err != nil {
		return nil, err
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", s.Key(), err)
	}

	targets := make([]wgpu.ColorTargetState, 4)
	for i := range targets {
		targets[i] = wgpu.ColorTargetState{
			Format:    GBufferFormat,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		// Less-or-equal so geometry written exactly at the far plane is not
		// rejected against the cleared background depth.
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", s.Key(), err)
	}

	return created, nil
}

func (b *wgpuRendererBackendImpl) createShadowPipeline(key string, vertexLayouts []wgpu.VertexBufferLayout) (*wgpu.RenderPipeline, error) {
	_, module, err := b.compileShader(shader.ShadowDepth)
	if err != nil {
		return nil, err
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key,
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.shadowLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", key, err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    []wgpu.ColorTargetState{},
		},
		// Front-face culling plus a small bias reduces shadow acne on the
		// depth-only pass.
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeFront,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              DepthFormat,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLessEqual,
			DepthBias:           2,
			DepthBiasSlopeScale: 2.0,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", key, err)
	}

	return created, nil
}

func (b *wgpuRendererBackendImpl) createLightPipeline() (*wgpu.RenderPipeline, error) {
	s, module, err := b.compileShader(shader.LightPass)
	if err != nil {
		return nil, err
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.lightLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", s.Key(), err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format: LightBufferFormat,
				// Additive accumulation: each light sub-pass sums into the
				// light buffer.
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", s.Key(), err)
	}

	return created, nil
}

func (b *wgpuRendererBackendImpl) createPresentPipeline() (*wgpu.RenderPipeline, error) {
	s, module, err := b.compileShader(shader.Present)
	if err != nil {
		return nil, err
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.presentLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", s.Key(), err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    b.outputFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", s.Key(), err)
	}

	return created, nil
}

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: minSize,
		},
	}
}

func textureEntry(binding uint32, sampleType wgpu.TextureSampleType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32, samplerType wgpu.SamplerBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: samplerType,
		},
	}
}

func (b *wgpuRendererBackendImpl) Prepare(meshes extract.Meshes) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cache.update(meshes)
}

func (b *wgpuRendererBackendImpl) RenderFrame(view *extract.View) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		// Headless: present into the internal offscreen target.
		if err := b.validateView(view); err != nil {
			return err
		}
		if err := b.ensureFrameResources(view); err != nil {
			return err
		}
		return b.encodeAndSubmit(view, b.resources.outputView)
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// A lost or outdated surface abandons the frame before any
		// submission; the caller reconfigures and retries.
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	targetView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}

	if err := b.validateView(view); err == nil {
		if err = b.ensureFrameResources(view); err == nil {
			err = b.encodeAndSubmit(view, targetView)
		}
	}
	if err != nil {
		targetView.Release()
		surfaceTexture.Release()
		return err
	}

	b.surface.Present()
	targetView.Release()
	surfaceTexture.Release()

	return nil
}

func (b *wgpuRendererBackendImpl) RenderFrameToTarget(view *extract.View, target *wgpu.TextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target == nil {
		return fmt.Errorf("nil output target")
	}
	if err := b.validateView(view); err != nil {
		return err
	}
	if err := b.ensureFrameResources(view); err != nil {
		return err
	}
	return b.encodeAndSubmit(view, target)
}

func (b *wgpuRendererBackendImpl) validateView(view *extract.View) error {
	if view == nil || view.Width == 0 || view.Height == 0 {
		return ErrZeroViewport
	}
	return nil
}

// ensureFrameResources sizes the render targets and shadow map to the view
// and rebuilds the bind groups that reference them when a new generation was
// created.
func (b *wgpuRendererBackendImpl) ensureFrameResources(view *extract.View) error {
	recreated, err := b.resources.ensure(b.device, view.Width, view.Height)
	if err != nil {
		return err
	}
	if b.shadowEnabled {
		shadowRecreated, shadowErr := b.resources.ensureShadow(b.device, b.shadowResolution)
		if shadowErr != nil {
			return shadowErr
		}
		recreated = recreated || shadowRecreated
	}

	if recreated || b.presentBindGroup == nil {
		if err := b.rebuildFrameBindGroups(); err != nil {
			return err
		}
	}
	return nil
}

// rebuildFrameBindGroups recreates the light slot and present bind groups
// against the current render target generation.
func (b *wgpuRendererBackendImpl) rebuildFrameBindGroups() error {
	b.releaseLightSlots()
	if b.presentBindGroup != nil {
		b.presentBindGroup.Release()
		b.presentBindGroup = nil
	}

	slotCount := 2 + b.maxPointLights + b.maxSpotLights // sky + directional + budgets
	b.lightSlots = make([]lightSlot, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		buf, err := b.createUniformBuffer(fmt.Sprintf("Light Uniform Buffer %d", i), 128)
		if err != nil {
			return err
		}
		group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Light Bind Group %d", i),
			Layout: b.lightLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: b.resources.gbufferViews[0]},
				{Binding: 1, TextureView: b.resources.gbufferViews[1]},
				{Binding: 2, TextureView: b.resources.gbufferViews[2]},
				{Binding: 3, TextureView: b.resources.depthView},
				{Binding: 4, Sampler: b.gbufferSampler},
				{Binding: 5, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			buf.Release()
			return fmt.Errorf("failed to create light bind group %d: %w", i, err)
		}
		b.lightSlots = append(b.lightSlots, lightSlot{buffer: buf, bindGroup: group})
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Present Bind Group",
		Layout: b.presentLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: b.resources.lightView},
			{Binding: 1, Sampler: b.presentSampler},
			{Binding: 2, Buffer: b.toneBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create present bind group: %w", err)
	}
	b.presentBindGroup = group

	return nil
}

// encodeAndSubmit writes the frame's uniforms, encodes the fixed pass order
// (shadow, GBuffer, light sub-passes, present) into one command encoder, and
// submits. The frame is abandoned whole on any error before submission.
func (b *wgpuRendererBackendImpl) encodeAndSubmit(view *extract.View, target *wgpu.TextureView) error {
	var invViewProj [16]float32
	if !common.Invert4(invViewProj[:], view.ViewProj[:]) {
		// Degenerate camera; world reconstruction falls back to identity.
		common.Identity(invViewProj[:])
	}

	camera := GPUCameraUniform{ViewProj: view.ViewProj}
	b.queue.WriteBuffer(b.cameraBuffer, 0, camera.Marshal())

	tone := light.GPUToneUniform{Mode: light.ToneOperatorReinhard}
	if b.toneMode == ToneModeNone {
		tone.Mode = light.ToneOperatorNone
	}
	b.queue.WriteBuffer(b.toneBuffer, 0, tone.Marshal())

	shadowActive := b.shadowEnabled && view.DirectionalLight != nil && b.cache.len() > 0
	if shadowActive {
		cameraPos := shading.CameraPosFromInverse(&invViewProj)
		var shadowUniform light.GPUShadowUniform
		shadowUniform.ComputeDirectionalLightVP(
			view.DirectionalLight.Direction,
			cameraPos[0], cameraPos[1], cameraPos[2],
			light.DefaultShadowHalfExtent,
			light.DefaultShadowNear,
			light.DefaultShadowFar,
		)
		b.queue.WriteBuffer(b.shadowBuffer, 0, shadowUniform.Marshal())
	}

	entries := b.sortedCacheEntries()
	for _, entry := range entries {
		model := GPUModelUniform{Model: entry.transform}
		b.queue.WriteBuffer(entry.modelBuffer, 0, model.Marshal())
	}

	lights := selectLights(view, invViewProj, b.maxPointLights, b.maxSpotLights)
	if len(lights) > len(b.lightSlots) {
		lights = lights[:len(b.lightSlots)]
	}
	for i := range lights {
		b.queue.WriteBuffer(b.lightSlots[i].buffer, 0, lights[i].Marshal())
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}

	if shadowActive {
		// All cached meshes cast; a caster outside the camera frustum can
		// still shadow visible geometry.
		b.encodeShadowPass(encoder, entries)
	}
	frustum := common.ExtractFrustumFromMatrix(view.ViewProj[:])
	b.encodeGBufferPass(encoder, view, cullEntries(entries, &frustum))
	b.encodeLightPasses(encoder, view, len(lights))
	b.encodePresentPass(encoder, view, target)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	return nil
}

// sortedCacheEntries returns the cached meshes in stable entity-id order so
// encode output is deterministic across frames.
func (b *wgpuRendererBackendImpl) sortedCacheEntries() []*cachedMesh {
	ids := make([]uint64, 0, len(b.cache.entries))
	for id := range b.cache.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, c int) bool { return ids[a] < ids[c] })

	entries := make([]*cachedMesh, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, b.cache.entries[id])
	}
	return entries
}

// cullEntries drops meshes whose world-space bounding sphere falls entirely
// outside the camera frustum. The sphere radius is scaled by the largest
// column norm of the model matrix so non-uniform scales stay conservative.
func cullEntries(entries []*cachedMesh, frustum *common.Frustum) []*cachedMesh {
	visible := make([]*cachedMesh, 0, len(entries))
	for _, entry := range entries {
		if entry.boundsRadius <= 0 {
			visible = append(visible, entry)
			continue
		}
		m := entry.transform[:]
		cx, cy, cz := common.TransformPoint(m, entry.boundsCenter[0], entry.boundsCenter[1], entry.boundsCenter[2])
		scale := maxColumnScale(m)
		if frustum.ContainsSphere(cx, cy, cz, entry.boundsRadius*scale) {
			visible = append(visible, entry)
		}
	}
	return visible
}

// maxColumnScale returns the largest length among the three basis columns of
// the upper 3x3 of a column-major model matrix.
func maxColumnScale(m []float32) float32 {
	scale := float32(0)
	for col := 0; col < 3; col++ {
		x, y, z := m[col*4], m[col*4+1], m[col*4+2]
		if s := math32.Sqrt(x*x + y*y + z*z); s > scale {
			scale = s
		}
	}
	return scale
}

func (b *wgpuRendererBackendImpl) encodeShadowPass(encoder *wgpu.CommandEncoder, entries []*cachedMesh) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Shadow Pass",
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.resources.shadowView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	res := float32(b.resources.shadowResolution)
	pass.SetViewport(0, 0, res, res, 0.0, 1.0)

	for _, entry := range entries {
		pipeline := b.shadowBasicPipeline
		if entry.format == extract.VertexFormatPositionNormalUv {
			pipeline = b.shadowPbrPipeline
		}
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, entry.shadowBindGroup, nil)
		pass.SetVertexBuffer(0, entry.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(entry.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(entry.indexCount, 1, 0, 0, 0)
	}

	pass.End()
}

func (b *wgpuRendererBackendImpl) encodeGBufferPass(encoder *wgpu.CommandEncoder, view *extract.View, entries []*cachedMesh) {
	colorAttachments := make([]wgpu.RenderPassColorAttachment, 4)
	for i := range colorAttachments {
		colorAttachments[i] = wgpu.RenderPassColorAttachment{
			View:    b.resources.gbufferViews[i],
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
		}
	}
	// Background roughness is 1 so untouched pixels never produce a singular
	// specular lobe if they slip past the depth early-out.
	colorAttachments[2].ClearValue = wgpu.Color{R: 1.0}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "GBuffer Pass",
		ColorAttachments: colorAttachments,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.resources.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	// Explicit depth range; platform defaults are not trusted.
	pass.SetViewport(0, 0, float32(view.Width), float32(view.Height), 0.0, 1.0)

	for _, entry := range entries {
		if entry.format == extract.VertexFormatPositionNormalUv {
			pass.SetPipeline(b.gbufferPbrPipeline)
			pass.SetBindGroup(0, entry.meshBindGroup, nil)
			pass.SetBindGroup(1, entry.materialBindGroup, nil)
		} else {
			pass.SetPipeline(b.gbufferBasicPipeline)
			pass.SetBindGroup(0, entry.meshBindGroup, nil)
		}
		pass.SetVertexBuffer(0, entry.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(entry.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(entry.indexCount, 1, 0, 0, 0)
	}

	pass.End()
}

// encodeLightPasses runs one fullscreen sub-pass per selected light; the
// first clears the accumulation buffer, the rest blend additively onto it.
// With no lights a clear-only pass keeps the present input defined.
func (b *wgpuRendererBackendImpl) encodeLightPasses(encoder *wgpu.CommandEncoder, view *extract.View, lightCount int) {
	beginPass := func(first bool) *wgpu.RenderPassEncoder {
		loadOp := wgpu.LoadOpLoad
		if first {
			loadOp = wgpu.LoadOpClear
		}
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "Light Pass",
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:    b.resources.lightView,
				LoadOp:  loadOp,
				StoreOp: wgpu.StoreOpStore,
			}},
		})
		pass.SetViewport(0, 0, float32(view.Width), float32(view.Height), 0.0, 1.0)
		return pass
	}

	if lightCount == 0 {
		pass := beginPass(true)
		pass.End()
		return
	}

	for i := 0; i < lightCount; i++ {
		pass := beginPass(i == 0)
		pass.SetPipeline(b.lightPipeline)
		pass.SetBindGroup(0, b.lightSlots[i].bindGroup, nil)
		pass.Draw(3, 1, 0, 0)
		pass.End()
	}
}

func (b *wgpuRendererBackendImpl) encodePresentPass(encoder *wgpu.CommandEncoder, view *extract.View, target *wgpu.TextureView) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Present Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetViewport(0, 0, float32(view.Width), float32(view.Height), 0.0, 1.0)
	pass.SetPipeline(b.presentPipeline)
	pass.SetBindGroup(0, b.presentBindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetToneMode(mode ToneMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toneMode = mode
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

// allocMeshBuffers implements meshAllocator.
func (b *wgpuRendererBackendImpl) allocMeshBuffers(id uint64, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error) {
	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Mesh %d Vertex Buffer", id),
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)

	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Mesh %d Index Buffer", id),
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return nil, nil, fmt.Errorf("failed to create index buffer: %w", err)
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)

	return vbuf, ibuf, nil
}

// writeMeshBuffers implements meshAllocator.
func (b *wgpuRendererBackendImpl) writeMeshBuffers(entry *cachedMesh, vertexData, indexData []byte) {
	b.queue.WriteBuffer(entry.vertexBuffer, 0, vertexData)
	b.queue.WriteBuffer(entry.indexBuffer, 0, indexData)
}

// allocMeshBindings implements meshAllocator: per-mesh model uniform, the
// GBuffer and shadow bind groups, and the material bind group for UV meshes
// (missing maps fall back to the shared neutral textures).
func (b *wgpuRendererBackendImpl) allocMeshBindings(id uint64, entry *cachedMesh, material *extract.PbrMaterial) error {
	modelBuffer, err := b.createUniformBuffer(fmt.Sprintf("Mesh %d Model Buffer", id), 64)
	if err != nil {
		return err
	}
	entry.modelBuffer = modelBuffer

	entry.meshBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("Mesh %d Bind Group", id),
		Layout: b.meshLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: modelBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create mesh bind group: %w", err)
	}

	entry.shadowBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("Mesh %d Shadow Bind Group", id),
		Layout: b.shadowLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.shadowBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: modelBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow bind group: %w", err)
	}

	if entry.format != extract.VertexFormatPositionNormalUv {
		return nil
	}

	views := [4]*wgpu.TextureView{b.defaultBaseColor, b.defaultNormal, b.defaultMR, b.defaultAO}
	if material != nil {
		maps := [4]struct {
			data  *extract.TextureData
			label string
			srgb  bool
		}{
			{material.BaseColor, "Base Color", true},
			{material.Normal, "Normal", false},
			{material.MetallicRoughness, "Metallic Roughness", false},
			{material.Occlusion, "Occlusion", false},
		}
		for i, m := range maps {
			if m.data == nil {
				continue
			}
			tex, texView, texErr := b.uploadTexture(fmt.Sprintf("Mesh %d %s", id, m.label), m.data, m.srgb)
			if texErr != nil {
				return texErr
			}
			entry.materialTextures = append(entry.materialTextures, tex)
			entry.materialViews = append(entry.materialViews, texView)
			views[i] = texView
		}
	}

	entry.materialBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("Mesh %d Material Bind Group", id),
		Layout: b.materialLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: views[0]},
			{Binding: 1, TextureView: views[1]},
			{Binding: 2, TextureView: views[2]},
			{Binding: 3, TextureView: views[3]},
			{Binding: 4, Sampler: b.materialSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create material bind group: %w", err)
	}

	return nil
}

// releaseMesh implements meshAllocator.
func (b *wgpuRendererBackendImpl) releaseMesh(entry *cachedMesh) {
	if entry.materialBindGroup != nil {
		entry.materialBindGroup.Release()
		entry.materialBindGroup = nil
	}
	for _, v := range entry.materialViews {
		v.Release()
	}
	entry.materialViews = nil
	for _, t := range entry.materialTextures {
		t.Release()
	}
	entry.materialTextures = nil
	if entry.shadowBindGroup != nil {
		entry.shadowBindGroup.Release()
		entry.shadowBindGroup = nil
	}
	if entry.meshBindGroup != nil {
		entry.meshBindGroup.Release()
		entry.meshBindGroup = nil
	}
	if entry.modelBuffer != nil {
		entry.modelBuffer.Release()
		entry.modelBuffer = nil
	}
	if entry.indexBuffer != nil {
		entry.indexBuffer.Release()
		entry.indexBuffer = nil
	}
	if entry.vertexBuffer != nil {
		entry.vertexBuffer.Release()
		entry.vertexBuffer = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseLightSlots() {
	for i := range b.lightSlots {
		if b.lightSlots[i].bindGroup != nil {
			b.lightSlots[i].bindGroup.Release()
		}
		if b.lightSlots[i].buffer != nil {
			b.lightSlots[i].buffer.Release()
		}
	}
	b.lightSlots = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cache != nil {
		b.cache.release()
		b.cache = nil
	}
	b.releaseLightSlots()
	if b.presentBindGroup != nil {
		b.presentBindGroup.Release()
		b.presentBindGroup = nil
	}
	if b.resources != nil {
		b.resources.release()
		b.resources = nil
	}

	releaseAll(
		b.defaultBaseColor, b.defaultNormal, b.defaultMR, b.defaultAO,
	)
	b.defaultBaseColor, b.defaultNormal, b.defaultMR, b.defaultAO = nil, nil, nil, nil
	for _, t := range b.defaultTextures {
		t.Release()
	}
	b.defaultTextures = nil

	releaseSamplers(b.gbufferSampler, b.materialSampler, b.presentSampler)
	b.gbufferSampler, b.materialSampler, b.presentSampler = nil, nil, nil

	releaseBuffers(b.cameraBuffer, b.shadowBuffer, b.toneBuffer)
	b.cameraBuffer, b.shadowBuffer, b.toneBuffer = nil, nil, nil

	releasePipelines(
		b.gbufferBasicPipeline, b.gbufferPbrPipeline,
		b.shadowBasicPipeline, b.shadowPbrPipeline,
		b.lightPipeline, b.presentPipeline,
	)
	b.gbufferBasicPipeline, b.gbufferPbrPipeline = nil, nil
	b.shadowBasicPipeline, b.shadowPbrPipeline = nil, nil
	b.lightPipeline, b.presentPipeline = nil, nil

	releaseLayouts(b.meshLayout, b.materialLayout, b.shadowLayout, b.lightLayout, b.presentLayout)
	b.meshLayout, b.materialLayout, b.shadowLayout, b.lightLayout, b.presentLayout = nil, nil, nil, nil, nil

	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func releaseAll(views ...*wgpu.TextureView) {
	for _, v := range views {
		if v != nil {
			v.Release()
		}
	}
}

func releaseSamplers(samplers ...*wgpu.Sampler) {
	for _, s := range samplers {
		if s != nil {
			s.Release()
		}
	}
}

func releaseBuffers(buffers ...*wgpu.Buffer) {
	for _, buf := range buffers {
		if buf != nil {
			buf.Release()
		}
	}
}

func releasePipelines(pipelines ...*wgpu.RenderPipeline) {
	for _, p := range pipelines {
		if p != nil {
			p.Release()
		}
	}
}

func releaseLayouts(layouts ...*wgpu.BindGroupLayout) {
	for _, l := range layouts {
		if l != nil {
			l.Release()
		}
	}
}

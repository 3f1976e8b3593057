// package extract defines the data handed to the renderer each frame: meshes,
// the camera view, and lights. The types here are plain data with no behavior
// beyond validation helpers; they are produced by the host's scene layer and
// read-only to the renderer.
package extract

import "fmt"

// VertexFormat identifies the interleaved vertex layout of a mesh.
type VertexFormat int

const (
	// VertexFormatPositionNormal is position (3x f32) + normal (3x f32), 24 bytes per vertex.
	VertexFormatPositionNormal VertexFormat = iota
	// VertexFormatPositionNormalUv is position (3x f32) + normal (3x f32) + uv (2x f32), 32 bytes per vertex.
	VertexFormatPositionNormalUv
)

// Stride returns the byte size of one vertex in this format.
//
// Returns:
//   - int: bytes per vertex, 0 for an unknown format
func (f VertexFormat) Stride() int {
	switch f {
	case VertexFormatPositionNormal:
		return 24
	case VertexFormatPositionNormalUv:
		return 32
	default:
		return 0
	}
}

// Mesh is one extracted renderable: interleaved vertex data, triangle-list
// indices, a column-major model transform, and a visibility flag. The renderer
// keys its GPU buffer cache by EntityID, so the id must be stable for the
// lifetime of the entity.
type Mesh struct {
	// EntityID uniquely identifies the source entity across frames.
	EntityID uint64
	// Format describes the interleaved vertex layout of VertexData.
	Format VertexFormat
	// VertexData is the interleaved vertex payload. Its length must be a multiple of Format.Stride().
	VertexData []byte
	// IndexData holds uint32 triangle-list indices as raw bytes (4 bytes per index).
	IndexData []byte
	// Transform is the 4x4 column-major model matrix.
	Transform [16]float32
	// Visible controls whether this mesh is drawn and retained in the GPU cache this frame.
	Visible bool
	// Material selects the UV-mapped PBR pipeline when non-nil; nil meshes use the basic pipeline.
	Material *PbrMaterial
}

// VertexCount returns the number of vertices in VertexData.
func (m *Mesh) VertexCount() int {
	stride := m.Format.Stride()
	if stride == 0 {
		return 0
	}
	return len(m.VertexData) / stride
}

// IndexCount returns the number of uint32 indices in IndexData.
func (m *Mesh) IndexCount() int {
	return len(m.IndexData) / 4
}

// Validate checks the mesh payload for internal consistency.
//
// Returns:
//   - error: nil if the mesh is well-formed, otherwise a description of the defect
func (m *Mesh) Validate() error {
	stride := m.Format.Stride()
	if stride == 0 {
		return fmt.Errorf("mesh %d: unknown vertex format %d", m.EntityID, m.Format)
	}
	if len(m.VertexData)%stride != 0 {
		return fmt.Errorf("mesh %d: vertex data length %d is not a multiple of stride %d", m.EntityID, len(m.VertexData), stride)
	}
	if len(m.IndexData)%4 != 0 {
		return fmt.Errorf("mesh %d: index data length %d is not a multiple of 4", m.EntityID, len(m.IndexData))
	}
	if m.IndexCount()%3 != 0 {
		return fmt.Errorf("mesh %d: index count %d is not a multiple of 3", m.EntityID, m.IndexCount())
	}
	vertexCount := uint32(m.VertexCount())
	for i := 0; i+4 <= len(m.IndexData); i += 4 {
		idx := uint32(m.IndexData[i]) | uint32(m.IndexData[i+1])<<8 | uint32(m.IndexData[i+2])<<16 | uint32(m.IndexData[i+3])<<24
		if idx >= vertexCount {
			return fmt.Errorf("mesh %d: index %d out of range for %d vertices", m.EntityID, idx, vertexCount)
		}
	}
	return nil
}

// Meshes is the full extracted mesh set for one frame, keyed by entity id.
type Meshes map[uint64]*Mesh

// PbrMaterial carries the four sampled texture maps of the PBR pipeline.
// Missing maps are substituted with neutral defaults at bind time.
type PbrMaterial struct {
	// BaseColor is the albedo map (sRGB).
	BaseColor *TextureData
	// Normal is the tangent-space normal map; Z is reconstructed from X/Y at shading time.
	Normal *TextureData
	// MetallicRoughness packs roughness in G and metalness in B (glTF convention).
	MetallicRoughness *TextureData
	// Occlusion is the ambient-occlusion map; only R is sampled.
	Occlusion *TextureData
}

// TextureData is decoded RGBA8 pixel data ready for GPU upload.
type TextureData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width and Height are the pixel dimensions.
	Width  uint32
	Height uint32
}

// DirectionalLight is an infinitely distant light. At most one per frame; it
// also drives the shadow pass.
type DirectionalLight struct {
	// Direction is the direction light travels, in world space. Need not be normalized.
	Direction [3]float32
	// Color is linear RGB radiance, intensity pre-multiplied.
	Color [3]float32
}

// PointLight is an omnidirectional light with a finite radius of influence.
type PointLight struct {
	// Position in world space.
	Position [3]float32
	// Color is linear RGB radiance, intensity pre-multiplied.
	Color [3]float32
	// Radius is the world-space distance at which contribution reaches zero.
	Radius float32
	// FalloffExponent shapes the radial attenuation curve; must be > 0.
	FalloffExponent float32
}

// SpotLight is a cone-restricted point light.
type SpotLight struct {
	// Position in world space.
	Position [3]float32
	// Direction is the cone axis, pointing away from the light. Need not be normalized.
	Direction [3]float32
	// Color is linear RGB radiance, intensity pre-multiplied.
	Color [3]float32
	// Radius is the world-space distance at which contribution reaches zero.
	Radius float32
	// FalloffExponent shapes the radial attenuation curve; must be > 0.
	FalloffExponent float32
	// InnerConeCos is the cosine of the half-angle inside which cone attenuation is 1.
	InnerConeCos float32
	// OuterConeCos is the cosine of the half-angle outside which cone attenuation is 0.
	OuterConeCos float32
}

// SkyLight is a uniform ambient term.
type SkyLight struct {
	// Direction points toward the sky's dominant axis. Need not be normalized.
	// The current ambient evaluation is orientation-independent; the field is
	// carried through to the uniform for directional sky models.
	Direction [3]float32
	// Color is linear RGB before intensity scaling.
	Color [3]float32
	// Intensity scales Color; zero contributes nothing.
	Intensity float32
}

// View is the per-frame camera and light set.
type View struct {
	// ViewProj is the combined view-projection matrix, column-major.
	ViewProj [16]float32
	// Width and Height are the viewport dimensions in pixels.
	Width  uint32
	Height uint32
	// DirectionalLight is the optional primary light; nil disables the shadow pass
	// and directional shading for the frame.
	DirectionalLight *DirectionalLight
	// PointLights and SpotLights are ordered; entries beyond the configured maxima
	// are truncated, keeping the strongest contributors.
	PointLights []PointLight
	SpotLights  []SpotLight
	// SkyLight is the optional ambient term.
	SkyLight *SkyLight
}

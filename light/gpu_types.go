// package light holds the GPU-aligned light, shadow, and tone uniform types
// and the math that fills them. Each struct is kept in lockstep with an
// embedded canonical WGSL definition so the CPU and shader layouts cannot
// drift apart silently.
package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/ember-go/common"
	"github.com/Carmen-Shannon/ember-go/extract"
)

// Light type tags shared with the WGSL Light struct.
const (
	LightTypeDirectional uint32 = 0
	LightTypePoint       uint32 = 1
	LightTypeSpot        uint32 = 2
	LightTypeSky         uint32 = 3
)

// GPULightUniformSource is the canonical WGSL definition of the Light struct.
// Matches GPULightUniform layout exactly (128 bytes, WGSL aligned).
//
//go:embed assets/light_uniform.wgsl
var GPULightUniformSource string

// GPULightUniform is the GPU-aligned representation of one light-pass
// sub-pass's uniform data: the frame's inverse view-projection matrix plus the
// variant-tagged light description.
// Matches the WGSL Light struct layout exactly (see GPULightUniformSource).
// Size: 128 bytes (WGSL aligned).
type GPULightUniform struct {
	InvViewProj [16]float32 // offset   0: inverse view-projection, column-major
	Position    [3]float32  // offset  64: world position (point/spot) or unused (directional)
	LightType   uint32      // offset  76: 0 = directional, 1 = point, 2 = spot
	Color       [3]float32  // offset  80: linear RGB radiance
	Falloff     float32     // offset  92: radial falloff exponent (point/spot)
	Direction   [3]float32  // offset  96: normalized travel direction (directional/spot)
	Radius      float32     // offset 108: radius of influence (point/spot)
	InnerCone   float32     // offset 112: cos(inner half-angle) for spot
	OuterCone   float32     // offset 116: cos(outer half-angle) for spot
	_pad        [2]uint32   // offset 120: padding to 128-byte size
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, 128)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.InvViewProj[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[76:80], g.LightType)
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[84:88], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[88:92], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[92:96], math.Float32bits(g.Falloff))
	binary.LittleEndian.PutUint32(buf[96:100], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[100:104], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[104:108], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[108:112], math.Float32bits(g.Radius))
	binary.LittleEndian.PutUint32(buf[112:116], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[116:120], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[120:124], 0) // padding
	binary.LittleEndian.PutUint32(buf[124:128], 0) // padding
	return buf
}

// NewDirectionalUniform builds the light-pass uniform for a directional light.
//
// Parameters:
//   - l: the extracted directional light
//   - invViewProj: the frame's inverse view-projection matrix
//
// Returns:
//   - GPULightUniform: populated uniform ready to marshal
func NewDirectionalUniform(l *extract.DirectionalLight, invViewProj [16]float32) GPULightUniform {
	dx, dy, dz := common.Normalize3(l.Direction[0], l.Direction[1], l.Direction[2])
	return GPULightUniform{
		InvViewProj: invViewProj,
		LightType:   LightTypeDirectional,
		Color:       l.Color,
		Direction:   [3]float32{dx, dy, dz},
	}
}

// NewPointUniform builds the light-pass uniform for a point light.
//
// Parameters:
//   - l: the extracted point light
//   - invViewProj: the frame's inverse view-projection matrix
//
// Returns:
//   - GPULightUniform: populated uniform ready to marshal
func NewPointUniform(l *extract.PointLight, invViewProj [16]float32) GPULightUniform {
	return GPULightUniform{
		InvViewProj: invViewProj,
		LightType:   LightTypePoint,
		Position:    l.Position,
		Color:       l.Color,
		Falloff:     l.FalloffExponent,
		Radius:      l.Radius,
	}
}

// NewSpotUniform builds the light-pass uniform for a spot light.
//
// Parameters:
//   - l: the extracted spot light
//   - invViewProj: the frame's inverse view-projection matrix
//
// Returns:
//   - GPULightUniform: populated uniform ready to marshal
func NewSpotUniform(l *extract.SpotLight, invViewProj [16]float32) GPULightUniform {
	dx, dy, dz := common.Normalize3(l.Direction[0], l.Direction[1], l.Direction[2])
	return GPULightUniform{
		InvViewProj: invViewProj,
		LightType:   LightTypeSpot,
		Position:    l.Position,
		Color:       l.Color,
		Falloff:     l.FalloffExponent,
		Direction:   [3]float32{dx, dy, dz},
		Radius:      l.Radius,
		InnerCone:   l.InnerConeCos,
		OuterCone:   l.OuterConeCos,
	}
}

// NewSkyUniform builds the light-pass uniform for the ambient sky light.
//
// Parameters:
//   - l: the extracted sky light
//   - invViewProj: the frame's inverse view-projection matrix
//
// Returns:
//   - GPULightUniform: populated uniform ready to marshal
func NewSkyUniform(l *extract.SkyLight, invViewProj [16]float32) GPULightUniform {
	dx, dy, dz := common.Normalize3(l.Direction[0], l.Direction[1], l.Direction[2])
	return GPULightUniform{
		InvViewProj: invViewProj,
		LightType:   LightTypeSky,
		Color: [3]float32{
			l.Color[0] * l.Intensity,
			l.Color[1] * l.Intensity,
			l.Color[2] * l.Intensity,
		},
		Direction: [3]float32{dx, dy, dz},
	}
}

// GPUShadowUniformSource is the canonical WGSL definition of the ShadowUniform
// struct. Matches GPUShadowUniform layout exactly (64 bytes, WGSL aligned).
//
//go:embed assets/shadow_uniform.wgsl
var GPUShadowUniformSource string

// GPUShadowUniform is the GPU-aligned representation of the shadow vertex
// shader uniform containing only the light view-projection matrix.
// Matches the WGSL ShadowUniform struct layout exactly (see GPUShadowUniformSource).
// Size: 64 bytes (mat4x4<f32>).
type GPUShadowUniform struct {
	LightVP [16]float32 // orthographic view-projection from the light's perspective
}

// Size returns the size of the GPUShadowUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (u *GPUShadowUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// ComputeDirectionalLightVP builds an orthographic view-projection matrix for
// a directional light's shadow pass and stores it in the receiver's LightVP
// field. The frustum is centered on the provided center position and aligned
// to look along the light's direction.
//
// Parameters:
//   - lightDir: direction the light travels (from light toward scene); normalized internally
//   - centerX, centerY, centerZ: world-space center of the shadow frustum
//   - halfExtent: half-size of the orthographic frustum in world units
//   - near: near plane distance
//   - far: far plane distance
func (u *GPUShadowUniform) ComputeDirectionalLightVP(lightDir [3]float32, centerX, centerY, centerZ, halfExtent, near, far float32) {
	dx, dy, dz := common.Normalize3(lightDir[0], lightDir[1], lightDir[2])

	// Position the "eye" behind the center, opposite the light direction,
	// so we look from behind the scene toward the lit area.
	eyeX := centerX - dx*far*0.5
	eyeY := centerY - dy*far*0.5
	eyeZ := centerZ - dz*far*0.5

	// Choose a stable up vector that isn't parallel to the light direction.
	// If the light points nearly straight up or down, use X-axis as up.
	upX, upY, upZ := float32(0), float32(1), float32(0)
	if absF32(dy) > 0.99 {
		upX, upY, upZ = 1, 0, 0
	}

	var view [16]float32
	common.LookAt(view[:],
		eyeX, eyeY, eyeZ,
		centerX, centerY, centerZ,
		upX, upY, upZ,
	)

	var proj [16]float32
	common.Ortho(proj[:], -halfExtent, halfExtent, -halfExtent, halfExtent, near, far)

	common.Mul4(u.LightVP[:], proj[:], view[:])
}

// Marshal serializes the GPUShadowUniform struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (u *GPUShadowUniform) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(u.LightVP[i]))
	}
	return buf
}

// Tone operator tags shared with the WGSL ToneUniform struct.
const (
	ToneOperatorReinhard uint32 = 0
	ToneOperatorNone     uint32 = 1
)

// GPUToneUniformSource is the canonical WGSL definition of the ToneUniform
// struct. Matches GPUToneUniform layout exactly (16 bytes, WGSL aligned).
//
//go:embed assets/tone_uniform.wgsl
var GPUToneUniformSource string

// GPUToneUniform is the GPU-aligned representation of the present pass's tone
// operator selector.
// Matches the WGSL ToneUniform struct layout exactly (see GPUToneUniformSource).
// Size: 16 bytes (u32 + padding).
type GPUToneUniform struct {
	Mode uint32    // offset 0: 0 = Reinhard, 1 = None (clamp)
	_pad [3]uint32 // offset 4: padding to 16-byte size
}

// Size returns the size of the GPUToneUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (t *GPUToneUniform) Size() int {
	return int(unsafe.Sizeof(*t))
}

// Marshal serializes the GPUToneUniform struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (t *GPUToneUniform) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], t.Mode)
	return buf
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

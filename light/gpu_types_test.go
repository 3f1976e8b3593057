package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/ember-go/common"
	"github.com/Carmen-Shannon/ember-go/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func TestGPULightUniformMarshalLayout(t *testing.T) {
	u := GPULightUniform{
		Position:  [3]float32{1, 2, 3},
		LightType: LightTypeSpot,
		Color:     [3]float32{0.5, 0.6, 0.7},
		Falloff:   2.5,
		Direction: [3]float32{0, -1, 0},
		Radius:    42,
		InnerCone: 0.9,
		OuterCone: 0.8,
	}
	for i := range u.InvViewProj {
		u.InvViewProj[i] = float32(i)
	}

	buf := u.Marshal()
	require.Len(t, buf, 128)
	assert.Equal(t, 128, u.Size())

	// Every offset here is shared with the WGSL Light struct; a drift on
	// either side corrupts the whole light pass.
	assert.Equal(t, float32(15), f32At(buf, 60), "inv_view_proj occupies bytes 0..63")
	assert.Equal(t, float32(1), f32At(buf, 64))
	assert.Equal(t, float32(3), f32At(buf, 72))
	assert.Equal(t, LightTypeSpot, binary.LittleEndian.Uint32(buf[76:80]))
	assert.Equal(t, float32(0.5), f32At(buf, 80))
	assert.Equal(t, float32(2.5), f32At(buf, 92))
	assert.Equal(t, float32(-1), f32At(buf, 100))
	assert.Equal(t, float32(42), f32At(buf, 108))
	assert.Equal(t, float32(0.9), f32At(buf, 112))
	assert.Equal(t, float32(0.8), f32At(buf, 116))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[120:124]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[124:128]))
}

func TestLightUniformConstructors(t *testing.T) {
	var inv [16]float32
	common.Identity(inv[:])

	dir := NewDirectionalUniform(&extract.DirectionalLight{
		Direction: [3]float32{0, -4, 0},
		Color:     [3]float32{1, 0.9, 0.8},
	}, inv)
	assert.Equal(t, LightTypeDirectional, dir.LightType)
	assert.InDelta(t, -1.0, dir.Direction[1], 1e-6, "direction must be normalized")

	point := NewPointUniform(&extract.PointLight{
		Position: [3]float32{1, 2, 3},
		Color:    [3]float32{1, 1, 1},
		Radius:   15, FalloffExponent: 2,
	}, inv)
	assert.Equal(t, LightTypePoint, point.LightType)
	assert.Equal(t, float32(15), point.Radius)
	assert.Equal(t, float32(2), point.Falloff)

	spot := NewSpotUniform(&extract.SpotLight{
		Position:        [3]float32{0, 5, 0},
		Color:           [3]float32{1, 1, 1},
		Radius:          20,
		FalloffExponent: 1,
		Direction:       [3]float32{0, -2, 0},
		InnerConeCos:    0.95,
		OuterConeCos:    0.85,
	}, inv)
	assert.Equal(t, LightTypeSpot, spot.LightType)
	assert.InDelta(t, -1.0, spot.Direction[1], 1e-6)
	assert.Equal(t, float32(0.95), spot.InnerCone)
	assert.Equal(t, float32(0.85), spot.OuterCone)

	sky := NewSkyUniform(&extract.SkyLight{
		Direction: [3]float32{0, 2, 0},
		Color:     [3]float32{0.1, 0.2, 0.3},
		Intensity: 0.5,
	}, inv)
	assert.Equal(t, LightTypeSky, sky.LightType)
	assert.InDelta(t, 0.05, float64(sky.Color[0]), 1e-6)
	assert.InDelta(t, 0.1, float64(sky.Color[1]), 1e-6)
	assert.InDelta(t, 0.15, float64(sky.Color[2]), 1e-6)
	assert.Equal(t, [3]float32{0, 1, 0}, sky.Direction)
}

func TestComputeDirectionalLightVP(t *testing.T) {
	var u GPUShadowUniform
	u.ComputeDirectionalLightVP(
		[3]float32{0, -1, 0}, // straight down, exercises the up-vector flip
		0, 0, 0,
		DefaultShadowHalfExtent,
		DefaultShadowNear,
		DefaultShadowFar,
	)

	// The frustum center must project to the middle of the shadow map with a
	// depth inside [0, 1].
	cx, cy, cz := common.TransformPoint(u.LightVP[:], 0, 0, 0)
	assert.InDelta(t, 0, cx, 1e-4)
	assert.InDelta(t, 0, cy, 1e-4)
	assert.Greater(t, cz, float32(0))
	assert.Less(t, cz, float32(1))

	// A point at the horizontal extent lands on the NDC edge. The flipped up
	// vector may rotate world X into either NDC axis, so check the larger one.
	ex, ey, ez := common.TransformPoint(u.LightVP[:], DefaultShadowHalfExtent, 0, 0)
	edge := absEdge(ex)
	if absEdge(ey) > edge {
		edge = absEdge(ey)
	}
	assert.InDelta(t, 1.0, edge, 1e-4)
	assert.Greater(t, ez, float32(0))
	assert.Less(t, ez, float32(1))
}

func absEdge(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestComputeDirectionalLightVPDepthOrdering(t *testing.T) {
	var u GPUShadowUniform
	u.ComputeDirectionalLightVP([3]float32{0, -1, 0}, 0, 0, 0, 40, 0.1, 200)

	// A point above the center is closer to the light and must map to a
	// smaller depth.
	_, _, high := common.TransformPoint(u.LightVP[:], 0, 20, 0)
	_, _, low := common.TransformPoint(u.LightVP[:], 0, -20, 0)
	assert.Less(t, high, low)
}

func TestGPUShadowUniformMarshal(t *testing.T) {
	var u GPUShadowUniform
	for i := range u.LightVP {
		u.LightVP[i] = float32(i) * 0.5
	}

	buf := u.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, 64, u.Size())
	assert.Equal(t, float32(0), f32At(buf, 0))
	assert.Equal(t, float32(7.5), f32At(buf, 60))
}

func TestGPUToneUniformMarshal(t *testing.T) {
	u := GPUToneUniform{Mode: ToneOperatorNone}
	buf := u.Marshal()
	require.Len(t, buf, 16)
	assert.Equal(t, 16, u.Size())
	assert.Equal(t, ToneOperatorNone, binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[4:8]))
}

func TestUniformSourcesEmbedded(t *testing.T) {
	// The embedded WGSL snippets are spliced into shaders at build time; an
	// empty embed means a broken go:embed path.
	assert.Contains(t, GPULightUniformSource, "struct Light")
	assert.Contains(t, GPUShadowUniformSource, "struct ShadowUniform")
	assert.Contains(t, GPUToneUniformSource, "struct ToneUniform")
}

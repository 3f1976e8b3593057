package shading

import (
	"testing"

	"github.com/Carmen-Shannon/ember-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSurface() *Surface {
	return &Surface{
		BaseColor: Vec3{0.8, 0.8, 0.8},
		Occlusion: 1.0,
		Normal:    Vec3{0, 1, 0},
		Roughness: 0.5,
		Metalness: 0.0,
		Specular:  0.5,
		Position:  Vec3{0, 0, 0},
	}
}

func TestEvaluateFragmentBackgroundEarlyOut(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:      LightKindDirectional,
		Color:     Vec3{1, 1, 1},
		Direction: Vec3{0, -1, 0},
	}
	camera := Vec3{0, 5, 5}

	tests := []struct {
		name  string
		depth float32
		lit   bool
	}{
		{"depth at clear value", 1.0, false},
		{"depth beyond clear value", 1.5, false},
		{"depth just inside", 0.9999, true},
		{"depth mid-range", 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EvaluateFragment(tt.depth, s, l, camera)
			if tt.lit {
				require.Greater(t, out[1], float32(0), "geometry pixels must shade normally")
				assert.Equal(t, EvaluatePixel(s, l, camera), out)
			} else {
				assert.Equal(t, Vec3{}, out, "background pixels must contribute nothing")
			}
		})
	}
}

func TestEvaluateFragmentBackgroundIgnoresSky(t *testing.T) {
	s := testSurface()
	l := &Light{Kind: LightKindSky, Color: Vec3{0.2, 0.2, 0.2}}

	assert.Equal(t, Vec3{}, EvaluateFragment(1.0, s, l, Vec3{}), "ambient must not leak onto the background")
	assert.NotEqual(t, Vec3{}, EvaluateFragment(0.5, s, l, Vec3{}))
}

func TestEvaluatePixelDirectionalOverhead(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:      LightKindDirectional,
		Color:     Vec3{1, 1, 1},
		Direction: Vec3{0, -1, 0},
	}
	camera := Vec3{0, 5, 5}

	out := EvaluatePixel(s, l, camera)
	for i := 0; i < 3; i++ {
		require.Greater(t, out[i], float32(0), "an overhead light on an upward surface must contribute")
	}
	// Neutral surface under a white light stays neutral.
	assert.InDelta(t, out[0], out[1], 1e-6)
	assert.InDelta(t, out[1], out[2], 1e-6)
}

func TestEvaluatePixelBackfacingLight(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:      LightKindDirectional,
		Color:     Vec3{1, 1, 1},
		Direction: Vec3{0, 1, 0}, // travelling up, hits the surface from below
	}

	out := EvaluatePixel(s, l, Vec3{0, 5, 5})
	assert.Equal(t, Vec3{}, out)
}

func TestEvaluatePixelPointBeyondRadius(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:            LightKindPoint,
		Color:           Vec3{1, 1, 1},
		Position:        Vec3{0, 15, 0}, // 1.5x the radius away
		Radius:          10,
		FalloffExponent: 2,
	}

	out := EvaluatePixel(s, l, Vec3{0, 5, 5})
	assert.Equal(t, Vec3{}, out, "a light beyond its radius contributes nothing")
}

func TestEvaluatePixelSpotOutsideCone(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:            LightKindSpot,
		Color:           Vec3{1, 1, 1},
		Position:        Vec3{5, 5, 0},
		Direction:       Vec3{1, 0, 0}, // pointing away from the surface
		Radius:          20,
		FalloffExponent: 2,
		InnerConeCos:    0.95,
		OuterConeCos:    0.9,
	}

	out := EvaluatePixel(s, l, Vec3{0, 5, 5})
	assert.Equal(t, Vec3{}, out)
}

func TestEvaluatePixelSpotInsideCone(t *testing.T) {
	s := testSurface()
	l := &Light{
		Kind:            LightKindSpot,
		Color:           Vec3{1, 1, 1},
		Position:        Vec3{0, 5, 0},
		Direction:       Vec3{0, -1, 0},
		Radius:          20,
		FalloffExponent: 2,
		InnerConeCos:    0.9,
		OuterConeCos:    0.7,
	}

	out := EvaluatePixel(s, l, Vec3{0, 5, 5})
	for i := 0; i < 3; i++ {
		require.Greater(t, out[i], float32(0))
	}
}

func TestEvaluatePixelMetalKillsDiffuse(t *testing.T) {
	dielectric := testSurface()
	metal := testSurface()
	metal.Metalness = 1.0
	metal.Roughness = 1.0 // flatten the specular lobe

	l := &Light{
		Kind:      LightKindDirectional,
		Color:     Vec3{1, 1, 1},
		Direction: Vec3{0, -1, 0},
	}
	camera := Vec3{0, 5, 5}

	d := EvaluatePixel(dielectric, l, camera)
	m := EvaluatePixel(metal, l, camera)
	assert.Less(t, m[0], d[0], "with no diffuse term a rough metal reflects less than a dielectric")
}

func TestEvaluatePixelSkyIsAmbient(t *testing.T) {
	s := testSurface()
	s.Occlusion = 0.5
	l := &Light{
		Kind:  LightKindSky,
		Color: Vec3{0.2, 0.4, 0.6},
	}

	out := EvaluatePixel(s, l, Vec3{0, 5, 5})
	expected := s.BaseColor.Scale(0.5).Mul(l.Color)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], out[i], 1e-6, "sky light is occluded base color times sky color")
	}

	// Orientation must not matter.
	s.Normal = Vec3{0, -1, 0}
	flipped := EvaluatePixel(s, l, Vec3{0, 5, 5})
	assert.Equal(t, out, flipped)
}

func TestEvaluatePixelOcclusionScalesDiffuse(t *testing.T) {
	open := testSurface()
	occluded := testSurface()
	occluded.Occlusion = 0.25

	l := &Light{
		Kind:      LightKindDirectional,
		Color:     Vec3{1, 1, 1},
		Direction: Vec3{0, -1, 0},
	}

	a := EvaluatePixel(open, l, Vec3{0, 5, 5})
	b := EvaluatePixel(occluded, l, Vec3{0, 5, 5})
	assert.Less(t, b[0], a[0])
}

func TestReconstructWorldPosRoundTrip(t *testing.T) {
	var viewMat, proj, viewProj, invViewProj [16]float32
	common.LookAt(viewMat[:], 3, 4, 8, 0, 0, 0, 0, 1, 0)
	common.Perspective(proj[:], 1.0, 16.0/9.0, 0.1, 100)
	common.Mul4(viewProj[:], proj[:], viewMat[:])
	require.True(t, common.Invert4(invViewProj[:], viewProj[:]))

	world := Vec3{1.5, -0.5, 2.0}

	// Project forward through the view-projection to screen UV and depth.
	cx, cy, cz := common.TransformPoint(viewProj[:], world[0], world[1], world[2])
	u := (cx + 1.0) / 2.0
	v := (1.0 - cy) / 2.0

	got := ReconstructWorldPos(&invViewProj, u, v, cz)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, world[i], got[i], 1e-3)
	}
}

func TestCameraPosFromInverse(t *testing.T) {
	var viewMat, proj, viewProj, invViewProj [16]float32
	eye := Vec3{3, 4, 8}
	near := float32(0.01)
	common.LookAt(viewMat[:], eye[0], eye[1], eye[2], 0, 0, 0, 0, 1, 0)
	common.Perspective(proj[:], 1.0, 1.0, near, 100)
	common.Mul4(viewProj[:], proj[:], viewMat[:])
	require.True(t, common.Invert4(invViewProj[:], viewProj[:]))

	// Depth zero unprojects to the near-plane center, which sits `near`
	// units in front of the eye.
	got := CameraPosFromInverse(&invViewProj)
	assert.InDelta(t, float64(near), float64(got.Sub(eye).Length()), 5e-2)
}

func TestLightAttenuationVariants(t *testing.T) {
	pos := Vec3{0, 0, 0}

	directional := &Light{Kind: LightKindDirectional}
	assert.Equal(t, float32(1), directional.Attenuation(pos))

	sky := &Light{Kind: LightKindSky}
	assert.Equal(t, float32(1), sky.Attenuation(pos))

	point := &Light{Kind: LightKindPoint, Position: Vec3{0, 5, 0}, Radius: 10, FalloffExponent: 1}
	assert.InDelta(t, 0.5, point.Attenuation(pos), 1e-6)
}

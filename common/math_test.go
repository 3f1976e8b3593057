package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatInDelta(t *testing.T, expected, actual []float32, delta float64) {
	t.Helper()
	require.Len(t, actual, 16)
	for i := 0; i < 16; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "element %d", i)
	}
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	ident := mgl32.Ident4()
	assertMatInDelta(t, ident[:], m, 0)
}

func TestMul4MatchesMathgl(t *testing.T) {
	a := mgl32.HomogRotate3DY(0.7).Mul4(mgl32.Translate3D(1, 2, 3))
	b := mgl32.Scale3D(2, 0.5, 1.5)

	var out [16]float32
	Mul4(out[:], a[:], b[:])

	expected := a.Mul4(b)
	assertMatInDelta(t, expected[:], out[:], 1e-5)
}

func TestMul4AliasedOutput(t *testing.T) {
	// out == a must still produce the right product.
	a := mgl32.Translate3D(1, 2, 3)
	b := mgl32.Scale3D(2, 2, 2)
	expected := a.Mul4(b)

	m := a
	Mul4(m[:], m[:], b[:])
	assertMatInDelta(t, expected[:], m[:], 1e-5)
}

func TestInvert4MatchesMathgl(t *testing.T) {
	m := mgl32.HomogRotate3DX(0.4).Mul4(mgl32.Translate3D(-3, 5, 2)).Mul4(mgl32.Scale3D(2, 2, 2))

	var out [16]float32
	require.True(t, Invert4(out[:], m[:]))

	expected := m.Inv()
	assertMatInDelta(t, expected[:], out[:], 1e-5)
}

func TestInvert4RoundTrip(t *testing.T) {
	var view, proj, vp, inv, prod [16]float32
	LookAt(view[:], 3, 4, 8, 0, 1, 0, 0, 1, 0)
	Perspective(proj[:], 1.1, 1.6, 0.1, 500)
	Mul4(vp[:], proj[:], view[:])

	require.True(t, Invert4(inv[:], vp[:]))
	Mul4(prod[:], vp[:], inv[:])

	ident := mgl32.Ident4()
	assertMatInDelta(t, ident[:], prod[:], 1e-3)
}

func TestInvert4Singular(t *testing.T) {
	singular := make([]float32, 16) // all zeros
	out := make([]float32, 16)
	out[0] = 99
	assert.False(t, Invert4(out, singular))
	assert.Equal(t, float32(99), out[0], "a singular input must leave the output untouched")
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 2, 3, 4, 0, 0, 0, 0, 1, 0)

	x, y, z := TransformPoint(view[:], 2, 3, 4)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)
}

func TestLookAtTargetOnNegativeZ(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	// The look target sits straight ahead, which is -Z in view space.
	x, y, z := TransformPoint(view[:], 0, 0, 0)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, -10, z, 1e-5)
}

func TestLookAtMatchesMathgl(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 1, 2, 3, 0, 0, 0, 0, 1, 0)

	expected := mgl32.LookAt(1, 2, 3, 0, 0, 0, 0, 1, 0)
	assertMatInDelta(t, expected[:], view[:], 1e-5)
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.5), float32(100.0)
	var proj [16]float32
	Perspective(proj[:], float32(math.Pi/3), 1.0, near, far)

	// WebGPU clip space: depth runs from 0 at the near plane to 1 at the far
	// plane, along -Z in view space.
	_, _, zNear := TransformPoint(proj[:], 0, 0, -near)
	_, _, zFar := TransformPoint(proj[:], 0, 0, -far)
	assert.InDelta(t, 0.0, zNear, 1e-5)
	assert.InDelta(t, 1.0, zFar, 1e-4)
}

func TestOrthoDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(200.0)
	var proj [16]float32
	Ortho(proj[:], -40, 40, -40, 40, near, far)

	_, _, zNear := TransformPoint(proj[:], 0, 0, -near)
	_, _, zFar := TransformPoint(proj[:], 0, 0, -far)
	assert.InDelta(t, 0.0, zNear, 1e-5)
	assert.InDelta(t, 1.0, zFar, 1e-5)

	// Extents map to the NDC edges.
	x, y, _ := TransformPoint(proj[:], 40, -40, -1)
	assert.InDelta(t, 1.0, x, 1e-5)
	assert.InDelta(t, -1.0, y, 1e-5)
}

func TestBuildModelMatrixTranslation(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 5, -3, 7, 0, 0, 0, 1, 1, 1)

	x, y, z := TransformPoint(m[:], 0, 0, 0)
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(-3), y)
	assert.Equal(t, float32(7), z)
}

func TestBuildModelMatrixScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, 0, 0, 2, 3, 4)

	x, y, z := TransformPoint(m[:], 1, 1, 1)
	assert.InDelta(t, 2, x, 1e-5)
	assert.InDelta(t, 3, y, 1e-5)
	assert.InDelta(t, 4, z, 1e-5)
}

func TestBuildModelMatrixYawRotation(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, float32(math.Pi/2), 0, 1, 1, 1)

	// A quarter turn around Y carries +X onto -Z.
	x, y, z := TransformPoint(m[:], 1, 0, 0)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, -1, z, 1e-5)
}

func TestTransformPointPerspectiveDivide(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], 1.0, 1.0, 1.0, 100.0)

	// A point twice as far projects to half the screen offset.
	xNear, _, _ := TransformPoint(proj[:], 1, 0, -2)
	xFar, _, _ := TransformPoint(proj[:], 1, 0, -4)
	assert.InDelta(t, xNear/2, xFar, 1e-5)
}

func TestNormalize3(t *testing.T) {
	x, y, z := Normalize3(3, 0, 4)
	assert.InDelta(t, 0.6, x, 1e-6)
	assert.InDelta(t, 0.0, y, 1e-6)
	assert.InDelta(t, 0.8, z, 1e-6)

	// Zero vectors come back unchanged rather than NaN.
	x, y, z = Normalize3(0, 0, 0)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)
	assert.Equal(t, float32(0), z)
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1.0, 2.0}
	buf := SliceToBytes(data)
	require.Len(t, buf, 8)

	var empty []float32
	assert.Nil(t, SliceToBytes(empty))

	indices := []uint32{0xAABBCCDD}
	ibuf := SliceToBytes(indices)
	require.Len(t, ibuf, 4)
	assert.Equal(t, byte(0xDD), ibuf[0], "little-endian layout expected for index uploads")
}

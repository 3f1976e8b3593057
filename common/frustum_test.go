package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFrustum builds a frustum from a camera at the origin looking down -Z
// with a 90 degree vertical field of view.
func testFrustum(t *testing.T, near, far float32) Frustum {
	t.Helper()

	view := make([]float32, 16)
	proj := make([]float32, 16)
	viewProj := make([]float32, 16)
	LookAt(view, 0, 0, 0, 0, 0, -1, 0, 1, 0)
	Perspective(proj, float32(math.Pi/2), 1.0, near, far)
	Mul4(viewProj, proj, view)

	return ExtractFrustumFromMatrix(viewProj)
}

func TestExtractFrustumPlanesNormalized(t *testing.T) {
	f := testFrustum(t, 0.1, 100)

	for i := range f.Planes {
		n := f.Planes[i].Normal
		length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		assert.InDelta(t, 1.0, length, 1e-4, "plane %d normal length", i)
	}
}

func TestContainsSpherePointTests(t *testing.T) {
	f := testFrustum(t, 0.1, 100)

	tests := []struct {
		name    string
		x, y, z float32
		want    bool
	}{
		{"center of frustum", 0, 0, -10, true},
		{"behind camera", 0, 0, 10, false},
		{"beyond far plane", 0, 0, -200, false},
		{"in front of near plane", 0, 0, -0.01, false},
		{"far off to the left", -100, 0, -10, false},
		{"far above", 0, 100, -10, false},
		{"inside near an edge", 9, 0, -10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ContainsSphere(tt.x, tt.y, tt.z, 0))
		})
	}
}

func TestContainsSphereStraddlingPlane(t *testing.T) {
	f := testFrustum(t, 0.1, 100)

	// Center sits outside the left plane but the sphere pokes back in.
	// At z=-10 with a 90 degree square frustum the left boundary is x=-10.
	require.False(t, f.ContainsSphere(-12, 0, -10, 0.5))
	assert.True(t, f.ContainsSphere(-12, 0, -10, 5))
}

func TestContainsSphereNearPlane(t *testing.T) {
	f := testFrustum(t, 1, 100)

	// The near plane lies at z=-1; a sphere centered at the camera only
	// passes once its radius reaches across it.
	require.False(t, f.ContainsSphere(0, 0, 0, 0.5))
	assert.True(t, f.ContainsSphere(0, 0, 0, 2))
}

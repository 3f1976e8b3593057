package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestFrameResourcesNeedsResize(t *testing.T) {
	tests := []struct {
		name          string
		stored        [2]uint32
		requested     [2]uint32
		expectRecreat bool
	}{
		{"fresh resources", [2]uint32{0, 0}, [2]uint32{1280, 720}, true},
		{"unchanged", [2]uint32{1280, 720}, [2]uint32{1280, 720}, false},
		{"width change", [2]uint32{1280, 720}, [2]uint32{1920, 720}, true},
		{"height change", [2]uint32{1280, 720}, [2]uint32{1280, 1080}, true},
		{"shrink", [2]uint32{1920, 1080}, [2]uint32{640, 480}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &frameResources{width: tt.stored[0], height: tt.stored[1]}
			assert.Equal(t, tt.expectRecreat, f.needsResize(tt.requested[0], tt.requested[1]))
		})
	}
}

func TestFrameResourcesFormats(t *testing.T) {
	// The attachment formats are contract, not preference: GBuffer encodings
	// and the HDR accumulation range depend on them.
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, GBufferFormat)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, DepthFormat)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, LightBufferFormat)
}

func TestParseToneMode(t *testing.T) {
	mode, err := ParseToneMode("reinhard")
	assert.NoError(t, err)
	assert.Equal(t, ToneModeReinhard, mode)

	mode, err = ParseToneMode("NONE")
	assert.NoError(t, err)
	assert.Equal(t, ToneModeNone, mode)

	mode, err = ParseToneMode("")
	assert.NoError(t, err)
	assert.Equal(t, ToneModeReinhard, mode, "empty config means the default operator")

	_, err = ParseToneMode("aces")
	assert.Error(t, err)
}

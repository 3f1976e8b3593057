package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraAndModelUniformMarshal(t *testing.T) {
	var camera GPUCameraUniform
	var model GPUModelUniform
	for i := 0; i < 16; i++ {
		camera.ViewProj[i] = float32(i)
		model.Model[i] = float32(16 - i)
	}

	cbuf := camera.Marshal()
	require.Len(t, cbuf, 64)
	assert.Equal(t, 64, camera.Size())
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(cbuf[0:4])))
	assert.Equal(t, float32(15), math.Float32frombits(binary.LittleEndian.Uint32(cbuf[60:64])))

	mbuf := model.Marshal()
	require.Len(t, mbuf, 64)
	assert.Equal(t, 64, model.Size())
	assert.Equal(t, float32(16), math.Float32frombits(binary.LittleEndian.Uint32(mbuf[0:4])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(mbuf[60:64])))
}

package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniform is the GPU-aligned per-frame camera uniform.
// Matches the WGSL CameraUniform struct in the GBuffer shaders.
// Size: 64 bytes (mat4x4<f32>).
type GPUCameraUniform struct {
	ViewProj [16]float32 // combined view-projection, column-major
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (c *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*c))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (c *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(c.ViewProj[i]))
	}
	return buf
}

// GPUModelUniform is the GPU-aligned per-mesh model uniform.
// Matches the WGSL ModelUniform struct in the GBuffer and shadow shaders.
// Size: 64 bytes (mat4x4<f32>).
type GPUModelUniform struct {
	Model [16]float32 // model matrix, column-major
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (m *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*m))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (m *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(m.Model[i]))
	}
	return buf
}

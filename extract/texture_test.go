package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	data := encodePNG(t, 4, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	tex, err := DecodeTexture(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	require.Len(t, tex.Pixels, 4*2*4)
	assert.Equal(t, byte(200), tex.Pixels[0])
	assert.Equal(t, byte(100), tex.Pixels[1])
	assert.Equal(t, byte(50), tex.Pixels[2])
	assert.Equal(t, byte(255), tex.Pixels[3])
}

func TestDecodeTextureInvalidData(t *testing.T) {
	_, err := DecodeTexture([]byte("not an image"))
	assert.Error(t, err)
}

func TestSolidTexture(t *testing.T) {
	tex := SolidTexture(128, 128, 255, 255)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{128, 128, 255, 255}, tex.Pixels)
}

func TestFromImageDownscalesOversized(t *testing.T) {
	// Building a > 4096px PNG is slow; exercise the scaler directly with a
	// synthetic image larger than the cap.
	img := image.NewRGBA(image.Rect(0, 0, MaxTextureDim*2, MaxTextureDim/2))
	tex := fromImage(img)
	assert.Equal(t, uint32(MaxTextureDim), tex.Width)
	assert.Equal(t, uint32(MaxTextureDim/4), tex.Height, "aspect ratio must survive the downscale")
	assert.Len(t, tex.Pixels, int(tex.Width)*int(tex.Height)*4)
}

func TestLoadTextureMissingFile(t *testing.T) {
	_, err := LoadTexture("does/not/exist.png")
	assert.Error(t, err)
}

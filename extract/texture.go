package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// MaxTextureDim caps decoded texture dimensions. Larger images are downscaled
// to fit while preserving aspect ratio.
const MaxTextureDim = 4096

// DecodeTexture decodes PNG or JPEG bytes into RGBA8 pixel data. Images larger
// than MaxTextureDim on either axis are downscaled with bilinear filtering.
//
// Parameters:
//   - data: raw encoded image bytes
//
// Returns:
//   - *TextureData: decoded RGBA pixels and dimensions
//   - error: error if decoding fails
func DecodeTexture(data []byte) (*TextureData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return fromImage(img), nil
}

// LoadTexture reads and decodes a texture file from disk.
//
// Parameters:
//   - path: file path to a PNG or JPEG image
//
// Returns:
//   - *TextureData: decoded RGBA pixels and dimensions
//   - error: error if the file cannot be read or decoded
func LoadTexture(path string) (*TextureData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return fromImage(img), nil
}

func fromImage(img image.Image) *TextureData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	dstW, dstH := width, height
	if dstW > MaxTextureDim || dstH > MaxTextureDim {
		if dstW >= dstH {
			dstH = dstH * MaxTextureDim / dstW
			dstW = MaxTextureDim
		} else {
			dstW = dstW * MaxTextureDim / dstH
			dstH = MaxTextureDim
		}
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, xdraw.Src, nil)

	return &TextureData{
		Pixels: rgba.Pix,
		Width:  uint32(dstW),
		Height: uint32(dstH),
	}
}

// SolidTexture builds a 1x1 texture of the given RGBA color. Used as the
// neutral substitute for missing material maps.
//
// Parameters:
//   - r, g, b, a: channel values
//
// Returns:
//   - *TextureData: a single-pixel texture
func SolidTexture(r, g, b, a uint8) *TextureData {
	return &TextureData{
		Pixels: []byte{r, g, b, a},
		Width:  1,
		Height: 1,
	}
}

package renderer

import (
	"fmt"
	"strings"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ToneMode selects the present pass tone operator.
type ToneMode int

const (
	// ToneModeReinhard maps each channel with c/(1+c). This is the default.
	ToneModeReinhard ToneMode = iota

	// ToneModeNone clamps each channel to [0, 1] without remapping.
	ToneModeNone
)

// String returns the config-facing name of the tone mode.
func (t ToneMode) String() string {
	switch t {
	case ToneModeNone:
		return "none"
	default:
		return "reinhard"
	}
}

// ParseToneMode converts a config string to a ToneMode.
//
// Parameters:
//   - s: "reinhard" or "none" (case-insensitive)
//
// Returns:
//   - ToneMode: the parsed mode
//   - error: an error if the string names no known mode
func ParseToneMode(s string) (ToneMode, error) {
	switch strings.ToLower(s) {
	case "", "reinhard":
		return ToneModeReinhard, nil
	case "none":
		return ToneModeNone, nil
	default:
		return ToneModeReinhard, fmt.Errorf("unknown tone mode %q", s)
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// Package config handles renderer host configuration loading and management.
package config

// Config holds all host settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// RendererConfig holds the deferred pipeline's tunables.
type RendererConfig struct {
	// ShadowEnabled toggles the directional shadow pass.
	ShadowEnabled bool `yaml:"shadow_enabled"`
	// ShadowResolution is the shadow map width and height in texels.
	ShadowResolution uint32 `yaml:"shadow_resolution"`
	// MaxPointLights bounds the point lights evaluated per frame; extra lights are truncated.
	MaxPointLights uint32 `yaml:"max_point_lights"`
	// MaxSpotLights bounds the spot lights evaluated per frame; extra lights are truncated.
	MaxSpotLights uint32 `yaml:"max_spot_lights"`
	// ToneMode selects the present pass tone operator: "reinhard" or "none".
	ToneMode string `yaml:"tone_mode"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "ember",
			VSync:  true,
		},
		Renderer: RendererConfig{
			ShadowEnabled:    true,
			ShadowResolution: 2048,
			MaxPointLights:   8,
			MaxSpotLights:    4,
			ToneMode:         "reinhard",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

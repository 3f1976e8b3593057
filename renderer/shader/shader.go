package shader

import (
	_ "embed"
	"fmt"
)

// Entry point names shared by every pipeline shader in this package.
const (
	// VertexEntryPoint is the vertex stage entry point name.
	VertexEntryPoint = "vs_main"

	// FragmentEntryPoint is the fragment stage entry point name.
	FragmentEntryPoint = "fs_main"
)

//go:embed assets/gbuffer_basic.wgsl
var gbufferBasicSource string

//go:embed assets/gbuffer_pbr.wgsl
var gbufferPbrSource string

//go:embed assets/shadow_depth.wgsl
var shadowDepthSource string

//go:embed assets/light.wgsl
var lightSource string

//go:embed assets/present.wgsl
var presentSource string

// shader is the implementation of the Shader interface.
type shader struct {
	key    string
	source string
}

// Shader is a loaded, pre-processed WGSL shader ready for module creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching,
	// labels, and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code with all includes resolved
	Source() string
}

var _ Shader = &shader{}

// NewShader pre-processes raw WGSL source and wraps it as a Shader.
//
// Parameters:
//   - key: unique identifier for this shader
//   - raw: raw WGSL source, possibly containing //!include directives
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if pre-processing fails
func NewShader(key, raw string) (Shader, error) {
	processed, err := Process(raw)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	return &shader{key: key, source: processed}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

// GBufferBasic returns the basic-variant GBuffer shader (position + normal).
func GBufferBasic() (Shader, error) {
	return NewShader("gbuffer_basic", gbufferBasicSource)
}

// GBufferPbr returns the PBR-variant GBuffer shader (position + normal + uv,
// four material maps).
func GBufferPbr() (Shader, error) {
	return NewShader("gbuffer_pbr", gbufferPbrSource)
}

// ShadowDepth returns the depth-only directional shadow shader.
func ShadowDepth() (Shader, error) {
	return NewShader("shadow_depth", shadowDepthSource)
}

// LightPass returns the per-light deferred shading shader.
func LightPass() (Shader, error) {
	return NewShader("light", lightSource)
}

// Present returns the tone-mapping present shader.
func Present() (Shader, error) {
	return NewShader("present", presentSource)
}

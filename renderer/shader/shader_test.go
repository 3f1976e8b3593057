package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessReplacesInclude(t *testing.T) {
	src := "//!include light_uniform\nfn main() {}"
	out, err := Process(src)
	require.NoError(t, err)
	assert.Contains(t, out, "struct Light")
	assert.NotContains(t, out, "//!include")
	assert.Contains(t, out, "fn main() {}")
}

func TestProcessIndentedInclude(t *testing.T) {
	out, err := Process("    //!include tone_uniform")
	require.NoError(t, err)
	assert.Contains(t, out, "struct ToneUniform")
}

func TestProcessPassthrough(t *testing.T) {
	src := "// a normal comment\nfn fs_main() {}\n"
	out, err := Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestProcessErrors(t *testing.T) {
	_, err := Process("//!include")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an argument")

	_, err = Process("//!include no_such_struct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestPipelineShadersResolve(t *testing.T) {
	// Every embedded pipeline shader must pre-process cleanly with its
	// includes resolved and both entry points present where expected.
	tests := []struct {
		name         string
		load         func() (Shader, error)
		wantContains []string
	}{
		{"gbuffer_basic", GBufferBasic, []string{"vs_main", "fs_main"}},
		{"gbuffer_pbr", GBufferPbr, []string{"vs_main", "fs_main", "base_color_tex"}},
		{"shadow_depth", ShadowDepth, []string{"vs_main", "struct ShadowUniform"}},
		{"light", LightPass, []string{"vs_main", "fs_main", "struct Light"}},
		{"present", Present, []string{"vs_main", "fs_main", "struct ToneUniform"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.load()
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Key())
			for _, want := range tt.wantContains {
				assert.Contains(t, s.Source(), want)
			}
			assert.False(t, strings.Contains(s.Source(), includePrefix), "all includes must be resolved")
		})
	}
}

// WGSL uniformity analysis rejects textureSample calls placed after control
// flow that depends on fragment-varying values, and module creation fails at
// pipeline build time. The light pass branches on sampled depth, so every
// implicit-derivative sample in its fragment entry must precede the first
// branch.
func TestLightPassSamplesBeforeBranching(t *testing.T) {
	s, err := LightPass()
	require.NoError(t, err)

	src := s.Source()
	fsStart := strings.Index(src, "fn fs_main")
	require.GreaterOrEqual(t, fsStart, 0)
	body := src[fsStart:]

	firstBranch := strings.Index(body, "if (")
	require.GreaterOrEqual(t, firstBranch, 0)

	lastSample := strings.LastIndex(body, "textureSample(")
	require.GreaterOrEqual(t, lastSample, 0)
	assert.Less(t, lastSample, firstBranch,
		"all textureSample calls in fs_main must come before the first branch")
}

func TestNewShaderPropagatesError(t *testing.T) {
	_, err := NewShader("broken", "//!include bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `shader "broken"`)
}

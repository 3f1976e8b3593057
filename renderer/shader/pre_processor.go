// pre_processor.go implements the WGSL shader pre-processor. It scans shader
// source for //!include directives and replaces each with the canonical WGSL
// struct definition embedded next to the matching Go GPU type, so the shader
// and CPU layouts share one source of truth.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/ember-go/light"
)

const includePrefix = "//!include"

// includeRegistry maps //!include argument keys to the embedded WGSL struct
// sources defined alongside their Go counterparts.
var includeRegistry = map[string]string{
	"light_uniform":  light.GPULightUniformSource,
	"shadow_uniform": light.GPUShadowUniformSource,
	"tone_uniform":   light.GPUToneUniformSource,
}

// Process replaces every //!include directive in the source with its
// registered WGSL struct definition.
//
// Parameters:
//   - source: raw WGSL source containing zero or more //!include directives
//
// Returns:
//   - string: the processed WGSL source
//   - error: an error if a directive is malformed or references an unknown key
func Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, includePrefix) {
			out = append(out, line)
			continue
		}

		key := strings.TrimSpace(strings.TrimPrefix(trimmed, includePrefix))
		if key == "" {
			return "", fmt.Errorf("line %d: //!include requires an argument", i+1)
		}
		src, ok := includeRegistry[key]
		if !ok {
			return "", fmt.Errorf("line %d: unknown //!include argument %q", i+1, key)
		}
		out = append(out, src)
	}

	return strings.Join(out, "\n"), nil
}

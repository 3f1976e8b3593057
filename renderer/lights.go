package renderer

import (
	"sort"

	"github.com/Carmen-Shannon/ember-go/extract"
	"github.com/Carmen-Shannon/ember-go/light"
	"github.com/Carmen-Shannon/ember-go/renderer/shading"
)

// selectLights builds the ordered per-light uniform list for one frame,
// honoring the configured point and spot maxima. When a light set exceeds its
// budget the strongest contributors are kept, ranked by their estimated
// radiance at the camera position; ties keep extraction order.
//
// Parameters:
//   - view: the frame's view and light set
//   - invViewProj: the frame's inverse view-projection matrix
//   - maxPoint, maxSpot: configured light budgets
//
// Returns:
//   - []light.GPULightUniform: uniforms in pass order (sky, directional, point, spot)
func selectLights(view *extract.View, invViewProj [16]float32, maxPoint, maxSpot int) []light.GPULightUniform {
	uniforms := make([]light.GPULightUniform, 0, 2+len(view.PointLights)+len(view.SpotLights))

	if view.SkyLight != nil {
		uniforms = append(uniforms, light.NewSkyUniform(view.SkyLight, invViewProj))
	}
	if view.DirectionalLight != nil {
		uniforms = append(uniforms, light.NewDirectionalUniform(view.DirectionalLight, invViewProj))
	}

	cameraPos := shading.CameraPosFromInverse(&invViewProj)

	for _, idx := range strongestPointLights(view.PointLights, cameraPos, maxPoint) {
		uniforms = append(uniforms, light.NewPointUniform(&view.PointLights[idx], invViewProj))
	}
	for _, idx := range strongestSpotLights(view.SpotLights, cameraPos, maxSpot) {
		uniforms = append(uniforms, light.NewSpotUniform(&view.SpotLights[idx], invViewProj))
	}

	return uniforms
}

// strongestPointLights returns the indices of up to max lights, ordered by
// descending estimated contribution when truncation is needed and by
// extraction order otherwise.
func strongestPointLights(lights []extract.PointLight, cameraPos shading.Vec3, max int) []int {
	idx := identityOrder(len(lights))
	if max < 0 || len(lights) <= max {
		return idx
	}

	scores := make([]float32, len(lights))
	for i := range lights {
		l := shading.Light{
			Kind:            shading.LightKindPoint,
			Color:           shading.Vec3(lights[i].Color),
			Position:        shading.Vec3(lights[i].Position),
			Radius:          lights[i].Radius,
			FalloffExponent: lights[i].FalloffExponent,
		}
		scores[i] = estimateStrength(&l, cameraPos)
	}
	sortByScore(idx, scores)
	return idx[:max]
}

// strongestSpotLights mirrors strongestPointLights for the spot light set.
func strongestSpotLights(lights []extract.SpotLight, cameraPos shading.Vec3, max int) []int {
	idx := identityOrder(len(lights))
	if max < 0 || len(lights) <= max {
		return idx
	}

	scores := make([]float32, len(lights))
	for i := range lights {
		l := shading.Light{
			Kind:            shading.LightKindSpot,
			Color:           shading.Vec3(lights[i].Color),
			Position:        shading.Vec3(lights[i].Position),
			Direction:       shading.Vec3(lights[i].Direction),
			Radius:          lights[i].Radius,
			FalloffExponent: lights[i].FalloffExponent,
			InnerConeCos:    lights[i].InnerConeCos,
			OuterConeCos:    lights[i].OuterConeCos,
		}
		scores[i] = estimateStrength(&l, cameraPos)
	}
	sortByScore(idx, scores)
	return idx[:max]
}

// estimateStrength approximates a light's visible impact as its luminance
// scaled by the shading model's radial attenuation at the camera. The cone
// term is ignored so a spot aimed away from the camera but lighting the scene
// is not unfairly dropped.
func estimateStrength(l *shading.Light, cameraPos shading.Vec3) float32 {
	luminance := 0.2126*l.Color[0] + 0.7152*l.Color[1] + 0.0722*l.Color[2]
	dist := l.Position.Sub(cameraPos).Length()

	// Lights whose radius excludes the camera still matter; floor the
	// attenuation estimate instead of zeroing them out.
	atten := shading.RadialAttenuation(dist, l.Radius, l.FalloffExponent)
	if atten < 1e-3 {
		atten = 1e-3
	}
	return luminance * atten * l.Radius
}

func identityOrder(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func sortByScore(idx []int, scores []float32) {
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
}

package shading

// Surface is the per-pixel GBuffer sample fed into the shading model.
type Surface struct {
	// BaseColor is the albedo from GBuffer0 RGB.
	BaseColor Vec3
	// Occlusion is the ambient-occlusion factor from GBuffer0 A.
	Occlusion float32
	// Normal is the decoded world-space unit normal from GBuffer1 RGB.
	Normal Vec3
	// Roughness, Metalness, Specular come from GBuffer2 RGB.
	Roughness float32
	Metalness float32
	Specular  float32
	// Position is the reconstructed world position.
	Position Vec3
}

// LightKind discriminates light variants, matching the shader-side uniform tag.
type LightKind uint32

const (
	LightKindDirectional LightKind = 0
	LightKindPoint       LightKind = 1
	LightKindSpot        LightKind = 2
	LightKindSky         LightKind = 3
)

// Light is the variant-tagged light description evaluated per pixel. It
// mirrors the GPU light uniform field-for-field.
type Light struct {
	Kind LightKind
	// Color is linear RGB radiance.
	Color Vec3
	// Direction is the travel direction for directional and spot lights.
	Direction Vec3
	// Position is the world position for point and spot lights.
	Position Vec3
	// Radius and FalloffExponent shape radial attenuation (point and spot only).
	Radius          float32
	FalloffExponent float32
	// InnerConeCos and OuterConeCos bound the spot cone (spot only).
	InnerConeCos float32
	OuterConeCos float32
}

// Attenuation evaluates the light's total distance and cone attenuation at a
// world position. Directional lights always return 1.
//
// Parameters:
//   - worldPos: the shaded surface's world position
//
// Returns:
//   - float32: combined attenuation in [0, 1]
func (l *Light) Attenuation(worldPos Vec3) float32 {
	if l.Kind == LightKindDirectional || l.Kind == LightKindSky {
		return 1.0
	}
	toLight := l.Position.Sub(worldPos)
	dist := toLight.Length()
	atten := RadialAttenuation(dist, l.Radius, l.FalloffExponent)
	if l.Kind == LightKindSpot && atten > 0 {
		fromLight := toLight.Scale(-1).Normalized()
		cosAngle := fromLight.Dot(l.Direction.Normalized())
		atten *= ConeAttenuation(cosAngle, l.InnerConeCos, l.OuterConeCos)
	}
	return atten
}

// vector from the surface toward the light, unit length
func (l *Light) toLightDir(worldPos Vec3) Vec3 {
	if l.Kind == LightKindDirectional {
		return l.Direction.Normalized().Scale(-1)
	}
	return l.Position.Sub(worldPos).Normalized()
}

// EvaluatePixel runs the full per-pixel shading model for one light: Lambert
// diffuse plus GGX/Smith/Schlick specular, scaled by the light's color and
// attenuation. It is a pure function of its inputs.
//
// Parameters:
//   - s: the GBuffer surface sample
//   - l: the light to evaluate
//   - cameraPos: reconstructed camera world position
//
// Returns:
//   - Vec3: the light's linear RGB contribution at this pixel
func EvaluatePixel(s *Surface, l *Light, cameraPos Vec3) Vec3 {
	if l.Kind == LightKindSky {
		// Uniform ambient: no direction, no attenuation.
		return s.BaseColor.Scale(s.Occlusion).Mul(l.Color)
	}

	atten := l.Attenuation(s.Position)
	if atten <= 0 {
		return Vec3{}
	}

	n := s.Normal
	v := cameraPos.Sub(s.Position).Normalized()
	lv := l.toLightDir(s.Position)
	h := v.Add(lv).Normalized()

	nol := Saturate(n.Dot(lv))
	if nol <= 0 {
		return Vec3{}
	}
	nov := n.Dot(v)
	if nov < NoVEpsilon {
		nov = NoVEpsilon
	}
	noh := Saturate(n.Dot(h))
	voh := Saturate(v.Dot(h))

	roughness := s.Roughness
	if roughness < MinRoughness {
		roughness = MinRoughness
	}

	radiance := l.Color.Scale(atten * nol)

	diffuse := DiffuseAlbedo(s.BaseColor, s.Metalness).Scale(s.Occlusion / Pi)

	f0 := SpecularF0(s.BaseColor, s.Metalness, s.Specular)
	d := DistributionGGX(roughness, noh)
	vis := VisibilitySmith(roughness, nov, nol)
	specular := FresnelSchlick(f0, voh).Scale(d * vis)

	return diffuse.Add(specular).Mul(radiance)
}

// EvaluateFragment applies the light shader's background early-out before
// shading: pixels where the sampled depth reached the clear value hold no
// geometry and contribute nothing, regardless of the light.
//
// Parameters:
//   - depth: sampled depth in [0, 1]; 1.0 is the depth clear value
//   - s: the GBuffer surface sample
//   - l: the light to evaluate
//   - cameraPos: reconstructed camera world position
//
// Returns:
//   - Vec3: the light's linear RGB contribution at this pixel
func EvaluateFragment(depth float32, s *Surface, l *Light, cameraPos Vec3) Vec3 {
	if depth >= 1.0 {
		return Vec3{}
	}
	return EvaluatePixel(s, l, cameraPos)
}

// ReconstructWorldPos converts a screen UV and a sampled depth back to world
// space through the inverse view-projection matrix (column-major).
//
// Parameters:
//   - invViewProj: inverse of the frame's view-projection matrix
//   - u, v: screen UV in [0, 1], v pointing down
//   - depth: sampled depth in [0, 1]
//
// Returns:
//   - Vec3: world-space position
func ReconstructWorldPos(invViewProj *[16]float32, u, v, depth float32) Vec3 {
	ndcX := u*2.0 - 1.0
	ndcY := (1.0-v)*2.0 - 1.0
	return transformNDC(invViewProj, ndcX, ndcY, depth)
}

// CameraPosFromInverse recovers the camera's world position by transforming
// the NDC origin through the inverse view-projection matrix.
func CameraPosFromInverse(invViewProj *[16]float32) Vec3 {
	return transformNDC(invViewProj, 0, 0, 0)
}

func transformNDC(m *[16]float32, x, y, z float32) Vec3 {
	ox := m[0]*x + m[4]*y + m[8]*z + m[12]
	oy := m[1]*x + m[5]*y + m[9]*z + m[13]
	oz := m[2]*x + m[6]*y + m[10]*z + m[14]
	ow := m[3]*x + m[7]*y + m[11]*z + m[15]
	if ow == 0 {
		return Vec3{ox, oy, oz}
	}
	inv := 1.0 / ow
	return Vec3{ox * inv, oy * inv, oz * inv}
}

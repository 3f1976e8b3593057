// package shading is a CPU reference of the deferred light pass's per-pixel
// math, kept in lockstep with the WGSL shaders. The renderer uses it to rank
// lights when the configured maxima force truncation, and the test suite uses
// it to pin down the shading model's numeric behavior.
package shading

import (
	"github.com/chewxy/math32"
)

const (
	// Pi is carried as float32 to match shader precision.
	Pi = math32.Pi

	// MinRoughness is the floor applied to sampled roughness before specular
	// evaluation; a roughness of exactly 0 makes the GGX lobe singular.
	MinRoughness = 0.04

	// DielectricF0 is the base reflectance of a dielectric at specular = 1.
	DielectricF0 = 0.08

	// NoVEpsilon floors N·V so the visibility term never divides by zero at
	// grazing angles.
	NoVEpsilon = 1e-4
)

// Vec3 is a plain 3-component float32 vector.
type Vec3 [3]float32

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Mul returns the component-wise product v * o.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length; the zero vector is returned unchanged.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1.0 / l)
}

// EncodeNormal maps a unit normal into the [0, 1] range stored in GBuffer1.
func EncodeNormal(n Vec3) Vec3 {
	return Vec3{n[0]*0.5 + 0.5, n[1]*0.5 + 0.5, n[2]*0.5 + 0.5}
}

// DecodeNormal recovers a unit normal from its GBuffer1 encoding.
func DecodeNormal(e Vec3) Vec3 {
	return Vec3{e[0]*2 - 1, e[1]*2 - 1, e[2]*2 - 1}.Normalized()
}

// Saturate clamps x to [0, 1].
func Saturate(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// DistributionGGX evaluates the GGX normal distribution (Walter et al.) with
// the roughness² parameterization.
//
// Parameters:
//   - roughness: perceptual roughness, already floored to MinRoughness
//   - noh: clamped N·H
//
// Returns:
//   - float32: microfacet distribution value
func DistributionGGX(roughness, noh float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := noh*noh*(a2-1.0) + 1.0
	return a2 / (Pi * d * d)
}

// VisibilitySmith evaluates the height-correlated Smith joint visibility
// approximation (Heitz). The geometry and denominator terms are folded
// together, so the specular combination is (D * Vis) * F without a further
// 1/(4 N·L N·V) factor.
//
// Parameters:
//   - roughness: perceptual roughness, already floored to MinRoughness
//   - nov: N·V floored to NoVEpsilon
//   - nol: clamped N·L
//
// Returns:
//   - float32: joint visibility value
func VisibilitySmith(roughness, nov, nol float32) float32 {
	a := roughness * roughness
	lambdaV := nol * (nov*(1.0-a) + a)
	lambdaL := nov * (nol*(1.0-a) + a)
	denom := lambdaV + lambdaL
	if denom < 1e-5 {
		denom = 1e-5
	}
	return 0.5 / denom
}

// FresnelSchlick evaluates the Schlick Fresnel approximation. At voh = 1 the
// result equals f0 exactly.
//
// Parameters:
//   - f0: base reflectance per channel
//   - voh: clamped V·H
//
// Returns:
//   - Vec3: reflectance per channel
func FresnelSchlick(f0 Vec3, voh float32) Vec3 {
	f := math32.Pow(1.0-voh, 5.0)
	return Vec3{
		f0[0] + (1.0-f0[0])*f,
		f0[1] + (1.0-f0[1])*f,
		f0[2] + (1.0-f0[2])*f,
	}
}

// RadialAttenuation computes the distance falloff of point and spot lights:
// pow(1 - clamp(dist/radius, 0, 1), falloffExponent). It is 1 at the light's
// position, 0 at and beyond the radius, and monotonically non-increasing
// in between.
//
// Parameters:
//   - dist: world-space distance from surface to light
//   - radius: light radius of influence (values <= 0 yield 0)
//   - falloffExponent: curve shape, must be > 0
//
// Returns:
//   - float32: attenuation in [0, 1]
func RadialAttenuation(dist, radius, falloffExponent float32) float32 {
	if radius <= 0 {
		return 0
	}
	base := 1.0 - Saturate(dist/radius)
	if base <= 0 {
		return 0
	}
	return math32.Pow(base, falloffExponent)
}

// ConeAttenuation computes the spot cone falloff as a smooth hermite
// interpolation between the outer and inner cone cosines: 0 at and beyond the
// outer angle, 1 at and inside the inner angle.
//
// Parameters:
//   - cosAngle: cosine of the angle between light-to-surface and the spot axis
//   - innerCos: cosine of the inner cone half-angle
//   - outerCos: cosine of the outer cone half-angle (innerCos >= outerCos)
//
// Returns:
//   - float32: attenuation in [0, 1]
func ConeAttenuation(cosAngle, innerCos, outerCos float32) float32 {
	span := innerCos - outerCos
	if span < 1e-5 {
		span = 1e-5
	}
	t := Saturate((cosAngle - outerCos) / span)
	return t * t * (3.0 - 2.0*t)
}

// DiffuseAlbedo derives the diffuse reflectance from base color and metalness
// using the energy-conserving split: metals have no diffuse response.
func DiffuseAlbedo(baseColor Vec3, metalness float32) Vec3 {
	return baseColor.Scale(1.0 - metalness)
}

// SpecularF0 derives the base specular reflectance: dielectrics reflect
// DielectricF0 scaled by specular², metals reflect their base color.
func SpecularF0(baseColor Vec3, metalness, specular float32) Vec3 {
	d := DielectricF0 * specular * specular
	return Vec3{
		d + (baseColor[0]-d)*metalness,
		d + (baseColor[1]-d)*metalness,
		d + (baseColor[2]-d)*metalness,
	}
}

// ToneReinhard applies the Reinhard operator c/(1+c) per channel.
func ToneReinhard(c Vec3) Vec3 {
	return Vec3{
		c[0] / (1.0 + c[0]),
		c[1] / (1.0 + c[1]),
		c[2] / (1.0 + c[2]),
	}
}

// ToneClamp clamps each channel to [0, 1] without remapping.
func ToneClamp(c Vec3) Vec3 {
	return Vec3{Saturate(c[0]), Saturate(c[1]), Saturate(c[2])}
}

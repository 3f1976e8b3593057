package light

// DefaultShadowResolution is the default width and height in texels of the
// shadow depth texture. Hosts can override it via the renderer's
// WithShadowResolution builder option.
const DefaultShadowResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world
// units) used for the directional light shadow frustum. Controls how much of
// the scene around the camera center is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

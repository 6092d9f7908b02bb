package transform

import (
	"github.com/gogpu/gputypes"
)

// MaxLights is the number of light sources.
const MaxLights = 8

// MaxTMUs is the number of texture coordinate sets a vertex carries.
const MaxTMUs = 2

// Viewport maps normalized device coordinates to window coordinates. The
// window origin is the top left corner; NDC y points up, window y down.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Light is one light source. Position and SpotDirection are in eye space; a
// position with W == 0 is a directional light.
type Light struct {
	Enable bool

	Ambient  Vec4
	Diffuse  Vec4
	Specular Vec4
	Position Vec4

	SpotDirection Vec3
	SpotExponent  float32

	// SpotCutoff is the cone half angle in degrees. 180 disables the spot
	// cone.
	SpotCutoff float32

	ConstantAttenuation  float32
	LinearAttenuation    float32
	QuadraticAttenuation float32
}

// DefaultLight returns a disabled white directional light shining down -z.
func DefaultLight() Light {
	return Light{
		Ambient:             V4(0, 0, 0, 1),
		Diffuse:             V4(1, 1, 1, 1),
		Specular:            V4(1, 1, 1, 1),
		Position:            V4(0, 0, 1, 0),
		SpotDirection:       V3(0, 0, -1),
		SpotCutoff:          180,
		ConstantAttenuation: 1,
	}
}

// TexGenMode selects how a texture coordinate is generated.
type TexGenMode uint32

const (
	// TexGenOff passes the vertex texture coordinate through.
	TexGenOff TexGenMode = iota
	TexGenObjectLinear
	TexGenEyeLinear
	TexGenSphereMap
	TexGenReflectionMap
	TexGenNormalMap
)

// String returns the name of the mode.
func (m TexGenMode) String() string {
	switch m {
	case TexGenOff:
		return "Off"
	case TexGenObjectLinear:
		return "ObjectLinear"
	case TexGenEyeLinear:
		return "EyeLinear"
	case TexGenSphereMap:
		return "SphereMap"
	case TexGenReflectionMap:
		return "ReflectionMap"
	case TexGenNormalMap:
		return "NormalMap"
	default:
		return "Unknown"
	}
}

// TexGen configures coordinate generation of one TMU. Index 0..3 is s, t,
// r, q. Sphere map applies to s and t only; reflection and normal map to
// s, t and r.
type TexGen struct {
	Mode        [4]TexGenMode
	ObjectPlane [4]Vec4

	// EyePlane is already in eye space.
	EyePlane [4]Vec4
}

// GlobalContext is the per-element state that rarely changes within a
// frame.
type GlobalContext struct {
	Viewport  Viewport
	DepthNear float32
	DepthFar  float32

	Projection Mat4

	Lighting          bool
	TwoSidedLighting  bool
	LocalViewer       bool
	LightModelAmbient Vec4
	Lights            [MaxLights]Light

	// ClipPlane is an object space plane equation, relative to the model
	// view matrix of the local context. Points with plane . p >= 0 are kept.
	ClipPlaneEnable bool
	ClipPlane       Vec4

	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	TexGen [MaxTMUs]TexGen

	// LineWidth and PointSize are in pixels.
	LineWidth float32
	PointSize float32
}

// DefaultGlobalContext returns the initial state for a width x height
// framebuffer.
func DefaultGlobalContext(width, height int) GlobalContext {
	c := GlobalContext{
		Viewport:          Viewport{Width: float32(width), Height: float32(height)},
		DepthFar:          1,
		Projection:        Identity(),
		LightModelAmbient: V4(0.2, 0.2, 0.2, 1),
		CullMode:          gputypes.CullModeNone,
		FrontFace:         gputypes.FrontFaceCCW,
		LineWidth:         1,
		PointSize:         1,
	}
	for i := range c.Lights {
		c.Lights[i] = DefaultLight()
	}
	// Light 0 defaults to a white diffuse and specular term, the others to
	// black.
	for i := 1; i < MaxLights; i++ {
		c.Lights[i].Diffuse = V4(0, 0, 0, 1)
		c.Lights[i].Specular = V4(0, 0, 0, 1)
	}
	return c
}

// LocalContext is the per-object state.
type LocalContext struct {
	ModelView Mat4
	TexMatrix [MaxTMUs]Mat4

	// Normalize rescales eye space normals to unit length.
	Normalize bool
}

// DefaultLocalContext returns identity matrices.
func DefaultLocalContext() LocalContext {
	return LocalContext{
		ModelView: Identity(),
		TexMatrix: [MaxTMUs]Mat4{Identity(), Identity()},
	}
}

// Material describes the surface response to light.
type Material struct {
	Ambient   Vec4
	Diffuse   Vec4
	Specular  Vec4
	Emission  Vec4
	Shininess float32
}

// DefaultMaterial returns the initial material.
func DefaultMaterial() Material {
	return Material{
		Ambient:  V4(0.2, 0.2, 0.2, 1),
		Diffuse:  V4(0.8, 0.8, 0.8, 1),
		Specular: V4(0, 0, 0, 1),
		Emission: V4(0, 0, 0, 1),
	}
}

// ColorMaterialMode selects which material terms track the vertex color.
type ColorMaterialMode uint32

const (
	ColorMaterialAmbientAndDiffuse ColorMaterialMode = iota
	ColorMaterialAmbient
	ColorMaterialDiffuse
	ColorMaterialSpecular
	ColorMaterialEmission
)

// Face indices into VertexContext.Material.
const (
	FaceFront = 0
	FaceBack  = 1
)

// VertexContext is the state that may change between vertices.
type VertexContext struct {
	Material [2]Material

	ColorMaterial     bool
	ColorMaterialMode ColorMaterialMode
}

// DefaultVertexContext returns the default material on both faces.
func DefaultVertexContext() VertexContext {
	return VertexContext{
		Material: [2]Material{DefaultMaterial(), DefaultMaterial()},
	}
}

// Vertex is an input vertex.
type Vertex struct {
	// Position is in object space.
	Position Vec4
	Color    Vec4
	Normal   Vec3
	Tex      [MaxTMUs]Vec4

	// PointSize overrides GlobalContext.PointSize for this vertex when it
	// is positive.
	PointSize float32
}

// Mode is the primitive assembly mode of an element.
type Mode uint32

const (
	Points Mode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
	Quads
	QuadStrip
	Polygon
)

// ModeNone ends the current element without starting another. It is how an
// end of element travels through a display list.
const ModeNone Mode = 0xFF

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case Points:
		return "Points"
	case Lines:
		return "Lines"
	case LineLoop:
		return "LineLoop"
	case LineStrip:
		return "LineStrip"
	case Triangles:
		return "Triangles"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	case Quads:
		return "Quads"
	case QuadStrip:
		return "QuadStrip"
	case Polygon:
		return "Polygon"
	case ModeNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m <= Polygon }

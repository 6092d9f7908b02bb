package transform

import (
	"math"

	"github.com/gogpu/rix/internal/mathx"
)

// material returns the material of face with color material applied.
func (c *VertexContext) material(face int, color Vec4) Material {
	m := c.Material[face]
	if !c.ColorMaterial {
		return m
	}
	switch c.ColorMaterialMode {
	case ColorMaterialAmbientAndDiffuse:
		m.Ambient, m.Diffuse = color, color
	case ColorMaterialAmbient:
		m.Ambient = color
	case ColorMaterialDiffuse:
		m.Diffuse = color
	case ColorMaterialSpecular:
		m.Specular = color
	case ColorMaterialEmission:
		m.Emission = color
	}
	return m
}

// shade evaluates the lighting equation at an eye space position with a
// unit eye space normal. The result keeps the alpha of color.
func shade(g *GlobalContext, m *Material, eye Vec4, n Vec3, color Vec4) Vec4 {
	out := m.Emission.Add(m.Ambient.MulVec(g.LightModelAmbient))

	var v Vec3
	if g.LocalViewer {
		v = eye.XYZ().Neg().Normalize()
	} else {
		v = V3(0, 0, 1)
	}

	for i := range g.Lights {
		l := &g.Lights[i]
		if !l.Enable {
			continue
		}

		var dir Vec3
		atten := float32(1)
		if l.Position.W == 0 {
			dir = l.Position.XYZ().Normalize()
		} else {
			d := l.Position.XYZ().Sub(eye.XYZ())
			dist := d.Len()
			dir = d.Normalize()
			k := l.ConstantAttenuation + l.LinearAttenuation*dist + l.QuadraticAttenuation*dist*dist
			if k > 0 {
				atten = 1 / k
			}
		}

		if l.SpotCutoff != 180 {
			cos := dir.Neg().Dot(l.SpotDirection.Normalize())
			cutoff := float32(math.Cos(float64(l.SpotCutoff) * math.Pi / 180))
			if cos < cutoff {
				continue
			}
			atten *= pow(max(cos, 0), l.SpotExponent)
		}

		term := l.Ambient.MulVec(m.Ambient)
		if nl := n.Dot(dir); nl > 0 {
			term = term.Add(l.Diffuse.MulVec(m.Diffuse).Mul(nl))
			h := dir.Add(v).Normalize()
			if nh := n.Dot(h); nh > 0 {
				term = term.Add(l.Specular.MulVec(m.Specular).Mul(pow(nh, m.Shininess)))
			}
		}
		out = out.Add(term.Mul(atten))
	}

	return Vec4{
		X: mathx.Saturate(out.X),
		Y: mathx.Saturate(out.Y),
		Z: mathx.Saturate(out.Z),
		W: color.W,
	}
}

func pow(x, y float32) float32 {
	if y == 0 {
		return 1
	}
	return float32(math.Pow(float64(x), float64(y)))
}

// generate computes the texture coordinate set of one TMU before the texture
// matrix is applied.
func (g *TexGen) generate(in, obj, eye Vec4, n Vec3) Vec4 {
	out := in.Array()

	var (
		refl     Vec3
		haveRefl bool
	)
	reflection := func() Vec3 {
		if !haveRefl {
			u := eye.XYZ().Normalize()
			refl = u.Sub(n.Mul(2 * n.Dot(u)))
			haveRefl = true
		}
		return refl
	}

	for i, mode := range g.Mode {
		switch mode {
		case TexGenObjectLinear:
			out[i] = g.ObjectPlane[i].Dot(obj)
		case TexGenEyeLinear:
			out[i] = g.EyePlane[i].Dot(eye)
		case TexGenSphereMap:
			if i > 1 {
				continue
			}
			r := reflection()
			m := 2 * float32(math.Sqrt(float64(r.X*r.X+r.Y*r.Y+(r.Z+1)*(r.Z+1))))
			if m == 0 {
				out[i] = 0.5
				continue
			}
			if i == 0 {
				out[i] = r.X/m + 0.5
			} else {
				out[i] = r.Y/m + 0.5
			}
		case TexGenReflectionMap:
			if i > 2 {
				continue
			}
			out[i] = vec3At(reflection(), i)
		case TexGenNormalMap:
			if i > 2 {
				continue
			}
			out[i] = vec3At(n, i)
		}
	}
	return Vec4{out[0], out[1], out[2], out[3]}
}

// needsNormal reports whether any generated coordinate depends on the eye
// space normal.
func (g *TexGen) needsNormal() bool {
	for _, m := range g.Mode {
		if m == TexGenSphereMap || m == TexGenReflectionMap || m == TexGenNormalMap {
			return true
		}
	}
	return false
}

func vec3At(v Vec3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

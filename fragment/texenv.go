package fragment

import (
	"github.com/gogpu/rix/internal/mathx"
	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/register"
)

// CombineInputs are the colors a texture environment can select from.
type CombineInputs struct {
	Texture  pixel.Color
	Constant pixel.Color
	Primary  pixel.Color
	Previous pixel.Color
}

func (in *CombineInputs) source(s register.Source) pixel.Color {
	switch s {
	case register.SourceTexture:
		return in.Texture
	case register.SourceConstant:
		return in.Constant
	case register.SourcePrimaryColor:
		return in.Primary
	default:
		return in.Previous
	}
}

type rgb [3]float32

func rgbOperand(op register.Operand, c pixel.Color) rgb {
	switch op {
	case register.OperandOneMinusSrcColor:
		return rgb{1 - c[0], 1 - c[1], 1 - c[2]}
	case register.OperandSrcAlpha:
		return rgb{c[3], c[3], c[3]}
	case register.OperandOneMinusSrcAlpha:
		return rgb{1 - c[3], 1 - c[3], 1 - c[3]}
	default:
		return rgb{c[0], c[1], c[2]}
	}
}

func alphaOperand(op register.Operand, c pixel.Color) float32 {
	if op == register.OperandOneMinusSrcAlpha || op == register.OperandOneMinusSrcColor {
		return 1 - c[3]
	}
	return c[3]
}

// combine evaluates one combiner function on a single channel.
func combine(fn register.Combine, a0, a1, a2 float32) float32 {
	switch fn {
	case register.CombineReplace:
		return a0
	case register.CombineModulate:
		return a0 * a1
	case register.CombineAdd:
		return a0 + a1
	case register.CombineAddSigned:
		return a0 + a1 - 0.5
	case register.CombineInterpolate:
		return a0*a2 + a1*(1-a2)
	case register.CombineSubtract:
		return a0 - a1
	default:
		return a0 * a1
	}
}

func dot3(a0, a1 rgb) float32 {
	return 4 * ((a0[0]-0.5)*(a1[0]-0.5) + (a0[1]-0.5)*(a1[1]-0.5) + (a0[2]-0.5)*(a1[2]-0.5))
}

// Combine runs one texture environment stage. The result is scaled by
// 1 << shift and saturated.
func Combine(env *register.TexEnv, in *CombineInputs) pixel.Color {
	var a [3]rgb
	var aa [3]float32
	for i := range 3 {
		a[i] = rgbOperand(env.OperandRGB[i], in.source(env.SrcRGB[i]))
		aa[i] = alphaOperand(env.OperandAlpha[i], in.source(env.SrcAlpha[i]))
	}

	var out pixel.Color
	switch env.CombineRGB {
	case register.CombineDot3RGB, register.CombineDot3RGBA:
		d := dot3(a[0], a[1])
		out[0], out[1], out[2] = d, d, d
	default:
		for ch := range 3 {
			out[ch] = combine(env.CombineRGB, a[0][ch], a[1][ch], a[2][ch])
		}
	}
	rgbScale := float32(int(1) << min(env.ShiftRGB, 2))
	for ch := range 3 {
		out[ch] = mathx.Saturate(out[ch] * rgbScale)
	}
	if env.CombineRGB == register.CombineDot3RGBA {
		out[3] = out[0]
	} else {
		alphaScale := float32(int(1) << min(env.ShiftAlpha, 2))
		out[3] = mathx.Saturate(combine(env.CombineAlpha, aa[0], aa[1], aa[2]) * alphaScale)
	}
	return out
}

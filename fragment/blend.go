package fragment

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/register"
)

// Blend combines src and dst as src*sf + dst*df and saturates the result.
// constant is the blend color register.
func Blend(src, dst, constant pixel.Color, sf, df gputypes.BlendFactor) pixel.Color {
	s := blendFactor(sf, src, dst, constant)
	d := blendFactor(df, src, dst, constant)
	var out pixel.Color
	for i := range out {
		out[i] = src[i]*s[i] + dst[i]*d[i]
	}
	return out.Clamp()
}

func blendFactor(f gputypes.BlendFactor, src, dst, constant pixel.Color) pixel.Color {
	splat := func(v float32) pixel.Color { return pixel.Color{v, v, v, v} }
	inv := func(c pixel.Color) pixel.Color {
		return pixel.Color{1 - c[0], 1 - c[1], 1 - c[2], 1 - c[3]}
	}
	switch f {
	case gputypes.BlendFactorZero:
		return pixel.Color{}
	case gputypes.BlendFactorSrc:
		return src
	case gputypes.BlendFactorOneMinusSrc:
		return inv(src)
	case gputypes.BlendFactorSrcAlpha:
		return splat(src[3])
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return splat(1 - src[3])
	case gputypes.BlendFactorDst:
		return dst
	case gputypes.BlendFactorOneMinusDst:
		return inv(dst)
	case gputypes.BlendFactorDstAlpha:
		return splat(dst[3])
	case gputypes.BlendFactorOneMinusDstAlpha:
		return splat(1 - dst[3])
	case gputypes.BlendFactorSrcAlphaSaturated:
		f := min(src[3], 1-dst[3])
		return pixel.Color{f, f, f, 1}
	case gputypes.BlendFactorConstant:
		return constant
	case gputypes.BlendFactorOneMinusConstant:
		return inv(constant)
	default:
		return splat(1)
	}
}

// LogicOp applies op per channel to the 8-bit quantized colors.
func LogicOp(op register.LogicOp, src, dst pixel.Color) pixel.Color {
	s, d := src.RGBA(), dst.RGBA()
	return pixel.Color{
		pixel.Normalize(op.Apply(s.R, d.R)),
		pixel.Normalize(op.Apply(s.G, d.G)),
		pixel.Normalize(op.Apply(s.B, d.B)),
		pixel.Normalize(op.Apply(s.A, d.A)),
	}
}

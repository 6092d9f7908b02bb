package register

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix/internal/mathx"
	"github.com/gogpu/rix/internal/pixel"
)

// MaxTextureLog2 is the largest encodable texture edge, as a power of two.
const MaxTextureLog2 = 15

// TmuTexture describes the texture bound to a TMU. Width and Height must be
// powers of two.
type TmuTexture struct {
	TMU    int
	Width  int
	Height int

	// WrapS and WrapT are ClampToEdge or Repeat. MirrorRepeat encodes as
	// Repeat.
	WrapS gputypes.AddressMode
	WrapT gputypes.AddressMode

	// Filter is Nearest or Linear (bilinear).
	Filter gputypes.FilterMode

	Format pixel.Format
}

// Address implements Register.
func (r TmuTexture) Address() Address { return TmuTextureAddr(r.TMU) }

// Value implements Register.
func (r TmuTexture) Value() uint32 {
	return uint32(min(mathx.Log2(r.Width), MaxTextureLog2)) |
		uint32(min(mathx.Log2(r.Height), MaxTextureLog2))<<4 |
		b2u(r.WrapS == gputypes.AddressModeClampToEdge)<<8 |
		b2u(r.WrapT == gputypes.AddressModeClampToEdge)<<9 |
		b2u(r.Filter == gputypes.FilterModeLinear)<<10 |
		uint32(r.Format&0x3)<<11
}

// DecodeTmuTexture unpacks a TmuTexture register word.
func DecodeTmuTexture(tmu int, v uint32) TmuTexture {
	wrap := func(clamp bool) gputypes.AddressMode {
		if clamp {
			return gputypes.AddressModeClampToEdge
		}
		return gputypes.AddressModeRepeat
	}
	filter := gputypes.FilterModeNearest
	if flag(v, 10) {
		filter = gputypes.FilterModeLinear
	}
	return TmuTexture{
		TMU:    tmu,
		Width:  1 << bits(v, 0, 4),
		Height: 1 << bits(v, 4, 4),
		WrapS:  wrap(flag(v, 8)),
		WrapT:  wrap(flag(v, 9)),
		Filter: filter,
		Format: pixel.Format(bits(v, 11, 2)),
	}
}


// Combine is a texture environment combiner function.
type Combine uint8

const (
	CombineReplace     Combine = iota // a0
	CombineModulate                   // a0 * a1
	CombineAdd                        // a0 + a1
	CombineAddSigned                  // a0 + a1 - 0.5
	CombineInterpolate                // a0 * a2 + a1 * (1 - a2)
	CombineSubtract                   // a0 - a1
	CombineDot3RGB                    // 4 * dot(a0 - 0.5, a1 - 0.5) into RGB
	CombineDot3RGBA                   // same, written to RGBA
)

// Source selects a combiner argument.
type Source uint8

const (
	SourceTexture Source = iota
	SourceConstant
	SourcePrimaryColor

	// SourcePrevious is the output of the previous TMU stage, or the
	// primary color for TMU 0.
	SourcePrevious
)

// Operand modifies a combiner argument. Alpha arguments accept only
// OperandSrcAlpha and OperandOneMinusSrcAlpha.
type Operand uint8

const (
	OperandSrcColor Operand = iota
	OperandOneMinusSrcColor
	OperandSrcAlpha
	OperandOneMinusSrcAlpha
)

// TexEnv configures the texture environment of one TMU.
type TexEnv struct {
	TMU int

	CombineRGB   Combine
	CombineAlpha Combine

	SrcRGB   [3]Source
	SrcAlpha [3]Source

	OperandRGB   [3]Operand
	OperandAlpha [3]Operand

	// ShiftRGB and ShiftAlpha scale the result by 1, 2 or 4.
	ShiftRGB   uint8
	ShiftAlpha uint8
}

// DefaultTexEnv returns a MODULATE environment of texture and previous
// stage.
func DefaultTexEnv(tmu int) TexEnv {
	return TexEnv{
		TMU:          tmu,
		CombineRGB:   CombineModulate,
		CombineAlpha: CombineModulate,
		SrcRGB:       [3]Source{SourceTexture, SourcePrevious, SourceConstant},
		SrcAlpha:     [3]Source{SourceTexture, SourcePrevious, SourceConstant},
		OperandRGB:   [3]Operand{OperandSrcColor, OperandSrcColor, OperandSrcAlpha},
		OperandAlpha: [3]Operand{OperandSrcAlpha, OperandSrcAlpha, OperandSrcAlpha},
	}
}

// Address implements Register.
func (r TexEnv) Address() Address { return TexEnvAddr(r.TMU) }

// Value implements Register.
func (r TexEnv) Value() uint32 {
	v := uint32(r.CombineRGB&0x7) | uint32(r.CombineAlpha&0x7)<<3
	for i := range 3 {
		v |= uint32(r.SrcRGB[i]&0x3) << (6 + 2*i)
		v |= uint32(r.SrcAlpha[i]&0x3) << (12 + 2*i)
		v |= uint32(r.OperandRGB[i]&0x3) << (18 + 2*i)
		inv := r.OperandAlpha[i] == OperandOneMinusSrcAlpha || r.OperandAlpha[i] == OperandOneMinusSrcColor
		v |= b2u(inv) << (24 + i)
	}
	return v | uint32(min(r.ShiftRGB, 2))<<27 | uint32(min(r.ShiftAlpha, 2))<<29
}

// DecodeTexEnv unpacks a TexEnv register word.
func DecodeTexEnv(tmu int, v uint32) TexEnv {
	r := TexEnv{
		TMU:          tmu,
		CombineRGB:   Combine(bits(v, 0, 3)),
		CombineAlpha: Combine(bits(v, 3, 3)),
		ShiftRGB:     uint8(bits(v, 27, 2)),
		ShiftAlpha:   uint8(bits(v, 29, 2)),
	}
	for i := range 3 {
		r.SrcRGB[i] = Source(bits(v, uint(6+2*i), 2))
		r.SrcAlpha[i] = Source(bits(v, uint(12+2*i), 2))
		r.OperandRGB[i] = Operand(bits(v, uint(18+2*i), 2))
		r.OperandAlpha[i] = OperandSrcAlpha
		if flag(v, uint(24+i)) {
			r.OperandAlpha[i] = OperandOneMinusSrcAlpha
		}
	}
	return r
}

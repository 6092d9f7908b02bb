package register

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// LogicOp is a bitwise raster operation between the fragment color (s) and
// the framebuffer color (d). Values are the hardware encoding.
type LogicOp uint8

const (
	LogicOpClear        LogicOp = iota // 0
	LogicOpAnd                         // s & d
	LogicOpAndReverse                  // s & ^d
	LogicOpCopy                        // s
	LogicOpAndInverted                 // ^s & d
	LogicOpNoop                        // d
	LogicOpXor                         // s ^ d
	LogicOpOr                          // s | d
	LogicOpNor                         // ^(s | d)
	LogicOpEquiv                       // ^(s ^ d)
	LogicOpInvert                      // ^d
	LogicOpOrReverse                   // s | ^d
	LogicOpCopyInverted                // ^s
	LogicOpOrInverted                  // ^s | d
	LogicOpNand                        // ^(s & d)
	LogicOpSet                         // all ones
)

// Apply evaluates the operation on one 8-bit channel.
func (op LogicOp) Apply(s, d uint8) uint8 {
	switch op {
	case LogicOpClear:
		return 0
	case LogicOpAnd:
		return s & d
	case LogicOpAndReverse:
		return s &^ d
	case LogicOpCopy:
		return s
	case LogicOpAndInverted:
		return ^s & d
	case LogicOpNoop:
		return d
	case LogicOpXor:
		return s ^ d
	case LogicOpOr:
		return s | d
	case LogicOpNor:
		return ^(s | d)
	case LogicOpEquiv:
		return ^(s ^ d)
	case LogicOpInvert:
		return ^d
	case LogicOpOrReverse:
		return s | ^d
	case LogicOpCopyInverted:
		return ^s
	case LogicOpOrInverted:
		return ^s | d
	case LogicOpNand:
		return ^(s & d)
	default:
		return 0xFF
	}
}

// String returns the name of the operation.
func (op LogicOp) String() string {
	names := [...]string{
		"Clear", "And", "AndReverse", "Copy", "AndInverted", "Noop", "Xor", "Or",
		"Nor", "Equiv", "Invert", "OrReverse", "CopyInverted", "OrInverted", "Nand", "Set",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("LogicOp(%d)", op)
}

// FragmentPipeline configures the depth test, the alpha test, the write
// masks, blending and the logic op.
type FragmentPipeline struct {
	DepthFunc gputypes.CompareFunction
	AlphaFunc gputypes.CompareFunction
	AlphaRef  uint8
	DepthMask bool

	// ColorMask enables writes to R, G, B and A.
	ColorMask [4]bool

	BlendSrc gputypes.BlendFactor
	BlendDst gputypes.BlendFactor
	LogicOp  LogicOp
}

// DefaultFragmentPipeline returns the reset state: depth LESS, alpha ALWAYS,
// all writes enabled, blend ONE/ZERO, logic op COPY.
func DefaultFragmentPipeline() FragmentPipeline {
	return FragmentPipeline{
		DepthFunc: gputypes.CompareFunctionLess,
		AlphaFunc: gputypes.CompareFunctionAlways,
		DepthMask: true,
		ColorMask: [4]bool{true, true, true, true},
		BlendSrc:  gputypes.BlendFactorOne,
		BlendDst:  gputypes.BlendFactorZero,
		LogicOp:   LogicOpCopy,
	}
}

// Address implements Register.
func (FragmentPipeline) Address() Address { return AddrFragmentPipeline }

// Value implements Register.
func (r FragmentPipeline) Value() uint32 {
	return compareCode(r.DepthFunc) |
		compareCode(r.AlphaFunc)<<3 |
		uint32(r.AlphaRef)<<6 |
		b2u(r.DepthMask)<<14 |
		b2u(r.ColorMask[0])<<15 |
		b2u(r.ColorMask[1])<<16 |
		b2u(r.ColorMask[2])<<17 |
		b2u(r.ColorMask[3])<<18 |
		blendCode(r.BlendSrc, gputypes.BlendFactorOne)<<19 |
		blendCode(r.BlendDst, gputypes.BlendFactorZero)<<23 |
		uint32(r.LogicOp&0xF)<<27
}

// DecodeFragmentPipeline unpacks a FragmentPipeline register word.
func DecodeFragmentPipeline(v uint32) FragmentPipeline {
	return FragmentPipeline{
		DepthFunc: compareFunc(bits(v, 0, 3)),
		AlphaFunc: compareFunc(bits(v, 3, 3)),
		AlphaRef:  uint8(bits(v, 6, 8)),
		DepthMask: flag(v, 14),
		ColorMask: [4]bool{flag(v, 15), flag(v, 16), flag(v, 17), flag(v, 18)},
		BlendSrc:  blendFactor(bits(v, 19, 4)),
		BlendDst:  blendFactor(bits(v, 23, 4)),
		LogicOp:   LogicOp(bits(v, 27, 4)),
	}
}

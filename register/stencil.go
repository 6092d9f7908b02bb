package register

import "github.com/gogpu/gputypes"

// StencilMax is the largest value of the 4-bit stencil buffer.
const StencilMax = 0xF

// Stencil configures the stencil test and the stencil buffer updates.
// Reference, masks and clear value are 4 bits wide.
type Stencil struct {
	Func gputypes.CompareFunction
	Ref  uint8

	// Mask is ANDed with both the reference and the stored value before
	// comparing.
	Mask uint8

	// Fail runs when the stencil test fails, ZFail when the stencil test
	// passes and the depth test fails, ZPass when both pass.
	Fail  gputypes.StencilOperation
	ZFail gputypes.StencilOperation
	ZPass gputypes.StencilOperation

	Clear     uint8
	WriteMask uint8
}

// DefaultStencil returns the reset state: ALWAYS, all ops KEEP, full masks.
func DefaultStencil() Stencil {
	return Stencil{
		Func:      gputypes.CompareFunctionAlways,
		Mask:      StencilMax,
		Fail:      gputypes.StencilOperationKeep,
		ZFail:     gputypes.StencilOperationKeep,
		ZPass:     gputypes.StencilOperationKeep,
		WriteMask: StencilMax,
	}
}

// Address implements Register.
func (Stencil) Address() Address { return AddrStencil }

// Value implements Register.
func (r Stencil) Value() uint32 {
	return compareCode(r.Func) |
		uint32(r.Ref&StencilMax)<<3 |
		uint32(r.Mask&StencilMax)<<7 |
		stencilOpCode(r.ZPass)<<11 |
		stencilOpCode(r.ZFail)<<14 |
		stencilOpCode(r.Fail)<<17 |
		uint32(r.Clear&StencilMax)<<20 |
		uint32(r.WriteMask&StencilMax)<<24
}

// DecodeStencil unpacks a Stencil register word.
func DecodeStencil(v uint32) Stencil {
	return Stencil{
		Func:      compareFunc(bits(v, 0, 3)),
		Ref:       uint8(bits(v, 3, 4)),
		Mask:      uint8(bits(v, 7, 4)),
		ZPass:     stencilOp(bits(v, 11, 3)),
		ZFail:     stencilOp(bits(v, 14, 3)),
		Fail:      stencilOp(bits(v, 17, 3)),
		Clear:     uint8(bits(v, 20, 4)),
		WriteMask: uint8(bits(v, 24, 4)),
	}
}

package register

import "github.com/gogpu/gputypes"

// Hardware encodings of the gputypes enums. Compare functions and blend
// factors are the gputypes value minus one; undefined values fall back to
// the pass-through setting.

func compareCode(f gputypes.CompareFunction) uint32 {
	if f < gputypes.CompareFunctionNever || f > gputypes.CompareFunctionAlways {
		return uint32(gputypes.CompareFunctionAlways - 1)
	}
	return uint32(f - 1)
}

func compareFunc(code uint32) gputypes.CompareFunction {
	return gputypes.CompareFunction(code&0x7) + 1
}

func blendCode(f gputypes.BlendFactor, fallback gputypes.BlendFactor) uint32 {
	if f < gputypes.BlendFactorZero || f > gputypes.BlendFactorOneMinusConstant {
		f = fallback
	}
	return uint32(f - 1)
}

func blendFactor(code uint32) gputypes.BlendFactor {
	f := gputypes.BlendFactor(code&0xF) + 1
	if f > gputypes.BlendFactorOneMinusConstant {
		return gputypes.BlendFactorOne
	}
	return f
}

// stencilOps is indexed by the 3-bit hardware code.
var stencilOps = [8]gputypes.StencilOperation{
	gputypes.StencilOperationKeep,
	gputypes.StencilOperationZero,
	gputypes.StencilOperationReplace,
	gputypes.StencilOperationIncrementClamp,
	gputypes.StencilOperationIncrementWrap,
	gputypes.StencilOperationDecrementClamp,
	gputypes.StencilOperationDecrementWrap,
	gputypes.StencilOperationInvert,
}

func stencilOpCode(op gputypes.StencilOperation) uint32 {
	for i, o := range stencilOps {
		if o == op {
			return uint32(i)
		}
	}
	return 0
}

func stencilOp(code uint32) gputypes.StencilOperation {
	return stencilOps[code&0x7]
}

package fragment

import (
	"cmp"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix/register"
)

// Compare evaluates "a f b". Undefined functions pass.
func Compare[T cmp.Ordered](f gputypes.CompareFunction, a, b T) bool {
	switch f {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return a < b
	case gputypes.CompareFunctionEqual:
		return a == b
	case gputypes.CompareFunctionLessEqual:
		return a <= b
	case gputypes.CompareFunctionGreater:
		return a > b
	case gputypes.CompareFunctionNotEqual:
		return a != b
	case gputypes.CompareFunctionGreaterEqual:
		return a >= b
	default:
		return true
	}
}

// StencilOp applies op to the 4-bit stencil value s. INCR and DECR
// saturate, the WRAP variants wrap around modulo 16.
func StencilOp(op gputypes.StencilOperation, s, ref uint8) uint8 {
	const m = register.StencilMax
	s &= m
	switch op {
	case gputypes.StencilOperationZero:
		return 0
	case gputypes.StencilOperationReplace:
		return ref & m
	case gputypes.StencilOperationInvert:
		return ^s & m
	case gputypes.StencilOperationIncrementClamp:
		return min(s+1, m)
	case gputypes.StencilOperationDecrementClamp:
		if s == 0 {
			return 0
		}
		return s - 1
	case gputypes.StencilOperationIncrementWrap:
		return (s + 1) & m
	case gputypes.StencilOperationDecrementWrap:
		return (s - 1) & m
	default:
		return s
	}
}

// stencilTest runs the stencil test and picks the update for the outcome.
// It returns whether the stencil test passed and the new stencil value
// before the write mask.
func stencilTest(r *register.Stencil, stored uint8, depthPass bool) (bool, uint8) {
	pass := Compare(r.Func, r.Ref&r.Mask, stored&r.Mask)
	var op gputypes.StencilOperation
	switch {
	case !pass:
		op = r.Fail
	case !depthPass:
		op = r.ZFail
	default:
		op = r.ZPass
	}
	return pass, StencilOp(op, stored, r.Ref)
}

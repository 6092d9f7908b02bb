// Package register models the rasterizer's shadow register file.
//
// Every register has a stable address and serializes to one 32-bit word. The
// address becomes the low bits of a register-write opcode; the word is the
// payload. Writes are idempotent and the last write to an address wins.
package register

import "fmt"

// Address is a register address.
type Address uint8

// Register addresses. Per-TMU registers repeat every TMUStride addresses.
const (
	AddrFeatureEnable        Address = 0x00
	AddrColorClear           Address = 0x01
	AddrDepthClear           Address = 0x02
	AddrFragmentPipeline     Address = 0x03
	AddrStencil              Address = 0x04
	AddrScissorStart         Address = 0x05
	AddrScissorEnd           Address = 0x06
	AddrYOffset              Address = 0x07
	AddrFogColor             Address = 0x08
	AddrRenderResolution     Address = 0x09
	AddrBlendColor           Address = 0x0A
	AddrTexEnvColor0         Address = 0x0B
	AddrTmuTexture0          Address = 0x0C
	AddrTexEnv0              Address = 0x0D
	AddrColorBufferAddress   Address = 0x11
	AddrDepthBufferAddress   Address = 0x12
	AddrStencilBufferAddress Address = 0x13

	// AddressCount is one past the highest assigned address.
	AddressCount = 0x14
)

// TMUStride is the distance between the register blocks of two TMUs.
const TMUStride = 3

// MaxTMUs is the number of TMU register blocks in the address map.
const MaxTMUs = 2

// TexEnvColorAddr returns the address of the env color register of a TMU.
func TexEnvColorAddr(tmu int) Address { return AddrTexEnvColor0 + Address(tmu*TMUStride) }

// TmuTextureAddr returns the address of the texture descriptor of a TMU.
func TmuTextureAddr(tmu int) Address { return AddrTmuTexture0 + Address(tmu*TMUStride) }

// TexEnvAddr returns the address of the texture environment of a TMU.
func TexEnvAddr(tmu int) Address { return AddrTexEnv0 + Address(tmu*TMUStride) }

// tmuOf splits a per-TMU address into its base and TMU index.
func tmuOf(a Address) (base Address, tmu int, ok bool) {
	if a < AddrTexEnvColor0 || a >= AddrTexEnvColor0+MaxTMUs*TMUStride {
		return 0, 0, false
	}
	off := int(a - AddrTexEnvColor0)
	return AddrTexEnvColor0 + Address(off%TMUStride), off / TMUStride, true
}

// String returns the register name.
func (a Address) String() string {
	if base, tmu, ok := tmuOf(a); ok {
		name := map[Address]string{
			AddrTexEnvColor0: "TexEnvColor",
			AddrTmuTexture0:  "TmuTexture",
			AddrTexEnv0:      "TexEnv",
		}[base]
		return fmt.Sprintf("%s%d", name, tmu)
	}
	switch a {
	case AddrFeatureEnable:
		return "FeatureEnable"
	case AddrColorClear:
		return "ColorClear"
	case AddrDepthClear:
		return "DepthClear"
	case AddrFragmentPipeline:
		return "FragmentPipeline"
	case AddrStencil:
		return "Stencil"
	case AddrScissorStart:
		return "ScissorStart"
	case AddrScissorEnd:
		return "ScissorEnd"
	case AddrYOffset:
		return "YOffset"
	case AddrFogColor:
		return "FogColor"
	case AddrRenderResolution:
		return "RenderResolution"
	case AddrBlendColor:
		return "BlendColor"
	case AddrColorBufferAddress:
		return "ColorBufferAddress"
	case AddrDepthBufferAddress:
		return "DepthBufferAddress"
	case AddrStencilBufferAddress:
		return "StencilBufferAddress"
	}
	return fmt.Sprintf("Address(%#x)", uint8(a))
}

// Register is a shadow register value.
type Register interface {
	// Address returns the register address.
	Address() Address

	// Value returns the serialized register word.
	Value() uint32
}

// Decode reconstructs a typed register from its address and word.
// It returns false for unassigned addresses.
func Decode(a Address, v uint32) (Register, bool) {
	if base, tmu, ok := tmuOf(a); ok {
		switch base {
		case AddrTexEnvColor0:
			return TexEnvColor{TMU: tmu, Color: unpackColor(v)}, true
		case AddrTmuTexture0:
			return DecodeTmuTexture(tmu, v), true
		default:
			return DecodeTexEnv(tmu, v), true
		}
	}
	switch a {
	case AddrFeatureEnable:
		return DecodeFeatureEnable(v), true
	case AddrColorClear:
		return ColorClear{Color: unpackColor(v)}, true
	case AddrDepthClear:
		return DepthClear{Depth: uint16(v)}, true
	case AddrFragmentPipeline:
		return DecodeFragmentPipeline(v), true
	case AddrStencil:
		return DecodeStencil(v), true
	case AddrScissorStart:
		return ScissorStart(decodeXY(v)), true
	case AddrScissorEnd:
		return ScissorEnd(decodeXY(v)), true
	case AddrYOffset:
		return YOffset{Y: uint16(v)}, true
	case AddrFogColor:
		return FogColor{Color: unpackColor(v)}, true
	case AddrRenderResolution:
		return RenderResolution(decodeXY(v)), true
	case AddrBlendColor:
		return BlendColor{Color: unpackColor(v)}, true
	case AddrColorBufferAddress:
		return ColorBufferAddress{Addr: v}, true
	case AddrDepthBufferAddress:
		return DepthBufferAddress{Addr: v}, true
	case AddrStencilBufferAddress:
		return StencilBufferAddress{Addr: v}, true
	}
	return nil, false
}

// bits extracts n bits of v starting at shift.
func bits(v uint32, shift, n uint) uint32 {
	return v >> shift & (1<<n - 1)
}

// flag extracts a single bit.
func flag(v uint32, shift uint) bool {
	return v>>shift&1 != 0
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

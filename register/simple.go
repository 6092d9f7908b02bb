package register

import (
	"image/color"

	"github.com/gogpu/rix/internal/pixel"
)

func unpackColor(v uint32) color.RGBA { return pixel.UnpackWord(v) }

// XY is a pair of 16-bit screen coordinates packed as x | y<<16.
type XY struct {
	X, Y uint16
}

func (p XY) word() uint32 { return uint32(p.X) | uint32(p.Y)<<16 }

func decodeXY(v uint32) XY { return XY{X: uint16(v), Y: uint16(v >> 16)} }

// ScissorStart is the inclusive top left corner of the scissor box.
type ScissorStart XY

// Address implements Register.
func (ScissorStart) Address() Address { return AddrScissorStart }

// Value implements Register.
func (r ScissorStart) Value() uint32 { return XY(r).word() }

// ScissorEnd is the exclusive bottom right corner of the scissor box.
type ScissorEnd XY

// Address implements Register.
func (ScissorEnd) Address() Address { return AddrScissorEnd }

// Value implements Register.
func (r ScissorEnd) Value() uint32 { return XY(r).word() }

// RenderResolution is the size of the area the rasterizer renders into. In a
// tiled setup Y is the number of lines of the tile.
type RenderResolution XY

// Address implements Register.
func (RenderResolution) Address() Address { return AddrRenderResolution }

// Value implements Register.
func (r RenderResolution) Value() uint32 { return XY(r).word() }

// YOffset is the first screen line of the area the rasterizer renders into.
type YOffset struct {
	Y uint16
}

// Address implements Register.
func (YOffset) Address() Address { return AddrYOffset }

// Value implements Register.
func (r YOffset) Value() uint32 { return uint32(r.Y) }

// ColorClear is the color written by a color buffer memset.
type ColorClear struct {
	Color color.RGBA
}

// Address implements Register.
func (ColorClear) Address() Address { return AddrColorClear }

// Value implements Register.
func (r ColorClear) Value() uint32 { return pixel.PackWord(r.Color) }

// DepthClear is the value written by a depth buffer memset.
type DepthClear struct {
	Depth uint16
}

// Address implements Register.
func (DepthClear) Address() Address { return AddrDepthClear }

// Value implements Register.
func (r DepthClear) Value() uint32 { return uint32(r.Depth) }

// FogColor is the color fog blends towards.
type FogColor struct {
	Color color.RGBA
}

// Address implements Register.
func (FogColor) Address() Address { return AddrFogColor }

// Value implements Register.
func (r FogColor) Value() uint32 { return pixel.PackWord(r.Color) }

// BlendColor is the constant color of the CONSTANT blend factors.
type BlendColor struct {
	Color color.RGBA
}

// Address implements Register.
func (BlendColor) Address() Address { return AddrBlendColor }

// Value implements Register.
func (r BlendColor) Value() uint32 { return pixel.PackWord(r.Color) }

// TexEnvColor is the constant color source of a texture environment.
type TexEnvColor struct {
	TMU   int
	Color color.RGBA
}

// Address implements Register.
func (r TexEnvColor) Address() Address { return TexEnvColorAddr(r.TMU) }

// Value implements Register.
func (r TexEnvColor) Value() uint32 { return pixel.PackWord(r.Color) }

// ColorBufferAddress is the device address of the color buffer the
// rasterizer renders into.
type ColorBufferAddress struct {
	Addr uint32
}

// Address implements Register.
func (ColorBufferAddress) Address() Address { return AddrColorBufferAddress }

// Value implements Register.
func (r ColorBufferAddress) Value() uint32 { return r.Addr }

// DepthBufferAddress is the device address of the depth buffer.
type DepthBufferAddress struct {
	Addr uint32
}

// Address implements Register.
func (DepthBufferAddress) Address() Address { return AddrDepthBufferAddress }

// Value implements Register.
func (r DepthBufferAddress) Value() uint32 { return r.Addr }

// StencilBufferAddress is the device address of the stencil buffer.
type StencilBufferAddress struct {
	Addr uint32
}

// Address implements Register.
func (StencilBufferAddress) Address() Address { return AddrStencilBufferAddress }

// Value implements Register.
func (r StencilBufferAddress) Value() uint32 { return r.Addr }

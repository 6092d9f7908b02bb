package dispatch

import (
	"github.com/gogpu/rix/internal/parallel"
	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/register"
)

// Depth and stencil sizes per pixel in device memory.
const (
	depthBytes   = 2
	stencilBytes = 1
)

// TileState tracks the screen space values of the registers that depend on
// the tile a display list is rendered for, and derives their per-tile
// values.
//
// Buffer addresses are moved to the first pixel of the tile, YOffset is the
// first line of the tile and RenderResolution carries the number of lines of
// the tile. The scissor box stays in screen coordinates but is clipped to
// the rows of the tile.
type TileState struct {
	resX int

	features     register.FeatureEnable
	scissorStart register.XY
	scissorEnd   register.XY
	color        uint32
	depth        uint32
	stencil      uint32
}

// NewTileState returns the state of a resX pixels wide framebuffer with all
// buffers at address 0 and the scissor box covering resX x resY.
func NewTileState(resX, resY int) TileState {
	return TileState{
		resX:       resX,
		scissorEnd: register.XY{X: uint16(resX), Y: uint16(resY)},
	}
}

// Intercept records r if it is a tiling register and reports whether it
// was one. Intercepted registers must be emitted through Registers.
func (s *TileState) Intercept(r register.Register) bool {
	switch r := r.(type) {
	case register.FeatureEnable:
		s.features = r
	case register.ScissorStart:
		s.scissorStart = register.XY(r)
	case register.ScissorEnd:
		s.scissorEnd = register.XY(r)
	case register.ColorBufferAddress:
		s.color = r.Addr
	case register.DepthBufferAddress:
		s.depth = r.Addr
	case register.StencilBufferAddress:
		s.stencil = r.Addr
	case register.RenderResolution:
		s.resX = int(r.X)
	case register.YOffset:
		// Always derived from the tile.
	default:
		return false
	}
	return true
}

// Registers returns the per-tile value of the tiling register at addr.
// It returns nil for other addresses.
func (s *TileState) Registers(addr register.Address, tile parallel.Tile) []register.Register {
	switch addr {
	case register.AddrFeatureEnable:
		return []register.Register{s.features}
	case register.AddrScissorStart, register.AddrScissorEnd:
		start, end := s.scissor(tile)
		return []register.Register{start, end}
	case register.AddrColorBufferAddress:
		return []register.Register{register.ColorBufferAddress{Addr: s.offset(s.color, tile, pixel.BytesPerPixel)}}
	case register.AddrDepthBufferAddress:
		return []register.Register{register.DepthBufferAddress{Addr: s.offset(s.depth, tile, depthBytes)}}
	case register.AddrStencilBufferAddress:
		return []register.Register{register.StencilBufferAddress{Addr: s.offset(s.stencil, tile, stencilBytes)}}
	case register.AddrYOffset, register.AddrRenderResolution:
		return []register.Register{
			register.YOffset{Y: uint16(tile.StartY)},
			register.RenderResolution{X: uint16(s.resX), Y: uint16(tile.Lines)},
		}
	}
	return nil
}

// All returns every tiling register for tile, in the order a freshly
// cleared display list needs them.
func (s *TileState) All(tile parallel.Tile) []register.Register {
	var regs []register.Register
	for _, a := range []register.Address{
		register.AddrRenderResolution,
		register.AddrColorBufferAddress,
		register.AddrDepthBufferAddress,
		register.AddrStencilBufferAddress,
		register.AddrScissorStart,
		register.AddrFeatureEnable,
	} {
		regs = append(regs, s.Registers(a, tile)...)
	}
	return regs
}

func (s *TileState) offset(base uint32, tile parallel.Tile, bpp int) uint32 {
	return base + uint32(tile.PixelOffset(s.resX)*bpp)
}

// scissor clips the scissor box to the rows of tile. An empty intersection
// yields an empty box at the tile start.
func (s *TileState) scissor(tile parallel.Tile) (register.ScissorStart, register.ScissorEnd) {
	sy := max(int(s.scissorStart.Y), tile.StartY)
	ey := min(int(s.scissorEnd.Y), tile.EndY())
	if ey < sy {
		sy, ey = tile.StartY, tile.StartY
	}
	return register.ScissorStart{X: s.scissorStart.X, Y: uint16(sy)},
		register.ScissorEnd{X: s.scissorEnd.X, Y: uint16(ey)}
}

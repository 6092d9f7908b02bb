package fragment

import (
	"encoding/binary"

	"github.com/gogpu/rix/internal/pixel"
)

// Framebuffer locates the color, depth and stencil buffers of the current
// tile in device memory. Pixel i of a buffer is at base + i * bytes per
// pixel; the index is relative to the tile's first line.
type Framebuffer struct {
	Color   uint32
	Depth   uint32
	Stencil uint32
	Format  pixel.Format
}

// Depth and stencil sizes in bytes.
const (
	depthBytes   = 2
	stencilBytes = 1
)

type memory []byte

func (m memory) u16(addr, i int, size int) (uint16, bool) {
	a := addr + i*size
	if a < 0 || a+2 > len(m) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(m[a:]), true
}

func (m memory) putU16(addr, i int, v uint16) {
	a := addr + i*2
	if a >= 0 && a+2 <= len(m) {
		binary.LittleEndian.PutUint16(m[a:], v)
	}
}

func (m memory) u8(addr, i int) (uint8, bool) {
	a := addr + i
	if a < 0 || a >= len(m) {
		return 0, false
	}
	return m[a], true
}

func (m memory) putU8(addr, i int, v uint8) {
	if a := addr + i; a >= 0 && a < len(m) {
		m[a] = v
	}
}

func (p *Pipeline) readColor(i int) uint16 {
	v, _ := memory(p.mem).u16(int(p.fb.Color), i, pixel.BytesPerPixel)
	return v
}

func (p *Pipeline) readDepth(i int) uint16 {
	v, _ := memory(p.mem).u16(int(p.fb.Depth), i, depthBytes)
	return v
}

func (p *Pipeline) readStencil(i int) uint8 {
	v, _ := memory(p.mem).u8(int(p.fb.Stencil), i)
	return v
}

func (p *Pipeline) writeColor(i int, v uint16) {
	memory(p.mem).putU16(int(p.fb.Color), i, v)
}

func (p *Pipeline) writeDepth(i int, v uint16) {
	memory(p.mem).putU16(int(p.fb.Depth), i, v)
}

func (p *Pipeline) writeStencil(i int, v uint8) {
	memory(p.mem).putU8(int(p.fb.Stencil), i*stencilBytes, v)
}

// Package pixel converts between 8-bit RGBA colors and the 16-bit native
// formats of the rasterizer.
//
// Narrowing truncates (drops low bits) and widening shifts left, matching the
// hardware: a 4-bit channel 0xF becomes 0xF0, not 0xFF. A 1-bit alpha widens
// to 0x00 or 0xFF.
package pixel

import (
	"fmt"
	"image/color"

	"github.com/gogpu/rix/internal/mathx"
)

// BytesPerPixel is the size of one native color buffer pixel.
const BytesPerPixel = 2

// Format is a native 16-bit pixel format. The numeric value is the hardware
// encoding used in the TMU texture register.
type Format uint8

const (
	FormatRGBA4444 Format = iota
	FormatRGBA5551
	FormatRGB565
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f <= FormatRGB565
}

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA4444:
		return "RGBA4444"
	case FormatRGBA5551:
		return "RGBA5551"
	case FormatRGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	return f != FormatRGB565
}

// Pack converts c to the native format.
func Pack(f Format, c color.RGBA) uint16 {
	r, g, b, a := uint16(c.R), uint16(c.G), uint16(c.B), uint16(c.A)
	switch f {
	case FormatRGBA4444:
		return r>>4<<12 | g>>4<<8 | b>>4<<4 | a>>4
	case FormatRGBA5551:
		return r>>3<<11 | g>>3<<6 | b>>3<<1 | a>>7
	default:
		return r>>3<<11 | g>>2<<5 | b>>3
	}
}

// Unpack converts a native pixel to 8-bit channels. Formats without alpha
// unpack as opaque.
func Unpack(f Format, v uint16) color.RGBA {
	switch f {
	case FormatRGBA4444:
		return color.RGBA{
			R: uint8(v >> 12 & 0xF << 4),
			G: uint8(v >> 8 & 0xF << 4),
			B: uint8(v >> 4 & 0xF << 4),
			A: uint8(v & 0xF << 4),
		}
	case FormatRGBA5551:
		a := uint8(0)
		if v&1 != 0 {
			a = 0xFF
		}
		return color.RGBA{
			R: uint8(v >> 11 & 0x1F << 3),
			G: uint8(v >> 6 & 0x1F << 3),
			B: uint8(v >> 1 & 0x1F << 3),
			A: a,
		}
	default:
		return color.RGBA{
			R: uint8(v >> 11 & 0x1F << 3),
			G: uint8(v >> 5 & 0x3F << 2),
			B: uint8(v & 0x1F << 3),
			A: 0xFF,
		}
	}
}

// Quantize converts a normalized channel to 8 bits by truncation.
func Quantize(v float32) uint8 {
	return uint8(mathx.Saturate(v) * 255)
}

// Normalize converts an 8-bit channel to [0, 1].
func Normalize(v uint8) float32 {
	return float32(v) / 255
}

// Depth16 converts a normalized depth value to 16 bits by truncation.
func Depth16(z float32) uint16 {
	return uint16(mathx.Saturate(z) * 65535)
}

// Color is a normalized RGBA color used inside the fragment pipeline.
type Color [4]float32

// FromRGBA normalizes an 8-bit color.
func FromRGBA(c color.RGBA) Color {
	return Color{Normalize(c.R), Normalize(c.G), Normalize(c.B), Normalize(c.A)}
}

// RGBA quantizes the color to 8 bits per channel.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: Quantize(c[0]), G: Quantize(c[1]), B: Quantize(c[2]), A: Quantize(c[3])}
}

// Clamp saturates every channel.
func (c Color) Clamp() Color {
	for i := range c {
		c[i] = mathx.Saturate(c[i])
	}
	return c
}

// PackWord packs c into the RGBA8888 register layout: R in the low byte.
func PackWord(c color.RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// UnpackWord is the inverse of PackWord.
func UnpackWord(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
}

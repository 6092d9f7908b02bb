package fragment

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/register"
)

// Sampler fetches texels of one TMU from device memory through the page
// table streamed for the bound texture. Mip level 0 is stored first and is
// the only level sampled.
type Sampler struct {
	Texture register.TmuTexture

	// Pages are the absolute device addresses of the texture pages.
	Pages []uint32

	// PageSize is the size of a texture page in bytes.
	PageSize int

	// HalfTexel centers the bilinear kernel on texel centers.
	HalfTexel bool
}

// Sample returns the filtered texture color at (s, t).
func (sp *Sampler) Sample(mem []byte, s, t float32) pixel.Color {
	w, h := sp.Texture.Width, sp.Texture.Height
	if sp.Texture.Filter != gputypes.FilterModeLinear {
		x := wrap(sp.Texture.WrapS, texelIndex(s, w), w)
		y := wrap(sp.Texture.WrapT, texelIndex(t, h), h)
		return pixel.FromRGBA(sp.texel(mem, x, y))
	}

	u, v := s*float32(w), t*float32(h)
	if sp.HalfTexel {
		u, v = u-0.5, v-0.5
	}
	fu, fv := float32(math.Floor(float64(u))), float32(math.Floor(float64(v)))
	x0, y0 := int(fu), int(fv)
	ax, ay := u-fu, v-fv

	xs := [2]int{wrap(sp.Texture.WrapS, x0, w), wrap(sp.Texture.WrapS, x0+1, w)}
	ys := [2]int{wrap(sp.Texture.WrapT, y0, h), wrap(sp.Texture.WrapT, y0+1, h)}
	weights := [4]float32{(1 - ax) * (1 - ay), ax * (1 - ay), (1 - ax) * ay, ax * ay}

	var out pixel.Color
	for i, wt := range weights {
		c := pixel.FromRGBA(sp.texel(mem, xs[i&1], ys[i>>1]))
		for ch := range out {
			out[ch] += c[ch] * wt
		}
	}
	return out.Clamp()
}

// texelIndex maps a normalized coordinate to an unwrapped texel index.
func texelIndex(s float32, size int) int {
	f := math.Floor(float64(s) * float64(size))
	// Keep the conversion defined for huge or NaN coordinates.
	if !(f > -1<<30 && f < 1<<30) {
		return 0
	}
	return int(f)
}

// wrap applies the address mode to a texel index. Texture sizes are powers
// of two, so REPEAT is a mask; s = 1.0 maps to texel 0 like s = 0.0.
func wrap(mode gputypes.AddressMode, i, size int) int {
	if mode == gputypes.AddressModeClampToEdge {
		return min(max(i, 0), size-1)
	}
	return i & (size - 1)
}

// texel reads texel (x, y). Texels outside the page table or device memory
// read as transparent black.
func (sp *Sampler) texel(mem []byte, x, y int) color.RGBA {
	if sp.PageSize <= 0 {
		return color.RGBA{}
	}
	off := (y*sp.Texture.Width + x) * pixel.BytesPerPixel
	page := off / sp.PageSize
	if page >= len(sp.Pages) {
		return color.RGBA{}
	}
	addr := int(sp.Pages[page]) + off%sp.PageSize
	if addr+pixel.BytesPerPixel > len(mem) {
		return color.RGBA{}
	}
	return pixel.Unpack(sp.Texture.Format, binary.LittleEndian.Uint16(mem[addr:]))
}

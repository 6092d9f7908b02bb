// Package texture converts images into native texture objects and pages
// them into the texture pool of device memory.
//
// A texture occupies whole pages. Every mip level starts on a page boundary,
// level 0 first, so the page table of a texture is the concatenation of the
// page runs of its levels. Texels are stored row by row, two bytes each.
package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/internal/mathx"
	"github.com/gogpu/rix/internal/pixel"
)

// ErrTextureSize is returned for textures whose edges are not powers of
// two or exceed the configured maximum.
var ErrTextureSize = errors.New("texture: unsupported size")

// Level is one mip level in the native pixel format.
type Level struct {
	Width, Height int
	Texels        []uint16
}

// Bytes returns the level as it is stored in device memory.
func (l *Level) Bytes() []byte {
	b := make([]byte, len(l.Texels)*pixel.BytesPerPixel)
	for i, t := range l.Texels {
		binary.LittleEndian.PutUint16(b[2*i:], t)
	}
	return b
}

// Pages returns the number of pageSize pages the level occupies.
func (l *Level) Pages(pageSize int) int {
	return mathx.CeilDiv(len(l.Texels)*pixel.BytesPerPixel, pageSize)
}

// Object is a texture with its mip chain, ready for upload.
type Object struct {
	Format pixel.Format
	Levels []Level
}

// New wraps native texels as a single level texture.
func New(format pixel.Format, width, height int, texels []uint16) (*Object, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if len(texels) != width*height {
		return nil, fmt.Errorf("%w: %d texels for %dx%d", ErrTextureSize, len(texels), width, height)
	}
	return &Object{
		Format: format,
		Levels: []Level{{Width: width, Height: height, Texels: texels}},
	}, nil
}

// FromImage converts img into a texture. Images whose edges are not powers
// of two are scaled up to the next power of two. With mipmaps set, a chain
// of bilinearly downscaled levels follows level 0, down to 1x1 or
// rix.MaxMipLevels levels.
func FromImage(img image.Image, format pixel.Format, mipmaps bool) (*Object, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrTextureSize)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: format %v", rix.ErrInvalidConfig, format)
	}
	w, h := nextPow2(b.Dx()), nextPow2(b.Dy())
	if err := checkSize(w, h); err != nil {
		return nil, err
	}

	// Texture alpha is straight, so convert through NRGBA.
	level := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(level, level.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(level, level.Bounds(), img, b, draw.Src, nil)
	}

	o := &Object{Format: format}
	for {
		o.Levels = append(o.Levels, convert(level, format))
		if !mipmaps || len(o.Levels) == rix.MaxMipLevels || (w == 1 && h == 1) {
			break
		}
		w, h = max(w/2, 1), max(h/2, 1)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), level, level.Bounds(), draw.Src, nil)
		level = next
	}
	return o, nil
}

// Width returns the width of level 0.
func (o *Object) Width() int { return o.Levels[0].Width }

// Height returns the height of level 0.
func (o *Object) Height() int { return o.Levels[0].Height }

// Pages returns the number of pages the whole mip chain occupies.
func (o *Object) Pages(pageSize int) int {
	n := 0
	for i := range o.Levels {
		n += o.Levels[i].Pages(pageSize)
	}
	return n
}

// Image decodes level i back into an image.
func (o *Object) Image(i int) *image.NRGBA {
	l := &o.Levels[i]
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	for j, t := range l.Texels {
		c := pixel.Unpack(o.Format, t)
		img.Pix[4*j], img.Pix[4*j+1], img.Pix[4*j+2], img.Pix[4*j+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func convert(img *image.NRGBA, format pixel.Format) Level {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	l := Level{Width: w, Height: h, Texels: make([]uint16, w*h)}
	for y := range h {
		row := img.Pix[y*img.Stride:]
		for x := range w {
			p := row[4*x : 4*x+4]
			l.Texels[y*w+x] = pixel.Pack(format, color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
		}
	}
	return l
}

func checkSize(w, h int) error {
	const limit = 1 << 15
	if !mathx.IsPow2(w) || !mathx.IsPow2(h) || w > limit || h > limit {
		return fmt.Errorf("%w: %dx%d", ErrTextureSize, w, h)
	}
	return nil
}

func nextPow2(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rix

import (
	"fmt"

	"github.com/gogpu/rix/internal/mathx"
	"github.com/gogpu/rix/internal/pixel"
)

// MaxTMUs is the number of texture mapping units the register file and the
// triangle descriptor have room for.
const MaxTMUs = 2

// MaxMipLevels is the deepest mip chain a texture object can carry.
const MaxMipLevels = 8

// MaxTexturePages is the longest page table a TextureStream opcode can
// carry in its 16-bit count field.
const MaxTexturePages = 0xFFFF

// Resolution limits. Registers carry 16-bit coordinates. Fixed-point edge
// functions use 4 subpixel bits and must stay well inside int32 over the
// whole bounding box, which caps the fixed path at 1024 pixels per axis.
const (
	MaxResolution      = 4096
	MaxFixedResolution = 1024
)

// ColorFormat is a native 16-bit pixel format of color buffers and
// textures.
type ColorFormat = pixel.Format

// Native pixel formats.
const (
	FormatRGBA4444 = pixel.FormatRGBA4444
	FormatRGBA5551 = pixel.FormatRGBA5551
	FormatRGB565   = pixel.FormatRGB565
)

// EdgeMode selects the numeric representation of the edge functions in
// triangle descriptors. It is a deployment-time choice: producer and consumer
// of a display list must agree on it.
type EdgeMode uint8

const (
	// EdgeFixed uses exact integer edge functions with 4 subpixel bits.
	EdgeFixed EdgeMode = iota

	// EdgeFloat uses float32 edge functions.
	EdgeFloat
)

// String returns the name of the edge mode.
func (m EdgeMode) String() string {
	switch m {
	case EdgeFixed:
		return "fixed"
	case EdgeFloat:
		return "float"
	default:
		return fmt.Sprintf("EdgeMode(%d)", m)
	}
}

// Config is the pipeline configuration. It is resolved once at startup by
// NewConfig and passed by value to every component that needs it.
type Config struct {
	// ResolutionX and ResolutionY are the framebuffer dimensions in pixels.
	ResolutionX int
	ResolutionY int

	// Tiles is the number of horizontal screen partitions. Each tile owns a
	// front and a back display list.
	Tiles int

	// DisplayListSize is the capacity of one display list in bytes.
	DisplayListSize int

	// TMUCount is the number of texture mapping units in use (1 or 2).
	TMUCount int

	// MaxTextureSize is the largest accepted texture edge in texels.
	MaxTextureSize int

	// TexturePageSize is the size of one texture page in bytes.
	TexturePageSize int

	// TexturePageCount is the number of pages in the texture pool.
	TexturePageCount int

	// Edge selects fixed or float edge functions.
	Edge EdgeMode

	// ColorFormat is the native format of the color buffers.
	ColorFormat ColorFormat

	// BilinearHalfTexel shifts bilinear sample positions by half a texel so
	// the kernel is centered on texel centers.
	BilinearHalfTexel bool

	// OffloadTransform makes the renderer emit virtual vertex commands
	// instead of transforming and rasterizing geometry inline. The device
	// must consume virtual commands (threaded or software rasterizer).
	OffloadTransform bool
}

// DefaultConfig returns the configuration used when no options are given:
// 640x480 RGB565, a single tile, two TMUs and a 4 MiB texture pool.
func DefaultConfig() Config {
	return Config{
		ResolutionX:      640,
		ResolutionY:      480,
		Tiles:            1,
		DisplayListSize:  64 * 1024,
		TMUCount:         MaxTMUs,
		MaxTextureSize:   256,
		TexturePageSize:  4096,
		TexturePageCount: 1024,
		Edge:             EdgeFixed,
		ColorFormat:      FormatRGB565,
	}
}

// NewConfig applies opts to DefaultConfig and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports whether the configuration is usable. The returned error
// wraps ErrInvalidConfig.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	limit := MaxResolution
	if c.Edge == EdgeFixed {
		limit = MaxFixedResolution
	}
	switch {
	case c.ResolutionX <= 0 || c.ResolutionY <= 0:
		return invalid("resolution %dx%d", c.ResolutionX, c.ResolutionY)
	case c.ResolutionX > limit || c.ResolutionY > limit:
		return invalid("resolution %dx%d exceeds %d for %v edges", c.ResolutionX, c.ResolutionY, limit, c.Edge)
	case c.Tiles < 1 || c.Tiles > c.ResolutionY:
		return invalid("tile count %d", c.Tiles)
	case c.Tiles > 16:
		return invalid("tile count %d exceeds 16", c.Tiles)
	case c.DisplayListSize < 1024 || c.DisplayListSize%4 != 0:
		return invalid("display list size %d", c.DisplayListSize)
	case c.TMUCount < 1 || c.TMUCount > MaxTMUs:
		return invalid("tmu count %d", c.TMUCount)
	case !mathx.IsPow2(c.MaxTextureSize) || c.MaxTextureSize > 1<<15:
		return invalid("max texture size %d", c.MaxTextureSize)
	case !mathx.IsPow2(c.TexturePageSize) || c.TexturePageSize < 64:
		return invalid("texture page size %d", c.TexturePageSize)
	case c.LargestTexturePages() > MaxTexturePages:
		return invalid("a %d texel texture needs %d pages of %d bytes, more than %d",
			c.MaxTextureSize, c.LargestTexturePages(), c.TexturePageSize, MaxTexturePages)
	case c.TexturePageCount < 1:
		return invalid("texture page count %d", c.TexturePageCount)
	case c.Edge != EdgeFixed && c.Edge != EdgeFloat:
		return invalid("edge mode %v", c.Edge)
	case !c.ColorFormat.Valid():
		return invalid("color format %v", c.ColorFormat)
	}
	return nil
}

// DisplayListBuffers is the number of display list buffers the device must
// provide: a front and a back list per tile.
func (c Config) DisplayListBuffers() int {
	return 2 * c.Tiles
}

// MemoryMap describes where the renderer places its buffers in device memory.
// All regions start on a texture page boundary.
type MemoryMap struct {
	ColorBuffer   [2]uint32
	DepthBuffer   uint32
	StencilBuffer uint32
	TexturePool   uint32

	// Size is the total device memory the map requires.
	Size uint32
}

// MemoryMap derives the device memory layout from the resolution and the
// texture pool dimensions.
func (c Config) MemoryMap() MemoryMap {
	pixels := uint32(c.ResolutionX * c.ResolutionY)
	align := func(v uint32) uint32 {
		p := uint32(c.TexturePageSize)
		return (v + p - 1) &^ (p - 1)
	}

	var m MemoryMap
	addr := uint32(0)
	for i := range m.ColorBuffer {
		m.ColorBuffer[i] = addr
		addr = align(addr + pixels*pixel.BytesPerPixel)
	}
	m.DepthBuffer = addr
	addr = align(addr + pixels*2)
	m.StencilBuffer = addr
	addr = align(addr + pixels)
	m.TexturePool = addr
	m.Size = addr + uint32(c.TexturePageSize*c.TexturePageCount)
	return m
}

// LargestTexturePages returns the pages taken by the largest accepted texture
// with a full mip chain.
func (c Config) LargestTexturePages() int {
	n := 0
	for i, size := 0, c.MaxTextureSize; i < MaxMipLevels && size > 0; i, size = i+1, size/2 {
		n += mathx.CeilDiv(size*size*pixel.BytesPerPixel, c.TexturePageSize)
	}
	return n
}

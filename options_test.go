package rix

import (
	"errors"
	"testing"
)

func TestNewConfig_Default(t *testing.T) {
	c, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if c != DefaultConfig() {
		t.Errorf("NewConfig() = %+v, want DefaultConfig()", c)
	}
	if c.DisplayListBuffers() != 2 {
		t.Errorf("DisplayListBuffers() = %d, want 2", c.DisplayListBuffers())
	}
}

func TestNewConfig_Options(t *testing.T) {
	c, err := NewConfig(
		WithResolution(320, 240),
		WithTiles(4),
		WithDisplayListSize(8192),
		WithTMUs(1),
		WithMaxTextureSize(128),
		WithTexturePages(1024, 64),
		WithEdgeMode(EdgeFloat),
		WithColorFormat(FormatRGBA4444),
		WithBilinearHalfTexel(true),
		WithTransformOffload(true),
	)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	want := Config{
		ResolutionX:       320,
		ResolutionY:       240,
		Tiles:             4,
		DisplayListSize:   8192,
		TMUCount:          1,
		MaxTextureSize:    128,
		TexturePageSize:   1024,
		TexturePageCount:  64,
		Edge:              EdgeFloat,
		ColorFormat:       FormatRGBA4444,
		BilinearHalfTexel: true,
		OffloadTransform:  true,
	}
	if c != want {
		t.Errorf("NewConfig() = %+v, want %+v", c, want)
	}
	if c.DisplayListBuffers() != 8 {
		t.Errorf("DisplayListBuffers() = %d, want 8", c.DisplayListBuffers())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero resolution", WithResolution(0, 480)},
		{"fixed resolution limit", WithResolution(4096, 480)},
		{"tiles", WithTiles(0)},
		{"too many tiles", WithTiles(17)},
		{"small display list", WithDisplayListSize(512)},
		{"unaligned display list", WithDisplayListSize(4098)},
		{"tmus", WithTMUs(3)},
		{"texture size", WithMaxTextureSize(100)},
		{"page size", WithTexturePages(100, 10)},
		{"page count", WithTexturePages(4096, 0)},
		{"page table overflow", func(c *Config) {
			c.MaxTextureSize = 2048
			c.TexturePageSize = 64
			c.TexturePageCount = 1 << 17
		}},
		{"edge mode", WithEdgeMode(EdgeMode(7))},
		{"color format", WithColorFormat(ColorFormat(9))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opt)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewConfig() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_FloatAllowsLargeResolution(t *testing.T) {
	if _, err := NewConfig(WithEdgeMode(EdgeFloat), WithResolution(4096, 2160)); err != nil {
		t.Errorf("NewConfig() error = %v", err)
	}
}

func TestConfig_LargestTexturePages(t *testing.T) {
	c := DefaultConfig()
	c.MaxTextureSize = 256
	c.TexturePageSize = 4096
	// 32 + 8 + 2 pages, then five levels of one page each.
	if got := c.LargestTexturePages(); got != 47 {
		t.Errorf("LargestTexturePages() = %d, want 47", got)
	}

	// 1024 texels with 64 byte pages is the largest size whose page table
	// still fits the count field.
	c.MaxTextureSize = 1024
	c.TexturePageSize = 64
	if got := c.LargestTexturePages(); got > MaxTexturePages {
		t.Errorf("LargestTexturePages() = %d, exceeds %d", got, MaxTexturePages)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_MemoryMap(t *testing.T) {
	c, err := NewConfig(WithResolution(100, 10), WithTexturePages(256, 4))
	if err != nil {
		t.Fatal(err)
	}
	m := c.MemoryMap()

	// 1000 pixels: 2000 color bytes, 2000 depth bytes, 1000 stencil bytes,
	// each rounded up to 256.
	want := MemoryMap{
		ColorBuffer:   [2]uint32{0, 2048},
		DepthBuffer:   4096,
		StencilBuffer: 6144,
		TexturePool:   7168,
		Size:          7168 + 1024,
	}
	if m != want {
		t.Errorf("MemoryMap() = %+v, want %+v", m, want)
	}
	for _, a := range []uint32{m.ColorBuffer[1], m.DepthBuffer, m.StencilBuffer, m.TexturePool} {
		if a%256 != 0 {
			t.Errorf("address %#x is not page aligned", a)
		}
	}
}

func TestEdgeMode_String(t *testing.T) {
	if EdgeFixed.String() != "fixed" || EdgeFloat.String() != "float" {
		t.Errorf("String() = %q, %q", EdgeFixed, EdgeFloat)
	}
	if EdgeMode(5).String() != "EdgeMode(5)" {
		t.Errorf("String() = %q", EdgeMode(5))
	}
}

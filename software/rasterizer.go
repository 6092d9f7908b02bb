// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements a device that executes display lists on the
// CPU with the numerics of the hardware pipeline. It is the reference the
// hardware path is checked against.
package software

import (
	"fmt"
	"image"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/transform"
)

// Stats counts the work a Rasterizer has done.
type Stats struct {
	DisplayLists uint64
	Triangles    uint64
	Clears       uint64
	Commits      uint64
	Loads        uint64
	Swaps        uint64
	VSyncs       uint64

	Fragment  fragment.Stats
	Transform transform.Stats
}

// Rasterizer is a Device that decodes display lists and runs them through
// the rasterizer and the fragment pipeline. Virtual commands run through an
// inline vertex pipeline, so it also consumes offloaded geometry.
//
// Display lists execute synchronously in StreamDisplayList. A Rasterizer is
// not safe for concurrent use.
type Rasterizer struct {
	cfg   rix.Config
	mem   []byte
	lists [][]byte

	pipe   *fragment.Pipeline
	walker *raster.Rasterizer
	vertex *transform.Pipeline
	setup  raster.SetupConfig

	display uint32
	stats   Stats
}

// New creates a software device with the memory map and display list
// buffers cfg asks for.
func New(cfg rix.Config) *Rasterizer {
	mm := cfg.MemoryMap()
	r := &Rasterizer{
		cfg:    cfg,
		mem:    make([]byte, mm.Size),
		walker: raster.NewRasterizer(cfg.ResolutionX, cfg.ResolutionY),
		setup: raster.SetupConfig{
			ResX:  cfg.ResolutionX,
			ResY:  cfg.ResolutionY,
			Float: cfg.Edge == rix.EdgeFloat,
			TMUs:  cfg.TMUCount,
		},
		display: mm.ColorBuffer[0],
	}
	for range cfg.DisplayListBuffers() {
		r.lists = append(r.lists, make([]byte, cfg.DisplayListSize))
	}
	r.pipe = fragment.NewPipeline(r.mem, cfg.ColorFormat, cfg.TexturePageSize, cfg.BilinearHalfTexel)
	r.vertex = transform.New(cfg.ResolutionX, cfg.ResolutionY, r.triangle)
	return r
}

// RequestDisplayListBuffer returns display list buffer index.
func (r *Rasterizer) RequestDisplayListBuffer(index int) []byte {
	if index < 0 || index >= len(r.lists) {
		return nil
	}
	return r.lists[index]
}

// DisplayListBufferCount returns the number of display list buffers.
func (r *Rasterizer) DisplayListBufferCount() int { return len(r.lists) }

// StreamDisplayList executes the first size bytes of buffer index.
func (r *Rasterizer) StreamDisplayList(index, size int) error {
	buf := r.RequestDisplayListBuffer(index)
	if buf == nil || size > len(buf) {
		return fmt.Errorf("software: display list %d of %d bytes: %w", index, size, rix.ErrTruncatedDisplayList)
	}
	dl := displaylist.New(buf)
	dl.Load(size)
	r.stats.DisplayLists++
	return command.Dispatch(dl, r)
}

// WriteToDeviceMemory copies data into device memory at addr.
func (r *Rasterizer) WriteToDeviceMemory(data []byte, addr uint32) error {
	if uint64(addr)+uint64(len(data)) > uint64(len(r.mem)) {
		return fmt.Errorf("software: write of %d bytes at %#x outside %d bytes of memory", len(data), addr, len(r.mem))
	}
	copy(r.mem[addr:], data)
	return nil
}

// ReadFromDeviceMemory copies device memory at addr into data.
func (r *Rasterizer) ReadFromDeviceMemory(data []byte, addr uint32) error {
	if uint64(addr)+uint64(len(data)) > uint64(len(r.mem)) {
		return fmt.Errorf("software: read of %d bytes at %#x outside %d bytes of memory", len(data), addr, len(r.mem))
	}
	copy(data, r.mem[addr:])
	return nil
}

// BlockUntilDeviceIsIdle returns immediately; lists execute synchronously.
func (r *Rasterizer) BlockUntilDeviceIsIdle() error { return nil }

// Stats returns the counters.
func (r *Rasterizer) Stats() Stats {
	s := r.stats
	s.Fragment = r.pipe.Stats()
	s.Transform = r.vertex.Stats()
	return s
}

// Memory returns the device memory.
func (r *Rasterizer) Memory() []byte { return r.mem }

// DisplayAddress returns the color buffer presented by the last swap.
func (r *Rasterizer) DisplayAddress() uint32 { return r.display }

// Snapshot decodes the presented color buffer.
func (r *Rasterizer) Snapshot() *image.NRGBA {
	return r.ColorBuffer(r.display)
}

// ColorBuffer decodes a full screen color buffer at addr.
func (r *Rasterizer) ColorBuffer(addr uint32) *image.NRGBA {
	w, h := r.cfg.ResolutionX, r.cfg.ResolutionY
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		a := int(addr) + i*pixel.BytesPerPixel
		if a+pixel.BytesPerPixel > len(r.mem) {
			break
		}
		c := pixel.Unpack(r.cfg.ColorFormat, uint16(r.mem[a])|uint16(r.mem[a+1])<<8)
		img.Pix[4*i], img.Pix[4*i+1], img.Pix[4*i+2], img.Pix[4*i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// HandleWriteRegister updates the shadow register and the pipeline state
// that depends on it.
func (r *Rasterizer) HandleWriteRegister(c command.WriteRegister) error {
	reg, ok := c.Register()
	if !ok {
		rix.Logger().Warn("software: write to unassigned register", "addr", c.Addr)
		return nil
	}
	r.pipe.Apply(reg)
	return nil
}

// HandleFramebuffer clears, commits and swaps the framebuffer.
func (r *Rasterizer) HandleFramebuffer(c command.Framebuffer) error {
	f := c.Flags
	if f.Has(command.FramebufferLoad) {
		// Tile buffers live in device memory; there is nothing to load.
		r.stats.Loads++
	}
	if f.Has(command.FramebufferMemset) {
		r.pipe.Clear(f.Has(command.FramebufferColor), f.Has(command.FramebufferDepth),
			f.Has(command.FramebufferStencil), int(c.Size))
		r.stats.Clears++
	}
	if f.Has(command.FramebufferCommit) {
		r.stats.Commits++
	}
	if f.Has(command.FramebufferSwap) {
		if f.Has(command.FramebufferVSync) {
			r.stats.VSyncs++
		}
		r.display = c.DisplayAddress
		r.stats.Swaps++
	}
	return nil
}

// HandleTriangleStream rasterizes one triangle descriptor.
func (r *Rasterizer) HandleTriangleStream(c *command.TriangleStream) error {
	r.draw(&c.Desc)
	return nil
}

// HandleFogLUTStream loads the fog table.
func (r *Rasterizer) HandleFogLUTStream(c *command.FogLUTStream) error {
	r.pipe.SetFogLUT(&c.LUT)
	return nil
}

// HandleTextureStream binds a page table to a TMU.
func (r *Rasterizer) HandleTextureStream(c *command.TextureStream) error {
	if c.TMU >= r.cfg.TMUCount {
		rix.Logger().Warn("software: texture stream for a disabled tmu", "tmu", c.TMU)
		return nil
	}
	r.pipe.SetTexturePages(c.TMU, c.Pages)
	return nil
}

// HandleDrawNewElement starts or ends an element of the inline vertex
// pipeline.
func (r *Rasterizer) HandleDrawNewElement(c command.DrawNewElement) error {
	r.vertex.DrawNewElement(c.Mode)
	return nil
}

// HandleSetElementGlobalContext replaces the global vertex context.
func (r *Rasterizer) HandleSetElementGlobalContext(c *command.SetElementGlobalContext) error {
	r.vertex.SetGlobalContext(&c.Context)
	return nil
}

// HandleSetElementLocalContext replaces the local vertex context.
func (r *Rasterizer) HandleSetElementLocalContext(c *command.SetElementLocalContext) error {
	r.vertex.SetLocalContext(&c.Context)
	return nil
}

// HandleSetVertexContext replaces the material.
func (r *Rasterizer) HandleSetVertexContext(c *command.SetVertexContext) error {
	r.vertex.SetVertexContext(&c.Context)
	return nil
}

// HandlePushVertex runs a vertex through the inline vertex pipeline.
func (r *Rasterizer) HandlePushVertex(c *command.PushVertex) error {
	r.vertex.PushVertex(&c.Vertex)
	return nil
}

// triangle is the sink of the inline vertex pipeline.
func (r *Rasterizer) triangle(v0, v1, v2 *raster.ScreenVertex) bool {
	if d, ok := raster.Setup(v0, v1, v2, r.setup); ok {
		r.draw(&d)
	}
	return true
}

func (r *Rasterizer) draw(d *raster.TriangleStreamDesc) {
	r.stats.Triangles++
	r.pipe.ConfigureRasterizer(r.walker)
	r.walker.Walk(d, func(f raster.Fragment) {
		a := d.Interpolate(f.X, f.Y)
		r.pipe.Process(&f, &a)
	})
}

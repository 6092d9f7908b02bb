// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/device"
	"github.com/gogpu/rix/dispatch"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/internal/parallel"
	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
	"github.com/gogpu/rix/texture"
	"github.com/gogpu/rix/transform"
)

// ErrClosed is returned by every operation on a closed Renderer.
var ErrClosed = errors.New("render: renderer closed")

// Stats counts the work of a Renderer.
type Stats struct {
	Flushes   uint64
	Retries   uint64 // flushes forced by a full display list
	Swaps     uint64
	Triangles uint64
	Vertices  uint64
}

// Renderer records drawing into display lists for a device.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	cfg     rix.Config
	mm      rix.MemoryMap
	dev     device.Device
	disp    *dispatch.Dispatcher
	offload bool

	// vertex is nil in offload mode.
	vertex *transform.Pipeline
	setup  raster.SetupConfig

	textures *texture.Manager
	bound    [rix.MaxTMUs]*texture.Binding
	boundID  [rix.MaxTMUs]texture.ID
	fog      *fragment.FogLUT

	// draw is the index of the color buffer being drawn.
	draw    int
	sinkErr error
	closed  bool
	stats   Stats
}

// New creates a Renderer drawing through dev. The device must provide a
// front and a back display list per tile, 2 in offload mode.
func New(dev device.Device, cfg rix.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tiles := cfg
	if cfg.OffloadTransform {
		// The device tiles on its own.
		tiles.Tiles = 1
	}
	if n := dev.DisplayListBufferCount(); n < tiles.DisplayListBuffers() {
		return nil, fmt.Errorf("%w: need %d display list buffers, device has %d",
			rix.ErrInvalidConfig, tiles.DisplayListBuffers(), n)
	}

	r := &Renderer{
		cfg:     cfg,
		mm:      cfg.MemoryMap(),
		dev:     dev,
		offload: cfg.OffloadTransform,
		setup: raster.SetupConfig{
			ResX:  cfg.ResolutionX,
			ResY:  cfg.ResolutionY,
			Float: cfg.Edge == rix.EdgeFloat,
			TMUs:  cfg.TMUCount,
		},
		draw: 1,
	}
	r.textures = texture.NewManager(cfg, r.mm.TexturePool)
	if !r.offload {
		r.vertex = transform.New(cfg.ResolutionX, cfg.ResolutionY, r.triangle)
	}

	var slots [2]dispatch.Lists
	for s := range slots {
		for i := range tiles.Tiles {
			buf := dev.RequestDisplayListBuffer(s*tiles.Tiles + i)
			if len(buf) < 4 {
				return nil, fmt.Errorf("%w: display list buffer %d", rix.ErrInvalidConfig, s*tiles.Tiles+i)
			}
			slots[s] = append(slots[s], displaylist.New(buf))
		}
	}
	disp, err := dispatch.New(tiles, slots[1], slots[0], r.arm)
	if err != nil {
		return nil, err
	}
	r.disp = disp

	for _, reg := range []register.Register{
		register.RenderResolution{X: uint16(cfg.ResolutionX), Y: uint16(cfg.ResolutionY)},
		register.ColorBufferAddress{Addr: r.mm.ColorBuffer[r.draw]},
		register.DepthBufferAddress{Addr: r.mm.DepthBuffer},
		register.StencilBufferAddress{Addr: r.mm.StencilBuffer},
	} {
		if err := r.WriteRegister(reg); err != nil {
			return nil, err
		}
	}
	rix.Logger().Info("render: renderer created",
		"resolution", fmt.Sprintf("%dx%d", cfg.ResolutionX, cfg.ResolutionY),
		"tiles", tiles.Tiles, "offload", r.offload)
	return r, nil
}

// Config returns the configuration.
func (r *Renderer) Config() rix.Config { return r.cfg }

// Stats returns the counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Textures returns the texture manager.
func (r *Renderer) Textures() *texture.Manager { return r.textures }

// arm replays the bound textures and the fog table into a re-armed tile
// list. The registers are replayed by the dispatcher.
func (r *Renderer) arm(d *dispatch.Dispatcher, tile parallel.Tile) bool {
	dl := d.List(tile.Index)
	for tmu, b := range r.bound {
		if b != nil && !command.Append(dl, &command.TextureStream{TMU: tmu, Pages: b.Pages}) {
			return false
		}
	}
	if r.fog != nil && !command.Append(dl, &command.FogLUTStream{LUT: *r.fog}) {
		return false
	}
	return true
}

// add runs an append and, when the lists are full, flushes and retries
// once.
func (r *Renderer) add(fn func() bool) error {
	if r.closed {
		return ErrClosed
	}
	if fn() {
		return nil
	}
	r.stats.Retries++
	if err := r.flush(); err != nil {
		return err
	}
	if !fn() {
		return rix.ErrDisplayListFull
	}
	return nil
}

// Flush uploads pending textures and hands the back lists to the device.
func (r *Renderer) Flush() error {
	if r.closed {
		return ErrClosed
	}
	return r.flush()
}

func (r *Renderer) flush() error {
	// The lists about to be re-armed were streamed by the previous flush.
	if err := r.dev.BlockUntilDeviceIsIdle(); err != nil {
		return fmt.Errorf("render: wait for device: %w", err)
	}
	if err := r.textures.Upload(r.dev); err != nil {
		return fmt.Errorf("render: upload textures: %w", err)
	}
	slot := r.disp.BackIndex()
	for i := range r.disp.Tiles() {
		if err := r.dev.StreamDisplayList(r.disp.BufferIndex(slot, i), r.disp.List(i).Size()); err != nil {
			return fmt.Errorf("render: stream tile %d: %w", i, err)
		}
	}
	r.stats.Flushes++
	rix.Logger().Debug("render: flushed display lists", "slot", slot)
	if !r.disp.Swap() {
		return fmt.Errorf("render: rearm display lists: %w", rix.ErrDisplayListFull)
	}
	return nil
}

// SwapDisplayList ends the frame: it presents the color buffer drawn so
// far, flushes, and directs drawing into the other color buffer.
func (r *Renderer) SwapDisplayList() error {
	if err := r.EndElement(); err != nil {
		return err
	}
	swap := dispatch.FramebufferTiles(command.Framebuffer{
		Flags:          command.FramebufferCommit | command.FramebufferSwap | command.FramebufferVSync,
		DisplayAddress: r.mm.ColorBuffer[r.draw],
	})
	if err := r.add(func() bool { return r.disp.AddTileCommand(swap) }); err != nil {
		return err
	}
	if err := r.flush(); err != nil {
		return err
	}
	r.stats.Swaps++
	r.draw ^= 1
	return r.WriteRegister(register.ColorBufferAddress{Addr: r.mm.ColorBuffer[r.draw]})
}

// Close flushes outstanding work and waits for the device. Further calls
// fail with ErrClosed.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	var err error
	if !r.disp.Empty() || r.textures.Pending() {
		err = r.Flush()
	}
	if werr := r.dev.BlockUntilDeviceIsIdle(); err == nil {
		err = werr
	}
	r.closed = true
	return err
}

// Snapshot waits for the device and reads back the color buffer presented
// by the last SwapDisplayList.
func (r *Renderer) Snapshot() (*image.NRGBA, error) {
	if err := r.dev.BlockUntilDeviceIsIdle(); err != nil {
		return nil, err
	}
	w, h := r.cfg.ResolutionX, r.cfg.ResolutionY
	buf := make([]byte, w*h*pixel.BytesPerPixel)
	if err := r.dev.ReadFromDeviceMemory(buf, r.mm.ColorBuffer[r.draw^1]); err != nil {
		return nil, fmt.Errorf("render: read color buffer: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		c := pixel.Unpack(r.cfg.ColorFormat, uint16(buf[2*i])|uint16(buf[2*i+1])<<8)
		img.Pix[4*i], img.Pix[4*i+1], img.Pix[4*i+2], img.Pix[4*i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

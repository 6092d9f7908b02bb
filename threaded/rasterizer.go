// Package threaded implements a device decorator that moves vertex
// transform and tile distribution off the caller's goroutine.
//
// The producer fills one of two input display lists with virtual commands
// and hands it over with StreamDisplayList. A worker decodes the list, runs
// the vertices through the transform pipeline and distributes the resulting
// triangles over the per-tile display lists of a dispatch.Dispatcher. When
// the tile lists are full, or the input list is exhausted, an uploader
// streams them to the wrapped device while the worker continues with the
// other set.
//
// Barriers:
//
//   - StreamDisplayList waits for the previous worker job.
//   - An upload waits for the previous upload and for the device to go idle.
//   - Memory transfers wait for the worker, the uploader and the device.
package threaded

import (
	"fmt"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/device"
	"github.com/gogpu/rix/dispatch"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/internal/parallel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/transform"
)

// Stats counts the work of the worker. Read it only while the device is
// idle.
type Stats struct {
	Lists     uint64
	Submits   uint64
	Triangles uint64
	Flushes   uint64 // submits forced by a full tile list
}

// Rasterizer is a Device that consumes virtual commands and feeds tiled
// display lists to an inner device.
//
// The inner device must provide 2*cfg.Tiles display list buffers. Buffers
// [0, Tiles) form the first slot and [Tiles, 2*Tiles) the second.
type Rasterizer struct {
	cfg   rix.Config
	inner device.Device
	input [2][]byte

	disp   *dispatch.Dispatcher
	vertex *transform.Pipeline
	setup  raster.SetupConfig

	worker   parallel.Job
	uploader parallel.Job

	// sinkErr carries a failed flush out of the transform sink.
	sinkErr error
	stats   Stats
}

// New wraps inner.
func New(inner device.Device, cfg rix.Config) (*Rasterizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if n := inner.DisplayListBufferCount(); n < cfg.DisplayListBuffers() {
		return nil, fmt.Errorf("%w: %d tiles need %d device display lists, device has %d",
			rix.ErrInvalidConfig, cfg.Tiles, cfg.DisplayListBuffers(), n)
	}

	slots := [2]dispatch.Lists{}
	for s := range slots {
		for i := range cfg.Tiles {
			buf := inner.RequestDisplayListBuffer(s*cfg.Tiles + i)
			slots[s] = append(slots[s], displaylist.New(buf))
		}
	}
	disp, err := dispatch.New(cfg, slots[1], slots[0], nil)
	if err != nil {
		return nil, err
	}

	r := &Rasterizer{
		cfg:   cfg,
		inner: inner,
		disp:  disp,
		setup: raster.SetupConfig{
			ResX:  cfg.ResolutionX,
			ResY:  cfg.ResolutionY,
			Float: cfg.Edge == rix.EdgeFloat,
			TMUs:  cfg.TMUCount,
		},
	}
	for i := range r.input {
		r.input[i] = make([]byte, cfg.DisplayListSize)
	}
	r.vertex = transform.New(cfg.ResolutionX, cfg.ResolutionY, r.triangle)
	return r, nil
}

// RequestDisplayListBuffer returns input buffer index.
func (r *Rasterizer) RequestDisplayListBuffer(index int) []byte {
	if index < 0 || index >= len(r.input) {
		return nil
	}
	return r.input[index]
}

// DisplayListBufferCount returns 2.
func (r *Rasterizer) DisplayListBufferCount() int { return len(r.input) }

// StreamDisplayList waits for the previous worker job and starts decoding
// size bytes of input buffer index. Errors of the job surface in the next
// call that waits for it.
func (r *Rasterizer) StreamDisplayList(index, size int) error {
	buf := r.RequestDisplayListBuffer(index)
	if buf == nil || size > len(buf) {
		return fmt.Errorf("threaded: display list %d of %d bytes: %w", index, size, rix.ErrTruncatedDisplayList)
	}
	return r.worker.Start(func() error {
		dl := displaylist.New(buf)
		dl.Load(size)
		r.stats.Lists++
		if err := command.Dispatch(dl, &decoder{r: r}); err != nil {
			rix.Logger().Error("threaded: display list decode aborted", "index", index, "err", err)
			return err
		}
		if r.disp.Empty() {
			return nil
		}
		return r.submit()
	})
}

// WriteToDeviceMemory waits for all outstanding work and writes data.
func (r *Rasterizer) WriteToDeviceMemory(data []byte, addr uint32) error {
	if err := r.BlockUntilDeviceIsIdle(); err != nil {
		return err
	}
	return r.inner.WriteToDeviceMemory(data, addr)
}

// ReadFromDeviceMemory waits for all outstanding work and reads data.
func (r *Rasterizer) ReadFromDeviceMemory(data []byte, addr uint32) error {
	if err := r.BlockUntilDeviceIsIdle(); err != nil {
		return err
	}
	return r.inner.ReadFromDeviceMemory(data, addr)
}

// BlockUntilDeviceIsIdle waits for the worker, then the uploader, then the
// inner device.
func (r *Rasterizer) BlockUntilDeviceIsIdle() error {
	if err := r.worker.Wait(); err != nil {
		return err
	}
	if err := r.uploader.Wait(); err != nil {
		return err
	}
	return r.inner.BlockUntilDeviceIsIdle()
}

// Stats returns the counters.
func (r *Rasterizer) Stats() Stats { return r.stats }

// submit hands the back tile lists to the uploader and swaps. The swapped
// in lists were streamed by the previous upload, which has finished once
// the device is idle.
func (r *Rasterizer) submit() error {
	if err := r.uploader.Wait(); err != nil {
		return err
	}
	if err := r.inner.BlockUntilDeviceIsIdle(); err != nil {
		return err
	}

	slot := r.disp.BackIndex()
	sizes := make([]int, len(r.disp.Tiles()))
	for i := range sizes {
		sizes[i] = r.disp.List(i).Size()
	}
	err := r.uploader.Start(func() error {
		for i, n := range sizes {
			if err := r.inner.StreamDisplayList(r.disp.BufferIndex(slot, i), n); err != nil {
				return fmt.Errorf("threaded: upload tile %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.stats.Submits++
	if !r.disp.Swap() {
		return fmt.Errorf("threaded: rearm tile lists: %w", rix.ErrDisplayListFull)
	}
	return nil
}

// add runs an append and, if the lists are full, submits and retries once.
func (r *Rasterizer) add(fn func() bool) error {
	if fn() {
		return nil
	}
	r.stats.Flushes++
	if err := r.submit(); err != nil {
		return err
	}
	if !fn() {
		return rix.ErrDisplayListFull
	}
	return nil
}

// triangle is the sink of the transform pipeline.
func (r *Rasterizer) triangle(v0, v1, v2 *raster.ScreenVertex) bool {
	d, ok := raster.Setup(v0, v1, v2, r.setup)
	if !ok {
		return true
	}
	r.stats.Triangles++
	if err := r.add(func() bool { return r.disp.AddTriangle(&d) }); err != nil {
		r.sinkErr = err
		return false
	}
	return true
}

// vertexErr reports a failure of the transform sink.
func (r *Rasterizer) vertexErr(ok bool) error {
	if ok {
		return nil
	}
	err := r.sinkErr
	r.sinkErr = nil
	if err == nil {
		err = rix.ErrDisplayListFull
	}
	return err
}

// Package rix is a fixed-function 3D rasterization pipeline.
//
// # Overview
//
// rix compiles draw calls into a compact binary display list, transforms and
// clips geometry on the host, and rasterizes the result through a fixed
// fragment pipeline (texturing, fog, blending, stencil and depth tests,
// logic ops). The display list is either streamed to an external
// rasterization device over a flow-controlled bus, or interpreted by the
// software rasterizer, which reproduces the numeric behavior of the hardware
// path and serves as its golden model.
//
// # Architecture
//
// The module is organized leaves first:
//   - displaylist: byte arena with read and write cursors, double buffer
//   - command: self-framing wire format and the shared decode loop
//   - register: bit-packed shadow registers
//   - raster: triangle setup, scanline walk, attribute interpolation
//   - transform: lighting, texgen, primitive assembly, clipping, culling
//   - fragment: the per-fragment pipeline
//   - texture: mip chains and the page-based texture memory manager
//   - dispatch: per-tile display list fan-out
//   - device, software, threaded: device implementations
//   - render: the Renderer that ties everything to a Device
//
// # Quick Start
//
//	cfg, _ := rix.NewConfig(rix.WithResolution(320, 240))
//	dev := software.New(cfg)
//	r, _ := render.New(dev, cfg)
//
//	r.SetClearColor(color.RGBA{A: 255})
//	r.Clear(true, true, false)
//	r.DrawNewElement(transform.Triangles)
//	r.PushVertex(&v0)
//	r.PushVertex(&v1)
//	r.PushVertex(&v2)
//	r.EndElement()
//	r.SwapDisplayList()
//
//	img := dev.Snapshot()
//
// # Configuration
//
// Config is resolved once by NewConfig from functional options and passed to
// every component. Edge function representation (fixed or float), the tile
// count and the display list size are deployment-time choices: a producer and
// a consumer of the same display list must use the same Config.
//
// # Logging
//
// rix is silent by default. Use SetLogger to route its structured log
// records (log/slog) to a handler.
package rix

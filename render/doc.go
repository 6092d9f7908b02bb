// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the front end of the pipeline: it turns state changes,
// vertices and texture uploads into display lists and feeds them to a
// device.
//
// # Modes
//
// By default a Renderer runs the vertex pipeline on the caller's goroutine
// and distributes the finished triangles over cfg.Tiles tile lists. With
// Config.OffloadTransform set it instead records the vertices as virtual
// commands into a single list, for devices that transform on their own
// (the software and threaded devices).
//
// # Buffers
//
// Display lists are double buffered. While the device executes the front
// lists the Renderer fills the back lists. When a list runs full the
// Renderer flushes and retries; a command never spans two lists. Color
// buffers are double buffered too: SwapDisplayList presents the buffer that
// was drawn and directs drawing into the other one.
//
// # Usage
//
//	dev, _ := device.Open("software", cfg)
//	r, _ := render.New(dev, cfg)
//	defer r.Close()
//
//	r.SetClearColor(color.RGBA{A: 255})
//	r.Clear(true, true, false)
//	r.DrawNewElement(transform.Triangles)
//	r.PushVertex(&v0)
//	r.PushVertex(&v1)
//	r.PushVertex(&v2)
//	r.EndElement()
//	r.SwapDisplayList()
//	img, _ := r.Snapshot()
package render

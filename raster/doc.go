// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster turns screen space triangles into fragments.
//
// Setup converts three window space vertices into a TriangleStreamDesc: a
// bounding box, three edge functions and the plane equations of every
// attribute. The descriptor is what a triangle stream command carries over
// the wire. Rasterizer walks a descriptor row by row inside the bounding
// box and emits the pixels whose centers are covered.
//
// Edge functions are either exact fixed-point integers with SubpixelBits
// fractional bits, or float32. In fixed-point mode, a descriptor stepped
// to a later row with IncrementToRow walks exactly the pixels the full
// walk would have produced for those rows; tiled dispatch relies on this.
package raster

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"github.com/gogpu/rix"
)

// SubpixelBits is the number of fractional bits of fixed-point vertex
// coordinates.
const SubpixelBits = 4

const (
	subpixelScale = 1 << SubpixelBits
	subpixelHalf  = subpixelScale / 2
)

// ScreenVertex is a vertex after perspective divide and viewport transform.
// X and Y are window coordinates with the origin at the top left corner of
// the framebuffer; pixel (px, py) has its center at (px+0.5, py+0.5).
type ScreenVertex struct {
	X, Y float32

	// Z is the window depth in [0, 1].
	Z float32

	// InvW is 1/w of the clip space position.
	InvW float32

	Color [4]float32

	// Tex holds s, t, r, q per TMU, before the perspective divide.
	Tex [MaxTMUs][4]float32
}

// SetupConfig parameterizes triangle setup.
type SetupConfig struct {
	// ResX and ResY bound the bounding box.
	ResX, ResY int

	// Float selects floating point edge functions.
	Float bool

	// TMUs is the number of texture coordinate sets to set up.
	TMUs int
}

// Setup converts a screen space triangle into a descriptor. It returns false
// for degenerate triangles, triangles without any pixel center inside the
// screen, and fixed-point triangles whose edge functions would overflow.
//
// Winding is normalized so all edge functions are >= 0 inside the triangle;
// culling happens before setup.
func Setup(v0, v1, v2 *ScreenVertex, cfg SetupConfig) (TriangleStreamDesc, bool) {
	v := [3]*ScreenVertex{v0, v1, v2}
	if cfg.Float {
		return setupFloat(v, cfg)
	}
	return setupFixed(v, cfg)
}

// edgeAt evaluates the edge function from a to b at p:
// E(p) = (bx-ax)*(py-ay) - (by-ay)*(px-ax).
func edgeAt[T int64 | float64](ax, ay, bx, by, px, py T) T {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func setupFixed(v [3]*ScreenVertex, cfg SetupConfig) (TriangleStreamDesc, bool) {
	var x, y [3]int64
	for i, p := range v {
		if !inRange(p.X) || !inRange(p.Y) {
			rix.Logger().Warn("raster: vertex outside the fixed-point range, triangle dropped",
				"x", p.X, "y", p.Y)
			return TriangleStreamDesc{}, false
		}
		x[i] = int64(math.Round(float64(p.X) * subpixelScale))
		y[i] = int64(math.Round(float64(p.Y) * subpixelScale))
	}
	area := edgeAt(x[0], y[0], x[1], y[1], x[2], y[2])
	if area == 0 {
		return TriangleStreamDesc{}, false
	}
	if area < 0 {
		v[1], v[2] = v[2], v[1]
		x[1], x[2] = x[2], x[1]
		y[1], y[2] = y[2], y[1]
	}

	bb, ok := clipBBox(
		ceilDiv(min(x[0], x[1], x[2])-subpixelHalf, subpixelScale),
		ceilDiv(min(y[0], y[1], y[2])-subpixelHalf, subpixelScale),
		floorDiv(max(x[0], x[1], x[2])-subpixelHalf, subpixelScale)+1,
		floorDiv(max(y[0], y[1], y[2])-subpixelHalf, subpixelScale)+1,
		cfg,
	)
	if !ok {
		return TriangleStreamDesc{}, false
	}

	d := TriangleStreamDesc{BBox: bb, OriginX: bb.StartX, OriginY: bb.StartY}
	px := int64(bb.StartX)*subpixelScale + subpixelHalf
	py := int64(bb.StartY)*subpixelScale + subpixelHalf
	nx := int64(bb.EndX - bb.StartX - 1)
	ny := int64(bb.EndY - bb.StartY - 1)
	for i := range 3 {
		a, b := (i+1)%3, (i+2)%3
		init := edgeAt(x[a], y[a], x[b], y[b], px, py)
		xinc := -(y[b] - y[a]) * subpixelScale
		yinc := (x[b] - x[a]) * subpixelScale

		// The edge function is linear, so its extremes over the bounding
		// box are at the corners.
		for _, c := range [4]int64{init, init + xinc*nx, init + yinc*ny, init + xinc*nx + yinc*ny} {
			if c < math.MinInt32 || c > math.MaxInt32 {
				rix.Logger().Warn("raster: fixed-point edge function overflows, triangle dropped",
					"edge", i, "bbox", bb)
				return TriangleStreamDesc{}, false
			}
		}
		d.Edges[i] = Edge{Init: int32(init), XInc: int32(xinc), YInc: int32(yinc)}
	}

	var fx, fy [3]float64
	for i := range 3 {
		fx[i] = float64(x[i]) / subpixelScale
		fy[i] = float64(y[i]) / subpixelScale
	}
	setupAttributes(&d, v, fx, fy, cfg.TMUs)
	return d, true
}

func setupFloat(v [3]*ScreenVertex, cfg SetupConfig) (TriangleStreamDesc, bool) {
	var x, y [3]float64
	for i, p := range v {
		x[i], y[i] = float64(p.X), float64(p.Y)
	}
	area := edgeAt(x[0], y[0], x[1], y[1], x[2], y[2])
	if area == 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return TriangleStreamDesc{}, false
	}
	if area < 0 {
		v[1], v[2] = v[2], v[1]
		x[1], x[2] = x[2], x[1]
		y[1], y[2] = y[2], y[1]
	}

	bb, ok := clipBBox(
		int64(math.Ceil(min(x[0], x[1], x[2])-0.5)),
		int64(math.Ceil(min(y[0], y[1], y[2])-0.5)),
		int64(math.Floor(max(x[0], x[1], x[2])-0.5))+1,
		int64(math.Floor(max(y[0], y[1], y[2])-0.5))+1,
		cfg,
	)
	if !ok {
		return TriangleStreamDesc{}, false
	}

	d := TriangleStreamDesc{BBox: bb, OriginX: bb.StartX, OriginY: bb.StartY, Float: true}
	px := float64(bb.StartX) + 0.5
	py := float64(bb.StartY) + 0.5
	for i := range 3 {
		a, b := (i+1)%3, (i+2)%3
		d.FloatEdges[i] = FloatEdge{
			Init: float32(edgeAt(x[a], y[a], x[b], y[b], px, py)),
			XInc: float32(-(y[b] - y[a])),
			YInc: float32(x[b] - x[a]),
		}
	}
	setupAttributes(&d, v, x, y, cfg.TMUs)
	return d, true
}

// clipBBox clamps a pixel bounding box to the screen.
func clipBBox(sx, sy, ex, ey int64, cfg SetupConfig) (Rect, bool) {
	sx = max(sx, 0)
	sy = max(sy, 0)
	ex = min(ex, int64(cfg.ResX))
	ey = min(ey, int64(cfg.ResY))
	if sx >= ex || sy >= ey {
		return Rect{}, false
	}
	return Rect{StartX: uint16(sx), StartY: uint16(sy), EndX: uint16(ex), EndY: uint16(ey)}, true
}

// setupAttributes computes the attribute planes relative to the attribute
// origin pixel center. Colors interpolate linearly in screen space; texture
// coordinates are premultiplied by 1/w for perspective correction.
func setupAttributes(d *TriangleStreamDesc, v [3]*ScreenVertex, x, y [3]float64, tmus int) {
	ox := float64(d.OriginX) + 0.5
	oy := float64(d.OriginY) + 0.5
	area := edgeAt(x[0], y[0], x[1], y[1], x[2], y[2])

	plane := func(a [3]float64) Plane {
		dx1, dy1 := x[1]-x[0], y[1]-y[0]
		dx2, dy2 := x[2]-x[0], y[2]-y[0]
		da1, da2 := a[1]-a[0], a[2]-a[0]
		xinc := (da1*dy2 - da2*dy1) / area
		yinc := (da2*dx1 - da1*dx2) / area
		return Plane{
			Init: float32(a[0] + xinc*(ox-x[0]) + yinc*(oy-y[0])),
			XInc: float32(xinc),
			YInc: float32(yinc),
		}
	}
	attr := func(f func(*ScreenVertex) float32) [3]float64 {
		return [3]float64{float64(f(v[0])), float64(f(v[1])), float64(f(v[2]))}
	}

	d.Depth = plane(attr(func(p *ScreenVertex) float32 { return p.Z }))
	d.InvW = plane(attr(func(p *ScreenVertex) float32 { return p.InvW }))
	for c := range d.Color {
		d.Color[c] = plane(attr(func(p *ScreenVertex) float32 { return p.Color[c] }))
	}

	d.TMUs = min(max(tmus, 0), MaxTMUs)
	for t := range d.TMUs {
		d.Tex[t] = TexPlanes{
			S: plane(attr(func(p *ScreenVertex) float32 { return p.Tex[t][0] * p.InvW })),
			T: plane(attr(func(p *ScreenVertex) float32 { return p.Tex[t][1] * p.InvW })),
			Q: plane(attr(func(p *ScreenVertex) float32 { return p.Tex[t][3] * p.InvW })),
		}
	}
}

// inRange rejects coordinates the fixed-point conversion cannot represent.
func inRange(f float32) bool {
	return f > -1<<20 && f < 1<<20
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

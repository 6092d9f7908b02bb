// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Fragment is a pixel hit by the scanline walk.
type Fragment struct {
	// Index is the linear framebuffer index relative to the rasterizer's
	// y offset: (Y - yOffset) * resX + X.
	Index int

	// BBX and BBY are relative to the bounding box start.
	BBX, BBY int

	// X and Y are screen coordinates.
	X, Y int
}

type walkState uint8

const (
	stateInit walkState = iota
	stateCheckDirection
	stateSearchEdge
	stateWalkOut
	stateWalking
)

// Rasterizer walks triangle descriptors and emits the pixels they cover.
//
// Instead of testing every pixel of the bounding box it moves left and right
// along the current row until it finds the triangle, walks across it, flips
// direction and drops to the next row. A pixel is inside when all three edge
// functions are >= 0, so pixels exactly on an edge are inside.
type Rasterizer struct {
	resX, resY int

	yOffset int
	lines   int

	scissor                      bool
	scissorStartX, scissorStartY int
	scissorEndX, scissorEndY     int
}

// NewRasterizer creates a rasterizer for a resX x resY screen that walks all
// lines.
func NewRasterizer(resX, resY int) *Rasterizer {
	return &Rasterizer{resX: resX, resY: resY, lines: resY}
}

// SetResolution changes the screen size. The walk window is reset to the
// whole screen.
func (r *Rasterizer) SetResolution(resX, resY int) {
	r.resX, r.resY = resX, resY
	r.yOffset, r.lines = 0, resY
}

// SetYOffset confines the walk to lines [start, start+lines). Tiled
// rasterizers use it to walk only the lines of their tile.
func (r *Rasterizer) SetYOffset(start, lines int) {
	r.yOffset, r.lines = start, lines
}

// YOffset returns the first line of the walk window.
func (r *Rasterizer) YOffset() int { return r.yOffset }

// SetScissor enables or disables the scissor box [sx, ex) x [sy, ey) in
// screen coordinates.
func (r *Rasterizer) SetScissor(enable bool, sx, sy, ex, ey int) {
	r.scissor = enable
	r.scissorStartX, r.scissorStartY = sx, sy
	r.scissorEndX, r.scissorEndY = ex, ey
}

// window returns the part of the bounding box the walk may visit.
func (r *Rasterizer) window(d *TriangleStreamDesc) (x0, y0, x1, y1 int) {
	x0, y0 = int(d.BBox.StartX), max(int(d.BBox.StartY), r.yOffset)
	x1 = min(int(d.BBox.EndX), r.resX)
	y1 = min(int(d.BBox.EndY), r.yOffset+r.lines, r.resY)
	if r.scissor {
		x0, y0 = max(x0, r.scissorStartX), max(y0, r.scissorStartY)
		x1, y1 = min(x1, r.scissorEndX), min(y1, r.scissorEndY)
	}
	return x0, y0, x1, y1
}

// Inside reports whether pixel (x, y) is covered by the triangle.
func (d *TriangleStreamDesc) Inside(x, y int) bool {
	dx, dy := x-int(d.BBox.StartX), y-int(d.BBox.StartY)
	if d.Float {
		fx, fy := float32(dx), float32(dy)
		for _, e := range d.FloatEdges {
			if e.Init+float32(e.XInc*fx)+float32(e.YInc*fy) < 0 {
				return false
			}
		}
		return true
	}
	for _, e := range d.Edges {
		if int64(e.Init)+int64(e.XInc)*int64(dx)+int64(e.YInc)*int64(dy) < 0 {
			return false
		}
	}
	return true
}

// Walk calls emit for every covered pixel inside the walk window, exactly
// once each. It returns the number of fragments emitted.
func (r *Rasterizer) Walk(d *TriangleStreamDesc, emit func(Fragment)) int {
	x0, y0, x1, y1 := r.window(d)
	if x0 >= x1 || y0 >= y1 {
		return 0
	}

	inside := func(x, y int) bool {
		return x >= x0 && x < x1 && d.Inside(x, y)
	}

	var (
		state = stateInit
		x, y  int
		dir   int
		found int
		n     int
	)
	for {
		switch state {
		case stateInit:
			x, y, dir = x0, y0, 1
			state = stateCheckDirection

		case stateCheckDirection:
			if inside(x, y) {
				state = stateWalkOut
			} else {
				state = stateSearchEdge
			}

		case stateSearchEdge:
			// Look for the span behind the walk direction first, then ahead.
			found = -1
			for sx := x - dir; sx >= x0 && sx < x1; sx -= dir {
				if d.Inside(sx, y) {
					found, dir = sx, -dir
					break
				}
			}
			if found < 0 {
				for sx := x + dir; sx >= x0 && sx < x1; sx += dir {
					if d.Inside(sx, y) {
						found = sx
						break
					}
				}
			}
			if found < 0 {
				// Empty row.
				y++
				if y >= y1 {
					return n
				}
				state = stateCheckDirection
				continue
			}
			x = found
			state = stateWalkOut

		case stateWalkOut:
			// Move against the walk direction to the end of the span.
			for inside(x-dir, y) {
				x -= dir
			}
			state = stateWalking

		case stateWalking:
			last := x
			for inside(x, y) {
				emit(Fragment{
					Index: (y-r.yOffset)*r.resX + x,
					BBX:   x - int(d.BBox.StartX),
					BBY:   y - int(d.BBox.StartY),
					X:     x,
					Y:     y,
				})
				n++
				last = x
				x += dir
			}
			x, dir = last, -dir
			y++
			if y >= y1 {
				return n
			}
			state = stateCheckDirection
		}
	}
}

package transform

import (
	"math"

	"github.com/gogpu/rix/raster"
)

// line clips a segment and expands it into a quad of LineWidth pixels.
func (p *Pipeline) line(a, b *clipVertex) bool {
	ca, cb, ok := p.clipper.line(a, b)
	if !ok {
		p.stats.Clipped++
		return true
	}
	sa, okA := p.project(&ca, FaceFront)
	sb, okB := p.project(&cb, FaceFront)
	if !okA || !okB {
		p.stats.Clipped++
		return true
	}

	dx, dy := sb.X-sa.X, sb.Y-sa.Y
	l := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if l == 0 {
		return true
	}
	half := max(p.global.LineWidth, 1) / 2
	ox, oy := -dy/l*half, dx/l*half

	a0, a1 := offset(&sa, ox, oy), offset(&sa, -ox, -oy)
	b0, b1 := offset(&sb, ox, oy), offset(&sb, -ox, -oy)
	return p.emitQuad(&a0, &a1, &b1, &b0)
}

// point expands a point into a square of the vertex point size, or the
// global PointSize when the vertex has none.
func (p *Pipeline) point(v *clipVertex) bool {
	if !p.clipper.point(v) {
		p.stats.Clipped++
		return true
	}
	s, ok := p.project(v, FaceFront)
	if !ok {
		p.stats.Clipped++
		return true
	}
	size := v.size
	if size <= 0 {
		size = p.global.PointSize
	}
	half := max(size, 1) / 2
	v0, v1 := offset(&s, -half, -half), offset(&s, half, -half)
	v2, v3 := offset(&s, half, half), offset(&s, -half, half)
	return p.emitQuad(&v0, &v1, &v2, &v3)
}

// emitQuad sends the quad (a, b, c, d) as two triangles sharing a. Lines and
// points are never culled.
func (p *Pipeline) emitQuad(a, b, c, d *raster.ScreenVertex) bool {
	if !p.sink(a, b, c) {
		return false
	}
	if !p.sink(a, c, d) {
		return false
	}
	p.stats.Triangles += 2
	return true
}

func offset(v *raster.ScreenVertex, dx, dy float32) raster.ScreenVertex {
	o := *v
	o.X += dx
	o.Y += dy
	return o
}

// Package transform is the vertex pipeline. It transforms and lights
// vertices, assembles them into primitives, clips against the view volume
// and a user plane, culls, and hands window space triangles to a Sink.
// Lines and points are expanded to triangles in window space.
package transform

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/raster"
)

// Sink receives screen space triangles. Returning false aborts the current
// vertex; the pipeline reports the failure from PushVertex.
type Sink func(v0, v1, v2 *raster.ScreenVertex) bool

// Stats counts the work done by a pipeline.
type Stats struct {
	Vertices  int
	Triangles int
	Culled    int
	Clipped   int
}

// Pipeline transforms, lights, assembles, clips and projects vertices and
// feeds the resulting triangles to a sink.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	sink Sink

	global GlobalContext
	local  LocalContext
	vertex VertexContext

	// inverse is the inverse model view matrix, computed lazily when
	// lighting, texture generation or the user clip plane needs it.
	inverse      Mat4
	inverseValid bool
	normalMatrix Mat4

	mode   Mode
	active bool
	count  int
	window [4]clipVertex
	first  clipVertex

	clipper clipper
	stats   Stats
}

// New creates a pipeline for a width x height framebuffer with default
// contexts.
func New(width, height int, sink Sink) *Pipeline {
	p := &Pipeline{
		sink:   sink,
		global: DefaultGlobalContext(width, height),
		local:  DefaultLocalContext(),
		vertex: DefaultVertexContext(),
	}
	p.updateClipPlane()
	return p
}

// SetGlobalContext replaces the global context.
func (p *Pipeline) SetGlobalContext(c *GlobalContext) {
	p.global = *c
	p.updateClipPlane()
}

// SetLocalContext replaces the local context.
func (p *Pipeline) SetLocalContext(c *LocalContext) {
	p.local = *c
	p.inverseValid = false
	p.updateClipPlane()
}

// SetVertexContext replaces the vertex context.
func (p *Pipeline) SetVertexContext(c *VertexContext) {
	p.vertex = *c
}

// GlobalContext returns the current global context.
func (p *Pipeline) GlobalContext() GlobalContext { return p.global }

// LocalContext returns the current local context.
func (p *Pipeline) LocalContext() LocalContext { return p.local }

// VertexContext returns the current vertex context.
func (p *Pipeline) VertexContext() VertexContext { return p.vertex }

// Stats returns the counters accumulated since the pipeline was created.
func (p *Pipeline) Stats() Stats { return p.stats }

// DrawNewElement ends the current element and starts a new one. ModeNone
// only ends it. It returns false if closing the previous element failed.
func (p *Pipeline) DrawNewElement(mode Mode) bool {
	ok := p.Flush()
	if mode == ModeNone {
		return ok
	}
	if !mode.Valid() {
		rix.Logger().Warn("transform: unsupported primitive mode", "mode", uint32(mode))
		p.active = false
		return ok
	}
	p.mode, p.active, p.count = mode, true, 0
	return ok
}

// Flush ends the current element: a line loop is closed. The next vertex
// needs a new DrawNewElement.
func (p *Pipeline) Flush() bool {
	if !p.active {
		return true
	}
	p.active = false
	if p.mode == LineLoop && p.count > 1 {
		return p.line(&p.window[0], &p.first)
	}
	return true
}

// PushVertex transforms v and assembles it into the current element. It
// returns false when the sink rejected a triangle.
func (p *Pipeline) PushVertex(v *Vertex) bool {
	if !p.active {
		rix.Logger().Warn("transform: vertex outside of an element")
		return true
	}
	p.stats.Vertices++
	cv := p.transform(v)
	return p.assemble(&cv)
}

func (p *Pipeline) assemble(v *clipVertex) bool {
	n := p.count
	p.count++
	w := &p.window

	switch p.mode {
	case Points:
		return p.point(v)

	case Lines:
		if n%2 == 0 {
			w[0] = *v
			return true
		}
		return p.line(&w[0], v)

	case LineStrip, LineLoop:
		if n == 0 {
			w[0], p.first = *v, *v
			return true
		}
		ok := p.line(&w[0], v)
		w[0] = *v
		return ok

	case Triangles:
		w[n%3] = *v
		if n%3 != 2 {
			return true
		}
		return p.triangle(&w[0], &w[1], &w[2])

	case TriangleStrip:
		if n < 2 {
			w[n] = *v
			return true
		}
		// Every other triangle swaps its first two vertices to keep a
		// consistent winding.
		var ok bool
		if n%2 == 0 {
			ok = p.triangle(&w[0], &w[1], v)
		} else {
			ok = p.triangle(&w[1], &w[0], v)
		}
		w[0], w[1] = w[1], *v
		return ok

	case TriangleFan, Polygon:
		if n < 2 {
			w[n] = *v
			return true
		}
		ok := p.triangle(&w[0], &w[1], v)
		w[1] = *v
		return ok

	case Quads:
		w[n%4] = *v
		if n%4 != 3 {
			return true
		}
		return p.triangle(&w[0], &w[1], &w[2]) && p.triangle(&w[0], &w[2], &w[3])

	case QuadStrip:
		switch {
		case n < 2:
			w[n] = *v
			return true
		case n%2 == 0:
			w[2] = *v
			return true
		}
		// Quad (v0, v1, v3, v2) split on its first vertex.
		ok := p.triangle(&w[0], &w[1], v) && p.triangle(&w[0], v, &w[2])
		w[0], w[1] = w[2], *v
		return ok
	}
	return true
}

// transform runs the per-vertex stage: model view and projection, lighting
// and texture coordinate generation.
func (p *Pipeline) transform(v *Vertex) clipVertex {
	g, l := &p.global, &p.local

	eye := l.ModelView.Transform(v.Position)
	cv := clipVertex{
		pos:  g.Projection.Transform(eye),
		eye:  eye,
		size: v.PointSize,
	}

	needNormal := g.Lighting
	for i := range g.TexGen {
		needNormal = needNormal || g.TexGen[i].needsNormal()
	}
	var n Vec3
	if needNormal {
		p.updateInverse()
		n = p.normalMatrix.TransformDir(v.Normal)
		if l.Normalize {
			n = n.Normalize()
		}
	}

	if g.Lighting {
		front := p.vertex.material(FaceFront, v.Color)
		cv.color[FaceFront] = shade(g, &front, eye, n, v.Color)
		if g.TwoSidedLighting {
			back := p.vertex.material(FaceBack, v.Color)
			cv.color[FaceBack] = shade(g, &back, eye, n.Neg(), v.Color)
		} else {
			cv.color[FaceBack] = cv.color[FaceFront]
		}
	} else {
		cv.color[FaceFront], cv.color[FaceBack] = v.Color, v.Color
	}

	for t := range cv.tex {
		tc := g.TexGen[t].generate(v.Tex[t], v.Position, eye, n)
		cv.tex[t] = l.TexMatrix[t].Transform(tc)
	}
	return cv
}

func (p *Pipeline) updateInverse() {
	if p.inverseValid {
		return
	}
	inv, ok := p.local.ModelView.Inverse()
	if !ok {
		rix.Logger().Warn("transform: singular model view matrix")
		inv = Identity()
	}
	p.inverse = inv
	p.normalMatrix = inv.Transpose()
	p.inverseValid = true
}

func (p *Pipeline) updateClipPlane() {
	p.clipper.userPlane = p.global.ClipPlaneEnable
	if !p.global.ClipPlaneEnable {
		return
	}
	p.updateInverse()
	p.clipper.plane = p.inverse.TransformPlane(p.global.ClipPlane)
}

// project does the perspective divide and the viewport transform. It returns
// false for vertices on or behind the eye.
func (p *Pipeline) project(v *clipVertex, face int) (raster.ScreenVertex, bool) {
	if v.pos.W <= 0 {
		return raster.ScreenVertex{}, false
	}
	g := &p.global
	invW := 1 / v.pos.W
	nx, ny, nz := v.pos.X*invW, v.pos.Y*invW, v.pos.Z*invW

	s := raster.ScreenVertex{
		X:     g.Viewport.X + (nx+1)*g.Viewport.Width/2,
		Y:     g.Viewport.Y + (1-ny)*g.Viewport.Height/2,
		Z:     g.DepthNear + (nz+1)/2*(g.DepthFar-g.DepthNear),
		InvW:  invW,
		Color: v.color[face].Array(),
	}
	for t := range s.Tex {
		s.Tex[t] = v.tex[t].Array()
	}
	return s, true
}

// frontFacing reports whether a window space triangle faces the viewer.
// Window y points down, so counterclockwise triangles have negative area.
func (p *Pipeline) frontFacing(a, b, c *raster.ScreenVertex) bool {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	ccw := area < 0
	return ccw == (p.global.FrontFace == gputypes.FrontFaceCCW)
}

// triangle clips, projects, culls and emits a triangle.
func (p *Pipeline) triangle(a, b, c *clipVertex) bool {
	poly := p.clipper.triangle(a, b, c)
	if len(poly) < 3 {
		p.stats.Clipped++
		return true
	}

	var sv [maxPolygon]raster.ScreenVertex
	for i := range poly {
		var ok bool
		if sv[i], ok = p.project(&poly[i], FaceFront); !ok {
			p.stats.Clipped++
			return true
		}
	}

	// Clipping keeps the winding, so the first triangle decides for all.
	front := p.frontFacing(&sv[0], &sv[1], &sv[2])
	switch p.global.CullMode {
	case gputypes.CullModeBack:
		if !front {
			p.stats.Culled++
			return true
		}
	case gputypes.CullModeFront:
		if front {
			p.stats.Culled++
			return true
		}
	}
	if !front && p.global.Lighting && p.global.TwoSidedLighting {
		for i := range poly {
			sv[i].Color = poly[i].color[FaceBack].Array()
		}
	}

	for i := 2; i < len(poly); i++ {
		if !p.sink(&sv[0], &sv[i-1], &sv[i]) {
			return false
		}
		p.stats.Triangles++
	}
	return true
}

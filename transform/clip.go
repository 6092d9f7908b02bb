package transform

// clipVertex is a vertex between transform and perspective divide.
type clipVertex struct {
	// pos is the clip space position, eye the eye space position.
	pos Vec4
	eye Vec4

	// color holds the front and back face colors.
	color [2]Vec4
	tex   [MaxTMUs]Vec4
	size  float32
}

// lerp interpolates every attribute from a (t=0) to b (t=1).
func (a *clipVertex) lerp(b *clipVertex, t float32) clipVertex {
	v := clipVertex{
		pos:  a.pos.Lerp(b.pos, t),
		eye:  a.eye.Lerp(b.eye, t),
		size: a.size + (b.size-a.size)*t,
	}
	for i := range v.color {
		v.color[i] = a.color[i].Lerp(b.color[i], t)
	}
	for i := range v.tex {
		v.tex[i] = a.tex[i].Lerp(b.tex[i], t)
	}
	return v
}

// Frustum planes, in clip space. Each bit of an outcode is one plane.
const (
	planeLeft = iota
	planeRight
	planeBottom
	planeTop
	planeNear
	planeFar
	frustumPlanes
)

// frustumDist returns the signed distance of p to a frustum plane; >= 0 is
// inside.
func frustumDist(p Vec4, plane int) float32 {
	switch plane {
	case planeLeft:
		return p.W + p.X
	case planeRight:
		return p.W - p.X
	case planeBottom:
		return p.W + p.Y
	case planeTop:
		return p.W - p.Y
	case planeNear:
		return p.W + p.Z
	default:
		return p.W - p.Z
	}
}

func outcode(p Vec4) uint8 {
	var oc uint8
	for plane := range frustumPlanes {
		if frustumDist(p, plane) < 0 {
			oc |= 1 << plane
		}
	}
	return oc
}

// maxPolygon bounds the clip result: every plane adds at most one vertex to
// a convex polygon, and there are six frustum planes plus the user plane.
const maxPolygon = 3 + frustumPlanes + 1

type polygon struct {
	v [maxPolygon]clipVertex
	n int
}

// clipper clips triangles by ping-ponging between two polygon buffers.
type clipper struct {
	buf [2]polygon

	userPlane bool
	// plane is the user clip plane in eye space.
	plane Vec4
}

// triangle clips a triangle against the user plane, if enabled, and the
// view frustum. The result is a convex polygon in winding order, or nil when
// nothing remains. It aliases the clipper's buffers.
func (c *clipper) triangle(a, b, d *clipVertex) []clipVertex {
	src, dst := &c.buf[0], &c.buf[1]
	src.v[0], src.v[1], src.v[2] = *a, *b, *d
	src.n = 3

	if c.userPlane {
		// Unlike the frustum planes, at least one original vertex has to
		// survive: a triangle fully behind an infinite plane is gone.
		in := 0
		for i := range 3 {
			if c.plane.Dot(src.v[i].eye) >= 0 {
				in++
			}
		}
		if in == 0 {
			return nil
		}
		if in < 3 {
			clipPolygon(src, dst, func(v *clipVertex) float32 { return c.plane.Dot(v.eye) })
			src, dst = dst, src
		}
	}

	and, or := uint8(1<<frustumPlanes-1), uint8(0)
	for i := range src.n {
		oc := outcode(src.v[i].pos)
		and &= oc
		or |= oc
	}
	if and != 0 {
		// All vertices outside the same plane.
		return nil
	}
	for plane := range frustumPlanes {
		if or&(1<<plane) == 0 {
			continue
		}
		clipPolygon(src, dst, func(v *clipVertex) float32 { return frustumDist(v.pos, plane) })
		if dst.n < 3 {
			return nil
		}
		src, dst = dst, src
	}
	return src.v[:src.n]
}

// clipPolygon is one Sutherland-Hodgman pass: it keeps the part of src with
// dist >= 0 and writes it to dst.
func clipPolygon(src, dst *polygon, dist func(*clipVertex) float32) {
	dst.n = 0
	if src.n == 0 {
		return
	}
	prev := &src.v[src.n-1]
	dp := dist(prev)
	for i := range src.n {
		cur := &src.v[i]
		dc := dist(cur)
		switch {
		case dp >= 0 && dc >= 0:
			dst.push(cur)
		case dp >= 0:
			dst.pushIntersection(prev, cur, dp, dc)
		case dc >= 0:
			dst.pushIntersection(cur, prev, dc, dp)
			dst.push(cur)
		}
		prev, dp = cur, dc
	}
}

func (p *polygon) push(v *clipVertex) {
	if p.n < maxPolygon {
		p.v[p.n] = *v
		p.n++
	}
}

// pushIntersection appends the point where the edge from the inside vertex
// in to the outside vertex out crosses the plane. Interpolating from the
// inside end makes shared edges of neighboring triangles clip identically.
func (p *polygon) pushIntersection(in, out *clipVertex, din, dout float32) {
	v := in.lerp(out, din/(din-dout))
	p.push(&v)
}

// line clips a segment against the user plane and the frustum by narrowing
// its parameter range. It returns false when nothing remains.
func (c *clipper) line(a, b *clipVertex) (clipVertex, clipVertex, bool) {
	t0, t1 := float32(0), float32(1)
	narrow := func(da, db float32) bool {
		switch {
		case da < 0 && db < 0:
			return false
		case da < 0:
			t0 = max(t0, da/(da-db))
		case db < 0:
			t1 = min(t1, da/(da-db))
		}
		return t0 <= t1
	}

	if c.userPlane && !narrow(c.plane.Dot(a.eye), c.plane.Dot(b.eye)) {
		return clipVertex{}, clipVertex{}, false
	}
	for plane := range frustumPlanes {
		if !narrow(frustumDist(a.pos, plane), frustumDist(b.pos, plane)) {
			return clipVertex{}, clipVertex{}, false
		}
	}

	ca, cb := *a, *b
	if t0 > 0 {
		ca = a.lerp(b, t0)
	}
	if t1 < 1 {
		cb = a.lerp(b, t1)
	}
	return ca, cb, true
}

// point reports whether a point survives clipping.
func (c *clipper) point(v *clipVertex) bool {
	if c.userPlane && c.plane.Dot(v.eye) < 0 {
		return false
	}
	return outcode(v.pos) == 0
}

package transform

import (
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix/raster"
)

type recorder struct {
	tris [][3]raster.ScreenVertex
}

func (r *recorder) sink(v0, v1, v2 *raster.ScreenVertex) bool {
	r.tris = append(r.tris, [3]raster.ScreenVertex{*v0, *v1, *v2})
	return true
}

func newTestPipeline() (*Pipeline, *recorder) {
	r := &recorder{}
	return New(100, 100, r.sink), r
}

func vert(x, y, z float32) *Vertex {
	return &Vertex{Position: V4(x, y, z, 1), Color: V4(1, 1, 1, 1), Normal: V3(0, 0, 1)}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

// =============================================================================
// Matrices
// =============================================================================

func TestMat4_Inverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Rotate(0.7, V3(1, 1, 0))).Mul(Scale(2, 3, 4))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported a singular matrix")
	}
	id := m.Mul(inv)
	want := Identity()
	for i := range id {
		if !approx(id[i], want[i]) {
			t.Fatalf("m * m^-1 = %v, want identity", id)
		}
	}

	if _, ok := Scale(1, 0, 1).Inverse(); ok {
		t.Error("Inverse() of a singular matrix succeeded")
	}
}

func TestMat4_Transform(t *testing.T) {
	p := Translate(1, 2, 3).Transform(V4(1, 1, 1, 1))
	if p != V4(2, 3, 4, 1) {
		t.Errorf("Translate().Transform() = %v", p)
	}
	r := Rotate(math.Pi/2, V3(0, 0, 1)).Transform(V4(1, 0, 0, 1))
	if !approx(r.X, 0) || !approx(r.Y, 1) {
		t.Errorf("Rotate(90, z) * x = %v, want y", r)
	}
}

func TestMat4_TransformPlane(t *testing.T) {
	m := Translate(0, 0, -5)
	inv, _ := m.Inverse()
	// Plane z = 1 in object space becomes z = -4 in eye space.
	plane := inv.TransformPlane(V4(0, 0, 1, -1))
	onPlane := V4(3, 7, -4, 1)
	if d := plane.Dot(onPlane); !approx(d, 0) {
		t.Errorf("plane . p = %v, want 0", d)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math.Pi/2, 1, 1, 10)
	near := m.Transform(V4(0, 0, -1, 1))
	far := m.Transform(V4(0, 0, -10, 1))
	if !approx(near.Z/near.W, -1) || !approx(far.Z/far.W, 1) {
		t.Errorf("near z = %v, far z = %v", near.Z/near.W, far.Z/far.W)
	}
}

// =============================================================================
// Clipping
// =============================================================================

func TestPipeline_TriangleBeyondFarPlane(t *testing.T) {
	p, r := newTestPipeline()
	p.DrawNewElement(Triangles)
	p.PushVertex(vert(0, 0, 2))
	p.PushVertex(vert(0.5, 0, 2))
	p.PushVertex(vert(0, 0.5, 2))
	if len(r.tris) != 0 {
		t.Errorf("emitted %d triangles, want 0", len(r.tris))
	}
	if p.Stats().Clipped != 1 {
		t.Errorf("Clipped = %d, want 1", p.Stats().Clipped)
	}
}

func TestPipeline_StraddlingOnePlane(t *testing.T) {
	p, r := newTestPipeline()
	p.DrawNewElement(Triangles)
	p.PushVertex(vert(0, 0, 0))
	p.PushVertex(vert(2, 0, 0)) // outside the right plane
	p.PushVertex(vert(0, 1, 0))
	if len(r.tris) != 2 {
		t.Fatalf("emitted %d triangles, want 2", len(r.tris))
	}
	if r.tris[0][0] != r.tris[1][0] {
		t.Error("triangles do not share vertex 0")
	}
	if r.tris[0][2] != r.tris[1][1] {
		t.Error("fan triangles are not adjacent")
	}
	for _, tri := range r.tris {
		for _, v := range tri {
			if v.X > 100+1e-3 {
				t.Errorf("vertex x = %v outside the viewport", v.X)
			}
		}
	}
}

func TestClipper_PolygonSize(t *testing.T) {
	var c clipper
	a := clipVertex{pos: V4(0, 0, 0, 1)}
	b := clipVertex{pos: V4(2, 0, 0, 1)}
	d := clipVertex{pos: V4(0, 1, 0, 1)}
	if got := len(c.triangle(&a, &b, &d)); got != 4 {
		t.Errorf("len(triangle()) = %d, want 4", got)
	}

	// A big triangle covering the frustum is cut by four planes.
	a = clipVertex{pos: V4(-10, -10, 0, 1)}
	b = clipVertex{pos: V4(10, -10, 0, 1)}
	d = clipVertex{pos: V4(0, 10, 0, 1)}
	poly := c.triangle(&a, &b, &d)
	if len(poly) < 4 || len(poly) > maxPolygon {
		t.Errorf("len(triangle()) = %d", len(poly))
	}
	for _, v := range poly {
		if outcode(v.pos) != 0 && !approxInside(v.pos) {
			t.Errorf("vertex %v outside the frustum", v.pos)
		}
	}
}

func approxInside(p Vec4) bool {
	for plane := range frustumPlanes {
		if frustumDist(p, plane) < -1e-5 {
			return false
		}
	}
	return true
}

func TestClipper_UserPlane(t *testing.T) {
	c := clipper{userPlane: true, plane: V4(1, 0, 0, 0)} // keep x >= 0
	mk := func(x, y float32) clipVertex {
		return clipVertex{pos: V4(x, y, 0, 1), eye: V4(x, y, 0, 1)}
	}
	a, b, d := mk(-0.5, 0), mk(-0.2, 0), mk(-0.5, 0.5)
	if poly := c.triangle(&a, &b, &d); poly != nil {
		t.Errorf("triangle behind the plane returned %d vertices", len(poly))
	}
	a, b, d = mk(-0.5, 0), mk(0.5, 0), mk(-0.5, 0.5)
	if poly := c.triangle(&a, &b, &d); len(poly) != 3 {
		t.Errorf("len(triangle()) = %d, want 3", len(poly))
	}
}

func TestClipper_Line(t *testing.T) {
	var c clipper
	a := clipVertex{pos: V4(-2, 0, 0, 1), color: [2]Vec4{V4(0, 0, 0, 1), V4(0, 0, 0, 1)}}
	b := clipVertex{pos: V4(2, 0, 0, 1), color: [2]Vec4{V4(1, 1, 1, 1), V4(1, 1, 1, 1)}}
	ca, cb, ok := c.line(&a, &b)
	if !ok {
		t.Fatal("line() rejected a crossing line")
	}
	if !approx(ca.pos.X, -1) || !approx(cb.pos.X, 1) {
		t.Errorf("clipped x = %v..%v, want -1..1", ca.pos.X, cb.pos.X)
	}
	if !approx(ca.color[0].X, 0.25) {
		t.Errorf("clipped color = %v, want 0.25", ca.color[0].X)
	}

	a.pos, b.pos = V4(2, 0, 0, 1), V4(3, 0, 0, 1)
	if _, _, ok := c.line(&a, &b); ok {
		t.Error("line() accepted a line outside the frustum")
	}
}

// =============================================================================
// Primitive assembly
// =============================================================================

func TestPipeline_AssemblyCounts(t *testing.T) {
	tests := []struct {
		mode     Mode
		vertices int
		want     int
	}{
		{Triangles, 7, 2},
		{TriangleStrip, 6, 4},
		{TriangleFan, 6, 4},
		{Polygon, 5, 3},
		{Quads, 9, 4},
		{QuadStrip, 8, 6},
		{Lines, 5, 4},     // 2 lines x 2
		{LineStrip, 4, 6}, // 3 lines x 2
		{Points, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p, r := newTestPipeline()
			p.DrawNewElement(tt.mode)
			for i := range tt.vertices {
				// Points on a circle keep every primitive non-degenerate.
				a := float64(i) * 2 * math.Pi / float64(tt.vertices+1)
				p.PushVertex(vert(float32(0.8*math.Cos(a)), float32(0.8*math.Sin(a)), 0))
			}
			p.Flush()
			if len(r.tris) != tt.want {
				t.Errorf("emitted %d triangles, want %d", len(r.tris), tt.want)
			}
		})
	}
}

func TestPipeline_LineLoopCloses(t *testing.T) {
	p, r := newTestPipeline()
	p.DrawNewElement(LineLoop)
	p.PushVertex(vert(-0.5, -0.5, 0))
	p.PushVertex(vert(0.5, -0.5, 0))
	p.PushVertex(vert(0, 0.5, 0))
	if len(r.tris) != 4 {
		t.Fatalf("before Flush: %d triangles, want 4", len(r.tris))
	}
	p.DrawNewElement(Triangles)
	if len(r.tris) != 6 {
		t.Errorf("after closing: %d triangles, want 6", len(r.tris))
	}
}

func TestPipeline_ModeNoneEndsElement(t *testing.T) {
	p, r := newTestPipeline()
	p.DrawNewElement(LineLoop)
	p.PushVertex(vert(-0.5, -0.5, 0))
	p.PushVertex(vert(0.5, -0.5, 0))
	p.PushVertex(vert(0, 0.5, 0))
	p.DrawNewElement(ModeNone)
	if len(r.tris) != 6 {
		t.Fatalf("after ModeNone: %d triangles, want the closed loop's 6", len(r.tris))
	}

	p.PushVertex(vert(-0.5, -0.5, 0))
	p.PushVertex(vert(0.5, -0.5, 0))
	p.PushVertex(vert(0, 0.5, 0))
	if len(r.tris) != 6 {
		t.Errorf("vertices after ModeNone emitted %d triangles", len(r.tris)-6)
	}
	if got := p.Stats().Vertices; got != 3 {
		t.Errorf("Stats().Vertices = %d, want 3", got)
	}
}

func TestPipeline_StripKeepsWinding(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.CullMode = gputypes.CullModeBack
	p.SetGlobalContext(&g)

	// This strip starts clockwise. Alternating the winding keeps every
	// triangle clockwise, so back face culling removes all of them.
	p.DrawNewElement(TriangleStrip)
	p.PushVertex(vert(-0.5, -0.5, 0))
	p.PushVertex(vert(-0.5, 0.5, 0))
	p.PushVertex(vert(0, -0.5, 0))
	p.PushVertex(vert(0, 0.5, 0))
	p.PushVertex(vert(0.5, -0.5, 0))
	if len(r.tris) != 0 {
		t.Fatalf("clockwise strip: %d triangles survived", len(r.tris))
	}
	if p.Stats().Culled != 3 {
		t.Errorf("Culled = %d, want 3", p.Stats().Culled)
	}

	p.DrawNewElement(TriangleStrip)
	p.PushVertex(vert(-0.5, 0.5, 0))
	p.PushVertex(vert(-0.5, -0.5, 0))
	p.PushVertex(vert(0, 0.5, 0))
	p.PushVertex(vert(0, -0.5, 0))
	p.PushVertex(vert(0.5, 0.5, 0))
	if len(r.tris) != 3 {
		t.Errorf("counterclockwise strip: %d triangles, want 3", len(r.tris))
	}
}

func TestPipeline_Culling(t *testing.T) {
	tests := []struct {
		cull  gputypes.CullMode
		front gputypes.FrontFace
		ccw   bool
		want  int
	}{
		{gputypes.CullModeNone, gputypes.FrontFaceCCW, false, 1},
		{gputypes.CullModeBack, gputypes.FrontFaceCCW, true, 1},
		{gputypes.CullModeBack, gputypes.FrontFaceCCW, false, 0},
		{gputypes.CullModeFront, gputypes.FrontFaceCCW, true, 0},
		{gputypes.CullModeBack, gputypes.FrontFaceCW, false, 1},
	}
	for _, tt := range tests {
		p, r := newTestPipeline()
		g := p.GlobalContext()
		g.CullMode, g.FrontFace = tt.cull, tt.front
		p.SetGlobalContext(&g)
		p.DrawNewElement(Triangles)
		p.PushVertex(vert(0, 0, 0))
		if tt.ccw {
			p.PushVertex(vert(0.5, 0, 0))
			p.PushVertex(vert(0, 0.5, 0))
		} else {
			p.PushVertex(vert(0, 0.5, 0))
			p.PushVertex(vert(0.5, 0, 0))
		}
		if len(r.tris) != tt.want {
			t.Errorf("cull=%v front=%v ccw=%v: %d triangles, want %d", tt.cull, tt.front, tt.ccw, len(r.tris), tt.want)
		}
	}
}

func TestPipeline_Viewport(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.DepthNear, g.DepthFar = 0.25, 0.75
	p.SetGlobalContext(&g)
	p.DrawNewElement(Triangles)
	p.PushVertex(vert(-1, 1, -1))
	p.PushVertex(vert(-1, -1, 0))
	p.PushVertex(vert(1, 1, 1))
	if len(r.tris) != 1 {
		t.Fatalf("emitted %d triangles", len(r.tris))
	}
	v := r.tris[0]
	if v[0].X != 0 || v[0].Y != 0 || v[0].Z != 0.25 {
		t.Errorf("top left = (%v, %v, %v)", v[0].X, v[0].Y, v[0].Z)
	}
	if v[1].Y != 100 || v[1].Z != 0.5 {
		t.Errorf("bottom left y = %v, z = %v", v[1].Y, v[1].Z)
	}
	if v[2].X != 100 || v[2].Z != 0.75 || v[2].InvW != 1 {
		t.Errorf("top right = %+v", v[2])
	}
}

func TestPipeline_LineWidth(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.LineWidth = 4
	p.SetGlobalContext(&g)
	p.DrawNewElement(Lines)
	p.PushVertex(vert(-0.5, 0, 0))
	p.PushVertex(vert(0.5, 0, 0))
	if len(r.tris) != 2 {
		t.Fatalf("emitted %d triangles", len(r.tris))
	}
	minY, maxY := float32(1e9), float32(-1e9)
	for _, tri := range r.tris {
		for _, v := range tri {
			minY, maxY = min(minY, v.Y), max(maxY, v.Y)
		}
	}
	if maxY-minY != 4 {
		t.Errorf("line thickness = %v, want 4", maxY-minY)
	}
}

func TestPipeline_VertexOutsideElement(t *testing.T) {
	p, r := newTestPipeline()
	if !p.PushVertex(vert(0, 0, 0)) {
		t.Error("PushVertex() = false")
	}
	if len(r.tris) != 0 || p.Stats().Vertices != 0 {
		t.Error("vertex outside an element was processed")
	}
}

func TestPipeline_SinkFailure(t *testing.T) {
	p := New(100, 100, func(v0, v1, v2 *raster.ScreenVertex) bool { return false })
	p.DrawNewElement(Triangles)
	p.PushVertex(vert(0, 0, 0))
	p.PushVertex(vert(0.5, 0, 0))
	if p.PushVertex(vert(0, 0.5, 0)) {
		t.Error("PushVertex() = true with a failing sink")
	}
}

// =============================================================================
// Lighting and texture coordinates
// =============================================================================

func TestPipeline_DirectionalLight(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.Lighting = true
	g.LightModelAmbient = V4(0, 0, 0, 1)
	g.Lights[0].Enable = true
	g.Lights[0].Position = V4(0, 0, 1, 0)
	p.SetGlobalContext(&g)

	vc := p.VertexContext()
	vc.Material[FaceFront].Diffuse = V4(1, 0.5, 0, 1)
	vc.Material[FaceFront].Ambient = V4(0, 0, 0, 1)
	p.SetVertexContext(&vc)

	p.DrawNewElement(Triangles)
	for _, v := range []*Vertex{vert(0, 0, 0), vert(0.5, 0, 0), vert(0, 0.5, 0)} {
		v.Color.W = 0.5
		p.PushVertex(v)
	}
	c := r.tris[0][0].Color
	if !approx(c[0], 1) || !approx(c[1], 0.5) || !approx(c[2], 0) || c[3] != 0.5 {
		t.Errorf("color = %v, want [1 0.5 0 0.5]", c)
	}
}

func TestPipeline_TwoSidedLighting(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.Lighting = true
	g.TwoSidedLighting = true
	g.LightModelAmbient = V4(0, 0, 0, 1)
	g.Lights[0].Enable = true
	p.SetGlobalContext(&g)

	vc := p.VertexContext()
	vc.Material[FaceFront].Emission = V4(1, 0, 0, 1)
	vc.Material[FaceBack].Emission = V4(0, 0, 1, 1)
	vc.Material[FaceFront].Diffuse = V4(0, 0, 0, 1)
	vc.Material[FaceBack].Diffuse = V4(0, 0, 0, 1)
	p.SetVertexContext(&vc)

	p.DrawNewElement(Triangles)
	p.PushVertex(vert(0, 0, 0))
	p.PushVertex(vert(0, 0.5, 0)) // clockwise: back face
	p.PushVertex(vert(0.5, 0, 0))
	if c := r.tris[0][0].Color; c[2] != 1 || c[0] != 0 {
		t.Errorf("back face color = %v, want blue", c)
	}
}

func TestPipeline_ColorMaterial(t *testing.T) {
	p, r := newTestPipeline()
	g := p.GlobalContext()
	g.Lighting = true
	g.LightModelAmbient = V4(0, 0, 0, 1)
	g.Lights[0].Enable = true
	p.SetGlobalContext(&g)
	vc := p.VertexContext()
	vc.ColorMaterial = true
	vc.ColorMaterialMode = ColorMaterialDiffuse
	p.SetVertexContext(&vc)

	p.DrawNewElement(Points)
	v := vert(0, 0, 0)
	v.Color = V4(0, 1, 0, 1)
	p.PushVertex(v)
	if c := r.tris[0][0].Color; !approx(c[1], 1) || c[0] != 0 {
		t.Errorf("color = %v, want green", c)
	}
}

func TestPipeline_SpotLight(t *testing.T) {
	g := DefaultGlobalContext(100, 100)
	g.LightModelAmbient = V4(0, 0, 0, 1)
	g.Lights[0].Enable = true
	g.Lights[0].Position = V4(0, 0, 1, 1)
	g.Lights[0].SpotDirection = V3(0, 0, -1)
	g.Lights[0].SpotCutoff = 10
	m := DefaultMaterial()
	m.Ambient = V4(0, 0, 0, 1)
	m.Diffuse = V4(1, 1, 1, 1)

	lit := shade(&g, &m, V4(0, 0, 0, 1), V3(0, 0, 1), V4(1, 1, 1, 1))
	if !approx(lit.X, 1) {
		t.Errorf("inside the cone = %v, want 1", lit.X)
	}
	dark := shade(&g, &m, V4(1, 0, 0, 1), V3(0, 0, 1), V4(1, 1, 1, 1))
	if dark.X != 0 {
		t.Errorf("outside the cone = %v, want 0", dark.X)
	}
}

func TestTexGen(t *testing.T) {
	g := TexGen{Mode: [4]TexGenMode{TexGenObjectLinear, TexGenEyeLinear, TexGenNormalMap, TexGenOff}}
	g.ObjectPlane[0] = V4(1, 0, 0, 0)
	g.EyePlane[1] = V4(0, 0, 1, 0)
	got := g.generate(V4(9, 9, 9, 1), V4(3, 0, 0, 1), V4(0, 0, -5, 1), V3(0, 1, 0))
	want := V4(3, -5, 0, 1)
	if got != want {
		t.Errorf("generate() = %v, want %v", got, want)
	}

	sphere := TexGen{Mode: [4]TexGenMode{TexGenSphereMap, TexGenSphereMap}}
	// Looking straight at a surface facing the viewer hits the map center.
	got = sphere.generate(V4(0, 0, 0, 1), V4(0, 0, 0, 1), V4(0, 0, -1, 1), V3(0, 0, 1))
	if !approx(got.X, 0.5) || !approx(got.Y, 0.5) {
		t.Errorf("sphere map = %v, want center", got)
	}
}

func TestPipeline_PointSize(t *testing.T) {
	tests := []struct {
		name   string
		global float32
		vertex float32
		want   float32
	}{
		{"global", 3, 0, 3},
		{"per vertex", 3, 6, 6},
		{"at least one pixel", 0.25, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, r := newTestPipeline()
			g := p.GlobalContext()
			g.PointSize = tt.global
			p.SetGlobalContext(&g)

			p.DrawNewElement(Points)
			v := vert(0, 0, 0)
			v.PointSize = tt.vertex
			p.PushVertex(v)
			if len(r.tris) != 2 {
				t.Fatalf("emitted %d triangles, want 2", len(r.tris))
			}
			if got := r.tris[0][1].X - r.tris[0][0].X; !approx(got, tt.want) {
				t.Errorf("point width = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipeline_TextureMatrix(t *testing.T) {
	p, r := newTestPipeline()
	l := p.LocalContext()
	l.TexMatrix[1] = Scale(2, 3, 1)
	p.SetLocalContext(&l)
	p.DrawNewElement(Points)
	v := vert(0, 0, 0)
	v.Tex[1] = V4(0.25, 0.5, 0, 1)
	p.PushVertex(v)
	if tc := r.tris[0][0].Tex[1]; tc != [4]float32{0.5, 1.5, 0, 1} {
		t.Errorf("tex = %v, want [0.5 1.5 0 1]", tc)
	}
}

func TestPipeline_UserClipPlaneObjectSpace(t *testing.T) {
	p, r := newTestPipeline()
	l := p.LocalContext()
	l.ModelView = Translate(-1, 0, 0)
	p.SetLocalContext(&l)
	g := p.GlobalContext()
	g.ClipPlaneEnable = true
	g.ClipPlane = V4(1, 0, 0, -0.5) // keep object x >= 0.5
	p.SetGlobalContext(&g)

	p.DrawNewElement(Points)
	p.PushVertex(vert(0.25, 0, 0))
	p.PushVertex(vert(0.75, 0, 0))
	if len(r.tris) != 2 {
		t.Errorf("emitted %d triangles, want 2 (one point)", len(r.tris))
	}
}

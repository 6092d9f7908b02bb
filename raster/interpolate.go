package raster

import (
	"math"

	"github.com/gogpu/rix/internal/mathx"
)

// TexCoord is a texture coordinate after the perspective divide.
type TexCoord struct {
	S, T float32
}

// Attributes are the interpolated values at a pixel center.
type Attributes struct {
	// Depth is the window depth, clamped to [0, 1].
	Depth float32

	// W is the clip space w, used as the fog distance.
	W float32

	// Color is the primary color, clamped to [0, 1].
	Color [4]float32

	Tex [MaxTMUs]TexCoord
}

// Interpolate evaluates all attribute planes at pixel (x, y). Every value
// is computed directly from the plane equation, so the result depends only
// on the pixel and never on the order pixels were visited in.
func (d *TriangleStreamDesc) Interpolate(x, y int) Attributes {
	dx := float32(x - int(d.OriginX))
	dy := float32(y - int(d.OriginY))

	var a Attributes
	a.Depth = mathx.Saturate(d.Depth.At(dx, dy))
	if invW := d.InvW.At(dx, dy); invW > 0 {
		a.W = 1 / invW
	} else {
		a.W = float32(math.Inf(1))
	}
	for i, p := range d.Color {
		a.Color[i] = mathx.Saturate(p.At(dx, dy))
	}
	for i, t := range d.Tex[:d.TMUs] {
		s, tt, q := t.S.At(dx, dy), t.T.At(dx, dy), t.Q.At(dx, dy)
		if q != 0 {
			s, tt = s/q, tt/q
		}
		a.Tex[i] = TexCoord{S: s, T: tt}
	}
	return a
}

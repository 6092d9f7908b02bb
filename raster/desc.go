// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// MaxTMUs is the number of texture coordinate sets a descriptor can carry.
const MaxTMUs = 2

// Descriptor word counts.
const (
	headerWords = 3
	edgeWords   = 9
	planeWords  = 3

	// BaseWords is the size of a descriptor without texture coordinates.
	BaseWords = headerWords + edgeWords + 6*planeWords

	// TMUWords is the size of the texture coordinate block of one TMU.
	TMUWords = 3 * planeWords
)

// Words returns the encoded size of a descriptor with tmus texture
// coordinate sets.
func Words(tmus int) int {
	return BaseWords + tmus*TMUWords
}

// Rect is a pixel rectangle; the end coordinates are exclusive.
type Rect struct {
	StartX, StartY uint16
	EndX, EndY     uint16
}

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.StartX >= r.EndX || r.StartY >= r.EndY
}

// Edge is a fixed-point edge function. Values are in 1/16 subpixel units
// squared; increments are per pixel.
type Edge struct {
	Init, XInc, YInc int32
}

// FloatEdge is a floating point edge function in pixel units.
type FloatEdge struct {
	Init, XInc, YInc float32
}

// Plane is a linear attribute: Init at the attribute origin pixel plus
// increments per pixel.
type Plane struct {
	Init, XInc, YInc float32
}

// At evaluates the plane dx, dy pixels away from its origin. The explicit
// float32 conversions keep the compiler from fusing multiply and add, so the
// value is identical wherever it is evaluated.
func (p Plane) At(dx, dy float32) float32 {
	return p.Init + float32(p.XInc*dx) + float32(p.YInc*dy)
}

// TexPlanes holds the perspective-premultiplied texture coordinates of one
// TMU: s/w, t/w and q/w.
type TexPlanes struct {
	S, T, Q Plane
}

// TriangleStreamDesc is the rasterizer-ready form of a triangle.
//
// Edge functions are relative to the bounding box start pixel. Attribute
// planes are relative to the attribute origin, which never changes after
// setup, so moving the bounding box start for a tile leaves interpolated
// values untouched.
type TriangleStreamDesc struct {
	BBox Rect

	// OriginX and OriginY are the pixel the attribute planes start at.
	OriginX, OriginY uint16

	// Float selects FloatEdges over Edges.
	Float      bool
	Edges      [3]Edge
	FloatEdges [3]FloatEdge

	Depth Plane
	InvW  Plane
	Color [4]Plane

	// TMUs is the number of valid entries in Tex.
	TMUs int
	Tex  [MaxTMUs]TexPlanes
}

// Words returns the encoded size of the descriptor.
func (d *TriangleStreamDesc) Words() int {
	return Words(d.TMUs)
}

// IntersectsRows reports whether the bounding box overlaps the scanline
// range [startY, endY).
func (d *TriangleStreamDesc) IntersectsRows(startY, endY int) bool {
	return int(d.BBox.StartY) < endY && int(d.BBox.EndY) > startY
}

// IncrementToRow moves a fixed-point descriptor's bounding box start down to
// scanline y by stepping the edge functions. The result walks exactly like
// the original on rows >= y. Float descriptors and rows at or above the
// start are left unchanged.
func (d *TriangleStreamDesc) IncrementToRow(y int) {
	if d.Float || y <= int(d.BBox.StartY) {
		return
	}
	y = min(y, int(d.BBox.EndY))
	dy := int32(y - int(d.BBox.StartY))
	for i := range d.Edges {
		d.Edges[i].Init += d.Edges[i].YInc * dy
	}
	d.BBox.StartY = uint16(y)
}

// Encode writes the descriptor into p, which must hold Words() words.
func (d *TriangleStreamDesc) Encode(p []byte) {
	w := wordWriter{p: p}
	w.put(uint32(d.BBox.StartX) | uint32(d.BBox.StartY)<<16)
	w.put(uint32(d.BBox.EndX) | uint32(d.BBox.EndY)<<16)
	w.put(uint32(d.OriginX) | uint32(d.OriginY)<<16)
	for i := range 3 {
		if d.Float {
			e := d.FloatEdges[i]
			w.putFloat(e.Init, e.XInc, e.YInc)
		} else {
			e := d.Edges[i]
			w.put(uint32(e.Init), uint32(e.XInc), uint32(e.YInc))
		}
	}
	w.putPlane(d.Depth)
	w.putPlane(d.InvW)
	for _, c := range d.Color {
		w.putPlane(c)
	}
	for _, t := range d.Tex[:d.TMUs] {
		w.putPlane(t.S)
		w.putPlane(t.T)
		w.putPlane(t.Q)
	}
}

// ErrDescriptorSize is returned when a payload does not have the size of a
// descriptor.
var ErrDescriptorSize = errors.New("raster: bad triangle descriptor size")

// Decode reads a descriptor from an encoded payload. The number of texture
// coordinate sets is derived from the payload size.
func Decode(p []byte, float bool) (TriangleStreamDesc, error) {
	words := len(p) / 4
	tmus := (words - BaseWords) / TMUWords
	if len(p)%4 != 0 || words < BaseWords || (words-BaseWords)%TMUWords != 0 || tmus > MaxTMUs {
		return TriangleStreamDesc{}, fmt.Errorf("%w: %d bytes", ErrDescriptorSize, len(p))
	}

	r := wordReader{p: p}
	d := TriangleStreamDesc{Float: float, TMUs: tmus}
	v := r.next()
	d.BBox.StartX, d.BBox.StartY = uint16(v), uint16(v>>16)
	v = r.next()
	d.BBox.EndX, d.BBox.EndY = uint16(v), uint16(v>>16)
	v = r.next()
	d.OriginX, d.OriginY = uint16(v), uint16(v>>16)
	for i := range 3 {
		if float {
			d.FloatEdges[i] = FloatEdge{r.nextFloat(), r.nextFloat(), r.nextFloat()}
		} else {
			d.Edges[i] = Edge{int32(r.next()), int32(r.next()), int32(r.next())}
		}
	}
	d.Depth = r.nextPlane()
	d.InvW = r.nextPlane()
	for i := range d.Color {
		d.Color[i] = r.nextPlane()
	}
	for i := range tmus {
		d.Tex[i] = TexPlanes{S: r.nextPlane(), T: r.nextPlane(), Q: r.nextPlane()}
	}
	return d, nil
}

type wordWriter struct {
	p   []byte
	off int
}

func (w *wordWriter) put(vs ...uint32) {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(w.p[w.off:], v)
		w.off += 4
	}
}

func (w *wordWriter) putFloat(vs ...float32) {
	for _, v := range vs {
		w.put(math.Float32bits(v))
	}
}

func (w *wordWriter) putPlane(p Plane) {
	w.putFloat(p.Init, p.XInc, p.YInc)
}

type wordReader struct {
	p   []byte
	off int
}

func (r *wordReader) next() uint32 {
	v := binary.LittleEndian.Uint32(r.p[r.off:])
	r.off += 4
	return v
}

func (r *wordReader) nextFloat() float32 {
	return math.Float32frombits(r.next())
}

func (r *wordReader) nextPlane() Plane {
	return Plane{r.nextFloat(), r.nextFloat(), r.nextFloat()}
}

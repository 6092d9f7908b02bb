package render

import (
	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/transform"
)

// SetElementGlobalContext replaces the viewport, projection, lights and
// the other per-frame vertex state.
func (r *Renderer) SetElementGlobalContext(c *transform.GlobalContext) error {
	if r.offload {
		cmd := &command.SetElementGlobalContext{Context: *c}
		return r.add(func() bool { return r.disp.AddCommand(cmd) })
	}
	if r.closed {
		return ErrClosed
	}
	r.vertex.SetGlobalContext(c)
	return nil
}

// SetElementLocalContext replaces the model view and texture matrices.
func (r *Renderer) SetElementLocalContext(c *transform.LocalContext) error {
	if r.offload {
		cmd := &command.SetElementLocalContext{Context: *c}
		return r.add(func() bool { return r.disp.AddCommand(cmd) })
	}
	if r.closed {
		return ErrClosed
	}
	r.vertex.SetLocalContext(c)
	return nil
}

// SetVertexContext replaces the material.
func (r *Renderer) SetVertexContext(c *transform.VertexContext) error {
	if r.offload {
		cmd := &command.SetVertexContext{Context: *c}
		return r.add(func() bool { return r.disp.AddCommand(cmd) })
	}
	if r.closed {
		return ErrClosed
	}
	r.vertex.SetVertexContext(c)
	return nil
}

// DrawNewElement ends the current element and starts one of mode.
func (r *Renderer) DrawNewElement(mode transform.Mode) error {
	if r.offload {
		return r.add(func() bool { return r.disp.AddCommand(command.DrawNewElement{Mode: mode}) })
	}
	if r.closed {
		return ErrClosed
	}
	return r.vertexErr(r.vertex.DrawNewElement(mode))
}

// PushVertex adds a vertex to the current element.
func (r *Renderer) PushVertex(v *transform.Vertex) error {
	r.stats.Vertices++
	if r.offload {
		cmd := &command.PushVertex{Vertex: *v}
		return r.add(func() bool { return r.disp.AddCommand(cmd) })
	}
	if r.closed {
		return ErrClosed
	}
	return r.vertexErr(r.vertex.PushVertex(v))
}

// EndElement closes the current element; a line loop gets its closing
// segment.
func (r *Renderer) EndElement() error {
	if r.offload {
		return r.add(func() bool {
			return r.disp.AddCommand(command.DrawNewElement{Mode: transform.ModeNone})
		})
	}
	if r.closed {
		return ErrClosed
	}
	return r.vertexErr(r.vertex.Flush())
}

// triangle is the sink of the vertex pipeline.
func (r *Renderer) triangle(v0, v1, v2 *raster.ScreenVertex) bool {
	d, ok := raster.Setup(v0, v1, v2, r.setup)
	if !ok {
		return true
	}
	r.stats.Triangles++
	if err := r.add(func() bool { return r.disp.AddTriangle(&d) }); err != nil {
		r.sinkErr = err
		return false
	}
	return true
}

func (r *Renderer) vertexErr(ok bool) error {
	if ok {
		return nil
	}
	err := r.sinkErr
	r.sinkErr = nil
	if err == nil {
		err = rix.ErrDisplayListFull
	}
	return err
}

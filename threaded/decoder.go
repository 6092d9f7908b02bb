package threaded

import (
	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/dispatch"
)

// decoder re-encodes the commands of an input list into the tile lists.
// Triangle streams are rejected: they only come out of the transform
// pipeline, never into it.
type decoder struct {
	command.Unhandled
	r *Rasterizer
}

func (h *decoder) HandleWriteRegister(c command.WriteRegister) error {
	reg, ok := c.Register()
	if !ok {
		rix.Logger().Warn("threaded: write to unassigned register", "addr", c.Addr)
		return nil
	}
	return h.r.add(func() bool { return h.r.disp.AddRegister(reg) })
}

func (h *decoder) HandleFramebuffer(c command.Framebuffer) error {
	f := dispatch.FramebufferTiles(c)
	return h.r.add(func() bool { return h.r.disp.AddTileCommand(f) })
}

func (h *decoder) HandleFogLUTStream(c *command.FogLUTStream) error {
	return h.r.add(func() bool { return h.r.disp.AddCommand(c) })
}

func (h *decoder) HandleTextureStream(c *command.TextureStream) error {
	return h.r.add(func() bool { return h.r.disp.AddCommand(c) })
}

func (h *decoder) HandleDrawNewElement(c command.DrawNewElement) error {
	return h.r.vertexErr(h.r.vertex.DrawNewElement(c.Mode))
}

func (h *decoder) HandleSetElementGlobalContext(c *command.SetElementGlobalContext) error {
	h.r.vertex.SetGlobalContext(&c.Context)
	return nil
}

func (h *decoder) HandleSetElementLocalContext(c *command.SetElementLocalContext) error {
	h.r.vertex.SetLocalContext(&c.Context)
	return nil
}

func (h *decoder) HandleSetVertexContext(c *command.SetVertexContext) error {
	h.r.vertex.SetVertexContext(&c.Context)
	return nil
}

func (h *decoder) HandlePushVertex(c *command.PushVertex) error {
	return h.r.vertexErr(h.r.vertex.PushVertex(&c.Vertex))
}

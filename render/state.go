package render

import (
	"image/color"

	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/dispatch"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/register"
)

// WriteRegister appends a register write. Registers that depend on the
// tile are rewritten for every tile.
func (r *Renderer) WriteRegister(reg register.Register) error {
	return r.add(func() bool { return r.disp.AddRegister(reg) })
}

// SetFeatureEnable switches the fragment pipeline stages and TMUs on or off.
func (r *Renderer) SetFeatureEnable(f register.FeatureEnable) error {
	return r.WriteRegister(f)
}

// SetFragmentPipeline sets the depth, alpha, blend and logic op state.
func (r *Renderer) SetFragmentPipeline(f register.FragmentPipeline) error {
	return r.WriteRegister(f)
}

// SetStencil sets the stencil test and its operations.
func (r *Renderer) SetStencil(s register.Stencil) error {
	return r.WriteRegister(s)
}

// SetTexEnv sets the texture environment of one TMU.
func (r *Renderer) SetTexEnv(e register.TexEnv) error {
	return r.WriteRegister(e)
}

// SetTexEnvColor sets the constant color of the texture environment of tmu.
func (r *Renderer) SetTexEnvColor(tmu int, c color.RGBA) error {
	return r.WriteRegister(register.TexEnvColor{TMU: tmu, Color: c})
}

// SetFogColor sets the color fragments are fogged towards.
func (r *Renderer) SetFogColor(c color.RGBA) error {
	return r.WriteRegister(register.FogColor{Color: c})
}

// SetBlendColor sets the constant blend color.
func (r *Renderer) SetBlendColor(c color.RGBA) error {
	return r.WriteRegister(register.BlendColor{Color: c})
}

// SetClearColor sets the color Clear writes.
func (r *Renderer) SetClearColor(c color.RGBA) error {
	return r.WriteRegister(register.ColorClear{Color: c})
}

// SetClearDepth sets the depth Clear writes.
func (r *Renderer) SetClearDepth(d uint16) error {
	return r.WriteRegister(register.DepthClear{Depth: d})
}

// SetFogLUT streams a fog table. It is replayed into every list after a
// flush.
func (r *Renderer) SetFogLUT(l fragment.FogLUT) error {
	if err := r.add(func() bool { return r.disp.AddCommand(&command.FogLUTStream{LUT: l}) }); err != nil {
		return err
	}
	r.fog = &l
	return nil
}

// SetScissor sets the scissor box in screen coordinates. The scissor test
// itself is enabled through SetFeatureEnable.
func (r *Renderer) SetScissor(x, y, width, height int) error {
	if err := r.WriteRegister(register.ScissorStart{X: clampCoord(x), Y: clampCoord(y)}); err != nil {
		return err
	}
	return r.WriteRegister(register.ScissorEnd{X: clampCoord(x + width), Y: clampCoord(y + height)})
}

func clampCoord(v int) uint16 {
	return uint16(min(max(v, 0), 0xFFFF))
}

// Clear fills the selected buffers of the color buffer being drawn with
// the clear values. It honors the scissor box and the write masks.
func (r *Renderer) Clear(colorBuf, depthBuf, stencilBuf bool) error {
	flags := command.FramebufferMemset
	if colorBuf {
		flags |= command.FramebufferColor
	}
	if depthBuf {
		flags |= command.FramebufferDepth
	}
	if stencilBuf {
		flags |= command.FramebufferStencil
	}
	if flags == command.FramebufferMemset {
		return nil
	}
	f := dispatch.FramebufferTiles(command.Framebuffer{Flags: flags})
	return r.add(func() bool { return r.disp.AddTileCommand(f) })
}

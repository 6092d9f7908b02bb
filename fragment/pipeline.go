// Package fragment implements the per-fragment stages of the pipeline:
// texturing, fog, alpha, stencil and depth tests, blending, logic ops and
// the masked write to the framebuffer in device memory.
package fragment

import (
	"github.com/gogpu/rix"
	"github.com/gogpu/rix/internal/pixel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
)

// MaxTMUs is the number of texture units the pipeline can run.
const MaxTMUs = register.MaxTMUs

// Stats counts fragment outcomes.
type Stats struct {
	Fragments     uint64
	DepthFailed   uint64
	StencilFailed uint64
	AlphaFailed   uint64
	Written       uint64
}

// Pipeline runs rasterized fragments through the fixed-function stages and
// writes the survivors to device memory. Its state is the register file;
// feed register writes to Apply in display list order.
type Pipeline struct {
	mem []byte
	fb  Framebuffer

	features   register.FeatureEnable
	frag       register.FragmentPipeline
	stencil    register.Stencil
	texEnv     [MaxTMUs]register.TexEnv
	envColor   [MaxTMUs]pixel.Color
	fogColor   pixel.Color
	blendColor pixel.Color
	clearColor pixel.Color
	clearDepth uint16
	fog        FogLUT
	samplers   [MaxTMUs]Sampler

	scissorStart register.XY
	scissorEnd   register.XY
	resolution   register.XY
	yOffset      int

	warnedLogicOp bool
	stats         Stats
}

// NewPipeline returns a pipeline in the reset state drawing into mem.
// pageSize is the texture page size; halfTexel selects the centered
// bilinear kernel.
func NewPipeline(mem []byte, format pixel.Format, pageSize int, halfTexel bool) *Pipeline {
	p := &Pipeline{
		mem:     mem,
		fb:      Framebuffer{Format: format},
		frag:    register.DefaultFragmentPipeline(),
		stencil: register.DefaultStencil(),
	}
	for tmu := range MaxTMUs {
		p.texEnv[tmu] = register.DefaultTexEnv(tmu)
		p.samplers[tmu] = Sampler{PageSize: pageSize, HalfTexel: halfTexel}
	}
	return p
}

// Apply updates the pipeline state with a register write.
func (p *Pipeline) Apply(r register.Register) {
	switch r := r.(type) {
	case register.FeatureEnable:
		p.features = r
	case register.FragmentPipeline:
		p.frag = r
	case register.Stencil:
		p.stencil = r
	case register.TexEnv:
		if r.TMU < MaxTMUs {
			p.texEnv[r.TMU] = r
		}
	case register.TexEnvColor:
		if r.TMU < MaxTMUs {
			p.envColor[r.TMU] = pixel.FromRGBA(r.Color)
		}
	case register.TmuTexture:
		if r.TMU < MaxTMUs {
			p.samplers[r.TMU].Texture = r
		}
	case register.FogColor:
		p.fogColor = pixel.FromRGBA(r.Color)
	case register.BlendColor:
		p.blendColor = pixel.FromRGBA(r.Color)
	case register.ColorClear:
		p.clearColor = pixel.FromRGBA(r.Color)
	case register.DepthClear:
		p.clearDepth = r.Depth
	case register.ScissorStart:
		p.scissorStart = register.XY(r)
	case register.ScissorEnd:
		p.scissorEnd = register.XY(r)
	case register.RenderResolution:
		p.resolution = register.XY(r)
	case register.YOffset:
		p.yOffset = int(r.Y)
	case register.ColorBufferAddress:
		p.fb.Color = r.Addr
	case register.DepthBufferAddress:
		p.fb.Depth = r.Addr
	case register.StencilBufferAddress:
		p.fb.Stencil = r.Addr
	}
}

// SetFogLUT replaces the fog table.
func (p *Pipeline) SetFogLUT(l *FogLUT) { p.fog = *l }

// SetTexturePages binds the page table of the texture on tmu.
func (p *Pipeline) SetTexturePages(tmu int, pages []uint32) {
	if tmu < 0 || tmu >= MaxTMUs {
		return
	}
	p.samplers[tmu].Pages = append(p.samplers[tmu].Pages[:0], pages...)
}

// SetFormat sets the color buffer format.
func (p *Pipeline) SetFormat(f pixel.Format) { p.fb.Format = f }

// Framebuffer returns the current buffer addresses.
func (p *Pipeline) Framebuffer() Framebuffer { return p.fb }

// Features returns the current feature enables.
func (p *Pipeline) Features() register.FeatureEnable { return p.features }

// Stats returns the fragment counters.
func (p *Pipeline) Stats() Stats { return p.stats }

// ConfigureRasterizer copies the resolution, tile window and scissor box into
// r. The render resolution holds the width and the number of lines of the
// current tile.
func (p *Pipeline) ConfigureRasterizer(r *raster.Rasterizer) {
	lines := int(p.resolution.Y)
	r.SetResolution(int(p.resolution.X), p.yOffset+lines)
	r.SetYOffset(p.yOffset, lines)
	r.SetScissor(p.features.Scissor,
		int(p.scissorStart.X), int(p.scissorStart.Y),
		int(p.scissorEnd.X), int(p.scissorEnd.Y))
}

// Process runs one fragment through the pipeline and reports whether it was
// written. The order is depth test, stencil test and update, texturing,
// alpha test, fog, blend or logic op, masked writeback.
func (p *Pipeline) Process(f *raster.Fragment, a *raster.Attributes) bool {
	p.stats.Fragments++
	i := f.Index

	depth := pixel.Depth16(a.Depth)
	depthPass := true
	if p.features.DepthTest {
		depthPass = Compare(p.frag.DepthFunc, depth, p.readDepth(i))
	}
	stencilPass := true
	if p.features.Stencil {
		old := p.readStencil(i)
		var s uint8
		stencilPass, s = stencilTest(&p.stencil, old, depthPass)
		wm := p.stencil.WriteMask & register.StencilMax
		p.writeStencil(i, old&^wm|s&wm)
	}
	if !stencilPass {
		p.stats.StencilFailed++
		return false
	}
	if !depthPass {
		p.stats.DepthFailed++
		return false
	}

	primary := pixel.Color(a.Color).Clamp()
	c := primary
	for tmu := range MaxTMUs {
		if !p.features.TMU[tmu] {
			continue
		}
		tc := a.Tex[tmu]
		in := CombineInputs{
			Texture:  p.samplers[tmu].Sample(p.mem, tc.S, tc.T),
			Constant: p.envColor[tmu],
			Primary:  primary,
			Previous: c,
		}
		c = Combine(&p.texEnv[tmu], &in)
	}

	if p.features.AlphaTest && !Compare(p.frag.AlphaFunc, pixel.Quantize(c[3]), p.frag.AlphaRef) {
		p.stats.AlphaFailed++
		return false
	}

	if p.features.Fog {
		k := p.fog.Factor(a.W)
		for ch := range 3 {
			c[ch] = c[ch]*(1-k) + p.fogColor[ch]*k
		}
	}

	stored := p.readColor(i)
	dst := pixel.Unpack(p.fb.Format, stored)
	switch {
	case p.features.LogicOp:
		if p.features.Blend && !p.warnedLogicOp {
			p.warnedLogicOp = true
			rix.Logger().Warn("fragment: logic op and blending both enabled, using logic op")
		}
		c = LogicOp(p.frag.LogicOp, c, pixel.FromRGBA(dst))
	case p.features.Blend:
		c = Blend(c, pixel.FromRGBA(dst), p.blendColor, p.frag.BlendSrc, p.frag.BlendDst)
	}

	src := c.RGBA()
	mask := p.frag.ColorMask
	out := dst
	if mask[0] {
		out.R = src.R
	}
	if mask[1] {
		out.G = src.G
	}
	if mask[2] {
		out.B = src.B
	}
	if mask[3] {
		out.A = src.A
	}
	p.writeColor(i, pixel.Pack(p.fb.Format, out))
	if p.features.DepthTest && p.frag.DepthMask {
		p.writeDepth(i, depth)
	}
	p.stats.Written++
	return true
}

// Clear fills the first n pixels of the selected tile buffers with the clear
// values. Clears honor the scissor box when scissoring is enabled, the color
// mask, the depth mask and the stencil write mask.
func (p *Pipeline) Clear(color, depth, stencil bool, n int) {
	width := max(int(p.resolution.X), 1)
	cc := p.clearColor.RGBA()
	sc := p.stencil.Clear & register.StencilMax
	wm := p.stencil.WriteMask & register.StencilMax
	mask := p.frag.ColorMask

	for i := range n {
		if p.features.Scissor {
			x, y := i%width, p.yOffset+i/width
			if x < int(p.scissorStart.X) || x >= int(p.scissorEnd.X) ||
				y < int(p.scissorStart.Y) || y >= int(p.scissorEnd.Y) {
				continue
			}
		}
		if color {
			out := cc
			if mask != [4]bool{true, true, true, true} {
				out = pixel.Unpack(p.fb.Format, p.readColor(i))
				if mask[0] {
					out.R = cc.R
				}
				if mask[1] {
					out.G = cc.G
				}
				if mask[2] {
					out.B = cc.B
				}
				if mask[3] {
					out.A = cc.A
				}
			}
			p.writeColor(i, pixel.Pack(p.fb.Format, out))
		}
		if depth && p.frag.DepthMask {
			p.writeDepth(i, p.clearDepth)
		}
		if stencil {
			p.writeStencil(i, p.readStencil(i)&^wm|sc&wm)
		}
	}
}

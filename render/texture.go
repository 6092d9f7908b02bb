package render

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/texture"
)

// CreateTexture reserves a texture id.
func (r *Renderer) CreateTexture() texture.ID {
	return r.textures.CreateTexture()
}

// UpdateTexture stages a new image for id. Pages are allocated now, the
// data is written at the next flush. Bindings made before the update keep
// the old page table until UseTexture is called again.
func (r *Renderer) UpdateTexture(id texture.ID, obj *texture.Object) error {
	if r.closed {
		return ErrClosed
	}
	return r.textures.UpdateTexture(id, obj)
}

// UseTexture binds id to tmu for the following triangles.
func (r *Renderer) UseTexture(tmu int, id texture.ID) error {
	if tmu < 0 || tmu >= r.cfg.TMUCount {
		return fmt.Errorf("render: tmu %d of %d: %w", tmu, r.cfg.TMUCount, rix.ErrInvalidConfig)
	}
	b, err := r.textures.UseTexture(id, tmu)
	if err != nil {
		return err
	}
	if err := r.WriteRegister(b.Texture); err != nil {
		return err
	}
	stream := &command.TextureStream{TMU: tmu, Pages: b.Pages}
	if err := r.add(func() bool { return r.disp.AddCommand(stream) }); err != nil {
		return err
	}
	r.bound[tmu], r.boundID[tmu] = &b, id
	return nil
}

// DeleteTexture releases the pages of id. A binding of id stops being
// replayed into new lists.
func (r *Renderer) DeleteTexture(id texture.ID) error {
	if err := r.textures.DeleteTexture(id); err != nil {
		return err
	}
	for tmu := range r.bound {
		if r.bound[tmu] != nil && r.boundID[tmu] == id {
			r.bound[tmu], r.boundID[tmu] = nil, 0
		}
	}
	return nil
}

// SetTextureWrap sets the wrap modes of id. It takes effect with the next
// UseTexture.
func (r *Renderer) SetTextureWrap(id texture.ID, s, t gputypes.AddressMode) error {
	return r.textures.SetWrap(id, s, t)
}

// SetTextureFilter sets the filter of id. It takes effect with the next
// UseTexture.
func (r *Renderer) SetTextureFilter(id texture.ID, f gputypes.FilterMode) error {
	return r.textures.SetFilter(id, f)
}

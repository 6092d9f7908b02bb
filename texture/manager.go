package texture

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/register"
)

// ID names a texture of a Manager. The zero ID is never assigned.
type ID uint32

// Writer stores bytes in device memory.
type Writer interface {
	WriteToDeviceMemory(data []byte, addr uint32) error
}

// Binding is what a TMU needs to sample a texture: the texture register and
// the absolute device addresses of its pages.
type Binding struct {
	Texture register.TmuTexture
	Pages   []uint32
}

type entry struct {
	obj    *Object
	pages  []int
	wrapS  gputypes.AddressMode
	wrapT  gputypes.AddressMode
	filter gputypes.FilterMode
	dirty  bool
}

// Manager allocates texture pages from a fixed pool and stages texture data
// until the next Upload.
//
// Allocation is all or nothing: when the pool cannot hold a texture, the
// call fails with rix.ErrOutOfPages and neither the pool nor the texture
// previously bound to that id change.
type Manager struct {
	mu sync.Mutex

	base     uint32
	pageSize int
	pages    int
	maxSize  int

	// free is a stack; the lowest page index is on top.
	free     []int
	textures map[ID]*entry
	next     ID

	// dirty lists textures with staged data in update order.
	dirty []ID
}

// NewManager creates a manager for the texture pool described by cfg,
// starting at device address base.
func NewManager(cfg rix.Config, base uint32) *Manager {
	m := &Manager{
		base:     base,
		pageSize: cfg.TexturePageSize,
		pages:    cfg.TexturePageCount,
		maxSize:  cfg.MaxTextureSize,
		free:     make([]int, cfg.TexturePageCount),
		textures: make(map[ID]*entry),
		next:     1,
	}
	for i := range m.free {
		m.free[i] = cfg.TexturePageCount - 1 - i
	}
	return m
}

// CreateTexture reserves a new texture id without any pages.
func (m *Manager) CreateTexture() ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.textures[id] = &entry{
		wrapS:  gputypes.AddressModeRepeat,
		wrapT:  gputypes.AddressModeRepeat,
		filter: gputypes.FilterModeNearest,
	}
	return id
}

// UpdateTexture replaces the image of texture id. The page allocation grows
// or shrinks to the size of obj. The data reaches device memory on the next
// Upload.
func (m *Manager) UpdateTexture(id ID, obj *Object) error {
	if obj == nil || len(obj.Levels) == 0 {
		return fmt.Errorf("%w: texture %d: no levels", ErrTextureSize, id)
	}
	if obj.Width() > m.maxSize || obj.Height() > m.maxSize {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTextureSize, obj.Width(), obj.Height(), m.maxSize)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", rix.ErrUnknownTexture, id)
	}
	need := obj.Pages(m.pageSize)
	if need > rix.MaxTexturePages {
		return fmt.Errorf("%w: texture %d needs %d pages, a page table holds %d",
			ErrTextureSize, id, need, rix.MaxTexturePages)
	}
	have := len(e.pages)
	switch {
	case need > have:
		extra := need - have
		if extra > len(m.free) {
			rix.Logger().Warn("texture: pool exhausted",
				"texture", id, "need", extra, "free", len(m.free))
			return fmt.Errorf("%w: texture %d needs %d more pages, %d free",
				rix.ErrOutOfPages, id, extra, len(m.free))
		}
		n := len(m.free) - extra
		alloc := m.free[n:]
		slices.Reverse(alloc)
		e.pages = append(e.pages, alloc...)
		m.free = m.free[:n]
	case need < have:
		m.release(e.pages[need:])
		e.pages = e.pages[:need]
	}

	e.obj = obj
	if !e.dirty {
		e.dirty = true
		m.dirty = append(m.dirty, id)
	}
	rix.Logger().Debug("texture: staged",
		"texture", id, "size", fmt.Sprintf("%dx%d", obj.Width(), obj.Height()),
		"levels", len(obj.Levels), "pages", need)
	return nil
}

// DeleteTexture returns the pages of texture id to the pool.
func (m *Manager) DeleteTexture(id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", rix.ErrUnknownTexture, id)
	}
	m.release(e.pages)
	delete(m.textures, id)
	if e.dirty {
		m.dirty = slices.DeleteFunc(m.dirty, func(d ID) bool { return d == id })
	}
	return nil
}

// SetWrap sets the address modes of texture id.
func (m *Manager) SetWrap(id ID, s, t gputypes.AddressMode) error {
	return m.update(id, func(e *entry) {
		e.wrapS, e.wrapT = s, t
	})
}

// SetFilter sets the filter of texture id.
func (m *Manager) SetFilter(id ID, f gputypes.FilterMode) error {
	return m.update(id, func(e *entry) {
		e.filter = f
	})
}

func (m *Manager) update(id ID, f func(*entry)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", rix.ErrUnknownTexture, id)
	}
	f(e)
	return nil
}

// UseTexture returns the binding of texture id to tmu.
func (m *Manager) UseTexture(id ID, tmu int) (Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.textures[id]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %d", rix.ErrUnknownTexture, id)
	}
	if e.obj == nil {
		return Binding{}, fmt.Errorf("%w: %d has no image", rix.ErrUnknownTexture, id)
	}
	return Binding{
		Texture: register.TmuTexture{
			TMU:    tmu,
			Width:  e.obj.Width(),
			Height: e.obj.Height(),
			WrapS:  e.wrapS,
			WrapT:  e.wrapT,
			Filter: e.filter,
			Format: e.obj.Format,
		},
		Pages: m.addresses(e.pages),
	}, nil
}

// PageTable returns the device addresses of the pages of texture id.
func (m *Manager) PageTable(id ID) ([]uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.textures[id]
	if !ok {
		return nil, false
	}
	return m.addresses(e.pages), true
}

// FreePages returns the number of unallocated pages.
func (m *Manager) FreePages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.free)
}

// Pending reports whether staged data waits for Upload.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty) > 0
}

// Upload writes the staged data of every texture updated since the last
// Upload, once per texture however often it was updated. A texture whose
// write fails stays staged.
func (m *Manager) Upload(w Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.dirty) > 0 {
		id := m.dirty[0]
		e := m.textures[id]
		if err := m.write(w, e); err != nil {
			return fmt.Errorf("texture %d: %w", id, err)
		}
		e.dirty = false
		m.dirty = m.dirty[1:]
	}
	m.dirty = m.dirty[:0]
	return nil
}

func (m *Manager) write(w Writer, e *entry) error {
	page := 0
	for i := range e.obj.Levels {
		data := e.obj.Levels[i].Bytes()
		for off := 0; off < len(data); off += m.pageSize {
			chunk := data[off:min(off+m.pageSize, len(data))]
			if err := w.WriteToDeviceMemory(chunk, m.address(e.pages[page])); err != nil {
				return err
			}
			page++
		}
	}
	rix.Logger().Debug("texture: uploaded", "pages", page)
	return nil
}

func (m *Manager) release(pages []int) {
	for i := len(pages) - 1; i >= 0; i-- {
		m.free = append(m.free, pages[i])
	}
}

func (m *Manager) address(page int) uint32 {
	return m.base + uint32(page*m.pageSize)
}

func (m *Manager) addresses(pages []int) []uint32 {
	out := make([]uint32, len(pages))
	for i, p := range pages {
		out[i] = m.address(p)
	}
	return out
}

package dispatch

import (
	"image/color"
	"testing"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/internal/parallel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
)

const (
	testRes  = 64
	testTile = 16 // lines per tile with 4 tiles
)

func newTestDispatcher(t *testing.T, tiles, size int, arm ArmFunc) *Dispatcher {
	t.Helper()
	cfg := rix.DefaultConfig()
	cfg.ResolutionX, cfg.ResolutionY = testRes, testRes
	cfg.Tiles = tiles
	cfg.DisplayListSize = size

	lists := func() Lists {
		l := make(Lists, tiles)
		for i := range l {
			l[i] = displaylist.New(make([]byte, size))
		}
		return l
	}
	d, err := New(cfg, lists(), lists(), arm)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

// tileList decodes one display list.
type tileList struct {
	command.Unhandled
	regs      map[register.Address][]uint32
	triangles []raster.TriangleStreamDesc
	other     int
}

func decode(t *testing.T, dl *displaylist.DisplayList) *tileList {
	t.Helper()
	l := &tileList{regs: make(map[register.Address][]uint32)}
	dl.Rewind()
	if err := command.Dispatch(dl, l); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	return l
}

func (l *tileList) HandleWriteRegister(c command.WriteRegister) error {
	l.regs[c.Addr] = append(l.regs[c.Addr], c.Value)
	return nil
}

func (l *tileList) HandleTriangleStream(c *command.TriangleStream) error {
	l.triangles = append(l.triangles, c.Desc)
	return nil
}

func (l *tileList) HandleFogLUTStream(*command.FogLUTStream) error {
	l.other++
	return nil
}

func (l *tileList) HandleFramebuffer(command.Framebuffer) error {
	l.other++
	return nil
}

// last returns the value of the last write to addr.
func (l *tileList) last(t *testing.T, addr register.Address) uint32 {
	t.Helper()
	v := l.regs[addr]
	if len(v) == 0 {
		t.Fatalf("no write to %v", addr)
	}
	return v[len(v)-1]
}

func testTriangle(t *testing.T, float bool) raster.TriangleStreamDesc {
	t.Helper()
	v0 := raster.ScreenVertex{X: 3, Y: 2, Z: 0.5, InvW: 1, Color: [4]float32{1, 0, 0, 1}}
	v1 := raster.ScreenVertex{X: 60, Y: 11, Z: 0.5, InvW: 1, Color: [4]float32{0, 1, 0, 1}}
	v2 := raster.ScreenVertex{X: 21, Y: 40, Z: 0.5, InvW: 1, Color: [4]float32{0, 0, 1, 1}}
	d, ok := raster.Setup(&v0, &v1, &v2, raster.SetupConfig{ResX: testRes, ResY: testRes, Float: float})
	if !ok {
		t.Fatal("Setup rejected the test triangle")
	}
	return d
}

// =============================================================================
// Arming
// =============================================================================

func TestNew_ArmsTileRegisters(t *testing.T) {
	d := newTestDispatcher(t, 4, 4096, nil)
	if got := len(d.Tiles()); got != 4 {
		t.Fatalf("len(Tiles()) = %d, want 4", got)
	}
	if !d.Empty() {
		t.Error("freshly armed dispatcher is not empty")
	}
	for i, tile := range d.Tiles() {
		l := decode(t, d.List(i))
		if got := l.last(t, register.AddrYOffset); got != uint32(tile.StartY) {
			t.Errorf("tile %d: YOffset = %d, want %d", i, got, tile.StartY)
		}
		res := l.last(t, register.AddrRenderResolution)
		if want := (register.RenderResolution{X: testRes, Y: testTile}).Value(); res != want {
			t.Errorf("tile %d: RenderResolution = %#x, want %#x", i, res, want)
		}
	}
}

func TestNew_TooFewLists(t *testing.T) {
	cfg := rix.DefaultConfig()
	cfg.Tiles = 2
	one := Lists{displaylist.New(make([]byte, 1024))}
	if _, err := New(cfg, one, one, nil); err == nil {
		t.Error("New accepted one list per slot for two tiles")
	}
}

func TestDispatcher_ArmFunc(t *testing.T) {
	arm := func(d *Dispatcher, tile parallel.Tile) bool {
		return command.Append(d.List(tile.Index), command.Framebuffer{Flags: command.FramebufferLoad})
	}
	d := newTestDispatcher(t, 2, 4096, arm)
	for i := range d.Tiles() {
		if got := decode(t, d.List(i)).other; got != 1 {
			t.Errorf("tile %d: %d armed framebuffer commands, want 1", i, got)
		}
	}
	if !d.Empty() {
		t.Error("armed commands count as content")
	}
}

// =============================================================================
// Tile registers
// =============================================================================

func TestDispatcher_BufferAddresses(t *testing.T) {
	d := newTestDispatcher(t, 4, 4096, nil)
	d.AddRegister(register.ColorBufferAddress{Addr: 0x10000})
	d.AddRegister(register.DepthBufferAddress{Addr: 0x20000})
	d.AddRegister(register.StencilBufferAddress{Addr: 0x30000})

	for i, tile := range d.Tiles() {
		l := decode(t, d.List(i))
		px := uint32(tile.StartY * testRes)
		tests := []struct {
			addr register.Address
			want uint32
		}{
			{register.AddrColorBufferAddress, 0x10000 + 2*px},
			{register.AddrDepthBufferAddress, 0x20000 + 2*px},
			{register.AddrStencilBufferAddress, 0x30000 + px},
		}
		for _, tt := range tests {
			if got := l.last(t, tt.addr); got != tt.want {
				t.Errorf("tile %d: %v = %#x, want %#x", i, tt.addr, got, tt.want)
			}
		}
	}
}

func TestDispatcher_ScissorClippedToTile(t *testing.T) {
	d := newTestDispatcher(t, 4, 4096, nil)
	d.AddRegister(register.ScissorStart{X: 4, Y: 10})
	d.AddRegister(register.ScissorEnd{X: 30, Y: 40})

	tests := []struct {
		start, end register.XY
	}{
		{register.XY{X: 4, Y: 10}, register.XY{X: 30, Y: 16}},
		{register.XY{X: 4, Y: 16}, register.XY{X: 30, Y: 32}},
		{register.XY{X: 4, Y: 32}, register.XY{X: 30, Y: 40}},
		{register.XY{X: 4, Y: 48}, register.XY{X: 30, Y: 48}},
	}
	for i, tt := range tests {
		l := decode(t, d.List(i))
		start := l.last(t, register.AddrScissorStart)
		end := l.last(t, register.AddrScissorEnd)
		if want := register.ScissorStart(tt.start).Value(); start != want {
			t.Errorf("tile %d: ScissorStart = %#x, want %#x", i, start, want)
		}
		if want := register.ScissorEnd(tt.end).Value(); end != want {
			t.Errorf("tile %d: ScissorEnd = %#x, want %#x", i, end, want)
		}
	}
}

func TestDispatcher_PlainRegisterToAllTiles(t *testing.T) {
	d := newTestDispatcher(t, 3, 4096, nil)
	s := register.DefaultStencil()
	s.Ref = 5
	if !d.AddRegister(s) {
		t.Fatal("AddRegister failed")
	}
	for i := range d.Tiles() {
		if got := decode(t, d.List(i)).last(t, register.AddrStencil); got != s.Value() {
			t.Errorf("tile %d: Stencil = %#x, want %#x", i, got, s.Value())
		}
	}
	if d.Empty() {
		t.Error("Empty() after AddRegister")
	}
}

// =============================================================================
// Triangles
// =============================================================================

func TestDispatcher_AddTriangleOnlyIntersectingTiles(t *testing.T) {
	for _, float := range []bool{false, true} {
		d := newTestDispatcher(t, 4, 4096, nil)
		desc := testTriangle(t, float)
		if !d.AddTriangle(&desc) {
			t.Fatal("AddTriangle failed")
		}
		for i, tile := range d.Tiles() {
			got := len(decode(t, d.List(i)).triangles)
			want := 0
			if desc.IntersectsRows(tile.StartY, tile.EndY()) {
				want = 1
			}
			if got != want {
				t.Errorf("float=%v tile %d: %d triangles, want %d", float, i, got, want)
			}
		}
		if got := len(decode(t, d.List(3)).triangles); got != 0 {
			t.Errorf("float=%v: triangle ending above row 40 reached the last tile", float)
		}
	}
}

func TestDispatcher_IncrementedWalkMatchesFullWalk(t *testing.T) {
	d := newTestDispatcher(t, 4, 4096, nil)
	desc := testTriangle(t, false)
	d.AddTriangle(&desc)

	want := map[[2]int]bool{}
	raster.NewRasterizer(testRes, testRes).Walk(&desc, func(f raster.Fragment) {
		want[[2]int{f.X, f.Y}] = true
	})

	got := map[[2]int]bool{}
	for i, tile := range d.Tiles() {
		r := raster.NewRasterizer(testRes, tile.EndY())
		r.SetYOffset(tile.StartY, tile.Lines)
		for _, tri := range decode(t, d.List(i)).triangles {
			if tile.StartY > int(desc.BBox.StartY) && int(tri.BBox.StartY) != tile.StartY {
				t.Errorf("tile %d: bounding box starts at row %d, want %d", i, tri.BBox.StartY, tile.StartY)
			}
			r.Walk(&tri, func(f raster.Fragment) {
				if !tile.Contains(f.Y) {
					t.Errorf("tile %d: fragment on row %d", i, f.Y)
				}
				if got[[2]int{f.X, f.Y}] {
					t.Errorf("pixel (%d,%d) emitted twice", f.X, f.Y)
				}
				got[[2]int{f.X, f.Y}] = true
				if a, b := tri.Interpolate(f.X, f.Y), desc.Interpolate(f.X, f.Y); a != b {
					t.Errorf("(%d,%d): attributes %+v, want %+v", f.X, f.Y, a, b)
				}
			})
		}
	}
	if len(got) != len(want) {
		t.Fatalf("tiled walk covers %d pixels, full walk %d", len(got), len(want))
	}
	for p := range want {
		if !got[p] {
			t.Errorf("pixel %v missing from tiled walk", p)
		}
	}
}

func TestDispatcher_AddTriangleFullTile(t *testing.T) {
	d := newTestDispatcher(t, 4, 1024, nil)
	desc := testTriangle(t, false)
	for d.AddTriangle(&desc) {
	}
	sizes := make([]int, 4)
	for i := range sizes {
		sizes[i] = d.List(i).Size()
	}
	if d.AddTriangle(&desc) {
		t.Fatal("AddTriangle succeeded on a full list")
	}
	for i := range sizes {
		if got := d.List(i).Size(); got != sizes[i] {
			t.Errorf("tile %d: size %d after failed AddTriangle, want %d", i, got, sizes[i])
		}
	}
	// The last tile never received a triangle.
	small := command.NewWriteRegister(register.YOffset{})
	if d.List(3).FreeSpace() < command.Size(small) {
		t.Error("untouched tile filled up")
	}
}

// =============================================================================
// Atomic appends
// =============================================================================

func TestDispatcher_AddCommandAtomic(t *testing.T) {
	d := newTestDispatcher(t, 4, 1024, nil)
	desc := testTriangle(t, false)
	for d.AddTriangle(&desc) {
	}
	sizes := make([]int, 4)
	for i := range sizes {
		sizes[i] = d.List(i).Size()
	}

	// A fog table fits the untouched last tile but not the full ones.
	fog := &command.FogLUTStream{}
	if d.List(3).FreeSpace() < command.Size(fog) {
		t.Fatal("test setup: last tile has no room for a fog table")
	}
	if d.AddCommand(fog) {
		t.Fatal("AddCommand succeeded with a full tile")
	}
	for i := range sizes {
		if got := d.List(i).Size(); got != sizes[i] {
			t.Errorf("tile %d: size %d after failed AddCommand, want %d", i, got, sizes[i])
		}
	}
}

func TestDispatcher_AddCommandRollsBack(t *testing.T) {
	d := newTestDispatcher(t, 4, 1024, nil)
	for command.Append(d.List(3), command.NoOp{}) {
	}
	sizes := make([]int, 4)
	for i := range sizes {
		sizes[i] = d.List(i).Size()
	}

	// The first three tiles take the fog table before the last one refuses.
	if d.AddCommand(&command.FogLUTStream{}) {
		t.Fatal("AddCommand succeeded with a full last tile")
	}
	for i := range sizes {
		if got := d.List(i).Size(); got != sizes[i] {
			t.Errorf("tile %d: size %d after failed AddCommand, want %d", i, got, sizes[i])
		}
	}
}

func TestDispatcher_AddTileCommand(t *testing.T) {
	d := newTestDispatcher(t, 4, 4096, nil)
	ok := d.AddTileCommand(func(tile parallel.Tile, tiles, resX, resY int) command.Command {
		if tile.Index != tiles-1 {
			return nil
		}
		return command.Framebuffer{Flags: command.FramebufferSwap, Size: uint32(resX * resY)}
	})
	if !ok {
		t.Fatal("AddTileCommand failed")
	}
	for i := range d.Tiles() {
		want := 0
		if i == 3 {
			want = 1
		}
		if got := decode(t, d.List(i)).other; got != want {
			t.Errorf("tile %d: %d framebuffer commands, want %d", i, got, want)
		}
	}
}

func TestFramebufferTiles(t *testing.T) {
	const resX = 32
	tests := []struct {
		name     string
		flags    command.FramebufferFlags
		wantMid  bool
		wantLast command.FramebufferFlags
	}{
		{"swap only", command.FramebufferSwap | command.FramebufferVSync, false,
			command.FramebufferSwap | command.FramebufferVSync},
		{"commit and swap", command.FramebufferCommit | command.FramebufferSwap, true,
			command.FramebufferCommit | command.FramebufferSwap},
		{"clear", command.FramebufferMemset | command.FramebufferColor, true,
			command.FramebufferMemset | command.FramebufferColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FramebufferTiles(command.Framebuffer{Flags: tt.flags, DisplayAddress: 0x100})

			mid := f(parallel.Tile{Index: 0, Lines: 7}, 3, resX, 24)
			if (mid != nil) != tt.wantMid {
				t.Fatalf("first tile command = %v, want present %v", mid, tt.wantMid)
			}
			if mid != nil {
				fb := mid.(command.Framebuffer)
				if fb.Flags.Has(command.FramebufferSwap) || fb.Flags.Has(command.FramebufferVSync) {
					t.Errorf("first tile flags %#x carry the swap", fb.Flags)
				}
				if fb.Size != 7*resX {
					t.Errorf("first tile size = %d, want %d", fb.Size, 7*resX)
				}
			}

			last := f(parallel.Tile{Index: 2, StartY: 14, Lines: 10}, 3, resX, 24).(command.Framebuffer)
			if last.Flags != tt.wantLast || last.Size != 10*resX || last.DisplayAddress != 0x100 {
				t.Errorf("last tile = %+v", last)
			}
		})
	}
}

// =============================================================================
// Swap
// =============================================================================

func TestDispatcher_SwapRearms(t *testing.T) {
	d := newTestDispatcher(t, 2, 4096, nil)
	back := d.BackIndex()
	d.AddRegister(register.ColorBufferAddress{Addr: 0x8000})
	desc := testTriangle(t, false)
	d.AddTriangle(&desc)

	if !d.Swap() {
		t.Fatal("Swap failed to re-arm")
	}
	if d.BackIndex() == back {
		t.Error("BackIndex unchanged after Swap")
	}
	if !d.Empty() {
		t.Error("new back lists are not empty")
	}
	if got := len(decode(t, d.FrontList(0)).triangles); got != 1 {
		t.Errorf("front list holds %d triangles, want 1", got)
	}

	// The color address survives the swap.
	for i, tile := range d.Tiles() {
		l := decode(t, d.List(i))
		if len(l.triangles) != 0 {
			t.Errorf("tile %d: re-armed list holds triangles", i)
		}
		want := uint32(0x8000 + 2*tile.StartY*testRes)
		if got := l.last(t, register.AddrColorBufferAddress); got != want {
			t.Errorf("tile %d: color address %#x, want %#x", i, got, want)
		}
	}
}

func TestDispatcher_SwapReplaysShadowRegisters(t *testing.T) {
	d := newTestDispatcher(t, 2, 4096, nil)
	fp := register.DefaultFragmentPipeline()
	fp.AlphaRef = 0x40
	d.AddRegister(fp)
	d.AddRegister(register.FogColor{Color: color.RGBA{R: 1, G: 2, B: 3, A: 4}})

	d.Swap()
	for i := range d.Tiles() {
		l := decode(t, d.List(i))
		if got := l.last(t, register.AddrFragmentPipeline); got != fp.Value() {
			t.Errorf("tile %d: FragmentPipeline = %#x, want %#x", i, got, fp.Value())
		}
		if _, ok := l.regs[register.AddrFogColor]; !ok {
			t.Errorf("tile %d: fog color not replayed", i)
		}
	}
	if r, ok := d.Register(register.AddrFragmentPipeline); !ok || r != fp {
		t.Errorf("Register(FragmentPipeline) = %v, %v", r, ok)
	}
	if _, ok := d.Register(register.AddrStencil); ok {
		t.Error("Register reports a stencil value that was never written")
	}
}

func TestDispatcher_BufferIndex(t *testing.T) {
	d := newTestDispatcher(t, 3, 1024, nil)
	tests := []struct{ slot, tile, want int }{
		{0, 0, 0},
		{0, 2, 2},
		{1, 0, 3},
		{1, 2, 5},
	}
	for _, tt := range tests {
		if got := d.BufferIndex(tt.slot, tt.tile); got != tt.want {
			t.Errorf("BufferIndex(%d, %d) = %d, want %d", tt.slot, tt.tile, got, tt.want)
		}
	}
}

package command

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
	"github.com/gogpu/rix/transform"
)

// recorder collects every command it is handed.
type recorder struct {
	cmds []Command
}

func (r *recorder) add(c Command) error {
	r.cmds = append(r.cmds, c)
	return nil
}

func (r *recorder) HandleWriteRegister(c WriteRegister) error { return r.add(c) }
func (r *recorder) HandleFramebuffer(c Framebuffer) error { return r.add(c) }
func (r *recorder) HandleTriangleStream(c *TriangleStream) error { return r.add(c) }
func (r *recorder) HandleFogLUTStream(c *FogLUTStream) error { return r.add(c) }
func (r *recorder) HandleTextureStream(c *TextureStream) error { return r.add(c) }
func (r *recorder) HandleDrawNewElement(c DrawNewElement) error { return r.add(c) }
func (r *recorder) HandleSetVertexContext(c *SetVertexContext) error { return r.add(c) }
func (r *recorder) HandlePushVertex(c *PushVertex) error { return r.add(c) }
func (r *recorder) HandleSetElementLocalContext(c *SetElementLocalContext) error {
	return r.add(c)
}
func (r *recorder) HandleSetElementGlobalContext(c *SetElementGlobalContext) error {
	return r.add(c)
}

// registersOnly executes register writes and nothing else.
type registersOnly struct {
	Unhandled
	n int
}

func (r *registersOnly) HandleWriteRegister(WriteRegister) error {
	r.n++
	return nil
}

func testTriangle(tb testing.TB, float bool) raster.TriangleStreamDesc {
	tb.Helper()
	v0 := raster.ScreenVertex{X: 1, Y: 1, Z: 0.5, InvW: 1, Color: [4]float32{1, 0, 0, 1}}
	v1 := raster.ScreenVertex{X: 30, Y: 4, Z: 0.25, InvW: 0.5, Color: [4]float32{0, 1, 0, 1}}
	v2 := raster.ScreenVertex{X: 12, Y: 40, Z: 0.75, InvW: 0.25, Color: [4]float32{0, 0, 1, 1}}
	v1.Tex[0] = [4]float32{1, 0, 0, 1}
	v2.Tex[0] = [4]float32{0, 1, 0, 1}
	d, ok := raster.Setup(&v0, &v1, &v2, raster.SetupConfig{ResX: 64, ResY: 64, Float: float, TMUs: 1})
	if !ok {
		tb.Fatal("Setup rejected the test triangle")
	}
	return d
}

func allCommands(t *testing.T) []Command {
	g := transform.DefaultGlobalContext(64, 64)
	g.Lighting = true
	g.CullMode = gputypes.CullModeBack
	g.Projection = transform.Perspective(1, 1, 0.1, 100)
	l := transform.DefaultLocalContext()
	l.ModelView = transform.Translate(0, 0, -5)
	v := transform.DefaultVertexContext()
	v.ColorMaterial = true

	return []Command{
		NoOp{},
		NewWriteRegister(register.DefaultStencil()),
		NewWriteRegister(register.ScissorEnd{X: 640, Y: 480}),
		Framebuffer{Flags: FramebufferMemset | FramebufferColor | FramebufferDepth, Size: 640 * 60},
		Framebuffer{Flags: FramebufferSwap | FramebufferVSync, DisplayAddress: 0x1000},
		&TriangleStream{Desc: testTriangle(t, false)},
		&TriangleStream{Desc: testTriangle(t, true)},
		&FogLUTStream{LUT: fragment.NewFogLUT(fragment.FogExp, 0, 0, 0.05)},
		&TextureStream{TMU: 1, Pages: []uint32{0x40000, 0x41000, 0x44000}},
		&SetElementGlobalContext{Context: g},
		&SetElementLocalContext{Context: l},
		&SetVertexContext{Context: v},
		DrawNewElement{Mode: transform.TriangleFan},
		&PushVertex{Vertex: transform.Vertex{
			Position: transform.V4(1, 2, 3, 1),
			Color:    transform.V4(1, 0.5, 0.25, 1),
			Normal:   transform.V3(0, 0, 1),
		}},
	}
}

// =============================================================================
// Wire format
// =============================================================================

func TestOpcode_PayloadWords(t *testing.T) {
	tests := []struct {
		op   Opcode
		want int
	}{
		{0x0000_0000, 0},
		{0x1000_0013, 1},
		{0x2000_00FF, 2},
		{0x3001_0027, 39},
		{0x4000_0042, 66},
		{0x5001_0003, 3},
		{0xB000_0001, 1},
		{0xF000_0013, 19},
	}
	for _, tt := range tests {
		got, err := tt.op.PayloadWords()
		if err != nil || got != tt.want {
			t.Errorf("%v.PayloadWords() = %d, %v, want %d", tt.op, got, err, tt.want)
		}
	}

	for f := uint32(0x6); f <= 0xA; f++ {
		op := Opcode(f << 28)
		if _, err := op.PayloadWords(); !errors.Is(err, rix.ErrUnknownOpcode) {
			t.Errorf("family %#x: err = %v, want ErrUnknownOpcode", f, err)
		}
	}
}

func TestCommand_Opcodes(t *testing.T) {
	tests := []struct {
		cmd  Command
		want Opcode
	}{
		{NoOp{}, 0},
		{WriteRegister{Addr: register.AddrStencil, Value: 1}, 0x1000_0004},
		{Framebuffer{Flags: FramebufferMemset | FramebufferColor | FramebufferDepth}, 0x2000_0032},
		{&TextureStream{TMU: 1, Pages: make([]uint32, 3)}, 0x5001_0003},
		{&FogLUTStream{}, 0x4000_0042},
		{DrawNewElement{Mode: transform.Triangles}, 0xB000_0001},
	}
	for _, tt := range tests {
		if got := tt.cmd.Opcode(); got != tt.want {
			t.Errorf("%T.Opcode() = %#08x, want %#08x", tt.cmd, uint32(got), uint32(tt.want))
		}
	}

	d := testTriangle(t, true)
	if got, want := (&TriangleStream{Desc: d}).Opcode(), Opcode(0x3001_0000|uint32(raster.Words(1))); got != want {
		t.Errorf("float TriangleStream opcode = %#08x, want %#08x", uint32(got), uint32(want))
	}
}

func TestSize(t *testing.T) {
	if got := Size(NoOp{}); got != 4 {
		t.Errorf("Size(NoOp) = %d, want 4", got)
	}
	if got := Size(&FogLUTStream{}); got != 4+4*66 {
		t.Errorf("Size(FogLUTStream) = %d, want %d", got, 4+4*66)
	}
	// A vertex is 20 float32 values.
	if got := Size(&PushVertex{}); got != 4+4*20 {
		t.Errorf("Size(PushVertex) = %d, want %d", got, 4+4*20)
	}
}

func TestAppend_RoundTrip(t *testing.T) {
	cmds := allCommands(t)
	dl := displaylist.New(make([]byte, 16<<10))
	for _, c := range cmds {
		if !Append(dl, c) {
			t.Fatalf("Append(%T) failed", c)
		}
	}

	var rec recorder
	if err := Dispatch(dl, &rec); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// NoOps are not handed to the handler.
	if len(rec.cmds) != len(cmds)-1 {
		t.Fatalf("decoded %d commands, want %d", len(rec.cmds), len(cmds)-1)
	}
	for i, got := range rec.cmds {
		if want := cmds[i+1]; !reflect.DeepEqual(got, want) {
			t.Errorf("command %d = %#v, want %#v", i, got, want)
		}
	}

	again := displaylist.New(make([]byte, 16<<10))
	Append(again, NoOp{})
	for _, c := range rec.cmds {
		Append(again, c)
	}
	if !bytes.Equal(again.Bytes(), dl.Bytes()) {
		t.Error("re-encoded display list differs from the original")
	}
}

func TestAppend_Atomic(t *testing.T) {
	dl := displaylist.New(make([]byte, 16))
	if Append(dl, &FogLUTStream{}) {
		t.Fatal("Append of an oversized record succeeded")
	}
	if dl.Size() != 0 {
		t.Errorf("Size after failed Append = %d, want 0", dl.Size())
	}
	if !Append(dl, NewWriteRegister(register.YOffset{Y: 3})) {
		t.Fatal("Append(WriteRegister) failed")
	}
	if Append(dl, Framebuffer{}) {
		t.Fatal("Append past capacity succeeded")
	}
	if dl.Size() != 8 {
		t.Errorf("Size = %d, want 8", dl.Size())
	}
}

func TestWriteRegister_Register(t *testing.T) {
	want := register.Stencil{
		Func: gputypes.CompareFunctionEqual, Ref: 3, Mask: 0xF,
		Fail: gputypes.StencilOperationKeep, ZFail: gputypes.StencilOperationInvert,
		ZPass: gputypes.StencilOperationReplace, Clear: 1, WriteMask: 0x7,
	}
	got, ok := NewWriteRegister(want).Register()
	if !ok {
		t.Fatal("Register() reported an unassigned address")
	}
	if got != want {
		t.Errorf("Register() = %+v, want %+v", got, want)
	}
}

// =============================================================================
// Dispatch errors
// =============================================================================

func TestDispatch_UnknownOpcode(t *testing.T) {
	dl := displaylist.New(make([]byte, 64))
	Append(dl, NewWriteRegister(register.YOffset{Y: 1}))
	dl.CreateWord(0x7000_0000)
	Append(dl, NewWriteRegister(register.YOffset{Y: 2}))

	var h registersOnly
	err := Dispatch(dl, &h)
	if !errors.Is(err, rix.ErrUnknownOpcode) {
		t.Fatalf("err = %v, want ErrUnknownOpcode", err)
	}
	if h.n != 1 {
		t.Errorf("executed %d register writes, want 1", h.n)
	}
}

func TestDispatch_Truncated(t *testing.T) {
	dl := displaylist.New(make([]byte, 64))
	dl.CreateWord(uint32(makeOpcode(FamilyTriangleStream, uint32(raster.Words(0)))))
	dl.CreateWord(0)

	err := Dispatch(dl, &recorder{})
	if !errors.Is(err, rix.ErrTruncatedDisplayList) {
		t.Errorf("err = %v, want ErrTruncatedDisplayList", err)
	}
}

func TestDispatch_UnexpectedCommand(t *testing.T) {
	dl := displaylist.New(make([]byte, 1024))
	Append(dl, NewWriteRegister(register.YOffset{Y: 1}))
	Append(dl, &TriangleStream{Desc: testTriangle(t, false)})
	Append(dl, NewWriteRegister(register.YOffset{Y: 2}))

	var h registersOnly
	err := Dispatch(dl, &h)
	if !errors.Is(err, rix.ErrUnexpectedCommand) {
		t.Fatalf("err = %v, want ErrUnexpectedCommand", err)
	}
	if h.n != 1 {
		t.Errorf("executed %d register writes, want 1", h.n)
	}
}

func TestDecode_BadPayload(t *testing.T) {
	op := (&SetElementLocalContext{}).Opcode()
	if _, err := Decode(op, make([]byte, 8)); !errors.Is(err, rix.ErrTruncatedDisplayList) {
		t.Errorf("short payload: err = %v, want ErrTruncatedDisplayList", err)
	}
	if _, err := Decode(makeOpcode(FamilyFogLUTStream, 4), make([]byte, 16)); err == nil {
		t.Error("fog table of 4 words decoded")
	}
}

func BenchmarkDispatch(b *testing.B) {
	desc := testTriangle(b, false)
	dl := displaylist.New(make([]byte, 64<<10))
	for Append(dl, &TriangleStream{Desc: desc}) {
	}
	var rec recorder

	b.ResetTimer()
	for range b.N {
		dl.Rewind()
		rec.cmds = rec.cmds[:0]
		if err := Dispatch(dl, &rec); err != nil {
			b.Fatal(err)
		}
	}
}

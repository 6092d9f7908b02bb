package command

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
	"github.com/gogpu/rix/transform"
)

// Command is a typed display list record.
type Command interface {
	// Opcode returns the first word of the record.
	Opcode() Opcode

	// PutPayload writes the payload into p, which holds exactly the
	// number of words the opcode announces.
	PutPayload(p []byte)
}

// Size returns the encoded size of cmd in bytes.
func Size(cmd Command) int {
	n, _ := cmd.Opcode().PayloadWords()
	return 4 * (1 + n)
}

// Append encodes cmd at the end of dl. The record is written completely or
// not at all; it reports false when it does not fit.
func Append(dl *displaylist.DisplayList, cmd Command) bool {
	mark := dl.Size()
	if !dl.CreateWord(uint32(cmd.Opcode())) {
		return false
	}
	payload := dl.Create(Size(cmd) - 4)
	if payload == nil {
		dl.Truncate(mark)
		return false
	}
	cmd.PutPayload(payload)
	return true
}

// NoOp is an empty record.
type NoOp struct{}

// Opcode implements Command.
func (NoOp) Opcode() Opcode { return makeOpcode(FamilyNoOp, 0) }

// PutPayload implements Command.
func (NoOp) PutPayload([]byte) {}

// WriteRegister sets one shadow register.
type WriteRegister struct {
	Addr  register.Address
	Value uint32
}

// NewWriteRegister returns the command writing r.
func NewWriteRegister(r register.Register) WriteRegister {
	return WriteRegister{Addr: r.Address(), Value: r.Value()}
}

// Opcode implements Command.
func (c WriteRegister) Opcode() Opcode { return makeOpcode(FamilyWriteRegister, uint32(c.Addr)) }

// PutPayload implements Command.
func (c WriteRegister) PutPayload(p []byte) { binary.LittleEndian.PutUint32(p, c.Value) }

// Register decodes the typed register. It reports false for unassigned
// addresses.
func (c WriteRegister) Register() (register.Register, bool) {
	return register.Decode(c.Addr, c.Value)
}

// Framebuffer clears, commits, loads or swaps the framebuffer.
type Framebuffer struct {
	Flags FramebufferFlags

	// Size is the number of pixels the operation covers.
	Size uint32

	// DisplayAddress is the color buffer to present on swap.
	DisplayAddress uint32
}

// Opcode implements Command.
func (c Framebuffer) Opcode() Opcode { return makeOpcode(FamilyFramebuffer, uint32(c.Flags)) }

// PutPayload implements Command.
func (c Framebuffer) PutPayload(p []byte) {
	binary.LittleEndian.PutUint32(p, c.Size)
	binary.LittleEndian.PutUint32(p[4:], c.DisplayAddress)
}

// TriangleStream carries one triangle descriptor.
type TriangleStream struct {
	Desc raster.TriangleStreamDesc
}

// Opcode implements Command.
func (c *TriangleStream) Opcode() Opcode {
	low := uint32(c.Desc.Words())
	if c.Desc.Float {
		low |= floatBit
	}
	return makeOpcode(FamilyTriangleStream, low)
}

// PutPayload implements Command.
func (c *TriangleStream) PutPayload(p []byte) { c.Desc.Encode(p) }

// fogLUTWords is the payload size of a fog table: bounds plus one (m, b)
// pair per entry.
const fogLUTWords = 2 + 2*fragment.FogEntries

// FogLUTStream uploads the fog table.
type FogLUTStream struct {
	LUT fragment.FogLUT
}

// Opcode implements Command.
func (c *FogLUTStream) Opcode() Opcode { return makeOpcode(FamilyFogLUTStream, fogLUTWords) }

// PutPayload implements Command.
func (c *FogLUTStream) PutPayload(p []byte) {
	put := func(i int, v float32) { binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v)) }
	put(0, c.LUT.Lower)
	put(1, c.LUT.Upper)
	for i, e := range c.LUT.Entries {
		put(2+2*i, e.M)
		put(3+2*i, e.B)
	}
}

// TextureStream binds the page table of a texture to a TMU. Pages are
// absolute device addresses.
type TextureStream struct {
	TMU   int
	Pages []uint32
}

// Opcode implements Command.
func (c *TextureStream) Opcode() Opcode {
	return makeOpcode(FamilyTextureStream, uint32(c.TMU&0xF)<<tmuShift|uint32(len(c.Pages)))
}

// PutPayload implements Command.
func (c *TextureStream) PutPayload(p []byte) {
	for i, a := range c.Pages {
		binary.LittleEndian.PutUint32(p[4*i:], a)
	}
}

// DrawNewElement starts a new primitive element.
type DrawNewElement struct {
	Mode transform.Mode
}

// Opcode implements Command.
func (c DrawNewElement) Opcode() Opcode { return makeOpcode(FamilyDrawNewElement, 1) }

// PutPayload implements Command.
func (c DrawNewElement) PutPayload(p []byte) { binary.LittleEndian.PutUint32(p, uint32(c.Mode)) }

// SetElementGlobalContext replaces the global vertex pipeline context.
type SetElementGlobalContext struct {
	Context transform.GlobalContext
}

// Opcode implements Command.
func (c *SetElementGlobalContext) Opcode() Opcode {
	return makeOpcode(FamilySetElementGlobalContext, structWords(&c.Context))
}

// PutPayload implements Command.
func (c *SetElementGlobalContext) PutPayload(p []byte) { putStruct(p, &c.Context) }

// SetElementLocalContext replaces the per-object matrices.
type SetElementLocalContext struct {
	Context transform.LocalContext
}

// Opcode implements Command.
func (c *SetElementLocalContext) Opcode() Opcode {
	return makeOpcode(FamilySetElementLocalContext, structWords(&c.Context))
}

// PutPayload implements Command.
func (c *SetElementLocalContext) PutPayload(p []byte) { putStruct(p, &c.Context) }

// SetVertexContext replaces the material state.
type SetVertexContext struct {
	Context transform.VertexContext
}

// Opcode implements Command.
func (c *SetVertexContext) Opcode() Opcode {
	return makeOpcode(FamilySetVertexContext, structWords(&c.Context))
}

// PutPayload implements Command.
func (c *SetVertexContext) PutPayload(p []byte) { putStruct(p, &c.Context) }

// PushVertex feeds one vertex into the current element.
type PushVertex struct {
	Vertex transform.Vertex
}

// Opcode implements Command.
func (c *PushVertex) Opcode() Opcode {
	return makeOpcode(FamilyPushVertex, structWords(&c.Vertex))
}

// PutPayload implements Command.
func (c *PushVertex) PutPayload(p []byte) { putStruct(p, &c.Vertex) }

// structWords returns the encoded size of a fixed size struct in words.
func structWords(v any) uint32 {
	return uint32(binary.Size(v)+3) / 4
}

func putStruct(p []byte, v any) {
	// p is sized from binary.Size, so Encode cannot run short.
	_, _ = binary.Encode(p, binary.LittleEndian, v)
}

func getStruct(p []byte, v any) error {
	if want := 4 * int(structWords(v)); len(p) != want {
		return fmt.Errorf("%w: %T payload is %d bytes, want %d", rix.ErrTruncatedDisplayList, v, len(p), want)
	}
	_, err := binary.Decode(p, binary.LittleEndian, v)
	return err
}

// Decode reconstructs the command of a record from its opcode and payload.
func Decode(op Opcode, payload []byte) (Command, error) {
	n, err := op.PayloadWords()
	if err != nil {
		return nil, err
	}
	if len(payload) != 4*n {
		return nil, fmt.Errorf("%w: %v needs %d bytes, have %d", rix.ErrTruncatedDisplayList, op, 4*n, len(payload))
	}
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(payload[4*i:]) }

	switch op.Family() {
	case FamilyNoOp:
		return NoOp{}, nil
	case FamilyWriteRegister:
		return WriteRegister{Addr: register.Address(op), Value: word(0)}, nil
	case FamilyFramebuffer:
		return Framebuffer{Flags: FramebufferFlags(op), Size: word(0), DisplayAddress: word(1)}, nil
	case FamilyTriangleStream:
		d, err := raster.Decode(payload, op&floatBit != 0)
		if err != nil {
			return nil, err
		}
		return &TriangleStream{Desc: d}, nil
	case FamilyFogLUTStream:
		if n != fogLUTWords {
			return nil, fmt.Errorf("%w: fog table of %d words", rix.ErrTruncatedDisplayList, n)
		}
		f := func(i int) float32 { return math.Float32frombits(word(i)) }
		c := &FogLUTStream{}
		c.LUT.Lower, c.LUT.Upper = f(0), f(1)
		for i := range c.LUT.Entries {
			c.LUT.Entries[i] = fragment.FogEntry{M: f(2 + 2*i), B: f(3 + 2*i)}
		}
		return c, nil
	case FamilyTextureStream:
		c := &TextureStream{TMU: int(op >> tmuShift & 0xF), Pages: make([]uint32, n)}
		for i := range c.Pages {
			c.Pages[i] = word(i)
		}
		return c, nil
	case FamilyDrawNewElement:
		if n < 1 {
			return nil, fmt.Errorf("%w: empty DrawNewElement", rix.ErrTruncatedDisplayList)
		}
		return DrawNewElement{Mode: transform.Mode(word(0))}, nil
	case FamilySetElementGlobalContext:
		c := &SetElementGlobalContext{}
		return c, getStruct(payload, &c.Context)
	case FamilySetElementLocalContext:
		c := &SetElementLocalContext{}
		return c, getStruct(payload, &c.Context)
	case FamilySetVertexContext:
		c := &SetVertexContext{}
		return c, getStruct(payload, &c.Context)
	case FamilyPushVertex:
		c := &PushVertex{}
		return c, getStruct(payload, &c.Vertex)
	}
	return nil, fmt.Errorf("%w: %v", rix.ErrUnknownOpcode, op)
}

// Package command defines the display list wire format: opcodes, the typed
// command variants and the decode loop every consumer shares.
//
// A record is one little endian opcode word followed by its payload. The
// high nibble of the opcode selects the family; the remaining bits carry
// family specific fields, and for variable sized families the payload size
// in words. Families are laid out like this:
//
//	0x0: NoOp
//	0x1: WriteRegister, [7:0] register address, 1 word
//	0x2: Framebuffer, [7:0] flags, 2 words (pixel count, display address)
//	0x3: TriangleStream, [16] float edges, [15:0] words
//	0x4: FogLUTStream, [15:0] words (66)
//	0x5: TextureStream, [19:16] TMU, [15:0] pages
//	0x6-0xA: reserved
//	0xB-0xF: virtual commands, executed by devices that run the vertex
//	         pipeline themselves, [15:0] words
package command

import (
	"fmt"

	"github.com/gogpu/rix"
)

// Family is the command family stored in the top four opcode bits.
type Family uint8

const (
	FamilyNoOp                    Family = 0x0
	FamilyWriteRegister           Family = 0x1
	FamilyFramebuffer             Family = 0x2
	FamilyTriangleStream          Family = 0x3
	FamilyFogLUTStream            Family = 0x4
	FamilyTextureStream           Family = 0x5
	FamilyDrawNewElement          Family = 0xB
	FamilySetElementGlobalContext Family = 0xC
	FamilySetElementLocalContext  Family = 0xD
	FamilySetVertexContext        Family = 0xE
	FamilyPushVertex              Family = 0xF
)

var familyNames = [...]string{
	FamilyNoOp:                    "NoOp",
	FamilyWriteRegister:           "WriteRegister",
	FamilyFramebuffer:             "Framebuffer",
	FamilyTriangleStream:          "TriangleStream",
	FamilyFogLUTStream:            "FogLUTStream",
	FamilyTextureStream:           "TextureStream",
	FamilyDrawNewElement:          "DrawNewElement",
	FamilySetElementGlobalContext: "SetElementGlobalContext",
	FamilySetElementLocalContext:  "SetElementLocalContext",
	FamilySetVertexContext:        "SetVertexContext",
	FamilyPushVertex:              "PushVertex",
}

// String returns the family name.
func (f Family) String() string {
	if int(f) < len(familyNames) && familyNames[f] != "" {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%#x)", uint8(f))
}

// Virtual reports whether the family is a vertex pipeline command.
func (f Family) Virtual() bool {
	return f >= FamilyDrawNewElement
}

// Opcode is the first word of a display list record.
type Opcode uint32

const (
	familyShift = 28
	countMask   = 0xFFFF
	floatBit    = 1 << 16
	tmuShift    = 16
)

func makeOpcode(f Family, low uint32) Opcode {
	return Opcode(uint32(f)<<familyShift | low&(1<<familyShift-1))
}

// Family returns the command family.
func (op Opcode) Family() Family { return Family(op >> familyShift) }

// PayloadWords returns the number of payload words that follow the opcode.
// Reserved families return ErrUnknownOpcode.
func (op Opcode) PayloadWords() (int, error) {
	switch op.Family() {
	case FamilyNoOp:
		return 0, nil
	case FamilyWriteRegister:
		return 1, nil
	case FamilyFramebuffer:
		return 2, nil
	case FamilyTriangleStream, FamilyFogLUTStream, FamilyTextureStream,
		FamilyDrawNewElement, FamilySetElementGlobalContext,
		FamilySetElementLocalContext, FamilySetVertexContext, FamilyPushVertex:
		return int(op & countMask), nil
	default:
		return 0, fmt.Errorf("%w: %#08x", rix.ErrUnknownOpcode, uint32(op))
	}
}

// String formats the family and the low opcode bits.
func (op Opcode) String() string {
	return fmt.Sprintf("%v(%#07x)", op.Family(), uint32(op)&(1<<familyShift-1))
}

// FramebufferFlags select the framebuffer operations of a Framebuffer
// command.
type FramebufferFlags uint8

const (
	// FramebufferCommit writes the tile buffers back to the frame.
	FramebufferCommit FramebufferFlags = 1 << iota
	// FramebufferMemset clears the selected buffers.
	FramebufferMemset
	// FramebufferSwap presents the frame at the display address.
	FramebufferSwap
	// FramebufferLoad reads the frame into the tile buffers.
	FramebufferLoad
	FramebufferColor
	FramebufferDepth
	FramebufferStencil
	// FramebufferVSync waits for the vertical blank before swapping.
	FramebufferVSync
)

// Has reports whether all flags in m are set.
func (f FramebufferFlags) Has(m FramebufferFlags) bool { return f&m == m }

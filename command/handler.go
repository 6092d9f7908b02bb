package command

import (
	"fmt"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/displaylist"
)

// Handler executes decoded commands. A handler returning an error aborts
// the decode loop.
type Handler interface {
	HandleWriteRegister(c WriteRegister) error
	HandleFramebuffer(c Framebuffer) error
	HandleTriangleStream(c *TriangleStream) error
	HandleFogLUTStream(c *FogLUTStream) error
	HandleTextureStream(c *TextureStream) error
	HandleDrawNewElement(c DrawNewElement) error
	HandleSetElementGlobalContext(c *SetElementGlobalContext) error
	HandleSetElementLocalContext(c *SetElementLocalContext) error
	HandleSetVertexContext(c *SetVertexContext) error
	HandlePushVertex(c *PushVertex) error
}

// Unhandled rejects every command with ErrUnexpectedCommand. Embed it in a
// handler and override the commands the consumer supports.
type Unhandled struct{}

func unexpected(f Family) error {
	return fmt.Errorf("%w: %v", rix.ErrUnexpectedCommand, f)
}

// HandleWriteRegister reports ErrUnexpectedCommand.
func (Unhandled) HandleWriteRegister(WriteRegister) error {
	return unexpected(FamilyWriteRegister)
}

// HandleFramebuffer reports ErrUnexpectedCommand.
func (Unhandled) HandleFramebuffer(Framebuffer) error {
	return unexpected(FamilyFramebuffer)
}

// HandleTriangleStream reports ErrUnexpectedCommand.
func (Unhandled) HandleTriangleStream(*TriangleStream) error {
	return unexpected(FamilyTriangleStream)
}

// HandleFogLUTStream reports ErrUnexpectedCommand.
func (Unhandled) HandleFogLUTStream(*FogLUTStream) error {
	return unexpected(FamilyFogLUTStream)
}

// HandleTextureStream reports ErrUnexpectedCommand.
func (Unhandled) HandleTextureStream(*TextureStream) error {
	return unexpected(FamilyTextureStream)
}

// HandleDrawNewElement reports ErrUnexpectedCommand.
func (Unhandled) HandleDrawNewElement(DrawNewElement) error {
	return unexpected(FamilyDrawNewElement)
}

// HandleSetElementGlobalContext reports ErrUnexpectedCommand.
func (Unhandled) HandleSetElementGlobalContext(*SetElementGlobalContext) error {
	return unexpected(FamilySetElementGlobalContext)
}

// HandleSetElementLocalContext reports ErrUnexpectedCommand.
func (Unhandled) HandleSetElementLocalContext(*SetElementLocalContext) error {
	return unexpected(FamilySetElementLocalContext)
}

// HandleSetVertexContext reports ErrUnexpectedCommand.
func (Unhandled) HandleSetVertexContext(*SetVertexContext) error {
	return unexpected(FamilySetVertexContext)
}

// HandlePushVertex reports ErrUnexpectedCommand.
func (Unhandled) HandlePushVertex(*PushVertex) error {
	return unexpected(FamilyPushVertex)
}

// Handle passes cmd to the matching handler method. NoOps are dropped.
func Handle(h Handler, cmd Command) error {
	switch c := cmd.(type) {
	case NoOp:
		return nil
	case WriteRegister:
		return h.HandleWriteRegister(c)
	case Framebuffer:
		return h.HandleFramebuffer(c)
	case *TriangleStream:
		return h.HandleTriangleStream(c)
	case *FogLUTStream:
		return h.HandleFogLUTStream(c)
	case *TextureStream:
		return h.HandleTextureStream(c)
	case DrawNewElement:
		return h.HandleDrawNewElement(c)
	case *SetElementGlobalContext:
		return h.HandleSetElementGlobalContext(c)
	case *SetElementLocalContext:
		return h.HandleSetElementLocalContext(c)
	case *SetVertexContext:
		return h.HandleSetVertexContext(c)
	case *PushVertex:
		return h.HandlePushVertex(c)
	}
	return fmt.Errorf("%w: %T", rix.ErrUnexpectedCommand, cmd)
}

// Dispatch decodes dl from its read cursor to the end and passes every
// command to h. Decode and handler failures are logged and abort the loop;
// the remaining records are not executed.
func Dispatch(dl *displaylist.DisplayList, h Handler) error {
	for !dl.AtEnd() {
		err := next(dl, h)
		if err != nil {
			rix.Logger().Error("command: display list aborted", "err", err)
			return err
		}
	}
	return nil
}

func next(dl *displaylist.DisplayList, h Handler) error {
	w, ok := dl.GetNextWord()
	if !ok {
		return fmt.Errorf("%w: partial opcode", rix.ErrTruncatedDisplayList)
	}
	op := Opcode(w)
	n, err := op.PayloadWords()
	if err != nil {
		return err
	}
	payload := dl.GetNext(4 * n)
	if payload == nil {
		return fmt.Errorf("%w: %v needs %d payload words", rix.ErrTruncatedDisplayList, op, n)
	}
	cmd, err := Decode(op, payload)
	if err != nil {
		return fmt.Errorf("decode %v: %w", op, err)
	}
	if err := Handle(h, cmd); err != nil {
		return fmt.Errorf("%v: %w", op.Family(), err)
	}
	return nil
}

package rix

import "errors"

// Capacity errors. They are recoverable: display lists are flushed and the
// append retried, texture allocation failures are reported to the caller.
var (
	// ErrDisplayListFull is returned when a record does not fit even into an
	// empty display list.
	ErrDisplayListFull = errors.New("rix: display list full")

	// ErrOutOfPages is returned when the texture pool has too few free pages.
	ErrOutOfPages = errors.New("rix: out of texture pages")

	// ErrUnknownTexture is returned for operations on a texture id that was
	// never created or has been deleted.
	ErrUnknownTexture = errors.New("rix: unknown texture")
)

// Protocol errors. A decode loop that meets one of these aborts: the display
// list is corrupt or producer and consumer were configured differently.
var (
	// ErrUnknownOpcode is returned for an opcode with an unassigned family.
	ErrUnknownOpcode = errors.New("rix: unknown opcode")

	// ErrUnexpectedCommand is returned when a valid command reaches a
	// consumer that cannot execute it.
	ErrUnexpectedCommand = errors.New("rix: unexpected command")

	// ErrTruncatedDisplayList is returned when a record extends past the end
	// of the display list.
	ErrTruncatedDisplayList = errors.New("rix: truncated display list")
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("rix: invalid config")

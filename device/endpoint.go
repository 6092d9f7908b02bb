package device

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Endpoint is the device side of a bus. It implements Bus by decoding the
// packets BusDevice sends and replaying them on a target Device.
//
// Packets are executed synchronously inside Write. Endpoint is safe for
// concurrent use.
type Endpoint struct {
	mu      sync.Mutex
	target  Device
	buffers [][]byte
	pending []byte

	// Packets counts the packets received.
	Packets int
}

// NewEndpoint creates an endpoint driving target. The host side gets its
// own transfer buffers of the same sizes as the target's display list
// buffers.
func NewEndpoint(target Device) *Endpoint {
	e := &Endpoint{target: target}
	for i := range target.DisplayListBufferCount() {
		e.buffers = append(e.buffers, make([]byte, len(target.RequestDisplayListBuffer(i))))
	}
	return e
}

// RequestBuffer returns host transfer buffer index.
func (e *Endpoint) RequestBuffer(index int) []byte {
	if index < 0 || index >= len(e.buffers) {
		return nil
	}
	return e.buffers[index]
}

// BufferCount returns the number of transfer buffers.
func (e *Endpoint) BufferCount() int { return len(e.buffers) }

// ClearToSend always reports true; packets complete inside Write.
func (e *Endpoint) ClearToSend() bool { return true }

// Read returns the response of the last read request.
func (e *Endpoint) Read(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(p) > len(e.pending) {
		return fmt.Errorf("%w: read of %d bytes, %d pending", ErrBadPacket, len(p), len(e.pending))
	}
	copy(p, e.pending)
	e.pending = e.pending[len(p):]
	return nil
}

// Write decodes and executes one packet.
func (e *Endpoint) Write(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var h header
	if _, err := binary.Decode(p, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPacket, err)
	}
	payload := p[HeaderSize:]
	e.Packets++

	switch h.Kind {
	case kindStream:
		if len(payload) != int(h.Length) {
			return fmt.Errorf("%w: %d payload bytes, header says %d", ErrBadPacket, len(payload), h.Length)
		}
		dst := e.target.RequestDisplayListBuffer(int(h.Arg))
		if int(h.Offset)+len(payload) > len(dst) {
			return fmt.Errorf("%w: stream past the end of buffer %d", ErrBadPacket, h.Arg)
		}
		copy(dst[h.Offset:], payload)
		return nil

	case kindStreamCommit:
		return e.target.StreamDisplayList(int(h.Arg), int(h.Length))

	case kindWrite:
		if len(payload) != int(h.Length) {
			return fmt.Errorf("%w: %d payload bytes, header says %d", ErrBadPacket, len(payload), h.Length)
		}
		return e.target.WriteToDeviceMemory(payload, h.Arg+h.Offset)

	case kindRead:
		if err := e.target.BlockUntilDeviceIsIdle(); err != nil {
			return err
		}
		e.pending = make([]byte, h.Length)
		return e.target.ReadFromDeviceMemory(e.pending, h.Arg)
	}
	return fmt.Errorf("%w: kind %d", ErrBadPacket, h.Kind)
}

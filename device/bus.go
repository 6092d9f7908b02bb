package device

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/rix"
)

// Packet kinds.
const (
	kindStream       uint32 = 1 // display list bytes for buffer Arg at Offset
	kindStreamCommit uint32 = 2 // execute Length bytes of buffer Arg
	kindWrite        uint32 = 3 // memory bytes for address Arg+Offset
	kindRead         uint32 = 4 // request Length bytes from address Arg
)

// header precedes every packet. Data packets carry Length payload bytes.
type header struct {
	Kind   uint32
	Arg    uint32
	Offset uint32
	Length uint32
}

// HeaderSize is the size of the packet header in bytes.
const HeaderSize = 16

// DefaultChunkSize is the largest packet BusDevice sends when no chunk size
// is given.
const DefaultChunkSize = 4096

// BusDevice implements Device on top of a Bus. Display lists and memory
// writes are split into packets of at most the chunk size, and every packet
// waits for ClearToSend.
type BusDevice struct {
	bus   Bus
	chunk int
	poll  time.Duration
	pkt   []byte
}

// NewBusDevice creates a device speaking to bus in packets of at most chunk
// bytes, header included. chunk <= HeaderSize selects DefaultChunkSize.
func NewBusDevice(bus Bus, chunk int) *BusDevice {
	if chunk <= HeaderSize {
		chunk = DefaultChunkSize
	}
	return &BusDevice{
		bus:   bus,
		chunk: chunk,
		poll:  50 * time.Microsecond,
		pkt:   make([]byte, chunk),
	}
}

// RequestDisplayListBuffer returns transfer buffer index of the bus.
func (d *BusDevice) RequestDisplayListBuffer(index int) []byte {
	return d.bus.RequestBuffer(index)
}

// DisplayListBufferCount returns the number of bus transfer buffers.
func (d *BusDevice) DisplayListBufferCount() int {
	return d.bus.BufferCount()
}

// StreamDisplayList sends size bytes of buffer index and commits them.
func (d *BusDevice) StreamDisplayList(index, size int) error {
	buf := d.bus.RequestBuffer(index)
	if size > len(buf) {
		return fmt.Errorf("device: stream of %d bytes from a %d byte buffer", size, len(buf))
	}
	if err := d.send(kindStream, uint32(index), buf[:size]); err != nil {
		return fmt.Errorf("device: stream display list %d: %w", index, err)
	}
	if err := d.packet(header{Kind: kindStreamCommit, Arg: uint32(index), Length: uint32(size)}, nil); err != nil {
		return fmt.Errorf("device: commit display list %d: %w", index, err)
	}
	return nil
}

// WriteToDeviceMemory sends data to device memory at addr.
func (d *BusDevice) WriteToDeviceMemory(data []byte, addr uint32) error {
	if err := d.send(kindWrite, addr, data); err != nil {
		return fmt.Errorf("device: write %d bytes at %#x: %w", len(data), addr, err)
	}
	return nil
}

// ReadFromDeviceMemory requests len(data) bytes at addr and reads the
// response.
func (d *BusDevice) ReadFromDeviceMemory(data []byte, addr uint32) error {
	if err := d.packet(header{Kind: kindRead, Arg: addr, Length: uint32(len(data))}, nil); err != nil {
		return fmt.Errorf("device: read request at %#x: %w", addr, err)
	}
	d.waitClear()
	if err := d.bus.Read(data); err != nil {
		return fmt.Errorf("device: read %d bytes at %#x: %w", len(data), addr, err)
	}
	return nil
}

// BlockUntilDeviceIsIdle waits for ClearToSend.
func (d *BusDevice) BlockUntilDeviceIsIdle() error {
	d.waitClear()
	return nil
}

// send splits data into packets of kind.
func (d *BusDevice) send(kind, arg uint32, data []byte) error {
	room := d.chunk - HeaderSize
	for off := 0; off < len(data); off += room {
		part := data[off:min(off+room, len(data))]
		h := header{Kind: kind, Arg: arg, Offset: uint32(off), Length: uint32(len(part))}
		if err := d.packet(h, part); err != nil {
			return err
		}
	}
	return nil
}

func (d *BusDevice) packet(h header, payload []byte) error {
	p := d.pkt[:HeaderSize+len(payload)]
	if _, err := binary.Encode(p, binary.LittleEndian, h); err != nil {
		return err
	}
	copy(p[HeaderSize:], payload)
	d.waitClear()
	return d.bus.Write(p)
}

// waitClear polls ClearToSend, sleeping between polls once the first poll
// failed.
func (d *BusDevice) waitClear() {
	if d.bus.ClearToSend() {
		return
	}
	rix.Logger().Debug("device: waiting for clear to send")
	for !d.bus.ClearToSend() {
		time.Sleep(d.poll)
	}
}

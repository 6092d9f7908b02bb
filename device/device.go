// Package device defines the boundary between the renderer and whatever
// executes its display lists.
//
// A Device is either in process (the software rasterizer, the threaded
// rasterizer) or remote, reached through a Bus. BusDevice frames the Device
// operations into packets for a Bus and Endpoint unpacks them on the other
// side, so a remote device can be simulated end to end without hardware.
package device

import "errors"

// ErrBadPacket is returned by an Endpoint for malformed bus traffic.
var ErrBadPacket = errors.New("device: bad packet")

// Device executes display lists and owns the device memory.
//
// Buffers returned by RequestDisplayListBuffer stay valid and exclusively
// owned by the caller until the next BlockUntilDeviceIsIdle after a
// StreamDisplayList or WriteToDeviceMemory call that used them.
type Device interface {
	// StreamDisplayList hands the first size bytes of display list buffer
	// index to the device for execution.
	StreamDisplayList(index, size int) error

	// WriteToDeviceMemory copies data to device memory at addr.
	WriteToDeviceMemory(data []byte, addr uint32) error

	// ReadFromDeviceMemory fills data from device memory at addr.
	ReadFromDeviceMemory(data []byte, addr uint32) error

	// BlockUntilDeviceIsIdle waits until every streamed display list has
	// executed and every transfer has completed.
	BlockUntilDeviceIsIdle() error

	// RequestDisplayListBuffer returns display list buffer index.
	RequestDisplayListBuffer(index int) []byte

	// DisplayListBufferCount returns the number of display list buffers.
	DisplayListBufferCount() int
}

// Bus moves bytes to and from a remote device.
type Bus interface {
	// Write sends one packet.
	Write(p []byte) error

	// Read receives len(p) bytes of a pending read response.
	Read(p []byte) error

	// ClearToSend reports whether the device accepts the next packet.
	ClearToSend() bool

	// RequestBuffer returns transfer buffer index. BusDevice uses one
	// buffer per display list.
	RequestBuffer(index int) []byte

	// BufferCount returns the number of transfer buffers.
	BufferCount() int
}

package software

import (
	"github.com/gogpu/rix"
	"github.com/gogpu/rix/device"
)

func init() {
	device.Register("software", func(cfg rix.Config) (device.Device, error) {
		return New(cfg), nil
	})
	// The software device behind a simulated bus, exercising the packet
	// framing a hardware transport uses.
	device.Register("bus", func(cfg rix.Config) (device.Device, error) {
		return device.NewBusDevice(device.NewEndpoint(New(cfg)), device.DefaultChunkSize), nil
	})
}

package threaded

import (
	"github.com/gogpu/rix"
	"github.com/gogpu/rix/device"
	"github.com/gogpu/rix/software"
)

func init() {
	device.Register("threaded", func(cfg rix.Config) (device.Device, error) {
		return New(software.New(cfg), cfg)
	})
}

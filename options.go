package rix

// Option configures a Config during NewConfig.
//
// Example:
//
//	cfg, err := rix.NewConfig(
//	    rix.WithResolution(800, 600),
//	    rix.WithTiles(4),
//	    rix.WithEdgeMode(rix.EdgeFloat),
//	)
type Option func(*Config)

// WithResolution sets the framebuffer size.
func WithResolution(x, y int) Option {
	return func(c *Config) {
		c.ResolutionX = x
		c.ResolutionY = y
	}
}

// WithTiles sets the number of horizontal screen partitions.
func WithTiles(n int) Option {
	return func(c *Config) {
		c.Tiles = n
	}
}

// WithDisplayListSize sets the capacity of a single display list in bytes.
func WithDisplayListSize(n int) Option {
	return func(c *Config) {
		c.DisplayListSize = n
	}
}

// WithTMUs sets the number of texture mapping units.
func WithTMUs(n int) Option {
	return func(c *Config) {
		c.TMUCount = n
	}
}

// WithMaxTextureSize sets the largest accepted texture edge.
func WithMaxTextureSize(n int) Option {
	return func(c *Config) {
		c.MaxTextureSize = n
	}
}

// WithTexturePages sets the texture pool geometry.
func WithTexturePages(pageSize, pageCount int) Option {
	return func(c *Config) {
		c.TexturePageSize = pageSize
		c.TexturePageCount = pageCount
	}
}

// WithEdgeMode selects fixed or float edge functions.
func WithEdgeMode(m EdgeMode) Option {
	return func(c *Config) {
		c.Edge = m
	}
}

// WithColorFormat sets the native color buffer format.
func WithColorFormat(f ColorFormat) Option {
	return func(c *Config) {
		c.ColorFormat = f
	}
}

// WithBilinearHalfTexel centers the bilinear kernel on texel centers.
func WithBilinearHalfTexel(enable bool) Option {
	return func(c *Config) {
		c.BilinearHalfTexel = enable
	}
}

// WithTransformOffload makes the renderer emit virtual vertex commands for
// the device to transform and rasterize.
func WithTransformOffload(enable bool) Option {
	return func(c *Config) {
		c.OffloadTransform = enable
	}
}

// Package parallel provides the screen partitioning and background job
// primitives used by the tiled rasterizers.
//
// The screen is divided into horizontal bands (tiles). Each tile owns its own
// pair of display lists and is rasterized independently, so tiles never share
// framebuffer rows.
package parallel

// Tile is a horizontal band of the screen.
type Tile struct {
	// Index is the tile number, counted from the top of the screen.
	Index int

	// StartY is the first scanline owned by the tile.
	StartY int

	// Lines is the number of scanlines owned by the tile.
	Lines int
}

// EndY returns the first scanline after the tile.
func (t Tile) EndY() int {
	return t.StartY + t.Lines
}

// Contains reports whether scanline y belongs to the tile.
func (t Tile) Contains(y int) bool {
	return y >= t.StartY && y < t.EndY()
}

// Intersects reports whether the half-open scanline range [startY, endY)
// overlaps the tile.
func (t Tile) Intersects(startY, endY int) bool {
	return startY < t.EndY() && endY > t.StartY
}

// PixelOffset returns the linear index of the first pixel of the tile in a
// framebuffer that is width pixels wide.
func (t Tile) PixelOffset(width int) int {
	return t.StartY * width
}

// Partition splits resY scanlines into n tiles. The first resY%n tiles get
// one extra line so every scanline is owned by exactly one tile.
// n is clamped to [1, resY].
func Partition(resY, n int) []Tile {
	if resY <= 0 {
		return nil
	}
	n = max(1, min(n, resY))
	tiles := make([]Tile, n)
	base, extra := resY/n, resY%n
	y := 0
	for i := range tiles {
		lines := base
		if i < extra {
			lines++
		}
		tiles[i] = Tile{Index: i, StartY: y, Lines: lines}
		y += lines
	}
	return tiles
}

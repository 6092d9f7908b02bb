// Package dispatch fans display list commands out to the per-tile display
// lists of a frame.
//
// Every tile owns a front and a back display list. Commands are appended to
// the back lists; a command destined for several tiles is appended to all
// of them or to none. Triangles are only appended to the tiles their
// bounding box touches. Registers whose value depends on the tile (buffer
// addresses, y offset, resolution, scissor) are rewritten per tile at
// append time by a TileState. All other registers are shadowed and
// replayed whenever a list is re-armed, so every list starts from the
// complete register state.
package dispatch

import (
	"fmt"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/command"
	"github.com/gogpu/rix/displaylist"
	"github.com/gogpu/rix/internal/parallel"
	"github.com/gogpu/rix/raster"
	"github.com/gogpu/rix/register"
)

// TileFunc builds the command of one tile. It may return nil to skip the
// tile.
type TileFunc func(tile parallel.Tile, tiles, resX, resY int) command.Command

// FramebufferTiles sizes a framebuffer command to the rows of each tile.
// Tiles other than the last drop the swap so it follows the drawing of
// every tile, and are skipped when nothing else is left to do.
func FramebufferTiles(c command.Framebuffer) TileFunc {
	const work = command.FramebufferCommit | command.FramebufferMemset | command.FramebufferLoad
	return func(tile parallel.Tile, tiles, resX, _ int) command.Command {
		fb := c
		fb.Size = uint32(tile.Lines * resX)
		if tile.Index != tiles-1 {
			fb.Flags &^= command.FramebufferSwap | command.FramebufferVSync
			if fb.Flags&work == 0 {
				return nil
			}
		}
		return fb
	}
}

// ArmFunc appends the static commands of a tile to its freshly cleared back
// list. The tiling registers have already been written.
type ArmFunc func(d *Dispatcher, tile parallel.Tile) bool

// Lists is one display list per tile.
type Lists []*displaylist.DisplayList

// Dispatcher appends commands to the back display lists of all tiles.
//
// A Dispatcher is not safe for concurrent use.
type Dispatcher struct {
	cfg     rix.Config
	tiles   []parallel.Tile
	lists   *displaylist.DoubleBuffer[Lists]
	state   TileState
	arm     ArmFunc
	armed   []int
	marks   []int
	scratch []command.Command

	// shadow holds the last value of every non-tiling register.
	shadow [register.AddressCount]register.Register
}

// New creates a dispatcher over two sets of per-tile lists. front and back
// must each hold cfg.Tiles lists. The back lists are cleared and armed.
func New(cfg rix.Config, front, back Lists, arm ArmFunc) (*Dispatcher, error) {
	tiles := parallel.Partition(cfg.ResolutionY, cfg.Tiles)
	if len(front) != len(tiles) || len(back) != len(tiles) {
		return nil, fmt.Errorf("%w: %d tiles need %d display lists per slot, have %d and %d",
			rix.ErrInvalidConfig, len(tiles), len(tiles), len(front), len(back))
	}
	d := &Dispatcher{
		cfg:   cfg,
		tiles: tiles,
		lists: displaylist.NewDoubleBuffer(back, front),
		state: NewTileState(cfg.ResolutionX, cfg.ResolutionY),
		arm:   arm,
		armed: make([]int, len(tiles)),
		marks: make([]int, len(tiles)),
	}
	if !d.Clear() {
		return nil, fmt.Errorf("%w: tile setup does not fit an empty display list", rix.ErrDisplayListFull)
	}
	return d, nil
}

// Tiles returns the screen partition.
func (d *Dispatcher) Tiles() []parallel.Tile { return d.tiles }

// List returns the back list of tile i.
func (d *Dispatcher) List(i int) *displaylist.DisplayList { return d.lists.Back()[i] }

// FrontList returns the front list of tile i, the one last handed to the
// device.
func (d *Dispatcher) FrontList(i int) *displaylist.DisplayList { return d.lists.Front()[i] }

// BackIndex returns the slot (0 or 1) of the back lists.
func (d *Dispatcher) BackIndex() int { return d.lists.BackIndex() }

// BufferIndex returns the device buffer index of tile i's list in slot.
func (d *Dispatcher) BufferIndex(slot, tile int) int {
	return slot*len(d.tiles) + tile
}

// State returns the tiling register state.
func (d *Dispatcher) State() *TileState { return &d.state }

// Empty reports whether nothing was appended to the back lists since they
// were armed.
func (d *Dispatcher) Empty() bool {
	for i, dl := range d.lists.Back() {
		if dl.Size() != d.armed[i] {
			return false
		}
	}
	return true
}

// Swap exchanges front and back lists and arms the new back lists. The
// caller must make sure the device no longer reads the new back lists.
func (d *Dispatcher) Swap() bool {
	d.lists.Swap()
	rix.Logger().Debug("dispatch: swapped display lists", "back", d.lists.BackIndex())
	return d.Clear()
}

// Clear empties the back lists and re-arms them with the tiling registers,
// the shadowed registers and the arm callback. It reports false if the
// setup does not fit.
func (d *Dispatcher) Clear() bool {
	ok := true
	for i, tile := range d.tiles {
		dl := d.List(i)
		dl.Clear()
		for _, r := range d.state.All(tile) {
			ok = command.Append(dl, command.NewWriteRegister(r)) && ok
		}
		for _, r := range d.shadow {
			if r != nil {
				ok = command.Append(dl, command.NewWriteRegister(r)) && ok
			}
		}
	}
	if d.arm != nil {
		for _, tile := range d.tiles {
			ok = d.arm(d, tile) && ok
		}
	}
	for i := range d.tiles {
		d.armed[i] = d.List(i).Size()
	}
	return ok
}

// AddCommand appends cmd to every tile. It reports false, leaving all lists
// unchanged, if cmd does not fit into one of them.
func (d *Dispatcher) AddCommand(cmd command.Command) bool {
	d.mark()
	for i, dl := range d.lists.Back() {
		if !command.Append(dl, cmd) {
			d.rollback(i)
			return false
		}
	}
	return true
}

// AddTileCommand appends the command f builds for each tile. Like
// AddCommand, it appends to all tiles or to none.
func (d *Dispatcher) AddTileCommand(f TileFunc) bool {
	cmds := d.scratch[:0]
	for _, tile := range d.tiles {
		cmds = append(cmds, f(tile, len(d.tiles), d.cfg.ResolutionX, d.cfg.ResolutionY))
	}
	d.scratch = cmds
	d.mark()
	for i, c := range cmds {
		if c != nil && !command.Append(d.List(i), c) {
			d.rollback(i)
			return false
		}
	}
	return true
}

// AddRegister appends a register write. Tiling registers are recorded and
// rewritten for every tile.
func (d *Dispatcher) AddRegister(r register.Register) bool {
	if d.state.Intercept(r) {
		return d.addTileRegisters(r.Address())
	}
	if !d.AddCommand(command.NewWriteRegister(r)) {
		return false
	}
	if a := r.Address(); int(a) < len(d.shadow) {
		d.shadow[a] = r
	}
	return true
}

// Register returns the shadowed value of the register at addr.
func (d *Dispatcher) Register(addr register.Address) (register.Register, bool) {
	if int(addr) >= len(d.shadow) || d.shadow[addr] == nil {
		return nil, false
	}
	return d.shadow[addr], true
}

func (d *Dispatcher) addTileRegisters(addr register.Address) bool {
	d.mark()
	for i, tile := range d.tiles {
		for _, r := range d.state.Registers(addr, tile) {
			if !command.Append(d.List(i), command.NewWriteRegister(r)) {
				d.rollback(i + 1)
				return false
			}
		}
	}
	return true
}

// mark records the size of every back list for rollback.
func (d *Dispatcher) mark() {
	for i := range d.tiles {
		d.marks[i] = d.List(i).Size()
	}
}

// rollback truncates the first n back lists to their marked size.
func (d *Dispatcher) rollback(n int) {
	for i := range n {
		d.List(i).Truncate(d.marks[i])
	}
}

// AddTriangle appends desc to the tiles whose rows its bounding box
// overlaps. Fixed-point edge functions are stepped to the first row of each
// tile. It reports false, leaving all lists unchanged, if a tile list is
// full.
func (d *Dispatcher) AddTriangle(desc *raster.TriangleStreamDesc) bool {
	d.mark()
	for i, tile := range d.tiles {
		if !desc.IntersectsRows(tile.StartY, tile.EndY()) {
			continue
		}
		c := command.TriangleStream{Desc: *desc}
		c.Desc.IncrementToRow(tile.StartY)
		if !command.Append(d.List(i), &c) {
			d.rollback(i)
			return false
		}
	}
	return true
}

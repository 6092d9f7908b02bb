package displaylist

// DoubleBuffer holds a front and a back instance of T. The back instance is
// the one being filled; the front instance is the one last handed to the
// consumer.
type DoubleBuffer[T any] struct {
	slots [2]T
	back  int
}

// NewDoubleBuffer creates a double buffer whose initial back slot is a.
func NewDoubleBuffer[T any](a, b T) *DoubleBuffer[T] {
	return &DoubleBuffer[T]{slots: [2]T{a, b}}
}

// Back returns the instance owned by the producer.
func (d *DoubleBuffer[T]) Back() T { return d.slots[d.back] }

// Front returns the instance last handed to the consumer.
func (d *DoubleBuffer[T]) Front() T { return d.slots[1-d.back] }

// BackIndex returns the slot number (0 or 1) of the back instance.
func (d *DoubleBuffer[T]) BackIndex() int { return d.back }

// FrontIndex returns the slot number of the front instance.
func (d *DoubleBuffer[T]) FrontIndex() int { return 1 - d.back }

// Swap exchanges the roles of the two instances.
func (d *DoubleBuffer[T]) Swap() { d.back = 1 - d.back }

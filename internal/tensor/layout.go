/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package tensor

import (
	"fmt"
)

// Block describes one sub-tensor packed inside a flat buffer.
type Block struct {
	Name   string
	Offset int
	Height int
	Width  int
	Depth  int
}

// Size is the number of elements covered by the block.
func (b Block) Size() int { return b.Height * b.Width * b.Depth }

// Layout is an ordered list of blocks laid out back to back.
type Layout struct {
	Blocks []Block
	Total  int
}

// NewLayout assigns consecutive offsets to blocks, in the given order.
func NewLayout(blocks ...Block) Layout {
	l := Layout{Blocks: make([]Block, len(blocks))}
	for i, b := range blocks {
		b.Offset = l.Total
		l.Blocks[i] = b
		l.Total += b.Size()
	}
	return l
}

// Validate checks that every block fits inside v.
func (l Layout) Validate(v View) error {
	for _, b := range l.Blocks {
		if b.Height <= 0 || b.Width <= 0 || b.Depth <= 0 {
			return fmt.Errorf("tensor: block %q has empty shape %dx%dx%d", b.Name, b.Height, b.Width, b.Depth)
		}
	}
	if l.Total > v.Len() {
		return fmt.Errorf("%w: layout needs %d elements, buffer has %d", ErrOutOfBounds, l.Total, v.Len())
	}
	return nil
}

// Block returns the data of block i.
func (l Layout) Block(v View, i int) ([]float32, error) {
	if i < 0 || i >= len(l.Blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfBounds, i, len(l.Blocks))
	}
	b := l.Blocks[i]
	return v.Slice(b.Offset, b.Size())
}

// Find returns the index of the block with the given name, or -1.
func (l Layout) Find(name string) int {
	for i, b := range l.Blocks {
		if b.Name == name {
			return i
		}
	}
	return -1
}

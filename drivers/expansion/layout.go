package expansion

import (
	"modellbahn-go/x/conv"
	"modellbahn-go/x/mathx"
)

// Position addresses one output bit on one board of the chain.
// Bit may exceed 7 on boards with more than one output register.
type Position struct {
	Board int
	Bit   uint8
}

func (p Position) String() string {
	var tmp [20]byte
	b := make([]byte, 0, 12)
	b = append(b, conv.Itoa(tmp[:], int64(p.Board))...)
	b = append(b, '.')
	b = append(b, conv.Utoa(tmp[:], uint64(p.Bit))...)
	return string(b)
}

// Board describes one expansion board: the number of 8-bit input and
// output registers it carries.
type Board struct {
	Inputs  uint8 `yaml:"inputs" json:"inputs"`
	Outputs uint8 `yaml:"outputs" json:"outputs"`
}

// Capacity is the number of bytes the board occupies in a frame.
func (b Board) Capacity() int { return int(mathx.Max(b.Inputs, b.Outputs)) }

// Layout maps boards onto a shared frame buffer.
//
// Boards are placed back to front: board 0 takes the last Capacity bytes
// of the frame and the highest board the first ones. The first byte
// clocked out travels furthest down the chain, so this order is fixed by
// the wiring.
type Layout struct {
	boards  []Board
	offsets []int
	size    int
}

// NewLayout computes sizes and offsets for boards.
func NewLayout(boards []Board) Layout {
	l := Layout{
		boards:  append([]Board(nil), boards...),
		offsets: make([]int, len(boards)),
	}
	for _, b := range boards {
		l.size += b.Capacity()
	}
	for i := range boards {
		l.offsets[i] = offset(boards, i)
	}
	return l
}

// offset sums the capacity of every board after index i.
func offset(boards []Board, i int) int {
	n := 0
	for j := len(boards) - 1; j > i; j-- {
		n += boards[j].Capacity()
	}
	return n
}

// Size is the total frame length in bytes.
func (l Layout) Size() int { return l.size }

// Len is the number of boards.
func (l Layout) Len() int { return len(l.boards) }

// Board returns the configuration of board i.
func (l Layout) Board(i int) (Board, bool) {
	if i < 0 || i >= len(l.boards) {
		return Board{}, false
	}
	return l.boards[i], true
}

// Offset returns the first frame byte of board i, or -1 if out of range.
func (l Layout) Offset(i int) int {
	if i < 0 || i >= len(l.offsets) {
		return -1
	}
	return l.offsets[i]
}

// Index resolves pos to a frame byte index and a single-bit mask.
func (l Layout) Index(pos Position) (idx int, mask byte, err error) {
	b, ok := l.Board(pos.Board)
	if !ok {
		return 0, 0, errInvalidBoard(pos)
	}
	if int(pos.Bit/8) >= int(b.Outputs) {
		return 0, 0, errInvalidBit(pos)
	}
	return l.offsets[pos.Board] + int(pos.Bit/8), 1 << (pos.Bit % 8), nil
}

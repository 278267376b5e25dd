package preset

import (
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/layout"
)

// Track ids of the club layout. The order is the arena order.
const (
	AD layout.ID = iota
	AC
	A1a
	A1b
	AA
	A2a
	A2b
	AB
	A3a
	A3b
	B1a
	CA
	C1a
	C1b
	C2a
	C2b
	CB
	CC
	C3a
	C3b
	C3c
	D1a
)

func pos(board int, bit uint8) expansion.Position {
	return expansion.Position{Board: board, Bit: bit}
}

// single is a board with one output register and no inputs.
var single = expansion.Board{Inputs: 0, Outputs: 1}

// Modellbahn is the station A / yard C layout joined by the B and D lines.
// C_3a is an end track: trains entering it come back out towards C_3b.
func Modellbahn() Preset {
	return Preset{
		Name: "modellbahn",
		Tracks: []layout.Track{
			layout.Switch(AD, "A_d", pos(0, 1), AC, A3a, D1a, pos(1, 3), pos(1, 4)),
			layout.Switch(AC, "A_c", pos(0, 2), A1a, A2a, AD, pos(1, 5), pos(1, 6)),
			layout.Straight(A1a, "A_1a", pos(0, 3), AC, A1b),
			layout.Straight(A1b, "A_1b", pos(0, 4), A1a, AA),
			layout.Switch(AA, "A_a", pos(0, 5), A1b, AB, B1a, pos(1, 7), pos(2, 0)),
			layout.Straight(A2a, "A_2a", pos(0, 6), AC, A2b),
			layout.Straight(A2b, "A_2b", pos(0, 7), A2a, AB),
			layout.Switch(AB, "A_b", pos(1, 0), A3b, A2b, AA, pos(2, 1), pos(2, 2)),
			layout.Straight(A3a, "A_3a", pos(1, 1), AD, A3b),
			layout.Straight(A3b, "A_3b", pos(1, 2), A3a, AB),

			layout.Straight(B1a, "B_1a", pos(3, 0), AA, CA),
			layout.Switch(CA, "C_a", pos(4, 0), C2a, C1a, B1a, pos(5, 2), pos(5, 3)),
			layout.Straight(C1a, "C_1a", pos(4, 1), CA, C1b),
			layout.Straight(C1b, "C_1b", pos(4, 2), C1a, CB),
			layout.Straight(C2a, "C_2a", pos(4, 3), CA, C2b),
			layout.Straight(C2b, "C_2b", pos(4, 4), C2a, CB),
			layout.Switch(CB, "C_b", pos(4, 5), C1b, C2b, CC, pos(5, 4), pos(5, 5)),
			layout.Switch(CC, "C_c", pos(4, 6), CB, C3c, D1a, pos(5, 6), pos(5, 7)),
			layout.Straight(C3a, "C_3a", pos(4, 7), C3b, C3b),
			layout.Straight(C3b, "C_3b", pos(5, 0), C3a, C3c),
			layout.Straight(C3c, "C_3c", pos(5, 1), C3b, CC),

			layout.Straight(D1a, "D_1a", pos(0, 0), CC, AD),
		},
		Boards:  []expansion.Board{single, single, single, single, single, single, single},
		Last:    A1a,
		Current: A1b,
	}
}

package layout

import (
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/x/conv"
)

// ID identifies a track. IDs are dense indices into a Network.
type ID int

// Invalid means "no such track". It is returned by routing queries and is
// never the id of a real track.
const Invalid ID = -1

func (id ID) String() string {
	if id == Invalid {
		return "invalid"
	}
	var tmp [20]byte
	return string(conv.Itoa(tmp[:], int64(id)))
}

// Kind selects the Track variant.
type Kind uint8

const (
	KindStraight Kind = iota
	KindSwitch
)

func (k Kind) String() string {
	switch k {
	case KindStraight:
		return "straight"
	case KindSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

type PowerState uint8

const (
	PowerOff PowerState = iota
	PowerOn
)

func (p PowerState) String() string {
	if p == PowerOn {
		return "on"
	}
	return "off"
}

// SwitchState is the thrown position of a turnout. SwitchUnknown is only
// ever the initial value; once thrown a switch is Straight or Curved.
type SwitchState uint8

const (
	SwitchUnknown SwitchState = iota
	SwitchStraight
	SwitchCurved
)

func (s SwitchState) String() string {
	switch s {
	case SwitchStraight:
		return "straight"
	case SwitchCurved:
		return "curved"
	default:
		return "unknown"
	}
}

// Track is one controllable segment.
//
// A straight track connects A and B. A switch connects Common to either A
// (thrown straight) or B (thrown curved); StraightPos and CurvedPos drive its
// point motor. A straight whose A and B are the same id is an end track:
// the train leaves it the way it came in.
type Track struct {
	ID     ID
	Kind   Kind
	Name   string
	Length uint32 // mm, informational

	Power expansion.Position
	State PowerState

	A, B   ID
	Common ID // switch only

	Switch      SwitchState
	StraightPos expansion.Position
	CurvedPos   expansion.Position
}

// Straight builds a straight track between a and b.
func Straight(id ID, name string, power expansion.Position, a, b ID) Track {
	return Track{
		ID:     id,
		Kind:   KindStraight,
		Name:   name,
		Power:  power,
		A:      a,
		B:      b,
		Common: Invalid,
	}
}

// Switch builds a turnout joining common to a (straight) or b (curved).
func Switch(id ID, name string, power expansion.Position, a, b, common ID, straight, curved expansion.Position) Track {
	return Track{
		ID:          id,
		Kind:        KindSwitch,
		Name:        name,
		Power:       power,
		A:           a,
		B:           b,
		Common:      common,
		Switch:      SwitchUnknown,
		StraightPos: straight,
		CurvedPos:   curved,
	}
}

// Label is Name if set, otherwise the numeric id.
func (t *Track) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID.String()
}

// Neighbors lists the ids this track connects to, in A, B, Common order.
func (t *Track) Neighbors() []ID {
	switch t.Kind {
	case KindSwitch:
		return []ID{t.A, t.B, t.Common}
	default:
		return []ID{t.A, t.B}
	}
}

// NextTrack returns where a train arriving from prev leaves to under the
// current switch state, or Invalid if prev is not a neighbour (or, for a
// switch entered at Common, the switch has not been thrown yet).
func (t *Track) NextTrack(prev ID) ID {
	switch t.Kind {
	case KindStraight:
		switch prev {
		case t.A:
			return t.B
		case t.B:
			return t.A
		}
	case KindSwitch:
		switch prev {
		case t.Common:
			switch t.Switch {
			case SwitchStraight:
				return t.A
			case SwitchCurved:
				return t.B
			}
		case t.A, t.B:
			// Trailing moves never depend on the point position.
			return t.Common
		}
	}
	return Invalid
}

// NextTracks lists every track reachable from here when arriving from prev,
// regardless of switch state. Unused slots are Invalid. The first entry is
// the straight-through choice.
func (t *Track) NextTracks(prev ID) [3]ID {
	out := [3]ID{Invalid, Invalid, Invalid}
	switch t.Kind {
	case KindStraight:
		switch prev {
		case t.A:
			out[0] = t.B
		case t.B:
			out[0] = t.A
		}
	case KindSwitch:
		switch prev {
		case t.Common:
			out[0], out[1] = t.A, t.B
		case t.A, t.B:
			out[0] = t.Common
		}
	}
	return out
}

// MakeWayTo sets the switch so that from and to are connected. One of them
// must be Common and the other A or B; anything else returns false and
// leaves the state alone. Straight tracks have nothing to set.
func (t *Track) MakeWayTo(to, from ID) bool {
	switch t.Kind {
	case KindStraight:
		return true
	case KindSwitch:
		var branch ID
		switch t.Common {
		case from:
			branch = to
		case to:
			branch = from
		default:
			return false
		}
		switch branch {
		case t.A:
			t.Switch = SwitchStraight
		case t.B:
			t.Switch = SwitchCurved
		default:
			return false
		}
		return true
	}
	return false
}

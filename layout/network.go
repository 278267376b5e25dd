// Package layout models the track network: straight tracks and turnouts
// stored in one arena and addressed by ID.
package layout

import (
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
)

// Network is a fixed set of tracks. Track i has ID i.
type Network struct {
	tracks []Track
	names  map[string]ID
}

// NewNetwork copies tracks into a network and validates the topology.
func NewNetwork(tracks []Track) (*Network, error) {
	n := &Network{
		tracks: append([]Track(nil), tracks...),
		names:  make(map[string]ID, len(tracks)),
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	for _, t := range n.tracks {
		if t.Name != "" {
			n.names[t.Name] = t.ID
		}
	}
	return n, nil
}

func invalidLayout(t *Track, msg string) error {
	return &errcode.E{C: errcode.InvalidLayout, Op: "layout", Msg: "track " + t.Label() + ": " + msg}
}

func (n *Network) validate() error {
	if len(n.tracks) == 0 {
		return &errcode.E{C: errcode.InvalidLayout, Op: "layout", Msg: "no tracks"}
	}
	owners := make(map[expansion.Position]ID)
	names := make(map[string]bool)
	claim := func(t *Track, pos expansion.Position) error {
		if other, taken := owners[pos]; taken {
			return invalidLayout(t, "io position "+pos.String()+" already used by track "+other.String())
		}
		owners[pos] = t.ID
		return nil
	}

	for i := range n.tracks {
		t := &n.tracks[i]
		if t.ID != ID(i) {
			return invalidLayout(t, "id does not match its index "+ID(i).String())
		}
		if t.Name != "" {
			if names[t.Name] {
				return invalidLayout(t, "duplicate name")
			}
			names[t.Name] = true
		}
		switch t.Kind {
		case KindStraight, KindSwitch:
		default:
			return invalidLayout(t, "unknown kind")
		}
		if t.Kind == KindSwitch && t.Switch != SwitchUnknown {
			return invalidLayout(t, "switch must start unknown")
		}
		for _, nb := range t.Neighbors() {
			if !n.has(nb) {
				return invalidLayout(t, "neighbour "+nb.String()+" does not exist")
			}
			if !n.links(nb, t.ID) {
				return invalidLayout(t, "neighbour "+nb.String()+" does not link back")
			}
		}
		if err := claim(t, t.Power); err != nil {
			return err
		}
		if t.Kind == KindSwitch {
			if t.StraightPos == t.CurvedPos {
				return invalidLayout(t, "straight and curved positions are equal")
			}
			if err := claim(t, t.StraightPos); err != nil {
				return err
			}
			if err := claim(t, t.CurvedPos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *Network) has(id ID) bool { return id >= 0 && int(id) < len(n.tracks) }

// links reports whether track from lists to as a neighbour.
func (n *Network) links(from, to ID) bool {
	t := &n.tracks[from]
	for _, nb := range t.Neighbors() {
		if nb == to {
			return true
		}
	}
	return false
}

// Len is the number of tracks.
func (n *Network) Len() int { return len(n.tracks) }

// Track resolves id. The returned pointer aliases the network's storage.
func (n *Network) Track(id ID) (*Track, bool) {
	if !n.has(id) {
		return nil, false
	}
	return &n.tracks[id], true
}

// ByName looks a track up by its name.
func (n *Network) ByName(name string) (ID, bool) {
	id, ok := n.names[name]
	if !ok {
		return Invalid, false
	}
	return id, true
}

// Adjacent reports whether a and b are neighbours.
func (n *Network) Adjacent(a, b ID) bool {
	return n.has(a) && n.has(b) && n.links(a, b)
}

// Tracks returns the backing slice for iteration. Callers must not append.
func (n *Network) Tracks() []Track { return n.tracks }

// Positions returns every output position the network drives.
func (n *Network) Positions() []expansion.Position {
	out := make([]expansion.Position, 0, len(n.tracks)+8)
	for i := range n.tracks {
		t := &n.tracks[i]
		out = append(out, t.Power)
		if t.Kind == KindSwitch {
			out = append(out, t.StraightPos, t.CurvedPos)
		}
	}
	return out
}

// CheckChain verifies every position the network drives is addressable by
// the given board chain.
func (n *Network) CheckChain(l expansion.Layout) error {
	for _, pos := range n.Positions() {
		if _, _, err := l.Index(pos); err != nil {
			return err
		}
	}
	return nil
}

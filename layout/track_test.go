package layout

import (
	"testing"

	"modellbahn-go/drivers/expansion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(board int, bit uint8) expansion.Position { return expansion.Position{Board: board, Bit: bit} }

func TestStraight_NextTrack(t *testing.T) {
	tr := Straight(5, "s", p(0, 0), 3, 7)

	assert.Equal(t, ID(7), tr.NextTrack(3))
	assert.Equal(t, ID(3), tr.NextTrack(7))
	for _, x := range []ID{0, 5, 9, Invalid} {
		assert.Equal(t, Invalid, tr.NextTrack(x), "from %v", x)
	}
}

func TestStraight_NextTracks(t *testing.T) {
	tr := Straight(5, "s", p(0, 0), 3, 7)

	assert.Equal(t, [3]ID{7, Invalid, Invalid}, tr.NextTracks(3))
	assert.Equal(t, [3]ID{3, Invalid, Invalid}, tr.NextTracks(7))
	assert.Equal(t, [3]ID{Invalid, Invalid, Invalid}, tr.NextTracks(1))
}

func TestStraight_MakeWayToIsNoop(t *testing.T) {
	tr := Straight(5, "s", p(0, 0), 3, 7)
	before := tr

	assert.True(t, tr.MakeWayTo(7, 3))
	assert.True(t, tr.MakeWayTo(1, 2))
	assert.Equal(t, before, tr)
}

func TestEndTrack_AlwaysReturnsSameNeighbour(t *testing.T) {
	tr := Straight(0, "end", p(0, 0), 1, 1)

	assert.Equal(t, ID(1), tr.NextTrack(1))
	assert.Equal(t, [3]ID{1, Invalid, Invalid}, tr.NextTracks(1))
}

func newSwitch() Track {
	return Switch(4, "sw", p(0, 4), 2, 3, 0, p(1, 0), p(1, 1))
}

func TestSwitch_StartsUnknown(t *testing.T) {
	sw := newSwitch()

	assert.Equal(t, SwitchUnknown, sw.Switch)
	assert.Equal(t, Invalid, sw.NextTrack(0), "facing move needs a thrown switch")
}

func TestSwitch_NextTracks(t *testing.T) {
	sw := newSwitch()

	assert.Equal(t, [3]ID{2, 3, Invalid}, sw.NextTracks(0))
	assert.Equal(t, [3]ID{0, Invalid, Invalid}, sw.NextTracks(2))
	assert.Equal(t, [3]ID{0, Invalid, Invalid}, sw.NextTracks(3))
	assert.Equal(t, [3]ID{Invalid, Invalid, Invalid}, sw.NextTracks(9))
}

func TestSwitch_TrailingIgnoresState(t *testing.T) {
	sw := newSwitch()
	for _, st := range []SwitchState{SwitchUnknown, SwitchStraight, SwitchCurved} {
		sw.Switch = st
		assert.Equal(t, ID(0), sw.NextTrack(2), "state %v", st)
		assert.Equal(t, ID(0), sw.NextTrack(3), "state %v", st)
		assert.Equal(t, Invalid, sw.NextTrack(9), "state %v", st)
	}
}

func TestSwitch_MakeWayTo(t *testing.T) {
	cases := []struct {
		name     string
		to, from ID
		ok       bool
		want     SwitchState
	}{
		{"facing straight", 2, 0, true, SwitchStraight},
		{"facing curved", 3, 0, true, SwitchCurved},
		{"trailing from a", 0, 2, true, SwitchStraight},
		{"trailing from b", 0, 3, true, SwitchCurved},
		{"branch to branch", 3, 2, false, SwitchUnknown},
		{"unrelated", 7, 8, false, SwitchUnknown},
		{"common to unrelated", 7, 0, false, SwitchUnknown},
		{"unrelated to common", 0, 7, false, SwitchUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sw := newSwitch()
			assert.Equal(t, c.ok, sw.MakeWayTo(c.to, c.from))
			assert.Equal(t, c.want, sw.Switch)
		})
	}
}

func TestSwitch_MakeWayToThenNextTrack(t *testing.T) {
	sw := newSwitch()

	require.True(t, sw.MakeWayTo(2, 0))
	assert.Equal(t, ID(2), sw.NextTrack(0))

	require.True(t, sw.MakeWayTo(3, 0))
	assert.Equal(t, ID(3), sw.NextTrack(0))
}

func TestSwitch_MakeWayToIdempotent(t *testing.T) {
	sw := newSwitch()

	first := sw.MakeWayTo(3, 0)
	s1 := sw.Switch
	second := sw.MakeWayTo(3, 0)

	assert.Equal(t, first, second)
	assert.Equal(t, s1, sw.Switch)

	bad1 := sw.MakeWayTo(2, 3)
	bad2 := sw.MakeWayTo(2, 3)
	assert.False(t, bad1)
	assert.False(t, bad2)
	assert.Equal(t, SwitchCurved, sw.Switch)
}

func TestSwitch_NeverReturnsToUnknown(t *testing.T) {
	sw := newSwitch()
	require.True(t, sw.MakeWayTo(2, 0))

	for _, c := range [][2]ID{{3, 0}, {7, 8}, {3, 2}, {0, 2}, {0, 3}, {0, 0}} {
		sw.MakeWayTo(c[0], c[1])
		assert.NotEqual(t, SwitchUnknown, sw.Switch)
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "12", ID(12).String())
	assert.Equal(t, "switch", KindSwitch.String())
	assert.Equal(t, "on", PowerOn.String())
	assert.Equal(t, "curved", SwitchCurved.String())
}

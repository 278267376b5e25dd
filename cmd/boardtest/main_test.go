package main

import (
	"context"
	"testing"
	"time"

	"modellbahn-go/drivers/expansion"
	"modellbahn-go/layout"
	"modellbahn-go/layout/preset"
	"modellbahn-go/platform"
	"modellbahn-go/x/logx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spy records which outputs were high in each frame.
type spy struct {
	platform.ShiftChain
	layout expansion.Layout
	lit    [][]expansion.Position
	all    []expansion.Position
}

func (s *spy) Tx(w, r []byte) error {
	if err := s.ShiftChain.Tx(w, r); err != nil {
		return err
	}
	var on []expansion.Position
	for _, pos := range s.all {
		if s.ShiftChain.Output(s.layout, pos) {
			on = append(on, pos)
		}
	}
	s.lit = append(s.lit, on)
	return nil
}

func TestWalker_OneOutputAtATime(t *testing.T) {
	p := preset.Modellbahn()
	net, err := layout.NewNetwork(p.Tracks)
	require.NoError(t, err)

	sp := &spy{layout: expansion.NewLayout(p.Boards), all: net.Positions()}
	dev := expansion.New(sp, platform.NewFakePin(17), p.Boards, expansion.Config{})
	status := platform.NewFakePin(25)
	var slept time.Duration
	w := &walker{dev: dev, log: logx.Nop{}, status: status, sleep: func(d time.Duration) { slept += d }}

	w.cycle(context.Background(), p.Tracks)

	// Every track on then off, every switch coil on then off.
	require.Len(t, sp.lit, 2*22+2*2*7)
	for i, on := range sp.lit {
		if i%2 == 0 {
			assert.Len(t, on, 1, "frame %d", i)
		} else {
			assert.Empty(t, on, "frame %d", i)
		}
	}
	assert.Equal(t, []expansion.Position{p.Tracks[0].Power}, sp.lit[0])
	assert.Len(t, status.History(), 22)
	assert.Equal(t, 22*(stepDelayUp+stepDelayDown)+14*dwellThrow, slept)
}

// cmd/boardtest/main.go
//
// Bring-up check for the expansion chain: lights every track feed of the
// club layout in turn, then throws each switch both ways, forever.
package main

import (
	"context"
	"time"

	"modellbahn-go/drivers/expansion"
	"modellbahn-go/layout"
	"modellbahn-go/layout/preset"
	"modellbahn-go/platform"
	"modellbahn-go/x/logx"
)

// ---------- Configuration ----------

const (
	// Sequencing timing
	stepDelayUp   = 300 * time.Millisecond
	stepDelayDown = 100 * time.Millisecond
	dwellThrow    = 500 * time.Millisecond

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	res, err := platform.NewResources(platform.PicoPlan)
	if err != nil {
		println("[boardtest] platform init failed: " + err.Error())
		return
	}
	log := logx.New(res.Console, "boardtest")

	p := preset.Modellbahn()
	dev := expansion.New(res.SPI, res.ChipSelect, p.Boards, expansion.Config{
		Report: func(pos expansion.Position, err error) {
			log.Warn("bad position", "pos", pos, "err", err)
		},
	})

	w := &walker{dev: dev, log: log, status: res.Status, sleep: time.Sleep}
	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		log.Info("cycle", "n", cycle)
		w.cycle(context.Background(), p.Tracks)
	}
	log.Info("done")
}

// ---------- Walk ----------

type walker struct {
	dev    *expansion.Device
	log    logx.Logger
	status platform.Pin
	sleep  func(time.Duration)
}

// set drives a single output and transfers, logging failures.
func (w *walker) set(pos expansion.Position, on bool) {
	err := w.dev.Apply(func(s expansion.Setter) { _ = s.SetBit(pos, on) })
	if err != nil {
		w.log.Error("transfer", "err", err)
	}
}

func (w *walker) cycle(ctx context.Context, tracks []layout.Track) {
	for i := range tracks {
		if ctx.Err() != nil {
			return
		}
		t := &tracks[i]
		w.status.Toggle()
		w.log.Info("feed", "track", t.Label(), "pos", t.Power)
		w.set(t.Power, true)
		w.sleep(stepDelayUp)
		w.set(t.Power, false)
		w.sleep(stepDelayDown)
	}
	for i := range tracks {
		t := &tracks[i]
		if t.Kind != layout.KindSwitch || ctx.Err() != nil {
			continue
		}
		for _, pos := range []expansion.Position{t.StraightPos, t.CurvedPos} {
			w.log.Info("throw", "track", t.Label(), "pos", pos)
			w.set(pos, true)
			w.sleep(dwellThrow)
			w.set(pos, false)
		}
	}
}

// Package traversal moves a single train token through a layout network,
// throwing switches on the way and mirroring every track's power and switch
// state onto the expansion chain after each step.
package traversal

import (
	"context"
	"time"

	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
	"modellbahn-go/layout"
	"modellbahn-go/types"
	"modellbahn-go/x/logx"
	"modellbahn-go/x/mathx"
	"modellbahn-go/x/timex"
)

// DefaultInterval is the step period used when Options.Interval is zero.
const DefaultInterval = 100 * time.Millisecond

// Outputs is the expansion chain as seen by the engine.
// *expansion.Device satisfies it.
type Outputs interface {
	Apply(fn func(s expansion.Setter)) error
}

// Selector is the junction input. When it reads true at a junction with
// two candidates, the second candidate is taken.
type Selector interface {
	Get() bool
}

// Observer receives everything the engine reports. Calls happen on the
// engine goroutine and must not block.
type Observer interface {
	Transition(tr types.Transition)
	Power(t *layout.Track)
	Switch(t *layout.Track)
	Halted(err error)
	TransferFailed(err error)
}

// NopObserver ignores all reports.
type NopObserver struct{}

func (NopObserver) Transition(types.Transition) {}
func (NopObserver) Power(*layout.Track)         {}
func (NopObserver) Switch(*layout.Track)        {}
func (NopObserver) Halted(error)                {}
func (NopObserver) TransferFailed(error)        {}

type Options struct {
	// Last and Current are the starting pair; they must be adjacent.
	Last, Current layout.ID
	Interval      time.Duration
	Log           logx.Logger
	Observer      Observer
	// Now stamps events in Unix ms. Defaults to timex.NowMs.
	Now func() int64
}

// State is a snapshot of the token position.
type State struct {
	Last, Current layout.ID
	Steps         uint64
	Halted        error
}

// Engine is the traversal state machine. It is not safe for concurrent use;
// one goroutine owns it, as it owns the network it mutates.
type Engine struct {
	net      *layout.Network
	out      Outputs
	sel      Selector
	log      logx.Logger
	obs      Observer
	now      func() int64
	interval time.Duration

	last, current layout.ID
	steps         uint64
	halted        error
}

// New creates an engine positioned on opts.Current, having arrived from
// opts.Last. The current track is powered.
func New(net *layout.Network, out Outputs, sel Selector, opts Options) (*Engine, error) {
	if !net.Adjacent(opts.Last, opts.Current) {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "traversal",
			Msg: "start tracks " + opts.Last.String() + " and " + opts.Current.String() + " are not adjacent"}
	}
	e := &Engine{
		net:      net,
		out:      out,
		sel:      sel,
		log:      opts.Log,
		obs:      opts.Observer,
		now:      opts.Now,
		interval: opts.Interval,
		last:     opts.Last,
		current:  opts.Current,
	}
	if e.log == nil {
		e.log = logx.Nop{}
	}
	if e.obs == nil {
		e.obs = NopObserver{}
	}
	if e.now == nil {
		e.now = timex.NowMs
	}
	if e.interval == 0 {
		e.interval = DefaultInterval
	}
	e.interval = mathx.Max(e.interval, time.Millisecond)

	cur := e.mustTrack(e.current)
	cur.State = layout.PowerOn
	return e, nil
}

// mustTrack resolves an id the engine itself validated.
func (e *Engine) mustTrack(id layout.ID) *layout.Track {
	t, ok := e.net.Track(id)
	if !ok {
		panic("traversal: lost track " + id.String())
	}
	return t
}

// State returns the current position.
func (e *Engine) State() State {
	return State{Last: e.last, Current: e.current, Steps: e.steps, Halted: e.halted}
}

// Interval is the effective step period.
func (e *Engine) Interval() time.Duration { return e.interval }

// Step advances the token by one track and pushes the new outputs.
// A routing failure halts the engine for good; every later call returns
// the same error.
func (e *Engine) Step() (types.Transition, error) {
	if e.halted != nil {
		return types.Transition{}, e.halted
	}
	cur := e.mustTrack(e.current)
	prev := e.mustTrack(e.last)

	possible := cur.NextTracks(e.last)
	if possible[0] == layout.Invalid {
		return e.fail(cur, prev, "next track not found", nil)
	}
	selected, picked := possible[0], false
	if possible[1] != layout.Invalid && e.sel != nil && e.sel.Get() {
		selected, picked = possible[1], true
	}

	before := cur.Switch
	if !cur.MakeWayTo(selected, e.last) {
		return e.fail(cur, prev, "cannot set route to "+selected.String(), errcode.InvalidRoute)
	}
	next, ok := e.net.Track(cur.NextTrack(e.last))
	if !ok {
		return e.fail(cur, prev, "route leads nowhere", nil)
	}

	e.steps++
	tr := types.Transition{
		Step:        e.steps,
		Current:     int(cur.ID),
		Next:        int(next.ID),
		Last:        int(prev.ID),
		CurrentName: cur.Name,
		NextName:    next.Name,
		LastName:    prev.Name,
		Selected:    picked,
		TS:          e.now(),
	}
	e.log.Info("step", "current", cur.Label(), "next", next.Label(), "last", prev.Label())
	e.obs.Transition(tr)
	if cur.Switch != before {
		e.obs.Switch(cur)
	}

	e.last, e.current = cur.ID, next.ID
	wasOn, nextWasOn := cur.State, next.State
	cur.State = layout.PowerOff
	next.State = layout.PowerOn
	if cur != next && cur.State != wasOn {
		e.obs.Power(cur)
	}
	if next.State != nextWasOn {
		e.obs.Power(next)
	}

	e.Sync()
	return tr, nil
}

func (e *Engine) fail(cur, prev *layout.Track, msg string, cause error) (types.Transition, error) {
	err := &errcode.E{
		C:   errcode.RoutingFailure,
		Op:  "traversal",
		Msg: msg + " at " + cur.Label() + " coming from " + prev.Label(),
		Err: cause,
	}
	e.halted = err
	e.log.Error("routing failure", "current", cur.Label(), "last", prev.Label(), "err", err)
	e.obs.Halted(err)
	return types.Transition{}, err
}

// Sync writes every track's power bit and every switch's two throw bits,
// then transfers the frame. Unthrown switches drive neither bit. Transfer
// errors are reported and otherwise ignored; the next step retries.
func (e *Engine) Sync() {
	tracks := e.net.Tracks()
	err := e.out.Apply(func(s expansion.Setter) {
		for i := range tracks {
			t := &tracks[i]
			// Rejected positions are reported by the device itself.
			_ = s.SetBit(t.Power, t.State == layout.PowerOn)
			if t.Kind == layout.KindSwitch {
				_ = s.SetBit(t.StraightPos, t.Switch == layout.SwitchStraight)
				_ = s.SetBit(t.CurvedPos, t.Switch == layout.SwitchCurved)
			}
		}
	})
	if err != nil {
		e.log.Error("transfer failed", "err", err)
		e.obs.TransferFailed(err)
	}
}

// Run pushes the initial outputs, then steps once per interval until ctx is
// done (returns nil) or routing fails (returns the failure).
func (e *Engine) Run(ctx context.Context) error {
	if e.halted != nil {
		return e.halted
	}
	e.Sync()

	tick := time.NewTicker(e.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		if ctx.Err() != nil {
			return nil
		}
		if _, err := e.Step(); err != nil {
			return err
		}
	}
}

// Package sim runs the railway firmware services on host fakes: the same
// bus, traversal and heartbeat services, a ShiftChain in place of the SPI
// expansion chain and fake pins for the selector and LEDs.
package sim

import (
	"context"

	"modellbahn-go/bus"
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
	"modellbahn-go/layout"
	"modellbahn-go/layout/preset"
	"modellbahn-go/platform"
	"modellbahn-go/services/config"
	"modellbahn-go/services/heartbeat"
	"modellbahn-go/services/traversal"
	"modellbahn-go/types"
	"modellbahn-go/x/logx"
)

type Options struct {
	Config types.RailwayConfig
	Log    logx.Logger
	// Steps stops the run after that many transitions; 0 runs until ctx ends.
	Steps uint64
	// Select holds the selector asserted for the whole run.
	Select       bool
	Metrics      *Metrics
	OnTransition func(tr types.Transition)
}

// Result is what the run left behind.
type Result struct {
	State   types.EngineState
	Latched []byte
	Boards  expansion.Layout
}

// Validate checks that cfg names a preset whose tracks the board chain
// can address and whose start tracks exist and touch.
func Validate(cfg types.RailwayConfig) (preset.Preset, error) {
	p, err := preset.Lookup(cfg.Layout)
	if err != nil {
		return p, err
	}
	net, err := layout.NewNetwork(p.Tracks)
	if err != nil {
		return p, err
	}
	if len(cfg.Boards) > 0 {
		p.Boards = cfg.Boards
	}
	if err := net.CheckChain(expansion.NewLayout(p.Boards)); err != nil {
		return p, err
	}
	last, current := p.Last, p.Current
	for _, s := range []struct {
		name string
		id   *layout.ID
	}{{cfg.StartLast, &last}, {cfg.StartCurrent, &current}} {
		if s.name == "" {
			continue
		}
		id, ok := net.ByName(s.name)
		if !ok {
			return p, &errcode.E{C: errcode.UnknownTrack, Op: "sim", Msg: s.name}
		}
		*s.id = id
	}
	if !net.Adjacent(last, current) {
		return p, &errcode.E{C: errcode.InvalidParams, Op: "sim", Msg: "start tracks are not adjacent"}
	}
	p.Last, p.Current = last, current
	return p, nil
}

// Run validates the config, starts the services on a fresh bus and host
// platform and blocks until ctx ends, Steps transitions happened or the
// engine halts.
func Run(ctx context.Context, opts Options) (Result, error) {
	p, err := Validate(opts.Config)
	if err != nil {
		return Result{}, err
	}
	log := opts.Log
	if log == nil {
		log = logx.Nop{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := bus.NewBus(64)
	h := platform.NewHost(platform.PicoPlan)
	res := h.Resources(platform.PicoPlan)
	// The selector pin reads its raw level; the config says which level
	// means pressed.
	h.Selector.Set(opts.Select != opts.Config.SelectorActiveLow)

	conn := b.NewConnection("sim")
	trSub := conn.Subscribe(traversal.TopicTransition())
	defer conn.Unsubscribe(trSub)

	if opts.Metrics != nil {
		go opts.Metrics.Watch(ctx, b.NewConnection("metrics"))
	}
	_ = heartbeat.New(res, log).Start(ctx, b.NewConnection("heartbeat"))

	svc := traversal.NewService(res, log)
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, b.NewConnection("traversal")) }()
	config.Publish(conn, opts.Config)

	var steps uint64
	for opts.Steps == 0 || steps < opts.Steps {
		select {
		case err = <-done:
			return result(conn, h, p), err
		case msg := <-trSub.Channel():
			tr, ok := msg.Payload.(types.Transition)
			if !ok {
				continue
			}
			steps++
			if opts.OnTransition != nil {
				opts.OnTransition(tr)
			}
		}
	}
	cancel()
	err = <-done
	return result(conn, h, p), err
}

func result(conn *bus.Connection, h *platform.Host, p preset.Preset) Result {
	r := Result{Latched: h.Chain.Latched(), Boards: expansion.NewLayout(p.Boards)}
	sub := conn.Subscribe(traversal.TopicState())
	defer conn.Unsubscribe(sub)
	select {
	case msg := <-sub.Channel():
		r.State, _ = msg.Payload.(types.EngineState)
	default:
	}
	return r
}

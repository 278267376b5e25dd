package traversal

import (
	"context"
	"time"

	"modellbahn-go/bus"
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
	"modellbahn-go/layout"
	"modellbahn-go/layout/preset"
	"modellbahn-go/platform"
	"modellbahn-go/types"
	"modellbahn-go/x/logx"
	"modellbahn-go/x/strx"
	"modellbahn-go/x/timex"
)

// Service waits for the railway config, assembles the layout on the
// platform resources and runs the engine until ctx ends or routing fails.
type Service struct {
	res platform.Resources
	log logx.Logger
	now func() int64

	// OnEngine, when set, sees every engine the service builds. Tests use
	// it to reach the engine state.
	OnEngine func(e *Engine)
}

func NewService(res platform.Resources, log logx.Logger) *Service {
	if log == nil {
		log = logx.Nop{}
	}
	return &Service{res: res, log: log, now: timex.NowMs}
}

// Start runs the service in its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.Run(ctx, conn); err != nil {
			s.log.Error("traversal stopped", "err", err)
		}
	}()
}

// Run blocks. A config that cannot be assembled is reported on the state
// topic and the service keeps waiting for a better one.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(TopicConfig())
	defer conn.Unsubscribe(cfgSub)

	s.publishState(conn, types.EngineState{Level: types.EngineIdle})

	for {
		select {
		case <-ctx.Done():
			s.publishState(conn, types.EngineState{Level: types.EngineStopped})
			return nil
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return nil
			}
			cfg, ok := msg.Payload.(types.RailwayConfig)
			if !ok {
				s.log.Warn("ignoring config", "err", errcode.InvalidPayload)
				continue
			}
			eng, err := s.build(cfg, conn)
			if err != nil {
				s.log.Error("config rejected", "layout", cfg.Layout, "err", err)
				s.publishState(conn, types.EngineState{Level: types.EngineHalted, Status: string(errcode.Of(err))})
				continue
			}
			return s.run(ctx, conn, eng)
		}
	}
}

func (s *Service) run(ctx context.Context, conn *bus.Connection, eng *Engine) error {
	if s.OnEngine != nil {
		s.OnEngine(eng)
	}
	st := s.engineState(eng, types.EngineRunning)
	s.publishState(conn, st)
	s.log.Info("running", "current", st.Current, "last", st.Last, "interval_ms", int64(eng.Interval()/time.Millisecond))

	if err := eng.Run(ctx); err != nil {
		// Observer.Halted already published the halted state.
		return err
	}
	s.publishState(conn, s.engineState(eng, types.EngineStopped))
	return nil
}

// build turns a config into a ready engine.
func (s *Service) build(cfg types.RailwayConfig, conn *bus.Connection) (*Engine, error) {
	p, err := preset.Lookup(cfg.Layout)
	if err != nil {
		return nil, err
	}
	net, err := layout.NewNetwork(p.Tracks)
	if err != nil {
		return nil, err
	}
	boards := p.Boards
	if len(cfg.Boards) > 0 {
		boards = cfg.Boards
	}
	if err := net.CheckChain(expansion.NewLayout(boards)); err != nil {
		// Not fatal: the device rejects and reports each stray write.
		s.log.Warn("board chain does not cover layout", "err", err)
	}

	last, err := resolve(net, cfg.StartLast, p.Last)
	if err != nil {
		return nil, err
	}
	current, err := resolve(net, cfg.StartCurrent, p.Current)
	if err != nil {
		return nil, err
	}

	var sel Selector
	if s.res.Selector != nil {
		sel = s.res.Selector
		if cfg.SelectorActiveLow {
			sel = platform.ActiveLow(s.res.Selector)
		}
	}

	dev := expansion.New(s.res.SPI, s.res.ChipSelect, boards, expansion.Config{
		SelectActiveHigh: cfg.ChipSelectActiveHigh,
		Report: func(pos expansion.Position, err error) {
			s.log.Warn("invalid write", "pos", pos, "err", err)
			conn.Publish(conn.NewMessage(TopicInvalidWrite(), types.InvalidWrite{
				Board: pos.Board,
				Bit:   pos.Bit,
				Error: string(errcode.Of(err)),
				TS:    s.now(),
			}, false))
		},
	})

	obs := &busObserver{conn: conn, now: s.now}
	eng, err := New(net, dev, sel, Options{
		Last:     last,
		Current:  current,
		Interval: time.Duration(cfg.IntervalMs) * time.Millisecond,
		Log:      s.log,
		Observer: obs,
		Now:      s.now,
	})
	if err != nil {
		return nil, err
	}
	obs.eng = eng
	// The starting track is already on; make that visible.
	if t, ok := net.Track(current); ok {
		obs.Power(t)
	}
	return eng, nil
}

// resolve maps a configured track name to an id, falling back to def.
func resolve(net *layout.Network, name string, def layout.ID) (layout.ID, error) {
	if name == "" {
		return def, nil
	}
	id, ok := net.ByName(name)
	if !ok {
		return layout.Invalid, &errcode.E{C: errcode.UnknownTrack, Op: "traversal", Msg: name}
	}
	return id, nil
}

func (s *Service) engineState(eng *Engine, lvl types.EngineLevel) types.EngineState {
	st := eng.State()
	out := types.EngineState{Level: lvl, Steps: st.Steps}
	if t, ok := eng.net.Track(st.Current); ok {
		out.Current = t.Label()
	}
	if t, ok := eng.net.Track(st.Last); ok {
		out.Last = t.Label()
	}
	if st.Halted != nil {
		out.Status = string(errcode.Of(st.Halted))
	}
	return out
}

func (s *Service) publishState(conn *bus.Connection, st types.EngineState) {
	st.TS = s.now()
	conn.Publish(conn.NewMessage(TopicState(), st, true))
}

// ---- bus observer ----

type busObserver struct {
	conn *bus.Connection
	eng  *Engine
	now  func() int64
}

func (o *busObserver) Transition(tr types.Transition) {
	o.conn.Publish(o.conn.NewMessage(TopicTransition(), tr, false))
	o.conn.Publish(o.conn.NewMessage(TopicState(), types.EngineState{
		Level:   types.EngineRunning,
		Current: label(tr.NextName, tr.Next),
		Last:    label(tr.CurrentName, tr.Current),
		Steps:   tr.Step,
		TS:      tr.TS,
	}, true))
}

func (o *busObserver) Power(t *layout.Track) {
	o.conn.Publish(o.conn.NewMessage(TopicPower(int(t.ID)), types.TrackPower{
		Track: int(t.ID),
		Name:  t.Name,
		On:    t.State == layout.PowerOn,
		TS:    o.now(),
	}, true))
}

func (o *busObserver) Switch(t *layout.Track) {
	o.conn.Publish(o.conn.NewMessage(TopicSwitch(int(t.ID)), types.SwitchPosition{
		Track: int(t.ID),
		Name:  t.Name,
		State: t.Switch.String(),
		TS:    o.now(),
	}, true))
}

func (o *busObserver) Halted(err error) {
	st := types.EngineState{Level: types.EngineHalted, Status: string(errcode.Of(err)), TS: o.now()}
	if o.eng != nil {
		s := o.eng.State()
		st.Steps = s.Steps
		if t, ok := o.eng.net.Track(s.Current); ok {
			st.Current = t.Label()
		}
		if t, ok := o.eng.net.Track(s.Last); ok {
			st.Last = t.Label()
		}
	}
	o.conn.Publish(o.conn.NewMessage(TopicState(), st, true))
}

func (o *busObserver) TransferFailed(err error) {
	o.conn.Publish(o.conn.NewMessage(TopicTransferError(), types.TransferError{
		Error: err.Error(),
		TS:    o.now(),
	}, false))
}

func label(name string, id int) string {
	return strx.Coalesce(name, layout.ID(id).String())
}

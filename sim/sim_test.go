package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modellbahn-go/bus"
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
	"modellbahn-go/layout/preset"
	"modellbahn-go/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "railway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout: modellbahn\nstart_last: C_3b\nstart_current: C_3a\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "C_3a", cfg.StartCurrent)
	assert.Equal(t, uint32(100), cfg.IntervalMs)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	p, err := Validate(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, preset.A1b, p.Current)

	cfg := DefaultConfig()
	cfg.Boards = []expansion.Board{{Outputs: 1}}
	_, err = Validate(cfg)
	assert.Equal(t, errcode.InvalidBoard, errcode.Of(err))

	cfg = DefaultConfig()
	cfg.StartLast, cfg.StartCurrent = "A_1a", "C_3a"
	_, err = Validate(cfg)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))

	cfg.StartLast = "Z_9"
	_, err = Validate(cfg)
	assert.Equal(t, errcode.UnknownTrack, errcode.Of(err))

	cfg.Layout = "attic"
	_, err = Validate(cfg)
	assert.Equal(t, errcode.UnknownLayout, errcode.Of(err))
}

func TestRun_Steps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntervalMs = 1

	var seen []types.Transition
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := Run(ctx, Options{
		Config:       cfg,
		Steps:        5,
		Metrics:      m,
		OnTransition: func(tr types.Transition) { seen = append(seen, tr) },
	})
	require.NoError(t, err)

	require.Len(t, seen, 5)
	assert.Equal(t, "A_1b", seen[0].CurrentName)
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, seen[i-1].Next, seen[i].Current, "transitions chain")
	}
	assert.Equal(t, types.EngineStopped, res.State.Level)
	assert.GreaterOrEqual(t, res.State.Steps, uint64(5))
	assert.Len(t, res.Latched, res.Boards.Size())
}

func TestRun_SelectTakesBranches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntervalMs = 1

	var picked int
	_, err := Run(context.Background(), Options{
		Config: cfg,
		Steps:  12,
		Select: true,
		OnTransition: func(tr types.Transition) {
			if tr.Selected {
				picked++
			}
		},
	})
	require.NoError(t, err)
	// A_1a -> A_1b -> A_a -> B_1a -> C_a is the first junction.
	assert.Positive(t, picked)
}

func TestRun_RejectsConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{Config: types.RailwayConfig{Layout: "attic"}})
	assert.Equal(t, errcode.UnknownLayout, errcode.Of(err))
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	msg := func(p any) *bus.Message { return &bus.Message{Payload: p} }

	m.Observe(msg(types.Transition{Step: 1, Current: 3, Next: 4}))
	m.Observe(msg(types.Transition{Step: 2, Current: 4, Next: 10}))
	m.Observe(msg(types.InvalidWrite{Board: 7, Error: "invalid_board"}))
	m.Observe(msg(types.InvalidWrite{Board: 0, Bit: 9, Error: "invalid_bit"}))
	m.Observe(msg(types.InvalidWrite{Board: 8, Error: "invalid_board"}))
	m.Observe(msg(types.SwitchPosition{Name: "A_a", State: "straight"}))
	m.Observe(msg(types.EngineState{Level: types.EngineHalted, Status: "routing_failure"}))
	m.Observe(msg(types.EngineState{Level: types.EngineHalted, Status: "unknown_layout"}))
	m.Observe(msg(types.TransferError{Error: "x"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Steps))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.CurrentTrack))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvalidWrites.WithLabelValues("invalid_board")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidWrites.WithLabelValues("invalid_bit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutingFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransferErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwitchThrows.WithLabelValues("A_a", "straight")))
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := ZapLogger{S: zap.New(core).Sugar()}

	l.Info("step", "current", "A_1b", "next", "A_a")
	l.Warn("invalid write", "pos", expansion.Position{Board: 7, Bit: 0})
	l.Error("routing failure", "err", errcode.RoutingFailure)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "step", entries[0].Message)
	assert.Equal(t, "A_a", entries[0].ContextMap()["next"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

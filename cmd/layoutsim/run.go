package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modellbahn-go/sim"
	"modellbahn-go/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the traversal until interrupted",
	RunE:  runSim,
}

func init() {
	runCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :2112")
	runCmd.Flags().Uint64("steps", 0, "stop after this many transitions (0 = run until interrupted)")
	runCmd.Flags().Bool("select", false, "hold the junction selector pressed")
	runCmd.Flags().Uint32("interval-ms", 0, "override the step interval")
	runCmd.Flags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.AddCommand(runCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := sim.LoadConfig(configPath(cmd))
	if err != nil {
		return err
	}
	if iv, _ := cmd.Flags().GetUint32("interval-ms"); iv > 0 {
		cfg.IntervalMs = iv
	}
	steps, _ := cmd.Flags().GetUint64("steps")
	sel, _ := cmd.Flags().GetBool("select")
	addr, _ := cmd.Flags().GetString("metrics-addr")
	lvlName, _ := cmd.Flags().GetString("log-level")

	lvl, err := zapcore.ParseLevel(lvlName)
	if err != nil {
		return err
	}
	zl, err := sim.NewLogger(lvl)
	if err != nil {
		return err
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)
	log := zap.S()

	// Handle SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *sim.Metrics
	if addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = sim.NewMetrics(reg)
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			log.Infow("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	log.Infow("starting", "layout", cfg.Layout, "interval_ms", cfg.IntervalMs, "select", sel)
	res, err := sim.Run(ctx, sim.Options{
		Config:  cfg,
		Log:     sim.ZapLogger{S: log.Named("railway")},
		Steps:   steps,
		Select:  sel,
		Metrics: metrics,
		OnTransition: func(tr types.Transition) {
			log.Debugw("transition", "step", tr.Step, "from", tr.CurrentName, "to", tr.NextName)
		},
	})
	log.Infow("finished", "state", res.State.Level, "steps", res.State.Steps, "current", res.State.Current, "frame", res.Latched)
	return err
}

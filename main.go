package main

import (
	"context"
	"time"

	"modellbahn-go/bus"
	"modellbahn-go/platform"
	"modellbahn-go/services/config"
	"modellbahn-go/services/heartbeat"
	"modellbahn-go/services/traversal"
	"modellbahn-go/x/logx"
)

const device = "pico"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	res, err := platform.NewResources(platform.PicoPlan)
	if err != nil {
		println("[main] platform init failed: " + err.Error())
		return
	}
	log := logx.New(res.Console, "railway")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)
	b := bus.NewBus(16)

	_ = heartbeat.New(res, log.With("heartbeat")).Start(ctx, b.NewConnection("heartbeat"))
	traversal.NewService(res, log).Start(ctx, b.NewConnection("traversal"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"), func(err error) {
		log.Error("no config", "device", device, "err", err)
	})

	select {}
}

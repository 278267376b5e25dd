package config

import (
	"context"

	"modellbahn-go/bus"
	"modellbahn-go/errcode"
	"modellbahn-go/types"
	"modellbahn-go/x/conv"
	"modellbahn-go/x/mathx"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName     = "config"
	configPrefix    = "config"
	railwayKey      = "railway"
	CtxDeviceKey    = "device" // context key used for device ID
	defaultInterval = 100
	minInterval     = 1
	maxInterval     = 60_000
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Decode parses a YAML railway config and fills in defaults.
func Decode(raw []byte) (types.RailwayConfig, error) {
	var cfg types.RailwayConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return types.RailwayConfig{}, errcode.Wrap(errcode.InvalidPayload, serviceName, err)
	}
	if cfg.Layout == "" {
		return types.RailwayConfig{}, errcode.New(errcode.InvalidPayload, serviceName, "layout is required")
	}
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = defaultInterval
	}
	cfg.IntervalMs = mathx.Clamp(cfg.IntervalMs, minInterval, maxInterval)
	var tmp [20]byte
	for i, b := range cfg.Boards {
		if b.Capacity() == 0 {
			return types.RailwayConfig{}, errcode.New(errcode.InvalidPayload, serviceName,
				"board "+string(conv.Itoa(tmp[:], int64(i)))+" has no registers")
		}
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Topic is where the railway config is retained.
func Topic() bus.Topic { return bus.T(configPrefix, railwayKey) }

// publishConfig reads the device config from embedded data and publishes it
// retained on config/railway.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errcode.New(errcode.InvalidParams, serviceName, "missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errcode.New(errcode.NotReady, serviceName, "no embedded config for device: "+device)
	}

	cfg, err := Decode(raw)
	if err != nil {
		return err
	}
	Publish(conn, cfg)
	return nil
}

// Publish retains cfg on config/railway.
func Publish(conn *bus.Connection, cfg types.RailwayConfig) {
	conn.Publish(conn.NewMessage(Topic(), cfg, true))
}

// Start launches the config publisher in a goroutine. Failures are
// reported through report when it is non-nil.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection, report func(error)) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil && report != nil {
			report(err)
		}
	}()
}

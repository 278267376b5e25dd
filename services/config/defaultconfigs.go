package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw YAML for that device, decoded into types.RailwayConfig
// -----------------------------------------------------------------------------

// The club layout on a Pico: seven single-output boards, push button to
// ground on the selector pin.
const cfgPico = `
layout: modellbahn
boards:
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
  - {inputs: 0, outputs: 1}
start_last: A_1a
start_current: A_1b
interval_ms: 100
selector_active_low: true
`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}

package types

import "modellbahn-go/drivers/expansion"

// ------------------------
// Railway configuration (retained on config/railway)
// ------------------------

type RailwayConfig struct {
	// Layout names a compiled-in preset, e.g. "modellbahn".
	Layout string `yaml:"layout" json:"layout"`
	// Boards overrides the preset's expansion chain when non-empty.
	Boards []expansion.Board `yaml:"boards,omitempty" json:"boards,omitempty"`
	// StartLast/StartCurrent name the two adjacent tracks the train starts
	// on. Empty means the preset default.
	StartLast    string `yaml:"start_last,omitempty" json:"start_last,omitempty"`
	StartCurrent string `yaml:"start_current,omitempty" json:"start_current,omitempty"`
	// IntervalMs is the step period (default 100).
	IntervalMs uint32 `yaml:"interval_ms,omitempty" json:"interval_ms,omitempty"`
	// SelectorActiveLow inverts the selector input (button to ground).
	SelectorActiveLow bool `yaml:"selector_active_low,omitempty" json:"selector_active_low,omitempty"`
	// ChipSelectActiveHigh inverts the expansion chip select.
	ChipSelectActiveHigh bool `yaml:"chip_select_active_high,omitempty" json:"chip_select_active_high,omitempty"`
}

// ------------------------
// Engine state (retained on railway/state)
// ------------------------

type EngineLevel string

const (
	EngineIdle    EngineLevel = "idle"
	EngineRunning EngineLevel = "running"
	EngineHalted  EngineLevel = "halted"
	EngineStopped EngineLevel = "stopped"
)

type EngineState struct {
	Level   EngineLevel `json:"level"`
	Status  string      `json:"status,omitempty"` // short error code when halted
	Current string      `json:"current,omitempty"`
	Last    string      `json:"last,omitempty"`
	Steps   uint64      `json:"steps"`
	TS      int64       `json:"ts_ms"`
}

// ------------------------
// Events
// ------------------------

// Transition is published on railway/transition once per step.
type Transition struct {
	Step    uint64 `json:"step"`
	Current int    `json:"current"`
	Next    int    `json:"next"`
	Last    int    `json:"last"`
	// Names mirror the ids for humans reading the bus.
	CurrentName string `json:"current_name,omitempty"`
	NextName    string `json:"next_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	// Selected is true when the selector picked the second candidate.
	Selected bool  `json:"selected,omitempty"`
	TS       int64 `json:"ts_ms"`
}

// TrackPower is retained on railway/track/<id>/power.
type TrackPower struct {
	Track int    `json:"track"`
	Name  string `json:"name,omitempty"`
	On    bool   `json:"on"`
	TS    int64  `json:"ts_ms"`
}

// SwitchPosition is retained on railway/track/<id>/switch.
type SwitchPosition struct {
	Track int    `json:"track"`
	Name  string `json:"name,omitempty"`
	State string `json:"state"` // "straight" | "curved"
	TS    int64  `json:"ts_ms"`
}

// InvalidWrite is published on railway/expansion/invalid.
type InvalidWrite struct {
	Board int    `json:"board"`
	Bit   uint8  `json:"bit"`
	Error string `json:"error"`
	TS    int64  `json:"ts_ms"`
}

// TransferError is published on railway/expansion/error.
type TransferError struct {
	Error string `json:"error"`
	TS    int64  `json:"ts_ms"`
}

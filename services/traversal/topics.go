package traversal

import "modellbahn-go/bus"

// ---- topic tokens (kept as constants so they live in flash) ----

const (
	tokConfig     = "config"
	tokRailway    = "railway"
	tokState      = "state"
	tokTransition = "transition"
	tokTrack      = "track"
	tokPower      = "power"
	tokSwitch     = "switch"
	tokExpansion  = "expansion"
	tokInvalid    = "invalid"
	tokError      = "error"
)

// TopicConfig carries the retained types.RailwayConfig.
func TopicConfig() bus.Topic { return bus.T(tokConfig, tokRailway) }

// TopicState carries the retained types.EngineState.
func TopicState() bus.Topic { return bus.T(tokRailway, tokState) }

// TopicTransition carries one types.Transition per step.
func TopicTransition() bus.Topic { return bus.T(tokRailway, tokTransition) }

// TopicPower carries the retained types.TrackPower of track id.
func TopicPower(id int) bus.Topic { return bus.T(tokRailway, tokTrack, id, tokPower) }

// TopicSwitch carries the retained types.SwitchPosition of switch id.
func TopicSwitch(id int) bus.Topic { return bus.T(tokRailway, tokTrack, id, tokSwitch) }

// TopicInvalidWrite carries types.InvalidWrite reports.
func TopicInvalidWrite() bus.Topic { return bus.T(tokRailway, tokExpansion, tokInvalid) }

// TopicTransferError carries types.TransferError reports.
func TopicTransferError() bus.Topic { return bus.T(tokRailway, tokExpansion, tokError) }

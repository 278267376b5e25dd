// Package preset holds the compiled-in layouts.
package preset

import (
	"modellbahn-go/drivers/expansion"
	"modellbahn-go/errcode"
	"modellbahn-go/layout"
)

// Preset is a complete layout: topology, expansion chain and the two
// adjacent tracks the train starts on.
type Preset struct {
	Name   string
	Tracks []layout.Track
	Boards []expansion.Board
	// Last and Current seed the traversal; Current is occupied first.
	Last, Current layout.ID
}

var presets = map[string]func() Preset{
	"modellbahn": Modellbahn,
}

// Lookup returns a fresh copy of the named preset.
func Lookup(name string) (Preset, error) {
	f, ok := presets[name]
	if !ok {
		return Preset{}, &errcode.E{C: errcode.UnknownLayout, Op: "preset", Msg: name}
	}
	return f(), nil
}

// Names lists the available presets.
func Names() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	return out
}

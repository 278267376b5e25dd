// Package platform supplies the hardware the railway controller runs on:
// the expansion SPI bus, its chip select, the selector input and the
// indicator LEDs. RP2 builds use machine pins; every other build gets
// inert fakes that tests and the host simulator can inspect.
package platform

import (
	"io"

	"tinygo.org/x/drivers"
)

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type Pin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// ---- Plan ----

// Plan specifies wiring and operating parameters for one board.
// A pin number below zero means "not fitted".
type Plan struct {
	SPI        SPIPlan
	ChipSelect int

	Selector     int
	SelectorPull Pull

	Status             int // toggles on every step
	Red, Yellow, Green int // signal LEDs for the startup sequence

	Console UARTPlan
}

type SPIPlan struct {
	SCK, SDO, SDI int
	Hz            uint32
	Mode          uint8
}

type UARTPlan struct {
	TX, RX int
	Baud   uint32
}

// PicoPlan is the wiring of the Pico carrier board.
var PicoPlan = Plan{
	SPI:          SPIPlan{SCK: 18, SDO: 19, SDI: 16, Hz: 175_000, Mode: 0},
	ChipSelect:   17,
	Selector:     15,
	SelectorPull: PullUp,
	Status:       25,
	Red:          13,
	Yellow:       14,
	Green:        12,
	Console:      UARTPlan{TX: 0, RX: 1, Baud: 115_200},
}

// ---- Resources ----

// Resources are the configured peripherals handed to services.
type Resources struct {
	SPI        drivers.SPI
	ChipSelect Pin
	Selector   Pin
	Status     Pin
	Red        Pin
	Yellow     Pin
	Green      Pin
	Console    io.Writer
}

// nopPin stands in for pins the plan does not fit.
type nopPin struct{}

func (nopPin) ConfigureInput(Pull) error  { return nil }
func (nopPin) ConfigureOutput(bool) error { return nil }
func (nopPin) Set(bool)                   {}
func (nopPin) Get() bool                  { return false }
func (nopPin) Toggle()                    {}
func (nopPin) Number() int                { return -1 }

// ActiveLow wraps p so that Get and Set use logical levels.
func ActiveLow(p Pin) Pin { return activeLow{p} }

type activeLow struct{ Pin }

func (a activeLow) Set(level bool)                { a.Pin.Set(!level) }
func (a activeLow) Get() bool                     { return !a.Pin.Get() }
func (a activeLow) ConfigureOutput(on bool) error { return a.Pin.ConfigureOutput(!on) }

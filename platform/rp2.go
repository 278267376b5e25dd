//go:build rp2040 || rp2350

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// Ensure the SPI peripheral satisfies the driver contract at compile time.
var _ drivers.SPI = machine.SPI0

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(b bool) { r.p.Set(b) }
func (r *rp2Pin) Get() bool  { return r.p.Get() }
func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

func pin(n int) Pin {
	if n < 0 {
		return nopPin{}
	}
	return &rp2Pin{p: machine.Pin(n), n: n}
}

// -----------------------------------------------------------------------------
// Resources
// -----------------------------------------------------------------------------

// NewResources configures SPI0, the GPIOs and the UART0 console.
func NewResources(plan Plan) (Resources, error) {
	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: plan.SPI.Hz,
		SCK:       machine.Pin(plan.SPI.SCK),
		SDO:       machine.Pin(plan.SPI.SDO),
		SDI:       machine.Pin(plan.SPI.SDI),
		Mode:      plan.SPI.Mode,
	}); err != nil {
		return Resources{}, err
	}

	res := Resources{
		SPI:        spi,
		ChipSelect: pin(plan.ChipSelect),
		Selector:   pin(plan.Selector),
		Status:     pin(plan.Status),
		Red:        pin(plan.Red),
		Yellow:     pin(plan.Yellow),
		Green:      pin(plan.Green),
	}
	// Chip select idles high until the expansion driver takes over.
	_ = res.ChipSelect.ConfigureOutput(true)
	_ = res.Selector.ConfigureInput(plan.SelectorPull)
	for _, p := range []Pin{res.Status, res.Red, res.Yellow, res.Green} {
		_ = p.ConfigureOutput(false)
	}

	// Defaults inside uartx apply if zero.
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: plan.Console.Baud,
		TX:       machine.Pin(plan.Console.TX),
		RX:       machine.Pin(plan.Console.RX),
	})
	res.Console = u
	return res, nil
}

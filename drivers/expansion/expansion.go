// Package expansion drives a daisy chain of shift-register expansion boards
// over SPI.
//
// Callers set individual output bits with SetBit and push the whole frame
// with Transfer:
//
//	d := expansion.New(spi, cs, boards, expansion.Config{})
//	_ = d.SetBit(expansion.Position{Board: 0, Bit: 3}, true)
//	err := d.Transfer()
//
// SetBit only touches the in-memory frame; bits accumulate until the next
// Transfer, which sends the frame as it is at the moment of the call.
package expansion

import (
	"sync"

	"modellbahn-go/errcode"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver. Use errors.Is or errcode.Of.
var (
	ErrInvalidBoard = &errcode.E{C: errcode.InvalidBoard, Op: "expansion"}
	ErrInvalidBit   = &errcode.E{C: errcode.InvalidBit, Op: "expansion"}
)

func errInvalidBoard(pos Position) error {
	return &errcode.E{C: errcode.InvalidBoard, Op: "expansion", Msg: "no board at " + pos.String()}
}

func errInvalidBit(pos Position) error {
	return &errcode.E{C: errcode.InvalidBit, Op: "expansion", Msg: "no output bit at " + pos.String()}
}

// Pin is the chip-select line. platform.Pin satisfies it.
type Pin interface {
	Set(level bool)
}

// Setter is the write half handed out by Apply.
type Setter interface {
	SetBit(pos Position, value bool) error
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// SelectActiveHigh drives chip select high during a frame.
	// Default is active-low, as on the reference boards.
	SelectActiveHigh bool
	// Report is called once for every rejected SetBit.
	Report func(pos Position, err error)
}

// Device owns the output and input frames of one chain.
type Device struct {
	mu     sync.Mutex
	spi    drivers.SPI
	cs     Pin
	cfg    Config
	layout Layout
	out    []byte
	in     []byte
}

// New creates the device and releases chip select. The SPI bus must already
// be configured.
func New(spi drivers.SPI, cs Pin, boards []Board, cfg Config) *Device {
	l := NewLayout(boards)
	d := &Device{
		spi:    spi,
		cs:     cs,
		cfg:    cfg,
		layout: l,
		out:    make([]byte, l.Size()),
		in:     make([]byte, l.Size()),
	}
	d.selectChain(false)
	return d
}

// Layout returns the frame layout.
func (d *Device) Layout() Layout { return d.layout }

// SetBit sets or clears one output bit. Out-of-range positions leave the
// frame untouched, are reported through Config.Report and returned.
func (d *Device) SetBit(pos Position, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setBit(pos, value)
}

// caller holds lock
func (d *Device) setBit(pos Position, value bool) error {
	idx, mask, err := d.layout.Index(pos)
	if err != nil {
		if d.cfg.Report != nil {
			d.cfg.Report(pos, err)
		}
		return err
	}
	if value {
		d.out[idx] |= mask
	} else {
		d.out[idx] &^= mask
	}
	return nil
}

// Transfer clocks the whole output frame out while reading the same number
// of bytes back. It blocks until the exchange completes.
func (d *Device) Transfer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transfer()
}

// caller holds lock
func (d *Device) transfer() error {
	d.selectChain(true)
	err := d.spi.Tx(d.out, d.in)
	d.selectChain(false)
	return errcode.Wrap(errcode.TransferFailed, "expansion", err)
}

// Apply runs fn against the frame and transfers it, holding the device lock
// for the whole sequence so no other writer sees a half-updated frame.
func (d *Device) Apply(fn func(s Setter)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(lockedSetter{d})
	return d.transfer()
}

type lockedSetter struct{ d *Device }

func (s lockedSetter) SetBit(pos Position, value bool) error { return s.d.setBit(pos, value) }

// Output returns a copy of the output frame.
func (d *Device) Output() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.out...)
}

// Input returns a copy of the bytes read during the last Transfer.
// Their meaning is up to the boards; the driver does not interpret them.
func (d *Device) Input() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.in...)
}

func (d *Device) selectChain(active bool) {
	if d.cs == nil {
		return
	}
	level := active
	if !d.cfg.SelectActiveHigh {
		level = !level
	}
	d.cs.Set(level)
}

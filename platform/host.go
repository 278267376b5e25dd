//go:build !rp2040 && !rp2350

package platform

import (
	"os"
	"sync"

	"modellbahn-go/drivers/expansion"

	"tinygo.org/x/drivers"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements Pin for host-side tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    Pull
	history []bool
}

// NewFakePin returns an input pin reading low.
func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	if pull == PullUp {
		p.level = true
	}
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.history = append(p.history, level)
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

// IsOutput reports the configured direction.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// History returns every level written through Set.
func (p *FakePin) History() []bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]bool(nil), p.history...)
}

// ----------------------------- SPI (host) ------------------------------------

// ShiftChain is a drivers.SPI that behaves like a daisy chain of shift
// registers as long as the chain length equals the frame length: each Tx
// latches the written frame and clocks the previously latched one back out.
type ShiftChain struct {
	mu     sync.Mutex
	latch  []byte
	frames int
}

var _ drivers.SPI = (*ShiftChain)(nil)

func (c *ShiftChain) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range r {
		if i < len(c.latch) {
			r[i] = c.latch[i]
		} else {
			r[i] = 0
		}
	}
	c.latch = append(c.latch[:0], w...)
	c.frames++
	return nil
}

func (c *ShiftChain) Transfer(b byte) (byte, error) {
	r := []byte{0}
	err := c.Tx([]byte{b}, r)
	return r[0], err
}

// Frames is the number of completed Tx calls.
func (c *ShiftChain) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Latched returns a copy of the last frame.
func (c *ShiftChain) Latched() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.latch...)
}

// Board returns the output registers board i latched in the last frame.
func (c *ShiftChain) Board(l expansion.Layout, i int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := l.Board(i)
	off := l.Offset(i)
	if !ok || off+int(b.Outputs) > len(c.latch) {
		return nil
	}
	return append([]byte(nil), c.latch[off:off+int(b.Outputs)]...)
}

// Output reports the level of one output bit in the last frame.
func (c *ShiftChain) Output(l expansion.Layout, pos expansion.Position) bool {
	idx, mask, err := l.Index(pos)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return idx < len(c.latch) && c.latch[idx]&mask != 0
}

// ----------------------------- Resources -------------------------------------

// Host bundles the fakes behind Resources so tests can reach them.
type Host struct {
	Chain      *ShiftChain
	ChipSelect *FakePin
	Selector   *FakePin
	Status     *FakePin
	Red        *FakePin
	Yellow     *FakePin
	Green      *FakePin
}

// NewHost creates fakes numbered after plan.
func NewHost(plan Plan) *Host {
	return &Host{
		Chain:      &ShiftChain{},
		ChipSelect: NewFakePin(plan.ChipSelect),
		Selector:   NewFakePin(plan.Selector),
		Status:     NewFakePin(plan.Status),
		Red:        NewFakePin(plan.Red),
		Yellow:     NewFakePin(plan.Yellow),
		Green:      NewFakePin(plan.Green),
	}
}

// Resources configures the fakes and returns them as Resources.
func (h *Host) Resources(plan Plan) Resources {
	_ = h.ChipSelect.ConfigureOutput(true)
	_ = h.Selector.ConfigureInput(plan.SelectorPull)
	for _, p := range []*FakePin{h.Status, h.Red, h.Yellow, h.Green} {
		_ = p.ConfigureOutput(false)
	}
	return Resources{
		SPI:        h.Chain,
		ChipSelect: h.ChipSelect,
		Selector:   h.Selector,
		Status:     h.Status,
		Red:        h.Red,
		Yellow:     h.Yellow,
		Green:      h.Green,
		Console:    os.Stdout,
	}
}

// NewResources builds host fakes for plan.
func NewResources(plan Plan) (Resources, error) {
	return NewHost(plan).Resources(plan), nil
}

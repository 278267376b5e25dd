// Package logx is a tiny key/value logger for firmware builds.
//
// Lines look like the rest of the firmware's console output:
//
//	[railway] step current=A_1b next=A_a last=A_1a
//
// Values are rendered without fmt so the package stays cheap on MCUs.
// Host tools may plug in a different Logger (see sim.ZapLogger).
package logx

import (
	"io"
	"sync"

	"modellbahn-go/x/conv"
)

// Logger is the observability sink used by drivers and services.
// kv is a flat list of alternating keys and values.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Level filters console output.
type Level uint8

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Console writes one line per call to W, prefixed with "[Prefix]".
type Console struct {
	mu     sync.Mutex
	W      io.Writer
	Prefix string
	Min    Level
	buf    []byte
}

// New returns a Console writing to w.
func New(w io.Writer, prefix string) *Console {
	return &Console{W: w, Prefix: prefix}
}

// With returns a Console sharing the writer but using another prefix.
func (c *Console) With(prefix string) *Console {
	return &Console{W: c.W, Prefix: prefix, Min: c.Min}
}

func (c *Console) Info(msg string, kv ...any)  { c.log(LevelInfo, "", msg, kv) }
func (c *Console) Warn(msg string, kv ...any)  { c.log(LevelWarn, "warn: ", msg, kv) }
func (c *Console) Error(msg string, kv ...any) { c.log(LevelError, "error: ", msg, kv) }

func (c *Console) log(lvl Level, tag, msg string, kv []any) {
	if lvl < c.Min || c.W == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.buf[:0]
	if c.Prefix != "" {
		b = append(b, '[')
		b = append(b, c.Prefix...)
		b = append(b, "] "...)
	}
	b = append(b, tag...)
	b = append(b, msg...)
	for i := 0; i < len(kv); i += 2 {
		b = append(b, ' ')
		b = appendValue(b, kv[i])
		b = append(b, '=')
		if i+1 < len(kv) {
			b = appendValue(b, kv[i+1])
		} else {
			b = append(b, '?')
		}
	}
	b = append(b, '\n')
	_, _ = c.W.Write(b)
	c.buf = b
}

func appendValue(b []byte, v any) []byte {
	var tmp [20]byte
	switch x := v.(type) {
	case nil:
		return append(b, "nil"...)
	case string:
		return append(b, x...)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int8:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int16:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int32:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int64:
		return append(b, conv.Itoa(tmp[:], x)...)
	case uint:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint8:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint16:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint32:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint64:
		return append(b, conv.Utoa(tmp[:], x)...)
	case error:
		return append(b, x.Error()...)
	case interface{ String() string }:
		return append(b, x.String()...)
	default:
		return append(b, '?')
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

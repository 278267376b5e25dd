package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	NotReady       Code = "not_ready"

	// Expansion chain
	InvalidBoard   Code = "invalid_board"
	InvalidBit     Code = "invalid_bit"
	TransferFailed Code = "transfer_failed"

	// Layout and traversal
	InvalidLayout  Code = "invalid_layout"
	UnknownLayout  Code = "unknown_layout"
	UnknownTrack   Code = "unknown_track"
	RoutingFailure Code = "routing_failure"
	InvalidRoute   Code = "invalid_route"
	Halted         Code = "halted"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is matches another *E or a bare Code by code only, so that
// errors.Is(err, errcode.RoutingFailure) works through wrapping.
func (e *E) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.C == t
	case *E:
		return e.C == t.C && (t.Op == "" || t.Op == e.Op)
	}
	return false
}

// New builds an *E.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around a cause. A nil cause yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return Of(u.Unwrap())
	}
	return Error
}

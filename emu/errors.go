package emu

import "fmt"

// Kind classifies console errors.
type Kind uint8

const (
	KindCartridge    Kind = iota + 1 // rom image can't be loaded
	KindStateVersion                 // save state from another format version
	KindStateCorrupt                 // save state doesn't decode or doesn't match the cartridge
	KindIO                           // file system
)

func (k Kind) String() string {
	switch k {
	case KindCartridge:
		return "invalid cartridge"
	case KindStateVersion:
		return "state version mismatch"
	case KindStateCorrupt:
		return "corrupt state"
	case KindIO:
		return "i/o error"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the error type returned by the console operations.
type Error struct {
	Kind Kind
	Op   string // operation that failed, such as "load rom"
	Err  error  // underlying error, may be nil
}

// Sentinels matching any Error of the same kind with errors.Is.
var (
	ErrInvalidCartridge = &Error{Kind: KindCartridge}
	ErrStateVersion     = &Error{Kind: KindStateVersion}
	ErrStateCorrupt     = &Error{Kind: KindStateCorrupt}
	ErrIO               = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func wrapErr(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

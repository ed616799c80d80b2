package suite

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	ErrGrammar   = errors.New("grammar error")
	ErrArity     = errors.New("arity mismatch")
	ErrDuplicate = errors.New("duplicate name")
)

// Error is a generation-time diagnostic. Kind is one of the sentinel errors above.
type Error struct {
	Kind error
	Pos  token.Position
	// Prev is the earlier declaration for duplicate errors.
	Prev token.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %v: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func errorf(kind error, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

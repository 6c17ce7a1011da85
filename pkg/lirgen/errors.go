package lirgen

import "tlog.app/go/errors"

// Lowering failure kinds. There is no local recovery: any of these aborts
// the invocation.
var (
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnknownIdentifier   = errors.New("unknown identifier")
	ErrBreakOutsideLoop    = errors.New("break outside of loop")
	ErrContinueOutsideLoop = errors.New("continue outside of loop")
	ErrTypeShapeMismatch   = errors.New("type shape mismatch")
	ErrMalformedBlock      = errors.New("malformed basic block")
)

package tool

import "errors"

// Faults a capability can hit. Typed layers wrap them with fmt.Errorf("%w: ...")
// and adapters turn them into text at the capability boundary.
var (
	ErrInputRejected   = errors.New("input rejected")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNumericOverflow = errors.New("numeric overflow")
	ErrDomain          = errors.New("result outside the real domain")
	ErrUnconfigured    = errors.New("capability not configured")
	ErrNotFound        = errors.New("no matching entry")
	ErrProvider        = errors.New("provider request failed")
)

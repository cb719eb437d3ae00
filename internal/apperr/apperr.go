// Package apperr names the error kinds from the error-handling design
// (spec §7) as sentinels usable with errors.Is, so transport code can map
// an error to the right HTTP status or WS close code without string
// matching on error text.
package apperr

import "errors"

// These sentinels are the seven error kinds from the error-handling design.
// These are not type names — they classify failures for propagation
// policy, not for carrying structured payload.
var (
	ErrInputValidation = errors.New("input validation")
	ErrCancelled       = errors.New("cancelled")
	ErrUpstream        = errors.New("upstream failure")
	ErrTimeout         = errors.New("timeout")
	ErrContentLoad     = errors.New("content load")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal")
)

// Wrap annotates err with kind so errors.Is(wrapped, kind) succeeds while
// the original error remains inspectable via errors.Is and errors.As.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: kind, err: err}
}

type wrapped struct {
	kind error
	err  error
}

func (w *wrapped) Error() string { return w.kind.Error() + ": " + w.err.Error() }
func (w *wrapped) Unwrap() []error { return []error{w.kind, w.err} }

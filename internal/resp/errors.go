package resp

import "errors"

// ErrMalformedFrame is returned by Parse when the buffer contains bytes
// that cannot be interpreted as RESP at all: an unrecognized prefix byte,
// a non-numeric length, or a negative bulk/array length other than the
// null-reply -1 sentinel. It is fatal to the connection: there is no
// well-defined resynchronization point after a malformed frame.
var ErrMalformedFrame = errors.New("resp: malformed frame")

// ErrUnknownPrefix is wrapped by ErrMalformedFrame when the first byte of
// a value is not one of '+', '-', ':', '$', '*'.
var ErrUnknownPrefix = errors.New("resp: unknown type prefix")

type malformedError struct {
	reason error
	detail string
}

func (e *malformedError) Error() string {
	if e.detail == "" {
		return ErrMalformedFrame.Error() + ": " + e.reason.Error()
	}
	return ErrMalformedFrame.Error() + ": " + e.reason.Error() + ": " + e.detail
}

func (e *malformedError) Unwrap() []error { return []error{ErrMalformedFrame, e.reason} }

func malformed(reason error, detail string) error {
	return &malformedError{reason: reason, detail: detail}
}

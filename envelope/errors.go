// Package envelope implements the JSON request/reply contract carried
// inside wire frame payloads: ApiQuery's Sql/Python/Executable tagged
// union, the ApiReply envelope, and the debug-gated ApiError shape, per
// spec §4.7 and §6.
package envelope

import "fmt"

// ErrorOp classifies an EnvelopeError by the condition that produced
// it, per spec §7.
type ErrorOp string

const (
	ErrSerialize   ErrorOp = "serialize"
	ErrDeserialize ErrorOp = "deserialize"
)

// Error reports a JSON envelope-level failure: the request could not
// be serialized, or the reply payload was not decodable as the
// expected envelope shape. The underlying connection is left untouched
// either way.
type Error struct {
	Op  ErrorOp
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("envelope: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

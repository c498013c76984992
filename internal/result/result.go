// Package result provides the two-variant outcome used across the client core
// in place of returned errors: a value is either Ok(payload) or Err(message).
package result

// Result holds either a successful payload or a failure message.
type Result[T any] struct {
	value   T
	message string
	failed  bool
}

// Ok wraps a successful payload.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failure message.
func Err[T any](message string) Result[T] {
	return Result[T]{message: message, failed: true}
}

// IsOk reports whether the result carries a payload.
func (r Result[T]) IsOk() bool {
	return !r.failed
}

// IsErr reports whether the result carries a failure message.
func (r Result[T]) IsErr() bool {
	return r.failed
}

// Value returns the payload, or the zero value for an Err.
func (r Result[T]) Value() T {
	return r.value
}

// Message returns the failure message, or "" for an Ok.
func (r Result[T]) Message() string {
	return r.message
}

// Match dispatches to exactly one of the handlers.
func Match[T any, R any](r Result[T], onOk func(T) R, onErr func(string) R) R {
	if r.failed {
		return onErr(r.message)
	}
	return onOk(r.value)
}

// Handle runs exactly one of the handlers.
func Handle[T any](r Result[T], onOk func(T), onErr func(string)) {
	if r.failed {
		onErr(r.message)
		return
	}
	onOk(r.value)
}

// Propagate re-types an Err so it can be returned from a function with a different payload.
func Propagate[T any, U any](r Result[U]) Result[T] {
	return Err[T](r.message)
}

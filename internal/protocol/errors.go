package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/cppdriver/internal/ast"
)

// MismatchLookback is how many links of a serialization failure's cause
// chain are searched for a type mismatch before it is treated as fatal.
const MismatchLookback = 3

// RequestError is an input line that is not a request.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "protocol: malformed request: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// SerializationError is a failure of the parsing collaborator or of the
// tree walk.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return "protocol: serialization: " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

// PanicError is a panic recovered while serving one request.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("protocol: panic: %v", e.Value) }

// SinkError is a response that could not be written. It always ends the
// loop.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "protocol: write response: " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

// Classify maps err to the status its envelope carries.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}
	var (
		re *RequestError
		se *SerializationError
	)
	switch {
	case errors.As(err, &re):
		return StatusError
	case errors.As(err, &se):
		if mismatchWithin(se.Err, MismatchLookback) {
			return StatusError
		}
	}
	return StatusFatal
}

// mismatchWithin reports whether one of the first n links of err's chain is
// an *ast.MismatchError.
func mismatchWithin(err error, n int) bool {
	for i := 0; i < n && err != nil; i++ {
		if _, ok := err.(*ast.MismatchError); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Kind names the failure class of err for the first diagnostic string.
func Kind(err error) string {
	var (
		re *RequestError
		se *SerializationError
		pe *PanicError
		sk *SinkError
	)
	switch {
	case errors.As(err, &re):
		return "RequestMalformed"
	case errors.As(err, &pe):
		return "SerializationFailure.Panic"
	case errors.As(err, &se):
		if Classify(err) == StatusError {
			return "SerializationFailure.TypeMismatch"
		}
		return "SerializationFailure"
	case errors.As(err, &sk):
		return "SinkFailure"
	}
	return fmt.Sprintf("%T", err)
}

// Message is the human-readable second diagnostic string.
func Message(err error) string {
	var (
		re *RequestError
		se *SerializationError
	)
	switch {
	case errors.As(err, &re):
		return "Error reading the petition: " + re.Err.Error()
	case errors.As(err, &se):
		return "Error serializing the AST to JSON: " + se.Err.Error()
	}
	return "A problem occurred while processing the petition: " + err.Error()
}

// Trace renders err's cause chain one link per line, followed by the stack
// of a recovered panic.
func Trace(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "%T: %v\n", e, e)
	}
	var pe *PanicError
	if errors.As(err, &pe) && len(pe.Stack) > 0 {
		b.WriteString("\n")
		b.Write(pe.Stack)
	}
	return strings.TrimRight(b.String(), "\n")
}

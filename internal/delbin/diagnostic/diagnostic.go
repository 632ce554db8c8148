// Package diagnostic provides delbin's standardized error and warning
// reporting: phase-scoped codes and an optional source location.
package diagnostic

import (
	"fmt"

	"github.com/delbin-lang/delbin/internal/delbin/position"
)

// Code identifies a delbin error by phase. Phases follow the schema
// pipeline: E01 parse, E02 name resolution, E03 type/size, E04
// evaluation, E05 host I/O.
type Code string

const (
	// Parse errors.
	E01001UnexpectedToken Code = "E01001"
	E01002UnexpectedEnd   Code = "E01002"
	E01003Syntax          Code = "E01003"
	E01004BadNumber       Code = "E01004"
	E01005BadString       Code = "E01005"

	// Name resolution errors.
	E02001UndefinedVariable Code = "E02001"
	E02002UndefinedField    Code = "E02002"
	E02003UndefinedSection  Code = "E02003"
	E02004UndefinedFunction Code = "E02004"

	// Type/size errors.
	E03001TypeMismatch      Code = "E03001"
	E03002ArraySizeMismatch Code = "E03002"
	E03003IntegerOverflow   Code = "E03003"
	E03004InvalidArraySize  Code = "E03004"
	E03005StringTooLong     Code = "E03005"

	// Evaluation errors.
	E04001DivisionByZero    Code = "E04001"
	E04002InvalidRange      Code = "E04002"
	E04003InvalidArgument   Code = "E04003"
	E04004ArgumentCount     Code = "E04004"
	E04005ComputationFailed Code = "E04005"
	E04006ShiftOverflow     Code = "E04006"

	// Host I/O errors (out of scope for the core engine; used by cmd/delbin).
	E05001FileNotFound          Code = "E05001"
	E05002FileReadError         Code = "E05002"
	E05003FileWriteError        Code = "E05003"
	E05004EngineVersionMismatch Code = "E05004"
)

// WarningCode identifies a non-fatal advisory.
type WarningCode string

const (
	W03001StringTruncated WarningCode = "W03001"
	W03002ValueTruncated  WarningCode = "W03002"
)

// Error is a fatal delbin diagnostic. It implements the error interface.
type Error struct {
	Code     Code
	Message  string
	Location *position.Position
}

func (e *Error) Error() string {
	if e.Location != nil && e.Location.IsValid() {
		return fmt.Sprintf("[%s] %s (at %s)", e.Code, e.Message, e.Location)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New creates an Error with no location set.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source location and returns the receiver for chaining.
func (e *Error) At(pos position.Position) *Error {
	e.Location = &pos
	return e
}

// Warning is a non-fatal advisory accumulated during evaluation.
type Warning struct {
	Code     WarningCode
	Message  string
	Location *position.Position
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// Collector accumulates warnings during a single generate call.
type Collector struct {
	warnings []Warning
}

// Add records a warning.
func (c *Collector) Add(code WarningCode, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns the accumulated warnings in emission order.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}

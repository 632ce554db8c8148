// Package delbin compiles a delbin schema source string into a
// bit-exact binary header. Parsing, layout, and evaluation live under
// internal/delbin; this file is the only public surface a host
// program needs.
package delbin

import (
	"strings"

	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
	"github.com/delbin-lang/delbin/internal/delbin/engine"
	"github.com/delbin-lang/delbin/internal/delbin/parser"
	"github.com/delbin-lang/delbin/internal/delbin/schemaver"
)

// Warning is a non-fatal advisory produced while generating a header,
// such as a truncated string or a narrowed integer value.
type Warning struct {
	Code    string
	Message string
}

// Result is the outcome of a successful Generate call.
type Result struct {
	Data     []byte
	Warnings []Warning
}

// EngineVersion is compared against a schema's optional
// @require_engine = "<constraint>"; directive.
const EngineVersion = "1.0.0"

// Environment supplies ${NAME} values referenced by a schema.
type Environment = engine.Environment

// Sections supplies named external byte blobs referenced by a schema.
type Sections = engine.Sections

// IntValue wraps a numeric environment value.
func IntValue(v uint64) engine.Value { return engine.Int(v) }

// StringValue wraps a string environment value.
func StringValue(v string) engine.Value { return engine.Str(v) }

// Generate parses src, validates it, and evaluates it into the final
// byte buffer. env supplies ${NAME} references; sections supplies the
// named external blobs @crc32/@sha256 may reference.
func Generate(src string, env Environment, sections Sections) (Result, error) {
	file, err := parser.Parse(src)
	if err != nil {
		return Result{}, err
	}

	if file.RequireEngine != nil {
		if err := schemaver.Check(EngineVersion, *file.RequireEngine); err != nil {
			return Result{}, err
		}
	}

	res, err := engine.Run(file, env, sections)
	if err != nil {
		return Result{}, err
	}

	return Result{Data: res.Data, Warnings: convertWarnings(res.Warnings)}, nil
}

// GenerateHex behaves like Generate but returns the result as an
// uppercase hex string with no separators instead of raw bytes.
func GenerateHex(src string, env Environment, sections Sections) (string, []Warning, error) {
	res, err := Generate(src, env, sections)
	if err != nil {
		return "", nil, err
	}
	return strings.ToUpper(ToHexString(res.Data)), res.Warnings, nil
}

// FieldReport describes one field's resolved offset and size, for
// tooling that wants to introspect a schema's layout without emitting
// bytes.
type FieldReport = engine.FieldReport

// Explain parses src and runs the layout pre-scan only (spec.md §4.3
// Pass 1): it returns every field's offset and size plus the struct's
// total size, without emitting or back-patching. Useful for a `delbin
// explain` CLI command that inspects a schema's shape.
func Explain(src string, env Environment, sections Sections) ([]FieldReport, int, error) {
	file, err := parser.Parse(src)
	if err != nil {
		return nil, 0, err
	}
	return engine.Explain(file, env, sections)
}

func convertWarnings(ws []diagnostic.Warning) []Warning {
	out := make([]Warning, len(ws))
	for i, w := range ws {
		out[i] = Warning{Code: string(w.Code), Message: w.Message}
	}
	return out
}

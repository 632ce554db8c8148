package engine

// Value is an environment parameter: either a numeric value (widened
// to u64 per spec.md §3) or a string. Exactly one of the two is valid,
// signaled by IsString.
type Value struct {
	IsString bool
	Number   uint64
	String   string
}

// Int wraps a numeric environment value.
func Int(v uint64) Value { return Value{Number: v} }

// Str wraps a string environment value.
func Str(v string) Value { return Value{IsString: true, String: v} }

// Environment maps parameter names to scalar/string values.
type Environment map[string]Value

// Sections maps section names to their external byte content.
type Sections map[string][]byte

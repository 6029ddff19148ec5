package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Validation errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unsupported syntax / unexpected token
	E1002 ErrorCode = "E1002" // Redirection with no target
	E1003 ErrorCode = "E1003" // Unexpected host value
	E1004 ErrorCode = "E1004" // Async expression on the left of && or ||
	E1005 ErrorCode = "E1005" // Unterminated compound, quote or substitution
	E1006 ErrorCode = "E1006" // Maximum nesting depth exceeded

	// Validation errors (E2xxx)
	E2001 ErrorCode = "E2001" // Disallowed construct
	E2002 ErrorCode = "E2002" // Host value index out of range
	E2003 ErrorCode = "E2003" // Malformed tree
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unsupported syntax",
	E1002: "missing redirect target",
	E1003: "unexpected host value",
	E1004: "async on left of binary",
	E1005: "unterminated compound",
	E1006: "maximum nesting depth exceeded",

	E2001: "disallowed construct",
	E2002: "host value out of range",
	E2003: "malformed tree",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "validation"
	default:
		return "unknown"
	}
}

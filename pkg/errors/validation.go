package errors

import (
	"strings"
	"unicode"
)

// DPI bounds accepted anywhere in the pipeline.
const (
	MinDPI = 72
	MaxDPI = 1200
)

// ValidateDPI checks that dpi lies within [MinDPI, MaxDPI].
func ValidateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return Validation("dpi %d out of range [%d, %d]", dpi, MinDPI, MaxDPI)
	}
	return nil
}

// ValidateCode validates a catalog code for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty codes
//   - No control characters or whitespace
//   - Maximum length of 64 characters
func ValidateCode(code string) error {
	if code == "" {
		return Validation("code cannot be empty")
	}
	if len(code) > 64 {
		return Validation("code too long (max 64 characters)")
	}
	for _, r := range code {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return Validation("code %q contains invalid characters", code)
		}
	}
	return nil
}

// ValidatePositive checks that a named quantity is strictly positive.
func ValidatePositive(name string, v float64) error {
	if !(v > 0) {
		return Validation("%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a named quantity is zero or positive.
func ValidateNonNegative(name string, v float64) error {
	if v < 0 {
		return Validation("%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidatePath validates an output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

var dniRegex = regexp.MustCompile(`^[0-9]{8}$`)

// ValidateDNI checks a national identity number: exactly eight digits.
// Surrounding whitespace is rejected rather than trimmed so that cache keys
// and history records always see the canonical form.
func ValidateDNI(dni string) error {
	if dni == "" {
		return New(ErrCodeInvalidInput, "DNI cannot be empty")
	}
	if !dniRegex.MatchString(dni) {
		return New(ErrCodeInvalidInput, "DNI must be exactly 8 digits, got %q", dni)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// The validation rules are:
//   - No empty paths
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

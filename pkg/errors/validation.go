package errors

import (
	"strings"
	"unicode"
)

// ValidateElementName validates an MJCF element name for safety and
// correctness. MuJoCo reserves '/' as the attachment separator, so names
// containing it are rejected for user-authored elements.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No whitespace (MJCF attribute lists are space-separated)
//   - No '/' outside of attachment-generated names
//   - Maximum length of 256 characters
func ValidateElementName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "element name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "element name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "element name contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "element name contains whitespace: %q", name)
		}
	}

	if strings.Contains(name, "/") {
		return New(ErrCodeInvalidName, "element name contains reserved separator '/': %q", name)
	}

	return nil
}

// ValidateAttachPrefix validates a prefix used when attaching one model
// into another. The prefix namespaces every name in the attached model, so
// it follows the same rules as element names.
func ValidateAttachPrefix(prefix string) error {
	if prefix == "" {
		return New(ErrCodeInvalidName, "attach prefix cannot be empty")
	}
	return ValidateElementName(prefix)
}

// ValidateModelPath validates a model file path for safety.
// It prevents path traversal out of the model directory when resolving
// <include> references and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateModelPath(path string) error {
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

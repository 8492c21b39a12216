package errors

import (
	"strings"
	"unicode"
)

// ValidateTag validates a tag string arriving from an API request or CLI
// flag before it reaches the registry or a document filter.
//
// The validation rules are intentionally conservative:
//   - No empty tags
//   - Must use the short "!name" form or the "tag:" URI form
//   - No whitespace or control characters
//   - Maximum length of 256 characters
//
// Whether the tag resolves to anything is a registry question, answered
// separately during decoding.
func ValidateTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidTag, "tag cannot be empty")
	}

	if len(tag) > 256 {
		return New(ErrCodeInvalidTag, "tag too long (max 256 characters)")
	}

	if !strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "tag:") {
		return New(ErrCodeInvalidTag, "tag must start with %q or %q: %q", "!", "tag:", tag)
	}

	for _, r := range tag {
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidTag, "tag cannot contain whitespace: %q", tag)
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTag, "tag contains invalid control characters")
		}
	}

	return nil
}

// ValidateFormat validates a serialization format name from a request
// body, query parameter, or CLI flag.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}

	switch format {
	case "yaml", "json":
		return nil
	}
	return New(ErrCodeInvalidFormat, "unknown format %q (expected yaml or json)", format)
}

// ValidateDocumentName validates a user-chosen document name before it
// becomes a storage key. Names are display identifiers, not paths.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "document name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "document name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "document name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateMaxDepth validates a caller-supplied nesting limit. Zero means
// "use the default" and is accepted; negative or absurdly large limits
// are rejected before they reach the engine.
func ValidateMaxDepth(depth int) error {
	const hardLimit = 1_000_000

	if depth < 0 {
		return New(ErrCodeInvalidInput, "max depth cannot be negative")
	}
	if depth > hardLimit {
		return New(ErrCodeInvalidInput, "max depth too large (max %d)", hardLimit)
	}
	return nil
}

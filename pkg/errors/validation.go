package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds widget and scene identifiers.
const maxNameLength = 128

// nameRegex matches identifiers usable as widget names inside scene files.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// reservedNames cannot be used for widgets because scene files use them to
// address the container itself.
var reservedNames = map[string]bool{
	"parent": true,
	"root":   true,
}

// ValidateName validates a widget name as it appears in a scene document.
//
// Rules:
//   - Not empty and at most 128 characters
//   - No control characters
//   - Starts with a letter or underscore, then letters, digits, '_', '.' or '-'
//   - Not one of the reserved container aliases ("parent", "root")
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "widget name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidScene, "widget name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "widget name contains control characters")
		}
	}
	if reservedNames[strings.ToLower(name)] {
		return New(ErrCodeInvalidScene, "widget name %q is reserved", name)
	}
	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidScene, "invalid widget name: %q", name)
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI is about to write to.
// Relative paths must not escape the working directory.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains a null byte")
	}
	if !filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return New(ErrCodeInvalidInput, "output path escapes the working directory: %q", path)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

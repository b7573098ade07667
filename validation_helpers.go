package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// MaxImportBytes bounds the size of files accepted by import.
const MaxImportBytes = 256 << 20

// ValidationError reports a bad argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateStringLength checks the rune length of value. A maxLen of zero
// means unbounded.
func ValidateStringLength(field, value string, minLen, maxLen int) error {
	length := utf8.RuneCountInString(value)
	if length < minLen {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters", minLen)}
	}
	if maxLen > 0 && length > maxLen {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d characters", maxLen)}
	}
	return nil
}

// ValidateFileExtension checks filename against allowed extensions, given
// without the dot.
func ValidateFileExtension(filename string, allowedExts []string) error {
	if filename == "" {
		return &ValidationError{Field: "filename", Message: "filename is required"}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return &ValidationError{Field: "filename", Message: "file must have an extension"}
	}
	for _, allowed := range allowedExts {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return &ValidationError{
		Field:   "filename",
		Message: fmt.Sprintf("file extension must be one of: %s", strings.Join(allowedExts, ", ")),
	}
}

// ValidateFileSize rejects empty files and files above maxSize.
func ValidateFileSize(size, maxSize int64) error {
	if size <= 0 {
		return &ValidationError{Field: "file_size", Message: "file is empty"}
	}
	if size > maxSize {
		return &ValidationError{
			Field:   "file_size",
			Message: fmt.Sprintf("file size exceeds maximum of %s", humanize.IBytes(uint64(maxSize))),
		}
	}
	return nil
}

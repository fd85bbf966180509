package services

import (
	"errors"
	"regexp"
	"strings"
)

// Client-side input caps. These reject bad input locally, before any
// remote call is made.
const (
	HandleMinLen  = 3
	HandleMaxLen  = 20
	BioMaxLen     = 300
	StatusMaxLen  = 100
	MessageMaxLen = 1000
)

var (
	ErrHandleLength   = errors.New("username must be 3-20 characters")
	ErrHandleCharset  = errors.New("username may only contain letters, digits and underscores")
	ErrBioTooLong     = errors.New("bio is too long")
	ErrStatusTooLong  = errors.New("status is too long")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NormalizeHandle lowercases a handle for uniqueness comparison.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// ValidateHandle checks length and charset of a desired username.
func ValidateHandle(handle string) error {
	handle = strings.TrimSpace(handle)
	if len(handle) < HandleMinLen || len(handle) > HandleMaxLen {
		return ErrHandleLength
	}
	if !handlePattern.MatchString(handle) {
		return ErrHandleCharset
	}
	return nil
}

// ValidateBio caps profile bio length.
func ValidateBio(bio string) error {
	if len(bio) > BioMaxLen {
		return ErrBioTooLong
	}
	return nil
}

// ValidateStatusText caps the free-form status line.
func ValidateStatusText(status string) error {
	if len(status) > StatusMaxLen {
		return ErrStatusTooLong
	}
	return nil
}

// ValidateMessage rejects blank or oversized chat messages. The returned
// string is the trimmed text to send.
func ValidateMessage(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if len(trimmed) > MessageMaxLen {
		return "", ErrMessageTooLong
	}
	return trimmed, nil
}

package redact

import "errors"

// Sentinel errors for redaction operations. Callers test them with errors.Is.
var (
	// ErrInvalidRequest marks a single malformed request. It appears in
	// Result.Skipped and never aborts a batch.
	ErrInvalidRequest = errors.New("invalid redaction request")

	// ErrImageNotFound is returned when the image file does not exist.
	ErrImageNotFound = errors.New("image not found")

	// ErrDecode is returned when the image bytes cannot be decoded.
	ErrDecode = errors.New("failed to decode image")

	// ErrEncode is returned when the redacted image cannot be encoded in its
	// original format. The original file is left unmodified.
	ErrEncode = errors.New("failed to encode image")

	// ErrNoBackup is returned by Restore when no backup exists.
	ErrNoBackup = errors.New("no backup")
)

package model

import "errors"

var (
	// ErrNotFound is returned when no subject row matches the given id.
	ErrNotFound = errors.New("subject not found")
	// ErrConflict is returned when a concurrent initialization wins the
	// insert race; the caller may retry.
	ErrConflict = errors.New("concurrent initialization conflict")
	// ErrPageOutOfRange is returned when a requested page is outside [1, total].
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrIntegrityViolation is returned when an id-scoped update affects
	// more than one row.
	ErrIntegrityViolation = errors.New("update affected more than one row")
	// ErrDecrypt is returned when ciphertext cannot be decrypted under the
	// stored key.
	ErrDecrypt = errors.New("cannot decrypt personal data")
)

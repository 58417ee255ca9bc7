// Package apperr defines the sentinel errors shared across the library.
// Callers match with errors.Is; packages wrap these with context using
// fmt.Errorf and %w.
package apperr

import "errors"

var (
	ErrInvalidDate          = errors.New("invalid calendar date")
	ErrJDOutOfRange         = errors.New("julian day out of range")
	ErrFileNotFound         = errors.New("ephemeris file not found")
	ErrCorruptHeader        = errors.New("corrupt ephemeris header")
	ErrBadEndianness        = errors.New("unrecognized byte order")
	ErrBodyUnsupported      = errors.New("body not supported")
	ErrEmptyCoefficients    = errors.New("empty coefficient set")
	ErrOutOfInterval        = errors.New("argument outside interval")
	ErrHouseSystemUndefined = errors.New("house system undefined")
	ErrConfigurationInvalid = errors.New("invalid configuration")
)

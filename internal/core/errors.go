// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors, wrapped with context by the packages that return them.
var (
	// Capture input errors
	ErrUnsupportedLinkType = errors.New("atalk: unsupported link type")
	ErrNotAppleTalk        = errors.New("atalk: frame does not carry appletalk")
	ErrShortDatagram       = errors.New("atalk: datagram too short")
	ErrSourceClosed        = errors.New("atalk: source closed")

	// Address parsing errors
	ErrInvalidAddress = errors.New("atalk: invalid address")

	// Configuration errors
	ErrConfigInvalid = errors.New("atalk: invalid configuration")
)

// Package errs defines the sentinel errors returned across the cinema-pipeline
// packages. Callers should use errors.Is against these values rather than
// comparing error strings.
package errs

import "errors"

var (
	// ErrShortRead is returned when a byte source yields fewer bytes than a
	// component needs to decode a fixed-size structure.
	ErrShortRead = errors.New("errs: short read")

	// ErrASMMismatch is returned when a master frame's attached sync marker
	// does not match the expected CCSDS ASM pattern.
	ErrASMMismatch = errors.New("errs: attached sync marker mismatch")

	// ErrUnknownAPID is returned when a packet's APID does not match any
	// registered decoder and the packet cannot be routed.
	ErrUnknownAPID = errors.New("errs: unknown APID")

	// ErrInvalidEventCode is returned when a STEIN event's EVCODE field is
	// outside the defined 0-3 range.
	ErrInvalidEventCode = errors.New("errs: invalid STEIN event code")

	// ErrInvalidAddress is returned when a STEIN EVCODE=3 event's ADD field
	// does not select a known diagnostic counter.
	ErrInvalidAddress = errors.New("errs: invalid STEIN diagnostic address")

	// ErrInvalidSensorMode is returned when a MAGIC status byte encodes a
	// sensor/mode combination outside the defined table.
	ErrInvalidSensorMode = errors.New("errs: invalid MAGIC sensor mode")

	// ErrSizeMismatch is returned when a decoder's fixed-size input buffer
	// does not match the length the decoder expects.
	ErrSizeMismatch = errors.New("errs: buffer size mismatch")

	// ErrBadTimestamp is returned when a reconstructed packet timestamp
	// fails range validation.
	ErrBadTimestamp = errors.New("errs: packet timestamp out of range")

	// ErrInsufficientBlock is returned when a timing block has too few
	// trusted samples to support a linear fit.
	ErrInsufficientBlock = errors.New("errs: insufficient samples for block fit")

	// ErrUnsupportedCodec is returned when a byte source's suffix does not
	// match any registered decompression codec.
	ErrUnsupportedCodec = errors.New("errs: unsupported archive codec")

	// ErrUnsupportedMode is returned when the timing engine encounters a
	// MAGIC temperature sample or an instrument mode it has no cadence
	// constant for.
	ErrUnsupportedMode = errors.New("errs: unsupported instrument mode")

	// ErrInvalidHeader is returned when a headerless packet slot's leading
	// byte does not match a known instrument header.
	ErrInvalidHeader = errors.New("errs: unrecognized packet header byte")

	// ErrClosed is returned when an operation is attempted on an already
	// closed source or sink.
	ErrClosed = errors.New("errs: already closed")
)

// Package export defines the abstract sink decoded packets are pushed into
// and the ASCII writers grounded in the original unpacker's save_data_as
// routines. The core only depends on the Sink interface; the CLI driver
// that walks source directories and opens destination files is an external
// collaborator (spec.md §1 Non-goals).
package export

import "github.com/kbyando/cinema-pipeline/telemetry"

// Sink is the abstract destination the core pushes decoded packets into.
// Implementations decide format, buffering, and destination; the core never
// assumes a file handle or a particular encoding.
type Sink interface {
	// Accept receives one decoded packet, in emission order.
	Accept(p *telemetry.DecodedPacket) error

	// Flush finalizes any buffered output. Callers must invoke it once after
	// the last Accept call.
	Flush() error
}

// timestampPlaceholder is emitted in place of timestamp_ISO8601 when a
// packet's AbsoluteTime could not be resolved by the timing engine, per
// spec.md §6's ASCII export contract.
const timestampPlaceholder = "YYYY-MM-DDTHH:MM:SS.mmmmmm"

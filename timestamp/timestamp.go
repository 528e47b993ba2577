// Package timestamp validates and repairs the raw on-board RTC timestamp
// tuples carried on STEIN, HSK, overflow, and MAGIC packets.
package timestamp

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/errs"
	"github.com/kbyando/cinema-pipeline/telemetry"
)

// Parse6 builds a full 6-tuple PacketTimestamp (MM,DD,HH,mm,ss,ff) from the
// 6 raw RTC bytes carried by STEIN, HSK, and overflow packets. Each byte is
// one field; no BCD decoding is applied.
func Parse6(b [6]byte) telemetry.PacketTimestamp {
	return telemetry.PacketTimestamp{
		Month:       int(b[0]),
		Day:         int(b[1]),
		Hour:        int(b[2]),
		Minute:      int(b[3]),
		Second:      int(b[4]),
		Centisecond: int(b[5]),
		HasDate:     true,
	}
}

// Parse4 builds a date-less 4-tuple PacketTimestamp (HH,mm,ss,ff) from the 4
// raw RTC bytes carried by MAGIC packets.
func Parse4(b [4]byte) telemetry.PacketTimestamp {
	return telemetry.PacketTimestamp{
		Hour:        int(b[0]),
		Minute:      int(b[1]),
		Second:      int(b[2]),
		Centisecond: int(b[3]),
		HasDate:     false,
	}
}

// Validate reports whether every populated field of t lies within its
// declared range. It is the gate spec'd to drive QoD-19 tagging in the
// timing engine.
func Validate(t telemetry.PacketTimestamp) bool {
	return t.InRange()
}

// ValidateErr is Validate expressed as an error return, for call sites that
// want a wrapped sentinel rather than a bool.
func ValidateErr(t telemetry.PacketTimestamp) error {
	if !t.InRange() {
		return fmt.Errorf("timestamp: %+v out of range: %w", t, errs.ErrBadTimestamp)
	}

	return nil
}

// ShiftLeft corrects a timestamp tuple suspected to have suffered a one-byte
// I2C-origin shift: it drops the leading field and appends a zero trailing
// field, preserving the tuple's 4- or 6-element arity. This is a diagnostic
// transformation exposed for operator-invoked repair; the timing engine
// never applies it automatically.
func ShiftLeft(t telemetry.PacketTimestamp) telemetry.PacketTimestamp {
	if t.HasDate {
		return telemetry.PacketTimestamp{
			Month:       t.Day,
			Day:         t.Hour,
			Hour:        t.Minute,
			Minute:      t.Second,
			Second:      t.Centisecond,
			Centisecond: 0,
			HasDate:     true,
		}
	}

	return telemetry.PacketTimestamp{
		Hour:        t.Minute,
		Minute:      t.Second,
		Second:      t.Centisecond,
		Centisecond: 0,
		HasDate:     false,
	}
}

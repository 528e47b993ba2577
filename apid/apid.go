// Package apid catalogs the CCSDS Application Process Identifiers the
// master-frame demultiplexer recognizes and routes.
package apid

// APID identifies the source application of a CCSDS packet.
type APID uint16

// Recognized application identifiers. Names mirror the downlink ICD; values
// in the 0x0A40-0x0B64 range are STEIN, MAGIC, and housekeeping telemetry,
// the only packet types this pipeline decodes into structured records.
const (
	STEIN       APID = 0x0A40 // science event telemetry
	MAGIC       APID = 0x0A41 // magnetometer vector telemetry
	RecordedHSK APID = 0x0A64 // recorded (SSR-played-back) housekeeping sweep
	Overflow    APID = 0x0A65 // STEIN event overflow continuation packet
	RecentHSK   APID = 0x0B64 // most-recent housekeeping sweep
)

// Unsupported lists APIDs observed in flight data with no decoder in this
// pipeline, by name; APID.String reports these names. The demultiplexer
// passes packets carrying them (like any other undecoded APID) through as
// KindUnknown packets with their raw bytes, or rejects them in strict mode,
// since the downlink legitimately carries diagnostic and command-echo
// traffic this pipeline does not need to interpret.
var Unsupported = map[APID]string{
	0x008C: "command_echo",
	0x0096: "event_report",
	0x00A0: "memory_dump",
	0x00A1: "memory_dump_continuation",
	0x00AA: "ground_support_equipment",
}

// Supported reports whether id is one of the APIDs the demultiplexer routes
// itself: the four decoded packet types plus Overflow, which has no decoder
// and is kept as raw bytes.
func Supported(id APID) bool {
	switch id {
	case STEIN, MAGIC, RecordedHSK, RecentHSK, Overflow:
		return true
	default:
		return false
	}
}

// String returns a human-readable name for id, or "unknown" if unrecognized.
func (a APID) String() string {
	switch a {
	case STEIN:
		return "STEIN"
	case MAGIC:
		return "MAGIC"
	case RecordedHSK:
		return "RECORDED_HSK"
	case RecentHSK:
		return "RECENT_HSK"
	case Overflow:
		return "OVERFLOW"
	default:
		if name, ok := Unsupported[a]; ok {
			return name
		}

		return "unknown"
	}
}

// Package decode unpacks the bit-packed instrument and housekeeping payloads
// carried inside CCSDS packets: STEIN particle-detector events, MAGIC
// magnetometer vector samples, and slow/fast housekeeping sweeps.
package decode

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/bitio"
	"github.com/kbyando/cinema-pipeline/errs"
)

// SteinEventKind tags the variant of a decoded STEIN event.
type SteinEventKind uint8

const (
	SteinData SteinEventKind = iota
	SteinSweepTriggers
	SteinSweepEvents
	SteinNoise
	SteinStatus
)

// SteinEvent is one decoded 20-bit STEIN event. Only the fields relevant to
// Kind are populated; the zero value is used for the rest.
type SteinEvent struct {
	Kind      SteinEventKind
	DetID     int
	Timestamp int
	EventData int
	StatusID  int
}

// SteinHousekeeping is the 8-byte IIB counter block following the 495-byte
// event payload, in the documented order from the CINEMA ICD.
type SteinHousekeeping struct {
	SPIOverflow  byte
	SPIUnderflow byte
	SPIChecksum  byte
	I2CChecksum  byte
	I2CUnderflow byte
	I2COverflow  byte
	CDIParity    byte
	CDIFraming   byte
}

// SteinPacket is the decoded payload of a STEIN event-report packet: 198
// events plus the trailing IIB housekeeping counters.
type SteinPacket struct {
	Events       [198]SteinEvent
	Housekeeping SteinHousekeeping

	// Errors holds one error per event slot that failed to decode (invalid
	// EVCODE or ADD). A failed event's slot in Events is the zero value.
	// Per spec §4.3, an invalid event fails per-event, not per-packet: the
	// rest of the packet's events still decode.
	Errors []error
}

const (
	steinEventPayloadLen = 495
	steinHousekeepingLen = 8
	steinPacketDataLen   = steinEventPayloadLen + steinHousekeepingLen
)

// decodeSteinEvent extracts a single 20-bit event from its raw word and
// dispatches on EVCODE (the top 2 bits).
func decodeSteinEvent(raw uint32) (SteinEvent, error) {
	evcode := (raw >> 18) & 0x3

	switch evcode {
	case 0:
		return SteinEvent{
			Kind:      SteinData,
			DetID:     int((raw >> 13) & 0x1F),
			Timestamp: int((raw >> 7) & 0x3F),
			EventData: int(raw & 0x7F),
		}, nil
	case 1:
		return SteinEvent{
			Kind:      SteinSweepTriggers,
			Timestamp: int((raw >> 12) & 0x3F),
			EventData: int(raw & 0xFFF),
		}, nil
	case 2:
		return SteinEvent{
			Kind:      SteinSweepEvents,
			Timestamp: int((raw >> 12) & 0x3F),
			EventData: int(raw & 0xFFF),
		}, nil
	case 3:
		add := (raw >> 17) & 0x1
		switch add {
		case 0:
			return SteinEvent{
				Kind:      SteinNoise,
				DetID:     int((raw >> 16) & 0x1),
				EventData: int(raw & 0xFFFF),
			}, nil
		case 1:
			return SteinEvent{
				Kind:      SteinStatus,
				StatusID:  int((raw >> 8) & 0xFF),
				EventData: int(raw & 0xFF),
			}, nil
		default:
			return SteinEvent{}, fmt.Errorf("decode: stein add=%d: %w", add, errs.ErrInvalidAddress)
		}
	default:
		return SteinEvent{}, fmt.Errorf("decode: stein evcode=%d: %w", evcode, errs.ErrInvalidEventCode)
	}
}

// extractSteinWords unpacks the 2 20-bit events packed into one 5-byte group.
func extractSteinWords(b []byte) (uint32, uint32) {
	event1 := uint32(b[2]&0x0F)<<16 | uint32(b[1])<<8 | uint32(b[0])
	event2 := uint32(b[4])<<12 | uint32(b[3])<<4 | uint32(b[2])>>4

	return event1, event2
}

// Stein decodes a 495-byte STEIN event payload plus its trailing 8-byte
// housekeeping block into 198 events. Each event's decode error is attached
// to that event's slot rather than aborting the whole packet: the caller
// gets every successfully-decoded event alongside a list of per-index
// errors.
func Stein(data []byte) (*SteinPacket, []error) {
	if len(data) != steinPacketDataLen {
		return nil, []error{fmt.Errorf("decode: stein payload len %d, want %d: %w", len(data), steinPacketDataLen, errs.ErrSizeMismatch)}
	}

	pkt := &SteinPacket{}
	cur := bitio.NewCursor(data[:steinEventPayloadLen])

	var errList []error
	for i := 0; i < 99; i++ {
		group, err := cur.Bytes(5)
		if err != nil {
			errList = append(errList, err)
			break
		}

		w1, w2 := extractSteinWords(group)

		e1, err := decodeSteinEvent(w1)
		if err != nil {
			errList = append(errList, fmt.Errorf("event %d: %w", 2*i, err))
		}
		pkt.Events[2*i] = e1

		e2, err := decodeSteinEvent(w2)
		if err != nil {
			errList = append(errList, fmt.Errorf("event %d: %w", 2*i+1, err))
		}
		pkt.Events[2*i+1] = e2
	}

	hk := data[steinEventPayloadLen:]
	pkt.Housekeeping = SteinHousekeeping{
		SPIOverflow:  hk[0],
		SPIUnderflow: hk[1],
		SPIChecksum:  hk[2],
		I2CChecksum:  hk[3],
		I2CUnderflow: hk[4],
		I2COverflow:  hk[5],
		CDIParity:    hk[6],
		CDIFraming:   hk[7],
	}
	pkt.Errors = errList

	return pkt, errList
}

// Package frame demultiplexes a 1289-byte CINEMA master telemetry frame
// into its sub-regions and dispatches each of the two packet slots to the
// matching instrument decoder.
package frame

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/kbyando/cinema-pipeline/apid"
	"github.com/kbyando/cinema-pipeline/bitio"
	"github.com/kbyando/cinema-pipeline/decode"
	"github.com/kbyando/cinema-pipeline/errs"
	"github.com/kbyando/cinema-pipeline/telemetry"
	"github.com/kbyando/cinema-pipeline/timestamp"
)

// ASM is the CCSDS Attached Synchronization Marker every master frame
// should begin its sync region with.
const ASM uint32 = 0x1ACFFC1D

// MasterFrameLen is the fixed size of one CINEMA master telemetry frame.
const MasterFrameLen = 1289

// Region byte-lengths, in on-wire order: SMEX header, ASM, transfer-frame
// header, packet#1, packet#2, overflow packet, OCF, Reed-Solomon code.
const (
	smexHeaderLen  = 10
	asmLen         = 4
	transferHdrLen = 13
	packetSlotLen  = 518
	overflowLen    = 62
	ocfLen         = 4
	reedSolomonLen = 160
)

const (
	packetHeaderSTEIN = 0xAF
	packetHeaderMAGIC = 0xBE
)

// Result is the outcome of demultiplexing one master frame.
type Result struct {
	ASMValid            bool
	TransferFrameHeader [13]byte
	Packets             []*telemetry.DecodedPacket
	Overflow            []byte // raw 62-byte overflow packet, if APID matched
	OverflowAPIDMatched bool
}

// Demux splits a 1289-byte master frame into its regions, validates the ASM,
// and decodes both packet slots. An ASM mismatch is recorded in the result
// rather than aborting decode: per spec, an invalid ASM marks the frame
// suspect but does not prevent its packets from being decoded.
func Demux(raw []byte, source telemetry.Provenance, opts ...Opt) (*Result, error) {
	if len(raw) != MasterFrameLen {
		return nil, fmt.Errorf("frame: master frame len %d, want %d: %w", len(raw), MasterFrameLen, errs.ErrSizeMismatch)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	cur := bitio.NewCursor(raw)

	// SMEX header (10 bytes): an opaque ground-segment prefix this pipeline
	// only needs to account for the width of, never to interpret.
	if err := cur.Skip(smexHeaderLen); err != nil {
		return nil, fmt.Errorf("frame: smex header: %w", err)
	}

	asmCode, err := cur.Uint32()
	if err != nil {
		return nil, fmt.Errorf("frame: asm: %w", err)
	}
	asmValid := asmCode == ASM
	if !asmValid && cfg.Strict {
		return nil, fmt.Errorf("frame: asm %#08x: %w", asmCode, errs.ErrASMMismatch)
	}

	res := &Result{ASMValid: asmValid}

	tfh, err := cur.Bytes(transferHdrLen)
	if err != nil {
		return nil, fmt.Errorf("frame: transfer frame header: %w", err)
	}
	copy(res.TransferFrameHeader[:], tfh)

	for i := 0; i < 2; i++ {
		slot, err := cur.Bytes(packetSlotLen)
		if err != nil {
			return nil, fmt.Errorf("frame: packet slot %d: %w", i, err)
		}

		pkt := decodeSlot(slot, res.TransferFrameHeader, source)
		if cfg.Strict && pkt.Kind == telemetry.KindUnknown {
			return nil, fmt.Errorf("frame: apid %#04x: %w", pkt.APID, errs.ErrUnknownAPID)
		}
		res.Packets = append(res.Packets, pkt)
	}

	overflow, err := cur.Bytes(overflowLen)
	if err != nil {
		return nil, fmt.Errorf("frame: overflow packet: %w", err)
	}
	overflowAPID := apid.APID(binary.BigEndian.Uint16(overflow[:2]))
	if overflowAPID == apid.Overflow {
		res.Overflow = overflow
		res.OverflowAPIDMatched = true
	}

	// OCF (4 bytes) and the Reed-Solomon code (160 bytes) close out the
	// frame; this pipeline has no use for either, so the cursor only needs
	// to account for their width.
	if err := cur.Skip(ocfLen + reedSolomonLen); err != nil {
		return nil, fmt.Errorf("frame: ocf/reed-solomon trailer: %w", err)
	}

	return res, nil
}

// decodeSlot dispatches one 512- or 518-byte packet slot to its decoder.
// Packets with an APID outside the supported set, or whose size matches
// neither the CCSDS-present nor CCSDS-absent convention, become KindUnknown
// with their raw bytes retained.
func decodeSlot(raw []byte, tfh [13]byte, source telemetry.Provenance) *telemetry.DecodedPacket {
	pkt := &telemetry.DecodedPacket{
		TransferFrameHeader: tfh,
		HasTransferFrame:    true,
		Source:              source,
		Kind:                telemetry.KindUnknown,
	}

	hasCCSDS := len(raw) == 518
	if !hasCCSDS && len(raw) != 512 {
		pkt.Payload = raw

		return pkt
	}

	ccsdsSize := 0
	if hasCCSDS {
		copy(pkt.CCSDS[:], raw[:6])
		pkt.CCSDSLen = 6
		pkt.APID = binary.BigEndian.Uint16(raw[:2])
		ccsdsSize = 6
	}
	afterCCSDS := raw[ccsdsSize:]

	a := apid.APID(pkt.APID)

	// HSK packets carry no packet-header byte (packetheader_size=0); every
	// other supported kind is identified by a 1-byte header immediately
	// following the CCSDS primary header (or, for headerless GSE input,
	// by that same byte at offset 0).
	isHSK := hasCCSDS && (a == apid.RecordedHSK || a == apid.RecentHSK)
	if isHSK {
		decodeHSK(pkt, afterCCSDS, a)

		return pkt
	}

	headerByte := afterCCSDS[0]
	body := afterCCSDS[1:]
	pkt.HeaderByte = &headerByte

	switch {
	case headerByte == packetHeaderSTEIN && (!hasCCSDS || a == apid.STEIN):
		decodeStein(pkt, body)
	case headerByte == packetHeaderMAGIC && (!hasCCSDS || a == apid.MAGIC):
		decodeMagic(pkt, body)
	default:
		pkt.Payload = raw
	}

	return pkt
}

// steinDataLen is the 495-byte event payload plus 8-byte housekeeping block
// that follows a STEIN packet's 6-byte timestamp. The packet slot itself
// carries 2 further trailing bytes beyond this that are not part of the
// decoded payload.
const steinDataLen = 495 + 8

func decodeStein(pkt *telemetry.DecodedPacket, body []byte) {
	pkt.Kind = telemetry.KindStein
	ts := body[:6]
	pkt.Timestamp = timestamp.Parse6([6]byte(ts))

	payload, _ := decode.Stein(body[6 : 6+steinDataLen])
	// Per-event decode errors (invalid EVCODE/ADD) are carried on
	// payload.Errors rather than failing the packet: spec §4.3 treats a bad
	// event code as a per-event failure, the packet survives.
	pkt.Payload = payload
}

func decodeMagic(pkt *telemetry.DecodedPacket, body []byte) {
	pkt.Kind = telemetry.KindMagic
	ts := body[:4]
	pkt.Timestamp = timestamp.Parse4([4]byte(ts))

	payload, err := decode.Magic(body[4:])
	if err != nil {
		pkt.Payload = body
		return
	}
	pkt.Payload = payload
}

func decodeHSK(pkt *telemetry.DecodedPacket, body []byte, a apid.APID) {
	if a == apid.RecordedHSK {
		pkt.Kind = telemetry.KindHSKRecorded
	} else {
		pkt.Kind = telemetry.KindHSKRecent
	}
	ts := body[:6]
	pkt.Timestamp = timestamp.Parse6([6]byte(ts))

	payload, err := decode.HSK(body[6:])
	if err != nil {
		pkt.Payload = body
		return
	}
	pkt.Payload = payload
}

// NewProvenance is a convenience constructor bundling a source path, hash,
// and extraction instant into the provenance record each decoded packet
// carries.
func NewProvenance(path, sha1 string, fastHash uint64, extractedAt time.Time) telemetry.Provenance {
	return telemetry.Provenance{
		Path:        path,
		SHA1:        sha1,
		FastHash:    fastHash,
		ExtractedAt: extractedAt,
	}
}

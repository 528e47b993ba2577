package decode

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/bitio"
	"github.com/kbyando/cinema-pipeline/errs"
)

const (
	magicHeaderByte  = 0xBE
	magicSampleCount = 39
	magicSampleLen   = 13
	magicPayloadLen  = magicSampleCount * magicSampleLen // 507
)

// MagicSample is one decoded 13-byte MAGIC vector sample. Bx, By, Bz, and
// Temp are raw 24-bit unsigned counts, matching the original unpacker's
// (explicitly "raw") output and SlowHSK's own 24-bit MagHousekeeping fields —
// no sign extension is applied here; engineering-unit conversion is a
// downstream, calibration-table concern.
type MagicSample struct {
	Mode   int // 0..3
	Sensor int // 0..1
	MT     int // 0..1; 1 means temperature sample
	Bx     int32
	By     int32
	Bz     int32
	Temp   int32
}

// MagicPacket is the decoded payload of a MAGIC vector-sample packet: 39
// samples sharing a common instrument mode.
type MagicPacket struct {
	Samples [magicSampleCount]MagicSample
}

// decodeMagicSample decodes one 13-byte MAGIC sample slot: a status byte
// followed by three 24-bit vector words and one 24-bit temperature word,
// all big-endian.
func decodeMagicSample(b []byte) (MagicSample, error) {
	if len(b) != magicSampleLen {
		return MagicSample{}, fmt.Errorf("decode: magic sample len %d, want %d: %w", len(b), magicSampleLen, errs.ErrSizeMismatch)
	}

	status := b[0]
	mode := int((status >> 2) & 0x7)
	sensor := int((status >> 1) & 0x1)
	mt := int(status & 0x1)

	cur := bitio.NewCursor(b[1:])
	bx, err := cur.Uint24()
	if err != nil {
		return MagicSample{}, err
	}
	by, err := cur.Uint24()
	if err != nil {
		return MagicSample{}, err
	}
	bz, err := cur.Uint24()
	if err != nil {
		return MagicSample{}, err
	}
	temp, err := cur.Uint24()
	if err != nil {
		return MagicSample{}, err
	}

	return MagicSample{
		Mode:   mode,
		Sensor: sensor,
		MT:     mt,
		Bx:     int32(bx),
		By:     int32(by),
		Bz:     int32(bz),
		Temp:   int32(temp),
	}, nil
}

// Magic decodes a 507-byte MAGIC data field into 39 samples.
func Magic(data []byte) (*MagicPacket, error) {
	if len(data) != magicPayloadLen {
		return nil, fmt.Errorf("decode: magic payload len %d, want %d: %w", len(data), magicPayloadLen, errs.ErrSizeMismatch)
	}

	pkt := &MagicPacket{}
	for i := 0; i < magicSampleCount; i++ {
		s, err := decodeMagicSample(data[i*magicSampleLen : (i+1)*magicSampleLen])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		pkt.Samples[i] = s
	}

	return pkt, nil
}

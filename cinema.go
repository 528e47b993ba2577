// Package cinema is a convenience facade over the demultiplexer, decoders,
// and timing engine: ProcessFile walks one source file's master frames,
// decodes every packet, runs the timing engine over its MAGIC stream, and
// pushes the result to an export.Sink. For fine-grained control — a custom
// byte source, per-frame inspection, a different timing epoch per block —
// use the frame, decode, and timing packages directly; this package only
// wires their common path together.
package cinema

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/kbyando/cinema-pipeline/apid"
	"github.com/kbyando/cinema-pipeline/decode"
	"github.com/kbyando/cinema-pipeline/export"
	"github.com/kbyando/cinema-pipeline/frame"
	"github.com/kbyando/cinema-pipeline/source"
	"github.com/kbyando/cinema-pipeline/telemetry"
	"github.com/kbyando/cinema-pipeline/timing"
)

// ProcessOptions configures one call to ProcessFile.
type ProcessOptions struct {
	// BaseDate supplies the calendar date the timing engine anchors
	// against. The on-board RTC carries no year, and a MAGIC packet's
	// 4-tuple timestamp carries no month/day either, so both must come from
	// an operator-supplied value rather than the wire data (spec.md §3 and
	// Design Note "Year injection", generalized here to a full date since
	// MAGIC alone cannot supply month/day). Midnight rollovers within the
	// file still advance the day via the timing engine's own rolloverCnt.
	BaseDate time.Time
}

// ProcessFile reads path from src (decompression, if any, is up to src, e.g.
// a source.DecompressingSource), decodes every master frame's packets, runs the timing engine
// over the file's MAGIC packets, and pushes every decoded packet —
// including the overflow packet when its APID matches and KindUnknown
// packets — to sink in on-wire emission order.
func ProcessFile(src source.ByteSource, path string, opts ProcessOptions, sink export.Sink) error {
	rc, err := src.Open(path)
	if err != nil {
		return fmt.Errorf("cinema: open %s: %w", path, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("cinema: read %s: %w", path, err)
	}

	sha1hex, err := source.SHA1Hex(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("cinema: hash %s: %w", path, err)
	}
	extractedAt := time.Now().UTC()

	reader := source.NewFrameReader(bytes.NewReader(raw))
	defer reader.Close()

	var packets []*telemetry.DecodedPacket
	var magicIdx []int // indices into packets that are MAGIC, in order

	for {
		buf, ferr := reader.Next()
		if ferr == io.EOF {
			break
		}
		if ferr != nil {
			return fmt.Errorf("cinema: %s: %w", path, ferr)
		}
		// The reader reuses buf on the next call to Next, and packets retained
		// below may alias it (raw KindUnknown and overflow payloads), so demux
		// a private copy of the frame.
		buf = append([]byte(nil), buf...)

		prov := frame.NewProvenance(path, sha1hex, source.FastHash(buf), extractedAt)

		res, derr := frame.Demux(buf, prov)
		if derr != nil {
			return fmt.Errorf("cinema: %s: %w", path, derr)
		}

		for _, pkt := range res.Packets {
			if pkt.Kind == telemetry.KindMagic {
				magicIdx = append(magicIdx, len(packets))
			}
			packets = append(packets, pkt)
		}

		if res.OverflowAPIDMatched {
			packets = append(packets, overflowPacket(res.Overflow, res.TransferFrameHeader, prov))
		}
	}

	if err := runTiming(opts.BaseDate, packets, magicIdx); err != nil {
		return fmt.Errorf("cinema: %s: %w", path, err)
	}

	for _, pkt := range packets {
		if err := sink.Accept(pkt); err != nil {
			return fmt.Errorf("cinema: %s: %w", path, err)
		}
	}

	return sink.Flush()
}

// overflowPacket wraps a matched overflow slot's raw bytes as a DecodedPacket
// so it flows through the same sink path as every other packet kind.
func overflowPacket(raw []byte, tfh [13]byte, prov telemetry.Provenance) *telemetry.DecodedPacket {
	return &telemetry.DecodedPacket{
		APID:                uint16(apid.Overflow),
		Kind:                telemetry.KindOverflow,
		Payload:             raw,
		Source:              prov,
		TransferFrameHeader: tfh,
		HasTransferFrame:    true,
	}
}

// runTiming runs the timing engine over the MAGIC packets at magicIdx within
// packets and writes the result's quality and per-sample times back onto the
// owning DecodedPacket, in place.
func runTiming(baseDate time.Time, packets []*telemetry.DecodedPacket, magicIdx []int) error {
	if len(magicIdx) == 0 {
		return nil
	}

	inputs := make([]timing.MagicPacketTiming, len(magicIdx))
	for i, idx := range magicIdx {
		pkt := packets[idx]
		mag := pkt.Payload.(*decode.MagicPacket)
		inputs[i] = timing.MagicPacketTiming{
			Timestamp: pkt.Timestamp,
			Mode:      mag.Samples[0].Mode,
			MT:        mag.Samples[0].MT,
		}
	}

	res, err := timing.Run(baseDate, inputs)
	if err != nil {
		return err
	}

	for i, idx := range magicIdx {
		pkt := packets[idx]
		pkt.Quality = res.Quality[2*i]
		pkt.AbsoluteTime = res.SampleTimes[i]
	}

	return nil
}

package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kbyando/cinema-pipeline/decode"
	"github.com/kbyando/cinema-pipeline/telemetry"
)

const isoMicros = "2006-01-02T15:04:05.000000"

// writePreamble writes the "%"-commented header block once at the top of
// every ASCII product, grounded in magic_unpack_v0_8_0.py's save_data_as
// banner (the original repeats a near-identical banner per instrument; this
// port parameterizes the title line and keeps the rest common).
func writePreamble(w io.Writer, title string) error {
	bar := "%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%\r\n"
	_, err := fmt.Fprintf(w, "%s%% %s\r\n%s", bar, title, bar)

	return err
}

// MagicASCII is a Sink that writes MAGIC packets in the column order from
// spec.md §6: timestamp_ISO8601 MODE SENSOR M Bx By Bz TEMP HH mm ss ff
// PACKET_CNT, CRLF line endings, a "%"-prefixed comment preamble.
type MagicASCII struct {
	w       *bufio.Writer
	raw     bool // true selects the ASCII-RAW variant (no HH/mm/ss/ff/PACKET_CNT trailer)
	started bool
}

// NewMagicASCII wraps w as a MAGIC ASCII sink. raw selects the ASCII-RAW
// column subset used by magic_unpack_v0_8_0.py's type="ASCII-RAW" path.
func NewMagicASCII(w io.Writer, raw bool) *MagicASCII {
	return &MagicASCII{w: bufio.NewWriter(w), raw: raw}
}

var _ Sink = (*MagicASCII)(nil)

func (s *MagicASCII) writeHeader() error {
	if err := writePreamble(s.w, "CINEMA MAGIC Event List"); err != nil {
		return err
	}
	if s.raw {
		_, err := s.w.WriteString("% timestamp_ISO8601 MODE SENSOR M Bx By Bz TEMP\r\n")

		return err
	}
	_, err := s.w.WriteString("% timestamp_ISO8601 MODE SENSOR M Bx By Bz TEMP HH mm ss ff PACKET_CNT\r\n")

	return err
}

// Accept writes one row per sample in p. Non-MAGIC packets are ignored, so
// a MagicASCII sink can be handed the same packet stream as other sinks.
func (s *MagicASCII) Accept(p *telemetry.DecodedPacket) error {
	if p.Kind != telemetry.KindMagic {
		return nil
	}

	mag, ok := p.Payload.(*decode.MagicPacket)
	if !ok {
		return nil
	}

	if !s.started {
		s.started = true
		if err := s.writeHeader(); err != nil {
			return err
		}
	}

	for j, sample := range mag.Samples {
		ts := timestampPlaceholder
		if j < len(p.AbsoluteTime) {
			ts = p.AbsoluteTime[j].UTC().Format(isoMicros)
		}

		if s.raw {
			_, err := fmt.Fprintf(s.w, "%s%2d%3d%3d%9d%9d%9d%9d\r\n",
				ts, sample.Mode, sample.Sensor, sample.MT, sample.Bx, sample.By, sample.Bz, sample.Temp)
			if err != nil {
				return err
			}

			continue
		}

		_, err := fmt.Fprintf(s.w, "%s%2d%3d%3d%9d%9d%9d%9d%3d%3d%3d%3d%6d\r\n",
			ts, sample.Mode, sample.Sensor, sample.MT, sample.Bx, sample.By, sample.Bz, sample.Temp,
			p.Timestamp.Hour, p.Timestamp.Minute, p.Timestamp.Second, p.Timestamp.Centisecond, p.PacketCount())
		if err != nil {
			return err
		}
	}

	return nil
}

// Flush flushes the underlying buffered writer.
func (s *MagicASCII) Flush() error {
	return s.w.Flush()
}

// SteinASCII is a Sink that writes STEIN events in the column order from
// stein_unpack_v0_8_0.py's save_data_as: timestamp EVCODE ADD DET_ID
// EVENT_DATA.
type SteinASCII struct {
	w       *bufio.Writer
	started bool
}

// NewSteinASCII wraps w as a STEIN ASCII sink.
func NewSteinASCII(w io.Writer) *SteinASCII {
	return &SteinASCII{w: bufio.NewWriter(w)}
}

var _ Sink = (*SteinASCII)(nil)

func (s *SteinASCII) Accept(p *telemetry.DecodedPacket) error {
	if p.Kind != telemetry.KindStein {
		return nil
	}

	stein, ok := p.Payload.(*decode.SteinPacket)
	if !ok {
		return nil
	}

	if !s.started {
		s.started = true
		if err := writePreamble(s.w, "CINEMA STEIN Event List"); err != nil {
			return err
		}
		if _, err := s.w.WriteString("% timestamp EVCODE ADD DET_ID EVENT_DATA\n"); err != nil {
			return err
		}
	}

	ts := packetTimestampString(p.Timestamp)
	for _, ev := range stein.Events {
		evcode, add := steinEvcodeAdd(ev.Kind)
		detID := ev.DetID
		data := ev.EventData
		if ev.Kind == decode.SteinStatus {
			data = ev.StatusID<<8 | ev.EventData
		}

		_, err := fmt.Fprintf(s.w, "%s%2d%3d%3d%4d\n", ts, evcode, add, detID, data)
		if err != nil {
			return err
		}
	}

	return nil
}

// Flush flushes the underlying buffered writer.
func (s *SteinASCII) Flush() error {
	return s.w.Flush()
}

func steinEvcodeAdd(k decode.SteinEventKind) (evcode, add int) {
	switch k {
	case decode.SteinData:
		return 0, 0
	case decode.SteinSweepTriggers:
		return 1, 0
	case decode.SteinSweepEvents:
		return 2, 0
	case decode.SteinNoise:
		return 3, 0
	case decode.SteinStatus:
		return 3, 1
	default:
		return -1, -1
	}
}

func packetTimestampString(t telemetry.PacketTimestamp) string {
	if t.HasDate {
		return fmt.Sprintf("%02d/%02d %02d:%02d:%02d.%02d", t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Centisecond)
	}

	return fmt.Sprintf("%02d:%02d:%02d.%02d", t.Hour, t.Minute, t.Second, t.Centisecond)
}

// HousekeepingASCII is a Sink that writes one row per fast-HSK channel
// repeat, with engineering-unit conversion applied via the channel
// calibration table (spec §4.4's "applied downstream" calibration step).
type HousekeepingASCII struct {
	w       *bufio.Writer
	cal     decode.Calibration
	started bool
}

// NewHousekeepingASCII wraps w as an HSK ASCII sink, applying cal to every
// fast-channel value it writes.
func NewHousekeepingASCII(w io.Writer, cal decode.Calibration) *HousekeepingASCII {
	return &HousekeepingASCII{w: bufio.NewWriter(w), cal: cal}
}

var _ Sink = (*HousekeepingASCII)(nil)

func (s *HousekeepingASCII) Accept(p *telemetry.DecodedPacket) error {
	if p.Kind != telemetry.KindHSKRecent && p.Kind != telemetry.KindHSKRecorded {
		return nil
	}

	hsk, ok := p.Payload.(*decode.HousekeepingPacket)
	if !ok {
		return nil
	}

	if !s.started {
		s.started = true
		if err := writePreamble(s.w, "CINEMA Housekeeping Sweep"); err != nil {
			return err
		}
		if _, err := s.w.WriteString("% timestamp CHANNEL REPEAT VALUE\r\n"); err != nil {
			return err
		}
	}

	ts := packetTimestampString(p.Timestamp)
	values := decode.ApplyCalibration(&hsk.Fast, s.cal)
	names := decode.FastHSKChannelNames()
	for c, name := range names {
		for r := 0; r < len(values[c]); r++ {
			_, err := fmt.Fprintf(s.w, "%s %s %d %f\r\n", ts, name, r, values[c][r])
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Flush flushes the underlying buffered writer.
func (s *HousekeepingASCII) Flush() error {
	return s.w.Flush()
}

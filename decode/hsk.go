package decode

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/bitio"
	"github.com/kbyando/cinema-pipeline/errs"
)

const (
	slowHSKLen = 86
	fastHSKLen = 420

	fastHSKChannels = 48
	fastHSKRepeats  = 7
)

// slowHSKFieldLengths is the fixed byte-length table the 86-byte slow
// housekeeping subframe decomposes into, in order.
var slowHSKFieldLengths = [11]int{1, 1, 2, 2, 16, 10, 2, 4, 24, 13, 4}

// DeviceEnables is the DEVENABLE bitfield (2 bytes).
type DeviceEnables struct {
	Flash, SBand, Torq, Act, Mag, Stein, Att, HV byte
	Scan, RTC, IIB, UHF                          byte
}

// PeripheralEnables is the PERIPHENABLE bitfield (2 bytes).
type PeripheralEnables struct {
	Timer2, Timer3, Timer4, I2C1, I2C2, UART2, ADC, UART1 byte
	SPI1, SPI2, IC1, IC5, OC4                             byte
}

// MiscCounters is the MISC block (16 bytes).
type MiscCounters struct {
	Trigger, ErrData                               uint16
	ErrCtr, ErrCode, EvtCtr, EvtCode                byte
	CmdTot, DlyCmdSize                              uint16
	ImmCmdSize, CinemaState, BeaconState, SRAMPage  byte
}

// SSRState is the SSR_STATE block (10 bytes).
type SSRState struct {
	HSKPktNum, DataPktNum uint32 // 3-byte big-endian values
	HSKPktPtr, DataPktPtr uint16
}

// DeployControl is the DEPLOY_CONTROL block (2 bytes).
type DeployControl struct {
	AntennaStatus byte
	BoomStatus    byte
}

// PowerControl is the POWER_CONTROL block (4 bytes).
type PowerControl struct {
	AttSelect, AttTime, BoomTime, Spare byte
}

// ACSState is the ACS block (24 bytes).
type ACSState struct {
	Mode, TorqueCoils                  byte
	Elevation, SpinRate                int32
	OmegaX, OmegaY, OmegaZ             int32
	EphemerisIntegrity1, EphemerisIntegrity2 byte
}

// MagHousekeeping is the MAG_HOUSEKEEPING block (13 bytes).
type MagHousekeeping struct {
	Fault, Status byte
	Bx, By, Bz    int32 // 24-bit big-endian
	Spare         uint16
}

// SteinHousekeepingSlow is the STEIN_HOUSEKEEPING block (4 bytes) found in
// the slow HSK sweep (distinct from the STEIN packet's own trailing IIB
// counters).
type SteinHousekeepingSlow struct {
	Fault, HVFault, SweepIntegrity, Spare byte
}

// SlowHousekeeping is the fully decoded 86-byte slow HSK subframe.
type SlowHousekeeping struct {
	FlightMode          byte
	FSWVersionHigh      byte
	FSWVersionLow       byte
	DeviceEnables       DeviceEnables
	PeripheralEnables   PeripheralEnables
	Misc                MiscCounters
	SSR                 SSRState
	Deploy              DeployControl
	Power               PowerControl
	ACS                 ACSState
	Mag                 MagHousekeeping
	Stein               SteinHousekeepingSlow
}

// FastHousekeeping is the decoded 420-byte fast HSK subframe: 48 channels,
// each sampled 7 times across the sweep.
type FastHousekeeping struct {
	// Channels[c][r] is channel c's r-th repetition, c in [0,48), r in [0,7).
	Channels [fastHSKChannels][fastHSKRepeats]uint16
}

// HousekeepingPacket is the decoded payload of a recorded- or recent-HSK
// packet.
type HousekeepingPacket struct {
	Slow SlowHousekeeping
	Fast FastHousekeeping
}

func decodeDeviceEnables(b []byte) DeviceEnables {
	b0, b1 := b[0], b[1]

	return DeviceEnables{
		Flash: (b0 >> 7) & 1,
		SBand: (b0 >> 6) & 1,
		Torq:  (b0 >> 5) & 1,
		Act:   (b0 >> 4) & 1,
		Mag:   (b0 >> 3) & 1,
		Stein: (b0 >> 2) & 1,
		Att:   (b0 >> 1) & 1,
		HV:    b0 & 1,
		Scan:  (b1 >> 7) & 1,
		RTC:   (b1 >> 6) & 1,
		IIB:   (b1 >> 5) & 1,
		UHF:   (b1 >> 4) & 1,
	}
}

func decodePeripheralEnables(b []byte) PeripheralEnables {
	b0, b1 := b[0], b[1]

	return PeripheralEnables{
		Timer2: (b0 >> 7) & 1,
		Timer3: (b0 >> 6) & 1,
		Timer4: (b0 >> 5) & 1,
		I2C1:   (b0 >> 4) & 1,
		I2C2:   (b0 >> 3) & 1,
		UART2:  (b0 >> 2) & 1,
		ADC:    (b0 >> 1) & 1,
		UART1:  b0 & 1,
		SPI1:   (b1 >> 7) & 1,
		SPI2:   (b1 >> 6) & 1,
		IC1:    (b1 >> 5) & 1,
		IC5:    (b1 >> 4) & 1,
		OC4:    (b1 >> 3) & 1,
	}
}

// decodeMisc reads the 16-byte MISC counter block via a bitio.Cursor rather
// than ad-hoc offset slicing, the same sequential-field pattern used
// throughout this package's multi-byte reads.
func decodeMisc(b []byte) (MiscCounters, error) {
	cur := bitio.NewCursor(b)

	var m MiscCounters
	var err error
	if m.Trigger, err = cur.Uint16(); err != nil {
		return m, err
	}
	if m.ErrCtr, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.ErrData, err = cur.Uint16(); err != nil {
		return m, err
	}
	if m.ErrCode, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.EvtCtr, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.EvtCode, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.CmdTot, err = cur.Uint16(); err != nil {
		return m, err
	}
	if m.ImmCmdSize, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.DlyCmdSize, err = cur.Uint16(); err != nil {
		return m, err
	}
	if m.CinemaState, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.BeaconState, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.SRAMPage, err = cur.Byte(); err != nil {
		return m, err
	}

	return m, nil
}

func decodeSSRState(b []byte) (SSRState, error) {
	cur := bitio.NewCursor(b)

	var s SSRState
	var err error
	if s.HSKPktNum, err = cur.Uint24(); err != nil {
		return s, err
	}
	if s.DataPktNum, err = cur.Uint24(); err != nil {
		return s, err
	}
	if s.HSKPktPtr, err = cur.Uint16(); err != nil {
		return s, err
	}
	if s.DataPktPtr, err = cur.Uint16(); err != nil {
		return s, err
	}

	return s, nil
}

func decodeACS(b []byte) (ACSState, error) {
	cur := bitio.NewCursor(b)

	var a ACSState
	var err error
	if a.Mode, err = cur.Byte(); err != nil {
		return a, err
	}
	if a.TorqueCoils, err = cur.Byte(); err != nil {
		return a, err
	}
	for _, dst := range []*int32{&a.Elevation, &a.SpinRate, &a.OmegaX, &a.OmegaY, &a.OmegaZ} {
		v, err := cur.Uint32()
		if err != nil {
			return a, err
		}
		*dst = int32(v)
	}
	if a.EphemerisIntegrity1, err = cur.Byte(); err != nil {
		return a, err
	}
	if a.EphemerisIntegrity2, err = cur.Byte(); err != nil {
		return a, err
	}

	return a, nil
}

func decodeMagHousekeeping(b []byte) (MagHousekeeping, error) {
	cur := bitio.NewCursor(b)

	var m MagHousekeeping
	var err error
	if m.Fault, err = cur.Byte(); err != nil {
		return m, err
	}
	if m.Status, err = cur.Byte(); err != nil {
		return m, err
	}
	for _, dst := range []*int32{&m.Bx, &m.By, &m.Bz} {
		v, err := cur.Uint24()
		if err != nil {
			return m, err
		}
		*dst = int32(v)
	}
	if m.Spare, err = cur.Uint16(); err != nil {
		return m, err
	}

	return m, nil
}

// SlowHSK decodes an 86-byte slow housekeeping subframe. It walks
// slowHSKFieldLengths with a bitio.Cursor rather than tracking an offset by
// hand, the declarative-table-plus-single-reader shape the ICD's bitfield
// catalog calls for.
func SlowHSK(data []byte) (*SlowHousekeeping, error) {
	if len(data) != slowHSKLen {
		return nil, fmt.Errorf("decode: slow HSK len %d, want %d: %w", len(data), slowHSKLen, errs.ErrSizeMismatch)
	}

	cur := bitio.NewCursor(data)
	fields := make([][]byte, len(slowHSKFieldLengths))
	for i, n := range slowHSKFieldLengths {
		f, err := cur.Bytes(n)
		if err != nil {
			return nil, fmt.Errorf("decode: slow HSK field %d: %w", i, err)
		}
		fields[i] = f
	}

	misc, err := decodeMisc(fields[4])
	if err != nil {
		return nil, fmt.Errorf("decode: slow HSK misc block: %w", err)
	}
	ssr, err := decodeSSRState(fields[5])
	if err != nil {
		return nil, fmt.Errorf("decode: slow HSK SSR state: %w", err)
	}
	acs, err := decodeACS(fields[8])
	if err != nil {
		return nil, fmt.Errorf("decode: slow HSK ACS block: %w", err)
	}
	mag, err := decodeMagHousekeeping(fields[9])
	if err != nil {
		return nil, fmt.Errorf("decode: slow HSK mag housekeeping: %w", err)
	}

	return &SlowHousekeeping{
		FlightMode:        fields[0][0],
		FSWVersionHigh:    fields[1][0] >> 4,
		FSWVersionLow:     fields[1][0] & 0x0F,
		DeviceEnables:     decodeDeviceEnables(fields[2]),
		PeripheralEnables: decodePeripheralEnables(fields[3]),
		Misc:              misc,
		SSR:               ssr,
		Deploy:            DeployControl{AntennaStatus: fields[6][0], BoomStatus: fields[6][1]},
		Power: PowerControl{
			AttSelect: fields[7][0], AttTime: fields[7][1], BoomTime: fields[7][2], Spare: fields[7][3],
		},
		ACS: acs,
		Mag: mag,
		Stein: SteinHousekeepingSlow{
			Fault: fields[10][0], HVFault: fields[10][1], SweepIntegrity: fields[10][2], Spare: fields[10][3],
		},
	}, nil
}

// FastHSK decodes a 420-byte fast housekeeping subframe: 336 10-bit values
// packed 4-per-5-bytes, reshaped into 48 channels x 7 repeats where channel
// c's r-th repetition sits at flat index r*48+c.
func FastHSK(data []byte) (*FastHousekeeping, error) {
	if len(data) != fastHSKLen {
		return nil, fmt.Errorf("decode: fast HSK len %d, want %d: %w", len(data), fastHSKLen, errs.ErrSizeMismatch)
	}

	var flat [fastHSKChannels * fastHSKRepeats]uint16
	for i := 0; i < len(flat)/4; i++ {
		vals, err := bitio.Unpack10(data[i*5 : i*5+5])
		if err != nil {
			return nil, fmt.Errorf("decode: fast HSK group %d: %w", i, err)
		}
		flat[i*4+0] = vals[0]
		flat[i*4+1] = vals[1]
		flat[i*4+2] = vals[2]
		flat[i*4+3] = vals[3]
	}

	out := &FastHousekeeping{}
	for r := 0; r < fastHSKRepeats; r++ {
		for c := 0; c < fastHSKChannels; c++ {
			out.Channels[c][r] = flat[r*fastHSKChannels+c]
		}
	}

	return out, nil
}

// HSK decodes the combined 506-byte housekeeping payload (86-byte slow
// subframe followed by the 420-byte fast subframe).
func HSK(data []byte) (*HousekeepingPacket, error) {
	if len(data) != slowHSKLen+fastHSKLen {
		return nil, fmt.Errorf("decode: HSK payload len %d, want %d: %w", len(data), slowHSKLen+fastHSKLen, errs.ErrSizeMismatch)
	}

	slow, err := SlowHSK(data[:slowHSKLen])
	if err != nil {
		return nil, err
	}
	fast, err := FastHSK(data[slowHSKLen:])
	if err != nil {
		return nil, err
	}

	return &HousekeepingPacket{Slow: *slow, Fast: *fast}, nil
}

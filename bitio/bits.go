package bitio

import "fmt"

// Unpack10 unpacks four 10-bit big-endian values packed into 5 consecutive
// bytes, the layout used by the CINEMA housekeeping fast-channel telemetry.
//
//	v0 = b0<<2 | b1>>6
//	v1 = (b1&0x3F)<<4 | b2>>4
//	v2 = (b2&0x0F)<<6 | b3>>2
//	v3 = (b3&0x03)<<8 | b4
func Unpack10(b []byte) ([4]uint16, error) {
	var out [4]uint16
	if len(b) != 5 {
		return out, fmt.Errorf("bitio: Unpack10 requires 5 bytes, got %d", len(b))
	}

	out[0] = uint16(b[0])<<2 | uint16(b[1])>>6
	out[1] = uint16(b[1]&0x3F)<<4 | uint16(b[2])>>4
	out[2] = uint16(b[2]&0x0F)<<6 | uint16(b[3])>>2
	out[3] = uint16(b[3]&0x03)<<8 | uint16(b[4])

	return out, nil
}

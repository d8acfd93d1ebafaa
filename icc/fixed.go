package icc

import "math"

// ICC fixed-point encodings. s15Fixed16 is a signed 32-bit number with 16
// integer and 16 fractional bits; u8Fixed8 is an unsigned 16-bit number
// with 8 and 8. Both are stored big-endian.

// S15Fixed16 converts a float to its s15Fixed16 representation, clamping to
// the representable range.
func S15Fixed16(f float64) int32 {
	v := math.Round(f * 65536)
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// S15Fixed16ToFloat converts an s15Fixed16 value back to a float.
func S15Fixed16ToFloat(v int32) float64 {
	return float64(v) / 65536
}

// U8Fixed8 converts a float to its u8Fixed8 representation, clamping to the
// representable range.
func U8Fixed8(f float64) uint16 {
	v := math.Round(f * 256)
	switch {
	case v > math.MaxUint16:
		return math.MaxUint16
	case v < 0:
		return 0
	}
	return uint16(v)
}

// U8Fixed8ToFloat converts a u8Fixed8 value back to a float.
func U8Fixed8ToFloat(v uint16) float64 {
	return float64(v) / 256
}

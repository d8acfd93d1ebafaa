// Package icc decodes and encodes ICC color profiles: the fixed 128-byte
// header, the tag table and the typed tag payloads photo-editing tools rely
// on (XYZ colorants, tone-response curves, description strings). It also
// synthesizes a minimal sRGB display profile from scratch.
//
// Parsing is best effort and never fails; a buffer without the 'acsp'
// magic yields an empty Profile.
package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/encoding/unicode"
)

// XYZ is a CIE XYZ triple, decoded from three s15Fixed16 numbers.
type XYZ struct {
	X float64
	Y float64
	Z float64
}

// Profile holds the decoded header fields and the tags the decoder
// understands. Raw keeps the verbatim payload of every unrecognized tag,
// keyed by its table signature, for round-trip and custom access.
type Profile struct {
	Size            uint32
	CMM             Signature
	Version         uint32
	Class           Signature
	ColorSpace      Signature
	PCS             Signature
	Created         time.Time
	Platform        Signature
	Flags           uint32
	Manufacturer    Signature
	Model           Signature
	Attributes      uint64
	RenderingIntent uint32
	Illuminant      XYZ
	Creator         Signature
	ProfileID       [16]byte

	Description string
	Copyright   string

	WhitePoint    *XYZ
	RedColorant   *XYZ
	GreenColorant *XYZ
	BlueColorant  *XYZ

	// Per-channel gamma estimates from the TRC tags. A single-entry curve
	// gives the exact u8Fixed8 value, a table curve is approximated as 2.2.
	RedGamma   float64
	GreenGamma float64
	BlueGamma  float64

	Raw map[Signature][]byte
}

// String implements Stringer.
func (p *Profile) String() string {
	buf := bytes.NewBufferString("== ICC ==\n")
	fmt.Fprintf(buf, "Class: %v\n", p.Class)
	fmt.Fprintf(buf, "ColorSpace: %v\n", p.ColorSpace)
	fmt.Fprintf(buf, "Description: %s\n", p.Description)
	fmt.Fprintf(buf, "Copyright: %s\n", p.Copyright)
	keys := maps.Keys(p.Raw)
	slices.Sort(keys)
	for _, sig := range keys {
		fmt.Fprintf(buf, "Raw tag %v: %d bytes\n", sig, len(p.Raw[sig]))
	}
	return buf.String()
}

// Parse decodes an ICC profile. It never fails: a buffer shorter than the
// 128-byte header or without the 'acsp' magic yields an empty Profile.
// All header fields are big-endian; tag offsets are absolute from the
// start of p.
func Parse(p []byte) *Profile {
	profile := &Profile{Raw: make(map[Signature][]byte)}

	if len(p) < headerLen || sig(p[magicOffset:]) != sigMagic {
		return profile
	}

	profile.Size = binary.BigEndian.Uint32(p[0:4])
	profile.CMM = sig(p[4:])
	profile.Version = binary.BigEndian.Uint32(p[8:12])
	profile.Class = sig(p[12:])
	profile.ColorSpace = sig(p[16:])
	profile.PCS = sig(p[20:])
	profile.Created = parseDateTime(p[24:36])
	profile.Platform = sig(p[40:])
	profile.Flags = binary.BigEndian.Uint32(p[44:48])
	profile.Manufacturer = sig(p[48:])
	profile.Model = sig(p[52:])
	profile.Attributes = binary.BigEndian.Uint64(p[56:64])
	profile.RenderingIntent = binary.BigEndian.Uint32(p[64:68])
	profile.Illuminant = parseXYZNumber(p[68:80])
	profile.Creator = sig(p[80:])
	copy(profile.ProfileID[:], p[84:100])

	if len(p) < tagTableOffset {
		return profile
	}
	count := int(binary.BigEndian.Uint32(p[tagCountOffset:tagTableOffset]))
	for i := 0; i < count; i++ {
		entry := tagTableOffset + i*tagEntryLen
		if entry+tagEntryLen > len(p) {
			break
		}
		signature := sig(p[entry:])
		offset := binary.BigEndian.Uint32(p[entry+4 : entry+8])
		size := binary.BigEndian.Uint32(p[entry+8 : entry+12])
		if size < 4 || uint64(offset)+uint64(size) > uint64(len(p)) {
			continue
		}
		profile.parseTag(signature, p[offset:offset+size])
	}
	return profile
}

// parseTag dispatches one tag payload by its table signature. The payload's
// own 4-byte type signature selects the decoder.
func (p *Profile) parseTag(signature Signature, data []byte) {
	switch signature {
	case SigDescription:
		p.Description = parseString(data)
	case SigCopyright:
		p.Copyright = parseString(data)
	case SigWhitePoint:
		p.WhitePoint = parseXYZTag(data)
	case SigRedColorant:
		p.RedColorant = parseXYZTag(data)
	case SigGreenColorant:
		p.GreenColorant = parseXYZTag(data)
	case SigBlueColorant:
		p.BlueColorant = parseXYZTag(data)
	case SigRedTRC:
		p.RedGamma = parseCurve(data)
	case SigGreenTRC:
		p.GreenGamma = parseCurve(data)
	case SigBlueTRC:
		p.BlueGamma = parseCurve(data)
	default:
		p.Raw[signature] = append([]byte(nil), data...)
	}
}

// sig reads a big-endian 4-byte signature.
func sig(p []byte) Signature {
	return Signature(binary.BigEndian.Uint32(p[:4]))
}

// parseDateTime decodes the 12-byte header date (six big-endian uint16:
// year, month, day, hours, minutes, seconds).
func parseDateTime(p []byte) time.Time {
	year := int(binary.BigEndian.Uint16(p[0:2]))
	month := int(binary.BigEndian.Uint16(p[2:4]))
	day := int(binary.BigEndian.Uint16(p[4:6]))
	hour := int(binary.BigEndian.Uint16(p[6:8]))
	min := int(binary.BigEndian.Uint16(p[8:10]))
	sec := int(binary.BigEndian.Uint16(p[10:12]))
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// parseXYZNumber decodes three consecutive s15Fixed16 numbers.
func parseXYZNumber(p []byte) XYZ {
	return XYZ{
		X: S15Fixed16ToFloat(int32(binary.BigEndian.Uint32(p[0:4]))),
		Y: S15Fixed16ToFloat(int32(binary.BigEndian.Uint32(p[4:8]))),
		Z: S15Fixed16ToFloat(int32(binary.BigEndian.Uint32(p[8:12]))),
	}
}

// parseXYZTag decodes an 'XYZ ' tag: type signature, 4 reserved bytes and
// one XYZ number.
func parseXYZTag(data []byte) *XYZ {
	if len(data) < 20 || sig(data) != typeXYZ {
		return nil
	}
	xyz := parseXYZNumber(data[8:20])
	return &xyz
}

// parseCurve estimates a gamma value from a 'curv' or 'para' tag.
//
// A zero-entry curve is the identity (gamma 1.0) and a single-entry curve
// stores the exact gamma as u8Fixed8. A sampled multi-entry curve is not
// fitted, only assumed to be the usual 2.2. A parametric curve reads its
// first parameter g as s15Fixed16.
func parseCurve(data []byte) float64 {
	if len(data) < 12 {
		return 0
	}
	switch sig(data) {
	case typeCurv:
		count := binary.BigEndian.Uint32(data[8:12])
		switch {
		case count == 0:
			return 1.0
		case count == 1 && len(data) >= 14:
			return U8Fixed8ToFloat(binary.BigEndian.Uint16(data[12:14]))
		default:
			return 2.2
		}
	case typePara:
		if len(data) < 16 {
			return 0
		}
		return S15Fixed16ToFloat(int32(binary.BigEndian.Uint32(data[12:16])))
	}
	return 0
}

// parseString decodes a 'desc', 'text' or 'mluc' tag to a plain string.
//
// The multi-localized-unicode case takes only the first language record and
// narrows its UTF-16BE text to the code points below 128; this is a lossy
// convenience, not a full decode.
func parseString(data []byte) string {
	if len(data) < 8 {
		return ""
	}
	switch sig(data) {
	case typeDesc:
		if len(data) < 12 {
			return ""
		}
		count := int(binary.BigEndian.Uint32(data[8:12]))
		if count <= 0 || 12+count > len(data) {
			return ""
		}
		return trimNUL(data[12 : 12+count])
	case typeText:
		return trimNUL(data[8:])
	case typeMluc:
		return parseMluc(data)
	}
	return ""
}

func trimNUL(p []byte) string {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return string(p)
}

// parseMluc decodes the first record of an 'mluc' tag. The record offset is
// relative to the start of the tag.
func parseMluc(data []byte) string {
	if len(data) < 28 {
		return ""
	}
	count := binary.BigEndian.Uint32(data[8:12])
	if count == 0 {
		return ""
	}
	strLen := int(binary.BigEndian.Uint32(data[20:24]))
	strOffset := int(binary.BigEndian.Uint32(data[24:28]))
	if strLen < 0 || strOffset < 0 || strOffset+strLen > len(data) {
		return ""
	}
	utf16be := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := utf16be.Bytes(data[strOffset : strOffset+strLen])
	if err != nil {
		return ""
	}
	// Narrow to ASCII, dropping everything else.
	out := make([]byte, 0, len(decoded))
	for _, r := range string(decoded) {
		if r < 128 {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

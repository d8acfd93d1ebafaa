package icc

import "fmt"

// An ICC profile is a 128-byte big-endian header, a 4-byte tag count and a
// tag table of 12-byte entries (signature, offset, size), followed by the
// tag data blocks. Tag offsets are absolute from the start of the profile
// buffer. See ICC.1:2022 (specification of the profile format).

// Signature is a 4-byte big-endian type code, used for header fields, tag
// table entries and tag data types alike.
type Signature uint32

// String renders printable signatures as quoted four-character codes.
func (s Signature) String() string {
	bb := []byte{
		byte(s >> 24),
		byte(s >> 16),
		byte(s >> 8),
		byte(s),
	}
	for _, c := range bb {
		if c < 0x20 || c > 0x7E {
			return fmt.Sprintf("0x%08X", uint32(s))
		}
	}
	return fmt.Sprintf("%q", string(bb))
}

// Header magic and field offsets.
const (
	sigMagic Signature = 0x61637370 // 'acsp' at byte offset 36.

	headerLen   = 128
	magicOffset = 36

	tagCountOffset = 128
	tagTableOffset = 132
	tagEntryLen    = 12
)

// Well-known tag signatures.
const (
	SigDescription   Signature = 0x64657363 // 'desc'
	SigCopyright     Signature = 0x63707274 // 'cprt'
	SigWhitePoint    Signature = 0x77747074 // 'wtpt'
	SigRedColorant   Signature = 0x7258595A // 'rXYZ'
	SigGreenColorant Signature = 0x6758595A // 'gXYZ'
	SigBlueColorant  Signature = 0x6258595A // 'bXYZ'
	SigRedTRC        Signature = 0x72545243 // 'rTRC'
	SigGreenTRC      Signature = 0x67545243 // 'gTRC'
	SigBlueTRC       Signature = 0x62545243 // 'bTRC'
)

// Tag data type signatures.
const (
	typeXYZ  Signature = 0x58595A20 // 'XYZ '
	typeCurv Signature = 0x63757276 // 'curv'
	typePara Signature = 0x70617261 // 'para'
	typeDesc Signature = 0x64657363 // 'desc'
	typeText Signature = 0x74657874 // 'text'
	typeMluc Signature = 0x6D6C7563 // 'mluc'
)

// Profile and color space classes used by the generator.
const (
	ClassDisplay  Signature = 0x6D6E7472 // 'mntr'
	SpaceRGB      Signature = 0x52474220 // 'RGB '
	SpaceXYZ      Signature = 0x58595A20 // 'XYZ '
	PlatformApple Signature = 0x4150504C // 'APPL'
)

// Rendering intents.
const (
	IntentPerceptual uint32 = iota
	IntentRelativeColorimetric
	IntentSaturation
	IntentAbsoluteColorimetric
)

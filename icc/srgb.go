package icc

import (
	"encoding/binary"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// builder assembles a profile: a 128-byte header, the tag table and the tag
// data blocks. Offsets accumulate as tags are added, with every data block
// padded to a 4-byte boundary before the next one begins.
type builder struct {
	header [headerLen]byte
	sigs   []Signature
	datas  [][]byte
}

func (b *builder) add(signature Signature, data []byte) {
	b.sigs = append(b.sigs, signature)
	b.datas = append(b.datas, data)
}

func (b *builder) bytes() []byte {
	out := make([]byte, 0, 1024)
	out = append(out, b.header[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(b.sigs)))

	// Tag data begins after the table; each entry holds the absolute
	// offset of its (unpadded) payload.
	offset := tagTableOffset + len(b.sigs)*tagEntryLen
	for i, signature := range b.sigs {
		out = binary.BigEndian.AppendUint32(out, uint32(signature))
		out = binary.BigEndian.AppendUint32(out, uint32(offset))
		out = binary.BigEndian.AppendUint32(out, uint32(len(b.datas[i])))
		offset += padded4(len(b.datas[i]))
	}
	for _, data := range b.datas {
		out = append(out, data...)
		for i := len(data); i%4 != 0; i++ {
			out = append(out, 0)
		}
	}
	binary.BigEndian.PutUint32(out[0:4], uint32(len(out)))
	return out
}

// padded4 rounds a length up to the next 4-byte boundary.
func padded4(n int) int {
	return (n + 3) &^ 3
}

// Tag payload constructors.

func xyzTag(v XYZ) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(typeXYZ))
	out = binary.BigEndian.AppendUint32(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(S15Fixed16(v.X)))
	out = binary.BigEndian.AppendUint32(out, uint32(S15Fixed16(v.Y)))
	return binary.BigEndian.AppendUint32(out, uint32(S15Fixed16(v.Z)))
}

// curvTag encodes a single-entry gamma curve.
func curvTag(gamma float64) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(typeCurv))
	out = binary.BigEndian.AppendUint32(out, 0)
	out = binary.BigEndian.AppendUint32(out, 1)
	return binary.BigEndian.AppendUint16(out, U8Fixed8(gamma))
}

func descTag(s string) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(typeDesc))
	out = binary.BigEndian.AppendUint32(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(len(s)+1))
	out = append(out, s...)
	return append(out, 0)
}

func textTag(s string) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(typeText))
	out = binary.BigEndian.AppendUint32(out, 0)
	out = append(out, s...)
	return append(out, 0)
}

// Encode serializes a profile: header fields, the known tags in a fixed
// order and the raw tags in signature order. The size header field and the
// tag offsets are computed during assembly.
func Encode(p *Profile) []byte {
	b := &builder{}
	h := b.header[:]

	binary.BigEndian.PutUint32(h[4:8], uint32(p.CMM))
	binary.BigEndian.PutUint32(h[8:12], p.Version)
	binary.BigEndian.PutUint32(h[12:16], uint32(p.Class))
	binary.BigEndian.PutUint32(h[16:20], uint32(p.ColorSpace))
	binary.BigEndian.PutUint32(h[20:24], uint32(p.PCS))
	putDateTime(h[24:36], p.Created)
	binary.BigEndian.PutUint32(h[36:40], uint32(sigMagic))
	binary.BigEndian.PutUint32(h[40:44], uint32(p.Platform))
	binary.BigEndian.PutUint32(h[44:48], p.Flags)
	binary.BigEndian.PutUint32(h[48:52], uint32(p.Manufacturer))
	binary.BigEndian.PutUint32(h[52:56], uint32(p.Model))
	binary.BigEndian.PutUint64(h[56:64], p.Attributes)
	binary.BigEndian.PutUint32(h[64:68], p.RenderingIntent)
	binary.BigEndian.PutUint32(h[68:72], uint32(S15Fixed16(p.Illuminant.X)))
	binary.BigEndian.PutUint32(h[72:76], uint32(S15Fixed16(p.Illuminant.Y)))
	binary.BigEndian.PutUint32(h[76:80], uint32(S15Fixed16(p.Illuminant.Z)))
	binary.BigEndian.PutUint32(h[80:84], uint32(p.Creator))
	copy(h[84:100], p.ProfileID[:])

	if p.Description != "" {
		b.add(SigDescription, descTag(p.Description))
	}
	if p.Copyright != "" {
		b.add(SigCopyright, textTag(p.Copyright))
	}
	if p.WhitePoint != nil {
		b.add(SigWhitePoint, xyzTag(*p.WhitePoint))
	}
	if p.RedColorant != nil {
		b.add(SigRedColorant, xyzTag(*p.RedColorant))
	}
	if p.GreenColorant != nil {
		b.add(SigGreenColorant, xyzTag(*p.GreenColorant))
	}
	if p.BlueColorant != nil {
		b.add(SigBlueColorant, xyzTag(*p.BlueColorant))
	}
	if p.RedGamma > 0 {
		b.add(SigRedTRC, curvTag(p.RedGamma))
	}
	if p.GreenGamma > 0 {
		b.add(SigGreenTRC, curvTag(p.GreenGamma))
	}
	if p.BlueGamma > 0 {
		b.add(SigBlueTRC, curvTag(p.BlueGamma))
	}

	raws := maps.Keys(p.Raw)
	slices.Sort(raws)
	for _, signature := range raws {
		b.add(signature, p.Raw[signature])
	}
	return b.bytes()
}

// putDateTime encodes the 12-byte header date. The zero time encodes as
// all-zero bytes.
func putDateTime(p []byte, t time.Time) {
	if t.IsZero() {
		return
	}
	binary.BigEndian.PutUint16(p[0:2], uint16(t.Year()))
	binary.BigEndian.PutUint16(p[2:4], uint16(t.Month()))
	binary.BigEndian.PutUint16(p[4:6], uint16(t.Day()))
	binary.BigEndian.PutUint16(p[6:8], uint16(t.Hour()))
	binary.BigEndian.PutUint16(p[8:10], uint16(t.Minute()))
	binary.BigEndian.PutUint16(p[10:12], uint16(t.Second()))
}

// sRGB primaries (D65) and white point, the same sRGB-to-XYZ matrix the
// usual conversion references give.
var (
	srgbRed   = XYZ{X: 0.4124564, Y: 0.2126729, Z: 0.0193339}
	srgbGreen = XYZ{X: 0.3575761, Y: 0.7151522, Z: 0.1191920}
	srgbBlue  = XYZ{X: 0.1804375, Y: 0.0721750, Z: 0.9503041}
	srgbWhite = XYZ{X: 0.95047, Y: 1.0, Z: 1.08883}

	// D50, the profile connection space illuminant the header requires.
	illuminantD50 = XYZ{X: 0.9642, Y: 1.0, Z: 0.8249}
)

// NewSRGB synthesizes a minimal sRGB display profile: description,
// copyright, white point, the three colorants and three single-entry gamma
// curves. The output re-parses with Parse.
func NewSRGB() []byte {
	white := srgbWhite
	red, green, blue := srgbRed, srgbGreen, srgbBlue
	return Encode(&Profile{
		Version:         0x02100000,
		Class:           ClassDisplay,
		ColorSpace:      SpaceRGB,
		PCS:             SpaceXYZ,
		Created:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		RenderingIntent: IntentPerceptual,
		Illuminant:      illuminantD50,
		Description:     "sRGB IEC61966-2.1",
		Copyright:       "Public Domain",
		WhitePoint:      &white,
		RedColorant:     &red,
		GreenColorant:   &green,
		BlueColorant:    &blue,
		RedGamma:        2.2,
		GreenGamma:      2.2,
		BlueGamma:       2.2,
	})
}

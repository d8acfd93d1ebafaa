package imagemeta

// Resources:
// https://www.w3.org/Graphics/JPEG/itu-t81.pdf (markers, segment layout)
// https://www.cipa.jp/std/documents/e/DC-008-2012_E.pdf (Exif in APP1)
// https://www.adobe.com/devnet-apps/photoshop/fileformatashtml/ (8BIM image resources)
// https://developer.adobe.com/xmp/docs/ (XMP packets in APP1)

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// JPEG markers. A segment is 0xFF, the marker byte, a 2-byte big-endian
// length (which includes the length bytes themselves) and the payload.
const (
	mSOI   = 0xD8 // Start of image, no payload.
	mEOI   = 0xD9 // End of image.
	mSOS   = 0xDA // Start of scan, entropy-coded data follows.
	mAPP0  = 0xE0
	mAPP1  = 0xE1 // Exif or XMP.
	mAPP13 = 0xED // Photoshop image resources, carries IPTC.
	mRST0  = 0xD0
	mTEM   = 0x01
)

// Application segment signatures.
const (
	exifHeader = "Exif\x00\x00"
	xmpHeader  = "http://ns.adobe.com/xap/1.0/\x00"
	psHeader   = "Photoshop 3.0\x00"
)

// iptcResourceID is the 8BIM image resource holding the IPTC-IIM stream.
const iptcResourceID = 0x0404

// ErrNoSegment reports that the requested metadata segment is absent.
var ErrNoSegment = errors.New("imagemeta: segment not found")

// Segment identifies a byte range inside a caller-owned buffer. It never
// owns the underlying bytes.
type Segment struct {
	Offset int
	Length int
}

// In returns the bytes the segment spans within buf.
func (s Segment) In(buf []byte) []byte {
	return buf[s.Offset : s.Offset+s.Length]
}

// IsJPEG reports whether buf starts with a SOI marker.
func IsJPEG(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == mSOI
}

// walkSegments calls fn with each marker segment before the start of scan.
// off is the offset of the payload within jpeg (after the length bytes).
// The walk stops when fn returns false, at SOS, or when the declared
// lengths run past the end of the buffer.
func walkSegments(jpeg []byte, fn func(marker byte, off, length int) bool) {
	if !IsJPEG(jpeg) {
		return
	}
	pos := 2
	for pos+4 <= len(jpeg) {
		if jpeg[pos] != 0xFF {
			return
		}
		marker := jpeg[pos+1]
		switch {
		case marker == mSOS, marker == mEOI:
			return
		case marker == mTEM, marker >= mRST0 && marker < mRST0+8:
			// Standalone markers carry no length.
			pos += 2
			continue
		}
		length := int(binary.BigEndian.Uint16(jpeg[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(jpeg) {
			return
		}
		if !fn(marker, pos+4, length-2) {
			return
		}
		pos += 2 + length
	}
}

// FindExif returns the span of the TIFF block inside the first Exif APP1
// segment, with the "Exif\0\0" signature stripped.
func FindExif(jpeg []byte) (Segment, error) {
	var seg Segment
	found := false
	walkSegments(jpeg, func(marker byte, off, length int) bool {
		if marker != mAPP1 || length < len(exifHeader) {
			return true
		}
		if string(jpeg[off:off+len(exifHeader)]) != exifHeader {
			return true
		}
		seg = Segment{Offset: off + len(exifHeader), Length: length - len(exifHeader)}
		found = true
		return false
	})
	if !found {
		return Segment{}, errors.Wrap(ErrNoSegment, "exif")
	}
	return seg, nil
}

// FindXMP returns the span of the XMP packet text inside the first XMP APP1
// segment. The namespace URI and its terminating NUL are stripped.
func FindXMP(jpeg []byte) (Segment, error) {
	var seg Segment
	found := false
	walkSegments(jpeg, func(marker byte, off, length int) bool {
		if marker != mAPP1 || length < len(xmpHeader) {
			return true
		}
		if string(jpeg[off:off+len(xmpHeader)]) != xmpHeader {
			return true
		}
		seg = Segment{Offset: off + len(xmpHeader), Length: length - len(xmpHeader)}
		found = true
		return false
	})
	if !found {
		return Segment{}, errors.Wrap(ErrNoSegment, "xmp")
	}
	return seg, nil
}

// FindIPTC returns the span of the IPTC-IIM stream inside the first APP13
// Photoshop segment, located by scanning its 8BIM image resource blocks for
// resource 0x0404.
func FindIPTC(jpeg []byte) (Segment, error) {
	var seg Segment
	found := false
	walkSegments(jpeg, func(marker byte, off, length int) bool {
		if marker != mAPP13 || length < len(psHeader) {
			return true
		}
		if string(jpeg[off:off+len(psHeader)]) != psHeader {
			return true
		}
		if s, ok := findResource(jpeg[off:off+length], iptcResourceID); ok {
			seg = Segment{Offset: off + s.Offset, Length: s.Length}
			found = true
			return false
		}
		return true
	})
	if !found {
		return Segment{}, errors.Wrap(ErrNoSegment, "iptc")
	}
	return seg, nil
}

// findResource scans the 8BIM image resource blocks of a Photoshop APP13
// payload for the given resource ID. Each block is the "8BIM" signature, a
// 2-byte resource ID, a Pascal-string name padded to an even byte count
// (including the length byte) and a 4-byte big-endian data length, with the
// data itself padded to an even length.
func findResource(payload []byte, id uint16) (Segment, bool) {
	pos := len(psHeader)
	for pos+12 <= len(payload) {
		if string(payload[pos:pos+4]) != "8BIM" {
			return Segment{}, false
		}
		rid := binary.BigEndian.Uint16(payload[pos+4 : pos+6])
		pos += 6

		nameLen := int(payload[pos])
		pos += 1 + nameLen
		if (1+nameLen)%2 == 1 {
			pos++
		}
		if pos+4 > len(payload) {
			return Segment{}, false
		}
		dataLen := int(binary.BigEndian.Uint32(payload[pos : pos+4]))
		pos += 4
		if dataLen < 0 || pos+dataLen > len(payload) {
			return Segment{}, false
		}
		if rid == id {
			return Segment{Offset: pos, Length: dataLen}, true
		}
		pos += dataLen
		if dataLen%2 == 1 {
			pos++
		}
	}
	return Segment{}, false
}

// ContainsExif reports whether the buffer holds an Exif APP1 segment.
func ContainsExif(jpeg []byte) bool {
	_, err := FindExif(jpeg)
	return err == nil
}

// ContainsXMP reports whether the buffer holds an XMP APP1 segment.
func ContainsXMP(jpeg []byte) bool {
	_, err := FindXMP(jpeg)
	return err == nil
}

// ContainsIPTC reports whether the buffer holds a Photoshop APP13 segment
// with an IPTC resource.
func ContainsIPTC(jpeg []byte) bool {
	_, err := FindIPTC(jpeg)
	return err == nil
}

// maxSegmentPayload is the largest payload a single marker segment can
// declare (the 2-byte length includes itself).
const maxSegmentPayload = 0xFFFF - 2

// BuildSegment assembles one marker segment from a payload.
func BuildSegment(marker byte, payload []byte) ([]byte, error) {
	if len(payload) > maxSegmentPayload {
		return nil, errors.Errorf("imagemeta: payload of %d bytes exceeds segment capacity", len(payload))
	}
	seg := make([]byte, 0, 4+len(payload))
	seg = append(seg, 0xFF, marker)
	seg = binary.BigEndian.AppendUint16(seg, uint16(len(payload)+2))
	return append(seg, payload...), nil
}

// ExifSegment wraps a TIFF block into an Exif APP1 segment.
func ExifSegment(tiff []byte) ([]byte, error) {
	return BuildSegment(mAPP1, append([]byte(exifHeader), tiff...))
}

// XMPSegment wraps an XMP packet into an APP1 segment.
func XMPSegment(packet []byte) ([]byte, error) {
	return BuildSegment(mAPP1, append([]byte(xmpHeader), packet...))
}

// IPTCSegment wraps an IPTC-IIM stream into a Photoshop APP13 segment
// holding a single 8BIM resource block.
func IPTCSegment(iptc []byte) ([]byte, error) {
	var payload bytes.Buffer
	payload.WriteString(psHeader)
	payload.WriteString("8BIM")
	var hdr [8]byte
	binary.BigEndian.PutUint16(hdr[0:2], iptcResourceID)
	// Empty Pascal name, padded to two bytes.
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(iptc)))
	payload.Write(hdr[:])
	payload.Write(iptc)
	if len(iptc)%2 == 1 {
		payload.WriteByte(0)
	}
	return BuildSegment(mAPP13, payload.Bytes())
}

// Insert places a marker segment right after the SOI marker and returns the
// new stream. The input buffers are left untouched.
func Insert(jpeg, segment []byte) ([]byte, error) {
	if !IsJPEG(jpeg) {
		return nil, errors.New("imagemeta: not a JPEG stream")
	}
	out := make([]byte, 0, len(jpeg)+len(segment))
	out = append(out, jpeg[:2]...)
	out = append(out, segment...)
	return append(out, jpeg[2:]...), nil
}

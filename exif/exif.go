// Package exif decodes and encodes Exif metadata blocks (TIFF Image File
// Directories) as found in JPEG APP1 segments and standalone TIFF files.
//
// Parsing is best effort: corrupt or truncated input never yields an error,
// only a Data with fewer fields populated. Every offset and length is
// checked against the buffer before a slice is taken.
package exif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Rational is an unsigned TIFF rational.
type Rational struct {
	Num uint32
	Den uint32
}

// Float returns the rational as a float64, or 0 when the denominator is 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String implements Stringer.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// SRational is a signed TIFF rational.
type SRational struct {
	Num int32
	Den int32
}

// Float returns the rational as a float64, or 0 when the denominator is 0.
func (r SRational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Coordinate is a GPS position component in degrees, minutes and seconds
// with its hemisphere reference ('N', 'S', 'E' or 'W').
type Coordinate struct {
	Degrees float64
	Minutes float64
	Seconds float64
	Ref     byte
}

// Decimal combines the three components into decimal degrees, negated for
// the southern and western hemispheres.
func (c Coordinate) Decimal() float64 {
	d := c.Degrees + c.Minutes/60 + c.Seconds/3600
	if c.Ref == 'S' || c.Ref == 'W' {
		return -d
	}
	return d
}

// Data holds the decoded Exif fields. Zero values mean the field was absent
// from the block. Raw keeps the undecoded payload of every tag the decoder
// does not interpret, keyed by tag ID, so callers can round-trip or decode
// custom tags themselves.
type Data struct {
	Make     string
	Model    string
	Software string

	DateTime          string
	DateTimeOriginal  string
	DateTimeDigitized string

	ExposureTime Rational
	FNumber      Rational
	FocalLength  Rational
	ISO          uint16
	Flash        uint16

	Orientation uint16
	ColorSpace  uint16
	ImageWidth  uint32
	ImageHeight uint32

	PixelXDimension uint32
	PixelYDimension uint32

	ThumbnailOffset uint32
	ThumbnailLength uint32

	Latitude  *Coordinate
	Longitude *Coordinate

	Raw map[uint16][]byte
}

// Thumbnail returns the embedded thumbnail bytes within the original TIFF
// block, or nil when the block declares none or the span does not fit.
func (d *Data) Thumbnail(block []byte) []byte {
	if d.ThumbnailOffset == 0 || d.ThumbnailLength == 0 {
		return nil
	}
	if bytes.HasPrefix(block, []byte(exifPrefix)) {
		block = block[len(exifPrefix):]
	}
	off, n := int(d.ThumbnailOffset), int(d.ThumbnailLength)
	if off+n > len(block) {
		return nil
	}
	return block[off : off+n]
}

// String implements Stringer.
func (d *Data) String() string {
	buf := bytes.NewBufferString("== Exif ==\n")
	w := func(name, value string) {
		if value != "" {
			fmt.Fprintf(buf, "%s: %s\n", name, value)
		}
	}
	w("Make", d.Make)
	w("Model", d.Model)
	w("Software", d.Software)
	w("DateTime", d.DateTime)
	if d.Orientation != 0 {
		fmt.Fprintf(buf, "Orientation: %d\n", d.Orientation)
	}
	if d.Latitude != nil && d.Longitude != nil {
		fmt.Fprintf(buf, "GPS: %.4f, %.4f\n", d.Latitude.Decimal(), d.Longitude.Decimal())
	}
	fmt.Fprintf(buf, "Raw tags: %d\n", len(d.Raw))
	return buf.String()
}

// ifdKind selects the tag dispatch table while walking a directory. GPS tag
// IDs overlap with IFD0 tags, so the two tables must never be mixed.
type ifdKind int

const (
	ifdMain ifdKind = iota
	ifdGPS
)

// Parse decodes an Exif block. It never fails: a buffer shorter than the
// TIFF header, or one without a recognized byte-order marker, yields an
// empty Data.
func Parse(p []byte) *Data {
	d := &Data{Raw: make(map[uint16][]byte)}

	if bytes.HasPrefix(p, []byte(exifPrefix)) {
		p = p[len(exifPrefix):]
	}
	if len(p) < 8 {
		return d
	}

	var byteOrder binary.ByteOrder
	switch string(p[0:4]) {
	case leHeader:
		byteOrder = binary.LittleEndian
	case beHeader:
		byteOrder = binary.BigEndian
	default:
		return d
	}

	w := &walker{
		buf:       p,
		byteOrder: byteOrder,
		data:      d,
		visited:   make(map[uint32]bool),
	}
	w.walkIFD(byteOrder.Uint32(p[4:8]), ifdMain)
	return d
}

// walker carries the state of one Parse call over a single TIFF block.
type walker struct {
	buf       []byte
	byteOrder binary.ByteOrder
	data      *Data

	// Guard against offset loops in crafted blocks.
	visited map[uint32]bool
	walked  int
}

// walkIFD decodes the directory at the given header-relative offset and
// follows its next-IFD pointer. Sub-IFDs are walked through the same guard.
func (w *walker) walkIFD(offset uint32, kind ifdKind) {
	for offset != 0 {
		if w.visited[offset] || w.walked >= maxIFDs {
			return
		}
		w.visited[offset] = true
		w.walked++

		off := int(offset)
		if off+2 > len(w.buf) {
			return
		}
		numItems := int(w.byteOrder.Uint16(w.buf[off : off+2]))
		off += 2
		if off+numItems*ifdLen > len(w.buf) {
			// Walk the entries that do fit.
			numItems = (len(w.buf) - off) / ifdLen
		}

		for i := 0; i < numItems; i++ {
			w.parseEntry(w.buf[off+i*ifdLen:off+(i+1)*ifdLen], kind)
		}

		// The next-IFD pointer chains IFD0 to IFD1, which carries the
		// thumbnail tags. GPS and Exif sub-IFDs end the chain in practice.
		next := off + numItems*ifdLen
		if next+4 > len(w.buf) {
			return
		}
		offset = w.byteOrder.Uint32(w.buf[next : next+4])
	}
}

// parseEntry dispatches a single 12-byte IFD entry.
func (w *walker) parseEntry(e []byte, kind ifdKind) {
	tid := w.byteOrder.Uint16(e[0:2])
	raw, ok := w.entryBytes(e)
	if !ok {
		return
	}
	datatype := w.byteOrder.Uint16(e[2:4])

	if kind == ifdGPS {
		w.dispatchGPS(tid, datatype, raw)
		return
	}

	switch tid {
	case tMake:
		w.data.Make = asciiValue(raw)
	case tModel:
		w.data.Model = asciiValue(raw)
	case tSoftware:
		w.data.Software = asciiValue(raw)
	case tDateTime:
		w.data.DateTime = asciiValue(raw)
	case tDateTimeOriginal:
		w.data.DateTimeOriginal = asciiValue(raw)
	case tDateTimeDigitize:
		w.data.DateTimeDigitized = asciiValue(raw)
	case tOrientation:
		w.data.Orientation = w.shortValue(raw)
	case tColorSpace:
		w.data.ColorSpace = w.shortValue(raw)
	case tISOSpeedRatings:
		w.data.ISO = w.shortValue(raw)
	case tFlash:
		w.data.Flash = w.shortValue(raw)
	case tImageWidth:
		w.data.ImageWidth = w.longValue(datatype, raw)
	case tImageLength:
		w.data.ImageHeight = w.longValue(datatype, raw)
	case tPixelXDimension:
		w.data.PixelXDimension = w.longValue(datatype, raw)
	case tPixelYDimension:
		w.data.PixelYDimension = w.longValue(datatype, raw)
	case tThumbnailOffset:
		w.data.ThumbnailOffset = w.longValue(datatype, raw)
	case tThumbnailLength:
		w.data.ThumbnailLength = w.longValue(datatype, raw)
	case tExposureTime:
		w.data.ExposureTime = w.rationalValue(raw, 0)
	case tFNumber:
		w.data.FNumber = w.rationalValue(raw, 0)
	case tFocalLength:
		w.data.FocalLength = w.rationalValue(raw, 0)
	case tExifIFDPointer:
		w.walkIFD(w.longValue(datatype, raw), ifdMain)
	case tGPSIFDPointer:
		w.walkIFD(w.longValue(datatype, raw), ifdGPS)
	default:
		w.data.Raw[tid] = append([]byte(nil), raw...)
	}
}

// dispatchGPS handles entries of the GPS sub-IFD. Latitude and longitude
// are three rationals (degrees, minutes, seconds) paired with a one-letter
// reference tag.
func (w *walker) dispatchGPS(tid, datatype uint16, raw []byte) {
	switch tid {
	case tGPSLatitudeRef:
		setCoordinateRef(&w.data.Latitude, asciiValue(raw))
	case tGPSLongitudeRef:
		setCoordinateRef(&w.data.Longitude, asciiValue(raw))
	case tGPSLatitude:
		w.setCoordinateDMS(&w.data.Latitude, raw)
	case tGPSLongitude:
		w.setCoordinateDMS(&w.data.Longitude, raw)
	}
}

func setCoordinateRef(c **Coordinate, ref string) {
	if ref == "" {
		return
	}
	if *c == nil {
		*c = &Coordinate{}
	}
	(*c).Ref = ref[0]
}

func (w *walker) setCoordinateDMS(c **Coordinate, raw []byte) {
	if len(raw) < 24 {
		return
	}
	if *c == nil {
		*c = &Coordinate{}
	}
	(*c).Degrees = w.rationalValue(raw, 0).Float()
	(*c).Minutes = w.rationalValue(raw, 1).Float()
	(*c).Seconds = w.rationalValue(raw, 2).Float()
}

// entryBytes returns the value bytes of the IFD entry in e. Values of more
// than 4 bytes live outside the entry, at a header-relative offset that
// must fit inside the buffer; an entry whose value does not fit is skipped.
func (w *walker) entryBytes(e []byte) ([]byte, bool) {
	datatype := w.byteOrder.Uint16(e[2:4])
	count := w.byteOrder.Uint32(e[4:8])
	size := typeSize(datatype)
	if size == 0 || count > uint32(len(w.buf)) {
		return nil, false
	}
	datalen := size * count
	if datalen <= 4 {
		return e[8 : 8+datalen], true
	}
	offset := w.byteOrder.Uint32(e[8:12])
	if uint64(offset)+uint64(datalen) > uint64(len(w.buf)) {
		return nil, false
	}
	return w.buf[offset : offset+datalen], true
}

// asciiValue decodes an ASCII entry, trimming the trailing NUL.
func asciiValue(raw []byte) string {
	return strings.TrimRight(string(raw), "\x00")
}

// shortValue decodes the first SHORT of an entry.
func (w *walker) shortValue(raw []byte) uint16 {
	if len(raw) < 2 {
		return 0
	}
	return w.byteOrder.Uint16(raw[0:2])
}

// longValue decodes the first LONG of an entry, accepting SHORT storage as
// some writers use it for the pixel dimension tags.
func (w *walker) longValue(datatype uint16, raw []byte) uint32 {
	switch datatype {
	case dtShort:
		return uint32(w.shortValue(raw))
	case dtLong:
		if len(raw) < 4 {
			return 0
		}
		return w.byteOrder.Uint32(raw[0:4])
	}
	return 0
}

// rationalValue decodes the rational at index of an entry.
func (w *walker) rationalValue(raw []byte, index int) Rational {
	if len(raw) < (index+1)*8 {
		return Rational{}
	}
	return Rational{
		Num: w.byteOrder.Uint32(raw[index*8 : index*8+4]),
		Den: w.byteOrder.Uint32(raw[index*8+4 : index*8+8]),
	}
}

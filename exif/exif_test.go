package exif_test

import (
	"encoding/binary"
	"testing"

	"github.com/mdouchement/imagemeta/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIFD0 assembles a little-endian TIFF block with the given 12-byte
// entries and external value bytes placed right after the directory.
func buildIFD0(entries [][]byte, external []byte) []byte {
	buf := []byte("II\x2A\x00")
	buf = binary.LittleEndian.AppendUint32(buf, 8)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(entries)))
	for _, e := range entries {
		buf = append(buf, e...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	return append(buf, external...)
}

func entry(tag, datatype uint16, count uint32, value [4]byte) []byte {
	e := binary.LittleEndian.AppendUint16(nil, tag)
	e = binary.LittleEndian.AppendUint16(e, datatype)
	e = binary.LittleEndian.AppendUint32(e, count)
	return append(e, value[:]...)
}

func TestParseIFD0(t *testing.T) {
	// Two entries: directory spans 8+2+24+4 = 38 bytes, external data after.
	external := []byte("Canon\x00")
	entries := [][]byte{
		entry(0x010F, 2, 6, [4]byte{38, 0, 0, 0}), // Make, offset 38.
		entry(0x0112, 3, 1, [4]byte{1, 0, 0, 0}),  // Orientation = 1.
	}
	d := exif.Parse(buildIFD0(entries, external))

	assert.Equal(t, "Canon", d.Make)
	assert.Equal(t, uint16(1), d.Orientation)
}

func TestParseExifPrefix(t *testing.T) {
	entries := [][]byte{
		entry(0x0112, 3, 1, [4]byte{6, 0, 0, 0}),
	}
	block := append([]byte("Exif\x00\x00"), buildIFD0(entries, nil)...)
	d := exif.Parse(block)
	assert.Equal(t, uint16(6), d.Orientation)
}

func TestParseBigEndian(t *testing.T) {
	buf := []byte("MM\x00\x2A")
	buf = binary.BigEndian.AppendUint32(buf, 8)
	buf = binary.BigEndian.AppendUint16(buf, 1)
	buf = binary.BigEndian.AppendUint16(buf, 0x0112)
	buf = binary.BigEndian.AppendUint16(buf, 3)
	buf = binary.BigEndian.AppendUint32(buf, 1)
	buf = append(buf, 0, 3, 0, 0) // Orientation = 3, inline SHORT.
	buf = binary.BigEndian.AppendUint32(buf, 0)

	d := exif.Parse(buf)
	assert.Equal(t, uint16(3), d.Orientation)
}

func TestParseMalformed(t *testing.T) {
	for _, p := range [][]byte{
		nil,
		{},
		[]byte("II"),
		[]byte("XX\x2A\x00\x00\x00\x00\x08"),
		[]byte("II\x2A\x00\xFF\xFF\xFF\xFF"), // IFD offset past the buffer.
	} {
		d := exif.Parse(p)
		require.NotNil(t, d)
		assert.Empty(t, d.Make)
	}
}

func TestParseSkipsOversizedEntry(t *testing.T) {
	entries := [][]byte{
		// ASCII value of 200 bytes at offset 26: does not fit the buffer.
		entry(0x010F, 2, 200, [4]byte{26, 0, 0, 0}),
	}
	d := exif.Parse(buildIFD0(entries, nil))
	assert.Empty(t, d.Make)
}

func TestParseLoopingIFDOffsets(t *testing.T) {
	// IFD0 points at itself through its next-IFD pointer.
	buf := []byte("II\x2A\x00")
	buf = binary.LittleEndian.AppendUint32(buf, 8)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 8)

	d := exif.Parse(buf) // Must terminate.
	require.NotNil(t, d)
}

func TestParseRawTags(t *testing.T) {
	entries := [][]byte{
		entry(0x9999, 3, 1, [4]byte{42, 0, 0, 0}),
	}
	d := exif.Parse(buildIFD0(entries, nil))
	require.Contains(t, d.Raw, uint16(0x9999))
	assert.Equal(t, []byte{42, 0}, d.Raw[0x9999])
}

func TestCoordinateDecimal(t *testing.T) {
	c := exif.Coordinate{Degrees: 40, Minutes: 26, Seconds: 46.8, Ref: 'N'}
	assert.InDelta(t, 40.4463, c.Decimal(), 0.001)

	c.Ref = 'S'
	assert.InDelta(t, -40.4463, c.Decimal(), 0.001)
}

func TestRationalZeroDenominator(t *testing.T) {
	assert.Equal(t, float64(0), exif.Rational{Num: 1, Den: 0}.Float())
	assert.Equal(t, float64(0), exif.SRational{Num: -1, Den: 0}.Float())
	assert.Equal(t, 0.5, exif.Rational{Num: 1, Den: 2}.Float())
}

func TestParseGPS(t *testing.T) {
	// IFD0 with a single GPS-IFD pointer; the GPS directory and its
	// rational values follow the main directory.
	gpsOffset := uint32(8 + 2 + 12 + 4) // 26

	buf := []byte("II\x2A\x00")
	buf = binary.LittleEndian.AppendUint32(buf, 8)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = append(buf, entry(0x8825, 4, 1, [4]byte{byte(gpsOffset), 0, 0, 0})...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	// GPS IFD: LatitudeRef + Latitude. 2 entries -> values at 26+2+24+4 = 56.
	valOffset := gpsOffset + 2 + 2*12 + 4
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = append(buf, entry(0x0001, 2, 2, [4]byte{'N', 0, 0, 0})...)
	buf = append(buf, entry(0x0002, 5, 3, [4]byte{byte(valOffset), 0, 0, 0})...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	for _, r := range [][2]uint32{{40, 1}, {26, 1}, {468, 10}} {
		buf = binary.LittleEndian.AppendUint32(buf, r[0])
		buf = binary.LittleEndian.AppendUint32(buf, r[1])
	}

	d := exif.Parse(buf)
	require.NotNil(t, d.Latitude)
	assert.Equal(t, byte('N'), d.Latitude.Ref)
	assert.InDelta(t, 40.4463, d.Latitude.Decimal(), 0.001)
}

func TestEncodeRoundTrip(t *testing.T) {
	in := &exif.Data{
		Make:        "Canon",
		Model:       "Canon EOS 5D Mark IV",
		Software:    "imagemeta",
		Orientation: 1,
	}
	d := exif.Parse(exif.Encode(in))

	assert.Equal(t, in.Make, d.Make)
	assert.Equal(t, in.Model, d.Model)
	assert.Equal(t, in.Software, d.Software)
	assert.Equal(t, in.Orientation, d.Orientation)
}

func TestEncodeEmpty(t *testing.T) {
	d := exif.Parse(exif.Encode(&exif.Data{}))
	assert.Empty(t, d.Make)
	assert.Zero(t, d.Orientation)
}

func FuzzParse(f *testing.F) {
	f.Add([]byte("II\x2A\x00\x08\x00\x00\x00"))
	f.Add([]byte("MM\x00\x2A\x00\x00\x00\x08"))
	f.Add([]byte("Exif\x00\x00II\x2A\x00"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, p []byte) {
		d := exif.Parse(p)
		if d == nil {
			t.Fatal("Parse returned nil")
		}
	})
}

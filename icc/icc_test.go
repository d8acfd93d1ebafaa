package icc_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/mdouchement/imagemeta/icc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS15Fixed16(t *testing.T) {
	v := icc.S15Fixed16(1.0)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	assert.Equal(t, [4]byte{0x00, 0x01, 0x00, 0x00}, buf)

	assert.InDelta(t, 1.0, icc.S15Fixed16ToFloat(v), 1e-4)
	assert.InDelta(t, -0.5, icc.S15Fixed16ToFloat(icc.S15Fixed16(-0.5)), 1e-4)
	assert.InDelta(t, 0.9642, icc.S15Fixed16ToFloat(icc.S15Fixed16(0.9642)), 1e-4)
}

func TestU8Fixed8(t *testing.T) {
	assert.InDelta(t, 2.2, icc.U8Fixed8ToFloat(icc.U8Fixed8(2.2)), 1e-2)
	assert.Equal(t, uint16(0x0100), icc.U8Fixed8(1.0))
}

func TestParseMalformed(t *testing.T) {
	for _, p := range [][]byte{
		nil,
		{},
		make([]byte, 127),
		make([]byte, 200), // No 'acsp' magic.
	} {
		profile := icc.Parse(p)
		require.NotNil(t, profile)
		assert.Empty(t, profile.Description)
	}
}

func TestNewSRGBRoundTrip(t *testing.T) {
	raw := icc.NewSRGB()
	profile := icc.Parse(raw)

	assert.Equal(t, "sRGB IEC61966-2.1", profile.Description)
	assert.Equal(t, "Public Domain", profile.Copyright)
	assert.Equal(t, icc.ClassDisplay, profile.Class)
	assert.Equal(t, icc.SpaceRGB, profile.ColorSpace)
	assert.Equal(t, uint32(len(raw)), profile.Size)

	require.NotNil(t, profile.RedColorant)
	require.NotNil(t, profile.GreenColorant)
	require.NotNil(t, profile.BlueColorant)
	assert.InDelta(t, 0.4125, profile.RedColorant.X, 0.01)
	assert.InDelta(t, 0.2127, profile.RedColorant.Y, 0.01)
	assert.InDelta(t, 0.7152, profile.GreenColorant.Y, 0.01)
	assert.InDelta(t, 0.9503, profile.BlueColorant.Z, 0.01)

	assert.InDelta(t, 2.2, profile.RedGamma, 0.01)
	assert.InDelta(t, 2.2, profile.GreenGamma, 0.01)
	assert.InDelta(t, 2.2, profile.BlueGamma, 0.01)

	require.NotNil(t, profile.WhitePoint)
	assert.InDelta(t, 1.0, profile.WhitePoint.Y, 1e-4)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), profile.Created)
}

func TestEncodePreservesRawTags(t *testing.T) {
	in := icc.Parse(icc.NewSRGB())
	in.Raw[icc.Signature(0x74657374)] = []byte("custom-tag-data") // 'test'

	out := icc.Parse(icc.Encode(in))
	require.Contains(t, out.Raw, icc.Signature(0x74657374))
	assert.Equal(t, []byte("custom-tag-data"), out.Raw[icc.Signature(0x74657374)])
	assert.Equal(t, in.Description, out.Description)
}

func TestParseTruncatedTagTable(t *testing.T) {
	raw := icc.NewSRGB()

	// Cut in the middle of the tag table: header survives, tags degrade.
	profile := icc.Parse(raw[:140])
	assert.Equal(t, icc.ClassDisplay, profile.Class)
	assert.Empty(t, profile.Description)
}

func TestParseMluc(t *testing.T) {
	// One 'mluc' record: UTF-16BE text with a soft hyphen narrows to "Test".
	text := []byte{0x00, 'T', 0x00, 'e', 0x00, 0xAD, 0x00, 's', 0x00, 't'}
	tag := binary.BigEndian.AppendUint32(nil, 0x6D6C7563) // 'mluc'
	tag = binary.BigEndian.AppendUint32(tag, 0)
	tag = binary.BigEndian.AppendUint32(tag, 1)  // Record count.
	tag = binary.BigEndian.AppendUint32(tag, 12) // Record size.
	tag = append(tag, 'e', 'n', 'U', 'S')
	tag = binary.BigEndian.AppendUint32(tag, uint32(len(text)))
	tag = binary.BigEndian.AppendUint32(tag, 28)
	tag = append(tag, text...)

	profile := icc.Parse(buildProfile(t, icc.SigDescription, tag))
	assert.Equal(t, "Test", profile.Description)
}

// buildProfile wraps a single tag into a minimal valid profile buffer.
func buildProfile(t *testing.T, signature icc.Signature, tag []byte) []byte {
	t.Helper()
	buf := make([]byte, 132)
	binary.BigEndian.PutUint32(buf[36:40], 0x61637370) // 'acsp'
	binary.BigEndian.PutUint32(buf[128:132], 1)
	buf = binary.BigEndian.AppendUint32(buf, uint32(signature))
	buf = binary.BigEndian.AppendUint32(buf, uint32(132+12))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(tag)))
	buf = append(buf, tag...)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

func FuzzParse(f *testing.F) {
	f.Add(icc.NewSRGB())
	f.Add([]byte("acsp"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, p []byte) {
		profile := icc.Parse(p)
		if profile == nil {
			t.Fatal("Parse returned nil")
		}
	})
}

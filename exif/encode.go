package exif

import "encoding/binary"

// Encode serializes a minimal IFD0 with the make, model, software and
// orientation fields. It is a best-effort writer for tools that only need
// to stamp identification fields, not a mirror of everything Parse reads.
//
// The block is little-endian, which is what most camera firmwares and
// editors emit. String values longer than the 4 inline bytes (including
// their NUL terminator) are stored in a value block after the directory,
// with header-relative offsets.
func Encode(d *Data) []byte {
	byteOrder := binary.LittleEndian

	type entry struct {
		tag      uint16
		datatype uint16
		count    uint32
		value    []byte // Decoded value bytes, not yet placed.
	}

	var entries []entry
	addASCII := func(tag uint16, s string) {
		if s == "" {
			return
		}
		v := append([]byte(s), 0)
		entries = append(entries, entry{tag: tag, datatype: dtASCII, count: uint32(len(v)), value: v})
	}
	addASCII(tMake, d.Make)
	addASCII(tModel, d.Model)
	addASCII(tSoftware, d.Software)
	if d.Orientation != 0 {
		v := make([]byte, 2)
		byteOrder.PutUint16(v, d.Orientation)
		entries = append(entries, entry{tag: tOrientation, datatype: dtShort, count: 1, value: v})
	}

	// Header (8) + entry count (2) + entries + next-IFD pointer (4).
	dirEnd := 8 + 2 + len(entries)*ifdLen + 4

	buf := make([]byte, 0, dirEnd+64)
	buf = append(buf, leHeader...)
	buf = byteOrder.AppendUint32(buf, 8) // IFD0 right after the header.
	buf = byteOrder.AppendUint16(buf, uint16(len(entries)))

	external := make([]byte, 0, 64)
	for _, e := range entries {
		buf = byteOrder.AppendUint16(buf, e.tag)
		buf = byteOrder.AppendUint16(buf, e.datatype)
		buf = byteOrder.AppendUint32(buf, e.count)
		if len(e.value) <= 4 {
			inline := [4]byte{}
			copy(inline[:], e.value)
			buf = append(buf, inline[:]...)
			continue
		}
		buf = byteOrder.AppendUint32(buf, uint32(dirEnd+len(external)))
		external = append(external, e.value...)
	}
	buf = byteOrder.AppendUint32(buf, 0) // No IFD1.
	return append(buf, external...)
}

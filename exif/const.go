package exif

// An Exif block is a TIFF file: a byte-order marker, an offset to the first
// Image File Directory (IFD), and IFDs made of 12-byte entries. An entry
// consists of
//
//  - a tag, which describes the signification of the entry,
//  - the data type and count of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// All offsets are relative to the start of the TIFF header, not to the
// start of the enclosing buffer.

const (
	leHeader = "II\x2A\x00" // Header for little-endian blocks.
	beHeader = "MM\x00\x2A" // Header for big-endian blocks.

	exifPrefix = "Exif\x00\x00" // Optional APP1 prefix before the TIFF header.

	ifdLen = 12 // Length of an IFD entry in bytes.
)

// Data types (p. 14-16 of the TIFF spec).
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndefined = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
)

// The length of one instance of each data type in bytes.
var lengths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// typeSize returns the byte size of one value of the given data type, or 0
// for an unknown type.
func typeSize(datatype uint16) uint32 {
	if int(datatype) >= len(lengths) {
		return 0
	}
	return lengths[datatype]
}

// IFD0 / Exif-IFD tags.
const (
	tImageWidth       = 0x0100
	tImageLength      = 0x0101
	tMake             = 0x010F
	tModel            = 0x0110
	tOrientation      = 0x0112
	tSoftware         = 0x0131
	tDateTime         = 0x0132
	tThumbnailOffset  = 0x0201 // JPEGInterchangeFormat, IFD1.
	tThumbnailLength  = 0x0202 // JPEGInterchangeFormatLength, IFD1.
	tExposureTime     = 0x829A
	tFNumber          = 0x829D
	tExifIFDPointer   = 0x8769
	tISOSpeedRatings  = 0x8827
	tGPSIFDPointer    = 0x8825
	tDateTimeOriginal = 0x9003
	tDateTimeDigitize = 0x9004
	tFlash            = 0x9209
	tFocalLength      = 0x920A
	tColorSpace       = 0xA001
	tPixelXDimension  = 0xA002
	tPixelYDimension  = 0xA003
)

// GPS-IFD tags. These overlap numerically with IFD0 tags and must only be
// dispatched while walking the GPS sub-IFD.
const (
	tGPSLatitudeRef  = 0x0001
	tGPSLatitude     = 0x0002
	tGPSLongitudeRef = 0x0003
	tGPSLongitude    = 0x0004
	tGPSAltitudeRef  = 0x0005
	tGPSAltitude     = 0x0006
)

// Traversal limits. A crafted block can chain IFD offsets into a loop, so
// the walker keeps a visited set and refuses to walk more than maxIFDs
// directories in total.
const maxIFDs = 16

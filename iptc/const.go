package iptc

// An IPTC-IIM stream is a flat sequence of datasets. Each dataset is the
// 0x1C marker, a record number, a tag number, a length field and the value
// bytes. See the IPTC-IIM v4 specification.

const (
	datasetMarker = 0x1C

	// recordApplication is the record whose tags map to named fields;
	// datasets of other records are kept only in the raw list.
	recordApplication = 2

	// maxStandardLength is the largest value length the standard 2-byte
	// length field can carry; longer values use the extended form.
	maxStandardLength = 0x7FFF
)

// Application record (2:xx) tags.
const (
	tagRecordVersion        = 0
	tagObjectName           = 5
	tagUrgency              = 10
	tagCategory             = 15
	tagSupplementalCategory = 20
	tagKeywords             = 25
	tagSpecialInstructions  = 40
	tagDateCreated          = 55
	tagTimeCreated          = 60
	tagByline               = 80
	tagBylineTitle          = 85
	tagCity                 = 90
	tagSublocation          = 92
	tagProvinceState        = 95
	tagCountryCode          = 100
	tagCountryName          = 101
	tagTransmissionRef      = 103
	tagHeadline             = 105
	tagCredit               = 110
	tagSource               = 115
	tagCopyrightNotice      = 116
	tagContact              = 118
	tagCaption              = 120
	tagCaptionWriter        = 122
)

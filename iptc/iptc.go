// Package iptc decodes and encodes IPTC-IIM metadata streams, the flat
// dataset sequences carried in Photoshop APP13 segments.
//
// Parsing is best effort and never fails: a dataset whose declared value
// would overrun the buffer truncates parsing at that point, and whatever
// was decoded before it is returned.
package iptc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Dataset is one raw (record, tag, value) triple from the stream, in
// encounter order. Value bytes are owned by the Data aggregate.
type Dataset struct {
	Record byte
	Tag    byte
	Value  []byte
}

// Data holds the decoded Application-record fields plus the complete raw
// dataset list for lossless round-trip and custom-tag access.
//
// Repeatable tags (keywords, supplemental categories, contacts) accumulate
// in encounter order; for every other tag the last occurrence in the stream
// wins, though Datasets still preserves each one.
type Data struct {
	ObjectName          string // Title.
	Urgency             string
	Category            string
	SpecialInstructions string
	DateCreated         string
	TimeCreated         string
	Byline              string
	BylineTitle         string
	City                string
	Sublocation         string
	ProvinceState       string
	CountryCode         string
	CountryName         string
	TransmissionRef     string
	Headline            string
	Credit              string
	Source              string
	CopyrightNotice     string
	Caption             string
	CaptionWriter       string

	Keywords               []string
	SupplementalCategories []string
	Contacts               []string

	Datasets []Dataset
}

// String implements Stringer.
func (d *Data) String() string {
	buf := bytes.NewBufferString("== IPTC ==\n")
	w := func(name, value string) {
		if value != "" {
			fmt.Fprintf(buf, "%s: %s\n", name, value)
		}
	}
	w("ObjectName", d.ObjectName)
	w("Headline", d.Headline)
	w("Caption", d.Caption)
	w("Byline", d.Byline)
	w("Credit", d.Credit)
	for _, k := range d.Keywords {
		w("Keyword", k)
	}
	fmt.Fprintf(buf, "Datasets: %d\n", len(d.Datasets))
	return buf.String()
}

// Parse decodes an IPTC-IIM stream. It never fails; malformed or truncated
// input yields whatever datasets were decodable before the damage.
func Parse(p []byte) *Data {
	d := &Data{}
	pos := 0
	for pos+5 <= len(p) {
		if p[pos] != datasetMarker {
			break
		}
		record := p[pos+1]
		tag := p[pos+2]

		length, consumed, ok := decodeLength(p[pos+3:])
		if !ok {
			break
		}
		pos += 3 + consumed
		if pos+length > len(p) {
			break
		}
		value := append([]byte(nil), p[pos:pos+length]...)
		pos += length

		d.Datasets = append(d.Datasets, Dataset{Record: record, Tag: tag, Value: value})
		if record == recordApplication {
			d.dispatch(tag, string(value))
		}
	}
	return d
}

// dispatch maps one Application-record dataset to its named field.
func (d *Data) dispatch(tag byte, value string) {
	switch tag {
	case tagObjectName:
		d.ObjectName = value
	case tagUrgency:
		d.Urgency = value
	case tagCategory:
		d.Category = value
	case tagSupplementalCategory:
		d.SupplementalCategories = append(d.SupplementalCategories, value)
	case tagKeywords:
		d.Keywords = append(d.Keywords, value)
	case tagSpecialInstructions:
		d.SpecialInstructions = value
	case tagDateCreated:
		d.DateCreated = value
	case tagTimeCreated:
		d.TimeCreated = value
	case tagByline:
		d.Byline = value
	case tagBylineTitle:
		d.BylineTitle = value
	case tagCity:
		d.City = value
	case tagSublocation:
		d.Sublocation = value
	case tagProvinceState:
		d.ProvinceState = value
	case tagCountryCode:
		d.CountryCode = value
	case tagCountryName:
		d.CountryName = value
	case tagTransmissionRef:
		d.TransmissionRef = value
	case tagHeadline:
		d.Headline = value
	case tagCredit:
		d.Credit = value
	case tagSource:
		d.Source = value
	case tagCopyrightNotice:
		d.CopyrightNotice = value
	case tagContact:
		d.Contacts = append(d.Contacts, value)
	case tagCaption:
		d.Caption = value
	case tagCaptionWriter:
		d.CaptionWriter = value
	}
}

// decodeLength decodes a dataset length field and returns the value length
// and the number of bytes the field itself consumed.
//
// Standard form: two big-endian bytes, high bit clear, 0-32767. Extended
// form: high bit set, the low 15 bits give the byte count of a following
// big-endian length value (allowing values beyond 16 bits).
func decodeLength(p []byte) (length, consumed int, ok bool) {
	if len(p) < 2 {
		return 0, 0, false
	}
	raw := int(binary.BigEndian.Uint16(p[0:2]))
	if raw&0x8000 == 0 {
		return raw, 2, true
	}

	count := raw & 0x7FFF
	// A length of more than 8 bytes is nonsense; treat it as corruption.
	if count == 0 || count > 8 || len(p) < 2+count {
		return 0, 0, false
	}
	for _, b := range p[2 : 2+count] {
		length = length<<8 | int(b)
		if length < 0 {
			return 0, 0, false
		}
	}
	return length, 2 + count, true
}

// appendLength encodes a dataset length, choosing the extended form
// whenever the value does not fit the standard 2-byte field.
func appendLength(out []byte, length int) []byte {
	if length <= maxStandardLength {
		return binary.BigEndian.AppendUint16(out, uint16(length))
	}
	out = binary.BigEndian.AppendUint16(out, 0x8000|4)
	return binary.BigEndian.AppendUint32(out, uint32(length))
}

// appendDataset encodes one dataset.
func appendDataset(out []byte, record, tag byte, value []byte) []byte {
	out = append(out, datasetMarker, record, tag)
	out = appendLength(out, len(value))
	return append(out, value...)
}

// Encode serializes the named fields and list fields, one dataset per
// populated value, all within the Application record.
func Encode(d *Data) []byte {
	out := make([]byte, 0, 256)
	add := func(tag byte, value string) {
		if value != "" {
			out = appendDataset(out, recordApplication, tag, []byte(value))
		}
	}

	add(tagObjectName, d.ObjectName)
	add(tagUrgency, d.Urgency)
	add(tagCategory, d.Category)
	for _, v := range d.SupplementalCategories {
		add(tagSupplementalCategory, v)
	}
	for _, v := range d.Keywords {
		add(tagKeywords, v)
	}
	add(tagSpecialInstructions, d.SpecialInstructions)
	add(tagDateCreated, d.DateCreated)
	add(tagTimeCreated, d.TimeCreated)
	add(tagByline, d.Byline)
	add(tagBylineTitle, d.BylineTitle)
	add(tagCity, d.City)
	add(tagSublocation, d.Sublocation)
	add(tagProvinceState, d.ProvinceState)
	add(tagCountryCode, d.CountryCode)
	add(tagCountryName, d.CountryName)
	add(tagTransmissionRef, d.TransmissionRef)
	add(tagHeadline, d.Headline)
	add(tagCredit, d.Credit)
	add(tagSource, d.Source)
	add(tagCopyrightNotice, d.CopyrightNotice)
	for _, v := range d.Contacts {
		add(tagContact, v)
	}
	add(tagCaption, d.Caption)
	add(tagCaptionWriter, d.CaptionWriter)
	return out
}

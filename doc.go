// Package imagemeta locates and decodes the metadata photographic tools
// embed in JPEG files. The root package finds the application segment each
// format lives in; the exif, icc, iptc and xmp subpackages decode and
// re-encode the formats themselves, each over a plain byte slice.
//
// All parsers are best effort: corrupt or truncated input yields a partial
// or empty aggregate, never an error. The only fallible operations are the
// segment locators, which report a missing segment with ErrNoSegment.
package imagemeta

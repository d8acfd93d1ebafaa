// Package xmp decodes and encodes XMP packets, the RDF/XML metadata text
// Adobe tools embed in JPEG APP1 segments.
//
// The parser is a purpose-built scanner for the restricted dialect those
// tools emit (attributes on rdf:Description elements plus rdf:Bag/Seq/Alt
// child lists), not a general XML parser, and it never fails: packets
// without an rdf:RDF element yield a Data holding only the raw packet copy.
package xmp

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Canonical namespace URIs. Properties are matched structurally: a known
// prefix, or an xmlns declaration whose URI contains the canonical one.
const (
	NamespaceDC        = "http://purl.org/dc/elements/1.1/"
	NamespaceXMP       = "http://ns.adobe.com/xap/1.0/"
	NamespaceXMPMM     = "http://ns.adobe.com/xap/1.0/mm/"
	NamespaceRights    = "http://ns.adobe.com/xap/1.0/rights/"
	NamespacePhotoshop = "http://ns.adobe.com/photoshop/1.0/"
	NamespaceRDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// prefixes maps the prefixes Adobe tools emit to canonical namespaces.
var prefixes = map[string]string{
	"dc":        NamespaceDC,
	"xmp":       NamespaceXMP,
	"xap":       NamespaceXMP,
	"xmpMM":     NamespaceXMPMM,
	"xapMM":     NamespaceXMPMM,
	"xmpRights": NamespaceRights,
	"xapRights": NamespaceRights,
	"photoshop": NamespacePhotoshop,
	"rdf":       NamespaceRDF,
}

// canonical maps a URI substring to the canonical namespace, for packets
// that declare variant URIs under arbitrary prefixes.
var canonical = []struct {
	substr string
	ns     string
}{
	{"purl.org/dc/elements", NamespaceDC},
	{"ns.adobe.com/xap/1.0/mm", NamespaceXMPMM},
	{"ns.adobe.com/xap/1.0/rights", NamespaceRights},
	{"ns.adobe.com/photoshop/1.0", NamespacePhotoshop},
	{"ns.adobe.com/xap/1.0", NamespaceXMP},
}

// PropertyType tells how a generic property was stored in the packet.
type PropertyType int

const (
	TypeSimple PropertyType = iota
	TypeBag
	TypeSeq
	TypeAlt
)

// Property is one decoded (namespace, local name, value) triple that did
// not map to a named field.
type Property struct {
	Namespace string
	Local     string
	Value     string
	Type      PropertyType
	Lang      string
}

// Data holds the decoded XMP fields. RawPacket preserves the original
// packet text verbatim.
type Data struct {
	// Dublin Core.
	Title       string
	Description string
	Creator     string
	Rights      string
	Format      string
	Subjects    []string // dc:subject keyword bag.

	// XMP core.
	CreateDate   string
	ModifyDate   string
	MetadataDate string
	CreatorTool  string
	Rating       string
	Label        string

	// XMP Media Management.
	DocumentID         string
	InstanceID         string
	OriginalDocumentID string

	// XMP Rights.
	Marked       string
	WebStatement string
	UsageTerms   string

	// Photoshop.
	Credit          string
	Source          string
	City            string
	State           string
	Country         string
	DateCreated     string
	Urgency         string
	Headline        string
	AuthorsPosition string
	CaptionWriter   string

	// Properties collects child-element properties that did not map to a
	// named field, in encounter order.
	Properties []Property

	RawPacket string
}

// String implements Stringer.
func (d *Data) String() string {
	buf := bytes.NewBufferString("== XMP ==\n")
	w := func(name, value string) {
		if value != "" {
			fmt.Fprintf(buf, "%s: %s\n", name, value)
		}
	}
	w("Title", d.Title)
	w("Description", d.Description)
	w("Creator", d.Creator)
	w("CreatorTool", d.CreatorTool)
	for _, s := range d.Subjects {
		w("Subject", s)
	}
	fmt.Fprintf(buf, "Properties: %d\n", len(d.Properties))
	return buf.String()
}

// Parse decodes an XMP packet. It never fails: without rdf:RDF markers the
// result holds only the preserved packet text.
func Parse(p []byte) *Data {
	d := &Data{RawPacket: string(p)}

	src := d.RawPacket
	start := strings.Index(src, "<rdf:RDF")
	end := strings.Index(src, "</rdf:RDF>")
	if start < 0 || end < 0 || end <= start {
		return d
	}

	s := &scanner{src: src[start:end]}
	for {
		t, ok := s.nextTag()
		if !ok {
			return d
		}
		if !t.closing && t.name == "rdf:Description" {
			d.parseDescription(s, t)
		}
	}
}

// parseDescription decodes one rdf:Description element: attribute-style
// properties first, then child elements until the matching close tag.
func (d *Data) parseDescription(s *scanner, open tag) {
	decls := make(map[string]string)
	for _, a := range open.attrs {
		if p, ok := strings.CutPrefix(a.name, "xmlns:"); ok {
			decls[p] = a.value
		}
	}

	for _, a := range open.attrs {
		prefix, local, ok := splitName(a.name)
		if !ok || prefix == "xmlns" || prefix == "xml" || prefix == "rdf" {
			continue
		}
		ns := resolve(prefix, decls)
		// Attribute properties that map to no named field are discarded.
		d.assign(ns, local, a.value)
	}
	if open.selfClosing {
		return
	}

	for {
		t, ok := s.nextTag()
		if !ok {
			return
		}
		if t.closing {
			if t.name == "rdf:Description" {
				return
			}
			continue
		}
		d.parseElement(s, t, decls)
	}
}

// parseElement decodes one child-element property, recursing into an
// rdf:Bag/Seq/Alt wrapper when the element content holds one.
func (d *Data) parseElement(s *scanner, t tag, decls map[string]string) {
	prefix, local, ok := splitName(t.name)
	if !ok || prefix == "rdf" {
		return
	}
	ns := resolve(prefix, decls)

	if t.selfClosing {
		// A self-closing property can still carry its value as an
		// rdf:resource reference.
		if v, ok := t.attr("rdf:resource"); ok && !d.assign(ns, local, v) {
			d.Properties = append(d.Properties, Property{Namespace: ns, Local: local, Value: v})
		}
		return
	}

	content := s.content(t.name)
	if listType, items, ok := parseList(content); ok {
		if ns == NamespaceDC && local == "subject" {
			for _, it := range items {
				d.Subjects = append(d.Subjects, it.value)
			}
			return
		}
		if len(items) > 0 && d.assign(ns, local, items[0].value) {
			return
		}
		for _, it := range items {
			d.Properties = append(d.Properties, Property{
				Namespace: ns,
				Local:     local,
				Value:     it.value,
				Type:      listType,
				Lang:      it.lang,
			})
		}
		return
	}

	value := unescape(strings.TrimSpace(content))
	if !d.assign(ns, local, value) {
		d.Properties = append(d.Properties, Property{Namespace: ns, Local: local, Value: value})
	}
}

// listItem is one rdf:li entry of a Bag/Seq/Alt wrapper.
type listItem struct {
	value string
	lang  string
}

// parseList decodes an rdf:Bag/Seq/Alt wrapper when content holds one.
func parseList(content string) (PropertyType, []listItem, bool) {
	var listType PropertyType
	switch {
	case strings.Contains(content, "<rdf:Bag"):
		listType = TypeBag
	case strings.Contains(content, "<rdf:Seq"):
		listType = TypeSeq
	case strings.Contains(content, "<rdf:Alt"):
		listType = TypeAlt
	default:
		return 0, nil, false
	}

	var items []listItem
	s := &scanner{src: content}
	for {
		t, ok := s.nextTag()
		if !ok {
			return listType, items, true
		}
		if t.closing || t.name != "rdf:li" {
			continue
		}
		item := listItem{}
		if v, ok := t.attr("xml:lang"); ok {
			if l, err := language.Parse(v); err == nil && l != language.Und {
				item.lang = l.String()
			}
		}
		if t.selfClosing {
			items = append(items, item)
			continue
		}
		item.value = unescape(strings.TrimSpace(s.content(t.name)))
		items = append(items, item)
	}
}

// splitName cuts a qualified name into its prefix and local part.
func splitName(name string) (prefix, local string, ok bool) {
	prefix, local, ok = strings.Cut(name, ":")
	return prefix, local, ok && prefix != "" && local != ""
}

// resolve maps a prefix to its canonical namespace: known prefixes first,
// then the element's own xmlns declarations matched by URI substring. An
// unknown prefix resolves to its declared URI, or to itself.
func resolve(prefix string, decls map[string]string) string {
	if ns, ok := prefixes[prefix]; ok {
		return ns
	}
	uri, ok := decls[prefix]
	if !ok {
		return prefix
	}
	for _, c := range canonical {
		if strings.Contains(uri, c.substr) {
			return c.ns
		}
	}
	return uri
}

// assign maps one property to its named field and reports whether the
// (namespace, local) pair is known.
func (d *Data) assign(ns, local, value string) bool {
	switch ns {
	case NamespaceDC:
		switch local {
		case "title":
			d.Title = value
		case "description":
			d.Description = value
		case "creator":
			d.Creator = value
		case "rights":
			d.Rights = value
		case "format":
			d.Format = value
		case "subject":
			d.Subjects = append(d.Subjects, value)
		default:
			return false
		}
	case NamespaceXMP:
		switch local {
		case "CreateDate":
			d.CreateDate = value
		case "ModifyDate":
			d.ModifyDate = value
		case "MetadataDate":
			d.MetadataDate = value
		case "CreatorTool":
			d.CreatorTool = value
		case "Rating":
			d.Rating = value
		case "Label":
			d.Label = value
		default:
			return false
		}
	case NamespaceXMPMM:
		switch local {
		case "DocumentID":
			d.DocumentID = value
		case "InstanceID":
			d.InstanceID = value
		case "OriginalDocumentID":
			d.OriginalDocumentID = value
		default:
			return false
		}
	case NamespaceRights:
		switch local {
		case "Marked":
			d.Marked = value
		case "WebStatement":
			d.WebStatement = value
		case "UsageTerms":
			d.UsageTerms = value
		default:
			return false
		}
	case NamespacePhotoshop:
		switch local {
		case "Credit":
			d.Credit = value
		case "Source":
			d.Source = value
		case "City":
			d.City = value
		case "State":
			d.State = value
		case "Country":
			d.Country = value
		case "DateCreated":
			d.DateCreated = value
		case "Urgency":
			d.Urgency = value
		case "Headline":
			d.Headline = value
		case "AuthorsPosition":
			d.AuthorsPosition = value
		case "CaptionWriter":
			d.CaptionWriter = value
		default:
			return false
		}
	default:
		return false
	}
	return true
}

package xmp

import "strings"

const (
	packetBegin = `<?xpacket begin="` + "\uFEFF" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>` + "\n"
	packetEnd   = `<?xpacket end="w"?>`
)

// field binds a named Data field to its qualified attribute name.
type field struct {
	prefix string
	local  string
	get    func(*Data) string
}

// fields lists every attribute-serialized named field, grouped by prefix.
var fields = []field{
	{"dc", "title", func(d *Data) string { return d.Title }},
	{"dc", "description", func(d *Data) string { return d.Description }},
	{"dc", "creator", func(d *Data) string { return d.Creator }},
	{"dc", "rights", func(d *Data) string { return d.Rights }},
	{"dc", "format", func(d *Data) string { return d.Format }},
	{"xmp", "CreateDate", func(d *Data) string { return d.CreateDate }},
	{"xmp", "ModifyDate", func(d *Data) string { return d.ModifyDate }},
	{"xmp", "MetadataDate", func(d *Data) string { return d.MetadataDate }},
	{"xmp", "CreatorTool", func(d *Data) string { return d.CreatorTool }},
	{"xmp", "Rating", func(d *Data) string { return d.Rating }},
	{"xmp", "Label", func(d *Data) string { return d.Label }},
	{"xmpMM", "DocumentID", func(d *Data) string { return d.DocumentID }},
	{"xmpMM", "InstanceID", func(d *Data) string { return d.InstanceID }},
	{"xmpMM", "OriginalDocumentID", func(d *Data) string { return d.OriginalDocumentID }},
	{"xmpRights", "Marked", func(d *Data) string { return d.Marked }},
	{"xmpRights", "WebStatement", func(d *Data) string { return d.WebStatement }},
	{"xmpRights", "UsageTerms", func(d *Data) string { return d.UsageTerms }},
	{"photoshop", "Credit", func(d *Data) string { return d.Credit }},
	{"photoshop", "Source", func(d *Data) string { return d.Source }},
	{"photoshop", "City", func(d *Data) string { return d.City }},
	{"photoshop", "State", func(d *Data) string { return d.State }},
	{"photoshop", "Country", func(d *Data) string { return d.Country }},
	{"photoshop", "DateCreated", func(d *Data) string { return d.DateCreated }},
	{"photoshop", "Urgency", func(d *Data) string { return d.Urgency }},
	{"photoshop", "Headline", func(d *Data) string { return d.Headline }},
	{"photoshop", "AuthorsPosition", func(d *Data) string { return d.AuthorsPosition }},
	{"photoshop", "CaptionWriter", func(d *Data) string { return d.CaptionWriter }},
}

// Encode serializes the named fields as attributes on one synthetic
// rdf:Description element, with the subject list as a dc:subject rdf:Bag
// child. Only the namespaces actually used are declared.
func Encode(d *Data) []byte {
	used := make(map[string]bool)
	for _, f := range fields {
		if f.get(d) != "" {
			used[f.prefix] = true
		}
	}
	if len(d.Subjects) > 0 {
		used["dc"] = true
	}

	var b strings.Builder
	b.WriteString(packetBegin)
	b.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	b.WriteString(" <rdf:RDF xmlns:rdf=\"" + NamespaceRDF + "\">\n")
	b.WriteString("  <rdf:Description rdf:about=\"\"")
	for _, prefix := range []string{"dc", "xmp", "xmpMM", "xmpRights", "photoshop"} {
		if used[prefix] {
			b.WriteString("\n    xmlns:" + prefix + "=\"" + prefixes[prefix] + "\"")
		}
	}
	for _, f := range fields {
		if v := f.get(d); v != "" {
			b.WriteString("\n    " + f.prefix + ":" + f.local + "=\"" + escape(v) + "\"")
		}
	}

	if len(d.Subjects) == 0 {
		b.WriteString("/>\n")
	} else {
		b.WriteString(">\n   <dc:subject>\n    <rdf:Bag>\n")
		for _, s := range d.Subjects {
			b.WriteString("     <rdf:li>" + escape(s) + "</rdf:li>\n")
		}
		b.WriteString("    </rdf:Bag>\n   </dc:subject>\n  </rdf:Description>\n")
	}
	b.WriteString(" </rdf:RDF>\n</x:xmpmeta>\n")
	b.WriteString(packetEnd)
	return []byte(b.String())
}

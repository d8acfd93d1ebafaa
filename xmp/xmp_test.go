package xmp_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mdouchement/imagemeta/xmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePacket = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:photoshop="http://ns.adobe.com/photoshop/1.0/"
    dc:title="A test image"
    photoshop:Credit="Agency"
    xmp:CreatorTool="imagemeta">
   <dc:subject>
    <rdf:Bag>
     <rdf:li>alpha</rdf:li>
     <rdf:li>beta</rdf:li>
    </rdf:Bag>
   </dc:subject>
   <dc:description>
    <rdf:Alt>
     <rdf:li xml:lang="x-default">Written &amp; shot on location</rdf:li>
    </rdf:Alt>
   </dc:description>
   <xmpMM:DocumentID xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/">xmp.did:123</xmpMM:DocumentID>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

func TestParse(t *testing.T) {
	d := xmp.Parse([]byte(samplePacket))

	assert.Equal(t, "A test image", d.Title)
	assert.Equal(t, "Agency", d.Credit)
	assert.Equal(t, "imagemeta", d.CreatorTool)
	assert.Equal(t, []string{"alpha", "beta"}, d.Subjects)
	assert.Equal(t, "Written & shot on location", d.Description)
	assert.Equal(t, "xmp.did:123", d.DocumentID)
	assert.Equal(t, samplePacket, d.RawPacket)
}

func TestParseUnknownProperties(t *testing.T) {
	packet := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:exif="http://ns.adobe.com/exif/1.0/">
   <exif:FNumber>4/1</exif:FNumber>
   <exif:ISOSpeedRatings>
    <rdf:Seq>
     <rdf:li>100</rdf:li>
     <rdf:li>200</rdf:li>
    </rdf:Seq>
   </exif:ISOSpeedRatings>
  </rdf:Description>
 </rdf:RDF>`

	d := xmp.Parse([]byte(packet))
	want := []xmp.Property{
		{Namespace: "http://ns.adobe.com/exif/1.0/", Local: "FNumber", Value: "4/1"},
		{Namespace: "http://ns.adobe.com/exif/1.0/", Local: "ISOSpeedRatings", Value: "100", Type: xmp.TypeSeq},
		{Namespace: "http://ns.adobe.com/exif/1.0/", Local: "ISOSpeedRatings", Value: "200", Type: xmp.TypeSeq},
	}
	if diff := cmp.Diff(want, d.Properties); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVariantPrefix(t *testing.T) {
	// A foreign prefix bound to a Dublin Core URI resolves structurally.
	packet := `<rdf:RDF><rdf:Description xmlns:foo="http://purl.org/dc/elements/1.1/" foo:title="Via URI"/></rdf:RDF>`
	d := xmp.Parse([]byte(packet))
	assert.Equal(t, "Via URI", d.Title)
}

func TestParseSelfClosingDescription(t *testing.T) {
	packet := `<rdf:RDF><rdf:Description dc:creator="Someone"/></rdf:RDF>`
	d := xmp.Parse([]byte(packet))
	assert.Equal(t, "Someone", d.Creator)
}

func TestParseNoRDF(t *testing.T) {
	for _, p := range []string{
		"",
		"plain text",
		"<x:xmpmeta></x:xmpmeta>",
		"<rdf:RDF> unterminated",
	} {
		d := xmp.Parse([]byte(p))
		require.NotNil(t, d)
		assert.Empty(t, d.Title)
		assert.Equal(t, p, d.RawPacket)
	}
}

func TestParseMalformedNeverPanics(t *testing.T) {
	for _, p := range []string{
		`<rdf:RDF><rdf:Description dc:title="unterminated></rdf:RDF>`,
		`<rdf:RDF><rdf:Description><dc:subject><rdf:Bag><rdf:li>x</rdf:RDF>`,
		`<rdf:RDF><rdf:Description foo=bar></rdf:Description></rdf:RDF>`,
		`<rdf:RDF><</rdf:RDF>`,
	} {
		d := xmp.Parse([]byte(p))
		require.NotNil(t, d)
		assert.Equal(t, p, d.RawPacket)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := &xmp.Data{
		Title:       "Test",
		Creator:     "J. Doe",
		Rights:      `All <rights> & "quotes" reserved`,
		CreatorTool: "imagemeta",
		Rating:      "5",
		DocumentID:  "xmp.did:42",
		Marked:      "True",
		Credit:      "Agency",
		Headline:    "Big news",
		Subjects:    []string{"one", "two", "three"},
	}
	out := xmp.Parse(xmp.Encode(in))

	assert.Equal(t, "Test", out.Title)
	assert.Equal(t, "J. Doe", out.Creator)
	assert.Equal(t, `All <rights> & "quotes" reserved`, out.Rights)
	assert.Equal(t, "imagemeta", out.CreatorTool)
	assert.Equal(t, "5", out.Rating)
	assert.Equal(t, "xmp.did:42", out.DocumentID)
	assert.Equal(t, "True", out.Marked)
	assert.Equal(t, "Agency", out.Credit)
	assert.Equal(t, "Big news", out.Headline)
	assert.Equal(t, []string{"one", "two", "three"}, out.Subjects)
}

func TestEncodeTitleOnly(t *testing.T) {
	out := xmp.Parse(xmp.Encode(&xmp.Data{Title: "Test"}))
	assert.Equal(t, "Test", out.Title)
	assert.Empty(t, out.Subjects)
}

func FuzzParse(f *testing.F) {
	f.Add([]byte(samplePacket))
	f.Add([]byte("<rdf:RDF></rdf:RDF>"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, p []byte) {
		d := xmp.Parse(p)
		if d == nil {
			t.Fatal("Parse returned nil")
		}
	})
}

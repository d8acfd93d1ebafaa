package xmp

import (
	"strconv"
	"strings"
)

// scanner is a narrow tokenizer for the RDF/XML dialect Adobe tools emit
// in XMP packets: tags, attribute lists and raw character content. It is
// deliberately not a general XML parser; on malformed input it simply runs
// out of tokens.
type scanner struct {
	src string
	pos int
}

// attr is one name="value" pair from a tag.
type attr struct {
	name  string
	value string
}

// tag is one parsed <...> token.
type tag struct {
	name        string
	attrs       []attr
	closing     bool // </name>
	selfClosing bool // <name ... />
}

// attr returns the value of the named attribute and whether it is present.
func (t tag) attr(name string) (string, bool) {
	for _, a := range t.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// nextTag scans forward to the next tag token. Processing instructions and
// comments are skipped.
func (s *scanner) nextTag() (tag, bool) {
	for {
		i := strings.IndexByte(s.src[s.pos:], '<')
		if i < 0 {
			s.pos = len(s.src)
			return tag{}, false
		}
		s.pos += i
		if strings.HasPrefix(s.src[s.pos:], "<?") || strings.HasPrefix(s.src[s.pos:], "<!--") {
			end := strings.IndexByte(s.src[s.pos:], '>')
			if end < 0 {
				s.pos = len(s.src)
				return tag{}, false
			}
			s.pos += end + 1
			continue
		}
		return s.readTag()
	}
}

// readTag parses the tag starting at s.pos, which must point at '<', and
// leaves the position after the closing '>'.
func (s *scanner) readTag() (tag, bool) {
	var t tag
	s.pos++ // '<'
	if s.pos < len(s.src) && s.src[s.pos] == '/' {
		t.closing = true
		s.pos++
	}

	start := s.pos
	for s.pos < len(s.src) && !isTagDelim(s.src[s.pos]) {
		s.pos++
	}
	t.name = s.src[start:s.pos]
	if t.name == "" {
		return tag{}, false
	}

	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return tag{}, false
		}
		switch s.src[s.pos] {
		case '>':
			s.pos++
			return t, true
		case '/':
			s.pos++
			if s.pos < len(s.src) && s.src[s.pos] == '>' {
				s.pos++
				t.selfClosing = true
				return t, true
			}
			return tag{}, false
		default:
			a, ok := s.readAttr()
			if !ok {
				return tag{}, false
			}
			t.attrs = append(t.attrs, a)
		}
	}
}

// readAttr parses one name="value" pair; single quotes are accepted too.
func (s *scanner) readAttr() (attr, bool) {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '=' && !isTagDelim(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]
	if name == "" || s.pos >= len(s.src) || s.src[s.pos] != '=' {
		return attr{}, false
	}
	s.pos++
	if s.pos >= len(s.src) {
		return attr{}, false
	}
	quote := s.src[s.pos]
	if quote != '"' && quote != '\'' {
		return attr{}, false
	}
	s.pos++
	end := strings.IndexByte(s.src[s.pos:], quote)
	if end < 0 {
		return attr{}, false
	}
	value := s.src[s.pos : s.pos+end]
	s.pos += end + 1
	return attr{name: name, value: unescape(value)}, true
}

// content returns the character data up to the closing tag for name and
// leaves the position after that closing tag. Missing close tags consume
// the rest of the input.
func (s *scanner) content(name string) string {
	closing := "</" + name + ">"
	i := strings.Index(s.src[s.pos:], closing)
	if i < 0 {
		c := s.src[s.pos:]
		s.pos = len(s.src)
		return c
	}
	c := s.src[s.pos : s.pos+i]
	s.pos += i + len(closing)
	return c
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTagDelim(c byte) bool {
	return isSpace(c) || c == '>' || c == '/' || c == '<'
}

// unescape decodes the XML entities attribute values and character data may
// carry, including numeric character references. Unknown entities are left
// untouched.
func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		entity := s[i+1 : i+end]
		switch {
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "amp":
			b.WriteByte('&')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#"):
			if r, ok := numericRef(entity[1:]); ok {
				b.WriteRune(r)
			} else {
				b.WriteString(s[i : i+end+1])
			}
		default:
			b.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

func numericRef(s string) (rune, bool) {
	base := 10
	if strings.HasPrefix(s, "x") || strings.HasPrefix(s, "X") {
		base = 16
		s = s[1:]
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil || n > 0x10FFFF {
		return 0, false
	}
	return rune(n), true
}

// escape encodes the five XML entities for attribute values and character
// data on the write path.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

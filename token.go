package smrender

// TokenType enumerates the kinds of element the HPX parser can emit.
type TokenType int

const (
	TokEOF TokenType = iota
	TokOpen
	TokClose
	TokSelfClose
	TokPI
	TokComment
	TokCDATA
	TokDoctype
	TokLiteral
	TokBad
)

// Attr is one attribute of an open/self-close/PI tag.
type Attr struct {
	Name  BString
	Value BString
	Quote byte
}

// Token is a single HPX parser event.
type Token struct {
	Type    TokenType
	Name    BString // element name for tags; empty for literal/comment/cdata
	Attrs   []Attr
	Content BString // literal text, comment body, or CDATA body
	Line    int
}

func isNameStart(c byte) bool {
	return c == '_' || c == ':' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseName consumes an XML name at the start of b, returning the name
// and the remaining bytes.
func parseName(b BString) (name BString, rest BString) {
	buf := b.Bytes()
	if len(buf) == 0 || !isNameStart(buf[0]) {
		return BString{}, b
	}
	i := 1
	for i < len(buf) && isNameChar(buf[i]) {
		i++
	}
	return b.Slice(0, i), b.Slice(i, b.Len())
}

func skipSpace(b BString) BString {
	buf := b.Bytes()
	i := 0
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	return b.Slice(i, b.Len())
}

// parseAttrs parses a run of `name="value"` pairs up to (not including)
// the tag's closing `>` or `/>`. It returns a bounded attribute list.
func parseAttrs(b BString) []Attr {
	var attrs []Attr
	for {
		b = skipSpace(b)
		buf := b.Bytes()
		if len(buf) == 0 {
			break
		}
		if buf[0] == '>' || buf[0] == '/' || buf[0] == '?' {
			break
		}
		name, rest := parseName(b)
		if name.Len() == 0 {
			break
		}
		rest = skipSpace(rest)
		rb := rest.Bytes()
		if len(rb) == 0 || rb[0] != '=' {
			attrs = append(attrs, Attr{Name: name})
			b = rest
			continue
		}
		rest = rest.Slice(1, rest.Len())
		rest = skipSpace(rest)
		rb = rest.Bytes()
		if len(rb) == 0 || (rb[0] != '"' && rb[0] != '\'') {
			break
		}
		quote := rb[0]
		rest = rest.Slice(1, rest.Len())
		rb = rest.Bytes()
		end := -1
		for i, c := range rb {
			if c == quote {
				end = i
				break
			}
		}
		if end < 0 {
			break
		}
		attrs = append(attrs, Attr{Name: name, Value: rest.Slice(0, end), Quote: quote})
		b = rest.Slice(end+1, rest.Len())
	}
	return attrs
}

// processMarkup classifies and parses a markup span (starting with '<')
// that has already been bounded by rawElement.
func processMarkup(span BString) Token {
	buf := span.Bytes()
	n := len(buf)
	if n < 2 || buf[0] != '<' || buf[n-1] != '>' {
		return Token{Type: TokBad}
	}
	inner := span.Slice(1, n-1)
	ib := inner.Bytes()

	switch {
	case len(ib) >= 1 && ib[0] == '/':
		name, _ := parseName(inner.Slice(1, inner.Len()))
		return Token{Type: TokClose, Name: name}

	case len(ib) >= 1 && ib[0] == '?':
		body := inner.Slice(1, inner.Len())
		if len(body.Bytes()) > 0 && body.Bytes()[len(body.Bytes())-1] == '?' {
			body = body.Slice(0, body.Len()-1)
		}
		name, rest := parseName(body)
		return Token{Type: TokPI, Name: name, Attrs: parseAttrs(rest)}

	case len(ib) >= 3 && ib[0] == '!' && ib[1] == '-' && ib[2] == '-':
		body := inner.Slice(3, inner.Len())
		bb := body.Bytes()
		if len(bb) >= 2 && bb[len(bb)-2] == '-' && bb[len(bb)-1] == '-' {
			body = body.Slice(0, body.Len()-2)
		}
		return Token{Type: TokComment, Content: body}

	case len(ib) >= 8 && string(ib[0:8]) == "![CDATA[":
		body := inner.Slice(8, inner.Len())
		bb := body.Bytes()
		if len(bb) >= 2 && bb[len(bb)-2] == ']' && bb[len(bb)-1] == ']' {
			body = body.Slice(0, body.Len()-2)
		}
		return Token{Type: TokCDATA, Content: body}

	case len(ib) >= 1 && ib[0] == '!':
		return Token{Type: TokDoctype, Content: inner.Slice(1, inner.Len())}

	default:
		selfClose := n >= 2 && buf[n-2] == '/'
		body := inner
		if selfClose {
			body = inner.Slice(0, inner.Len()-1)
		}
		name, rest := parseName(body)
		attrs := parseAttrs(rest)
		if selfClose {
			return Token{Type: TokSelfClose, Name: name, Attrs: attrs}
		}
		return Token{Type: TokOpen, Name: name, Attrs: attrs}
	}
}

// GetElem returns the next parser event. Literal text is trimmed of
// leading/trailing whitespace unless the enclosing element's close tag
// immediately follows, in which case it is returned verbatim — this
// preserves meaningful trailing/leading space in elements whose only
// content is a literal, such as `<v>  text  </v>`.
func (p *Parser) GetElem() (Token, error) {
	span, isTag, lineno, ok, err := p.NextElement()
	if err != nil {
		return Token{Type: TokBad}, err
	}
	if !ok {
		return Token{Type: TokEOF}, nil
	}

	if !isTag {
		verbatim := p.matchAt(0, "</"+p.lastOpen)
		content := span
		if !verbatim {
			content = span.TrimSpace()
		}
		return Token{Type: TokLiteral, Content: content, Line: lineno}, nil
	}

	tok := processMarkup(span)
	tok.Line = lineno
	switch tok.Type {
	case TokOpen:
		p.lastOpen = tok.Name.String()
	case TokBad:
		return tok, ErrMalformed
	}
	return tok, nil
}

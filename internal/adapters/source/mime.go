package source

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// SnippetChars is the length of the preview stored with each email
const SnippetChars = 200

// NoSubject replaces an absent Subject header
const NoSubject = "(No Subject)"

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

var addressParser = &mail.AddressParser{WordDecoder: wordDecoder}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// decodeCharset converts b from charset to UTF-8. Unknown charsets and
// decoding failures fall back to the raw bytes.
func decodeCharset(b []byte, charset string) string {
	charset = strings.TrimSpace(charset)
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "us-ascii") {
		return string(b)
	}
	r, err := charsetReader(charset, bytes.NewReader(b))
	if err != nil {
		return string(b)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure
func decodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// parseFrom splits a From header into display name and address
func parseFrom(value string) (name, address string) {
	if strings.TrimSpace(value) == "" {
		return "", ""
	}
	addr, err := addressParser.Parse(value)
	if err != nil {
		// Keep whatever looks like an address so the sender is not lost
		if i := strings.LastIndex(value, "<"); i >= 0 {
			return strings.TrimSpace(decodeHeader(value[:i])), strings.Trim(value[i:], "<> ")
		}
		return "", strings.TrimSpace(value)
	}
	return addr.Name, addr.Address
}

// parseDate parses a Date header, returning the zero time when it is invalid
func parseDate(value string) time.Time {
	t, err := mail.ParseDate(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// extractText returns the message text, preferring text/plain parts over
// text/html anywhere in the MIME tree. Attachments are skipped and HTML is
// reduced to its text.
func extractText(header textproto.MIMEHeader, body io.Reader) (string, error) {
	var w textWalker
	if err := w.walk(header, body); err != nil {
		return "", err
	}
	if w.plain != "" {
		return w.plain, nil
	}
	if w.html != "" {
		return htmlToText(w.html), nil
	}
	return "", nil
}

type textWalker struct {
	plain string
	html  string
}

func (w *textWalker) walk(header textproto.MIMEHeader, body io.Reader) error {
	if strings.HasPrefix(strings.ToLower(header.Get("Content-Disposition")), "attachment") {
		return nil
	}

	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		// Missing or broken Content-Type means plain text
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return nil
		}
		mr := multipart.NewReader(body, boundary)
		for w.plain == "" {
			part, err := mr.NextRawPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				// Keep what was found before the broken part
				return nil
			}
			if err := w.walk(part.Header, part); err != nil {
				return err
			}
		}
		return nil
	}

	if mediaType != "text/plain" && mediaType != "text/html" {
		return nil
	}
	if mediaType == "text/html" && w.html != "" {
		return nil
	}

	raw, err := io.ReadAll(transferDecoder(header.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return fmt.Errorf("failed to read %s part: %w", mediaType, err)
	}
	text := decodeCharset(raw, params["charset"])

	if mediaType == "text/plain" {
		w.plain = text
	} else {
		w.html = text
	}
	return nil
}

func transferDecoder(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes cleanly
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	for {
		count, err := n.r.Read(p)
		kept := 0
		for _, b := range p[:count] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

// blockElements end a line when converting HTML to text
var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "table": true,
}

// htmlToText keeps the visible text of an HTML document with one line per
// block element
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var sb strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseBlankLines(sb.String())
		case html.TextToken:
			if skip == 0 {
				writeText(&sb, string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style" || tag == "head":
				skip++
			case blockElements[tag]:
				sb.WriteByte('\n')
			case tag == "td":
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style" || tag == "head":
				if skip > 0 {
					skip--
				}
			case blockElements[tag]:
				sb.WriteByte('\n')
			}
		}
	}
}

// writeText appends t with inner whitespace collapsed, keeping a single
// separating space where t started or ended with whitespace
func writeText(sb *strings.Builder, t string) {
	if t == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(t)
	last, _ := utf8.DecodeLastRuneInString(t)
	if unicode.IsSpace(first) {
		sb.WriteByte(' ')
	}
	sb.WriteString(strings.Join(strings.Fields(t), " "))
	if unicode.IsSpace(last) {
		sb.WriteByte(' ')
	}
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// snippet is a single-line preview of body
func snippet(body string) string {
	text := strings.Join(strings.Fields(body), " ")
	if runes := []rune(text); len(runes) > SnippetChars {
		text = strings.TrimSpace(string(runes[:SnippetChars]))
	}
	return text
}

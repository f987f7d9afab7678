// Package mailbody extracts the readable text of an RFC 5322 message.
package mailbody

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // non-UTF-8 body decoding
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// ErrNoText is returned when a message has no text part.
var ErrNoText = errors.New("message has no text part")

// Text returns the text/plain parts of raw joined by blank lines, with LF line
// endings. Without a plain part the HTML parts are flattened to text.
// Attachments are skipped.
func Text(raw string) (string, error) {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("parsing message: %w", err)
	}
	defer mr.Close()

	var textParts, htmlParts []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return "", fmt.Errorf("reading message part: %w", err)
		}
		if isAttachment(p.Header) {
			continue
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("reading message part: %w", err)
		}
		text := strings.TrimSpace(strings.ReplaceAll(string(body), "\r\n", "\n"))
		if text == "" {
			continue
		}

		switch ct := contentType(p.Header); {
		case ct == "text/html":
			htmlParts = append(htmlParts, text)
		case ct == "" || strings.HasPrefix(ct, "text/"):
			textParts = append(textParts, text)
		}
	}

	switch {
	case len(textParts) > 0:
		return strings.Join(textParts, "\n\n"), nil
	case len(htmlParts) > 0:
		return stripTags(strings.Join(htmlParts, "\n\n")), nil
	default:
		return "", ErrNoText
	}
}

// Body is Text with a fallback: when raw cannot be parsed or has no text
// part, raw is returned unchanged.
func Body(raw string) string {
	text, err := Text(raw)
	if err != nil {
		return raw
	}
	return text
}

func contentType(h mail.PartHeader) string {
	raw := h.Get("Content-Type")
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(strings.ToLower(raw))
}

func isAttachment(h mail.PartHeader) bool {
	if _, ok := h.(*mail.AttachmentHeader); ok {
		return true
	}
	ct := contentType(h)
	return ct != "" && !strings.HasPrefix(ct, "text/")
}

// stripTags flattens HTML to its text content, dropping script and style
// elements.
func stripTags(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseLines(b.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); hiddenElement(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); hiddenElement(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func hiddenElement(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

package filesource

import (
	"bytes"
	"errors"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

var frontMatterDelim = []byte("---")

// componentRe finds linked item placeholders in rendered rich text.
var componentRe = regexp.MustCompile(`<object[^>]*data-codename="([^"]+)"`)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Component placeholders are raw <object> tags.
			html.WithUnsafe(),
		),
	)
}

// splitFrontMatter separates a "---" delimited YAML header from the body.
func splitFrontMatter(data []byte) (header, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(data, frontMatterDelim) {
		return nil, nil, errors.New("missing front matter")
	}
	rest := data[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, nil, errors.New("unterminated front matter")
	}
	rest = rest[nl+1:]

	for off := 0; off < len(rest); {
		line := rest[off:]
		end := bytes.IndexByte(line, '\n')
		if end < 0 {
			end = len(line)
		}
		if bytes.Equal(bytes.TrimRight(line[:end], " \r"), frontMatterDelim) {
			header = rest[:off]
			body = rest[min(off+end+1, len(rest)):]
			return header, body, nil
		}
		off += end + 1
	}
	return nil, nil, errors.New("unterminated front matter")
}

// richText renders a Markdown body into a rich_text element. Codenames of
// embedded components are taken from the front matter when listed there,
// otherwise from the placeholders in the output.
func (s *Source) richText(body []byte, declared fileElement) (delivery.Element, error) {
	var buf bytes.Buffer
	if err := s.md.Convert(body, &buf); err != nil {
		return delivery.Element{}, err
	}
	el, err := fileElement{Type: delivery.TypeRichText, Name: declared.Name, Value: buf.String()}.element("body")
	if err != nil {
		return delivery.Element{}, err
	}
	el.ModularContent = declared.ModularContent
	if len(el.ModularContent) == 0 {
		seen := make(map[string]bool)
		for _, m := range componentRe.FindAllSubmatch(buf.Bytes(), -1) {
			c := string(m[1])
			if !seen[c] {
				seen[c] = true
				el.ModularContent = append(el.ModularContent, c)
			}
		}
	}
	return el, nil
}

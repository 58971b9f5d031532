package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

var (
	// objectRe matches a linked item placeholder as the Delivery API emits it.
	objectRe = regexp.MustCompile(`<object\b[^>]*\bdata-codename="([^"]*)"[^>]*>\s*</object>`)

	emptyRichTextRe = regexp.MustCompile(`^(?:\s|<p>\s*(?:<br\s*/?>)?\s*</p>)*$`)
)

// richTextPolicy keeps ordinary formatting and the component placeholders.
func richTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("object", "figure", "figcaption")
	p.AllowAttrs("type", "data-type", "data-rel", "data-codename").OnElements("object")
	p.AllowAttrs("data-asset-id", "data-image-id").OnElements("figure", "img")
	p.AllowAttrs("data-item-id").OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).Globally()
	return p
}

// IsEmptyRichText reports whether a rich text value has no visible content.
// The editor stores a cleared field as "<p><br></p>".
func IsEmptyRichText(value string) bool {
	return emptyRichTextRe.MatchString(value)
}

// RichText sanitizes the named rich_text element of it and replaces
// component placeholders with the rendered linked items. Placeholders whose
// item is not hydrated, or of a type with no component, are dropped.
func (r *Renderer) RichText(it *delivery.Item, element string, preview bool) template.HTML {
	return r.richText(it, element, preview, 0)
}

const maxComponentDepth = 3

func (r *Renderer) richText(it *delivery.Item, element string, preview bool, depth int) template.HTML {
	value := it.Text(element)
	if IsEmptyRichText(value) {
		return ""
	}
	clean := r.policy.Sanitize(value)
	out := objectRe.ReplaceAllStringFunc(clean, func(m string) string {
		sub := objectRe.FindStringSubmatch(m)
		if len(sub) < 2 || depth >= maxComponentDepth {
			return ""
		}
		linked := it.Linked[sub[1]]
		if linked == nil {
			return ""
		}
		return string(r.component(linked, preview, depth+1))
	})
	return template.HTML(strings.TrimSpace(out))
}

// component renders an item embedded in rich text.
func (r *Renderer) component(it *delivery.Item, preview bool, depth int) template.HTML {
	var buf bytes.Buffer
	var err error
	switch it.System.Type {
	case TypeFactSectional:
		err = r.tmpl.ExecuteTemplate(&buf, "fact_section", NewFactSection(it))
	case TypeBlogPost:
		cards := BlogCards([]*delivery.Item{it}, preview)
		err = r.tmpl.ExecuteTemplate(&buf, "blog_card", cards[0])
	default:
		if it.Element("body").Type == delivery.TypeRichText {
			return r.richText(it, "body", preview, depth)
		}
		return ""
	}
	if err != nil {
		r.logger.Warn("rendering component", zap.String("codename", it.System.Codename), zap.Error(err))
		return ""
	}
	return template.HTML(buf.String())
}

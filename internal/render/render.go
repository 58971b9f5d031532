// Package render turns content items into HTML. Every function here is pure:
// the same items and parameters always produce the same markup.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/carousel"
	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Renderer executes the site templates.
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
	logger *zap.Logger
}

// New parses the templates.
func New(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("site").Funcs(funcs()).Parse(templates)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, policy: richTextPolicy(), logger: logger}, nil
}

var codenameRe = regexp.MustCompile(`^[\w\-.]*$`)

func funcs() template.FuncMap {
	return template.FuncMap{
		// Smart link attributes let the CMS editor locate items and
		// elements on the page.
		"itemAttr": func(id string) template.HTMLAttr {
			return template.HTMLAttr(`data-kontent-item-id="` + template.HTMLEscapeString(id) + `"`)
		},
		"elementAttr": func(codename string) template.HTMLAttr {
			if !codenameRe.MatchString(codename) {
				return ""
			}
			return template.HTMLAttr(`data-kontent-element-codename="` + codename + `"`)
		},
		"add": func(a, b int) int { return a + b },
	}
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Document is a full HTML page.
type Document struct {
	Title         string
	EnvironmentID string
	Language      string
	Preview       bool
	// Session is the websocket URL of the page's live session. Empty
	// disables live updates.
	Session  string
	Header   template.HTML
	Main     template.HTML
	Interval int // carousel interval in milliseconds
}

// Document writes d as a complete page.
func (r *Renderer) Document(w io.Writer, d Document) error {
	if d.Language == "" {
		d.Language = delivery.DefaultLanguage
	}
	if d.Interval <= 0 {
		d.Interval = int(carousel.DefaultInterval.Milliseconds())
	}
	if err := r.tmpl.ExecuteTemplate(w, "document", d); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}

// LangToggle holds the links of the language switcher.
type LangToggle struct {
	English string
	Spanish string
	Current string
}

// NewLangToggle builds the switcher for the page at u. English removes the
// lang parameter; Spanish sets it to es-ES. Nothing else in the URL changes.
func NewLangToggle(u *url.URL) *LangToggle {
	en, es := *u, *u
	q := u.Query()
	current := q.Get("lang")
	if current == "" {
		current = "en-US"
	}

	q.Del("lang")
	en.RawQuery = q.Encode()
	q.Set("lang", "es-ES")
	es.RawQuery = q.Encode()
	return &LangToggle{English: en.RequestURI(), Spanish: es.RequestURI(), Current: current}
}

// Header is the site header.
type Header struct {
	Home       string
	Nav        []NavItem
	LangToggle *LangToggle
}

// Header renders the site header.
func (r *Renderer) Header(h Header) (template.HTML, error) {
	if h.Home == "" {
		h.Home = "/"
	}
	return r.execute("header", h)
}

type homeView struct {
	ItemID   string
	Headline string
	Body     template.HTML
	Sections []NavItem
}

// Home renders the landing page.
func (r *Renderer) Home(landing *delivery.Item, preview bool) (template.HTML, error) {
	return r.execute("home", homeView{
		ItemID:   landing.System.ID,
		Headline: landing.Text("headline"),
		Body:     r.RichText(landing, "body", preview),
		Sections: NavMenu(landing, preview),
	})
}

// CarouselView is the blog carousel.
type CarouselView struct {
	Slides []BlogCard
	Index  int
}

// Active reports whether slide i is the one shown.
func (c CarouselView) Active(i int) bool { return i == c.Index }

// Blog is the data of the blog list page.
type Blog struct {
	Page     *delivery.Item
	Posts    []*delivery.Item
	Carousel int
	Preview  bool
}

type blogView struct {
	ItemID    string
	Headline  string
	HeroImage string
	HeroAlt   string
	Body      template.HTML
	Carousel  CarouselView
	Rows      [][]BlogCard
}

// CarouselPosts returns the posts the carousel shows.
func CarouselPosts(posts []*delivery.Item) []*delivery.Item {
	if len(posts) > carousel.Size {
		return posts[:carousel.Size]
	}
	return posts
}

// Blog renders the blog list page.
func (r *Renderer) Blog(b Blog) (template.HTML, error) {
	cards := BlogCards(b.Posts, b.Preview)
	v := blogView{
		ItemID:   b.Page.System.ID,
		Headline: b.Page.Text("headline"),
		Body:     r.RichText(b.Page, "body", b.Preview),
		Carousel: CarouselView{Slides: BlogCards(CarouselPosts(b.Posts), b.Preview), Index: b.Carousel},
		Rows:     GroupRows(cards),
	}
	if v.Carousel.Index >= len(v.Carousel.Slides) {
		v.Carousel.Index = 0
	}
	if a, ok := b.Page.FirstAsset("hero_image"); ok {
		v.HeroImage, v.HeroAlt = a.URL, a.Description
	}
	return r.execute("blog", v)
}

// Carousel renders the carousel on its own.
func (r *Renderer) Carousel(c CarouselView) (template.HTML, error) {
	return r.execute("carousel", c)
}

type postView struct {
	PostView
	Back string
	Body template.HTML
}

// BlogPost renders a blog post page.
func (r *Renderer) BlogPost(post *delivery.Item, preview bool) (template.HTML, error) {
	return r.execute("post", postView{
		PostView: NewPostView(post),
		Back:     PreviewLink("/blog", preview),
		Body:     r.RichText(post, "body", preview),
	})
}

type eventView struct {
	EventView
	Description template.HTML
}

// Event renders an event page.
func (r *Renderer) Event(ev *delivery.Item, preview bool) (template.HTML, error) {
	return r.execute("event", eventView{
		EventView:   NewEventView(ev),
		Description: r.RichText(ev, "description", preview),
	})
}

// FactSectional renders a fact section page.
func (r *Renderer) FactSectional(it *delivery.Item) (template.HTML, error) {
	return r.execute("fact_section", NewFactSection(it))
}

// NotFound renders the "not found" state.
func (r *Renderer) NotFound(message string) (template.HTML, error) {
	return r.execute("not_found", message)
}

// Error renders the error state shown when content could not be loaded.
func (r *Renderer) Error(message string) (template.HTML, error) {
	return r.execute("error", message)
}

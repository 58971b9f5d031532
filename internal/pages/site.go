package pages

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/loader"
	"github.com/ziadkadry99/boulevard/internal/render"
)

// SessionPath is where pages open their live session.
const SessionPath = "/ws/session"

// Site renders pages into the site layout.
type Site struct {
	Renderer      *render.Renderer
	EnvironmentID string
	Interval      time.Duration
	Logger        *zap.Logger
}

// Output is a rendered page.
type Output struct {
	Status int
	Title  string
	Header template.HTML
	Main   template.HTML
}

const loadFailedMessage = "We couldn't load this page's content. Please try again in a moment."

// Render renders the page's current results. carouselIndex selects the
// carousel slide on the blog page.
func (s *Site) Render(p *Page, carouselIndex int) (Output, error) {
	r := p.Route
	out := Output{Status: http.StatusOK}

	header, err := s.header(p)
	if err != nil {
		return Output{}, err
	}
	out.Header = header

	for _, name := range p.SlotNames() {
		if res := p.Result(name); res.Status == loader.StatusFailure {
			s.logger().Warn("page content failed to load",
				zap.String("path", r.URL.Path), zap.String("slot", name), zap.Error(res.Err))
			out.Status = http.StatusBadGateway
			out.Title = "Error"
			out.Main, err = s.Renderer.Error(loadFailedMessage)
			return out, err
		}
	}

	primary := p.Result(r.Primary().Name).First()
	if primary == nil {
		out.Status = http.StatusNotFound
		out.Title = "Not found"
		out.Main, err = s.Renderer.NotFound(notFoundMessage(r.Kind))
		return out, err
	}

	switch r.Kind {
	case KindHome:
		out.Title = primary.Text("headline")
		out.Main, err = s.Renderer.Home(primary, r.Preview)
	case KindBlog:
		out.Title = primary.Text("headline")
		out.Main, err = s.Renderer.Blog(render.Blog{
			Page:     primary,
			Posts:    p.Items(SlotPosts),
			Carousel: carouselIndex,
			Preview:  r.Preview,
		})
	case KindBlogPost:
		out.Title = primary.Text("title")
		out.Main, err = s.Renderer.BlogPost(primary, r.Preview)
	case KindEvent:
		out.Title = primary.Text("name")
		out.Main, err = s.Renderer.Event(primary, r.Preview)
	case KindResearch:
		out.Title = primary.Text("title")
		out.Main, err = s.Renderer.FactSectional(primary)
	default:
		err = fmt.Errorf("unknown page kind %q", r.Kind)
	}
	return out, err
}

// Carousel renders the blog carousel alone.
func (s *Site) Carousel(p *Page, index int) (template.HTML, error) {
	cards := render.BlogCards(render.CarouselPosts(p.Items(SlotPosts)), p.Route.Preview)
	if index >= len(cards) {
		index = 0
	}
	return s.Renderer.Carousel(render.CarouselView{Slides: cards, Index: index})
}

func (s *Site) header(p *Page) (template.HTML, error) {
	r := p.Route
	h := render.Header{
		Home: render.PreviewLink("/", r.Preview),
		Nav:  render.NavMenu(p.Result(SlotNavigation).First(), r.Preview),
	}
	if r.Kind == KindResearch {
		h.LangToggle = render.NewLangToggle(r.URL)
	}
	return s.Renderer.Header(h)
}

// Write renders the full document for the page.
func (s *Site) Write(w io.Writer, p *Page, out Output) error {
	return s.Renderer.Document(w, render.Document{
		Title:         out.Title,
		EnvironmentID: s.EnvironmentID,
		Language:      p.Route.Language,
		Preview:       p.Route.Preview,
		Session:       SessionURL(p.Route.URL),
		Header:        out.Header,
		Main:          out.Main,
		Interval:      int(s.Interval.Milliseconds()),
	})
}

// SessionURL returns the live session URL of the page at u.
func SessionURL(u *url.URL) string {
	return SessionPath + "?page=" + url.QueryEscape(u.RequestURI())
}

func notFoundMessage(k Kind) string {
	switch k {
	case KindBlog:
		return "The blog page has not been published yet."
	case KindBlogPost:
		return "This blog post doesn't exist."
	case KindEvent:
		return "This event doesn't exist."
	case KindResearch:
		return "This research page doesn't exist."
	default:
		return "There is no content for this page yet."
	}
}

func (s *Site) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Package pages maps site URLs to the content queries behind them and
// renders the resulting pages.
package pages

import (
	"net/url"
	"strings"

	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/render"
)

// Kind identifies a page template.
type Kind string

const (
	KindHome     Kind = "home"
	KindBlog     Kind = "blog"
	KindBlogPost Kind = "blog_post"
	KindEvent    Kind = "event"
	KindResearch Kind = "research"
)

// Slot names. The first slot of a route is its primary query.
const (
	SlotNavigation = "navigation"
	SlotPage       = "page"
	SlotPosts      = "posts"
	SlotPost       = "post"
	SlotEvent      = "event"
	SlotFacts      = "facts"
)

// DefaultCollection is used when neither the URL nor the configuration
// names a collection.
const DefaultCollection = "boulevard"

// Defaults fill route parameters the URL leaves out.
type Defaults struct {
	Collection string
	Language   string
}

// Route is a parsed page URL.
type Route struct {
	Kind       Kind
	Slug       string
	Preview    bool
	Language   string
	Collection string
	URL        *url.URL
}

// ParseRoute maps u to a route. It reports false for URLs that are not
// site pages.
func ParseRoute(u *url.URL, d Defaults) (Route, bool) {
	r := Route{URL: u}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case u.Path == "/" || u.Path == "":
		r.Kind = KindHome
	case len(parts) == 1 && parts[0] == "blog":
		r.Kind = KindBlog
	case len(parts) == 2 && parts[1] != "":
		r.Slug = parts[1]
		switch parts[0] {
		case "blog":
			r.Kind = KindBlogPost
		case "events":
			r.Kind = KindEvent
		case "research":
			r.Kind = KindResearch
		default:
			return Route{}, false
		}
	default:
		return Route{}, false
	}

	q := u.Query()
	r.Preview = q.Get("preview") == "true"
	r.Language = q.Get("lang")
	if r.Language == "" {
		r.Language = d.Language
	}
	if r.Language == "" {
		r.Language = delivery.DefaultLanguage
	}
	r.Collection = q.Get("collection")
	if r.Collection == "" {
		r.Collection = d.Collection
	}
	if r.Collection == "" {
		r.Collection = DefaultCollection
	}
	return r, true
}

// Slot is one named query of a page.
type Slot struct {
	Name  string
	Query delivery.Query
}

// Slots returns the queries the page needs, primary first. Every page also
// loads the navigation.
func (r Route) Slots() []Slot {
	base := delivery.Query{Language: r.Language, Preview: r.Preview}
	nav := base
	nav.Type = render.TypeLandingPage
	nav.Collections = []string{r.Collection}
	nav.Limit = 1
	nav.Depth = 2

	var slots []Slot
	switch r.Kind {
	case KindHome:
		slots = []Slot{{SlotPage, nav}}
	case KindBlog:
		page := base
		page.Type = render.TypePage
		page.Filters = []delivery.Filter{delivery.Eq("system.codename", "blog")}
		page.Collections = []string{r.Collection}
		page.Limit = 1
		posts := base
		posts.Type = render.TypeBlogPost
		posts.Collections = []string{r.Collection}
		slots = []Slot{{SlotPage, page}, {SlotPosts, posts}}
	case KindBlogPost:
		post := base
		post.Type = render.TypeBlogPost
		post.Filters = []delivery.Filter{delivery.Eq("elements.url_slug", r.Slug)}
		post.Depth = 3
		slots = []Slot{{SlotPost, post}}
	case KindEvent:
		ev := base
		ev.Type = render.TypeEvent
		ev.Filters = []delivery.Filter{delivery.Eq("system.codename", r.Slug)}
		ev.Depth = 3
		slots = []Slot{{SlotEvent, ev}}
	case KindResearch:
		facts := base
		facts.Type = render.TypeFactSectional
		facts.Filters = []delivery.Filter{delivery.Eq("system.codename", r.Slug)}
		facts.Depth = 3
		slots = []Slot{{SlotFacts, facts}}
	}
	return append(slots, Slot{SlotNavigation, nav})
}

// Primary returns the page's primary slot.
func (r Route) Primary() Slot { return r.Slots()[0] }

// Slot returns the named slot.
func (r Route) Slot(name string) (Slot, bool) {
	for _, s := range r.Slots() {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

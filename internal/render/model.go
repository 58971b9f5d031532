package render

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Content type codenames the site renders.
const (
	TypeLandingPage     = "landing_page"
	TypePage            = "page"
	TypeBlogPost        = "blog_post"
	TypeEvent           = "event"
	TypeFactSectional   = "fact_sectional"
	TypePercentageFact  = "percentage_fact"
	DateLayout          = "January 2, 2006"
	eventImageTransform = "auto=format&w=1920"
)

// NavLink is one entry of the navigation menu.
type NavLink struct {
	Name string
	Link string
}

// NavItem is a top level menu entry with its dropdown.
type NavItem struct {
	NavLink
	Subpages []NavLink
}

// NavColumns is the layout of a dropdown.
type NavColumns struct {
	Title string
	First []NavLink
	More  []NavLink
}

// Columns splits the dropdown: the first column holds ceil(n/2) links and
// a "More" column holds the rest once there are more than four. Shorter
// dropdowns are a single column.
func (n NavItem) Columns() NavColumns {
	c := NavColumns{Title: n.Name, First: n.Subpages}
	if len(n.Subpages) > 4 {
		half := (len(n.Subpages) + 1) / 2
		c.First, c.More = n.Subpages[:half], n.Subpages[half:]
	}
	return c
}

// NavMenu builds the menu from a landing page's subpages.
func NavMenu(landing *delivery.Item, preview bool) []NavItem {
	var out []NavItem
	for _, sub := range landing.LinkedItems("subpages") {
		item := NavItem{NavLink: NavLink{
			Name: sub.Text("headline"),
			Link: PreviewLink(sub.Text("url"), preview),
		}}
		for _, ss := range sub.LinkedItems("subpages") {
			item.Subpages = append(item.Subpages, NavLink{
				Name: ss.Text("headline"),
				Link: PreviewLink(ss.Text("url"), preview),
			})
		}
		out = append(out, item)
	}
	return out
}

// PreviewLink keeps preview mode on internal links.
func PreviewLink(link string, preview bool) string {
	if !preview || link == "" {
		return link
	}
	u, err := url.Parse(link)
	if err != nil || u.IsAbs() {
		return link
	}
	q := u.Query()
	q.Set("preview", "true")
	u.RawQuery = q.Encode()
	return u.String()
}

// BlogCard is a blog post as shown in lists and the carousel.
type BlogCard struct {
	ItemID  string
	Title   string
	Summary string
	Image   string
	Link    string
	Tags    []string
}

// FirstTag returns the first blog tag, if any.
func (c BlogCard) FirstTag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	return c.Tags[0]
}

// BlogCards maps blog posts to cards.
func BlogCards(posts []*delivery.Item, preview bool) []BlogCard {
	out := make([]BlogCard, 0, len(posts))
	for _, p := range posts {
		c := BlogCard{
			ItemID:  p.System.ID,
			Title:   p.Text("title"),
			Summary: p.Text("summary"),
			Link:    "#",
			Tags:    optionNames(p.Element("blog_post_tags")),
		}
		if c.Title == "" {
			c.Title = "Untitled"
		}
		if slug := p.Text("url_slug"); slug != "" {
			c.Link = PreviewLink("/blog/"+slug, preview)
		}
		if a, ok := p.FirstAsset("image"); ok {
			c.Image = a.URL
		}
		out = append(out, c)
	}
	return out
}

// GroupRows splits cards into rows of three and two, alternating.
func GroupRows[T any](items []T) [][]T {
	var rows [][]T
	for i, row := 0, 0; i < len(items); row++ {
		size := 3
		if row%2 == 1 {
			size = 2
		}
		end := min(i+size, len(items))
		rows = append(rows, items[i:end])
		i = end
	}
	return rows
}

// Fact is one percentage figure of a fact section.
type Fact struct {
	ItemID string
	Value  string
	Label  string
}

// FactSection is a fact_sectional item ready for display.
type FactSection struct {
	ItemID     string
	Title      string
	Style      string
	Disclaimer string
	Facts      []Fact
}

// Black reports whether the section uses the dark style.
func (f FactSection) Black() bool { return f.Style == "black" }

// NewFactSection maps a fact_sectional item.
func NewFactSection(it *delivery.Item) FactSection {
	fs := FactSection{
		ItemID:     it.System.ID,
		Title:      it.Text("title"),
		Style:      "gold",
		Disclaimer: it.Text("disclaimer"),
	}
	if opts := it.Element("style").Options(); len(opts) > 0 && opts[0].Codename != "" {
		fs.Style = opts[0].Codename
	}
	for _, f := range it.LinkedItems("percentage_facts") {
		fact := Fact{ItemID: f.System.ID, Label: f.Text("label")}
		el := f.Element("percentage_value")
		if n, ok := el.Number(); ok {
			fact.Value = strconv.FormatFloat(n, 'f', -1, 64)
		} else {
			fact.Value = el.Text()
		}
		fs.Facts = append(fs.Facts, fact)
	}
	return fs
}

// EventView is an event item ready for display.
type EventView struct {
	ItemID     string
	Name       string
	Image      string
	ImageAlt   string
	Dates      string
	EventTypes string
}

// NewEventView maps an event item.
func NewEventView(it *delivery.Item) EventView {
	ev := EventView{
		ItemID:     it.System.ID,
		Name:       it.Text("name"),
		ImageAlt:   "Event image",
		EventTypes: strings.Join(optionNames(it.Element("event_type")), " , "),
	}
	if a, ok := it.FirstAsset("image"); ok {
		ev.Image = a.URL + "?" + eventImageTransform
		if a.Description != "" {
			ev.ImageAlt = a.Description
		}
	}
	start, okStart := it.Element("start_date").Time()
	end, okEnd := it.Element("end_date").Time()
	if okStart && okEnd {
		ev.Dates = FormatDate(start) + " - " + FormatDate(end)
	}
	return ev
}

// FormatDate formats a date the way the site prints them.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// PostView is a blog post detail page.
type PostView struct {
	ItemID       string
	Title        string
	BlogTags     string
	IndustryTags string
	Image        string
	ImageAlt     string
}

// NewPostView maps a blog_post item.
func NewPostView(it *delivery.Item) PostView {
	pv := PostView{
		ItemID:       it.System.ID,
		Title:        it.Text("title"),
		BlogTags:     strings.Join(optionNames(it.Element("blog_post_tags")), " • "),
		IndustryTags: strings.Join(optionNames(it.Element("industry_tags")), " • "),
	}
	if a, ok := it.FirstAsset("image"); ok {
		pv.Image = a.URL
		pv.ImageAlt = a.Description
	}
	return pv
}

func optionNames(el delivery.Element) []string {
	var out []string
	for _, o := range el.Options() {
		out = append(out, o.Name)
	}
	return out
}

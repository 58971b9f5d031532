package render

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

func raw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func item(id, codename, typ string, elements map[string]delivery.Element) *delivery.Item {
	return &delivery.Item{
		System:   delivery.System{ID: id, Codename: codename, Type: typ},
		Elements: elements,
	}
}

func text(v string) delivery.Element { return delivery.Element{Type: delivery.TypeText, Value: raw(v)} }

func links(codenames ...string) delivery.Element {
	return delivery.Element{Type: delivery.TypeModularContent, Value: raw(codenames)}
}

func options(names ...string) delivery.Element {
	var opts []delivery.Option
	for _, n := range names {
		opts = append(opts, delivery.Option{Name: n, Codename: n})
	}
	return delivery.Element{Type: delivery.TypeTaxonomy, Value: raw(opts)}
}

func asset(u, desc string) delivery.Element {
	return delivery.Element{Type: delivery.TypeAsset, Value: raw([]delivery.Asset{{URL: u, Description: desc}})}
}

func link(parent *delivery.Item, children ...*delivery.Item) {
	if parent.Linked == nil {
		parent.Linked = map[string]*delivery.Item{}
	}
	for _, c := range children {
		parent.Linked[c.System.Codename] = c
	}
}

func TestGroupRows(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{1}},
		{3, []int{3}},
		{4, []int{3, 1}},
		{5, []int{3, 2}},
		{8, []int{3, 2, 3}},
		{11, []int{3, 2, 3, 2, 1}},
	}
	for _, tt := range tests {
		items := make([]int, tt.n)
		for i := range items {
			items[i] = i
		}
		var sizes []int
		next := 0
		for _, row := range GroupRows(items) {
			sizes = append(sizes, len(row))
			for _, v := range row {
				if v != next {
					t.Fatalf("n=%d: order broken at %d", tt.n, v)
				}
				next++
			}
		}
		if diff := cmp.Diff(tt.want, sizes); diff != "" {
			t.Errorf("n=%d row sizes (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestNavColumns(t *testing.T) {
	mk := func(n int) NavItem {
		item := NavItem{NavLink: NavLink{Name: "Solutions"}}
		for i := 0; i < n; i++ {
			item.Subpages = append(item.Subpages, NavLink{Name: string(rune('a' + i))})
		}
		return item
	}
	tests := []struct {
		n, first, more int
	}{
		{0, 0, 0},
		{2, 2, 0},
		{3, 3, 0},
		{4, 4, 0},
		{5, 3, 2},
		{6, 3, 3},
		{9, 5, 4},
	}
	for _, tt := range tests {
		c := mk(tt.n).Columns()
		if len(c.First) != tt.first || len(c.More) != tt.more {
			t.Errorf("n=%d: columns %d/%d, want %d/%d", tt.n, len(c.First), len(c.More), tt.first, tt.more)
		}
		if c.Title != "Solutions" {
			t.Errorf("title = %q", c.Title)
		}
	}
}

func TestNavMenu(t *testing.T) {
	pricing := item("p", "pricing", "page", map[string]delivery.Element{"headline": text("Pricing"), "url": text("/pricing")})
	spa := item("s", "spa", "page", map[string]delivery.Element{"headline": text("Spa"), "url": text("/solutions/spa")})
	solutions := item("sol", "solutions", "page", map[string]delivery.Element{
		"headline": text("Solutions"), "url": text("/solutions"), "subpages": links("spa"),
	})
	link(solutions, spa)
	landing := item("l", "home", TypeLandingPage, map[string]delivery.Element{"subpages": links("solutions", "pricing")})
	link(landing, solutions, pricing)

	got := NavMenu(landing, true)
	want := []NavItem{
		{NavLink: NavLink{Name: "Solutions", Link: "/solutions?preview=true"}, Subpages: []NavLink{{Name: "Spa", Link: "/solutions/spa?preview=true"}}},
		{NavLink: NavLink{Name: "Pricing", Link: "/pricing?preview=true"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NavMenu (-want +got):\n%s", diff)
	}
	if NavMenu(nil, false) != nil {
		t.Error("nil landing page should give no menu")
	}
}

func TestPreviewLink(t *testing.T) {
	tests := []struct {
		link    string
		preview bool
		want    string
	}{
		{"/blog", false, "/blog"},
		{"/blog", true, "/blog?preview=true"},
		{"/research/x?lang=es-ES", true, "/research/x?lang=es-ES&preview=true"},
		{"https://example.com/a", true, "https://example.com/a"},
		{"", true, ""},
	}
	for _, tt := range tests {
		if got := PreviewLink(tt.link, tt.preview); got != tt.want {
			t.Errorf("PreviewLink(%q, %v) = %q, want %q", tt.link, tt.preview, got, tt.want)
		}
	}
}

func TestBlogCards(t *testing.T) {
	posts := []*delivery.Item{
		item("1", "a", TypeBlogPost, map[string]delivery.Element{
			"title":          text("A"),
			"summary":        text("Sum"),
			"url_slug":       text("a-post"),
			"image":          asset("https://assets/a.jpg", ""),
			"blog_post_tags": options("Research", "News"),
		}),
		item("2", "b", TypeBlogPost, nil),
	}
	got := BlogCards(posts, false)
	want := []BlogCard{
		{ItemID: "1", Title: "A", Summary: "Sum", Image: "https://assets/a.jpg", Link: "/blog/a-post", Tags: []string{"Research", "News"}},
		{ItemID: "2", Title: "Untitled", Link: "#"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BlogCards (-want +got):\n%s", diff)
	}
	if got[0].FirstTag() != "Research" || got[1].FirstTag() != "" {
		t.Error("FirstTag mismatch")
	}
}

func TestNewFactSection(t *testing.T) {
	f1 := item("f1", "f1", TypePercentageFact, map[string]delivery.Element{
		"percentage_value": {Type: delivery.TypeNumber, Value: raw(42.5)},
		"label":            text("Growth"),
	})
	f2 := item("f2", "f2", TypePercentageFact, map[string]delivery.Element{
		"percentage_value": text("90"),
		"label":            text("Retention"),
	})
	sec := item("s", "stats", TypeFactSectional, map[string]delivery.Element{
		"title":            text("Stats"),
		"percentage_facts": links("f1", "f2"),
		"disclaimer":       text("Source: survey"),
	})
	link(sec, f1, f2)

	got := NewFactSection(sec)
	want := FactSection{
		ItemID: "s", Title: "Stats", Style: "gold", Disclaimer: "Source: survey",
		Facts: []Fact{{ItemID: "f1", Value: "42.5", Label: "Growth"}, {ItemID: "f2", Value: "90", Label: "Retention"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewFactSection (-want +got):\n%s", diff)
	}

	sec.Elements["style"] = delivery.Element{Type: delivery.TypeMultipleChoice, Value: raw([]delivery.Option{{Name: "Black", Codename: "black"}})}
	if !NewFactSection(sec).Black() {
		t.Error("expected black style")
	}
}

func TestNewEventView(t *testing.T) {
	ev := item("e", "gala", TypeEvent, map[string]delivery.Element{
		"name":       text("Gala"),
		"image":      asset("https://assets/gala.jpg", "The hall"),
		"start_date": {Type: delivery.TypeDateTime, Value: raw("2025-03-01T19:00:00Z")},
		"end_date":   {Type: delivery.TypeDateTime, Value: raw("2025-03-02T23:00:00Z")},
		"event_type": options("Concert", "Family"),
	})
	got := NewEventView(ev)
	want := EventView{
		ItemID:     "e",
		Name:       "Gala",
		Image:      "https://assets/gala.jpg?auto=format&w=1920",
		ImageAlt:   "The hall",
		Dates:      "March 1, 2025 - March 2, 2025",
		EventTypes: "Concert , Family",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewEventView (-want +got):\n%s", diff)
	}

	bare := NewEventView(item("x", "x", TypeEvent, nil))
	if bare.Dates != "" || bare.Image != "" || bare.ImageAlt != "Event image" {
		t.Errorf("bare event: %+v", bare)
	}
}

func TestNewPostView(t *testing.T) {
	post := item("p", "p", TypeBlogPost, map[string]delivery.Element{
		"title":          text("Hello"),
		"blog_post_tags": options("Research", "Trends"),
		"industry_tags":  options("Salons"),
	})
	got := NewPostView(post)
	if got.BlogTags != "Research • Trends" || got.IndustryTags != "Salons" {
		t.Errorf("tags: %+v", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, time.December, 9, 0, 0, 0, 0, time.UTC)); got != "December 9, 2024" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestNewLangToggle(t *testing.T) {
	u, _ := url.Parse("/research/stats?lang=es-ES&preview=true")
	got := NewLangToggle(u)
	want := &LangToggle{
		English: "/research/stats?preview=true",
		Spanish: "/research/stats?lang=es-ES&preview=true",
		Current: "es-ES",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewLangToggle (-want +got):\n%s", diff)
	}

	u, _ = url.Parse("/research/stats")
	if got := NewLangToggle(u); got.English != "/research/stats" || got.Current != "en-US" {
		t.Errorf("default toggle: %+v", got)
	}
}

package delivery

import (
	"encoding/json"
	"time"
)

// ElementType is the type tag of a content element.
type ElementType string

const (
	TypeText           ElementType = "text"
	TypeRichText       ElementType = "rich_text"
	TypeNumber         ElementType = "number"
	TypeDateTime       ElementType = "date_time"
	TypeAsset          ElementType = "asset"
	TypeModularContent ElementType = "modular_content"
	TypeTaxonomy       ElementType = "taxonomy"
	TypeMultipleChoice ElementType = "multiple_choice"
	TypeURLSlug        ElementType = "url_slug"
	TypeCustom         ElementType = "custom"
)

// System holds the identity and metadata of a content item.
type System struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Codename     string    `json:"codename" yaml:"codename"`
	Language     string    `json:"language" yaml:"language"`
	Type         string    `json:"type" yaml:"type"`
	Collection   string    `json:"collection" yaml:"collection"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	WorkflowStep string    `json:"workflow_step,omitempty" yaml:"workflow_step"`
}

// Element is a single named value on a content item. Value holds the raw
// JSON of the element so unknown element types survive a round trip.
type Element struct {
	Type          ElementType     `json:"type"`
	Name          string          `json:"name"`
	Value         json.RawMessage `json:"value"`
	TaxonomyGroup string          `json:"taxonomy_group,omitempty"`

	// Rich text only.
	ModularContent []string        `json:"modular_content,omitempty"`
	Images         json.RawMessage `json:"images,omitempty"`
	Links          json.RawMessage `json:"links,omitempty"`
}

// Item is a content item together with the linked items it references.
// Linked is keyed by codename and only holds items referenced from one of
// the item's modular_content or rich_text elements.
type Item struct {
	System   System             `json:"system"`
	Elements map[string]Element `json:"elements"`
	Linked   map[string]*Item   `json:"-"`
}

// Asset is one entry of an asset element.
type Asset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// Option is a taxonomy term or multiple choice option.
type Option struct {
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// Pagination mirrors the pagination block of a listing response.
type Pagination struct {
	Skip       int    `json:"skip"`
	Limit      int    `json:"limit"`
	Count      int    `json:"count"`
	NextPage   string `json:"next_page"`
	TotalCount int    `json:"total_count,omitempty"`
}

// ListingResponse is the wire format of GET /items.
type ListingResponse struct {
	Items          []*Item          `json:"items"`
	ModularContent map[string]*Item `json:"modular_content"`
	Pagination     Pagination       `json:"pagination"`
}

// Text returns the string value of a text, rich_text, url_slug, date_time or
// custom element. It returns "" for a missing element or a null value.
func (e Element) Text() string {
	var s string
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return ""
	}
	return s
}

// Number returns the value of a number element.
func (e Element) Number() (float64, bool) {
	var f *float64
	if err := json.Unmarshal(e.Value, &f); err != nil || f == nil {
		return 0, false
	}
	return *f, true
}

// Time returns the value of a date_time element.
func (e Element) Time() (time.Time, bool) {
	s := e.Text()
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Assets returns the value of an asset element.
func (e Element) Assets() []Asset {
	var a []Asset
	_ = json.Unmarshal(e.Value, &a)
	return a
}

// Options returns the value of a taxonomy or multiple_choice element.
func (e Element) Options() []Option {
	var o []Option
	_ = json.Unmarshal(e.Value, &o)
	return o
}

// Codenames returns the codenames an element links to: the value of a
// modular_content element, or the embedded components of a rich_text element.
func (e Element) Codenames() []string {
	switch e.Type {
	case TypeModularContent:
		var c []string
		_ = json.Unmarshal(e.Value, &c)
		return c
	case TypeRichText:
		return e.ModularContent
	}
	return nil
}

// Element returns the named element, or a zero Element when absent.
func (it *Item) Element(name string) Element {
	if it == nil {
		return Element{}
	}
	return it.Elements[name]
}

// Text is shorthand for it.Element(name).Text().
func (it *Item) Text(name string) string {
	return it.Element(name).Text()
}

// FirstAsset returns the first asset of an asset element.
func (it *Item) FirstAsset(name string) (Asset, bool) {
	a := it.Element(name).Assets()
	if len(a) == 0 {
		return Asset{}, false
	}
	return a[0], true
}

// LinkedItems returns the hydrated items referenced by the named element,
// in element order. Codenames that are not hydrated are skipped.
func (it *Item) LinkedItems(name string) []*Item {
	if it == nil {
		return nil
	}
	var out []*Item
	for _, c := range it.Element(name).Codenames() {
		if li, ok := it.Linked[c]; ok && li != nil {
			out = append(out, li)
		}
	}
	return out
}

// References returns every codename referenced by the item's elements,
// deduplicated, in a stable order.
func (it *Item) References() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range sortedKeys(it.Elements) {
		for _, c := range it.Elements[name].Codenames() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

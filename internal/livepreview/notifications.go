// Package livepreview keeps rendered content in step with edits made in the
// CMS editing surface.
//
// Two notification kinds arrive from the editor: an UpdateNotification
// carries the new values of one item's elements, a RefreshNotification asks
// the page to reload. The Applier merges updates into a held item graph;
// the Coordinator decides how a refresh is carried out.
package livepreview

import (
	"encoding/json"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Ref identifies an item, element or language variant by id and codename.
type Ref struct {
	ID       string `json:"id,omitempty"`
	Codename string `json:"codename"`
}

// ElementUpdate is the new value of one element. Data has the shape of the
// element's value, except for rich_text where it is a RichTextData.
type ElementUpdate struct {
	Element Ref                  `json:"element"`
	Type    delivery.ElementType `json:"type"`
	Data    json.RawMessage      `json:"data"`
}

// RichTextData is the update payload of a rich_text element.
type RichTextData struct {
	Value               string          `json:"value"`
	LinkedItemCodenames []string        `json:"linkedItemCodenames"`
	Images              json.RawMessage `json:"images,omitempty"`
	Links               json.RawMessage `json:"links,omitempty"`
}

// UpdateNotification describes edits to a single item.
type UpdateNotification struct {
	EnvironmentID string          `json:"projectId,omitempty"`
	Variant       Ref             `json:"variant"`
	Item          Ref             `json:"item"`
	Elements      []ElementUpdate `json:"elements"`
}

// RefreshNotification asks the page to show fresh content. Manual is set
// when the editor pressed refresh and a full reload is expected.
type RefreshNotification struct {
	Manual bool `json:"manualRefresh"`
}

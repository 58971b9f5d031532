package livepreview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Applier merges UpdateNotifications into item graphs.
type Applier struct {
	client delivery.Querier
	base   delivery.Query
	logger *zap.Logger
}

// NewApplier creates an Applier that resolves missing linked items through
// client, using the mode and language of base.
func NewApplier(client delivery.Querier, base delivery.Query, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{client: client, base: base, logger: logger}
}

// Apply returns current with n merged in. The returned graph is complete:
// every linked codename referenced by the changed elements is resolved. On
// any error current itself is returned, untouched. A notification that
// changes nothing returns current as well.
func (a *Applier) Apply(ctx context.Context, current *delivery.Item, n UpdateNotification) (*delivery.Item, error) {
	if current == nil {
		return nil, ErrNotLoaded
	}
	out, err := a.ApplyAll(ctx, []*delivery.Item{current}, n)
	return out[0], err
}

// ApplyAll merges n into every root that contains the updated item. Linked
// items missing from all of the roots are fetched in a single request. The
// update is all or nothing: on any error roots is returned unchanged.
// Untouched roots keep their pointers in the returned slice.
func (a *Applier) ApplyAll(ctx context.Context, roots []*delivery.Item, n UpdateNotification) ([]*delivery.Item, error) {
	if !slices.ContainsFunc(roots, func(it *delivery.Item) bool { return it != nil }) {
		return roots, ErrNotLoaded
	}
	if n.Item.Codename == "" {
		return roots, fmt.Errorf("%w: item without codename", ErrMalformedNotification)
	}

	type patched struct {
		index int
		*patchedRoot
	}
	var work []patched
	matched := false
	for i, root := range roots {
		if root == nil || !delivery.Contains(root, n.Item.Codename) {
			continue
		}
		matched = true
		p, err := patchRoot(root, n)
		if err != nil {
			return roots, err
		}
		if p != nil {
			work = append(work, patched{index: i, patchedRoot: p})
		}
	}
	if !matched {
		return roots, fmt.Errorf("%w: item %q", ErrMalformedNotification, n.Item.Codename)
	}
	if len(work) == 0 {
		return roots, nil
	}

	// Patched copies come first so the updated item wins over stale
	// versions still held by untouched roots.
	pool := make(map[string]*delivery.Item)
	own := make([]map[string]*delivery.Item, len(work))
	for i, w := range work {
		own[i] = delivery.Codenames(w.root)
		mergeMissing(pool, own[i])
	}
	for _, root := range roots {
		if root != nil {
			mergeMissing(pool, delivery.Codenames(root))
		}
	}

	var missing []string
	for _, w := range work {
		for _, t := range w.targets {
			for _, c := range t.References() {
				if _, ok := pool[c]; !ok && !slices.Contains(missing, c) {
					missing = append(missing, c)
				}
			}
		}
	}
	sort.Strings(missing)

	if len(missing) > 0 {
		a.logger.Debug("fetching linked items for update",
			zap.String("item", n.Item.Codename), zap.Strings("codenames", missing))
		fetched, err := a.client.FetchByCodenames(ctx, a.base, missing)
		if err != nil {
			return roots, &PatchResolutionError{Codenames: missing, Err: err}
		}
		for _, f := range fetched {
			delivery.Walk(f, func(it *delivery.Item) bool {
				if _, ok := pool[it.System.Codename]; !ok {
					pool[it.System.Codename] = it
				}
				return true
			})
		}
		var unresolved []string
		for _, c := range missing {
			if _, ok := pool[c]; !ok {
				unresolved = append(unresolved, c)
			}
		}
		if len(unresolved) > 0 {
			return roots, &PatchResolutionError{Codenames: unresolved}
		}
	}

	out := slices.Clone(roots)
	for i, w := range work {
		for _, t := range w.targets {
			refs := t.References()
			linked := make(map[string]*delivery.Item, len(refs))
			for _, c := range refs {
				if it, ok := own[i][c]; ok {
					linked[c] = it
				} else {
					linked[c] = pool[c]
				}
			}
			if len(linked) == 0 {
				linked = nil
			}
			t.Linked = linked
		}
		out[w.index] = w.root
	}
	return out, nil
}

type patchedRoot struct {
	root    *delivery.Item
	targets []*delivery.Item
}

// patchRoot applies n to a copy of root. It returns nil when nothing
// changed.
func patchRoot(root *delivery.Item, n UpdateNotification) (*patchedRoot, error) {
	next := delivery.Clone(root)
	var targets []*delivery.Item
	delivery.Walk(next, func(it *delivery.Item) bool {
		if it.System.Codename == n.Item.Codename {
			targets = append(targets, it)
		}
		return true
	})

	if lang := n.Variant.Codename; lang != "" {
		for _, t := range targets {
			if t.System.Language != "" && t.System.Language != lang {
				return nil, fmt.Errorf("%w: variant %q, loaded %q", ErrMalformedNotification, lang, t.System.Language)
			}
		}
	}

	changed := false
	for _, t := range targets {
		for _, u := range n.Elements {
			c, err := applyElement(t, u)
			if err != nil {
				return nil, err
			}
			changed = changed || c
		}
	}
	if !changed {
		return nil, nil
	}
	return &patchedRoot{root: next, targets: targets}, nil
}

func mergeMissing(dst, src map[string]*delivery.Item) {
	for c, it := range src {
		if _, ok := dst[c]; !ok {
			dst[c] = it
		}
	}
}

// applyElement writes u into it and reports whether the element changed.
func applyElement(it *delivery.Item, u ElementUpdate) (bool, error) {
	name := u.Element.Codename
	if name == "" {
		return false, fmt.Errorf("%w: element without codename", ErrMalformedNotification)
	}

	cur, exists := it.Elements[name]
	next := cur
	if !exists {
		next = delivery.Element{Name: name}
	}
	if u.Type != "" {
		next.Type = u.Type
	}

	if next.Type == delivery.TypeRichText {
		var rt RichTextData
		if err := json.Unmarshal(u.Data, &rt); err != nil {
			return false, fmt.Errorf("%w: rich text %q: %v", ErrMalformedNotification, name, err)
		}
		next.Value = encodeString(rt.Value)
		next.ModularContent = rt.LinkedItemCodenames
		next.Images = rt.Images
		next.Links = rt.Links
	} else {
		var buf bytes.Buffer
		if err := json.Compact(&buf, u.Data); err != nil {
			return false, fmt.Errorf("%w: element %q: %v", ErrMalformedNotification, name, err)
		}
		next.Value = buf.Bytes()
	}

	if exists && sameElement(cur, next) {
		return false, nil
	}
	if it.Elements == nil {
		it.Elements = make(map[string]delivery.Element)
	}
	it.Elements[name] = next
	return true, nil
}

func sameElement(a, b delivery.Element) bool {
	return a.Type == b.Type &&
		sameJSON(a.Value, b.Value) &&
		slices.Equal(a.ModularContent, b.ModularContent) &&
		sameJSON(a.Images, b.Images) &&
		sameJSON(a.Links, b.Links)
}

// encodeString encodes v as a JSON string without escaping HTML, the way
// the Delivery API sends rich text.
func encodeString(v string) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// sameJSON compares decoded values, so escaping and whitespace do not
// count as changes. Absent, null and empty containers are all equal.
func sameJSON(a, b json.RawMessage) bool {
	va, erra := decodeJSON(a)
	vb, errb := decodeJSON(b)
	if erra != nil || errb != nil {
		return bytes.Equal(a, b)
	}
	return reflect.DeepEqual(va, vb)
}

func decodeJSON(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return nil, nil
		}
	case map[string]any:
		if len(x) == 0 {
			return nil, nil
		}
	}
	return v, nil
}

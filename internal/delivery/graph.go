package delivery

import "sort"

// Hydrate resolves the Linked maps of items and of every item in modular
// from the listing's modular_content map. Items shared between several
// parents stay shared; reference cycles are allowed.
func Hydrate(items []*Item, modular map[string]*Item) {
	link := func(it *Item) {
		if it == nil {
			return
		}
		for _, c := range it.References() {
			li, ok := modular[c]
			if !ok || li == nil {
				continue
			}
			if it.Linked == nil {
				it.Linked = make(map[string]*Item)
			}
			it.Linked[c] = li
		}
	}
	for _, it := range modular {
		link(it)
	}
	for _, it := range items {
		link(it)
	}
}

// Walk visits every item reachable from root exactly once, depth first.
// Returning false from fn stops the walk.
func Walk(root *Item, fn func(*Item) bool) {
	seen := make(map[*Item]bool)
	var visit func(*Item) bool
	visit = func(it *Item) bool {
		if it == nil || seen[it] {
			return true
		}
		seen[it] = true
		if !fn(it) {
			return false
		}
		for _, c := range sortedKeys(it.Linked) {
			if !visit(it.Linked[c]) {
				return false
			}
		}
		return true
	}
	visit(root)
}

// Codenames returns the set of codenames present in the graph rooted at root.
func Codenames(root *Item) map[string]*Item {
	out := make(map[string]*Item)
	Walk(root, func(it *Item) bool {
		if _, ok := out[it.System.Codename]; !ok {
			out[it.System.Codename] = it
		}
		return true
	})
	return out
}

// Contains reports whether an item with the given codename is reachable
// from root.
func Contains(root *Item, codename string) bool {
	found := false
	Walk(root, func(it *Item) bool {
		if it.System.Codename == codename {
			found = true
			return false
		}
		return true
	})
	return found
}

// Clone deep-copies the graph rooted at root. Sharing and cycles in the
// source graph are preserved in the copy.
func Clone(root *Item) *Item {
	return cloneWith(root, make(map[*Item]*Item))
}

func cloneWith(it *Item, memo map[*Item]*Item) *Item {
	if it == nil {
		return nil
	}
	if c, ok := memo[it]; ok {
		return c
	}
	c := &Item{System: it.System}
	memo[it] = c
	if it.Elements != nil {
		c.Elements = make(map[string]Element, len(it.Elements))
		for k, v := range it.Elements {
			c.Elements[k] = v
		}
	}
	if it.Linked != nil {
		c.Linked = make(map[string]*Item, len(it.Linked))
		for k, v := range it.Linked {
			c.Linked[k] = cloneWith(v, memo)
		}
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package filesource serves content items from a directory of YAML and
// Markdown files. It answers the same queries as the Delivery API client so
// the site can be developed and tested offline.
//
// A YAML file holds one item:
//
//	system:
//	  codename: hello_world
//	  type: blog_post
//	  collection: boulevard
//	elements:
//	  title: {type: text, value: Hello}
//	  related: {type: modular_content, value: [other_post]}
//
// A Markdown file holds the same document as front matter between "---"
// lines; its body becomes the "body" rich_text element.
package filesource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Pattern matches the files a Source loads, relative to its directory.
const Pattern = "**/*.{yaml,yml,md}"

// Source is a delivery.Querier over a content directory. It is safe for
// concurrent use.
type Source struct {
	dir    string
	md     goldmark.Markdown
	logger *zap.Logger

	mu    sync.RWMutex
	items []*delivery.Item
}

// New loads every item under dir.
func New(dir string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{dir: dir, md: newMarkdown(), logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the content directory.
func (s *Source) Dir() string { return s.dir }

// Len returns the number of loaded item variants.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reload re-reads the content directory. On error the previous items are
// kept.
func (s *Source) Reload() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("filesource: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("filesource: %s is not a directory", s.dir)
	}

	paths, err := doublestar.Glob(os.DirFS(s.dir), Pattern)
	if err != nil {
		return fmt.Errorf("filesource: globbing %s: %w", s.dir, err)
	}
	sort.Strings(paths)

	items := make([]*delivery.Item, 0, len(paths))
	seen := make(map[string]string)
	for _, rel := range paths {
		it, err := s.loadFile(rel)
		if err != nil {
			return fmt.Errorf("filesource: %s: %w", rel, err)
		}
		key := it.System.Codename + "@" + it.System.Language
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("filesource: %s: codename %q in language %q already defined in %s",
				rel, it.System.Codename, it.System.Language, prev)
		}
		seen[key] = rel
		items = append(items, it)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.logger.Debug("content loaded", zap.String("dir", s.dir), zap.Int("items", len(items)))
	return nil
}

// fileItem is the on-disk form of an item.
type fileItem struct {
	System   delivery.System        `yaml:"system"`
	Elements map[string]fileElement `yaml:"elements"`
}

type fileElement struct {
	Type           delivery.ElementType `yaml:"type"`
	Name           string               `yaml:"name"`
	Value          any                  `yaml:"value"`
	TaxonomyGroup  string               `yaml:"taxonomy_group"`
	ModularContent []string             `yaml:"modular_content"`
}

func (s *Source) loadFile(rel string) (*delivery.Item, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	var body []byte
	isMarkdown := strings.HasSuffix(rel, ".md")
	if isMarkdown {
		data, body, err = splitFrontMatter(data)
		if err != nil {
			return nil, err
		}
	}

	var fi fileItem
	if err := yaml.Unmarshal(data, &fi); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if fi.System.Codename == "" {
		fi.System.Codename = codenameFromPath(rel)
	}
	if fi.System.Language == "" {
		fi.System.Language = delivery.DefaultLanguage
	}
	if fi.System.ID == "" {
		fi.System.ID = fi.System.Codename
	}
	if fi.System.Name == "" {
		fi.System.Name = fi.System.Codename
	}
	if fi.System.Type == "" {
		return nil, fmt.Errorf("item %q has no system.type", fi.System.Codename)
	}

	it := &delivery.Item{System: fi.System, Elements: make(map[string]delivery.Element, len(fi.Elements)+1)}
	for name, fe := range fi.Elements {
		el, err := fe.element(name)
		if err != nil {
			return nil, err
		}
		it.Elements[name] = el
	}

	if isMarkdown && len(strings.TrimSpace(string(body))) > 0 {
		el, err := s.richText(body, fi.Elements["body"])
		if err != nil {
			return nil, err
		}
		it.Elements["body"] = el
	}
	return it, nil
}

func (fe fileElement) element(name string) (delivery.Element, error) {
	if fe.Type == "" {
		return delivery.Element{}, fmt.Errorf("element %q has no type", name)
	}
	value, err := json.Marshal(fe.Value)
	if err != nil {
		return delivery.Element{}, fmt.Errorf("element %q: %w", name, err)
	}
	if fe.Name == "" {
		fe.Name = name
	}
	return delivery.Element{
		Type:           fe.Type,
		Name:           fe.Name,
		Value:          value,
		TaxonomyGroup:  fe.TaxonomyGroup,
		ModularContent: fe.ModularContent,
	}, nil
}

// codenameFromPath derives a codename from a file name: "blog/Hello-World.md"
// becomes "hello_world".
func codenameFromPath(rel string) string {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	base = strings.ToLower(base)
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(base)
}

// Query implements delivery.Querier. Zero matching items is an empty slice.
func (s *Source) Query(ctx context.Context, q delivery.Query) ([]*delivery.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, &delivery.TransportError{Err: err}
	}

	s.mu.RLock()
	pool := variants(s.items, q.Language, q.Preview)
	s.mu.RUnlock()

	var matched []*delivery.Item
	for _, it := range pool {
		ok, err := matches(it, q)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, it)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].System, matched[j].System
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.After(b.LastModified)
		}
		return a.Codename < b.Codename
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	byCodename := make(map[string]*delivery.Item, len(pool))
	for _, it := range pool {
		byCodename[it.System.Codename] = it
	}
	items, modular := hydrate(matched, byCodename, q.Depth)
	delivery.Hydrate(items, modular)
	return items, nil
}

// FetchByCodenames implements delivery.Querier.
func (s *Source) FetchByCodenames(ctx context.Context, base delivery.Query, codenames []string) ([]*delivery.Item, error) {
	if len(codenames) == 0 {
		return nil, nil
	}
	return s.Query(ctx, base.ByCodenames(codenames))
}

// variants picks one variant per codename: the one in lang, falling back to
// the default language. Outside preview only published items are visible.
func variants(all []*delivery.Item, lang string, preview bool) []*delivery.Item {
	if lang == "" {
		lang = delivery.DefaultLanguage
	}
	chosen := make(map[string]*delivery.Item)
	var order []string
	for _, it := range all {
		if !preview && !published(it) {
			continue
		}
		l := it.System.Language
		if l != lang && l != delivery.DefaultLanguage {
			continue
		}
		prev, ok := chosen[it.System.Codename]
		if !ok {
			order = append(order, it.System.Codename)
			chosen[it.System.Codename] = it
			continue
		}
		if prev.System.Language != lang && l == lang {
			chosen[it.System.Codename] = it
		}
	}
	out := make([]*delivery.Item, 0, len(order))
	for _, c := range order {
		out = append(out, chosen[c])
	}
	return out
}

func published(it *delivery.Item) bool {
	step := it.System.WorkflowStep
	return step == "" || step == "published"
}

// hydrate copies the matched items and every item reachable from them within
// depth levels, so callers may link and mutate them freely.
func hydrate(matched []*delivery.Item, pool map[string]*delivery.Item, depth int) ([]*delivery.Item, map[string]*delivery.Item) {
	if depth <= 0 {
		depth = 1
	}
	items := make([]*delivery.Item, len(matched))
	for i, it := range matched {
		items[i] = shallowCopy(it)
	}

	modular := make(map[string]*delivery.Item)
	frontier := items
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []*delivery.Item
		for _, it := range frontier {
			for _, c := range it.References() {
				if _, done := modular[c]; done {
					continue
				}
				src, ok := pool[c]
				if !ok {
					continue
				}
				cp := shallowCopy(src)
				modular[c] = cp
				next = append(next, cp)
			}
		}
		frontier = next
	}
	return items, modular
}

func shallowCopy(it *delivery.Item) *delivery.Item {
	cp := &delivery.Item{System: it.System, Elements: make(map[string]delivery.Element, len(it.Elements))}
	for k, v := range it.Elements {
		cp.Elements[k] = v
	}
	return cp
}

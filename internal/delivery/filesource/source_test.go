package filesource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "blog/first.md", `---
system:
  codename: first_post
  type: blog_post
  collection: boulevard
  last_modified: 2024-03-01T00:00:00Z
elements:
  title: {type: text, value: First post}
  url_slug: {type: url_slug, value: first-post}
  blog_post_tags:
    type: taxonomy
    value:
      - {name: Research, codename: research}
  related: {type: modular_content, value: [second_post]}
---
# Hello

Some **bold** text.

<object type="application/kenticocloud" data-type="item" data-rel="component" data-codename="stats"></object>
`)
	writeFile(t, dir, "blog/second.yaml", `
system:
  codename: second_post
  type: blog_post
  collection: boulevard
  last_modified: 2024-02-01T00:00:00Z
elements:
  title: {type: text, value: Second post}
  url_slug: {type: url_slug, value: second-post}
  related: {type: modular_content, value: [third_post]}
`)
	writeFile(t, dir, "blog/second.es.yaml", `
system:
  codename: second_post
  type: blog_post
  language: es-ES
  collection: boulevard
  last_modified: 2024-02-01T00:00:00Z
elements:
  title: {type: text, value: Segundo}
  url_slug: {type: url_slug, value: segundo}
`)
	writeFile(t, dir, "blog/third.yaml", `
system:
  codename: third_post
  type: blog_post
  collection: other
  workflow_step: draft
elements:
  title: {type: text, value: Draft}
`)
	writeFile(t, dir, "sections/stats.yml", `
system:
  codename: stats
  type: fact_sectional
elements:
  title: {type: text, value: Stats}
  style: {type: multiple_choice, value: [{name: Black, codename: black}]}
`)
	writeFile(t, dir, "README.txt", "ignored")
	return dir
}

func codenames(items []*delivery.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.System.Codename)
	}
	return out
}

func TestQuery(t *testing.T) {
	src, err := New(sampleDir(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if src.Len() != 5 {
		t.Fatalf("Len = %d, want 5", src.Len())
	}

	tests := []struct {
		name string
		q    delivery.Query
		want []string
	}{
		{"by type newest first", delivery.Query{Type: "blog_post"}, []string{"first_post", "second_post"}},
		{"preview sees drafts", delivery.Query{Type: "blog_post", Preview: true}, []string{"first_post", "second_post", "third_post"}},
		{"collection", delivery.Query{Type: "blog_post", Collections: []string{"other"}, Preview: true}, []string{"third_post"}},
		{"slug eq", delivery.Query{Type: "blog_post", Filters: []delivery.Filter{delivery.Eq("elements.url_slug", "second-post")}}, []string{"second_post"}},
		{"codename in", delivery.Query{Filters: []delivery.Filter{delivery.In("system.codename", "stats", "first_post")}}, []string{"first_post", "stats"}},
		{"taxonomy contains", delivery.Query{Filters: []delivery.Filter{delivery.Has("elements.blog_post_tags", "research")}}, []string{"first_post"}},
		{"limit", delivery.Query{Type: "blog_post", Limit: 1}, []string{"first_post"}},
		{"missing slug", delivery.Query{Type: "blog_post", Filters: []delivery.Filter{delivery.Eq("elements.url_slug", "does-not-exist")}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := src.Query(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if diff := cmp.Diff(tt.want, codenames(items)); diff != "" {
				t.Errorf("codenames (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryLanguageFallback(t *testing.T) {
	src, err := New(sampleDir(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	items, err := src.Query(context.Background(), delivery.Query{Type: "blog_post", Language: "es-ES"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	titles := map[string]string{}
	for _, it := range items {
		titles[it.System.Codename] = it.Text("title")
	}
	want := map[string]string{"first_post": "First post", "second_post": "Segundo"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles (-want +got):\n%s", diff)
	}
}

func TestQueryDepth(t *testing.T) {
	src, err := New(sampleDir(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := delivery.Query{Filters: []delivery.Filter{delivery.Eq("system.codename", "first_post")}, Preview: true}

	items, err := src.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	second := items[0].LinkedItems("related")
	if len(second) != 1 || second[0].Text("title") != "Second post" {
		t.Fatalf("related not hydrated: %+v", second)
	}
	if len(second[0].LinkedItems("related")) != 0 {
		t.Error("depth 1 should not hydrate the second level")
	}

	q.Depth = 2
	items, err = src.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	third := items[0].LinkedItems("related")[0].LinkedItems("related")
	if len(third) != 1 || third[0].System.Codename != "third_post" {
		t.Errorf("depth 2 did not hydrate: %+v", third)
	}
}

func TestMarkdownBody(t *testing.T) {
	src, err := New(sampleDir(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	items, err := src.FetchByCodenames(context.Background(), delivery.Query{}, []string{"first_post"})
	if err != nil {
		t.Fatalf("FetchByCodenames: %v", err)
	}
	body := items[0].Element("body")
	if body.Type != delivery.TypeRichText {
		t.Fatalf("body type = %q", body.Type)
	}
	html := body.Text()
	for _, want := range []string{`<h1 id="hello">Hello</h1>`, "<strong>bold</strong>", `data-codename="stats"`} {
		if !strings.Contains(html, want) {
			t.Errorf("body missing %q:\n%s", want, html)
		}
	}
	if diff := cmp.Diff([]string{"stats"}, body.ModularContent); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}
	if got := items[0].LinkedItems("body"); len(got) != 1 || got[0].Text("title") != "Stats" {
		t.Errorf("component not hydrated: %+v", got)
	}
}

func TestQueriesReturnIndependentCopies(t *testing.T) {
	src, err := New(sampleDir(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := delivery.Query{Filters: []delivery.Filter{delivery.Eq("system.codename", "second_post")}}
	a, _ := src.Query(context.Background(), q)
	a[0].Elements["title"] = delivery.Element{Type: delivery.TypeText, Value: []byte(`"changed"`)}

	b, _ := src.Query(context.Background(), q)
	if b[0].Text("title") != "Second post" {
		t.Error("mutating a result leaked into the source")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing dir")
	}

	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "system: {codename: x}\n")
	if _, err := New(dir, nil); err == nil {
		t.Error("expected error for item without type")
	}

	dir = t.TempDir()
	writeFile(t, dir, "a.yaml", "system: {codename: x, type: page}\n")
	writeFile(t, dir, "b.yaml", "system: {codename: x, type: page}\n")
	if _, err := New(dir, nil); err == nil {
		t.Error("expected error for duplicate codename")
	}

	dir = t.TempDir()
	writeFile(t, dir, "a.md", "no front matter\n")
	if _, err := New(dir, nil); err == nil {
		t.Error("expected error for markdown without front matter")
	}
}

func TestCodenameFromPath(t *testing.T) {
	tests := map[string]string{
		"blog/Hello-World.md": "hello_world",
		"a.b.yaml":            "a_b",
		"plain.yml":           "plain",
	}
	for in, want := range tests {
		if got := codenameFromPath(in); got != want {
			t.Errorf("codenameFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := sampleDir(t)
	src, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 8)
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, 20*time.Millisecond, func() {
			calls.Add(1)
			changed <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "blog/fourth.yaml", "system: {codename: fourth_post, type: blog_post}\n")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
	if src.Len() != 6 {
		t.Errorf("Len after reload = %d, want 6", src.Len())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
}

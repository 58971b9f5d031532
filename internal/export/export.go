// Package export renders every routable page of the site into a directory
// of static HTML files.
package export

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/pages"
	"github.com/ziadkadry99/boulevard/internal/progress"
	"github.com/ziadkadry99/boulevard/internal/render"
)

// Exporter renders pages through the site handler and writes them to disk.
type Exporter struct {
	Client   delivery.Querier
	Handler  http.Handler // serves the page routes
	Defaults pages.Defaults
	Reporter progress.Reporter // optional
	Logger   *zap.Logger       // optional
}

// Page is the outcome of exporting one path.
type Page struct {
	Path   string `json:"path"`
	File   string `json:"file"`
	Status int    `json:"status"`
}

// Summary describes a finished export.
type Summary struct {
	Pages  []Page `json:"pages"`
	Failed int    `json:"failed"`
}

// Paths lists the pages to export: the home and blog pages, then one page
// per blog post, event and research item in the default collection.
func (e *Exporter) Paths(ctx context.Context) ([]string, error) {
	paths := []string{"/", "/blog"}

	lang := e.Defaults.Language
	if lang == "" {
		lang = delivery.DefaultLanguage
	}
	collection := e.Defaults.Collection
	if collection == "" {
		collection = pages.DefaultCollection
	}

	sources := []struct {
		typ    string
		prefix string
		slug   func(*delivery.Item) string
	}{
		{render.TypeBlogPost, "/blog/", func(it *delivery.Item) string { return it.Text("url_slug") }},
		{render.TypeEvent, "/events/", func(it *delivery.Item) string { return it.System.Codename }},
		{render.TypeFactSectional, "/research/", func(it *delivery.Item) string { return it.System.Codename }},
	}
	for _, src := range sources {
		q := delivery.Query{Type: src.typ, Language: lang, Depth: 0}
		if src.typ == render.TypeBlogPost {
			q.Collections = []string{collection}
		}
		items, err := e.Client.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("listing %s items: %w", src.typ, err)
		}
		for _, it := range items {
			if slug := src.slug(it); slug != "" {
				paths = append(paths, src.prefix+slug)
			}
		}
	}
	return paths, nil
}

// Run exports every page returned by Paths, plus the static assets, into dir.
// Pages that render with a non-200 status are still written and counted as
// failed.
func (e *Exporter) Run(ctx context.Context, dir string) (Summary, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := e.Paths(ctx)
	if err != nil {
		return Summary{}, err
	}

	if e.Reporter != nil {
		e.Reporter.Start(len(paths))
	}

	var summary Summary
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		page, err := e.writePage(ctx, dir, p)
		if err != nil {
			return summary, err
		}
		if page.Status != http.StatusOK {
			summary.Failed++
			logger.Warn("exported page with error status",
				zap.String("path", p), zap.Int("status", page.Status))
		}
		summary.Pages = append(summary.Pages, page)
		if e.Reporter != nil {
			e.Reporter.Page(i+1, p, page.Status)
		}
	}

	if err := writeStatic(filepath.Join(dir, "static")); err != nil {
		return summary, err
	}

	if e.Reporter != nil {
		e.Reporter.Finish()
	}
	return summary, nil
}

func (e *Exporter) writePage(ctx context.Context, dir, urlPath string) (Page, error) {
	req := httptest.NewRequest(http.MethodGet, urlPath, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.Handler.ServeHTTP(rec, req)

	file := FileFor(urlPath)
	dest := filepath.Join(dir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Page{}, fmt.Errorf("creating directory for %s: %w", urlPath, err)
	}
	if err := os.WriteFile(dest, rec.Body.Bytes(), 0644); err != nil {
		return Page{}, fmt.Errorf("writing %s: %w", dest, err)
	}
	return Page{Path: urlPath, File: file, Status: rec.Code}, nil
}

// FileFor maps a URL path to the file that serves it, e.g. "/blog" to
// "blog/index.html".
func FileFor(urlPath string) string {
	clean := strings.Trim(path.Clean("/"+urlPath), "/")
	if clean == "" {
		return "index.html"
	}
	return clean + "/index.html"
}

func writeStatic(dir string) error {
	assets := render.Static()
	return fs.WalkDir(assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		data, err := fs.ReadFile(assets, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("writing asset %s: %w", p, err)
		}
		return nil
	})
}

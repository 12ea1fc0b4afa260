// Package viewer renders uploaded PDFs page by page for the terminal and
// inspects files at ingest.
package viewer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// Resolver turns a content reference into a local path.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// Page is the rendered text of one page. Total is 0 for documents without
// readable pages.
type Page struct {
	Number int
	Total  int
	Text   string
}

var extraneousWhitespace = regexp.MustCompile(`[ \t]+`)

type extracted struct {
	pages []string
}

// Viewer extracts and caches page text per resolved file.
type Viewer struct {
	refs Resolver
	log  *logrus.Entry

	mu    sync.Mutex
	cache map[string]*extracted
}

func New(refs Resolver, logger *logrus.Logger) *Viewer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Viewer{
		refs:  refs,
		log:   logger.WithField("component", "viewer"),
		cache: map[string]*extracted{},
	}
}

// Render returns the text of page for the document behind ref. Out of range
// pages are clamped; the returned Page.Number is the page actually shown.
// A dangling reference is reported as an error from the resolver.
func (v *Viewer) Render(ctx context.Context, ref string, page int) (Page, error) {
	path, err := v.refs.Resolve(ref)
	if err != nil {
		return Page{}, err
	}
	doc, err := v.load(ctx, path)
	if err != nil {
		return Page{}, err
	}
	total := len(doc.pages)
	if total == 0 {
		return Page{Number: 1}, nil
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	return Page{Number: page, Total: total, Text: doc.pages[page-1]}, nil
}

func (v *Viewer) load(ctx context.Context, path string) (*extracted, error) {
	v.mu.Lock()
	if doc, ok := v.cache[path]; ok {
		v.mu.Unlock()
		return doc, nil
	}
	v.mu.Unlock()

	doc, err := extractPages(ctx, path)
	if err != nil {
		return nil, err
	}
	v.log.WithFields(logrus.Fields{"path": path, "pages": len(doc.pages)}).Debug("extracted pdf text")

	v.mu.Lock()
	v.cache[path] = doc
	v.mu.Unlock()
	return doc, nil
}

func extractPages(ctx context.Context, path string) (*extracted, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]string, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A page with an unsupported font still counts; it just renders blank.
			continue
		}
		pages[i-1] = normalizeText(text)
	}
	return &extracted{pages: pages}, nil
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(extraneousWhitespace.ReplaceAllString(line, " "))
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Package render renders the guestbook's HTML pages.
//
// Templates come from the embedded set or from a directory on disk. With
// reload enabled, a directory is re-parsed after its files change; a failed
// parse keeps serving the previous set.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/listenupapp/guestbook/internal/watcher"
)

//go:embed templates/*.html
var embedded embed.FS

// Page names.
const (
	PageIndex  = "index"
	PageShow   = "show"
	PageSearch = "search"
)

// Pages lists every page a template set must define.
var Pages = []string{PageIndex, PageShow, PageSearch}

// Options configures a Renderer.
type Options struct {
	Dir    string // Template directory; empty uses the embedded set
	Reload bool   // Watch Dir and re-parse on change
	Logger *slog.Logger
}

// Renderer executes named page templates. It is safe for concurrent use.
type Renderer struct {
	fsys   fs.FS
	logger *slog.Logger

	mu   sync.RWMutex
	tmpl *template.Template

	watcher *watcher.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// New parses the configured template set and, if requested, starts watching it.
func New(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var fsys fs.FS
	if opts.Dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("embedded templates: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(opts.Dir)
	}

	r := &Renderer{fsys: fsys, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}

	if opts.Reload && opts.Dir != "" {
		if err := r.watch(opts.Dir); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// NewFromFS parses templates from fsys. Used by tests and tooling.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{fsys: fsys, logger: slog.New(slog.DiscardHandler)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the named page into w. Output is buffered so a failing
// template writes nothing.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Reload re-parses the template set. On error the current set is kept.
func (r *Renderer) Reload() error {
	tmpl, err := parse(r.fsys)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

// Close stops the template watcher, if any.
func (r *Renderer) Close() error {
	if r.watcher == nil {
		return nil
	}
	r.cancel()
	err := r.watcher.Stop()
	<-r.done
	return err
}

func parse(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, page := range Pages {
		if tmpl.Lookup(page+".html") == nil {
			return nil, fmt.Errorf("parse templates: missing %s.html", page)
		}
	}
	return tmpl, nil
}

func (r *Renderer) watch(dir string) error {
	w, err := watcher.New(r.logger, watcher.Options{
		SettleDelay: 50 * time.Millisecond,
		Extensions:  []string{".html"},
	})
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch templates: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.watcher = w
	r.cancel = cancel
	r.done = make(chan struct{})

	w.Start(ctx)
	go r.reloadOnChange(ctx)

	r.logger.Info("watching templates for changes", "dir", dir)
	return nil
}

func (r *Renderer) reloadOnChange(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.watcher.Events():
			if err := r.Reload(); err != nil {
				r.logger.Error("template reload failed, keeping previous templates",
					"path", event.Path, "error", err)
				continue
			}
			r.logger.Info("templates reloaded", "path", event.Path, "change", event.Type.String())
		case err := <-r.watcher.Errors():
			r.logger.Warn("template watcher error", "error", err)
		}
	}
}

// SearchEnabledKey is the page data key that shows the search form in the
// navigation bar.
const SearchEnabledKey = "searchEnabled"

// headerData is what the shared header template sees.
type headerData struct {
	Title         string
	SearchEnabled bool
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04 MST")
	},
	"header": func(title string, data any) headerData {
		h := headerData{Title: title}
		if m, ok := data.(map[string]any); ok {
			h.SearchEnabled, _ = m[SearchEnabledKey].(bool)
		}
		return h
	},
}

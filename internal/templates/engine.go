package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when a requested page template does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// SharedDirs are the template subdirectories compiled into every page.
var SharedDirs = []string{"layouts", "partials"}

// Engine renders named page templates from a directory.
type Engine struct {
	root  string
	funcs template.FuncMap

	mu     sync.Mutex
	shared []sharedFile
	loaded bool
	cache  map[string]*template.Template
}

type sharedFile struct {
	name    string
	content string
}

// NewEngine creates an Engine rooted at dir. Templates are read lazily and
// cached for the lifetime of the Engine.
func NewEngine(dir string) *Engine {
	return &Engine{
		root:  dir,
		funcs: builtinFuncs(),
		cache: make(map[string]*template.Template),
	}
}

// Render executes the page template name (for example "post.html") with ctx.
func (e *Engine) Render(name string, ctx Context) ([]byte, error) {
	tpl, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, ctx.Map()); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	_, err := e.pagePath(name)
	return err == nil
}

func (e *Engine) lookup(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tpl, ok := e.cache[name]; ok {
		return tpl, nil
	}

	file, err := e.pagePath(name)
	if err != nil {
		return nil, err
	}
	if err := e.loadShared(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}

	tpl := template.New(name).Funcs(e.funcs)
	for _, sf := range e.shared {
		if _, err := tpl.New(sf.name).Parse(sf.content); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", sf.name, err)
		}
	}
	// The page is parsed last so its defines replace layout blocks.
	if _, err := tpl.Parse(string(content)); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	e.cache[name] = tpl
	return tpl, nil
}

func (e *Engine) pagePath(name string) (string, error) {
	clean := path.Clean(name)
	if name == "" || path.IsAbs(name) || clean != name || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	file := filepath.Join(e.root, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return file, nil
}

func (e *Engine) loadShared() error {
	if e.loaded {
		return nil
	}
	var files []sharedFile
	for _, dir := range SharedDirs {
		base := filepath.Join(e.root, dir)
		if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(p) != ".html" {
				return nil
			}
			rel, err := filepath.Rel(e.root, p)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			files = append(files, sharedFile{name: filepath.ToSlash(rel), content: string(data)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("load shared templates from %s: %w", base, err)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	e.shared = files
	e.loaded = true
	return nil
}

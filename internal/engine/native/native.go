// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package native is an in-process rendering engine. It reads the on-disk
// wiki layout directly:
//
//	wikiconfig.py
//	data/pages/<quoted name>/current
//	data/pages/<quoted name>/revisions/<00000001...>
//	data/plugin/formatter/<plugin>.py
//	underlay/pages/...
//
// and renders pages through formatter plugins registered in Go.
package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pdiddy/moin2rst/internal/engine"
	"github.com/pdiddy/moin2rst/internal/rst"
	"github.com/pdiddy/moin2rst/internal/wikiutil"
)

// Plugin is a formatter the native engine can send pages through.
type Plugin interface {
	engine.Formatter
	FormatPage(w io.Writer, body []byte) error
}

// PluginFactory builds a formatter bound to a request.
type PluginFactory func(req *engine.Request) Plugin

// Engine implements engine.Engine on top of an afero filesystem.
type Engine struct {
	fs      afero.Fs
	logger  *log.Logger
	plugins map[string]PluginFactory
}

// New returns an engine reading from fs with the text_x-rst formatter
// registered.
func New(fs afero.Fs, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{fs: fs, logger: logger, plugins: map[string]PluginFactory{}}
	e.Register(rst.PluginName, func(req *engine.Request) Plugin {
		return rst.New(req.PageURL)
	})
	return e
}

// Register adds or replaces a formatter plugin.
func (e *Engine) Register(name string, f PluginFactory) {
	e.plugins[name] = f
}

// Name returns "native".
func (e *Engine) Name() string { return "native" }

// Open loads dir/wikiconfig.py.
func (e *Engine) Open(_ context.Context, dir string) (engine.Wiki, error) {
	cfg, err := LoadConfig(e.fs, dir)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded wiki configuration", "dir", dir, "sitename", cfg.SiteName, "data_dir", cfg.DataDir)
	return &wiki{e: e, cfg: cfg}, nil
}

type wiki struct {
	e   *Engine
	cfg Config
}

func (w *wiki) LoadFormatter(_ context.Context, req *engine.Request, name string) (engine.Formatter, error) {
	factory, ok := w.e.plugins[name]
	if !ok {
		return nil, fmt.Errorf("formatter plugin %q not available (have %s)", name, strings.Join(w.e.pluginNames(), ", "))
	}
	pluginFile := filepath.Join(w.cfg.DataDir, "plugin", "formatter", name+".py")
	if ok, _ := afero.Exists(w.e.fs, pluginFile); ok {
		w.e.logger.Debug("wiki plugin file shadowed by native formatter", "file", pluginFile)
	}
	return factory(req), nil
}

func (e *Engine) pluginNames() []string {
	names := make([]string, 0, len(e.plugins))
	for n := range e.plugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (w *wiki) Page(_ context.Context, req *engine.Request, name string, rev int, f engine.Formatter) (engine.Page, error) {
	if rev < 0 {
		return nil, fmt.Errorf("invalid revision %d", rev)
	}
	plugin, ok := f.(Plugin)
	if !ok {
		return nil, fmt.Errorf("formatter %q was not loaded by the native engine", f.Name())
	}
	name = req.NormalizePagename(name)
	quoted := wikiutil.QuoteFilename(name)

	roots := []string{filepath.Join(w.cfg.DataDir, "pages", quoted)}
	if w.cfg.UnderlayDir != "" {
		roots = append(roots, filepath.Join(w.cfg.UnderlayDir, "pages", quoted))
	}
	for _, dir := range roots {
		if ok, err := afero.DirExists(w.e.fs, dir); err != nil {
			return nil, fmt.Errorf("checking page directory %s: %w", dir, err)
		} else if ok {
			return &page{fs: w.e.fs, dir: dir, rev: rev, plugin: plugin}, nil
		}
	}
	return &page{fs: w.e.fs, rev: rev, plugin: plugin}, nil
}

type page struct {
	fs     afero.Fs
	dir    string // empty when no page directory exists
	rev    int
	plugin Plugin
}

// revisionFile returns the path of the selected revision, or "" when the
// page has no such revision.
func (p *page) revisionFile() (string, error) {
	if p.dir == "" {
		return "", nil
	}
	rev := p.rev
	if rev == 0 {
		data, err := afero.ReadFile(p.fs, filepath.Join(p.dir, "current"))
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("reading current revision: %w", err)
		}
		if rev, err = wikiutil.ParseRevisionID(string(data)); err != nil {
			return "", err
		}
	}
	path := filepath.Join(p.dir, "revisions", wikiutil.RevisionID(rev))
	if _, err := p.fs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func (p *page) Exists(context.Context) (bool, error) {
	path, err := p.revisionFile()
	return path != "", err
}

func (p *page) Send(_ context.Context, w io.Writer) error {
	path, err := p.revisionFile()
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("page revision does not exist")
	}
	body, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return fmt.Errorf("reading revision: %w", err)
	}
	return p.plugin.FormatPage(w, body)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage builds a throwaway wiki environment around a single page
// file so it can be rendered without a live wiki.
//
// A staged environment has the layout
//
//	<dest>/wikiconfig.py
//	<dest>/data/...                              copied from the template
//	<dest>/underlay/...                          copied from the template
//	<dest>/data/pages/SomePage/current           "00000001"
//	<dest>/data/pages/SomePage/revisions/00000001
//	<dest>/data/plugin/formatter/text_x-rst.py
package stage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/pdiddy/moin2rst/internal/links"
	"github.com/pdiddy/moin2rst/internal/wikiutil"
	"github.com/pdiddy/moin2rst/pkg/types"
)

const (
	// markerFile identifies a template root, relative to the root.
	markerFile = "config/wikiconfig.py"
	// configFile is the staged configuration file name.
	configFile = "wikiconfig.py"
	// pluginFile is the formatter plugin name the engine resolves.
	pluginFile = "text_x-rst.py"
	// firstRevision is the only revision a staged page has.
	firstRevision = 1
)

// builtinPlugin is installed when no plugin source is configured. The
// native engine resolves text_x-rst from its own registry; the file only
// has to exist for the plugin directory to look like a real wiki's.
const builtinPlugin = `# -*- coding: utf-8 -*-
"""
    text_x-rst formatter placeholder.

    Pages in this environment are rendered by the moin2rst native engine,
    which provides the text_x-rst formatter itself.
"""
`

// Stager materializes staged environments on a filesystem.
type Stager struct {
	fs            afero.Fs
	templatePaths []string
	pluginSource  string
	decoder       *encoding.Decoder
	logger        *log.Logger
}

// Options configure a Stager.
type Options struct {
	// TemplatePaths are candidate template roots, tried in order.
	TemplatePaths []string

	// PluginSource is the formatter plugin file to install. Empty installs
	// the built-in placeholder.
	PluginSource string

	// Encoding is the character set of input page files. Empty copies
	// page bytes verbatim; otherwise they are transcoded to UTF-8.
	Encoding string

	Logger *log.Logger
}

// New returns a Stager working on fs.
func New(fs afero.Fs, opts Options) (*Stager, error) {
	s := &Stager{
		fs:            fs,
		templatePaths: opts.TemplatePaths,
		pluginSource:  opts.PluginSource,
		logger:        opts.Logger,
	}
	if len(s.templatePaths) == 0 {
		s.templatePaths = types.DefaultTemplatePaths
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, &types.UsageError{Msg: fmt.Sprintf("unknown encoding %q", opts.Encoding)}
		}
		s.decoder = enc.NewDecoder()
	}
	return s, nil
}

// FindTemplate returns the first template path containing
// config/wikiconfig.py. It creates nothing.
func (s *Stager) FindTemplate() (string, error) {
	for _, p := range s.templatePaths {
		ok, err := afero.Exists(s.fs, filepath.Join(p, markerFile))
		if err != nil {
			return "", &types.SetupError{Op: "checking template", Path: p, Err: err}
		}
		if ok {
			s.logger.Debug("using wiki template", "path", p)
			return p, nil
		}
	}
	return "", &types.SetupError{
		Op:  "locating wiki template",
		Err: fmt.Errorf("no %s found in %v", markerFile, s.templatePaths),
	}
}

// Stage builds an environment in destDir from templateRoot with pagePath
// installed as the single revision of SomePage. destDir must not already
// contain data/ or underlay/. Stage does not clean up after a failure;
// the caller owns destDir.
func (s *Stager) Stage(templateRoot, pagePath, destDir string) error {
	for _, tree := range []string{"data", "underlay"} {
		if err := s.copyTree(filepath.Join(templateRoot, tree), filepath.Join(destDir, tree)); err != nil {
			return &types.SetupError{Op: "copying template " + tree, Path: templateRoot, Err: err}
		}
	}

	if err := s.copyFile(filepath.Join(templateRoot, markerFile), filepath.Join(destDir, configFile)); err != nil {
		return &types.SetupError{Op: "copying wiki configuration", Path: templateRoot, Err: err}
	}

	pageDir := filepath.Join(destDir, "data", "pages", wikiutil.QuoteFilename(types.SyntheticPage))
	revDir := filepath.Join(pageDir, "revisions")
	if err := s.fs.MkdirAll(revDir, 0o755); err != nil {
		return &types.SetupError{Op: "creating page directory", Path: pageDir, Err: err}
	}
	revID := wikiutil.RevisionID(firstRevision)
	if err := afero.WriteFile(s.fs, filepath.Join(pageDir, "current"), []byte(revID), 0o644); err != nil {
		return &types.SetupError{Op: "writing current revision", Path: pageDir, Err: err}
	}

	revFile := filepath.Join(revDir, revID)
	if err := s.copyFile(pagePath, revFile); err != nil {
		return &types.SetupError{Op: "copying page", Path: pagePath, Err: err}
	}
	if err := s.normalize(revFile); err != nil {
		return &types.SetupError{Op: "converting links", Path: revFile, Err: err}
	}

	if err := s.installPlugin(destDir); err != nil {
		return &types.SetupError{Op: "installing formatter plugin", Path: s.pluginSource, Err: err}
	}

	s.logger.Debug("staged wiki environment", "dir", destDir, "page", types.SyntheticPage)
	return nil
}

// normalize rewrites the staged revision in place with legacy links
// converted, transcoding it first when an input encoding is set.
func (s *Stager) normalize(path string) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	if s.decoder != nil {
		if data, err = s.decoder.Bytes(data); err != nil {
			return fmt.Errorf("decoding page: %w", err)
		}
	}
	return afero.WriteFile(s.fs, path, links.Normalize(data), 0o644)
}

func (s *Stager) installPlugin(destDir string) error {
	dir := filepath.Join(destDir, "data", "plugin", "formatter")
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, pluginFile)
	if s.pluginSource == "" {
		return afero.WriteFile(s.fs, dst, []byte(builtinPlugin), 0o644)
	}
	return s.copyFile(s.pluginSource, dst)
}

// copyTree copies the directory src to dst. dst itself must not exist.
func (s *Stager) copyTree(src, dst string) error {
	info, err := s.fs.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	if _, err := s.fs.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, fs.ErrExist)
	}

	return afero.Walk(s.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case info.IsDir():
			return s.fs.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode().IsRegular():
			return s.copyFile(path, target)
		default:
			s.logger.Debug("skipping non-regular template file", "path", path)
			return nil
		}
	})
}

// copyFile copies src to dst, refusing to overwrite an existing dst.
func (s *Stager) copyFile(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

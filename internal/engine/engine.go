// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine defines the contract between moin2rst and a wiki
// rendering engine: loading a wiki's configuration from a directory,
// building a request, resolving formatter plugins and sending pages.
package engine

import (
	"context"
	"io"
	"strings"

	"github.com/pdiddy/moin2rst/internal/wikiutil"
)

// Engine opens wiki environments. Implementations are selected once at
// startup.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string

	// Open loads the wiki configuration found in dir. Configuration is
	// read relative to dir; the process working directory is untouched.
	Open(ctx context.Context, dir string) (Wiki, error)
}

// Wiki is a loaded wiki environment.
type Wiki interface {
	// LoadFormatter resolves the formatter plugin called name, bound to req.
	LoadFormatter(ctx context.Context, req *Request, name string) (Formatter, error)

	// Page looks up a page. rev is 1-based; zero selects the current
	// revision. A missing page is not an error; check Page.Exists.
	Page(ctx context.Context, req *Request, name string, rev int, f Formatter) (Page, error)
}

// Formatter is an engine-specific formatter plugin handle.
type Formatter interface {
	Name() string
}

// Page is a page revision resolved by a Wiki.
type Page interface {
	// Exists reports whether the page revision exists.
	Exists(ctx context.Context) (bool, error)

	// Send renders the page through its formatter and writes the result to w.
	Send(ctx context.Context, w io.Writer) error
}

// Request carries the per-run request state handed to the engine.
type Request struct {
	// URL is the request URL resolved from the URL template.
	URL string

	// PageName is the page being rendered.
	PageName string

	// Normalize is the page-name normalization policy. Nil selects the
	// wiki's default rules.
	Normalize func(string) string

	// LinkURL maps another page name to its URL. Nil leaves names as they are.
	LinkURL func(string) string
}

// NormalizePagename applies the request's normalization policy.
func (r *Request) NormalizePagename(name string) string {
	if r.Normalize != nil {
		return r.Normalize(name)
	}
	return wikiutil.NormalizePagename(name)
}

// PageURL returns the URL of the named page.
func (r *Request) PageURL(name string) string {
	if r.LinkURL != nil {
		return r.LinkURL(name)
	}
	return name
}

// ActionURL is the URL that asks a live wiki for the same page through the
// reStructuredText formatter action.
func (r *Request) ActionURL() string {
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	return r.URL + sep + "action=format&mimetype=text/x-rst"
}

// Identity is a normalization policy that leaves names untouched.
func Identity(name string) string { return name }

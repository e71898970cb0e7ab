// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render drives an engine to send one page through the
// reStructuredText formatter.
package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pdiddy/moin2rst/internal/engine"
	"github.com/pdiddy/moin2rst/internal/logging"
	"github.com/pdiddy/moin2rst/internal/rst"
	"github.com/pdiddy/moin2rst/pkg/types"
)

// Placeholder marks where the page name goes in a URL template.
const Placeholder = "%"

// FormatterPlugin is the formatter pages are sent through.
const FormatterPlugin = rst.PluginName

// ParseURLTemplate checks that tmpl has at most one placeholder and
// returns it with a placeholder appended when it has none.
func ParseURLTemplate(tmpl string) (string, error) {
	switch strings.Count(tmpl, Placeholder) {
	case 0:
		return tmpl + Placeholder, nil
	case 1:
		return tmpl, nil
	default:
		return "", &types.UsageError{Msg: fmt.Sprintf("-u/--url-template must contain at most one %q: %q", Placeholder, tmpl)}
	}
}

// ResolveURL substitutes the escaped page name into a parsed template.
func ResolveURL(tmpl, page string) string {
	return strings.Replace(tmpl, Placeholder, url.PathEscape(page), 1)
}

// NewRequest builds the engine request for page. Page names are used as
// given: engine-side normalization is replaced by the identity.
func NewRequest(tmpl, page string) *engine.Request {
	return &engine.Request{
		URL:       ResolveURL(tmpl, page),
		PageName:  page,
		Normalize: engine.Identity,
		LinkURL:   func(name string) string { return ResolveURL(tmpl, name) },
	}
}

// Page renders req.Page from the wiki in envDir to w.
func Page(ctx context.Context, eng engine.Engine, envDir string, rr types.RenderRequest, w io.Writer) error {
	logger := logging.FromContext(ctx)

	tmpl, err := ParseURLTemplate(rr.URLTemplate)
	if err != nil {
		return err
	}
	if rr.Revision < 0 {
		return &types.UsageError{Msg: fmt.Sprintf("revision must be positive, got %d", rr.Revision)}
	}

	wiki, err := eng.Open(ctx, envDir)
	if err != nil {
		return &types.SetupError{Op: "loading wiki configuration", Path: envDir, Err: err}
	}

	req := NewRequest(tmpl, rr.Page)
	logger.Debug("rendering page", "engine", eng.Name(), "page", rr.Page, "revision", rr.Revision, "url", req.URL, "action", req.ActionURL())

	f, err := wiki.LoadFormatter(ctx, req, FormatterPlugin)
	if err != nil {
		return &types.RenderError{Engine: eng.Name(), Err: fmt.Errorf("loading formatter %s: %w", FormatterPlugin, err)}
	}

	page, err := wiki.Page(ctx, req, rr.Page, rr.Revision, f)
	if err != nil {
		return &types.RenderError{Engine: eng.Name(), Err: fmt.Errorf("looking up %q: %w", rr.Page, err)}
	}
	ok, err := page.Exists(ctx)
	if err != nil {
		return &types.RenderError{Engine: eng.Name(), Err: fmt.Errorf("looking up %q: %w", rr.Page, err)}
	}
	if !ok {
		return &types.PageNotFoundError{Page: rr.Page, Revision: rr.Revision}
	}

	if err := page.Send(ctx, w); err != nil {
		return &types.RenderError{Engine: eng.Name(), Err: fmt.Errorf("sending %q: %w", rr.Page, err)}
	}
	return nil
}

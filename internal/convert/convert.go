// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs one conversion: stage a temporary wiki when needed,
// render the page, and remove whatever was staged.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/pdiddy/moin2rst/internal/engine"
	"github.com/pdiddy/moin2rst/internal/logging"
	"github.com/pdiddy/moin2rst/internal/render"
	"github.com/pdiddy/moin2rst/internal/stage"
	"github.com/pdiddy/moin2rst/pkg/types"
)

// Options describe one conversion.
type Options struct {
	// Directory is an existing wiki environment. Empty stages a temporary
	// one around the page file named by Page.
	Directory string

	// Page is a page name inside Directory, or a page file path when
	// Directory is empty.
	Page string

	// Revision is 1-based; zero selects the current revision.
	Revision int

	// URLTemplate contains at most one '%'.
	URLTemplate string
}

// Converter wires a stager and an engine together.
type Converter struct {
	fs      afero.Fs
	stager  *stage.Stager
	engine  engine.Engine
	tempDir string
}

// New returns a Converter. Temporary environments are created in tempDir
// on fs; an empty tempDir uses the system default.
func New(fs afero.Fs, stager *stage.Stager, eng engine.Engine, tempDir string) *Converter {
	return &Converter{fs: fs, stager: stager, engine: eng, tempDir: tempDir}
}

// Run renders the page described by opts to w. A staged environment is
// removed on every return path; a removal failure is joined to the
// returned error.
func (c *Converter) Run(ctx context.Context, opts Options, w io.Writer) (err error) {
	logger := logging.FromContext(ctx)

	tmpl, err := render.ParseURLTemplate(opts.URLTemplate)
	if err != nil {
		return err
	}
	if opts.Page == "" {
		return &types.UsageError{Msg: "a page name or page file is required"}
	}

	envDir, page := opts.Directory, opts.Page
	if envDir == "" {
		template, err := c.stager.FindTemplate()
		if err != nil {
			return err
		}

		dir, err := afero.TempDir(c.fs, c.tempDir, "moin2rst-")
		if err != nil {
			return &types.SetupError{Op: "creating temporary directory", Err: err}
		}
		defer func() {
			if rmErr := c.fs.RemoveAll(dir); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("removing %s: %w", dir, rmErr))
				return
			}
			logger.Debug("removed staged environment", "dir", dir)
		}()

		if err := c.stager.Stage(template, opts.Page, dir); err != nil {
			return err
		}
		envDir, page = dir, types.SyntheticPage
	}

	return render.Page(ctx, c.engine, envDir, types.RenderRequest{
		Page:        page,
		Revision:    opts.Revision,
		URLTemplate: tmpl,
	}, w)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package moin renders pages with an installed Python MoinMoin. Each
// operation runs a short driver script in a subprocess whose working
// directory is the wiki environment, so the configuration loader finds
// wikiconfig.py without moin2rst changing its own working directory.
package moin

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/pdiddy/moin2rst/internal/engine"
)

// interpreters are tried in order when no interpreter is configured.
var interpreters = []string{"python2", "python"}

const versionProbe = "import MoinMoin.version; print(MoinMoin.version.release)"

// exitNoPage is the driver's exit status for a missing page.
const exitNoPage = 3

// Engine implements engine.Engine by driving Python MoinMoin.
type Engine struct {
	exec    executor
	python  string
	adapter requestAdapter
	logger  *log.Logger
}

var defaultExec = &osExecutor{}

// Detect finds a Python interpreter that can import MoinMoin and selects
// the request adapter matching its version. python overrides the
// interpreter search when non-empty.
func Detect(ctx context.Context, python string, logger *log.Logger) (*Engine, error) {
	return detect(ctx, defaultExec, python, logger)
}

func detect(ctx context.Context, ex executor, python string, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}
	candidates := interpreters
	if python != "" {
		candidates = []string{python}
	}

	var lastErr error
	for _, bin := range candidates {
		if _, err := ex.LookPath(bin); err != nil {
			lastErr = err
			continue
		}
		out, err := ex.Output(ctx, "", bin, "-c", versionProbe)
		if err != nil {
			lastErr = fmt.Errorf("%s cannot import MoinMoin: %w", bin, err)
			continue
		}
		v, err := parseRelease(string(out))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", bin, err)
		}
		adapter := adapterFor(v)
		logger.Debug("detected MoinMoin", "python", bin, "version", v.String(), "adapter", adapter.name)
		return &Engine{exec: ex, python: bin, adapter: adapter, logger: logger}, nil
	}
	return nil, fmt.Errorf("no python interpreter with MoinMoin available (tried %v): %w", candidates, lastErr)
}

var releaseRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// parseRelease reads a MoinMoin release string such as "1.9.11" or
// "1.8.0rc1".
func parseRelease(s string) (*semver.Version, error) {
	m := releaseRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("unrecognized MoinMoin release %q", s)
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	return semver.NewVersion(m[1] + "." + m[2] + "." + patch)
}

// Name returns "moin".
func (e *Engine) Name() string { return "moin" }

// Open records dir as the wiki environment. Configuration errors surface
// when the driver runs.
func (e *Engine) Open(_ context.Context, dir string) (engine.Wiki, error) {
	return &wiki{e: e, dir: dir}, nil
}

type wiki struct {
	e   *Engine
	dir string
}

type formatter struct{ name string }

func (f formatter) Name() string { return f.name }

func (w *wiki) LoadFormatter(_ context.Context, _ *engine.Request, name string) (engine.Formatter, error) {
	return formatter{name: name}, nil
}

func (w *wiki) Page(_ context.Context, req *engine.Request, name string, rev int, f engine.Formatter) (engine.Page, error) {
	if rev < 0 {
		return nil, fmt.Errorf("invalid revision %d", rev)
	}
	return &page{w: w, req: req, name: name, rev: rev, formatter: f.Name()}, nil
}

type page struct {
	w         *wiki
	req       *engine.Request
	name      string
	rev       int
	formatter string
}

func (p *page) args(mode string) []string {
	return []string{"-c", p.w.e.adapter.script(), mode, p.name, strconv.Itoa(p.rev), p.req.URL, p.formatter}
}

func (p *page) Exists(ctx context.Context) (bool, error) {
	e := p.w.e
	_, err := e.exec.Output(ctx, p.w.dir, e.python, p.args("exists")...)
	switch {
	case err == nil:
		return true, nil
	case exitCode(err) == exitNoPage:
		return false, nil
	default:
		return false, fmt.Errorf("running MoinMoin driver: %w", err)
	}
}

func (p *page) Send(ctx context.Context, w io.Writer) error {
	e := p.w.e
	if err := e.exec.RunPiped(ctx, p.w.dir, e.python, p.args("send"), w); err != nil {
		return fmt.Errorf("running MoinMoin driver: %w", err)
	}
	return nil
}

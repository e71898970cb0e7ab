// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// UsageError reports bad command-line input. The CLI exits with status 2.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// SetupError reports a failure while locating or building a wiki
// environment: missing template, missing configuration, or a filesystem
// error while staging.
type SetupError struct {
	Op   string
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// PageNotFoundError reports that the requested page, or the requested
// revision of it, does not exist.
type PageNotFoundError struct {
	Page     string
	Revision int
}

func (e *PageNotFoundError) Error() string {
	if e.Revision > 0 {
		return fmt.Sprintf("no page named %q at revision %d", e.Page, e.Revision)
	}
	return fmt.Sprintf("no page named %q", e.Page)
}

// RenderError wraps a failure raised by the rendering engine while loading
// the formatter or sending the page.
type RenderError struct {
	Engine string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s engine: %v", e.Engine, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

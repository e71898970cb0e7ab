// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SyntheticPage is the name under which a page file is staged.
const SyntheticPage = "SomePage"

// RenderRequest describes one page to render.
type RenderRequest struct {
	// Page is the name of the page inside the wiki environment.
	Page string

	// Revision is the 1-based revision to render. Zero selects the
	// current revision.
	Revision int

	// URLTemplate contains at most one '%', replaced by the page name to
	// form the request URL.
	URLTemplate string
}

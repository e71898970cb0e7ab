// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikiutil holds the page naming rules of the on-disk wiki layout.
package wikiutil

import (
	"fmt"
	"strconv"
	"strings"
)

// RevisionID formats a 1-based revision number the way revision files
// and the "current" pointer spell it.
func RevisionID(rev int) string {
	return fmt.Sprintf("%08d", rev)
}

// ParseRevisionID parses the contents of a "current" pointer file.
func ParseRevisionID(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid revision id %q", s)
	}
	return n, nil
}

// QuoteFilename maps a page name to its directory name. Runs of characters
// outside [A-Za-z0-9_] are replaced by their UTF-8 bytes in lowercase hex,
// wrapped in parentheses: "Some Page/Sub" becomes "Some(20)Page(2f)Sub".
func QuoteFilename(name string) string {
	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) == 0 {
			return
		}
		fmt.Fprintf(&b, "(%x)", run)
		run = run[:0]
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isSafe(c) {
			flush()
			b.WriteByte(c)
			continue
		}
		run = append(run, c)
	}
	flush()
	return b.String()
}


func isSafe(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// NormalizePagename applies the wiki's default name clean-up: every
// '/'-separated segment is trimmed and has its inner whitespace collapsed,
// and empty segments are dropped.
func NormalizePagename(name string) string {
	parts := strings.Split(name, "/")
	kept := parts[:0]
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

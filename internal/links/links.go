// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package links rewrites legacy single-bracket wiki links into the
// double-bracket syntax understood by current wiki parsers.
package links

import "regexp"

// Each rule runs once over the whole buffer, in order. A match is left
// alone when it sits directly inside another bracket pair, so text that
// already uses [[...]] is never wrapped twice.
var rules = []struct {
	re   *regexp.Regexp
	repl []byte
}{
	// [http://host/path label] -> [[http://host/path|label]]
	{regexp.MustCompile(`\[(http\S+?)\s+(.+?)\]`), []byte("[[${1}|${2}]]")},
	// ["Some Page"] -> [[Some Page]]
	{regexp.MustCompile(`\["(.+?)"\]`), []byte("[[${1}]]")},
	// [CamelCase] -> [[CamelCase]]
	{regexp.MustCompile(`\[([A-Z][a-zA-Z0-9]+)\]`), []byte("[[${1}]]")},
}

// Normalize returns a copy of src with legacy bracket links rewritten.
// Input that matches no rule is returned unchanged.
func Normalize(src []byte) []byte {
	out := append([]byte(nil), src...)
	for _, r := range rules {
		out = replace(r.re, out, r.repl)
	}
	return out
}

// replace expands repl for every match of re in src that is not enclosed
// by an adjacent '[' or ']'.
func replace(re *regexp.Regexp, src, repl []byte) []byte {
	matches := re.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}
	out := make([]byte, 0, len(src)+len(matches)*4)
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && src[start-1] == '[' || end < len(src) && src[end] == ']' {
			continue
		}
		out = append(out, src[last:start]...)
		out = re.Expand(out, repl, src, m)
		last = end
	}
	return append(out, src[last:]...)
}

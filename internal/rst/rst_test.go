// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rst

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func format(t *testing.T, f *Formatter, src string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, f.FormatPage(&out, []byte(src)))
	return out.String()
}

func TestFormatPage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "plain paragraph",
			src:  "Hello world.\nSecond line.\n",
			want: "Hello world.\nSecond line.\n",
		},
		{
			name: "paragraphs separated by blank lines",
			src:  "One.\n\n\nTwo.\n",
			want: "One.\n\nTwo.\n",
		},
		{
			name: "headings by level",
			src:  "= Title =\n== Section ==\n=== Sub ===\n",
			want: "Title\n=====\n\nSection\n-------\n\nSub\n~~~\n",
		},
		{
			name: "processing instructions and comments dropped",
			src:  "#format wiki\n#language en\n## a comment\nBody\n## another\n",
			want: "Body\n",
		},
		{
			name: "inline emphasis and code",
			src:  "'''bold''' and ''italic'' and `code` and {{{pre}}}\n",
			want: "**bold** and *italic* and ``code`` and ``pre``\n",
		},
		{
			name: "external links",
			src:  "[[http://example.com|Example]] [[http://example.com]]\n",
			want: "`Example <http://example.com>`__ `http://example.com <http://example.com>`__\n",
		},
		{
			name: "internal link",
			src:  "See [[OtherPage]].\n",
			want: "See `OtherPage <OtherPage>`__.\n",
		},
		{
			name: "bullet list with nesting",
			src:  " * one\n  * nested\n * two\n",
			want: "- one\n\n  - nested\n\n- two\n",
		},
		{
			name: "numbered list",
			src:  " 1. first\n 1. second\n",
			want: "#. first\n#. second\n",
		},
		{
			name: "preformatted block",
			src:  "Code:\n{{{\nx := 1\n\ny := 2\n}}}\nAfter\n",
			want: "Code:\n\n::\n\n   x := 1\n\n   y := 2\n\nAfter\n",
		},
		{
			name: "highlighted block",
			src:  "{{{#!python\nprint(1)\n}}}\n",
			want: ".. code-block:: python\n\n   print(1)\n",
		},
		{
			name: "unterminated block is closed at end of page",
			src:  "{{{\nleft open",
			want: "::\n\n   left open\n",
		},
		{
			name: "table",
			src:  "||'''a'''||b||\n||<style=\"x\"> c||d||\n",
			want: ".. list-table::\n\n   * - **a**\n     - b\n   * - c\n     - d\n",
		},
		{
			name: "rule and table of contents",
			src:  "<<TableOfContents>>\nA\n----\nB\n",
			want: ".. contents::\n\nA\n\n----\n\nB\n",
		},
		{
			name: "rst pages pass through",
			src:  "#format rst\nTitle\n=====\n\n*already* rst\n",
			want: "Title\n=====\n\n*already* rst\n",
		},
		{
			name: "plain pages become a literal block",
			src:  "#format plain\n'''not bold'''\n",
			want: "::\n\n   '''not bold'''\n",
		},
		{
			name: "empty page",
			src:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(t, New(nil), tt.src))
		})
	}
}

func TestFormatPage_PageURL(t *testing.T) {
	f := New(func(name string) string { return "http://wiki/" + name })
	got := format(t, f, "[[OtherPage|the other page]] [[http://x|y]]\n")
	assert.Equal(t, "`the other page <http://wiki/OtherPage>`__ `y <http://x>`__\n", got)
}

func TestFormatPage_WideHeading(t *testing.T) {
	got := format(t, New(nil), "= 日本語 =\n")
	assert.Equal(t, "日本語\n======\n", got)
}

func TestName(t *testing.T) {
	assert.Equal(t, "text_x-rst", New(nil).Name())
}

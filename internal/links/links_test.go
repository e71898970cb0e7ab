// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "external link with label",
			in:   "see [http://x y] here",
			want: "see [[http://x|y]] here",
		},
		{
			name: "external link with multi-word label",
			in:   "[https://example.com/a?b=c The Example Site]",
			want: "[[https://example.com/a?b=c|The Example Site]]",
		},
		{
			name: "quoted page name",
			in:   `read ["PageName"] first`,
			want: "read [[PageName]] first",
		},
		{
			name: "quoted page name with spaces",
			in:   `["Release Notes 2.0"]`,
			want: "[[Release Notes 2.0]]",
		},
		{
			name: "camel case reference",
			in:   "[CamelCase1]",
			want: "[[CamelCase1]]",
		},
		{
			name: "lowercase reference unchanged",
			in:   "[lowercase]",
			want: "[lowercase]",
		},
		{
			name: "single uppercase letter unchanged",
			in:   "[A]",
			want: "[A]",
		},
		{
			name: "bare url without label unchanged",
			in:   "[http://example.com]",
			want: "[http://example.com]",
		},
		{
			name: "double bracket link left alone",
			in:   "[[ExistingLink]] and [[http://x|y]]",
			want: "[[ExistingLink]] and [[http://x|y]]",
		},
		{
			name: "quoted rewrite is not wrapped again by camel case rule",
			in:   `["FrontPage"]`,
			want: "[[FrontPage]]",
		},
		{
			name: "mixed constructs on one line",
			in:   `[http://a.b c] ["D e"] [FooBar] [baz]`,
			want: "[[http://a.b|c]] [[D e]] [[FooBar]] [baz]",
		},
		{
			name: "stray closing bracket keeps link as is",
			in:   "x [Foo]] y",
			want: "x [Foo]] y",
		},
		{
			name: "stray opening bracket keeps link as is",
			in:   "x [[Foo] y",
			want: "x [[Foo] y",
		},
		{
			name: "label does not span lines",
			in:   "[http://x y\nz]",
			want: "[http://x y\nz]",
		},
		{
			name: "plain text unchanged",
			in:   "Nothing to see.\n",
			want: "Nothing to see.\n",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.in))
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNormalize_SecondPassIsStable(t *testing.T) {
	in := []byte(`[http://x y] ["PageName"] [CamelCase1]`)
	once := Normalize(in)
	twice := Normalize(once)
	assert.Equal(t, "[[http://x|y]] [[PageName]] [[CamelCase1]]", string(once))
	assert.Equal(t, string(once), string(twice))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	in := []byte("[FooBar]")
	_ = Normalize(in)
	assert.Equal(t, "[FooBar]", string(in))
}

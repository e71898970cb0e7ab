// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestNormalizePagename(t *testing.T) {
	def := &Request{}
	assert.Equal(t, "Some Page", def.NormalizePagename("  Some   Page/ "))

	id := &Request{Normalize: Identity}
	assert.Equal(t, "  Some   Page/ ", id.NormalizePagename("  Some   Page/ "))
}

func TestRequestPageURL(t *testing.T) {
	r := &Request{}
	assert.Equal(t, "Other", r.PageURL("Other"))

	r.LinkURL = func(name string) string { return "http://wiki/" + name }
	assert.Equal(t, "http://wiki/Other", r.PageURL("Other"))
}

func TestRequestActionURL(t *testing.T) {
	assert.Equal(t, "http://wiki/SomePage?action=format&mimetype=text/x-rst",
		(&Request{URL: "http://wiki/SomePage"}).ActionURL())
	assert.Equal(t, "http://wiki/?p=SomePage&action=format&mimetype=text/x-rst",
		(&Request{URL: "http://wiki/?p=SomePage"}).ActionURL())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration and error types shared by the moin2rst
// packages.
package types

import "fmt"

// EngineKind selects the rendering engine used to turn a staged page into
// reStructuredText.
type EngineKind string

const (
	// EngineNative renders in-process by reading the wiki's on-disk layout.
	EngineNative EngineKind = "native"
	// EngineMoin drives an installed Python MoinMoin through a subprocess.
	EngineMoin EngineKind = "moin"
)

// DefaultTemplatePaths lists the locations searched for a wiki template
// when no template_paths are configured.
var DefaultTemplatePaths = []string{"/usr/share/moin"}

// Config holds the settings read from moin2rst.yaml, the environment and
// command-line flags.
type Config struct {
	// TemplatePaths are candidate template roots for the staged wiki. The
	// first one containing config/wikiconfig.py is used.
	TemplatePaths []string `mapstructure:"template_paths" yaml:"template_paths"`

	// PluginSource is the formatter plugin file copied into the staged
	// plugin directory. Empty installs the built-in plugin descriptor,
	// which only the native engine understands.
	PluginSource string `mapstructure:"plugin_source" yaml:"plugin_source"`

	// Engine selects the rendering engine: native or moin.
	Engine EngineKind `mapstructure:"engine" yaml:"engine"`

	// Python overrides the interpreter used by the moin engine.
	Python string `mapstructure:"python" yaml:"python,omitempty"`

	// Encoding names the character set of the input page file (e.g.
	// "iso-8859-1"). Empty copies the bytes verbatim.
	Encoding string `mapstructure:"encoding" yaml:"encoding,omitempty"`
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineNative, EngineMoin:
	default:
		return &UsageError{Msg: fmt.Sprintf("engine must be native or moin, got %q", c.Engine)}
	}
	if c.Engine == EngineMoin && c.PluginSource == "" {
		return &UsageError{Msg: "the moin engine needs plugin_source to point at text_x-rst.py"}
	}
	return nil
}

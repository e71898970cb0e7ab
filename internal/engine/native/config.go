// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package native

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"
)

// ConfigFile is the wiki configuration file looked up in the environment
// directory.
const ConfigFile = "wikiconfig.py"

// assignRe matches simple string assignments such as
//
//	data_dir = './data/'
//	sitename = u"My Wiki"
var assignRe = regexp.MustCompile(`^\s*([a-z_]+)\s*=\s*[uUrR]?(?:'([^']*)'|"([^"]*)")\s*(?:#.*)?$`)

// Config is the subset of the wiki configuration the native engine reads.
type Config struct {
	SiteName    string
	DataDir     string
	UnderlayDir string
}

// LoadConfig reads dir/wikiconfig.py. Only string-literal assignments are
// understood; everything else in the file is ignored. Relative directories
// are resolved against dir.
func LoadConfig(fs afero.Fs, dir string) (Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("reading wiki configuration: %w", err)
	}

	cfg := Config{
		SiteName:    "Untitled Wiki",
		DataDir:     "./data/",
		UnderlayDir: "./underlay/",
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		m := assignRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		val := m[2] + m[3]
		switch m[1] {
		case "sitename":
			cfg.SiteName = val
		case "data_dir":
			cfg.DataDir = val
		case "data_underlay_dir":
			cfg.UnderlayDir = val
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, fmt.Errorf("scanning %s: %w", path, err)
	}

	cfg.DataDir = resolve(dir, cfg.DataDir)
	if cfg.UnderlayDir != "" {
		cfg.UnderlayDir = resolve(dir, cfg.UnderlayDir)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

//go:build mage

// Package main contains Mage build targets for moin2rst developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// templateDirs lists the directories of a minimal wiki template.
var templateDirs = []string{
	"config",
	"data/pages",
	"data/plugin/formatter",
	"underlay/pages",
}

const templateConfig = `# -*- coding: utf-8 -*-
from MoinMoin.config import multiconfig

class Config(multiconfig.DefaultConfig):
    sitename = u'moin2rst'
    data_dir = './data/'
    data_underlay_dir = './underlay/'
`

// Template writes a minimal wiki template into ./template for machines
// without a MoinMoin installation. Point template_paths at it.
func Template() error {
	root := "template"
	for _, dir := range templateDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", filepath.Join(root, dir))
	}
	cfg := filepath.Join(root, "config", "wikiconfig.py")
	if err := os.WriteFile(cfg, []byte(templateConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg, err)
	}
	fmt.Println("Wiki template initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "moin2rst"
	cmdPkg  = "./cmd/moin2rst"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check vets the code and runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Stats prints project metrics: Go production and test LOC.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines counts non-blank lines in the Go files under root, skipping
// directories that start with an underscore. tests selects _test.go files
// instead of production files.
func countGoLines(root string, tests bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") != tests {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

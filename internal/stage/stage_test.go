// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/moin2rst/pkg/types"
)

const templateRoot = "/usr/share/moin"

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

// newTemplate lays out a minimal wiki template under templateRoot.
func newTemplate(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(templateRoot, "config", "wikiconfig.py"), "    sitename = u'Template'\n")
	writeFile(t, fs, filepath.Join(templateRoot, "data", "intermap.txt"), "MoinMoin http://moinmo.in/\n")
	writeFile(t, fs, filepath.Join(templateRoot, "data", "plugin", "formatter", "__init__.py"), "")
	writeFile(t, fs, filepath.Join(templateRoot, "underlay", "pages", "FrontPage", "current"), "00000001")
	writeFile(t, fs, filepath.Join(templateRoot, "underlay", "pages", "FrontPage", "revisions", "00000001"), "Welcome\n")
	writeFile(t, fs, "/input/page.txt", `Intro ["Other Page"] and [http://example.com Example] and [FooBar].`+"\n")
	return fs
}

func newStager(t *testing.T, fs afero.Fs, opts Options) *Stager {
	t.Helper()
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	s, err := New(fs, opts)
	require.NoError(t, err)
	return s
}

func TestFindTemplate(t *testing.T) {
	fs := newTemplate(t)

	s := newStager(t, fs, Options{TemplatePaths: []string{"/opt/missing", templateRoot}})
	got, err := s.FindTemplate()
	require.NoError(t, err)
	assert.Equal(t, templateRoot, got)

	s = newStager(t, fs, Options{})
	got, err = s.FindTemplate()
	require.NoError(t, err)
	assert.Equal(t, templateRoot, got, "default template paths")
}

func TestFindTemplate_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/opt/moin/config/other.py", "")
	before := snapshot(t, fs)

	s := newStager(t, fs, Options{TemplatePaths: []string{"/opt/moin"}})
	_, err := s.FindTemplate()
	require.Error(t, err)

	var se *types.SetupError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "config/wikiconfig.py")
	assert.Equal(t, before, snapshot(t, fs), "no state created")
}

func TestStage(t *testing.T) {
	fs := newTemplate(t)
	s := newStager(t, fs, Options{})
	dest := "/tmp/moin2rst-1"
	require.NoError(t, fs.MkdirAll(dest, 0o700))

	require.NoError(t, s.Stage(templateRoot, "/input/page.txt", dest))

	assert.Equal(t, "    sitename = u'Template'\n", readFile(t, fs, filepath.Join(dest, "wikiconfig.py")))
	assert.Equal(t, "MoinMoin http://moinmo.in/\n", readFile(t, fs, filepath.Join(dest, "data", "intermap.txt")))
	assert.Equal(t, "Welcome\n", readFile(t, fs, filepath.Join(dest, "underlay", "pages", "FrontPage", "revisions", "00000001")))

	pageDir := filepath.Join(dest, "data", "pages", "SomePage")
	assert.Equal(t, "00000001", readFile(t, fs, filepath.Join(pageDir, "current")))
	assert.Equal(t,
		"Intro [[Other Page]] and [[http://example.com|Example]] and [[FooBar]].\n",
		readFile(t, fs, filepath.Join(pageDir, "revisions", "00000001")))

	assert.Equal(t, builtinPlugin, readFile(t, fs, filepath.Join(dest, "data", "plugin", "formatter", "text_x-rst.py")))
	assert.Equal(t, "", readFile(t, fs, filepath.Join(dest, "data", "plugin", "formatter", "__init__.py")))

	assert.Equal(t, `Intro ["Other Page"] and [http://example.com Example] and [FooBar].`+"\n",
		readFile(t, fs, "/input/page.txt"), "source page untouched")
}

func TestStage_PluginSource(t *testing.T) {
	fs := newTemplate(t)
	writeFile(t, fs, "/opt/plugins/text_x-rst.py", "class Formatter: pass\n")
	s := newStager(t, fs, Options{PluginSource: "/opt/plugins/text_x-rst.py"})

	require.NoError(t, s.Stage(templateRoot, "/input/page.txt", "/stage"))
	assert.Equal(t, "class Formatter: pass\n", readFile(t, fs, "/stage/data/plugin/formatter/text_x-rst.py"))
}

func TestStage_Encoding(t *testing.T) {
	fs := newTemplate(t)
	require.NoError(t, afero.WriteFile(fs, "/input/latin1.txt", []byte("Gr\xfc\xdfe [CamelCase]\n"), 0o644))
	s := newStager(t, fs, Options{Encoding: "iso-8859-1"})

	require.NoError(t, s.Stage(templateRoot, "/input/latin1.txt", "/stage"))
	assert.Equal(t, "Grüße [[CamelCase]]\n", readFile(t, fs, "/stage/data/pages/SomePage/revisions/00000001"))
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), Options{Encoding: "klingon-8"})
	var ue *types.UsageError
	require.ErrorAs(t, err, &ue)
}

func TestStage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, fs afero.Fs)
		page   string
		plugin string
		wantOp string
	}{
		{
			name:   "destination collision",
			setup:  func(t *testing.T, fs afero.Fs) { writeFile(t, fs, "/stage/data/old", "x") },
			page:   "/input/page.txt",
			wantOp: "copying template data",
		},
		{
			name:   "template without underlay",
			setup:  func(t *testing.T, fs afero.Fs) { require.NoError(t, fs.RemoveAll(filepath.Join(templateRoot, "underlay"))) },
			page:   "/input/page.txt",
			wantOp: "copying template underlay",
		},
		{
			name:   "missing page file",
			setup:  func(*testing.T, afero.Fs) {},
			page:   "/input/absent.txt",
			wantOp: "copying page",
		},
		{
			name:   "missing plugin source",
			setup:  func(*testing.T, afero.Fs) {},
			page:   "/input/page.txt",
			plugin: "/opt/plugins/absent.py",
			wantOp: "installing formatter plugin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTemplate(t)
			tt.setup(t, fs)
			s := newStager(t, fs, Options{PluginSource: tt.plugin})

			err := s.Stage(templateRoot, tt.page, "/stage")
			require.Error(t, err)
			var se *types.SetupError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantOp, se.Op)
		})
	}
}

// snapshot lists every path on fs.
func snapshot(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	var paths []string
	require.NoError(t, afero.Walk(fs, "/", func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}))
	return paths
}

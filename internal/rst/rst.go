// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rst implements the text_x-rst formatter plugin of the native
// engine. It turns wiki markup (headings, paragraphs, lists, tables,
// preformatted blocks, inline emphasis and links) into reStructuredText.
package rst

import (
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PluginName is the formatter plugin name, matching the staged plugin file
// text_x-rst.py.
const PluginName = "text_x-rst"

// underlines indexes heading adornment characters by level.
var underlines = []string{"=", "-", "~", "^", "\""}

var (
	headingRe = regexp.MustCompile(`^(=+)\s+(.+?)\s+(=+)\s*$`)
	ruleRe    = regexp.MustCompile(`^-{4,}\s*$`)
	listRe    = regexp.MustCompile(`^(\s+)(\*|\d+\.|[a-zA-Z]\.)\s+(.*)$`)
	tocRe     = regexp.MustCompile(`^<<TableOfContents(\(.*\))?>>$`)
	cellAttr  = regexp.MustCompile(`^<[^>]*>`)
	inlineRe  = regexp.MustCompile(
		`\{\{\{(.*?)\}\}\}` +
			"|`([^`]+)`" +
			`|\[\[([^\]|]+)(?:\|([^\]]*))?\]\]` +
			`|'''(.+?)'''` +
			`|''(.+?)''` +
			`|\^(.+?)\^` +
			`|,,(.+?),,` +
			`|<<BR>>`)
)

// Formatter renders one page body as reStructuredText.
type Formatter struct {
	pageURL func(string) string
}

// New returns a formatter that resolves internal links through pageURL.
// A nil pageURL leaves page names as link targets.
func New(pageURL func(string) string) *Formatter {
	if pageURL == nil {
		pageURL = func(name string) string { return name }
	}
	return &Formatter{pageURL: pageURL}
}

// Name returns PluginName.
func (f *Formatter) Name() string { return PluginName }

// FormatPage converts body and writes the document to w.
func (f *Formatter) FormatPage(w io.Writer, body []byte) error {
	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	lines, format := processingInstructions(strings.Split(text, "\n"))

	var doc string
	switch format {
	case "rst":
		doc = strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	case "plain":
		c := &converter{f: f}
		c.pre = lines
		c.inPre = true
		c.endPre()
		doc = c.document()
	default:
		c := &converter{f: f}
		for _, l := range lines {
			c.line(l)
		}
		doc = c.document()
	}
	_, err := io.WriteString(w, doc)
	return err
}

// processingInstructions strips the leading '#' lines of a page and
// returns the remaining lines with the value of any #format instruction.
func processingInstructions(lines []string) ([]string, string) {
	format := "wiki"
	i := 0
	for ; i < len(lines); i++ {
		l := lines[i]
		if !strings.HasPrefix(l, "#") {
			break
		}
		if fields := strings.Fields(l); len(fields) > 1 && fields[0] == "#format" {
			format = strings.ToLower(fields[1])
		}
	}
	return lines[i:], format
}

type blockKind int

const (
	blockNone blockKind = iota
	blockPara
	blockList
	blockTable
)

type listLevel struct {
	src    int // leading spaces in the source
	indent int // output indentation of the marker
	width  int // marker width including the trailing space
}

type converter struct {
	f      *Formatter
	blocks []string

	kind  blockKind
	para  []string
	items []string
	rows  [][]string

	levels    []listLevel
	lastDepth int

	inPre   bool
	preLang string
	pre     []string
}

func (c *converter) document() string {
	c.closeBlock()
	if c.inPre {
		c.endPre()
	}
	if len(c.blocks) == 0 {
		return ""
	}
	return strings.Join(c.blocks, "\n\n") + "\n"
}

func (c *converter) line(l string) {
	trimmed := strings.TrimSpace(l)

	if c.inPre {
		if trimmed == "}}}" {
			c.endPre()
			return
		}
		c.pre = append(c.pre, l)
		return
	}

	switch {
	case strings.HasPrefix(trimmed, "{{{") && !strings.Contains(trimmed[3:], "}}}"):
		c.closeBlock()
		c.inPre = true
		c.pre = nil
		c.preLang = ""
		if rest := strings.TrimPrefix(trimmed, "{{{"); strings.HasPrefix(rest, "#!") {
			if fields := strings.Fields(rest[2:]); len(fields) > 0 {
				c.preLang = fields[0]
			}
		} else if rest != "" {
			c.pre = append(c.pre, rest)
		}
	case strings.HasPrefix(l, "##"):
	case trimmed == "":
		c.closeBlock()
	case headingRe.MatchString(trimmed):
		m := headingRe.FindStringSubmatch(trimmed)
		if len(m[1]) != len(m[3]) {
			c.paragraph(trimmed)
			return
		}
		c.closeBlock()
		c.heading(len(m[1]), c.inline(m[2]))
	case ruleRe.MatchString(trimmed):
		c.closeBlock()
		c.blocks = append(c.blocks, "----")
	case tocRe.MatchString(trimmed):
		c.closeBlock()
		c.blocks = append(c.blocks, ".. contents::")
	case strings.HasPrefix(trimmed, "||"):
		if c.kind != blockTable {
			c.closeBlock()
			c.kind = blockTable
		}
		c.rows = append(c.rows, c.cells(trimmed))
	case listRe.MatchString(l):
		m := listRe.FindStringSubmatch(l)
		c.listItem(len(m[1]), m[2], c.inline(m[3]))
	case c.kind == blockList && strings.HasPrefix(l, " "):
		lvl := c.levels[len(c.levels)-1]
		c.items = append(c.items, strings.Repeat(" ", lvl.indent+lvl.width)+c.inline(trimmed))
	default:
		c.paragraph(trimmed)
	}
}

func (c *converter) paragraph(text string) {
	if c.kind != blockPara {
		c.closeBlock()
		c.kind = blockPara
	}
	c.para = append(c.para, c.inline(text))
}

func (c *converter) heading(level int, title string) {
	ch := underlines[min(level, len(underlines))-1]
	width := max(runewidth.StringWidth(title), 1)
	c.blocks = append(c.blocks, title+"\n"+strings.Repeat(ch, width))
}

func (c *converter) listItem(src int, marker, text string) {
	if c.kind != blockList {
		c.closeBlock()
		c.kind = blockList
		c.levels = nil
		c.lastDepth = 0
	}

	for len(c.levels) > 0 && c.levels[len(c.levels)-1].src > src {
		c.levels = c.levels[:len(c.levels)-1]
	}
	out := "-"
	if marker != "*" {
		out = "#."
	}
	if n := len(c.levels); n == 0 || c.levels[n-1].src < src {
		indent := 0
		if n > 0 {
			indent = c.levels[n-1].indent + c.levels[n-1].width
		}
		c.levels = append(c.levels, listLevel{src: src, indent: indent, width: len(out) + 1})
	}

	depth := len(c.levels)
	if len(c.items) > 0 && depth != c.lastDepth {
		c.items = append(c.items, "")
	}
	c.lastDepth = depth

	lvl := c.levels[depth-1]
	c.items = append(c.items, strings.Repeat(" ", lvl.indent)+out+" "+text)
}

func (c *converter) cells(row string) []string {
	row = strings.TrimPrefix(row, "||")
	row = strings.TrimSuffix(row, "||")
	parts := strings.Split(row, "||")
	cells := make([]string, len(parts))
	for i, p := range parts {
		p = cellAttr.ReplaceAllString(strings.TrimSpace(p), "")
		cells[i] = c.inline(strings.TrimSpace(p))
	}
	return cells
}

func (c *converter) closeBlock() {
	switch c.kind {
	case blockPara:
		c.blocks = append(c.blocks, strings.Join(c.para, "\n"))
		c.para = nil
	case blockList:
		c.blocks = append(c.blocks, strings.Join(c.items, "\n"))
		c.items = nil
		c.levels = nil
	case blockTable:
		c.blocks = append(c.blocks, listTable(c.rows))
		c.rows = nil
	}
	c.kind = blockNone
}

func (c *converter) endPre() {
	c.inPre = false
	lines := c.pre
	c.pre = nil
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return
	}
	head := "::"
	if c.preLang != "" {
		head = ".. code-block:: " + c.preLang
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString("\n")
		if strings.TrimSpace(l) != "" {
			b.WriteString("   " + l)
		}
	}
	c.blocks = append(c.blocks, b.String())
}

func listTable(rows [][]string) string {
	var b strings.Builder
	b.WriteString(".. list-table::\n")
	for i, row := range rows {
		for j, cell := range row {
			if j == 0 {
				if i == 0 {
					b.WriteString("\n")
				}
				b.WriteString("\n   * - " + cell)
				continue
			}
			b.WriteString("\n     - " + cell)
		}
	}
	return b.String()
}

func (c *converter) inline(s string) string {
	return inlineRe.ReplaceAllStringFunc(s, func(tok string) string {
		m := inlineRe.FindStringSubmatch(tok)
		switch {
		case m[1] != "":
			return "``" + m[1] + "``"
		case m[2] != "":
			return "``" + m[2] + "``"
		case m[3] != "":
			return c.link(strings.TrimSpace(m[3]), strings.TrimSpace(m[4]))
		case m[5] != "":
			return "**" + m[5] + "**"
		case m[6] != "":
			return "*" + m[6] + "*"
		case m[7] != "":
			return `\ :sup:` + "`" + m[7] + "`" + `\ `
		case m[8] != "":
			return `\ :sub:` + "`" + m[8] + "`" + `\ `
		}
		return ""
	})
}

func (c *converter) link(target, label string) string {
	if label == "" {
		label = target
	}
	url := target
	if !isExternal(target) {
		url = c.f.pageURL(target)
	}
	return "`" + label + " <" + url + ">`__"
}

func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:")
}

package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/indent"
	"github.com/kobzarvs/qindent/internal/lexer"
)

const blockScript = `
function next_line_indent(state, line, tab, tab_size, row)
  local ws = string.match(line, "^%s*")
  if string.match(line, "{%s*$") then
    return ws .. tab
  end
  return ws
end

function indent_for_open_brace(row, col)
  return string.match(get_line(row), "^%s*")
end
`

func load(t *testing.T, doc Document, src string, opts ...Option) *Model {
	t.Helper()
	m, err := LoadString(doc, "test.lua", src, opts...)
	if err != nil {
		t.Fatalf("LoadString error: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestCapabilitiesFollowDefinedFunctions(t *testing.T) {
	d := document.New("")
	m := load(t, d, blockScript)
	want := indent.CapNextLineIndent | indent.CapIndentForOpenBrace
	if got := m.Capabilities(); got != want {
		t.Fatalf("Capabilities = %v, want %v", got, want)
	}
	m.Close()
	if got := m.Capabilities(); got != 0 {
		t.Fatalf("Capabilities after Close = %v, want none", got)
	}
}

func TestNextLineIndent(t *testing.T) {
	d := document.New("  f {\n  g")
	m := load(t, d, blockScript)
	if got, ok := m.NextLineIndent(lexer.Start, "  f {", "\t", 4, 0); !ok || got != "  \t" {
		t.Fatalf("NextLineIndent = %q %v, want %q", got, ok, "  \t")
	}
	if got, ok := m.NextLineIndent(lexer.Start, "  g", "\t", 4, 1); !ok || got != "  " {
		t.Fatalf("NextLineIndent = %q %v, want two spaces", got, ok)
	}
	if got, ok := m.IndentForOpenBrace(document.Position{Row: 0, Col: 4}); !ok || got != "  " {
		t.Fatalf("IndentForOpenBrace = %q %v, want two spaces", got, ok)
	}
}

func TestNoValue(t *testing.T) {
	d := document.New("a")
	m := load(t, d, `
function next_line_indent() return nil end
function brace_indent(row) error("boom") end
function indent_for_open_brace() return 42 end
`)
	if _, ok := m.NextLineIndent(lexer.Start, "a", "  ", 2, 0); ok {
		t.Fatalf("nil result produced a value")
	}
	if _, ok := m.BraceIndent(0); ok {
		t.Fatalf("script error produced a value")
	}
	if _, ok := m.IndentForOpenBrace(document.Position{}); ok {
		t.Fatalf("number result produced a value")
	}
}

func TestCheckOutdent(t *testing.T) {
	d := document.New("")
	def := load(t, d, blockScript)
	if !def.CheckOutdent(lexer.Start, " ", "  }") {
		t.Fatalf("default CheckOutdent rejected a lone brace")
	}

	m := load(t, d, `
function check_outdent(state, line, input)
  return state == "start" and string.match(input, "^%s*end") ~= nil
end
`)
	if !m.Capabilities().Has(indent.CapCheckOutdent) {
		t.Fatalf("check_outdent not detected")
	}
	if !m.CheckOutdent(lexer.Start, "  ", "  end") {
		t.Fatalf("CheckOutdent(end) = false, want true")
	}
	if m.CheckOutdent(lexer.Start, " ", "  }") {
		t.Fatalf("script override ignored")
	}
	if m.CheckOutdent(lexer.DoubleQuoted, "  ", "  end") {
		t.Fatalf("state not passed to script")
	}
}

func TestHostFunctions(t *testing.T) {
	d := document.New("one\ntwo", document.WithIndent("\t", 8))
	m := load(t, d, `
function brace_indent(row)
  local line = get_line(row)
  if line == nil then return "none" end
  return line .. ":" .. line_count() .. ":" .. tab_string()
end
`)
	if got, _ := m.BraceIndent(1); got != "two:2:\t" {
		t.Fatalf("BraceIndent(1) = %q", got)
	}
	if got, _ := m.BraceIndent(5); got != "none" {
		t.Fatalf("BraceIndent(5) = %q, want none", got)
	}
}

func TestSandbox(t *testing.T) {
	d := document.New("")
	for _, src := range []string{
		`dofile("/etc/passwd")`,
		`loadstring("x = 1")()`,
		`os.exit(1)`,
		`io.write("x")`,
		`require("os")`,
	} {
		if _, err := LoadString(d, "evil.lua", src); err == nil {
			t.Fatalf("LoadString(%q) succeeded", src)
		}
	}
}

func TestTimeout(t *testing.T) {
	d := document.New("")
	m := load(t, d, `function brace_indent(row) while true do end end`, WithTimeout(20*time.Millisecond))
	if _, ok := m.BraceIndent(0); ok {
		t.Fatalf("runaway script produced a value")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.lua")
	if err := os.WriteFile(path, []byte(blockScript), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	d := document.New("")
	m, err := Load(d, path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	defer m.Close()
	if !m.Capabilities().Has(indent.CapNextLineIndent) {
		t.Fatalf("capabilities = %v", m.Capabilities())
	}
	if _, err := Load(d, filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatalf("Load of a missing file succeeded")
	}
}

func TestScriptDrivesEngine(t *testing.T) {
	d := document.New("f {\ng\n    }", document.WithIndent("  ", 2))
	m := load(t, d, blockScript)
	e := indent.New(d, m)
	if err := e.Reindent(document.Range{End: document.Position{Row: 2}}); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	if got, want := d.Text(), "f {\n  g\n}"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestEngineIgnoresNonWhitespaceIndent(t *testing.T) {
	d := document.New("a\nb", document.WithIndent("  ", 2))
	m := load(t, d, `function next_line_indent() return "x " end`)
	e := indent.New(d, m)
	for i := 0; i < 2; i++ {
		if err := e.Reindent(document.Range{End: document.Position{Row: 1}}); err != nil {
			t.Fatalf("Reindent error: %v", err)
		}
		if got := d.Text(); got != "a\nb" {
			t.Fatalf("pass %d: text = %q, want %q", i, got, "a\nb")
		}
	}
	if got := e.Stats().Skipped; got != 1 {
		t.Fatalf("skipped = %d, want 1", got)
	}
}

package brace

import (
	"testing"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/indent"
	"github.com/kobzarvs/qindent/internal/lexer"
)

func newModel(text string) (*document.Document, *Model) {
	tok := lexer.Tokenizer{Quotes: `"'`, LineComment: "#"}
	d := document.New(text, document.WithLexer(tok), document.WithIndent("  ", 2))
	return d, New(d, tok)
}

func TestNextLineIndent(t *testing.T) {
	d, m := newModel("f <- function(x) {\n  if (x) {\n  } else {\n  y\n\n  z(a,\n  s <- \"{\"\n  # {\n  }\n}")
	tests := []struct {
		row  int
		want string
	}{
		{0, "  "},
		{1, "    "},
		{2, "    "},
		{3, "  "},
		{4, "  "},
		{5, "    "},
		{6, "  "},
		{7, "  "},
		{8, "  "},
		{9, ""},
	}
	for _, tt := range tests {
		got, ok := m.NextLineIndent(d.State(tt.row), d.Line(tt.row), "  ", 2, tt.row)
		if !ok || got != tt.want {
			t.Fatalf("NextLineIndent(%d %q) = %q %v, want %q", tt.row, d.Line(tt.row), got, ok, tt.want)
		}
	}
}

func TestNextLineIndentBlankTop(t *testing.T) {
	_, m := newModel("\n\nx")
	if got, ok := m.NextLineIndent(lexer.Start, "", "  ", 2, 1); !ok || got != "" {
		t.Fatalf("NextLineIndent = %q %v, want empty", got, ok)
	}
}

func TestIndentForOpenBrace(t *testing.T) {
	_, m := newModel("  if (x) {\n  }\nf <- function(a,\n         b) {\n}")
	got, ok := m.IndentForOpenBrace(document.Position{Row: 0, Col: 9})
	if !ok || got != "  " {
		t.Fatalf("IndentForOpenBrace(0,9) = %q %v, want two spaces", got, ok)
	}
	got, ok = m.IndentForOpenBrace(document.Position{Row: 3, Col: 12})
	if !ok || got != "" {
		t.Fatalf("IndentForOpenBrace(3,12) = %q %v, want the header row's indent", got, ok)
	}
	if _, ok := m.IndentForOpenBrace(document.Position{Row: 9}); ok {
		t.Fatalf("IndentForOpenBrace out of range returned a value")
	}
}

func TestBraceIndent(t *testing.T) {
	_, m := newModel("  if (x)\n\n  f {\n    a\n  }")
	tests := []struct {
		row  int
		want string
	}{
		{0, "  "},
		{1, "  "},
		{2, "    "},
		{3, "    "},
		{4, "  "},
		{-1, ""},
	}
	for _, tt := range tests {
		if got, ok := m.BraceIndent(tt.row); !ok || got != tt.want {
			t.Fatalf("BraceIndent(%d) = %q %v, want %q", tt.row, got, ok, tt.want)
		}
	}
}

func TestEngineWithBraceModel(t *testing.T) {
	d, m := newModel("f <- function(x) {\nif (x) {\ny\n}\nelse\n{\nz\n}\n}")
	e := indent.New(d, m)
	if err := e.Reindent(document.Range{End: document.Position{Row: d.LineCount() - 1}}); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	want := "f <- function(x) {\n  if (x) {\n    y\n  }\n  else\n  {\n    z\n  }\n}"
	if got := d.Text(); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if err := e.Reindent(document.Range{End: document.Position{Row: d.LineCount() - 1}}); err != nil {
		t.Fatalf("second Reindent error: %v", err)
	}
	if got := d.Text(); got != want {
		t.Fatalf("second pass text = %q, want %q", got, want)
	}
}

func TestTypingBraceRealigns(t *testing.T) {
	d, m := newModel("g <- function() {\n  h(a,\n    b)\n      ")
	indent.New(d, m)
	if _, err := d.Insert(document.Position{Row: 3, Col: 6}, "{"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got := d.Line(3); got != "  {" {
		t.Fatalf("line3 = %q, want %q", got, "  {")
	}
}

func TestNextLineIndentAfterWrappedCall(t *testing.T) {
	d, m := newModel("  x <- h(a,\n         b)\n")
	if got, ok := m.NextLineIndent(d.State(1), d.Line(1), "  ", 2, 1); !ok || got != "  " {
		t.Fatalf("NextLineIndent = %q %v, want two spaces", got, ok)
	}
}

const gofmtSwitch = "package main\n\nfunc f(v int) {\n\tswitch v {\n\tcase 1:\n\t\tg()\n\tcase 2, 3:\n\tdefault:\n\t\th(v)\n\t}\n}\n"

func goEngine(text string, labels ...string) (*document.Document, *indent.Engine) {
	tok := lexer.Tokenizer{Quotes: `"'`, RawQuotes: "`", LineComment: "//", BlockComment: [2]string{"/*", "*/"}}
	d := document.New(text, document.WithLexer(tok), document.WithIndent("\t", 4))
	return d, indent.New(d, New(d, tok, WithCaseLabels(labels...)))
}

func TestCaseLabels(t *testing.T) {
	d, e := goEngine(gofmtSwitch, "case", "default")
	if err := e.Reindent(document.RowRange(0, d.LineCount()-1)); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	if got := d.Text(); got != gofmtSwitch {
		t.Fatalf("text = %q, want unchanged %q", got, gofmtSwitch)
	}

	d, e = goEngine("package main\n\nfunc f(v int) {\nswitch v {\ncase 1:\ng()\ncase 2, 3:\ndefault:\nh(v)\n}\n}\n", "case", "default")
	if err := e.Reindent(document.RowRange(0, d.LineCount()-1)); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	if got := d.Text(); got != gofmtSwitch {
		t.Fatalf("text = %q, want %q", got, gofmtSwitch)
	}
}

func TestCaseLabelsOff(t *testing.T) {
	d, e := goEngine("switch v {\ncase 1:\ng()\n}")
	if err := e.Reindent(document.RowRange(0, 3)); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	if got, want := d.Text(), "switch v {\n\tcase 1:\n\tg()\n}"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestIsLabel(t *testing.T) {
	m := New(document.New(""), nil, WithCaseLabels("case", "default"))
	for line, want := range map[string]bool{
		"\tcase 1:":       true,
		"default:":        true,
		"  default :":     true,
		"\tcases := 1":    false,
		"defaultValue(x)": false,
		"x := case1":      false,
	} {
		if got := m.isLabel(line); got != want {
			t.Fatalf("isLabel(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestReindentKeepsCRLF(t *testing.T) {
	text := "f {\r\n\tx\r\n\t\r\n}\r\n"
	d, e := goEngine(text)
	if err := e.Reindent(document.RowRange(0, d.LineCount()-1)); err != nil {
		t.Fatalf("Reindent error: %v", err)
	}
	if got := d.Text(); got != text {
		t.Fatalf("text = %q, want %q", got, text)
	}
}

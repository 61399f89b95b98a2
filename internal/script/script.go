// Package script runs indent models written in Lua. A script defines any of
// the global functions
//
//	next_line_indent(state, line, tab, tab_size, row) -> string
//	indent_for_open_brace(row, col)                   -> string
//	brace_indent(row)                                 -> string
//	check_outdent(state, line, input)                 -> boolean
//
// and the model declares exactly the capabilities whose functions exist. Rows
// and columns are zero-based. Scripts can read the document through
// get_line(row), line_count() and tab_string(). A script error or a nil
// result means "no value" for that call.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/indent"
	"github.com/kobzarvs/qindent/internal/lexer"
	"github.com/kobzarvs/qindent/internal/logger"
)

// DefaultTimeout bounds one call into the script.
const DefaultTimeout = 200 * time.Millisecond

var ErrClosed = errors.New("script: model closed")

// Document is the read-only view exposed to scripts.
type Document interface {
	Line(row int) string
	LineCount() int
	TabString() string
}

var hooks = []struct {
	name string
	cap  indent.Capability
}{
	{"next_line_indent", indent.CapNextLineIndent},
	{"indent_for_open_brace", indent.CapIndentForOpenBrace},
	{"brace_indent", indent.CapBraceIndent},
	{"check_outdent", indent.CapCheckOutdent},
}

type Model struct {
	indent.Base
	L       *lua.LState
	doc     Document
	name    string
	caps    indent.Capability
	timeout time.Duration
	closed  bool
}

type Option func(*Model)

func WithTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// Load runs the script at path and returns the model it defines.
func Load(doc Document, path string, opts ...Option) (*Model, error) {
	m := newModel(doc, path, opts)
	if err := m.L.DoFile(path); err != nil {
		m.Close()
		return nil, fmt.Errorf("load indent script %s: %w", path, err)
	}
	m.detectCapabilities()
	return m, nil
}

// LoadString is Load for an in-memory script; name is used in messages.
func LoadString(doc Document, name, src string, opts ...Option) (*Model, error) {
	m := newModel(doc, name, opts)
	if err := m.L.DoString(src); err != nil {
		m.Close()
		return nil, fmt.Errorf("load indent script %s: %w", name, err)
	}
	m.detectCapabilities()
	return m, nil
}

func newModel(doc Document, name string, opts []Option) *Model {
	m := &Model{
		L:       newState(),
		doc:     doc,
		name:    name,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.L.SetGlobal("get_line", m.L.NewFunction(m.getLine))
	m.L.SetGlobal("line_count", m.L.NewFunction(m.lineCount))
	m.L.SetGlobal("tab_string", m.L.NewFunction(m.tabString))
	return m
}

// newState opens only the base, table, string and math libraries and removes
// the loaders that reach the file system.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (m *Model) detectCapabilities() {
	for _, h := range hooks {
		if m.L.GetGlobal(h.name).Type() == lua.LTFunction {
			m.caps |= h.cap
		}
	}
	logger.Debug("indent script loaded", "script", m.name, "capabilities", m.caps.String())
}

func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.L.Close()
}

func (m *Model) Capabilities() indent.Capability {
	if m.closed {
		return 0
	}
	return m.caps
}

func (m *Model) NextLineIndent(state lexer.State, line, tab string, tabSize, row int) (string, bool) {
	return m.callString("next_line_indent",
		lua.LString(state), lua.LString(line), lua.LString(tab), lua.LNumber(tabSize), lua.LNumber(row))
}

func (m *Model) IndentForOpenBrace(pos document.Position) (string, bool) {
	return m.callString("indent_for_open_brace", lua.LNumber(pos.Row), lua.LNumber(pos.Col))
}

func (m *Model) BraceIndent(row int) (string, bool) {
	return m.callString("brace_indent", lua.LNumber(row))
}

func (m *Model) CheckOutdent(state lexer.State, line, input string) bool {
	if !m.Capabilities().Has(indent.CapCheckOutdent) {
		return indent.CheckOutdent(state, line, input)
	}
	v, err := m.call("check_outdent", lua.LString(state), lua.LString(line), lua.LString(input))
	if err != nil {
		return false
	}
	return lua.LVAsBool(v)
}

func (m *Model) callString(fn string, args ...lua.LValue) (string, bool) {
	v, err := m.call(fn, args...)
	if err != nil {
		return "", false
	}
	s, ok := v.(lua.LString)
	if !ok {
		if v != lua.LNil {
			logger.Warn("indent script returned a non-string", "script", m.name, "func", fn, "type", v.Type().String())
		}
		return "", false
	}
	return string(s), true
}

// call invokes a global function in protected mode and returns its first
// result.
func (m *Model) call(fn string, args ...lua.LValue) (v lua.LValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("indent script panicked", "script", m.name, "func", fn, "panic", r)
			v, err = lua.LNil, fmt.Errorf("lua panic: %v", r)
		}
	}()
	if m.closed {
		return lua.LNil, ErrClosed
	}
	f := m.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("script %s: %s is not a function", m.name, fn)
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	m.L.SetContext(ctx)
	defer m.L.RemoveContext()

	if cerr := m.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...); cerr != nil {
		logger.Warn("indent script failed", "script", m.name, "func", fn, "error", cerr)
		return lua.LNil, cerr
	}
	v = m.L.Get(-1)
	m.L.Pop(1)
	return v, nil
}

func (m *Model) getLine(L *lua.LState) int {
	row := L.CheckInt(1)
	if row < 0 || row >= m.doc.LineCount() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(m.doc.Line(row)))
	return 1
}

func (m *Model) lineCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.doc.LineCount()))
	return 1
}

func (m *Model) tabString(L *lua.LState) int {
	L.Push(lua.LString(m.doc.TabString()))
	return 1
}

var _ indent.Model = (*Model)(nil)

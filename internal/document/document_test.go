package document

import (
	"errors"
	"testing"

	"github.com/kobzarvs/qindent/internal/lexer"
)

func TestReplaceWithinLine(t *testing.T) {
	d := New("    foo\nbar")
	if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 4}}, "  "); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if got := d.Line(0); got != "  foo" {
		t.Fatalf("line0 = %q, want %q", got, "  foo")
	}
	if got := d.Line(1); got != "bar" {
		t.Fatalf("line1 = %q, want %q", got, "bar")
	}
}

func TestReplaceAcrossLines(t *testing.T) {
	d := New("one\ntwo\nthree\nfour")
	if err := d.Replace(Range{Start: Position{0, 1}, End: Position{2, 2}}, "X\nY"); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if got, want := d.Text(), "oX\nYree\nfour"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestReplaceInvalidRange(t *testing.T) {
	d := New("abc")
	cases := []Range{
		{Start: Position{0, 0}, End: Position{0, 4}},
		{Start: Position{1, 0}, End: Position{1, 0}},
		{Start: Position{0, 2}, End: Position{0, 1}},
		{Start: Position{-1, 0}, End: Position{0, 0}},
	}
	for _, r := range cases {
		if err := d.Replace(r, "x"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("Replace(%v) error = %v, want ErrInvalidRange", r, err)
		}
	}
	if d.Text() != "abc" {
		t.Fatalf("text changed to %q", d.Text())
	}
}

func TestReplaceSameTextIsNoop(t *testing.T) {
	d := New("  x")
	v := d.Version()
	if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 2}}, "  "); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if d.Version() != v {
		t.Fatalf("version = %d, want %d", d.Version(), v)
	}
	if d.CanUndo() {
		t.Fatalf("no-op replace recorded an undo step")
	}
}

func TestInsertReturnsEnd(t *testing.T) {
	d := New("ab")
	end, err := d.Insert(Position{0, 1}, "x\nyz")
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if end != (Position{1, 2}) {
		t.Fatalf("end = %v, want {1 2}", end)
	}
	if got, want := d.Text(), "ax\nyzb"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestInsertHooksRunInOrder(t *testing.T) {
	d := New("")
	var calls []string
	d.OnInsert(func(pos Position, text string) error {
		calls = append(calls, "first:"+text)
		return nil
	})
	d.OnInsert(func(pos Position, text string) error {
		calls = append(calls, "second:"+d.Line(pos.Row))
		return nil
	})
	if _, err := d.Insert(Position{0, 0}, "}"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:}" || calls[1] != "second:}" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestInsertHookErrorRollsBack(t *testing.T) {
	d := New("  a")
	boom := errors.New("boom")
	d.OnInsert(func(pos Position, text string) error {
		if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 2}}, ""); err != nil {
			return err
		}
		return boom
	})
	if _, err := d.Insert(Position{0, 3}, "b"); !errors.Is(err, boom) {
		t.Fatalf("Insert error = %v, want boom", err)
	}
	if got := d.Text(); got != "  a" {
		t.Fatalf("text = %q, want %q", got, "  a")
	}
	if d.CanUndo() {
		t.Fatalf("rolled back insert recorded an undo step")
	}
}

func TestUndoGroupsInsertAndHookEdits(t *testing.T) {
	d := New("    ")
	d.OnInsert(func(pos Position, text string) error {
		return d.Replace(Range{Start: Position{0, 0}, End: Position{0, 4}}, "")
	})
	if _, err := d.Insert(Position{0, 4}, "}"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got := d.Line(0); got != "}" {
		t.Fatalf("line0 = %q, want %q", got, "}")
	}
	var undone []bool
	d.OnUndo(func(redo bool) { undone = append(undone, redo) })

	at, ok := d.Undo()
	if !ok {
		t.Fatalf("Undo returned false")
	}
	if at != (Position{0, 4}) {
		t.Fatalf("undo at = %v, want {0 4}", at)
	}
	if got := d.Line(0); got != "    " {
		t.Fatalf("undo line0 = %q, want %q", got, "    ")
	}
	if _, ok := d.Redo(); !ok {
		t.Fatalf("Redo returned false")
	}
	if got := d.Line(0); got != "}" {
		t.Fatalf("redo line0 = %q, want %q", got, "}")
	}
	if len(undone) != 2 || undone[0] || !undone[1] {
		t.Fatalf("undo hooks = %v, want [false true]", undone)
	}
}

func TestHistoryLimit(t *testing.T) {
	d := New("", WithHistoryLimit(2))
	for _, s := range []string{"a", "b", "c"} {
		if _, err := d.Insert(Position{0, d.LineLen(0)}, s); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}
	d.Undo()
	d.Undo()
	if _, ok := d.Undo(); ok {
		t.Fatalf("third undo succeeded with limit 2")
	}
	if got := d.Text(); got != "a" {
		t.Fatalf("text = %q, want %q", got, "a")
	}
}

func TestStateCacheInvalidation(t *testing.T) {
	d := New("x <- \"open\nstill\nclosed\"\ny")
	if got := d.State(0); got != lexer.DoubleQuoted {
		t.Fatalf("state0 = %q, want %q", got, lexer.DoubleQuoted)
	}
	if got := d.State(3); got != lexer.Start {
		t.Fatalf("state3 = %q, want %q", got, lexer.Start)
	}
	if d.cachedStates() != 4 {
		t.Fatalf("cached = %d, want 4", d.cachedStates())
	}

	// Closing the string on row 0 changes every state below it.
	if err := d.Replace(Range{Start: Position{0, 10}, End: Position{0, 10}}, "\""); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if d.cachedStates() != 0 {
		t.Fatalf("cached after edit = %d, want 0", d.cachedStates())
	}
	if got := d.State(0); got != lexer.Start {
		t.Fatalf("state0 = %q, want %q", got, lexer.Start)
	}
	if got := d.State(2); got != lexer.DoubleQuoted {
		t.Fatalf("state2 = %q, want %q", got, lexer.DoubleQuoted)
	}

	// Edits below a row keep its cached state.
	if err := d.Replace(Range{Start: Position{3, 0}, End: Position{3, 0}}, "z"); err != nil {
		t.Fatalf("Replace error: %v", err)
	}
	if d.cachedStates() != 3 {
		t.Fatalf("cached after lower edit = %d, want 3", d.cachedStates())
	}
}

func TestStateOutOfRange(t *testing.T) {
	d := New("\"")
	if got := d.State(-1); got != lexer.Start {
		t.Fatalf("state(-1) = %q", got)
	}
	if got := d.State(5); got != lexer.Start {
		t.Fatalf("state(5) = %q", got)
	}
}

func TestTransactRollback(t *testing.T) {
	d := New("a\nb\nc")
	err := d.Transact(func() error {
		if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 0}}, "  "); err != nil {
			return err
		}
		return d.Replace(Range{Start: Position{9, 0}, End: Position{9, 0}}, "  ")
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Transact error = %v, want ErrInvalidRange", err)
	}
	if got := d.Text(); got != "a\nb\nc" {
		t.Fatalf("text = %q, want unchanged", got)
	}
}

func TestTransactSingleUndoStep(t *testing.T) {
	d := New("a\nb")
	err := d.Transact(func() error {
		if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 0}}, "  "); err != nil {
			return err
		}
		return d.Replace(Range{Start: Position{1, 0}, End: Position{1, 0}}, "  ")
	})
	if err != nil {
		t.Fatalf("Transact error: %v", err)
	}
	d.Undo()
	if got := d.Text(); got != "a\nb" {
		t.Fatalf("text = %q, want %q", got, "a\nb")
	}
	if d.CanUndo() {
		t.Fatalf("transaction produced more than one undo step")
	}
}

func TestTransactNetZeroRecordsNothing(t *testing.T) {
	d := New("}")
	err := d.Transact(func() error {
		if err := d.Replace(Range{Start: Position{0, 0}, End: Position{0, 0}}, "  "); err != nil {
			return err
		}
		return d.Replace(Range{Start: Position{0, 0}, End: Position{0, 2}}, "")
	})
	if err != nil {
		t.Fatalf("Transact error: %v", err)
	}
	if d.CanUndo() {
		t.Fatalf("net-zero transaction recorded an undo step")
	}
}

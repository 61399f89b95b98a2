package document

type snapshot struct {
	lines [][]rune
	at    Position
}

type history struct {
	limit int
	undo  []snapshot
	redo  []snapshot
}

type txnFrame struct {
	lines   [][]rune
	version uint64
	at      Position
	touched bool
}

func (d *Document) begin() {
	d.txn = append(d.txn, txnFrame{lines: d.lines, version: d.version})
}

func (d *Document) touch(at Position) {
	if len(d.txn) > 0 && !d.txn[0].touched {
		d.txn[0].at = at
		d.txn[0].touched = true
	}
}

func (d *Document) end() {
	frame := d.txn[len(d.txn)-1]
	d.txn = d.txn[:len(d.txn)-1]
	if len(d.txn) == 0 && frame.version != d.version && !sameLines(frame.lines, d.lines) {
		d.recordUndo(snapshot{lines: frame.lines, at: frame.at})
	}
}

// sameLines reports whether a step ended where it began, as when a reindent
// pass rewrites a prefix and then realigns it back.
func sameLines(a, b [][]rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}

func (d *Document) rollback() {
	frame := d.txn[len(d.txn)-1]
	d.txn = d.txn[:len(d.txn)-1]
	if frame.version != d.version {
		d.restore(frame.lines)
	}
}

// Transact runs fn as one undo step. If fn fails every change it made is
// rolled back and the error is returned.
func (d *Document) Transact(fn func() error) error {
	d.begin()
	committed := false
	defer func() {
		if !committed {
			d.rollback()
		}
	}()
	if err := fn(); err != nil {
		return err
	}
	committed = true
	d.end()
	return nil
}

func (d *Document) restore(lines [][]rune) {
	d.lines = lines
	d.invalidate(0)
	d.version++
}

func (d *Document) recordUndo(s snapshot) {
	if d.hist.limit <= 0 {
		return
	}
	d.hist.undo = append(d.hist.undo, s)
	if len(d.hist.undo) > d.hist.limit {
		d.hist.undo = d.hist.undo[len(d.hist.undo)-d.hist.limit:]
	}
	d.hist.redo = nil
}

func (d *Document) CanUndo() bool { return len(d.hist.undo) > 0 }

func (d *Document) CanRedo() bool { return len(d.hist.redo) > 0 }

// Undo reverts the last undo step, runs the post-undo hooks and returns where
// the reverted edit started.
func (d *Document) Undo() (Position, bool) {
	if len(d.txn) > 0 || len(d.hist.undo) == 0 {
		return Position{}, false
	}
	i := len(d.hist.undo) - 1
	prev := d.hist.undo[i]
	d.hist.undo = d.hist.undo[:i]
	d.hist.redo = append(d.hist.redo, snapshot{lines: d.lines, at: prev.at})

	d.restore(prev.lines)
	d.fireUndo(false)
	return prev.at, true
}

func (d *Document) Redo() (Position, bool) {
	if len(d.txn) > 0 || len(d.hist.redo) == 0 {
		return Position{}, false
	}
	i := len(d.hist.redo) - 1
	next := d.hist.redo[i]
	d.hist.redo = d.hist.redo[:i]

	if d.hist.limit > 0 {
		d.hist.undo = append(d.hist.undo, snapshot{lines: d.lines, at: next.at})
		if len(d.hist.undo) > d.hist.limit {
			d.hist.undo = d.hist.undo[len(d.hist.undo)-d.hist.limit:]
		}
	}

	d.restore(next.lines)
	d.fireUndo(true)
	return next.at, true
}

package document

// InsertHook runs after Insert applied its text, inside the same undo step.
// Returning an error aborts the input cycle and rolls the insert back.
type InsertHook func(pos Position, text string) error

// UndoHook runs after Undo (redo false) or Redo (redo true).
type UndoHook func(redo bool)

// OnInsert appends h to the post-insert hooks. Hooks run in registration order.
func (d *Document) OnInsert(h InsertHook) {
	if h != nil {
		d.insertHooks = append(d.insertHooks, h)
	}
}

// OnUndo appends h to the post-undo hooks.
func (d *Document) OnUndo(h UndoHook) {
	if h != nil {
		d.undoHooks = append(d.undoHooks, h)
	}
}

func (d *Document) fireUndo(redo bool) {
	for _, h := range d.undoHooks {
		h(redo)
	}
}

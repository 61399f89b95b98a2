package indent

import (
	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/lexer"
	"github.com/kobzarvs/qindent/internal/logger"
)

// AutoOutdent snaps a brace that starts row to its structural partner. A
// closing brace takes the indent the model gives its opener; an opening brace
// takes the indent of the block above it. Only row is modified, and only
// its leading whitespace.
func AutoOutdent(doc Document, model Model, state lexer.State, row int) error {
	if row <= 0 || row >= doc.LineCount() {
		logger.Debug("realign skipped", "row", row, "reason", "row out of range")
		return nil
	}
	caps := model.Capabilities()

	if ws, ok := braceAfterIndent(doc.Line(row), '}'); ok {
		column := ws + 1
		open, found := doc.FindMatchingBracket(document.Position{Row: row, Col: column})
		switch {
		case !caps.Has(CapIndentForOpenBrace):
			logger.Debug("realign skipped", "row", row, "reason", "model has no indent-for-open-brace")
		case !found:
			logger.Debug("realign skipped", "row", row, "state", state, "reason", "unresolved bracket")
		case open.Row == row:
			logger.Debug("realign skipped", "row", row, "reason", "same-row match")
		default:
			if indent, ok := model.IndentForOpenBrace(open); ok && checkIndent(row, indent) {
				span := document.Range{
					Start: document.Position{Row: row},
					End:   document.Position{Row: row, Col: column - 1},
				}
				if err := doc.Replace(span, indent); err != nil {
					return err
				}
			}
		}
	}

	// Re-read: the closing case may have rewritten the row.
	if ws, ok := braceAfterIndent(doc.Line(row), '{'); ok {
		if !caps.Has(CapBraceIndent) {
			logger.Debug("realign skipped", "row", row, "reason", "model has no brace-indent")
			return nil
		}
		if closing, found := doc.FindMatchingBracket(document.Position{Row: row, Col: ws + 1}); found && closing.Row == row {
			logger.Debug("realign skipped", "row", row, "reason", "same-row match")
			return nil
		}
		if indent, ok := model.BraceIndent(row - 1); ok && checkIndent(row, indent) {
			span := document.Range{
				Start: document.Position{Row: row},
				End:   document.Position{Row: row, Col: ws},
			}
			return doc.Replace(span, indent)
		}
	}
	return nil
}

func checkIndent(row int, indent string) bool {
	if validIndent(indent) {
		return true
	}
	logger.Warn("realign skipped", "row", row, "reason", "model returned non-whitespace indent", "indent", indent)
	return false
}

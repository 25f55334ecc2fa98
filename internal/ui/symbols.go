package ui

// Status glyphs for command output.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolWarning = "⚠"
	SymbolPending = "○"
	SymbolDot     = "●"
	SymbolArrow   = "→"
)

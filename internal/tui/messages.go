package tui

import "github.com/Veraticus/receipt-tracker/internal/model"

// pageLoadedMsg carries one page of receipts from storage. gen is the
// list generation the page was requested for; a sort toggle bumps the
// generation so in-flight pages from the old sort can be discarded.
type pageLoadedMsg struct {
	receipts []model.Receipt
	offset   int
	gen      int
}

// loadFailedMsg carries a storage error.
type loadFailedMsg struct {
	err error
}

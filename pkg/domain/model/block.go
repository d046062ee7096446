package model

// TextBlock is one ordered unit of raw extracted text: a page of running
// text, or a pre-joined table/spreadsheet row. Produced by the external
// document parsing capability.
type TextBlock struct {
	// PageNumber is 1-based. Spreadsheet rows report the page of their sheet
	// position (usually 1).
	PageNumber int
	Text       string
	// Tabular marks table and spreadsheet content, which is classified as
	// DATA severity instead of being scanned for clause markers
	Tabular bool
	// Label optionally carries a pre-assigned identifier for tabular blocks
	// (e.g. "Sheet1-R4" or "TBL-2-1")
	Label string
}

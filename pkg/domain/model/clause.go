package model

import "github.com/skyelectric/reglens/pkg/domain/types"

// Clause is a labeled, addressable unit of document text. Label is the
// human-readable identifier (e.g. "1.1" or "TBL-3-2") and is unique only
// within its document. Clauses are immutable once created.
type Clause struct {
	ID         int64
	DocumentID int64
	Label      string
	Text       string
	PageNumber int
	Severity   types.Severity
}

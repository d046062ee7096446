package model

import (
	"time"

	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Document is an uploaded file owned by exactly one session. IDs are
// monotonic per session and never reused.
type Document struct {
	ID         int64
	Filename   string
	DocType    types.DocType
	Version    string
	UploadedAt time.Time
}

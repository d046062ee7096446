package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
)

// BlockExtractor is the external document parsing capability: it turns raw
// file bytes into ordered text blocks with page metadata. Binary format
// handling (PDF/DOCX/XLSX internals) lives behind this boundary.
type BlockExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) ([]model.TextBlock, error)
}

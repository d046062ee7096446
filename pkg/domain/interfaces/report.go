package interfaces

import (
	"context"
	"io"

	"github.com/skyelectric/reglens/pkg/domain/model"
)

// ReportRenderer turns an assembled report into a presentable document.
// Rendering (PDF layout etc.) is an external collaborator; the core only
// assembles rows.
type ReportRenderer interface {
	// Render writes the rendered report to w
	Render(ctx context.Context, w io.Writer, report *model.Report) error

	// ContentType returns the MIME type of the rendered output
	ContentType() string
}

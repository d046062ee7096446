package http

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
)

// CSVRenderer writes an assessment report as a flat CSV table, one row per
// judged clause
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (x *CSVRenderer) ContentType() string {
	return "text/csv"
}

func (x *CSVRenderer) Render(ctx context.Context, w io.Writer, report *model.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"assessment_id", "customer_doc", "regulation_doc", "clause", "status", "risk", "confidence", "reasoning", "evidence"}
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write report header")
	}

	assessmentID := strconv.FormatInt(report.AssessmentID, 10)
	for _, row := range report.Rows {
		record := []string{
			assessmentID,
			report.CustomerDoc,
			report.RegulationDoc,
			row.ClauseLabel,
			row.Status.String(),
			row.Risk.String(),
			strconv.FormatFloat(row.Confidence, 'f', 2, 64),
			row.Reasoning,
			row.Evidence,
		}
		if err := cw.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write report row", goerr.V("clause", row.ClauseLabel))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush report")
	}
	return nil
}

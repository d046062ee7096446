package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Report assembles the tabular view of an assessment. Rendering is the
// caller's concern.
func (uc *UseCases) Report(ctx context.Context, sid types.SessionID, assessmentID int64) (*model.Report, error) {
	sid = sid.Normalize()

	assessment, err := uc.repo.Assessment().Get(ctx, sid, assessmentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("assessment_id", assessmentID))
	}

	results, err := uc.repo.Assessment().ListResults(ctx, sid, assessmentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list results", goerr.V("assessment_id", assessmentID))
	}

	report := &model.Report{
		AssessmentID: assessment.ID,
		CreatedAt:    assessment.CreatedAt,
	}
	if doc, err := uc.repo.Document().Get(ctx, sid, assessment.CustomerDocID); err == nil {
		report.CustomerDoc = doc.Filename
	}
	if doc, err := uc.repo.Document().Get(ctx, sid, assessment.RegulationDocID); err == nil {
		report.RegulationDoc = doc.Filename
	}

	for _, r := range results {
		label := fmt.Sprintf("Clause %d", r.CustomerClauseID)
		if clause, err := uc.repo.Clause().Get(ctx, sid, r.CustomerClauseID); err == nil {
			label = clause.Label
		}
		report.Rows = append(report.Rows, model.ReportRow{
			ClauseLabel: label,
			Status:      r.Status,
			Risk:        r.Risk,
			Reasoning:   r.Reasoning,
			Evidence:    r.EvidenceText,
			Confidence:  r.Confidence,
		})
	}

	return report, nil
}

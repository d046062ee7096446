package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/errutil"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

// AssessResult reports what an assessment run produced
type AssessResult struct {
	Assessment *model.Assessment
	// ResultsCount is the number of successfully judged clauses. Clauses
	// with no retrievable match or a failed store write are excluded.
	ResultsCount int
}

// Assess runs a compliance assessment of every clause of the customer
// document against the regulation document. Per-clause judgments run
// concurrently, bounded by MaxConcurrentJudgments; a per-clause failure
// never aborts the batch. Judgment-capability failures persist a default
// verdict so the gap stays visible in the results.
func (uc *UseCases) Assess(ctx context.Context, sid types.SessionID, customerDocID, regulationDocID int64, useKB bool) (*AssessResult, error) {
	sid = sid.Normalize()

	clauses, err := uc.repo.Clause().ListByDocument(ctx, sid, customerDocID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list customer clauses", goerr.V("document_id", customerDocID))
	}
	if len(clauses) == 0 {
		return nil, goerr.Wrap(types.ErrEmptyInput, "customer document has no clauses",
			goerr.V("document_id", customerDocID),
		)
	}

	assessment, err := uc.repo.Assessment().Create(ctx, sid, &model.Assessment{
		CustomerDocID:   customerDocID,
		RegulationDocID: regulationDocID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create assessment")
	}

	sem := semaphore.NewWeighted(uc.cfg.MaxConcurrentJudgments)
	var count atomic.Int64

	var eg errgroup.Group
	for _, clause := range clauses {
		eg.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			if uc.assessClause(ctx, sid, assessment, clause, regulationDocID, useKB) {
				count.Add(1)
			}
			return nil
		})
	}
	// tasks never return errors; Wait is a join
	_ = eg.Wait()

	logging.From(ctx).Info("assessment completed",
		"session_id", sid,
		"assessment_id", assessment.ID,
		"clauses", len(clauses),
		"results", count.Load(),
	)
	return &AssessResult{Assessment: assessment, ResultsCount: int(count.Load())}, nil
}

// assessClause judges one customer clause and reports whether a result was
// persisted
func (uc *UseCases) assessClause(ctx context.Context, sid types.SessionID, assessment *model.Assessment, clause *model.Clause, regulationDocID int64, useKB bool) bool {
	hits := uc.retrieve(ctx, sid, clause.Text, uc.cfg.AssessTopK, useKB, regulationDocID)
	if len(hits) == 0 {
		return false
	}

	best := hits[0]
	regClause, err := uc.repo.Clause().FindByLabel(ctx, sid, regulationDocID, best.Record.Metadata.ClauseLabel)
	if err != nil {
		// window sub-chunks carry synthetic "-part" labels that do not
		// resolve to a stored clause; treat as no match
		return false
	}

	verdict, err := uc.judge.Judge(ctx, clause.Text, regClause.Text)
	if err != nil {
		if errors.Is(err, types.ErrJudgmentParse) {
			verdict = model.DefaultVerdict("Failed to interpret AI response: " + err.Error())
		} else {
			verdict = model.DefaultVerdict("AI analysis failed: " + err.Error())
		}
		_ = errutil.Handle(ctx, err, "judgment failed, recording default verdict")
	}

	if _, err := uc.repo.Assessment().AddResult(ctx, sid, &model.AssessmentResult{
		AssessmentID:       assessment.ID,
		CustomerClauseID:   clause.ID,
		RegulationClauseID: regClause.ID,
		Status:             verdict.Status,
		Risk:               verdict.Risk,
		Reasoning:          verdict.Reasoning,
		EvidenceText:       verdict.EvidenceText,
		Confidence:         verdict.Confidence,
	}); err != nil {
		_ = errutil.Handle(ctx, err, "failed to store assessment result")
		return false
	}
	return true
}

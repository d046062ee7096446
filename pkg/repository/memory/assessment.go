package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

type assessmentRepository struct {
	store *Store
}

func copyAssessment(a *model.Assessment) *model.Assessment {
	copied := *a
	return &copied
}

func copyResult(r *model.AssessmentResult) *model.AssessmentResult {
	copied := *r
	return &copied
}

// deleteAssessmentLocked removes an assessment and its results. Callers must
// hold the store write lock.
func deleteAssessmentLocked(data *sessionData, id int64) {
	for rid, res := range data.results {
		if res.AssessmentID == id {
			delete(data.results, rid)
		}
	}
	delete(data.assessments, id)
}

func (r *assessmentRepository) Create(ctx context.Context, sid types.SessionID, assessment *model.Assessment) (*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	if _, exists := data.documents[assessment.CustomerDocID]; !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "customer document not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, assessment.CustomerDocID))
	}
	if _, exists := data.documents[assessment.RegulationDocID]; !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "regulation document not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, assessment.RegulationDocID))
	}

	data.assessmentCounter++
	created := copyAssessment(assessment)
	created.ID = data.assessmentCounter
	created.CreatedAt = r.store.now()

	data.assessments[created.ID] = created
	return copyAssessment(created), nil
}

func (r *assessmentRepository) Get(ctx context.Context, sid types.SessionID, id int64) (*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	assessment, exists := data.assessments[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "assessment not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.AssessmentIDKey, id))
	}
	return copyAssessment(assessment), nil
}

func (r *assessmentRepository) ListByDocument(ctx context.Context, sid types.SessionID, docID int64) ([]*model.Assessment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	var assessments []*model.Assessment
	for _, a := range data.assessments {
		if a.CustomerDocID == docID || a.RegulationDocID == docID {
			assessments = append(assessments, copyAssessment(a))
		}
	}
	sort.Slice(assessments, func(i, j int) bool { return assessments[i].ID < assessments[j].ID })
	return assessments, nil
}

func (r *assessmentRepository) Delete(ctx context.Context, sid types.SessionID, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	if _, exists := data.assessments[id]; !exists {
		return goerr.Wrap(types.ErrNotFound, "assessment not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.AssessmentIDKey, id))
	}
	deleteAssessmentLocked(data, id)
	return nil
}

func (r *assessmentRepository) AddResult(ctx context.Context, sid types.SessionID, result *model.AssessmentResult) (*model.AssessmentResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	if _, exists := data.assessments[result.AssessmentID]; !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "result references unknown assessment",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.AssessmentIDKey, result.AssessmentID))
	}

	data.resultCounter++
	created := copyResult(result)
	created.ID = data.resultCounter

	data.results[created.ID] = created
	return copyResult(created), nil
}

func (r *assessmentRepository) ListResults(ctx context.Context, sid types.SessionID, assessmentID int64) ([]*model.AssessmentResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	var results []*model.AssessmentResult
	for _, res := range data.results {
		if res.AssessmentID == assessmentID {
			results = append(results, copyResult(res))
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

type clauseRepository struct {
	store *Store
}

func copyClause(c *model.Clause) *model.Clause {
	copied := *c
	return &copied
}

func (r *clauseRepository) Create(ctx context.Context, sid types.SessionID, clause *model.Clause) (*model.Clause, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	if _, exists := data.documents[clause.DocumentID]; !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "clause references unknown document",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, clause.DocumentID))
	}

	data.clauseCounter++
	created := copyClause(clause)
	created.ID = data.clauseCounter

	data.clauses[created.ID] = created
	return copyClause(created), nil
}

func (r *clauseRepository) Get(ctx context.Context, sid types.SessionID, id int64) (*model.Clause, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	clause, exists := data.clauses[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "clause not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.ClauseIDKey, id))
	}
	return copyClause(clause), nil
}

func (r *clauseRepository) ListByDocument(ctx context.Context, sid types.SessionID, docID int64) ([]*model.Clause, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	var clauses []*model.Clause
	for _, c := range data.clauses {
		if c.DocumentID == docID {
			clauses = append(clauses, copyClause(c))
		}
	}
	sort.Slice(clauses, func(i, j int) bool { return clauses[i].ID < clauses[j].ID })
	return clauses, nil
}

func (r *clauseRepository) FindByLabel(ctx context.Context, sid types.SessionID, docID int64, label string) (*model.Clause, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	for _, c := range data.clauses {
		if c.DocumentID == docID && c.Label == label {
			return copyClause(c), nil
		}
	}
	return nil, goerr.Wrap(types.ErrNotFound, "clause label not found",
		goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, docID), goerr.V("label", label))
}

package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

type documentRepository struct {
	store *Store
}

func copyDocument(d *model.Document) *model.Document {
	copied := *d
	return &copied
}

func (r *documentRepository) Create(ctx context.Context, sid types.SessionID, doc *model.Document) (*model.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	data.docCounter++

	created := copyDocument(doc)
	created.ID = data.docCounter
	created.UploadedAt = r.store.now()
	if created.Version == "" {
		created.Version = "1.0"
	}

	data.documents[created.ID] = created
	return copyDocument(created), nil
}

func (r *documentRepository) Get(ctx context.Context, sid types.SessionID, id int64) (*model.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	doc, exists := data.documents[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "document not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, id))
	}
	return copyDocument(doc), nil
}

func (r *documentRepository) List(ctx context.Context, sid types.SessionID) ([]*model.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	docs := make([]*model.Document, 0, len(data.documents))
	for _, d := range data.documents {
		docs = append(docs, copyDocument(d))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (r *documentRepository) UpdateType(ctx context.Context, sid types.SessionID, id int64, docType types.DocType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	doc, exists := data.documents[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "document not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, id))
	}
	if !docType.IsValid() {
		return goerr.New("invalid document type", goerr.V("doc_type", docType))
	}
	doc.DocType = docType
	return nil
}

// Delete cascades to the document's clauses, to assessments referencing it on
// either side, and to those assessments' results.
func (r *documentRepository) Delete(ctx context.Context, sid types.SessionID, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	if _, exists := data.documents[id]; !exists {
		return goerr.Wrap(types.ErrNotFound, "document not found",
			goerr.V(types.SessionIDKey, sid), goerr.V(types.DocumentIDKey, id))
	}
	delete(data.documents, id)

	for cid, c := range data.clauses {
		if c.DocumentID == id {
			delete(data.clauses, cid)
		}
	}

	for aid, a := range data.assessments {
		if a.CustomerDocID == id || a.RegulationDocID == id {
			deleteAssessmentLocked(data, aid)
		}
	}
	return nil
}

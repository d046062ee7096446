package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

// UploadResult reports what an upload produced
type UploadResult struct {
	Document   *model.Document
	ChunkCount int
}

// Upload parses the file, stores its clauses in the session, and ingests
// them into the vector index. The target namespace defaults to the session's
// own; a caller may override it to feed the permanent knowledge base. A file
// yielding zero clauses still creates the document (parse trouble degrades,
// it does not fail the upload).
func (uc *UseCases) Upload(ctx context.Context, sid types.SessionID, filename string, docType types.DocType, version string, data []byte, nsOverride types.Namespace) (*UploadResult, error) {
	sid = sid.Normalize()

	blocks, err := uc.blocks.Extract(ctx, filename, data)
	if err != nil {
		if !errors.Is(err, types.ErrParse) {
			return nil, goerr.Wrap(err, "failed to extract text blocks", goerr.V("filename", filename))
		}
		logging.From(ctx).Warn("document parse failed, storing without clauses",
			"filename", filename,
			"session_id", sid,
			"error", err.Error(),
		)
		blocks = nil
	}

	if version == "" {
		version = "1.0"
	}
	doc, err := uc.repo.Document().Create(ctx, sid, &model.Document{
		Filename: filename,
		DocType:  docType,
		Version:  version,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store document", goerr.V("filename", filename))
	}

	clauses := uc.extractor.Extract(blocks)
	if len(clauses) == 0 {
		logging.From(ctx).Warn("no clauses extracted",
			"filename", filename,
			"session_id", sid,
		)
		return &UploadResult{Document: doc}, nil
	}

	ns := nsOverride
	if ns == "" {
		ns = types.SessionNamespace(sid)
	}
	sourceType := types.SourceDoc
	if ns == types.NamespacePermanent {
		sourceType = types.SourceKB
	}

	records := make([]*model.VectorRecord, 0, len(clauses))
	for _, c := range clauses {
		c.DocumentID = doc.ID
		stored, err := uc.repo.Clause().Create(ctx, sid, c)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to store clause",
				goerr.V("document_id", doc.ID),
				goerr.V("label", c.Label),
			)
		}

		records = append(records, &model.VectorRecord{
			ID:   model.NewVectorRecordID(),
			Text: stored.Text,
			Metadata: model.VectorMetadata{
				ClauseLabel: stored.Label,
				DocID:       doc.ID,
				DocName:     doc.Filename,
				PageNumber:  stored.PageNumber,
				SourceType:  sourceType,
			},
		})
	}

	count, err := uc.index.Ingest(ctx, ns, records)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to ingest vectors",
			goerr.V("document_id", doc.ID),
			goerr.V("namespace", ns),
		)
	}

	logging.From(ctx).Info("document uploaded",
		"session_id", sid,
		"document_id", doc.ID,
		"filename", filename,
		"doc_type", docType,
		"clauses", len(clauses),
		"vectors", count,
	)
	return &UploadResult{Document: doc, ChunkCount: count}, nil
}

// ListDocuments returns all documents of the session
func (uc *UseCases) ListDocuments(ctx context.Context, sid types.SessionID) ([]*model.Document, error) {
	return uc.repo.Document().List(ctx, sid.Normalize())
}

// DeleteDocument removes a document with its clauses, assessments, and
// results
func (uc *UseCases) DeleteDocument(ctx context.Context, sid types.SessionID, docID int64) error {
	return uc.repo.Document().Delete(ctx, sid.Normalize(), docID)
}

// UpdateDocumentType reclassifies a document
func (uc *UseCases) UpdateDocumentType(ctx context.Context, sid types.SessionID, docID int64, docType types.DocType) error {
	return uc.repo.Document().UpdateType(ctx, sid.Normalize(), docID, docType)
}

package usecase

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/fusion"
	"github.com/skyelectric/reglens/pkg/utils/errutil"
)

// retrieve searches the session namespace and, when useKB is set, the
// permanent namespace, and fuses the two ranked lists with the knowledge
// base weighted higher. When docID is nonzero, fusion is skipped: hits are
// filtered to that document and returned in raw rank order. Per-source
// search failures degrade to an empty list for that source only.
func (uc *UseCases) retrieve(ctx context.Context, sid types.SessionID, query string, topK int, useKB bool, docID int64) []*model.ScoredRecord {
	sessionHits := uc.searchSource(ctx, types.SessionNamespace(sid), query, topK)

	var kbHits []*model.ScoredRecord
	if useKB {
		// fetch deeper from the KB to capture table and value chunks
		kbHits = uc.searchSource(ctx, types.NamespacePermanent, query, topK*2)
	}

	if docID != 0 {
		var filtered []*model.ScoredRecord
		for _, hit := range append(sessionHits, kbHits...) {
			if hit.Record.Metadata.DocID == docID {
				filtered = append(filtered, hit)
			}
		}
		if len(filtered) > topK {
			filtered = filtered[:topK]
		}
		return filtered
	}

	fused := uc.fuser.Fuse([]fusion.Source{
		{Weight: uc.cfg.KBWeight, Records: kbHits},
		{Weight: 1.0, Records: sessionHits},
	}, topK+5)
	return fused
}

func (uc *UseCases) searchSource(ctx context.Context, ns types.Namespace, query string, limit int) []*model.ScoredRecord {
	hits, err := uc.index.Query(ctx, ns, query, limit)
	if err != nil {
		// degraded retrieval: this source contributes nothing
		_ = errutil.Handle(ctx, err, "vector search failed, skipping source")
		return nil
	}
	return hits
}

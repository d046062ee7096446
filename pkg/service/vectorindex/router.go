package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/extract"
)

// recordIDSpace seeds deterministic record IDs so re-ingesting the same
// clause overwrites its previous vectors instead of duplicating them.
var recordIDSpace = uuid.MustParse("7b0c2c6e-7f43-4f6a-9a1f-3a9be65ab1d4")

// Router sits between text and the vector engine: it embeds clause text,
// splits oversized clauses into windows, and scopes every operation to a
// namespace.
type Router struct {
	engine    interfaces.VectorEngine
	llm       gollem.LLMClient
	splitter  *extract.Splitter
	dimension int
}

// RouterOption configures the router
type RouterOption func(*Router)

// WithSplitter overrides the embedding window splitter
func WithSplitter(s *extract.Splitter) RouterOption {
	return func(r *Router) {
		r.splitter = s
	}
}

// WithDimension overrides the embedding dimension requested from the LLM
func WithDimension(dim int) RouterOption {
	return func(r *Router) {
		if dim > 0 {
			r.dimension = dim
		}
	}
}

// NewRouter creates an index router backed by the given engine and
// embedding client
func NewRouter(engine interfaces.VectorEngine, llm gollem.LLMClient, opts ...RouterOption) *Router {
	r := &Router{
		engine:    engine,
		llm:       llm,
		splitter:  extract.NewSplitter(),
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ingest embeds the records and stores them under the namespace, returning
// the number of vectors written. Records whose text exceeds the embedding
// threshold are expanded into overlapping windows labeled "<label>-part<k>";
// the clause record in the store stays whole.
func (r *Router) Ingest(ctx context.Context, ns types.Namespace, records []*model.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	expanded := r.expand(ns, records)
	texts := make([]string, len(expanded))
	for i, rec := range expanded {
		texts[i] = rec.Text
	}

	embeddings, err := r.llm.GenerateEmbedding(ctx, r.dimension, texts)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to generate embeddings",
			goerr.V("namespace", ns),
			goerr.V("count", len(texts)),
		)
	}
	if len(embeddings) != len(expanded) {
		return 0, goerr.New("embedding count mismatch",
			goerr.V("expected", len(expanded)),
			goerr.V("actual", len(embeddings)),
		)
	}

	for i, rec := range expanded {
		rec.Embedding = embeddings[i]
	}

	if err := r.engine.Upsert(ctx, ns, expanded); err != nil {
		return 0, engineErr(err, "failed to upsert vectors", ns)
	}
	return len(expanded), nil
}

// expand window-splits oversized records and assigns deterministic IDs
func (r *Router) expand(ns types.Namespace, records []*model.VectorRecord) []*model.VectorRecord {
	var out []*model.VectorRecord
	for _, rec := range records {
		if !r.splitter.NeedsSplit(rec.Text) {
			copied := *rec
			copied.ID = recordID(ns, copied.Metadata, 0)
			out = append(out, &copied)
			continue
		}

		for k, window := range r.splitter.Split(rec.Text) {
			part := *rec
			part.Text = window
			part.Metadata.ClauseLabel = fmt.Sprintf("%s-part%d", rec.Metadata.ClauseLabel, k+1)
			part.ID = recordID(ns, part.Metadata, k+1)
			out = append(out, &part)
		}
	}
	return out
}

func recordID(ns types.Namespace, meta model.VectorMetadata, part int) model.VectorRecordID {
	name := fmt.Sprintf("%s|%s|%s|%s|%d", ns, meta.SourceType, meta.DocName, meta.ClauseLabel, part)
	return model.VectorRecordID(uuid.NewSHA1(recordIDSpace, []byte(name)).String())
}

// Query embeds the query text and searches the namespace
func (r *Router) Query(ctx context.Context, ns types.Namespace, query string, limit int) ([]*model.ScoredRecord, error) {
	embeddings, err := r.llm.GenerateEmbedding(ctx, r.dimension, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V("namespace", ns))
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned for query")
	}

	hits, err := r.engine.Search(ctx, ns, embeddings[0], limit)
	if err != nil {
		return nil, engineErr(err, "vector search failed", ns)
	}
	return hits, nil
}

// Clear drops all vectors in the namespace
func (r *Router) Clear(ctx context.Context, ns types.Namespace) error {
	if err := r.engine.Drop(ctx, ns); err != nil {
		return engineErr(err, "failed to drop namespace", ns)
	}
	return nil
}

// engineErr marks engine failures with the generic vector engine sentinel.
// Dimension mismatches stay on their own sentinel so callers can tell a
// misconfigured embedding size apart from an engine outage.
func engineErr(err error, msg string, ns types.Namespace) error {
	if errors.Is(err, types.ErrDimensionMismatch) {
		return goerr.Wrap(err, msg, goerr.V("namespace", ns))
	}
	return goerr.Wrap(types.ErrVectorEngine, msg,
		goerr.V("namespace", ns),
		goerr.V("cause", err),
	)
}

// Stats reports the vector count per namespace
func (r *Router) Stats(ctx context.Context) (map[types.Namespace]int, error) {
	return r.engine.Stats(ctx)
}

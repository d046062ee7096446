package vectorindex_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/extract"
	"github.com/skyelectric/reglens/pkg/service/vectorindex"
)

type mockLLMSession struct{}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{"ok"}}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) { return nil, nil }

func (s *mockLLMSession) AppendHistory(*gollem.History) error { return nil }

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
	embedCalls          int
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	c.embedCalls++
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	out := make([][]float64, len(input))
	for i, text := range input {
		// crude but deterministic: direction depends on the leading character
		v := make([]float64, dimension)
		if len(text) > 0 {
			v[int(text[0])%dimension] = 1.0
		}
		out[i] = v
	}
	return out, nil
}

func record(label, docName, text string, src types.SourceType) *model.VectorRecord {
	return &model.VectorRecord{
		ID:   model.NewVectorRecordID(),
		Text: text,
		Metadata: model.VectorMetadata{
			ClauseLabel: label,
			DocName:     docName,
			SourceType:  src,
		},
	}
}

func TestEngineNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(3)

	a := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	a.Embedding = []float64{1, 0, 0}
	b := record("2.1", "doc.pdf", "beta", types.SourceDoc)
	b.Embedding = []float64{1, 0, 0}

	gt.NoError(t, engine.Upsert(ctx, types.NamespacePermanent, []*model.VectorRecord{a})).Required()
	gt.NoError(t, engine.Upsert(ctx, types.SessionNamespace("s1"), []*model.VectorRecord{b})).Required()

	hits, err := engine.Search(ctx, types.NamespacePermanent, []float64{1, 0, 0}, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].Record.Metadata.ClauseLabel).Equal("1.1")

	hits, err = engine.Search(ctx, types.SessionNamespace("s1"), []float64{1, 0, 0}, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].Record.Metadata.ClauseLabel).Equal("2.1")
}

func TestEngineSearchOrdering(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(3)

	near := record("1.1", "reg.pdf", "near", types.SourceKB)
	near.Embedding = []float64{1, 0, 0}
	far := record("1.2", "reg.pdf", "far", types.SourceKB)
	far.Embedding = []float64{0, 1, 0}
	mid := record("1.3", "reg.pdf", "mid", types.SourceKB)
	mid.Embedding = []float64{1, 1, 0}

	gt.NoError(t, engine.Upsert(ctx, types.NamespacePermanent, []*model.VectorRecord{far, mid, near})).Required()

	hits, err := engine.Search(ctx, types.NamespacePermanent, []float64{1, 0, 0}, 2)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(2)
	gt.Value(t, hits[0].Record.Metadata.ClauseLabel).Equal("1.1")
	gt.Value(t, hits[1].Record.Metadata.ClauseLabel).Equal("1.3")
	gt.Bool(t, hits[0].Score > hits[1].Score).True()
}

func TestEngineDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(3)

	bad := record("1.1", "reg.pdf", "bad", types.SourceKB)
	bad.Embedding = []float64{1, 0}

	err := engine.Upsert(ctx, types.NamespacePermanent, []*model.VectorRecord{bad})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrDimensionMismatch)).True()

	_, err = engine.Search(ctx, types.NamespacePermanent, []float64{1, 0}, 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrDimensionMismatch)).True()
}

func TestEngineDrop(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(3)

	a := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	a.Embedding = []float64{1, 0, 0}
	b := record("2.1", "doc.pdf", "beta", types.SourceDoc)
	b.Embedding = []float64{0, 1, 0}

	ns := types.SessionNamespace("gone")
	gt.NoError(t, engine.Upsert(ctx, types.NamespacePermanent, []*model.VectorRecord{a})).Required()
	gt.NoError(t, engine.Upsert(ctx, ns, []*model.VectorRecord{b})).Required()

	gt.NoError(t, engine.Drop(ctx, ns))

	stats, err := engine.Stats(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, stats[types.NamespacePermanent]).Equal(1)
	gt.Value(t, stats[ns]).Equal(0)
}

func TestRouterIngestIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(4)
	llm := &mockLLMClient{}
	router := vectorindex.NewRouter(engine, llm, vectorindex.WithDimension(4))

	recs := []*model.VectorRecord{
		record("1.1", "reg.pdf", "alpha clause text", types.SourceKB),
		record("1.2", "reg.pdf", "beta clause text", types.SourceKB),
	}
	count, err := router.Ingest(ctx, types.NamespacePermanent, recs)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(2)

	// same clauses arrive again with fresh UUIDs; the index must not grow
	again := []*model.VectorRecord{
		record("1.1", "reg.pdf", "alpha clause text", types.SourceKB),
		record("1.2", "reg.pdf", "beta clause text", types.SourceKB),
	}
	_, err = router.Ingest(ctx, types.NamespacePermanent, again)
	gt.NoError(t, err).Required()

	stats, err := router.Stats(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, stats[types.NamespacePermanent]).Equal(2)
}

func TestRouterSplitsOversizedClauses(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(4)
	llm := &mockLLMClient{}
	splitter := extract.NewSplitter(
		extract.WithChunkSize(50),
		extract.WithOverlap(10),
		extract.WithThreshold(100),
	)
	router := vectorindex.NewRouter(engine, llm,
		vectorindex.WithDimension(4),
		vectorindex.WithSplitter(splitter),
	)

	long := record("4.2", "reg.pdf", strings.Repeat("x", 120), types.SourceKB)
	count, err := router.Ingest(ctx, types.NamespacePermanent, []*model.VectorRecord{long})
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(3)

	stats, err := router.Stats(ctx)
	gt.NoError(t, err).Required()
	gt.Bool(t, stats[types.NamespacePermanent] > 1).True()

	hits, err := router.Query(ctx, types.NamespacePermanent, "x marks the spot", 10)
	gt.NoError(t, err).Required()
	gt.Bool(t, len(hits) > 1).True()
	gt.Value(t, hits[0].Record.Metadata.ClauseLabel).Equal("4.2-part1")
}

func TestRouterQueryEmbedsOnce(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(4)
	llm := &mockLLMClient{}
	router := vectorindex.NewRouter(engine, llm, vectorindex.WithDimension(4))

	rec := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	_, err := router.Ingest(ctx, types.NamespacePermanent, []*model.VectorRecord{rec})
	gt.NoError(t, err).Required()
	gt.Value(t, llm.embedCalls).Equal(1)

	_, err = router.Query(ctx, types.NamespacePermanent, "alpha", 5)
	gt.NoError(t, err).Required()
	gt.Value(t, llm.embedCalls).Equal(2)
}

func TestRouterEmbeddingError(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(4)
	llm := &mockLLMClient{
		generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	router := vectorindex.NewRouter(engine, llm, vectorindex.WithDimension(4))

	rec := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	_, err := router.Ingest(ctx, types.NamespacePermanent, []*model.VectorRecord{rec})
	gt.Error(t, err)
}

// failingEngine errors on every operation
type failingEngine struct {
	err error
}

func (e *failingEngine) Upsert(ctx context.Context, ns types.Namespace, records []*model.VectorRecord) error {
	return e.err
}

func (e *failingEngine) Search(ctx context.Context, ns types.Namespace, vector []float64, limit int) ([]*model.ScoredRecord, error) {
	return nil, e.err
}

func (e *failingEngine) Drop(ctx context.Context, ns types.Namespace) error {
	return e.err
}

func (e *failingEngine) Stats(ctx context.Context) (map[types.Namespace]int, error) {
	return nil, e.err
}

func TestRouterMarksEngineFailures(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLMClient{}
	router := vectorindex.NewRouter(&failingEngine{err: errors.New("storage offline")}, llm, vectorindex.WithDimension(4))

	rec := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	_, err := router.Ingest(ctx, types.NamespacePermanent, []*model.VectorRecord{rec})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrVectorEngine)).True()

	_, err = router.Query(ctx, types.NamespacePermanent, "alpha", 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrVectorEngine)).True()

	err = router.Clear(ctx, types.NamespacePermanent)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrVectorEngine)).True()
}

func TestRouterKeepsDimensionMismatchDistinct(t *testing.T) {
	ctx := context.Background()
	engine := vectorindex.NewEngine(4)
	llm := &mockLLMClient{
		generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			out := make([][]float64, len(input))
			for i := range input {
				out[i] = []float64{1.0, 0.0} // wrong size for the engine
			}
			return out, nil
		},
	}
	router := vectorindex.NewRouter(engine, llm, vectorindex.WithDimension(4))

	rec := record("1.1", "reg.pdf", "alpha", types.SourceKB)
	_, err := router.Ingest(ctx, types.NamespacePermanent, []*model.VectorRecord{rec})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrDimensionMismatch)).True()
	gt.Bool(t, errors.Is(err, types.ErrVectorEngine)).False()
}

package usecase

import (
	"context"
	"time"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/chat"
	"github.com/skyelectric/reglens/pkg/service/extract"
	"github.com/skyelectric/reglens/pkg/service/fusion"
	"github.com/skyelectric/reglens/pkg/service/judge"
)

// Index is the namespace-scoped vector index surface the use cases consume
type Index interface {
	Ingest(ctx context.Context, ns types.Namespace, records []*model.VectorRecord) (int, error)
	Query(ctx context.Context, ns types.Namespace, query string, limit int) ([]*model.ScoredRecord, error)
	Clear(ctx context.Context, ns types.Namespace) error
	Stats(ctx context.Context) (map[types.Namespace]int, error)
}

// Config holds the retrieval and orchestration tuning knobs
type Config struct {
	// FusionK is the RRF rank-smoothing constant
	FusionK int

	// KBWeight is the RRF weight applied to knowledge base hits; session
	// uploads always weigh 1.0
	KBWeight float64

	// AssessTopK is the retrieval depth per customer clause during an
	// assessment
	AssessTopK int

	// ChatTopK is the retrieval depth of the single-source chat path
	ChatTopK int

	// ChatDualTopK is the retrieval depth per source in the dual-branch
	// chat path
	ChatDualTopK int

	// MaxConcurrentJudgments bounds in-flight judgment calls during one
	// assessment
	MaxConcurrentJudgments int64

	// SessionTTL is the inactivity window after which a session is evicted
	SessionTTL time.Duration

	// SweepInterval is the eviction sweep tick
	SweepInterval time.Duration
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{
		FusionK:                fusion.DefaultK,
		KBWeight:               1.5,
		AssessTopK:             8,
		ChatTopK:               20,
		ChatDualTopK:           4,
		MaxConcurrentJudgments: 10,
		SessionTTL:             15 * time.Minute,
		SweepInterval:          time.Minute,
	}
}

// UseCases wires the domain services into the operations the controllers
// expose
type UseCases struct {
	repo      interfaces.Repository
	index     Index
	extractor *extract.Extractor
	blocks    interfaces.BlockExtractor
	judge     judge.Service
	chat      chat.Service
	fuser     *fusion.Fuser
	cfg       Config
	now       func() time.Time
}

// Option configures UseCases
type Option func(*UseCases)

// WithConfig overrides the default tuning
func WithConfig(cfg Config) Option {
	return func(uc *UseCases) {
		uc.cfg = cfg
	}
}

// WithBlockExtractor overrides the document parsing capability
func WithBlockExtractor(x interfaces.BlockExtractor) Option {
	return func(uc *UseCases) {
		uc.blocks = x
	}
}

// WithClock overrides the time source for eviction tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the use case layer
func New(repo interfaces.Repository, index Index, judgeSvc judge.Service, chatSvc chat.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		index:     index,
		extractor: extract.New(),
		blocks:    extract.NewRegistry(),
		judge:     judgeSvc,
		chat:      chatSvc,
		cfg:       DefaultConfig(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.fuser = fusion.New(uc.cfg.FusionK)
	return uc
}

// Config returns the active tuning
func (uc *UseCases) Config() Config {
	return uc.cfg
}

// IndexStats reports the vector count per namespace, for diagnostics
func (uc *UseCases) IndexStats(ctx context.Context) (map[types.Namespace]int, error) {
	return uc.index.Stats(ctx)
}

// Package fusion merges ranked retrieval lists from multiple sources into a
// single ranking using weighted Reciprocal Rank Fusion.
package fusion

import (
	"sort"

	"github.com/skyelectric/reglens/pkg/domain/model"
)

// DefaultK is the standard RRF rank-smoothing constant. It prevents top
// ranks from dominating the combined score.
const DefaultK = 60

// Source is one ranked retrieval list with a weight applied to every rank
// contribution from this source.
type Source struct {
	Weight  float64
	Records []*model.ScoredRecord
}

// Fuser combines ranked lists with weighted RRF
type Fuser struct {
	k int
}

// New creates a fuser with the given rank constant. Non-positive values
// fall back to DefaultK.
func New(k int) *Fuser {
	if k <= 0 {
		k = DefaultK
	}
	return &Fuser{k: k}
}

type fused struct {
	record *model.VectorRecord
	score  float64
	seq    int
}

// Fuse merges the sources and returns up to limit records by descending
// combined score. Records sharing a semantic identity accumulate score from
// every source they appear in; the record payload kept is the first one
// seen. Ties break by first appearance, so the ordering is deterministic
// for identical inputs.
func (f *Fuser) Fuse(sources []Source, limit int) []*model.ScoredRecord {
	merged := map[model.IdentityKey]*fused{}
	seq := 0

	for _, src := range sources {
		weight := src.Weight
		if weight <= 0 {
			weight = 1.0
		}
		for rank, hit := range src.Records {
			contribution := weight * (1.0 / float64(f.k+rank+1))

			key := hit.Record.Identity()
			if entry, ok := merged[key]; ok {
				entry.score += contribution
				continue
			}
			merged[key] = &fused{
				record: hit.Record,
				score:  contribution,
				seq:    seq,
			}
			seq++
		}
	}

	results := make([]*fused, 0, len(merged))
	for _, entry := range merged {
		results = append(results, entry)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].seq < results[j].seq
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	out := make([]*model.ScoredRecord, len(results))
	for i, entry := range results {
		out[i] = &model.ScoredRecord{Record: entry.record, Score: entry.score}
	}
	return out
}

package fusion_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/fusion"
)

func hit(label, docName string, src types.SourceType, score float64) *model.ScoredRecord {
	return &model.ScoredRecord{
		Record: &model.VectorRecord{
			ID:   model.NewVectorRecordID(),
			Text: "text of " + label,
			Metadata: model.VectorMetadata{
				ClauseLabel: label,
				DocName:     docName,
				SourceType:  src,
			},
		},
		Score: score,
	}
}

func TestFuseWeightBoostsSource(t *testing.T) {
	f := fusion.New(60)

	kb := fusion.Source{
		Weight: 1.5,
		Records: []*model.ScoredRecord{
			hit("K-1", "kb.pdf", types.SourceKB, 0.9),
		},
	}
	doc := fusion.Source{
		Weight: 1.0,
		Records: []*model.ScoredRecord{
			hit("D-1", "doc.pdf", types.SourceDoc, 0.95),
		},
	}

	// both records sit at rank 0; the weighted source must win
	results := f.Fuse([]fusion.Source{doc, kb}, 10)
	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Record.Metadata.ClauseLabel).Equal("K-1")
	gt.Bool(t, results[0].Score > results[1].Score).True()
}

func TestFuseDeduplicatesByIdentity(t *testing.T) {
	f := fusion.New(60)

	// the same logical clause retrieved by two queries
	a := hit("1.1", "reg.pdf", types.SourceKB, 0.9)
	b := hit("1.1", "reg.pdf", types.SourceKB, 0.7)
	other := hit("2.2", "reg.pdf", types.SourceKB, 0.8)

	results := f.Fuse([]fusion.Source{
		{Weight: 1.0, Records: []*model.ScoredRecord{a, other}},
		{Weight: 1.0, Records: []*model.ScoredRecord{b}},
	}, 10)

	gt.Array(t, results).Length(2)
	// duplicate accumulates rank contributions from both lists and outranks
	// the single-list record
	gt.Value(t, results[0].Record.Metadata.ClauseLabel).Equal("1.1")

	want := 1.0/61.0 + 1.0/61.0
	gt.Value(t, results[0].Score).Equal(want)
}

func TestFuseRankMonotonicity(t *testing.T) {
	f := fusion.New(60)

	var records []*model.ScoredRecord
	for i := 0; i < 5; i++ {
		records = append(records, hit(fmt.Sprintf("1.%d", i+1), "reg.pdf", types.SourceKB, 1.0-float64(i)*0.1))
	}

	results := f.Fuse([]fusion.Source{{Weight: 1.0, Records: records}}, 0)
	gt.Array(t, results).Length(5)
	for i := 1; i < len(results); i++ {
		gt.Bool(t, results[i-1].Score > results[i].Score).True()
	}
	gt.Value(t, results[0].Record.Metadata.ClauseLabel).Equal("1.1")
}

func TestFuseTieBreakIsFirstSeen(t *testing.T) {
	f := fusion.New(60)

	// two different clauses at the same rank in two equally weighted lists
	// score identically; the one seen first stays first
	results := f.Fuse([]fusion.Source{
		{Weight: 1.0, Records: []*model.ScoredRecord{hit("A-1", "a.pdf", types.SourceKB, 0.5)}},
		{Weight: 1.0, Records: []*model.ScoredRecord{hit("B-1", "b.pdf", types.SourceDoc, 0.5)}},
	}, 10)

	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Record.Metadata.ClauseLabel).Equal("A-1")
	gt.Value(t, results[1].Record.Metadata.ClauseLabel).Equal("B-1")
	gt.Value(t, results[0].Score).Equal(results[1].Score)
}

func TestFuseLimit(t *testing.T) {
	f := fusion.New(60)

	var records []*model.ScoredRecord
	for i := 0; i < 8; i++ {
		records = append(records, hit(fmt.Sprintf("1.%d", i+1), "reg.pdf", types.SourceKB, 1.0))
	}

	results := f.Fuse([]fusion.Source{{Weight: 1.0, Records: records}}, 3)
	gt.Array(t, results).Length(3)
}

func TestFuseDefaultK(t *testing.T) {
	f := fusion.New(0)

	results := f.Fuse([]fusion.Source{
		{Weight: 1.0, Records: []*model.ScoredRecord{hit("1.1", "reg.pdf", types.SourceKB, 1.0)}},
	}, 10)

	gt.Array(t, results).Length(1)
	gt.Value(t, results[0].Score).Equal(1.0 / 61.0)
}

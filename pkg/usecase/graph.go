package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Graph builds the node/edge view of an assessment: one node per regulation
// clause, one node per judged customer clause, and edges carrying the
// verdict status.
func (uc *UseCases) Graph(ctx context.Context, sid types.SessionID, assessmentID int64) (*model.Graph, error) {
	sid = sid.Normalize()

	assessment, err := uc.repo.Assessment().Get(ctx, sid, assessmentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("assessment_id", assessmentID))
	}

	results, err := uc.repo.Assessment().ListResults(ctx, sid, assessmentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list results", goerr.V("assessment_id", assessmentID))
	}

	graph := &model.Graph{}

	regClauses, err := uc.repo.Clause().ListByDocument(ctx, sid, assessment.RegulationDocID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list regulation clauses")
	}
	for _, rc := range regClauses {
		graph.Nodes = append(graph.Nodes, model.GraphNode{
			ID:         fmt.Sprintf("reg_%d", rc.ID),
			Label:      rc.Label,
			Type:       model.GraphNodeRegulation,
			DocID:      assessment.RegulationDocID,
			PageNumber: rc.PageNumber,
			Text:       truncate(rc.Text, 100),
		})
	}

	for _, r := range results {
		node := model.GraphNode{
			ID:        fmt.Sprintf("cust_%d", r.CustomerClauseID),
			Label:     fmt.Sprintf("%d", r.CustomerClauseID),
			Type:      model.GraphNodeCustomer,
			DocID:     assessment.CustomerDocID,
			Status:    r.Status,
			Risk:      r.Risk,
			Reasoning: r.Reasoning,
			Evidence:  r.EvidenceText,
		}
		if clause, err := uc.repo.Clause().Get(ctx, sid, r.CustomerClauseID); err == nil {
			node.Label = clause.Label
			node.PageNumber = clause.PageNumber
		}
		graph.Nodes = append(graph.Nodes, node)

		graph.Edges = append(graph.Edges, model.GraphEdge{
			From:   fmt.Sprintf("cust_%d", r.CustomerClauseID),
			To:     fmt.Sprintf("reg_%d", r.RegulationClauseID),
			Status: r.Status,
		})
	}

	return graph, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

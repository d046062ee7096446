package model

import "github.com/skyelectric/reglens/pkg/domain/types"

// GraphNodeType distinguishes regulation and customer nodes
type GraphNodeType string

const (
	GraphNodeRegulation GraphNodeType = "regulation"
	GraphNodeCustomer   GraphNodeType = "customer"
)

// GraphNode is one node of the assessment graph. Regulation nodes carry the
// clause position; customer nodes additionally carry the verdict.
type GraphNode struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Type       GraphNodeType          `json:"type"`
	DocID      int64                  `json:"doc_id"`
	PageNumber int                    `json:"page,omitempty"`
	Text       string                 `json:"text,omitempty"`
	Status     types.ComplianceStatus `json:"status,omitempty"`
	Risk       types.RiskLevel        `json:"risk,omitempty"`
	Reasoning  string                 `json:"reasoning,omitempty"`
	Evidence   string                 `json:"evidence,omitempty"`
}

// GraphEdge links a customer clause node to its matched regulation clause
// node, carrying the verdict status
type GraphEdge struct {
	From   string                 `json:"from"`
	To     string                 `json:"to"`
	Status types.ComplianceStatus `json:"status"`
}

// Graph is the node/edge view of one assessment
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

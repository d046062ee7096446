// Package judge runs the structured compliance judgment of one customer
// clause against regulation context.
package judge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Service judges customer clauses against regulation context
type Service interface {
	Judge(ctx context.Context, customerClause, regulationContext string) (*model.Verdict, error)
}

type client struct {
	llmClient gollem.LLMClient
}

// New creates a judgment service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &client{llmClient: llmClient}, nil
}

// Judge compares a customer clause against regulation context and returns a
// structured verdict. A failed capability call yields ErrJudgmentCall; a
// response that cannot be normalized into a verdict yields ErrJudgmentParse.
func (c *client) Judge(ctx context.Context, customerClause, regulationContext string) (*model.Verdict, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(types.ErrJudgmentCall, "failed to create LLM session", goerr.V("cause", err))
	}

	userPrompt := "Customer Clause: " + customerClause + "\n\nRegulation Context: " + regulationContext

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return nil, goerr.Wrap(types.ErrJudgmentCall, "failed to generate judgment", goerr.V("cause", err))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.Wrap(types.ErrJudgmentParse, "empty LLM response")
	}

	verdict, err := parseVerdict(resp.Texts[0])
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

const systemPrompt = `You are a compliance expert. Compare the provided customer clause against the regulation context.
Identify if it is COMPLIANT, PARTIAL, or NON_COMPLIANT.
Provide:
1. Status
2. Risk Level (HIGH, MEDIUM, LOW)
3. Reasoning
4. Literal Evidence (quote from the regulation)
5. Confidence score (0.0 to 1.0)

Format response as JSON with those keys.`

func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ComplianceVerdict",
		Description: "Structured judgment of a customer clause against regulation context",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"status": {
				Type:        gollem.TypeString,
				Description: "COMPLIANT, PARTIAL, NON_COMPLIANT or UNKNOWN",
				Required:    true,
			},
			"risk": {
				Type:        gollem.TypeString,
				Description: "HIGH, MEDIUM or LOW",
				Required:    true,
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "Why the clause does or does not satisfy the regulation",
				Required:    true,
			},
			"evidence_text": {
				Type:        gollem.TypeString,
				Description: "Literal quote from the regulation context supporting the judgment",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Confidence score between 0.0 and 1.0",
				Required:    true,
			},
		},
	}
}

// parseVerdict normalizes a raw LLM response into a verdict. Providers
// diverge on key naming, so known aliases map to the canonical fields, keys
// are matched case-insensitively with spaces as underscores, and anything
// around the outermost JSON object is discarded.
func parseVerdict(raw string) (*model.Verdict, error) {
	content := strings.TrimSpace(raw)
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start != -1 && end > start {
		content = content[start : end+1]
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, goerr.Wrap(types.ErrJudgmentParse, "invalid JSON in LLM response",
			goerr.V("response", raw),
			goerr.V("cause", err),
		)
	}

	normalized := map[string]any{}
	for k, v := range data {
		key := strings.ReplaceAll(strings.ToLower(k), " ", "_")
		normalized[key] = v
	}

	statusRaw := pickString(normalized, "status", "compliance_status")
	status, err := types.ParseComplianceStatus(strings.ToUpper(strings.TrimSpace(statusRaw)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrJudgmentParse, "invalid compliance status", goerr.V("status", statusRaw))
	}

	riskRaw := pickString(normalized, "risk", "risk_level")
	risk, err := types.ParseRiskLevel(strings.ToUpper(strings.TrimSpace(riskRaw)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrJudgmentParse, "invalid risk level", goerr.V("risk", riskRaw))
	}

	reasoning := pickString(normalized, "reasoning", "description")
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	evidence := pickString(normalized, "evidence_text", "literal_evidence", "evidence")
	if evidence == "" {
		evidence = "N/A"
	}

	return &model.Verdict{
		Status:       status,
		Risk:         risk,
		Reasoning:    reasoning,
		EvidenceText: evidence,
		Confidence:   pickFloat(normalized, "confidence", "confidence_score"),
	}, nil
}

func pickString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func pickFloat(m map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			switch n := v.(type) {
			case float64:
				return n
			case string:
				// some providers quote the score
				var f float64
				if err := json.Unmarshal([]byte(n), &f); err == nil {
					return f
				}
			}
		}
	}
	return 0.0
}

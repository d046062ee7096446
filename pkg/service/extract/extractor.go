// Package extract turns raw per-page text blocks into ordered, addressable
// clause records.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// clausePattern matches structural clause markers at the start of a line:
// numbered headings ("1.1", "4.2.3"), lettered headings ("A.5.1"), or
// "Article N".
var clausePattern = regexp.MustCompile(`(?m)^(\d+\.[\d.]+|[A-Z]\.[\d.]+|Article\s+\d+:?)\s+`)

// minClauseLen filters out fragments too short to be meaningful clauses
const minClauseLen = 20

// Extractor segments text blocks into clause records
type Extractor struct {
	pattern *regexp.Regexp
}

// New creates a clause extractor
func New() *Extractor {
	return &Extractor{pattern: clausePattern}
}

// Extract scans ordered text blocks and returns clause records in document
// order. DocumentID and ID are left unset for the store to assign.
func (x *Extractor) Extract(blocks []model.TextBlock) []*model.Clause {
	var clauses []*model.Clause

	// paragraph and table ordinals per page for synthetic labels
	paraOrdinal := map[int]int{}
	tableOrdinal := map[int]int{}

	for _, block := range blocks {
		if block.Tabular {
			if c := x.tabularClause(block, tableOrdinal); c != nil {
				clauses = append(clauses, c)
			}
			continue
		}
		clauses = append(clauses, x.textClauses(block, paraOrdinal)...)
	}

	return clauses
}

func (x *Extractor) tabularClause(block model.TextBlock, ordinals map[int]int) *model.Clause {
	text := strings.TrimSpace(block.Text)
	if len(text) <= minClauseLen {
		return nil
	}

	label := block.Label
	if label == "" {
		ordinals[block.PageNumber]++
		label = fmt.Sprintf("TBL-%d-%d", block.PageNumber, ordinals[block.PageNumber])
	}

	return &model.Clause{
		Label:      label,
		Text:       text,
		PageNumber: block.PageNumber,
		Severity:   types.SeverityData,
	}
}

func (x *Extractor) textClauses(block model.TextBlock, ordinals map[int]int) []*model.Clause {
	matches := x.pattern.FindAllStringIndex(block.Text, -1)
	if len(matches) == 0 {
		return x.paragraphFallback(block, ordinals)
	}

	var clauses []*model.Clause
	for i, loc := range matches {
		start := loc[0]
		end := len(block.Text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		text := strings.TrimSpace(block.Text[start:end])
		label := strings.TrimSpace(x.pattern.FindStringSubmatch(block.Text[loc[0]:loc[1]])[1])

		clauses = append(clauses, &model.Clause{
			Label:      label,
			Text:       text,
			PageNumber: block.PageNumber,
			Severity:   classifySeverity(text, true),
		})
	}
	return clauses
}

// paragraphFallback splits unmarked text on blank lines; fragments under the
// noise threshold are dropped
func (x *Extractor) paragraphFallback(block model.TextBlock, ordinals map[int]int) []*model.Clause {
	var clauses []*model.Clause
	for _, para := range strings.Split(block.Text, "\n\n") {
		text := strings.TrimSpace(para)
		if len(text) <= minClauseLen {
			continue
		}

		pageIndex := block.PageNumber - 1
		clauses = append(clauses, &model.Clause{
			Label:      fmt.Sprintf("P-%d-%d", pageIndex, ordinals[block.PageNumber]),
			Text:       text,
			PageNumber: block.PageNumber,
			Severity:   classifySeverity(text, false),
		})
		ordinals[block.PageNumber]++
	}
	return clauses
}

var bindingWords = []string{"shall", "must", "required"}

func classifySeverity(text string, structured bool) types.Severity {
	lower := strings.ToLower(text)
	for _, word := range bindingWords {
		if strings.Contains(lower, word) {
			return types.SeverityMust
		}
	}
	if structured {
		return types.SeverityShould
	}
	return types.SeverityUnknown
}

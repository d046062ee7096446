package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// Registry routes an uploaded file to a block extractor by its extension.
// Extensions are matched case-insensitively and include the leading dot.
type Registry struct {
	extractors map[string]interfaces.BlockExtractor
}

// NewRegistry creates a registry preloaded with the plaintext extractor for
// .txt and .md files. Production deployments are expected to Register the
// binary parsers (.pdf, .docx, .xlsx) at startup; an extension with no
// registered extractor fails the upload as an unsupported format.
func NewRegistry() *Registry {
	r := &Registry{
		extractors: map[string]interfaces.BlockExtractor{},
	}
	plain := &PlainText{}
	r.Register(".txt", plain)
	r.Register(".md", plain)
	return r
}

// Register binds an extension to an extractor, replacing any previous
// binding for the same extension.
func (r *Registry) Register(ext string, x interfaces.BlockExtractor) {
	r.extractors[strings.ToLower(ext)] = x
}

// Extract dispatches to the extractor registered for the filename's
// extension.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) ([]model.TextBlock, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	x, ok := r.extractors[ext]
	if !ok {
		return nil, goerr.Wrap(types.ErrUnsupportedFormat, "no extractor for extension",
			goerr.V("extension", ext),
			goerr.V("filename", filename),
		)
	}

	blocks, err := x.Extract(ctx, filename, data)
	if err != nil {
		if errors.Is(err, types.ErrEmptyInput) {
			return nil, goerr.Wrap(err, "failed to extract blocks", goerr.V("filename", filename))
		}
		return nil, goerr.Wrap(types.ErrParse, "failed to extract blocks",
			goerr.V("filename", filename),
			goerr.V("cause", err),
		)
	}
	return blocks, nil
}

// PlainText extracts blocks from plain text files. Form feed characters
// separate pages; contiguous tab-delimited lines within a page become
// tabular blocks.
type PlainText struct{}

// Extract implements interfaces.BlockExtractor.
func (x *PlainText) Extract(ctx context.Context, filename string, data []byte) ([]model.TextBlock, error) {
	if len(data) == 0 {
		return nil, goerr.Wrap(types.ErrEmptyInput, "empty file", goerr.V("filename", filename))
	}

	var blocks []model.TextBlock
	pages := strings.Split(string(data), "\f")
	for i, page := range pages {
		pageNo := i + 1
		blocks = append(blocks, splitPage(pageNo, page)...)
	}
	return blocks, nil
}

// splitPage separates a page into running-text and tabular blocks. A run of
// consecutive lines each containing a tab is treated as one table.
func splitPage(pageNo int, page string) []model.TextBlock {
	var blocks []model.TextBlock
	var text, table []string
	tableSeq := 0

	flushText := func() {
		joined := strings.TrimSpace(strings.Join(text, "\n"))
		text = text[:0]
		if joined == "" {
			return
		}
		blocks = append(blocks, model.TextBlock{
			PageNumber: pageNo,
			Text:       joined,
		})
	}
	flushTable := func() {
		if len(table) == 0 {
			return
		}
		tableSeq++
		for ri, row := range table {
			cells := strings.Split(row, "\t")
			for ci := range cells {
				cells[ci] = strings.TrimSpace(cells[ci])
			}
			blocks = append(blocks, model.TextBlock{
				PageNumber: pageNo,
				Text:       strings.Join(cells, " | "),
				Tabular:    true,
				Label:      fmt.Sprintf("TBL-%d-%d-R%d", pageNo, tableSeq, ri+1),
			})
		}
		table = table[:0]
	}

	for _, line := range strings.Split(page, "\n") {
		if strings.Contains(line, "\t") {
			flushText()
			table = append(table, line)
			continue
		}
		flushTable()
		text = append(text, line)
	}
	flushText()
	flushTable()
	return blocks
}

package suggest

import (
	"context"
	"fmt"

	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/keyword"
)

// Populate rebuilds the suggestions from the whole corpus: one extraction
// pass over pager, then one bulk write. Extraction errors are reported
// before any write happens.
func Populate(ctx context.Context, pager docsource.Pager, extractor *keyword.Extractor, writer *Writer) (Report, error) {
	set, err := extractor.Extract(ctx, pager)
	if err != nil {
		return Report{}, fmt.Errorf("extract keywords: %w", err)
	}
	return writer.Write(ctx, set)
}

package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/ats-analyzer/internal/types"
)

// ItemError is the error recorded on a failed batch item
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchItem is the outcome of one request in a batch. Exactly one of
// Report and Error is set.
type BatchItem struct {
	Index  int                   `json:"index"`
	ID     string                `json:"id,omitempty"`
	Report *types.AnalysisReport `json:"report,omitempty"`
	Error  *ItemError            `json:"error,omitempty"`
}

// AnalyzeBatch analyzes independent requests concurrently, at most
// Options.Concurrency at a time. Results keep the input order. A failed
// item does not stop the others; only cancellation of ctx fails the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	results := make([]BatchItem, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			item := BatchItem{Index: i, ID: req.ID}
			report, err := a.Analyze(gCtx, req)
			if err != nil {
				item.Error = &ItemError{Code: types.CodeOf(err), Message: err.Error()}
			} else {
				item.Report = report
			}
			results[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	a.logger.Info("batch complete", zap.Int("items", len(reqs)), zap.Int("failed", failed))
	return results, nil
}

package apiclient

import "context"

// BulkResult reports a multi-item action: how many items went through
// and what went wrong with the rest. Successes are never rolled back
// when later items fail.
type BulkResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Bulk runs ops in order, collecting per-item outcomes. An item failure
// never stops the batch.
func Bulk(ctx context.Context, ops []func(context.Context) error) BulkResult {
	var res BulkResult
	for _, op := range ops {
		if err := op(ctx); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, ExtractMessage(err))
			continue
		}
		res.Succeeded++
	}
	return res
}

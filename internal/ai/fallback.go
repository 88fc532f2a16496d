package ai

import (
	"context"
	"fmt"
)

// generateWithPairFallback runs one attempt against the requested model and,
// when the attempt fails with a transient or insufficient-content error and
// the model belongs to a paired family, retries exactly once against the
// sibling. No fallback-of-fallback: the edge is traversed at most once.
func generateWithPairFallback(ctx context.Context, model string, attempt func(ctx context.Context, model string) *Result) *Result {
	first := attempt(ctx, model)
	if first.Success {
		return first
	}

	pair, ok := PairedModel(model)
	if !ok || !transient(first.Meta.Error) {
		return first
	}

	second := attempt(ctx, pair)
	second.Meta.Fallback = true
	if second.Success {
		return second
	}

	second.Meta.Error = fmt.Sprintf("primary model failed: %s, fallback failed: %s", first.Meta.Error, second.Meta.Error)
	return second
}

// validate applies the uniform minimum-content gate to a completed call.
// A call that cleared the transport but produced too little text is a
// failure with an insufficient-content reason, so it participates in the
// pair fallback exactly like a transient vendor error.
func validate(res *Result, min int) *Result {
	if res.Meta.Error != "" {
		return res
	}
	res.Meta.ContentLength = len(res.Content)
	if len(res.Content) <= min {
		res.Success = false
		res.Meta.Error = fmt.Sprintf("%s: %d chars (minimum %d)", insufficientContent, len(res.Content), min)
		res.Content = ""
		res.Meta.ContentLength = 0
		return res
	}
	res.Success = true
	return res
}

package scoring

import (
	"fmt"
	"strings"

	"beanline/pkg/apperr"
)

// Result is the verdict an evaluator asserts for a batch.
type Result string

const (
	Pass             Result = "Pass"
	Fail             Result = "Fail"
	NeedsImprovement Result = "NeedsImprovement"
	Temporary        Result = "Temporary"
)

var results = []Result{Pass, Fail, NeedsImprovement, Temporary}

func ParseResult(s string) (Result, error) {
	k := strings.TrimSpace(s)
	for _, r := range results {
		if strings.EqualFold(k, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q is not one of Pass, Fail, NeedsImprovement, Temporary: %w", s, apperr.ErrInvalidEvaluationResult)
}

const (
	BatchInProgress = "InProgress"
	BatchCompleted  = "Completed"
)

// NextBatchStatus maps an asserted result to the status the batch should
// move to. ok is false when the result leaves the status alone. The computed
// score plays no part here.
func NextBatchStatus(r Result) (status string, ok bool) {
	switch r {
	case Pass:
		return BatchCompleted, true
	case Fail:
		return BatchInProgress, true
	default:
		return "", false
	}
}

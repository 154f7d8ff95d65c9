package output

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TruncateToFit returns the longest prefix of items whose JSON encoding fits
// in maxBytes, and a warning when items were dropped. At least one item is
// always kept so the agent sees the result shape.
func TruncateToFit(items []any, maxBytes int) ([]any, *TruncationWarning, error) {
	total := len(items)
	if total == 0 {
		return items, nil, nil
	}

	fits := func(n int) (bool, error) {
		b, err := json.Marshal(items[:n])
		if err != nil {
			return false, err
		}
		return len(b) <= maxBytes, nil
	}

	ok, err := fits(total)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return items, nil, nil
	}

	var searchErr error
	// First n in [1, total) that does not fit; n-1 is the answer.
	n := sort.Search(total, func(i int) bool {
		if i == 0 || searchErr != nil {
			return false
		}
		ok, err := fits(i)
		if err != nil {
			searchErr = err
			return true
		}
		return !ok
	})
	if searchErr != nil {
		return nil, nil, searchErr
	}
	shown := max(n-1, 1)

	return items[:shown], &TruncationWarning{
		Shown: shown,
		Total: total,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d items from this page. Request a smaller page size or a later page for the rest.",
			shown, total),
	}, nil
}

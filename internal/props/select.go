package props

import (
	"fmt"

	"github.com/agentic-research/ifcgraph/internal/store"
	"github.com/ohler55/ojg/jp"
)

// Select applies a JSONPath expression to each record and returns the
// concatenated matches. Records resolved recursively expose their expanded
// payload to the path, so e.g. $..NominalValue reaches into nested
// property values.
func Select(records []*store.Record, path string) ([]any, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parse jsonpath %q: %w", path, err)
	}
	var out []any
	for _, rec := range records {
		out = append(out, expr.Get(rec.AsMap())...)
	}
	return out, nil
}

// Package filter applies JMESPath expressions to scraped data.
package filter

import (
	"encoding/json"

	"github.com/jmespath/go-jmespath"
)

// Result is either the value selected by an expression or the error that stopped it.
// It encodes to the value itself, or to {"error": "..."}.
type Result struct {
	Value any
	Err   string
}

// Failed reports whether the expression could not be evaluated
func (r Result) Failed() bool {
	return r.Err != ""
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	return json.Marshal(r.Value)
}

// Apply evaluates expression against value. Syntax and evaluation errors
// are returned inside the Result rather than as a Go error.
func Apply(value any, expression string) Result {
	compiled, err := jmespath.Compile(expression)
	if err != nil {
		return Result{Err: err.Error()}
	}
	out, err := compiled.Search(normalize(value))
	if err != nil {
		return Result{Err: err.Error()}
	}
	return Result{Value: out}
}

// normalize turns string slices into []any, the shape JMESPath functions expect
func normalize(value any) any {
	items, ok := value.([]string)
	if !ok {
		return value
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

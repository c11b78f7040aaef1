// Package policy gates discovery controls with an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.control_policy.allow"),
		rego.Module("control_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// AllowControl reports whether control is live for a session in state
// running a trial of method.
func (e *Engine) AllowControl(ctx context.Context, state domain.SessionState, method domain.Method, control domain.Control) (bool, error) {
	input := map[string]interface{}{
		"state":   string(state),
		"method":  string(method),
		"control": string(control),
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy returned %T, want bool", results[0].Expressions[0].Value)
	}
	return allowed, nil
}

// DefaultPolicy only lets the active trial's method drive the listings:
// search trials own the query box, filter trials own tags and distance.
const DefaultPolicy = `
package control_policy

default allow = false

filter_controls := {"tags", "distance"}

allow {
	input.state == "active"
	input.control == "select"
}

allow {
	input.state == "active"
	input.method == "search"
	input.control == "query"
}

allow {
	input.state == "active"
	input.method == "filter"
	filter_controls[input.control]
}
`

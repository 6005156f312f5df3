// Package rules provides the invoice rule engine.
//
// Rules are CEL expressions evaluated against an invoice just before it
// posts: discount caps, schedule-drug prescription requirements, credit
// sale restrictions. Expressions are compiled once at startup; a rule
// that fails to compile fails the process rather than silently not
// enforcing anything.
package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"pharmabill/pkg/logger"
)

// Severity decides what a violated rule does to the posting.
type Severity string

const (
	// SeverityBlock fails the post.
	SeverityBlock Severity = "block"
	// SeverityWarn lets the post through and rides the result warnings.
	SeverityWarn Severity = "warn"
)

// Rule is one named CEL expression. The expression must evaluate to a
// bool; false means violated.
type Rule struct {
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
}

// Violation reports one failed rule.
type Violation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// LineFacts is the per-line view a rule can inspect.
type LineFacts struct {
	ItemCode        string
	ItemName        string
	Batch           string
	HSNCode         string
	Schedule        string
	Quantity        int64
	Rate            float64
	MRP             float64
	DiscountPercent float64
}

// ScheduleLookup resolves an item code to its drug schedule class
// ("H", "H1", "X", empty for OTC). Backed by the item catalog; a nil
// lookup leaves schedule facts empty.
type ScheduleLookup func(ctx context.Context, itemCode string) string

// Activation is the invoice view rules evaluate against.
type Activation struct {
	DocumentType string
	CustomerName string
	CustomerID   string
	DoctorName   string
	PaymentMode  string
	GrandTotal   float64
	Lines        []LineFacts
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// Engine evaluates a fixed rule set against invoice activations.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the rule set. Every expression must type-check to
// bool against the invoice environment.
func NewEngine(ruleSet []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("documentType", cel.StringType),
		cel.Variable("customerName", cel.StringType),
		cel.Variable("customerId", cel.StringType),
		cel.Variable("doctorName", cel.StringType),
		cel.Variable("paymentMode", cel.StringType),
		cel.Variable("grandTotal", cel.DoubleType),
		cel.Variable("lines", cel.ListType(cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	engine := &Engine{rules: make([]compiledRule, 0, len(ruleSet))}
	for _, r := range ruleSet {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, issues.Err())
		}
		// Expressions over dyn line maps may check as dyn; anything else
		// is a misconfigured rule.
		if t := ast.OutputType(); t != cel.BoolType && t != cel.DynType {
			return nil, fmt.Errorf("rule %q: expression must evaluate to bool, got %s", r.Name, t)
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", r.Name, err)
		}
		engine.rules = append(engine.rules, compiledRule{rule: r, program: program})
	}

	return engine, nil
}

// Check evaluates all rules. Violations are returned in rule order; an
// evaluation error on one rule is treated as a violation of that rule
// (a rule that cannot run must not silently pass).
func (e *Engine) Check(ctx context.Context, act Activation) []Violation {
	if e == nil || len(e.rules) == 0 {
		return nil
	}

	input := act.celInput()
	var violations []Violation

	for _, cr := range e.rules {
		out, _, err := cr.program.ContextEval(ctx, input)
		if err != nil {
			logger.Warn(ctx, "rule evaluation failed",
				"rule", cr.rule.Name,
				"error", err,
			)
			violations = append(violations, Violation{
				Rule:     cr.rule.Name,
				Severity: cr.rule.Severity,
				Message:  fmt.Sprintf("%s (evaluation error: %v)", cr.rule.Message, err),
			})
			continue
		}

		if passed, ok := out.Value().(bool); !ok || !passed {
			violations = append(violations, Violation{
				Rule:     cr.rule.Name,
				Severity: cr.rule.Severity,
				Message:  cr.rule.Message,
			})
		}
	}

	return violations
}

// HasBlocking reports whether any violation is severity block.
func HasBlocking(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

func (a Activation) celInput() map[string]any {
	lines := make([]any, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, map[string]any{
			"itemCode":        l.ItemCode,
			"itemName":        l.ItemName,
			"batch":           l.Batch,
			"hsnCode":         l.HSNCode,
			"schedule":        l.Schedule,
			"quantity":        l.Quantity,
			"rate":            l.Rate,
			"mrp":             l.MRP,
			"discountPercent": l.DiscountPercent,
		})
	}

	return map[string]any{
		"documentType": a.DocumentType,
		"customerName": a.CustomerName,
		"customerId":   a.CustomerID,
		"doctorName":   a.DoctorName,
		"paymentMode":  a.PaymentMode,
		"grandTotal":   a.GrandTotal,
		"lines":        lines,
	}
}

// DefaultRules is the stock rule set a fresh install runs with.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "discount-cap",
			Expression: `lines.all(l, l.discountPercent <= 25.0)`,
			Severity:   SeverityWarn,
			Message:    "line discount exceeds 25%",
		},
		{
			Name:       "schedule-needs-doctor",
			Expression: `lines.exists(l, l.schedule != "") ? doctorName != "" : true`,
			Severity:   SeverityBlock,
			Message:    "scheduled drugs require a prescribing doctor",
		},
		{
			Name:       "credit-needs-customer",
			Expression: `paymentMode == "credit" ? customerId != "" : true`,
			Severity:   SeverityBlock,
			Message:    "credit sales require a registered customer",
		},
	}
}

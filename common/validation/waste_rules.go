package validation

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Rule is a single waste-line business rule expressed in CEL.
// The expression is evaluated against a `line` variable and must
// return a boolean; false means the rule is violated.
type Rule struct {
	Name       string
	Expression string
	Message    string
}

// DefaultWasteRules returns the built-in waste-line rules
func DefaultWasteRules() []Rule {
	return []Rule{
		{
			Name:       "name_present",
			Expression: `line.name != ''`,
			Message:    "waste name is required",
		},
		{
			Name:       "quantity_non_negative",
			Expression: `line.quantity_kg >= 0.0`,
			Message:    "quantity must be non-negative kilograms",
		},
		{
			Name:       "labeling_exclusive",
			Expression: `line.labeled_yes != line.labeled_no`,
			Message:    "exactly one labeling flag must be set",
		},
	}
}

// WasteRuleValidator evaluates waste-line rules using CEL
// (Common Expression Language), caching compiled programs.
type WasteRuleValidator struct {
	env   *cel.Env
	rules []Rule
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewWasteRuleValidator creates a validator for the given rules
func NewWasteRuleValidator(rules []Rule) (*WasteRuleValidator, error) {
	env, err := cel.NewEnv(
		cel.Variable("line", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	return &WasteRuleValidator{
		env:   env,
		rules: rules,
		cache: make(map[string]cel.Program),
	}, nil
}

// Validate evaluates every rule against the line fields and returns
// the first violation
func (v *WasteRuleValidator) Validate(line map[string]any) error {
	for _, rule := range v.rules {
		ok, err := v.evaluate(rule.Expression, line)
		if err != nil {
			return fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		if !ok {
			return fmt.Errorf("rule %s violated: %s", rule.Name, rule.Message)
		}
	}
	return nil
}

func (v *WasteRuleValidator) evaluate(expr string, line map[string]any) (bool, error) {
	// Check cache first
	v.mu.RLock()
	prg, exists := v.cache[expr]
	v.mu.RUnlock()

	if !exists {
		var err error
		prg, err = v.compile(expr)
		if err != nil {
			return false, err
		}

		v.mu.Lock()
		v.cache[expr] = prg
		v.mu.Unlock()
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"line": line,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}

	return result, nil
}

func (v *WasteRuleValidator) compile(expr string) (cel.Program, error) {
	ast, issues := v.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	prg, err := v.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return prg, nil
}

// CacheSize returns the number of cached compiled expressions
func (v *WasteRuleValidator) CacheSize() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cache)
}

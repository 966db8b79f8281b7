package intent

import (
	"regexp"
	"strings"
)

// Rule is one textual rewrite applied during repair. Apply must be pure and
// idempotent and must not change field values, only syntax.
type Rule struct {
	Name  string
	Apply func(string) string
}

var (
	trailingBraceComma   = regexp.MustCompile(`(?:,\s*)+}`)
	trailingBracketComma = regexp.MustCompile(`(?:,\s*)+]`)
	bareKey              = regexp.MustCompile(`(\{|,)\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
)

// SingleQuotes turns Python style quoting into JSON quoting.
var SingleQuotes = Rule{
	Name: "single_quotes",
	Apply: func(s string) string {
		return strings.ReplaceAll(s, "'", `"`)
	},
}

// TrailingCommas drops the run of commas that directly precedes '}' or ']'.
var TrailingCommas = Rule{
	Name: "trailing_commas",
	Apply: func(s string) string {
		s = trailingBraceComma.ReplaceAllString(s, "}")
		return trailingBracketComma.ReplaceAllString(s, "]")
	},
}

// BareKeys quotes identifier keys that follow '{' or ','.
var BareKeys = Rule{
	Name: "bare_keys",
	Apply: func(s string) string {
		return bareKey.ReplaceAllString(s, `${1} "${2}":`)
	},
}

// DefaultRules returns the repair sequence. Order matters: quotes are
// normalized before bare keys are quoted, and commas are stripped before
// keys are quoted.
func DefaultRules() []Rule {
	return []Rule{SingleQuotes, TrailingCommas, BareKeys}
}

// Repairer applies its rules in order. The result may still be invalid JSON.
type Repairer struct {
	rules []Rule
}

// NewRepairer builds a repairer; with no rules it uses DefaultRules.
func NewRepairer(rules ...Rule) *Repairer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Repairer{rules: rules}
}

func (r *Repairer) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

func (r *Repairer) Repair(candidate string) string {
	js := strings.TrimSpace(candidate)
	for _, rule := range r.rules {
		js = rule.Apply(js)
	}
	return js
}

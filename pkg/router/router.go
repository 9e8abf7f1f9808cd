// Package router classifies free-text prompts onto a Backend using ordered,
// first-match-wins keyword rules.
package router

import "strings"

// ImageExtensions are the file extensions that mark a prompt as carrying an
// image attachment.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// CodeKeywords route a prompt to the Code backend.
var CodeKeywords = []string{
	"code", "python", "java", "c++", "script", "program", "function", "compile",
}

// MathKeywords route a prompt to the Math backend. "function" also appears in
// CodeKeywords; the code rule is evaluated first and takes it.
var MathKeywords = []string{
	"solve", "equation", "math", "integral", "derivative", "matrix",
	"algebra", "calculus", "limit", "factorial", "expression", "geometry",
	"polynomial", "logarithm", "simplify", "evaluate", "probability",
	"trigonometry", "theorem", "statistics", "vector", "function", "roots",
	"quadratic", "mean", "median", "mode", "variance", "standard deviation",
}

// Route is the outcome of classifying a prompt.
type Route struct {
	Backend Backend

	// Attachment is set when the prompt should be treated as referencing an
	// image file.
	Attachment bool

	// Rule is the name of the rule that matched, or FallbackRule.
	Rule string
}

// FallbackRule names the route returned when no rule matches.
const FallbackRule = "fallback"

// Rule is a named predicate over the lowercased prompt paired with the route
// it produces.
type Rule struct {
	Name       string
	Match      func(lower string) bool
	Backend    Backend
	Attachment bool
}

// ContainsAny returns a predicate matching when the input contains any of
// the given substrings.
func ContainsAny(substrs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// DefaultRules returns the built-in rule table: image, code, then math.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "image", Match: ContainsAny(ImageExtensions...), Backend: Vision, Attachment: true},
		{Name: "code", Match: ContainsAny(CodeKeywords...), Backend: Code},
		{Name: "math", Match: ContainsAny(MathKeywords...), Backend: Math},
	}
}

// Classifier evaluates rules in order and returns the first match.
type Classifier struct {
	rules    []Rule
	fallback Backend
}

// NewClassifier creates a Classifier with DefaultRules and a General fallback.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules(), General)
}

// NewClassifierWithRules creates a Classifier over a custom rule table.
func NewClassifierWithRules(rules []Rule, fallback Backend) *Classifier {
	return &Classifier{
		rules:    rules,
		fallback: fallback,
	}
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify routes the prompt. It is total: any input, including the empty
// string, yields a Route.
func (c *Classifier) Classify(prompt string) Route {
	lower := strings.ToLower(prompt)
	for _, r := range c.rules {
		if r.Match(lower) {
			return Route{Backend: r.Backend, Attachment: r.Attachment, Rule: r.Name}
		}
	}
	return Route{Backend: c.fallback, Rule: FallbackRule}
}

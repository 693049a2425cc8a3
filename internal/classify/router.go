package classify

import "strings"

// Match records one category hit and the pattern that triggered it.
// Matches preserve rule declaration order for diagnosability.
type Match struct {
	// Category is the matched category name.
	Category string
	// Pattern is the raw pattern that fired first for this category.
	Pattern string
}

// Router classifies instruction text against a static keyword rule table.
type Router struct {
	rules []compiledRule
}

// NewRouter compiles the given rule table into a Router.
func NewRouter(rules []Rule) (*Router, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Router{rules: compiled}, nil
}

// Classify returns every category whose pattern list matches anywhere in the
// text. The result is a union: one message may belong to zero, one, or many
// categories. An empty result is valid and means "no automatic action".
func (r *Router) Classify(text string) []Match {
	lower := strings.ToLower(text)
	var matches []Match
	for _, rule := range r.rules {
		for _, p := range rule.patterns {
			hit := false
			if p.regex != nil {
				hit = p.regex.MatchString(text)
			} else {
				hit = strings.Contains(lower, p.substring)
			}
			if hit {
				matches = append(matches, Match{Category: rule.category, Pattern: p.raw})
				break
			}
		}
	}
	return matches
}

// Categories returns the category names in declaration order.
func (r *Router) Categories() []string {
	cats := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		cats = append(cats, rule.category)
	}
	return cats
}

// HasCategory reports whether the rule table declares the given category.
func (r *Router) HasCategory(name string) bool {
	name = strings.ToLower(name)
	for _, rule := range r.rules {
		if rule.category == name {
			return true
		}
	}
	return false
}

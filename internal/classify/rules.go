package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps one category to its ordered pattern list. A pattern wrapped in
// slashes (/.../) is a regular expression; anything else is a
// case-insensitive substring.
type Rule struct {
	// Category is the category name produced when a pattern matches.
	Category string `yaml:"category"`
	// Patterns is the ordered list of substring/regex patterns.
	Patterns []string `yaml:"patterns"`
}

// ruleFile is the on-disk shape of the keyword rules configuration.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// compiledRule is a Rule with its regex patterns compiled.
type compiledRule struct {
	category string
	patterns []compiledPattern
}

type compiledPattern struct {
	raw       string
	substring string         // lowercased substring, empty for regex patterns
	regex     *regexp.Regexp // nil for substring patterns
}

// defaultRules is the compiled-in keyword table used when no rules file is
// configured. Category order and pattern order are significant for trigger
// logging, not for the (union) result set.
var defaultRules = []Rule{
	{Category: "lead-directive", Patterns: []string{"strategy", "roadmap", "vision", "milestone", "priorit"}},
	{Category: "coordinator-task", Patterns: []string{"assign", "schedule", "coordinate", "delegate", "progress report"}},
	{Category: "backend", Patterns: []string{"database", "api", "server", "backend", "/\\bsql\\b/", "connection pool"}},
	{Category: "frontend", Patterns: []string{"frontend", "ui", "css", "react", "browser", "layout"}},
	{Category: "infra", Patterns: []string{"deploy", "docker", "kubernetes", "infra", "terraform", "pipeline"}},
	{Category: "emergency", Patterns: []string{"emergency", "outage", "critical", "🚨"}},
	{Category: "priority", Patterns: []string{"urgent", "asap", "immediately", "high priority"}},
}

// DefaultRules returns a copy of the compiled-in rule table.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	for i, r := range defaultRules {
		rules[i] = Rule{Category: r.Category, Patterns: append([]string{}, r.Patterns...)}
	}
	return rules
}

// LoadRules reads a keyword rules YAML file. The table is loaded once and
// immutable for the rest of the run.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword rules: %w", err)
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse keyword rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("keyword rules file %s declares no rules", path)
	}
	for _, rule := range file.Rules {
		if strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("keyword rules file %s has a rule without a category", path)
		}
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("category %q declares no patterns", rule.Category)
		}
	}
	return file.Rules, nil
}

// compileRules validates and compiles a rule table.
func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		cr := compiledRule{category: strings.ToLower(rule.Category)}
		for _, p := range rule.Patterns {
			if len(p) > 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
				re, err := regexp.Compile("(?i)" + p[1:len(p)-1])
				if err != nil {
					return nil, fmt.Errorf("category %q pattern %q: %w", rule.Category, p, err)
				}
				cr.patterns = append(cr.patterns, compiledPattern{raw: p, regex: re})
				continue
			}
			cr.patterns = append(cr.patterns, compiledPattern{raw: p, substring: strings.ToLower(p)})
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

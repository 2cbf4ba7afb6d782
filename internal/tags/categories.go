package tags

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherCategory collects tags no rule matches.
const OtherCategory = "Other"

// Rule assigns a tag to Name when any keyword occurs in it.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is the built-in category order. Order matters: the first
// matching rule wins.
var DefaultRules = []Rule{
	{Name: "Career", Keywords: []string{"Job Search", "Career Advice", "Interview Tips"}},
	{Name: "Mental Health", Keywords: []string{"Mental Health", "Wellbeing", "Work-Life Balance"}},
	{Name: "Productivity", Keywords: []string{"Productivity", "Time Management"}},
	{Name: "Motivation", Keywords: []string{"Motivation", "Inspiration"}},
	{Name: "Scams", Keywords: []string{"Scams", "Fraud Alerts"}},
}

// rulesFile is the YAML layout accepted by LoadRules.
type rulesFile struct {
	Categories []Rule `yaml:"categories"`
}

// LoadRules reads category rules from a YAML file:
//
//	categories:
//	  - name: Career
//	    keywords: [Job Search, Career Advice]
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	for i, r := range file.Categories {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("rule %d has no name", i)
		}
		if r.Name == OtherCategory {
			return nil, fmt.Errorf("rule %d: %q is reserved", i, OtherCategory)
		}
	}
	return file.Categories, nil
}

// Categorizer groups tags by keyword rules.
type Categorizer struct {
	rules []Rule // keywords lowercased
}

// NewCategorizer creates a Categorizer. Nil rules means DefaultRules.
func NewCategorizer(rules []Rule) *Categorizer {
	if rules == nil {
		rules = DefaultRules
	}

	lowered := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		lowered[i] = Rule{Name: r.Name, Keywords: kws}
	}
	return &Categorizer{rules: lowered}
}

// Category returns the category of tag: the first rule with a keyword
// contained in the tag (case-insensitive), else OtherCategory.
func (c *Categorizer) Category(tag string) string {
	lower := strings.ToLower(tag)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Name
			}
		}
	}
	return OtherCategory
}

// Group assigns each tag to exactly one category. Only categories holding at
// least one tag are present; tags keep their input order.
func (c *Categorizer) Group(tags []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, tag := range tags {
		cat := c.Category(tag)
		grouped[cat] = append(grouped[cat], tag)
	}
	return grouped
}

// Names returns the category names in rule order, OtherCategory last.
func (c *Categorizer) Names() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return append(names, OtherCategory)
}

// Package tags unifies free-text post tags into a canonical set and groups
// canonical tags into display categories.
package tags

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/abdulachik/postgen/internal/llm"
	"github.com/abdulachik/postgen/internal/normalize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unifier maps raw tags to canonical, title-cased tags with one LLM call.
type Unifier struct {
	llm llm.Completer
}

// NewUnifier creates a new Unifier.
func NewUnifier(c llm.Completer) *Unifier {
	return &Unifier{llm: c}
}

// Unify returns a raw tag -> canonical tag mapping. Any failure (LLM error,
// no JSON object in the reply, invalid JSON) yields an empty mapping; the
// caller then drops every tag it cannot map.
func (u *Unifier) Unify(ctx context.Context, rawTags []string) map[string]string {
	unique := uniqueSorted(rawTags)
	if len(unique) == 0 {
		slog.Debug("no tags to unify")
		return map[string]string{}
	}

	list := normalize.Clean(strings.Join(unique, ", "))
	response, err := u.llm.Complete(ctx, fmt.Sprintf(UnifyPrompt, list))
	if err != nil {
		slog.Warn("tag unification failed", "tags", len(unique), "error", err)
		return map[string]string{}
	}

	mapping, err := ParseMapping(response)
	if err != nil {
		slog.Warn("could not parse tag unification response", "error", err)
		return map[string]string{}
	}

	slog.Info("unified tags", "raw", len(unique), "mapped", len(mapping), "canonical", len(Canonical(mapping)))
	return mapping
}

// ParseMapping extracts the first JSON object from response and decodes it as
// a string -> string mapping. Canonical values are title-cased and empty
// entries removed.
func ParseMapping(response string) (map[string]string, error) {
	obj, ok := llm.ExtractObject(response)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}

	mapping := make(map[string]string, len(raw))
	for from, to := range raw {
		to = TitleCase(normalize.Clean(to))
		if from == "" || to == "" {
			continue
		}
		mapping[from] = to
	}
	return mapping, nil
}

// Apply rewrites tags through mapping. Unmapped tags are dropped. The result
// is sorted and deduplicated; dropped reports how many inputs had no mapping.
func Apply(mapping map[string]string, tags []string) (out []string, dropped int) {
	out = make([]string, 0, len(tags))
	for _, tag := range tags {
		canonical, ok := mapping[tag]
		if !ok {
			dropped++
			continue
		}
		out = append(out, canonical)
	}
	slices.Sort(out)
	return slices.Compact(out), dropped
}

// Canonical returns the sorted set of canonical tags in mapping.
func Canonical(mapping map[string]string) []string {
	values := make([]string, 0, len(mapping))
	for _, v := range mapping {
		values = append(values, v)
	}
	return uniqueSorted(values)
}

// TitleCase upper-cases the first letter of every word and leaves the rest
// untouched, so "job search" becomes "Job Search" and "AI" stays "AI".
func TitleCase(s string) string {
	// a Caser keeps state and must not be shared between goroutines
	return cases.Title(language.English, cases.NoLower).String(s)
}

func uniqueSorted(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

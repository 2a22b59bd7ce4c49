package catalog

import (
	"fmt"
	"strings"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

// Category scopes which card fields a query is matched against.
type Category string

const (
	CategoryAll     Category = "all"
	CategorySubject Category = "subject"
	CategoryKeyword Category = "keyword"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "", CategoryAll:
		return CategoryAll, nil
	case CategorySubject:
		return CategorySubject, nil
	case CategoryKeyword:
		return CategoryKeyword, nil
	}
	return "", fmt.Errorf("unknown category %q (want all, subject or keyword)", s)
}

// MatchMode selects how a multi-term query combines.
type MatchMode int

const (
	// MatchAll splits on whitespace; every token must appear.
	MatchAll MatchMode = iota
	// MatchAny splits on commas; one term is enough.
	MatchAny
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "and":
		return MatchAll, nil
	case "any", "or":
		return MatchAny, nil
	}
	return MatchAll, fmt.Errorf("unknown match mode %q (want all or any)", s)
}

func (m MatchMode) String() string {
	if m == MatchAny {
		return "any"
	}
	return "all"
}

type Query struct {
	Text     string
	Category Category
	Mode     MatchMode
}

// Active reports whether the query narrows the store in any way that breaks
// positional ordering: search text, or a category other than all.
func (q Query) Active() bool {
	return len(q.terms()) > 0 || q.category() != CategoryAll
}

func (q Query) category() Category {
	if q.Category == "" {
		return CategoryAll
	}
	return q.Category
}

func (q Query) terms() []string {
	var raw []string
	if q.Mode == MatchAny {
		raw = strings.Split(q.Text, ",")
	} else {
		raw = strings.Fields(q.Text)
	}

	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// ComputeVisible is Filter with the default whitespace AND matching.
func ComputeVisible(store []domain.Card, query string, category Category) []domain.Card {
	return Filter(store, Query{Text: query, Category: category})
}

// Filter returns the cards matching q, in store order, as a new slice.
// An empty query returns every card.
func Filter(store []domain.Card, q Query) []domain.Card {
	terms := q.terms()
	visible := make([]domain.Card, 0, len(store))
	for _, c := range store {
		if matches(searchableText(c, q.category()), terms, q.Mode) {
			visible = append(visible, c)
		}
	}
	return visible
}

func matches(text string, terms []string, mode MatchMode) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		found := strings.Contains(text, t)
		if mode == MatchAny && found {
			return true
		}
		if mode == MatchAll && !found {
			return false
		}
	}
	return mode == MatchAll
}

func searchableText(c domain.Card, category Category) string {
	var parts []string
	switch category {
	case CategorySubject:
		parts = c.UsefulSubjects
	case CategoryKeyword:
		parts = c.Keyword
	default:
		parts = make([]string, 0, 2+len(c.UsefulSubjects)+len(c.Keyword))
		parts = append(parts, c.WebpageName, c.UserSummary)
		parts = append(parts, c.UsefulSubjects...)
		parts = append(parts, c.Keyword...)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

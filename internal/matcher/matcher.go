// Package matcher ranks recipes by how many of their input ingredients
// match a search query.
package matcher

import (
	"sort"
	"strings"

	"github.com/pageza/recipe-ai/backend/internal/models"
)

// Sort keys accepted as the secondary ordering.
const (
	SortCreatedAt     = "createdAt"
	SortAverageRating = "averageRating"
	SortViews         = "views"
	SortTitle         = "title"
)

// SortKeys lists the valid secondary sort keys.
var SortKeys = []string{SortCreatedAt, SortAverageRating, SortViews, SortTitle}

// Options controls thresholding and paging.
type Options struct {
	MinMatch int
	SortBy   string
	Skip     int
	Limit    int
}

// Match is a recipe with its match count.
type Match struct {
	Recipe     models.Recipe `json:"recipe"`
	MatchCount int           `json:"matchCount"`
}

// Normalize lowercases and trims the query terms, dropping empties.
func Normalize(query []string) []string {
	out := make([]string, 0, len(query))
	for _, q := range query {
		q = strings.ToLower(strings.TrimSpace(q))
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}

// CountMatches returns how many of ingredients contain at least one of the
// normalized terms. Each ingredient counts at most once.
func CountMatches(ingredients []string, terms []string) int {
	count := 0
	for _, ing := range ingredients {
		ing = strings.ToLower(ing)
		for _, term := range terms {
			if strings.Contains(ing, term) {
				count++
				break
			}
		}
	}
	return count
}

// Rank scores candidates against query, drops those under MinMatch, orders
// by match count then the secondary key, and pages the result. It returns
// the page and the number of matches before paging. Candidates that tie on
// both keys keep their input order.
func Rank(candidates []models.Recipe, query []string, opts Options) ([]Match, int) {
	terms := Normalize(query)
	minMatch := opts.MinMatch
	if minMatch < 1 {
		minMatch = 1
	}

	matches := make([]Match, 0, len(candidates))
	for _, r := range candidates {
		n := CountMatches(r.InputIngredients, terms)
		if n < minMatch {
			continue
		}
		matches = append(matches, Match{Recipe: r, MatchCount: n})
	}

	less := secondary(opts.SortBy)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchCount != matches[j].MatchCount {
			return matches[i].MatchCount > matches[j].MatchCount
		}
		return less(&matches[i].Recipe, &matches[j].Recipe)
	})

	total := len(matches)
	start := opts.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return matches[start:end], total
}

func secondary(sortBy string) func(a, b *models.Recipe) bool {
	switch sortBy {
	case SortAverageRating:
		return func(a, b *models.Recipe) bool { return a.AverageRating > b.AverageRating }
	case SortViews:
		return func(a, b *models.Recipe) bool { return a.Views > b.Views }
	case SortTitle:
		return func(a, b *models.Recipe) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return func(a, b *models.Recipe) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

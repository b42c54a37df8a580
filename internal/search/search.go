package search

import (
	"errors"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

// ErrEmptyQuery rejects whitespace-only queries before any scanning.
var ErrEmptyQuery = errors.New("query is empty")

const defaultLimit = 40

// Options tune candidate presentation.
type Options struct {
	// Limit caps how many ranked candidates are returned; 0 means 40.
	Limit int

	// MinSimilarity drops candidates scoring below it when more than one
	// distinct value matched; 0 keeps everything the substring scan found.
	MinSimilarity float64
}

// Candidates scans column col (0-based) of the grid's data rows for cells
// whose normalized text contains query case-insensitively, and returns the
// distinct matches ranked by similarity to the query.
//
// The two stages keep cost proportional to the column: a cheap substring
// prefilter collects distinct values in discovery order, then fuzzy scoring
// only orders that (small) set for presentation. An empty result means no
// matches; a single-element result is already resolved and needs no pick.
func Candidates(g *grid.Grid, col int, query string, opts Options) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	needle := strings.ToLower(query)

	// Distinct raw matches, deduplicated case-insensitively keeping the
	// first-seen surface form.
	var distinct []string
	seen := make(map[string]struct{})
	for i := 0; i < g.RowCount(); i++ {
		v := strings.TrimSpace(g.Cell(i, col))
		if v == "" {
			continue
		}
		folded := strings.ToLower(v)
		if !strings.Contains(folded, needle) {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		distinct = append(distinct, v)
	}

	if len(distinct) <= 1 {
		return distinct, nil
	}

	return rank(distinct, needle, opts), nil
}

// rank orders the distinct set by fuzzy similarity against the query, ties
// broken by discovery order, and applies the threshold and presentation cap.
func rank(distinct []string, needle string, opts Options) []string {
	metric := metrics.NewJaroWinkler()
	scores := make([]float64, len(distinct))
	for i, v := range distinct {
		scores[i] = strutil.Similarity(strings.ToLower(v), needle, metric)
	}

	order := make([]int, len(distinct))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	ranked := make([]string, 0, len(distinct))
	for _, i := range order {
		if opts.MinSimilarity > 0 && scores[i] < opts.MinSimilarity {
			continue
		}
		ranked = append(ranked, distinct[i])
		if len(ranked) == limit {
			break
		}
	}
	return ranked
}

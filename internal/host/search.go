package host

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/modhost/internal/proxy"
)

// SearchResult is an action matched by Search.
type SearchResult struct {
	// Action is the matched action.
	Action proxy.Action

	// Score is the match score (higher is better).
	Score int

	// Matches are the byte offsets of the matched runes in the name.
	Matches []int
}

// Search finds actions whose name, or else module name, fuzzy matches the
// query. Results are sorted by score, then name. A limit of zero or less
// returns all results.
func (h *Host) Search(query string, limit int) []SearchResult {
	actions := h.Actions()
	query = strings.ToLower(query)

	results := make([]SearchResult, 0, len(actions))
	for _, a := range actions {
		if query == "" {
			results = append(results, SearchResult{Action: a})
			continue
		}
		if score, matches := fuzzyMatch(query, a.Name()); score > 0 {
			results = append(results, SearchResult{Action: a, Score: score + 50, Matches: matches})
		} else if score, _ := fuzzyMatch(query, a.ModuleName()); score > 0 {
			results = append(results, SearchResult{Action: a, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// fuzzyMatch matches the query runes in order, ignoring case, returning 0
// if some are missing. The matches are byte offsets into text.
func fuzzyMatch(query, text string) (int, []int) {
	if text == "" || query == "" {
		return 0, nil
	}

	q := []rune(query)
	matches := make([]int, 0, len(q))
	positions := make([]int, 0, len(q))
	qi, pos := 0, 0
	for i, r := range text {
		if qi == len(q) {
			break
		}
		if unicode.ToLower(r) == q[qi] {
			matches = append(matches, i)
			positions = append(positions, pos)
			qi++
		}
		pos++
	}
	if qi != len(q) {
		return 0, nil
	}

	score := 100
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += 20
		}
	}
	for _, i := range matches {
		if isWordStart(text, i) {
			score += 15
		}
	}
	if len(positions) > 1 {
		score -= 2 * (positions[len(positions)-1] - positions[0] - len(positions) + 1)
	}
	score -= positions[0]
	if strings.HasPrefix(strings.ToLower(text), query) {
		score += 50
	}
	return max(score, 1), matches
}

// isWordStart reports whether the rune at byte offset i of text starts a
// word.
func isWordStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	cur, _ := utf8.DecodeRuneInString(text[i:])
	switch prev {
	case ' ', '-', '_', '.', '/', ':', '\\':
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

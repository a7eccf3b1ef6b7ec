package browse

import (
	"strings"

	"codeaid/internal/content"
)

// FilterSnippets returns the order-preserving subsequence of snippets whose
// title, code, explanation or use case contains the query, case-insensitive.
// Tags are deliberately not matched. An empty (or whitespace-only) query
// returns the input unchanged.
func FilterSnippets(snippets []content.Snippet, query string) []content.Snippet {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return snippets
	}
	out := make([]content.Snippet, 0, len(snippets))
	for _, s := range snippets {
		haystack := strings.ToLower(s.Title + "\n" + s.Code + "\n" + s.Explanation + "\n" + s.UseCase)
		if strings.Contains(haystack, q) {
			out = append(out, s)
		}
	}
	return out
}

// FilterIndices is FilterSnippets over positions: it reports which indices of
// the input survive the query. Callers that key favorites and history by
// position need the original index, not the filtered one.
func FilterIndices(snippets []content.Snippet, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]int, 0, len(snippets))
	if q == "" {
		for i := range snippets {
			out = append(out, i)
		}
		return out
	}
	for i, s := range snippets {
		haystack := strings.ToLower(s.Title + "\n" + s.Code + "\n" + s.Explanation + "\n" + s.UseCase)
		if strings.Contains(haystack, q) {
			out = append(out, i)
		}
	}
	return out
}

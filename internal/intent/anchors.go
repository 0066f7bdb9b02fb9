package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

var capitalizedPhrase = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)

// ExtractAnchors finds catalog entity names mentioned in the query. Longer
// names match first so "Trade Settlement" is not shadowed by "Trade". When
// nothing matches literally, the longest capitalized phrase is resolved
// against the catalog by fuzzy match.
func ExtractAnchors(query string, catalog []string) []string {
	sorted := make([]string, len(catalog))
	copy(sorted, catalog)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	var found []string
	remaining := query
	for _, term := range sorted {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			continue
		}
		if pattern.MatchString(remaining) {
			found = append(found, term)
			remaining = pattern.ReplaceAllString(remaining, "")
		}
	}

	if len(found) > 0 {
		return found
	}

	phrases := capitalizedPhrase.FindAllString(query, -1)
	if len(phrases) == 0 {
		return nil
	}
	best := phrases[0]
	for _, p := range phrases[1:] {
		if len(p) > len(best) {
			best = p
		}
	}

	if resolved, ok := resolveFuzzy(best, catalog, 0.85); ok {
		return []string{resolved}
	}
	return nil
}

// Suggest returns up to limit catalog names loosely matching the query, used
// when no anchor could be identified.
func Suggest(query string, catalog []string, limit int) []string {
	var suggestions []string
	for _, m := range fuzzy.Find(strings.TrimSpace(query), catalog) {
		if matchRatio(m, catalog[m.Index]) < 0.5 {
			continue
		}
		suggestions = append(suggestions, catalog[m.Index])
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

func resolveFuzzy(input string, catalog []string, minRatio float64) (string, bool) {
	matches := fuzzy.Find(input, catalog)
	if len(matches) == 0 {
		return "", false
	}
	best := matches[0]
	if matchRatio(best, catalog[best.Index]) < minRatio {
		return "", false
	}
	return catalog[best.Index], true
}

// matchRatio measures how much of the candidate the match covers, a rough
// stand-in for an edit-distance ratio.
func matchRatio(m fuzzy.Match, candidate string) float64 {
	if len(candidate) == 0 {
		return 0
	}
	return float64(len(m.MatchedIndexes)) / float64(len(candidate))
}

package intent

import "strings"

// Intent categories routed by keyword lookup. First hit wins in the order
// declared here.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"Strategic", []string{"strategy", "goal", "objective", "plan", "vision"}},
	{"Operational", []string{"process", "steps", "workflow", "procedure", "operation"}},
	{"Informational", []string{"what", "how", "describe", "information", "details", "differences"}},
	{"Impact", []string{"impact", "effect", "influence", "consequence"}},
	{"Technical", []string{"api", "data entity", "technical", "attribute", "lineage", "id"}},
}

// ExtractIntent classifies a free-text query into one of the intent
// categories, defaulting to Informational.
func ExtractIntent(query string) string {
	queryLower := strings.ToLower(query)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(queryLower, kw) {
				return entry.intent
			}
		}
	}
	return "Informational"
}

// DeterminePersona maps the caller's role to a response tone and traversal
// depth. Specialists get the deepest expansion, executives the shallowest.
func DeterminePersona(role string) (string, int) {
	roleLower := strings.ToLower(role)
	switch {
	case strings.Contains(roleLower, "specialist") || strings.Contains(roleLower, "architect"):
		return "Specialist", 4
	case strings.Contains(roleLower, "executive") || strings.Contains(roleLower, "ceo") || strings.Contains(roleLower, "cfo"):
		return "Executive", 1
	case strings.Contains(roleLower, "manager"):
		return "Manager", 2
	default:
		return "Manager", 3
	}
}

// relPatternFor picks which relationship types a graph context expansion
// follows for a given intent.
func relPatternFor(intent string) string {
	switch intent {
	case "Strategic":
		return "ENABLED_BY|ACCOUNTABLE_FOR|REALIZED_BY"
	case "Operational":
		return "DECOMPOSES|SUPPORTS|REALIZED_BY"
	default:
		return "REALIZED_BY|USES_DATA|DECOMPOSES|HAS_ELEMENT"
	}
}

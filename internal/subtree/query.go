package subtree

import (
	"fmt"
	"strings"
)

// Direction controls which way the traversal walks relationships from the
// root.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ParseDirection accepts both the long and short spellings used by the API.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "out", "outgoing":
		return DirectionOutgoing, nil
	case "in", "incoming":
		return DirectionIncoming, nil
	case "both":
		return DirectionBoth, nil
	}
	return "", fmt.Errorf("direction must be one of 'outgoing', 'incoming', 'both' or 'out', 'in'")
}

// BuildSubtreeQuery assembles the variable-length expansion query matching
// the root by uid. The label must come from the entity registry, never from
// raw request input. A depth of zero or less means unbounded.
func BuildSubtreeQuery(label string, depth int, direction Direction, relTypes []string) string {
	return buildSubtreeQuery(label, "uid", depth, direction, relTypes)
}

func buildSubtreeQuery(label, matchProperty string, depth int, direction Direction, relTypes []string) string {
	depthStr := "*"
	if depth > 0 {
		depthStr = fmt.Sprintf("*1..%d", depth)
	}

	relFilter := ""
	if len(relTypes) > 0 {
		relFilter = ":" + strings.Join(relTypes, "|")
	}

	var relPattern string
	switch direction {
	case DirectionIncoming:
		relPattern = fmt.Sprintf("<-[%s%s]-", relFilter, depthStr)
	case DirectionBoth:
		relPattern = fmt.Sprintf("-[%s%s]-", relFilter, depthStr)
	default:
		relPattern = fmt.Sprintf("-[%s%s]->", relFilter, depthStr)
	}

	return fmt.Sprintf(`
		MATCH (root:%s {%s: $value})
		OPTIONAL MATCH path = (root)%s(x)
		WITH collect(path) AS paths
		UNWIND paths AS p
		UNWIND nodes(p) AS nd
		UNWIND relationships(p) AS rel
		RETURN DISTINCT nd, rel, length(p) AS depth
	`, label, matchProperty, relPattern)
}

package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// entityLabels maps the URL entity type segment to the node label stored in
// the graph. Everything the API exposes goes through this table, which also
// serves as the label whitelist for query interpolation.
var entityLabels = map[string]string{
	"capability":         "Capability",
	"process":            "Process",
	"subprocess":         "Subprocess",
	"dataentity":         "DataEntity",
	"dataelement":        "DataElements",
	"orgunits":           "OrganizationUnit",
	"applicationcatalog": "ApplicationCatalog",
}

// LabelFor resolves an entity type from the request path to its graph label.
func LabelFor(entityType string) (string, error) {
	label, ok := entityLabels[strings.ToLower(entityType)]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
	return label, nil
}

// ValidLabel reports whether label is one of the known node labels. Used when
// the label itself arrives in the request path.
func ValidLabel(label string) bool {
	for _, l := range entityLabels {
		if l == label {
			return true
		}
	}
	return false
}

// EntityTypes returns the supported entity type segments in sorted order.
func EntityTypes() []string {
	types := make([]string, 0, len(entityLabels))
	for t := range entityLabels {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Labels returns every known node label in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(entityLabels))
	for _, l := range entityLabels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

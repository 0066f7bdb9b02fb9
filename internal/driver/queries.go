package driver

// Cypher statements shared by the catalog and subtree services. Labels are
// interpolated by callers from a validated whitelist, never from raw request
// input, so the fmt-style placeholders here are safe.

const (
	// AllEntitiesQuery lists every node of one label in stable name order.
	AllEntitiesQuery = `
		MATCH (n:%s)
		RETURN n.uid AS uid, n.name AS name
		ORDER BY toLower(coalesce(n.name, toString(n.uid)))
	`

	// NodePropertiesByUIDQuery fetches the full property map for one node.
	NodePropertiesByUIDQuery = `
		MATCH (n:%s {uid: $uid})
		RETURN properties(n) AS props
		LIMIT 1
	`

	// NodePropertiesByNameQuery resolves a node by its display name instead
	// of its business key.
	NodePropertiesByNameQuery = `
		MATCH (n:%s {name: $name})
		RETURN properties(n) AS props
		LIMIT 1
	`

	// CatalogNamesQuery lists every named node in the given labels, one row
	// per node with the label it was matched under.
	CatalogNamesQuery = `
		MATCH (n)
		WHERE any(l IN labels(n) WHERE l IN $labels) AND n.name IS NOT NULL
		RETURN [l IN labels(n) WHERE l IN $labels][0] AS label, n.uid AS uid, n.name AS name
		ORDER BY label, toLower(n.name)
	`

	// SubtreeRootQuery loads the traversal root on its own so an empty
	// expansion still yields the root node.
	SubtreeRootQuery = `
		MATCH (root:%s {%s: $value})
		RETURN root
		LIMIT 1
	`
)

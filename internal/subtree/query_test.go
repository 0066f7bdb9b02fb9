package subtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"", "out", "outgoing", "OUT"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, DirectionOutgoing, d)
	}

	d, err := ParseDirection("in")
	require.NoError(t, err)
	assert.Equal(t, DirectionIncoming, d)

	d, err = ParseDirection("both")
	require.NoError(t, err)
	assert.Equal(t, DirectionBoth, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestBuildSubtreeQueryOutgoing(t *testing.T) {
	q := BuildSubtreeQuery("Capability", 3, DirectionOutgoing, nil)
	assert.Contains(t, q, "MATCH (root:Capability {uid: $value})")
	assert.Contains(t, q, "-[*1..3]->")
	assert.Contains(t, q, "RETURN DISTINCT nd, rel, length(p) AS depth")
}

func TestBuildSubtreeQueryIncoming(t *testing.T) {
	q := BuildSubtreeQuery("Process", 2, DirectionIncoming, nil)
	assert.Contains(t, q, "<-[*1..2]-")
}

func TestBuildSubtreeQueryBothUnbounded(t *testing.T) {
	q := BuildSubtreeQuery("DataEntity", 0, DirectionBoth, nil)
	assert.Contains(t, q, "-[*]-")
	assert.NotContains(t, q, "1..")
}

func TestBuildSubtreeQueryRelFilter(t *testing.T) {
	q := BuildSubtreeQuery("Capability", 1, DirectionOutgoing, []string{"REALIZED_BY", "DECOMPOSES"})
	assert.Contains(t, q, "-[:REALIZED_BY|DECOMPOSES*1..1]->")
}

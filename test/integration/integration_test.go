//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capabilitycompass/compass/internal/catalog"
	"github.com/capabilitycompass/compass/internal/driver"
	"github.com/capabilitycompass/compass/internal/subtree"
)

func connect(t *testing.T) *driver.Neo4jDriver {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}

	d, err := driver.NewNeo4jDriver(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })
	return d
}

// seedTree creates a three-level capability tree with unique names and
// returns the root uid. Cleanup removes everything it created.
func seedTree(t *testing.T, d *driver.Neo4jDriver) (int64, string) {
	t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	rootUID := int64(100000 + len(suffix))
	rootName := fmt.Sprintf("Payments %s", suffix)

	_, err := d.ExecuteQuery(ctx, `
		CREATE (c:Capability {uid: $rootUID, name: $rootName, description: 'Moves money', seed: $suffix})
		CREATE (p:Process {uid: $rootUID + 1, name: $processName, seed: $suffix})
		CREATE (s:Subprocess {uid: $rootUID + 2, name: $subName, seed: $suffix})
		CREATE (c)-[:REALIZED_BY]->(p)
		CREATE (p)-[:DECOMPOSES]->(s)
	`, map[string]interface{}{
		"rootUID":     rootUID,
		"rootName":    rootName,
		"processName": fmt.Sprintf("Clearing %s", suffix),
		"subName":     fmt.Sprintf("Netting %s", suffix),
		"suffix":      suffix,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = d.ExecuteQuery(ctx, `MATCH (n {seed: $suffix}) DETACH DELETE n`,
			map[string]interface{}{"suffix": suffix})
	})

	return rootUID, rootName
}

func TestSubtreeExpansion(t *testing.T) {
	d := connect(t)
	rootUID, rootName := seedTree(t, d)
	ctx := context.Background()

	svc := subtree.NewService(d)
	resp, err := svc.Subtree(ctx, "capability", fmt.Sprint(rootUID), 0, subtree.DirectionOutgoing, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, rootName, resp.Root.Name())
	assert.Equal(t, 2, resp.MaxDepth)
	require.Len(t, resp.Root.Relationships["REALIZED_BY"], 1)

	process := resp.Root.Relationships["REALIZED_BY"][0]
	require.Len(t, process.Relationships["DECOMPOSES"], 1)

	assert.Equal(t, 0, resp.NodeDepths[resp.Root.ID()])
}

func TestSubtreeByNameAndIncoming(t *testing.T) {
	d := connect(t)
	rootUID, rootName := seedTree(t, d)
	ctx := context.Background()

	svc := subtree.NewService(d)

	byName, err := svc.SubtreeByName(ctx, "capability", rootName, 1, subtree.DirectionOutgoing, nil)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, 1, byName.MaxDepth)

	// Walking up from the subprocess reaches the capability.
	up, err := svc.Subtree(ctx, "subprocess", fmt.Sprint(rootUID+2), 0, subtree.DirectionIncoming, nil)
	require.NoError(t, err)
	require.NotNil(t, up)
	assert.Equal(t, 2, up.MaxDepth)
}

func TestNodeProperties(t *testing.T) {
	d := connect(t)
	rootUID, rootName := seedTree(t, d)
	ctx := context.Background()

	svc := catalog.NewService(d)

	props, err := svc.NodeProperties(ctx, "Capability", fmt.Sprint(rootUID), "")
	require.NoError(t, err)
	assert.Equal(t, rootName, props["name"])
	assert.Equal(t, "Moves money", props["description"])

	byName, err := svc.NodeProperties(ctx, "Capability", "", rootName)
	require.NoError(t, err)
	assert.Equal(t, props["uid"], byName["uid"])

	_, err = svc.NodeProperties(ctx, "Capability", "0", "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMissingRoot(t *testing.T) {
	d := connect(t)
	ctx := context.Background()

	svc := subtree.NewService(d)
	resp, err := svc.Subtree(ctx, "capability", "0", 0, subtree.DirectionOutgoing, nil)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

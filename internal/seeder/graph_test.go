package seeder

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func edge(from, to string) types.Edge {
	return types.Edge{From: from, To: to}
}

func tableWithRefs(name string, refs ...string) *types.Table {
	t := &types.Table{Name: name, Columns: []types.Column{pkCol("id")}}
	for _, ref := range refs {
		col := ref + "_id"
		t.Columns = append(t.Columns, intCol(col))
		kind := types.CrossTable
		if ref == name {
			kind = types.SelfReference
		}
		t.ForeignKeys = append(t.ForeignKeys, types.ForeignKey{
			Name: name + "_" + ref, Kind: kind, RefTable: ref,
			Columns: []string{col}, RefColumns: []string{"id"},
		})
	}
	return t
}

func assertBefore(t *testing.T, order []string, first, second string) {
	t.Helper()
	i, j := slices.Index(order, first), slices.Index(order, second)
	require.NotEqual(t, -1, i, "%s missing from %v", first, order)
	require.NotEqual(t, -1, j, "%s missing from %v", second, order)
	assert.Less(t, i, j, "%s should come before %s in %v", first, second, order)
}

func assertPermutation(t *testing.T, tables, order []string) {
	t.Helper()
	assert.ElementsMatch(t, tables, order)
	assert.Len(t, order, len(tables))
}

func TestBuildEdges(t *testing.T) {
	tables := []*types.Table{
		tableWithRefs("users"),
		tableWithRefs("posts", "users", "users"),
		tableWithRefs("comments", "posts", "comments", "archive"),
	}

	edges := BuildEdges(tables)

	assert.Equal(t, []types.Edge{
		edge("users", "posts"),
		edge("posts", "comments"),
	}, edges)
}

func TestOrderChain(t *testing.T) {
	tables := []string{"c", "b", "a"}
	edges := []types.Edge{edge("a", "b"), edge("b", "c")}

	assert.Equal(t, []string{"a", "b", "c"}, Order(tables, edges))
	assert.Empty(t, Cycles(tables, edges))
}

func TestOrderRootsInInputOrderPerRound(t *testing.T) {
	tables := []string{"c", "b", "a"}
	edges := []types.Edge{edge("a", "b"), edge("a", "c")}

	assert.Equal(t, []string{"a", "c", "b"}, Order(tables, edges))
}

func TestOrderDiamond(t *testing.T) {
	tables := []string{"orders", "items", "users", "products"}
	edges := []types.Edge{
		edge("users", "orders"),
		edge("orders", "items"),
		edge("products", "items"),
	}

	order := Order(tables, edges)

	assertPermutation(t, tables, order)
	for _, e := range edges {
		assertBefore(t, order, e.From, e.To)
	}
}

func TestOrderTablesWithoutEdgesFollowInDiscoveryOrder(t *testing.T) {
	tables := []string{"settings", "b", "audit", "a"}
	edges := []types.Edge{edge("a", "b")}

	assert.Equal(t, []string{"a", "b", "settings", "audit"}, Order(tables, edges))
}

func TestOrderSelfReferenceOnly(t *testing.T) {
	tables := []string{"s", "t"}
	edges := []types.Edge{edge("s", "s")}

	order := Order(tables, edges)

	assert.Equal(t, []string{"s", "t"}, order)
	assert.Empty(t, Cycles(tables, edges))
}

func TestOrderIgnoresEdgesToUnknownTables(t *testing.T) {
	tables := []string{"orders"}
	edges := []types.Edge{edge("accounts", "orders")}

	assert.Equal(t, []string{"orders"}, Order(tables, edges))
}

func TestOrderDuplicateEdges(t *testing.T) {
	tables := []string{"b", "a"}
	edges := []types.Edge{edge("a", "b"), edge("a", "b")}

	assert.Equal(t, []string{"a", "b"}, Order(tables, edges))
}

func TestOrderCycleAppendedAsTail(t *testing.T) {
	tables := []string{"y", "root", "x", "leaf"}
	edges := []types.Edge{
		edge("root", "x"),
		edge("x", "y"),
		edge("y", "x"),
		edge("y", "leaf"),
	}

	order := Order(tables, edges)

	assertPermutation(t, tables, order)
	assert.Equal(t, "root", order[0])
	assert.Equal(t, []string{"y", "x", "leaf"}, Cycles(tables, edges))
	assert.Equal(t, []string{"root", "y", "x", "leaf"}, order)
}

func TestReverseOrderIsValidDeletionOrder(t *testing.T) {
	tables := []*types.Table{
		tableWithRefs("line_items", "orders", "products"),
		tableWithRefs("orders", "customers"),
		tableWithRefs("products", "vendors"),
		tableWithRefs("customers"),
		tableWithRefs("vendors"),
		tableWithRefs("categories", "categories"),
	}

	order := ComputeOrder(tables)
	deletion := slices.Clone(order)
	slices.Reverse(deletion)

	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assertPermutation(t, names, order)

	for _, e := range BuildEdges(tables) {
		assertBefore(t, order, e.From, e.To)
		assertBefore(t, deletion, e.To, e.From)
	}
}

func TestOrderIsPermutationForGeneratedGraphs(t *testing.T) {
	names := []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7"}

	// Every edge points from a lower index to a higher one, so each graph is
	// acyclic; the input order is reversed to make sorting do real work.
	for mask := 0; mask < 64; mask++ {
		var edges []types.Edge
		bit := 0
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names) && bit < 6; j += 3 {
				if mask&(1<<bit) != 0 {
					edges = append(edges, edge(names[i], names[j]))
				}
				bit++
			}
		}

		input := slices.Clone(names)
		slices.Reverse(input)
		order := Order(input, edges)

		assertPermutation(t, names, order)
		for _, e := range edges {
			assertBefore(t, order, e.From, e.To)
		}
		assert.Empty(t, Cycles(input, edges))
	}
}

package seeder

import (
	"slices"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

// BuildEdges returns one referenced -> dependent edge per distinct pair of
// tables linked by a foreign key. Self-references and references to tables
// outside the given set produce no edge. Edges come out in table order, then
// foreign key order.
func BuildEdges(tables []*types.Table) []types.Edge {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	seen := make(map[types.Edge]bool)
	var edges []types.Edge
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.IsSelf() || fk.RefTable == t.Name || !known[fk.RefTable] {
				continue
			}
			e := types.Edge{From: fk.RefTable, To: t.Name}
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}
	return edges
}

// Order linearizes tables so that every edge's From precedes its To.
//
// Tables that take part in an edge are placed first by repeatedly taking
// every table that depends on nothing still pending. Tables left over when no
// such table exists sit on or behind a cycle; they are appended in input order
// with no ordering guarantee. Tables without edges are then placed one at a time,
// right after the latest of their already placed dependencies, or at the end.
//
// The result is a permutation of tables. Reverse it for deletion.
func Order(tables []string, edges []types.Edge) []string {
	order, _ := sortTables(tables, edges)
	return order
}

// Cycles returns the tables Order could not linearize because they sit on, or
// depend on, a cycle of two or more tables. They are listed in input order.
// The result is empty for acyclic input.
func Cycles(tables []string, edges []types.Edge) []string {
	_, unresolved := sortTables(tables, edges)
	return unresolved
}

// ComputeOrder is BuildEdges followed by Order over the tables' names.
func ComputeOrder(tables []*types.Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return Order(names, BuildEdges(tables))
}

func sortTables(tables []string, edges []types.Edge) ([]string, []string) {
	inSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		inSet[t] = true
	}

	// Edges to or from tables outside the set and self edges carry no
	// ordering constraint here.
	var live []types.Edge
	for _, e := range edges {
		if e.From != e.To && inSet[e.From] && inSet[e.To] {
			live = append(live, e)
		}
	}

	participates := make(map[string]bool)
	for _, e := range live {
		participates[e.From] = true
		participates[e.To] = true
	}

	var pending []string
	for _, t := range tables {
		if participates[t] {
			pending = append(pending, t)
		}
	}

	result := make([]string, 0, len(tables))
	placed := make(map[string]bool, len(tables))

	// Phase 1: each round reads a fixed edge snapshot and yields the next
	// snapshot without the edges leaving the tables it placed.
	for len(pending) > 0 {
		dependent := make(map[string]bool)
		for _, e := range live {
			dependent[e.To] = true
		}

		var roots, rest []string
		for _, t := range pending {
			if dependent[t] {
				rest = append(rest, t)
			} else {
				roots = append(roots, t)
			}
		}
		if len(roots) == 0 {
			break
		}

		for _, t := range roots {
			result = append(result, t)
			placed[t] = true
		}

		next := make([]types.Edge, 0, len(live))
		for _, e := range live {
			if !placed[e.From] {
				next = append(next, e)
			}
		}
		live = next
		pending = rest
	}

	unresolved := slices.Clone(pending)
	for _, t := range unresolved {
		result = append(result, t)
		placed[t] = true
	}

	// Phase 2
	deps := make(map[string][]string)
	for _, e := range edges {
		if e.From != e.To {
			deps[e.To] = append(deps[e.To], e.From)
		}
	}

	for _, t := range tables {
		if placed[t] {
			continue
		}

		latest := -1
		for _, dep := range deps[t] {
			// A dependency that is not placed yet, including a missing
			// one, counts as satisfied.
			if idx := slices.Index(result, dep); idx > latest {
				latest = idx
			}
		}

		if latest < 0 {
			result = append(result, t)
		} else {
			result = slices.Insert(result, latest+1, t)
		}
		placed[t] = true
	}

	return result, unresolved
}

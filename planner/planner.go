// Package planner computes a deterministic, dependency-ordered build
// plan for a target path, tolerating cycles and unresolved references.
package planner

import (
	"sort"

	"github.com/flanksource/hdl-checker/models"
)

// Resolver is the subset of sourcedb.DB the planner needs: resolving a
// dependency to declaring paths and looking up a file's own library.
type Resolver interface {
	PathsByDesignUnit(library, name string, requester models.Path) []models.Path
	Get(path models.Path) (models.SourceFile, bool)
}

// UnresolvedDependency is reported when a dependency resolves to zero
// paths, so the caller can emit a diagnostic at the reference site
// (spec §4.3 rule 1, §7).
type UnresolvedDependency struct {
	From models.Path
	Dep  models.Dependency
}

// AmbiguousDependency is reported when a dependency resolves to more
// than one candidate path (spec §9 open question, resolved as
// informational rather than silent).
type AmbiguousDependency struct {
	From       models.Path
	Dep        models.Dependency
	Candidates []models.Path
}

// BrokenEdge records a cycle-breaking edge removal (spec §4.3 rule 3).
type BrokenEdge struct {
	Src, Dst models.Path
}

// Plan is the planner's full result for one target.
type Plan struct {
	Order        []models.Path
	Unresolved   []UnresolvedDependency
	Ambiguous    []AmbiguousDependency
	BrokenCycles []BrokenEdge
}

type edge struct{ src, dst string }

// Build returns an ordered list of paths, target included, such that
// every file's dependencies appear earlier (ignoring broken-cycle
// edges), per spec §4.3. The target is last unless a cycle through it
// was broken on one of the target's own edges: a file that still
// depends on the target is then ordered after it.
func Build(resolver Resolver, target models.Path) Plan {
	var result Plan

	nodes := map[string]models.Path{target.String(): target}
	adj := map[string]map[string]bool{} // src -> set of dst (dst must come before src)

	visited := map[string]bool{}
	var visit func(p models.Path)
	visit = func(p models.Path) {
		key := p.String()
		if visited[key] {
			return
		}
		visited[key] = true
		nodes[key] = p

		sf, ok := resolver.Get(p)
		if !ok {
			return
		}

		deps := append([]models.Dependency(nil), sf.Dependencies...)
		sort.Slice(deps, func(i, j int) bool {
			if deps[i].Library.String() != deps[j].Library.String() {
				return deps[i].Library.String() < deps[j].Library.String()
			}
			return deps[i].Name.String() < deps[j].Name.String()
		})

		for _, dep := range deps {
			candidates := resolver.PathsByDesignUnit(dep.Library.String(), dep.Name.String(), p)
			if len(candidates) == 0 {
				result.Unresolved = append(result.Unresolved, UnresolvedDependency{From: p, Dep: dep})
				continue
			}
			if len(candidates) > 1 {
				result.Ambiguous = append(result.Ambiguous, AmbiguousDependency{From: p, Dep: dep, Candidates: candidates})
			}

			chosen := chooseDeterministic(resolver, candidates)
			if chosen.Equal(p) {
				continue // self-reference (e.g. package referencing itself); not an edge
			}

			if adj[key] == nil {
				adj[key] = map[string]bool{}
			}
			adj[key][chosen.String()] = true

			visit(chosen)
		}
	}
	visit(target)

	order, broken := topoSort(nodes, adj)
	result.Order = order
	result.BrokenCycles = broken
	return result
}

// chooseDeterministic picks among multiple candidate paths declaring
// the same (library, name) by (library name, path string), per spec §4.3 rule 1.
func chooseDeterministic(resolver Resolver, candidates []models.Path) models.Path {
	type cand struct {
		lib  string
		path models.Path
	}
	items := make([]cand, 0, len(candidates))
	for _, c := range candidates {
		lib := "" // unknown library falls back to empty, sorting before named libraries, then by path
		if sf, ok := resolver.Get(c); ok && !sf.Library.IsZero() {
			lib = sf.Library.String()
		}
		items = append(items, cand{lib: lib, path: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].lib != items[j].lib {
			return items[i].lib < items[j].lib
		}
		return items[i].path.String() < items[j].path.String()
	})
	return items[0].path
}

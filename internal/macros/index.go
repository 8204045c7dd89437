// Package macros tracks which source ranges of one request came from a macro
// expansion.
package macros

import (
	"fmt"
	"math"
	"sort"

	"github.com/jward/cppdriver/internal/ast"
)

// site is one expansion range tagged with its definition's codename.
type site struct {
	codename string
	rng      ast.Range
}

// Index answers containment queries against every expansion site of one
// request. Build it, Seal it, then query it; it is not safe to Register after
// Seal.
type Index struct {
	sites       []site
	occurrences map[*ast.MacroDefinition][]ast.Range
	minStart    int
	maxEnd      int
	sealed      bool
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		occurrences: make(map[*ast.MacroDefinition][]ast.Range),
		minStart:    math.MaxInt,
		maxEnd:      math.MinInt,
	}
}

// Build registers every definition in macros and seals the index.
func Build(macros []ast.MacroSites) *Index {
	idx := New()
	for _, m := range macros {
		idx.Register(m.Definition, m.Sites)
	}
	idx.Seal()
	return idx
}

// Codename identifies a definition across its expansions:
// <name>_<defStart>:<defEnd>.
func Codename(def *ast.MacroDefinition) string {
	r := def.Range()
	return fmt.Sprintf("%s_%d:%d", def.Name, r.Offset, r.End())
}

// Register records def's expansion sites. A definition without a source
// range still records its occurrences but contributes no codename sites.
func (idx *Index) Register(def *ast.MacroDefinition, sites []ast.Range) {
	if def == nil {
		return
	}
	idx.occurrences[def] = append(idx.occurrences[def], sites...)
	if def.Range().Length <= 0 {
		return
	}
	name := Codename(def)
	for _, r := range sites {
		idx.minStart = min(idx.minStart, r.Offset)
		idx.maxEnd = max(idx.maxEnd, r.End())
		idx.sites = append(idx.sites, site{codename: name, rng: r})
	}
	idx.sealed = false
}

// Seal orders the sites ascending by start offset. Sites with equal starts
// keep registration order.
func (idx *Index) Seal() {
	sort.SliceStable(idx.sites, func(i, j int) bool {
		return idx.sites[i].rng.Offset < idx.sites[j].rng.Offset
	})
	idx.sealed = true
}

// ContainingCodename returns the codename of the first site, in ascending
// start order, whose range fully contains rng. A range that only overlaps a
// site is never reported.
//
// When expansions nest, the lowest-starting site wins, which is the
// outermost expansion. Callers that want the innermost must not rely on this
// method.
func (idx *Index) ContainingCodename(rng ast.Range) (string, bool) {
	if !idx.sealed {
		idx.Seal()
	}
	if len(idx.sites) == 0 || rng.Offset < idx.minStart || rng.End() > idx.maxEnd {
		return "", false
	}
	for _, s := range idx.sites {
		if s.rng.Offset > rng.Offset {
			break
		}
		if s.rng.Contains(rng) {
			return s.codename, true
		}
	}
	return "", false
}

// ExpansionsOf returns def's expansion ranges in registration order.
func (idx *Index) ExpansionsOf(def *ast.MacroDefinition) []ast.Range {
	return idx.occurrences[def]
}

// Len reports the number of codename sites.
func (idx *Index) Len() int { return len(idx.sites) }

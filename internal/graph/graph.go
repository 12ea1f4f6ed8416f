// Package graph derives lineage edges and founder counts from compiled
// pedigrees.
package graph

import (
	"fmt"
	"sort"

	"github.com/williamscole/ped-sim/internal/model"
)

// Node is one individual of a replicate: the i1 of a branch or a founder
// spouse married into one.
type Node struct {
	ID      string
	Ref     model.BranchRef
	Founder bool // not descended from anyone in the pedigree
	Spouse  bool // a founder married into Ref
	Sex     model.Sex
	Print   int // samples printed from the branch; 0 for spouses
}

// Edge links a parent node to the i1 of a child branch.
type Edge struct {
	Parent string
	Child  string
}

// Lineage is the individual-level graph of one pedigree replicate.
type Lineage struct {
	Pedigree string
	Nodes    []Node
	Edges    []Edge
}

// NodeID returns the graph id of p. Founders that marry into no branch are
// never drawn, so they have no id.
func NodeID(p model.Parent) string {
	if p.Kind == model.ParentFounder && p.Branch == model.NoBranch {
		return ""
	}
	return p.String()
}

// BuildLineage lists every branch i1 and founder spouse of v together with
// the parent-child edges between them. Founder branches hold a single new
// individual and get no parent edges.
func BuildLineage(v model.View) Lineage {
	l := Lineage{Pedigree: v.Name()}
	spouses := make(map[string]model.Parent)

	for gen := 0; gen < v.NumGenerations(); gen++ {
		for br := 0; br < v.NumBranches(gen); br++ {
			ref := model.BranchRef{Gen: gen, Branch: br}
			child := ref.String()
			founder := gen == 0 || v.IsFounderBranch(gen, br)
			l.Nodes = append(l.Nodes, Node{
				ID:      child,
				Ref:     ref,
				Founder: founder,
				Sex:     v.Sex(gen, br),
				Print:   v.SamplesToPrint(gen, br),
			})
			if founder {
				continue
			}
			a, b, _ := v.Parents(gen, br)
			for _, p := range [2]model.Parent{a, b} {
				id := NodeID(p)
				if p.IsFounder() {
					spouses[id] = p
				}
				l.Edges = append(l.Edges, Edge{Parent: id, Child: child})
			}
		}
	}

	founders := make([]model.Parent, 0, len(spouses))
	for _, p := range spouses {
		founders = append(founders, p)
	}
	sort.Slice(founders, func(i, j int) bool {
		a, b := founders[i], founders[j]
		if a.Gen != b.Gen {
			return a.Gen < b.Gen
		}
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		return a.Founder < b.Founder
	})
	for _, p := range founders {
		// a spouse has the opposite sex of the branch it marries into
		l.Nodes = append(l.Nodes, Node{ID: NodeID(p), Ref: p.Ref(), Founder: true, Spouse: true, Sex: v.Sex(p.Gen, p.Branch).Opposite()})
	}
	return l
}

// Census counts the individuals one replicate of a pedigree needs.
type Census struct {
	Pedigree string
	// FirstGeneration is the number of first-generation i1s.
	FirstGeneration int
	// FounderBranches counts later branches that start from a new founder.
	FounderBranches int
	// Spouses is the number of distinct founder spouses.
	Spouses int
	// Printed is the number of samples printed.
	Printed int
}

// Founders is the total founder count of one replicate.
func (c Census) Founders() int {
	return c.FirstGeneration + c.FounderBranches + c.Spouses
}

func (c Census) String() string {
	return fmt.Sprintf("%s: %d founders, %d printed samples per replicate", c.Pedigree, c.Founders(), c.Printed)
}

// CountFounders computes the census of v.
func CountFounders(v model.View) Census {
	c := Census{Pedigree: v.Name()}
	if v.NumGenerations() == 0 {
		return c
	}
	c.FirstGeneration = v.NumBranches(0)

	seen := make(map[model.Parent]struct{})
	for gen := 0; gen < v.NumGenerations(); gen++ {
		for br := 0; br < v.NumBranches(gen); br++ {
			c.Printed += v.SamplesToPrint(gen, br)
			if gen == 0 {
				continue
			}
			if v.IsFounderBranch(gen, br) {
				c.FounderBranches++
				continue
			}
			a, b, _ := v.Parents(gen, br)
			for _, p := range [2]model.Parent{a, b} {
				if p.IsFounder() {
					seen[p] = struct{}{}
				}
			}
		}
	}
	c.Spouses = len(seen)
	return c
}

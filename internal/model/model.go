// Package model defines core data structures for compiled pedigree definitions.
package model

import "fmt"

// Sex of an i1 individual.
type Sex int8

const (
	SexUnknown Sex = iota
	Male
	Female
)

// Opposite returns the other sex; SexUnknown stays unknown.
func (s Sex) Opposite() Sex {
	switch s {
	case Male:
		return Female
	case Female:
		return Male
	}
	return SexUnknown
}

func (s Sex) String() string {
	switch s {
	case Male:
		return "M"
	case Female:
		return "F"
	}
	return ""
}

// ParseSex converts "M" or "F" to a Sex.
func ParseSex(s string) (Sex, bool) {
	switch s {
	case "M":
		return Male, true
	case "F":
		return Female, true
	}
	return SexUnknown, false
}

// BranchRef identifies a branch by 0-based generation and branch index.
type BranchRef struct {
	Gen    int
	Branch int
}

func (r BranchRef) String() string {
	return fmt.Sprintf("g%db%d", r.Gen+1, r.Branch+1)
}

// ParentKind distinguishes an existing branch from a synthesized founder.
type ParentKind uint8

const (
	ParentNone ParentKind = iota
	ParentBranch
	ParentFounder
)

// NoBranch marks a founder that is not the spouse of any branch: one of the
// two parents of a brand-new founder branch.
const NoBranch = -1

// Parent is one parent of a branch. For ParentBranch, Gen/Branch name the
// i1 individual of that branch. For ParentFounder, Gen/Branch name the branch
// the founder marries into (Branch is NoBranch for unattached founders) and
// Founder numbers the founder uniquely within that scope, starting at 1.
type Parent struct {
	Kind    ParentKind
	Gen     int
	Branch  int
	Founder int
}

// BranchParent returns a parent that is the i1 individual of gen/branch.
func BranchParent(gen, branch int) Parent {
	return Parent{Kind: ParentBranch, Gen: gen, Branch: branch}
}

// FounderParent returns a new founder married into gen/spouseOf.
func FounderParent(gen, spouseOf, id int) Parent {
	return Parent{Kind: ParentFounder, Gen: gen, Branch: spouseOf, Founder: id}
}

// IsFounder reports whether p stands for a new, unrelated individual.
func (p Parent) IsFounder() bool { return p.Kind == ParentFounder }

// Ref returns the branch p belongs to (or marries into).
func (p Parent) Ref() BranchRef { return BranchRef{Gen: p.Gen, Branch: p.Branch} }

func (p Parent) String() string {
	switch p.Kind {
	case ParentBranch:
		return p.Ref().String()
	case ParentFounder:
		if p.Branch == NoBranch {
			return fmt.Sprintf("g%d~f%d", p.Gen+1, p.Founder)
		}
		return fmt.Sprintf("%s~f%d", p.Ref(), p.Founder)
	}
	return ""
}

// GroupID addresses a sex-constraint group. Groups come in opposite-sex pairs
// whose ids differ only in the lowest bit.
type GroupID int

// NoGroup marks a branch that belongs to no constraint group.
const NoGroup GroupID = -1

// Paired returns the id of the opposite-sex group of g.
func (g GroupID) Paired() GroupID {
	if g < 0 {
		return NoGroup
	}
	return g ^ 1
}

// Pair returns the index of the opposite-sex pair g belongs to.
func (g GroupID) Pair() int { return int(g) >> 1 }

// Valid reports whether g refers to a group.
func (g GroupID) Valid() bool { return g >= 0 }

// SexSlot holds the sex constraint state of one branch's i1 individual.
// Sex is the fixed sex while a definition is read and the resolved sex once
// the pedigree is finalized.
type SexSlot struct {
	Group GroupID
	Sex   Sex
}

// NewSexSlots returns n unassigned slots.
func NewSexSlots(n int) []SexSlot {
	slots := make([]SexSlot, n)
	for i := range slots {
		slots[i].Group = NoGroup
	}
	return slots
}

// Generation is one row of branches.
type Generation struct {
	// Parents of each branch; nil for the first generation.
	Parents [][2]Parent
	// Print is the requested number of samples to print per branch.
	Print []int
	// Founders marks branches that are brand-new founders rather than
	// children of the previous generation.
	Founders []bool
	// Sex is nil when no branch of the generation needed a sex slot.
	Sex []SexSlot
}

// NumBranches returns the branch count of g.
func (g *Generation) NumBranches() int { return len(g.Print) }

// Pedigree is one fully resolved, named pedigree definition. It is built by
// the compiler and read through View.
type Pedigree struct {
	name        string
	numReps     int
	i1          Sex
	line        int
	generations []Generation
}

// NewPedigree freezes a resolved pedigree. line is the line of its def header.
func NewPedigree(name string, numReps int, i1 Sex, line int, gens []Generation) *Pedigree {
	return &Pedigree{name: name, numReps: numReps, i1: i1, line: line, generations: gens}
}

// Line returns the line number of the def header.
func (p *Pedigree) Line() int { return p.line }

// View is the read-only interface a simulator consumes. Generation and
// branch arguments are 0-based.
type View interface {
	Name() string
	Replicates() int
	NumGenerations() int
	I1Sex() Sex
	NumBranches(gen int) int
	Parents(gen, branch int) (Parent, Parent, bool)
	SamplesToPrint(gen, branch int) int
	Sex(gen, branch int) Sex
	IsFounderBranch(gen, branch int) bool
}

var _ View = (*Pedigree)(nil)

func (p *Pedigree) Name() string        { return p.name }
func (p *Pedigree) Replicates() int     { return p.numReps }
func (p *Pedigree) NumGenerations() int { return len(p.generations) }
func (p *Pedigree) I1Sex() Sex          { return p.i1 }

func (p *Pedigree) NumBranches(gen int) int {
	return p.generations[gen].NumBranches()
}

// Parents returns the two parents of gen/branch; ok is false in the first
// generation.
func (p *Pedigree) Parents(gen, branch int) (Parent, Parent, bool) {
	g := &p.generations[gen]
	if g.Parents == nil {
		return Parent{}, Parent{}, false
	}
	pp := g.Parents[branch]
	return pp[0], pp[1], true
}

// SamplesToPrint returns the number of samples printed for gen/branch. A
// founder branch holds a single individual, so it prints at most one.
func (p *Pedigree) SamplesToPrint(gen, branch int) int {
	g := &p.generations[gen]
	n := g.Print[branch]
	if g.Founders != nil && g.Founders[branch] && n > 1 {
		return 1
	}
	return n
}

func (p *Pedigree) Sex(gen, branch int) Sex {
	g := &p.generations[gen]
	if g.Sex == nil {
		return SexUnknown
	}
	return g.Sex[branch].Sex
}

func (p *Pedigree) IsFounderBranch(gen, branch int) bool {
	g := &p.generations[gen]
	return g.Founders != nil && g.Founders[branch]
}

// Package pedigree builds resolved pedigrees from generation lines and branch
// directives.
//
// A Builder owns one pedigree under construction. Generations are begun in
// increasing order; generations the def file skips are synthesized with
// default structure. Directives are applied to the generation being read,
// and EndGeneration gives default parents to every branch the directives did
// not assign. Finalize commits resolved sexes and freezes the result into a
// *model.Pedigree.
package pedigree

import (
	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/directive"
	"github.com/williamscole/ped-sim/internal/model"
	"github.com/williamscole/ped-sim/internal/sexcon"
)

// Limits on the size of one pedigree.
const (
	MaxGenerations = 1 << 16
	MaxBranches    = 1 << 20 // summed over all generations
)

// Header describes a pedigree as declared on its def line.
type Header struct {
	Name        string
	Replicates  int
	Generations int
	I1          model.Sex // SexUnknown unless every i1 has a fixed sex
	Line        int
}

// GenerationSpec is the leading part of a generation line.
type GenerationSpec struct {
	Line int
	Gen  int // 1-based
	// Print is the number of samples to print from each branch.
	Print int
	// Branches is the explicit branch count, or 0 for the default.
	Branches int
}

// genState is a generation under construction.
type genState struct {
	model.Generation
	// spouses counts the founder spouses married into each branch.
	spouses []int
	// assigned marks branches whose parents were given explicitly.
	assigned []bool
	explicit bool
	// unattached counts the founders of brand-new founder branches whose
	// parents belong to this generation.
	unattached int
}

// Builder accumulates one pedigree. It is not safe for concurrent use.
type Builder struct {
	hdr      Header
	gens     []*genState
	lastRead int // 0-based index of the last generation begun, -1 for none
	total    int // branches allocated so far
	resolver *sexcon.Resolver
	warnings []diag.Warning
}

// NewBuilder starts an empty pedigree. The header must already be validated.
func NewBuilder(h Header) *Builder {
	b := &Builder{
		hdr:      h,
		gens:     make([]*genState, h.Generations),
		lastRead: -1,
	}
	b.resolver = sexcon.New(b)
	return b
}

// Name returns the pedigree name.
func (b *Builder) Name() string { return b.hdr.Name }

// Warnings returns the warnings raised so far.
func (b *Builder) Warnings() []diag.Warning { return b.warnings }

// Slot returns the sex slot of ref, allocating the generation's slots on
// first use. It implements sexcon.SlotTable.
func (b *Builder) Slot(ref model.BranchRef) *model.SexSlot {
	g := b.gens[ref.Gen]
	if g.Sex == nil {
		g.Sex = model.NewSexSlots(g.NumBranches())
	}
	return &g.Sex[ref.Branch]
}

func (b *Builder) allocGeneration(gen, count, numPrint int) *genState {
	g := &genState{
		Generation: model.Generation{
			Print:    make([]int, count),
			Founders: make([]bool, count),
		},
		spouses:  make([]int, count),
		assigned: make([]bool, count),
		explicit: true,
	}
	for i := range g.Print {
		g.Print[i] = numPrint
	}
	if gen > 0 {
		g.Parents = make([][2]model.Parent, count)
	}
	b.gens[gen] = g
	b.total += count
	return g
}

// checkBudget fails when allocating generations from through to, the last
// with count branches (0 for the default) and the others default-filled,
// would exceed MaxBranches.
func (b *Builder) checkBudget(line, from, to, count int) error {
	sum := b.total
	prev := 0
	if from > 0 {
		prev = b.gens[from-1].NumBranches()
	}
	for i := from; i <= to; i++ {
		n := defaultCount(i, prev)
		if i == to && count > 0 {
			n = count
		}
		if n > MaxBranches-sum {
			return diag.Errorf(diag.KindResource, line, "",
				"pedigree %s needs more than %d branches in total", b.hdr.Name, MaxBranches)
		}
		sum += n
		prev = n
	}
	return nil
}

// BeginGeneration validates a generation line, fills any generations skipped
// since the previous line and allocates the new generation.
func (b *Builder) BeginGeneration(s GenerationSpec) error {
	numGen := len(b.gens)
	if s.Gen < 1 || s.Gen > numGen {
		return diag.Errorf(diag.KindRange, s.Line, "",
			"generation %d below 1 or above %d (max number of generations)", s.Gen, numGen)
	}
	if s.Print < 0 {
		return diag.Errorf(diag.KindRange, s.Line, "",
			"in generation %d, number of samples to print below 0", s.Gen)
	}
	if s.Gen == 1 && s.Print > 1 {
		return diag.Errorf(diag.KindRange, s.Line, "",
			"in generation 1, if founders are to be printed must list 1 as the number to be printed (others invalid)")
	}
	if s.Branches < 0 {
		return diag.Errorf(diag.KindRange, s.Line, "",
			"in generation %d, branch count zero or below", s.Gen)
	}
	gen := s.Gen - 1
	if gen <= b.lastRead {
		if b.gens[gen] != nil && b.gens[gen].explicit {
			return diag.Errorf(diag.KindRange, s.Line, "", "multiple entries for generation %d", s.Gen)
		}
		return diag.Errorf(diag.KindRange, s.Line, "", "generation numbers must be in increasing order")
	}

	if err := b.checkBudget(s.Line, b.lastRead+1, gen, s.Branches); err != nil {
		return err
	}
	for i := b.lastRead + 1; i < gen; i++ {
		b.fillGap(i)
	}

	count := s.Branches
	if count == 0 {
		count = b.defaultBranchCount(gen)
	}
	b.allocGeneration(gen, count, s.Print)
	b.lastRead = gen
	return nil
}

// Apply applies a directive to the generation begun last.
func (b *Builder) Apply(line int, d directive.Directive) error {
	cur := b.lastRead
	g := b.gens[cur]

	var parents [2]model.Parent
	var founder bool
	if d.Kind == directive.ParentAssign {
		if cur == 0 {
			return diag.Errorf(diag.KindDirective, line, d.Token,
				"first generation cannot have parent specifications")
		}
		var err error
		parents, founder, err = b.resolveParents(line, d)
		if err != nil {
			return err
		}
	}

	for _, s := range d.Spans {
		if s.Last >= g.NumBranches() {
			return diag.Errorf(diag.KindRange, line, d.Token,
				"request to assign a branch greater than %d, the total number of branches in generation %d",
				g.NumBranches(), cur+1)
		}
	}

	for _, br := range d.Branches() {
		switch d.Kind {
		case directive.ParentAssign:
			if g.assigned[br] {
				return diag.Errorf(diag.KindDuplicateAssignment, line, d.Token,
					"parents of branch number %d assigned multiple times", br+1)
			}
			g.assigned[br] = true
			if founder {
				parents = b.founderPair(cur - 1)
			}
			g.Parents[br] = parents
			g.Founders[br] = founder
		case directive.NoPrint:
			switch n := g.Print[br]; {
			case n > 0:
				b.warn(line, "generation %d branch %d would print %d individuals, now set to 0", cur+1, br+1, n)
			default:
				b.warn(line, "generation %d branch %d, no-print is redundant", cur+1, br+1)
			}
			g.Print[br] = 0
		case directive.SexAssign:
			slot := b.Slot(model.BranchRef{Gen: cur, Branch: br})
			if slot.Sex != model.SexUnknown {
				return diag.Errorf(diag.KindDuplicateAssignment, line, d.Token,
					"sex of branch number %d assigned multiple times", br+1)
			}
			slot.Sex = d.Sex
		}
	}
	return nil
}

// resolveParents turns the parent specs of d into the parents shared by all
// branches d lists. founder reports brand-new founder branches, which each
// get their own pair of founders instead.
func (b *Builder) resolveParents(line int, d directive.Directive) (parents [2]model.Parent, founder bool, err error) {
	prev := b.lastRead - 1
	if len(d.Parents) == 0 {
		return parents, true, nil
	}

	refs := make([]model.BranchRef, len(d.Parents))
	for i, p := range d.Parents {
		gen := p.Gen
		if gen == directive.PrevGen {
			gen = prev
		}
		if gen > prev {
			return parents, false, diag.Errorf(diag.KindRange, line, d.Token,
				"generation number %d for parent is after the previous generation", gen+1)
		}
		if n := b.gens[gen].NumBranches(); p.Branch >= n {
			return parents, false, diag.Errorf(diag.KindRange, line, d.Token,
				"parent branch number %d is more than the number of branches (%d) in generation %d",
				p.Branch+1, n, gen+1)
		}
		refs[i] = model.BranchRef{Gen: gen, Branch: p.Branch}
	}

	if len(refs) == 1 {
		r := refs[0]
		return [2]model.Parent{model.BranchParent(r.Gen, r.Branch), b.newSpouse(r.Gen, r.Branch)}, false, nil
	}

	a, c := refs[0], refs[1]
	if a == c {
		return parents, false, diag.Errorf(diag.KindSexConflict, line, d.Token,
			"cannot have both parents be from same branch")
	}
	if b.hdr.I1 != model.SexUnknown {
		return parents, false, diag.Errorf(diag.KindSexConflict, line, d.Token,
			"cannot have fixed sex for i1 samples and marriages between branches: i1s will have the same sex and cannot reproduce; consider assigning sexes to individual branches")
	}
	if err := b.resolver.Union(a, c); err != nil {
		return parents, false, diag.Wrap(diag.KindSexConflict, line, d.Token, err)
	}
	return [2]model.Parent{model.BranchParent(a.Gen, a.Branch), model.BranchParent(c.Gen, c.Branch)}, false, nil
}

// EndGeneration gives default parents to the branches of the current
// generation that no directive assigned.
func (b *Builder) EndGeneration() {
	if b.lastRead > 0 {
		b.assignDefaultParents(b.lastRead)
	}
}

// Finalize fills the generations after the last one read, commits resolved
// sexes and returns the frozen pedigree. It fails when the last generation
// prints nothing.
func (b *Builder) Finalize() (*model.Pedigree, error) {
	if last := len(b.gens) - 1; b.lastRead < last {
		if err := b.checkBudget(b.hdr.Line, b.lastRead+1, last, 0); err != nil {
			return nil, err
		}
	}
	for i := b.lastRead + 1; i < len(b.gens); i++ {
		b.fillGap(i)
	}
	b.lastRead = len(b.gens) - 1
	b.resolver.Finalize()

	gens := make([]model.Generation, len(b.gens))
	for i, g := range b.gens {
		gens[i] = g.Generation
	}
	ped := model.NewPedigree(b.hdr.Name, b.hdr.Replicates, b.hdr.I1, b.hdr.Line, gens)

	last := len(gens) - 1
	var printing, silent bool
	for br := 0; br < ped.NumBranches(last); br++ {
		if ped.SamplesToPrint(last, br) == 0 {
			silent = true
		} else {
			printing = true
		}
	}
	if !printing {
		return nil, diag.Errorf(diag.KindNoPrintableOutput, b.hdr.Line, "",
			"request to simulate pedigree %q with %d generations but no request to print any samples from last generation (number %d)",
			b.hdr.Name, len(gens), len(gens))
	}
	if silent {
		b.warn(0, "no-print branches in last generation of pedigree %s: can omit these branches and possibly reduce number of founders needed",
			b.hdr.Name)
	}
	return ped, nil
}

func (b *Builder) warn(line int, format string, args ...any) {
	b.warnings = append(b.warnings, diag.Warnf(line, format, args...))
}

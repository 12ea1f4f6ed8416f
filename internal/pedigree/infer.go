package pedigree

import "github.com/williamscole/ped-sim/internal/model"

// defaultBranchCount returns the branch count of generation gen when the def
// file does not give one.
func (b *Builder) defaultBranchCount(gen int) int {
	if gen == 0 {
		return 1
	}
	return defaultCount(gen, b.gens[gen-1].NumBranches())
}

// defaultCount applies the default branch count rule given the branch count
// of the previous generation.
func defaultCount(gen, prev int) int {
	switch {
	case gen == 0:
		return 1
	case gen == 1 && prev == 1:
		// two children of a single founder couple
		return 2
	default:
		return prev
	}
}

// fillGap synthesizes generation gen, which the def file skipped: default
// branch count, default parents and nothing printed.
func (b *Builder) fillGap(gen int) {
	g := b.allocGeneration(gen, b.defaultBranchCount(gen), 0)
	if gen > 0 {
		b.assignDefaultParents(gen)
	}
	g.explicit = false
}

// assignDefaultParents gives default parents to every branch of gen that was
// not explicitly assigned. Previous branch p parents the next multFactor
// branches together with one new founder spouse shared by all of them.
// Branches left over when the count is not a multiple of the previous one
// become founder branches.
func (b *Builder) assignDefaultParents(gen int) {
	prev, cur := b.gens[gen-1], b.gens[gen]
	prevCount, curCount := prev.NumBranches(), cur.NumBranches()

	mult := curCount / prevCount
	if mult == 0 {
		// branches that survive map prev branch i to cur i
		mult = 1
	}

	for p := 0; p < prevCount && p < curCount; p++ {
		spouse := model.Parent{}
		for m := 0; m < mult; m++ {
			c := p*mult + m
			if c >= curCount {
				break
			}
			if cur.assigned[c] {
				continue
			}
			if spouse.Kind == model.ParentNone {
				spouse = b.newSpouse(gen-1, p)
			}
			cur.Parents[c] = [2]model.Parent{model.BranchParent(gen-1, p), spouse}
		}
	}

	for c := prevCount * mult; c < curCount; c++ {
		if cur.assigned[c] {
			continue
		}
		cur.Parents[c] = b.founderPair(gen - 1)
		cur.Founders[c] = true
	}
}

// founderPair returns two new unrelated founders as the parents of a
// brand-new founder branch whose parents would belong to generation gen.
// Each call numbers its pair apart from every earlier pair in gen.
func (b *Builder) founderPair(gen int) [2]model.Parent {
	g := b.gens[gen]
	g.unattached += 2
	return [2]model.Parent{
		model.FounderParent(gen, model.NoBranch, g.unattached-1),
		model.FounderParent(gen, model.NoBranch, g.unattached),
	}
}

// newSpouse returns a founder not yet married into gen/branch.
func (b *Builder) newSpouse(gen, branch int) model.Parent {
	g := b.gens[gen]
	g.spouses[branch]++
	return model.FounderParent(gen, branch, g.spouses[branch])
}

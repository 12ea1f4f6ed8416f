// Package sexcon resolves the sex constraints between branch i1 individuals.
//
// Every pair of branches that have children together must be of opposite
// sex. The Resolver keeps a signed union-find over the constrained branches:
// groups hold branches that must share a sex and are always allocated in
// pairs, the two groups of a pair holding opposite sexes. A group id and its
// partner differ only in the lowest bit (model.GroupID.Paired).
//
// Groups live in an arena addressed by stable ids. When two pairs merge, the
// absorbed pair is tombstoned rather than removed, so ids held by other
// branches stay valid.
package sexcon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/williamscole/ped-sim/internal/model"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("sexcon: conflicting sex constraints")

// ConflictError reports a pairing that cannot be satisfied.
type ConflictError struct {
	A, B   model.BranchRef
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assigning branch %d from generation %d and branch %d from generation %d as parents is impossible: %s",
		e.A.Branch+1, e.A.Gen+1, e.B.Branch+1, e.B.Gen+1, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// SlotTable gives the resolver access to the sex slot of each branch.
// Implementations may allocate slots on first access.
type SlotTable interface {
	Slot(ref model.BranchRef) *model.SexSlot
}

// group is one arena entry.
type group struct {
	members map[model.BranchRef]struct{}
	sex     model.Sex
	live    bool
}

// Resolver is the signed union-find. It is not safe for concurrent use.
type Resolver struct {
	slots  SlotTable
	groups []group
}

// New returns a Resolver updating the slots of t.
func New(t SlotTable) *Resolver {
	return &Resolver{slots: t}
}

// Union records that a and b have children together and so must be of
// opposite sex. It returns a *ConflictError when that contradicts earlier
// constraints or fixed sexes.
func (r *Resolver) Union(a, b model.BranchRef) error {
	if a == b {
		return &ConflictError{A: a, B: b, Reason: "cannot have both parents be from same branch"}
	}
	sa, sb := r.slots.Slot(a), r.slots.Slot(b)

	switch {
	case !sa.Group.Valid() && !sb.Group.Valid():
		return r.newPair(a, b, sa, sb)
	case !sa.Group.Valid():
		return r.join(b, a, sb, sa)
	case !sb.Group.Valid():
		return r.join(a, b, sa, sb)
	case sa.Group.Pair() == sb.Group.Pair():
		if sa.Group == sb.Group {
			return &ConflictError{A: a, B: b, Reason: "due to other parent assignments they necessarily have the same sex"}
		}
		return nil
	default:
		return r.merge(a, b, sa, sb)
	}
}

// newPair handles two unconstrained branches.
func (r *Resolver) newPair(a, b model.BranchRef, sa, sb *model.SexSlot) error {
	ga := r.alloc(a, sa.Sex)
	gb := r.alloc(b, sb.Sex)
	sa.Group, sb.Group = ga, gb

	pa, pb := &r.groups[ga], &r.groups[gb]
	switch {
	case pa.sex == model.SexUnknown && pb.sex == model.SexUnknown:
	case pa.sex == model.SexUnknown:
		pa.sex = pb.sex.Opposite()
	case pb.sex == model.SexUnknown:
		pb.sex = pa.sex.Opposite()
	case pa.sex == pb.sex:
		return &ConflictError{A: a, B: b, Reason: "they are assigned the same sex"}
	}
	return nil
}

// join adds the unconstrained branch free to the group opposite the group of
// the constrained branch held.
func (r *Resolver) join(held, free model.BranchRef, sh, sf *model.SexSlot) error {
	gid := sh.Group.Paired()
	g := &r.groups[gid]
	g.members[free] = struct{}{}
	sf.Group = gid

	if sf.Sex == model.SexUnknown {
		return nil
	}
	switch g.sex {
	case model.SexUnknown:
		g.sex = sf.Sex
		r.groups[sh.Group].sex = sf.Sex.Opposite()
	case sf.Sex:
	default:
		return &ConflictError{A: free, B: held,
			Reason: "due to sex assignments and/or other parent assignments they necessarily have the same sex"}
	}
	return nil
}

// merge unions two distinct pairs so that a's group absorbs the partner group
// of b's pair and vice versa.
func (r *Resolver) merge(a, b model.BranchRef, sa, sb *model.SexSlot) error {
	keep := [2]model.GroupID{sa.Group, sa.Group.Paired()}
	drop := [2]model.GroupID{sb.Group.Paired(), sb.Group}

	for i := range keep {
		k, d := &r.groups[keep[i]], &r.groups[drop[i]]
		if k.sex == d.sex {
			continue
		}
		switch {
		case k.sex == model.SexUnknown:
			k.sex = d.sex
		case d.sex != model.SexUnknown:
			return &ConflictError{A: a, B: b,
				Reason: "due to sex assignments and/or other parent assignments they necessarily have the same sex"}
		}
	}

	for i := range keep {
		k := &r.groups[keep[i]]
		for m := range r.groups[drop[i]].members {
			k.members[m] = struct{}{}
		}
	}
	if intersects(r.groups[keep[0]].members, r.groups[keep[1]].members) {
		return &ConflictError{A: a, B: b, Reason: "due to other parent assignments they necessarily have the same sex"}
	}

	for i := range drop {
		d := &r.groups[drop[i]]
		for m := range d.members {
			r.slots.Slot(m).Group = keep[i]
		}
		d.members = nil
		d.live = false
	}
	return nil
}

func (r *Resolver) alloc(first model.BranchRef, sex model.Sex) model.GroupID {
	id := model.GroupID(len(r.groups))
	r.groups = append(r.groups, group{
		members: map[model.BranchRef]struct{}{first: {}},
		sex:     sex,
		live:    true,
	})
	return id
}

func intersects(a, b map[model.BranchRef]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for m := range a {
		if _, ok := b[m]; ok {
			return true
		}
	}
	return false
}

// Finalize writes the resolved sex of every live group into the slots of its
// members. Branches without a group keep their fixed sex, if any. Calling
// Finalize again yields the same assignments.
func (r *Resolver) Finalize() {
	for i := range r.groups {
		g := &r.groups[i]
		if !g.live || g.sex == model.SexUnknown {
			continue
		}
		for m := range g.members {
			r.slots.Slot(m).Sex = g.sex
		}
	}
}

// arenaLen returns the number of arena entries, live or tombstoned. It is
// always even.
func (r *Resolver) arenaLen() int { return len(r.groups) }

// lookup returns the members (sorted) and resolved sex of group id. ok is
// false for tombstoned or unknown ids.
func (r *Resolver) lookup(id model.GroupID) (members []model.BranchRef, sex model.Sex, ok bool) {
	if !id.Valid() || int(id) >= len(r.groups) || !r.groups[id].live {
		return nil, model.SexUnknown, false
	}
	g := &r.groups[id]
	members = make([]model.BranchRef, 0, len(g.members))
	for m := range g.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Gen != members[j].Gen {
			return members[i].Gen < members[j].Gen
		}
		return members[i].Branch < members[j].Branch
	})
	return members, g.sex, true
}

package pedigree

import (
	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/model"
)

// Registry collects the pedigrees of one def file. At most one pedigree is
// open at a time; beginning a new one finalizes the open one.
type Registry struct {
	pedigrees []*model.Pedigree
	names     map[string]int // name -> header line
	open      *Builder
	warnings  []diag.Warning
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]int)}
}

// Begin finalizes the open pedigree, validates h and opens a new pedigree.
func (r *Registry) Begin(h Header) (*Builder, error) {
	if err := r.FinalizeOpen(); err != nil {
		return nil, err
	}
	if prev, dup := r.names[h.Name]; dup {
		return nil, diag.Errorf(diag.KindDuplicateName, h.Line, h.Name,
			"name of pedigree is same as previous pedigree defined on line %d", prev)
	}
	if h.Replicates <= 0 {
		return nil, diag.Errorf(diag.KindInvalidCount, h.Line, "",
			"number of replicates to simulate for pedigree %s must be above 0", h.Name)
	}
	if h.Generations <= 0 {
		return nil, diag.Errorf(diag.KindInvalidCount, h.Line, "",
			"number of generations for pedigree %s must be above 0", h.Name)
	}
	if h.Generations > MaxGenerations {
		return nil, diag.Errorf(diag.KindResource, h.Line, "",
			"number of generations for pedigree %s above the limit of %d", h.Name, MaxGenerations)
	}
	r.names[h.Name] = h.Line
	r.open = NewBuilder(h)
	return r.open, nil
}

// Open returns the pedigree being defined, or nil.
func (r *Registry) Open() *Builder { return r.open }

// FinalizeOpen finalizes the open pedigree, if any, and adds it to the
// registry.
func (r *Registry) FinalizeOpen() error {
	b := r.open
	if b == nil {
		return nil
	}
	r.open = nil
	ped, err := b.Finalize()
	r.warnings = append(r.warnings, b.Warnings()...)
	if err != nil {
		return err
	}
	r.pedigrees = append(r.pedigrees, ped)
	return nil
}

// Close finalizes the open pedigree and returns every pedigree in definition
// order. A registry that never saw a header is an error.
func (r *Registry) Close() ([]*model.Pedigree, error) {
	if err := r.FinalizeOpen(); err != nil {
		return nil, err
	}
	if len(r.pedigrees) == 0 {
		return nil, diag.Errorf(diag.KindEmptyFile, 0, "",
			"def file does not contain pedigree definitions; nothing to simulate")
	}
	return r.pedigrees, nil
}

// Warnings returns the warnings raised so far, including those of the open
// pedigree.
func (r *Registry) Warnings() []diag.Warning {
	out := append([]diag.Warning(nil), r.warnings...)
	if r.open != nil {
		out = append(out, r.open.Warnings()...)
	}
	return out
}

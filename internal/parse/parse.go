// Package parse compiles def files into resolved pedigrees.
//
// Each non-blank, non-comment line is either a def header, which opens a new
// pedigree, or a generation line belonging to the open pedigree:
//
//	def <name> <numReplicates> <numGenerations> [M|F]
//	<genNum> <numToPrint> [<branchCount>] [<directive> ...]
//
// Compilation stops at the first error.
package parse

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/directive"
	"github.com/williamscole/ped-sim/internal/lex"
	"github.com/williamscole/ped-sim/internal/model"
	"github.com/williamscole/ped-sim/internal/pedigree"
)

// Result is the output of a compilation. On error it still carries the
// warnings raised before the failure.
type Result struct {
	Source    string // file path, empty for readers
	Pedigrees []*model.Pedigree
	Warnings  []diag.Warning
}

// Compile reads a def file from r.
func Compile(r io.Reader) (*Result, error) {
	reg := pedigree.NewRegistry()
	sc := lex.NewScanner(r)

	for sc.Next() {
		if err := compileLine(reg, sc.Line()); err != nil {
			return &Result{Warnings: reg.Warnings()}, err
		}
	}
	if err := sc.Err(); err != nil {
		return &Result{Warnings: reg.Warnings()},
			diag.Wrap(diag.KindResource, sc.LastLine(), "", fmt.Errorf("reading def file: %w", err))
	}

	peds, err := reg.Close()
	res := &Result{Pedigrees: peds, Warnings: reg.Warnings()}
	if err != nil {
		return res, err
	}
	return res, nil
}

// CompileFile compiles the def file at path.
func CompileFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindResource, 0, "", fmt.Errorf("opening def file: %w", err))
	}
	defer f.Close()

	res, err := Compile(f)
	res.Source = path
	return res, err
}

func compileLine(reg *pedigree.Registry, l lex.Line) error {
	if l.Fields[0] == "def" {
		return beginPedigree(reg, l)
	}
	b := reg.Open()
	if b == nil {
		return diag.Errorf(diag.KindSyntax, l.Num, l.Fields[0],
			"generation line found before any pedigree definition; def lines must precede generation lines")
	}
	return generationLine(b, l)
}

func beginPedigree(reg *pedigree.Registry, l lex.Line) error {
	// A def line closes the previous pedigree before anything else about
	// the new one is checked.
	if err := reg.FinalizeOpen(); err != nil {
		return err
	}

	f := l.Fields
	if len(f) != 4 && len(f) != 5 {
		return diag.Errorf(diag.KindSyntax, l.Num, "",
			"improperly formatted def line: expected def <name> <numReplicates> <numGenerations> [M|F]")
	}
	reps, err := atoi(l.Num, f[2], "number of replicates")
	if err != nil {
		return err
	}
	gens, err := atoi(l.Num, f[3], "number of generations")
	if err != nil {
		return err
	}

	h := pedigree.Header{Name: f[1], Replicates: reps, Generations: gens, Line: l.Num}
	if len(f) == 5 {
		sex, ok := model.ParseSex(f[4])
		if !ok {
			return diag.Errorf(diag.KindSyntax, l.Num, f[4],
				"sex of i1 samples must be M or F")
		}
		h.I1 = sex
	}

	_, err = reg.Begin(h)
	return err
}

func generationLine(b *pedigree.Builder, l lex.Line) error {
	f := l.Fields
	if len(f) < 2 {
		return diag.Errorf(diag.KindSyntax, l.Num, "",
			"improperly formatted generation line: expected <genNum> <numToPrint> [<branchCount>] [<directive> ...]")
	}
	gen, err := atoi(l.Num, f[0], "generation number")
	if err != nil {
		return err
	}
	numPrint, err := atoi(l.Num, f[1], "number of samples to print")
	if err != nil {
		return err
	}

	spec := pedigree.GenerationSpec{Line: l.Num, Gen: gen, Print: numPrint}
	rest := f[2:]
	if len(rest) > 0 && !directive.IsDirective(rest[0]) {
		n, err := atoi(l.Num, rest[0], "branch count")
		if err != nil {
			return err
		}
		if n <= 0 {
			return diag.Errorf(diag.KindRange, l.Num, rest[0],
				"in generation %d, branch count zero or below", gen)
		}
		if n > pedigree.MaxBranches {
			return diag.Errorf(diag.KindResource, l.Num, rest[0],
				"in generation %d, branch count above the limit of %d", gen, pedigree.MaxBranches)
		}
		spec.Branches = n
		rest = rest[1:]
	}

	if err := b.BeginGeneration(spec); err != nil {
		return err
	}
	for _, tok := range rest {
		d, err := directive.Parse(l.Num, tok)
		if err != nil {
			return err
		}
		if err := b.Apply(l.Num, d); err != nil {
			return err
		}
	}
	b.EndGeneration()
	return nil
}

func atoi(line int, tok, what string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, diag.Errorf(diag.KindNumber, line, tok, "unable to parse %s", what)
	}
	return n, nil
}

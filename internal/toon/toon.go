// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// compiled pedigrees.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/williamscole/ped-sim/internal/graph"
	"github.com/williamscole/ped-sim/internal/model"
	"github.com/williamscole/ped-sim/internal/parse"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a compilation result into TOON format.
func Encode(res *parse.Result) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("source: %s", encodeValue(res.Source)))

	var pedRows [][]string
	for _, p := range res.Pedigrees {
		c := graph.CountFounders(p)
		pedRows = append(pedRows, []string{
			p.Name(),
			strconv.Itoa(p.Replicates()),
			strconv.Itoa(p.NumGenerations()),
			p.I1Sex().String(),
			strconv.Itoa(c.Founders()),
			strconv.Itoa(c.Printed),
		})
	}
	parts = append(parts, formatTabular("pedigrees",
		[]string{"name", "replicates", "generations", "i1_sex", "founders", "printed"}, pedRows))

	var branchRows [][]string
	for _, p := range res.Pedigrees {
		for gen := 0; gen < p.NumGenerations(); gen++ {
			for br := 0; br < p.NumBranches(gen); br++ {
				var p1, p2 string
				if a, b, ok := p.Parents(gen, br); ok {
					p1, p2 = a.String(), b.String()
				}
				branchRows = append(branchRows, []string{
					p.Name(),
					strconv.Itoa(gen + 1),
					strconv.Itoa(br + 1),
					branchKind(p, gen, br),
					strconv.Itoa(p.SamplesToPrint(gen, br)),
					p.Sex(gen, br).String(),
					p1,
					p2,
				})
			}
		}
	}
	parts = append(parts, formatTabular("branches",
		[]string{"pedigree", "gen", "branch", "kind", "print", "sex", "parent1", "parent2"}, branchRows))

	if len(res.Warnings) > 0 {
		var warnRows [][]string
		for _, w := range res.Warnings {
			warnRows = append(warnRows, []string{strconv.Itoa(w.Line), w.Msg})
		}
		parts = append(parts, formatTabular("warnings", []string{"line", "message"}, warnRows))
	}

	return strings.Join(parts, "\n")
}

// branchKind names how a branch starts: in the first generation, as a new
// founder, or as a child of earlier branches.
func branchKind(v model.View, gen, br int) string {
	switch {
	case gen == 0:
		return "first"
	case v.IsFounderBranch(gen, br):
		return "founder"
	}
	return "child"
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

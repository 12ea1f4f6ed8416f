// Package render writes compiled pedigrees as YAML documents or Graphviz
// DOT graphs.
package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/williamscole/ped-sim/internal/graph"
	"github.com/williamscole/ped-sim/internal/parse"
)

// Document is the YAML form of a compilation result.
type Document struct {
	Source    string     `yaml:"source,omitempty"`
	Pedigrees []Pedigree `yaml:"pedigrees"`
	Warnings  []Warning  `yaml:"warnings,omitempty"`
}

// Pedigree is one compiled pedigree.
type Pedigree struct {
	Name        string       `yaml:"name"`
	Line        int          `yaml:"line"`
	Replicates  int          `yaml:"replicates"`
	I1Sex       string       `yaml:"i1_sex,omitempty"`
	Founders    int          `yaml:"founders"`
	Printed     int          `yaml:"printed"`
	Generations []Generation `yaml:"generations"`
}

type Generation struct {
	Number   int      `yaml:"number"`
	Branches []Branch `yaml:"branches"`
}

type Branch struct {
	Number  int      `yaml:"number"`
	Print   int      `yaml:"print"`
	Sex     string   `yaml:"sex,omitempty"`
	Founder bool     `yaml:"founder,omitempty"`
	Parents []string `yaml:"parents,omitempty,flow"`
}

type Warning struct {
	Line    int    `yaml:"line,omitempty"`
	Message string `yaml:"message"`
}

// NewDocument builds the YAML document for res.
func NewDocument(res *parse.Result) Document {
	doc := Document{Source: res.Source, Pedigrees: []Pedigree{}}
	for _, p := range res.Pedigrees {
		c := graph.CountFounders(p)
		pd := Pedigree{
			Name:       p.Name(),
			Line:       p.Line(),
			Replicates: p.Replicates(),
			I1Sex:      p.I1Sex().String(),
			Founders:   c.Founders(),
			Printed:    c.Printed,
		}
		for gen := 0; gen < p.NumGenerations(); gen++ {
			gd := Generation{Number: gen + 1}
			for br := 0; br < p.NumBranches(gen); br++ {
				bd := Branch{
					Number:  br + 1,
					Print:   p.SamplesToPrint(gen, br),
					Sex:     p.Sex(gen, br).String(),
					Founder: p.IsFounderBranch(gen, br),
				}
				if a, b, ok := p.Parents(gen, br); ok {
					bd.Parents = []string{a.String(), b.String()}
				}
				gd.Branches = append(gd.Branches, bd)
			}
			pd.Generations = append(pd.Generations, gd)
		}
		doc.Pedigrees = append(doc.Pedigrees, pd)
	}
	for _, w := range res.Warnings {
		doc.Warnings = append(doc.Warnings, Warning{Line: w.Line, Message: w.Msg})
	}
	return doc
}

// YAML writes res to w as a YAML document.
func YAML(w io.Writer, res *parse.Result) error {
	data, err := yaml.Marshal(NewDocument(res))
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return nil
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/williamscole/ped-sim/internal/graph"
	"github.com/williamscole/ped-sim/internal/model"
	"github.com/williamscole/ped-sim/internal/parse"
)

const (
	blue = "lightblue"
	red  = "salmon"
)

// DOT writes one Graphviz cluster per pedigree of res. Nodes are filled blue
// for males and red for females, printed branches are boxes, and edges from
// founder spouses are dotted.
func DOT(w io.Writer, res *parse.Result) error {
	var b strings.Builder
	b.WriteString("digraph pedigrees {\n")
	for _, p := range res.Pedigrees {
		writeCluster(&b, graph.BuildLineage(p))
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}
	return nil
}

func writeCluster(b *strings.Builder, l graph.Lineage) {
	fmt.Fprintf(b, "subgraph %s {\n", dotID("cluster_"+l.Pedigree))
	fmt.Fprintf(b, "label=%s\n", dotID(l.Pedigree))

	spouses := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		spouses[n.ID] = n.Spouse
		attrs := []string{"label=" + dotID(n.ID)}
		if n.Print > 0 {
			attrs = append(attrs, "shape=box", fmt.Sprintf("xlabel=%d", n.Print))
		}
		switch n.Sex {
		case model.Male:
			attrs = append(attrs, "style=filled", "fillcolor="+blue)
		case model.Female:
			attrs = append(attrs, "style=filled", "fillcolor="+red)
		}
		fmt.Fprintf(b, "%s [%s]\n", nodeID(l.Pedigree, n.ID), strings.Join(attrs, "; "))
	}

	for _, e := range l.Edges {
		extra := ""
		if spouses[e.Parent] {
			extra = " [style=dotted]"
		}
		fmt.Fprintf(b, "%s -> %s%s\n", nodeID(l.Pedigree, e.Parent), nodeID(l.Pedigree, e.Child), extra)
	}
	b.WriteString("}\n")
}

// nodeID scopes a lineage id to its pedigree so clusters never share nodes.
func nodeID(pedigree, id string) string {
	return dotID(pedigree + "/" + id)
}

func dotID(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

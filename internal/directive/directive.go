// Package directive parses the branch directives that follow the counts on a
// generation line.
//
// A directive token is <branchlist><suffix>. The branch list is a comma
// separated list of 1-based branch numbers and increasing ranges (a-b). The
// suffix is one of
//
//	:<parent>[_<parent>]   parent assignment; <parent> is <branch>[^<gen>]
//	n                      print no samples from the listed branches
//	sM, sF                 fix the sex of the listed branches' i1 individuals
//
// Parse checks syntax only; whether the numbers fit the pedigree is decided
// by the caller.
package directive

import (
	"strconv"
	"strings"

	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/model"
)

// suffixChars are the characters that end a branch list.
const suffixChars = ":ns"

// Kind is the effect of a directive.
type Kind int

const (
	ParentAssign Kind = iota + 1
	NoPrint
	SexAssign
)

func (k Kind) String() string {
	switch k {
	case ParentAssign:
		return "parent assignment"
	case NoPrint:
		return "no-print"
	case SexAssign:
		return "sex assignment"
	}
	return "unknown"
}

// Span is an inclusive range of 0-based branch indexes.
type Span struct {
	First, Last int
}

// PrevGen marks a parent whose generation was not given; it belongs to the
// generation immediately before the one being defined.
const PrevGen = -1

// ParentSpec names one parent. Branch and Gen are 0-based; Gen is PrevGen
// when no ^<gen> was written.
type ParentSpec struct {
	Branch int
	Gen    int
}

// Directive is one parsed directive token.
type Directive struct {
	Token string
	Kind  Kind
	Spans []Span
	// Parents holds zero, one or two entries for ParentAssign. Zero means
	// the listed branches are new founders.
	Parents []ParentSpec
	Sex     model.Sex
}

// IsDirective reports whether token carries a directive suffix character and
// so cannot be a plain count.
func IsDirective(token string) bool {
	return strings.ContainsAny(token, suffixChars)
}

// Parse parses a directive token found on the given line.
func Parse(line int, token string) (Directive, error) {
	i := strings.IndexAny(token, suffixChars)
	if i < 0 {
		return Directive{}, diag.Errorf(diag.KindDirective, line, token,
			"improperly formatted parent assignment, sex assignment or no-print field")
	}
	d := Directive{Token: token}
	list, rest := token[:i], token[i+1:]

	switch token[i] {
	case ':':
		d.Kind = ParentAssign
		parents, err := parseParents(line, token, rest)
		if err != nil {
			return Directive{}, err
		}
		d.Parents = parents
	case 'n':
		d.Kind = NoPrint
		if rest != "" {
			return Directive{}, diag.Errorf(diag.KindDirective, line, token,
				"improperly formatted no-print field: 'n' should be followed by white space")
		}
	case 's':
		d.Kind = SexAssign
		sex, ok := model.ParseSex(rest)
		if !ok {
			return Directive{}, diag.Errorf(diag.KindDirective, line, token,
				"improperly formatted sex assignment field: 's' should be followed by either 'M' or 'F' and then white space")
		}
		d.Sex = sex
	}

	spans, err := parseBranchList(line, token, list, d.Kind)
	if err != nil {
		return Directive{}, err
	}
	d.Spans = spans
	return d, nil
}

// Branches expands the spans of d in order.
func (d Directive) Branches() []int {
	var out []int
	for _, s := range d.Spans {
		for b := s.First; b <= s.Last; b++ {
			out = append(out, b)
		}
	}
	return out
}

func parseBranchList(line int, token, list string, kind Kind) ([]Span, error) {
	if list == "" {
		return nil, diag.Errorf(diag.KindDirective, line, token, "no branches listed for %s", kind)
	}
	var spans []Span
	for _, item := range strings.Split(list, ",") {
		if item == "" {
			return nil, diag.Errorf(diag.KindDirective, line, token, "empty entry in branch list for %s", kind)
		}
		parts := strings.Split(item, "-")
		switch len(parts) {
		case 1:
			b, err := parseBranch(line, token, parts[0], kind)
			if err != nil {
				return nil, err
			}
			spans = append(spans, Span{First: b, Last: b})
		case 2:
			if parts[1] == "" {
				return nil, diag.Errorf(diag.KindUnterminatedRange, line, token,
					"range of branches for %s does not terminate", kind)
			}
			first, err := parseBranch(line, token, parts[0], kind)
			if err != nil {
				return nil, err
			}
			last, err := parseBranch(line, token, parts[1], kind)
			if err != nil {
				return nil, err
			}
			if first >= last {
				return nil, diag.Errorf(diag.KindRange, line, token,
					"non-increasing branch range %s for %s", item, kind)
			}
			spans = append(spans, Span{First: first, Last: last})
		default:
			return nil, diag.Errorf(diag.KindDirective, line, token,
				"improperly formatted branch range %q", item)
		}
	}
	return spans, nil
}

func parseBranch(line int, token, s string, kind Kind) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, diag.Errorf(diag.KindNumber, line, token, "unable to parse branch %q for %s", s, kind)
	}
	if n < 1 {
		return 0, diag.Errorf(diag.KindRange, line, token, "branch numbers must be positive, got %d", n)
	}
	return n - 1, nil
}

func parseParents(line int, token, spec string) ([]ParentSpec, error) {
	if spec == "" {
		return nil, nil
	}
	first, second, _ := strings.Cut(spec, "_")
	if first == "" {
		return nil, diag.Errorf(diag.KindDirective, line, token,
			"parent assignment names a second parent but no first parent")
	}
	p, err := parseParent(line, token, first)
	if err != nil {
		return nil, err
	}
	parents := []ParentSpec{p}
	if second != "" {
		p, err := parseParent(line, token, second)
		if err != nil {
			return nil, err
		}
		parents = append(parents, p)
	}
	return parents, nil
}

func parseParent(line int, token, s string) (ParentSpec, error) {
	branchStr, genStr, hasGen := strings.Cut(s, "^")
	b, err := strconv.Atoi(branchStr)
	if err != nil {
		return ParentSpec{}, diag.Errorf(diag.KindNumber, line, token,
			"unable to parse parent branch %q", branchStr)
	}
	if b < 1 {
		return ParentSpec{}, diag.Errorf(diag.KindRange, line, token,
			"parent assignments must be of positive branch numbers")
	}
	p := ParentSpec{Branch: b - 1, Gen: PrevGen}
	if hasGen {
		g, err := strconv.Atoi(genStr)
		if err != nil {
			return ParentSpec{}, diag.Errorf(diag.KindNumber, line, token,
				"malformed generation number %q for parent", genStr)
		}
		if g < 1 {
			return ParentSpec{}, diag.Errorf(diag.KindRange, line, token,
				"generation number %d for parent is before the first generation", g)
		}
		p.Gen = g - 1
	}
	return p, nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sentinelStart = "# pedsim:start"
	sentinelEnd   = "# pedsim:end"
)

// starterPedigree is written below the reference block when init creates a
// new def file.
const starterPedigree = `def first-cousins 1 4
2 0 2
4 1
`

// runInit implements the `pedsim-def init` subcommand, which writes (or
// updates) a grammar reference comment block in a def file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pedsim-def init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pedsim-def init [flags] [path-to-def-file]

Write a def-file grammar reference to a def file. The reference is a block of
comment lines wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching the pedigree definitions around it. Creates
the file, with a starter pedigree, if it does not exist.

path-to-def-file defaults to ./pedigree.def.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "pedigree.def"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	var updated string
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		updated = applySection(string(existing), section)
	case errors.Is(err, os.ErrNotExist):
		updated = section + "\n\n" + starterPedigree
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote pedsim reference to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped grammar reference.
func generateSection() string {
	body := `Pedigree definitions for ped-sim. Compile with: pedsim-def <file>

def <name> <numReplicates> <numGenerations> [M|F]
  Starts a pedigree. The optional M or F fixes the sex of every i1.

<gen> <numToPrint> [<branchCount>] [<directive> ...]
  Describes generation <gen> (1-based, increasing). Skipped generations
  get default structure and print nothing. Generation 1 prints 0 or 1.

Directives apply to a comma separated branch list such as 1,3-5:
  <branches>:<p>           parents are branch <p> of the previous
                           generation and a new founder spouse
  <branches>:<p1>_<p2>     parents are two branches; use <p>^<gen> for a
                           parent from an earlier generation
  <branches>:              branches are new founders (print at most 1)
  <branches>n              print nothing from the branches
  <branches>sM, sF         fix the sex of the branches' i1s

Without directives each branch of the previous generation has the next
branchCount/previousCount branches as children with one founder spouse.`

	var b strings.Builder
	b.WriteString(sentinelStart + "\n")
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# " + line + "\n")
	}
	b.WriteString(sentinelEnd)
	return b.String()
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}

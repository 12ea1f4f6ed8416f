// pedsim-def compiles ped-sim pedigree definition (def) files and prints the
// resolved pedigrees as TOON, YAML or Graphviz DOT.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/discover"
	"github.com/williamscole/ped-sim/internal/graph"
	"github.com/williamscole/ped-sim/internal/parse"
	"github.com/williamscole/ped-sim/internal/render"
	"github.com/williamscole/ped-sim/internal/toon"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

var formats = map[string]func(w io.Writer, res *parse.Result) error{
	"toon": func(w io.Writer, res *parse.Result) error {
		_, err := fmt.Fprintln(w, toon.Encode(res))
		return err
	},
	"yaml": render.YAML,
	"dot":  render.DOT,
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps err to the process status: one per compile error kind, 1 for
// everything else.
func exitCode(err error) int {
	return diag.KindOf(err).ExitCode()
}

// errorLine formats err for stderr, naming the error category of compile
// errors.
func errorLine(err error) string {
	if k := diag.KindOf(err); k != 0 {
		return fmt.Sprintf("error: %s: %v", k.Category(), err)
	}
	return fmt.Sprintf("error: %v", err)
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("pedsim-def", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		format      string
		quiet       bool
		census      bool
		maxFileSize int
		showVersion bool
	)

	fs.StringVar(&format, "f", "toon", "output format: toon, yaml or dot")
	fs.StringVar(&format, "format", "toon", "output format: toon, yaml or dot")
	fs.BoolVar(&quiet, "q", false, "suppress warnings")
	fs.BoolVar(&quiet, "quiet", false, "suppress warnings")
	fs.BoolVar(&census, "census", false, "print founder and sample counts per pedigree to stderr")
	fs.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip def files larger than this many bytes")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "pedsim-def %s\n", version)
		return nil
	}

	emit, ok := formats[format]
	if !ok {
		return fmt.Errorf("unsupported format %q (want toon, yaml or dot)", format)
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	var files []string
	for _, target := range targets {
		found, err := expand(target)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return errors.New("no def files found")
	}

	files = filterBySize(files, maxFileSize, stderr)
	if len(files) == 0 {
		return errors.New("no def files found (all exceeded size limit)")
	}

	results, errs := compileConcurrent(files)

	// Report in input order; the first failing file stops the run.
	for i, res := range results {
		if !quiet && res != nil {
			for _, w := range res.Warnings {
				_, _ = fmt.Fprintf(stderr, "Warning: %s: %s\n", files[i], w)
			}
		}
		if errs[i] != nil {
			return fmt.Errorf("%s: %w", files[i], errs[i])
		}
	}

	for i, res := range results {
		if i > 0 && format == "yaml" {
			_, _ = io.WriteString(stdout, "---\n")
		}
		if err := emit(stdout, res); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if census {
		for i, res := range results {
			for _, p := range res.Pedigrees {
				_, _ = fmt.Fprintf(stderr, "%s: %s\n", files[i], graph.CountFounders(p))
			}
		}
	}
	return nil
}

// expand returns target itself when it is a file, or the def files below it
// when it is a directory.
func expand(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, diag.Wrap(diag.KindResource, 0, "", fmt.Errorf("def path: %w", err))
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	rel, err := discover.Files(target, nil)
	if err != nil {
		return nil, fmt.Errorf("discovering def files: %w", err)
	}
	paths := make([]string, len(rel))
	for i, r := range rel {
		paths[i] = filepath.Join(target, r)
	}
	return paths, nil
}

func filterBySize(files []string, maxSize int, stderr io.Writer) []string {
	var kept []string
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// compileConcurrent compiles every file, returning results and errors in the
// order of files.
func compileConcurrent(files []string) ([]*parse.Result, []error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]*parse.Result, len(files))
	errs := make([]error, len(files))
	work := make(chan int, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx], errs[idx] = parse.CompileFile(files[idx])
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results, errs
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/williamscole/ped-sim/internal/parse"
)

// TestApplySectionCreate verifies that applySection on empty content wraps the
// section in sentinels with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\n# body\n" + sentinelEnd
	got := applySection("", section)
	if !strings.Contains(got, sentinelStart) {
		t.Error("missing sentinel start")
	}
	if !strings.Contains(got, sentinelEnd) {
		t.Error("missing sentinel end")
	}
	if !strings.HasSuffix(got, sentinelEnd+"\n") {
		t.Errorf("missing trailing newline:\n%q", got)
	}
}

// TestApplySectionAppend verifies that existing definitions without a sentinel
// block are preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "def fam 1 2\n2 1"
	section := sentinelStart + "\n# new content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n\n") {
		t.Errorf("existing content should be preserved at start:\n%s", got)
	}
	if !strings.Contains(got, "new content") {
		t.Error("new content missing")
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding definitions intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "# my pedigrees\n\n"
	after := "\n\ndef fam 1 2\n2 1\n"
	old := before + sentinelStart + "\n# old content\n" + sentinelEnd + after

	section := sentinelStart + "\n# new content\n" + sentinelEnd
	got := applySection(old, section)

	if !strings.HasPrefix(got, before) {
		t.Errorf("content before sentinel should be preserved:\n%s", got)
	}
	if !strings.HasSuffix(got, after) {
		t.Errorf("content after sentinel should be preserved:\n%s", got)
	}
	if strings.Contains(got, "old content") {
		t.Error("old content should be replaced")
	}
	if !strings.Contains(got, "new content") {
		t.Error("new content missing")
	}
}

// TestGenerateSectionIsComments verifies that every line of the reference is
// a def-file comment.
func TestGenerateSectionIsComments(t *testing.T) {
	t.Parallel()
	for i, line := range strings.Split(generateSection(), "\n") {
		if !strings.HasPrefix(line, "#") {
			t.Errorf("line %d is not a comment: %q", i+1, line)
		}
	}
}

// TestInitCreatesFile verifies that runInit creates a compilable def file
// when the target does not exist.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "pedigree.def")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, sentinelStart) {
		t.Error("sentinel start missing from created file")
	}
	if !strings.Contains(content, starterPedigree) {
		t.Error("starter pedigree missing from created file")
	}

	res, err := parse.CompileFile(path)
	if err != nil {
		t.Fatalf("created file does not compile: %v", err)
	}
	if len(res.Pedigrees) != 1 || res.Pedigrees[0].Name() != "first-cousins" {
		t.Errorf("unexpected pedigrees: %+v", res.Pedigrees)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

// TestInitUpdatesInPlace verifies that a second run replaces the block and
// keeps the definitions.
func TestInitUpdatesInPlace(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "fam.def")

	old := sentinelStart + "\n# stale\n" + sentinelEnd + "\n\ndef fam 2 2\n2 1\n"
	if err := os.WriteFile(path, []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "stale") {
		t.Error("stale block should be replaced")
	}
	if strings.Contains(content, starterPedigree) {
		t.Error("starter pedigree should only be written to new files")
	}
	if !strings.HasSuffix(content, "\n\ndef fam 2 2\n2 1\n") {
		t.Errorf("definitions should be preserved:\n%s", content)
	}
	if !strings.Contains(stderr.String(), "wrote pedsim reference to") {
		t.Errorf("stderr: %q", stderr.String())
	}
}

// TestInitDryRun verifies that --dry-run prints the full would-be file content
// to stdout and does not create or modify the target file.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "pedigree.def")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(path); err == nil {
		t.Error("--dry-run should not create the file")
	}
	out := stdout.String()
	if !strings.Contains(out, sentinelStart) {
		t.Error("dry-run output missing sentinel start")
	}
	if !strings.HasSuffix(out, starterPedigree) {
		t.Error("dry-run output missing starter pedigree")
	}
}

// TestInitDryRunNoPath verifies that --dry-run without a path prints just the
// generated section to stdout without touching any file.
func TestInitDryRunNoPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	out := stdout.String()
	if out != generateSection()+"\n" {
		t.Errorf("output should be just the section, got:\n%s", out)
	}
}

// TestInitBadFlag verifies that unknown flags are rejected.
func TestInitBadFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--bogus"}, &stdout, &stderr); err == nil {
		t.Error("expected error for unknown flag")
	}
}

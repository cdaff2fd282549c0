package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"usetidy/internal/core/ports"
	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"
	"usetidy/internal/shared/observability"
)

// fileOutcome is the result of organizing one document in memory.
type fileOutcome struct {
	Organized     string
	Block         string
	Changed       bool
	Statements    int
	StatementsOut int
	ParseErrors   int
}

// organizeFeeds carries caller-supplied analysis results into a pass:
// source ranges of imports known to be unused, and missing imports to add.
type organizeFeeds struct {
	Unused []parser.Range
	Add    []organize.Suggestion
}

// organizeText runs the scan/organize/render pipeline over a document and
// splices the rendered block back in. The input is returned unchanged when
// it has no use declarations, and also when any statement failed to parse:
// a statement that failed to parse still occupies source text inside the
// region, and rewriting would silently drop it.
func organizeText(text string, deps organize.Dependencies, feeds organizeFeeds, logger *slog.Logger) fileOutcome {
	scan := parser.Scan(text)
	out := fileOutcome{
		Organized:   text,
		Statements:  len(scan.Statements),
		ParseErrors: scan.Skipped,
	}
	if scan.Skipped > 0 || scan.Region == nil {
		return out
	}

	stmts := scan.Statements
	if len(feeds.Unused) > 0 {
		stmts = organize.FilterUnused(stmts, feeds.Unused)
	}
	if len(feeds.Add) > 0 {
		stmts = append(stmts, organize.Synthesize(feeds.Add)...)
	}

	groups := organize.Organize(stmts, deps, logger)
	rendered := organize.Render(groups)
	out.Block = rendered
	for _, g := range groups {
		out.StatementsOut += len(g.Statements)
	}

	out.Organized = spliceImports(text, *scan.Region, strings.TrimSuffix(rendered, "\n"), scan.TrailingBlank)
	out.Changed = out.Organized != text
	return out
}

// spliceImports replaces the import region of text with block. The block
// carries no trailing newline; the text after the region keeps its own.
// When the region was not already followed by a blank line, one is inserted
// so the imports stay visually separated from the code below.
func spliceImports(text string, region parser.Range, block string, trailingBlank bool) string {
	offsets := lineOffsets(text)
	prefix := text[:offsetAt(offsets, region.Start)]
	suffix := text[offsetAt(offsets, region.End):]

	if block == "" {
		// Everything was filtered away; close the gap the region leaves.
		return prefix + strings.TrimLeft(suffix, "\n")
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(block)
	switch {
	case suffix == "":
		// Region ran to end of file; give it a terminating newline.
		sb.WriteString("\n")
	case strings.HasPrefix(suffix, "\n"):
		if !trailingBlank {
			sb.WriteString("\n")
		}
		sb.WriteString(suffix)
	default:
		// Code continued on the final semicolon's line; leave it exactly
		// where it was.
		sb.WriteString(suffix)
	}
	return sb.String()
}

// lineOffsets returns the byte offset of each line start, matching the
// scanner's line splitting.
func lineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func offsetAt(offsets []int, pos parser.Position) int {
	return offsets[pos.Line] + pos.Col
}

// organizeOne reads, organizes, and optionally rewrites a single file.
func (a *App) organizeOne(path string, write bool, feeds organizeFeeds) (ports.FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		observability.FilesFailedTotal.Inc()
		return ports.FileResult{Path: path}, fmt.Errorf("read %s: %w", path, err)
	}

	started := time.Now()
	outcome := organizeText(string(content), a.Deps, feeds, a.logger)
	observability.OrganizeDuration.Observe(time.Since(started).Seconds())
	if outcome.ParseErrors > 0 {
		observability.ParseErrorsTotal.Add(float64(outcome.ParseErrors))
	}

	if outcome.Changed {
		observability.FilesOrganizedTotal.Inc()
	} else {
		observability.FilesUnchangedTotal.Inc()
	}

	if write && outcome.Changed {
		if err := a.rewriteFile(path, outcome.Organized); err != nil {
			observability.FilesFailedTotal.Inc()
			return ports.FileResult{Path: path}, fmt.Errorf("write %s: %w", path, err)
		}
	}

	return ports.FileResult{
		Path:          path,
		Changed:       outcome.Changed,
		Organized:     outcome.Organized,
		Block:         outcome.Block,
		Statements:    outcome.Statements,
		StatementsOut: outcome.StatementsOut,
		ParseErrors:   outcome.ParseErrors,
	}, nil
}

// rewriteFile writes content in place, keeping the file's permission bits
// and letting a running watcher know the change is ours.
func (a *App) rewriteFile(path, content string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	a.primeWatcher(path, []byte(content))
	return os.WriteFile(path, []byte(content), mode)
}

// Package extract implements the baseline scanner: a two-state tokenizer
// that finds comment spans line by line and parses debt tags plus their
// metadata out of them. It is deliberately regex-light — only the tag
// keyword match itself uses a compiled pattern, built from the caller's
// vocabulary — and never looks at text outside an identified comment span.
//
// The baseline cannot fully exclude tag-like text inside string literals
// whose position mimics a comment marker; the treesitter adapter layers
// syntax-tree verification on top for that.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/khoward/debtscan/internal/domain/lang"
	"github.com/khoward/debtscan/internal/ports"
)

// SpanKind distinguishes line comments from block comments.
type SpanKind int

const (
	SpanLine SpanKind = iota
	SpanBlock
)

// Span is one contiguous stretch of comment text on a single line.
// Multi-line block comments produce one Span per line so findings anchor
// at the line the tag occurs on. Col is the 0-based byte offset of Text
// within the original line.
type Span struct {
	Kind SpanKind
	Line int // 1-based
	Col  int
	Text string
}

// DefaultVocabulary is the built-in tag set used when the caller supplies none.
var DefaultVocabulary = []string{"TODO", "FIXME", "HACK", "BUG", "XXX"}

// Extractor is the baseline scanner. Safe for concurrent use after
// construction; the compiled patterns and registry are read-only.
type Extractor struct {
	registry   *lang.Registry
	bare       *regexp.Regexp
	annotated  *regexp.Regexp
	matchCase  bool
	vocabulary []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCaseInsensitive makes tag matching ignore case. The default matches
// the vocabulary exactly as given (uppercase built-ins match only uppercase).
func WithCaseInsensitive() Option {
	return func(e *Extractor) { e.matchCase = false }
}

// New builds an extractor over the given registry and tag vocabulary.
// An empty vocabulary falls back to DefaultVocabulary. Custom tags are
// matched identically to built-ins.
func New(registry *lang.Registry, vocabulary []string, opts ...Option) (*Extractor, error) {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	e := &Extractor{
		registry:   registry,
		matchCase:  true,
		vocabulary: append([]string(nil), vocabulary...),
	}
	for _, opt := range opts {
		opt(e)
	}

	quoted := make([]string, len(vocabulary))
	for i, tag := range vocabulary {
		if tag == "" {
			return nil, fmt.Errorf("empty tag in vocabulary")
		}
		quoted[i] = regexp.QuoteMeta(tag)
	}
	alt := strings.Join(quoted, "|")
	flags := ""
	if !e.matchCase {
		flags = "(?i)"
	}

	var err error
	e.bare, err = regexp.Compile(flags + `\b(` + alt + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile tag pattern: %w", err)
	}
	e.annotated, err = regexp.Compile(flags + `\b(` + alt + `)\(([^)]*)\)`)
	if err != nil {
		return nil, fmt.Errorf("compile annotated pattern: %w", err)
	}
	return e, nil
}

// Vocabulary returns the tag set this extractor matches.
func (e *Extractor) Vocabulary() []string { return e.vocabulary }

// ScanFile implements ports.FileScanner. Files whose extension has no entry
// in the registry are skipped: no findings, no error.
func (e *Extractor) ScanFile(path string, content []byte) ([]ports.Finding, error) {
	syntax := e.registry.Lookup(filepath.Ext(path))
	if syntax == nil {
		return nil, nil
	}
	return e.Extract(path, content, syntax)
}

// Extract runs the comment tokenizer and tag matcher over content using the
// given syntax. Findings come back ordered by line, then column. Non-text
// content yields a single encoding error and zero findings.
func (e *Extractor) Extract(path string, content []byte, syntax *lang.Syntax) ([]ports.Finding, error) {
	if err := checkText(content); err != nil {
		return nil, &ports.ScanError{Path: path, Kind: ports.ErrorEncoding, Err: err}
	}

	spans := e.CommentSpans(content, syntax)

	var findings []ports.Finding
	lines := splitLines(content)
	for _, span := range spans {
		context := ""
		if span.Line-1 < len(lines) {
			context = lines[span.Line-1]
		}
		findings = append(findings, e.matchSpan(path, span, context)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Column < findings[j].Column
	})
	return findings, nil
}

// CommentSpans tokenizes content into comment spans using a two-state
// machine: outside any comment, or inside a block comment. Block comments
// do not nest — the first close delimiter wins. A nil syntax treats every
// line as comment text (used for plain-text scanning).
func (e *Extractor) CommentSpans(content []byte, syntax *lang.Syntax) []Span {
	lines := splitLines(content)
	var spans []Span

	if syntax == nil {
		for i, line := range lines {
			spans = append(spans, Span{Kind: SpanLine, Line: i + 1, Col: 0, Text: line})
		}
		return spans
	}

	inBlock := false
	for i, line := range lines {
		lineNo := i + 1
		pos := 0
	scanLine:
		for pos <= len(line) {
			rest := line[pos:]
			if inBlock {
				end := strings.Index(rest, syntax.BlockEnd)
				if end < 0 {
					// Whole remainder of the line is comment text.
					spans = append(spans, Span{Kind: SpanBlock, Line: lineNo, Col: pos, Text: rest})
					break scanLine
				}
				spans = append(spans, Span{Kind: SpanBlock, Line: lineNo, Col: pos, Text: rest[:end]})
				pos += end + len(syntax.BlockEnd)
				inBlock = false
				continue
			}

			marker, markerIdx := earliestMarker(rest, syntax.LineMarkers)
			blockIdx := -1
			if syntax.HasBlock() {
				blockIdx = strings.Index(rest, syntax.BlockStart)
			}

			if markerIdx >= 0 && (blockIdx < 0 || markerIdx < blockIdx) {
				start := pos + markerIdx + len(marker)
				spans = append(spans, Span{Kind: SpanLine, Line: lineNo, Col: start, Text: line[start:]})
				break scanLine
			}
			if blockIdx >= 0 {
				pos += blockIdx + len(syntax.BlockStart)
				inBlock = true
				continue
			}
			break scanLine
		}
	}
	return spans
}

// earliestMarker returns the line-comment marker that occurs first in s,
// and its index, or ("", -1) when none occurs.
func earliestMarker(s string, markers []string) (string, int) {
	best := ""
	bestIdx := -1
	for _, m := range markers {
		if idx := strings.Index(s, m); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = m, idx
		}
	}
	return best, bestIdx
}

// matchSpan finds tag occurrences within one comment span. Annotated
// matches (TAG(...)) take precedence; bare matches that overlap an
// annotated match are dropped so a single occurrence yields one finding.
func (e *Extractor) matchSpan(path string, span Span, context string) []ports.Finding {
	var findings []ports.Finding

	type window struct{ start, end int }
	var claimed []window

	for _, m := range e.annotated.FindAllStringSubmatchIndex(span.Text, -1) {
		tagStart, tagEnd := m[2], m[3]
		metaStart, metaEnd := m[4], m[5]
		tag := ports.TagFromString(span.Text[tagStart:tagEnd])
		author, issue, priority := parseMetadata(span.Text[metaStart:metaEnd])
		findings = append(findings, ports.Finding{
			Tag:      tag,
			Message:  extractMessage(span.Text[m[1]:]),
			File:     path,
			Line:     span.Line,
			Column:   span.Col + tagStart,
			Author:   author,
			Issue:    issue,
			Priority: priority,
			Context:  context,
		})
		claimed = append(claimed, window{m[0], m[1]})
	}

	for _, m := range e.bare.FindAllStringIndex(span.Text, -1) {
		overlaps := false
		for _, w := range claimed {
			if m[0] < w.end && m[1] > w.start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		findings = append(findings, ports.Finding{
			Tag:     ports.TagFromString(span.Text[m[0]:m[1]]),
			Message: extractMessage(span.Text[m[1]:]),
			File:    path,
			Line:    span.Line,
			Column:  span.Col + m[0],
			Context: context,
		})
	}
	return findings
}

// issueIDPattern matches tracker-style references like JIRA-123 used
// without a # sigil inside a metadata group.
var issueIDPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// parseMetadata classifies the comma-separated fields of an annotated tag.
// Fields are unordered and classified independently: #-prefixed or
// tracker-style tokens are issue references, recognized level names are
// priorities, and the first remaining bare token is the author.
// Unrecognized forms are ignored.
func parseMetadata(meta string) (author, issue string, priority ports.Priority) {
	for _, part := range strings.Split(meta, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case strings.HasPrefix(part, "#"):
			issue = strings.TrimPrefix(part, "#")
		case issueIDPattern.MatchString(part):
			issue = part
		case ports.ParsePriority(part) != ports.PriorityNone:
			priority = ports.ParsePriority(part)
		case author == "" && isIdentifier(part):
			author = part
		}
	}
	return author, issue, priority
}

// isIdentifier reports whether s looks like a bare author token: letters,
// digits, and common name separators, starting with a letter.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.' || r == '@'):
		default:
			return false
		}
	}
	return len(s) > 0
}

// extractMessage returns the free text that follows a tag (and its
// metadata group, already consumed by the caller), with leading separator
// punctuation stripped.
func extractMessage(rest string) string {
	return strings.TrimLeft(rest, ":- \t")
}

// checkText rejects content that is not valid UTF-8 text. A NUL byte is a
// cheap binary-content signal checked before full validation.
func checkText(content []byte) error {
	if bytes.IndexByte(content, 0x00) >= 0 {
		return fmt.Errorf("binary content (NUL byte)")
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("invalid UTF-8")
	}
	return nil
}

// splitLines splits content into lines without the terminators. A trailing
// newline does not create a phantom empty line.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	s := string(content)
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

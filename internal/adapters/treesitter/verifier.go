package treesitter

import (
	"path/filepath"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/khoward/debtscan/internal/domain/lang"
	"github.com/khoward/debtscan/internal/ports"
)

// Stats holds verification accuracy counters. Counters accumulate across
// files; read them with Snapshot after a scan.
type Stats struct {
	candidates int64
	kept       int64
	discarded  int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Candidates int64
	Kept       int64
	Discarded  int64
}

// Accuracy returns the fraction of candidates that were genuine comments,
// as a percentage. With no candidates it reports 100.
func (s StatsSnapshot) Accuracy() float64 {
	if s.Candidates == 0 {
		return 100.0
	}
	return float64(s.Kept) / float64(s.Candidates) * 100.0
}

// Verifier wraps a baseline scanner with syntax-tree verification of
// comment boundaries. It is strictly an additive filter: it never produces
// a finding absent from the baseline candidates, and on any failure
// (no grammar, parse error) it returns the candidates unchanged.
//
// Safe for concurrent use: each ScanFile call builds its own parser, and
// the counters are atomic.
type Verifier struct {
	inner    ports.FileScanner
	registry *lang.Registry
	loader   *DynamicLoader
	log      hclog.Logger
	stats    Stats
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLoader attaches a dynamic grammar loader consulted for languages
// without a compiled-in grammar.
func WithLoader(dl *DynamicLoader) VerifierOption {
	return func(v *Verifier) { v.loader = dl }
}

// WithLogger sets the logger used for fail-open diagnostics.
func WithLogger(log hclog.Logger) VerifierOption {
	return func(v *Verifier) { v.log = log }
}

// NewVerifier builds a verifier over the given baseline scanner.
func NewVerifier(inner ports.FileScanner, registry *lang.Registry, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		inner:    inner,
		registry: registry,
		log:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ScanFile implements ports.FileScanner. It obtains baseline candidates
// then retains only those whose byte offset lies inside a comment node of
// the parsed syntax tree. Fail-open: if the language has no grammar or
// parsing fails, the candidates come back unfiltered.
func (v *Verifier) ScanFile(path string, content []byte) ([]ports.Finding, error) {
	candidates, err := v.inner.ScanFile(path, content)
	if err != nil || len(candidates) == 0 {
		return candidates, err
	}

	ext := filepath.Ext(path)
	syntax := v.registry.Lookup(ext)
	if syntax == nil {
		return candidates, nil
	}

	grammar := v.resolveGrammar(syntax.Name, ext)
	if grammar == nil {
		return candidates, nil
	}

	ranges, ok := commentRanges(grammar, content)
	if !ok {
		v.log.Debug("parse failed, keeping baseline candidates", "path", path)
		return candidates, nil
	}

	return v.filter(candidates, ranges, content), nil
}

// resolveGrammar finds a grammar for the language: compiled-in first, then
// the dynamic loader if configured.
func (v *Verifier) resolveGrammar(name, ext string) *tree_sitter.Language {
	if g := grammarFor(name, ext); g != nil {
		return g
	}
	if v.loader == nil {
		return nil
	}
	slug, ok := grammarSlugs[name]
	if !ok {
		return nil
	}
	g, err := v.loader.LoadGrammar(slug)
	if err != nil {
		v.log.Debug("dynamic grammar unavailable", "language", name, "error", err)
		return nil
	}
	return g
}

// byteRange is a half-open [start, end) byte span of one comment node.
type byteRange struct {
	start uint
	end   uint
}

// commentRanges parses content and collects the byte ranges of all nodes
// whose kind names a comment. Returns ok=false when parsing fails.
func commentRanges(grammar *tree_sitter.Language, content []byte) ([]byteRange, bool) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, false
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, false
	}
	defer tree.Close()

	var ranges []byteRange
	collectComments(tree.RootNode(), &ranges)
	return ranges, true
}

// commentKinds covers the node kind names the supported grammars use for
// comments (rust: line_comment/block_comment, most others: comment).
var commentKinds = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
	"doc_comment":   true,
}

func collectComments(n *tree_sitter.Node, out *[]byteRange) {
	if commentKinds[n.Kind()] {
		*out = append(*out, byteRange{start: n.StartByte(), end: n.EndByte()})
		return
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		collectComments(n.Child(i), out)
	}
}

// filter retains candidates whose tag offset lies inside a comment range
// and updates the accuracy counters.
func (v *Verifier) filter(candidates []ports.Finding, ranges []byteRange, content []byte) []ports.Finding {
	offsets := lineOffsets(content)

	kept := candidates[:0:0]
	for _, c := range candidates {
		off, ok := byteOffset(offsets, len(content), c.Line, c.Column)
		if ok && insideAny(ranges, off) {
			kept = append(kept, c)
		}
	}

	atomic.AddInt64(&v.stats.candidates, int64(len(candidates)))
	atomic.AddInt64(&v.stats.kept, int64(len(kept)))
	atomic.AddInt64(&v.stats.discarded, int64(len(candidates)-len(kept)))
	return kept
}

// StatsSnapshot returns a copy of the accumulated accuracy counters.
func (v *Verifier) StatsSnapshot() StatsSnapshot {
	return StatsSnapshot{
		Candidates: atomic.LoadInt64(&v.stats.candidates),
		Kept:       atomic.LoadInt64(&v.stats.kept),
		Discarded:  atomic.LoadInt64(&v.stats.discarded),
	}
}

// lineOffsets returns the byte offset of the start of each 1-based line.
func lineOffsets(content []byte) []uint {
	offsets := []uint{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, uint(i+1))
		}
	}
	return offsets
}

// byteOffset converts a 1-based line and 0-based column to a byte offset.
func byteOffset(offsets []uint, contentLen, line, col int) (uint, bool) {
	if line < 1 || line > len(offsets) {
		return 0, false
	}
	off := offsets[line-1] + uint(col)
	if off > uint(contentLen) {
		return 0, false
	}
	return off, true
}

func insideAny(ranges []byteRange, off uint) bool {
	for _, r := range ranges {
		if off >= r.start && off < r.end {
			return true
		}
	}
	return false
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoward/debtscan/internal/domain/lang"
	"github.com/khoward/debtscan/internal/ports"
)

// newTestExtractor builds an extractor over the default registry and
// vocabulary.
func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(lang.NewRegistry(), nil, opts...)
	require.NoError(t, err)
	return e
}

func TestScanFileUnknownExtensionSkipped(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("notes.txt", []byte("TODO: not source code\n"))
	require.NoError(t, err)
	assert.Nil(t, findings)
}

func TestBareTagInLineComment(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte("package main\n\n// TODO: fix the race here\n")
	findings, err := e.ScanFile("main.go", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, ports.TagTodo, f.Tag)
	assert.Equal(t, "fix the race here", f.Message)
	assert.Equal(t, 3, f.Line)
	assert.Equal(t, 3, f.Column)
	assert.Equal(t, "// TODO: fix the race here", f.Context)
	assert.Empty(t, f.Author)
	assert.Empty(t, f.Issue)
	assert.Equal(t, ports.PriorityNone, f.Priority)
}

func TestTagOutsideCommentIgnored(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte(`let msg = "TODO is just a word here";` + "\n// FIXME real one\n")
	findings, err := e.ScanFile("app.js", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ports.TagFixme, findings[0].Tag)
	assert.Equal(t, 2, findings[0].Line)
}

func TestAnnotatedTagFullMetadata(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte("// TODO(alice, #42, high): rework pagination\n")
	findings, err := e.ScanFile("page.go", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, ports.TagTodo, f.Tag)
	assert.Equal(t, "alice", f.Author)
	assert.Equal(t, "42", f.Issue, "issue stored without the # sigil")
	assert.Equal(t, ports.PriorityHigh, f.Priority)
	assert.Equal(t, "rework pagination", f.Message)
}

func TestMetadataFieldsAreUnordered(t *testing.T) {
	e := newTestExtractor(t)
	cases := []string{
		"// FIXME(bob, #7, low): x\n",
		"// FIXME(#7, low, bob): x\n",
		"// FIXME(low, bob, #7): x\n",
	}
	for _, src := range cases {
		findings, err := e.ScanFile("a.go", []byte(src))
		require.NoError(t, err)
		require.Len(t, findings, 1, src)
		f := findings[0]
		assert.Equal(t, "bob", f.Author, src)
		assert.Equal(t, "7", f.Issue, src)
		assert.Equal(t, ports.PriorityLow, f.Priority, src)
	}
}

func TestTrackerStyleIssueReference(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// BUG(PROJ-123): off by one\n"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "PROJ-123", findings[0].Issue)
	assert.Empty(t, findings[0].Author)
}

func TestPrioritySpellings(t *testing.T) {
	cases := map[string]ports.Priority{
		"low": ports.PriorityLow, "p:low": ports.PriorityLow, "p3": ports.PriorityLow,
		"medium": ports.PriorityMedium, "med": ports.PriorityMedium, "p:med": ports.PriorityMedium, "p2": ports.PriorityMedium,
		"high": ports.PriorityHigh, "p:high": ports.PriorityHigh, "p1": ports.PriorityHigh,
		"critical": ports.PriorityCritical, "crit": ports.PriorityCritical, "p:crit": ports.PriorityCritical, "p0": ports.PriorityCritical,
		"CRITICAL": ports.PriorityCritical,
	}
	e := newTestExtractor(t)
	for spelling, want := range cases {
		findings, err := e.ScanFile("a.go", []byte("// TODO("+spelling+"): x\n"))
		require.NoError(t, err)
		require.Len(t, findings, 1, spelling)
		assert.Equal(t, want, findings[0].Priority, spelling)
	}
}

func TestAnnotatedNotDoubleCounted(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// TODO(alice): one finding only\n"))
	require.NoError(t, err)
	assert.Len(t, findings, 1)
}

func TestMultipleTagsOnOneLine(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// TODO first, FIXME second\n"))
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, ports.TagTodo, findings[0].Tag)
	assert.Equal(t, ports.TagFixme, findings[1].Tag)
	assert.Less(t, findings[0].Column, findings[1].Column)
}

func TestBlockCommentSpansLines(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte(`/*
 * TODO: first
 * FIXME: second
 */
int x; /* HACK: third */
`)
	findings, err := e.ScanFile("a.c", src)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, ports.TagTodo, findings[0].Tag)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t, ports.TagFixme, findings[1].Tag)
	assert.Equal(t, 3, findings[1].Line)
	assert.Equal(t, ports.TagHack, findings[2].Tag)
	assert.Equal(t, 5, findings[2].Line)
}

func TestBlockCommentFirstCloseWins(t *testing.T) {
	e := newTestExtractor(t)
	// Nested open has no effect: the first close ends the comment, so the
	// trailing TODO sits in code and is not reported.
	src := []byte("/* outer /* inner */ TODO: not a comment\n")
	findings, err := e.ScanFile("a.c", src)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCodeBeforeAndAfterBlockComment(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte("x = 1; /* TODO: mid */ y = 2; // FIXME: tail\n")
	findings, err := e.ScanFile("a.c", src)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, ports.TagTodo, findings[0].Tag)
	assert.Equal(t, ports.TagFixme, findings[1].Tag)
}

func TestUnclosedBlockRunsToEOF(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte("/* TODO: one\nstill comment FIXME: two\n")
	findings, err := e.ScanFile("a.c", src)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 2, findings[1].Line)
}

func TestHashCommentLanguages(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("deploy.py", []byte("# XXX: revisit\nx = 1\n"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ports.TagXxx, findings[0].Tag)
}

func TestCaseSensitiveByDefault(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// todo: lowercase\n"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCaseInsensitiveOption(t *testing.T) {
	e := newTestExtractor(t, WithCaseInsensitive())
	findings, err := e.ScanFile("a.go", []byte("// todo: lowercase\n"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, ports.TagTodo, findings[0].Tag)
}

func TestCustomVocabulary(t *testing.T) {
	e, err := New(lang.NewRegistry(), []string{"DEBT", "OPTIMIZE"})
	require.NoError(t, err)

	findings, err := e.ScanFile("a.go", []byte("// DEBT: pay down\n// TODO: not in vocabulary\n"))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "DEBT", findings[0].Tag.String())
	assert.False(t, findings[0].Tag.IsBuiltin())
}

func TestEmptyVocabularyRejected(t *testing.T) {
	_, err := New(lang.NewRegistry(), []string{"TODO", ""})
	assert.Error(t, err)
}

func TestWordBoundaryRequired(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// TODOS and MASTODON are not tags\n"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestBinaryContentError(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.ScanFile("a.go", []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01})
	require.Error(t, err)

	var scanErr *ports.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, ports.ErrorEncoding, scanErr.Kind)
}

func TestInvalidUTF8Error(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.ScanFile("a.go", []byte{'/', '/', ' ', 0xff, 0xfe})
	require.Error(t, err)
}

func TestFindingsOrderedByPosition(t *testing.T) {
	e := newTestExtractor(t)
	src := []byte("// HACK at top\nfn(); // TODO mid, BUG later\n// XXX last\n")
	findings, err := e.ScanFile("a.go", src)
	require.NoError(t, err)
	require.Len(t, findings, 4)
	for i := 1; i < len(findings); i++ {
		prev, cur := findings[i-1], findings[i]
		ok := prev.Line < cur.Line || (prev.Line == cur.Line && prev.Column <= cur.Column)
		assert.True(t, ok, "findings[%d] out of order", i)
	}
}

func TestMessageSeparatorsTrimmed(t *testing.T) {
	e := newTestExtractor(t)
	for _, src := range []string{
		"// TODO: msg\n",
		"// TODO - msg\n",
		"// TODO msg\n",
		"// TODO:- \tmsg\n",
	} {
		findings, err := e.ScanFile("a.go", []byte(src))
		require.NoError(t, err)
		require.Len(t, findings, 1, src)
		assert.Equal(t, "msg", findings[0].Message, src)
	}
}

func TestCRLFInput(t *testing.T) {
	e := newTestExtractor(t)
	findings, err := e.ScanFile("a.go", []byte("// TODO: one\r\n// FIXME: two\r\n"))
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "one", findings[0].Message)
	assert.Equal(t, "two", findings[1].Message)
}

func TestEmptyAndCommentFreeFiles(t *testing.T) {
	e := newTestExtractor(t)

	findings, err := e.ScanFile("a.go", nil)
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = e.ScanFile("a.go", []byte("package main\n\nfunc main() {}\n"))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCommentSpansNilSyntaxTreatsAllLines(t *testing.T) {
	e := newTestExtractor(t)
	spans := e.CommentSpans([]byte("one\ntwo\n"), nil)
	require.Len(t, spans, 2)
	assert.Equal(t, "one", spans[0].Text)
	assert.Equal(t, 1, spans[0].Line)
	assert.Equal(t, "two", spans[1].Text)
}

func TestRubyNoBlockComments(t *testing.T) {
	e := newTestExtractor(t)
	// Ruby has no /* */ form; the literal must not open a block.
	src := []byte("s = \"/*\" # TODO: hash comment\nputs s\n")
	findings, err := e.ScanFile("a.rb", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
}

// Package lang holds the static language-syntax table: file extension to
// comment syntax. The table is built once at startup and never mutated, so
// lookups are safe from any goroutine in the hot scan path.
package lang

import "strings"

// Syntax describes one language's comment markers. LineMarkers may be empty
// for languages with only block comments; BlockStart/BlockEnd are empty for
// languages with only line comments. Block comments are treated as
// non-nesting: the first close delimiter terminates the span.
type Syntax struct {
	Name        string
	Extensions  []string
	LineMarkers []string
	BlockStart  string
	BlockEnd    string
}

// HasBlock reports whether the language defines block comment delimiters.
func (s *Syntax) HasBlock() bool { return s.BlockStart != "" && s.BlockEnd != "" }

var languages = []*Syntax{
	{Name: "Rust", Extensions: []string{".rs"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "Go", Extensions: []string{".go"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "Python", Extensions: []string{".py", ".pyi", ".pyw"}, LineMarkers: []string{"#"}},
	{Name: "JavaScript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "TypeScript", Extensions: []string{".ts", ".tsx", ".mts"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "Java", Extensions: []string{".java"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "C", Extensions: []string{".c", ".h"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "C++", Extensions: []string{".cpp", ".cxx", ".cc", ".hpp", ".hxx", ".hh"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "C#", Extensions: []string{".cs"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "Ruby", Extensions: []string{".rb", ".rake"}, LineMarkers: []string{"#"}},
	{Name: "Shell", Extensions: []string{".sh", ".bash", ".zsh"}, LineMarkers: []string{"#"}},
	{Name: "Kotlin", Extensions: []string{".kt", ".kts"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "Swift", Extensions: []string{".swift"}, LineMarkers: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
	{Name: "PHP", Extensions: []string{".php"}, LineMarkers: []string{"//", "#"}, BlockStart: "/*", BlockEnd: "*/"},
}

// Registry maps file extensions to language syntax descriptors.
type Registry struct {
	byExt map[string]*Syntax
}

// NewRegistry builds the extension table. Extensions are stored lowercased;
// several extensions may map to one language.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]*Syntax)}
	for _, l := range languages {
		for _, ext := range l.Extensions {
			r.byExt[strings.ToLower(ext)] = l
		}
	}
	return r
}

// Lookup resolves an extension (with leading dot, any case) to its syntax
// descriptor. Returns nil for unknown extensions; the caller decides whether
// to skip such files.
func (r *Registry) Lookup(ext string) *Syntax {
	return r.byExt[strings.ToLower(ext)]
}

// Names returns the distinct language names in the table, for display.
func (r *Registry) Names() []string {
	seen := make(map[string]bool, len(languages))
	var names []string
	for _, l := range languages {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	return names
}

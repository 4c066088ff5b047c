// Package treesitter implements the syntax-tree verification layer. It
// wraps the baseline extractor and filters its candidates against the byte
// ranges of real comment nodes, so tag-like text inside string literals or
// identifiers never survives verification.
//
// Ten grammars are compiled in via CGo from the official tree-sitter repos.
// Languages without a compiled-in grammar can be verified through shared
// libraries loaded at runtime with purego; everything else fails open to
// the baseline result.
package treesitter

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	ts_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	ts_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ts_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	ts_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// langPtr wraps a Language() call that returns unsafe.Pointer.
func langPtr(p unsafe.Pointer) *tree_sitter.Language {
	return tree_sitter.NewLanguage(p)
}

// builtinGrammars maps registry language names to compiled-in grammars.
// Keys match lang.Syntax.Name.
var builtinGrammars = map[string]*tree_sitter.Language{
	"Rust":       langPtr(ts_rust.Language()),
	"Go":         langPtr(ts_go.Language()),
	"Python":     langPtr(ts_python.Language()),
	"JavaScript": langPtr(ts_javascript.Language()),
	"TypeScript": langPtr(ts_typescript.LanguageTypescript()),
	"Java":       langPtr(ts_java.Language()),
	"C":          langPtr(ts_c.Language()),
	"C++":        langPtr(ts_cpp.Language()),
	"C#":         langPtr(ts_csharp.Language()),
	"Ruby":       langPtr(ts_ruby.Language()),
}

// tsxGrammar covers .tsx files, which need the TSX variant of the
// TypeScript grammar.
var tsxGrammar = langPtr(ts_typescript.LanguageTSX())

// grammarSlugs maps registry language names to the lowercase slugs used
// for dynamically loaded grammar shared libraries.
var grammarSlugs = map[string]string{
	"Rust":       "rust",
	"Go":         "go",
	"Python":     "python",
	"JavaScript": "javascript",
	"TypeScript": "typescript",
	"Java":       "java",
	"C":          "c",
	"C++":        "cpp",
	"C#":         "c_sharp",
	"Ruby":       "ruby",
	"Shell":      "bash",
	"Kotlin":     "kotlin",
	"Swift":      "swift",
	"PHP":        "php",
}

// HasBuiltinGrammar reports whether a registry language name has a
// compiled-in grammar.
func HasBuiltinGrammar(name string) bool {
	_, ok := builtinGrammars[name]
	return ok
}

// grammarFor resolves the compiled-in grammar for a language name and file
// extension. Returns nil when none is built in.
func grammarFor(name, ext string) *tree_sitter.Language {
	if ext == ".tsx" {
		return tsxGrammar
	}
	return builtinGrammars[name]
}

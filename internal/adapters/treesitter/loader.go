package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DynamicLoader loads tree-sitter grammars from shared libraries (.so on
// Linux, .dylib on macOS) using purego. It searches configured paths for
// grammar files and caches loaded languages for reuse.
type DynamicLoader struct {
	searchPaths []string
	mu          sync.Mutex
	loaded      map[string]*tree_sitter.Language
	handles     []uintptr
}

// NewDynamicLoader creates a loader that searches the given paths for
// grammar shared libraries. Paths are searched in order; first match wins.
func NewDynamicLoader(searchPaths []string) *DynamicLoader {
	return &DynamicLoader{
		searchPaths: searchPaths,
		loaded:      make(map[string]*tree_sitter.Language),
	}
}

// DefaultGrammarPaths returns the default search paths for grammar shared
// libraries: project-local .debtscan/grammars/ first, then ~/.debtscan/grammars/.
func DefaultGrammarPaths(projectRoot string) []string {
	var paths []string
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".debtscan", "grammars"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".debtscan", "grammars"))
	}
	return paths
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// cSymbolName returns the C function name exported by a grammar library.
func cSymbolName(slug string) string {
	return "tree_sitter_" + strings.ReplaceAll(slug, "-", "_")
}

// soFileOverrides maps slugs to shared library base names where the
// grammar lives in a differently-named file (tsx ships inside typescript's).
var soFileOverrides = map[string]string{
	"tsx": "typescript",
}

// LoadGrammar loads a grammar shared library for the given language slug.
// Results are cached; subsequent calls for the same slug return the cached
// language.
func (dl *DynamicLoader) LoadGrammar(slug string) (*tree_sitter.Language, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if cached, ok := dl.loaded[slug]; ok {
		return cached, nil
	}

	base := slug
	if o, ok := soFileOverrides[slug]; ok {
		base = o
	}

	ext := LibExtension()
	var soPath string
	for _, dir := range dl.searchPaths {
		candidate := filepath.Join(dir, base+ext)
		if _, err := os.Stat(candidate); err == nil {
			soPath = candidate
			break
		}
	}
	if soPath == "" {
		return nil, fmt.Errorf("grammar %q: shared library not found in search paths", slug)
	}

	handle, err := purego.Dlopen(soPath, purego.RTLD_LAZY)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: dlopen %s: %w", slug, soPath, err)
	}
	dl.handles = append(dl.handles, handle)

	symName := cSymbolName(slug)
	var langFunc func() uintptr
	purego.RegisterLibFunc(&langFunc, handle, symName)

	ptr := langFunc()
	if ptr == 0 {
		return nil, fmt.Errorf("grammar %q: %s() returned null", slug, symName)
	}

	// Convert uintptr from C (purego) to unsafe.Pointer without triggering
	// go vet's unsafeptr check. Safe because ptr is a static TSLanguage*
	// from the grammar .so, not a Go-managed pointer the GC could move.
	language := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	dl.loaded[slug] = language
	return language, nil
}

// InstalledGrammars returns the slugs of grammar shared libraries found in
// the search paths.
func (dl *DynamicLoader) InstalledGrammars() []string {
	ext := LibExtension()
	seen := make(map[string]bool)
	var slugs []string
	for _, dir := range dl.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			slug := strings.TrimSuffix(e.Name(), ext)
			if !seen[slug] {
				seen[slug] = true
				slugs = append(slugs, slug)
			}
		}
	}
	return slugs
}

// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "strings"

// Tag classifies a debt marker. The five built-in tags cover the common
// vocabulary; anything else configured by the caller becomes a custom tag.
type Tag struct {
	name string
}

var (
	TagTodo  = Tag{"TODO"}
	TagFixme = Tag{"FIXME"}
	TagHack  = Tag{"HACK"}
	TagBug   = Tag{"BUG"}
	TagXxx   = Tag{"XXX"}
)

// TagFromString maps a matched keyword to a Tag. Built-in keywords map to
// their canonical tags; unknown keywords become custom tags carrying the
// uppercased keyword.
func TagFromString(s string) Tag {
	switch strings.ToUpper(s) {
	case "TODO":
		return TagTodo
	case "FIXME":
		return TagFixme
	case "HACK":
		return TagHack
	case "BUG":
		return TagBug
	case "XXX":
		return TagXxx
	default:
		return Tag{strings.ToUpper(s)}
	}
}

// String returns the canonical uppercase form of the tag.
func (t Tag) String() string { return t.name }

// IsBuiltin reports whether the tag is one of the five built-in markers.
func (t Tag) IsBuiltin() bool {
	switch t {
	case TagTodo, TagFixme, TagHack, TagBug, TagXxx:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler so tags serialize as their
// canonical string inside JSON cache entries.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.name), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	*t = TagFromString(string(b))
	return nil
}

// Priority is the urgency level parsed from a tag's metadata group.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// ParsePriority recognizes the priority spellings accepted inside a metadata
// group: bare level names, p:-prefixed levels, and p0–p3 shorthands.
// Matching is case-insensitive. Returns PriorityNone for anything else.
func ParsePriority(s string) Priority {
	switch strings.ToLower(s) {
	case "low", "p:low", "p3":
		return PriorityLow
	case "medium", "med", "p:medium", "p:med", "p2":
		return PriorityMedium
	case "high", "p:high", "p1":
		return PriorityHigh
	case "critical", "crit", "p:critical", "p:crit", "p0":
		return PriorityCritical
	default:
		return PriorityNone
	}
}

// String returns the lowercase level name, or "" for PriorityNone.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return ""
}

// MarshalText serializes the priority as its level name.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses a level name back into a Priority.
func (p *Priority) UnmarshalText(b []byte) error {
	*p = ParsePriority(string(b))
	return nil
}

// Finding is one detected debt marker with its parsed metadata.
// Line is 1-based; Column is 0-based (byte offset of the tag keyword within
// its line). Author, Issue, and Priority come only from the parenthesized
// metadata group directly attached to the tag, never inferred from elsewhere.
type Finding struct {
	Tag      Tag      `json:"tag"`
	Message  string   `json:"message"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Author   string   `json:"author,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Context  string   `json:"context,omitempty"` // full source line the tag was found on
}

// FileScanner produces the findings for a single file's content. Both the
// baseline extractor and the tree-sitter verified scanner implement this,
// so callers can swap precision for speed without touching orchestration.
//
// Findings are ordered by line, then column. A scanner must not fail the
// whole batch for a bad file: content-level problems surface as an error
// for that path and the caller records it.
type FileScanner interface {
	// ScanFile extracts findings from the given content. The path is used
	// for language detection (extension) and for stamping findings; content
	// has already been read by the caller.
	ScanFile(path string, content []byte) ([]Finding, error)
}

// FileContent is a byte-addressable view of one file. Close releases the
// backing resources; for memory-mapped content the bytes are invalid after
// Close.
type FileContent interface {
	Bytes() []byte
	Close() error
}

// ContentReader loads file content for scanning. The mmap adapter switches
// between buffered reads and memory mapping based on file size; both paths
// must yield byte-identical content.
type ContentReader interface {
	// Open returns the full content of the file at path.
	Open(path string) (FileContent, error)
}

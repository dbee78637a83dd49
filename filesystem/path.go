package filesystem

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/tilefs"
)

// FileMarker separates a file name from its folder path. A path containing it
// exactly once denotes a file.
const FileMarker = "//"

// NodeType discriminates the [Node] variants
type NodeType int

const (
	FolderType NodeType = iota
	FileType
)

func (t NodeType) String() string {
	switch t {
	case FolderType:
		return "folder"
	case FileType:
		return "file"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Classify returns FileType iff path contains the file marker
func Classify(path string) NodeType {
	if strings.Contains(path, FileMarker) {
		return FileType
	}
	return FolderType
}

// IsValid reports whether path follows the grammar: non-empty, and for files
// a single marker followed by a non-empty name without slashes.
func IsValid(path string) bool {
	if path == "" {
		return false
	}
	if Classify(path) == FileType {
		parts := strings.Split(path, FileMarker)
		// There should only ever be one instance of the marker
		if len(parts) > 2 {
			return false
		}
		if parts[1] == "" || strings.Contains(parts[1], "/") {
			return false
		}
		return true
	}
	return trimSlashes(path) != ""
}

// Parse splits path into its name, parent path and type. The path must be
// valid, see [IsValid]; use [ParsePath] for untrusted input.
//
// File names keep the second slash of the marker so that
// parent + "/" + name reconstructs the path, i.e. "C:/docs//a.txt" parses to
// ("/a.txt", "C:/docs", FileType).
func Parse(path string) (name, parent string, typ NodeType) {
	if Classify(path) == FileType {
		folder, file, _ := strings.Cut(path, FileMarker)
		return "/" + file, strings.TrimPrefix(folder, "/"), FileType
	}
	segments := strings.Split(trimSlashes(path), "/")
	name = segments[len(segments)-1]
	parent = strings.Join(segments[:len(segments)-1], "/")
	return name, parent, FolderType
}

// JoinPath is the inverse of [Parse]
func JoinPath(parent, name string) string {
	if parent == "" {
		if strings.HasPrefix(name, "/") {
			// root-level file
			return "/" + name
		}
		return name
	}
	return parent + "/" + name
}

// trimSlashes removes exactly one leading and one trailing slash if present
func trimSlashes(path string) string {
	path = strings.TrimPrefix(path, "/")
	return strings.TrimSuffix(path, "/")
}

// Path is a validated, canonical node path. The zero value is not a valid path;
// construct with [ParsePath].
type Path struct {
	full   string
	name   string
	parent string
	typ    NodeType
}

// ParsePath validates raw and returns its canonical form.
// Returns an error wrapping [tilefs.ErrInvalidPath] on grammar violations.
func ParsePath(raw string) (Path, error) {
	if !IsValid(raw) {
		return Path{}, fmt.Errorf("%w: %q", tilefs.ErrInvalidPath, raw)
	}
	name, parent, typ := Parse(raw)
	return Path{
		full:   JoinPath(parent, name),
		name:   name,
		parent: parent,
		typ:    typ,
	}, nil
}

// String returns the canonical path. It is the tag stored on the node's document.
func (p Path) String() string {
	return p.full
}

// Name returns the last segment; files include their leading slash
func (p Path) Name() string {
	return p.name
}

// Parent returns the canonical parent folder path; "" for root-level nodes
func (p Path) Parent() string {
	return p.parent
}

func (p Path) Type() NodeType {
	return p.typ
}

// IsRoot reports whether the node has no parent folder
func (p Path) IsRoot() bool {
	return p.parent == ""
}

// ParentPath returns the parent folder's Path. ok is false for root-level nodes.
func (p Path) ParentPath() (parent Path, ok bool) {
	if p.IsRoot() {
		return Path{}, false
	}
	// a canonical path's parent is always a valid folder path
	parent, err := ParsePath(p.parent)
	return parent, err == nil
}

// Child returns the path of rel relative to this folder. rel may span several
// segments and may end in a file, e.g. "a/b//c.txt" or "/c.txt".
func (p Path) Child(rel string) (Path, error) {
	if p.typ != FolderType {
		return Path{}, fmt.Errorf("%w: %s is a file and has no children", tilefs.ErrInvalidPath, p.full)
	}
	if rel == "" || rel == "/" {
		return Path{}, fmt.Errorf("%w: empty child path under %s", tilefs.ErrInvalidPath, p.full)
	}
	return ParsePath(p.full + "/" + rel)
}

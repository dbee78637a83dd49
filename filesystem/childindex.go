package filesystem

import (
	"context"
	"fmt"

	"github.com/brettbedarf/tilefs"
)

// IndexKind names what a [ChildIndex] records
type IndexKind int

const (
	FoldersIndex IndexKind = iota // a folder's child folder names
	FilesIndex                    // a folder's child file names
	HistoryIndex                  // a file's content revisions
)

// Content keys under which a node's document declares its index locators
const (
	folderIndexKey  = "folderCollectionId"
	fileIndexKey    = "fileCollectionId"
	historyIndexKey = "historyCollectionId"
	versionKey      = "version"
)

func (k IndexKind) String() string {
	switch k {
	case FoldersIndex:
		return "folders"
	case FilesIndex:
		return "files"
	case HistoryIndex:
		return "history"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

func (k IndexKind) contentKey() string {
	switch k {
	case FoldersIndex:
		return folderIndexKey
	case FilesIndex:
		return fileIndexKey
	default:
		return historyIndexKey
	}
}

// indexKinds lists the indices a node of type t owns, in allocation order
func indexKinds(t NodeType) []IndexKind {
	if t == FileType {
		return []IndexKind{HistoryIndex}
	}
	return []IndexKind{FoldersIndex, FilesIndex}
}

// ChildIndex is an append-only log of names (or file revisions).
// Registration is a hint, not a unique key: the same name may appear more than
// once and membership never implies existence.
type ChildIndex struct {
	kind IndexKind
	seq  tilefs.Sequence
}

func NewChildIndex(kind IndexKind, seq tilefs.Sequence) *ChildIndex {
	return &ChildIndex{kind: kind, seq: seq}
}

func (c *ChildIndex) Kind() IndexKind {
	return c.kind
}

// ID returns the locator of the underlying sequence
func (c *ChildIndex) ID() tilefs.SequenceID {
	return c.seq.ID()
}

// Register appends name. It never deduplicates.
func (c *ChildIndex) Register(ctx context.Context, name string) error {
	if err := c.seq.Insert(ctx, name); err != nil {
		return fmt.Errorf("failed to register %q in %s index: %w", name, c.kind, err)
	}
	return nil
}

// ListRecent returns up to n of the most recently registered values, oldest first
func (c *ChildIndex) ListRecent(ctx context.Context, n int) ([]string, error) {
	entries, err := c.seq.GetLastN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s index: %w", c.kind, err)
	}
	return entryValues(entries), nil
}

// ListOldest returns up to n of the earliest registered values, oldest first
func (c *ChildIndex) ListOldest(ctx context.Context, n int) ([]string, error) {
	entries, err := c.seq.GetFirstN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s index: %w", c.kind, err)
	}
	return entryValues(entries), nil
}

func entryValues(entries []tilefs.Entry) []string {
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

package filesystem

import (
	"context"
	"fmt"

	"github.com/brettbedarf/tilefs"
)

// Node is either a [*Folder] or a [*File]. Switch on the concrete type or on
// Type() to dispatch.
type Node interface {
	// ID returns the node's document locator
	ID() tilefs.DocumentID
	// Name returns the last path segment
	Name() string
	Path() Path
	Type() NodeType
	// Controller returns the identity the node's path is addressed under
	Controller() string
	// Document returns the backing document as loaded
	Document() *tilefs.Document

	sealed()
}

// nodeBase holds the fields shared by both variants
type nodeBase struct {
	doc        *tilefs.Document
	path       Path
	controller string
}

func (n *nodeBase) ID() tilefs.DocumentID      { return n.doc.ID }
func (n *nodeBase) Name() string               { return n.path.Name() }
func (n *nodeBase) Path() Path                 { return n.path }
func (n *nodeBase) Type() NodeType             { return n.path.Type() }
func (n *nodeBase) Controller() string         { return n.controller }
func (n *nodeBase) Document() *tilefs.Document { return n.doc }
func (n *nodeBase) sealed()                    {}

// Folder is a node with child folder and child file indices
type Folder struct {
	nodeBase
	Folders  *ChildIndex
	Files    *ChildIndex
	resolver *Resolver
}

// Open resolves rel relative to this folder. It is the same single-path
// resolution as [FileSystem.Open] on the joined path; intermediate folders are
// created through the parent registration chain when opts allow it.
//
// An empty opts.Controller addresses rel under this folder's controller.
func (f *Folder) Open(ctx context.Context, rel string, opts OpenOptions) (Node, error) {
	p, err := f.path.Child(rel)
	if err != nil {
		return nil, err
	}
	if opts.Controller == "" {
		opts.Controller = f.controller
	}
	return f.resolver.resolve(ctx, p, opts)
}

// Children returns up to limit registered child folder and file names each,
// oldest first with repeated registrations collapsed. For display only;
// a listed child is not guaranteed to resolve.
func (f *Folder) Children(ctx context.Context, limit int) (folders, files []string, err error) {
	folders, err = f.Folders.ListOldest(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	files, err = f.Files.ListOldest(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	return dedup(folders), dedup(files), nil
}

// File is a node whose content is the last entry of its history
type File struct {
	nodeBase
	History *ChildIndex
}

// Append records a new content revision. Earlier revisions are kept.
func (f *File) Append(ctx context.Context, content string) error {
	if err := f.History.Register(ctx, content); err != nil {
		return fmt.Errorf("failed to append to %s: %w", f.path, err)
	}
	return nil
}

// Current returns the latest revision. ok is false if nothing was ever appended.
func (f *File) Current(ctx context.Context) (content string, ok bool, err error) {
	last, err := f.History.ListRecent(ctx, 1)
	if err != nil {
		return "", false, err
	}
	if len(last) == 0 {
		return "", false, nil
	}
	return last[0], true, nil
}

func dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

var (
	_ Node = (*Folder)(nil)
	_ Node = (*File)(nil)
)

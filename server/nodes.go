package server

import (
	"context"
	"os"
	"strings"
	"syscall"
	"time"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/tilefs/filesystem"
	"github.com/brettbedarf/tilefs/internal/util"
)

type dirNode struct {
	gofs.Inode
	folder *filesystem.Folder
	limit  int
}

var (
	_ gofs.NodeReaddirer = (*dirNode)(nil)
	_ gofs.NodeLookuper  = (*dirNode)(nil)
	_ gofs.NodeGetattrer = (*dirNode)(nil)
)

func (d *dirNode) Getattr(ctx context.Context, fh gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	setAttr(&out.Attr, syscall.S_IFDIR|0o555, 0)
	return 0
}

func (d *dirNode) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	entries, err := listEntries(ctx, d.folder, d.limit)
	if err != nil {
		logger := util.GetLogger("dirNode.Readdir")
		logger.Error().Err(err).Str("path", d.folder.Path().String()).Msg("Failed to list")
		return nil, syscall.EIO
	}
	return gofs.NewListDirStream(entries), 0
}

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	node, err := lookupChild(ctx, d.folder, name)
	if err != nil {
		logger := util.GetLogger("dirNode.Lookup")
		logger.Error().Err(err).Str("name", name).Msg("Failed to resolve")
		return nil, syscall.EIO
	}

	switch n := node.(type) {
	case *filesystem.Folder:
		setAttr(&out.Attr, syscall.S_IFDIR|0o555, 0)
		return d.NewInode(ctx, &dirNode{folder: n, limit: d.limit}, gofs.StableAttr{Mode: syscall.S_IFDIR}), 0
	case *filesystem.File:
		content, _, err := n.Current(ctx)
		if err != nil {
			return nil, syscall.EIO
		}
		setAttr(&out.Attr, syscall.S_IFREG|0o444, len(content))
		return d.NewInode(ctx, &fileNode{file: n}, gofs.StableAttr{Mode: syscall.S_IFREG}), 0
	default:
		return nil, syscall.ENOENT
	}
}

type fileNode struct {
	gofs.Inode
	file *filesystem.File
}

var (
	_ gofs.NodeGetattrer = (*fileNode)(nil)
	_ gofs.NodeOpener    = (*fileNode)(nil)
	_ gofs.NodeReader    = (*fileNode)(nil)
)

func (f *fileNode) Getattr(ctx context.Context, fh gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	content, _, err := f.file.Current(ctx)
	if err != nil {
		return syscall.EIO
	}
	setAttr(&out.Attr, syscall.S_IFREG|0o444, len(content))
	return 0
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_APPEND|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	// content can change between reads so skip the kernel page cache
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (f *fileNode) Read(ctx context.Context, fh gofs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, _, err := f.file.Current(ctx)
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(readAt(content, off, len(dest))), 0
}

// listEntries builds directory entries from the folder's indices. Files are
// shown without their leading slash; a file whose name collides with a folder
// is hidden since lookups resolve the folder first.
func listEntries(ctx context.Context, folder *filesystem.Folder, limit int) ([]fuse.DirEntry, error) {
	folders, files, err := folder.Children(ctx, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(folders)+len(files))
	entries := make([]fuse.DirEntry, 0, len(folders)+len(files))
	for _, name := range folders {
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		seen[name] = struct{}{}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: syscall.S_IFDIR})
	}
	for _, name := range files {
		name, ok := strings.CutPrefix(name, "/")
		if !ok || name == "" || strings.Contains(name, "/") {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: syscall.S_IFREG})
	}
	return entries, nil
}

// lookupChild resolves name as a child folder, then as a child file. It goes
// by path only so unlisted (hidden) children resolve too.
func lookupChild(ctx context.Context, folder *filesystem.Folder, name string) (filesystem.Node, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, nil
	}
	node, err := folder.Open(ctx, name, filesystem.OpenOptions{})
	if err != nil || node != nil {
		return node, err
	}
	return folder.Open(ctx, "/"+name, filesystem.OpenOptions{})
}

func readAt(content string, off int64, size int) []byte {
	if off < 0 || off >= int64(len(content)) || size <= 0 {
		return nil
	}
	end := min(off+int64(size), int64(len(content)))
	return []byte(content[off:end])
}

// setAttr fills the attributes shared by every node
func setAttr(attr *fuse.Attr, mode uint32, size int) {
	now := time.Now()
	attr.Mode = mode
	attr.Size = uint64(size)
	attr.Nlink = 1
	attr.Owner = fuse.Owner{
		Uid: uint32(os.Getuid()),
		Gid: uint32(os.Getgid()),
	}
	attr.Atime = uint64(now.Unix())
	attr.Mtime = uint64(now.Unix())
	attr.Ctime = uint64(now.Unix())
	attr.Atimensec = uint32(now.Nanosecond())
	attr.Mtimensec = uint32(now.Nanosecond())
	attr.Ctimensec = uint32(now.Nanosecond())
	attr.Blksize = 4096 // preferred size for fs ops
	attr.Blocks = (uint64(size) + 511) / 512
}

package server

import (
	"context"
	"fmt"
	"time"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/tilefs/config"
	"github.com/brettbedarf/tilefs/filesystem"
	"github.com/brettbedarf/tilefs/internal/util"
)

// TileFs exposes a folder of a [filesystem.FileSystem] as a read-only FUSE mount
type TileFs struct {
	fs     *filesystem.FileSystem
	cfg    *config.Config
	server *fuse.Server
}

// New creates a TileFs instance given your config.
func New(cfg *config.Config, fs *filesystem.FileSystem) *TileFs {
	if cfg == nil {
		cfg = fs.Config()
	}
	return &TileFs{fs: fs, cfg: cfg}
}

// Serve mounts the folder at rootPath on mountPoint and returns once the
// mount is ready. opts selects the controller the folder is addressed under.
func (t *TileFs) Serve(ctx context.Context, mountPoint, rootPath string, opts filesystem.OpenOptions) error {
	logger := util.GetLogger("TileFs.Serve")

	node, err := t.fs.Check(ctx, rootPath, opts)
	if err != nil {
		return err
	}
	folder, ok := node.(*filesystem.Folder)
	if !ok || folder == nil {
		return fmt.Errorf("no folder at %q", rootPath)
	}

	attrTimeout := seconds(t.cfg.AttrTimeout)
	entryTimeout := seconds(t.cfg.EntryTimeout)
	root := &dirNode{folder: folder, limit: t.cfg.ListLimit}
	srv, err := gofs.Mount(mountPoint, root, &gofs.Options{
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
		MountOptions: fuse.MountOptions{
			Name:   t.cfg.Name,
			FsName: t.cfg.FsName,
			Debug:  t.cfg.Debug || t.cfg.LogLvl == util.TraceLevel,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", mountPoint, err)
	}
	t.server = srv

	logger.Info().
		Str("mnt", mountPoint).
		Str("root", folder.Path().String()).
		Str("controller", folder.Controller()).
		Msg("Mounted")
	return nil
}

// Wait blocks until the filesystem is unmounted
func (t *TileFs) Wait() {
	if t.server != nil {
		t.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (t *TileFs) Unmount() error {
	if t.server == nil {
		return nil
	}
	return t.server.Unmount()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

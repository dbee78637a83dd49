package filesystem

import (
	"context"
	"fmt"
	"sync"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/config"
	"github.com/brettbedarf/tilefs/internal/util"
)

// FileSystem is the facade over one caller's view of the document network
type FileSystem struct {
	cfg      *config.Config
	caller   string
	resolver *Resolver
}

// NewFS returns a filesystem acting as caller. An empty caller can read but
// never create.
func NewFS(cfg *config.Config, caller string, backend tilefs.Backend) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &FileSystem{
		cfg:      cfg,
		caller:   caller,
		resolver: NewResolver(caller, backend, cfg.IndexCapacity),
	}
}

// Caller returns the identity this filesystem writes as
func (fs *FileSystem) Caller() string {
	return fs.caller
}

func (fs *FileSystem) Config() *config.Config {
	return fs.cfg
}

// Check returns the node at path if it exists. It never creates, whatever
// opts.CreateIfUndefined says.
func (fs *FileSystem) Check(ctx context.Context, path string, opts OpenOptions) (Node, error) {
	opts.CreateIfUndefined = false
	return fs.resolver.Resolve(ctx, path, opts)
}

// Get returns the node stored at id, or nil if the document is not a node
func (fs *FileSystem) Get(ctx context.Context, id tilefs.DocumentID) (Node, error) {
	return fs.resolver.Get(ctx, id)
}

// Open resolves path, creating it and any missing ancestors when
// opts.CreateIfUndefined is set and the caller controls the path.
func (fs *FileSystem) Open(ctx context.Context, path string, opts OpenOptions) (Node, error) {
	return fs.resolver.Resolve(ctx, path, opts)
}

// OpenAll opens paths concurrently. Results are in input order; the first
// error (by input order) is returned along with whatever was resolved.
func (fs *FileSystem) OpenAll(ctx context.Context, paths []string, opts OpenOptions) ([]Node, error) {
	nodes := make([]Node, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Go(func() {
			nodes[i], errs[i] = fs.resolver.Resolve(ctx, path, opts)
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nodes, fmt.Errorf("failed to open %q: %w", paths[i], err)
		}
	}
	return nodes, nil
}

// Locate returns the locator of the node at path without reading or writing it
func (fs *FileSystem) Locate(ctx context.Context, path string, opts OpenOptions) (tilefs.DocumentID, error) {
	return fs.resolver.Locate(ctx, path, opts)
}

// Provision opens the requested node with creation enabled and, for files
// with content, appends it to the history. Returns nil Node if the caller
// could not create the node.
func (fs *FileSystem) Provision(ctx context.Context, req *tilefs.NodeRequest, controller string) (Node, error) {
	logger := util.GetLogger("FileSystem.Provision").With().Str("request", req.ID).Logger()

	node, err := fs.Open(ctx, req.Path, OpenOptions{
		Controller:        controller,
		CreateIfUndefined: true,
		Hidden:            req.Hidden,
		Temporary:         req.Temporary,
	})
	if err != nil || node == nil {
		return node, err
	}

	if file, ok := node.(*File); ok && req.Content != nil {
		if err := file.Append(ctx, *req.Content); err != nil {
			return nil, err
		}
		logger.Debug().Str("path", file.Path().String()).Int("bytes", len(*req.Content)).Msg("Content appended")
	}
	logger.Info().Str("path", node.Path().String()).Str("id", node.ID().String()).Msg("Node provisioned")
	return node, nil
}

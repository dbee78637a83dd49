package filesystem

import (
	"context"
	"errors"
	"fmt"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/internal/util"
)

// Factory commits new nodes: genesis document, child indices, content, and
// registration in the parent folder.
type Factory struct {
	docs     tilefs.DocumentStore
	seqs     tilefs.SequenceStore
	capacity int
	// parents resolves (and if needed creates) parent folders
	parents *Resolver
}

func NewFactory(docs tilefs.DocumentStore, seqs tilefs.SequenceStore, capacity int, parents *Resolver) *Factory {
	return &Factory{docs: docs, seqs: seqs, capacity: capacity, parents: parents}
}

// Create commits the node at p under controller and returns its reloaded
// document. The caller is responsible for authorization.
//
// Linking into the parent is best effort: if it fails the node is still
// committed and returned, and the failure is logged as an orphan write.
// Context cancellation during linking is returned.
func (f *Factory) Create(ctx context.Context, p Path, controller string, opts OpenOptions) (*tilefs.Document, error) {
	logger := util.GetLogger("Factory.Create")

	mode := tilefs.DurableMode
	if opts.Temporary {
		mode = tilefs.TemporaryMode
	}
	id, err := f.docs.CreateDocument(ctx, nil, LocatorRequest(controller, p), mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create document for %s: %w", p, err)
	}

	content := tilefs.Content{versionKey: tilefs.Version}
	for _, kind := range indexKinds(p.Type()) {
		seqID, err := f.seqs.CreateSequence(ctx, f.capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate %s index for %s: %w", kind, p, err)
		}
		content[kind.contentKey()] = seqID.String()
	}
	if err := f.docs.UpdateDocument(ctx, id, content); err != nil {
		return nil, fmt.Errorf("failed to write content of %s: %w", p, err)
	}
	logger.Info().
		Str("path", p.String()).
		Str("id", id.String()).
		Str("type", p.Type().String()).
		Bool("temporary", opts.Temporary).
		Msg("Node created")

	if !opts.Hidden && !p.IsRoot() {
		if err := f.register(ctx, p, controller, opts); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil, err
			}
			logger.Warn().
				Err(fmt.Errorf("%w: %w", tilefs.ErrOrphanWrite, err)).
				Str("path", p.String()).
				Str("parent", p.Parent()).
				Msg("Node is not linked into its parent")
		}
	}

	doc, err := f.docs.LoadDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s: %w", p, err)
	}
	return doc, nil
}

// register resolves the parent folder of p with the same options and appends
// p's name to the matching index
func (f *Factory) register(ctx context.Context, p Path, controller string, opts OpenOptions) error {
	parentPath, ok := p.ParentPath()
	if !ok {
		return fmt.Errorf("invalid parent path %q", p.Parent())
	}
	opts.Controller = controller
	node, err := f.parents.resolve(ctx, parentPath, opts)
	if err != nil {
		return err
	}
	parent, ok := node.(*Folder)
	if !ok || parent == nil {
		return fmt.Errorf("parent %s could not be opened", parentPath)
	}

	index := parent.Folders
	if p.Type() == FileType {
		index = parent.Files
	}
	return index.Register(ctx, p.Name())
}

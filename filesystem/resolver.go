package filesystem

import (
	"context"
	"errors"
	"fmt"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/internal/util"
)

// OpenOptions controls resolution of a path
type OpenOptions struct {
	// Controller is the identity the path is addressed under. Defaults to the
	// resolving caller.
	Controller string
	// CreateIfUndefined creates the node (and links it into its parents) when
	// it does not exist and the caller controls it
	CreateIfUndefined bool
	// Hidden nodes are not registered in their parent's index
	Hidden bool
	// Temporary nodes are committed without anchoring or publishing
	Temporary bool
}

// Resolver decides whether a path's node exists and creates it on request.
// It holds no mutable state; concurrent use is safe as long as the
// collaborators are.
type Resolver struct {
	caller  string
	docs    tilefs.DocumentStore
	seqs    tilefs.SequenceStore
	deriver *Deriver
	factory *Factory
}

// NewResolver returns a resolver acting as caller. indexCapacity is the
// capacity hint for newly allocated child indices.
func NewResolver(caller string, backend tilefs.Backend, indexCapacity int) *Resolver {
	r := &Resolver{
		caller:  caller,
		docs:    backend,
		seqs:    backend,
		deriver: NewDeriver(backend),
	}
	r.factory = NewFactory(backend, backend, indexCapacity, r)
	return r
}

// Resolve returns the node at path, creating it if opts allow. A nil Node with
// a nil error means the node does not exist (or could not be created by this
// caller).
func (r *Resolver) Resolve(ctx context.Context, path string, opts OpenOptions) (Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, p, opts)
}

// Locate returns the locator the node at path lives or would live at
func (r *Resolver) Locate(ctx context.Context, path string, opts OpenOptions) (tilefs.DocumentID, error) {
	p, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	return r.deriver.Locate(ctx, r.controllerFor(opts), p)
}

func (r *Resolver) resolve(ctx context.Context, p Path, opts OpenOptions) (Node, error) {
	logger := util.GetLogger("Resolver.Resolve")
	controller := r.controllerFor(opts)

	doc, err := r.probe(ctx, controller, p)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		return r.materialize(ctx, doc, p, controller)
	}

	if !opts.CreateIfUndefined {
		logger.Trace().Str("path", p.String()).Str("controller", controller).Msg("Node does not exist")
		return nil, nil
	}
	if !r.authorized(controller) {
		logger.Debug().Err(tilefs.ErrUnauthorized).
			Str("path", p.String()).
			Str("controller", controller).
			Str("caller", r.caller).
			Msg("Not creating node for another controller")
		return nil, nil
	}

	doc, err = r.factory.Create(ctx, p, controller, opts)
	if err != nil {
		return nil, err
	}
	if !isNode(doc, p) {
		return nil, fmt.Errorf("created node %s failed verification", p)
	}
	return r.materialize(ctx, doc, p, controller)
}

// Get materializes the node stored at id. Returns nil if the document there is
// not a complete node.
func (r *Resolver) Get(ctx context.Context, id tilefs.DocumentID) (Node, error) {
	logger := util.GetLogger("Resolver.Get")

	doc, err := r.load(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	if len(doc.Metadata.Tags) != 1 {
		logger.Debug().Str("id", id.String()).Int("tags", len(doc.Metadata.Tags)).Msg("Document is not a node")
		return nil, nil
	}
	p, err := ParsePath(doc.Metadata.Tags[0])
	if err != nil {
		logger.Debug().Err(err).Str("id", id.String()).Msg("Document is not a node")
		return nil, nil
	}
	if !isNode(doc, p) {
		return nil, nil
	}
	controller := ""
	if len(doc.Metadata.Controllers) > 0 {
		controller = doc.Metadata.Controllers[0]
	}
	return r.materialize(ctx, doc, p, controller)
}

// probe derives p's locator and returns the document there if, and only if, it
// is a complete node for p
func (r *Resolver) probe(ctx context.Context, controller string, p Path) (*tilefs.Document, error) {
	logger := util.GetLogger("Resolver.probe")

	id, err := r.deriver.Locate(ctx, controller, p)
	if err != nil {
		return nil, err
	}
	doc, err := r.load(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	if !isNode(doc, p) {
		logger.Trace().Str("path", p.String()).Str("id", id.String()).Msg("Document at locator is not a complete node")
		return nil, nil
	}
	return doc, nil
}

func (r *Resolver) load(ctx context.Context, id tilefs.DocumentID) (*tilefs.Document, error) {
	doc, err := r.docs.LoadDocument(ctx, id)
	if errors.Is(err, tilefs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	return doc, nil
}

// isNode is the existence predicate: content present, exactly one tag equal to
// the path, and every index locator the node type requires declared.
// Partially initialized or forged documents at a node's locator fail it.
func isNode(doc *tilefs.Document, p Path) bool {
	if doc == nil || len(doc.Content) == 0 {
		return false
	}
	if len(doc.Metadata.Tags) != 1 || doc.Metadata.Tags[0] != p.String() {
		return false
	}
	for _, kind := range indexKinds(p.Type()) {
		if doc.Content[kind.contentKey()] == "" {
			return false
		}
	}
	return true
}

func (r *Resolver) materialize(ctx context.Context, doc *tilefs.Document, p Path, controller string) (Node, error) {
	base := nodeBase{doc: doc, path: p, controller: controller}

	if p.Type() == FileType {
		history, err := r.loadIndex(ctx, doc, HistoryIndex)
		if err != nil {
			return nil, err
		}
		return &File{nodeBase: base, History: history}, nil
	}

	folders, err := r.loadIndex(ctx, doc, FoldersIndex)
	if err != nil {
		return nil, err
	}
	files, err := r.loadIndex(ctx, doc, FilesIndex)
	if err != nil {
		return nil, err
	}
	return &Folder{nodeBase: base, Folders: folders, Files: files, resolver: r}, nil
}

func (r *Resolver) loadIndex(ctx context.Context, doc *tilefs.Document, kind IndexKind) (*ChildIndex, error) {
	id := tilefs.SequenceID(doc.Content[kind.contentKey()])
	seq, err := r.seqs.LoadSequence(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s index %s of %s: %w", kind, id, doc.ID, err)
	}
	return NewChildIndex(kind, seq), nil
}

func (r *Resolver) controllerFor(opts OpenOptions) string {
	if opts.Controller != "" {
		return opts.Controller
	}
	return r.caller
}

// authorized reports whether the caller may create nodes addressed under controller
func (r *Resolver) authorized(controller string) bool {
	return r.caller != "" && r.caller == controller
}

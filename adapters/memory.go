package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/tilefs"
)

// locatorNamespace scopes derived document locators
var locatorNamespace = uuid.MustParse("6f1d2a4c-8f3e-5b7a-9c1d-2e4f6a8b0c13")

const (
	documentPrefix = "tile:"
	sequencePrefix = "seq:"
)

// GenesisID returns the locator of a deterministic document with the given
// genesis metadata. It is a name-based (SHA-1) UUID over the canonical JSON of
// family, controllers and tags.
func GenesisID(meta tilefs.Metadata) tilefs.DocumentID {
	genesis := struct {
		Family      tilefs.Family `json:"family"`
		Controllers []string      `json:"controllers"`
		Tags        []string      `json:"tags"`
	}{meta.Family, meta.Controllers, meta.Tags}
	// marshalling a struct of strings can't fail
	raw, _ := json.Marshal(genesis)
	return tilefs.DocumentID(documentPrefix + uuid.NewSHA1(locatorNamespace, raw).String())
}

type documentRecord struct {
	mu        sync.RWMutex
	doc       tilefs.Document
	temporary bool
}

func (r *documentRecord) snapshot() *tilefs.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc := r.doc
	doc.Metadata.Controllers = slices.Clone(r.doc.Metadata.Controllers)
	doc.Metadata.Tags = slices.Clone(r.doc.Metadata.Tags)
	doc.Content = maps.Clone(r.doc.Content)
	return &doc
}

func (r *documentRecord) controlledBy(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return identity != "" && slices.Contains(r.doc.Metadata.Controllers, identity)
}

type sequenceRecord struct {
	mu      sync.RWMutex
	id      tilefs.SequenceID
	owner   string
	entries []tilefs.Entry
}

// Network is an in-process document network shared by any number of
// [Client]s. Safe for concurrent use.
type Network struct {
	documents *xsync.Map[tilefs.DocumentID, *documentRecord]
	sequences *xsync.Map[tilefs.SequenceID, *sequenceRecord]
}

func NewNetwork() *Network {
	return &Network{
		documents: xsync.NewMap[tilefs.DocumentID, *documentRecord](),
		sequences: xsync.NewMap[tilefs.SequenceID, *sequenceRecord](),
	}
}

// Client returns a view of the network authenticated as identity.
// An empty identity can read and probe but not write.
func (n *Network) Client(identity string) *Client {
	return &Client{network: n, identity: identity}
}

// DocumentCount returns the number of committed documents
func (n *Network) DocumentCount() int {
	return n.documents.Size()
}

// SequenceCount returns the number of allocated sequences
func (n *Network) SequenceCount() int {
	return n.sequences.Size()
}

// Committed reports whether anything was ever committed at id
func (n *Network) Committed(id tilefs.DocumentID) bool {
	_, ok := n.documents.Load(id)
	return ok
}

// Client is one identity's view of a [Network]. It implements [tilefs.Backend].
type Client struct {
	network  *Network
	identity string
}

func (c *Client) Identity() string {
	return c.identity
}

// CreateDocument derives or allocates a locator. Deterministic documents are
// committed at most once; repeated commits return the same locator and a
// durable commit promotes an earlier temporary one.
func (c *Client) CreateDocument(ctx context.Context, content tilefs.Content, meta tilefs.Metadata, mode tilefs.WriteMode) (tilefs.DocumentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var id tilefs.DocumentID
	if meta.Deterministic {
		id = GenesisID(meta)
	} else {
		id = tilefs.DocumentID(documentPrefix + uuid.NewString())
	}
	if !mode.Commits() {
		return id, nil
	}
	if c.identity == "" || !slices.Contains(meta.Controllers, c.identity) {
		return "", fmt.Errorf("%w: %q is not a controller of %s", tilefs.ErrUnauthorized, c.identity, id)
	}

	temporary := !mode.Anchor && !mode.Publish
	record, loaded := c.network.documents.LoadOrStore(id, &documentRecord{
		doc: tilefs.Document{
			ID: id,
			Metadata: tilefs.Metadata{
				Controllers:   slices.Clone(meta.Controllers),
				Family:        meta.Family,
				Tags:          slices.Clone(meta.Tags),
				Deterministic: meta.Deterministic,
			},
			Content: maps.Clone(content),
		},
		temporary: temporary,
	})
	if loaded && !temporary {
		record.mu.Lock()
		record.temporary = false
		record.mu.Unlock()
	}
	return id, nil
}

// LoadDocument returns the document at id. A locator nothing was committed at
// yields an empty document rather than an error.
func (c *Client) LoadDocument(ctx context.Context, id tilefs.DocumentID) (*tilefs.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, ok := c.network.documents.Load(id)
	if !ok {
		return &tilefs.Document{ID: id}, nil
	}
	return record.snapshot(), nil
}

func (c *Client) UpdateDocument(ctx context.Context, id tilefs.DocumentID, content tilefs.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, ok := c.network.documents.Load(id)
	if !ok {
		return fmt.Errorf("%w: document %s", tilefs.ErrNotFound, id)
	}
	if !record.controlledBy(c.identity) {
		return fmt.Errorf("%w: %q is not a controller of %s", tilefs.ErrUnauthorized, c.identity, id)
	}
	record.mu.Lock()
	record.doc.Content = maps.Clone(content)
	record.mu.Unlock()
	return nil
}

// CreateSequence allocates an empty sequence owned by the client's identity
func (c *Client) CreateSequence(ctx context.Context, capacityHint int) (tilefs.SequenceID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.identity == "" {
		return "", fmt.Errorf("%w: anonymous clients cannot allocate sequences", tilefs.ErrUnauthorized)
	}
	id := tilefs.SequenceID(sequencePrefix + ulid.Make().String())
	c.network.sequences.Store(id, &sequenceRecord{
		id:      id,
		owner:   c.identity,
		entries: make([]tilefs.Entry, 0, max(0, min(capacityHint, 1024))),
	})
	return id, nil
}

func (c *Client) LoadSequence(ctx context.Context, id tilefs.SequenceID) (tilefs.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, ok := c.network.sequences.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: sequence %s", tilefs.ErrNotFound, id)
	}
	return &memSequence{record: record, identity: c.identity}, nil
}

var _ tilefs.Backend = (*Client)(nil)

// memSequence is a client handle on a shared sequence record
type memSequence struct {
	record   *sequenceRecord
	identity string
}

func (s *memSequence) ID() tilefs.SequenceID {
	return s.record.id
}

// Insert appends value. Only the sequence owner may insert.
func (s *memSequence) Insert(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.identity == "" || s.identity != s.record.owner {
		return fmt.Errorf("%w: %q does not own sequence %s", tilefs.ErrUnauthorized, s.identity, s.record.id)
	}
	s.record.mu.Lock()
	defer s.record.mu.Unlock()
	s.record.entries = append(s.record.entries, tilefs.Entry{
		Cursor: ulid.Make().String(),
		Value:  value,
	})
	return nil
}

func (s *memSequence) GetFirstN(ctx context.Context, n int) ([]tilefs.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record.mu.RLock()
	defer s.record.mu.RUnlock()
	n = max(0, min(n, len(s.record.entries)))
	return slices.Clone(s.record.entries[:n]), nil
}

func (s *memSequence) GetLastN(ctx context.Context, n int) ([]tilefs.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record.mu.RLock()
	defer s.record.mu.RUnlock()
	total := len(s.record.entries)
	n = max(0, min(n, total))
	return slices.Clone(s.record.entries[total-n:]), nil
}

// Package tilefs contains core domain types and collaborator interfaces for a
// virtual filesystem whose nodes live at deterministically derived document
// locators.
package tilefs

import "context"

// Version of the node content layout
const Version = "0.1.0"

// DocumentID is the opaque locator of a document in the document network
type DocumentID string

func (id DocumentID) String() string {
	return string(id)
}

// Family groups documents of the same kind. It takes part in deterministic
// locator derivation.
type Family string

const (
	FolderFamily Family = "TileFolder"
	FileFamily   Family = "TileFile"
)

// Content is the JSON object body of a document
type Content map[string]string

// Metadata is the genesis information of a document. For deterministic
// documents the locator is a pure function of it.
type Metadata struct {
	Controllers   []string `json:"controllers"`
	Family        Family   `json:"family,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Deterministic bool     `json:"deterministic,omitempty"`
}

// Document is a loaded snapshot of a document.
// Content is empty if nothing was ever durably written at ID.
type Document struct {
	ID       DocumentID `json:"id"`
	Metadata Metadata   `json:"metadata"`
	Content  Content    `json:"content,omitempty"`
}

// WriteMode controls whether CreateDocument commits anything.
// All flags false is a probe: the locator is derived but nothing is written.
type WriteMode struct {
	Anchor    bool
	Publish   bool
	Temporary bool // lightweight commit that is neither anchored nor published
}

// Commits reports whether the mode writes state
func (m WriteMode) Commits() bool {
	return m.Anchor || m.Publish || m.Temporary
}

var (
	ProbeMode     = WriteMode{}
	DurableMode   = WriteMode{Anchor: true, Publish: true}
	TemporaryMode = WriteMode{Temporary: true}
)

// DocumentStore is the document network as seen by one authenticated caller.
type DocumentStore interface {
	// CreateDocument creates (or, for deterministic metadata, re-derives) a
	// document and returns its locator. With [ProbeMode] nothing is written.
	CreateDocument(ctx context.Context, content Content, meta Metadata, mode WriteMode) (DocumentID, error)

	// LoadDocument returns the current state of the document at id
	LoadDocument(ctx context.Context, id DocumentID) (*Document, error)

	// UpdateDocument replaces the document's content
	UpdateDocument(ctx context.Context, id DocumentID, content Content) error
}

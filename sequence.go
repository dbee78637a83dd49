package tilefs

import "context"

// SequenceID is the locator of an append-only ordered sequence
type SequenceID string

func (id SequenceID) String() string {
	return string(id)
}

// Entry is a single appended value. Cursor orders entries within a sequence.
type Entry struct {
	Cursor string `json:"cursor"`
	Value  string `json:"value"`
}

// Sequence is an append-only ordered log. Entries are never modified or removed.
type Sequence interface {
	ID() SequenceID
	Insert(ctx context.Context, value string) error
	// GetFirstN returns up to n of the oldest entries, oldest first
	GetFirstN(ctx context.Context, n int) ([]Entry, error)
	// GetLastN returns up to n of the newest entries, oldest first
	GetLastN(ctx context.Context, n int) ([]Entry, error)
}

// SequenceStore allocates and loads sequences
type SequenceStore interface {
	CreateSequence(ctx context.Context, capacityHint int) (SequenceID, error)
	LoadSequence(ctx context.Context, id SequenceID) (Sequence, error)
}

// Backend bundles both collaborators of a filesystem for one caller
type Backend interface {
	DocumentStore
	SequenceStore
}

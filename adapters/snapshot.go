package adapters

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/internal/util"
)

type sequenceSnapshot struct {
	ID      tilefs.SequenceID `json:"id"`
	Owner   string            `json:"owner"`
	Entries []tilefs.Entry    `json:"entries"`
}

type networkSnapshot struct {
	Version   string             `json:"version"`
	Documents []*tilefs.Document `json:"documents"`
	Sequences []sequenceSnapshot `json:"sequences"`
}

// SaveSnapshot writes the durable state of the network to path. Temporary
// documents are left out. The file is replaced atomically.
func (n *Network) SaveSnapshot(path string) error {
	logger := util.GetLogger("Network.SaveSnapshot")

	snap := networkSnapshot{Version: tilefs.Version}
	n.documents.Range(func(id tilefs.DocumentID, record *documentRecord) bool {
		record.mu.RLock()
		temporary := record.temporary
		record.mu.RUnlock()
		if !temporary {
			snap.Documents = append(snap.Documents, record.snapshot())
		}
		return true
	})
	n.sequences.Range(func(id tilefs.SequenceID, record *sequenceRecord) bool {
		record.mu.RLock()
		snap.Sequences = append(snap.Sequences, sequenceSnapshot{
			ID:      id,
			Owner:   record.owner,
			Entries: slices.Clone(record.entries),
		})
		record.mu.RUnlock()
		return true
	})
	slices.SortFunc(snap.Documents, func(a, b *tilefs.Document) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Sequences, func(a, b sequenceSnapshot) int { return cmp.Compare(a.ID, b.ID) })

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", path, err)
	}

	logger.Debug().
		Str("path", path).
		Int("documents", len(snap.Documents)).
		Int("sequences", len(snap.Sequences)).
		Msg("Snapshot saved")
	return nil
}

// LoadSnapshot restores a network saved with [Network.SaveSnapshot].
// A missing file yields an empty network.
func LoadSnapshot(path string) (*Network, error) {
	logger := util.GetLogger("LoadSnapshot")

	n := NewNetwork()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("path", path).Msg("No snapshot, starting empty")
		return n, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap networkSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	for _, doc := range snap.Documents {
		if doc == nil || doc.ID == "" {
			continue
		}
		n.documents.Store(doc.ID, &documentRecord{doc: *doc})
	}
	for _, seq := range snap.Sequences {
		n.sequences.Store(seq.ID, &sequenceRecord{
			id:      seq.ID,
			owner:   seq.Owner,
			entries: seq.Entries,
		})
	}

	logger.Debug().
		Str("path", path).
		Str("version", snap.Version).
		Int("documents", len(snap.Documents)).
		Int("sequences", len(snap.Sequences)).
		Msg("Snapshot loaded")
	return n, nil
}

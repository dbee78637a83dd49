package filesystem

import (
	"context"
	"fmt"

	"github.com/brettbedarf/tilefs"
)

// LocatorRequest builds the deterministic genesis metadata for the node at p
// owned by controller. Identical inputs always yield identical metadata and so
// the same document locator.
func LocatorRequest(controller string, p Path) tilefs.Metadata {
	family := tilefs.FolderFamily
	if p.Type() == FileType {
		family = tilefs.FileFamily
	}
	return tilefs.Metadata{
		Controllers:   []string{controller},
		Family:        family,
		Tags:          []string{p.String()},
		Deterministic: true,
	}
}

// Deriver answers "where would the node at this path live" without writing
type Deriver struct {
	docs tilefs.DocumentStore
}

func NewDeriver(docs tilefs.DocumentStore) *Deriver {
	return &Deriver{docs: docs}
}

// Locate derives the locator of p under controller. It issues a probe-only
// create so nothing is anchored or published.
func (d *Deriver) Locate(ctx context.Context, controller string, p Path) (tilefs.DocumentID, error) {
	id, err := d.docs.CreateDocument(ctx, nil, LocatorRequest(controller, p), tilefs.ProbeMode)
	if err != nil {
		return "", fmt.Errorf("failed to derive locator for %s: %w", p, err)
	}
	return id, nil
}

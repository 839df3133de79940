// Package snapshot persists rendered output so it can be compared across
// runs or served as server-rendered markup and hydrated later.
//
// A Snapshot is the HTML of a memdom subtree plus an xxhash fingerprint of
// it. Stores keep snapshots by key:
//
//	store, _ := snapshot.OpenBolt("snapshots.db")
//	defer store.Close()
//
//	snap := snapshot.Capture("home", inst.Elm().(*memdom.Node))
//	res, err := snapshot.Check(ctx, store, snap)
//	if res.Status == snapshot.Changed { ... }
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/patchwork/pkg/memdom"
)

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("patchwork: snapshot not found")

// Snapshot is the serialised output of one rendered tree.
type Snapshot struct {
	Key         string    `json:"key"`
	Fingerprint uint64    `json:"fingerprint"`
	HTML        string    `json:"html"`
	Created     time.Time `json:"created"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put stores snap under snap.Key, replacing any previous snapshot.
	Put(ctx context.Context, snap Snapshot) error

	// Get returns the snapshot stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (Snapshot, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Fingerprint hashes markup.
func Fingerprint(html string) uint64 {
	return xxhash.Sum64String(html)
}

// Capture serialises n. The root is marked server-rendered so that
// Restore hands the patcher a tree it hydrates.
func Capture(key string, n *memdom.Node) Snapshot {
	html := memdom.RenderToString(n, memdom.RenderConfig{ServerRendered: true})
	return Snapshot{
		Key:         key,
		Fingerprint: Fingerprint(html),
		HTML:        html,
		Created:     time.Now().UTC(),
	}
}

// Restore parses snap into a detached element of doc, ready for
// vdom.Patcher.PatchElement or component mounting.
func Restore(doc *memdom.Document, snap Snapshot) (*memdom.Node, error) {
	if got := Fingerprint(snap.HTML); got != snap.Fingerprint {
		return nil, fmt.Errorf("snapshot %q: fingerprint mismatch (stored %016x, computed %016x)",
			snap.Key, snap.Fingerprint, got)
	}
	n, err := doc.ParseElement(snap.HTML)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", snap.Key, err)
	}
	return n, nil
}

// Status is the outcome of Check.
type Status int

const (
	// New means no snapshot was stored under the key.
	New Status = iota
	// Unchanged means the stored fingerprint matches.
	Unchanged
	// Changed means the stored fingerprint differs.
	Changed
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result describes a Check.
type Result struct {
	Status   Status
	Previous *Snapshot
}

// Check compares snap against the stored snapshot of the same key and
// stores snap unless it is unchanged.
func Check(ctx context.Context, s Store, snap Snapshot) (Result, error) {
	prev, err := s.Get(ctx, snap.Key)
	switch {
	case errors.Is(err, ErrNotFound):
		return Result{Status: New}, s.Put(ctx, snap)
	case err != nil:
		return Result{}, err
	case prev.Fingerprint == snap.Fingerprint:
		return Result{Status: Unchanged, Previous: &prev}, nil
	}
	return Result{Status: Changed, Previous: &prev}, s.Put(ctx, snap)
}

package store

import (
	"sort"
	"sync"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
	"github.com/praetorian-inc/checkparens/pkg/types"
)

type blobRecord struct {
	size    int64
	verdict brackets.Verdict
}

type provenanceRecord struct {
	blobID                         types.BlobID
	kind, path, repoPath, commitID string
}

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu         sync.RWMutex
	blobs      map[types.BlobID]blobRecord
	provenance []provenanceRecord
	seen       map[provenanceRecord]bool
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[types.BlobID]blobRecord),
		seen:  make(map[provenanceRecord]bool),
	}
}

// AddBlob stores a blob record.
func (m *MemoryStore) AddBlob(id types.BlobID, size int64, verdict brackets.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[id]; exists {
		return nil
	}
	m.blobs[id] = blobRecord{size: size, verdict: verdict}
	return nil
}

// AddProvenance associates provenance with a blob.
func (m *MemoryStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	path, repoPath, commitID, err := provenanceColumns(prov)
	if err != nil {
		return err
	}
	rec := provenanceRecord{
		blobID:   blobID,
		kind:     prov.Kind(),
		path:     path,
		repoPath: repoPath,
		commitID: commitID,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen[rec] {
		return nil
	}
	m.seen[rec] = true
	m.provenance = append(m.provenance, rec)
	return nil
}

// BlobExists checks if a blob has already been checked.
func (m *MemoryStore) BlobExists(id types.BlobID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[id]
	return exists, nil
}

// GetVerdict returns the stored verdict of a blob.
func (m *MemoryStore) GetVerdict(id types.BlobID) (brackets.Verdict, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.blobs[id]
	if !ok {
		return "", ErrNotFound
	}
	return rec.verdict, nil
}

// GetResults returns one result per provenance, ordered by path.
func (m *MemoryStore) GetResults() ([]*types.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*types.Result, 0, len(m.provenance))
	for _, p := range m.provenance {
		blob, ok := m.blobs[p.blobID]
		if !ok {
			continue
		}
		results = append(results, &types.Result{
			BlobID:    p.blobID,
			Kind:      p.kind,
			Path:      p.path,
			Container: p.repoPath,
			Size:      blob.size,
			Verdict:   blob.verdict,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Path != results[j].Path {
			return results[i].Path < results[j].Path
		}
		return results[i].Kind < results[j].Kind
	})
	return results, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

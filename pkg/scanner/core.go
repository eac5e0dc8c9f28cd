// Package scanner checks enumerated blobs and records their verdicts.
package scanner

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
	"github.com/praetorian-inc/checkparens/pkg/store"
	"github.com/praetorian-inc/checkparens/pkg/types"
)

// Options configures a Core.
type Options struct {
	// Store receives verdicts and provenance. Nil uses an in-memory store
	// owned by the Core.
	Store store.Store

	// Incremental reuses the stored verdict of an already-checked blob.
	Incremental bool

	Logger DebugLogger
}

// Core checks blobs against a store. It is safe for concurrent use, so it can
// serve as an enumerator callback directly.
type Core struct {
	store       store.Store
	ownsStore   bool
	incremental bool
	logger      DebugLogger

	mu      sync.Mutex
	results []*types.Result
	reused  int
}

// NewCore creates a Core from opts.
func NewCore(opts Options) (*Core, error) {
	c := &Core{
		store:       opts.Store,
		incremental: opts.Incremental,
		logger:      opts.Logger,
	}
	if c.logger == nil {
		c.logger = NoopLogger{}
	}
	if c.store == nil {
		s, err := store.New(store.Config{Path: ":memory:"})
		if err != nil {
			return nil, err
		}
		c.store = s
		c.ownsStore = true
	}
	return c, nil
}

// Check records the verdict of content found at prov.
func (c *Core) Check(content []byte, blobID types.BlobID, prov types.Provenance) error {
	verdict, cached, err := c.verdict(content, blobID)
	if err != nil {
		return err
	}

	if err := c.store.AddProvenance(blobID, prov); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}

	c.logger.Log("checked %s: %s", prov.Path(), verdict)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, &types.Result{
		BlobID:    blobID,
		Kind:      prov.Kind(),
		Path:      prov.Path(),
		Container: types.Container(prov),
		Size:      int64(len(content)),
		Verdict:   verdict,
	})
	if cached {
		c.reused++
	}
	return nil
}

// CheckString checks s as if it were read from a file at source.
func (c *Core) CheckString(s, source string) (brackets.Verdict, error) {
	content := []byte(s)
	blobID := types.ComputeBlobID(content)
	if err := c.Check(content, blobID, types.FileProvenance{FilePath: source}); err != nil {
		return "", err
	}
	return c.store.GetVerdict(blobID)
}

// verdict matches content unless an incremental Core already stored it.
// cached reports whether the store supplied the verdict.
func (c *Core) verdict(content []byte, blobID types.BlobID) (verdict brackets.Verdict, cached bool, err error) {
	if c.incremental {
		verdict, err = c.store.GetVerdict(blobID)
		if err == nil {
			return verdict, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", false, fmt.Errorf("checking blob: %w", err)
		}
	}

	verdict = brackets.MatchBytes(content)
	if err := c.store.AddBlob(blobID, int64(len(content)), verdict); err != nil {
		return "", false, fmt.Errorf("storing blob: %w", err)
	}
	return verdict, false, nil
}

// Results returns the results checked so far, ordered by path.
func (c *Core) Results() []*types.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*types.Result, len(c.results))
	copy(out, c.results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Reused returns how many verdicts came from the store.
func (c *Core) Reused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reused
}

// Close releases the store if the Core created it.
func (c *Core) Close() error {
	if c.ownsStore {
		return c.store.Close()
	}
	return nil
}

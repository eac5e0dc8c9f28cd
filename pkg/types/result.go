package types

import (
	"strings"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
)

// Result is the verdict for one piece of content at one location.
type Result struct {
	BlobID    BlobID           `json:"blob_id"`
	Kind      string           `json:"kind"`
	Path      string           `json:"path"`
	Container string           `json:"container,omitempty"` // repository or archive
	Size      int64            `json:"size"`
	Verdict   brackets.Verdict `json:"verdict"`
}

// Member returns the path inside the archive for an archive result, or ""
// otherwise.
func (r *Result) Member() string {
	if r.Kind != KindArchive || r.Container == "" {
		return ""
	}
	return strings.TrimPrefix(r.Path, r.Container+":")
}

// Summary counts results by verdict.
type Summary struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Total returns the number of results counted.
func (s Summary) Total() int {
	return s.Valid + s.Invalid
}

// Summarize counts the verdicts in results.
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Verdict.OK() {
			s.Valid++
		} else {
			s.Invalid++
		}
	}
	return s
}

package docsync

import (
	"errors"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	ErrDuplicateName = errors.New("docsync: duplicate file name in listing")
)

// FileRecord describes a single file in a folder listing. Name is the only
// identity; ModifiedAt is informational and may be zero when the service does
// not report it.
type FileRecord struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Snapshot is an immutable, name-keyed view of a folder at listing time.
type Snapshot struct {
	folder  string
	records map[string]FileRecord
}

// NewSnapshot builds a snapshot from a listing. Listings with repeated names
// are rejected since a name must identify exactly one logical document.
func NewSnapshot(folder string, records []FileRecord) (*Snapshot, error) {
	byName := make(map[string]FileRecord, len(records))
	for _, rec := range records {
		if _, dup := byName[rec.Name]; dup {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateName, rec.Name, folder)
		}
		byName[rec.Name] = rec
	}

	return &Snapshot{
		folder:  folder,
		records: byName,
	}, nil
}

func (s *Snapshot) Folder() string {
	return s.folder
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

func (s *Snapshot) Get(name string) (FileRecord, bool) {
	rec, ok := s.records[name]
	return rec, ok
}

// Names returns a fresh set of all names in the snapshot
func (s *Snapshot) Names() mapset.Set[string] {
	names := mapset.NewThreadUnsafeSetWithSize[string](len(s.records))
	for name := range s.records {
		names.Add(name)
	}
	return names
}

// Records returns all records sorted by name
func (s *Snapshot) Records() []FileRecord {
	out := make([]FileRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

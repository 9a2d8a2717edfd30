package namespace

import (
	"sort"
	"sync/atomic"
	"time"
)

// Snapshot is one immutable projection of the namespace. All listing
// and retrieval queries run against a snapshot, so readers are never
// exposed to a projection under construction.
type Snapshot struct {
	bucket  string
	rootID  string
	builtAt time.Time

	objects map[string]ObjectSummary
	keys    []string // sorted
}

// NewSnapshot builds a snapshot over a projected object set. The map
// is owned by the snapshot after the call.
func NewSnapshot(bucket, rootID string, objects map[string]ObjectSummary) *Snapshot {
	keys := make([]string, 0, len(objects))
	for key := range objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Snapshot{
		bucket:  bucket,
		rootID:  rootID,
		builtAt: time.Now(),
		objects: objects,
		keys:    keys,
	}
}

// Bucket returns the bucket name this snapshot is served under.
func (s *Snapshot) Bucket() string { return s.bucket }

// RootID returns the crawl root the snapshot was projected from.
func (s *Snapshot) RootID() string { return s.rootID }

// BuiltAt returns when the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of projected keys.
func (s *Snapshot) Len() int { return len(s.keys) }

// Keys returns all keys in lexicographic order. Callers must not
// mutate the returned slice.
func (s *Snapshot) Keys() []string { return s.keys }

// Get looks up a single key.
func (s *Snapshot) Get(key string) (ObjectSummary, bool) {
	obj, ok := s.objects[key]
	return obj, ok
}

// Files returns the file entries in key order.
func (s *Snapshot) Files() []ObjectSummary {
	var out []ObjectSummary
	for _, key := range s.keys {
		if obj := s.objects[key]; !obj.IsFolder {
			out = append(out, obj)
		}
	}
	return out
}

// Folders returns the folder entries in key order.
func (s *Snapshot) Folders() []ObjectSummary {
	var out []ObjectSummary
	for _, key := range s.keys {
		if obj := s.objects[key]; obj.IsFolder {
			out = append(out, obj)
		}
	}
	return out
}

// FindByEntityID returns the entry backed by the given entity id.
func (s *Snapshot) FindByEntityID(entityID string) (ObjectSummary, bool) {
	for _, key := range s.keys {
		if obj := s.objects[key]; obj.EntityID == entityID {
			return obj, true
		}
	}
	return ObjectSummary{}, false
}

// Store publishes snapshots to concurrent readers. Reads are
// wait-free; writers replace the whole snapshot atomically.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store primed with an empty snapshot so callers
// never see nil.
func NewStore(bucket string) *Store {
	st := &Store{}
	st.current.Store(NewSnapshot(bucket, "", nil))
	return st
}

// Load returns the current snapshot.
func (st *Store) Load() *Snapshot {
	return st.current.Load()
}

// Swap publishes a new snapshot and returns the previous one.
func (st *Store) Swap(s *Snapshot) *Snapshot {
	return st.current.Swap(s)
}

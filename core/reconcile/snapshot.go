package reconcile

import (
	"sort"

	"floorplan-sync/core/utils"
)

// Snapshot is the authoritative index: for every table key, the set of GlobalIDs that
// currently exist at the source.
type Snapshot struct {
	ids      map[TableKey]map[string]struct{}
	features int
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{ids: make(map[TableKey]map[string]struct{})}
}

// BuildSnapshot indexes features by table key.
// Features that cannot be keyed are returned as skip errors and left out of the index.
func BuildSnapshot(features []Feature) (*Snapshot, []*SkippableFeatureError) {
	s := NewSnapshot()
	var skipped []*SkippableFeatureError

	for _, f := range features {
		id, err := f.GlobalID()
		if err != nil {
			skipped = append(skipped, &SkippableFeatureError{
				GlobalID: utils.ToString(f.Attributes[AttrGlobalID]),
				Reason:   err.Error(),
			})
			continue
		}
		location, ok := f.Location()
		if !ok {
			skipped = append(skipped, &SkippableFeatureError{GlobalID: id, Reason: "location is absent"})
			continue
		}
		floor, ok := f.Floor()
		if !ok {
			skipped = append(skipped, &SkippableFeatureError{GlobalID: id, Reason: "floor is absent"})
			continue
		}
		key, err := ResolveTableKey(location, floor)
		if err != nil {
			skipped = append(skipped, &SkippableFeatureError{GlobalID: id, Reason: err.Error()})
			continue
		}
		s.Add(key, id)
	}

	return s, skipped
}

// AddTable registers key with no identifiers.
func (s *Snapshot) AddTable(key TableKey) {
	if _, ok := s.ids[key]; !ok {
		s.ids[key] = make(map[string]struct{})
	}
}

// Add records id under key.
func (s *Snapshot) Add(key TableKey, id string) {
	s.AddTable(key)
	if _, dup := s.ids[key][id]; !dup {
		s.features++
	}
	s.ids[key][id] = struct{}{}
}

// Contains reports whether id is authoritative for key.
func (s *Snapshot) Contains(key TableKey, id string) bool {
	_, ok := s.ids[key][id]
	return ok
}

// Keys returns every table key in sorted order.
func (s *Snapshot) Keys() []TableKey {
	keys := make([]TableKey, 0, len(s.ids))
	for k := range s.ids {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Len returns the number of identifiers indexed.
func (s *Snapshot) Len() int {
	return s.features
}

// Tables returns the number of table keys indexed.
func (s *Snapshot) Tables() int {
	return len(s.ids)
}

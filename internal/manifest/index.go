package manifest

import "strings"

// Index maps lowercased package ids to every record sharing that id, in
// manifest order. No merging or deduplication happens: selection between
// variants (language, chip) is the caller's business, and "first match"
// stays deterministic because insertion order is preserved.
type Index struct {
	byID map[string][]PackageRecord
}

// BuildIndex indexes the product manifest's package list.
func BuildIndex(records []PackageRecord) *Index {
	byID := make(map[string][]PackageRecord, len(records))
	for _, rec := range records {
		key := strings.ToLower(rec.ID)
		byID[key] = append(byID[key], rec)
	}
	return &Index{byID: byID}
}

// Lookup returns all variants recorded under id (case-insensitive). The
// returned slice is never empty: an absent key is UnknownPackageError, and
// empty lists cannot occur by construction.
func (x *Index) Lookup(id string) ([]PackageRecord, error) {
	recs, ok := x.byID[strings.ToLower(id)]
	if !ok {
		return nil, &UnknownPackageError{ID: id}
	}
	return recs, nil
}

// First returns the first variant of id satisfying pred, scanning in
// manifest order.
func (x *Index) First(id string, pred func(*PackageRecord) bool) (*PackageRecord, error) {
	recs, err := x.Lookup(id)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if pred(&recs[i]) {
			return &recs[i], nil
		}
	}
	return nil, &UnknownPackageError{ID: id}
}

// IDs returns every indexed key. Order is unspecified; version scans that
// iterate it derive per-key values only.
func (x *Index) IDs() []string {
	keys := make([]string, 0, len(x.byID))
	for k := range x.byID {
		keys = append(keys, k)
	}
	return keys
}

// ExpandDependency follows the record's first dependency edge to the record
// that actually carries installer payloads. Exactly one level of indirection;
// there is no solving.
func ExpandDependency(x *Index, rec *PackageRecord) (*PackageRecord, error) {
	if len(rec.Dependencies) == 0 {
		return nil, &NoDependencyError{ID: rec.ID}
	}
	recs, err := x.Lookup(strings.ToLower(rec.Dependencies[0]))
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

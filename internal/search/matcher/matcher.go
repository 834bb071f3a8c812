package matcher

import (
	"palantir/internal/domain"
)

// Match finds the inventory record for each search key by normalized exact
// equality. At most one record is returned per distinct key; when several
// records share a key (duplicate SKUs across variants), the first one in
// fetch order wins. Unmatched keys are simply absent from the result.
//
// Pure function: same inputs always produce the same matched set.
func Match(searchKeys []string, records []domain.InventoryRecord) []domain.InventoryRecord {
	if len(searchKeys) == 0 || len(records) == 0 {
		return nil
	}

	// Index the first record per normalized key, preserving fetch order.
	byKey := make(map[string]domain.InventoryRecord, len(records))
	for _, rec := range records {
		norm := domain.NormalizeKey(rec.Key)
		if norm == "" {
			continue
		}
		if _, ok := byKey[norm]; !ok {
			byKey[norm] = rec
		}
	}

	var matched []domain.InventoryRecord
	seen := make(map[string]struct{}, len(searchKeys))
	for _, key := range searchKeys {
		norm := domain.NormalizeKey(key)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if rec, ok := byKey[norm]; ok {
			matched = append(matched, rec)
		}
	}
	return matched
}

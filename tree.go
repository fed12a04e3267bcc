package snapshot

import "sort"

// responseMetadataKey marks service response metadata mappings. The key is
// enumerated last wherever ordering is visible (serialized output, token
// numbering), after all other keys in lexicographic order.
const responseMetadataKey = "ResponseMetadata"

// sortedKeys returns the mapping's keys in deterministic enumeration order:
// lexicographic, with ResponseMetadata moved to the end. Every tree walker
// uses this so reference token numbering is reproducible across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	hasMetadata := false
	for k := range m {
		if k == responseMetadataKey {
			hasMetadata = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if hasMetadata {
		keys = append(keys, responseMetadataKey)
	}
	return keys
}

package content

import "strings"

// MergeBlocks applies an edit to a step's blocks. Incoming blocks that share an id with an
// existing block keep the existing data for every key the edit leaves empty (nil or ""),
// and inherit type and settings wholesale when the edit omits them. Existing blocks not
// named by the edit are removed. The result is normalized.
func MergeBlocks(incoming []any, existing Blocks) Blocks {
	byID := make(map[string]Block, len(existing))
	for _, b := range existing {
		byID[b.ID] = b
	}

	merged := make([]any, 0, len(incoming))
	for _, item := range incoming {
		fields, ok := asMap(item)
		if !ok {
			continue
		}
		id := idOf(fields["id"])
		prev, found := byID[id]
		if id == "" || !found {
			merged = append(merged, fields)
			continue
		}
		merged = append(merged, mergeFields(fields, prev))
	}
	return Normalize(merged)
}

func mergeFields(in map[string]any, prev Block) map[string]any {
	out := map[string]any{"id": prev.ID}

	if t, ok := in["type"].(string); ok && strings.TrimSpace(t) != "" {
		out["type"] = t
	} else {
		out["type"] = string(prev.Type)
	}

	if s, ok := in["settings"].(map[string]any); ok && s != nil {
		out["settings"] = s
	} else {
		out["settings"] = prev.Settings
	}

	data := cloneMap(prev.Data)
	if d, ok := in["data"].(map[string]any); ok {
		for k, v := range d {
			if isEmptyValue(v) {
				if _, kept := data[k]; kept {
					continue
				}
			}
			data[k] = cloneValue(v)
		}
	}
	out["data"] = data
	return out
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Package content holds the walkthrough content tree: steps and the blocks inside them.
package content

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockText    BlockType = "text"
	BlockHeading BlockType = "heading"
	BlockImage   BlockType = "image"
	BlockVideo   BlockType = "video"
	BlockCode    BlockType = "code"
	BlockCallout BlockType = "callout"
	BlockButton  BlockType = "button"
)

// Block is the canonical shape every content block has once it leaves the normalizer.
type Block struct {
	ID       string         `json:"id"`
	Type     BlockType      `json:"type"`
	Data     map[string]any `json:"data"`
	Settings map[string]any `json:"settings"`
}

// Blocks normalizes itself when decoded, so every read path sees canonical blocks.
type Blocks []Block

func (b *Blocks) UnmarshalJSON(raw []byte) error {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*b = Normalize(items)
	return nil
}

func (b Blocks) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(b))
}

// Find returns the index of the block with the given id.
func (b Blocks) Find(id string) (int, bool) {
	for i := range b {
		if b[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (b Blocks) Clone() Blocks {
	out := make(Blocks, len(b))
	for i := range b {
		out[i] = b[i].Clone()
	}
	return out
}

func (b Block) Clone() Block {
	return Block{
		ID:       b.ID,
		Type:     b.Type,
		Data:     cloneMap(b.Data),
		Settings: cloneMap(b.Settings),
	}
}

// URL returns data.url, or "" when absent or not a string.
func (b Block) URL() string {
	if b.Data == nil {
		return ""
	}
	s, _ := b.Data["url"].(string)
	return s
}

func (b Block) HasURL() bool {
	return b.URL() != ""
}

// WithURL returns a copy of the block with data.url set.
func (b Block) WithURL(url string) Block {
	out := b.Clone()
	out.Data["url"] = url
	return out
}

// Normalize turns arbitrary decoded input into canonical blocks. Elements that are not
// mappings are dropped. It never fails and is idempotent.
func Normalize(raw []any) Blocks {
	out := make(Blocks, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		fields, ok := asMap(item)
		if !ok {
			continue
		}
		b := Block{
			ID:       idOf(fields["id"]),
			Type:     typeOf(fields["type"]),
			Data:     mapOf(fields["data"]),
			Settings: mapOf(fields["settings"]),
		}
		if _, dup := seen[b.ID]; b.ID == "" || dup {
			b.ID = uuid.NewString()
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}

// NormalizeBlocks re-applies the canonical shape to already typed blocks.
func NormalizeBlocks(blocks Blocks) Blocks {
	raw := make([]any, len(blocks))
	for i := range blocks {
		raw[i] = blocks[i]
	}
	return Normalize(raw)
}

// ToRaw converts blocks back to plain decoded-JSON values.
func (b Blocks) ToRaw() []any {
	out := make([]any, len(b))
	for i := range b {
		out[i] = map[string]any{
			"id":       b[i].ID,
			"type":     string(b[i].Type),
			"data":     cloneMap(b[i].Data),
			"settings": cloneMap(b[i].Settings),
		}
	}
	return out
}

func asMap(item any) (map[string]any, bool) {
	switch v := item.(type) {
	case map[string]any:
		return v, v != nil
	case Block:
		return map[string]any{"id": v.ID, "type": string(v.Type), "data": v.Data, "settings": v.Settings}, true
	case *Block:
		if v == nil {
			return nil, false
		}
		return asMap(*v)
	default:
		return nil, false
	}
}

func idOf(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func typeOf(v any) BlockType {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return BlockType(s)
		}
	case BlockType:
		if s := strings.TrimSpace(string(t)); s != "" {
			return BlockType(s)
		}
	}
	return BlockText
}

func mapOf(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return map[string]any{}
	}
	return cloneMap(m)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

package content

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidStepOrder = errors.New("step order must list every step id exactly once")

type Step struct {
	ID          string `json:"id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Blocks      Blocks `json:"blocks"`
}

type Steps []Step

func (s Steps) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Step(s))
}

// StepDraft is a step as submitted by an editor. Blocks stay raw until merged; nil means the
// draft did not carry blocks, which keeps the persisted ones of a matching step.
type StepDraft struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Blocks      *[]any `json:"blocks"`
}

func (s Steps) Find(id string) (int, bool) {
	for i := range s {
		if s[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s Steps) Clone() Steps {
	out := make(Steps, len(s))
	for i := range s {
		out[i] = s[i]
		out[i].Blocks = s[i].Blocks.Clone()
	}
	return out
}

// Reindex assigns contiguous zero-based order indexes following slice order.
func (s Steps) Reindex() Steps {
	out := s.Clone()
	for i := range out {
		out[i].Order = i
	}
	return out
}

// NormalizeSteps sorts by order, fills missing or duplicate step ids, reindexes and
// normalizes every block list.
func NormalizeSteps(steps Steps) Steps {
	out := steps.Clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		id := strings.TrimSpace(out[i].ID)
		if _, dup := seen[id]; id == "" || dup {
			id = uuid.NewString()
		}
		seen[id] = struct{}{}
		out[i].ID = id
		out[i].Order = i
		out[i].Blocks = NormalizeBlocks(out[i].Blocks)
	}
	return out
}

// MergeSteps replaces the step list with the drafts, merging blocks of drafts whose id
// matches an existing step. A matching draft without blocks keeps the stored blocks.
func MergeSteps(drafts []StepDraft, existing Steps) Steps {
	out := make(Steps, 0, len(drafts))
	for i, d := range drafts {
		var prev Blocks
		if idx, ok := existing.Find(d.ID); ok && d.ID != "" {
			prev = existing[idx].Blocks
		}
		var blocks Blocks
		if d.Blocks == nil {
			blocks = prev.Clone()
		} else {
			blocks = MergeBlocks(*d.Blocks, prev)
		}
		out = append(out, Step{
			ID:          d.ID,
			Order:       i,
			Title:       d.Title,
			Description: d.Description,
			Blocks:      blocks,
		})
	}
	return NormalizeSteps(out)
}

// Reorder returns the steps in the order given by ids, which must be a permutation of the
// current step ids.
func Reorder(steps Steps, ids []string) (Steps, error) {
	if len(ids) != len(steps) {
		return nil, ErrInvalidStepOrder
	}
	out := make(Steps, 0, len(steps))
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idx, ok := steps.Find(id)
		if !ok {
			return nil, ErrInvalidStepOrder
		}
		if _, dup := used[id]; dup {
			return nil, ErrInvalidStepOrder
		}
		used[id] = struct{}{}
		out = append(out, steps[idx])
	}
	return out.Reindex(), nil
}

// Remove drops the step with the given id and closes the gap in order indexes.
func Remove(steps Steps, id string) (Steps, bool) {
	idx, ok := steps.Find(id)
	if !ok {
		return steps, false
	}
	out := make(Steps, 0, len(steps)-1)
	out = append(out, steps[:idx]...)
	out = append(out, steps[idx+1:]...)
	return out.Reindex(), true
}

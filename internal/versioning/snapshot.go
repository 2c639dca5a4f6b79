// Package versioning captures published walkthroughs as immutable snapshots and restores
// content from them.
package versioning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"stepwise/internal/content"
	"stepwise/internal/models/db_models"
)

// Snapshot is a read-only copy of a walkthrough as it was at a given version. Accessors return
// copies, so a Snapshot can be shared freely.
type Snapshot struct {
	walkthroughID uuid.UUID
	version       int
	createdBy     uuid.UUID
	createdAt     time.Time
	body          db_models.SnapshotBody
}

func (s Snapshot) WalkthroughID() uuid.UUID { return s.walkthroughID }
func (s Snapshot) Version() int             { return s.version }
func (s Snapshot) CreatedBy() uuid.UUID     { return s.createdBy }
func (s Snapshot) CreatedAt() time.Time     { return s.createdAt }

func (s Snapshot) Body() db_models.SnapshotBody { return cloneBody(s.body) }

func (s Snapshot) Steps() content.Steps { return s.body.Steps.Clone() }

// HasImageURLs reports whether the snapshot holds at least one image block with a URL.
func (s Snapshot) HasImageURLs() bool { return HasRecoverableImages(s.body.Steps) }

// Capture copies the current state of w, tagged with its current version. Password material
// is never copied.
func Capture(w *db_models.Walkthrough, editor uuid.UUID, at time.Time) Snapshot {
	return Snapshot{
		walkthroughID: w.ID,
		version:       w.Version,
		createdBy:     editor,
		createdAt:     at.UTC(),
		body: db_models.SnapshotBody{
			Title:       w.Title,
			Description: w.Description,
			IconURL:     w.IconURL,
			Privacy:     w.Privacy,
			Status:      w.Status,
			Navigation:  stripSecrets(w.Navigation),
			CategoryIDs: append([]string{}, w.CategoryIDs...),
			Tags:        append([]string{}, w.Tags...),
			Steps:       content.NormalizeSteps(w.StepList()),
		},
	}
}

// Publish captures the pre-publish state of w and advances its version counter by one. Edits
// applied to w afterwards belong to the new version.
func Publish(w *db_models.Walkthrough, editor uuid.UUID, at time.Time) Snapshot {
	snap := Capture(w, editor, at)
	w.Version = snap.version + 1
	return snap
}

// Record converts the snapshot into its append-only row.
func (s Snapshot) Record() *db_models.WalkthroughVersion {
	return &db_models.WalkthroughVersion{
		ID:            uuid.New(),
		WalkthroughID: s.walkthroughID,
		Version:       s.version,
		Body:          datatypes.NewJSONType(cloneBody(s.body)),
		HasImageURLs:  s.HasImageURLs(),
		CreatedBy:     s.createdBy,
		CreatedAt:     s.createdAt.Unix(),
	}
}

// FromRecord rebuilds a snapshot from a stored row. Blocks are normalized on the way in.
func FromRecord(rec *db_models.WalkthroughVersion) Snapshot {
	body := cloneBody(rec.Body.Data())
	body.Steps = content.NormalizeSteps(body.Steps)
	body.Navigation = stripSecrets(body.Navigation)
	return Snapshot{
		walkthroughID: rec.WalkthroughID,
		version:       rec.Version,
		createdBy:     rec.CreatedBy,
		createdAt:     time.Unix(rec.CreatedAt, 0).UTC(),
		body:          body,
	}
}

// HasRecoverableImages reports whether any step holds an image block with a non-empty URL.
func HasRecoverableImages(steps content.Steps) bool {
	for _, s := range steps {
		for _, b := range s.Blocks {
			if b.Type == content.BlockImage && b.HasURL() {
				return true
			}
		}
	}
	return false
}

func cloneBody(b db_models.SnapshotBody) db_models.SnapshotBody {
	out := b
	out.Navigation = stripSecrets(b.Navigation)
	out.CategoryIDs = append([]string{}, b.CategoryIDs...)
	out.Tags = append([]string{}, b.Tags...)
	out.Steps = b.Steps.Clone()
	return out
}

// stripSecrets deep-copies a navigation map without any password keys.
// stripSecrets deep-copies m without password keys at any depth.
func stripSecrets(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isSecretKey(k) {
			continue
		}
		out[k] = stripValue(v)
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return stripSecrets(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = stripValue(t[i])
		}
		return out
	default:
		return v
	}
}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	return k == "password" || k == "password_hash" || k == "passwordhash"
}

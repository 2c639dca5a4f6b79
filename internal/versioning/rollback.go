package versioning

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"stepwise/internal/content"
	"stepwise/internal/models/db_models"
)

// Restore overwrites the editable content of live with the snapshot. The version counter and
// the password hash are left alone; a snapshot in password mode falls back to private when
// live holds no hash. An empty icon URL in the snapshot keeps the live icon.
func Restore(live *db_models.Walkthrough, snap Snapshot, editor uuid.UUID) {
	body := snap.Body()

	live.Title = body.Title
	live.Description = body.Description
	if body.IconURL != "" {
		live.IconURL = body.IconURL
	}

	privacy := body.Privacy
	if !privacy.Valid() {
		privacy = live.Privacy
	}
	if privacy == db_models.PrivacyPassword && live.PasswordHash == "" {
		privacy = db_models.PrivacyPrivate
	}
	live.Privacy = privacy

	if body.Status.Valid() {
		live.Status = body.Status
	}
	live.Navigation = datatypes.JSONMap(body.Navigation)
	live.CategoryIDs = pq.StringArray(body.CategoryIDs)
	live.Tags = pq.StringArray(body.Tags)
	live.SetSteps(content.NormalizeSteps(body.Steps))
	live.UpdatedBy = editor
}

package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"stepwise/internal/content"
)

// SnapshotBody is the part of a walkthrough a published version preserves. It has no field
// for password material.
type SnapshotBody struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IconURL     string            `json:"icon_url"`
	Privacy     Privacy           `json:"privacy"`
	Status      WalkthroughStatus `json:"status"`
	Navigation  map[string]any    `json:"navigation"`
	CategoryIDs []string          `json:"category_ids"`
	Tags        []string          `json:"tags"`
	Steps       content.Steps     `json:"steps"`
}

// WalkthroughVersion rows are append-only: they are inserted on publish and never updated
// or deleted.
type WalkthroughVersion struct {
	ID            uuid.UUID                        `gorm:"type:uuid;primaryKey"`
	WalkthroughID uuid.UUID                        `gorm:"type:uuid;not null;uniqueIndex:ux_walkthrough_version,priority:1"`
	Version       int                              `gorm:"not null;uniqueIndex:ux_walkthrough_version,priority:2"`
	Body          datatypes.JSONType[SnapshotBody] `gorm:"type:jsonb"`
	HasImageURLs  bool                             `gorm:"default:false;index"`
	CreatedBy     uuid.UUID                        `gorm:"type:uuid"`
	CreatedAt     int64                            `gorm:"not null"`
}

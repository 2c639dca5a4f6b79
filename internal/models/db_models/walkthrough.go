package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"stepwise/internal/content"
)

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyPrivate  Privacy = "private"
	PrivacyPassword Privacy = "password"
)

func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate || p == PrivacyPassword
}

type WalkthroughStatus string

const (
	StatusDraft     WalkthroughStatus = "DRAFT"
	StatusPublished WalkthroughStatus = "PUBLISHED"
)

func (s WalkthroughStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Walkthrough struct {
	BaseModel
	WorkspaceID  uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_walkthrough_workspace_slug,priority:1"`
	Title        string    `gorm:"not null"`
	Slug         string    `gorm:"not null;uniqueIndex:ux_walkthrough_workspace_slug,priority:2"`
	Description  string    `gorm:"type:text"`
	IconURL      string
	Privacy      Privacy `gorm:"type:varchar(16);default:'public'"`
	PasswordHash string
	Status       WalkthroughStatus                 `gorm:"type:varchar(16);default:'DRAFT';index"`
	Archived     bool                              `gorm:"default:false;index"`
	Navigation   datatypes.JSONMap                 `gorm:"type:jsonb"`
	CategoryIDs  pq.StringArray                    `gorm:"type:text[]"`
	Tags         pq.StringArray                    `gorm:"type:text[]"`
	Steps        datatypes.JSONType[content.Steps] `gorm:"type:jsonb"`
	Version      int                               `gorm:"not null;default:1"`
	CreatedBy    uuid.UUID                         `gorm:"type:uuid"`
	UpdatedBy    uuid.UUID                         `gorm:"type:uuid"`
}

// StepList returns the walkthrough steps; decoding already normalized every block.
func (w *Walkthrough) StepList() content.Steps {
	return w.Steps.Data()
}

func (w *Walkthrough) SetSteps(steps content.Steps) {
	w.Steps = datatypes.NewJSONType(content.NormalizeSteps(steps))
}

func (w *Walkthrough) HasCategory(id string) bool {
	for _, c := range w.CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

package db_models

import "github.com/google/uuid"

// Category groups walkthroughs inside one workspace.
type Category struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_category_workspace_slug,priority:1"`
	Name        string    `gorm:"not null"`
	Slug        string    `gorm:"not null;uniqueIndex:ux_category_workspace_slug,priority:2"`
	Description string
	Position    int
}

package db_models

import "github.com/google/uuid"

type Feedback struct {
	BaseModel
	WorkspaceID   uuid.UUID `gorm:"type:uuid;index"`
	WalkthroughID uuid.UUID `gorm:"type:uuid;index"`
	Rating        int       `gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment       string    `gorm:"type:text"`
}

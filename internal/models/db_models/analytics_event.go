package db_models

import "github.com/google/uuid"

type EventKind string

const (
	EventView     EventKind = "view"
	EventStepView EventKind = "step_view"
	EventComplete EventKind = "complete"
)

type AnalyticsEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID   uuid.UUID `gorm:"type:uuid;index"`
	WalkthroughID uuid.UUID `gorm:"type:uuid;index"`
	Kind          EventKind `gorm:"type:varchar(16);index"`
	StepIndex     *int
	SessionID     string `gorm:"type:varchar(64)"`
	CreatedAt     int64  `gorm:"autoCreateTime;index"`
}

package db_models

import "github.com/google/uuid"

type Workspace struct {
	BaseModel
	Name    string    `gorm:"not null"`
	Slug    string    `gorm:"uniqueIndex;not null"`
	OwnerID uuid.UUID `gorm:"type:uuid;index"`
	// PlanID is the tier the workspace is billed for: "free" or "pro". Paid limits also
	// require an active subscription.
	PlanID string `gorm:"type:varchar(32);default:'free'"`

	Members []WorkspaceMember `gorm:"foreignKey:WorkspaceID"`
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

var roleRank = map[MemberRole]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// AtLeast reports whether r grants everything min grants.
func (r MemberRole) AtLeast(min MemberRole) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

func (r MemberRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

type WorkspaceMember struct {
	BaseModel
	WorkspaceID uuid.UUID  `gorm:"type:uuid;uniqueIndex:ux_workspace_member,priority:1"`
	AccountID   uuid.UUID  `gorm:"type:uuid;uniqueIndex:ux_workspace_member,priority:2;index"`
	Role        MemberRole `gorm:"type:varchar(16);not null"`
}

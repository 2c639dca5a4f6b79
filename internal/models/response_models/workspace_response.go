package response_models

import (
	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
)

type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PlanID    string `json:"plan_id"`
	Role      string `json:"role,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func NewWorkspaceResponse(ws *db_models.Workspace, role db_models.MemberRole) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        ws.ID.String(),
		Name:      ws.Name,
		Slug:      ws.Slug,
		PlanID:    ws.PlanID,
		Role:      string(role),
		CreatedAt: ws.CreatedAt,
	}
}

type MemberResponse struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
}

type WorkspaceDetailResponse struct {
	WorkspaceResponse
	Members []MemberResponse `json:"members"`
}

type EntitlementResponse struct {
	PlanID           string       `json:"plan_id"`
	EffectivePlan    billing.Plan `json:"effective_plan"`
	AccessGranted    bool         `json:"access_granted"`
	Reason           string       `json:"reason"`
	Degraded         bool         `json:"degraded"`
	WalkthroughCount int64        `json:"walkthrough_count"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

func NewCategoryResponse(c *db_models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Position:    c.Position,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

func dbErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", utils.ErrDatabaseError, op, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// memberGuard resolves workspace membership. Non-members get ErrAccessDenied whether or not
// the workspace exists.
type memberGuard struct {
	workspaces repositories.WorkspaceRepository
}

func (g memberGuard) authorize(ctx context.Context, workspaceID, accountID uuid.UUID, min db_models.MemberRole) (*db_models.WorkspaceMember, error) {
	if accountID == uuid.Nil {
		return nil, utils.ErrUnauthorized
	}
	m, err := g.workspaces.FindMember(ctx, workspaceID, accountID)
	if err != nil {
		return nil, dbErr("find member", err)
	}
	if m == nil || !m.Role.AtLeast(min) {
		return nil, utils.ErrAccessDenied
	}
	return m, nil
}

// planResolver applies the access policy to decide which plan limits a workspace gets.
type planResolver struct {
	workspaces    repositories.WorkspaceRepository
	subscriptions repositories.SubscriptionRepository
	now           func() time.Time
}

func (p planResolver) resolve(ctx context.Context, ws *db_models.Workspace) (billing.Entitlement, error) {
	var sub *db_models.Subscription
	if ws.PlanID != "" && ws.PlanID != billing.PlanFree {
		var err error
		sub, err = p.subscriptions.FindByWorkspace(ctx, ws.ID)
		if err != nil {
			return billing.Entitlement{}, dbErr("find subscription", err)
		}
	}
	return billing.EffectivePlan(p.now(), ws.PlanID, sub), nil
}

func (p planResolver) resolveByID(ctx context.Context, workspaceID uuid.UUID) (*db_models.Workspace, billing.Entitlement, error) {
	ws, err := p.workspaces.FindById(ctx, workspaceID)
	if err != nil {
		return nil, billing.Entitlement{}, dbErr("find workspace", err)
	}
	if ws == nil {
		return nil, billing.Entitlement{}, utils.ErrWorkspaceNotFound
	}
	ent, err := p.resolve(ctx, ws)
	return ws, ent, err
}

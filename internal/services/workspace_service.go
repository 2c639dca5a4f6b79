package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

type WorkspaceServiceInterface interface {
	Create(ctx context.Context, accountID uuid.UUID, req request_models.CreateWorkspaceRequest) (*response_models.WorkspaceResponse, error)
	ListMine(ctx context.Context, accountID uuid.UUID) ([]response_models.WorkspaceResponse, error)
	Get(ctx context.Context, workspaceID, accountID uuid.UUID) (*response_models.WorkspaceDetailResponse, error)
	Rename(ctx context.Context, workspaceID, accountID uuid.UUID, req request_models.UpdateWorkspaceRequest) (*response_models.WorkspaceResponse, error)
	AddMember(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.AddMemberRequest) (*response_models.MemberResponse, error)
	RemoveMember(ctx context.Context, workspaceID, actorID, memberID uuid.UUID) error
	Entitlements(ctx context.Context, workspaceID, accountID uuid.UUID) (*response_models.EntitlementResponse, error)
}

type WorkspaceService struct {
	workspaces   repositories.WorkspaceRepository
	accounts     repositories.AccountRepository
	walkthroughs repositories.WalkthroughRepository
	guard        memberGuard
	plans        planResolver
	log          *zap.Logger
}

func NewWorkspaceService(
	workspaces repositories.WorkspaceRepository,
	accounts repositories.AccountRepository,
	walkthroughs repositories.WalkthroughRepository,
	subscriptions repositories.SubscriptionRepository,
	log *zap.Logger,
) WorkspaceServiceInterface {
	return &WorkspaceService{
		workspaces:   workspaces,
		accounts:     accounts,
		walkthroughs: walkthroughs,
		guard:        memberGuard{workspaces: workspaces},
		plans:        planResolver{workspaces: workspaces, subscriptions: subscriptions, now: time.Now},
		log:          log.Named("workspace"),
	}
}

func (s *WorkspaceService) Create(ctx context.Context, accountID uuid.UUID, req request_models.CreateWorkspaceRequest) (*response_models.WorkspaceResponse, error) {
	base := slug.Make(req.Slug)
	if base == "" {
		base = slug.Make(req.Name)
	}
	if base == "" {
		return nil, utils.NewValidationError("slug", "slug must contain letters or digits")
	}
	wsSlug, err := uniqueSlug(base, func(candidate string) (bool, error) {
		return s.workspaces.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, dbErr("check workspace slug", err)
	}

	ws := &db_models.Workspace{
		Name:    strings.TrimSpace(req.Name),
		Slug:    wsSlug,
		OwnerID: accountID,
		PlanID:  billing.PlanFree,
	}
	owner := &db_models.WorkspaceMember{AccountID: accountID, Role: db_models.RoleOwner}
	if err := s.workspaces.CreateWithOwner(ctx, ws, owner); err != nil {
		if isDuplicate(err) {
			return nil, utils.ErrSlugTaken
		}
		return nil, dbErr("create workspace", err)
	}
	s.log.Info("workspace created", zap.String("workspace_id", ws.ID.String()), zap.String("slug", ws.Slug))

	resp := response_models.NewWorkspaceResponse(ws, db_models.RoleOwner)
	return &resp, nil
}

func (s *WorkspaceService) ListMine(ctx context.Context, accountID uuid.UUID) ([]response_models.WorkspaceResponse, error) {
	list, err := s.workspaces.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, dbErr("list workspaces", err)
	}
	out := make([]response_models.WorkspaceResponse, 0, len(list))
	for i := range list {
		var role db_models.MemberRole
		if m, err := s.workspaces.FindMember(ctx, list[i].ID, accountID); err == nil && m != nil {
			role = m.Role
		}
		out = append(out, response_models.NewWorkspaceResponse(&list[i], role))
	}
	return out, nil
}

func (s *WorkspaceService) Get(ctx context.Context, workspaceID, accountID uuid.UUID) (*response_models.WorkspaceDetailResponse, error) {
	member, err := s.guard.authorize(ctx, workspaceID, accountID, db_models.RoleViewer)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.FindById(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("find workspace", err)
	}
	if ws == nil {
		return nil, utils.ErrWorkspaceNotFound
	}

	members, err := s.workspaces.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("list members", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.AccountID.String())
	}
	accounts, err := s.accounts.FindByIds(ctx, ids)
	if err != nil {
		return nil, dbErr("find member accounts", err)
	}
	byID := make(map[uuid.UUID]db_models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	resp := &response_models.WorkspaceDetailResponse{
		WorkspaceResponse: response_models.NewWorkspaceResponse(ws, member.Role),
		Members:           make([]response_models.MemberResponse, 0, len(members)),
	}
	for _, m := range members {
		a := byID[m.AccountID]
		resp.Members = append(resp.Members, response_models.MemberResponse{
			AccountID: m.AccountID.String(),
			Name:      a.Name,
			Email:     a.Email,
			Role:      string(m.Role),
		})
	}
	return resp, nil
}

func (s *WorkspaceService) Rename(ctx context.Context, workspaceID, accountID uuid.UUID, req request_models.UpdateWorkspaceRequest) (*response_models.WorkspaceResponse, error) {
	member, err := s.guard.authorize(ctx, workspaceID, accountID, db_models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.FindById(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("find workspace", err)
	}
	if ws == nil {
		return nil, utils.ErrWorkspaceNotFound
	}
	ws.Name = strings.TrimSpace(req.Name)
	if err := s.workspaces.Update(ctx, ws); err != nil {
		return nil, dbErr("update workspace", err)
	}
	resp := response_models.NewWorkspaceResponse(ws, member.Role)
	return &resp, nil
}

func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.AddMemberRequest) (*response_models.MemberResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleAdmin); err != nil {
		return nil, err
	}
	role := db_models.MemberRole(req.Role)
	if !role.Valid() || role == db_models.RoleOwner {
		return nil, utils.NewValidationError("role", "role must be admin, editor or viewer")
	}

	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, dbErr("find account", err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	existing, err := s.workspaces.FindMember(ctx, workspaceID, account.ID)
	if err != nil {
		return nil, dbErr("find member", err)
	}
	if existing != nil {
		return nil, utils.ErrAlreadyMember
	}

	member := &db_models.WorkspaceMember{WorkspaceID: workspaceID, AccountID: account.ID, Role: role}
	if err := s.workspaces.AddMember(ctx, member); err != nil {
		if isDuplicate(err) {
			return nil, utils.ErrAlreadyMember
		}
		return nil, dbErr("add member", err)
	}
	return &response_models.MemberResponse{
		AccountID: account.ID.String(),
		Name:      account.Name,
		Email:     account.Email,
		Role:      string(role),
	}, nil
}

func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorID, memberID uuid.UUID) error {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleAdmin); err != nil {
		return err
	}
	target, err := s.workspaces.FindMember(ctx, workspaceID, memberID)
	if err != nil {
		return dbErr("find member", err)
	}
	if target == nil {
		return utils.ErrAccountNotFound
	}
	if target.Role == db_models.RoleOwner {
		return utils.NewValidationError("account_id", "the workspace owner cannot be removed")
	}
	if err := s.workspaces.RemoveMember(ctx, workspaceID, memberID); err != nil {
		return dbErr("remove member", err)
	}
	return nil
}

func (s *WorkspaceService) Entitlements(ctx context.Context, workspaceID, accountID uuid.UUID) (*response_models.EntitlementResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, accountID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	ws, ent, err := s.plans.resolveByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	count, err := s.walkthroughs.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("count walkthroughs", err)
	}
	return &response_models.EntitlementResponse{
		PlanID:           ws.PlanID,
		EffectivePlan:    ent.Plan,
		AccessGranted:    ent.Decision.Granted,
		Reason:           string(ent.Decision.Reason),
		Degraded:         ent.Degraded,
		WalkthroughCount: count,
	}, nil
}

// uniqueSlug appends -2, -3, ... to base until exists reports the candidate free.
func uniqueSlug(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	suffix, err := utils.GenerateSecureToken(3)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

type PortalServiceInterface interface {
	ListPublished(ctx context.Context, workspaceSlug string) ([]response_models.PortalWalkthrough, error)
	Get(ctx context.Context, workspaceSlug, slug, portalToken string) (*response_models.PortalWalkthrough, error)
	Unlock(ctx context.Context, workspaceSlug, slug, password string) (*response_models.UnlockResponse, error)
}

// portalResolver finds walkthroughs the public may see: published, not archived and not
// private. Anything else looks like it does not exist.
type portalResolver struct {
	workspaces   repositories.WorkspaceRepository
	walkthroughs repositories.WalkthroughRepository
	tokens       *utils.TokenIssuer
}

func (r portalResolver) workspace(ctx context.Context, slug string) (*db_models.Workspace, error) {
	ws, err := r.workspaces.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, dbErr("find workspace", err)
	}
	if ws == nil {
		return nil, utils.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (r portalResolver) visible(ctx context.Context, workspaceSlug, slug string) (*db_models.Walkthrough, error) {
	ws, err := r.workspace(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}
	w, err := r.walkthroughs.FindBySlug(ctx, ws.ID, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, dbErr("find walkthrough", err)
	}
	if w == nil || !isPortalVisible(w) {
		return nil, utils.ErrWalkthroughNotFound
	}
	return w, nil
}

// open resolves a visible walkthrough and, in password mode, requires a portal token issued
// for it.
func (r portalResolver) open(ctx context.Context, workspaceSlug, slug, portalToken string) (*db_models.Walkthrough, error) {
	w, err := r.visible(ctx, workspaceSlug, slug)
	if err != nil {
		return nil, err
	}
	if w.Privacy == db_models.PrivacyPassword && !r.unlocked(w, portalToken) {
		return nil, utils.NewValidationError("password", "password required")
	}
	return w, nil
}

func (r portalResolver) unlocked(w *db_models.Walkthrough, portalToken string) bool {
	if portalToken == "" {
		return false
	}
	claims, err := r.tokens.ValidateToken(portalToken, utils.AudiencePortal)
	if err != nil {
		return false
	}
	return claims.Subject == w.ID.String()
}

func isPortalVisible(w *db_models.Walkthrough) bool {
	return w.Status == db_models.StatusPublished && !w.Archived && w.Privacy != db_models.PrivacyPrivate
}

type PortalService struct {
	portal portalResolver
	log    *zap.Logger
}

func NewPortalService(
	workspaces repositories.WorkspaceRepository,
	walkthroughs repositories.WalkthroughRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) PortalServiceInterface {
	return &PortalService{
		portal: portalResolver{workspaces: workspaces, walkthroughs: walkthroughs, tokens: tokens},
		log:    log.Named("portal"),
	}
}

func (s *PortalService) ListPublished(ctx context.Context, workspaceSlug string) ([]response_models.PortalWalkthrough, error) {
	ws, err := s.portal.workspace(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}
	list, err := s.portal.walkthroughs.ListPublic(ctx, ws.ID)
	if err != nil {
		return nil, dbErr("list public walkthroughs", err)
	}
	out := make([]response_models.PortalWalkthrough, 0, len(list))
	for i := range list {
		if !isPortalVisible(&list[i]) {
			continue
		}
		// Listings never carry steps; the detail endpoint does.
		item := portalView(&list[i], false)
		item.Steps = nil
		out = append(out, item)
	}
	return out, nil
}

func (s *PortalService) Get(ctx context.Context, workspaceSlug, slug, portalToken string) (*response_models.PortalWalkthrough, error) {
	w, err := s.portal.open(ctx, workspaceSlug, slug, portalToken)
	if err != nil {
		return nil, err
	}
	view := portalView(w, true)
	return &view, nil
}

func (s *PortalService) Unlock(ctx context.Context, workspaceSlug, slug, password string) (*response_models.UnlockResponse, error) {
	w, err := s.portal.visible(ctx, workspaceSlug, slug)
	if err != nil {
		return nil, err
	}
	if w.Privacy != db_models.PrivacyPassword {
		return nil, utils.NewValidationError("password", "walkthrough is not password protected")
	}
	if password == "" {
		return nil, utils.NewValidationError("password", "password required")
	}
	if w.PasswordHash == "" || utils.ComparePasswords(w.PasswordHash, password) != nil {
		s.log.Info("portal unlock rejected", zap.String("walkthrough_id", w.ID.String()))
		return nil, utils.NewValidationError("password", "incorrect password")
	}

	token, err := s.portal.tokens.CreatePortalToken(w.ID)
	if err != nil {
		return nil, err
	}
	return &response_models.UnlockResponse{
		Token:     token,
		ExpiresIn: int64(s.portal.tokens.PortalTTL().Seconds()),
	}, nil
}

// portalView hides steps of password-protected walkthroughs unless unlocked is set.
func portalView(w *db_models.Walkthrough, unlocked bool) response_models.PortalWalkthrough {
	view := response_models.PortalWalkthrough{
		ID:          w.ID.String(),
		Title:       w.Title,
		Slug:        w.Slug,
		Description: w.Description,
		IconURL:     w.IconURL,
		Navigation:  map[string]any(w.Navigation),
		Tags:        []string(w.Tags),
		Locked:      w.Privacy == db_models.PrivacyPassword && !unlocked,
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	if !view.Locked {
		view.Steps = w.StepList()
	}
	return view
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"stepwise/internal/content"
	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/internal/versioning"
	"stepwise/pkg/utils"
)

type WalkthroughServiceInterface interface {
	Create(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.CreateWalkthroughRequest) (*response_models.WalkthroughResponse, error)
	List(ctx context.Context, workspaceID, actorID uuid.UUID, filter repositories.WalkthroughFilter) ([]response_models.WalkthroughSummary, error)
	Get(ctx context.Context, id, actorID uuid.UUID) (*response_models.WalkthroughResponse, error)
	Update(ctx context.Context, id, actorID uuid.UUID, req request_models.UpdateWalkthroughRequest) (*response_models.WalkthroughResponse, error)
	Publish(ctx context.Context, id, actorID uuid.UUID) (*response_models.WalkthroughResponse, error)
	SetArchived(ctx context.Context, id, actorID uuid.UUID, archived bool) (*response_models.WalkthroughResponse, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error

	AddStep(ctx context.Context, id, actorID uuid.UUID, req request_models.StepRequest) (*response_models.WalkthroughResponse, error)
	UpdateStep(ctx context.Context, id, actorID uuid.UUID, stepID string, req request_models.UpdateStepRequest) (*response_models.WalkthroughResponse, error)
	DeleteStep(ctx context.Context, id, actorID uuid.UUID, stepID string) (*response_models.WalkthroughResponse, error)
	ReorderSteps(ctx context.Context, id, actorID uuid.UUID, stepIDs []string) (*response_models.WalkthroughResponse, error)
}

type WalkthroughService struct {
	walkthroughs repositories.WalkthroughRepository
	categories   repositories.CategoryRepository
	guard        memberGuard
	plans        planResolver
	log          *zap.Logger
	now          func() time.Time
}

func NewWalkthroughService(
	walkthroughs repositories.WalkthroughRepository,
	categories repositories.CategoryRepository,
	workspaces repositories.WorkspaceRepository,
	subscriptions repositories.SubscriptionRepository,
	log *zap.Logger,
) WalkthroughServiceInterface {
	return &WalkthroughService{
		walkthroughs: walkthroughs,
		categories:   categories,
		guard:        memberGuard{workspaces: workspaces},
		plans:        planResolver{workspaces: workspaces, subscriptions: subscriptions, now: time.Now},
		log:          log.Named("walkthrough"),
		now:          time.Now,
	}
}

// load fetches a walkthrough and checks the actor's role in its workspace.
func (s *WalkthroughService) load(ctx context.Context, id, actorID uuid.UUID, min db_models.MemberRole) (*db_models.Walkthrough, error) {
	w, err := s.walkthroughs.FindById(ctx, id)
	if err != nil {
		return nil, dbErr("find walkthrough", err)
	}
	if w == nil {
		return nil, utils.ErrWalkthroughNotFound
	}
	if _, err := s.guard.authorize(ctx, w.WorkspaceID, actorID, min); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WalkthroughService) Create(ctx context.Context, workspaceID, actorID uuid.UUID, req request_models.CreateWalkthroughRequest) (*response_models.WalkthroughResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleEditor); err != nil {
		return nil, err
	}
	_, ent, err := s.plans.resolveByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	count, err := s.walkthroughs.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, dbErr("count walkthroughs", err)
	}
	if !ent.Plan.AllowsAnother(int(count)) {
		return nil, utils.ErrPlanLimitReached
	}

	w := &db_models.Walkthrough{
		WorkspaceID: workspaceID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IconURL:     req.IconURL,
		Privacy:     db_models.PrivacyPublic,
		Status:      db_models.StatusDraft,
		Navigation:  datatypes.JSONMap(copyMap(req.Navigation)),
		Tags:        pq.StringArray(cleanTags(req.Tags)),
		Version:     1,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}
	if req.Privacy != "" {
		w.Privacy = db_models.Privacy(req.Privacy)
	}
	if err := s.applyPassword(w, w.Privacy, optional(req.Password), ent.Plan.PasswordPrivacy); err != nil {
		return nil, err
	}
	if w.CategoryIDs, err = s.checkCategories(ctx, workspaceID, req.CategoryIDs); err != nil {
		return nil, err
	}
	w.SetSteps(content.MergeSteps(req.Steps, nil))

	base := slug.Make(req.Slug)
	if base == "" {
		base = slug.Make(req.Title)
	}
	if base == "" {
		base = "walkthrough"
	}
	if w.Slug, err = uniqueSlug(base, func(candidate string) (bool, error) {
		return s.walkthroughs.SlugExists(ctx, workspaceID, candidate)
	}); err != nil {
		return nil, dbErr("check walkthrough slug", err)
	}

	if err := s.walkthroughs.Create(ctx, w); err != nil {
		if isDuplicate(err) {
			return nil, utils.ErrSlugTaken
		}
		return nil, dbErr("create walkthrough", err)
	}
	s.log.Info("walkthrough created",
		zap.String("walkthrough_id", w.ID.String()),
		zap.String("workspace_id", workspaceID.String()))
	return respond(w), nil
}

func (s *WalkthroughService) List(ctx context.Context, workspaceID, actorID uuid.UUID, filter repositories.WalkthroughFilter) ([]response_models.WalkthroughSummary, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.NewValidationError("status", "status must be DRAFT or PUBLISHED")
	}
	list, err := s.walkthroughs.List(ctx, workspaceID, filter)
	if err != nil {
		return nil, dbErr("list walkthroughs", err)
	}
	out := make([]response_models.WalkthroughSummary, 0, len(list))
	for i := range list {
		out = append(out, response_models.NewWalkthroughSummary(&list[i]))
	}
	return out, nil
}

func (s *WalkthroughService) Get(ctx context.Context, id, actorID uuid.UUID) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleViewer)
	if err != nil {
		return nil, err
	}
	return respond(w), nil
}

// Update applies the request to the stored walkthrough. A request that sets status to
// PUBLISHED snapshots the stored state first and advances the version.
func (s *WalkthroughService) Update(ctx context.Context, id, actorID uuid.UUID, req request_models.UpdateWalkthroughRequest) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}

	var snap *versioning.Snapshot
	if req.Status != nil && db_models.WalkthroughStatus(*req.Status) == db_models.StatusPublished {
		captured := versioning.Publish(w, actorID, s.now())
		snap = &captured
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, utils.NewValidationError("title", "title is required")
		}
		w.Title = title
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.IconURL != nil {
		w.IconURL = strings.TrimSpace(*req.IconURL)
	}
	if req.Status != nil {
		status := db_models.WalkthroughStatus(*req.Status)
		if !status.Valid() {
			return nil, utils.NewValidationError("status", "status must be DRAFT or PUBLISHED")
		}
		w.Status = status
	}
	if req.Privacy != nil || req.Password != nil {
		privacy := w.Privacy
		if req.Privacy != nil {
			privacy = db_models.Privacy(*req.Privacy)
		}
		_, ent, err := s.plans.resolveByID(ctx, w.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if err := s.applyPassword(w, privacy, req.Password, ent.Plan.PasswordPrivacy); err != nil {
			return nil, err
		}
	}
	if req.CategoryIDs != nil {
		if w.CategoryIDs, err = s.checkCategories(ctx, w.WorkspaceID, *req.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		w.Tags = pq.StringArray(cleanTags(*req.Tags))
	}
	if req.Navigation != nil {
		w.Navigation = datatypes.JSONMap(copyMap(req.Navigation))
	}
	if req.Steps != nil {
		w.SetSteps(content.MergeSteps(*req.Steps, w.StepList()))
	}
	w.UpdatedBy = actorID

	if err := s.save(ctx, w, snap); err != nil {
		return nil, err
	}
	return respond(w), nil
}

func (s *WalkthroughService) Publish(ctx context.Context, id, actorID uuid.UUID) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	snap := versioning.Publish(w, actorID, s.now())
	w.Status = db_models.StatusPublished
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, &snap); err != nil {
		return nil, err
	}
	return respond(w), nil
}

func (s *WalkthroughService) save(ctx context.Context, w *db_models.Walkthrough, snap *versioning.Snapshot) error {
	if snap == nil {
		if err := s.walkthroughs.Update(ctx, w); err != nil {
			return dbErr("update walkthrough", err)
		}
		return nil
	}
	if err := s.walkthroughs.UpdateWithSnapshot(ctx, w, snap.Record()); err != nil {
		return dbErr("publish walkthrough", err)
	}
	s.log.Info("walkthrough published",
		zap.String("walkthrough_id", w.ID.String()),
		zap.Int("snapshot_version", snap.Version()),
		zap.Int("version", w.Version))
	return nil
}

func (s *WalkthroughService) SetArchived(ctx context.Context, id, actorID uuid.UUID, archived bool) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	if w.Archived == archived {
		return respond(w), nil
	}
	w.Archived = archived
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, nil); err != nil {
		return nil, err
	}
	return respond(w), nil
}

func (s *WalkthroughService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if _, err := s.load(ctx, id, actorID, db_models.RoleEditor); err != nil {
		return err
	}
	if err := s.walkthroughs.Delete(ctx, id); err != nil {
		return dbErr("delete walkthrough", err)
	}
	return nil
}

func (s *WalkthroughService) AddStep(ctx context.Context, id, actorID uuid.UUID, req request_models.StepRequest) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	steps := w.StepList()
	pos := len(steps)
	if req.Position != nil {
		if *req.Position < 0 || *req.Position > len(steps) {
			return nil, utils.NewValidationError("position", "position is out of range")
		}
		pos = *req.Position
	}
	step := content.Step{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Blocks:      content.Normalize(req.Blocks),
	}
	out := make(content.Steps, 0, len(steps)+1)
	out = append(out, steps[:pos]...)
	out = append(out, step)
	out = append(out, steps[pos:]...)

	w.SetSteps(out.Reindex())
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, nil); err != nil {
		return nil, err
	}
	return respond(w), nil
}

// UpdateStep edits one step. Blocks, when given, are merged with the stored blocks by id.
func (s *WalkthroughService) UpdateStep(ctx context.Context, id, actorID uuid.UUID, stepID string, req request_models.UpdateStepRequest) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	steps := w.StepList()
	idx, ok := steps.Find(stepID)
	if !ok {
		return nil, utils.ErrStepNotFound
	}
	if req.Title != nil {
		steps[idx].Title = *req.Title
	}
	if req.Description != nil {
		steps[idx].Description = *req.Description
	}
	if req.Blocks != nil {
		steps[idx].Blocks = content.MergeBlocks(*req.Blocks, steps[idx].Blocks)
	}
	w.SetSteps(steps)
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, nil); err != nil {
		return nil, err
	}
	return respond(w), nil
}

func (s *WalkthroughService) DeleteStep(ctx context.Context, id, actorID uuid.UUID, stepID string) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	steps, ok := content.Remove(w.StepList(), stepID)
	if !ok {
		return nil, utils.ErrStepNotFound
	}
	w.SetSteps(steps)
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, nil); err != nil {
		return nil, err
	}
	return respond(w), nil
}

func (s *WalkthroughService) ReorderSteps(ctx context.Context, id, actorID uuid.UUID, stepIDs []string) (*response_models.WalkthroughResponse, error) {
	w, err := s.load(ctx, id, actorID, db_models.RoleEditor)
	if err != nil {
		return nil, err
	}
	steps, err := content.Reorder(w.StepList(), stepIDs)
	if err != nil {
		if errors.Is(err, content.ErrInvalidStepOrder) {
			return nil, utils.NewValidationError("step_ids", err.Error())
		}
		return nil, err
	}
	w.SetSteps(steps)
	w.UpdatedBy = actorID
	if err := s.save(ctx, w, nil); err != nil {
		return nil, err
	}
	return respond(w), nil
}

// applyPassword sets privacy and the password hash. Password mode needs a plan that allows it
// and either a new password or an existing hash. Leaving password mode clears the hash.
func (s *WalkthroughService) applyPassword(w *db_models.Walkthrough, privacy db_models.Privacy, password *string, allowed bool) error {
	if !privacy.Valid() {
		return utils.NewValidationError("privacy", "privacy must be public, private or password")
	}
	if privacy != db_models.PrivacyPassword {
		w.Privacy = privacy
		w.PasswordHash = ""
		return nil
	}
	if !allowed {
		return utils.ErrFeatureNotInPlan
	}
	if password != nil && *password != "" {
		hash, err := utils.HashPassword(*password)
		if err != nil {
			return err
		}
		w.PasswordHash = hash
	}
	if w.PasswordHash == "" {
		return utils.NewValidationError("password", "password is required for password-protected walkthroughs")
	}
	w.Privacy = privacy
	return nil
}

func (s *WalkthroughService) checkCategories(ctx context.Context, workspaceID uuid.UUID, ids []string) (pq.StringArray, error) {
	out := make(pq.StringArray, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, utils.NewValidationError("category_ids", "invalid category id "+raw)
		}
		if _, dup := seen[id.String()]; dup {
			continue
		}
		c, err := s.categories.FindById(ctx, workspaceID, id)
		if err != nil {
			return nil, dbErr("find category", err)
		}
		if c == nil {
			return nil, utils.ErrCategoryNotFound
		}
		seen[id.String()] = struct{}{}
		out = append(out, id.String())
	}
	return out, nil
}

func respond(w *db_models.Walkthrough) *response_models.WalkthroughResponse {
	resp := response_models.NewWalkthroughResponse(w)
	return &resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

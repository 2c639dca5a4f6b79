package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

type FeedbackServiceInterface interface {
	Submit(ctx context.Context, workspaceSlug, slug, portalToken string, req request_models.AddFeedbackRequest) (*response_models.FeedbackResponse, error)
	List(ctx context.Context, walkthroughID, actorID uuid.UUID, page utils.Page) (*response_models.FeedbackPage, error)
}

type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepositoryInterface
	walkthroughs repositories.WalkthroughRepository
	portal       portalResolver
	guard        memberGuard
	log          *zap.Logger
}

func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepositoryInterface,
	walkthroughs repositories.WalkthroughRepository,
	workspaces repositories.WorkspaceRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) FeedbackServiceInterface {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		walkthroughs: walkthroughs,
		portal:       portalResolver{workspaces: workspaces, walkthroughs: walkthroughs, tokens: tokens},
		guard:        memberGuard{workspaces: workspaces},
		log:          log.Named("feedback"),
	}
}

func (s *FeedbackService) Submit(ctx context.Context, workspaceSlug, slug, portalToken string, req request_models.AddFeedbackRequest) (*response_models.FeedbackResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, utils.NewValidationError("rating", "rating must be between 1 and 5")
	}
	w, err := s.portal.open(ctx, workspaceSlug, slug, portalToken)
	if err != nil {
		return nil, err
	}

	feedback := &db_models.Feedback{
		WorkspaceID:   w.WorkspaceID,
		WalkthroughID: w.ID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
	}
	if err := s.feedbackRepo.CreateFeedback(ctx, feedback); err != nil {
		return nil, dbErr("create feedback", err)
	}
	out := newFeedbackResponse(feedback)
	return &out, nil
}

func (s *FeedbackService) List(ctx context.Context, walkthroughID, actorID uuid.UUID, page utils.Page) (*response_models.FeedbackPage, error) {
	w, err := s.walkthroughs.FindById(ctx, walkthroughID)
	if err != nil {
		return nil, dbErr("find walkthrough", err)
	}
	if w == nil {
		return nil, utils.ErrWalkthroughNotFound
	}
	if _, err := s.guard.authorize(ctx, w.WorkspaceID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}

	items, total, err := s.feedbackRepo.ListFeedback(ctx, walkthroughID, page.Page, page.PageSize)
	if err != nil {
		return nil, dbErr("list feedback", err)
	}
	out := &response_models.FeedbackPage{
		Items:    make([]response_models.FeedbackResponse, 0, len(items)),
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for i := range items {
		out.Items = append(out.Items, newFeedbackResponse(&items[i]))
	}
	return out, nil
}

func newFeedbackResponse(f *db_models.Feedback) response_models.FeedbackResponse {
	return response_models.FeedbackResponse{
		ID:        f.ID.String(),
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

type AnalyticsServiceInterface interface {
	Record(ctx context.Context, workspaceSlug, slug, portalToken string, req request_models.AnalyticsEventRequest) error
	Summary(ctx context.Context, workspaceID, actorID uuid.UUID, days int) (*response_models.AnalyticsSummary, error)
}

type AnalyticsService struct {
	events       repositories.AnalyticsRepository
	walkthroughs repositories.WalkthroughRepository
	portal       portalResolver
	guard        memberGuard
	log          *zap.Logger
	now          func() time.Time
}

func NewAnalyticsService(
	events repositories.AnalyticsRepository,
	walkthroughs repositories.WalkthroughRepository,
	workspaces repositories.WorkspaceRepository,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		events:       events,
		walkthroughs: walkthroughs,
		portal:       portalResolver{workspaces: workspaces, walkthroughs: walkthroughs, tokens: tokens},
		guard:        memberGuard{workspaces: workspaces},
		log:          log.Named("analytics"),
		now:          time.Now,
	}
}

func (s *AnalyticsService) Record(ctx context.Context, workspaceSlug, slug, portalToken string, req request_models.AnalyticsEventRequest) error {
	kind := db_models.EventKind(strings.TrimSpace(req.Kind))
	switch kind {
	case db_models.EventView, db_models.EventStepView, db_models.EventComplete:
	default:
		return utils.NewValidationError("kind", "kind must be view, step_view or complete")
	}

	w, err := s.portal.open(ctx, workspaceSlug, slug, portalToken)
	if err != nil {
		return err
	}

	if kind == db_models.EventStepView && req.StepIndex == nil {
		return utils.NewValidationError("step_index", "step_index is required for step_view")
	}
	if req.StepIndex != nil {
		if idx := *req.StepIndex; idx < 0 || idx >= len(w.StepList()) {
			return utils.NewValidationError("step_index", "step_index is out of range")
		}
	}

	event := &db_models.AnalyticsEvent{
		WorkspaceID:   w.WorkspaceID,
		WalkthroughID: w.ID,
		Kind:          kind,
		StepIndex:     req.StepIndex,
		SessionID:     req.SessionID,
	}
	if err := s.events.Insert(ctx, event); err != nil {
		return dbErr("insert analytics event", err)
	}
	return nil
}

// Summary aggregates portal events of the last days (default 30) per walkthrough, busiest
// first.
func (s *AnalyticsService) Summary(ctx context.Context, workspaceID, actorID uuid.UUID, days int) (*response_models.AnalyticsSummary, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleViewer); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour).Unix()

	counts, err := s.events.CountsByWorkspace(ctx, workspaceID, since)
	if err != nil {
		return nil, dbErr("count analytics events", err)
	}
	list, err := s.walkthroughs.List(ctx, workspaceID, repositories.WalkthroughFilter{})
	if err != nil {
		return nil, dbErr("list walkthroughs", err)
	}
	titles := make(map[uuid.UUID]string, len(list))
	for _, w := range list {
		titles[w.ID] = w.Title
	}

	summary := &response_models.AnalyticsSummary{
		Since:        since,
		Walkthroughs: make([]response_models.WalkthroughStats, 0, len(counts)),
	}
	for _, c := range counts {
		stats := response_models.WalkthroughStats{
			WalkthroughID: c.WalkthroughID.String(),
			Title:         titles[c.WalkthroughID],
			Views:         c.Views,
			StepViews:     c.StepViews,
			Completions:   c.Completions,
		}
		if c.Views > 0 {
			stats.CompletionRate = float64(c.Completions) / float64(c.Views)
		}
		summary.TotalViews += c.Views
		summary.Walkthroughs = append(summary.Walkthroughs, stats)
	}
	sort.SliceStable(summary.Walkthroughs, func(i, j int) bool {
		a, b := summary.Walkthroughs[i], summary.Walkthroughs[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		return a.WalkthroughID < b.WalkthroughID
	})
	return summary, nil
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepwise/internal/content"
	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/pkg/utils"
)

type portalFixture struct {
	store     *memStore
	portal    PortalServiceInterface
	analytics AnalyticsServiceInterface
	feedback  FeedbackServiceInterface
	ws        *db_models.Workspace
	member    uuid.UUID
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	store := newMemStore()
	member := uuid.New()
	ws := store.seedWorkspace("pro", map[uuid.UUID]db_models.MemberRole{member: db_models.RoleViewer})
	tokens, err := utils.NewTokenIssuer("portal-test-secret", time.Hour, time.Hour)
	require.NoError(t, err)

	walkthroughs := fakeWalkthroughRepo{s: store}
	workspaces := fakeWorkspaceRepo{s: store}
	return &portalFixture{
		store:     store,
		portal:    NewPortalService(workspaces, walkthroughs, tokens, testLogger()),
		analytics: NewAnalyticsService(fakeAnalyticsRepo{s: store}, walkthroughs, workspaces, tokens, testLogger()),
		feedback:  NewFeedbackService(fakeFeedbackRepo{s: store}, walkthroughs, workspaces, tokens, testLogger()),
		ws:        ws,
		member:    member,
	}
}

func (f *portalFixture) seed(t *testing.T, slug string, privacy db_models.Privacy, status db_models.WalkthroughStatus, password string) *db_models.Walkthrough {
	t.Helper()
	w := &db_models.Walkthrough{
		WorkspaceID: f.ws.ID,
		Title:       "Guide " + slug,
		Slug:        slug,
		Privacy:     privacy,
		Status:      status,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		require.NoError(t, err)
		w.PasswordHash = hash
	}
	w.SetSteps(content.Steps{{ID: "s1", Title: "One"}, {ID: "s2", Title: "Two"}})
	return f.store.seedWalkthrough(w)
}

func TestPortal_ListOnlyVisible(t *testing.T) {
	f := newPortalFixture(t)
	f.seed(t, "open", db_models.PrivacyPublic, db_models.StatusPublished, "")
	f.seed(t, "locked", db_models.PrivacyPassword, db_models.StatusPublished, "s3cret")
	f.seed(t, "hidden", db_models.PrivacyPrivate, db_models.StatusPublished, "")
	f.seed(t, "draft", db_models.PrivacyPublic, db_models.StatusDraft, "")
	archived := f.seed(t, "old", db_models.PrivacyPublic, db_models.StatusPublished, "")
	archived.Archived = true
	f.store.seedWalkthrough(archived)

	list, err := f.portal.ListPublished(context.Background(), f.ws.Slug)
	require.NoError(t, err)

	slugs := map[string]bool{}
	for _, item := range list {
		slugs[item.Slug] = item.Locked
		assert.Nil(t, item.Steps)
	}
	assert.Equal(t, map[string]bool{"open": false, "locked": true}, slugs)

	_, err = f.portal.ListPublished(context.Background(), "no-such-workspace")
	assert.ErrorIs(t, err, utils.ErrWorkspaceNotFound)
}

func TestPortal_GetHidesNonPublicAsNotFound(t *testing.T) {
	f := newPortalFixture(t)
	f.seed(t, "hidden", db_models.PrivacyPrivate, db_models.StatusPublished, "")
	f.seed(t, "draft", db_models.PrivacyPublic, db_models.StatusDraft, "")

	for _, slug := range []string{"hidden", "draft", "missing"} {
		_, err := f.portal.Get(context.Background(), f.ws.Slug, slug, "")
		assert.ErrorIs(t, err, utils.ErrWalkthroughNotFound, slug)
	}
}

func TestPortal_PasswordUnlockFlow(t *testing.T) {
	f := newPortalFixture(t)
	f.seed(t, "locked", db_models.PrivacyPassword, db_models.StatusPublished, "s3cret")
	other := f.seed(t, "other", db_models.PrivacyPassword, db_models.StatusPublished, "different")

	_, err := f.portal.Get(context.Background(), f.ws.Slug, "locked", "")
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	_, err = f.portal.Unlock(context.Background(), f.ws.Slug, "locked", "wrong")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	unlocked, err := f.portal.Unlock(context.Background(), f.ws.Slug, "locked", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, unlocked.Token)
	assert.Equal(t, int64(3600), unlocked.ExpiresIn)

	view, err := f.portal.Get(context.Background(), f.ws.Slug, "locked", unlocked.Token)
	require.NoError(t, err)
	assert.False(t, view.Locked)
	assert.Len(t, view.Steps, 2)

	_, err = f.portal.Get(context.Background(), f.ws.Slug, other.Slug, unlocked.Token)
	require.ErrorAs(t, err, &verr, "a token only opens the walkthrough it was issued for")
}

func TestAnalytics_RecordAndSummarize(t *testing.T) {
	f := newPortalFixture(t)
	w := f.seed(t, "open", db_models.PrivacyPublic, db_models.StatusPublished, "")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, f.analytics.Record(ctx, f.ws.Slug, "open", "", request_models.AnalyticsEventRequest{Kind: "view", SessionID: "sess"}))
	}
	step := 1
	require.NoError(t, f.analytics.Record(ctx, f.ws.Slug, "open", "", request_models.AnalyticsEventRequest{Kind: "step_view", StepIndex: &step}))
	require.NoError(t, f.analytics.Record(ctx, f.ws.Slug, "open", "", request_models.AnalyticsEventRequest{Kind: "complete"}))

	outOfRange := 2
	err := f.analytics.Record(ctx, f.ws.Slug, "open", "", request_models.AnalyticsEventRequest{Kind: "step_view", StepIndex: &outOfRange})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "step_index", verr.Field)

	summary, err := f.analytics.Summary(ctx, f.ws.ID, f.member, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalViews)
	require.Len(t, summary.Walkthroughs, 1)
	stats := summary.Walkthroughs[0]
	assert.Equal(t, w.ID.String(), stats.WalkthroughID)
	assert.Equal(t, w.Title, stats.Title)
	assert.Equal(t, int64(1), stats.StepViews)
	assert.Equal(t, int64(1), stats.Completions)
	assert.InDelta(t, 0.25, stats.CompletionRate, 1e-9)

	_, err = f.analytics.Summary(ctx, f.ws.ID, uuid.New(), 7)
	assert.ErrorIs(t, err, utils.ErrAccessDenied)
}

func TestFeedback_SubmitAndList(t *testing.T) {
	f := newPortalFixture(t)
	w := f.seed(t, "open", db_models.PrivacyPublic, db_models.StatusPublished, "")
	ctx := context.Background()

	_, err := f.feedback.Submit(ctx, f.ws.Slug, "open", "", request_models.AddFeedbackRequest{Rating: 6})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)

	for rating := 1; rating <= 3; rating++ {
		_, err := f.feedback.Submit(ctx, f.ws.Slug, "open", "", request_models.AddFeedbackRequest{Rating: rating, Comment: "  ok  "})
		require.NoError(t, err)
	}

	page, err := f.feedback.List(ctx, w.ID, f.member, utils.Page{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ok", page.Items[0].Comment)

	_, err = f.feedback.List(ctx, w.ID, uuid.New(), utils.Page{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, utils.ErrAccessDenied)
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/internal/billing"
	"stepwise/internal/models/db_models"
	"stepwise/internal/repositories"
)

// clone deep-copies a row so fakes behave like a database: callers never share memory with
// what is stored.
func clone[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

func stamp(b *db_models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().Unix()
	if b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

type memStore struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*db_models.Account
	workspaces   map[uuid.UUID]*db_models.Workspace
	members      []db_models.WorkspaceMember
	categories   map[uuid.UUID]*db_models.Category
	walkthroughs map[uuid.UUID]*db_models.Walkthrough
	versions     []db_models.WalkthroughVersion
	subs         map[uuid.UUID]*db_models.Subscription
	events       []db_models.AnalyticsEvent
	feedback     []db_models.Feedback

	providerUpdates    int
	walkthroughUpdates int
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[uuid.UUID]*db_models.Account{},
		workspaces:   map[uuid.UUID]*db_models.Workspace{},
		categories:   map[uuid.UUID]*db_models.Category{},
		walkthroughs: map[uuid.UUID]*db_models.Walkthrough{},
		subs:         map[uuid.UUID]*db_models.Subscription{},
	}
}

// seedWorkspace stores a workspace on planID with the given members.
func (m *memStore) seedWorkspace(planID string, members map[uuid.UUID]db_models.MemberRole) *db_models.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := &db_models.Workspace{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8], PlanID: planID}
	stamp(&ws.BaseModel)
	m.workspaces[ws.ID] = ws
	for accountID, role := range members {
		member := db_models.WorkspaceMember{WorkspaceID: ws.ID, AccountID: accountID, Role: role}
		stamp(&member.BaseModel)
		m.members = append(m.members, member)
		if role == db_models.RoleOwner {
			ws.OwnerID = accountID
		}
	}
	return clone(ws)
}

func (m *memStore) seedWalkthrough(w *db_models.Walkthrough) *db_models.Walkthrough {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&w.BaseModel)
	if w.Version == 0 {
		w.Version = 1
	}
	m.walkthroughs[w.ID] = clone(w)
	return clone(w)
}

func (m *memStore) seedSubscription(sub *db_models.Subscription) *db_models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&sub.BaseModel)
	m.subs[sub.ID] = clone(sub)
	return clone(sub)
}

func (m *memStore) walkthrough(id uuid.UUID) *db_models.Walkthrough {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.walkthroughs[id]; ok {
		return clone(w)
	}
	return nil
}

func (m *memStore) subscription(id uuid.UUID) *db_models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		return clone(s)
	}
	return nil
}

func (m *memStore) workspace(id uuid.UUID) *db_models.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.workspaces[id]; ok {
		return clone(ws)
	}
	return nil
}

// accounts

type fakeAccountRepo struct{ s *memStore }

func (r fakeAccountRepo) Insert(_ context.Context, a *db_models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&a.BaseModel)
	r.s.accounts[a.ID] = clone(a)
	return nil
}

func (r fakeAccountRepo) FindById(_ context.Context, id string) (*db_models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	if a, ok := r.s.accounts[parsed]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (r fakeAccountRepo) FindByEmail(_ context.Context, email string) (*db_models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (r fakeAccountRepo) FindByIds(_ context.Context, ids []string) ([]db_models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Account
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if a, ok := r.s.accounts[parsed]; ok {
			out = append(out, *clone(a))
		}
	}
	return out, nil
}

// workspaces

type fakeWorkspaceRepo struct{ s *memStore }

func (r fakeWorkspaceRepo) CreateWithOwner(_ context.Context, ws *db_models.Workspace, owner *db_models.WorkspaceMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.workspaces {
		if existing.Slug == ws.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&ws.BaseModel)
	owner.WorkspaceID = ws.ID
	stamp(&owner.BaseModel)
	r.s.workspaces[ws.ID] = clone(ws)
	r.s.members = append(r.s.members, *clone(owner))
	return nil
}

func (r fakeWorkspaceRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Workspace, error) {
	return r.s.workspace(id), nil
}

func (r fakeWorkspaceRepo) FindBySlug(_ context.Context, slug string) (*db_models.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ws := range r.s.workspaces {
		if ws.Slug == slug {
			return clone(ws), nil
		}
	}
	return nil, nil
}

func (r fakeWorkspaceRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	ws, _ := r.FindBySlug(ctx, slug)
	return ws != nil, nil
}

func (r fakeWorkspaceRepo) ListForAccount(_ context.Context, accountID uuid.UUID) ([]db_models.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Workspace
	for _, m := range r.s.members {
		if m.AccountID == accountID {
			if ws, ok := r.s.workspaces[m.WorkspaceID]; ok {
				out = append(out, *clone(ws))
			}
		}
	}
	return out, nil
}

func (r fakeWorkspaceRepo) Update(_ context.Context, ws *db_models.Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.workspaces[ws.ID] = clone(ws)
	return nil
}

func (r fakeWorkspaceRepo) UpdatePlan(_ context.Context, id uuid.UUID, planID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ws, ok := r.s.workspaces[id]; ok {
		ws.PlanID = planID
	}
	return nil
}

func (r fakeWorkspaceRepo) FindMember(_ context.Context, workspaceID, accountID uuid.UUID) (*db_models.WorkspaceMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.members {
		m := r.s.members[i]
		if m.WorkspaceID == workspaceID && m.AccountID == accountID {
			return clone(&m), nil
		}
	}
	return nil, nil
}

func (r fakeWorkspaceRepo) ListMembers(_ context.Context, workspaceID uuid.UUID) ([]db_models.WorkspaceMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.WorkspaceMember
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeWorkspaceRepo) AddMember(_ context.Context, member *db_models.WorkspaceMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.WorkspaceID == member.WorkspaceID && m.AccountID == member.AccountID {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&member.BaseModel)
	r.s.members = append(r.s.members, *clone(member))
	return nil
}

func (r fakeWorkspaceRepo) RemoveMember(_ context.Context, workspaceID, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.members[:0]
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID && m.AccountID == accountID {
			continue
		}
		kept = append(kept, m)
	}
	r.s.members = kept
	return nil
}

// categories

type fakeCategoryRepo struct{ s *memStore }

func (r fakeCategoryRepo) Create(_ context.Context, c *db_models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&c.BaseModel)
	r.s.categories[c.ID] = clone(c)
	return nil
}

func (r fakeCategoryRepo) FindById(_ context.Context, workspaceID, id uuid.UUID) (*db_models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.categories[id]; ok && c.WorkspaceID == workspaceID {
		return clone(c), nil
	}
	return nil, nil
}

func (r fakeCategoryRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]db_models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Category
	for _, c := range r.s.categories {
		if c.WorkspaceID == workspaceID {
			out = append(out, *clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r fakeCategoryRepo) SlugExists(_ context.Context, workspaceID uuid.UUID, slug string, except uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.WorkspaceID == workspaceID && c.Slug == slug && c.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategoryRepo) Update(_ context.Context, c *db_models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = clone(c)
	return nil
}

func (r fakeCategoryRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	for _, w := range r.s.walkthroughs {
		if w.WorkspaceID != workspaceID {
			continue
		}
		kept := w.CategoryIDs[:0]
		for _, cid := range w.CategoryIDs {
			if cid != id.String() {
				kept = append(kept, cid)
			}
		}
		w.CategoryIDs = kept
	}
	return nil
}

// walkthroughs and versions

type fakeWalkthroughRepo struct{ s *memStore }

func (r fakeWalkthroughRepo) Create(_ context.Context, w *db_models.Walkthrough) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.walkthroughs {
		if existing.WorkspaceID == w.WorkspaceID && existing.Slug == w.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&w.BaseModel)
	r.s.walkthroughs[w.ID] = clone(w)
	return nil
}

func (r fakeWalkthroughRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Walkthrough, error) {
	return r.s.walkthrough(id), nil
}

func (r fakeWalkthroughRepo) FindBySlug(_ context.Context, workspaceID uuid.UUID, slug string) (*db_models.Walkthrough, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.walkthroughs {
		if w.WorkspaceID == workspaceID && w.Slug == slug {
			return clone(w), nil
		}
	}
	return nil, nil
}

func (r fakeWalkthroughRepo) SlugExists(ctx context.Context, workspaceID uuid.UUID, slug string) (bool, error) {
	w, _ := r.FindBySlug(ctx, workspaceID, slug)
	return w != nil, nil
}

func (r fakeWalkthroughRepo) List(_ context.Context, workspaceID uuid.UUID, filter repositories.WalkthroughFilter) ([]db_models.Walkthrough, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Walkthrough
	for _, w := range r.s.walkthroughs {
		if w.WorkspaceID != workspaceID {
			continue
		}
		if filter.Status != "" && w.Status != filter.Status {
			continue
		}
		if filter.Archived != nil && w.Archived != *filter.Archived {
			continue
		}
		if filter.CategoryID != "" && !w.HasCategory(filter.CategoryID) {
			continue
		}
		out = append(out, *clone(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r fakeWalkthroughRepo) ListPublic(ctx context.Context, workspaceID uuid.UUID) ([]db_models.Walkthrough, error) {
	all, _ := r.List(ctx, workspaceID, repositories.WalkthroughFilter{})
	var out []db_models.Walkthrough
	for _, w := range all {
		if w.Status == db_models.StatusPublished && !w.Archived && w.Privacy != db_models.PrivacyPrivate {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r fakeWalkthroughRepo) CountByWorkspace(_ context.Context, workspaceID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, w := range r.s.walkthroughs {
		if w.WorkspaceID == workspaceID {
			n++
		}
	}
	return n, nil
}

func (r fakeWalkthroughRepo) Update(_ context.Context, w *db_models.Walkthrough) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.walkthroughUpdates++
	r.s.walkthroughs[w.ID] = clone(w)
	return nil
}

func (r fakeWalkthroughRepo) UpdateWithSnapshot(_ context.Context, w *db_models.Walkthrough, version *db_models.WalkthroughVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.versions {
		if v.WalkthroughID == version.WalkthroughID && v.Version == version.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.versions = append(r.s.versions, *clone(version))
	r.s.walkthroughUpdates++
	r.s.walkthroughs[w.ID] = clone(w)
	return nil
}

func (r fakeWalkthroughRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.walkthroughs, id)
	return nil
}

type fakeVersionRepo struct{ s *memStore }

func (r fakeVersionRepo) FindByVersion(_ context.Context, walkthroughID uuid.UUID, version int) (*db_models.WalkthroughVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.versions {
		v := r.s.versions[i]
		if v.WalkthroughID == walkthroughID && v.Version == version {
			return clone(&v), nil
		}
	}
	return nil, nil
}

func (r fakeVersionRepo) ListByWalkthrough(_ context.Context, walkthroughID uuid.UUID) ([]db_models.WalkthroughVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.WalkthroughVersion
	for i := range r.s.versions {
		if r.s.versions[i].WalkthroughID == walkthroughID {
			out = append(out, *clone(&r.s.versions[i]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r fakeVersionRepo) LatestWithImageURLs(ctx context.Context, walkthroughID uuid.UUID) (*db_models.WalkthroughVersion, error) {
	list, _ := r.ListByWalkthrough(ctx, walkthroughID)
	for i := range list {
		if list[i].HasImageURLs {
			return &list[i], nil
		}
	}
	return nil, nil
}

// subscriptions

type fakeSubscriptionRepo struct{ s *memStore }

func (r fakeSubscriptionRepo) Create(_ context.Context, sub *db_models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.subs {
		if existing.ProviderSubscriptionID == sub.ProviderSubscriptionID {
			return gorm.ErrDuplicatedKey
		}
	}
	stamp(&sub.BaseModel)
	r.s.subs[sub.ID] = clone(sub)
	return nil
}

func (r fakeSubscriptionRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Subscription, error) {
	return r.s.subscription(id), nil
}

func (r fakeSubscriptionRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) (*db_models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *db_models.Subscription
	for _, sub := range r.s.subs {
		if sub.WorkspaceID == workspaceID && (latest == nil || sub.CreatedAt > latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	return clone(latest), nil
}

func (r fakeSubscriptionRepo) FindByProviderId(_ context.Context, providerSubscriptionID string) (*db_models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.ProviderSubscriptionID == providerSubscriptionID {
			return clone(sub), nil
		}
	}
	return nil, nil
}

func (r fakeSubscriptionRepo) UpdateProviderFields(_ context.Context, sub *db_models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.subs[sub.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.providerUpdates++
	stored.Status = sub.Status
	stored.ProviderStatus = sub.ProviderStatus
	stored.NextBillingTime = sub.NextBillingTime
	stored.FinalPaymentTime = sub.FinalPaymentTime
	stored.LastPaymentTime = sub.LastPaymentTime
	return nil
}

func (r fakeSubscriptionRepo) SetCancelAtPeriodEnd(_ context.Context, id uuid.UUID, value bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CancelAtPeriodEnd = value
	return nil
}

// analytics and feedback

type fakeAnalyticsRepo struct{ s *memStore }

func (r fakeAnalyticsRepo) Insert(_ context.Context, event *db_models.AnalyticsEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r fakeAnalyticsRepo) CountsByWorkspace(_ context.Context, workspaceID uuid.UUID, since int64) ([]repositories.EventCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID := map[uuid.UUID]*repositories.EventCounts{}
	var order []uuid.UUID
	for _, e := range r.s.events {
		if e.WorkspaceID != workspaceID || e.CreatedAt < since {
			continue
		}
		c, ok := byID[e.WalkthroughID]
		if !ok {
			c = &repositories.EventCounts{WalkthroughID: e.WalkthroughID}
			byID[e.WalkthroughID] = c
			order = append(order, e.WalkthroughID)
		}
		switch e.Kind {
		case db_models.EventView:
			c.Views++
		case db_models.EventStepView:
			c.StepViews++
		case db_models.EventComplete:
			c.Completions++
		}
	}
	out := make([]repositories.EventCounts, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

type fakeFeedbackRepo struct{ s *memStore }

func (r fakeFeedbackRepo) CreateFeedback(_ context.Context, f *db_models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&f.BaseModel)
	r.s.feedback = append(r.s.feedback, *f)
	return nil
}

func (r fakeFeedbackRepo) ListFeedback(_ context.Context, walkthroughID uuid.UUID, page, pageSize int) ([]db_models.Feedback, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []db_models.Feedback
	for _, f := range r.s.feedback {
		if f.WalkthroughID == walkthroughID {
			all = append(all, f)
		}
	}
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// provider

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CancelSubscription(ctx context.Context, id, reason string) (int, error) {
	args := m.Called(ctx, id, reason)
	return args.Int(0), args.Error(1)
}

func (m *mockProvider) GetBillingInfo(ctx context.Context, id string) (billing.BillingInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(billing.BillingInfo), args.Error(1)
}

func (m *mockProvider) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (bool, error) {
	args := m.Called(ctx, headers, body)
	return args.Bool(0), args.Error(1)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testLogger() *zap.Logger { return zap.NewNop() }

func ptrTime(t time.Time) *time.Time { return &t }

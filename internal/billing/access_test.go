package billing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stepwise/internal/models/db_models"
)

func ptr(t time.Time) *time.Time { return &t }

func TestAccessGranted_Formula(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	randomTime := func() *time.Time {
		if rng.Intn(4) == 0 {
			return nil
		}
		return ptr(base.Add(time.Duration(rng.Intn(240)-120) * time.Hour))
	}

	for i := 0; i < 2000; i++ {
		now := base.Add(time.Duration(rng.Intn(240)-120) * time.Hour)
		next, final := randomTime(), randomTime()
		if rng.Intn(10) == 0 {
			next = ptr(now)
		}
		if rng.Intn(10) == 0 {
			final = ptr(now)
		}

		want := (next != nil && now.Before(*next)) || (final != nil && now.Before(*final))
		assert.Equal(t, want, AccessGranted(now, next, final), "iteration %d", i)
	}
}

func TestAccessGranted_BoundaryIsExclusive(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, AccessGranted(at, ptr(at), nil))
	assert.False(t, AccessGranted(at, nil, ptr(at)))
	assert.True(t, AccessGranted(at.Add(-time.Nanosecond), ptr(at), nil))
	assert.False(t, AccessGranted(at, nil, nil))
}

func TestAccessGranted_EitherTimestampSuffices(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.True(t, AccessGranted(now, ptr(past), ptr(future)))
	assert.True(t, AccessGranted(now, ptr(future), ptr(past)))
	assert.False(t, AccessGranted(now, ptr(past), ptr(past)))
}

func TestEvaluate_Reasons(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Decision{Reason: ReasonNoSubscription}, Evaluate(now, nil))
	assert.Equal(t, Decision{Reason: ReasonNoTimestamps}, Evaluate(now, &db_models.Subscription{}))

	d := Evaluate(now, &db_models.Subscription{FinalPaymentTime: ptr(now.Add(time.Hour))})
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonBeforeFinal, d.Reason)

	d = Evaluate(now, &db_models.Subscription{NextBillingTime: ptr(now.Add(-time.Hour))})
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonLapsed, d.Reason)
}

func TestEvaluate_AgreesWithAccessGranted(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func() *time.Time {
		if rng.Intn(3) == 0 {
			return nil
		}
		return ptr(base.Add(time.Duration(rng.Intn(96)-48) * time.Hour))
	}

	for i := 0; i < 1000; i++ {
		now := base.Add(time.Duration(rng.Intn(96)-48) * time.Hour)
		sub := &db_models.Subscription{NextBillingTime: at(), FinalPaymentTime: at()}
		if rng.Intn(8) == 0 {
			sub.NextBillingTime = ptr(now)
		}

		d := Evaluate(now, sub)
		assert.Equal(t, AccessGranted(now, sub.NextBillingTime, sub.FinalPaymentTime), d.Granted, "iteration %d", i)
		if d.Granted {
			assert.Contains(t, []Reason{ReasonBeforeNext, ReasonBeforeFinal}, d.Reason)
		} else {
			assert.Contains(t, []Reason{ReasonNoTimestamps, ReasonLapsed}, d.Reason)
		}
	}
}

func TestEffectivePlan(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	active := &db_models.Subscription{NextBillingTime: ptr(now.Add(time.Hour))}
	lapsed := &db_models.Subscription{NextBillingTime: ptr(now.Add(-time.Hour))}

	e := EffectivePlan(now, PlanPro, active)
	assert.Equal(t, PlanPro, e.Plan.ID)
	assert.False(t, e.Degraded)

	e = EffectivePlan(now, PlanPro, lapsed)
	assert.Equal(t, PlanFree, e.Plan.ID)
	assert.True(t, e.Degraded)

	e = EffectivePlan(now, PlanFree, active)
	assert.Equal(t, PlanFree, e.Plan.ID)
	assert.False(t, e.Degraded)
}

func TestPlan_AllowsAnother(t *testing.T) {
	free, _ := PlanByID(PlanFree)
	pro, _ := PlanByID(PlanPro)

	assert.True(t, free.AllowsAnother(2))
	assert.False(t, free.AllowsAnother(3))
	assert.True(t, pro.AllowsAnother(10_000))
}

func TestMapProviderStatus(t *testing.T) {
	cases := map[string]db_models.SubscriptionStatus{
		"APPROVAL_PENDING": db_models.SubStatusPending,
		"APPROVED":         db_models.SubStatusPending,
		"ACTIVE":           db_models.SubStatusActive,
		"active":           db_models.SubStatusActive,
		"CANCELLED":        db_models.SubStatusCancelled,
		"EXPIRED":          db_models.SubStatusExpired,
		"SUSPENDED":        db_models.SubStatusActive,
		"":                 db_models.SubStatusActive,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapProviderStatus(in, db_models.SubStatusActive), "provider status %q", in)
	}
}

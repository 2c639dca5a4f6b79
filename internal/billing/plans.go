package billing

import (
	"time"

	"stepwise/internal/models/db_models"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Plan describes the limits of a billing tier. Negative limits mean unlimited.
type Plan struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MaxWalkthroughs int    `json:"max_walkthroughs"`
	PasswordPrivacy bool   `json:"password_privacy"`
}

func (p Plan) IsUnlimited() bool { return p.MaxWalkthroughs < 0 }

// AllowsAnother reports whether a workspace already holding count walkthroughs may create one
// more.
func (p Plan) AllowsAnother(count int) bool {
	return p.IsUnlimited() || count < p.MaxWalkthroughs
}

var plans = []Plan{
	{ID: PlanFree, Name: "Free", MaxWalkthroughs: 3},
	{ID: PlanPro, Name: "Pro", MaxWalkthroughs: -1, PasswordPrivacy: true},
}

// PlanByID returns a copy of the plan with the given id.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

func AllPlans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Entitlement is the plan a workspace may use right now.
type Entitlement struct {
	Plan     Plan
	Decision Decision
	// Degraded is set when the workspace is billed for a paid plan the subscription no longer
	// covers.
	Degraded bool
}

// EffectivePlan resolves the limits for a workspace: paid limits apply only while the access
// policy holds for its subscription.
func EffectivePlan(now time.Time, planID string, sub *db_models.Subscription) Entitlement {
	free, _ := PlanByID(PlanFree)
	if planID == "" || planID == PlanFree {
		return Entitlement{Plan: free, Decision: Evaluate(now, sub)}
	}
	paid, ok := PlanByID(planID)
	if !ok {
		return Entitlement{Plan: free, Decision: Evaluate(now, sub), Degraded: true}
	}
	d := Evaluate(now, sub)
	if !d.Granted {
		return Entitlement{Plan: free, Decision: d, Degraded: true}
	}
	return Entitlement{Plan: paid, Decision: d}
}

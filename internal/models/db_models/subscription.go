package db_models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusPending   SubscriptionStatus = "PENDING"
	SubStatusActive    SubscriptionStatus = "ACTIVE"
	SubStatusCancelled SubscriptionStatus = "CANCELLED"
	SubStatusExpired   SubscriptionStatus = "EXPIRED"
)

const ProviderPayPal = "paypal"

// Subscription mirrors the payment provider's record for a workspace. The three billing
// timestamps are stored exactly as the provider reports them; nothing here is derived
// from local date arithmetic.
type Subscription struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;index"`
	PlanID      string    `gorm:"type:varchar(32)"`

	Provider               string             `gorm:"type:varchar(20);index"`
	ProviderSubscriptionID string             `gorm:"type:varchar(191);uniqueIndex"`
	Status                 SubscriptionStatus `gorm:"type:varchar(16);index"`
	ProviderStatus         string             `gorm:"type:varchar(32)"`
	CancelAtPeriodEnd      bool               `gorm:"default:false"`

	NextBillingTime  *time.Time
	FinalPaymentTime *time.Time
	LastPaymentTime  *time.Time
}

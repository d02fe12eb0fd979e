package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type PaymentStatus string

const (
	PaymentCreated PaymentStatus = "created"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// swagger:model SubscriptionPlan
type SubscriptionPlan struct {
	BaseModel
	Code         string `gorm:"size:50;uniqueIndex" json:"code"`
	Name         string `gorm:"size:100;not null" json:"name"`
	PricePaise   int64  `gorm:"not null" json:"pricePaise"`
	DurationDays int    `gorm:"not null" json:"durationDays"`
	Active       bool   `gorm:"default:true" json:"active"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// swagger:model Subscription
type Subscription struct {
	BaseModel
	UserID    uint               `gorm:"index" json:"userId"`
	PlanID    uint               `gorm:"index" json:"planId"`
	Plan      *SubscriptionPlan  `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status    SubscriptionStatus `gorm:"size:20;default:'pending';index" json:"status"`
	StartsAt  *time.Time         `json:"startsAt,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Usable reports whether the subscription still grants access at t. A
// cancelled subscription keeps access until its paid-for period lapses.
func (s *Subscription) Usable(t time.Time) bool {
	if s.Status != SubscriptionActive && s.Status != SubscriptionCancelled {
		return false
	}
	return s.ExpiresAt != nil && s.ExpiresAt.After(t)
}

// Payment mirrors one gateway order. The primary key doubles as the order id
// sent to the gateway.
// swagger:model Payment
type Payment struct {
	UUIDBase
	UserID         uint          `gorm:"index" json:"userId"`
	SubscriptionID uint          `gorm:"index" json:"subscriptionId"`
	AmountPaise    int64         `gorm:"not null" json:"amountPaise"`
	Currency       string        `gorm:"size:10;default:'INR'" json:"currency"`
	Status         PaymentStatus `gorm:"size:20;default:'created';index" json:"status"`
	GatewayRef     string        `gorm:"size:100" json:"gatewayRef"`
}

func (Payment) TableName() string {
	return "payments"
}
